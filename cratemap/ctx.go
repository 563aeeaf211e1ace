package cratemap

import (
	"io"
	"os"

	"github.com/cratemap/cratemap/internal/log"
)

// Ctx is the supporting context a Driver needs, grounded on the teacher's
// dep.Ctx: a small struct of process-wide state (there, the GOPATH;
// here, a logger and resolved config) built once at startup and threaded
// through everything downstream.
type Ctx struct {
	Logger *log.Logger
	Config Config
}

// NewContext builds a Ctx by loading ConfigName from dir (falling back to
// defaults if absent) and writing log output to w.
func NewContext(dir string, w io.Writer) (*Ctx, error) {
	if w == nil {
		w = os.Stderr
	}
	cfg, err := LoadConfig(joinPath(dir, ConfigName))
	if err != nil {
		return nil, err
	}
	return &Ctx{Logger: log.New(w), Config: cfg}, nil
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + string(os.PathSeparator) + name
}
