// Package cratemap is the ambient layer around resolve: TOML configuration,
// a small Ctx carrying a logger and options, and a Driver that loads one or
// more fixture crates and runs them through resolve.BuildCrateDefMap.
//
// Grounded on the teacher's manifest.go (one struct describing on-disk
// config, read through a dedicated decode function) and context.go (a Ctx
// type bundling together the process-wide state a command needs); here the
// config format is TOML (per SPEC_FULL.md's DOMAIN STACK wiring of
// pelletier/go-toml/v2) rather than the teacher's hand-rolled JSON
// manifest, since nothing about go-toml/v2's decoding model is otherwise
// exercised elsewhere in this module.
package cratemap

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/cratemap/cratemap/resolve"
)

// ConfigName is the file a Driver looks for in its working directory.
const ConfigName = "cratemap.toml"

// Config is the on-disk shape of cratemap.toml.
type Config struct {
	// DefaultEdition is used for any fixture crate whose spec omits an
	// edition.
	DefaultEdition string `toml:"default_edition"`

	MaxGlobDepth  int `toml:"max_glob_depth"`
	MaxMacroDepth int `toml:"max_macro_depth"`

	// Verbose enables per-stage progress logging during a build.
	Verbose bool `toml:"verbose"`
}

// defaultConfig matches resolve.Options' own defaults, so a Driver built
// with a zero Config behaves identically to one with no config file at all.
func defaultConfig() Config {
	return Config{DefaultEdition: "2018", MaxGlobDepth: 100, MaxMacroDepth: 64}
}

// LoadConfig reads and decodes path, falling back to defaultConfig if path
// does not exist.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return Config{}, errors.Wrapf(err, "reading %s", path)
	}

	cfg := defaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing %s", path)
	}
	return cfg, nil
}

// resolveOptions converts a Config into the resolve.Options its build
// drives with.
func (c Config) resolveOptions() *resolve.Options {
	return &resolve.Options{MaxGlobDepth: c.MaxGlobDepth, MaxMacroDepth: c.MaxMacroDepth}
}

func (c Config) String() string {
	return fmt.Sprintf("cratemap.toml{edition=%s glob_depth=%d macro_depth=%d verbose=%t}",
		c.DefaultEdition, c.MaxGlobDepth, c.MaxMacroDepth, c.Verbose)
}
