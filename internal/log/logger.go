// Package log is a minimal progress logger for the def-map build driver.
package log

import (
	"fmt"
	"io"
)

// Logger writes a build's progress and housekeeping output to an
// io.Writer: one line per fixed-point stage as a build advances, and one
// line per file a host capability gave up on (a missing `mod name;` target,
// a read error on an indexed path).
type Logger struct {
	io.Writer
}

// New returns a new logger which writes to w.
func New(w io.Writer) *Logger {
	return &Logger{Writer: w}
}

// Logln logs a line as-is, for diagnostics that don't fit the Stage/Miss
// vocabulary below.
func (l *Logger) Logln(args ...interface{}) {
	fmt.Fprintln(l, args...)
}

// Logf logs a formatted string as-is (e.g. hostfs's one-time indexing
// summary).
func (l *Logger) Logf(f string, args ...interface{}) {
	fmt.Fprintf(l, f, args...)
}

// Stage logs one tick of BuildCrateDefMap's fixed-point loop (import
// resolution, glob propagation, macro expansion), prefixed with
// `cratemap: ` so it reads apart from whatever else writes to the same
// stream.
func (l *Logger) Stage(format string, args ...interface{}) {
	fmt.Fprintf(l, "cratemap: "+format+"\n", args...)
}

// Miss logs a file a host capability probed for and could not use: a
// missing `mod name;`/`include!` target, or a read error on an already
// indexed path.
func (l *Logger) Miss(format string, args ...interface{}) {
	fmt.Fprintf(l, "cratemap: "+format+"\n", args...)
}
