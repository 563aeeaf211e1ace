// Command cratemap builds a crate's CrateDefMap from a directory of
// testfixture YAML crate specs and prints a summary of the result.
//
// Grounded on the teacher's main.go/cmd/dep/main.go: parse flags, build a
// Ctx, dispatch to a command, report errors to stderr and a non-zero exit
// code. This demo only ever runs the one build operation the teacher's
// main.go dispatches many of, so there is one entry in its command list
// instead of a name-keyed lookup.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/cratemap/cratemap"
)

func main() {
	commands := []command{&buildCommand{}}
	cmd := commands[0]

	dir := flag.StringP("dir", "d", ".", "directory containing crate spec YAML files")
	cmd.Register(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: cratemap %s %s\n", cmd.Name(), cmd.Args())
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(cmd, *dir); err != nil {
		fmt.Fprintln(os.Stderr, "cratemap:", err)
		os.Exit(1)
	}
}

func run(cmd command, dir string) error {
	ctx, err := cratemap.NewContext(dir, os.Stderr)
	if err != nil {
		return err
	}
	return cmd.Run(ctx, dir, flag.Args())
}
