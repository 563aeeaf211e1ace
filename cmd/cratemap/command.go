package main

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/cratemap/cratemap"
)

// command mirrors the teacher's cmd/dep command interface (Name/Args/
// Register/Run): this demo only ever dispatches the one build operation,
// but keeping the shape means a second operation (e.g. a "check" that only
// validates invariants without printing a summary) slots in as another
// command rather than a second flat main/run pair.
type command interface {
	Name() string
	Args() string
	Register(fs *flag.FlagSet)
	Run(ctx *cratemap.Ctx, dir string, args []string) error
}

// buildCommand is the "cratemap build" operation: load a directory of
// testfixture crate specs, build the root crate's CrateDefMap, print a
// summary.
type buildCommand struct {
	root    string
	verbose bool
}

func (c *buildCommand) Name() string { return "build" }
func (c *buildCommand) Args() string { return "[-r root.yaml] [-v]" }

func (c *buildCommand) Register(fs *flag.FlagSet) {
	fs.StringVarP(&c.root, "root", "r", "crate.yaml", "root crate spec file, relative to --dir")
	fs.BoolVarP(&c.verbose, "verbose", "v", false, "enable per-stage progress logging")
}

func (c *buildCommand) Run(ctx *cratemap.Ctx, dir string, args []string) error {
	ctx.Config.Verbose = ctx.Config.Verbose || c.verbose

	driver := cratemap.NewDriver(ctx, dir)
	defMap, err := driver.Build(context.Background(), c.root)
	if err != nil {
		return err
	}

	printSummary(defMap)
	return nil
}
