package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/cratemap/cratemap/resolve"
)

// printSummary renders a crate's built module tree and housekeeping lists
// to stdout: one line per module with its item count, then the crate's
// missed-file list, if any.
func printSummary(defMap *resolve.CrateDefMap) {
	modules := defMap.AllModules()
	paths := make([]string, len(modules))
	for i, m := range modules {
		paths[i] = m.Path().String()
	}
	order := make([]int, len(modules))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return paths[order[i]] < paths[order[j]] })

	for _, i := range order {
		m := modules[i]
		fmt.Fprintf(os.Stdout, "%s (%d items, %d children)\n", m.Path(), len(m.VisibleItems()), len(m.ChildModules()))
	}

	if missed := defMap.MissedFiles(); len(missed) > 0 {
		fmt.Fprintln(os.Stdout, "missed files:")
		for _, f := range missed {
			fmt.Fprintf(os.Stdout, "  %s\n", f)
		}
	}
}
