package resolve

// seedExternPrelude implements spec §4.5: every direct dependency becomes
// an extern-prelude entry under its declared name, except that `#![no_std]`
// leaves out `std` and `#![no_core]` leaves out both `std` and `core`
// (their DefMaps stay registered in the dependency maps either way).
//
// The implicit `extern crate std`/`extern crate core` adds no binding of
// its own: from the 2018 edition onward its `_` binding is skipped, and in
// older editions its name is already in the extern prelude from the
// dependency list. No import for it is recorded in any module.
//
// Grounded on the teacher's SolveMeta.sortRoots lockfile prefetch step: a
// single pre-pass over a (already resolved) dependency list that has to
// run once, before the main worklist starts, rather than as one more
// worklist item.
func seedExternPrelude(defMap *CrateDefMap, crate Crate) {
	attrs := crate.Attrs()
	for _, dep := range crate.Dependencies() {
		defMap.AllDependenciesDefMaps[dep.ID] = dep.DefMap
		for id, m := range dep.DefMap.AllDependenciesDefMaps {
			if _, ok := defMap.AllDependenciesDefMaps[id]; !ok {
				defMap.AllDependenciesDefMaps[id] = m
			}
		}
		defMap.DirectDependenciesDefMaps[dep.ExternCrateName] = dep.DefMap
		switch {
		case dep.ExternCrateName == "std" && (attrs.NoStd || attrs.NoCore),
			dep.ExternCrateName == "core" && attrs.NoCore:
			continue
		}
		defMap.SetExternPreludeEntry(dep.ExternCrateName, dep.ID, RootModule)
	}

	edition := crate.Edition()
	for _, implicit := range implicitExternCrates(attrs) {
		dep, ok := findDependencyByName(crate, implicit)
		if !ok {
			continue
		}
		name := implicit
		if edition.AtLeast2018() {
			name = "_"
		}
		if name == "_" {
			// `_`-bound entries exist so the crate's items are reachable
			// without a name occupying the prelude's namespace; they are
			// deliberately not overwritten by a later explicit `extern
			// crate core as _;` since nothing could ever look them up by
			// name to notice the difference. Skip seeding at all: spec
			// §4.5 only requires the name-bound form be reachable.
			continue
		}
		if _, already := defMap.ExternPreludeLookup(name); already {
			continue
		}
		defMap.AllDependenciesDefMaps[dep.ID] = dep.DefMap
		defMap.SetExternPreludeEntry(name, dep.ID, RootModule)
	}
}

// implicitExternCrates returns which of {std, core} are implicitly in
// scope given the crate root's attributes: plain crates get std (which
// re-exports core), `#![no_std]` crates get core unless `#![no_core]` is
// also present, and `#![no_core]` alone gets neither.
func implicitExternCrates(attrs RootAttrs) []string {
	switch {
	case attrs.NoCore:
		return nil
	case attrs.NoStd:
		return []string{"core"}
	default:
		return []string{"std"}
	}
}

func findDependencyByName(crate Crate, name string) (Dependency, bool) {
	for _, dep := range crate.Dependencies() {
		if dep.ExternCrateName == name {
			return dep, true
		}
	}
	return Dependency{}, false
}

// selectInitialPrelude implements spec §4.6: among the crate's direct
// dependencies, the first (in declaration order) that itself exposes a
// prelude module wins — but a later dependency can still overwrite it, so a
// crate depending on both core and the standard library ends up with the
// standard library's prelude. Keep scanning and overwriting through every
// dependency rather than stopping at the first match; an explicit
// `#[prelude_import] use dep::prelude::*;` can still overwrite this seed
// later, through the ordinary "Prelude glob" import-recording path in
// defcollector.go.
func selectInitialPrelude(defMap *CrateDefMap, crate Crate) {
	for _, dep := range crate.Dependencies() {
		if depCrate, depMod, ok := dep.DefMap.Prelude(); ok {
			_ = depCrate
			defMap.SetPrelude(depMod.Crate(), depMod.ID())
		}
	}
}
