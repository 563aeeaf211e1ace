package resolve

import "sort"

// DefCollector is the fixed-point resolver core described in spec §2 and
// §4.2/§4.3: it drains the pending imports and macro calls a ModCollector
// deposited into a collectorContext, alternating "resolve imports" and
// "expand macros" passes until neither makes progress.
//
// Grounded on the teacher's gps.solver: both are worklist-driven fixed-point
// engines (solver.unsel / DefCollector.unresolvedImports) that repeatedly
// attempt to make progress on pending work and stop when a full pass
// changes nothing.
type DefCollector struct {
	defMap   *CrateDefMap
	cc       *collectorContext
	expander MacroExpander
	fs       FileSystem
	walker   ItemWalker

	unresolvedImports []*Import
	resolvedImports   []*Import
	pendingMacros     []*MacroCallInfo

	globImports    map[ModuleID][]globEdge
	fromGlobImport [numNamespaces]map[moduleNameKey]struct{}
}

// newDefCollector builds a DefCollector over defMap, draining whatever
// imports/macro calls the given collectorContext already holds. expander,
// fs and walker are the host capabilities spec §6 lists as inputs;
// resolveOne/recordResolvedImport use them only indirectly via
// expandMacros (macroexpand.go).
func newDefCollector(defMap *CrateDefMap, cc *collectorContext, expander MacroExpander, fs FileSystem, walker ItemWalker) *DefCollector {
	dc := &DefCollector{
		defMap:            defMap,
		cc:                cc,
		expander:          expander,
		fs:                fs,
		walker:            walker,
		unresolvedImports: append([]*Import(nil), cc.imports...),
		pendingMacros:     append([]*MacroCallInfo(nil), cc.macroCalls...),
		globImports:       make(map[ModuleID][]globEdge),
	}
	for ns := range dc.fromGlobImport {
		dc.fromGlobImport[ns] = make(map[moduleNameKey]struct{})
	}
	return dc
}

// StillGrowing implements GrowthOracle: a same-crate module can still grow
// iff some pending import still targets it.
func (dc *DefCollector) StillGrowing(crate CrateID, module ModuleID) bool {
	if crate != dc.defMap.Crate {
		return false
	}
	for _, imp := range dc.unresolvedImports {
		if imp.ContainingMod == module {
			return true
		}
	}
	return false
}

// run drives the crate def-map to its fixed point: resolveImports, then
// expandMacros, looping while the macro pass consumes at least one call
// (spec §4.3: "After the macro pass, if any call was consumed, the outer
// loop re-enters import resolution; otherwise the algorithm terminates").
func (dc *DefCollector) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*InvariantError); ok {
				err = ie
				return
			}
			panic(r)
		}
	}()

	dc.sortPendingImports()
	for {
		if cErr := dc.cc.checkCancelled(); cErr != nil {
			return cErr
		}
		if err := dc.resolveImports(); err != nil {
			return err
		}

		consumed, err := dc.expandMacros()
		if err != nil {
			return err
		}
		if !consumed {
			return nil
		}
	}
}

// resolveImports implements spec §4.2's resolution loop: repeat a full
// pass over the pending list until no import changes status.
func (dc *DefCollector) resolveImports() error {
	for {
		if err := dc.cc.checkCancelled(); err != nil {
			return err
		}
		dc.cc.tick("resolve-imports")

		anyChanged := false
		next := dc.unresolvedImports[:0:0]
		for _, imp := range dc.unresolvedImports {
			newStatus, err := dc.resolveOne(imp)
			if err != nil {
				return err
			}

			switch {
			case newStatus.IsResolved():
				imp.Status = newStatus
				if err := dc.recordResolvedImport(imp); err != nil {
					return err
				}
				dc.resolvedImports = append(dc.resolvedImports, imp)
				anyChanged = true
			case newStatus.IsIndeterminate():
				if !imp.Status.Equal(newStatus) {
					imp.Status = newStatus
					dc.recordIndeterminateImport(imp)
					anyChanged = true
				}
				next = append(next, imp)
			default: // Unresolved
				if !imp.Status.Equal(newStatus) {
					imp.Status = newStatus
					anyChanged = true
				}
				next = append(next, imp)
			}
		}
		dc.unresolvedImports = next

		if !anyChanged {
			return nil
		}
	}
}

// resolveOne implements spec §4.2 "Resolve-one".
func (dc *DefCollector) resolveOne(imp *Import) (ImportStatus, error) {
	if imp.IsExternCrate {
		name := imp.UsePath[len(imp.UsePath)-1]
		if dm, mod, ok := dc.defMap.ExternPreludeLookup(name); ok {
			_ = dm
			return ResolvedStatus(NewPerNs(TypesNS, VisItem{
				Path:        mod.Path(),
				Visibility:  Public(),
				IsModOrEnum: true,
			})), nil
		}
		return UnresolvedStatus(), nil
	}

	perNs, reachedFixedPoint, visitedOtherCrate := ResolvePath(dc.defMap, dc, imp.ContainingMod, imp.UsePath, true)
	switch {
	case visitedOtherCrate:
		return ResolvedStatus(perNs), nil
	case reachedFixedPoint:
		return ResolvedStatus(perNs), nil
	case perNs.IsEmpty():
		return UnresolvedStatus(), nil
	default:
		return IndeterminateStatus(perNs), nil
	}
}

// recordIndeterminateImport installs the partial binding an Indeterminate
// status carries so downstream lookups can already see it, per spec §4.2:
// "A bound is recorded so downstream lookups can already see it, but the
// import remains in the pending list".
func (dc *DefCollector) recordIndeterminateImport(imp *Import) {
	if imp.IsGlob || imp.NameInScope == "" {
		return
	}
	dc.installNamedImport(imp, imp.Status.PerNs())
}

// recordResolvedImport implements spec §4.2 "Recording a resolved import".
func (dc *DefCollector) recordResolvedImport(imp *Import) error {
	perNs := imp.Status.PerNs()

	if imp.IsExternCrate {
		if imp.ContainingMod == RootModule && imp.NameInScope != "_" {
			item, ok := perNs.Get(TypesNS)
			if !ok {
				return nil
			}
			targetMod, ok := dc.resolveModuleOf(item)
			if !ok {
				return nil
			}
			dc.defMap.SetExternPreludeEntry(imp.NameInScope, targetMod.Crate(), targetMod.ID())
		}
		return nil
	}

	if !imp.IsGlob {
		dc.installNamedImport(imp, perNs)
		return nil
	}

	targetItem, ok := perNs.Get(TypesNS)
	if !ok || !targetItem.IsModOrEnum {
		// A glob whose target never resolved to a module: soft failure
		// (spec §7); it is skipped without logging.
		return nil
	}
	targetMod, ok := dc.resolveModuleOf(targetItem)
	if !ok {
		return nil
	}

	if imp.IsPrelude {
		dc.defMap.SetPrelude(targetMod.Crate(), targetMod.ID())
		return nil
	}

	containingPath := dc.defMap.Module(imp.ContainingMod).Path()
	snapshot := make(map[string]PerNs, len(targetMod.VisibleItems()))
	for name, items := range targetMod.VisibleItems() {
		filtered := items.FilterVisibility(func(v Visibility) bool { return v.IsVisibleFrom(containingPath) })
		if !filtered.IsEmpty() {
			snapshot[name] = filtered
		}
	}

	sameCrate := targetMod.Crate() == dc.defMap.Crate
	if err := dc.update(imp.ContainingMod, snapshot, imp.Visibility, globImport); err != nil {
		return err
	}
	if sameCrate {
		dc.addGlobEdge(targetMod.ID(), imp.ContainingMod, imp.Visibility)
	}
	return nil
}

// installNamedImport implements the non-glob branch of "Recording a
// resolved import": install with the import's own visibility, lowered to
// Invisible when the target isn't actually visible from containingMod.
//
// `use T as _;` is handled here too (spec §4.2's unnamed-trait-import
// note), since it shares the same "named, not glob" shape but binds no
// name.
func (dc *DefCollector) installNamedImport(imp *Import, perNs PerNs) {
	if imp.NameInScope == "" {
		typesItem, ok := perNs.Get(TypesNS)
		if !ok {
			return
		}
		containingPath := dc.defMap.Module(imp.ContainingMod).Path()
		vis := imp.Visibility
		if !typesItem.Visibility.IsVisibleFrom(containingPath) {
			vis = Invisible()
		}
		dc.defMap.Module(imp.ContainingMod).AddUnnamedTraitImport(typesItem.Path, vis)
		return
	}

	containingPath := dc.defMap.Module(imp.ContainingMod).Path()
	installed := perNs.MapItems(func(item VisItem) VisItem {
		vis := imp.Visibility
		if !item.Visibility.IsVisibleFrom(containingPath) {
			vis = Invisible()
		}
		return item.WithVisibility(vis)
	})
	dc.pushResolutionFromImport(imp.ContainingMod, imp.NameInScope, installed, namedImport)
}

// resolveModuleOf turns a types-namespace VisItem that claims IsModOrEnum
// into the ModData it refers to, crossing into a dependency's CrateDefMap
// when necessary.
func (dc *DefCollector) resolveModuleOf(item VisItem) (*ModData, bool) {
	if !item.IsModOrEnum {
		return nil, false
	}
	if item.Path.Crate() == dc.defMap.Crate {
		return dc.defMap.ModuleByPath(item.Path)
	}
	dep, ok := dc.defMap.AllDependenciesDefMaps[item.Path.Crate()]
	if !ok {
		return nil, false
	}
	return dep.ModuleByPath(item.Path)
}

// sortPendingImports implements spec §4.2's glob-import sorting
// optimization: existing-name imports first, then non-glob before glob,
// then deeper modules first.
func (dc *DefCollector) sortPendingImports() {
	imports := dc.unresolvedImports
	hasExisting := func(imp *Import) bool {
		if imp.NameInScope == "" {
			return false
		}
		_, ok := dc.defMap.Module(imp.ContainingMod).VisibleItem(imp.NameInScope)
		return ok
	}
	sort.SliceStable(imports, func(i, j int) bool {
		a, b := imports[i], imports[j]
		if ea, eb := hasExisting(a), hasExisting(b); ea != eb {
			return ea
		}
		if a.IsGlob != b.IsGlob {
			return !a.IsGlob
		}
		da := len(dc.defMap.Module(a.ContainingMod).Path().Segments())
		db := len(dc.defMap.Module(b.ContainingMod).Path().Segments())
		return da > db
	})
}
