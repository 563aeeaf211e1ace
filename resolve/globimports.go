package resolve

// importKind distinguishes a NAMED single-item import from a GLOB import
// for the purposes of the shadowing table in spec §4.2 "Update and
// propagation".
type importKind uint8

const (
	namedImport importKind = iota
	globImport
)

type globEdge struct {
	importingMod ModuleID
	visibility   Visibility
}

type moduleNameKey struct {
	module ModuleID
	name   string
}

// Narrow returns the less permissive of a and b. It is the dual of Widen,
// used to cap a glob-imported item's visibility at the declaring import's
// own visibility (a `pub(crate) use m::*;` cannot re-export something as
// more than pub(crate), however public it is inside m).
func Narrow(a, b Visibility) Visibility {
	if a.IsStrictlyMorePermissive(b) {
		return b
	}
	return a
}

// isFromGlob reports whether (module, name)'s current binding in ns was
// installed by a glob import.
func (dc *DefCollector) isFromGlob(ns Namespace, module ModuleID, name string) bool {
	_, ok := dc.fromGlobImport[ns][moduleNameKey{module, name}]
	return ok
}

func (dc *DefCollector) markFromGlob(ns Namespace, module ModuleID, name string) {
	dc.fromGlobImport[ns][moduleNameKey{module, name}] = struct{}{}
}

func (dc *DefCollector) unmarkFromGlob(ns Namespace, module ModuleID, name string) {
	delete(dc.fromGlobImport[ns], moduleNameKey{module, name})
}

// pushResolutionFromImport installs newPerNs under name in module, applying
// the NAMED-vs-GLOB shadowing table from spec §4.2. Returns whether the
// binding actually changed (used to decide whether to propagate further).
func (dc *DefCollector) pushResolutionFromImport(module ModuleID, name string, newPerNs PerNs, kind importKind) bool {
	mod := dc.defMap.Module(module)
	existing, _ := mod.VisibleItem(name)

	var merged PerNs
	changed := false
	for ns := Namespace(0); ns < numNamespaces; ns++ {
		newItem, newHas := newPerNs.Get(ns)
		existingItem, existingHas := existing.Get(ns)
		if !newHas {
			if existingHas {
				merged.set(ns, &existingItem)
			}
			continue
		}

		existingIsGlob := existingHas && dc.isFromGlob(ns, module, name)
		install := false
		switch {
		case !existingHas:
			install = true
		case kind == namedImport && !existingIsGlob:
			install = newItem.Visibility.IsStrictlyMorePermissive(existingItem.Visibility)
		case kind == namedImport && existingIsGlob:
			install = true
		case kind == globImport && !existingIsGlob:
			install = false
		case kind == globImport && existingIsGlob:
			install = newItem.Visibility.IsStrictlyMorePermissive(existingItem.Visibility)
		}

		if install {
			item := newItem
			merged.set(ns, &item)
			changed = true
			if kind == globImport {
				dc.markFromGlob(ns, module, name)
			} else {
				dc.unmarkFromGlob(ns, module, name)
			}
		} else {
			merged.set(ns, &existingItem)
		}
	}

	mod.setVisibleItem(name, merged)
	return changed
}

// update installs each (name, perNs) pair from resolutions into module,
// capping every item's visibility at cap, then — if anything actually
// changed — replays the same names through every module that globs
// module, recursively (spec §4.2 "Update and propagation").
func (dc *DefCollector) update(module ModuleID, resolutions map[string]PerNs, cap Visibility, kind importKind) error {
	return dc.updateAtDepth(module, resolutions, cap, kind, 0)
}

func (dc *DefCollector) updateAtDepth(module ModuleID, resolutions map[string]PerNs, cap Visibility, kind importKind, depth int) error {
	if depth > dc.cc.maxGlobDepth {
		return newInvariantError(GlobDepthExceeded, dc.defMap.Module(module).Path(), "glob import propagation")
	}

	var changedNames []string
	for name, perNs := range resolutions {
		capped := perNs.MapItems(func(item VisItem) VisItem {
			return item.WithVisibility(Narrow(item.Visibility, cap))
		})
		if dc.pushResolutionFromImport(module, name, capped, kind) {
			changedNames = append(changedNames, name)
		}
	}
	if len(changedNames) == 0 {
		return nil
	}

	mod := dc.defMap.Module(module)
	for _, edge := range dc.globImports[module] {
		importerPath := dc.defMap.Module(edge.importingMod).Path()
		sub := make(map[string]PerNs, len(changedNames))
		for _, name := range changedNames {
			cur, _ := mod.VisibleItem(name)
			cur = cur.FilterVisibility(func(v Visibility) bool { return v.IsVisibleFrom(importerPath) })
			if !cur.IsEmpty() {
				sub[name] = cur
			}
		}
		if len(sub) == 0 {
			continue
		}
		if err := dc.updateAtDepth(edge.importingMod, sub, edge.visibility, globImport, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// addGlobEdge records the reverse edge "importingMod globs source", used
// by update's propagation above.
func (dc *DefCollector) addGlobEdge(source, importingMod ModuleID, vis Visibility) {
	dc.globImports[source] = append(dc.globImports[source], globEdge{importingMod: importingMod, visibility: vis})
}
