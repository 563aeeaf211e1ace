package resolve

// GrowthOracle reports whether a module's visibleItems can still gain
// entries in the current build — either because it belongs to this crate
// and still has imports pending against it, or (trivially false) because
// it belongs to another, already-sealed crate. Path resolution (spec
// §4.1) consults this to decide whether a failed lookup has reached fixed
// point.
//
// DefCollector is the only real implementation; it is split out as an
// interface so path resolution can be exercised in isolation from the
// full fixed-point loop (resolve/pathresolve_test.go does exactly that).
type GrowthOracle interface {
	StillGrowing(crate CrateID, module ModuleID) bool
}

type sealedOracle struct{}

func (sealedOracle) StillGrowing(CrateID, ModuleID) bool { return false }

// SealedOracle is a GrowthOracle for contexts with no in-flight imports at
// all (e.g. resolving purely within dependency def-maps, which are always
// sealed per spec §4.1: "another crate").
func SealedOracle() GrowthOracle { return sealedOracle{} }

const (
	kwCrate = "crate"
	kwSelf  = "self"
	kwSuper = "super"
)

// ResolvePath implements spec §4.1. Given (originMod, path, withInvisibleItems),
// it returns the PerNs bound to the path's final segment, whether that
// result is final (reachedFixedPoint), and whether resolution ever
// crossed into a dependency crate (visitedOtherCrate).
func ResolvePath(defMap *CrateDefMap, oracle GrowthOracle, originMod ModuleID, path []string, withInvisibleItems bool) (perNs PerNs, reachedFixedPoint bool, visitedOtherCrate bool) {
	if len(path) == 0 {
		return PerNs{}, true, false
	}

	curMap := defMap
	cur := defMap.Module(originMod)
	idx := 0

	// Consume crate/self/super keywords from the path prefix (spec §4.1:
	// "crate, self, super are keywords consumed from the path prefix
	// before any lookup").
	consumedKeyword := false
	for idx < len(path) {
		switch path[idx] {
		case kwCrate:
			cur = curMap.Root()
			idx++
			consumedKeyword = true
		case kwSelf:
			idx++
			consumedKeyword = true
		case kwSuper:
			parentID, ok := cur.Parent()
			if !ok {
				// `super` at the crate root: no further resolution is
				// possible, and it never will be (the tree shape is
				// fixed), so this is a final failure.
				return PerNs{}, true, false
			}
			cur = curMap.Module(parentID)
			idx++
			consumedKeyword = true
		default:
			goto keywordsDone
		}
	}
keywordsDone:

	if idx >= len(path) {
		// The path was exactly some run of crate/self/super: the result
		// is a direct reference to `cur` itself.
		return NewPerNs(TypesNS, VisItem{Path: cur.Path(), Visibility: Public(), IsModOrEnum: true}), true, false
	}

	var result PerNs
	if consumedKeyword {
		// The next segment is looked up directly in cur's own scope (spec
		// §4.1: "self/super chain" takes priority over extern
		// prelude/prelude, which only apply to an un-prefixed segment 0).
		name := path[idx]
		item, ok := cur.VisibleItem(name)
		if !ok {
			if oracle.StillGrowing(curMap.Crate, cur.ID()) {
				return PerNs{}, false, false
			}
			return PerNs{}, true, false
		}
		result = item
	} else {
		name := path[idx]
		own, _ := cur.VisibleItem(name)
		result = own
		if _, externMod, ok := curMap.ExternPreludeLookup(name); ok {
			result = result.Or(NewPerNs(TypesNS, VisItem{Path: externMod.Path(), Visibility: Public(), IsModOrEnum: true}))
		}
		if _, preludeMod, ok := curMap.Prelude(); ok {
			if item, ok := preludeMod.VisibleItem(name); ok {
				result = result.Or(item)
			}
		}
		if result.IsEmpty() {
			if oracle.StillGrowing(curMap.Crate, cur.ID()) {
				return PerNs{}, false, false
			}
			return PerNs{}, true, false
		}
	}
	idx++

	if !withInvisibleItems {
		result = result.FilterVisibility(func(v Visibility) bool { return !v.IsInvisible() && !v.IsCfgDisabled() })
	}

	// Each subsequent segment requires the previous result's types to be
	// isModOrEnum (spec §4.1).
	for idx < len(path) {
		typesItem, ok := result.Get(TypesNS)
		if !ok || !typesItem.IsModOrEnum {
			return PerNs{}, true, false
		}

		nextMap := curMap
		if typesItem.Path.Crate() != curMap.Crate {
			dep, ok := curMap.AllDependenciesDefMaps[typesItem.Path.Crate()]
			if !ok {
				return PerNs{}, true, visitedOtherCrate
			}
			nextMap = dep
			visitedOtherCrate = true
		}

		nextMod, ok := nextMap.ModuleByPath(typesItem.Path)
		if !ok {
			panic(newInvariantError(DanglingModOrEnum, typesItem.Path, "path resolution"))
		}

		name := path[idx]
		item, ok := nextMod.VisibleItem(name)
		if !ok {
			if !visitedOtherCrate && oracle.StillGrowing(nextMap.Crate, nextMod.ID()) {
				return PerNs{}, false, visitedOtherCrate
			}
			return PerNs{}, true, visitedOtherCrate
		}
		if !withInvisibleItems {
			item = item.FilterVisibility(func(v Visibility) bool { return !v.IsInvisible() && !v.IsCfgDisabled() })
		}
		result = item
		curMap, cur = nextMap, nextMod
		idx++
	}

	return result, true, visitedOtherCrate
}
