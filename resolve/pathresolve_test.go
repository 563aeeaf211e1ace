package resolve

import "testing"

// growingUntil is a GrowthOracle stub that reports StillGrowing for a fixed
// set of (crate, module) pairs, letting tests distinguish "indeterminate,
// try again later" from "final failure" without wiring a full DefCollector.
type growingUntil struct {
	growing map[ModuleID]bool
}

func (g growingUntil) StillGrowing(_ CrateID, mod ModuleID) bool { return g.growing[mod] }

func newTestCrate(crate CrateID) *CrateDefMap {
	return NewCrateDefMap(crate)
}

func TestResolvePathEmptyPath(t *testing.T) {
	dm := newTestCrate(1)
	perNs, final, other := ResolvePath(dm, SealedOracle(), RootModule, nil, true)
	if !final || other {
		t.Fatalf("empty path should resolve as final, no cross-crate hop")
	}
	if !perNs.IsEmpty() {
		t.Fatalf("empty path should resolve to an empty PerNs")
	}
}

func TestResolvePathCrateKeywordAlone(t *testing.T) {
	dm := newTestCrate(1)
	perNs, final, _ := ResolvePath(dm, SealedOracle(), RootModule, []string{"crate"}, true)
	if !final {
		t.Fatalf("a pure keyword path must resolve immediately")
	}
	item, ok := perNs.Get(TypesNS)
	if !ok || item.Path.String() != "crate" {
		t.Fatalf("crate keyword alone should resolve to the crate root itself, got %+v", item)
	}
}

func TestResolvePathSuperAtRootIsFinalFailure(t *testing.T) {
	dm := newTestCrate(1)
	perNs, final, other := ResolvePath(dm, SealedOracle(), RootModule, []string{"super", "x"}, true)
	if !final || other {
		t.Fatalf("super at the crate root has no further resolution, ever, so must be a final failure")
	}
	if !perNs.IsEmpty() {
		t.Fatalf("expected an empty result")
	}
}

func TestResolvePathCrateThenChild(t *testing.T) {
	dm := newTestCrate(1)
	root := dm.Root()
	a := dm.NewModule(root, "a", Public(), 0, "")
	a.AddVisibleItem("X", NewPerNs(ValuesNS, VisItem{Path: a.Path(), Visibility: Public()}))

	perNs, final, other := ResolvePath(dm, SealedOracle(), RootModule, []string{"crate", "a", "X"}, true)
	if !final || other {
		t.Fatalf("fully-resolvable same-crate path should be final with no cross-crate hop")
	}
	item, ok := perNs.Get(ValuesNS)
	if !ok || item.Path.String() != a.Path().String() {
		t.Fatalf("expected X bound to a's path, got %+v ok=%v", item, ok)
	}
}

func TestResolvePathUniformPathsBareSegmentUsesOwnScope(t *testing.T) {
	// A bare first segment resolves in the originating module's own scope,
	// not the crate root (Rust 2018 "uniform paths"): a module with no
	// child of that name must fail even though a sibling module of that
	// name exists elsewhere in the tree.
	dm := newTestCrate(1)
	root := dm.Root()
	a := dm.NewModule(root, "a", Public(), 0, "")
	dm.NewModule(root, "b", Public(), 0, "")

	perNs, final, _ := ResolvePath(dm, SealedOracle(), a.ID(), []string{"b", "X"}, true)
	if !final {
		t.Fatalf("a sealed oracle should make a failed bare lookup final immediately")
	}
	if !perNs.IsEmpty() {
		t.Fatalf("bare segment b must not resolve from a's own scope, got %+v", perNs)
	}
}

func TestResolvePathUsesExternPreludeForBareSegment(t *testing.T) {
	dm := newTestCrate(1)
	dep := newTestCrate(2)
	depRoot := dep.Root()
	depRoot.AddVisibleItem("Y", NewPerNs(ValuesNS, VisItem{Path: depRoot.Path(), Visibility: Public()}))

	dm.AllDependenciesDefMaps[2] = dep
	dm.SetExternPreludeEntry("dep_crate", 2, RootModule)

	perNs, final, other := ResolvePath(dm, SealedOracle(), RootModule, []string{"dep_crate", "Y"}, true)
	if !final || !other {
		t.Fatalf("crossing into a dependency crate should be final and flagged visitedOtherCrate")
	}
	item, ok := perNs.Get(ValuesNS)
	if !ok || item.Path.String() != depRoot.Path().String() {
		t.Fatalf("expected Y resolved from the dependency crate's root, got %+v ok=%v", item, ok)
	}
}

func TestResolvePathIndeterminateWhileStillGrowing(t *testing.T) {
	dm := newTestCrate(1)
	root := dm.Root()

	oracle := growingUntil{growing: map[ModuleID]bool{RootModule: true}}
	_, final, _ := ResolvePath(dm, oracle, RootModule, []string{"NotYetImported"}, true)
	if final {
		t.Fatalf("a missing name in a still-growing module must not be a final failure")
	}

	// Once the oracle reports sealed, the same failed lookup becomes final.
	sealed := growingUntil{}
	_, final, _ = ResolvePath(dm, sealed, RootModule, []string{"NotYetImported"}, true)
	if !final {
		t.Fatalf("a missing name in a sealed module must be a final failure")
	}
	_ = root
}

func TestResolvePathWithInvisibleItemsFiltering(t *testing.T) {
	dm := newTestCrate(1)
	root := dm.Root()
	target := dm.interner.Child(root.Path(), "Hidden")
	root.AddVisibleItem("Hidden", NewPerNs(ValuesNS, VisItem{Path: target, Visibility: Invisible()}))

	// withInvisibleItems=true surfaces the binding even though it is not
	// public; withInvisibleItems=false filters it out.
	perNs, _, _ := ResolvePath(dm, SealedOracle(), RootModule, []string{"Hidden"}, true)
	if perNs.IsEmpty() {
		t.Fatalf("withInvisibleItems=true should surface an invisible binding")
	}

	perNs, final, _ := ResolvePath(dm, SealedOracle(), RootModule, []string{"Hidden"}, false)
	if !final {
		t.Fatalf("expected a final result either way")
	}
	if item, ok := perNs.Get(ValuesNS); ok && !item.Visibility.IsInvisible() {
		t.Fatalf("expected the filtered item dropped or still marked invisible, got %+v", item)
	}
}

func TestResolvePathMultiSegmentRequiresModOrEnum(t *testing.T) {
	dm := newTestCrate(1)
	root := dm.Root()
	// A plain value (not IsModOrEnum) can't be the non-final segment of a
	// multi-segment path.
	root.AddVisibleItem("NotAModule", NewPerNs(ValuesNS, VisItem{Path: root.Path(), Visibility: Public()}))

	_, final, other := ResolvePath(dm, SealedOracle(), RootModule, []string{"NotAModule", "X"}, true)
	if !final || other {
		t.Fatalf("a non-mod-or-enum intermediate segment is a final failure")
	}
}
