package resolve

import (
	"context"
	"testing"
)

func newTestDefCollector(t *testing.T, opts *Options) (*DefCollector, *collectorContext, *CrateDefMap) {
	t.Helper()
	defMap := NewCrateDefMap(1)
	cc := newCollectorContext(context.Background(), nil, opts)
	t.Cleanup(cc.close)
	return newDefCollector(defMap, cc, nil, nil, nil), cc, defMap
}

func TestPushResolutionNamedIntoEmptyIsNotGlob(t *testing.T) {
	dc, _, defMap := newTestDefCollector(t, nil)
	target := defMap.interner.Child(defMap.Root().Path(), "T")
	item := NewPerNs(TypesNS, VisItem{Path: target, Visibility: Public(), IsModOrEnum: true})

	changed := dc.pushResolutionFromImport(RootModule, "T", item, namedImport)
	if !changed {
		t.Fatalf("installing into an empty slot should report changed")
	}
	if dc.isFromGlob(TypesNS, RootModule, "T") {
		t.Fatalf("a named import must never be marked fromGlob")
	}
	got, ok := defMap.Root().VisibleItem("T")
	if !ok || got.slots[TypesNS].Path.String() != target.String() {
		t.Fatalf("expected T bound to the new target")
	}
}

func TestPushResolutionGlobIntoEmptyIsMarkedGlob(t *testing.T) {
	dc, _, defMap := newTestDefCollector(t, nil)
	target := defMap.interner.Child(defMap.Root().Path(), "U")
	item := NewPerNs(ValuesNS, VisItem{Path: target, Visibility: Public()})

	changed := dc.pushResolutionFromImport(RootModule, "U", item, globImport)
	if !changed {
		t.Fatalf("installing into an empty slot should report changed")
	}
	if !dc.isFromGlob(ValuesNS, RootModule, "U") {
		t.Fatalf("a glob import must be marked fromGlob")
	}
}

func TestPushResolutionNamedOverridesExistingGlob(t *testing.T) {
	dc, _, defMap := newTestDefCollector(t, nil)
	globTarget := defMap.interner.Child(defMap.Root().Path(), "FromGlob")
	namedTarget := defMap.interner.Child(defMap.Root().Path(), "FromNamed")

	dc.pushResolutionFromImport(RootModule, "V", NewPerNs(ValuesNS, VisItem{Path: globTarget, Visibility: Public()}), globImport)
	if !dc.isFromGlob(ValuesNS, RootModule, "V") {
		t.Fatalf("setup: V should be glob-sourced before the named import arrives")
	}

	// A named import always wins over an existing glob-sourced binding,
	// regardless of relative visibility permissiveness (spec §4.2's
	// shadowing table).
	changed := dc.pushResolutionFromImport(RootModule, "V", NewPerNs(ValuesNS, VisItem{Path: namedTarget, Visibility: Restricted(defMap.Root().Path())}), namedImport)
	if !changed {
		t.Fatalf("a named import overriding a glob-sourced binding should report changed")
	}
	if dc.isFromGlob(ValuesNS, RootModule, "V") {
		t.Fatalf("V must no longer be marked fromGlob once a named import overrides it")
	}
	got, _ := defMap.Root().VisibleItem("V")
	item, _ := got.Get(ValuesNS)
	if item.Path.String() != namedTarget.String() {
		t.Fatalf("expected V rebound to the named import's target, got %q", item.Path.String())
	}
}

func TestPushResolutionGlobNeverOverridesExistingNamed(t *testing.T) {
	dc, _, defMap := newTestDefCollector(t, nil)
	namedTarget := defMap.interner.Child(defMap.Root().Path(), "FromNamed")
	globTarget := defMap.interner.Child(defMap.Root().Path(), "FromGlob")

	dc.pushResolutionFromImport(RootModule, "W", NewPerNs(ValuesNS, VisItem{Path: namedTarget, Visibility: Public()}), namedImport)

	// Even a more-permissive glob target must not shadow an existing named
	// binding.
	changed := dc.pushResolutionFromImport(RootModule, "W", NewPerNs(ValuesNS, VisItem{Path: globTarget, Visibility: Public()}), globImport)
	if changed {
		t.Fatalf("a glob import must never override an existing named binding")
	}
	got, _ := defMap.Root().VisibleItem("W")
	item, _ := got.Get(ValuesNS)
	if item.Path.String() != namedTarget.String() {
		t.Fatalf("expected W to remain bound to the named target, got %q", item.Path.String())
	}
}

func TestPushResolutionGlobOverridesGlobOnlyWhenMorePermissive(t *testing.T) {
	dc, _, defMap := newTestDefCollector(t, nil)
	weakerTarget := defMap.interner.Child(defMap.Root().Path(), "Weaker")
	strongerTarget := defMap.interner.Child(defMap.Root().Path(), "Stronger")

	dc.pushResolutionFromImport(RootModule, "X", NewPerNs(ValuesNS, VisItem{Path: weakerTarget, Visibility: Restricted(defMap.Root().Path())}), globImport)

	// A second glob with a LESS permissive visibility must not displace the
	// first.
	changed := dc.pushResolutionFromImport(RootModule, "X", NewPerNs(ValuesNS, VisItem{Path: strongerTarget, Visibility: Invisible()}), globImport)
	if changed {
		t.Fatalf("a less permissive glob must not override an existing glob binding")
	}

	// A more permissive glob must win.
	changed = dc.pushResolutionFromImport(RootModule, "X", NewPerNs(ValuesNS, VisItem{Path: strongerTarget, Visibility: Public()}), globImport)
	if !changed {
		t.Fatalf("a more permissive glob should override an existing glob binding")
	}
	got, _ := defMap.Root().VisibleItem("X")
	item, _ := got.Get(ValuesNS)
	if item.Path.String() != strongerTarget.String() {
		t.Fatalf("expected X rebound to the more permissive glob target, got %q", item.Path.String())
	}
}

func TestUpdateAtDepthExceedsMaxGlobDepth(t *testing.T) {
	dc, _, defMap := newTestDefCollector(t, &Options{MaxGlobDepth: 2})
	resolutions := map[string]PerNs{
		"Y": NewPerNs(ValuesNS, VisItem{Path: defMap.Root().Path(), Visibility: Public()}),
	}

	err := dc.updateAtDepth(RootModule, resolutions, Public(), globImport, 3)
	if err == nil {
		t.Fatalf("expected a GlobDepthExceeded error past the configured max depth")
	}
	ie, ok := err.(*InvariantError)
	if !ok || ie.Kind != GlobDepthExceeded {
		t.Fatalf("expected *InvariantError{Kind: GlobDepthExceeded}, got %#v", err)
	}
}

func TestUpdatePropagatesThroughGlobEdge(t *testing.T) {
	dc, _, defMap := newTestDefCollector(t, nil)
	root := defMap.Root()
	source := defMap.NewModule(root, "source", Public(), 0, "")
	importer := defMap.NewModule(root, "importer", Public(), 0, "")

	dc.addGlobEdge(source.ID(), importer.ID(), Public())

	target := defMap.interner.Child(source.Path(), "Z")
	resolutions := map[string]PerNs{
		"Z": NewPerNs(ValuesNS, VisItem{Path: target, Visibility: Public()}),
	}
	if err := dc.update(source.ID(), resolutions, Public(), namedImport); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, ok := importer.VisibleItem("Z")
	if !ok {
		t.Fatalf("expected Z to propagate from source into importer via the glob edge")
	}
	item, ok := got.Get(ValuesNS)
	if !ok || item.Path.String() != target.String() {
		t.Fatalf("expected Z in importer bound to source's Z target, got %+v ok=%v", item, ok)
	}
	if !dc.isFromGlob(ValuesNS, importer.ID(), "Z") {
		t.Fatalf("Z installed in importer via glob propagation should be marked fromGlob")
	}
}
