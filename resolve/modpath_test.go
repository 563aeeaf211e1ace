package resolve

import "testing"

func TestPathInternerCanonicalizesEqualSegments(t *testing.T) {
	in := newPathInterner(CrateID(1))
	a := in.FromSegments([]string{"a", "b"})
	b := in.FromSegments([]string{"a", "b"})
	if a.data != b.data {
		t.Fatalf("interning the same segments twice produced different *modPathData")
	}
	if !a.Equal(b) {
		t.Fatalf("a.Equal(b) should hold for interned-equal paths")
	}
}

func TestModPathEqualAcrossInterners(t *testing.T) {
	in1 := newPathInterner(CrateID(1))
	in2 := newPathInterner(CrateID(1))
	a := in1.FromSegments([]string{"x"})
	b := in2.FromSegments([]string{"x"})
	if a.data == b.data {
		t.Fatalf("different interners should not canonicalize to the same pointer")
	}
	if !a.Equal(b) {
		t.Fatalf("Equal must fall back to structural comparison across interners")
	}
}

func TestModPathIsSubPathOf(t *testing.T) {
	in := newPathInterner(CrateID(1))
	root := in.CrateRoot()
	a := in.Child(root, "a")
	ab := in.Child(a, "b")

	if !a.IsSubPathOf(ab) {
		t.Fatalf("a should be a sub-path of a::b")
	}
	if ab.IsSubPathOf(a) {
		t.Fatalf("a::b should not be a sub-path of a")
	}
	if !root.IsSubPathOf(ab) {
		t.Fatalf("crate root is a prefix of every path in the same crate")
	}
}

func TestModPathStringAndName(t *testing.T) {
	in := newPathInterner(CrateID(1))
	root := in.CrateRoot()
	if got := root.String(); got != "crate" {
		t.Fatalf("root.String() = %q, want %q", got, "crate")
	}
	a := in.Child(root, "a")
	ab := in.Child(a, "b")
	if got := ab.String(); got != "crate::a::b" {
		t.Fatalf("ab.String() = %q, want %q", got, "crate::a::b")
	}
	if got := ab.Name(); got != "b" {
		t.Fatalf("ab.Name() = %q, want %q", got, "b")
	}
	if got := ab.Parent(in); got.String() != "crate::a" {
		t.Fatalf("ab.Parent() = %q, want %q", got.String(), "crate::a")
	}
}

func TestVisibilityWideningLattice(t *testing.T) {
	in := newPathInterner(CrateID(1))
	root := in.CrateRoot()
	a := in.Child(root, "a")
	ab := in.Child(a, "b")

	outer := Restricted(a)
	inner := Restricted(ab)

	if !outer.IsStrictlyMorePermissive(inner) {
		t.Fatalf("Restricted(a) should be strictly more permissive than Restricted(a::b)")
	}
	if inner.IsStrictlyMorePermissive(outer) {
		t.Fatalf("Restricted(a::b) must not be considered more permissive than Restricted(a)")
	}
	if Widen(inner, outer) != outer {
		t.Fatalf("Widen should pick the outer (more permissive) Restricted value")
	}
	if !Public().IsStrictlyMorePermissive(outer) {
		t.Fatalf("Public must outrank any Restricted visibility")
	}
	if CfgDisabled().IsStrictlyMorePermissive(Invisible()) {
		t.Fatalf("CfgDisabled must not outrank Invisible")
	}
}

func TestVisibilityIsVisibleFrom(t *testing.T) {
	in := newPathInterner(CrateID(1))
	root := in.CrateRoot()
	a := in.Child(root, "a")
	ab := in.Child(a, "b")

	vis := Restricted(a)
	if !vis.IsVisibleFrom(ab) {
		t.Fatalf("an item restricted to a must be visible from a descendant a::b")
	}
	if vis.IsVisibleFrom(root) {
		t.Fatalf("an item restricted to a must not be visible from the crate root")
	}
	if Invisible().IsVisibleFrom(ab) {
		t.Fatalf("Invisible must never be visible")
	}
}

func TestPerNsUpdateKeepsMorePermissive(t *testing.T) {
	in := newPathInterner(CrateID(1))
	root := in.CrateRoot()
	target := in.Child(root, "T")

	weak := NewPerNs(TypesNS, VisItem{Path: target, Visibility: Restricted(root)})
	strong := NewPerNs(TypesNS, VisItem{Path: target, Visibility: Public()})

	merged := weak.Update(strong)
	item, ok := merged.Get(TypesNS)
	if !ok || !item.Visibility.IsPublic() {
		t.Fatalf("Update should keep the more permissive (Public) visibility")
	}

	reversed := strong.Update(weak)
	item, ok = reversed.Get(TypesNS)
	if !ok || !item.Visibility.IsPublic() {
		t.Fatalf("Update must be order-independent for visibility permissiveness")
	}
}
