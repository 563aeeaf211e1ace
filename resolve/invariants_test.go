package resolve_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cratemap/cratemap/resolve"
	"github.com/cratemap/cratemap/resolve/testfixture"
)

// Named-overrides-glob law (spec §4.2's shadowing table): a named import
// installed after a glob already populated the same name must win, and a
// glob arriving after a named import must not displace it.
func TestLawNamedOverridesGlob(t *testing.T) {
	doc := `
crate_id: 1
edition: "2018"
root:
  imports:
    - path: [m, T]
      name: T
      vis: {kind: pub}
    - path: [m]
      name: ""
      glob: true
      vis: {kind: pub}
  children:
    - name: m
      file: true
      vis: {kind: priv}
      module:
        items:
          - name: T
            namespaces: [types]
            vis: {kind: pub}
`
	defMap := buildFixture(t, doc, nil)
	assert.False(t, defMap.IsFromGlobImport(resolve.TypesNS, resolve.RootModule, "T"),
		"a named import of T must win regardless of queue order against a glob of the same module")
}

// Glob transitivity / propagation law: updating a glob-imported module
// after the glob was recorded still reaches every transitive glob importer
// (exercised already by TestChainedGlob; here we check a two-hop chain of
// file-backed modules whose outer glob import is collected before the inner
// one, so the resolved order isn't load-bearing).
func TestLawGlobTransitivityReordered(t *testing.T) {
	doc := `
crate_id: 1
edition: "2018"
root:
  imports:
    - path: [m]
      name: ""
      glob: true
      vis: {kind: pub}
  children:
    - name: m
      file: true
      vis: {kind: priv}
      module:
        imports:
          - path: [n]
            name: ""
            glob: true
            vis: {kind: pub}
        children:
          - name: n
            file: true
            vis: {kind: priv}
            module:
              items:
                - name: W
                  namespaces: [types]
                  vis: {kind: pub}
`
	defMap := buildFixture(t, doc, nil)
	_, ok := defMap.Root().VisibleItem("W")
	assert.True(t, ok, "W must propagate through a two-hop glob chain declared outer-module-first")
}

// Visibility monotonicity law: Widen never produces something less
// permissive than either input.
func TestLawVisibilityMonotonicity(t *testing.T) {
	priv := resolve.Restricted(resolve.ModPath{})
	pub := resolve.Public()
	assert.True(t, resolve.Widen(priv, pub).IsPublic())
	assert.True(t, resolve.Widen(pub, priv).IsPublic())
}

// Universal invariant: every childModules entry has a corresponding
// visibleItems binding that IsModOrEnum (checked directly here rather than
// only indirectly through checkInvariants never erroring).
func TestInvariantEveryChildHasVisibleModOrEnumBinding(t *testing.T) {
	doc := `
crate_id: 1
edition: "2018"
root:
  children:
    - name: a
      file: true
      vis: {kind: pub}
      module:
        children:
          - name: b
            vis: {kind: pub}
            module: {}
`
	defMap := buildFixture(t, doc, nil)
	for _, mod := range defMap.AllModules() {
		for name := range mod.ChildModules() {
			item, ok := mod.VisibleItem(name)
			require.True(t, ok, "child %q of %s has no visibleItems binding", name, mod.Path())
			typesItem, ok := item.Get(resolve.TypesNS)
			require.True(t, ok)
			assert.True(t, typesItem.IsModOrEnum)
		}
	}
}

// Determinism (spec §8 property 6): rebuilding the same input twice yields
// structurally equal maps.
func TestDeterministicRebuild(t *testing.T) {
	doc := `
crate_id: 1
edition: "2018"
root:
  imports:
    - path: [a, X]
      name: X
      vis: {kind: pub}
  children:
    - name: a
      file: true
      vis: {kind: priv}
      module:
        items:
          - name: X
            namespaces: [types, values]
            vis: {kind: pub}
`
	first := buildFixture(t, doc, nil)
	second := buildFixture(t, doc, nil)

	firstShape := snapshotModules(first)
	secondShape := snapshotModules(second)

	if diff := cmp.Diff(firstShape, secondShape, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("rebuild of identical input produced a structurally different map (-first +second):\n%s", diff)
	}
}

type moduleShape struct {
	Path     string
	Items    map[string][3]string // per-namespace path string, "" if unpopulated
	Children map[string]string    // name -> child path string
}

func snapshotModules(defMap *resolve.CrateDefMap) []moduleShape {
	var out []moduleShape
	for _, mod := range defMap.AllModules() {
		shape := moduleShape{
			Path:     mod.Path().String(),
			Items:    make(map[string][3]string),
			Children: make(map[string]string),
		}
		for name, perNs := range mod.VisibleItems() {
			var row [3]string
			for ns := resolve.Namespace(0); ns < 3; ns++ {
				if item, ok := perNs.Get(ns); ok {
					row[ns] = item.Path.String()
				}
			}
			shape.Items[name] = row
		}
		for name, childID := range mod.ChildModules() {
			shape.Children[name] = defMap.Module(childID).Path().String()
		}
		out = append(out, shape)
	}
	return out
}

// No goroutine leak from the watchdog context newCollectorContext spins up
// via constext.Cons, across both a normal completion and a cancelled build.
func TestNoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	doc := `
crate_id: 1
edition: "2018"
root:
  imports:
    - path: [a, X]
      name: X
      vis: {kind: pub}
  children:
    - name: a
      file: true
      vis: {kind: priv}
      module:
        items:
          - name: X
            namespaces: [types]
            vis: {kind: pub}
`
	buildFixture(t, doc, nil)

	spec, err := testfixture.Parse([]byte(doc))
	require.NoError(t, err)
	crate, fs, expander, walker := testfixture.Build(spec, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = resolve.BuildCrateDefMap(ctx, crate, fs, expander, walker, nil, nil)
	assert.Error(t, err, "a pre-cancelled context must abort the build")
}
