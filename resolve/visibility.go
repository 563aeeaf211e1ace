package resolve

// visKind tags the Visibility sum type. Modeled as a small closed enum
// rather than an interface hierarchy, per spec §9 "Polymorphism: ...
// Visibility [is a] sum type; no inheritance is required."
type visKind uint8

const (
	visCfgDisabled visKind = iota
	visInvisible
	visRestricted
	visPublic
)

// Visibility is the tagged union from spec §3: Public, Restricted(inMod),
// Invisible, or CfgDisabled. Private is represented as Restricted(enclosing
// module), never as its own tag.
type Visibility struct {
	kind  visKind
	inMod ModPath // only meaningful when kind == visRestricted
}

// Public is visible everywhere.
func Public() Visibility { return Visibility{kind: visPublic} }

// Restricted is visible only to modules whose path has inMod as a prefix,
// in the same crate as inMod.
func Restricted(inMod ModPath) Visibility { return Visibility{kind: visRestricted, inMod: inMod} }

// Private is Restricted to its own enclosing module, per spec §3.
func Private(enclosing ModPath) Visibility { return Restricted(enclosing) }

// Invisible marks an import pointing at a private item: retained so
// completions can still see it, but never treated as in scope.
func Invisible() Visibility { return Visibility{kind: visInvisible} }

// CfgDisabled marks an attribute-disabled item.
func CfgDisabled() Visibility { return Visibility{kind: visCfgDisabled} }

// RestrictedIn reports the module a Restricted visibility is scoped to,
// and whether v is actually Restricted.
func (v Visibility) RestrictedIn() (ModPath, bool) {
	if v.kind == visRestricted {
		return v.inMod, true
	}
	return ModPath{}, false
}

// IsPublic reports whether v is Public.
func (v Visibility) IsPublic() bool { return v.kind == visPublic }

// IsCfgDisabled reports whether v is CfgDisabled.
func (v Visibility) IsCfgDisabled() bool { return v.kind == visCfgDisabled }

// IsInvisible reports whether v is Invisible.
func (v Visibility) IsInvisible() bool { return v.kind == visInvisible }

// IsVisibleFrom reports whether an item with visibility v, as bound at a
// point in the module tree, is visible to code in viewer.
//
//   - Public: always visible.
//   - Restricted(inMod): visible iff viewer's path has inMod's path as a
//     prefix in the same crate (spec §3).
//   - Invisible, CfgDisabled: never visible.
func (v Visibility) IsVisibleFrom(viewer ModPath) bool {
	switch v.kind {
	case visPublic:
		return true
	case visRestricted:
		return v.inMod.IsSubPathOf(viewer)
	default:
		return false
	}
}

// rank orders the widening lattice CfgDisabled < Invisible <
// Restricted(inner) < Restricted(outer of same crate) < Public. Two
// Restricted values need their inMod depth compared, so rank alone is not
// sufficient to order two Restricted visibilities; IsStrictlyMorePermissive
// handles that case specially.
func (v Visibility) rank() int {
	switch v.kind {
	case visCfgDisabled:
		return 0
	case visInvisible:
		return 1
	case visRestricted:
		return 2
	default: // visPublic
		return 4
	}
}

// IsStrictlyMorePermissive implements the widening order of spec §3: for
// two Restricted values, a is more permissive than b iff a.inMod is an
// ancestor of b.inMod in the same crate (that is, b's scope is the narrower
// one).
func (a Visibility) IsStrictlyMorePermissive(b Visibility) bool {
	if a.kind == visRestricted && b.kind == visRestricted {
		if a.inMod.Equal(b.inMod) {
			return false
		}
		// a is more permissive than b iff a's scope is an ancestor of b's
		// scope (a.inMod is a prefix of b.inMod): fewer modules excluded.
		return a.inMod.IsSubPathOf(b.inMod)
	}
	return a.rank() > b.rank()
}

// Widen returns the more permissive of a and b, per the lattice order.
func Widen(a, b Visibility) Visibility {
	if b.IsStrictlyMorePermissive(a) {
		return b
	}
	return a
}

// VisItem is the binding of a name to an item: the path it points at, the
// visibility of that binding, and whether the target can host child items
// (a module or an enum, whose variants occupy the type namespace the way a
// module's items do).
type VisItem struct {
	Path        ModPath
	Visibility  Visibility
	IsModOrEnum bool
}

// WithVisibility returns a copy of v with its visibility replaced.
func (v VisItem) WithVisibility(vis Visibility) VisItem {
	v.Visibility = vis
	return v
}

// Namespace identifies one of the three per-name slots a binding can
// occupy simultaneously.
type Namespace uint8

const (
	TypesNS Namespace = iota
	ValuesNS
	MacrosNS
	numNamespaces
)

// PerNs is a (types, values, macros) triple of optional VisItems: the unit
// a single name resolves to.
type PerNs struct {
	slots [numNamespaces]*VisItem
}

// NewPerNs builds a PerNs with the given item installed in ns.
func NewPerNs(ns Namespace, item VisItem) PerNs {
	var p PerNs
	p.slots[ns] = &item
	return p
}

// Get returns the item bound in ns, if any.
func (p PerNs) Get(ns Namespace) (VisItem, bool) {
	if p.slots[ns] == nil {
		return VisItem{}, false
	}
	return *p.slots[ns], true
}

// set installs item in ns, in place. Unexported: PerNs values elsewhere in
// the package are treated as immutable snapshots; only the merge logic in
// globimports.go constructs new ones through this.
func (p *PerNs) set(ns Namespace, item *VisItem) {
	p.slots[ns] = item
}

// IsEmpty reports whether all three namespaces are unpopulated.
func (p PerNs) IsEmpty() bool {
	return p.slots[TypesNS] == nil && p.slots[ValuesNS] == nil && p.slots[MacrosNS] == nil
}

// Or performs a componentwise fallback: self dominates wherever populated,
// other fills in the rest.
func (p PerNs) Or(other PerNs) PerNs {
	var out PerNs
	for ns := Namespace(0); ns < numNamespaces; ns++ {
		if p.slots[ns] != nil {
			out.slots[ns] = p.slots[ns]
		} else {
			out.slots[ns] = other.slots[ns]
		}
	}
	return out
}

// Update performs a componentwise merge: where both sides populate a
// namespace, the more permissive visibility wins.
func (p PerNs) Update(other PerNs) PerNs {
	out := p
	for ns := Namespace(0); ns < numNamespaces; ns++ {
		a, b := p.slots[ns], other.slots[ns]
		switch {
		case a == nil:
			out.slots[ns] = b
		case b == nil:
			out.slots[ns] = a
		case b.Visibility.IsStrictlyMorePermissive(a.Visibility):
			out.slots[ns] = b
		default:
			out.slots[ns] = a
		}
	}
	return out
}

// FilterVisibility keeps only the namespaces whose binding satisfies keep.
func (p PerNs) FilterVisibility(keep func(Visibility) bool) PerNs {
	var out PerNs
	for ns := Namespace(0); ns < numNamespaces; ns++ {
		if p.slots[ns] != nil && keep(p.slots[ns].Visibility) {
			out.slots[ns] = p.slots[ns]
		}
	}
	return out
}

// WithVisibility returns a copy of p with every populated namespace's
// visibility replaced by vis.
func (p PerNs) WithVisibility(vis Visibility) PerNs {
	var out PerNs
	for ns := Namespace(0); ns < numNamespaces; ns++ {
		if p.slots[ns] != nil {
			v := p.slots[ns].WithVisibility(vis)
			out.slots[ns] = &v
		}
	}
	return out
}

// MapItems applies f to every populated namespace's item.
func (p PerNs) MapItems(f func(VisItem) VisItem) PerNs {
	var out PerNs
	for ns := Namespace(0); ns < numNamespaces; ns++ {
		if p.slots[ns] != nil {
			v := f(*p.slots[ns])
			out.slots[ns] = &v
		}
	}
	return out
}
