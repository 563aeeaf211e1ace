package resolve

// ImportStatus is the sum type Unresolved | Indeterminate(perNs) |
// Resolved(perNs) from spec §3. Modeled as a tagged struct rather than an
// interface (spec §9: "PartialResolvedImport... [is a] sum type; no
// inheritance is required").
type ImportStatus struct {
	kind  importStatusKind
	perNs PerNs
}

type importStatusKind uint8

const (
	statusUnresolved importStatusKind = iota
	statusIndeterminate
	statusResolved
)

// UnresolvedStatus is the initial state of every import.
func UnresolvedStatus() ImportStatus { return ImportStatus{kind: statusUnresolved} }

// IndeterminateStatus means at least one, but not all three, namespaces
// resolved.
func IndeterminateStatus(perNs PerNs) ImportStatus {
	return ImportStatus{kind: statusIndeterminate, perNs: perNs}
}

// ResolvedStatus means the import reached a final binding.
func ResolvedStatus(perNs PerNs) ImportStatus {
	return ImportStatus{kind: statusResolved, perNs: perNs}
}

func (s ImportStatus) IsUnresolved() bool    { return s.kind == statusUnresolved }
func (s ImportStatus) IsIndeterminate() bool { return s.kind == statusIndeterminate }
func (s ImportStatus) IsResolved() bool      { return s.kind == statusResolved }

// PerNs returns the bound namespaces, for Indeterminate and Resolved
// statuses (empty for Unresolved).
func (s ImportStatus) PerNs() PerNs { return s.perNs }

// Equal reports whether two statuses are the same kind with the same
// bound items. Used by the resolve loop's oscillation guard (spec §4.2:
// "The equality check import.status == newStatus prevents pointless
// oscillation").
func (s ImportStatus) Equal(o ImportStatus) bool {
	if s.kind != o.kind {
		return false
	}
	for ns := Namespace(0); ns < numNamespaces; ns++ {
		a, hasA := s.perNs.Get(ns)
		b, hasB := o.perNs.Get(ns)
		if hasA != hasB {
			return false
		}
		if hasA && (!a.Path.Equal(b.Path) || a.IsModOrEnum != b.IsModOrEnum) {
			return false
		}
	}
	return true
}

// Import is a single `use` item (or `extern crate`), as recorded by the
// ModCollector contract (spec §4.4) into the CollectorContext.
type Import struct {
	ContainingMod ModuleID
	UsePath       []string
	NameInScope   string // "" for a glob import
	Visibility    Visibility
	IsGlob        bool
	IsExternCrate bool
	IsPrelude     bool

	Status ImportStatus
}
