package resolve

import "fmt"

// invariantKind tags which of spec §7's "Invariant violations (hard
// errors, caller-visible)" fired. Grounded on the teacher's errors.go
// errorLevel tag (warning/mustResolve/cannotResolve): a small closed enum
// distinguishing error severities/causes rather than one generic message.
type invariantKind uint8

const (
	// GlobDepthExceeded: glob-import propagation recursed past the hard
	// depth cap (spec §4.2/§7, default 100).
	GlobDepthExceeded invariantKind = iota
	// DanglingModOrEnum: a VisItem claimed IsModOrEnum but its path does
	// not resolve to any ModData in its crate (spec §7).
	DanglingModOrEnum
	// OrphanChildModule: a name in childModules has no corresponding
	// visibleItems entry, or that entry isn't IsModOrEnum (spec §3/§7/§8
	// property 1).
	OrphanChildModule
)

func (k invariantKind) String() string {
	switch k {
	case GlobDepthExceeded:
		return "glob import propagation exceeded maximum depth"
	case DanglingModOrEnum:
		return "VisItem claims IsModOrEnum but does not resolve to a module"
	case OrphanChildModule:
		return "child module name is missing its visibleItems binding"
	default:
		return "invariant violation"
	}
}

// InvariantError reports corrupt input per spec §7: these abort the build
// rather than being recorded as a soft failure, because they indicate the
// host handed the resolver a tree that cannot be self-consistent (as
// opposed to an ordinary unresolved import, which is expected and common).
type InvariantError struct {
	Kind    invariantKind
	Path    ModPath
	Context string
}

func (e *InvariantError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("cratemap: %s (%s): %s", e.Kind, e.Path, e.Context)
	}
	return fmt.Sprintf("cratemap: %s (%s)", e.Kind, e.Path)
}

func newInvariantError(kind invariantKind, path ModPath, context string) *InvariantError {
	return &InvariantError{Kind: kind, Path: path, Context: context}
}
