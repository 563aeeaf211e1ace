package resolve

import (
	"strings"

	"github.com/cratemap/cratemap/resolve/internal/radix"
)

// ModPath is an immutable path rooted in a single crate: (crate_id,
// segments). The empty segment list denotes the crate root, whose display
// form is "crate" per spec §3.
//
// ModPath values handed out by a single pathInterner compare equal with ==
// when, and only when, their crate and segments are equal; the interner
// guarantees that by canonicalizing every path built through it to one
// shared *modPathData before the caller ever sees it. This is the
// "equality is pointer compare after interning" use of armon/go-radix
// described in SPEC_FULL.md's DOMAIN STACK section.
type ModPath struct {
	data *modPathData
}

type modPathData struct {
	crate    CrateID
	segments []string
}

// pathInterner is shared by every ModPath constructed for a given build;
// it lives on the CrateDefMap (see defmap.go) and is threaded through the
// collector so that paths built at different points of the algorithm that
// happen to name the same module are the identical value.
type pathInterner struct {
	crate CrateID
	by    *radix.Interner[*modPathData]
}

func newPathInterner(crate CrateID) *pathInterner {
	return &pathInterner{crate: crate, by: radix.New[*modPathData]()}
}

func (in *pathInterner) intern(segments []string) ModPath {
	key := make(radix.Key, len(segments))
	copy(key, segments)
	cand := &modPathData{crate: in.crate, segments: segments}
	canon, _ := in.by.Intern(key, cand)
	return ModPath{data: canon}
}

// CrateRoot returns the empty ModPath for crate.
func (in *pathInterner) CrateRoot() ModPath {
	return in.intern(nil)
}

// FromSegments builds (or looks up) the interned ModPath for an arbitrary
// segment list. Exposed so callers that build VisItems directly —
// ModCollector, and through it the host's ItemWalker — can construct
// ModPaths without threading every intermediate Child call.
func (in *pathInterner) FromSegments(segments []string) ModPath {
	return in.intern(segments)
}

// Child returns the path naming a child segment of p.
func (in *pathInterner) Child(p ModPath, segment string) ModPath {
	segs := make([]string, len(p.data.segments)+1)
	copy(segs, p.data.segments)
	segs[len(segs)-1] = segment
	return in.intern(segs)
}

// Crate returns the crate this path belongs to.
func (p ModPath) Crate() CrateID { return p.data.crate }

// Segments returns the path's segments. The caller must not mutate the
// returned slice.
func (p ModPath) Segments() []string { return p.data.segments }

// IsCrateRoot reports whether p names its crate's root module.
func (p ModPath) IsCrateRoot() bool { return len(p.data.segments) == 0 }

// Name returns the last segment, or "" at the crate root.
func (p ModPath) Name() string {
	if p.IsCrateRoot() {
		return ""
	}
	return p.data.segments[len(p.data.segments)-1]
}

// Parent returns the path with its last segment removed. Parent of the
// crate root is the crate root itself, mirroring rust's `super` at the
// root being a hard error the caller is expected to have already guarded
// against (see pathresolve.go).
func (p ModPath) Parent(in *pathInterner) ModPath {
	if p.IsCrateRoot() {
		return p
	}
	return in.intern(p.data.segments[:len(p.data.segments)-1])
}

// Equal reports whether p and o name the same path. Interned ModPaths from
// the same interner compare in O(1); this also correctly compares paths
// from different interners (e.g. across crates) by falling back to a
// structural check.
func (p ModPath) Equal(o ModPath) bool {
	if p.data == o.data {
		return true
	}
	if p.data == nil || o.data == nil {
		return p.data == o.data
	}
	if p.data.crate != o.data.crate || len(p.data.segments) != len(o.data.segments) {
		return false
	}
	for i, s := range p.data.segments {
		if o.data.segments[i] != s {
			return false
		}
	}
	return true
}

// IsSubPathOf reports whether p's crate matches other's and p's segments
// are a prefix of other's segments (spec §3).
func (p ModPath) IsSubPathOf(other ModPath) bool {
	if p.data.crate != other.data.crate {
		return false
	}
	if len(p.data.segments) > len(other.data.segments) {
		return false
	}
	for i, s := range p.data.segments {
		if other.data.segments[i] != s {
			return false
		}
	}
	return true
}

// String renders the path in rustc's own display form: "crate" at the
// root, "crate::a::b" otherwise.
func (p ModPath) String() string {
	if p.IsCrateRoot() {
		return "crate"
	}
	return "crate::" + strings.Join(p.data.segments, "::")
}
