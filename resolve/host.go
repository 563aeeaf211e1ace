package resolve

import "github.com/Masterminds/semver"

// ItemSource is an opaque handle to a parsed item tree — the crate root, a
// file brought in by `mod foo;` or `include!`, or a macro's expansion. The
// resolver never inspects one directly; it only ever hands it back to the
// host's ItemWalker. This is the seam spec §1 draws around "the core
// consumes a parsed item tree": everything upstream of this interface
// (tokenizing, parsing, macro hygiene) is the host's concern, so the type
// carries no methods at all.
type ItemSource = any

// ItemWalker is the "ModCollector contract" consumer (spec §4.4): given an
// ItemSource and a ModCollector sink, it walks the source's declarations
// into the sink. Its traversal logic is entirely host-owned; only the
// sink's shape (ModCollector) is specified here.
type ItemWalker interface {
	Walk(src ItemSource, mc *ModCollector) error
}

// FileSystem is the file-system capability from spec §6: it resolves
// `mod name;` declarations and `include!` targets to a loadable
// ItemSource, and is also where `mod` resolution failures and missing
// `include!` targets get their paths for CrateDefMap.missedFiles (spec §3,
// §7).
type FileSystem interface {
	// ResolveModuleFile looks for the file backing `mod name;` declared in
	// a module owned by ownedDir. Returns the file's id, its parsed item
	// source, and whether it was found; when not found, probedPath names
	// what was looked for (recorded into missedFiles by the caller).
	ResolveModuleFile(ownedDir FileID, name string) (file FileID, src ItemSource, ok bool, probedPath string)

	// ResolveInclude resolves `include!(relPath)`'s argument against the
	// directory containing fromFile (spec §4.3 case 1).
	ResolveInclude(fromFile FileID, relPath string) (file FileID, src ItemSource, ok bool, probedPath string)
}

// MacroExpander is the macro-expander capability from spec §6.
type MacroExpander interface {
	// Expand invokes def against call's body, returning the expanded item
	// source and whether expansion succeeded.
	Expand(def MacroDefInfo, call MacroCallInfo) (ItemSource, bool)

	// SubstituteDollarCrate rewrites `$crate` occurrences in src using
	// call.DollarCrateMap, returning a (possibly identical) ItemSource.
	SubstituteDollarCrate(src ItemSource, call MacroCallInfo) ItemSource
}

// RootAttrs captures the crate root attributes relevant to extern-prelude
// seeding (spec §4.5).
type RootAttrs struct {
	NoStd  bool
	NoCore bool
}

// Edition models a Rust edition as a semver.Version (2015.0.0, 2018.0.0,
// 2021.0.0, 2024.0.0, ...), per SPEC_FULL.md's DOMAIN STACK wiring of
// Masterminds/semver: the "older editions vs. newer editions" distinction
// in spec §4.5 becomes a single version comparison instead of a bespoke
// enum ordering.
type Edition struct {
	v *semver.Version
}

var edition2018 = semver.MustParse("2018.0.0")

// NewEdition parses a raw edition string ("2015", "2018", "2021", "2024")
// into an Edition.
func NewEdition(raw string) (Edition, error) {
	v, err := semver.NewVersion(raw + ".0.0")
	if err != nil {
		return Edition{}, err
	}
	return Edition{v: v}, nil
}

// AtLeast2018 reports whether e is the 2018 edition or newer — the cutoff
// spec §4.5 uses to decide whether the implicit `extern crate`'s
// nameInScope is the crate's name (older editions) or `_` (newer editions).
func (e Edition) AtLeast2018() bool {
	if e.v == nil {
		return false
	}
	return e.v.Compare(edition2018) >= 0
}

func (e Edition) String() string {
	if e.v == nil {
		return "unknown"
	}
	return e.v.String()
}

// Dependency is one of a crate's direct dependencies, as exposed by a
// Crate handle (spec §6).
type Dependency struct {
	ID               CrateID
	ExternCrateName  string
	DefMap           *CrateDefMap
}

// Crate is the host-owned crate handle from spec §6 "Inputs".
type Crate interface {
	ID() CrateID
	// RootItemSource returns the crate root's parsed item tree, and false
	// if the crate has no parsed root module (the build then returns nil
	// per §6 "Output").
	RootItemSource() (ItemSource, bool)
	RootFileID() FileID
	RootDirectory() FileID
	Attrs() RootAttrs
	Edition() Edition
	// Dependencies lists direct dependencies in declaration order; order
	// matters for §4.6 prelude selection.
	Dependencies() []Dependency
}
