// Package testfixture builds synthetic crates for resolve's tests from a
// small YAML description, instead of requiring a real Rust parser. The
// YAML already describes a parsed item tree, so the "parsing" this
// package's ItemWalker does is just a direct transcription into
// resolve.ModCollector calls — the same shape a real host's parser would
// have, minus the tokenizing.
//
// Grounded on the teacher's bestiary_test.go / manifest_test.go pattern of
// building fixture inputs from small struct literals (there, fixture
// gps.Manifests and lockfiles); here the fixture format is YAML so test
// crates can be written as data rather than Go literals, per
// SPEC_FULL.md's DOMAIN STACK wiring of gopkg.in/yaml.v3.
package testfixture

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cratemap/cratemap/resolve"
)

// VisSpec is the YAML shape of a resolve.Visibility.
type VisSpec struct {
	Kind string   `yaml:"kind"` // "pub" | "priv" | "restricted" | "invisible" | "cfg_disabled"; "" defaults to "priv"
	In   []string `yaml:"in"`   // segment list, for "restricted"
}

// ItemSpec describes one name bound in a module's own scope.
type ItemSpec struct {
	Name        string   `yaml:"name"`
	Namespaces  []string `yaml:"namespaces"` // subset of "types","values","macros"; defaults to ["values"]
	Vis         VisSpec  `yaml:"vis"`
	IsModOrEnum bool     `yaml:"mod_or_enum"`
	TargetPath  []string `yaml:"target_path"` // required when IsModOrEnum and the target isn't this item's own declared child module
}

// ImportSpec describes one `use` (or `extern crate`) item.
type ImportSpec struct {
	Path        []string `yaml:"path"`
	Name        string   `yaml:"name"`
	Vis         VisSpec  `yaml:"vis"`
	Glob        bool     `yaml:"glob"`
	ExternCrate bool     `yaml:"extern_crate"`
	Prelude     bool     `yaml:"prelude"`
}

// LegacyMacroSpec describes a macro_rules! definition. Expansion, if set,
// is what a call to this macro expands to — the fixture's stand-in for a
// real macro engine (see MacroExpander in host.go).
type LegacyMacroSpec struct {
	Name      string      `yaml:"name"`
	Vis       VisSpec     `yaml:"vis"`
	Expansion *ModuleSpec `yaml:"expansion"`
}

// MacroCallSpec describes a pending macro invocation.
type MacroCallSpec struct {
	Path        []string          `yaml:"path"` // single segment => legacy-scoped call
	Include     bool              `yaml:"include"`
	IncludePath string            `yaml:"include_path"`
	Body        string            `yaml:"body"`
	DollarCrate map[string][]string `yaml:"dollar_crate"` // name -> path segments
}

// ChildSpec declares a child module, inline or file-backed. CfgDisabled
// marks this particular declaration as attribute-disabled, for exercising
// the same-name shadowing rule (spec §4.4) when two ChildSpecs share a
// Name under the same parent, exactly one with CfgDisabled set.
type ChildSpec struct {
	Name        string      `yaml:"name"`
	Vis         VisSpec     `yaml:"vis"`
	IsEnum      bool        `yaml:"is_enum"`
	File        bool        `yaml:"file"`
	CfgDisabled bool        `yaml:"cfg_disabled"`
	Module      *ModuleSpec `yaml:"module"`
}

// ModuleSpec is one module's declared contents.
type ModuleSpec struct {
	Items        []ItemSpec        `yaml:"items"`
	Imports      []ImportSpec      `yaml:"imports"`
	Macros       []MacroCallSpec   `yaml:"macros"`
	LegacyMacros []LegacyMacroSpec `yaml:"legacy_macros"`
	Children     []ChildSpec       `yaml:"children"`
}

// DependencySpec names a direct dependency and which fixture CrateSpec (by
// crate id) it resolves to; the caller supplies the already-built
// CrateDefMap for that id (see Build).
type DependencySpec struct {
	CrateID         int32  `yaml:"crate_id"`
	ExternCrateName string `yaml:"extern_crate_name"`
	// SpecFile names the sibling YAML file holding this dependency's own
	// CrateSpec. Only meaningful to a caller (cratemap.Driver) resolving a
	// directory of fixture files; testfixture.Build itself ignores it and
	// expects the caller to have already built the dependency's
	// CrateDefMap.
	SpecFile string `yaml:"spec_file"`
}

// CrateSpec is the top-level fixture document.
type CrateSpec struct {
	CrateID      int32            `yaml:"crate_id"`
	Edition      string           `yaml:"edition"`
	NoStd        bool             `yaml:"no_std"`
	NoCore       bool             `yaml:"no_core"`
	Dependencies []DependencySpec `yaml:"dependencies"`
	Root         ModuleSpec       `yaml:"root"`
}

// Parse decodes a YAML document into a CrateSpec.
func Parse(doc []byte) (*CrateSpec, error) {
	var spec CrateSpec
	if err := yaml.Unmarshal(doc, &spec); err != nil {
		return nil, fmt.Errorf("testfixture: parsing crate spec: %w", err)
	}
	return &spec, nil
}

func visFromSpec(pc pathConverter, v VisSpec) resolve.Visibility {
	switch v.Kind {
	case "pub":
		return resolve.Public()
	case "invisible":
		return resolve.Invisible()
	case "cfg_disabled":
		return resolve.CfgDisabled()
	case "restricted":
		return resolve.Restricted(pc.path(v.In))
	default:
		return resolve.Restricted(pc.path(nil))
	}
}

// pathConverter builds ModPaths against a specific ModCollector; both the
// eager root/inline walk and the deferred file-backed walk need one.
type pathConverter struct {
	mc *resolve.ModCollector
}

func (pc pathConverter) path(segments []string) resolve.ModPath {
	return pc.mc.Path(segments)
}

func namespacesOf(names []string) []resolve.Namespace {
	if len(names) == 0 {
		return []resolve.Namespace{resolve.ValuesNS}
	}
	out := make([]resolve.Namespace, 0, len(names))
	for _, n := range names {
		switch n {
		case "types":
			out = append(out, resolve.TypesNS)
		case "values":
			out = append(out, resolve.ValuesNS)
		case "macros":
			out = append(out, resolve.MacrosNS)
		}
	}
	return out
}
