package resolve

// MacroDefInfo is the legacy (macro_rules!, textual-scope) definition a
// name resolves to in a module's legacy macro scope. The macro body itself
// is opaque here: expansion is delegated to the host's MacroExpander
// (see host.go); the resolver only needs enough to hand a call
// back to the same definition on a later attempt.
type MacroDefInfo struct {
	Path       ModPath
	Visibility Visibility
}

// FileID identifies a host-owned source file. Opaque to the resolver.
type FileID int64

// ModData is the mutable per-module record described in spec §3.
//
// Grounded on the teacher's pkgtree.PackageTree: a tree of per-directory
// records built incrementally by a walker and read by a downstream solver.
// Here the tree is arena-indexed (see ids.go) rather than map-of-string,
// since cross-references (parent, children) must survive the node being
// moved during the shadow-pruning pass of §4.4.
type ModData struct {
	id     ModuleID
	parent *ModuleID
	crate  CrateID
	path   ModPath

	FileID FileID
	// FileRelativePath is "" for the crate root. A file module holds the
	// path its FileSystem probe reported, and an inline module copies its
	// parent's value; the module's position inside its file is not recorded.
	FileRelativePath string
	OwnedDirectoryID *FileID

	IsEnum                bool
	IsDeeplyEnabledByCfg  bool
	IsShadowedByOtherFile bool

	// pendingFileModule and declaredName back a `mod name;` declaration
	// whose target file hasn't been probed for yet — see
	// resolveFileModules in build.go.
	pendingFileModule bool
	declaredName      string

	visibleItems  map[string]PerNs
	childModules  map[string]ModuleID
	legacyMacros  map[string]MacroDefInfo
	unnamedTraits map[string]Visibility // keyed by the trait ModPath's String()

	unnamedTraitPaths map[string]ModPath // companion to unnamedTraits, for iteration
}

func newModData(id ModuleID, parent *ModuleID, crate CrateID, path ModPath) *ModData {
	return &ModData{
		id:                id,
		parent:            parent,
		crate:             crate,
		path:              path,
		visibleItems:      make(map[string]PerNs),
		childModules:      make(map[string]ModuleID),
		legacyMacros:      make(map[string]MacroDefInfo),
		unnamedTraits:     make(map[string]Visibility),
		unnamedTraitPaths: make(map[string]ModPath),
	}
}

// ID returns this module's stable arena index within its CrateDefMap.
func (m *ModData) ID() ModuleID { return m.id }

// Crate returns the owning crate's id.
func (m *ModData) Crate() CrateID { return m.crate }

// Path returns the module's path from its crate root.
func (m *ModData) Path() ModPath { return m.path }

// Parent returns the parent module's id, if any (false at the crate root).
func (m *ModData) Parent() (ModuleID, bool) {
	if m.parent == nil {
		return 0, false
	}
	return *m.parent, true
}

// VisibleItem returns the PerNs bound to name in this module's own scope
// (not counting the extern prelude or the crate prelude — those are
// consulted separately by path resolution, see pathresolve.go).
func (m *ModData) VisibleItem(name string) (PerNs, bool) {
	p, ok := m.visibleItems[name]
	return p, ok
}

// VisibleItems returns a snapshot of every name visible in this module's
// own scope. The returned map must not be mutated.
func (m *ModData) VisibleItems() map[string]PerNs {
	return m.visibleItems
}

// ChildModule returns the ModuleID of the child module bound to name, if
// the name denotes a child (as opposed to a re-exported module living
// elsewhere in the tree, which is visible but not a childModules entry).
func (m *ModData) ChildModule(name string) (ModuleID, bool) {
	id, ok := m.childModules[name]
	return id, ok
}

// ChildModules returns a snapshot of this module's own declared children.
func (m *ModData) ChildModules() map[string]ModuleID {
	return m.childModules
}

// LegacyMacro looks up a macro_rules!-scoped name.
func (m *ModData) LegacyMacro(name string) (MacroDefInfo, bool) {
	d, ok := m.legacyMacros[name]
	return d, ok
}

// AddVisibleItem installs name -> item, merging with anything already
// present the same way Update would (more permissive visibility wins per
// namespace). ModCollector.AddItem calls it for every item a walker
// reports, including items walked out of macro expansions and include!
// files. Import and glob results do not go through it: they need the
// finer-grained NAMED/GLOB shadowing rule and are recorded by
// pushResolutionFromImport (globimports.go) through setVisibleItem.
func (m *ModData) AddVisibleItem(name string, item PerNs) {
	m.visibleItems[name] = m.visibleItems[name].Update(item)
}

// setVisibleItem overwrites name's binding outright. Internal: only the
// def-collector's pushResolutionFromImport (globimports.go) should call
// this, since it alone implements the NAMED-vs-GLOB shadowing table.
func (m *ModData) setVisibleItem(name string, item PerNs) {
	if item.IsEmpty() {
		delete(m.visibleItems, name)
		return
	}
	m.visibleItems[name] = item
}

// addChildModule declares a child module and binds its name in the types
// namespace to a mod-shaped VisItem, maintaining the invariant of spec §3:
// "for every (name, modChild) in childModules, visibleItems[name].types
// exists and satisfies isModOrEnum".
func (m *ModData) addChildModule(name string, child *ModData, vis Visibility) {
	m.childModules[name] = child.id
	m.AddVisibleItem(name, NewPerNs(TypesNS, VisItem{
		Path:        child.path,
		Visibility:  vis,
		IsModOrEnum: true,
	}))
}

// addLegacyMacro declares a macro_rules! definition in textual scope.
func (m *ModData) addLegacyMacro(name string, def MacroDefInfo) {
	m.legacyMacros[name] = def
}

// AddUnnamedTraitImport records `use T as _;`: the trait's path is kept
// visible for method resolution without occupying a name slot. When the
// same trait is imported unnamed more than once, the more permissive
// visibility wins (spec §4.2 "stored... with max visibility").
func (m *ModData) AddUnnamedTraitImport(traitPath ModPath, vis Visibility) {
	key := traitPath.String()
	if existing, ok := m.unnamedTraits[key]; ok {
		m.unnamedTraits[key] = Widen(existing, vis)
		return
	}
	m.unnamedTraits[key] = vis
	m.unnamedTraitPaths[key] = traitPath
}

// UnnamedTraitImports returns a snapshot of (path, visibility) pairs
// recorded via AddUnnamedTraitImport.
func (m *ModData) UnnamedTraitImports() map[ModPath]Visibility {
	out := make(map[ModPath]Visibility, len(m.unnamedTraits))
	for key, vis := range m.unnamedTraits {
		out[m.unnamedTraitPaths[key]] = vis
	}
	return out
}
