package resolve

import "sort"

// FileInfo records the bookkeeping CrateDefMap keeps per source file, per
// spec §3: modification stamp, the ModData whose items it contributed, and
// a content hash used to detect no-op rebuilds.
type FileInfo struct {
	ModificationStamp int64
	Module            ModuleID
	ContentHash       [32]byte
}

// CrateDefMap is the top-level container from spec §3: the arena of this
// crate's modules, its dependency maps, extern prelude, prelude, file-info
// table, and missed-file list.
//
// Grounded on the teacher's gps.SourceMgr / dep.Ctx pairing: one object
// that owns a build's mutable state and is handed out, read-only, once the
// build finishes (spec §5 "the built map, once returned, is immutable for
// reads").
type CrateDefMap struct {
	Crate CrateID

	interner *pathInterner
	arena    []*ModData

	// DirectDependenciesDefMaps maps each direct dependency's declared
	// extern-crate name to its (already built) CrateDefMap. Borrowed, not
	// owned: this map never mutates a dependency's CrateDefMap.
	DirectDependenciesDefMaps map[string]*CrateDefMap

	// AllDependenciesDefMaps maps every transitively reachable crate id to
	// its CrateDefMap, for the multi-segment cross-crate path-resolution
	// hop described in spec §4.1.
	AllDependenciesDefMaps map[CrateID]*CrateDefMap

	// ExternPrelude is the root ModData of each direct dependency, after
	// no_std/no_core pruning (§4.5) and any later `extern crate X as Y`
	// rebinding (§4.2 "Recording a resolved import").
	ExternPrelude map[string]ModuleID
	// externPreludeCrate records which crate's arena a given extern
	// prelude entry's ModuleID indexes into (it is usually, but not
	// always after a cross-crate `extern crate` rebind, the same crate the
	// name was originally seeded from).
	externPreludeCrate map[string]CrateID

	// Prelude is the module whose items are implicitly in scope everywhere
	// in the crate, set by §4.6's prelude-glob recording. nil until a
	// prelude-providing dependency is seen.
	preludeCrate  CrateID
	preludeModule *ModuleID

	FileInfos map[FileID]*FileInfo

	// MissedFiles lists paths probed that did not exist: failed `mod
	// name;` resolutions and missing `include!` targets (spec §3, §7).
	// Kept sorted and deduplicated, per SPEC_FULL.md's supplemented
	// missed-file dedup property.
	missedFiles map[string]struct{}

	// globImports and fromGlobImport are handed over from the DefCollector
	// once the build reaches fixed point, so spec §8 properties 3 and 4
	// ("every (t, imps) in globImports...", "every (m, name) in
	// fromGlobImport[n]...") can be checked against the returned map
	// itself, not just mid-algorithm state.
	globImports    map[ModuleID][]globEdge
	fromGlobImport [numNamespaces]map[moduleNameKey]struct{}

	// fileModuleSiblings[parent][name] lists every file-backed module ever
	// declared under parent with that name, in declaration order. A plain
	// childModules lookup can't serve this: NewModule's addChildModule
	// always overwrites the parent's childModules[name] entry, so only the
	// most recently declared sibling would otherwise still be reachable by
	// the time build.go's shadow-pruning pass runs. Populated by
	// DeclareFileModule, consumed by resolveFileModules (so every sibling's
	// file actually gets probed and walked, not just the last) and by
	// pruneShadowedModules (so the cfg-enabled sibling, wherever it was
	// declared, ends up as childModules[name] rather than whichever was
	// simply declared last).
	fileModuleSiblings map[ModuleID]map[string][]ModuleID
}

// NewCrateDefMap allocates an empty CrateDefMap with just its root module.
func NewCrateDefMap(crate CrateID) *CrateDefMap {
	dm := &CrateDefMap{
		Crate:                     crate,
		interner:                  newPathInterner(crate),
		DirectDependenciesDefMaps: make(map[string]*CrateDefMap),
		AllDependenciesDefMaps:    make(map[CrateID]*CrateDefMap),
		ExternPrelude:             make(map[string]ModuleID),
		externPreludeCrate:        make(map[string]CrateID),
		FileInfos:                 make(map[FileID]*FileInfo),
		missedFiles:               make(map[string]struct{}),
		fileModuleSiblings:        make(map[ModuleID]map[string][]ModuleID),
	}
	root := newModData(RootModule, nil, crate, dm.interner.CrateRoot())
	root.IsDeeplyEnabledByCfg = true
	dm.arena = append(dm.arena, root)
	return dm
}

// Interner returns the path interner all of this map's ModPaths are built
// through. Exposed so the ModCollector contract (modcollector.go) and
// tests can build paths consistently with the map's own.
func (dm *CrateDefMap) Interner() *pathInterner { return dm.interner }

// Root returns the crate's root module.
func (dm *CrateDefMap) Root() *ModData { return dm.arena[RootModule] }

// Module returns the ModData for id. Panics if id is out of range: an
// out-of-range ModuleID can only arise from a programming error within
// this package, never from host input.
func (dm *CrateDefMap) Module(id ModuleID) *ModData { return dm.arena[id] }

// NewModule allocates a new module as a child of parent, at the given
// path, and links it into parent.childModules under name with visibility
// vis. Returns the new module.
func (dm *CrateDefMap) NewModule(parent *ModData, name string, vis Visibility, fileID FileID, fileRelativePath string) *ModData {
	id := ModuleID(len(dm.arena))
	path := dm.interner.Child(parent.path, name)
	child := newModData(id, &parent.id, dm.Crate, path)
	child.FileID = fileID
	child.FileRelativePath = fileRelativePath
	dm.arena = append(dm.arena, child)
	parent.addChildModule(name, child, vis)
	return child
}

// AllModules returns every module in the arena, indexed by ModuleID.
func (dm *CrateDefMap) AllModules() []*ModData { return dm.arena }

// ModuleByPath walks from the crate root through childModules following
// path's segments. This is how a VisItem whose Path names a module in this
// crate (spec §4.1: "cast it to a ModData") is turned back into a ModData:
// rather than addressing across crates with raw indices, every lookup
// walks the target crate's own tree by name, which also keeps the
// arena-index design crate-local (spec §9).
func (dm *CrateDefMap) ModuleByPath(path ModPath) (*ModData, bool) {
	if path.Crate() != dm.Crate {
		return nil, false
	}
	cur := dm.Root()
	for _, seg := range path.Segments() {
		id, ok := cur.ChildModule(seg)
		if !ok {
			return nil, false
		}
		cur = dm.Module(id)
	}
	return cur, true
}

// SetExternPreludeEntry binds name to crate's module in the extern
// prelude, possibly overwriting an earlier (e.g. implicit) binding — the
// `extern crate X as Y` override described in spec §4.2/§4.5.
func (dm *CrateDefMap) SetExternPreludeEntry(name string, crate CrateID, module ModuleID) {
	dm.ExternPrelude[name] = module
	dm.externPreludeCrate[name] = crate
}

// ExternPreludeLookup resolves name in the extern prelude to a (crate,
// ModData) pair.
func (dm *CrateDefMap) ExternPreludeLookup(name string) (*CrateDefMap, *ModData, bool) {
	id, ok := dm.ExternPrelude[name]
	if !ok {
		return nil, nil, false
	}
	crate := dm.externPreludeCrate[name]
	if crate == dm.Crate {
		return dm, dm.Module(id), true
	}
	other, ok := dm.AllDependenciesDefMaps[crate]
	if !ok {
		return nil, nil, false
	}
	return other, other.Module(id), true
}

// SetPrelude points defMap.prelude at a dependency's module, per §4.2's
// "Prelude glob" recording and §4.6's selection rule.
func (dm *CrateDefMap) SetPrelude(crate CrateID, module ModuleID) {
	dm.preludeCrate = crate
	dm.preludeModule = &module
}

// Prelude returns the crate's selected prelude module, if any.
func (dm *CrateDefMap) Prelude() (*CrateDefMap, *ModData, bool) {
	if dm.preludeModule == nil {
		return nil, nil, false
	}
	if dm.preludeCrate == dm.Crate {
		return dm, dm.Module(*dm.preludeModule), true
	}
	other, ok := dm.AllDependenciesDefMaps[dm.preludeCrate]
	if !ok {
		return nil, nil, false
	}
	return other, other.Module(*dm.preludeModule), true
}

// GlobImporters returns the modules (in this crate) that glob-import
// source, for spec §8 property 3's reachability check.
func (dm *CrateDefMap) GlobImporters(source ModuleID) []ModuleID {
	edges := dm.globImports[source]
	out := make([]ModuleID, len(edges))
	for i, e := range edges {
		out[i] = e.importingMod
	}
	return out
}

// IsFromGlobImport reports whether (module, name)'s binding in ns came
// from a glob import, for spec §8 property 4.
func (dm *CrateDefMap) IsFromGlobImport(ns Namespace, module ModuleID, name string) bool {
	_, ok := dm.fromGlobImport[ns][moduleNameKey{module, name}]
	return ok
}

// recordFileModuleSibling appends child to the declared-under-parent/name
// group, for pruneShadowedModules and resolveFileModules to consume once
// the initial walk finishes (see fileModuleSiblings's doc comment).
func (dm *CrateDefMap) recordFileModuleSibling(parent ModuleID, name string, child ModuleID) {
	byName, ok := dm.fileModuleSiblings[parent]
	if !ok {
		byName = make(map[string][]ModuleID)
		dm.fileModuleSiblings[parent] = byName
	}
	byName[name] = append(byName[name], child)
}

// AddMissedFile records a probed path that did not exist.
func (dm *CrateDefMap) AddMissedFile(path string) {
	dm.missedFiles[path] = struct{}{}
}

// MissedFiles returns the sorted, deduplicated list of probed paths that
// did not exist.
func (dm *CrateDefMap) MissedFiles() []string {
	out := make([]string, 0, len(dm.missedFiles))
	for p := range dm.missedFiles {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
