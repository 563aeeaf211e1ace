package resolve

// ModCollector is the sink half of the "ModCollector contract" from spec
// §4.4: the host's ItemWalker calls its methods as it walks a parsed item
// tree (the crate root, a `mod name;` file, or a macro's expansion), and
// ModCollector turns those calls into CrateDefMap/collectorContext
// mutations. Its own traversal logic never runs — only these mutators are
// in scope here, matching the spec's "in scope only for the contract it
// exposes to the resolver" framing.
//
// Grounded on the teacher's pkgtree walker callback shape (a closure handed
// to filepath.Walk that accumulates into a PackageTree as it goes); here
// the callback surface is a struct of methods instead of a single func,
// since the host needs several distinct verbs (item, import, macro call,
// child module).
type ModCollector struct {
	defMap *CrateDefMap
	cc     *collectorContext
	module *ModData

	// macroDepth is this collector's nesting depth in the macro-expansion
	// tree (spec §4.3's 64-deep cap). 0 for the initial crate-root/mod-file
	// walk; call.Depth+1 for a collector spawned to walk a macro's
	// expansion.
	macroDepth int
}

// newModCollector returns a ModCollector scoped to module, at the given
// macro-expansion depth.
func newModCollector(defMap *CrateDefMap, cc *collectorContext, module *ModData, macroDepth int) *ModCollector {
	return &ModCollector{defMap: defMap, cc: cc, module: module, macroDepth: macroDepth}
}

// Module returns the ModData this collector is depositing items into.
func (mc *ModCollector) Module() *ModData { return mc.module }

// Path builds (or looks up) the interned ModPath for an arbitrary segment
// list within this build's crate, relative to the crate root — e.g. for
// constructing a Restricted(inMod) visibility from a host-side path
// representation.
func (mc *ModCollector) Path(segments []string) ModPath {
	return mc.defMap.Interner().FromSegments(segments)
}

// CratePath returns the path for a segment list in crate, which may be a
// different crate than the one this collector is building — used when an
// item's visibility or target refers across a dependency boundary. Since
// ModPath equality only compares crate id and segments (not interner
// identity), a path built this way compares correctly against one
// interned by that other crate's own CrateDefMap.
func (mc *ModCollector) CratePath(crate CrateID, segments []string) ModPath {
	if crate == mc.defMap.Crate {
		return mc.Path(segments)
	}
	return ModPath{data: &modPathData{crate: crate, segments: segments}}
}

// Depth returns this collector's macro-expansion nesting depth.
func (mc *ModCollector) Depth() int { return mc.macroDepth }

// AddItem declares a plain item (function, struct, const, trait, ...)
// visible under name, per spec §4.4's "addVisibleItem" mutator.
func (mc *ModCollector) AddItem(name string, item PerNs) {
	mc.module.AddVisibleItem(name, item)
}

// AddLegacyMacro declares a macro_rules! definition in this module's
// textual scope.
func (mc *ModCollector) AddLegacyMacro(name string, def MacroDefInfo) {
	mc.module.addLegacyMacro(name, def)
}

// AddImport appends a `use` item (or `extern crate`) to the shared
// collectorContext for the def-collector's fixed-point pass to consume.
// containingMod is always mc.module's id; callers only supply the rest.
func (mc *ModCollector) AddImport(usePath []string, nameInScope string, vis Visibility, isGlob, isExternCrate, isPrelude bool) {
	mc.cc.addImport(&Import{
		ContainingMod: mc.module.id,
		UsePath:       usePath,
		NameInScope:   nameInScope,
		Visibility:    vis,
		IsGlob:        isGlob,
		IsExternCrate: isExternCrate,
		IsPrelude:     isPrelude,
		Status:        UnresolvedStatus(),
	})
}

// AddMacroCall queues a macro invocation — legacy-scoped, path-resolved, or
// include! — for the expansion driver (macroexpand.go). depth is the
// call's own nesting depth, normally mc.macroDepth; a fresh top-level call
// discovered while walking always uses mc.macroDepth since that is the
// depth this collector itself was spawned at. Calls made from a
// cfg-disabled module are dropped.
func (mc *ModCollector) AddMacroCall(call *MacroCallInfo) {
	if !mc.module.IsDeeplyEnabledByCfg {
		return
	}
	call.ContainingMod = mc.module.id
	if call.Depth == 0 {
		call.Depth = mc.macroDepth
	}
	mc.cc.addMacroCall(call)
}

// DeclareInlineChildModule creates a child module for an inline `mod name {
// ... }` and returns a ModCollector scoped to it, at the same macro depth
// (inline child modules are not a new expansion, just a new scope).
func (mc *ModCollector) DeclareInlineChildModule(name string, vis Visibility, isEnum bool) *ModCollector {
	child := mc.defMap.NewModule(mc.module, name, vis, mc.module.FileID, mc.module.FileRelativePath)
	child.IsEnum = isEnum
	child.IsDeeplyEnabledByCfg = mc.module.IsDeeplyEnabledByCfg
	if mc.module.OwnedDirectoryID != nil {
		child.OwnedDirectoryID = mc.module.OwnedDirectoryID
	}
	return newModCollector(mc.defMap, mc.cc, child, mc.macroDepth)
}

// DeclareFileModule records a `mod name;` declaration whose backing file
// has not been located yet. The actual file-system probe and recursive
// walk happen afterwards, in build.go's resolveFileModules pass, since
// that needs no fixed-point iteration and so runs once, eagerly, ahead of
// the def-collector.
//
// Returns a ModCollector scoped to the new child so a walker that knows
// this particular `mod name;` declaration is cfg-disabled can call
// DisableByCfg on it — the same way it would for an inline child module.
// The child is also recorded as a fileModuleSiblings entry: if another
// `mod name;` under the same parent was (or later is) declared with the
// same name, addChildModule's overwrite-on-redeclare would otherwise lose
// track of every sibling but the last one walked, which is exactly the
// case pruneShadowedModules (below) needs to tell apart.
func (mc *ModCollector) DeclareFileModule(name string, vis Visibility, isEnum bool) *ModCollector {
	child := mc.defMap.NewModule(mc.module, name, vis, 0, "")
	child.IsEnum = isEnum
	child.IsDeeplyEnabledByCfg = mc.module.IsDeeplyEnabledByCfg
	child.pendingFileModule = true
	child.declaredName = name
	mc.defMap.recordFileModuleSibling(mc.module.id, name, child.id)
	return newModCollector(mc.defMap, mc.cc, child, mc.macroDepth)
}

// DisableByCfg marks this collector's module as cfg-disabled. Only this
// module's flag is set; child modules declared through this collector
// afterwards inherit it. Choosing between same-named file-backed siblings
// is done later, by pruneShadowedModules.
func (mc *ModCollector) DisableByCfg() {
	mc.module.IsDeeplyEnabledByCfg = false
}

// pruneShadowedModules implements the cleanup half of spec §4.4's shadowing
// rule: for every module name that has more than one file-backed
// declaration in the same parent, keep the first cfg-enabled one in
// declaration order (several enabled is an internally inconsistent input,
// which this resolver does not reject; if none is enabled, the last one
// declared is kept), mark the rest IsShadowedByOtherFile,
// and repoint the parent's childModules entry at the winner.
//
// Reads fileModuleSiblings rather than re-deriving duplicates from
// ChildModules(): by the time this runs, childModules[name] has already
// been overwritten down to whichever sibling was declared last (every
// NewModule call re-links its parent unconditionally), so it can never by
// itself reveal that more than one declaration existed. fileModuleSiblings
// is the only record of the full group.
//
// This only matters for file-backed modules: two inline `mod foo { ... }`
// blocks with the same name in the same scope are a host-level parse error,
// not something this resolver ever sees.
func pruneShadowedModules(defMap *CrateDefMap) {
	for parentID, byName := range defMap.fileModuleSiblings {
		parent := defMap.Module(parentID)
		for name, children := range byName {
			if len(children) < 2 {
				continue
			}
			winner := children[len(children)-1]
			for _, id := range children {
				if defMap.Module(id).IsDeeplyEnabledByCfg {
					winner = id
					break
				}
			}
			for _, id := range children {
				if id != winner {
					defMap.Module(id).IsShadowedByOtherFile = true
				}
			}
			parent.childModules[name] = winner
		}
	}
}
