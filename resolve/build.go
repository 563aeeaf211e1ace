package resolve

import (
	"context"

	"github.com/pkg/errors"
)

// BuildCrateDefMap is the package's single entry point, implementing spec
// §6's "Output": given a crate handle and the host capabilities it needs,
// build that crate's CrateDefMap to a fixed point, or return nil if the
// crate has no parsed root module at all.
//
// Grounded on the teacher's dep.Ctx.Solve: one function that wires together
// a solver's inputs (SourceManager, lock, manifest) and drives it to
// completion, returning either a usable result or a wrapped error.
func BuildCrateDefMap(ctx context.Context, crate Crate, fs FileSystem, expander MacroExpander, walker ItemWalker, progress ProgressToken, opts *Options) (*CrateDefMap, error) {
	rootSrc, ok := crate.RootItemSource()
	if !ok {
		return nil, nil
	}

	defMap := NewCrateDefMap(crate.ID())
	root := defMap.Root()
	root.FileID = crate.RootFileID()
	rootDir := crate.RootDirectory()
	root.OwnedDirectoryID = &rootDir
	defMap.FileInfos[crate.RootFileID()] = &FileInfo{Module: RootModule}

	seedExternPrelude(defMap, crate)
	selectInitialPrelude(defMap, crate)

	cc := newCollectorContext(ctx, progress, opts)
	defer cc.close()

	if err := cc.checkCancelled(); err != nil {
		return nil, err
	}

	rootCollector := newModCollector(defMap, cc, root, 0)
	if err := walker.Walk(rootSrc, rootCollector); err != nil {
		return nil, errors.Wrap(err, "walking crate root")
	}

	if err := resolveFileModules(defMap, cc, fs, walker, root, 0); err != nil {
		return nil, err
	}
	pruneShadowedModules(defMap)

	dc := newDefCollector(defMap, cc, expander, fs, walker)
	if err := dc.run(); err != nil {
		return nil, errors.Wrap(err, "resolving crate def map")
	}
	defMap.globImports = dc.globImports
	defMap.fromGlobImport = dc.fromGlobImport

	if err := checkInvariants(defMap); err != nil {
		return nil, err
	}
	return defMap, nil
}

// resolveFileModules recurses through every `mod name;` declaration a walk
// deposited (tracked by the pendingFileModule flag that
// ModCollector.DeclareFileModule sets on the new child module), probing
// the file-system capability for each and recursively walking whatever it
// finds.
//
// This happens eagerly, before the fixed-point import/macro loop starts:
// unlike name resolution, `mod name;` resolution depends on nothing but
// the file system, so there is no benefit to deferring it into the same
// worklist as imports and macro calls (see DESIGN.md's write-up of this
// decision).
//
// Visits the union of mod.ChildModules() (covers inline children, and
// whichever file-backed child currently occupies its name's slot) and
// mod.id's fileModuleSiblings groups (covers every file-backed child ever
// declared under that name, including ones addChildModule has already
// overwritten out of childModules): a same-name `mod foo;` declared twice
// under one cfg gate must have BOTH candidates' files probed and walked,
// since pruneShadowedModules (modcollector.go), which runs right after
// this, needs the cfg-enabled candidate's items already collected no
// matter which one was declared last.
func resolveFileModules(defMap *CrateDefMap, cc *collectorContext, fs FileSystem, walker ItemWalker, mod *ModData, depth int) error {
	if err := cc.checkCancelled(); err != nil {
		return err
	}

	visited := make(map[ModuleID]bool)
	visit := func(childID ModuleID) error {
		if visited[childID] {
			return nil
		}
		visited[childID] = true

		child := defMap.Module(childID)
		if !child.pendingFileModule {
			return resolveFileModules(defMap, cc, fs, walker, child, depth+1)
		}

		ownedDir := mod.FileID
		if mod.OwnedDirectoryID != nil {
			ownedDir = *mod.OwnedDirectoryID
		}
		name := child.declaredName
		file, src, ok, probedPath := fs.ResolveModuleFile(ownedDir, name)
		child.pendingFileModule = false
		if !ok {
			defMap.AddMissedFile(probedPath)
			return nil
		}

		child.FileID = file
		child.FileRelativePath = probedPath
		newOwnedDir := file
		child.OwnedDirectoryID = &newOwnedDir
		defMap.FileInfos[file] = &FileInfo{Module: child.id}

		mc := newModCollector(defMap, cc, child, 0)
		if err := walker.Walk(src, mc); err != nil {
			return err
		}
		return resolveFileModules(defMap, cc, fs, walker, child, depth+1)
	}

	for _, childID := range mod.ChildModules() {
		if err := visit(childID); err != nil {
			return err
		}
	}
	for _, siblings := range defMap.fileModuleSiblings[mod.id] {
		for _, childID := range siblings {
			if err := visit(childID); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkInvariants implements the last of spec §7's hard-error checks that
// isn't naturally raised mid-algorithm: every childModules entry must have
// a corresponding visibleItems binding that IsModOrEnum (spec §3's
// OrphanChildModule invariant, listed alongside GlobDepthExceeded and
// DanglingModOrEnum).
func checkInvariants(defMap *CrateDefMap) error {
	for _, mod := range defMap.AllModules() {
		for name := range mod.ChildModules() {
			item, ok := mod.VisibleItem(name)
			if !ok {
				return newInvariantError(OrphanChildModule, mod.Path(), name)
			}
			typesItem, ok := item.Get(TypesNS)
			if !ok || !typesItem.IsModOrEnum {
				return newInvariantError(OrphanChildModule, mod.Path(), name)
			}
		}
	}
	return nil
}
