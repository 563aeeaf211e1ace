package testfixture

import (
	"fmt"

	"github.com/cratemap/cratemap/resolve"
)

// registry assigns synthetic resolve.FileIDs to every file-backed module
// declared anywhere in a CrateSpec, up front, so FileSystem's probes have
// something to answer before the first walk even starts.
type registry struct {
	next int64

	// dirs[dirID][name] is the file-backed child named name, declared
	// under the virtual directory dirID.
	dirs map[resolve.FileID]map[string]*fileEntry

	// fileParentDir maps a registered file's own id back to the directory
	// it was registered under, for ResolveInclude's relative lookups.
	fileParentDir map[resolve.FileID]resolve.FileID
}

type fileEntry struct {
	fileID     resolve.FileID
	content    *ModuleSpec
	ownedDirID resolve.FileID
}

const (
	rootDirID  resolve.FileID = 0
	rootFileID resolve.FileID = 1
)

func newRegistry(root *ModuleSpec) *registry {
	r := &registry{
		next:          2,
		dirs:          make(map[resolve.FileID]map[string]*fileEntry),
		fileParentDir: make(map[resolve.FileID]resolve.FileID),
	}
	r.fileParentDir[rootFileID] = rootDirID
	r.register(rootDirID, root)
	return r
}

func (r *registry) alloc() resolve.FileID {
	id := resolve.FileID(r.next)
	r.next++
	return id
}

func (r *registry) register(dirID resolve.FileID, mod *ModuleSpec) {
	if mod == nil {
		return
	}
	for _, ch := range mod.Children {
		if !ch.File {
			r.register(dirID, ch.Module)
			continue
		}
		fileID := r.alloc()
		// The resolver probes a file module's own `mod name;` children with
		// the module's file id as the owned directory (see build.go), so
		// they are registered under that same id.
		ownedDirID := fileID
		if r.dirs[dirID] == nil {
			r.dirs[dirID] = make(map[string]*fileEntry)
		}
		r.dirs[dirID][ch.Name] = &fileEntry{fileID: fileID, content: ch.Module, ownedDirID: ownedDirID}
		r.fileParentDir[fileID] = dirID
		r.register(ownedDirID, ch.Module)
	}
}

// FileSystem is the testfixture's resolve.FileSystem: every lookup is a map
// probe against the registry built at construction time, so it never
// touches a real disk.
type FileSystem struct {
	reg *registry
}

func (fs *FileSystem) ResolveModuleFile(ownedDir resolve.FileID, name string) (resolve.FileID, resolve.ItemSource, bool, string) {
	probed := fmt.Sprintf("fixture-dir-%d/%s.rs", ownedDir, name)
	entry, ok := fs.reg.dirs[ownedDir][name]
	if !ok {
		return 0, nil, false, probed
	}
	return entry.fileID, entry.content, true, probed
}

func (fs *FileSystem) ResolveInclude(fromFile resolve.FileID, relPath string) (resolve.FileID, resolve.ItemSource, bool, string) {
	dirID, ok := fs.reg.fileParentDir[fromFile]
	if !ok {
		dirID = rootDirID
	}
	name := stripRsExt(relPath)
	probed := fmt.Sprintf("fixture-dir-%d/%s", dirID, relPath)
	entry, ok := fs.reg.dirs[dirID][name]
	if !ok {
		return 0, nil, false, probed
	}
	return entry.fileID, entry.content, true, probed
}

func stripRsExt(name string) string {
	const ext = ".rs"
	if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
		return name[:len(name)-len(ext)]
	}
	return name
}

// MacroExpander expands only legacy (macro_rules!) calls whose definition
// carried an `expansion:` field in the fixture; path-resolved macro calls
// with no registered expansion simply never resolve, which is sufficient
// for exercising spec §4.3's bookkeeping without a real macro engine.
type MacroExpander struct {
	expansions map[string]*ModuleSpec
}

func newMacroExpander() *MacroExpander {
	return &MacroExpander{expansions: make(map[string]*ModuleSpec)}
}

func (e *MacroExpander) Expand(def resolve.MacroDefInfo, _ resolve.MacroCallInfo) (resolve.ItemSource, bool) {
	mod, ok := e.expansions[def.Path.String()]
	if !ok {
		return nil, false
	}
	return mod, true
}

func (e *MacroExpander) SubstituteDollarCrate(src resolve.ItemSource, _ resolve.MacroCallInfo) resolve.ItemSource {
	return src
}

// Walker is the testfixture's resolve.ItemWalker: it transcribes a
// *ModuleSpec's declared contents directly into ModCollector calls.
type Walker struct {
	expander *MacroExpander
}

func (w *Walker) Walk(src resolve.ItemSource, mc *resolve.ModCollector) error {
	mod, ok := src.(*ModuleSpec)
	if !ok {
		return fmt.Errorf("testfixture: unexpected item source %T", src)
	}
	if mod == nil {
		return nil
	}
	pc := pathConverter{mc: mc}
	ownPath := mc.Module().Path().Segments()

	for _, it := range mod.Items {
		var perNs resolve.PerNs
		target := it.TargetPath
		if len(target) == 0 {
			target = appendSeg(ownPath, it.Name)
		}
		item := resolve.VisItem{
			Path:        mc.Path(target),
			Visibility:  visFromSpec(pc, it.Vis),
			IsModOrEnum: it.IsModOrEnum,
		}
		for _, ns := range namespacesOf(it.Namespaces) {
			perNs = perNs.Update(resolve.NewPerNs(ns, item))
		}
		mc.AddItem(it.Name, perNs)
	}

	for _, im := range mod.Imports {
		mc.AddImport(im.Path, im.Name, visFromSpec(pc, im.Vis), im.Glob, im.ExternCrate, im.Prelude)
	}

	for _, lm := range mod.LegacyMacros {
		def := resolve.MacroDefInfo{
			Path:       mc.Path(appendSeg(ownPath, lm.Name)),
			Visibility: visFromSpec(pc, lm.Vis),
		}
		mc.AddLegacyMacro(lm.Name, def)
		if lm.Expansion != nil {
			w.expander.expansions[def.Path.String()] = lm.Expansion
		}
	}

	for _, mcall := range mod.Macros {
		dollar := make(map[string]resolve.ModPath, len(mcall.DollarCrate))
		for name, segs := range mcall.DollarCrate {
			dollar[name] = mc.Path(segs)
		}
		mc.AddMacroCall(&resolve.MacroCallInfo{
			Path:           mcall.Path,
			IsInclude:      mcall.Include,
			IncludePath:    mcall.IncludePath,
			Body:           mcall.Body,
			DollarCrateMap: dollar,
		})
	}

	for _, ch := range mod.Children {
		vis := visFromSpec(pc, ch.Vis)
		if ch.File {
			sub := mc.DeclareFileModule(ch.Name, vis, ch.IsEnum)
			if ch.CfgDisabled {
				sub.DisableByCfg()
			}
			continue
		}
		sub := mc.DeclareInlineChildModule(ch.Name, vis, ch.IsEnum)
		if ch.CfgDisabled {
			sub.DisableByCfg()
		}
		if err := w.Walk(ch.Module, sub); err != nil {
			return err
		}
	}
	return nil
}

func appendSeg(segs []string, name string) []string {
	out := make([]string, len(segs)+1)
	copy(out, segs)
	out[len(segs)] = name
	return out
}

// Crate is the testfixture's resolve.Crate.
type Crate struct {
	spec *CrateSpec
	deps []resolve.Dependency
}

func (c *Crate) ID() resolve.CrateID                  { return resolve.CrateID(c.spec.CrateID) }
func (c *Crate) RootItemSource() (resolve.ItemSource, bool) { return &c.spec.Root, true }
func (c *Crate) RootFileID() resolve.FileID           { return rootFileID }
func (c *Crate) RootDirectory() resolve.FileID         { return rootDirID }
func (c *Crate) Attrs() resolve.RootAttrs {
	return resolve.RootAttrs{NoStd: c.spec.NoStd, NoCore: c.spec.NoCore}
}
func (c *Crate) Edition() resolve.Edition {
	e, err := resolve.NewEdition(c.spec.Edition)
	if err != nil {
		e, _ = resolve.NewEdition("2018")
	}
	return e
}
func (c *Crate) Dependencies() []resolve.Dependency { return c.deps }

// Build wires a parsed CrateSpec into a ready-to-use (Crate, FileSystem,
// MacroExpander, ItemWalker) tuple. depMaps supplies the already-built
// CrateDefMap for each dependency named in spec.Dependencies, keyed by its
// fixture crate id.
func Build(spec *CrateSpec, depMaps map[int32]*resolve.CrateDefMap) (*Crate, *FileSystem, *MacroExpander, *Walker) {
	reg := newRegistry(&spec.Root)
	fs := &FileSystem{reg: reg}
	expander := newMacroExpander()
	walker := &Walker{expander: expander}

	deps := make([]resolve.Dependency, 0, len(spec.Dependencies))
	for _, d := range spec.Dependencies {
		deps = append(deps, resolve.Dependency{
			ID:              resolve.CrateID(d.CrateID),
			ExternCrateName: d.ExternCrateName,
			DefMap:          depMaps[d.CrateID],
		})
	}
	crate := &Crate{spec: spec, deps: deps}
	return crate, fs, expander, walker
}
