package resolve

// expandMacros implements spec §4.3: attempt every pending macro call once,
// keeping those that can't yet be attempted (legacy call whose name isn't
// defined yet, or a path that can still grow). Calls that fail permanently
// (an unresolvable path, an expansion the host rejects, a missing include!
// file) are consumed and dropped as soft failures per §7; nothing is
// logged. Returns whether at least one call was consumed, which is what
// drives DefCollector.run's outer loop (spec §4.3: "if any call was
// consumed, the outer loop re-enters import resolution").
func (dc *DefCollector) expandMacros() (bool, error) {
	if len(dc.pendingMacros) == 0 {
		return false, nil
	}

	consumedAny := false
	var remaining []*MacroCallInfo
	for _, call := range dc.pendingMacros {
		if err := dc.cc.checkCancelled(); err != nil {
			return false, err
		}
		dc.cc.tick("expand-macros")

		consumed, err := dc.expandOne(call)
		if err != nil {
			return false, err
		}
		if consumed {
			consumedAny = true
			continue
		}
		remaining = append(remaining, call)
	}
	dc.pendingMacros = remaining
	return consumedAny, nil
}

// expandOne attempts a single macro call, dispatching on the three cases of
// spec §4.3.
func (dc *DefCollector) expandOne(call *MacroCallInfo) (bool, error) {
	if call.Depth > dc.cc.maxMacroDepth {
		return true, nil // dropped silently: depth cap exceeded, spec §4.3/§7
	}

	switch {
	case call.IsInclude:
		return dc.expandInclude(call)
	case call.MacroDef != nil:
		return dc.expandResolved(call, *call.MacroDef)
	case len(call.Path) == 1:
		return dc.expandLegacyCall(call)
	default:
		return dc.expandPathCall(call)
	}
}

// expandPathCall is the other half of case 3: a qualified call (`foo::bar!()`)
// that arrived with no MacroDef yet attached, resolved by walking call.Path
// through the macros namespace exactly as an import would (spec §4.1's
// ResolvePath, restricted to MacrosNS), with withInvisibleItems false: a
// cfg-disabled or otherwise invisible binding along the path must not be
// expanded (spec §4.3 case 3).
func (dc *DefCollector) expandPathCall(call *MacroCallInfo) (bool, error) {
	perNs, reachedFixedPoint, _ := ResolvePath(dc.defMap, dc, call.ContainingMod, call.Path, false)
	item, ok := perNs.Get(MacrosNS)
	if !ok {
		if !reachedFixedPoint {
			return false, nil
		}
		return true, nil // permanently unresolvable macro path: soft failure
	}
	return dc.expandResolved(call, MacroDefInfo{Path: item.Path, Visibility: item.Visibility})
}

// expandInclude is case 1: `include!(path)` is resolved via the file-system
// capability relative to the containing file, and its items are walked
// directly into the *same* module (not a new child), per spec §4.3.
func (dc *DefCollector) expandInclude(call *MacroCallInfo) (bool, error) {
	module := dc.defMap.Module(call.ContainingMod)
	file, src, ok, probedPath := dc.fs.ResolveInclude(module.FileID, call.IncludePath)
	if !ok {
		dc.defMap.AddMissedFile(probedPath)
		return true, nil // permanent failure: the path will never change mid-build
	}

	dc.defMap.FileInfos[file] = &FileInfo{Module: module.id}
	mc := newModCollector(dc.defMap, dc.cc, module, call.Depth+1)
	if err := dc.walker.Walk(src, mc); err != nil {
		return false, err
	}
	return true, nil
}

// expandLegacyCall is case 2: a macro invocation that names no explicit
// path, resolved against the legacy (macro_rules!, textual-scope) table of
// the containing module — and, per spec §4.3, its ancestors, since legacy
// macro scope is inherited outward. If no definition exists yet but the
// containing module can still grow, the call is kept pending; if the
// module has reached fixed point, the call is dropped (unresolvable legacy
// macro, a soft failure per §7).
func (dc *DefCollector) expandLegacyCall(call *MacroCallInfo) (bool, error) {
	name := legacyCallName(call)
	if name == "" {
		return true, nil
	}

	for cur := dc.defMap.Module(call.ContainingMod); ; {
		if def, ok := cur.LegacyMacro(name); ok {
			return dc.expandResolved(call, def)
		}
		parentID, ok := cur.Parent()
		if !ok {
			break
		}
		cur = dc.defMap.Module(parentID)
	}

	if dc.StillGrowing(dc.defMap.Crate, call.ContainingMod) {
		return false, nil
	}
	return true, nil
}

// legacyCallName extracts the bare macro name from a legacy (unqualified)
// call's Path, which the ModCollector contract populates with exactly one
// segment for this case.
func legacyCallName(call *MacroCallInfo) string {
	if len(call.Path) != 1 {
		return ""
	}
	return call.Path[0]
}

// expandResolved is the expansion step shared by case 2 (a legacy call, or
// a call that arrived with its MacroDef attached) and case 3 (once
// expandPathCall has resolved the path): the call is expanded against def
// by the host's MacroExpander, and its result walked into a fresh
// ModCollector scoped at the containing module, one macro-depth level
// deeper.
func (dc *DefCollector) expandResolved(call *MacroCallInfo, def MacroDefInfo) (bool, error) {
	expanded, ok := dc.expander.Expand(def, *call)
	if !ok {
		return true, nil // host rejected the expansion: soft failure, spec §7
	}
	expanded = dc.expander.SubstituteDollarCrate(expanded, *call)

	module := dc.defMap.Module(call.ContainingMod)
	mc := newModCollector(dc.defMap, dc.cc, module, call.Depth+1)
	if err := dc.walker.Walk(expanded, mc); err != nil {
		return false, err
	}
	return true, nil
}
