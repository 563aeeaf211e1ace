package resolve

// MacroCallInfo is a pending macro invocation recorded by the ModCollector
// contract (spec §3/§4.4), to be attempted by the def-collector's macro
// expansion driver (§4.3).
type MacroCallInfo struct {
	ContainingMod ModuleID
	Path          []string // empty for include!, which is identified by IsInclude
	IsInclude     bool
	IncludePath   string // the literal argument to include!(), for IsInclude calls

	Body     string
	BodyHash []byte // optional; nil if the host didn't supply one

	Depth int

	// MacroDef is populated when the call was already resolved against a
	// legacy (macro_rules!) definition at collection time — case 2 of
	// §4.3 ("legacy-scoped call").
	MacroDef *MacroDefInfo

	// DollarCrateMap substitutes `$crate` occurrences inside the macro's
	// expansion with the path of the crate that defined the macro. Nil
	// entries are legal: a macro with no $crate usage needs none.
	DollarCrateMap map[string]ModPath
}
