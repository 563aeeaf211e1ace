package resolve

import (
	"context"

	"github.com/sdboyer/constext"
)

// ProgressToken receives optional progress ticks from the build driver
// (spec §5 "Optional progress ticks for the host"). A nil token is legal
// and means the host doesn't want them.
type ProgressToken interface {
	Tick(stage string)
}

// CancelledError is returned (wrapped by BuildCrateDefMap, build.go) when a build is
// aborted through its CancelFunc or the host's own context. Per spec §5/§7,
// cancellation unwinds the builder without leaving partial state visible:
// callers that see this error must discard whatever CrateDefMap they were
// building.
type CancelledError struct{ cause error }

func (e *CancelledError) Error() string { return "cratemap: build cancelled: " + e.cause.Error() }
func (e *CancelledError) Unwrap() error { return e.cause }

// collectorContext is the shared workspace described in spec §2/§4.4: the
// imports and macro calls the ModCollector deposits for the def-collector
// to consume, plus the combined cancellation context.
//
// Grounded on the teacher's gps.solver, which similarly holds a worklist
// (s.unsel) fed by an upstream step and drained by the solve loop; here the
// upstream step is the host's item-tree walk rather than version
// selection.
type collectorContext struct {
	imports    []*Import
	macroCalls []*MacroCallInfo

	ctx      context.Context
	cancel   context.CancelFunc
	progress ProgressToken

	// maxGlobDepth and maxMacroDepth bound the two recursive propagation
	// processes in §4.2 ("a hard depth of 100") and §4.3 ("default 64").
	maxGlobDepth  int
	maxMacroDepth int
}

// Options tunes the two recursive depth caps spec §4.2/§4.3 call out as
// configurable defaults (glob propagation: 100; macro expansion: 64). A
// zero Options (or passing nil) keeps the spec's defaults.
type Options struct {
	MaxGlobDepth  int
	MaxMacroDepth int
}

func (o *Options) globDepth() int {
	if o == nil || o.MaxGlobDepth <= 0 {
		return 100
	}
	return o.MaxGlobDepth
}

func (o *Options) macroDepth() int {
	if o == nil || o.MaxMacroDepth <= 0 {
		return 64
	}
	return o.MaxMacroDepth
}

// newCollectorContext combines hostCtx (the caller's cancellation source)
// with an internally owned watchdog context via constext.Cons, exactly the
// pattern the teacher's callManager.setUpCall uses to combine an inbound
// context with an operation-scoped one before a cancellable call (spec
// §5's two suspension points: a cancellation check at the top of each loop
// iteration, and before each macro-call expansion).
func newCollectorContext(hostCtx context.Context, progress ProgressToken, opts *Options) *collectorContext {
	watchdogCtx, watchdogCancel := context.WithCancel(context.Background())
	combined, combinedCancel := constext.Cons(hostCtx, watchdogCtx)
	return &collectorContext{
		ctx:           combined,
		cancel:        func() { watchdogCancel(); combinedCancel() },
		progress:      progress,
		maxGlobDepth:  opts.globDepth(),
		maxMacroDepth: opts.macroDepth(),
	}
}

// checkCancelled implements spec §5's "cancellation check at the top of
// each iteration": it returns a *CancelledError the instant the combined
// context reports Err(), and nil otherwise.
func (cc *collectorContext) checkCancelled() error {
	if err := cc.ctx.Err(); err != nil {
		return &CancelledError{cause: err}
	}
	return nil
}

func (cc *collectorContext) tick(stage string) {
	if cc.progress != nil {
		cc.progress.Tick(stage)
	}
}

// addImport is the ModCollector contract's append-on-`use` hook (§4.4).
func (cc *collectorContext) addImport(imp *Import) {
	cc.imports = append(cc.imports, imp)
}

// addMacroCall is the ModCollector contract's append-on-macro-invocation
// hook (§4.4). `mod name;` declarations do not pass through here; they go
// through ModCollector.DeclareFileModule.
func (cc *collectorContext) addMacroCall(call *MacroCallInfo) {
	cc.macroCalls = append(cc.macroCalls, call)
}

// close releases the watchdog goroutine constext.Cons started. Must be
// called exactly once, however the build ends (success, soft failure, or
// cancellation) — mirrors the teacher's callManager.setUpCall always
// invoking its returned cancelFunc from a defer.
func (cc *collectorContext) close() {
	cc.cancel()
}
