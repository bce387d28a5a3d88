package reactive

import (
	"log/slog"
	"slices"
	"time"
)

// Runtime owns the tracking state shared by signals, effects and scopes.
// A Runtime is single-owner: it must not be used from more than one
// goroutine.
type Runtime struct {
	ids uint64

	root  *Scope
	scope *Scope

	// listener is the effect whose reads are being tracked.
	// nil means reads don't create subscriptions.
	listener *Effect

	// running is the effect whose body is executing, tracked or not.
	// Writes are attributed to it for cycle detection.
	running *Effect

	// chain is the causal chain of the running effect within the
	// current flush.
	chain []*Effect

	batchDepth int
	flushing   bool
	queue      []scheduled

	logger   *slog.Logger
	observer Observer
}

// scheduled is a queued effect run together with the effects whose writes
// caused it.
type scheduled struct {
	effect *Effect
	chain  []*Effect
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithObserver installs an observer notified about writes and effect runs.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		rt.observer = o
	}
}

// NewRuntime creates a runtime with an empty root scope.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{logger: slog.Default()}
	for _, opt := range opts {
		opt(rt)
	}
	rt.root = newScope(rt, nil)
	rt.scope = rt.root
	return rt
}

// Root returns the root scope.
func (rt *Runtime) Root() *Scope {
	return rt.root
}

// Scope returns the scope that currently owns newly created effects.
func (rt *Runtime) Scope() *Scope {
	return rt.scope
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Dispose disposes the root scope and drops any queued work.
func (rt *Runtime) Dispose() {
	rt.drop()
	rt.root.Dispose()
}

func (rt *Runtime) nextID() uint64 {
	rt.ids++
	return rt.ids
}

// Batch groups writes so that dependents run once, after the outermost
// batch returns.
//
// Example:
//
//	rt.Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
func (rt *Runtime) Batch(fn func()) {
	rt.batchDepth++
	defer func() {
		rt.batchDepth--
		if rt.batchDepth == 0 {
			rt.flush()
		}
	}()
	fn()
}

// Untracked runs fn without subscribing the current effect to the signals
// fn reads. For a single read prefer Signal.Peek.
func (rt *Runtime) Untracked(fn func()) {
	prev := rt.listener
	rt.listener = nil
	defer func() { rt.listener = prev }()
	fn()
}

// schedule queues e after a write to src. The running effect, if any, is
// recorded as the cause.
func (rt *Runtime) schedule(e *Effect, src *signalBase) {
	if e.disposed {
		return
	}
	author := rt.running
	if author == e {
		// The effect is the in-progress author of the change.
		return
	}

	var chain []*Effect
	if author != nil {
		chain = make([]*Effect, 0, len(rt.chain)+1)
		chain = append(chain, rt.chain...)
		chain = append(chain, author)
		if slices.Contains(chain, e) {
			err := newCycleError(e, src, chain)
			rt.logger.Error("reactive: cyclic dependency", "effect", err.Effect, "signal", err.Signal, "chain", err.Chain)
			rt.drop()
			panic(err)
		}
	}

	if e.pending {
		return
	}
	e.pending = true
	rt.queue = append(rt.queue, scheduled{effect: e, chain: chain})
}

// flush runs dirty effects wave by wave until the queue is empty.
func (rt *Runtime) flush() {
	if rt.flushing || rt.batchDepth > 0 || rt.running != nil {
		return
	}
	if len(rt.queue) == 0 {
		return
	}

	rt.flushing = true
	defer func() {
		rt.flushing = false
		if r := recover(); r != nil {
			rt.drop()
			panic(r)
		}
	}()

	waves, runs := 0, 0
	for len(rt.queue) > 0 {
		wave := rt.queue
		rt.queue = nil
		waves++
		for _, s := range wave {
			if s.effect.disposed || !s.effect.pending {
				continue
			}
			rt.run(s.effect, s.chain)
			runs++
		}
	}
	rt.logger.Debug("reactive: flush", "waves", waves, "runs", runs)
}

// drop clears the queue without running anything.
func (rt *Runtime) drop() {
	for _, s := range rt.queue {
		s.effect.pending = false
	}
	rt.queue = nil
}

// run executes one effect run with tracking enabled.
func (rt *Runtime) run(e *Effect, chain []*Effect) {
	if e.running {
		err := newCycleError(e, nil, append(slices.Clone(chain), e))
		rt.logger.Error("reactive: effect re-entered", "effect", err.Effect, "chain", err.Chain)
		rt.drop()
		panic(err)
	}
	e.pending = false
	e.running = true
	e.runs++

	prevListener, prevRunning, prevChain, prevScope := rt.listener, rt.running, rt.chain, rt.scope
	defer func() {
		rt.listener, rt.running, rt.chain, rt.scope = prevListener, prevRunning, prevChain, prevScope
		e.running = false
	}()

	// Previous run's cleanup and children go first, untracked.
	rt.listener = nil
	if e.cleanup != nil {
		cleanup := e.cleanup
		e.cleanup = nil
		cleanup()
	}
	e.scope.reset()
	e.clearSources()

	rt.listener, rt.running, rt.chain, rt.scope = e, e, chain, e.scope

	start := time.Now()
	cleanup := e.fn()
	if e.disposed {
		// The body disposed its own effect; nothing will run this later.
		if cleanup != nil {
			rt.listener = nil
			cleanup()
		}
	} else {
		e.cleanup = cleanup
	}
	if rt.observer != nil {
		rt.observer.EffectRun(e.Info(), time.Since(start))
	}
}
