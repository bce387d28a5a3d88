package reactive

import "slices"

// Cleanup is a function returned by effects to release resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

// Effect is a reactive side effect. It runs once when created and again
// whenever a signal it read during its most recent run is set.
//
// Dependencies are exactly the signals read during the most recent run:
// every re-run drops the previous edges before executing, so the set can
// shrink or grow between runs.
type Effect struct {
	id   uint64
	name string
	rt   *Runtime

	fn      func() Cleanup
	cleanup Cleanup

	// sources are the signals read during the last run.
	sources []*signalBase

	// owner is the scope the effect was registered with.
	owner *Scope

	// scope owns everything created by the effect body. It is emptied
	// before every re-run.
	scope *Scope

	pending  bool
	running  bool
	disposed bool
	runs     int
}

// EffectOption configures an Effect.
type EffectOption func(*Effect)

// EffectName labels the effect in diagnostics and cycle reports.
func EffectName(name string) EffectOption {
	return func(e *Effect) {
		e.name = name
	}
}

// CreateEffect creates an effect owned by the current scope and runs it
// immediately.
//
// Example:
//
//	rt.CreateEffect(func() reactive.Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { fmt.Println("Cleanup") }
//	})
func (rt *Runtime) CreateEffect(fn func() Cleanup, opts ...EffectOption) *Effect {
	e := &Effect{
		id: rt.nextID(),
		rt: rt,
		fn: fn,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.scope = newScope(rt, nil)

	owner := rt.scope
	if !owner.registerEffect(e) {
		e.disposed = true
		e.scope.Dispose()
		return e
	}
	e.owner = owner

	var chain []*Effect
	if rt.running != nil {
		chain = append(slices.Clone(rt.chain), rt.running)
	}
	rt.run(e, chain)

	// Writes made during the first run were queued.
	rt.flush()
	return e
}

// ID returns the unique identifier for this effect.
func (e *Effect) ID() uint64 {
	return e.id
}

// Name returns the diagnostic name, possibly empty.
func (e *Effect) Name() string {
	return e.name
}

// Runs returns how many times the effect body has executed.
func (e *Effect) Runs() int {
	return e.runs
}

// Dependencies returns the number of signals read during the last run.
func (e *Effect) Dependencies() int {
	return len(e.sources)
}

// IsDisposed reports whether the effect has been disposed.
func (e *Effect) IsDisposed() bool {
	return e.disposed
}

// Info returns the identity of the effect for observers and errors.
func (e *Effect) Info() EffectInfo {
	return EffectInfo{ID: e.id, Name: e.name, Runs: e.runs}
}

// Dispose removes the effect's dependency edges immediately, disposes
// whatever its body created and runs its cleanup. It is idempotent.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.pending = false

	if e.owner != nil {
		e.owner.unregisterEffect(e)
		e.owner = nil
	}
	e.clearSources()
	e.scope.Dispose()

	if e.cleanup != nil {
		cleanup := e.cleanup
		e.cleanup = nil
		e.rt.Untracked(cleanup)
	}
}

// addSource records a dependency. Deduplication happens in signalBase.track.
func (e *Effect) addSource(source *signalBase) {
	e.sources = append(e.sources, source)
}

// clearSources removes every dependency edge.
func (e *Effect) clearSources() {
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = e.sources[:0]
}

// OnUpdate creates an effect that skips fn on the first run. deps is called
// on every run to establish dependencies.
//
// Example:
//
//	rt.OnUpdate(
//	    func() { count.Track() },
//	    func() { fmt.Println("Updated!") },
//	)
func (rt *Runtime) OnUpdate(deps func(), fn func()) *Effect {
	first := true
	return rt.CreateEffect(func() Cleanup {
		deps()
		if first {
			first = false
			return nil
		}
		rt.Untracked(fn)
		return nil
	})
}
