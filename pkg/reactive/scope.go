package reactive

// Scope owns effects, child scopes and cleanup functions. Disposing a
// scope disposes everything it owns, which mirrors unmounting a subtree
// of views.
//
// Scopes form a hierarchy: a child is disposed with its parent.
type Scope struct {
	id     uint64
	rt     *Runtime
	parent *Scope

	children []*Scope
	effects  []*Effect
	cleanups []func()

	disposed bool
}

func newScope(rt *Runtime, parent *Scope) *Scope {
	s := &Scope{
		id:     rt.nextID(),
		rt:     rt,
		parent: parent,
	}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	return s
}

// Child creates a scope owned by s.
func (s *Scope) Child() *Scope {
	return newScope(s.rt, s)
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Runtime returns the runtime the scope belongs to.
func (s *Scope) Runtime() *Runtime {
	return s.rt
}

// IsDisposed returns true if the scope has been disposed.
func (s *Scope) IsDisposed() bool {
	return s.disposed
}

// Effects returns the number of live effects owned directly by s.
func (s *Scope) Effects() int {
	return len(s.effects)
}

// Run runs fn with s as the current scope, so effects created by fn are
// owned by s.
//
// Example:
//
//	view := rt.Root().Child()
//	view.Run(func() {
//	    rt.CreateEffect(func() reactive.Cleanup { ... })
//	})
//	view.Dispose() // the effect is gone
func (s *Scope) Run(fn func()) {
	prev := s.rt.scope
	s.rt.scope = s
	defer func() { s.rt.scope = prev }()
	fn()
}

// OnCleanup registers fn to run when the scope is disposed. If the scope
// is already disposed, fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

func (s *Scope) registerEffect(e *Effect) bool {
	if s.disposed {
		return false
	}
	s.effects = append(s.effects, e)
	return true
}

func (s *Scope) unregisterEffect(e *Effect) {
	for i, existing := range s.effects {
		if existing == e {
			s.effects = append(s.effects[:i], s.effects[i+1:]...)
			return
		}
	}
}

func (s *Scope) removeChild(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// Dispose disposes children in reverse creation order, then effects, then
// runs cleanups in reverse registration order. After disposal the scope
// cannot own anything new.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposeContents()
	s.disposed = true
	if s.parent != nil {
		s.parent.removeChild(s)
		s.parent = nil
	}
}

// reset disposes everything owned by s but keeps s usable.
func (s *Scope) reset() {
	if s.disposed {
		return
	}
	s.disposeContents()
}

func (s *Scope) disposeContents() {
	children := s.children
	s.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].parent = nil
		children[i].Dispose()
	}

	effects := s.effects
	s.effects = nil
	for _, e := range effects {
		e.owner = nil
		e.Dispose()
	}

	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		s.rt.Untracked(cleanups[i])
	}
}
