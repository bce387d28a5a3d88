package reconcile

import (
	"errors"
	"fmt"

	"github.com/vango-dev/tabdeck/pkg/reactive"
)

// ErrDuplicateKey is wrapped by *DuplicateKeyError.
var ErrDuplicateKey = errors.New("reconcile: duplicate key")

// DuplicateKeyError reports a key that appears twice in one pass.
type DuplicateKeyError struct {
	Key    any
	First  int
	Second int
}

// Error implements the error interface.
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s %v at positions %d and %d", ErrDuplicateKey, e.Key, e.First, e.Second)
}

// Unwrap returns ErrDuplicateKey for errors.Is support.
func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}

// Disposer is implemented by view handles that hold resources beyond
// their scope.
type Disposer interface {
	Dispose()
}

// ChangeOp is the kind of a recorded change.
type ChangeOp uint8

const (
	ChangeCreate ChangeOp = iota + 1
	ChangeMove
	ChangeDispose
)

// String returns a human-readable name for the change.
func (op ChangeOp) String() string {
	switch op {
	case ChangeCreate:
		return "Create"
	case ChangeMove:
		return "Move"
	case ChangeDispose:
		return "Dispose"
	default:
		return "Unknown"
	}
}

// Change is one structural change made by a pass.
type Change[K comparable] struct {
	Op    ChangeOp
	Key   K
	Index int // position in the new order; -1 for ChangeDispose
}

// Pass summarizes one call to Reconcile.
type Pass[K comparable] struct {
	Changes  []Change[K]
	Created  int
	Reused   int
	Moved    int
	Disposed int
}

// Observer is notified after every successful pass.
type Observer interface {
	Reconciled(name string, created, reused, moved, disposed int)
}

type entry[V any] struct {
	view  V
	scope *reactive.Scope
	index int
}

// Reconciler maps keys to view handles across passes.
// It is not safe for concurrent use.
type Reconciler[K comparable, T any, V any] struct {
	key   func(T) K
	build func(T) V

	name     string
	scope    *reactive.Scope
	observer Observer

	live  map[K]*entry[V]
	order []K
	views []V
	last  Pass[K]
}

// Option configures a Reconciler.
type Option func(*options)

type options struct {
	name     string
	scope    *reactive.Scope
	observer Observer
}

// WithScope makes every view build inside its own child of parent. The
// child scope is disposed with the view.
func WithScope(parent *reactive.Scope) Option {
	return func(o *options) {
		o.scope = parent
	}
}

// WithObserver installs an observer notified after every pass.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithName labels the reconciler for observers and logs.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// New creates a reconciler. key extracts the identity of an item; build
// constructs the view handle for a new key.
func New[K comparable, T any, V any](key func(T) K, build func(T) V, opts ...Option) *Reconciler[K, T, V] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Reconciler[K, T, V]{
		key:      key,
		build:    build,
		name:     o.name,
		scope:    o.scope,
		observer: o.observer,
		live:     make(map[K]*entry[V]),
	}
}

// Reconcile brings the live set in line with items and returns one handle
// per item, in item order. A duplicate key fails the whole pass and leaves
// the live set untouched.
func (r *Reconciler[K, T, V]) Reconcile(items []T) ([]V, error) {
	keys := make([]K, len(items))
	positions := make(map[K]int, len(items))
	for i, item := range items {
		k := r.key(item)
		if first, dup := positions[k]; dup {
			return nil, &DuplicateKeyError{Key: k, First: first, Second: i}
		}
		positions[k] = i
		keys[i] = k
	}

	var pass Pass[K]
	next := make(map[K]*entry[V], len(items))
	views := make([]V, len(items))

	for i, item := range items {
		k := keys[i]
		if e, ok := r.live[k]; ok {
			if e.index != i {
				pass.Changes = append(pass.Changes, Change[K]{Op: ChangeMove, Key: k, Index: i})
				pass.Moved++
			}
			e.index = i
			next[k] = e
			views[i] = e.view
			pass.Reused++
			continue
		}

		e := r.create(item, i)
		next[k] = e
		views[i] = e.view
		pass.Changes = append(pass.Changes, Change[K]{Op: ChangeCreate, Key: k, Index: i})
		pass.Created++
	}

	for _, k := range r.order {
		if _, kept := next[k]; kept {
			continue
		}
		r.dispose(r.live[k])
		pass.Changes = append(pass.Changes, Change[K]{Op: ChangeDispose, Key: k, Index: -1})
		pass.Disposed++
	}

	r.live = next
	r.order = keys
	r.views = views
	r.last = pass

	if r.observer != nil {
		r.observer.Reconciled(r.name, pass.Created, pass.Reused, pass.Moved, pass.Disposed)
	}
	return views, nil
}

func (r *Reconciler[K, T, V]) create(item T, index int) *entry[V] {
	e := &entry[V]{index: index}
	if r.scope == nil {
		e.view = r.build(item)
		return e
	}
	e.scope = r.scope.Child()
	rt := e.scope.Runtime()
	e.scope.Run(func() {
		rt.Untracked(func() {
			e.view = r.build(item)
		})
	})
	return e
}

func (r *Reconciler[K, T, V]) dispose(e *entry[V]) {
	if d, ok := any(e.view).(Disposer); ok {
		d.Dispose()
	}
	if e.scope != nil {
		e.scope.Dispose()
	}
}

// Views returns the handles produced by the last pass.
func (r *Reconciler[K, T, V]) Views() []V {
	return r.views
}

// Lookup returns the live handle for k.
func (r *Reconciler[K, T, V]) Lookup(k K) (V, bool) {
	e, ok := r.live[k]
	if !ok {
		var zero V
		return zero, false
	}
	return e.view, true
}

// Len returns the number of live handles.
func (r *Reconciler[K, T, V]) Len() int {
	return len(r.live)
}

// Last returns the summary of the most recent successful pass.
func (r *Reconciler[K, T, V]) Last() Pass[K] {
	return r.last
}

// Dispose disposes every live handle, in current order.
func (r *Reconciler[K, T, V]) Dispose() {
	for _, k := range r.order {
		r.dispose(r.live[k])
	}
	r.live = make(map[K]*entry[V])
	r.order = nil
	r.views = nil
}
