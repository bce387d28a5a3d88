package reconcile

import "github.com/vango-dev/tabdeck/pkg/reactive"

// List is a reconciler bound to a reactive source.
type List[K comparable, T any, V any] struct {
	// Views holds the ordered handles of the latest pass.
	Views *reactive.Signal[[]V]

	r      *Reconciler[K, T, V]
	scope  *reactive.Scope
	effect *reactive.Effect
}

// Each creates a List owned by the current scope. source is re-read inside
// an effect, so the list re-reconciles whenever a signal it reads is set.
//
// A duplicate key is a programming error: the effect panics with the
// *DuplicateKeyError.
func Each[K comparable, T any, V any](rt *reactive.Runtime, source func() []T, key func(T) K, build func(T) V, opts ...Option) *List[K, T, V] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	scope := rt.Scope().Child()
	r := New(key, build, append(opts[:len(opts):len(opts)], WithScope(scope))...)
	l := &List[K, T, V]{
		Views: reactive.NewSignal[[]V](rt, nil, reactive.Named(o.name+".views")),
		r:     r,
		scope: scope,
	}

	scope.OnCleanup(r.Dispose)
	scope.Run(func() {
		l.effect = rt.CreateEffect(func() reactive.Cleanup {
			views, err := r.Reconcile(source())
			if err != nil {
				rt.Logger().Error("reconcile: pass failed", "list", o.name, "error", err)
				panic(err)
			}
			l.Views.Set(views)
			return nil
		}, reactive.EffectName(o.name))
	})
	return l
}

// Reconciler returns the underlying reconciler.
func (l *List[K, T, V]) Reconciler() *Reconciler[K, T, V] {
	return l.r
}

// Lookup returns the live handle for k.
func (l *List[K, T, V]) Lookup(k K) (V, bool) {
	return l.r.Lookup(k)
}

// Dispose stops the binding and disposes every handle.
func (l *List[K, T, V]) Dispose() {
	l.scope.Dispose()
}
