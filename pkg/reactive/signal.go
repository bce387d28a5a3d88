package reactive

import "slices"

// signalBase provides type-erased subscriber management.
// It is embedded in Signal[T] so Trigger and typed signals share the same
// tracking logic.
type signalBase struct {
	id   uint64
	name string
	rt   *Runtime

	// subs are the effects subscribed to this signal, in subscription
	// order. Propagation follows this order.
	subs []*Effect
}

// track subscribes the listening effect, if any.
// Deduplicates so an effect reading a signal twice holds one edge.
func (s *signalBase) track() {
	e := s.rt.listener
	if e == nil || e.disposed {
		return
	}
	if slices.Contains(s.subs, e) {
		return
	}
	s.subs = append(s.subs, e)
	e.addSource(s)
}

// unsubscribe removes an effect, preserving the order of the rest.
func (s *signalBase) unsubscribe(e *Effect) {
	for i, existing := range s.subs {
		if existing == e {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// notify schedules every current subscriber and flushes when no effect,
// batch or flush is in progress.
func (s *signalBase) notify() {
	subs := slices.Clone(s.subs)
	if s.rt.observer != nil {
		s.rt.observer.SignalSet(s.info(), len(subs))
	}
	for _, e := range subs {
		s.rt.schedule(e, s)
	}
	s.rt.flush()
}

func (s *signalBase) info() SignalInfo {
	return SignalInfo{ID: s.id, Name: s.name}
}

// Signal is a reactive value container.
// Reading a Signal with Get inside an effect subscribes the effect; Set
// re-runs every subscriber.
type Signal[T any] struct {
	base  signalBase
	value T
}

// SignalOption configures a signal.
type SignalOption func(*signalOptions)

type signalOptions struct {
	name string
}

// Named labels the signal in diagnostics and cycle reports.
func Named(name string) SignalOption {
	return func(o *signalOptions) {
		o.name = name
	}
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](rt *Runtime, initial T, opts ...SignalOption) *Signal[T] {
	var o signalOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Signal[T]{
		base: signalBase{
			id:   rt.nextID(),
			name: o.name,
			rt:   rt,
		},
		value: initial,
	}
}

// Get returns the current value and subscribes the running effect.
func (s *Signal[T]) Get() T {
	s.base.track()
	return s.value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	return s.value
}

// With calls fn with the current value and subscribes the running effect.
// fn must not retain a value it is not allowed to share.
func (s *Signal[T]) With(fn func(T)) {
	s.base.track()
	fn(s.value)
}

// With calls fn with the current value of s and returns its result,
// subscribing the running effect like Get.
func With[T, R any](s *Signal[T], fn func(T) R) R {
	s.base.track()
	return fn(s.value)
}

// Track subscribes the running effect without reading the value.
func (s *Signal[T]) Track() {
	s.base.track()
}

// Set replaces the value and re-runs every subscriber. There is no
// equality check: setting an equal value still notifies.
func (s *Signal[T]) Set(value T) {
	s.value = value
	s.base.notify()
}

// Update replaces the value with fn(current) and notifies.
func (s *Signal[T]) Update(fn func(T) T) {
	s.value = fn(s.value)
	s.base.notify()
}

// Modify mutates the value in place and notifies. It is the scoped
// mutation for values that are expensive to copy.
func (s *Signal[T]) Modify(fn func(*T)) {
	fn(&s.value)
	s.base.notify()
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

// Name returns the diagnostic name, possibly empty.
func (s *Signal[T]) Name() string {
	return s.base.name
}

// Subscribers returns the number of effects currently depending on s.
func (s *Signal[T]) Subscribers() int {
	return len(s.base.subs)
}
