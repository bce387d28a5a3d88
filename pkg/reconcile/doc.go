// Package reconcile provides keyed list reconciliation.
//
// A Reconciler keeps one view handle per key. Each pass takes the current
// ordered items and returns the handles in the same order: handles for keys
// that survive are reused untouched, new keys are built exactly once, and
// keys that vanished are disposed exactly once. Pure reorders cost nothing
// but the new ordering.
//
// # Changes
//
// Every pass records the changes it made, in the spirit of a DOM patch
// list:
//
//	ChangeCreate  - a new key was built at Index
//	ChangeMove    - a reused key changed position to Index
//	ChangeDispose - a vanished key was disposed
//
// # Reactive binding
//
// Each binds a reconciler to a source function inside an effect, so the
// list re-reconciles whenever a signal read by the source is set:
//
//	list := reconcile.Each(rt,
//	    func() []Row { return rows.Get() },
//	    func(r Row) int { return r.ID },
//	    func(r Row) *RowView { return newRowView(r) },
//	)
//	views := list.Views.Get()
//
// Build functions run untracked, so signals read while building a view do
// not make the whole list re-reconcile.
package reconcile
