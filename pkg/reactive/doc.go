// Package reactive provides the dependency-tracking core used by tabdeck.
//
// Reactivity is fine-grained: reading a signal inside an effect subscribes
// that effect to the signal, and writing the signal re-runs it. All state
// lives in an explicit Runtime value; nothing is looked up from an ambient
// context.
//
// # Core Types
//
// Signal[T] is a read/write cell:
//
//	rt := reactive.NewRuntime()
//	count := reactive.NewSignal(rt, 0)
//	value := count.Get()  // Read (subscribes the running effect)
//	count.Set(5)          // Write (re-runs subscribers, always)
//	count.Update(func(n int) int { return n + 1 })
//
// Effect runs a side effect and re-runs it when a dependency is set:
//
//	rt.CreateEffect(func() reactive.Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return nil
//	})
//
// Trigger is a dependency-only cell with no payload:
//
//	closed := reactive.NewTrigger(rt)
//	closed.Notify()
//
// # Propagation
//
// A Set outside any effect flushes synchronously before it returns. The
// flush runs dirty effects in waves: every effect scheduled by one wave runs
// once, and the writes it performs schedule the next wave. A write never
// recurses into an effect that is already running. An effect that is
// re-triggered by its own causal chain is a cycle and panics with a
// *CycleError.
//
// # Ownership
//
// Scope mirrors the component ownership tree: effects belong to the scope
// that was current when they were created, and disposing a scope disposes
// everything it owns. Each effect also owns a private scope that is emptied
// before every re-run, so effects created by a previous run never leak.
//
// # Thread Safety
//
// A Runtime and everything created from it must be used from a single
// goroutine. There is no internal locking.
package reactive
