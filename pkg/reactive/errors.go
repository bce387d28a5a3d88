package reactive

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrCyclicDependency is the sentinel wrapped by *CycleError.
// A cycle is a configuration error: the runtime panics with a *CycleError
// instead of looping or overflowing the stack.
var ErrCyclicDependency = errors.New("reactive: cyclic dependency")

// SignalInfo identifies a signal in observer callbacks and errors.
type SignalInfo struct {
	ID   uint64
	Name string
}

func (s SignalInfo) String() string {
	return label(s.Name, s.ID)
}

// EffectInfo identifies an effect in observer callbacks and errors.
type EffectInfo struct {
	ID   uint64
	Name string
	Runs int
}

func (e EffectInfo) String() string {
	return label(e.Name, e.ID)
}

func label(name string, id uint64) string {
	if name == "" {
		return fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("%s#%d", name, id)
}

// CycleError reports an effect that was re-triggered by its own causal
// chain. Signal is zero when the cycle was caught by the re-entrancy guard.
type CycleError struct {
	Effect EffectInfo
	Signal SignalInfo
	Chain  []EffectInfo
}

func newCycleError(e *Effect, src *signalBase, chain []*Effect) *CycleError {
	err := &CycleError{Effect: e.Info()}
	if src != nil {
		err.Signal = src.info()
	}
	for _, c := range chain {
		err.Chain = append(err.Chain, c.Info())
	}
	return err
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	var b strings.Builder
	b.WriteString(ErrCyclicDependency.Error())
	b.WriteString(": effect ")
	b.WriteString(e.Effect.String())
	if e.Signal.ID != 0 {
		b.WriteString(" re-triggered through signal ")
		b.WriteString(e.Signal.String())
	} else {
		b.WriteString(" re-entered while running")
	}
	if len(e.Chain) > 0 {
		parts := make([]string, len(e.Chain))
		for i, c := range e.Chain {
			parts[i] = c.String()
		}
		b.WriteString(" (chain ")
		b.WriteString(strings.Join(parts, " -> "))
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns ErrCyclicDependency for errors.Is support.
func (e *CycleError) Unwrap() error {
	return ErrCyclicDependency
}

// Observer is notified about writes and effect runs. Implementations must
// not read or write signals.
type Observer interface {
	// SignalSet is called on every write with the number of dependents
	// that will be scheduled.
	SignalSet(signal SignalInfo, dependents int)

	// EffectRun is called after every effect run.
	EffectRun(effect EffectInfo, d time.Duration)
}
