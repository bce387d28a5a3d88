package reactive

// Trigger is a dependency-only cell. It carries no value; Notify always
// counts as a change.
type Trigger struct {
	signal *Signal[struct{}]
}

// NewTrigger creates a trigger.
func NewTrigger(rt *Runtime, opts ...SignalOption) *Trigger {
	return &Trigger{signal: NewSignal(rt, struct{}{}, opts...)}
}

// Notify re-runs every effect that tracked the trigger.
func (t *Trigger) Notify() {
	t.signal.Set(struct{}{})
}

// Track subscribes the running effect.
func (t *Trigger) Track() {
	t.signal.Track()
}

// ID returns the unique identifier for this trigger.
func (t *Trigger) ID() uint64 {
	return t.signal.ID()
}

// Subscribers returns the number of effects tracking t.
func (t *Trigger) Subscribers() int {
	return t.signal.Subscribers()
}
