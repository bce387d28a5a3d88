package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/tabdeck/internal/telemetry"
	"github.com/vango-dev/tabdeck/pkg/app"
	"github.com/vango-dev/tabdeck/pkg/reactive"
)

// DefaultBuffer is the default number of snapshots queued per subscriber.
const DefaultBuffer = 4

// ErrStopped is returned by Do once the loop has exited.
var ErrStopped = errors.New("host: stopped")

// Func is an operation run on the loop goroutine.
type Func func(ctx context.Context, st *app.State) error

type op struct {
	ctx   context.Context
	name  string
	attrs []attribute.KeyValue
	fn    Func
	done  chan error
}

// Subscriber receives snapshots until it is removed or the host stops.
type Subscriber struct {
	ID string
	C  <-chan app.Snapshot

	ch chan app.Snapshot
}

// Host owns a State and serializes access to it.
type Host struct {
	st      *app.State
	logger  *slog.Logger
	metrics *telemetry.Metrics
	buffer  int
	watch   bool

	ops     chan op
	stopped chan struct{}

	// Loop-owned.
	subs    map[string]*Subscriber
	latest  app.Snapshot
	watcher *watcher
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMetrics records subscriber and reload metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(h *Host) {
		h.metrics = m
	}
}

// WithBuffer sets the per-subscriber snapshot queue length.
func WithBuffer(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithWatch enables reloading open text documents on change.
func WithWatch(enabled bool) Option {
	return func(h *Host) {
		h.watch = enabled
	}
}

// New creates a host for st. The host takes ownership of st: after Run
// starts, st must only be touched through Do.
func New(st *app.State, opts ...Option) *Host {
	h := &Host{
		st:      st,
		logger:  slog.Default(),
		buffer:  DefaultBuffer,
		ops:     make(chan op),
		stopped: make(chan struct{}),
		subs:    make(map[string]*Subscriber),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes operations until ctx is canceled. It closes every
// subscriber channel before returning.
func (h *Host) Run(ctx context.Context) error {
	defer close(h.stopped)

	rt := h.st.Runtime()
	scope := rt.Root().Child()
	defer scope.Dispose()

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if h.watch {
		w, err := newWatcher(h.logger)
		if err != nil {
			h.logger.Warn("file watching disabled", "error", err)
		} else {
			h.watcher = w
			defer w.close()
			events, watchErrs = w.fs.Events, w.fs.Errors
		}
	}

	scope.Run(func() {
		rt.CreateEffect(func() reactive.Cleanup {
			h.latest = h.st.Snapshot()
			h.broadcast(h.latest)
			return nil
		}, reactive.EffectName("snapshot"))

		if h.watcher != nil {
			rt.CreateEffect(func() reactive.Cleanup {
				h.st.Documents().Signal().Track()
				h.watcher.sync(h.st.OpenPaths())
				return nil
			}, reactive.EffectName("watch"))
		}
	})

	defer func() {
		for id := range h.subs {
			h.unsubscribe(id)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case o := <-h.ops:
			o.done <- h.exec(o)

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if path, ok := h.watcher.changed(ev); ok {
				h.reload(ctx, path)
			}

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			h.logger.Warn("file watcher error", "error", err)
		}
	}
}

// exec runs an operation, converting a panic into an error. Reactive
// cycles and duplicate list keys surface as panics.
func (h *Host) exec(o op) (err error) {
	ctx, span := telemetry.StartSpan(o.ctx, o.name, o.attrs...)
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("host: panic in %s: %v", o.name, r)
			}
			h.logger.Error("operation panicked", "op", o.name, "error", err)
		}
		telemetry.EndSpan(span, err)
	}()
	return o.fn(ctx, h.st)
}

// Do runs fn on the loop goroutine and waits for it to finish. name labels
// the operation's span and log records.
func (h *Host) Do(ctx context.Context, name string, fn Func) error {
	o := op{ctx: ctx, name: name, fn: fn, done: make(chan error, 1)}
	select {
	case h.ops <- o:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stopped:
		return ErrStopped
	}
	select {
	case err := <-o.done:
		return err
	case <-h.stopped:
		return ErrStopped
	}
}

// Snapshot returns the latest published snapshot.
func (h *Host) Snapshot(ctx context.Context) (app.Snapshot, error) {
	var snap app.Snapshot
	err := h.Do(ctx, "snapshot", func(context.Context, *app.State) error {
		snap = h.latest
		return nil
	})
	return snap, err
}

// Subscribe registers a subscriber. The current snapshot is queued on the
// returned channel immediately.
func (h *Host) Subscribe(ctx context.Context) (*Subscriber, error) {
	var sub *Subscriber
	err := h.Do(ctx, "subscribe", func(context.Context, *app.State) error {
		ch := make(chan app.Snapshot, h.buffer)
		sub = &Subscriber{ID: uuid.New().String(), C: ch, ch: ch}
		h.subs[sub.ID] = sub
		ch <- h.latest
		if h.metrics != nil {
			h.metrics.RecordSubscribe()
		}
		h.logger.Debug("subscriber added", "id", sub.ID)
		return nil
	})
	return sub, err
}

// Unsubscribe removes a subscriber and closes its channel. Removing an
// unknown subscriber is a no-op.
func (h *Host) Unsubscribe(ctx context.Context, id string) error {
	return h.Do(ctx, "unsubscribe", func(context.Context, *app.State) error {
		h.unsubscribe(id)
		return nil
	})
}

func (h *Host) unsubscribe(id string) {
	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(sub.ch)
	if h.metrics != nil {
		h.metrics.RecordUnsubscribe()
	}
	h.logger.Debug("subscriber removed", "id", id)
}

// broadcast queues snap for every subscriber. A full queue loses its
// oldest snapshot.
func (h *Host) broadcast(snap app.Snapshot) {
	for _, sub := range h.subs {
		select {
		case sub.ch <- snap:
			continue
		default:
		}
		select {
		case <-sub.ch:
			if h.metrics != nil {
				h.metrics.RecordDroppedSnapshot()
			}
		default:
		}
		select {
		case sub.ch <- snap:
		default:
		}
	}
}

func (h *Host) reload(ctx context.Context, path string) {
	err := h.exec(op{
		ctx:   ctx,
		name:  "reload",
		attrs: []attribute.KeyValue{attribute.String("tabdeck.path", path)},
		fn: func(ctx context.Context, st *app.State) error {
			changed, err := st.ReloadPath(ctx, path)
			if changed && h.metrics != nil {
				h.metrics.RecordReload()
			}
			return err
		},
	})
	if err != nil {
		h.logger.Warn("reload failed", "path", path, "error", err)
	}
}
