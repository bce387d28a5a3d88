package host

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/tabdeck/internal/telemetry"
	"github.com/vango-dev/tabdeck/pkg/app"
	"github.com/vango-dev/tabdeck/pkg/reactive"
)

func startHost(t *testing.T, opts ...Option) *Host {
	t.Helper()
	st := app.New(reactive.NewRuntime())
	h := New(st, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() = %v", err)
		}
		st.Dispose()
	})
	return h
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func open(t *testing.T, h *Host, path string) {
	t.Helper()
	err := h.Do(context.Background(), "open", func(ctx context.Context, st *app.State) error {
		_, err := st.OpenDocument(ctx, path)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
}

func receive(t *testing.T, sub *Subscriber) app.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.C:
		if !ok {
			t.Fatal("subscriber channel closed")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return app.Snapshot{}
}

func TestDoAndSnapshot(t *testing.T) {
	h := startHost(t)
	dir := t.TempDir()
	open(t, h, writeFile(t, dir, "a.txt", "alpha"))

	snap, err := h.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Tabs) != 1 || snap.Tabs[0].Name != "a.txt" {
		t.Fatalf("tabs = %+v", snap.Tabs)
	}
	if len(snap.Documents) != 1 || snap.Documents[0].Content != "alpha" {
		t.Fatalf("documents = %+v", snap.Documents)
	}
	if snap.Active != snap.Tabs[0].Key {
		t.Errorf("Active = %d, want %d", snap.Active, snap.Tabs[0].Key)
	}
}

func TestDoReturnsError(t *testing.T) {
	h := startHost(t)
	want := errors.New("nope")
	err := h.Do(context.Background(), "fail", func(context.Context, *app.State) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("Do() = %v, want %v", err, want)
	}
}

func TestDoRecoversPanic(t *testing.T) {
	h := startHost(t)
	boom := errors.New("boom")

	err := h.Do(context.Background(), "panic", func(context.Context, *app.State) error {
		panic(boom)
	})
	if !errors.Is(err, boom) {
		t.Errorf("Do() = %v, want %v", err, boom)
	}

	err = h.Do(context.Background(), "panic", func(context.Context, *app.State) error {
		panic("plain")
	})
	if err == nil {
		t.Error("non-error panic not reported")
	}

	// The loop survives.
	if _, err := h.Snapshot(context.Background()); err != nil {
		t.Errorf("Snapshot after panic = %v", err)
	}
}

func TestSubscribe(t *testing.T) {
	h := startHost(t)
	ctx := context.Background()

	sub, err := h.Subscribe(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sub.ID == "" {
		t.Error("subscriber has no ID")
	}
	if snap := receive(t, sub); len(snap.Tabs) != 0 {
		t.Errorf("initial snapshot tabs = %+v", snap.Tabs)
	}

	open(t, h, writeFile(t, t.TempDir(), "a.txt", "alpha"))
	if snap := receive(t, sub); len(snap.Tabs) != 1 {
		t.Errorf("tabs after open = %+v", snap.Tabs)
	}

	// An edit to a field is published too.
	err = h.Do(ctx, "rename", func(_ context.Context, st *app.State) error {
		st.Tabs().Entries()[0].Entry.Name.Set("renamed")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if snap := receive(t, sub); snap.Tabs[0].Name != "renamed" {
		t.Errorf("tab name = %q", snap.Tabs[0].Name)
	}
}

func TestSlowSubscriberGetsLatest(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := startHost(t, WithBuffer(1), WithMetrics(telemetry.NewMetrics(telemetry.WithRegistry(reg))))
	sub, err := h.Subscribe(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		open(t, h, writeFile(t, dir, name, name))
	}

	if snap := receive(t, sub); len(snap.Tabs) != 3 {
		t.Errorf("expected the latest snapshot, got %d tabs", len(snap.Tabs))
	}
	select {
	case snap := <-sub.C:
		t.Errorf("unexpected extra snapshot with %d tabs", len(snap.Tabs))
	default:
	}
}

func TestUnsubscribe(t *testing.T) {
	h := startHost(t)
	ctx := context.Background()
	sub, err := h.Subscribe(ctx)
	if err != nil {
		t.Fatal(err)
	}
	receive(t, sub)

	if err := h.Unsubscribe(ctx, sub.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-sub.C; ok {
		t.Error("channel still open after Unsubscribe")
	}
	if err := h.Unsubscribe(ctx, sub.ID); err != nil {
		t.Errorf("second Unsubscribe = %v", err)
	}
}

func TestStopClosesSubscribers(t *testing.T) {
	st := app.New(reactive.NewRuntime())
	defer st.Dispose()
	h := New(st)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	sub, err := h.Subscribe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	receive(t, sub)

	cancel()
	<-done
	if _, ok := <-sub.C; ok {
		t.Error("channel still open after stop")
	}
	err = h.Do(context.Background(), "late", func(context.Context, *app.State) error { return nil })
	if !errors.Is(err, ErrStopped) {
		t.Errorf("Do after stop = %v, want ErrStopped", err)
	}
}

func TestDoCanceledBeforeRun(t *testing.T) {
	h := New(app.New(reactive.NewRuntime()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Do(ctx, "noop", func(context.Context, *app.State) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
}

func TestWatchReloadsChangedFile(t *testing.T) {
	h := startHost(t, WithWatch(true))
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "before")
	open(t, h, path)

	var watched []string
	err := h.Do(ctx, "inspect", func(context.Context, *app.State) error {
		if h.watcher == nil {
			return errors.New("watcher not running")
		}
		watched = h.watcher.watching()
		return nil
	})
	if err != nil {
		t.Skipf("file watching unavailable: %v", err)
	}
	if !slices.Contains(watched, absPath(dir)) {
		t.Fatalf("watching %v, want %s", watched, dir)
	}

	writeFile(t, dir, "notes.txt", "after")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := h.Snapshot(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if snap.Documents[0].Content == "after" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("document was not reloaded")
}

func TestWatcherSync(t *testing.T) {
	w, err := newWatcher(slogDiscard())
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.close()

	a, b := t.TempDir(), t.TempDir()
	w.sync([]string{filepath.Join(a, "x.txt"), filepath.Join(b, "y.txt"), "s3://bucket/z.txt"})
	if got := len(w.watching()); got != 2 {
		t.Fatalf("watching %d dirs, want 2", got)
	}

	w.sync([]string{filepath.Join(b, "y.txt")})
	if got := w.watching(); len(got) != 1 || got[0] != absPath(b) {
		t.Errorf("watching %v, want [%s]", got, b)
	}
	if _, ok := w.files[absPath(filepath.Join(a, "x.txt"))]; ok {
		t.Error("stale file still tracked")
	}
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
