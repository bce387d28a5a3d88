package reconcile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/tabdeck/pkg/reactive"
)

type item struct {
	key  int
	name string
}

type handle struct {
	key      int
	name     string
	disposed int
}

func (h *handle) Dispose() { h.disposed++ }

type counter struct {
	built    int
	handles  map[int]*handle
}

func newCounter() *counter {
	return &counter{handles: make(map[int]*handle)}
}

func (c *counter) build(it item) *handle {
	c.built++
	h := &handle{key: it.key, name: it.name}
	c.handles[it.key] = h
	return h
}

func items(keys ...int) []item {
	out := make([]item, len(keys))
	for i, k := range keys {
		out[i] = item{key: k}
	}
	return out
}

func keysOf(hs []*handle) []int {
	out := make([]int, len(hs))
	for i, h := range hs {
		out[i] = h.key
	}
	return out
}

func itemKey(it item) int { return it.key }

func TestReconcileInitialBuild(t *testing.T) {
	c := newCounter()
	r := New(itemKey, c.build)

	views, err := r.Reconcile(items(1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	if c.built != 3 {
		t.Errorf("built = %d, want 3", c.built)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, keysOf(views)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	last := r.Last()
	if last.Created != 3 || last.Reused != 0 || last.Disposed != 0 {
		t.Errorf("pass = %+v", last)
	}
}

func TestReconcileReusesHandles(t *testing.T) {
	c := newCounter()
	r := New(itemKey, c.build)

	first, _ := r.Reconcile(items(1, 2, 3))
	second, err := r.Reconcile(items(1, 2, 3, 4))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if first[i] != second[i] {
			t.Errorf("handle for key %d was rebuilt", first[i].key)
		}
	}
	if c.built != 4 {
		t.Errorf("built = %d, want 4", c.built)
	}
}

func TestReconcilePureReorderIsFree(t *testing.T) {
	c := newCounter()
	r := New(itemKey, c.build)

	before, _ := r.Reconcile(items(1, 2, 3, 4))
	after, err := r.Reconcile(items(4, 2, 1, 3))
	if err != nil {
		t.Fatal(err)
	}

	if c.built != 4 {
		t.Errorf("reorder built new handles: built = %d", c.built)
	}
	for _, h := range before {
		if h.disposed != 0 {
			t.Errorf("reorder disposed key %d", h.key)
		}
	}
	if diff := cmp.Diff([]int{4, 2, 1, 3}, keysOf(after)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if after[0] != before[3] || after[2] != before[0] {
		t.Error("reordered handles are not identical to previous ones")
	}

	last := r.Last()
	if last.Created != 0 || last.Disposed != 0 || last.Reused != 4 {
		t.Errorf("pass = %+v", last)
	}
	// 2 stays at index 1; 4, 1 and 3 move.
	if last.Moved != 3 {
		t.Errorf("moved = %d, want 3", last.Moved)
	}
}

func TestReconcileRemoveAndReorder(t *testing.T) {
	c := newCounter()
	r := New(itemKey, c.build)

	before, _ := r.Reconcile(items(1, 2, 3))
	after, err := r.Reconcile(items(3, 1))
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]int{3, 1}, keysOf(after)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if after[0] != before[2] || after[1] != before[0] {
		t.Error("surviving handles were not reused")
	}
	if before[1].disposed != 1 {
		t.Errorf("key 2 disposed %d times, want 1", before[1].disposed)
	}
	if before[0].disposed != 0 || before[2].disposed != 0 {
		t.Error("surviving handles were disposed")
	}

	want := []Change[int]{
		{Op: ChangeMove, Key: 3, Index: 0},
		{Op: ChangeMove, Key: 1, Index: 1},
		{Op: ChangeDispose, Key: 2, Index: -1},
	}
	if diff := cmp.Diff(want, r.Last().Changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileEmptyDisposesAll(t *testing.T) {
	c := newCounter()
	r := New(itemKey, c.build)

	before, _ := r.Reconcile(items(1, 2))
	after, err := r.Reconcile(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 0 {
		t.Errorf("expected empty output, got %d", len(after))
	}
	for _, h := range before {
		if h.disposed != 1 {
			t.Errorf("key %d disposed %d times", h.key, h.disposed)
		}
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestReconcileDuplicateKey(t *testing.T) {
	c := newCounter()
	r := New(itemKey, c.build)
	before, _ := r.Reconcile(items(1, 2))

	_, err := r.Reconcile(items(1, 3, 1))
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("err = %v, want ErrDuplicateKey", err)
	}
	var dup *DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %T, want *DuplicateKeyError", err)
	}
	if dup.Key != 1 || dup.First != 0 || dup.Second != 2 {
		t.Errorf("dup = %+v", dup)
	}

	// The failed pass changed nothing.
	if c.built != 2 {
		t.Errorf("failed pass built handles: built = %d", c.built)
	}
	for _, h := range before {
		if h.disposed != 0 {
			t.Errorf("failed pass disposed key %d", h.key)
		}
	}
	if diff := cmp.Diff([]int{1, 2}, keysOf(r.Views())); diff != "" {
		t.Errorf("live set changed (-want +got):\n%s", diff)
	}
}

func TestReconcileKeyReappearsAfterRemoval(t *testing.T) {
	c := newCounter()
	r := New(itemKey, c.build)

	first, _ := r.Reconcile(items(1))
	r.Reconcile(nil)
	second, _ := r.Reconcile(items(1))

	if first[0] == second[0] {
		t.Error("handle disposed in a previous pass was reused")
	}
	if c.built != 2 {
		t.Errorf("built = %d, want 2", c.built)
	}
}

func TestReconcileScopedViews(t *testing.T) {
	rt := reactive.NewRuntime()
	parent := rt.Root().Child()
	name := reactive.NewSignal(rt, "a")

	updates := 0
	r := New(itemKey, func(it item) *handle {
		h := &handle{key: it.key}
		rt.CreateEffect(func() reactive.Cleanup {
			h.name = name.Get()
			updates++
			return nil
		})
		return h
	}, WithScope(parent))

	r.Reconcile(items(1, 2))
	if name.Subscribers() != 2 {
		t.Fatalf("subscribers = %d, want 2", name.Subscribers())
	}

	r.Reconcile(items(2))
	if name.Subscribers() != 1 {
		t.Errorf("disposed view kept its effect, subscribers = %d", name.Subscribers())
	}

	updates = 0
	name.Set("b")
	if updates != 1 {
		t.Errorf("updates = %d, want 1", updates)
	}

	r.Dispose()
	if name.Subscribers() != 0 {
		t.Errorf("Dispose left subscribers: %d", name.Subscribers())
	}
}

type recordingObserver struct {
	passes int
	last   [4]int
}

func (o *recordingObserver) Reconciled(_ string, created, reused, moved, disposed int) {
	o.passes++
	o.last = [4]int{created, reused, moved, disposed}
}

func TestReconcileObserver(t *testing.T) {
	obs := &recordingObserver{}
	c := newCounter()
	r := New(itemKey, c.build, WithObserver(obs), WithName("tabs"))

	r.Reconcile(items(1, 2))
	r.Reconcile(items(2, 3))

	if obs.passes != 2 {
		t.Errorf("passes = %d, want 2", obs.passes)
	}
	if obs.last != [4]int{1, 1, 1, 1} {
		t.Errorf("last = %v, want [1 1 1 1]", obs.last)
	}
}

func TestChangeOpString(t *testing.T) {
	tests := map[ChangeOp]string{
		ChangeCreate:  "Create",
		ChangeMove:    "Move",
		ChangeDispose: "Dispose",
		ChangeOp(0):   "Unknown",
	}
	for op, want := range tests {
		if got := op.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", op, got, want)
		}
	}
}
