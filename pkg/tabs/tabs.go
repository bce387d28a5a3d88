// Package tabs holds the tab entities of the workbench and the registry
// that owns them together with the active selection.
package tabs

import (
	"fmt"
	"slices"

	"github.com/vango-dev/tabdeck/pkg/arena"
	"github.com/vango-dev/tabdeck/pkg/documents"
	"github.com/vango-dev/tabdeck/pkg/reactive"
)

// Key identifies a tab. The zero Key means "no tab".
type Key uint64

func (k Key) String() string {
	return fmt.Sprintf("tab#%d", uint64(k))
}

// Tab is HomeTab or DocumentTab.
type Tab interface {
	tab()
}

// HomeTab is the start page.
type HomeTab struct{}

func (HomeTab) tab() {}

// DocumentTab shows a document. The key is a weak reference: the document
// may be closed while the tab is still open.
type DocumentTab struct {
	Document documents.Key
}

func (DocumentTab) tab() {}

// Entry is a tab together with its display name.
type Entry struct {
	Tab  Tab
	Name *reactive.Signal[string]
}

// Item pairs an entry with its key, as listed by Entries.
type Item struct {
	Key   Key
	Entry *Entry
}

// Registry owns the open tabs and the active selection.
type Registry struct {
	rt     *reactive.Runtime
	tabs   *reactive.Signal[*arena.Arena[Key, *Entry]]
	active *reactive.Signal[Key]
}

// NewRegistry creates an empty registry with no active tab.
func NewRegistry(rt *reactive.Runtime) *Registry {
	return &Registry{
		rt:     rt,
		tabs:   reactive.NewSignal(rt, arena.New[Key, *Entry](), reactive.Named("tabs")),
		active: reactive.NewSignal(rt, Key(0), reactive.Named("tabs.active")),
	}
}

// Signal returns the registry signal.
func (r *Registry) Signal() *reactive.Signal[*arena.Arena[Key, *Entry]] {
	return r.tabs
}

// Active returns the active selection signal. It may hold a key that is
// no longer in the registry.
func (r *Registry) Active() *reactive.Signal[Key] {
	return r.active
}

func (r *Registry) mutate(fn func(a *arena.Arena[Key, *Entry])) {
	r.tabs.Modify(func(a **arena.Arena[Key, *Entry]) { fn(*a) })
}

// Add opens a tab titled name.
func (r *Registry) Add(tab Tab, name string) Key {
	return r.AddShared(tab, reactive.NewSignal(r.rt, name, reactive.Named("tab.name")))
}

// AddShared opens a tab whose title is the given signal, so its owner can
// rename the tab.
func (r *Registry) AddShared(tab Tab, name *reactive.Signal[string]) Key {
	var k Key
	r.mutate(func(a *arena.Arena[Key, *Entry]) {
		k = a.Insert(&Entry{Tab: tab, Name: name})
	})
	return k
}

// Get returns the entry for k.
func (r *Registry) Get(k Key) (*Entry, bool) {
	return r.tabs.Get().Get(k)
}

// Peek is Get without tracking.
func (r *Registry) Peek(k Key) (*Entry, bool) {
	return r.tabs.Peek().Get(k)
}

// Remove closes the tab. The active selection is left alone.
func (r *Registry) Remove(k Key) (*Entry, bool) {
	if !r.tabs.Peek().Contains(k) {
		return nil, false
	}
	var e *Entry
	r.mutate(func(a *arena.Arena[Key, *Entry]) {
		e, _ = a.Remove(k)
	})
	return e, true
}

// SetActive selects k. The zero key clears the selection. Absent keys
// are accepted.
func (r *Registry) SetActive(k Key) {
	r.active.Set(k)
}

// ActiveKey returns the selected key, which may be stale.
func (r *Registry) ActiveKey() (Key, bool) {
	k := r.active.Get()
	return k, k != 0
}

// ResolveActive returns the selected tab if it still exists.
func (r *Registry) ResolveActive() (Key, *Entry, bool) {
	k := r.active.Get()
	if k == 0 {
		return 0, nil, false
	}
	e, ok := r.tabs.Get().Get(k)
	if !ok {
		return 0, nil, false
	}
	return k, e, true
}

// Neighbor returns the tab that takes over when k closes: the preceding
// tab, else the following one. It does not track.
func (r *Registry) Neighbor(k Key) (Key, bool) {
	keys := r.tabs.Peek().Keys()
	i := slices.Index(keys, k)
	switch {
	case i < 0:
		return 0, false
	case i > 0:
		return keys[i-1], true
	case len(keys) > 1:
		return keys[1], true
	default:
		return 0, false
	}
}

// Clear closes every tab and clears the selection.
func (r *Registry) Clear() {
	r.rt.Batch(func() {
		r.mutate(func(a *arena.Arena[Key, *Entry]) {
			a.Clear()
		})
		r.active.Set(0)
	})
}

// Len returns the number of open tabs.
func (r *Registry) Len() int {
	return r.tabs.Get().Len()
}

// Entries returns every tab in opening order.
func (r *Registry) Entries() []Item {
	a := r.tabs.Get()
	items := make([]Item, 0, a.Len())
	for k, e := range a.All() {
		items = append(items, Item{Key: k, Entry: e})
	}
	return items
}

// ReferencingDocument returns the tabs showing doc. It does not track.
func (r *Registry) ReferencingDocument(doc documents.Key) []Key {
	var keys []Key
	for k, e := range r.tabs.Peek().All() {
		if dt, ok := e.Tab.(DocumentTab); ok && dt.Document == doc {
			keys = append(keys, k)
		}
	}
	return keys
}

// FindHome returns the first home tab. It does not track.
func (r *Registry) FindHome() (Key, bool) {
	for k, e := range r.tabs.Peek().All() {
		if _, ok := e.Tab.(HomeTab); ok {
			return k, true
		}
	}
	return 0, false
}
