package documents

import (
	"fmt"
	"iter"

	"github.com/vango-dev/tabdeck/pkg/arena"
	"github.com/vango-dev/tabdeck/pkg/reactive"
)

// Registry owns every open document. Structural changes (insert, replace,
// close) are published through a single signal; per-document fields are not.
type Registry struct {
	docs *reactive.Signal[*arena.Arena[Key, Document]]
}

// NewRegistry creates an empty registry.
func NewRegistry(rt *reactive.Runtime) *Registry {
	return &Registry{
		docs: reactive.NewSignal(rt, arena.New[Key, Document](), reactive.Named("documents")),
	}
}

// Signal returns the registry signal. Effects that read it re-run on every
// structural change.
func (r *Registry) Signal() *reactive.Signal[*arena.Arena[Key, Document]] {
	return r.docs
}

func (r *Registry) mutate(fn func(a *arena.Arena[Key, Document])) {
	r.docs.Modify(func(a **arena.Arena[Key, Document]) { fn(*a) })
}

// Insert adds doc and returns its new key.
func (r *Registry) Insert(doc Document) Key {
	var k Key
	r.mutate(func(a *arena.Arena[Key, Document]) {
		k = a.Insert(doc)
	})
	return k
}

// Get returns the document for k. A closed or unknown key reports false.
func (r *Registry) Get(k Key) (Document, bool) {
	return r.docs.Get().Get(k)
}

// Peek is Get without tracking.
func (r *Registry) Peek(k Key) (Document, bool) {
	return r.docs.Peek().Get(k)
}

// Replace swaps the document stored under k, keeping the key.
func (r *Registry) Replace(k Key, doc Document) error {
	if !r.docs.Peek().Contains(k) {
		return fmt.Errorf("replace %s: %w", k, arena.ErrKeyNotFound)
	}
	var err error
	r.mutate(func(a *arena.Arena[Key, Document]) {
		err = a.Replace(k, doc)
	})
	return err
}

// Close removes the document for k. Closing an absent key is a no-op and
// does not notify.
func (r *Registry) Close(k Key) (Document, bool) {
	if !r.docs.Peek().Contains(k) {
		return nil, false
	}
	var doc Document
	r.mutate(func(a *arena.Arena[Key, Document]) {
		doc, _ = a.Remove(k)
	})
	return doc, true
}

// Len returns the number of open documents.
func (r *Registry) Len() int {
	return r.docs.Get().Len()
}

// Keys returns the keys of all open documents in insertion order.
func (r *Registry) Keys() []Key {
	return r.docs.Get().Keys()
}

// All iterates over the open documents in insertion order.
func (r *Registry) All() iter.Seq2[Key, Document] {
	return r.docs.Get().All()
}

// FindPath returns the key of the text or image document opened from
// path. It does not track.
func (r *Registry) FindPath(path string) (Key, bool) {
	for k, doc := range r.docs.Peek().All() {
		if p, ok := PathOf(doc); ok && p == path {
			return k, true
		}
	}
	return 0, false
}

// PathOf returns the file path of doc. Forms have none.
func PathOf(doc Document) (string, bool) {
	switch d := doc.(type) {
	case *TextDocument:
		return d.Path, true
	case *ImageDocument:
		return d.Path, true
	case *NewDocumentForm:
		return "", false
	default:
		return "", false
	}
}
