// Package arena provides a stable-key container.
//
// Keys are drawn from a per-arena counter that only moves forward, so a
// key is never handed out twice during the arena's lifetime. A key that
// outlives its value resolves to absence, never to a later value.
package arena

import (
	"errors"
	"fmt"
	"iter"
)

// ErrKeyNotFound is returned when a key is stale or was never issued.
var ErrKeyNotFound = errors.New("arena: key not found")

// Key is the constraint for arena keys. The zero key is never issued and
// can be used as "none".
type Key interface {
	~uint64
}

type slot[K Key, V any] struct {
	key   K
	value V
	live  bool
}

// Arena maps keys to values and iterates in insertion order.
// It is not safe for concurrent use.
type Arena[K Key, V any] struct {
	next  K
	slots []slot[K, V]
	index map[K]int
	dead  int
}

// New creates an empty arena.
func New[K Key, V any]() *Arena[K, V] {
	return &Arena[K, V]{
		index: make(map[K]int),
	}
}

// Insert stores v under a fresh key.
func (a *Arena[K, V]) Insert(v V) K {
	a.next++
	k := a.next
	a.index[k] = len(a.slots)
	a.slots = append(a.slots, slot[K, V]{key: k, value: v, live: true})
	return k
}

// Get returns the value for k, or false if k is absent.
func (a *Arena[K, V]) Get(k K) (V, bool) {
	i, ok := a.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return a.slots[i].value, true
}

// GetMut returns a pointer to the stored value, or false if k is absent.
// The pointer is valid until the next Insert, Remove or Clear.
func (a *Arena[K, V]) GetMut(k K) (*V, bool) {
	i, ok := a.index[k]
	if !ok {
		return nil, false
	}
	return &a.slots[i].value, true
}

// Contains reports whether k is live.
func (a *Arena[K, V]) Contains(k K) bool {
	_, ok := a.index[k]
	return ok
}

// Replace swaps the value stored under k, keeping the key and its
// position.
func (a *Arena[K, V]) Replace(k K, v V) error {
	i, ok := a.index[k]
	if !ok {
		return fmt.Errorf("%w: %d", ErrKeyNotFound, uint64(k))
	}
	a.slots[i].value = v
	return nil
}

// Remove deletes k and returns its value. The key stays invalid forever.
func (a *Arena[K, V]) Remove(k K) (V, bool) {
	i, ok := a.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	v := a.slots[i].value
	a.slots[i] = slot[K, V]{key: k}
	delete(a.index, k)
	a.dead++
	if a.dead > len(a.slots)/2 {
		a.compact()
	}
	return v, true
}

// compact drops tombstones and rebuilds the index.
func (a *Arena[K, V]) compact() {
	live := a.slots[:0]
	for _, s := range a.slots {
		if s.live {
			live = append(live, s)
		}
	}
	clear(a.slots[len(live):])
	a.slots = live
	a.dead = 0
	for i, s := range a.slots {
		a.index[s.key] = i
	}
}

// Len returns the number of live entries.
func (a *Arena[K, V]) Len() int {
	return len(a.index)
}

// Keys returns the live keys in insertion order.
func (a *Arena[K, V]) Keys() []K {
	keys := make([]K, 0, len(a.index))
	for _, s := range a.slots {
		if s.live {
			keys = append(keys, s.key)
		}
	}
	return keys
}

// All iterates over live entries in insertion order.
func (a *Arena[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, s := range a.slots {
			if !s.live {
				continue
			}
			if !yield(s.key, s.value) {
				return
			}
		}
	}
}

// Clear removes every entry. Issued keys stay retired.
func (a *Arena[K, V]) Clear() {
	clear(a.slots)
	a.slots = a.slots[:0]
	clear(a.index)
	a.dead = 0
}

// Clone returns a shallow copy that shares no storage with a and continues
// the same key sequence.
func (a *Arena[K, V]) Clone() *Arena[K, V] {
	c := &Arena[K, V]{
		next:  a.next,
		slots: make([]slot[K, V], 0, len(a.index)),
		index: make(map[K]int, len(a.index)),
	}
	for _, s := range a.slots {
		if s.live {
			c.index[s.key] = len(c.slots)
			c.slots = append(c.slots, s)
		}
	}
	return c
}
