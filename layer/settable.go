package layer

import (
	"maps"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
)

// listener wraps a callback function with a unique ID for reliable unsubscription.
type listener struct {
	id uint64
	fn func(keys []string)
}

// Settable is a mutable, in-memory layer.
//
// Contents are held in an immutable snapshot behind an atomic pointer. Every
// write builds a new snapshot and swaps it in, so a concurrent Lookup observes
// either the whole of a SetAll or none of it. Writers are serialised by a mutex;
// readers never block.
type Settable struct {
	data atomic.Pointer[map[string]any]

	// writeMu serialises writers so that no update is lost between copy and swap.
	writeMu sync.Mutex

	listeners []listener
	nextID    uint64
	mu        sync.RWMutex
}

// Ensure Settable implements Layer and Enumerable.
var (
	_ Layer      = (*Settable)(nil)
	_ Enumerable = (*Settable)(nil)
)

// NewSettable creates an empty settable layer.
func NewSettable() *Settable {
	s := &Settable{nextID: 1}
	empty := map[string]any{}
	s.data.Store(&empty)
	return s
}

// Lookup returns the value stored for key.
// This operation is lock-free and safe for concurrent use.
func (s *Settable) Lookup(key string) (any, bool) {
	v, ok := (*s.data.Load())[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Keys returns the keys currently set, in ascending order.
func (s *Settable) Keys() []string {
	return slices.Sorted(maps.Keys(*s.data.Load()))
}

// Snapshot returns a copy of the current contents.
func (s *Settable) Snapshot() map[string]any {
	return maps.Clone(*s.data.Load())
}

// Len returns the number of keys currently set.
func (s *Settable) Len() int {
	return len(*s.data.Load())
}

// Set stores value under key. A nil value clears the key.
func (s *Settable) Set(key string, value any) {
	s.SetAll(map[string]any{key: value})
}

// SetAll stores every pair in values as a single atomic update.
// Keys mapped to nil are cleared.
func (s *Settable) SetAll(values map[string]any) {
	if len(values) == 0 {
		return
	}
	s.update(func(next map[string]any) {
		for k, v := range values {
			if v == nil {
				delete(next, k)
				continue
			}
			next[k] = v
		}
	})
}

// Clear removes key. Clearing an absent key is a no-op.
func (s *Settable) Clear(key string) {
	s.update(func(next map[string]any) {
		delete(next, key)
	})
}

// Replace swaps the entire contents for values in one atomic update.
// Keys absent from values are removed.
func (s *Settable) Replace(values map[string]any) {
	s.update(func(next map[string]any) {
		clear(next)
		for k, v := range values {
			if v != nil {
				next[k] = v
			}
		}
	})
}

// update applies mutate to a copy of the current contents, publishes the copy
// and notifies listeners of the keys whose value changed.
func (s *Settable) update(mutate func(next map[string]any)) {
	s.writeMu.Lock()
	prev := *s.data.Load()
	next := maps.Clone(prev)
	mutate(next)
	s.data.Store(&next)
	s.writeMu.Unlock()

	changed := diffKeys(prev, next)
	if len(changed) == 0 {
		return
	}

	// Snapshot listeners under lock, then notify without holding the lock.
	// This avoids deadlocks if a listener unsubscribes (or subscribes) within the callback.
	s.mu.RLock()
	listeners := append([]listener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l.fn(changed)
	}
}

// Subscribe registers fn to be called with the sorted list of changed keys
// after every write that changes at least one value. Callbacks run
// synchronously on the writing goroutine in registration order.
// Returns an unsubscribe function that is safe to call multiple times.
func (s *Settable) Subscribe(fn func(keys []string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// diffKeys returns the sorted keys whose presence or value differs between a and b.
func diffKeys(a, b map[string]any) []string {
	var changed []string
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !reflect.DeepEqual(av, bv) {
			changed = append(changed, k)
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			changed = append(changed, k)
		}
	}
	slices.Sort(changed)
	return changed
}
