package registry

import (
	"go.uber.org/atomic"
)

// cowMap is a map published as immutable snapshots. Readers load the current
// snapshot without locking; writers clone it, apply their change and swap the
// clone in, retrying when another writer got there first.
type cowMap[K comparable, V any] struct {
	current atomic.Pointer[map[K]V]
}

func newCowMap[K comparable, V any]() *cowMap[K, V] {
	m := &cowMap[K, V]{}
	empty := make(map[K]V)
	m.current.Store(&empty)
	return m
}

func (m *cowMap[K, V]) get(key K) (V, bool) {
	v, ok := (*m.current.Load())[key]
	return v, ok
}

// snapshot returns the current version. Callers must not modify it.
func (m *cowMap[K, V]) snapshot() map[K]V {
	return *m.current.Load()
}

// update applies mutate to a private clone of the current version and
// publishes it. If mutate returns an error nothing is published.
func (m *cowMap[K, V]) update(mutate func(next map[K]V) error) error {
	for {
		old := m.current.Load()
		next := make(map[K]V, len(*old)+1)
		for k, v := range *old {
			next[k] = v
		}
		if err := mutate(next); err != nil {
			return err
		}
		if m.current.CompareAndSwap(old, &next) {
			return nil
		}
	}
}
