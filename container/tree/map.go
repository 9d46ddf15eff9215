package tree

import "github.com/sirupsen/logrus"

// Map is a map type associating keys to values in a similar way to the standard
// Go map type, but backed by a balanced binary tree instead of a hashmap, which
// maintains ordering of keys.
//
// The zero-value is a valid empty map which supports lookups and deletes, but
// must be initialized prior to inserting any keys.
type Map[K, V any] struct{ tree Tree[pair[K, V]] }

type pair[K, V any] struct {
	key   K
	value V
}

// NewMap instantiates a new map using the given comparison function to order
// the keys.
func NewMap[K, V any](cmp func(K, K) int) *Map[K, V] {
	m := new(Map[K, V])
	m.Init(cmp)
	return m
}

// Init initializes (or re-initializes) the map. The comparison function passed
// as argument will be used to order the keys.
//
// Init must be called prior to inserting keys in the map, otherwise inserts
// panic as soon as they need to compare keys.
//
// Complexity: O(1)
func (m *Map[K, V]) Init(cmp func(K, K) int) {
	m.tree.Init(func(a, b pair[K, V]) int { return cmp(a.key, b.key) })
}

// SetLogger installs a logger receiving trace records of the structural
// changes made to the underlying tree.
func (m *Map[K, V]) SetLogger(log logrus.FieldLogger) { m.tree.SetLogger(log) }

// Len returns the number of entries currently held in the map.
//
// Complexity: O(1)
func (m *Map[K, V]) Len() int { return m.tree.Len() }

// Range calls f for each entry of the map. The keys and values are presented in
// ascending order according to the comparison function installed on the map.
//
// Complexity: O(N)
func (m *Map[K, V]) Range(f func(K, V) bool) {
	m.tree.Range(func(p pair[K, V]) bool { return f(p.key, p.value) })
}

// RangeReverse is like Range but presents the entries in descending order.
//
// Complexity: O(N)
func (m *Map[K, V]) RangeReverse(f func(K, V) bool) {
	m.tree.RangeReverse(func(p pair[K, V]) bool { return f(p.key, p.value) })
}

// Insert inserts a new entry in the map, or replaces the value if the key
// already existed. The method returns the previous value associated with the
// key or the zero-value if the key did not exist, and a boolean indicating
// whether the value was replaced.
//
// The map must have been initialized by a call to NewMap or Init or the call
// to Insert will panic.
//
// Complexity: O(log n)
func (m *Map[K, V]) Insert(key K, value V) (previous V, replaced bool) {
	if n := m.tree.lookup(pair[K, V]{key: key}); n != nil {
		previous, n.elem.value = n.elem.value, value
		return previous, true
	}
	m.tree.Insert(pair[K, V]{key: key, value: value})
	return previous, false
}

// Min returns the entry with the smallest key in the map.
//
// Complexity: O(log n)
func (m *Map[K, V]) Min() (key K, value V, found bool) {
	p, found := m.tree.Min()
	return p.key, p.value, found
}

// Max returns the entry with the largest key in the map.
//
// Complexity: O(log n)
func (m *Map[K, V]) Max() (key K, value V, found bool) {
	p, found := m.tree.Max()
	return p.key, p.value, found
}

// Lookup returns the value associated with the given key in the map, and a
// boolean value indicating whether the key was found in the map.
//
// Complexity: O(log n)
func (m *Map[K, V]) Lookup(key K) (value V, found bool) {
	p, found := m.tree.Lookup(pair[K, V]{key: key})
	return p.value, found
}

// Search returns the entry found in the map where the key was less or equal to
// the one passed as argument.
//
// Complexity: O(log n)
func (m *Map[K, V]) Search(key K) (matchKey K, matchValue V, found bool) {
	p, found := m.tree.Floor(pair[K, V]{key: key})
	return p.key, p.value, found
}

// Next returns the entry with the smallest key greater than the one passed as
// argument.
//
// Complexity: O(log n)
func (m *Map[K, V]) Next(key K) (nextKey K, nextValue V, found bool) {
	p, found := m.tree.Next(pair[K, V]{key: key})
	return p.key, p.value, found
}

// Prev returns the entry with the largest key less than the one passed as
// argument.
//
// Complexity: O(log n)
func (m *Map[K, V]) Prev(key K) (prevKey K, prevValue V, found bool) {
	p, found := m.tree.Prev(pair[K, V]{key: key})
	return p.key, p.value, found
}

// Delete deletes the given key from the map. If the key does not exist,
// the map is not modified. The method returns the value removed from the map
// and a boolean indicating whether the key was found.
//
// Complexity: O(log n)
func (m *Map[K, V]) Delete(key K) (value V, deleted bool) {
	p, deleted := m.tree.Delete(pair[K, V]{key: key})
	return p.value, deleted
}

// Validate checks the structural invariants of the underlying tree.
func (m *Map[K, V]) Validate() error { return m.tree.Validate() }
