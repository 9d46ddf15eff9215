// Package dict implements an ordered dictionary with string keys, built on the
// AVL trees of the container/tree package.
//
// The ordering of keys is chosen when the dictionary is created, typically
// compare.Strings for case-sensitive keys or compare.Fold for keys which are
// matched regardless of case. When keys are matched regardless of case, the
// dictionary retains the spelling of the first insertion.
//
// A dictionary created with NewMulti is a multimap: multiple entries may share
// the same key as long as their values differ according to the value
// comparison function. Entries sharing a key are ordered by value.
//
// Dictionaries are not safe to use concurrently from multiple goroutines.
package dict

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/segmentio/avl/container/tree"
)

// ErrMultimap is returned by Set when called on a multimap. Changing the value
// of an entry in place would change its position in the ordering, callers
// must delete the old pair and insert the new one instead.
var ErrMultimap = errors.New("cannot set values in place in a multimap")

// Entry is a key/value pair held in a dictionary.
//
// The value of an entry may be modified while it is held in a dictionary,
// except in multimaps where values participate in the ordering.
type Entry[V any] struct {
	key   string
	Value V
}

// Key returns the key of the entry. Entries deleted from their dictionary have
// an empty key.
func (e *Entry[V]) Key() string { return e.key }

// Dict is an ordered dictionary mapping string keys to values of type V.
type Dict[V any] struct {
	keys   func(string, string) int
	values func(V, V) int
	tree   tree.Tree[*Entry[V]]
}

// New constructs a dictionary where each key maps to at most one value. The
// keys function defines the ordering of keys.
func New[V any](keys func(string, string) int) *Dict[V] {
	return newDict[V](keys, nil)
}

// NewMulti constructs a multimap, where each key may be associated with
// multiple values. The keys and values functions define the ordering of
// entries.
func NewMulti[V any](keys func(string, string) int, values func(V, V) int) *Dict[V] {
	if values == nil {
		panic("dict: multimap created without a value comparison function")
	}
	return newDict(keys, values)
}

func newDict[V any](keys func(string, string) int, values func(V, V) int) *Dict[V] {
	d := &Dict[V]{keys: keys, values: values}
	d.tree.Init(func(a, b *Entry[V]) int {
		if cmp := keys(a.key, b.key); cmp != 0 || values == nil {
			return cmp
		}
		return values(a.Value, b.Value)
	})
	return d
}

// SetLogger installs a logger receiving trace records of the structural
// changes made to the underlying tree.
func (d *Dict[V]) SetLogger(log logrus.FieldLogger) { d.tree.SetLogger(log) }

// Multi returns true if d is a multimap.
func (d *Dict[V]) Multi() bool { return d.values != nil }

// Len returns the number of entries in the dictionary.
//
// Complexity: O(1)
func (d *Dict[V]) Len() int { return d.tree.Len() }

// InsertIfAbsent inserts a new entry unless one already exists for the key,
// or for the key/value pair in a multimap. The method returns the entry held
// in the dictionary and a boolean indicating whether it was inserted. Values
// of existing entries are left untouched.
//
// The dictionary keeps its own copy of the key.
//
// Complexity: O(log n)
func (d *Dict[V]) InsertIfAbsent(key string, value V) (entry *Entry[V], inserted bool) {
	if e, found := d.tree.Lookup(&Entry[V]{key: key, Value: value}); found {
		return e, false
	}
	entry = &Entry[V]{key: strings.Clone(key), Value: value}
	d.tree.Insert(entry)
	return entry, true
}

// Set associates value with key, replacing the value of the existing entry if
// there was one. The entry is updated in place, without restructuring the
// dictionary.
//
// Set returns ErrMultimap when called on a multimap.
//
// Complexity: O(log n)
func (d *Dict[V]) Set(key string, value V) (*Entry[V], error) {
	if d.Multi() {
		return nil, fmt.Errorf("setting %q: %w", key, ErrMultimap)
	}
	entry, inserted := d.InsertIfAbsent(key, value)
	if !inserted {
		entry.Value = value
	}
	return entry, nil
}

// Delete removes the entry for key, or every entry sharing the key in a
// multimap, and returns the number of entries removed. When destroy is not
// nil, it is called with the value of each entry before it is removed.
//
// Complexity: O(k log n) for k removed entries
func (d *Dict[V]) Delete(key string, destroy func(V)) (deleted int) {
	for e := d.Get(key); e != nil; e = d.Get(key) {
		d.remove(e, destroy)
		deleted++
	}
	return deleted
}

// DeletePair removes the entry matching both key and value from a multimap.
// On dictionaries which are not multimaps the value is ignored.
//
// Complexity: O(log n)
func (d *Dict[V]) DeletePair(key string, value V, destroy func(V)) bool {
	e := d.GetPair(key, value)
	if e != nil {
		d.remove(e, destroy)
	}
	return e != nil
}

func (d *Dict[V]) remove(e *Entry[V], destroy func(V)) {
	if destroy != nil {
		destroy(e.Value)
	}
	d.tree.Delete(e)
	// The key is only released once the entry is unlinked, the comparisons
	// made while searching the tree still read it.
	e.key = ""
}

// Get returns the entry for key, or nil if there are none. In a multimap, the
// entry with the smallest value is returned.
//
// Complexity: O(log n)
func (d *Dict[V]) Get(key string) *Entry[V] {
	e, _ := d.tree.Find(d.probe(key))
	return e
}

// Lookup returns the value associated with key, and a boolean indicating
// whether the key was found. In a multimap, the smallest value associated with
// the key is returned.
//
// Complexity: O(log n)
func (d *Dict[V]) Lookup(key string) (value V, found bool) {
	if e := d.Get(key); e != nil {
		return e.Value, true
	}
	return value, false
}

// GetPair returns the entry matching both key and value, or nil if there are
// none. On dictionaries which are not multimaps the value is ignored and GetPair
// behaves like Get.
//
// Complexity: O(log n)
func (d *Dict[V]) GetPair(key string, value V) *Entry[V] {
	e, _ := d.tree.Lookup(&Entry[V]{key: key, Value: value})
	return e
}

// LookupPair reports whether the dictionary holds an entry matching both key
// and value, and returns it.
//
// Complexity: O(log n)
func (d *Dict[V]) LookupPair(key string, value V) (*Entry[V], bool) {
	e := d.GetPair(key, value)
	return e, e != nil
}

// Values returns all the values associated with key, in ascending order.
//
// Complexity: O(k log n) for k values
func (d *Dict[V]) Values(key string) (values []V) {
	for e := d.Get(key); e != nil && d.keys(e.key, key) == 0; e = d.NextEntry(e) {
		values = append(values, e.Value)
	}
	return values
}

func (d *Dict[V]) probe(key string) func(*Entry[V]) int {
	return func(e *Entry[V]) int { return d.keys(key, e.key) }
}

// First returns the first entry of the dictionary, or nil if it is empty.
//
// Complexity: O(log n)
func (d *Dict[V]) First() *Entry[V] {
	e, _ := d.tree.Min()
	return e
}

// Last returns the last entry of the dictionary, or nil if it is empty.
//
// Complexity: O(log n)
func (d *Dict[V]) Last() *Entry[V] {
	e, _ := d.tree.Max()
	return e
}

// Next returns the first entry with a key sorting after the one passed as
// argument, or nil if there are none. The key does not need to exist in the
// dictionary. In a multimap, the other entries sharing the key are skipped,
// use NextEntry to visit them.
//
// Complexity: O(log n)
func (d *Dict[V]) Next(key string) *Entry[V] {
	e, _ := d.tree.NextFunc(d.probe(key))
	return e
}

// Prev returns the last entry with a key sorting before the one passed as
// argument, or nil if there are none.
//
// Complexity: O(log n)
func (d *Dict[V]) Prev(key string) *Entry[V] {
	e, _ := d.tree.PrevFunc(d.probe(key))
	return e
}

// NextEntry returns the entry following e in the dictionary, or nil if e is
// the last one. Unlike Next, entries sharing the key of e in a multimap are
// not skipped, so walking from First with NextEntry visits every entry.
//
// The entry must be held in the dictionary.
//
// Complexity: O(log n)
func (d *Dict[V]) NextEntry(e *Entry[V]) *Entry[V] {
	next, _ := d.tree.Next(e)
	return next
}

// PrevEntry returns the entry preceding e in the dictionary, or nil if e is
// the first one.
//
// The entry must be held in the dictionary.
//
// Complexity: O(log n)
func (d *Dict[V]) PrevEntry(e *Entry[V]) *Entry[V] {
	prev, _ := d.tree.Prev(e)
	return prev
}

// Range calls f for each entry of the dictionary in ascending order. If f
// returns false, the iteration is stopped.
//
// Complexity: O(N)
func (d *Dict[V]) Range(f func(*Entry[V]) bool) { d.tree.Range(f) }

// RangeReverse is like Range but presents the entries in descending order.
//
// Complexity: O(N)
func (d *Dict[V]) RangeReverse(f func(*Entry[V]) bool) { d.tree.RangeReverse(f) }

// Each visits the entries of d in ascending order until visit returns true,
// and returns the result of that call.
func Each[V, R any](d *Dict[V], visit func(*Entry[V]) (R, bool)) (R, bool) {
	return tree.Each(&d.tree, visit)
}

// EachReverse is like Each but visits the entries in descending order.
func EachReverse[V, R any](d *Dict[V], visit func(*Entry[V]) (R, bool)) (R, bool) {
	return tree.EachReverse(&d.tree, visit)
}

// All returns an iterator over the keys and values of d in ascending order.
//
// The dictionary must not be modified during the iteration.
func (d *Dict[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		d.tree.Range(func(e *Entry[V]) bool { return yield(e.key, e.Value) })
	}
}

// Validate checks the structural invariants of the dictionary: those of the
// underlying tree, and the uniqueness of its entries.
//
// Complexity: O(N)
func (d *Dict[V]) Validate() error {
	if err := d.tree.Validate(); err != nil {
		return err
	}
	var prev *Entry[V]
	_, dup := tree.Each(&d.tree, func(e *Entry[V]) (*Entry[V], bool) {
		if prev != nil && d.keys(prev.key, e.key) == 0 && (d.values == nil || d.values(prev.Value, e.Value) == 0) {
			return e, true
		}
		prev = e
		return nil, false
	})
	if dup {
		return fmt.Errorf("%w: duplicate entries for key %q", tree.ErrCorrupt, prev.key)
	}
	return nil
}
