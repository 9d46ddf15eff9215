package dict

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segmentio/avl/compare"
	"github.com/segmentio/avl/container/tree"
)

type kv struct {
	key   string
	value int
}

func entries(d *Dict[int]) (list []kv) {
	for k, v := range d.All() {
		list = append(list, kv{k, v})
	}
	return list
}

func fruits() *Dict[int] {
	d := New[int](compare.Strings)
	d.InsertIfAbsent("banana", 2)
	d.InsertIfAbsent("apple", 1)
	d.InsertIfAbsent("cherry", 3)
	return d
}

func TestDictOrderedIteration(t *testing.T) {
	d := fruits()

	assert.Equal(t, []kv{{"apple", 1}, {"banana", 2}, {"cherry", 3}}, entries(d))
	assert.NoError(t, d.Validate())
}

func TestDictInsertIfAbsentKeepsOriginal(t *testing.T) {
	d := fruits()

	e, inserted := d.InsertIfAbsent("apple", 99)
	assert.False(t, inserted)
	assert.Equal(t, "apple", e.Key())
	assert.Equal(t, 1, e.Value)
	assert.Equal(t, 3, d.Len())

	v, found := d.Lookup("apple")
	assert.True(t, found)
	assert.Equal(t, 1, v)
}

func TestDictDelete(t *testing.T) {
	d := fruits()

	assert.Equal(t, 1, d.Delete("banana", nil))

	_, found := d.Lookup("banana")
	assert.False(t, found)
	assert.Nil(t, d.Get("banana"))
	assert.Equal(t, []kv{{"apple", 1}, {"cherry", 3}}, entries(d))

	assert.Zero(t, d.Delete("banana", nil), "deleting an absent key is a no-op")
	assert.Equal(t, 2, d.Len())
	assert.NoError(t, d.Validate())
}

func TestDictDeleteCallsDestructorBeforeUnlinking(t *testing.T) {
	d := New[*strings.Builder](compare.Strings)
	e, _ := d.InsertIfAbsent("buffer", new(strings.Builder))

	var destroyed []string
	n := d.Delete("buffer", func(b *strings.Builder) {
		destroyed = append(destroyed, e.Key())
		assert.Equal(t, 1, d.Len(), "entry unlinked before destructor ran")
	})

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"buffer"}, destroyed)
	assert.Empty(t, e.Key(), "deleted entries release their key")
	assert.Zero(t, d.Len())
}

func TestDictSet(t *testing.T) {
	d := fruits()

	before := d.Get("banana")
	e, err := d.Set("banana", 20)
	require.NoError(t, err)
	assert.Same(t, before, e, "Set updates the entry in place")
	assert.Equal(t, 20, e.Value)

	e, err = d.Set("date", 4)
	require.NoError(t, err)
	assert.Equal(t, "date", e.Key())
	assert.Equal(t, 4, d.Len())
	assert.NoError(t, d.Validate())
}

func TestDictKeysAreCopied(t *testing.T) {
	d := New[int](compare.Strings)
	buf := []byte("alpha")

	d.InsertIfAbsent(string(buf[:3]), 1)
	key := "alp" + "ha"
	d.InsertIfAbsent(key[:4], 2)

	assert.Equal(t, []kv{{"alp", 1}, {"alph", 2}}, entries(d))
}

func TestDictCaseModes(t *testing.T) {
	tests := []struct {
		scenario string
		keys     func(string, string) int
		len      int
		value    int
	}{
		{
			scenario: "case-insensitive dictionaries treat keys differing by case as one entry",
			keys:     compare.Fold,
			len:      1,
			value:    1,
		},
		{
			scenario: "case-sensitive dictionaries treat keys differing by case as two entries",
			keys:     compare.Strings,
			len:      2,
			value:    2,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			d := New[int](test.keys)
			d.InsertIfAbsent("Key", 1)
			e, _ := d.InsertIfAbsent("key", 2)

			assert.Equal(t, test.value, e.Value)
			assert.Equal(t, test.len, d.Len())
			assert.NoError(t, d.Validate())
		})
	}
}

func TestDictFoldRetainsFirstSpelling(t *testing.T) {
	d := New[string](compare.Fold)
	d.InsertIfAbsent("Path", "/bin")
	d.InsertIfAbsent("PATH", "/usr/bin")

	e := d.Get("path")
	require.NotNil(t, e)
	assert.Equal(t, "Path", e.Key())
	assert.Equal(t, "/bin", e.Value)

	_, err := d.Set("PATH", "/sbin")
	require.NoError(t, err)
	assert.Equal(t, "Path", d.First().Key())
	assert.Equal(t, "/sbin", d.First().Value)

	assert.Equal(t, 1, d.Delete("pAtH", nil))
	assert.Zero(t, d.Len())
}

func TestDictNavigation(t *testing.T) {
	d := New[int](compare.Strings)
	for i, k := range []string{"d", "b", "f", "a", "e", "c"} {
		d.InsertIfAbsent(k, i)
	}

	assert.Equal(t, "a", d.First().Key())
	assert.Equal(t, "f", d.Last().Key())
	assert.Equal(t, "c", d.Next("b").Key())
	assert.Equal(t, "c", d.Next("bb").Key())
	assert.Equal(t, "a", d.Prev("b").Key())
	assert.Nil(t, d.Next("f"))
	assert.Nil(t, d.Prev("a"))

	var keys []string
	for e := d.First(); e != nil; e = d.Next(e.Key()) {
		keys = append(keys, e.Key())
	}
	var reverse []string
	d.RangeReverse(func(e *Entry[int]) bool {
		reverse = append(reverse, e.Key())
		return true
	})

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, keys)
	assert.Equal(t, []string{"f", "e", "d", "c", "b", "a"}, reverse)

	empty := New[int](compare.Strings)
	assert.Nil(t, empty.First())
	assert.Nil(t, empty.Last())
	assert.Nil(t, empty.Next("a"))
}

func TestDictEach(t *testing.T) {
	d := fruits()

	key, found := Each(d, func(e *Entry[int]) (string, bool) {
		return e.Key(), e.Value > 1
	})
	assert.True(t, found)
	assert.Equal(t, "banana", key)

	key, found = EachReverse(d, func(e *Entry[int]) (string, bool) {
		return e.Key(), e.Value < 3
	})
	assert.True(t, found)
	assert.Equal(t, "banana", key)

	_, found = Each(d, func(e *Entry[int]) (struct{}, bool) {
		return struct{}{}, false
	})
	assert.False(t, found)

	var visited int
	d.Range(func(*Entry[int]) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}

func TestMultimap(t *testing.T) {
	d := NewMulti[int](compare.Strings, compare.Function[int])
	assert.True(t, d.Multi())

	for _, p := range []kv{{"b", 3}, {"a", 2}, {"b", 1}, {"a", 1}, {"b", 2}, {"c", 0}} {
		_, inserted := d.InsertIfAbsent(p.key, p.value)
		assert.True(t, inserted)
	}

	_, inserted := d.InsertIfAbsent("b", 2)
	assert.False(t, inserted, "pairs are unique in a multimap")
	assert.Equal(t, 6, d.Len())
	require.NoError(t, d.Validate())

	assert.Equal(t, []kv{{"a", 1}, {"a", 2}, {"b", 1}, {"b", 2}, {"b", 3}, {"c", 0}}, entries(d))
	assert.Equal(t, []int{1, 2, 3}, d.Values("b"))
	assert.Empty(t, d.Values("z"))

	v, found := d.Lookup("b")
	assert.True(t, found)
	assert.Equal(t, 1, v)

	assert.Equal(t, kv{"c", 0}, kv{d.Next("b").Key(), d.Next("b").Value})
	assert.Equal(t, kv{"a", 2}, kv{d.Prev("b").Key(), d.Prev("b").Value})

	_, err := d.Set("b", 5)
	assert.ErrorIs(t, err, ErrMultimap)

	assert.True(t, d.DeletePair("b", 2, nil))
	assert.False(t, d.DeletePair("b", 2, nil))
	assert.Equal(t, []int{1, 3}, d.Values("b"))

	var destroyed []int
	assert.Equal(t, 2, d.Delete("a", func(v int) { destroyed = append(destroyed, v) }))
	assert.Equal(t, []int{1, 2}, destroyed)
	assert.Equal(t, []kv{{"b", 1}, {"b", 3}, {"c", 0}}, entries(d))
	assert.NoError(t, d.Validate())
}

func TestMultimapLookupPair(t *testing.T) {
	d := NewMulti[int](compare.Fold, compare.Function[int])
	d.InsertIfAbsent("Key", 1)
	d.InsertIfAbsent("key", 2)

	e, found := d.LookupPair("KEY", 2)
	require.True(t, found)
	assert.Equal(t, "key", e.Key())
	assert.Equal(t, 2, e.Value)

	e, found = d.LookupPair("key", 3)
	assert.False(t, found)
	assert.Nil(t, e)
	assert.Nil(t, d.GetPair("other", 1))

	assert.Equal(t, 2, d.Len(), "looking up pairs does not insert them")
	assert.NoError(t, d.Validate())
}

func TestMultimapTraversalCompleteness(t *testing.T) {
	d := NewMulti[int](compare.Strings, compare.Function[int])
	for _, p := range []kv{{"b", 2}, {"a", 1}, {"b", 3}, {"a", 2}, {"b", 1}} {
		d.InsertIfAbsent(p.key, p.value)
	}

	var forward []kv
	for e := d.First(); e != nil; e = d.NextEntry(e) {
		forward = append(forward, kv{e.Key(), e.Value})
	}
	var backward []kv
	for e := d.Last(); e != nil; e = d.PrevEntry(e) {
		backward = append(backward, kv{e.Key(), e.Value})
	}
	var reverse []kv
	d.RangeReverse(func(e *Entry[int]) bool {
		reverse = append(reverse, kv{e.Key(), e.Value})
		return true
	})

	assert.Equal(t, []kv{{"a", 1}, {"a", 2}, {"b", 1}, {"b", 2}, {"b", 3}}, forward)
	assert.Len(t, forward, d.Len())
	assert.Equal(t, reverse, backward)

	for i, j := 0, len(backward)-1; i < j; i, j = i+1, j-1 {
		backward[i], backward[j] = backward[j], backward[i]
	}
	assert.Equal(t, forward, backward)

	var keys []string
	for e := d.First(); e != nil; e = d.Next(e.Key()) {
		keys = append(keys, e.Key())
	}
	assert.Equal(t, []string{"a", "b"}, keys, "Next moves to the following key")
}

func TestMultimapRequiresValueComparison(t *testing.T) {
	assert.Panics(t, func() { NewMulti[int](compare.Strings, nil) })
}

func TestDictDeletePairOnSimpleMap(t *testing.T) {
	d := fruits()

	assert.True(t, d.DeletePair("apple", 12345, nil))
	assert.Equal(t, 2, d.Len())
}

func TestDictRandomOperations(t *testing.T) {
	prng := rand.New(rand.NewSource(4))
	d := New[int](compare.Strings)
	model := make(map[string]int)

	for i := 0; i < 5000; i++ {
		key := fmt.Sprintf("k%03d", prng.Intn(300))

		switch prng.Intn(3) {
		case 0:
			e, inserted := d.InsertIfAbsent(key, i)
			if v, ok := model[key]; ok {
				require.False(t, inserted)
				require.Equal(t, v, e.Value)
			} else {
				require.True(t, inserted)
				model[key] = i
			}
		case 1:
			_, err := d.Set(key, i)
			require.NoError(t, err)
			model[key] = i
		case 2:
			_, ok := model[key]
			n := d.Delete(key, nil)
			if ok {
				require.Equal(t, 1, n)
			} else {
				require.Zero(t, n)
			}
			delete(model, key)
		}

		require.Equal(t, len(model), d.Len())
	}

	require.NoError(t, d.Validate())

	keys := make([]string, 0, len(model))
	for k := range model {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	got := entries(d)
	require.Len(t, got, len(keys))
	for i, k := range keys {
		assert.Equal(t, kv{k, model[k]}, got[i])
	}
}

func TestDictValidateDetectsDuplicates(t *testing.T) {
	d := New[int](compare.Strings)
	d.InsertIfAbsent("a", 1)
	d.InsertIfAbsent("b", 2)

	// Renaming an entry behind the dictionary's back breaks uniqueness.
	d.Last().key = "a"
	assert.ErrorIs(t, d.Validate(), tree.ErrCorrupt)
}

func BenchmarkDictInsertIfAbsent(b *testing.B) {
	const N = 4096
	keys := make([]string, N)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%06d", i)
	}
	d := New[int](compare.Strings)

	for i := 0; i < b.N; i++ {
		d.InsertIfAbsent(keys[i%N], i)
	}
}

func BenchmarkDictLookupFold(b *testing.B) {
	const N = 4096
	d := New[int](compare.Fold)
	for i := 0; i < N; i++ {
		d.InsertIfAbsent(fmt.Sprintf("Key-%06d", i), i)
	}

	for i := 0; i < b.N; i++ {
		d.Lookup(fmt.Sprintf("KEY-%06d", i%N))
	}
}
