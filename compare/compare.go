// Package compare contains comparison functions used to order the elements of
// the containers in this module.
//
// All functions follow the same convention: they return a negative number when
// a sorts before b, a positive number when a sorts after b, and zero when they
// are equivalent.
package compare

import (
	"cmp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Function is a comparison function for ordered types.
func Function[T cmp.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return +1
	default:
		return 0
	}
}

// Strings is the ordinal (case-sensitive) comparison of two strings.
func Strings(a, b string) int { return strings.Compare(a, b) }

// Fold compares strings ignoring case. Both strings are case folded with the
// Unicode case folding rules before being compared byte-wise, so "ABC", "abc"
// and "Abc" are all equivalent.
//
// Strings that are pure ASCII are compared without allocating. Fold is safe to
// call concurrently from multiple goroutines.
func Fold(a, b string) int {
	if isASCII(a) && isASCII(b) {
		return foldASCII(a, b)
	}
	c := folders.Get().(*cases.Caser)
	defer folders.Put(c)
	return strings.Compare(c.String(a), c.String(b))
}

// Casers carry transformation state, each one must be used by a single
// goroutine at a time.
var folders = sync.Pool{
	New: func() any {
		c := cases.Fold()
		return &c
	},
}

// Reverse returns a comparison function ordering elements in the opposite
// order of f.
func Reverse[T any](f func(T, T) int) func(T, T) int {
	return func(a, b T) int { return f(b, a) }
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func foldASCII(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ca, cb := lower(a[i]), lower(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return +1
		}
	}
	return Function(len(a), len(b))
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
