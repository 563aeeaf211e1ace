// Package radix interns module paths so that path equality, needed
// pervasively by ModPath and its isSubPathOf check, is a pointer compare
// instead of a slice walk.
//
// This is a typed wrapper around github.com/armon/go-radix, the same
// pattern the teacher used for its pathDeducer trie: avoid type assertions
// everywhere else by keeping them in one small file.
package radix

import radix "github.com/armon/go-radix"

// Key is anything that can be canonicalized to a '/'-joined string.
type Key []string

func (k Key) string() string {
	n := 0
	for _, s := range k {
		n += len(s) + 1
	}
	buf := make([]byte, 0, n)
	for i, s := range k {
		if i > 0 {
			buf = append(buf, '/')
		}
		buf = append(buf, s...)
	}
	return string(buf)
}

// Interner canonicalizes string-keyed values of type T so that equal keys
// always return the identical stored value. Not implemented as a generic
// over comparable T beyond what's needed here: Get/Intern take a Key
// (segment list) and join it with '/' into the tree's string key, Walk
// isn't implemented (not needed, as the teacher's comment
// on typed_radix.go notes for similar unused tree operations).
type Interner[T any] struct {
	t *radix.Tree
}

// New returns an empty Interner.
func New[T any]() *Interner[T] {
	return &Interner[T]{t: radix.New()}
}

// Intern returns the canonical value for key, inserting v if key has never
// been seen before. The returned bool reports whether v was the one stored
// (false means an earlier value for the same key won).
func (in *Interner[T]) Intern(key Key, v T) (T, bool) {
	s := key.string()
	if existing, has := in.t.Get(s); has {
		return existing.(T), false
	}
	in.t.Insert(s, v)
	return v, true
}

// Get looks up key without inserting.
func (in *Interner[T]) Get(key Key) (T, bool) {
	var zero T
	if v, has := in.t.Get(key.string()); has {
		return v.(T), true
	}
	return zero, false
}

// Len reports the number of interned keys.
func (in *Interner[T]) Len() int {
	return in.t.Len()
}
