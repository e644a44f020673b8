package types

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// TagSet is a format-agnostic, ordered mapping of canonical tag keys to values.
//
// Keys are canonicalized to upper case on every insert, so "artist" and
// "ARTIST" name the same tag. Each key holds an ordered list of values;
// a key never maps to an empty list (setting no values removes the key).
//
// Keys iterate in insertion order. Format plugins rely on that order when
// encoding so that a re-encoded tag is deterministic.
//
// The zero value is an empty TagSet ready to use.
type TagSet struct {
	values map[string][]string
	keys   []string
}

// NewTagSet returns an empty TagSet.
func NewTagSet() TagSet {
	return TagSet{}
}

// FromMap builds a TagSet from a plain map.
//
// Keys are inserted in sorted order so that the result does not depend on
// Go's map iteration order. Keys with empty value lists are skipped.
func FromMap(m map[string][]string) TagSet {
	var ts TagSet
	for _, key := range slices.Sorted(maps.Keys(m)) {
		ts.Add(key, m[key]...)
	}
	return ts
}

// CanonicalKey returns the canonical (upper case) form of a tag key.
func CanonicalKey(key string) string {
	return strings.ToUpper(key)
}

// Len returns the number of keys.
func (t TagSet) Len() int {
	return len(t.keys)
}

// Keys returns the keys in insertion order.
func (t TagSet) Keys() []string {
	return slices.Clone(t.keys)
}

// Has reports whether key is present.
func (t TagSet) Has(key string) bool {
	_, ok := t.values[CanonicalKey(key)]
	return ok
}

// All returns an iterator over keys and values in insertion order.
//
// Example:
//
//	for key, values := range tags.All() {
//		fmt.Printf("%s: %v\n", key, values)
//	}
//
// The returned slices must not be modified.
func (t TagSet) All() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, key := range t.keys {
			if !yield(key, t.values[key]) {
				return
			}
		}
	}
}

// Get returns a copy of all values for key, or nil if absent.
func (t TagSet) Get(key string) []string {
	values := t.values[CanonicalKey(key)]
	if values == nil {
		return nil
	}
	return slices.Clone(values)
}

// GetFirst returns the first value for key, or "" if absent.
//
//	artist := tags.GetFirst("ARTIST")
func (t TagSet) GetFirst(key string) string {
	values := t.values[CanonicalKey(key)]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Set replaces all values for key.
//
// If values is empty, the key is removed. A key that already exists keeps
// its position in the iteration order.
func (t *TagSet) Set(key string, values ...string) {
	key = CanonicalKey(key)
	if len(values) == 0 {
		t.Delete(key)
		return
	}
	if t.values == nil {
		t.values = make(map[string][]string)
	}
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = slices.Clone(values)
}

// Add appends values to key, creating it if needed.
func (t *TagSet) Add(key string, values ...string) {
	if len(values) == 0 {
		return
	}
	key = CanonicalKey(key)
	if t.values == nil {
		t.values = make(map[string][]string)
	}
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = append(t.values[key], values...)
}

// Delete removes key.
func (t *TagSet) Delete(key string) {
	key = CanonicalKey(key)
	if _, ok := t.values[key]; !ok {
		return
	}
	delete(t.values, key)
	t.keys = slices.DeleteFunc(t.keys, func(k string) bool { return k == key })
}

// Merge applies other on top of t with replace semantics.
//
// Every key present in other replaces the same key in t. Keys only in t
// are kept.
func (t *TagSet) Merge(other TagSet) {
	for key, values := range other.All() {
		t.Set(key, values...)
	}
}

// Clone returns a deep copy.
func (t TagSet) Clone() TagSet {
	var c TagSet
	for key, values := range t.All() {
		c.Set(key, values...)
	}
	return c
}

// Map returns the tags as a plain map. The result is a copy.
func (t TagSet) Map() map[string][]string {
	m := make(map[string][]string, len(t.keys))
	for key, values := range t.All() {
		m[key] = slices.Clone(values)
	}
	return m
}

// Equal reports whether t and other hold the same keys with the same values
// in the same per-key order. Key order is not compared.
func (t TagSet) Equal(other TagSet) bool {
	if len(t.keys) != len(other.keys) {
		return false
	}
	for key, values := range t.All() {
		if !slices.Equal(values, other.values[key]) {
			return false
		}
	}
	return true
}
