package kv

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// Storage is an associative structure for storing (string, string) pairs. Keys are compared
// case-insensitively and stored in lower case, so a later Set of the same key overrides the
// previously stored value regardless of how it was spelled.
type Storage struct {
	pairs map[string]string
}

func New() *Storage {
	return NewPrealloc(0)
}

// NewPrealloc returns an instance of Storage with pre-allocated underlying storage.
func NewPrealloc(n int) *Storage {
	return &Storage{
		pairs: make(map[string]string, n),
	}
}

// NewFromMap returns a new instance with already inserted values from given map. In case
// the map contains several spellings of the same key, it's unspecified which one wins.
func NewFromMap(m map[string]string) *Storage {
	kv := NewPrealloc(len(m))

	for key, value := range m {
		kv.Set(key, value)
	}

	return kv
}

// Set stores the value, replacing whatever was stored by the key before.
func (s *Storage) Set(key, value string) *Storage {
	s.pairs[strings.ToLower(key)] = value
	return s
}

// Value returns the value, corresponding to the key. Otherwise, empty string is returned
func (s *Storage) Value(key string) string {
	return s.ValueOr(key, "")
}

// ValueOr returns either the value corresponding to the key or custom value, defined
// via the second parameter.
func (s *Storage) ValueOr(key, or string) string {
	value, found := s.Get(key)
	if !found {
		return or
	}

	return value
}

// Get returns a value and a bool, indicating whether the value was found.
func (s *Storage) Get(key string) (value string, found bool) {
	value, found = s.pairs[strings.ToLower(key)]
	return value, found
}

// Has indicates, whether there's an entry of the key.
func (s *Storage) Has(key string) bool {
	_, found := s.Get(key)
	return found
}

// Keys returns all the presented keys in lexicographical order.
func (s *Storage) Keys() []string {
	return slices.Sorted(maps.Keys(s.pairs))
}

// Pairs returns an iterator over the stored pairs. Iteration order is not specified.
func (s *Storage) Pairs() iter.Seq2[string, string] {
	return maps.All(s.pairs)
}

// Expose returns a copy of stored pairs as a map.
func (s *Storage) Expose() map[string]string {
	return maps.Clone(s.pairs)
}

func (s *Storage) Len() int {
	return len(s.pairs)
}

func (s *Storage) Empty() bool {
	return len(s.pairs) == 0
}

// Clear removes all the pairs, keeping the allocated memory.
func (s *Storage) Clear() {
	clear(s.pairs)
}
