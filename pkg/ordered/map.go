package ordered

import (
	"reflect"
	"sort"
)

// Map is a string-keyed map that iterates in insertion order. Setting an
// existing key replaces its value but keeps its original position. The zero
// value is ready to use; a nil *Map behaves as an empty, read-only map.
//
// Values handed out by the conversion engine must be treated as read-only.
type Map struct {
	keys   []string
	values map[string]any
}

// New returns an empty map with room for capacity entries.
func New(capacity int) *Map {
	if capacity < 0 {
		capacity = 0
	}
	return &Map{
		keys:   make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

// FromMap copies a Go map. Go maps carry no order, so keys are inserted in
// sorted order to keep the result deterministic.
func FromMap(src map[string]any) *Map {
	out := New(len(src))
	for _, key := range SortedKeys(src) {
		out.Set(key, src[key])
	}
	return out
}

// SortedKeys returns the keys of a Go map in ascending order.
func SortedKeys(src map[string]any) []string {
	keys := make([]string, 0, len(src))
	for key := range src {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Set stores value under key.
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil || m.values == nil {
		return nil, false
	}
	value, ok := m.values[key]
	return value, ok
}

// Has reports whether key is present, including keys holding nil.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key, preserving the order of the remaining keys.
func (m *Map) Delete(key string) {
	if m == nil || m.values == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, existing := range m.keys {
		if existing == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len reports the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, value any) bool) {
	if m == nil {
		return
	}
	for _, key := range m.keys {
		if !fn(key, m.values[key]) {
			return
		}
	}
}

// Clone returns a shallow copy.
func (m *Map) Clone() *Map {
	out := New(m.Len())
	m.Range(func(key string, value any) bool {
		out.Set(key, value)
		return true
	})
	return out
}

// ToMap returns a shallow copy as a plain Go map.
func (m *Map) ToMap() map[string]any {
	out := make(map[string]any, m.Len())
	m.Range(func(key string, value any) bool {
		out[key] = value
		return true
	})
	return out
}

// Equal reports whether both maps hold the same keys with equal values. Key
// order is not compared; use Keys for that.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	equal := true
	m.Range(func(key string, value any) bool {
		theirs, ok := other.Get(key)
		if !ok || !ValuesEqual(value, theirs) {
			equal = false
		}
		return equal
	})
	return equal
}

// ValuesEqual compares two decoded value trees, treating *Map values by
// content and recursing into slices.
func ValuesEqual(a, b any) bool {
	switch left := a.(type) {
	case *Map:
		right, ok := b.(*Map)
		return ok && left.Equal(right)
	case []any:
		right, ok := b.([]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if !ValuesEqual(left[i], right[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}
