// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct

import (
	"cmp"
	"iter"
	"slices"
)

// Map that iterates in insertion order.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{values: make(map[K]V)}
}

func (m *OrderedMap[K, V]) Get(key K) (V, bool) {
	value, ok := m.values[key]
	return value, ok
}

// Set the value for key. A new key is appended to the iteration order,
// an existing key keeps its position.
func (m *OrderedMap[K, V]) Set(key K, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *OrderedMap[K, V]) Keys() []K {
	return slices.Clone(m.keys)
}

func (m *OrderedMap[K, V]) Len() int {
	return len(m.keys)
}

// Iterate over all entries in insertion order.
func (m *OrderedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, key := range m.keys {
			if !yield(key, m.values[key]) {
				return
			}
		}
	}
}

// The keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m *OrderedMap[K, V]) []K {
	keys := m.Keys()
	slices.Sort(keys)
	return keys
}
