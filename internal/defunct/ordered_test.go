// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct_test

import (
	"testing"

	"github.com/cobaltcore-dev/defunct/internal/defunct"
	"github.com/sapcc/go-bits/assert"
)

func TestOrderedMap(t *testing.T) {
	m := defunct.NewOrderedMap[string, int]()
	m.Set("regular", 1)
	m.Set("m1", 2)
	m.Set("pt", 3)
	m.Set("regular", 4)

	assert.DeepEqual(t, "keys", m.Keys(), []string{"regular", "m1", "pt"})
	assert.DeepEqual(t, "sorted keys", defunct.SortedKeys(m), []string{"m1", "pt", "regular"})
	assert.DeepEqual(t, "len", m.Len(), 3)

	value, ok := m.Get("regular")
	if !ok || value != 4 {
		t.Errorf("expected regular=4, got %d, %v", value, ok)
	}
	if _, ok := m.Get("m2"); ok {
		t.Error("expected m2 to be absent")
	}

	var keys []string
	var values []int
	for key, value := range m.All() {
		keys = append(keys, key)
		values = append(values, value)
	}
	assert.DeepEqual(t, "iterated keys", keys, []string{"regular", "m1", "pt"})
	assert.DeepEqual(t, "iterated values", values, []int{4, 2, 3})

	// Stopping early must be respected.
	count := 0
	for range m.All() {
		count++
		break
	}
	assert.DeepEqual(t, "early stop", count, 1)

	// Keys returns a copy.
	keysCopy := m.Keys()
	keysCopy[0] = "changed"
	assert.DeepEqual(t, "keys after modifying copy", m.Keys(), []string{"regular", "m1", "pt"})
}
