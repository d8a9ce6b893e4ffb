// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sources

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistemic-technology/termchat/internal/model"
)

func doc(n int) model.Source {
	return model.Source{
		Title:    fmt.Sprintf("Doc %d", n),
		FilePath: fmt.Sprintf("/content/doc%d.md", n),
		ID:       n,
	}
}

// =============================================================================
// ADD TESTS
// =============================================================================

func TestRegistry_FillPhaseSlots(t *testing.T) {
	reg := New()

	for i := 1; i <= Capacity; i++ {
		stored := reg.Add(doc(i))
		assert.Equal(t, i, stored.Slot, "insertion %d", i)
		assert.Equal(t, i%Capacity, reg.Cursor(), "cursor after insertion %d", i)
	}

	assert.Equal(t, Capacity, reg.Len())
	assert.True(t, reg.Full())
}

func TestRegistry_TenthOverwritesSlotOne(t *testing.T) {
	reg := New()
	for i := 1; i <= Capacity; i++ {
		reg.Add(doc(i))
	}

	stored := reg.Add(doc(10))
	assert.Equal(t, 1, stored.Slot)
	assert.Equal(t, 1, reg.Cursor())
	assert.Equal(t, Capacity, reg.Len())

	got, ok := reg.Resolve(0)
	require.True(t, ok)
	assert.Equal(t, "Doc 10", got.Title)
}

func TestRegistry_OverwriteWraps(t *testing.T) {
	reg := New()
	var slots []int
	for i := 1; i <= 2*Capacity+2; i++ {
		slots = append(slots, reg.Add(doc(i)).Slot)
	}

	want := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 1, 2, 3, 4, 5, 6, 7, 8, 9, 1, 2}
	assert.Equal(t, want, slots)
	assert.Equal(t, 2, reg.Cursor())
}

func TestRegistry_SlotMatchesPosition(t *testing.T) {
	reg := New()
	for i := 1; i <= 13; i++ {
		reg.Add(doc(i))
	}
	for i, src := range reg.List() {
		assert.Equal(t, i+1, src.Slot)
	}
}

func TestRegistry_NoDeduplication(t *testing.T) {
	reg := New()
	a := reg.Add(doc(1))
	b := reg.Add(doc(1))

	assert.Equal(t, 1, a.Slot)
	assert.Equal(t, 2, b.Slot)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_AddIgnoresIncomingSlot(t *testing.T) {
	reg := New()
	src := doc(1)
	src.Slot = 7

	assert.Equal(t, 1, reg.Add(src).Slot)
}

// =============================================================================
// RESOLVE TESTS
// =============================================================================

func TestRegistry_ResolveAfterEviction(t *testing.T) {
	reg := New()
	for i := 1; i <= Capacity+3; i++ {
		reg.Add(doc(i))
	}

	for index, wantID := range map[int]int{0: 10, 1: 11, 2: 12, 3: 4, 8: 9} {
		got, ok := reg.Resolve(index)
		require.True(t, ok, "index %d", index)
		assert.Equal(t, wantID, got.ID, "index %d", index)
		assert.Equal(t, index+1, got.Slot)
	}
}

func TestRegistry_ResolveOutOfRange(t *testing.T) {
	reg := New()
	reg.Add(doc(1))
	reg.Add(doc(2))
	reg.Add(doc(3))

	tests := []int{-1, 3, 4, 8, 9}
	for _, index := range tests {
		_, ok := reg.Resolve(index)
		assert.False(t, ok, "index %d", index)
	}
}

func TestRegistry_ListIsCopy(t *testing.T) {
	reg := New()
	reg.Add(doc(1))

	list := reg.List()
	list[0].Title = "mutated"

	got, _ := reg.Resolve(0)
	assert.Equal(t, "Doc 1", got.Title)
}

// =============================================================================
// RESTORE TESTS
// =============================================================================

func TestRestore(t *testing.T) {
	full := make([]model.Source, 0, Capacity)
	for i := 1; i <= Capacity; i++ {
		full = append(full, doc(i))
	}

	tests := []struct {
		name       string
		entries    []model.Source
		cursor     int
		wantLen    int
		wantCursor int
	}{
		{"empty", nil, 0, 0, 0},
		{"partial keeps count as cursor", full[:4], 4, 4, 4},
		{"partial fixes inconsistent cursor", full[:4], 7, 4, 4},
		{"full keeps cursor", full, 5, Capacity, 5},
		{"full with negative cursor", full, -2, Capacity, 0},
		{"full with cursor past capacity", full, Capacity, Capacity, 0},
		{"oversized is truncated", append(append([]model.Source{}, full...), doc(10)), 3, Capacity, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := Restore(tc.entries, tc.cursor)
			assert.Equal(t, tc.wantLen, reg.Len())
			assert.Equal(t, tc.wantCursor, reg.Cursor())
			for i, src := range reg.List() {
				assert.Equal(t, i+1, src.Slot)
			}
		})
	}
}

func TestRestore_ContinuesRing(t *testing.T) {
	reg := New()
	for i := 1; i <= 11; i++ {
		reg.Add(doc(i))
	}

	restored := Restore(reg.List(), reg.Cursor())
	assert.Equal(t, reg.List(), restored.List())

	next := restored.Add(doc(12))
	assert.Equal(t, 3, next.Slot)
}
