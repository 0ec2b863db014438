// util/generic_test.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"slices"
	"testing"
)

func TestSelect(t *testing.T) {
	if Select(true, 1, 2) != 1 {
		t.Errorf("Select true")
	}
	if Select(false, 1, 2) != 2 {
		t.Errorf("Select false")
	}
}

func TestSortedMapKeys(t *testing.T) {
	m := map[string]int{"cat": 1, "terrain": 2, "icing": 3}
	k := SortedMapKeys(m)
	if !slices.Equal(k, []string{"cat", "icing", "terrain"}) {
		t.Errorf("SortedMapKeys: %v", k)
	}
}

func TestMapFilterSlice(t *testing.T) {
	s := []int{1, 2, 3, 4}
	sq := MapSlice(s, func(v int) int { return v * v })
	if !slices.Equal(sq, []int{1, 4, 9, 16}) {
		t.Errorf("MapSlice: %v", sq)
	}
	ev := FilterSlice(s, func(v int) bool { return v%2 == 0 })
	if !slices.Equal(ev, []int{2, 4}) {
		t.Errorf("FilterSlice: %v", ev)
	}
}

func TestDeltaRoundTrip(t *testing.T) {
	for _, d := range [][]uint32{
		nil,
		{12},
		{100, 101, 103, 103, 90},
		{0, 0xffffffff, 1}, // deltas wrap around
	} {
		enc := DeltaEncode(d)
		if !slices.Equal(DeltaDecode(enc), d) {
			t.Errorf("%v: round trip gave %v", d, DeltaDecode(enc))
		}
	}
}
