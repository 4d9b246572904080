// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cc2500

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestGenerateHoppingTable_Known(t *testing.T) {
	t.Parallel()

	want := HoppingTable{
		0x07, 0x1b, 0x2f, 0x43, 0x57, 0x6b, 0x7f, 0x93, 0xa7, 0xbb, 0xcf, 0xe3,
		0x0c, 0x20, 0x34, 0x48, 0x5c, 0x70, 0x84, 0x98, 0xac, 0xc0, 0xd4, 0xe8,
		0x11, 0x25, 0x39, 0x4d, 0x61, 0x75, 0x89, 0x9d, 0xb1, 0xc5, 0xd9, 0x02,
		0x16, 0x2a, 0x3e, 0x52, 0x66, 0x7a, 0x8e, 0xa2, 0xb6, 0xca, 0xde,
	}
	assert.Equal(t, want, GenerateHoppingTable(PlaceholderIdentity))
}

func TestGenerateHoppingTable_AllIdentitiesValid(t *testing.T) {
	t.Parallel()

	for id0 := range 256 {
		for id1 := range 256 {
			id := Identity{ID0: byte(id0), ID1: byte(id1)}
			table := GenerateHoppingTable(id)
			if !table.Valid() {
				t.Fatalf("identity %v produced invalid table %v", id, table)
			}
		}
	}
}

func TestGenerateHoppingTable_Deterministic(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		id := Identity{ID0: rapid.Byte().Draw(t, "id0"), ID1: rapid.Byte().Draw(t, "id1")}
		if GenerateHoppingTable(id) != GenerateHoppingTable(id) {
			t.Fatalf("table for %v differs between runs", id)
		}
	})
}

func TestGenerateHoppingTable_SkipsReserved(t *testing.T) {
	t.Parallel()

	// ID0&7 == 0 starts the walk on reserved channel 0x00
	table := GenerateHoppingTable(Identity{ID0: 0x08, ID1: 20})
	assert.Equal(t, byte(0x01), table[0])
	assert.Equal(t, byte(20), table[1], "walk continues from the unbumped channel")

	// 0x5A = 90 is reached at slot 2 with spacing 45
	table = GenerateHoppingTable(Identity{ID0: 0x00, ID1: 45})
	assert.Equal(t, byte(0x5B), table[2])
	assert.Equal(t, byte(135), table[3])
}

func TestNormalizeSpacing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  byte
		want byte
	}{
		{name: "zero", raw: 0x00, want: 0x02},
		{name: "one", raw: 0x01, want: 0x03},
		{name: "two unchanged", raw: 0x02, want: 0x02},
		{name: "upper bound unchanged", raw: 0xE9, want: 0xE9},
		{name: "above upper bound", raw: 0xEA, want: 0x03},
		{name: "max byte", raw: 0xFF, want: 0x18},
		{name: "multiple of 47", raw: 47, want: 48},
		{name: "94", raw: 94, want: 95},
		{name: "141", raw: 141, want: 142},
		{name: "188", raw: 188, want: 189},
		{name: "235 wraps", raw: 235, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeSpacing(tt.raw))
		})
	}
}

func TestNormalizeSpacing_Range(t *testing.T) {
	t.Parallel()

	for raw := range 256 {
		s := NormalizeSpacing(byte(raw))
		assert.GreaterOrEqual(t, s, byte(minSpacing), "raw 0x%02X", raw)
		assert.LessOrEqual(t, s, byte(maxSpacing), "raw 0x%02X", raw)
		assert.NotZero(t, s%NumChannels, "raw 0x%02X", raw)
	}
}

func TestHopIndex_Advance(t *testing.T) {
	t.Parallel()

	assert.Equal(t, HopIndex(1), HopIndex(0).Advance(1))
	assert.Equal(t, HopIndex(0), HopIndex(46).Advance(1))
	assert.Equal(t, HopIndex(45), HopIndex(46).Advance(46))
	assert.Equal(t, HopIndex(0), HopIndex(10).Advance(37))

	rapid.Check(t, func(t *rapid.T) {
		h := HopIndex(rapid.IntRange(0, NumChannels-1).Draw(t, "hop"))
		skip := rapid.Byte().Draw(t, "skip")
		next := h.Advance(skip)
		if next >= NumChannels {
			t.Fatalf("advance(%d, %d) = %d out of range", h, skip, next)
		}
		if int(next) != (int(h)+int(skip))%NumChannels {
			t.Fatalf("advance(%d, %d) = %d", h, skip, next)
		}
	})
}

func TestHopIndex_FullCycle(t *testing.T) {
	t.Parallel()

	seen := make(map[HopIndex]bool)
	var h HopIndex
	for range NumChannels {
		seen[h] = true
		h = h.Advance(1)
	}
	assert.Len(t, seen, NumChannels)
	assert.Equal(t, HopIndex(0), h)
}

func TestIdentity_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0F:14", PlaceholderIdentity.String())
}
