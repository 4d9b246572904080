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

import "fmt"

// NumChannels is the number of slots in a hopping table.
const NumChannels = 47

// Channel walk bounds. Channel numbers stay below channelLimit and the
// spacing stays within [minSpacing, maxSpacing].
const (
	channelLimit = 0xEB
	minSpacing   = 0x02
	maxSpacing   = 0xE9
	spacingWrap  = 0xE7
)

// reservedChannels are never placed in a hopping table. A walk that lands
// on one of them stores the next channel up instead.
var reservedChannels = [...]byte{0x00, 0x5A, 0xDC}

// Identity is the two-byte transmitter identity shared with a bound
// receiver. It seeds the hopping table and addresses normal frames.
type Identity struct {
	ID0 byte `yaml:"id0"`
	ID1 byte `yaml:"id1"`
}

// PlaceholderIdentity is used until a bound identity is available.
var PlaceholderIdentity = Identity{ID0: 15, ID1: 20}

func (id Identity) String() string {
	return fmt.Sprintf("%02X:%02X", id.ID0, id.ID1)
}

// HoppingTable holds the channel number of every hop slot.
type HoppingTable [NumChannels]byte

// NormalizeSpacing maps a raw spacing byte onto a step that visits every
// slot of the table before repeating.
func NormalizeSpacing(raw byte) byte {
	s := raw
	if s < minSpacing {
		s += minSpacing
	}
	if s > maxSpacing {
		s -= spacingWrap
	}
	if s%NumChannels == 0 {
		s++
	}
	return s
}

// GenerateHoppingTable derives the hopping table for an identity. The walk
// starts at ID0&7 and steps by the normalized ID1 modulo 0xEB.
func GenerateHoppingTable(id Identity) HoppingTable {
	var table HoppingTable

	channel := int(id.ID0 & 0x07)
	spacing := int(NormalizeSpacing(id.ID1))

	table[0] = skipReserved(byte(channel))
	for i := 1; i < NumChannels; i++ {
		channel = (channel + spacing) % channelLimit
		table[i] = skipReserved(byte(channel))
	}

	return table
}

func skipReserved(ch byte) byte {
	for _, r := range reservedChannels {
		if ch == r {
			return ch + 1
		}
	}
	return ch
}

// Valid reports whether every slot holds a usable channel.
func (t *HoppingTable) Valid() bool {
	for _, ch := range t {
		if ch >= channelLimit {
			return false
		}
		for _, r := range reservedChannels {
			if ch == r {
				return false
			}
		}
	}
	return true
}

// Channel returns the channel number of a hop slot.
func (t *HoppingTable) Channel(h HopIndex) byte {
	return t[h]
}

// HopIndex selects a slot of the hopping table. It is always below
// NumChannels.
type HopIndex byte

// Advance moves the index forward by skip slots, wrapping at NumChannels.
func (h HopIndex) Advance(skip byte) HopIndex {
	return HopIndex((int(h) + int(skip)) % NumChannels)
}
