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

// Package input provides channel value sources for the link sequencer.
package input

// Channels is the number of control channels carried per frame.
const Channels = 8

// MaxValue is the largest value a 12 bit channel can carry.
const MaxValue = 0x0FFF

// Static returns fixed channel values.
type Static [Channels]uint16

// Centered returns a Static source with every channel at mid scale.
func Centered() Static {
	var s Static
	for i := range s {
		s[i] = (MaxValue + 1) / 2
	}
	return s
}

// ChannelValue returns the value for channel i, or 0 when i is out of range.
func (s Static) ChannelValue(i int) uint16 {
	if i < 0 || i >= Channels {
		return 0
	}
	return s[i]
}
