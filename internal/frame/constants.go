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

package frame

// Frame geometry. Bind and normal frames share the same on-air size so the
// receiver can run with a fixed packet length.
const (
	Length       = 30         // Total bytes handed to the TX FIFO
	LengthByte   = Length - 1 // Value of byte 0 (bytes that follow it)
	crcStart     = 3          // First byte covered by the CRC
	crcEnd       = Length - 2 // One past the last byte covered by the CRC
	crcHighIndex = Length - 2
	crcLowIndex  = Length - 1
)

// Bind frame layout
const (
	bindMarkerIndex   = 1
	bindVersionIndex  = 2
	bindID0Index      = 3
	bindID1Index      = 4
	bindCursorIndex   = 5
	bindHopsIndex     = 6
	bindTypeIndex     = 11
	bindReceiverIndex = 12

	BindProtocolMarker = 0x03
	BindVersion        = 0x01
	BindFrameType      = 0x02

	// BindHopsPerFrame is the number of hopping table entries advertised per
	// bind frame.
	BindHopsPerFrame = 5
	// BindCursorWrap is where the cursor returns to zero. It is larger than
	// the 47 entry table so the last frame of a cycle carries zero padding.
	BindCursorWrap = 50
)

// Normal frame layout
const (
	normalID0Index      = 1
	normalID1Index      = 2
	normalMarkerIndex   = 3
	normalHopIndex      = 4
	normalSkipIndex     = 5
	normalReceiverIndex = 6
	normalTypeIndex     = 7
	normalChannelsIndex = 9

	NormalMarker    = 0x02
	NormalFrameType = 0x00

	// Channels is the number of analog channels carried by a normal frame.
	Channels = 8
	// ChannelMask keeps the 12 bits that fit in the packed encoding.
	ChannelMask = 0x0FFF
)
