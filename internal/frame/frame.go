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

import "encoding/binary"

// Frame is one on-air packet, length byte included.
type Frame [Length]byte

// Bytes returns the frame as a slice for FIFO writes.
func (f *Frame) Bytes() []byte {
	return f[:]
}

// Checksum returns the CRC trailer stored in the frame.
func (f *Frame) Checksum() uint16 {
	return binary.BigEndian.Uint16(f[crcHighIndex:])
}

// Valid reports whether the trailer matches the covered bytes.
func (f *Frame) Valid() bool {
	return f.Checksum() == CRC16(f[crcStart:crcEnd])
}

// IsBind reports whether the frame carries the bind layout.
func (f *Frame) IsBind() bool {
	return f[bindMarkerIndex] == BindProtocolMarker &&
		f[bindVersionIndex] == BindVersion &&
		f[bindTypeIndex] == BindFrameType
}

// seal writes the length byte and CRC trailer.
func (f *Frame) seal() {
	f[0] = LengthByte
	binary.BigEndian.PutUint16(f[crcHighIndex:], CRC16(f[crcStart:crcEnd]))
}
