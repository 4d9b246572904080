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

// NormalParams holds the inputs of a normal (control data) frame.
type NormalParams struct {
	Values     [Channels]uint16
	ID0        byte
	ID1        byte
	Hop        byte
	ChanSkip   byte
	ReceiverID byte
}

// BuildNormal encodes a normal frame. Channel values wider than 12 bits are
// truncated by the packing.
func BuildNormal(p NormalParams) Frame {
	var f Frame

	f[normalID0Index] = p.ID0
	f[normalID1Index] = p.ID1
	f[normalMarkerIndex] = NormalMarker
	f[normalHopIndex] = p.ChanSkip<<6 | p.Hop
	f[normalSkipIndex] = p.ChanSkip >> 2
	f[normalReceiverIndex] = p.ReceiverID
	f[normalTypeIndex] = NormalFrameType

	ofs := normalChannelsIndex
	for i := 0; i < Channels; i += 2 {
		packed := PackChannelPair(p.Values[i], p.Values[i+1])
		copy(f[ofs:ofs+3], packed[:])
		ofs += 3
	}

	f.seal()
	return f
}

// PackChannelPair packs two 12 bit values into three bytes:
//
//	b0 = a[7:0]
//	b1 = b[3:0]<<4 | a[11:8]
//	b2 = b[11:4]
func PackChannelPair(a, b uint16) [3]byte {
	return [3]byte{
		byte(a),
		byte(a>>8)&0x0F | byte(b<<4),
		byte(b >> 4),
	}
}

// UnpackChannelPair reverses PackChannelPair.
func UnpackChannelPair(p [3]byte) (a, b uint16) {
	a = uint16(p[0]) | uint16(p[1]&0x0F)<<8
	b = uint16(p[1])>>4 | uint16(p[2])<<4
	return a, b
}

// ChannelsOf decodes the channel values of a normal frame.
func ChannelsOf(f *Frame) [Channels]uint16 {
	var values [Channels]uint16
	ofs := normalChannelsIndex
	for i := 0; i < Channels; i += 2 {
		values[i], values[i+1] = UnpackChannelPair([3]byte{f[ofs], f[ofs+1], f[ofs+2]})
		ofs += 3
	}
	return values
}

// HopOf returns the hop index and channel skip carried by a normal frame.
func HopOf(f *Frame) (hop, chanSkip byte) {
	return f[normalHopIndex] & 0x3F, f[normalHopIndex]>>6 | f[normalSkipIndex]<<2
}
