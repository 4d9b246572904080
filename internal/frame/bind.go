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

// BindCursor is the hopping table offset advertised by the next bind frame.
type BindCursor byte

// Next returns the cursor for the following bind frame.
func (c BindCursor) Next() BindCursor {
	n := int(c) + BindHopsPerFrame
	if n >= BindCursorWrap {
		n -= BindCursorWrap
	}
	return BindCursor(n)
}

// BindParams holds the inputs of a bind frame.
type BindParams struct {
	Hops       []byte
	ID0        byte
	ID1        byte
	Cursor     BindCursor
	ReceiverID byte
}

// BuildBind encodes a bind frame advertising Hops[Cursor:Cursor+5]. Entries
// past the end of Hops are sent as zero.
func BuildBind(p BindParams) Frame {
	var f Frame

	f[bindMarkerIndex] = BindProtocolMarker
	f[bindVersionIndex] = BindVersion
	f[bindID0Index] = p.ID0
	f[bindID1Index] = p.ID1
	f[bindCursorIndex] = byte(p.Cursor)
	for i := range BindHopsPerFrame {
		idx := int(p.Cursor) + i
		if idx < len(p.Hops) {
			f[bindHopsIndex+i] = p.Hops[idx]
		}
	}
	f[bindTypeIndex] = BindFrameType
	f[bindReceiverIndex] = p.ReceiverID

	f.seal()
	return f
}

// BindCursorOf returns the cursor carried by a bind frame.
func BindCursorOf(f *Frame) BindCursor {
	return BindCursor(f[bindCursorIndex])
}

// BindHopsOf returns the hopping table entries carried by a bind frame.
func BindHopsOf(f *Frame) [BindHopsPerFrame]byte {
	var hops [BindHopsPerFrame]byte
	copy(hops[:], f[bindHopsIndex:bindHopsIndex+BindHopsPerFrame])
	return hops
}
