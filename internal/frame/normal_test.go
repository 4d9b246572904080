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

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPackChannelPairLayout(t *testing.T) {
	t.Parallel()

	packed := PackChannelPair(0xABC, 0x123)
	assert.Equal(t, [3]byte{0xBC, 0x3A, 0x12}, packed)

	a, b := UnpackChannelPair(packed)
	assert.Equal(t, uint16(0xABC), a)
	assert.Equal(t, uint16(0x123), b)
}

func TestPackChannelPairTruncates(t *testing.T) {
	t.Parallel()

	a, b := UnpackChannelPair(PackChannelPair(0xFABC, 0x7123))
	assert.Equal(t, uint16(0xABC), a)
	assert.Equal(t, uint16(0x123), b)
}

func TestPackChannelPairRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Uint16Range(0, ChannelMask).Draw(t, "a")
		b := rapid.Uint16Range(0, ChannelMask).Draw(t, "b")
		gotA, gotB := UnpackChannelPair(PackChannelPair(a, b))
		if gotA != a || gotB != b {
			t.Fatalf("round trip (%03X, %03X) -> (%03X, %03X)", a, b, gotA, gotB)
		}
	})
}

func TestBuildNormalKnownFrame(t *testing.T) {
	t.Parallel()
	f := BuildNormal(NormalParams{
		ID0:      15,
		ID1:      20,
		ChanSkip: 1,
		Values:   [Channels]uint16{1000, 1100, 1200, 1300, 1400, 1500, 1600, 1700},
	})

	want, err := hex.DecodeString("1d0f14024000000000e8c344b0445178c55d40466a00000000000000ba99")
	require.NoError(t, err)
	assert.Equal(t, want, f.Bytes())
	assert.False(t, f.IsBind())
}

func TestBuildNormalHopMetadata(t *testing.T) {
	t.Parallel()
	f := BuildNormal(NormalParams{Hop: 46, ChanSkip: 0x35, ReceiverID: 7})

	hop, skip := HopOf(&f)
	assert.Equal(t, byte(46), hop)
	assert.Equal(t, byte(0x35), skip)
	assert.Equal(t, byte(7), f[normalReceiverIndex])
	assert.Equal(t, byte(NormalFrameType), f[normalTypeIndex])
}

func TestFrameShape(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		var values [Channels]uint16
		for i := range values {
			values[i] = rapid.Uint16().Draw(t, "value")
		}
		frames := []Frame{
			BuildNormal(NormalParams{
				ID0:      rapid.Byte().Draw(t, "id0"),
				ID1:      rapid.Byte().Draw(t, "id1"),
				Hop:      rapid.ByteRange(0, 46).Draw(t, "hop"),
				ChanSkip: rapid.Byte().Draw(t, "skip"),
				Values:   values,
			}),
			BuildBind(BindParams{
				ID0:    rapid.Byte().Draw(t, "id0"),
				ID1:    rapid.Byte().Draw(t, "id1"),
				Hops:   rapid.SliceOfN(rapid.Byte(), 47, 47).Draw(t, "hops"),
				Cursor: BindCursor(rapid.IntRange(0, 9).Draw(t, "step") * BindHopsPerFrame),
			}),
		}

		for _, f := range frames {
			if len(f.Bytes()) != Length || f[0] != LengthByte {
				t.Fatalf("bad frame length in % X", f.Bytes())
			}
			if want := CRC16(f[3:28]); f.Checksum() != want {
				t.Fatalf("trailer %04X, want %04X", f.Checksum(), want)
			}

			// Any single-byte change inside the covered range changes the CRC.
			idx := rapid.IntRange(3, 27).Draw(t, "idx")
			flip := rapid.ByteRange(1, 0xFF).Draw(t, "flip")
			changed := f
			changed[idx] ^= flip
			if CRC16(changed[3:28]) == f.Checksum() {
				t.Fatalf("changing byte %d did not change the CRC", idx)
			}
			if changed.Valid() {
				t.Fatalf("corrupted frame still valid")
			}
		}
	})
}

func TestChannelsOfRoundTrip(t *testing.T) {
	t.Parallel()
	values := [Channels]uint16{0, 0xFFF, 0x800, 0x123, 0xABC, 1, 2, 3}
	f := BuildNormal(NormalParams{Values: values})
	assert.Equal(t, values, ChannelsOf(&f))
}
