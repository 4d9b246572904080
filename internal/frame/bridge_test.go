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
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestEncodeBridge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		op      byte
		payload []byte
		want    []byte
	}{
		{name: "ping", op: BridgeOpPing, want: []byte{0xA5, 0x06, 0x00, 0xFA}},
		{name: "write register", op: BridgeOpWriteRegister, payload: []byte{0x0A, 0x21}, want: []byte{0xA5, 0x01, 0x02, 0x0A, 0x21, 0xD2}},
		{name: "strobe", op: BridgeOpStrobe, payload: []byte{0x36}, want: []byte{0xA5, 0x05, 0x01, 0x36, 0xC4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := EncodeBridge(BridgeRequestSync, tt.op, tt.payload)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(got), BridgeFrameLen(got))
			assert.True(t, ChecksumValid(got[1:]))
		})
	}
}

func TestEncodeBridgeTruncates(t *testing.T) {
	t.Parallel()
	got := EncodeBridge(BridgeResponseSync, BridgeOpBurstRead, make([]byte, 300))
	assert.Len(t, got, BridgeHeaderLen+BridgeMaxPayload+1)
	assert.Equal(t, byte(BridgeMaxPayload), got[2])
}

func TestBridgeFrameLenShort(t *testing.T) {
	t.Parallel()
	assert.Zero(t, BridgeFrameLen(nil))
	assert.Zero(t, BridgeFrameLen([]byte{0xA5, 0x01}))
	assert.Equal(t, 9, BridgeFrameLen([]byte{0x5A, 0x04, 0x05}))
}

func TestChecksumProperty(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOf(rapid.Byte()).Draw(t, "data")
		sum := Checksum(data)
		if !ChecksumValid(append(data, sum)) {
			t.Fatalf("checksum %#02x does not cancel % x", sum, data)
		}
		if len(data) > 0 && ChecksumValid(append(data, sum+1)) {
			t.Fatalf("off-by-one checksum accepted for % x", data)
		}
	})
}
