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

// Serial register bridge framing. A request is
//
//	0xA5 op len payload... cksum
//
// and the bridge answers with the same layout behind 0x5A. cksum is
// Checksum(op, len, payload). A response op with bit 7 set reports an
// error; its single payload byte is one of the BridgeErr codes.
const (
	BridgeRequestSync  = 0xA5
	BridgeResponseSync = 0x5A

	BridgeOpWriteRegister = 0x01
	BridgeOpReadRegister  = 0x02
	BridgeOpBurstWrite    = 0x03
	BridgeOpBurstRead     = 0x04
	BridgeOpStrobe        = 0x05
	BridgeOpPing          = 0x06

	BridgeErrorFlag = 0x80

	BridgeErrChecksum = 0x01
	BridgeErrUnknown  = 0x02
	BridgeErrLength   = 0x03

	// BridgeHeaderLen counts sync, op and len.
	BridgeHeaderLen = 3
	// BridgeMaxPayload is the largest payload a length byte can carry.
	BridgeMaxPayload = 0xFF
)

// BridgePing is the payload returned by a ping.
var BridgePing = []byte("CC25")

// EncodeBridge builds one bridge frame. Payloads longer than
// BridgeMaxPayload are truncated.
func EncodeBridge(sync, op byte, payload []byte) []byte {
	if len(payload) > BridgeMaxPayload {
		payload = payload[:BridgeMaxPayload]
	}
	out := make([]byte, 0, BridgeHeaderLen+len(payload)+1)
	out = append(out, sync, op, byte(len(payload)))
	out = append(out, payload...)
	return append(out, Checksum(out[1:]))
}

// BridgeFrameLen returns the total frame length announced by a header, or
// 0 if hdr is too short to tell.
func BridgeFrameLen(hdr []byte) int {
	if len(hdr) < BridgeHeaderLen {
		return 0
	}
	return BridgeHeaderLen + int(hdr[2]) + 1
}
