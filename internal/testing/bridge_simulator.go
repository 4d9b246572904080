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

package testing

import (
	"bytes"

	"github.com/ZaparooProject/go-cc2500/internal/frame"
	"github.com/ZaparooProject/go-cc2500/internal/syncutil"
)

// VirtualBridge simulates the serial register bridge firmware in front of a
// VirtualCC2500. It implements io.ReadWriter: requests written to it are
// decoded and answered, and Read drains the queued responses. Read returns
// 0, nil when nothing is queued, like a serial port read timeout.
type VirtualBridge struct {
	sim      *VirtualCC2500
	inbound  bytes.Buffer
	outbound bytes.Buffer
	requests []byte
	mu       syncutil.Mutex
	corrupt  int
	silent   bool
}

// NewVirtualBridge creates a bridge in front of sim
func NewVirtualBridge(sim *VirtualCC2500) *VirtualBridge {
	return &VirtualBridge{sim: sim}
}

// CorruptNext flips a bit in the checksum of the next n responses.
func (b *VirtualBridge) CorruptNext(n int) {
	b.mu.Lock()
	b.corrupt = n
	b.mu.Unlock()
}

// SetSilent drops all requests without answering.
func (b *VirtualBridge) SetSilent(silent bool) {
	b.mu.Lock()
	b.silent = silent
	b.mu.Unlock()
}

// Requests returns the ops of the requests handled so far.
func (b *VirtualBridge) Requests() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.requests...)
}

// Write accepts request bytes, answering every complete request.
func (b *VirtualBridge) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.inbound.Write(p)
	for b.next() {
	}
	return len(p), nil
}

// next handles one complete request from the inbound buffer and reports
// whether it consumed anything.
func (b *VirtualBridge) next() bool {
	data := b.inbound.Bytes()
	start := bytes.IndexByte(data, frame.BridgeRequestSync)
	if start < 0 {
		b.inbound.Reset()
		return false
	}
	data = data[start:]
	n := frame.BridgeFrameLen(data)
	if n == 0 || len(data) < n {
		return false
	}

	req := append([]byte(nil), data[:n]...)
	b.inbound.Next(start + n)

	if b.silent {
		return true
	}

	op := req[1]
	b.requests = append(b.requests, op)
	if !frame.ChecksumValid(req[1:]) {
		b.respond(op|frame.BridgeErrorFlag, []byte{frame.BridgeErrChecksum})
		return true
	}

	payload := req[frame.BridgeHeaderLen : n-1]
	resp, errCode := b.handle(op, payload)
	if errCode != 0 {
		b.respond(op|frame.BridgeErrorFlag, []byte{errCode})
		return true
	}
	b.respond(op, resp)
	return true
}

func (b *VirtualBridge) handle(op byte, payload []byte) ([]byte, byte) {
	r := make([]byte, 2)
	switch op {
	case frame.BridgeOpWriteRegister:
		if len(payload) != 2 {
			return nil, frame.BridgeErrLength
		}
		_ = b.sim.Tx([]byte{payload[0] & addrMask, payload[1]}, r)
		return r[:1], 0
	case frame.BridgeOpReadRegister:
		if len(payload) != 1 {
			return nil, frame.BridgeErrLength
		}
		_ = b.sim.Tx([]byte{payload[0]&addrMask | hdrRead, 0}, r)
		return r[1:2], 0
	case frame.BridgeOpBurstWrite:
		if len(payload) < 2 {
			return nil, frame.BridgeErrLength
		}
		w := append([]byte{payload[0]&addrMask | hdrBurst}, payload[1:]...)
		r = make([]byte, len(w))
		_ = b.sim.Tx(w, r)
		return r[:1], 0
	case frame.BridgeOpBurstRead:
		if len(payload) != 2 || payload[1] == 0 {
			return nil, frame.BridgeErrLength
		}
		w := make([]byte, int(payload[1])+1)
		w[0] = payload[0]&addrMask | hdrRead | hdrBurst
		r = make([]byte, len(w))
		_ = b.sim.Tx(w, r)
		return r[1:], 0
	case frame.BridgeOpStrobe:
		if len(payload) != 1 {
			return nil, frame.BridgeErrLength
		}
		_ = b.sim.Tx([]byte{payload[0] & addrMask}, r)
		return r[:1], 0
	case frame.BridgeOpPing:
		return frame.BridgePing, 0
	default:
		return nil, frame.BridgeErrUnknown
	}
}

func (b *VirtualBridge) respond(op byte, payload []byte) {
	resp := frame.EncodeBridge(frame.BridgeResponseSync, op, payload)
	if b.corrupt > 0 {
		b.corrupt--
		resp[len(resp)-1] ^= 0x01
	}
	b.outbound.Write(resp)
}

// Read drains queued responses.
func (b *VirtualBridge) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.outbound.Len() == 0 {
		return 0, nil
	}
	return b.outbound.Read(p) //nolint:wrapcheck // bytes.Buffer only fails when empty
}
