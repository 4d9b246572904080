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

import (
	"context"
	"fmt"
	"sync"
)

// Transport gives register-level access to a CC2500. Addresses are plain
// register numbers; implementations add the read, write and burst flags.
// It can be implemented by SPI or by a serial register bridge.
type Transport interface {
	// WriteRegister writes a single configuration register
	WriteRegister(addr, value byte) error

	// ReadRegister reads a single configuration register
	ReadRegister(addr byte) (byte, error)

	// BurstWrite writes consecutive registers, the PA table or the TX FIFO
	BurstWrite(addr byte, data []byte) error

	// BurstRead reads n bytes with the burst flag set. Status registers and
	// the RX FIFO are read this way.
	BurstRead(addr byte, n int) ([]byte, error)

	// Strobe issues a command strobe and returns the chip status byte
	Strobe(cmd byte) (byte, error)

	// Close closes the transport connection
	Close() error
}

// TransportWithRetry wraps a Transport and retries transient failures
type TransportWithRetry struct {
	transport Transport
	config    *RetryConfig
}

// NewTransportWithRetry creates a new transport wrapper with retry logic
func NewTransportWithRetry(transport Transport, config *RetryConfig) *TransportWithRetry {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &TransportWithRetry{
		transport: transport,
		config:    config,
	}
}

func (t *TransportWithRetry) do(op string, fn func() error) error {
	return RetryWithConfig(context.Background(), t.config, func() error {
		err := fn()
		if err == nil {
			return nil
		}
		Debugf("%s failed: %v", op, err)
		return err
	})
}

// WriteRegister implements Transport with retries
func (t *TransportWithRetry) WriteRegister(addr, value byte) error {
	return t.do("WriteRegister", func() error {
		return t.transport.WriteRegister(addr, value)
	})
}

// ReadRegister implements Transport with retries
func (t *TransportWithRetry) ReadRegister(addr byte) (byte, error) {
	var value byte
	err := t.do("ReadRegister", func() error {
		var err error
		value, err = t.transport.ReadRegister(addr)
		return err
	})
	return value, err
}

// BurstWrite implements Transport with retries
func (t *TransportWithRetry) BurstWrite(addr byte, data []byte) error {
	return t.do("BurstWrite", func() error {
		return t.transport.BurstWrite(addr, data)
	})
}

// BurstRead implements Transport with retries
func (t *TransportWithRetry) BurstRead(addr byte, n int) ([]byte, error) {
	var data []byte
	err := t.do("BurstRead", func() error {
		var err error
		data, err = t.transport.BurstRead(addr, n)
		return err
	})
	return data, err
}

// Strobe implements Transport with retries
func (t *TransportWithRetry) Strobe(cmd byte) (byte, error) {
	var status byte
	err := t.do("Strobe", func() error {
		var err error
		status, err = t.transport.Strobe(cmd)
		return err
	})
	return status, err
}

// Close closes the transport connection
func (t *TransportWithRetry) Close() error {
	if err := t.transport.Close(); err != nil {
		return fmt.Errorf("failed to close underlying transport: %w", err)
	}
	return nil
}

// MockOp is one recorded MockTransport call.
type MockOp struct {
	Kind string // "write", "read", "burst-write", "burst-read" or "strobe"
	Data []byte
	Addr byte
}

// MockTransport is an in-memory register file for testing. Writes land in
// the register map, strobes return a configurable status byte and every
// call is recorded in order.
type MockTransport struct {
	registers map[byte]byte
	status    map[byte]byte
	errorMap  map[string]error
	ops       []MockOp
	fifo      []byte
	mu        sync.RWMutex
	strobe    byte
	closed    bool
}

// NewMockTransport creates a mock transport reporting a CC2500 identity
func NewMockTransport() *MockTransport {
	m := &MockTransport{
		registers: make(map[byte]byte),
		status:    make(map[byte]byte),
		errorMap:  make(map[string]error),
	}
	m.status[RegPARTNUM] = ExpectedPartNum
	m.status[RegVERSION] = ExpectedVersion
	m.registers[RegFREQ1] = resetFREQ1
	return m
}

func (m *MockTransport) record(kind string, addr byte, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrTransportClosed
	}
	m.ops = append(m.ops, MockOp{Kind: kind, Addr: addr, Data: append([]byte(nil), data...)})
	if err, ok := m.errorMap[kind]; ok {
		return err
	}
	return nil
}

// WriteRegister implements Transport
func (m *MockTransport) WriteRegister(addr, value byte) error {
	if err := m.record("write", addr, []byte{value}); err != nil {
		return err
	}
	m.mu.Lock()
	m.registers[addr] = value
	m.mu.Unlock()
	return nil
}

// ReadRegister implements Transport
func (m *MockTransport) ReadRegister(addr byte) (byte, error) {
	if err := m.record("read", addr, nil); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registers[addr], nil
}

// BurstWrite implements Transport
func (m *MockTransport) BurstWrite(addr byte, data []byte) error {
	if err := m.record("burst-write", addr, data); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch addr {
	case RegFIFO:
		m.fifo = append(m.fifo, data...)
	default:
		for i, b := range data {
			m.registers[addr+byte(i)] = b
		}
	}
	return nil
}

// BurstRead implements Transport
func (m *MockTransport) BurstRead(addr byte, n int) ([]byte, error) {
	if err := m.record("burst-read", addr, nil); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]byte, n)
	for i := range out {
		reg := addr + byte(i)
		if IsStatusRegister(reg) {
			out[i] = m.status[reg]
		} else {
			out[i] = m.registers[reg]
		}
	}
	return out, nil
}

// Strobe implements Transport
func (m *MockTransport) Strobe(cmd byte) (byte, error) {
	if err := m.record("strobe", cmd, nil); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cmd == StrobeSFTX {
		m.fifo = nil
	}
	return m.strobe, nil
}

// Close implements Transport
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Test helper methods

// SetRegister presets a configuration register
func (m *MockTransport) SetRegister(addr, value byte) {
	m.mu.Lock()
	m.registers[addr] = value
	m.mu.Unlock()
}

// Register returns the last value written to a configuration register
func (m *MockTransport) Register(addr byte) byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registers[addr]
}

// SetStatusRegister presets a read-only status register
func (m *MockTransport) SetStatusRegister(addr, value byte) {
	m.mu.Lock()
	m.status[addr] = value
	m.mu.Unlock()
}

// SetStrobeStatus sets the status byte returned by every strobe
func (m *MockTransport) SetStrobeStatus(status byte) {
	m.mu.Lock()
	m.strobe = status
	m.mu.Unlock()
}

// SetError injects an error for every call of the given kind
func (m *MockTransport) SetError(kind string, err error) {
	m.mu.Lock()
	m.errorMap[kind] = err
	m.mu.Unlock()
}

// ClearError removes error injection for a call kind
func (m *MockTransport) ClearError(kind string) {
	m.mu.Lock()
	delete(m.errorMap, kind)
	m.mu.Unlock()
}

// Ops returns a copy of the recorded calls
func (m *MockTransport) Ops() []MockOp {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]MockOp(nil), m.ops...)
}

// Strobes returns the recorded strobe commands in order
func (m *MockTransport) Strobes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []byte
	for _, op := range m.ops {
		if op.Kind == "strobe" {
			out = append(out, op.Addr)
		}
	}
	return out
}

// FIFO returns the bytes written to the TX FIFO since the last SFTX
func (m *MockTransport) FIFO() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.fifo...)
}

// Reset clears the call log and reopens the transport
func (m *MockTransport) Reset() {
	m.mu.Lock()
	m.ops = nil
	m.fifo = nil
	m.closed = false
	m.mu.Unlock()
}
