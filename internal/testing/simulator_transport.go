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
	"errors"
	"fmt"
	"sync"
)

// ErrTransportClosed is returned after Close.
var ErrTransportClosed = errors.New("simulator transport closed")

// SimulatorTransport drives a VirtualCC2500 through register operations.
// It has the method set of cc2500.Transport so the device driver and link
// sequencer can run against the simulator without importing each other.
type SimulatorTransport struct {
	sim      *VirtualCC2500
	failures map[byte]error
	mu       sync.Mutex
	closed   bool
}

// NewSimulatorTransport creates a new transport backed by sim
func NewSimulatorTransport(sim *VirtualCC2500) *SimulatorTransport {
	return &SimulatorTransport{
		sim:      sim,
		failures: make(map[byte]error),
	}
}

// FailOn makes every transaction whose header addresses addr return err.
// A nil err clears the failure.
func (t *SimulatorTransport) FailOn(addr byte, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err == nil {
		delete(t.failures, addr)
		return
	}
	t.failures[addr] = err
}

func (t *SimulatorTransport) tx(w []byte) ([]byte, error) {
	t.mu.Lock()
	closed := t.closed
	failure := t.failures[w[0]&addrMask]
	t.mu.Unlock()

	if closed {
		return nil, ErrTransportClosed
	}
	if failure != nil {
		return nil, failure
	}

	r := make([]byte, len(w))
	if err := t.sim.Tx(w, r); err != nil {
		return nil, fmt.Errorf("simulator transaction: %w", err)
	}
	return r, nil
}

// WriteRegister writes a single register
func (t *SimulatorTransport) WriteRegister(addr, value byte) error {
	_, err := t.tx([]byte{addr, value})
	return err
}

// ReadRegister reads a single register
func (t *SimulatorTransport) ReadRegister(addr byte) (byte, error) {
	r, err := t.tx([]byte{addr | hdrRead, 0})
	if err != nil {
		return 0, err
	}
	return r[1], nil
}

// BurstWrite writes data starting at addr
func (t *SimulatorTransport) BurstWrite(addr byte, data []byte) error {
	w := make([]byte, 0, len(data)+1)
	w = append(w, addr|hdrBurst)
	w = append(w, data...)
	_, err := t.tx(w)
	return err
}

// BurstRead reads n bytes starting at addr
func (t *SimulatorTransport) BurstRead(addr byte, n int) ([]byte, error) {
	w := make([]byte, n+1)
	w[0] = addr | hdrRead | hdrBurst
	r, err := t.tx(w)
	if err != nil {
		return nil, err
	}
	return r[1:], nil
}

// Strobe issues a command strobe and returns the status byte
func (t *SimulatorTransport) Strobe(cmd byte) (byte, error) {
	r, err := t.tx([]byte{cmd})
	if err != nil {
		return 0, err
	}
	return r[0], nil
}

// Close closes the transport
func (t *SimulatorTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}
