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

// Package spi provides the SPI transport for a CC2500
package spi

import (
	"fmt"

	"github.com/ZaparooProject/go-cc2500"
	"github.com/ZaparooProject/go-cc2500/internal/syncutil"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// DefaultFrequency is the SPI clock used when none is given.
	// The chip accepts up to 10 MHz for burst access.
	DefaultFrequency = 5 * physic.MegaHertz

	mode = spi.Mode0
	bits = 8

	// maxBurst is the largest burst the chip FIFOs can take.
	maxBurst = 64
)

// Transport implements the cc2500.Transport interface over SPI
type Transport struct {
	port     spi.PortCloser
	conn     spi.Conn
	portName string
	mu       syncutil.Mutex
	closed   bool
}

// New opens an SPI port by name ("" selects the first available) and
// connects at freq (0 selects DefaultFrequency).
func New(portName string, freq physic.Frequency) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	return open(portName, freq)
}

func open(portName string, freq physic.Frequency) (*Transport, error) {
	if freq == 0 {
		freq = DefaultFrequency
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %s: %w", portName, err)
	}

	conn, err := port.Connect(freq, mode, bits)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to connect SPI: %w", err)
	}

	name := portName
	if name == "" {
		name = port.String()
	}
	return &Transport{port: port, conn: conn, portName: name}, nil
}

// NewFromConn wraps an already connected SPI device. Close does not close
// the underlying port.
func NewFromConn(conn spi.Conn) *Transport {
	return &Transport{conn: conn, portName: conn.String()}
}

// tx runs one chip-select framed transaction and returns what was clocked in.
func (t *Transport) tx(op string, w []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, cc2500.ErrTransportClosed
	}

	r := make([]byte, len(w))
	if err := t.conn.Tx(w, r); err != nil {
		return nil, cc2500.NewTransportWriteError(op, t.portName, err)
	}
	return r, nil
}

func checkAddress(addr byte) error {
	if addr&^cc2500.AddressMask != 0 {
		return fmt.Errorf("%w: register address 0x%02X", cc2500.ErrInvalidParameter, addr)
	}
	return nil
}

func checkBurst(n int) error {
	if n <= 0 || n > maxBurst {
		return fmt.Errorf("%w: burst length %d", cc2500.ErrInvalidParameter, n)
	}
	return nil
}

// WriteRegister writes a single register
func (t *Transport) WriteRegister(addr, value byte) error {
	if err := checkAddress(addr); err != nil {
		return err
	}
	_, err := t.tx("WriteRegister", []byte{addr | cc2500.FlagWriteSingle, value})
	return err
}

// ReadRegister reads a single register
func (t *Transport) ReadRegister(addr byte) (byte, error) {
	if err := checkAddress(addr); err != nil {
		return 0, err
	}
	r, err := t.tx("ReadRegister", []byte{addr | cc2500.FlagReadSingle, 0})
	if err != nil {
		return 0, err
	}
	return r[1], nil
}

// BurstWrite writes data starting at addr
func (t *Transport) BurstWrite(addr byte, data []byte) error {
	if err := checkAddress(addr); err != nil {
		return err
	}
	if err := checkBurst(len(data)); err != nil {
		return err
	}
	w := make([]byte, 1+len(data))
	w[0] = addr | cc2500.FlagWriteBurst
	copy(w[1:], data)
	_, err := t.tx("BurstWrite", w)
	return err
}

// BurstRead reads n bytes starting at addr. Status registers are read
// through this call.
func (t *Transport) BurstRead(addr byte, n int) ([]byte, error) {
	if err := checkAddress(addr); err != nil {
		return nil, err
	}
	if err := checkBurst(n); err != nil {
		return nil, err
	}
	w := make([]byte, 1+n)
	w[0] = addr | cc2500.FlagReadBurst
	r, err := t.tx("BurstRead", w)
	if err != nil {
		return nil, err
	}
	return r[1:], nil
}

// Strobe issues a command strobe and returns the chip status byte
func (t *Transport) Strobe(cmd byte) (byte, error) {
	if !cc2500.IsStrobe(cmd) {
		return 0, fmt.Errorf("%w: strobe 0x%02X", cc2500.ErrInvalidParameter, cmd)
	}
	r, err := t.tx("Strobe", []byte{cmd})
	if err != nil {
		return 0, err
	}
	return r[0], nil
}

// Close closes the SPI port if the transport opened it
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.port != nil {
		if err := t.port.Close(); err != nil {
			return fmt.Errorf("SPI close failed: %w", err)
		}
	}
	return nil
}

// String returns the port name
func (t *Transport) String() string {
	return t.portName
}
