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

// Package uart provides a transport that reaches a CC2500 through a serial
// register bridge.
package uart

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/ZaparooProject/go-cc2500"
	"github.com/ZaparooProject/go-cc2500/internal/frame"
	"github.com/ZaparooProject/go-cc2500/internal/syncutil"
	"go.bug.st/serial"
)

// DefaultBaudRate is the bridge's serial speed.
const DefaultBaudRate = 115200

// maxBurst is the largest burst the chip FIFOs can take.
const maxBurst = 64

// Transport implements the cc2500.Transport interface over a serial bridge.
type Transport struct {
	port     serial.Port
	portName string
	rx       []byte
	timeout  time.Duration
	mu       syncutil.Mutex
	closed   bool
}

// isWindows returns true if running on Windows
func isWindows() bool {
	return runtime.GOOS == "windows"
}

// defaultTimeout returns the response timeout for this platform
func defaultTimeout() time.Duration {
	if isWindows() {
		return 100 * time.Millisecond
	}
	return 50 * time.Millisecond
}

// New opens the serial port of a register bridge.
func New(portName string) (*Transport, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open UART port %s: %w", portName, err)
	}

	t, err := NewFromPort(port, portName)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return t, nil
}

// NewFromPort wraps an open serial port.
func NewFromPort(port serial.Port, portName string) (*Transport, error) {
	t := &Transport{
		port:     port,
		portName: portName,
	}
	if err := t.SetTimeout(defaultTimeout()); err != nil {
		return nil, err
	}
	return t, nil
}

// SetTimeout sets how long a request waits for its response.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: timeout %v", cc2500.ErrInvalidParameter, timeout)
	}
	// reads wake up at least four times per response window
	if err := t.port.SetReadTimeout(timeout / 4); err != nil {
		return fmt.Errorf("failed to set UART read timeout: %w", err)
	}
	t.timeout = timeout
	return nil
}

// isInterruptedSystemCall checks if an error is caused by an interrupted system call
func isInterruptedSystemCall(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "interrupted system call") ||
		strings.Contains(errStr, "eintr")
}

// drainWithRetry performs port drain with retry logic for interrupted system calls
func (t *Transport) drainWithRetry(op string) error {
	const maxRetries = 3
	baseDelay := 2 * time.Millisecond

	for attempt := range maxRetries {
		err := t.port.Drain()
		if err == nil {
			return nil
		}
		if !isInterruptedSystemCall(err) || attempt == maxRetries-1 {
			return cc2500.NewTransportWriteError(op, t.portName, fmt.Errorf("drain: %w", err))
		}
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return nil
}

// request sends one bridge request and returns the response payload.
func (t *Transport) request(name string, op byte, payload []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, cc2500.ErrTransportClosed
	}

	// a late response to an abandoned request must not answer this one
	t.rx = t.rx[:0]
	if err := t.port.ResetInputBuffer(); err != nil {
		cc2500.Debugf("UART %s: reset input buffer: %v", t.portName, err)
	}

	req := frame.EncodeBridge(frame.BridgeRequestSync, op, payload)
	n, err := t.port.Write(req)
	if err != nil {
		return nil, t.ioError(name, cc2500.ErrTransportWrite, err)
	}
	if n != len(req) {
		return nil, cc2500.NewTransportWriteError(name, t.portName,
			fmt.Errorf("short write: %d of %d bytes", n, len(req)))
	}
	if err := t.drainWithRetry(name); err != nil {
		return nil, err
	}

	return t.readResponse(name, op)
}

// readResponse reads until a complete response to op arrives or the
// timeout passes. Responses to other ops are skipped, and so is a frame
// with a bad checksum: its sync byte is dropped and scanning resumes.
func (t *Transport) readResponse(name string, op byte) ([]byte, error) {
	deadline := time.Now().Add(t.timeout)
	buf := make([]byte, 64)
	corrupted := false

	for {
		for {
			resp, consumed, bad := nextFrame(t.rx)
			t.rx = t.rx[consumed:]
			corrupted = corrupted || bad
			if resp == nil {
				break
			}
			payload := resp[frame.BridgeHeaderLen : len(resp)-1]
			switch resp[1] {
			case op:
				return append([]byte(nil), payload...), nil
			case op | frame.BridgeErrorFlag:
				return nil, t.bridgeError(name, payload)
			default:
				cc2500.Debugf("UART %s: skipping response to op 0x%02X", t.portName, resp[1])
			}
		}

		if !time.Now().Before(deadline) {
			if corrupted {
				return nil, cc2500.NewChecksumMismatchError(name, t.portName)
			}
			return nil, cc2500.NewTimeoutError(name, t.portName)
		}
		n, err := t.port.Read(buf)
		if err != nil {
			return nil, t.ioError(name, cc2500.ErrTransportRead, err)
		}
		t.rx = append(t.rx, buf[:n]...)
	}
}

// nextFrame finds the first complete response frame in rx whose checksum
// holds. It returns the frame, or nil if none is complete yet, how many
// bytes to drop, and whether a frame with a bad checksum was passed over.
// Bytes from the earliest incomplete candidate on are kept.
func nextFrame(rx []byte) (resp []byte, consumed int, corrupted bool) {
	keep := -1
	for off := 0; off < len(rx); {
		i := bytes.IndexByte(rx[off:], frame.BridgeResponseSync)
		if i < 0 {
			break
		}
		start := off + i
		n := frame.BridgeFrameLen(rx[start:])
		switch {
		case n == 0 || len(rx)-start < n:
			if keep < 0 {
				keep = start
			}
		case frame.ChecksumValid(rx[start+1 : start+n]):
			return rx[start : start+n], start + n, corrupted
		default:
			corrupted = true
		}
		off = start + 1
	}
	if keep >= 0 {
		return nil, keep, corrupted
	}
	return nil, len(rx), corrupted
}

func (t *Transport) bridgeError(name string, payload []byte) error {
	if len(payload) != 1 {
		return cc2500.NewBridgeError(name, t.portName, "malformed error response", cc2500.ErrorTypeTransient)
	}
	switch payload[0] {
	case frame.BridgeErrChecksum:
		return cc2500.NewBridgeError(name, t.portName, "bridge saw a corrupted request", cc2500.ErrorTypeTransient)
	case frame.BridgeErrUnknown:
		return cc2500.NewBridgeError(name, t.portName, "bridge does not support the request", cc2500.ErrorTypePermanent)
	case frame.BridgeErrLength:
		return cc2500.NewBridgeError(name, t.portName, "bridge rejected the request length", cc2500.ErrorTypePermanent)
	default:
		return cc2500.NewBridgeError(name, t.portName,
			fmt.Sprintf("bridge error code 0x%02X", payload[0]), cc2500.ErrorTypePermanent)
	}
}

// ioError classifies a port error. A vanished adapter is permanent.
func (t *Transport) ioError(name string, sentinel, err error) error {
	errType := cc2500.ErrorTypeTransient
	if cc2500.IsFatal(err) {
		errType = cc2500.ErrorTypePermanent
	}
	return cc2500.NewTransportError(name, t.portName, fmt.Errorf("%w: %w", sentinel, err), errType)
}

func (t *Transport) expect(name string, resp []byte, n int) error {
	if len(resp) != n {
		return cc2500.NewBridgeError(name, t.portName,
			fmt.Sprintf("response carries %d bytes, want %d", len(resp), n), cc2500.ErrorTypeTransient)
	}
	return nil
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

// Ping checks that a register bridge answers on the port.
func (t *Transport) Ping() error {
	resp, err := t.request("Ping", frame.BridgeOpPing, nil)
	if err != nil {
		return err
	}
	if !bytes.Equal(resp, frame.BridgePing) {
		return cc2500.NewBridgeError("Ping", t.portName,
			fmt.Sprintf("unexpected ping reply %q", resp), cc2500.ErrorTypePermanent)
	}
	return nil
}

// WriteRegister writes a single register
func (t *Transport) WriteRegister(addr, value byte) error {
	if err := checkAddress(addr); err != nil {
		return err
	}
	resp, err := t.request("WriteRegister", frame.BridgeOpWriteRegister, []byte{addr, value})
	if err != nil {
		return err
	}
	return t.expect("WriteRegister", resp, 1)
}

// ReadRegister reads a single register
func (t *Transport) ReadRegister(addr byte) (byte, error) {
	if err := checkAddress(addr); err != nil {
		return 0, err
	}
	resp, err := t.request("ReadRegister", frame.BridgeOpReadRegister, []byte{addr})
	if err != nil {
		return 0, err
	}
	if err := t.expect("ReadRegister", resp, 1); err != nil {
		return 0, err
	}
	return resp[0], nil
}

// BurstWrite writes data starting at addr
func (t *Transport) BurstWrite(addr byte, data []byte) error {
	if err := checkAddress(addr); err != nil {
		return err
	}
	if err := checkBurst(len(data)); err != nil {
		return err
	}
	resp, err := t.request("BurstWrite", frame.BridgeOpBurstWrite, append([]byte{addr}, data...))
	if err != nil {
		return err
	}
	return t.expect("BurstWrite", resp, 1)
}

// BurstRead reads n bytes starting at addr
func (t *Transport) BurstRead(addr byte, n int) ([]byte, error) {
	if err := checkAddress(addr); err != nil {
		return nil, err
	}
	if err := checkBurst(n); err != nil {
		return nil, err
	}
	resp, err := t.request("BurstRead", frame.BridgeOpBurstRead, []byte{addr, byte(n)})
	if err != nil {
		return nil, err
	}
	if err := t.expect("BurstRead", resp, n); err != nil {
		return nil, err
	}
	return resp, nil
}

// Strobe issues a command strobe and returns the chip status byte
func (t *Transport) Strobe(cmd byte) (byte, error) {
	if !cc2500.IsStrobe(cmd) {
		return 0, fmt.Errorf("%w: strobe 0x%02X", cc2500.ErrInvalidParameter, cmd)
	}
	resp, err := t.request("Strobe", frame.BridgeOpStrobe, []byte{cmd})
	if err != nil {
		return 0, err
	}
	if err := t.expect("Strobe", resp, 1); err != nil {
		return 0, err
	}
	return resp[0], nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("UART close failed: %w", err)
	}
	return nil
}

// String returns the port name
func (t *Transport) String() string {
	return t.portName
}

// IsBridgeError reports whether err came from the bridge rejecting a request.
func IsBridgeError(err error) bool {
	return errors.Is(err, cc2500.ErrBridgeProtocol)
}
