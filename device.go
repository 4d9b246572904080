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
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// DiagnosticFunc receives operator-facing diagnostics such as a missing
// chip during bring-up.
type DiagnosticFunc func(format string, args ...any)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// RetryConfig configures retries of calibration ready polls
	RetryConfig *RetryConfig
	// Diagnostic receives bring-up diagnostics (defaults to Debugf)
	Diagnostic DiagnosticFunc
	// ProbeInterval is the delay between chip identity probes
	ProbeInterval time.Duration
	// ProbeAttempts bounds identity probes (0 = until the context ends)
	ProbeAttempts int
	// Power is the PA table index used for transmit (0-7)
	Power int
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		RetryConfig:   CalibrationRetryConfig(),
		Diagnostic:    Debugf,
		ProbeInterval: DefaultProbeInterval,
		ProbeAttempts: DefaultProbeAttempts,
		Power:         MaxPowerLevel,
	}
}

// Option configures a Device
type Option func(*Device) error

// WithRetryConfig sets the calibration ready-poll retry configuration
func WithRetryConfig(config *RetryConfig) Option {
	return func(d *Device) error {
		if config == nil {
			return fmt.Errorf("%w: nil retry config", ErrInvalidParameter)
		}
		d.config.RetryConfig = config
		return nil
	}
}

// WithDiagnostic routes bring-up diagnostics to fn
func WithDiagnostic(fn DiagnosticFunc) Option {
	return func(d *Device) error {
		if fn != nil {
			d.config.Diagnostic = fn
		}
		return nil
	}
}

// WithProbe sets the identity probe interval and attempt limit
func WithProbe(interval time.Duration, attempts int) Option {
	return func(d *Device) error {
		if interval < 0 || attempts < 0 {
			return fmt.Errorf("%w: probe interval %v attempts %d", ErrInvalidParameter, interval, attempts)
		}
		d.config.ProbeInterval = interval
		d.config.ProbeAttempts = attempts
		return nil
	}
}

// WithPower sets the transmit power level written during Init
func WithPower(level int) Option {
	return func(d *Device) error {
		d.config.Power = clampPower(level)
		return nil
	}
}

// WithPins attaches the PA enable, chip enable and interrupt lines
func WithPins(pins Pins) Option {
	return func(d *Device) error {
		d.pins = pins
		return nil
	}
}

// Device drives a CC2500 through a register Transport.
//
// Thread Safety: Device is NOT thread-safe. The link sequencer owns it and
// never issues overlapping calls. HandleInterrupt and Interrupts are the
// exception and may run on the interrupt watcher's goroutine.
type Device struct {
	transport  Transport
	config     *DeviceConfig
	pins       Pins
	interrupts atomic.Uint64
	partNum    byte
	version    byte
}

// New creates a new CC2500 device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidParameter)
	}
	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

func (d *Device) diagf(format string, args ...any) {
	d.config.Diagnostic(format, args...)
}

// Init brings the chip up: pins are configured, the chip identity is
// probed until it matches, the chip is reset and the radio configuration
// is written. A failed reset check is reported but does not stop Init.
func (d *Device) Init(ctx context.Context) error {
	if err := d.pins.setup(); err != nil {
		return err
	}

	if err := d.probe(ctx); err != nil {
		return err
	}

	if err := d.Reset(ctx); err != nil {
		if !errors.Is(err, ErrResetFailed) {
			return err
		}
		d.diagf("cc2500 reset check failed: %v", err)
	}

	if err := d.writeConfig(); err != nil {
		return err
	}
	if err := d.SetPower(d.config.Power); err != nil {
		return err
	}
	return d.Idle()
}

// probe polls PARTNUM and VERSION until they identify a CC2500.
func (d *Device) probe(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		part, version, err := d.ReadIdentity()
		if err == nil && part == ExpectedPartNum && version == ExpectedVersion {
			d.partNum, d.version = part, version
			Debugf("cc2500 found: partnum=0x%02X version=0x%02X", part, version)
			return nil
		}

		if err != nil {
			if IsFatal(err) {
				return fmt.Errorf("probe chip identity: %w", err)
			}
			d.diagf("cc2500 probe failed: %v", err)
		} else {
			d.diagf("cc2500 not found: partnum=0x%02X version=0x%02X", part, version)
		}

		if d.config.ProbeAttempts > 0 && attempt >= d.config.ProbeAttempts {
			if err != nil {
				return fmt.Errorf("probe chip identity: %w: %w", ErrChipNotFound, err)
			}
			return &ChipError{PartNum: part, Version: version}
		}
		if !sleepContext(ctx, d.config.ProbeInterval) {
			return fmt.Errorf("probe chip identity: %w", ctx.Err())
		}
	}
}

// ReadIdentity reads the PARTNUM and VERSION status registers.
func (d *Device) ReadIdentity() (partNum, version byte, err error) {
	partNum, err = d.readStatus(RegPARTNUM)
	if err != nil {
		return 0, 0, err
	}
	version, err = d.readStatus(RegVERSION)
	if err != nil {
		return 0, 0, err
	}
	return partNum, version, nil
}

// Reset issues SRES and checks that FREQ1 reads back its reset value.
func (d *Device) Reset(ctx context.Context) error {
	if _, err := d.transport.Strobe(StrobeSRES); err != nil {
		return fmt.Errorf("reset strobe: %w", err)
	}
	if !sleepContext(ctx, ResetSettle) {
		return fmt.Errorf("reset: %w", ctx.Err())
	}

	freq1, err := d.transport.ReadRegister(RegFREQ1)
	if err != nil {
		return fmt.Errorf("reset check: %w", err)
	}
	if freq1 != resetFREQ1 {
		return fmt.Errorf("%w: FREQ1 read 0x%02X, want 0x%02X", ErrResetFailed, freq1, resetFREQ1)
	}
	return nil
}

func (d *Device) writeConfig() error {
	for _, s := range radioConfig {
		if err := d.transport.WriteRegister(s.Addr, s.Value); err != nil {
			return fmt.Errorf("write config register 0x%02X: %w", s.Addr, err)
		}
	}
	return nil
}

// ConfigureAddressing programs the address filter and frequency offset
// compensation for bind (fixed bind address) or normal operation (ID0).
func (d *Device) ConfigureAddressing(bind bool, id Identity) error {
	addr := id.ID0
	if bind {
		addr = addrBind
	}

	settings := []RegisterSetting{
		{RegFSCTRL0, addrFSCTRL0},
		{RegMCSM0, addrMCSM0},
		{RegADDR, addr},
		{RegPKTCTRL1, addrPKTCTRL1},
		{RegFOCCFG, addrFOCCFG},
	}
	for _, s := range settings {
		if err := d.transport.WriteRegister(s.Addr, s.Value); err != nil {
			return fmt.Errorf("configure addressing register 0x%02X: %w", s.Addr, err)
		}
	}
	return nil
}

// Idle strobes SIDLE.
func (d *Device) Idle() error {
	if _, err := d.transport.Strobe(StrobeSIDLE); err != nil {
		return fmt.Errorf("idle: %w", err)
	}
	return nil
}

// Tune writes CHANNR without touching the synthesizer calibration.
func (d *Device) Tune(channel byte) error {
	if err := d.transport.WriteRegister(RegCHANNR, channel); err != nil {
		return fmt.Errorf("tune channel 0x%02X: %w", channel, err)
	}
	return nil
}

// Hop moves to a channel using its stored calibration: SIDLE, the three
// FSCAL registers, then CHANNR.
func (d *Device) Hop(channel byte, cal CalibrationEntry) error {
	if err := d.Idle(); err != nil {
		return err
	}
	if err := d.transport.WriteRegister(RegFSCAL3, cal.FSCAL3); err != nil {
		return fmt.Errorf("hop FSCAL3: %w", err)
	}
	if err := d.transport.WriteRegister(RegFSCAL2, cal.FSCAL2); err != nil {
		return fmt.Errorf("hop FSCAL2: %w", err)
	}
	if err := d.transport.WriteRegister(RegFSCAL1, cal.FSCAL1); err != nil {
		return fmt.Errorf("hop FSCAL1: %w", err)
	}
	return d.Tune(channel)
}

// Transmit enables the PA, flushes the TX FIFO, loads frame and strobes STX.
func (d *Device) Transmit(frame []byte) error {
	if err := d.pins.amplifier(true); err != nil {
		return err
	}
	if _, err := d.transport.Strobe(StrobeSFTX); err != nil {
		return fmt.Errorf("flush tx fifo: %w", err)
	}
	if err := d.transport.BurstWrite(RegFIFO, frame); err != nil {
		return fmt.Errorf("load tx fifo: %w", err)
	}
	if _, err := d.transport.Strobe(StrobeSTX); err != nil {
		return fmt.Errorf("start tx: %w", err)
	}
	return nil
}

// FlushReceive strobes SFRX.
func (d *Device) FlushReceive() error {
	if _, err := d.transport.Strobe(StrobeSFRX); err != nil {
		return fmt.Errorf("flush rx fifo: %w", err)
	}
	return nil
}

// Listen disables the PA, hops to channel and enters receive.
func (d *Device) Listen(channel byte, cal CalibrationEntry) error {
	if err := d.pins.amplifier(false); err != nil {
		return err
	}
	if err := d.Hop(channel, cal); err != nil {
		return err
	}
	if _, err := d.transport.Strobe(StrobeSRX); err != nil {
		return fmt.Errorf("start rx: %w", err)
	}
	return nil
}

// Status strobes SNOP and returns the decoded status byte.
func (d *Device) Status() (Status, error) {
	s, err := d.transport.Strobe(StrobeSNOP)
	if err != nil {
		return 0, fmt.Errorf("read status: %w", err)
	}
	return Status(s), nil
}

// ReadFIFO reads up to n bytes from the RX FIFO. Only the bytes reported
// by RXBYTES are read.
func (d *Device) ReadFIFO(n int) ([]byte, error) {
	avail, err := d.readStatus(RegRXBYTES)
	if err != nil {
		return nil, err
	}
	count := int(avail & 0x7F)
	if count > n {
		count = n
	}
	if count == 0 {
		return nil, nil
	}
	data, err := d.transport.BurstRead(RegFIFO, count)
	if err != nil {
		return nil, fmt.Errorf("read rx fifo: %w", err)
	}
	return data, nil
}

// RSSI returns the raw RSSI status register.
func (d *Device) RSSI() (byte, error) {
	return d.readStatus(RegRSSI)
}

// LQI returns the raw LQI status register.
func (d *Device) LQI() (byte, error) {
	return d.readStatus(RegLQI)
}

// HandleInterrupt is called on a GDO0 edge. It only counts the edge;
// received frames are not processed.
func (d *Device) HandleInterrupt() {
	d.interrupts.Add(1)
}

// Interrupts returns how many GDO0 edges HandleInterrupt has seen.
func (d *Device) Interrupts() uint64 {
	return d.interrupts.Load()
}

// Close releases the transport. The PA is switched off first.
func (d *Device) Close() error {
	_ = d.pins.amplifier(false)
	if err := d.transport.Close(); err != nil {
		return fmt.Errorf("close transport: %w", err)
	}
	return nil
}

func (d *Device) readStatus(addr byte) (byte, error) {
	data, err := d.transport.BurstRead(addr, 1)
	if err != nil {
		return 0, fmt.Errorf("read status register 0x%02X: %w", addr, err)
	}
	if len(data) != 1 {
		return 0, NewTransportReadError("readStatus", "", fmt.Errorf("short read: %d bytes", len(data)))
	}
	return data[0], nil
}
