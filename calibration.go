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
)

// CalibrationEntry holds the synthesizer calibration captured for one
// channel.
type CalibrationEntry struct {
	FSCAL3 byte
	FSCAL2 byte
	FSCAL1 byte
}

// CalibrationTable holds one entry per hop slot, in hopping table order.
type CalibrationTable [NumChannels]CalibrationEntry

// Entry returns the calibration of a hop slot.
func (c *CalibrationTable) Entry(h HopIndex) CalibrationEntry {
	return c[h]
}

// Calibrate runs a manual synthesizer calibration on every channel of the
// hopping table and captures the results. A channel that never reports
// ready fails the whole run; no partial table is returned.
func (d *Device) Calibrate(ctx context.Context, table *HoppingTable) (*CalibrationTable, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil hopping table", ErrInvalidParameter)
	}

	var cal CalibrationTable
	for slot, channel := range table {
		entry, err := d.calibrateChannel(ctx, channel)
		if err != nil {
			return nil, &ChannelError{Slot: slot, Channel: channel, Err: err}
		}
		cal[slot] = entry
	}

	Debugf("calibrated %d channels", NumChannels)
	return &cal, nil
}

func (d *Device) calibrateChannel(ctx context.Context, channel byte) (CalibrationEntry, error) {
	if err := d.Idle(); err != nil {
		return CalibrationEntry{}, err
	}
	if err := d.Tune(channel); err != nil {
		return CalibrationEntry{}, err
	}
	if _, err := d.transport.Strobe(StrobeSCAL); err != nil {
		return CalibrationEntry{}, fmt.Errorf("start calibration: %w", err)
	}
	if !sleepContext(ctx, CalibrationSettle) {
		return CalibrationEntry{}, ctx.Err()
	}

	if err := d.waitCalibrated(ctx); err != nil {
		return CalibrationEntry{}, fmt.Errorf("%w: %w", ErrCalibrationFailed, err)
	}

	regs, err := d.readCalibration()
	if err != nil {
		return CalibrationEntry{}, err
	}
	return regs, nil
}

// waitCalibrated polls the status byte until the chip is ready and back in
// IDLE.
func (d *Device) waitCalibrated(ctx context.Context) error {
	return RetryWithConfig(ctx, d.config.RetryConfig, func() error {
		status, err := d.Status()
		if err != nil {
			return err
		}
		if !status.Ready() || status.State() != StateIdle {
			return fmt.Errorf("%w: state %v", ErrChipNotReady, status.State())
		}
		return nil
	})
}

func (d *Device) readCalibration() (CalibrationEntry, error) {
	var regs [3]byte
	for i, addr := range [...]byte{RegFSCAL3, RegFSCAL2, RegFSCAL1} {
		v, err := d.transport.ReadRegister(addr)
		if err != nil {
			return CalibrationEntry{}, fmt.Errorf("read calibration register 0x%02X: %w", addr, err)
		}
		regs[i] = v
	}
	return CalibrationEntry{FSCAL3: regs[0], FSCAL2: regs[1], FSCAL1: regs[2]}, nil
}
