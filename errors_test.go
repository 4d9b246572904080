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
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "timeout", err: ErrTransportTimeout, want: true},
		{name: "wrapped read", err: fmt.Errorf("op: %w", ErrTransportRead), want: true},
		{name: "checksum", err: ErrChecksumMismatch, want: true},
		{name: "chip not ready", err: ErrChipNotReady, want: true},
		{name: "invalid parameter", err: ErrInvalidParameter, want: false},
		{name: "closed", err: ErrTransportClosed, want: false},
		{name: "calibration failed", err: ErrCalibrationFailed, want: false},
		{name: "retryable transport error", err: NewTimeoutError("Strobe", "/dev/ttyUSB0"), want: true},
		{
			name: "permanent transport error",
			err:  NewTransportError("Strobe", "", ErrTransportRead, ErrorTypePermanent),
			want: false,
		},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "closed", err: ErrTransportClosed, want: true},
		{name: "eof", err: fmt.Errorf("read: %w", io.EOF), want: true},
		{name: "device gone", err: fmt.Errorf("write: %w", syscall.ENODEV), want: true},
		{name: "io error", err: syscall.EIO, want: true},
		{name: "chip missing", err: &ChipError{PartNum: 0, Version: 0}, want: true},
		{name: "transient", err: NewChecksumMismatchError("ReadRegister", ""), want: false},
		{
			name: "bridge rejected",
			err:  NewBridgeError("Strobe", "", "unknown op", ErrorTypePermanent),
			want: true,
		},
		{name: "calibration", err: ErrCalibrationFailed, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}

func TestTransportError_Format(t *testing.T) {
	t.Parallel()

	err := NewTransportReadError("BurstRead", "/dev/ttyACM0", io.ErrUnexpectedEOF)
	assert.Equal(t, "BurstRead /dev/ttyACM0: transport read failed: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, ErrTransportRead)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, err.Retryable)

	err = NewTransportWriteError("WriteRegister", "", io.ErrShortWrite)
	assert.Equal(t, "WriteRegister: transport write failed: short write", err.Error())
}

func TestChipError(t *testing.T) {
	t.Parallel()

	err := &ChipError{PartNum: 0x00, Version: 0x14}
	assert.ErrorIs(t, err, ErrChipNotFound)
	assert.Equal(t,
		"cc2500 not found: partnum 0x00 (want 0x80), version 0x14 (want 0x03)",
		err.Error())
}

func TestChannelError(t *testing.T) {
	t.Parallel()

	err := &ChannelError{Slot: 12, Channel: 0x0C, Err: ErrCalibrationFailed}
	assert.Equal(t, "slot 12 (channel 0x0C): calibration failed", err.Error())
	assert.ErrorIs(t, err, ErrCalibrationFailed)
}

func TestBridgeError(t *testing.T) {
	t.Parallel()

	err := NewBridgeError("Strobe", "COM3", "short frame", ErrorTypeTransient)
	assert.ErrorIs(t, err, ErrBridgeProtocol)
	assert.True(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "short frame")
}
