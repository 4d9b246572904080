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
	"testing"
	"time"

	virt "github.com/ZaparooProject/go-cc2500/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibrate_CapturesEveryChannel(t *testing.T) {
	t.Parallel()
	device, sim := newSimDevice(t)
	table := GenerateHoppingTable(PlaceholderIdentity)

	cal, err := device.Calibrate(context.Background(), &table)
	require.NoError(t, err)
	require.NotNil(t, cal)

	for slot, ch := range table {
		want := virt.CalibrationFor(ch)
		got := cal.Entry(HopIndex(slot))
		assert.Equal(t, CalibrationEntry{FSCAL3: want[0], FSCAL2: want[1], FSCAL1: want[2]}, got, "slot %d", slot)
	}

	scal := 0
	for _, s := range sim.Strobes() {
		if s == StrobeSCAL {
			scal++
		}
	}
	assert.Equal(t, NumChannels, scal)
}

func TestCalibrate_WaitsForSlowSynthesizer(t *testing.T) {
	t.Parallel()
	device, sim := newSimDevice(t)
	sim.SetCalibrationPolls(3)
	table := GenerateHoppingTable(Identity{ID0: 3, ID1: 77})

	cal, err := device.Calibrate(context.Background(), &table)
	require.NoError(t, err)

	want := virt.CalibrationFor(table[46])
	assert.Equal(t, want[2], cal[46].FSCAL1)
}

func TestCalibrate_NeverReady(t *testing.T) {
	t.Parallel()
	device, sim := newSimDevice(t)
	sim.SetNeverReady(true)
	table := GenerateHoppingTable(PlaceholderIdentity)

	cal, err := device.Calibrate(context.Background(), &table)
	require.Error(t, err)
	assert.Nil(t, cal)
	assert.ErrorIs(t, err, ErrCalibrationFailed)

	var chErr *ChannelError
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, 0, chErr.Slot)
	assert.Equal(t, table[0], chErr.Channel)
}

func TestCalibrate_TransportFailure(t *testing.T) {
	t.Parallel()
	device, mock := newMockDevice(t)
	mock.SetError("read", ErrTransportRead)
	table := GenerateHoppingTable(PlaceholderIdentity)

	cal, err := device.Calibrate(context.Background(), &table)
	require.Error(t, err)
	assert.Nil(t, cal)
	assert.ErrorIs(t, err, ErrTransportRead)
}

func TestCalibrate_NilTable(t *testing.T) {
	t.Parallel()
	device, _ := newMockDevice(t)

	_, err := device.Calibrate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestCalibrate_ContextCancelled(t *testing.T) {
	t.Parallel()
	device, sim := newSimDevice(t)
	sim.SetNeverReady(true)
	table := GenerateHoppingTable(PlaceholderIdentity)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := device.Calibrate(ctx, &table)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, errors.Is(err, ErrCalibrationFailed) || errors.Is(err, context.DeadlineExceeded))
}
