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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryConfig_Defaults(t *testing.T) {
	t.Parallel()

	for name, config := range map[string]*RetryConfig{
		"default":     DefaultRetryConfig(),
		"calibration": CalibrationRetryConfig(),
	} {
		assert.Positive(t, config.MaxAttempts, name)
		assert.Positive(t, config.InitialBackoff, name)
		assert.GreaterOrEqual(t, config.MaxBackoff, config.InitialBackoff, name)
		assert.Greater(t, config.BackoffMultiplier, 1.0, name)
		assert.GreaterOrEqual(t, config.Jitter, 0.0, name)
		assert.LessOrEqual(t, config.Jitter, 1.0, name)
		assert.Positive(t, config.RetryTimeout, name)
	}
}

func fastRetry(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 2,
		Jitter:            0.1,
		RetryTimeout:      time.Second,
	}
}

func TestRetryWithConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		failWith  error
		name      string
		failures  int
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{name: "first try", failures: 0, attempts: 3, wantCalls: 1},
		{name: "recovers", failWith: ErrTransportRead, failures: 2, attempts: 3, wantCalls: 3},
		{
			name: "exhausted", failWith: ErrTransportRead, failures: 5, attempts: 3,
			wantCalls: 3, wantErr: true,
		},
		{
			name: "not retryable", failWith: ErrInvalidParameter, failures: 5, attempts: 3,
			wantCalls: 1, wantErr: true,
		},
		{
			name: "no retries configured", failWith: ErrTransportRead, failures: 5, attempts: 0,
			wantCalls: 1, wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			err := RetryWithConfig(context.Background(), fastRetry(tt.attempts), func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.failWith)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRetryWithConfig_NilConfig(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	err := RetryWithConfig(context.Background(), nil, func() error {
		if calls.Add(1) == 1 {
			return ErrTransportTimeout
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetryWithConfig_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithConfig(ctx, fastRetry(3), func() error {
		calls++
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetryWithConfig_TimeoutReturnsLastError(t *testing.T) {
	t.Parallel()

	config := &RetryConfig{
		MaxAttempts:       1000,
		InitialBackoff:    2 * time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 1,
		RetryTimeout:      15 * time.Millisecond,
	}
	start := time.Now()
	err := RetryWithConfig(context.Background(), config, func() error {
		return ErrChipNotReady
	})
	assert.ErrorIs(t, err, ErrChipNotReady)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRetryWithConfig_UnlimitedAttempts(t *testing.T) {
	t.Parallel()

	config := fastRetry(UnlimitedAttempts)
	config.RetryTimeout = 0
	calls := 0
	err := RetryWithConfig(context.Background(), config, func() error {
		calls++
		if calls < 10 {
			return ErrTransportRead
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, calls)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = RetryWithConfig(ctx, config, func() error { return ErrTransportRead })
	require.ErrorIs(t, err, ErrTransportRead)
}

func TestRetryWithConfig_ShouldRetry(t *testing.T) {
	t.Parallel()

	config := fastRetry(3)
	config.ShouldRetry = func(err error) bool { return !errors.Is(err, ErrTransportClosed) }

	calls := 0
	err := RetryWithConfig(context.Background(), config, func() error {
		calls++
		return ErrCalibrationFailed
	})
	require.ErrorIs(t, err, ErrCalibrationFailed)
	assert.Equal(t, 3, calls, "ErrCalibrationFailed retried by the predicate")

	calls = 0
	err = RetryWithConfig(context.Background(), config, func() error {
		calls++
		return ErrTransportClosed
	})
	require.ErrorIs(t, err, ErrTransportClosed)
	assert.Equal(t, 1, calls)
}

func TestBackoff_Step(t *testing.T) {
	t.Parallel()

	b := backoff{
		config: &RetryConfig{BackoffMultiplier: 2, MaxBackoff: 50 * time.Millisecond},
		next:   10 * time.Millisecond,
	}
	assert.Equal(t, 10*time.Millisecond, b.step())
	assert.Equal(t, 20*time.Millisecond, b.step())
	assert.Equal(t, 40*time.Millisecond, b.step())
	assert.Equal(t, 50*time.Millisecond, b.step())
	assert.Equal(t, 50*time.Millisecond, b.step())
}

func TestJitter(t *testing.T) {
	t.Parallel()

	assert.Zero(t, jitter(10*time.Millisecond, 0))
	assert.Zero(t, jitter(0, 0.5))
	for range 100 {
		j := jitter(10*time.Millisecond, 0.5)
		assert.GreaterOrEqual(t, j, time.Duration(0))
		assert.Less(t, j, 5*time.Millisecond+time.Nanosecond)
	}
}

func TestSleepContext(t *testing.T) {
	t.Parallel()

	assert.True(t, sleepContext(context.Background(), time.Millisecond))
	assert.True(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepContext(ctx, time.Hour))
	assert.False(t, sleepContext(ctx, 0))
}

func TestTransportWithRetry(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetRegister(RegFREQ1, 0x76)
	wrapped := NewTransportWithRetry(mock, fastRetry(3))

	value, err := wrapped.ReadRegister(RegFREQ1)
	require.NoError(t, err)
	assert.Equal(t, byte(0x76), value)

	mock.SetError("strobe", ErrTransportTimeout)
	_, err = wrapped.Strobe(StrobeSNOP)
	require.ErrorIs(t, err, ErrTransportTimeout)
	assert.Len(t, mock.Strobes(), 3)

	mock.ClearError("strobe")
	status, err := wrapped.Strobe(StrobeSNOP)
	require.NoError(t, err)
	assert.Zero(t, status)

	mock.SetError("write", errors.New("permanent"))
	require.Error(t, wrapped.WriteRegister(RegADDR, 1))
	writes := 0
	for _, op := range mock.Ops() {
		if op.Kind == "write" {
			writes++
		}
	}
	assert.Equal(t, 1, writes, "non-retryable errors are not retried")

	require.NoError(t, wrapped.BurstWrite(RegFIFO, []byte{1, 2}))
	data, err := wrapped.BurstRead(RegPARTNUM, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{ExpectedPartNum, ExpectedVersion}, data)

	require.NoError(t, wrapped.Close())
	_, err = mock.ReadRegister(RegADDR)
	assert.ErrorIs(t, err, ErrTransportClosed)
}

func TestMockTransport_Reset(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	_, _ = mock.Strobe(StrobeSIDLE)
	require.NoError(t, mock.Close())
	mock.Reset()

	assert.Empty(t, mock.Ops())
	_, err := mock.Strobe(StrobeSNOP)
	assert.NoError(t, err)
}
