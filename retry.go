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
	"math/rand/v2"
	"time"
)

// UnlimitedAttempts makes RetryWithConfig retry until its context ends.
const UnlimitedAttempts = -1

// RetryConfig configures retry behavior
type RetryConfig struct {
	// ShouldRetry classifies errors from the retried function (nil = IsRetryable)
	ShouldRetry func(error) bool
	// MaxAttempts is the maximum number of attempts (0 = single attempt,
	// UnlimitedAttempts = until the context ends)
	MaxAttempts int
	// InitialBackoff is the delay after the first failed attempt
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between attempts
	MaxBackoff time.Duration
	// BackoffMultiplier is the factor by which the backoff grows
	BackoffMultiplier float64
	// Jitter adds up to this fraction of the backoff as random delay
	Jitter float64
	// RetryTimeout bounds all attempts together (0 = only the caller's context)
	RetryTimeout time.Duration
}

// DefaultRetryConfig returns the retry configuration used for register access
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    2 * time.Millisecond,
		MaxBackoff:        50 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryTimeout:      time.Second,
	}
}

// CalibrationRetryConfig returns the configuration used while waiting for
// the synthesizer to finish a calibration.
func CalibrationRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       CalibrationReadyPolls,
		InitialBackoff:    CalibrationPollInterval,
		MaxBackoff:        CalibrationPollInterval * 4,
		BackoffMultiplier: 1.5,
		RetryTimeout:      CalibrationReadyTimeout,
	}
}

// RetryableFunc is a function that can be retried
type RetryableFunc func() error

// RetryWithConfig runs fn until it succeeds, returns a non-retryable error,
// runs out of attempts or the context ends. The last error from fn is
// returned in preference to a context error.
func RetryWithConfig(ctx context.Context, config *RetryConfig, fn RetryableFunc) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if config.MaxAttempts == 0 {
		return fn()
	}
	shouldRetry := config.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsRetryable
	}

	if config.RetryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.RetryTimeout)
		defer cancel()
	}

	b := backoff{config: config, next: config.InitialBackoff}
	var lastErr error
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			if lastErr != nil {
				return lastErr
			}
			return fmt.Errorf("retry context cancelled: %w", ctx.Err())
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !shouldRetry(err) {
			return err
		}
		lastErr = err

		if config.MaxAttempts > 0 && attempt >= config.MaxAttempts {
			return lastErr
		}
		if !sleepContext(ctx, b.step()) {
			return lastErr
		}
	}
}

type backoff struct {
	config *RetryConfig
	next   time.Duration
}

// step returns the jittered delay for this attempt and grows the next one.
func (b *backoff) step() time.Duration {
	d := b.next + jitter(b.next, b.config.Jitter)

	grown := time.Duration(float64(b.next) * b.config.BackoffMultiplier)
	if b.config.MaxBackoff > 0 && grown > b.config.MaxBackoff {
		grown = b.config.MaxBackoff
	}
	b.next = grown
	return d
}

func jitter(base time.Duration, factor float64) time.Duration {
	if factor <= 0 || base <= 0 {
		return 0
	}
	return time.Duration(rand.Float64() * factor * float64(base)) //nolint:gosec // backoff jitter
}

// sleepContext waits for d and reports false if ctx ended first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
