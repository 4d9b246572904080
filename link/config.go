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

package link

import (
	"fmt"
	"time"

	"github.com/ZaparooProject/go-cc2500"
)

// Sequencer timing and thresholds.
const (
	StartDelay    = 2 * time.Millisecond
	BindInterval  = 9 * time.Millisecond
	TransmitDelay = 6 * time.Millisecond
	ReceiveDelay  = 3 * time.Millisecond
	SettleDelay   = 10 * time.Millisecond

	// BindPackets is the bind count after which the link leaves bind mode.
	BindPackets = 500
)

// Config holds link configuration options
type Config struct {
	Identity cc2500.Identity

	// ChanSkip is the hop stride advertised in normal frames
	ChanSkip byte
	// ReceiverID selects the model slot on the receiver
	ReceiverID byte
	// BindPackets is the number of bind frames sent before normal operation
	BindPackets int

	StartDelay    time.Duration
	BindInterval  time.Duration
	TransmitDelay time.Duration
	ReceiveDelay  time.Duration
	SettleDelay   time.Duration

	// CalibrationRetry paces calibration runs during Start. Non-fatal
	// errors are retried unless ShouldRetry says otherwise.
	CalibrationRetry *cc2500.RetryConfig
}

// DefaultCalibrationRetry retries calibration until the context ends,
// backing off from 50ms to 1s.
func DefaultCalibrationRetry() *cc2500.RetryConfig {
	return &cc2500.RetryConfig{
		MaxAttempts:       cc2500.UnlimitedAttempts,
		InitialBackoff:    50 * time.Millisecond,
		MaxBackoff:        time.Second,
		BackoffMultiplier: 2,
		Jitter:            0.1,
	}
}

// DefaultConfig returns the default link configuration
func DefaultConfig() *Config {
	return &Config{
		Identity:         cc2500.PlaceholderIdentity,
		ChanSkip:         1,
		ReceiverID:       0,
		BindPackets:      BindPackets,
		StartDelay:       StartDelay,
		BindInterval:     BindInterval,
		TransmitDelay:    TransmitDelay,
		ReceiveDelay:     ReceiveDelay,
		SettleDelay:      SettleDelay,
		CalibrationRetry: DefaultCalibrationRetry(),
	}
}

func (c *Config) validate() error {
	if c.BindPackets < 0 {
		return fmt.Errorf("%w: bind packets %d", cc2500.ErrInvalidParameter, c.BindPackets)
	}
	if c.CalibrationRetry == nil {
		return fmt.Errorf("%w: nil calibration retry config", cc2500.ErrInvalidParameter)
	}
	for _, d := range []time.Duration{c.StartDelay, c.BindInterval, c.TransmitDelay, c.ReceiveDelay} {
		if d <= 0 {
			return fmt.Errorf("%w: non-positive delay %v", cc2500.ErrInvalidParameter, d)
		}
	}
	return nil
}
