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

import "time"

// Bring-up timing
const (
	// DefaultProbeInterval is the delay between chip identity probes.
	DefaultProbeInterval = 200 * time.Millisecond
	// DefaultProbeAttempts bounds identity probes (0 = until the context ends).
	DefaultProbeAttempts = 0
	// ResetSettle is the wait between SRES and the reset check.
	ResetSettle = time.Millisecond
)

// Calibration timing. The synthesizer needs about 800us per channel; the
// ready poll covers slow parts and a busy SPI bus.
const (
	// CalibrationSettle is the wait after SCAL before polling status.
	CalibrationSettle = time.Millisecond
	// CalibrationReadyPolls is the number of status polls per channel.
	CalibrationReadyPolls = 8
	// CalibrationPollInterval is the initial delay between status polls.
	CalibrationPollInterval = 250 * time.Microsecond
	// CalibrationReadyTimeout bounds the polls for one channel.
	CalibrationReadyTimeout = 20 * time.Millisecond
)
