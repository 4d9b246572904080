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
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ZaparooProject/go-cc2500"
)

// manualScheduler records callbacks and runs them only when fired.
type manualScheduler struct {
	timers []*manualTimer
	mu     sync.Mutex
}

type manualTimer struct {
	fn      func()
	delay   time.Duration
	fired   bool
	stopped bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{delay: d, fn: fn}
	s.timers = append(s.timers, t)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.fired || t.stopped {
			return false
		}
		t.stopped = true
		return true
	}
}

func (s *manualScheduler) active() []*manualTimer {
	var out []*manualTimer
	for _, t := range s.timers {
		if !t.fired && !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

// Pending returns the number of callbacks waiting to run.
func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active())
}

// NextDelay returns the delay of the oldest pending callback.
func (s *manualScheduler) NextDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if active := s.active(); len(active) > 0 {
		return active[0].delay
	}
	return 0
}

// Fire runs the oldest pending callback and reports whether there was one.
func (s *manualScheduler) Fire() bool {
	s.mu.Lock()
	active := s.active()
	if len(active) == 0 {
		s.mu.Unlock()
		return false
	}
	t := active[0]
	t.fired = true
	s.mu.Unlock()

	t.fn()
	return true
}

// radioCall is one recorded Radio invocation.
type radioCall struct {
	Name    string
	Channel byte
	Cal     cc2500.CalibrationEntry
	Frame   []byte
	Bind    bool
}

// fakeRadio records calls and fails on demand.
type fakeRadio struct {
	failCalibrations int
	calibrationErr   error
	transmitErr      error
	listenErr        error
	calls            []radioCall
	mu               sync.Mutex
}

func (r *fakeRadio) record(c radioCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *fakeRadio) Calls() []radioCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]radioCall(nil), r.calls...)
}

func (r *fakeRadio) Names() []string {
	calls := r.Calls()
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
	}
	return names
}

func (r *fakeRadio) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *fakeRadio) Calibrate(ctx context.Context, table *cc2500.HoppingTable) (*cc2500.CalibrationTable, error) {
	r.record(radioCall{Name: "calibrate"})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// negative failCalibrations fails forever
	if r.calibrationErr != nil && r.failCalibrations != 0 {
		r.failCalibrations--
		return nil, r.calibrationErr
	}
	var cal cc2500.CalibrationTable
	for i, ch := range table {
		cal[i] = fakeCalibration(ch)
	}
	return &cal, nil
}

func fakeCalibration(ch byte) cc2500.CalibrationEntry {
	return cc2500.CalibrationEntry{FSCAL3: 0xA9, FSCAL2: 0x0A, FSCAL1: ch & 0x3F}
}

func (r *fakeRadio) ConfigureAddressing(bind bool, _ cc2500.Identity) error {
	r.record(radioCall{Name: "address", Bind: bind})
	return nil
}

func (r *fakeRadio) Idle() error {
	r.record(radioCall{Name: "idle"})
	return nil
}

func (r *fakeRadio) Tune(channel byte) error {
	r.record(radioCall{Name: "tune", Channel: channel})
	return nil
}

func (r *fakeRadio) Hop(channel byte, cal cc2500.CalibrationEntry) error {
	r.record(radioCall{Name: "hop", Channel: channel, Cal: cal})
	return nil
}

func (r *fakeRadio) Transmit(frame []byte) error {
	r.record(radioCall{Name: "transmit", Frame: append([]byte(nil), frame...)})
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transmitErr
}

func (r *fakeRadio) FlushReceive() error {
	r.record(radioCall{Name: "flush"})
	return nil
}

func (r *fakeRadio) Listen(channel byte, cal cc2500.CalibrationEntry) error {
	r.record(radioCall{Name: "listen", Channel: channel, Cal: cal})
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listenErr
}

// staticInputs returns 100*i+1 for channel i.
type staticInputs struct{}

func (staticInputs) ChannelValue(i int) uint16 {
	return uint16(100*i + 1)
}

// testConfig returns a config with short settle delays.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.SettleDelay = time.Microsecond
	cfg.CalibrationRetry = &cc2500.RetryConfig{
		MaxAttempts:       cc2500.UnlimitedAttempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 2,
	}
	return cfg
}

type diagLog struct {
	messages []string
	mu       sync.Mutex
}

func (d *diagLog) record(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, fmt.Sprintf(format, args...))
}

func (d *diagLog) Messages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.messages...)
}
