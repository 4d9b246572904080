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

// Package link sequences a CC2500 through calibration, bind advertising and
// the steady transmit and receive-window loop.
package link

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-cc2500"
	"github.com/ZaparooProject/go-cc2500/internal/frame"
	"github.com/ZaparooProject/go-cc2500/internal/syncutil"
)

// ErrAlreadyStarted is returned by Start on a link that is not idle.
var ErrAlreadyStarted = errors.New("link already started")

// Radio is the chip surface the sequencer drives. *cc2500.Device implements it.
type Radio interface {
	Calibrate(ctx context.Context, table *cc2500.HoppingTable) (*cc2500.CalibrationTable, error)
	ConfigureAddressing(bind bool, id cc2500.Identity) error
	Idle() error
	Tune(channel byte) error
	Hop(channel byte, cal cc2500.CalibrationEntry) error
	Transmit(frame []byte) error
	FlushReceive() error
	Listen(channel byte, cal cc2500.CalibrationEntry) error
}

// ChannelSource supplies the latest control value for channel i in 0..7.
type ChannelSource interface {
	ChannelValue(i int) uint16
}

// Option configures a Link
type Option func(*Link)

// WithScheduler replaces the timer based scheduler.
func WithScheduler(s Scheduler) Option {
	return func(l *Link) {
		l.sched = s
	}
}

// WithDiagnostic sets the sink for failures and calibration retries.
func WithDiagnostic(fn cc2500.DiagnosticFunc) Option {
	return func(l *Link) {
		l.diag = fn
	}
}

// Link owns a session and drives a Radio from scheduler callbacks.
type Link struct {
	radio  Radio
	input  ChannelSource
	config *Config
	sched  Scheduler
	diag   cc2500.DiagnosticFunc

	table cc2500.HoppingTable
	cal   *cc2500.CalibrationTable

	mu      syncutil.Mutex
	session Session
	cancel  func() bool
	lastErr error

	bindFrames      int64
	normalFrames    int64
	receiveWindows  int64
	tickErrors      int64
	calibrationRuns int64
	lastTickLatency int64 // in nanoseconds
}

// New creates an idle link. A nil config uses DefaultConfig.
func New(radio Radio, input ChannelSource, config *Config, opts ...Option) (*Link, error) {
	if radio == nil || input == nil {
		return nil, fmt.Errorf("%w: radio and input are required", cc2500.ErrInvalidParameter)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	l := &Link{
		radio:  radio,
		input:  input,
		config: config,
		sched:  TimerScheduler{},
		diag:   cc2500.Debugf,
		table:  cc2500.GenerateHoppingTable(config.Identity),
		session: Session{
			State:      StateIdle,
			ChanSkip:   config.ChanSkip,
			ReceiverID: config.ReceiverID,
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.sched == nil {
		return nil, fmt.Errorf("%w: nil scheduler", cc2500.ErrInvalidParameter)
	}
	if l.diag == nil {
		l.diag = func(string, ...any) {}
	}
	return l, nil
}

// HoppingTable returns the table derived from the configured identity.
func (l *Link) HoppingTable() cc2500.HoppingTable {
	return l.table
}

// Start calibrates every hop channel, programs bind addressing and schedules
// the first bind frame. Calibration is retried until it succeeds, the
// configured attempts run out or ctx ends.
func (l *Link) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.session.State != StateIdle {
		state := l.session.State
		l.mu.Unlock()
		return fmt.Errorf("%w: state %s", ErrAlreadyStarted, state)
	}
	l.session.State = StateCalibrating
	l.mu.Unlock()

	if err := l.bringUp(ctx); err != nil {
		l.mu.Lock()
		if l.session.State == StateCalibrating {
			l.session.State = StateIdle
		}
		l.lastErr = err
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.session.State != StateCalibrating {
		// Stopped during bring-up.
		return nil
	}
	l.session.State = StateBindAdvertising
	l.schedule(l.config.StartDelay)
	return nil
}

func (l *Link) bringUp(ctx context.Context) error {
	cal, err := l.calibrate(ctx)
	if err != nil {
		return err
	}
	l.cal = cal

	if err := sleepContext(ctx, l.config.SettleDelay); err != nil {
		return err
	}
	if err := l.radio.Idle(); err != nil {
		return fmt.Errorf("idle after calibration: %w", err)
	}
	if err := sleepContext(ctx, l.config.SettleDelay); err != nil {
		return err
	}

	if err := l.radio.ConfigureAddressing(true, l.config.Identity); err != nil {
		return fmt.Errorf("configure bind addressing: %w", err)
	}
	if err := l.radio.Hop(l.table[0], l.cal[0]); err != nil {
		return fmt.Errorf("tune hop slot 0: %w", err)
	}
	return nil
}

func (l *Link) calibrate(ctx context.Context) (*cc2500.CalibrationTable, error) {
	retry := *l.config.CalibrationRetry
	if retry.ShouldRetry == nil {
		retry.ShouldRetry = func(err error) bool { return !cc2500.IsFatal(err) }
	}

	var (
		cal      *cc2500.CalibrationTable
		attempts int
	)
	err := cc2500.RetryWithConfig(ctx, &retry, func() error {
		attempts++
		atomic.AddInt64(&l.calibrationRuns, 1)
		var err error
		cal, err = l.radio.Calibrate(ctx, &l.table)
		if err != nil {
			l.diag("calibration attempt %d failed: %v", attempts, err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("calibrate after %d attempts: %w", attempts, err)
	}
	return cal, nil
}

// Tick runs the action for the current state and schedules the next one.
// The scheduler calls it; tests may call it directly.
func (l *Link) Tick() {
	start := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		next  time.Duration
		err   error
		state = l.session.State
	)
	switch state {
	case StateBindAdvertising:
		next, err = l.bindTick()
	case StateTransmit:
		next, err = l.transmitTick()
	case StateReceiveWindow:
		next, err = l.receiveTick()
	default:
		return
	}

	atomic.StoreInt64(&l.lastTickLatency, time.Since(start).Nanoseconds())
	if err != nil {
		atomic.AddInt64(&l.tickErrors, 1)
		l.lastErr = err
		l.diag("link %s tick failed: %v", state, err)
	}
	l.schedule(next)
}

func (l *Link) bindTick() (time.Duration, error) {
	s := &l.session
	f := frame.BuildBind(frame.BindParams{
		Hops:       l.table[:],
		ID0:        l.config.Identity.ID0,
		ID1:        l.config.Identity.ID1,
		Cursor:     s.BindCursor,
		ReceiverID: s.ReceiverID,
	})
	s.BindCursor = s.BindCursor.Next()

	err := l.send(func() error { return l.radio.Tune(0) }, f.Bytes())
	if err == nil {
		atomic.AddInt64(&l.bindFrames, 1)
	}

	s.BindCount++
	if s.BindCount > l.config.BindPackets {
		s.State = StateTransmit
	}
	return l.config.BindInterval, err
}

func (l *Link) transmitTick() (time.Duration, error) {
	s := &l.session
	var values [frame.Channels]uint16
	for i := range values {
		values[i] = l.input.ChannelValue(i)
	}
	f := frame.BuildNormal(frame.NormalParams{
		Values:     values,
		ID0:        l.config.Identity.ID0,
		ID1:        l.config.Identity.ID1,
		Hop:        byte(s.Hop),
		ChanSkip:   s.ChanSkip,
		ReceiverID: s.ReceiverID,
	})

	err := l.send(l.radio.FlushReceive, f.Bytes())
	if err == nil {
		atomic.AddInt64(&l.normalFrames, 1)
	}

	s.State = StateReceiveWindow
	return l.config.TransmitDelay, err
}

func (l *Link) receiveTick() (time.Duration, error) {
	s := &l.session
	s.Hop = s.Hop.Advance(s.ChanSkip)
	s.State = StateTransmit

	if err := l.radio.Listen(l.table.Channel(s.Hop), l.cal.Entry(s.Hop)); err != nil {
		return l.config.ReceiveDelay, fmt.Errorf("listen on hop %d: %w", s.Hop, err)
	}
	atomic.AddInt64(&l.receiveWindows, 1)
	return l.config.ReceiveDelay, nil
}

// send idles the radio, runs prepare and transmits payload.
func (l *Link) send(prepare func() error, payload []byte) error {
	if err := l.radio.Idle(); err != nil {
		return fmt.Errorf("idle before transmit: %w", err)
	}
	if err := prepare(); err != nil {
		return fmt.Errorf("prepare transmit: %w", err)
	}
	if err := l.radio.Transmit(payload); err != nil {
		return fmt.Errorf("transmit: %w", err)
	}
	return nil
}

// schedule must be called with l.mu held.
func (l *Link) schedule(d time.Duration) {
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = l.sched.AfterFunc(d, l.Tick)
}

// Stop cancels the pending callback. The link cannot be restarted.
func (l *Link) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.session.State = StateStopped
}

// Snapshot returns a copy of the session.
func (l *Link) Snapshot() Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session
}

// Err returns the most recent tick or bring-up error.
func (l *Link) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Metrics returns current operational metrics
func (l *Link) Metrics() Metrics {
	return Metrics{
		BindFrames:      atomic.LoadInt64(&l.bindFrames),
		NormalFrames:    atomic.LoadInt64(&l.normalFrames),
		ReceiveWindows:  atomic.LoadInt64(&l.receiveWindows),
		Errors:          atomic.LoadInt64(&l.tickErrors),
		CalibrationRuns: atomic.LoadInt64(&l.calibrationRuns),
		LastTickLatency: time.Duration(atomic.LoadInt64(&l.lastTickLatency)),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
