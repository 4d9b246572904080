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

// Command cc2500tx runs a CC2500 transmitter link: it binds to a receiver
// and then streams fixed stick values until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZaparooProject/go-cc2500"
	"github.com/ZaparooProject/go-cc2500/identity"
	"github.com/ZaparooProject/go-cc2500/link"
	"github.com/charmbracelet/log"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "cc2500tx",
	})

	s, err := parseArgs(os.Args[1:])
	if err != nil {
		logger.Fatal("invalid arguments", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if s.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Duration)
		defer cancel()
	}

	if err := run(ctx, s, logger); err != nil {
		logger.Error("transmitter stopped", "err", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already ran
	}
}

func run(ctx context.Context, s *settings, logger *log.Logger) error {
	if s.Debug {
		logger.SetLevel(log.DebugLevel)
		cc2500.SetDebugEnabled(true)
	}
	if s.SessionLog != "" {
		path, err := cc2500.InitSessionLog(s.SessionLog)
		if err != nil {
			return err
		}
		defer func() { _ = cc2500.CloseSessionLog() }()
		logger.Info("session log", "path", path)
	}
	if s.LockMemory {
		if err := lockMemory(); err != nil {
			logger.Warn("memory lock unavailable", "err", err)
		}
	}

	transport, err := openTransport(ctx, s, logger)
	if err != nil {
		return err
	}
	return runLink(ctx, transport, s, logger)
}

// runLink brings the radio up over transport and runs the link until ctx
// ends or a fatal transport error is reported. It closes transport.
func runLink(ctx context.Context, transport cc2500.Transport, s *settings, logger *log.Logger) error {
	pins, err := lookupPins(s.Pins)
	if err != nil {
		_ = transport.Close()
		return err
	}
	return runRadio(ctx, transport, pins, s, logger)
}

// runRadio is runLink with the GPIO lines already resolved.
func runRadio(ctx context.Context, transport cc2500.Transport, pins cc2500.Pins, s *settings, logger *log.Logger) error {
	device, err := cc2500.New(transport,
		cc2500.WithPower(s.Power),
		cc2500.WithPins(pins),
		cc2500.WithDiagnostic(logger.Warnf),
	)
	if err != nil {
		_ = transport.Close()
		return err
	}
	defer func() {
		if err := device.Close(); err != nil {
			logger.Warn("close radio", "err", err)
		}
	}()

	if err := device.Init(ctx); err != nil {
		return fmt.Errorf("bring up radio: %w", err)
	}
	if pins.IRQ != nil {
		watchCtx, stopWatch := context.WithCancel(ctx)
		watching := make(chan struct{})
		go func() {
			defer close(watching)
			device.WatchInterrupts(watchCtx)
		}()
		defer func() {
			stopWatch()
			<-watching
		}()
	}

	id, err := identitySource(s).Identity(ctx)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}

	cfg := link.DefaultConfig()
	cfg.Identity = id
	cfg.ChanSkip = s.ChanSkip
	cfg.ReceiverID = s.ReceiverID
	cfg.BindPackets = s.BindPackets

	lnk, err := link.New(device, s.inputs(), cfg, link.WithDiagnostic(logger.Warnf))
	if err != nil {
		return err
	}
	if err := lnk.Start(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return fmt.Errorf("start link: %w", err)
	}
	defer lnk.Stop()

	table := lnk.HoppingTable()
	logger.Info("link started", "id0", id.ID0, "id1", id.ID1, "receiver", s.ReceiverID, "hops", fmt.Sprintf("% d", table[:]))
	return monitor(ctx, lnk, device, s.StatsInterval, logger)
}

func identitySource(s *settings) identity.Source {
	if s.IdentityFile == "" {
		return identity.Placeholder()
	}
	return identity.Fallback{identity.File{Path: s.IdentityFile}, identity.Placeholder()}
}

// monitor logs link statistics until ctx ends or the link reports a
// fatal error.
func monitor(ctx context.Context, lnk *link.Link, device *cc2500.Device, interval time.Duration, logger *log.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bound := false
	for {
		select {
		case <-ctx.Done():
			m := lnk.Metrics()
			logger.Info("link stopped",
				"bind", m.BindFrames,
				"normal", m.NormalFrames,
				"errors", m.Errors,
				"interrupts", device.Interrupts(),
			)
			return nil
		case <-ticker.C:
			m := lnk.Metrics()
			session := lnk.Snapshot()
			if !bound && session.Bound() {
				bound = true
				logger.Info("bind advertising finished", "bind", m.BindFrames, "receiver", session.ReceiverID)
			}
			logger.Info("link",
				"state", session.State,
				"bind", m.BindFrames,
				"normal", m.NormalFrames,
				"windows", m.ReceiveWindows,
				"errors", m.Errors,
				"latency", m.LastTickLatency,
			)
			if err := lnk.Err(); err != nil && cc2500.IsFatal(err) {
				return fmt.Errorf("link failed: %w", err)
			}
		}
	}
}
