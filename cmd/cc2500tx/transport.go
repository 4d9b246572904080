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

package main

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/go-cc2500"
	"github.com/ZaparooProject/go-cc2500/detection"
	_ "github.com/ZaparooProject/go-cc2500/detection/spi"
	_ "github.com/ZaparooProject/go-cc2500/detection/uart"
	"github.com/ZaparooProject/go-cc2500/transport/spi"
	"github.com/ZaparooProject/go-cc2500/transport/uart"
	"github.com/charmbracelet/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// openTransport opens the configured port, or the best detected radio
// when none is given.
func openTransport(ctx context.Context, s *settings, logger *log.Logger) (cc2500.Transport, error) {
	if s.Port != "" {
		return openPort(s.Transport, s.Port)
	}

	logger.Info("detecting CC2500 radios")
	opts := detection.DefaultOptions()
	if s.Transport != "auto" {
		opts.Transports = []string{s.Transport}
	}
	devices, err := detection.DetectAll(ctx, &opts)
	if err != nil {
		return nil, fmt.Errorf("detect radio: %w", err)
	}

	best := devices[0]
	for _, d := range devices[1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	logger.Info("using detected radio", "device", best.String())
	return openPort(best.Transport, best.Path)
}

func openPort(kind, port string) (cc2500.Transport, error) {
	switch kind {
	case "spi":
		t, err := spi.New(port, spi.DefaultFrequency)
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return t, nil
	case "uart":
		t, err := uart.New(port)
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport: %w", err)
		}
		if err := t.Ping(); err != nil {
			_ = t.Close()
			return nil, fmt.Errorf("no bridge on %s: %w", port, err)
		}
		return cc2500.NewTransportWithRetry(t, nil), nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", kind)
	}
}

// lookupPins resolves the configured GPIO names. Unset names stay nil.
func lookupPins(names pinNames) (cc2500.Pins, error) {
	var pins cc2500.Pins
	if names == (pinNames{}) {
		return pins, nil
	}
	if _, err := host.Init(); err != nil {
		return pins, fmt.Errorf("init host drivers: %w", err)
	}

	lookup := func(role, name string) (gpio.PinIO, error) {
		if name == "" {
			return nil, nil
		}
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("%s pin %q not found", role, name)
		}
		return p, nil
	}

	var err error
	if pins.PA, err = lookup("PA", names.PA); err != nil {
		return pins, err
	}
	if pins.CE, err = lookup("CE", names.CE); err != nil {
		return pins, err
	}
	if pins.IRQ, err = lookup("IRQ", names.IRQ); err != nil {
		return pins, err
	}
	return pins, nil
}
