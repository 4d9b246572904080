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

// Package spi detects CC2500 radios on SPI ports. Importing it registers
// the detector.
package spi

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ZaparooProject/go-cc2500"
	"github.com/ZaparooProject/go-cc2500/detection"
	"github.com/ZaparooProject/go-cc2500/transport/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// EnvPort names an SPI port to check before the registered ones.
const EnvPort = "CC2500_SPI_PORT"

// probeTimeout bounds the identity read on one port.
const probeTimeout = 2 * time.Second

// detector implements the Detector interface for SPI ports
type detector struct {
	ports func() []string
	open  func(name string) (cc2500.Transport, error)
}

// New creates a new SPI detector
func New() detection.Detector {
	return &detector{ports: hostPorts, open: openPort}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "spi"
}

// hostPorts lists the port from the environment followed by every port the
// periph host drivers registered.
func hostPorts() []string {
	var names []string
	if env := os.Getenv(EnvPort); env != "" {
		names = append(names, env)
	}
	if _, err := host.Init(); err != nil {
		cc2500.Debugf("spi detection: periph host init: %v", err)
		return names
	}
	for _, ref := range spireg.All() {
		names = append(names, ref.Name)
	}
	return deduplicate(names)
}

func openPort(name string) (cc2500.Transport, error) {
	return spi.New(name, 0)
}

func deduplicate(names []string) []string {
	seen := make(map[string]bool, len(names))
	var unique []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			unique = append(unique, n)
		}
	}
	return unique
}

// Detect searches for CC2500 radios on SPI ports
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	var devices []detection.DeviceInfo
	for _, name := range d.ports() {
		if ctx.Err() != nil {
			return devices, detection.ErrDetectionTimeout
		}
		if detection.IsPathIgnored(name, opts.IgnorePaths) {
			continue
		}

		info := detection.DeviceInfo{
			Transport:  "spi",
			Path:       name,
			Name:       fmt.Sprintf("SPI device %s", name),
			Confidence: detection.Low,
			Metadata:   make(map[string]string),
		}
		if opts.Mode == detection.Passive {
			devices = append(devices, info)
			continue
		}
		if d.probe(ctx, &info) {
			devices = append(devices, info)
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// probe opens the port and reads the chip identity once.
func (d *detector) probe(ctx context.Context, info *detection.DeviceInfo) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	t, err := d.open(info.Path)
	if err != nil {
		cc2500.Debugf("spi detection: open %s: %v", info.Path, err)
		return false
	}
	defer func() { _ = t.Close() }()

	ok, err := detection.Identify(probeCtx, t, info)
	if err != nil {
		cc2500.Debugf("spi detection: %v", err)
	}
	return ok
}
