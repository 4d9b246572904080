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

// Package uart detects CC2500 register bridges on serial ports. Importing
// it registers the detector.
package uart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ZaparooProject/go-cc2500"
	"github.com/ZaparooProject/go-cc2500/detection"
	"github.com/ZaparooProject/go-cc2500/transport/uart"
	"go.bug.st/serial/enumerator"
)

// probeTimeout bounds the ping and identity read on one port.
const probeTimeout = 2 * time.Second

// serialPort represents a serial port with metadata
type serialPort struct {
	Path         string
	Name         string
	VIDPID       string
	Product      string
	SerialNumber string
	IsUSB        bool
}

// knownAdapters are USB-serial chips commonly fitted to bridge boards.
var knownAdapters = []string{
	"1A86:7523", // QinHeng CH340
	"10C4:EA60", // Silicon Labs CP210x
	"0403:6001", // FTDI FT232R
	"067B:2303", // Prolific PL2303
	"2341:0043", // Arduino Uno
}

// detector implements the Detector interface for serial bridges
type detector struct {
	enumerate func() ([]serialPort, error)
	probe     func(ctx context.Context, info *detection.DeviceInfo) bool
}

// New creates a new UART detector
func New() detection.Detector {
	return &detector{enumerate: enumeratePorts, probe: probeBridge}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "uart"
}

func enumeratePorts() ([]serialPort, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	ports := make([]serialPort, 0, len(details))
	for _, p := range details {
		ports = append(ports, serialPort{
			Path:         p.Name,
			Name:         p.Name,
			VIDPID:       detection.FormatVIDPID(p.VID, p.PID),
			Product:      p.Product,
			SerialNumber: p.SerialNumber,
			IsUSB:        p.IsUSB,
		})
	}
	return ports, nil
}

// isLikelyBridge reports whether a port looks like a bridge adapter.
func isLikelyBridge(port *serialPort) bool {
	for _, known := range knownAdapters {
		if port.VIDPID == known {
			return true
		}
	}
	product := strings.ToLower(port.Product)
	return strings.Contains(product, "cc2500") || strings.Contains(product, "bridge")
}

// Detect searches for register bridges on serial ports
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := d.enumerate()
	if err != nil {
		return nil, err
	}

	var devices []detection.DeviceInfo
	for i := range ports {
		if ctx.Err() != nil {
			return devices, detection.ErrDetectionTimeout
		}
		if info, ok := d.processPort(ctx, &ports[i], opts); ok {
			devices = append(devices, info)
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// processPort handles a single port's detection logic
func (d *detector) processPort(ctx context.Context, port *serialPort, opts *detection.Options) (detection.DeviceInfo, bool) {
	if port.VIDPID != "" && detection.IsBlocked(port.VIDPID, opts.Blocklist) {
		return detection.DeviceInfo{}, false
	}
	if detection.IsPathIgnored(port.Path, opts.IgnorePaths) {
		return detection.DeviceInfo{}, false
	}

	likely := isLikelyBridge(port)
	info := createDeviceInfo(port, likely)

	switch opts.Mode {
	case detection.Passive:
		return info, likely
	case detection.Safe:
		// only USB adapters are probed; built-in UARTs may be consoles
		if !port.IsUSB && !likely {
			return detection.DeviceInfo{}, false
		}
		return info, d.probe(ctx, &info)
	default:
		return detection.DeviceInfo{}, false
	}
}

func createDeviceInfo(port *serialPort, likely bool) detection.DeviceInfo {
	info := detection.DeviceInfo{
		Transport:  "uart",
		Path:       port.Path,
		Name:       port.Name,
		Confidence: detection.Low,
		Metadata:   make(map[string]string),
	}
	if likely {
		info.Confidence = detection.Medium
	}
	if port.VIDPID != "" {
		info.Metadata["vidpid"] = port.VIDPID
	}
	if port.Product != "" {
		info.Metadata["product"] = port.Product
	}
	if port.SerialNumber != "" {
		info.Metadata["serial"] = port.SerialNumber
	}
	return info
}

// probeBridge pings the bridge and reads the chip identity, once each.
func probeBridge(ctx context.Context, info *detection.DeviceInfo) bool {
	t, err := uart.New(info.Path)
	if err != nil {
		cc2500.Debugf("uart detection: %v", err)
		return false
	}
	defer func() { _ = t.Close() }()

	return confirm(ctx, t, info)
}

// confirm pings t and identifies the chip behind it.
func confirm(ctx context.Context, t *uart.Transport, info *detection.DeviceInfo) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := t.Ping(); err != nil {
		cc2500.Debugf("uart detection: ping %s: %v", info.Path, err)
		return false
	}
	ok, err := detection.Identify(probeCtx, t, info)
	if err != nil {
		cc2500.Debugf("uart detection: %v", err)
	}
	return ok
}
