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
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ZaparooProject/go-cc2500"
	"github.com/ZaparooProject/go-cc2500/input"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// pinNames are periph GPIO names, e.g. "GPIO17".
type pinNames struct {
	PA  string `yaml:"pa"`
	CE  string `yaml:"ce"`
	IRQ string `yaml:"irq"`
}

// settings is the merged result of the config file and the command line.
type settings struct {
	Transport     string        `yaml:"transport"`
	Port          string        `yaml:"port"`
	IdentityFile  string        `yaml:"identity_file"`
	SessionLog    string        `yaml:"session_log"`
	Pins          pinNames      `yaml:"pins"`
	Channels      []uint16      `yaml:"channels"`
	StatsInterval time.Duration `yaml:"stats_interval"`
	Duration      time.Duration `yaml:"duration"`
	Power         int           `yaml:"power"`
	BindPackets   int           `yaml:"bind_packets"`
	ChanSkip      byte          `yaml:"chanskip"`
	ReceiverID    byte          `yaml:"receiver"`
	Debug         bool          `yaml:"debug"`
	LockMemory    bool          `yaml:"lock_memory"`
}

func defaultSettings() *settings {
	return &settings{
		Transport:     "auto",
		Power:         cc2500.MaxPowerLevel,
		BindPackets:   500,
		ChanSkip:      1,
		StatsInterval: 5 * time.Second,
		LockMemory:    true,
	}
}

// loadConfigFile overlays the YAML file at path onto s.
func loadConfigFile(path string, s *settings) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// parseArgs builds settings from defaults, then the config file, then any
// flags given explicitly.
func parseArgs(args []string) (*settings, error) {
	fs := pflag.NewFlagSet("cc2500tx", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "YAML configuration file")
	transport := fs.StringP("transport", "t", "auto", "Transport: auto, spi or uart")
	port := fs.StringP("port", "p", "", "SPI port or serial device (auto-detect if empty)")
	identityFile := fs.StringP("identity", "i", "", "Identity file written after binding")
	power := fs.Int("power", cc2500.MaxPowerLevel, "Transmit power level (0-7)")
	chanSkip := fs.Uint8("chanskip", 1, "Hop stride advertised to the receiver")
	receiver := fs.Uint8("receiver", 0, "Receiver model slot")
	bindPackets := fs.Int("bind-packets", 500, "Bind frames sent before normal operation")
	stats := fs.Duration("stats", 5*time.Second, "Interval between link statistics lines")
	duration := fs.Duration("duration", 0, "Stop after this long (0 = until interrupted)")
	sessionLog := fs.String("session-log", "", "Write debug output to this rotating log file")
	debug := fs.BoolP("debug", "d", false, "Enable debug output")
	noLock := fs.Bool("no-mlock", false, "Do not lock process memory")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	s := defaultSettings()
	if *configPath != "" {
		if err := loadConfigFile(*configPath, s); err != nil {
			return nil, err
		}
	}

	if fs.Changed("transport") {
		s.Transport = *transport
	}
	if fs.Changed("port") {
		s.Port = *port
	}
	if fs.Changed("identity") {
		s.IdentityFile = *identityFile
	}
	if fs.Changed("power") {
		s.Power = *power
	}
	if fs.Changed("chanskip") {
		s.ChanSkip = *chanSkip
	}
	if fs.Changed("receiver") {
		s.ReceiverID = *receiver
	}
	if fs.Changed("bind-packets") {
		s.BindPackets = *bindPackets
	}
	if fs.Changed("stats") {
		s.StatsInterval = *stats
	}
	if fs.Changed("duration") {
		s.Duration = *duration
	}
	if fs.Changed("session-log") {
		s.SessionLog = *sessionLog
	}
	if fs.Changed("debug") {
		s.Debug = *debug
	}
	if *noLock {
		s.LockMemory = false
	}

	return s, s.validate()
}

func (s *settings) validate() error {
	switch s.Transport {
	case "auto", "spi", "uart":
	default:
		return fmt.Errorf("unsupported transport %q", s.Transport)
	}
	if s.Port != "" && s.Transport == "auto" {
		return errors.New("a port needs an explicit transport")
	}
	if s.Power < 0 || s.Power > cc2500.MaxPowerLevel {
		return fmt.Errorf("power %d out of range 0-%d", s.Power, cc2500.MaxPowerLevel)
	}
	if s.BindPackets < 0 {
		return fmt.Errorf("bind packets %d is negative", s.BindPackets)
	}
	if len(s.Channels) > input.Channels {
		return fmt.Errorf("%d channel values given, at most %d", len(s.Channels), input.Channels)
	}
	for i, v := range s.Channels {
		if v > input.MaxValue {
			return fmt.Errorf("channel %d value %d exceeds %d", i+1, v, input.MaxValue)
		}
	}
	if s.StatsInterval <= 0 {
		return errors.New("stats interval must be positive")
	}
	return nil
}

// inputs returns the static stick values; unset channels sit at center.
func (s *settings) inputs() input.Static {
	values := input.Centered()
	copy(values[:], s.Channels)
	return values
}
