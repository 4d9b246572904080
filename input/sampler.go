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

package input

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-cc2500"
	"periph.io/x/conn/v3/analog"
)

// DefaultSampleInterval is the delay between conversions in Run.
const DefaultSampleInterval = 500 * time.Microsecond

// ErrNoPins is returned by NewSampler without any ADC pins.
var ErrNoPins = errors.New("no ADC pins")

// Source supplies channel values. It matches link.ChannelSource.
type Source interface {
	ChannelValue(i int) uint16
}

// SamplerMetrics tracks conversion counters for a Sampler
type SamplerMetrics struct {
	Conversions int64 // Conversions performed
	Discarded   int64 // Conversions dropped as possibly stale
	Errors      int64 // Failed conversions
}

// Sampler reads ADC pins round-robin. After switching to a pin it throws
// away the first conversion and keeps the second, since the first can still
// hold the previous pin's value.
type Sampler struct {
	fallback Source
	pins     []analog.PinADC
	values   [Channels]atomic.Uint32
	ranges   []sampleRange

	// next and takeNext are owned by the goroutine calling Step
	next     int
	takeNext bool

	conversions atomic.Int64
	discarded   atomic.Int64
	failures    atomic.Int64
}

type sampleRange struct {
	min, max int32
}

// NewSampler creates a sampler for pins mapped to channels 0..len(pins)-1.
// Channels without a pin read from fallback; a nil fallback reads as Centered.
func NewSampler(fallback Source, pins ...analog.PinADC) (*Sampler, error) {
	if len(pins) == 0 {
		return nil, ErrNoPins
	}
	if len(pins) > Channels {
		return nil, fmt.Errorf("%w: %d ADC pins for %d channels", cc2500.ErrInvalidParameter, len(pins), Channels)
	}
	if fallback == nil {
		fallback = Centered()
	}

	s := &Sampler{
		fallback: fallback,
		pins:     pins,
		ranges:   make([]sampleRange, len(pins)),
	}
	for i, p := range pins {
		lo, hi := p.Range()
		s.ranges[i] = sampleRange{min: lo.Raw, max: hi.Raw}
		s.values[i].Store(uint32(fallback.ChannelValue(i)))
	}
	return s, nil
}

// Step performs one conversion on the current pin.
func (s *Sampler) Step() error {
	idx := s.next
	sample, err := s.pins[idx].Read()
	s.conversions.Add(1)
	if err != nil {
		s.failures.Add(1)
		return fmt.Errorf("read ADC pin %s: %w", s.pins[idx], err)
	}

	if s.takeNext {
		s.values[idx].Store(uint32(s.ranges[idx].scale(sample.Raw)))
		s.next = (idx + 1) % len(s.pins)
	} else {
		s.discarded.Add(1)
	}
	s.takeNext = !s.takeNext
	return nil
}

// Run calls Step every interval until ctx ends. Conversion errors are
// logged and sampling continues.
func (s *Sampler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Step(); err != nil {
				cc2500.Debugf("adc sampler: %v", err)
			}
		}
	}
}

// ChannelValue returns the latest kept conversion for channel i.
func (s *Sampler) ChannelValue(i int) uint16 {
	if i < 0 || i >= Channels {
		return 0
	}
	if i >= len(s.pins) {
		return s.fallback.ChannelValue(i)
	}
	return uint16(s.values[i].Load())
}

// Metrics returns current conversion counters
func (s *Sampler) Metrics() SamplerMetrics {
	return SamplerMetrics{
		Conversions: s.conversions.Load(),
		Discarded:   s.discarded.Load(),
		Errors:      s.failures.Load(),
	}
}

// scale maps raw onto 0..MaxValue. Out of range samples are clamped.
func (r sampleRange) scale(raw int32) uint16 {
	if r.max <= r.min {
		return uint16(min(max(raw, 0), MaxValue))
	}
	raw = min(max(raw, r.min), r.max)
	return uint16(int64(raw-r.min) * MaxValue / int64(r.max-r.min))
}
