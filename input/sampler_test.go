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
	"sync"
	"testing"
	"time"

	"github.com/ZaparooProject/go-cc2500"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
	"pgregory.net/rapid"
)

// fakeADC returns queued raw samples, repeating the last one when empty.
type fakeADC struct {
	err     error
	name    string
	samples []int32
	last    int32
	lo, hi  int32
	reads   int
	mu      sync.Mutex
}

func newFakeADC(name string, samples ...int32) *fakeADC {
	return &fakeADC{name: name, samples: samples, lo: 0, hi: 1023}
}

func (p *fakeADC) String() string { return p.name }
func (p *fakeADC) Name() string { return p.name }
func (*fakeADC) Number() int { return -1 }
func (*fakeADC) Function() string { return "ADC" }
func (*fakeADC) Halt() error { return nil }
func (p *fakeADC) Range() (analog.Sample, analog.Sample) {
	return analog.Sample{Raw: p.lo, V: 0}, analog.Sample{Raw: p.hi, V: 3300 * physic.MilliVolt}
}

func (p *fakeADC) Read() (analog.Sample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reads++
	if p.err != nil {
		return analog.Sample{}, p.err
	}
	if len(p.samples) > 0 {
		p.last = p.samples[0]
		p.samples = p.samples[1:]
	}
	return analog.Sample{Raw: p.last}, nil
}

func (p *fakeADC) Reads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}

func TestStatic(t *testing.T) {
	t.Parallel()
	s := Static{1, 2, 3, 4, 5, 6, 7, 8}

	assert.Equal(t, uint16(1), s.ChannelValue(0))
	assert.Equal(t, uint16(8), s.ChannelValue(7))
	assert.Zero(t, s.ChannelValue(-1))
	assert.Zero(t, s.ChannelValue(8))

	c := Centered()
	for i := range Channels {
		assert.Equal(t, uint16(0x800), c.ChannelValue(i))
	}
}

func TestNewSampler(t *testing.T) {
	t.Parallel()

	_, err := NewSampler(nil)
	require.ErrorIs(t, err, ErrNoPins)

	pins := make([]analog.PinADC, Channels+1)
	for i := range pins {
		pins[i] = newFakeADC("A")
	}
	_, err = NewSampler(nil, pins...)
	require.ErrorIs(t, err, cc2500.ErrInvalidParameter)

	s, err := NewSampler(Static{9, 9, 9, 9, 42, 43, 44, 45}, newFakeADC("A0"))
	require.NoError(t, err)
	assert.Equal(t, uint16(9), s.ChannelValue(0), "seeded from fallback")
	assert.Equal(t, uint16(42), s.ChannelValue(4))
	assert.Zero(t, s.ChannelValue(Channels))
}

func TestSamplerDiscardsAlternateConversions(t *testing.T) {
	t.Parallel()
	a0 := newFakeADC("A0", 1, 1023, 2, 0)
	a1 := newFakeADC("A1", 7, 512, 8, 256)
	s, err := NewSampler(nil, a0, a1)
	require.NoError(t, err)

	// discard a0, keep a0, discard a1, keep a1
	for range 4 {
		require.NoError(t, s.Step())
	}
	assert.Equal(t, uint16(MaxValue), s.ChannelValue(0))
	assert.Equal(t, uint16(512*MaxValue/1023), s.ChannelValue(1))
	assert.Equal(t, 2, a0.Reads())
	assert.Equal(t, 2, a1.Reads())

	for range 4 {
		require.NoError(t, s.Step())
	}
	assert.Zero(t, s.ChannelValue(0))
	assert.Equal(t, uint16(256*MaxValue/1023), s.ChannelValue(1))

	m := s.Metrics()
	assert.Equal(t, int64(8), m.Conversions)
	assert.Equal(t, int64(4), m.Discarded)
	assert.Zero(t, m.Errors)
	assert.Equal(t, uint16(0x800), s.ChannelValue(2))
}

func TestSamplerReadError(t *testing.T) {
	t.Parallel()
	a0 := newFakeADC("A0", 100, 200)
	a0.err = errors.New("conversion timeout")
	s, err := NewSampler(nil, a0)
	require.NoError(t, err)

	err = s.Step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A0")
	assert.Equal(t, int64(1), s.Metrics().Errors)
	assert.Equal(t, uint16(0x800), s.ChannelValue(0))

	a0.mu.Lock()
	a0.err = nil
	a0.mu.Unlock()
	require.NoError(t, s.Step())
	require.NoError(t, s.Step())
	assert.Equal(t, uint16(200*MaxValue/1023), s.ChannelValue(0))
}

func TestSampleRangeScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    sampleRange
		raw  int32
		want uint16
	}{
		{name: "min", r: sampleRange{0, 1023}, raw: 0, want: 0},
		{name: "max", r: sampleRange{0, 1023}, raw: 1023, want: MaxValue},
		{name: "below", r: sampleRange{100, 200}, raw: 50, want: 0},
		{name: "above", r: sampleRange{100, 200}, raw: 500, want: MaxValue},
		{name: "degenerate passes raw", r: sampleRange{}, raw: 1234, want: 1234},
		{name: "degenerate clamps", r: sampleRange{}, raw: 99999, want: MaxValue},
		{name: "degenerate negative", r: sampleRange{}, raw: -5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.r.scale(tt.raw))
		})
	}
}

func TestSampleRangeScaleBounded(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.Int32Range(-1<<20, 1<<20).Draw(t, "lo")
		hi := rapid.Int32Range(-1<<20, 1<<20).Draw(t, "hi")
		raw := rapid.Int32().Draw(t, "raw")
		v := sampleRange{min: lo, max: hi}.scale(raw)
		if v > MaxValue {
			t.Fatalf("scaled %d out of range", v)
		}
	})
}

func TestSamplerRun(t *testing.T) {
	t.Parallel()
	a0 := newFakeADC("A0", 0, 1023)
	s, err := NewSampler(nil, a0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 100*time.Microsecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return s.ChannelValue(0) == MaxValue
	}, time.Second, time.Millisecond)
	cancel()
	<-done
	assert.GreaterOrEqual(t, s.Metrics().Conversions, int64(2))
}
