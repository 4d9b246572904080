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

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Pins are the control lines around the radio. Any of them may be nil
// when the board ties the line off.
type Pins struct {
	// PA enables the external power amplifier (high = transmit)
	PA gpio.PinOut
	// CE enables the chip (driven high at bring-up)
	CE gpio.PinOut
	// IRQ is the GDO0 interrupt line
	IRQ gpio.PinIn
}

func (p Pins) setup() error {
	if p.PA != nil {
		if err := p.PA.Out(gpio.Low); err != nil {
			return fmt.Errorf("configure PA pin %s: %w", p.PA, err)
		}
	}
	if p.CE != nil {
		if err := p.CE.Out(gpio.High); err != nil {
			return fmt.Errorf("configure CE pin %s: %w", p.CE, err)
		}
	}
	if p.IRQ != nil {
		if err := p.IRQ.In(gpio.Float, gpio.RisingEdge); err != nil {
			return fmt.Errorf("configure IRQ pin %s: %w", p.IRQ, err)
		}
	}
	return nil
}

func (p Pins) amplifier(on bool) error {
	if p.PA == nil {
		return nil
	}
	if err := p.PA.Out(gpio.Level(on)); err != nil {
		return fmt.Errorf("drive PA pin %s: %w", p.PA, err)
	}
	return nil
}

// interruptPoll bounds each edge wait so WatchInterrupts notices ctx.
const interruptPoll = 100 * time.Millisecond

// WatchInterrupts calls HandleInterrupt on every rising IRQ edge until ctx
// ends. It returns at once when no IRQ pin is attached.
func (d *Device) WatchInterrupts(ctx context.Context) {
	if d.pins.IRQ == nil {
		return
	}
	for ctx.Err() == nil {
		if d.pins.IRQ.WaitForEdge(interruptPoll) {
			d.HandleInterrupt()
		}
	}
}
