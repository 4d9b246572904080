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
	"github.com/ZaparooProject/go-cc2500"
	"github.com/ZaparooProject/go-cc2500/internal/frame"
)

// State is the sequencer's current phase
type State int

const (
	StateIdle State = iota
	StateCalibrating
	StateBindAdvertising
	StateTransmit
	StateReceiveWindow
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCalibrating:
		return "calibrating"
	case StateBindAdvertising:
		return "bind"
	case StateTransmit:
		return "transmit"
	case StateReceiveWindow:
		return "receive-window"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session is the mutable state carried through the callback chain
type Session struct {
	State      State
	Hop        cc2500.HopIndex
	ChanSkip   byte
	ReceiverID byte
	BindCount  int
	BindCursor frame.BindCursor
}

// Bound reports whether bind advertising has finished.
func (s *Session) Bound() bool {
	return s.State == StateTransmit || s.State == StateReceiveWindow
}
