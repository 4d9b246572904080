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

//go:build !prod

package cc2500

import (
	"fmt"
	"testing"
	"time"

	virt "github.com/ZaparooProject/go-cc2500/internal/testing"
	"github.com/stretchr/testify/require"
)

// newSimDevice creates a device backed by the register-level simulator
// with fast probing.
func newSimDevice(t *testing.T, opts ...Option) (*Device, *virt.VirtualCC2500) {
	t.Helper()
	sim := virt.NewVirtualCC2500()
	opts = append([]Option{WithProbe(time.Millisecond, 3)}, opts...)
	device, err := New(virt.NewSimulatorTransport(sim), opts...)
	require.NoError(t, err)
	return device, sim
}

// newMockDevice creates a device with a recording mock transport.
func newMockDevice(t *testing.T, opts ...Option) (*Device, *MockTransport) {
	t.Helper()
	mock := NewMockTransport()
	opts = append([]Option{WithProbe(time.Millisecond, 3)}, opts...)
	device, err := New(mock, opts...)
	require.NoError(t, err)
	return device, mock
}

// diagRecorder collects diagnostics emitted by a device.
type diagRecorder struct {
	messages []string
}

func (r *diagRecorder) record(format string, args ...any) {
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
}
