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

// Package identity supplies the transmitter identity used for hopping and
// frame addressing.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-cc2500"
)

// ErrNotFound is returned by a source that holds no identity.
var ErrNotFound = errors.New("identity not found")

// Source provides the transmitter identity. It is read once at bring-up.
type Source interface {
	Identity(ctx context.Context) (cc2500.Identity, error)
}

// Fixed is a source that always returns the same identity.
type Fixed cc2500.Identity

// Placeholder returns the identity used before a transmitter is bound.
func Placeholder() Fixed {
	return Fixed(cc2500.PlaceholderIdentity)
}

// Identity implements Source.
func (f Fixed) Identity(ctx context.Context) (cc2500.Identity, error) {
	if err := ctx.Err(); err != nil {
		return cc2500.Identity{}, err
	}
	return cc2500.Identity(f), nil
}

// Fallback tries each source in order and returns the first identity found.
// A source failing with ErrNotFound is skipped; any other error is returned.
type Fallback []Source

// Identity implements Source.
func (f Fallback) Identity(ctx context.Context) (cc2500.Identity, error) {
	for _, src := range f {
		id, err := src.Identity(ctx)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return cc2500.Identity{}, err
		}
		cc2500.Debugf("identity source %T: %v", src, err)
	}
	return cc2500.Identity{}, fmt.Errorf("%w: tried %d sources", ErrNotFound, len(f))
}
