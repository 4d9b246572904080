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

package identity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ZaparooProject/go-cc2500"
	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk layout of an identity file:
//
//	identity:
//	  id0: 15
//	  id1: 20
type fileFormat struct {
	Identity *cc2500.Identity `yaml:"identity"`
}

// File reads the identity from a YAML file. The file is never written.
type File struct {
	Path string
}

// Identity implements Source.
func (f File) Identity(ctx context.Context) (cc2500.Identity, error) {
	if err := ctx.Err(); err != nil {
		return cc2500.Identity{}, err
	}

	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return cc2500.Identity{}, fmt.Errorf("%w: %s", ErrNotFound, f.Path)
	}
	if err != nil {
		return cc2500.Identity{}, fmt.Errorf("read identity file: %w", err)
	}
	return Parse(data)
}

// Parse decodes an identity document. Unknown keys are rejected.
func Parse(data []byte) (cc2500.Identity, error) {
	var doc fileFormat
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return cc2500.Identity{}, fmt.Errorf("parse identity: %w", err)
	}
	if doc.Identity == nil {
		return cc2500.Identity{}, fmt.Errorf("%w: no identity key", ErrNotFound)
	}
	return *doc.Identity, nil
}

// Marshal encodes id in the layout File reads.
func Marshal(id cc2500.Identity) ([]byte, error) {
	out, err := yaml.Marshal(fileFormat{Identity: &id})
	if err != nil {
		return nil, fmt.Errorf("marshal identity: %w", err)
	}
	return out, nil
}
