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

package detection

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/go-cc2500"
)

// Identify reads PARTNUM and VERSION through t once and
// records them in info. It reports whether the chip is a CC2500; a match
// raises info's confidence to High.
func Identify(ctx context.Context, t cc2500.Transport, info *DeviceInfo) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("identify %s: %w", info.Path, err)
	}

	device, err := cc2500.New(t)
	if err != nil {
		return false, err
	}
	partNum, version, err := device.ReadIdentity()
	if err != nil {
		return false, fmt.Errorf("identify %s: %w", info.Path, err)
	}

	if info.Metadata == nil {
		info.Metadata = make(map[string]string)
	}
	info.Metadata["partnum"] = fmt.Sprintf("0x%02X", partNum)
	info.Metadata["version"] = fmt.Sprintf("0x%02X", version)

	if partNum != cc2500.ExpectedPartNum || version != cc2500.ExpectedVersion {
		return false, nil
	}
	info.Confidence = High
	return true, nil
}
