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

import "fmt"

// MaxPowerLevel is the highest index into the PA table.
const MaxPowerLevel = 7

// paTable maps power levels 0..7 to PATABLE settings, lowest to highest.
var paTable = [MaxPowerLevel + 1]byte{0xC5, 0x97, 0x6E, 0x7F, 0xA9, 0xBB, 0xFE, 0xFF}

func clampPower(level int) int {
	switch {
	case level < 0:
		return 0
	case level > MaxPowerLevel:
		return MaxPowerLevel
	default:
		return level
	}
}

// PowerSetting returns the PATABLE value for a power level. Levels above
// MaxPowerLevel are clamped.
func PowerSetting(level int) byte {
	return paTable[clampPower(level)]
}

// SetPower writes the PATABLE entry for the given power level.
func (d *Device) SetPower(level int) error {
	if err := d.transport.WriteRegister(RegPATABLE, PowerSetting(level)); err != nil {
		return fmt.Errorf("set power level %d: %w", level, err)
	}
	return nil
}
