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

// Register access flags OR-ed into the header byte of every SPI transaction.
const (
	FlagWriteSingle byte = 0x00
	FlagWriteBurst  byte = 0x40
	FlagReadSingle  byte = 0x80
	FlagReadBurst   byte = 0xC0

	// AddressMask keeps the register address bits of a header byte.
	AddressMask byte = 0x3F
)

// Configuration registers
const (
	RegIOCFG2   byte = 0x00
	RegIOCFG1   byte = 0x01
	RegIOCFG0   byte = 0x02
	RegFIFOTHR  byte = 0x03
	RegSYNC1    byte = 0x04
	RegSYNC0    byte = 0x05
	RegPKTLEN   byte = 0x06
	RegPKTCTRL1 byte = 0x07
	RegPKTCTRL0 byte = 0x08
	RegADDR     byte = 0x09
	RegCHANNR   byte = 0x0A
	RegFSCTRL1  byte = 0x0B
	RegFSCTRL0  byte = 0x0C
	RegFREQ2    byte = 0x0D
	RegFREQ1    byte = 0x0E
	RegFREQ0    byte = 0x0F
	RegMDMCFG4  byte = 0x10
	RegMDMCFG3  byte = 0x11
	RegMDMCFG2  byte = 0x12
	RegMDMCFG1  byte = 0x13
	RegMDMCFG0  byte = 0x14
	RegDEVIATN  byte = 0x15
	RegMCSM2    byte = 0x16
	RegMCSM1    byte = 0x17
	RegMCSM0    byte = 0x18
	RegFOCCFG   byte = 0x19
	RegBSCFG    byte = 0x1A
	RegAGCCTRL2 byte = 0x1B
	RegAGCCTRL1 byte = 0x1C
	RegAGCCTRL0 byte = 0x1D
	RegWOREVT1  byte = 0x1E
	RegWOREVT0  byte = 0x1F
	RegWORCTRL  byte = 0x20
	RegFREND1   byte = 0x21
	RegFREND0   byte = 0x22
	RegFSCAL3   byte = 0x23
	RegFSCAL2   byte = 0x24
	RegFSCAL1   byte = 0x25
	RegFSCAL0   byte = 0x26
	RegRCCTRL1  byte = 0x27
	RegRCCTRL0  byte = 0x28
	RegFSTEST   byte = 0x29
	RegPTEST    byte = 0x2A
	RegAGCTEST  byte = 0x2B
	RegTEST2    byte = 0x2C
	RegTEST1    byte = 0x2D
	RegTEST0    byte = 0x2E
)

// Status registers. They share addresses with the strobes and are only
// reachable with the burst bit set.
const (
	RegPARTNUM        byte = 0x30
	RegVERSION        byte = 0x31
	RegFREQEST        byte = 0x32
	RegLQI            byte = 0x33
	RegRSSI           byte = 0x34
	RegMARCSTATE      byte = 0x35
	RegWORTIME1       byte = 0x36
	RegWORTIME0       byte = 0x37
	RegPKTSTATUS      byte = 0x38
	RegVCOVCDACDAC    byte = 0x39
	RegTXBYTES        byte = 0x3A
	RegRXBYTES        byte = 0x3B
	RegPATABLE        byte = 0x3E
	RegFIFO           byte = 0x3F
	firstStatusReg    byte = RegPARTNUM
	lastStrobeAddress byte = StrobeSNOP
)

// Command strobes
const (
	StrobeSRES    byte = 0x30
	StrobeSFSTXON byte = 0x31
	StrobeSXOFF   byte = 0x32
	StrobeSCAL    byte = 0x33
	StrobeSRX     byte = 0x34
	StrobeSTX     byte = 0x35
	StrobeSIDLE   byte = 0x36
	StrobeSAFC    byte = 0x37
	StrobeSWOR    byte = 0x38
	StrobeSPWD    byte = 0x39
	StrobeSFRX    byte = 0x3A
	StrobeSFTX    byte = 0x3B
	StrobeSWORRST byte = 0x3C
	StrobeSNOP    byte = 0x3D
)

// Status byte fields returned with every strobe.
const (
	StatusChipNotReady byte = 0x80
	StatusStateMask    byte = 0x70
	StatusFIFOMask     byte = 0x0F
)

// ChipState is the main radio state encoded in the status byte.
type ChipState byte

// Chip states
const (
	StateIdle        ChipState = 0x00
	StateRX          ChipState = 0x10
	StateTX          ChipState = 0x20
	StateFSTXON      ChipState = 0x30
	StateCalibrate   ChipState = 0x40
	StateSettling    ChipState = 0x50
	StateRXOverflow  ChipState = 0x60
	StateTXUnderflow ChipState = 0x70
)

func (s ChipState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRX:
		return "RX"
	case StateTX:
		return "TX"
	case StateFSTXON:
		return "FSTXON"
	case StateCalibrate:
		return "CALIBRATE"
	case StateSettling:
		return "SETTLING"
	case StateRXOverflow:
		return "RX_OVERFLOW"
	case StateTXUnderflow:
		return "TX_UNDERFLOW"
	default:
		return "UNKNOWN"
	}
}

// Status decodes a strobe status byte.
type Status byte

// Ready reports whether the crystal is running and the chip accepts commands.
func (s Status) Ready() bool {
	return byte(s)&StatusChipNotReady == 0
}

// State returns the main radio state.
func (s Status) State() ChipState {
	return ChipState(byte(s) & StatusStateMask)
}

// Chip identity reported by the status registers.
const (
	ExpectedPartNum byte = 0x80
	ExpectedVersion byte = 0x03

	// resetFREQ1 is the value FREQ1 reads back after a clean reset.
	resetFREQ1 byte = 0xC4
)

// Addressing values written when switching between bind and normal operation.
const (
	addrFSCTRL0  byte = 0x00
	addrMCSM0    byte = 0x08
	addrBind     byte = 0x03
	addrPKTCTRL1 byte = 0x0D
	addrFOCCFG   byte = 0x16
)

// RegisterSetting is one register write of the radio configuration.
type RegisterSetting struct {
	Addr  byte
	Value byte
}

// radioConfig is written in this order on every bring-up. It selects the
// 2.4 GHz base frequency, modem settings and packet handling used by the link.
var radioConfig = []RegisterSetting{
	{RegIOCFG0, 0x01},
	{RegMCSM1, 0x0C},
	{RegMCSM0, 0x18},
	{RegPKTLEN, 0x1E},
	{RegPKTCTRL1, 0x04},
	{RegPKTCTRL0, 0x01},
	{RegPATABLE, 0xFF},
	{RegFSCTRL1, 0x0A},
	{RegFSCTRL0, 0x00},
	{RegFREQ2, 0x5C},
	{RegFREQ1, 0x76},
	{RegFREQ0, 0x27},
	{RegMDMCFG4, 0x7B},
	{RegMDMCFG3, 0x61},
	{RegMDMCFG2, 0x13},
	{RegMDMCFG1, 0x23},
	{RegMDMCFG0, 0x7A},
	{RegDEVIATN, 0x51},
	{RegFOCCFG, 0x16},
	{RegBSCFG, 0x6C},
	{RegAGCCTRL2, 0x03},
	{RegAGCCTRL1, 0x40},
	{RegAGCCTRL0, 0x91},
	{RegFREND1, 0x56},
	{RegFREND0, 0x10},
	{RegFSCAL3, 0xA9},
	{RegFSCAL2, 0x0A},
	{RegFSCAL1, 0x00},
	{RegFSCAL0, 0x11},
	{RegTEST2, 0x88},
	{RegTEST1, 0x31},
	{RegTEST0, 0x0B},
	{RegFIFOTHR, 0x07},
	{RegADDR, 0x00},
}

// RadioConfig returns a copy of the register table written during bring-up.
func RadioConfig() []RegisterSetting {
	out := make([]RegisterSetting, len(radioConfig))
	copy(out, radioConfig)
	return out
}

// IsStrobe reports whether a single (non-burst) access to addr is a command
// strobe rather than a register access.
func IsStrobe(addr byte) bool {
	addr &= AddressMask
	return addr >= StrobeSRES && addr <= lastStrobeAddress
}

// IsStatusRegister reports whether addr names a read-only status register.
func IsStatusRegister(addr byte) bool {
	addr &= AddressMask
	return addr >= firstStatusReg && addr <= RegRXBYTES
}
