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

// Package testing provides test utilities including a register-level
// CC2500 simulator.
//
// VirtualCC2500 answers full-duplex SPI transactions the way the chip does:
// the first byte of every transaction is a header (R/W bit, burst bit,
// six-bit address) and the chip clocks its status byte back while the
// header is shifted in. Strobes change the simulated radio state, manual
// calibration produces per-channel FSCAL values and every STX is logged
// with the channel it went out on.
package testing

import (
	"errors"

	"github.com/ZaparooProject/go-cc2500/internal/syncutil"
)

// Header bits and address ranges
const (
	hdrRead  = 0x80
	hdrBurst = 0x40
	addrMask = 0x3F

	regFREQ1   = 0x0E
	regCHANNR  = 0x0A
	regFSCAL3  = 0x23
	regFSCAL2  = 0x24
	regFSCAL1  = 0x25
	lastConfig = 0x2E

	statusFirst = 0x30
	statusLast  = 0x3D
	regPARTNUM  = 0x30
	regVERSION  = 0x31
	regLQI      = 0x33
	regRSSI     = 0x34
	regMARC     = 0x35
	regTXBYTES  = 0x3A
	regRXBYTES  = 0x3B
	regPATABLE  = 0x3E
	regFIFO     = 0x3F

	fifoSize = 64
)

// Strobes
const (
	strobeSRES  = 0x30
	strobeSCAL  = 0x33
	strobeSRX   = 0x34
	strobeSTX   = 0x35
	strobeSIDLE = 0x36
	strobeSPWD  = 0x39
	strobeSFRX  = 0x3A
	strobeSFTX  = 0x3B
	strobeSNOP  = 0x3D
)

// RadioState mirrors the STATE field of the CC2500 status byte.
type RadioState byte

// Radio states
const (
	RadioIdle      RadioState = 0x00
	RadioRX        RadioState = 0x10
	RadioTX        RadioState = 0x20
	RadioCalibrate RadioState = 0x40
)

// Default identity reported by the status registers
const (
	DefaultPartNum = 0x80
	DefaultVersion = 0x03
	resetFREQ1     = 0xC4
)

// ErrEmptyTransaction is returned for a transaction without a header byte.
var ErrEmptyTransaction = errors.New("empty SPI transaction")

// Transmission is one frame sent by STX.
type Transmission struct {
	Frame   []byte
	FSCAL   [3]byte
	Channel byte
}

// VirtualCC2500 simulates a CC2500 at the SPI transaction level.
type VirtualCC2500 struct {
	txFIFO        []byte
	rxFIFO        []byte
	strobes       []byte
	transmissions []Transmission
	regs          [lastConfig + 1]byte
	paTable       [8]byte
	mu            syncutil.Mutex
	partNum       byte
	version       byte
	rssi          byte
	lqi           byte
	absentReads   int
	calPolls      int
	calRemaining  int
	state         RadioState
	neverReady    bool
	powerDown     bool
	resetBroken   bool
}

// NewVirtualCC2500 creates a simulator in the post-reset state.
func NewVirtualCC2500() *VirtualCC2500 {
	v := &VirtualCC2500{
		partNum:  DefaultPartNum,
		version:  DefaultVersion,
		calPolls: 1,
	}
	v.reset()
	return v
}

func (v *VirtualCC2500) reset() {
	v.regs = [lastConfig + 1]byte{}
	if !v.resetBroken {
		v.regs[regFREQ1] = resetFREQ1
	}
	v.paTable = [8]byte{0xC6}
	v.txFIFO = nil
	v.rxFIFO = nil
	v.state = RadioIdle
	v.calRemaining = 0
	v.powerDown = false
}

// CalibrationFor returns the FSCAL3, FSCAL2 and FSCAL1 values the simulator
// produces when calibrating channel.
func CalibrationFor(channel byte) [3]byte {
	return [3]byte{0xA9, 0x0A + channel>>6, channel & 0x3F}
}

// Tx performs one full-duplex transaction. r may be nil; when non-nil it
// must be at least as long as w.
func (v *VirtualCC2500) Tx(w, r []byte) error {
	if len(w) == 0 {
		return ErrEmptyTransaction
	}
	if r == nil {
		r = make([]byte, len(w))
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	hdr := w[0]
	addr := hdr & addrMask
	read := hdr&hdrRead != 0
	burst := hdr&hdrBurst != 0

	r[0] = v.statusByte()

	switch {
	case addr >= statusFirst && addr <= statusLast && !burst:
		v.strobe(addr)
	case addr == regFIFO:
		v.fifo(read, w[1:], r[1:])
	case addr == regPATABLE:
		v.pa(read, w[1:], r[1:])
	case addr >= statusFirst && addr <= statusLast:
		for i := range r[1:] {
			r[1+i] = v.statusRegister(addr + byte(i))
		}
	default:
		v.config(addr, read, burst, w[1:], r[1:])
	}
	return nil
}

func (v *VirtualCC2500) statusByte() byte {
	if v.state == RadioCalibrate && !v.neverReady {
		if v.calRemaining == 0 {
			v.state = RadioIdle
		} else {
			v.calRemaining--
		}
	}

	status := byte(v.state)
	if v.powerDown || (v.neverReady && v.state == RadioCalibrate) {
		status |= 0x80
	}
	free := fifoSize - len(v.txFIFO)
	if free > 15 {
		free = 15
	}
	return status | byte(free)
}

func (v *VirtualCC2500) strobe(cmd byte) {
	v.strobes = append(v.strobes, cmd)

	switch cmd {
	case strobeSRES:
		v.reset()
	case strobeSCAL:
		if v.state == RadioIdle {
			cal := CalibrationFor(v.regs[regCHANNR])
			v.regs[regFSCAL3], v.regs[regFSCAL2], v.regs[regFSCAL1] = cal[0], cal[1], cal[2]
			v.state = RadioCalibrate
			v.calRemaining = v.calPolls
		}
	case strobeSRX:
		v.state = RadioRX
	case strobeSTX:
		v.transmissions = append(v.transmissions, Transmission{
			Frame:   append([]byte(nil), v.txFIFO...),
			Channel: v.regs[regCHANNR],
			FSCAL:   [3]byte{v.regs[regFSCAL3], v.regs[regFSCAL2], v.regs[regFSCAL1]},
		})
		v.txFIFO = nil
		// TXOFF_MODE in the radio configuration returns to IDLE
		v.state = RadioIdle
	case strobeSIDLE:
		if v.state != RadioCalibrate || !v.neverReady {
			v.state = RadioIdle
		}
	case strobeSPWD:
		v.powerDown = true
	case strobeSFRX:
		v.rxFIFO = nil
	case strobeSFTX:
		v.txFIFO = nil
	case strobeSNOP:
	}
}

func (v *VirtualCC2500) fifo(read bool, w, r []byte) {
	if !read {
		room := fifoSize - len(v.txFIFO)
		if len(w) > room {
			w = w[:room]
		}
		v.txFIFO = append(v.txFIFO, w...)
		return
	}
	for i := range r {
		if len(v.rxFIFO) == 0 {
			r[i] = 0
			continue
		}
		r[i] = v.rxFIFO[0]
		v.rxFIFO = v.rxFIFO[1:]
	}
}

func (v *VirtualCC2500) pa(read bool, w, r []byte) {
	for i := range w {
		if i >= len(v.paTable) {
			break
		}
		if read {
			r[i] = v.paTable[i]
		} else {
			v.paTable[i] = w[i]
		}
	}
}

func (v *VirtualCC2500) config(addr byte, read, burst bool, w, r []byte) {
	n := len(w)
	if !burst && n > 1 {
		n = 1
	}
	for i := range n {
		reg := int(addr) + i
		if reg > lastConfig {
			return
		}
		if read {
			r[i] = v.regs[reg]
		} else {
			v.regs[reg] = w[i]
		}
	}
}

func (v *VirtualCC2500) statusRegister(addr byte) byte {
	switch addr {
	case regPARTNUM:
		if v.absentReads > 0 {
			v.absentReads--
			return 0x00
		}
		return v.partNum
	case regVERSION:
		return v.version
	case regLQI:
		return v.lqi
	case regRSSI:
		return v.rssi
	case regMARC:
		return byte(v.state) >> 4
	case regTXBYTES:
		return byte(len(v.txFIFO))
	case regRXBYTES:
		return byte(len(v.rxFIFO))
	default:
		return 0
	}
}

// SetIdentity changes the PARTNUM and VERSION values.
func (v *VirtualCC2500) SetIdentity(partNum, version byte) {
	v.mu.Lock()
	v.partNum, v.version = partNum, version
	v.mu.Unlock()
}

// SetAbsentReads makes the next n PARTNUM reads return 0x00, as if the chip
// were not yet powered.
func (v *VirtualCC2500) SetAbsentReads(n int) {
	v.mu.Lock()
	v.absentReads = n
	v.mu.Unlock()
}

// SetCalibrationPolls sets how many status reads report CALIBRATE after SCAL.
func (v *VirtualCC2500) SetCalibrationPolls(n int) {
	v.mu.Lock()
	v.calPolls = n
	v.mu.Unlock()
}

// SetNeverReady makes calibration never complete.
func (v *VirtualCC2500) SetNeverReady(never bool) {
	v.mu.Lock()
	v.neverReady = never
	v.mu.Unlock()
}

// SetResetBroken makes SRES leave FREQ1 at zero.
func (v *VirtualCC2500) SetResetBroken(broken bool) {
	v.mu.Lock()
	v.resetBroken = broken
	v.mu.Unlock()
}

// SetSignal sets the RSSI and LQI status registers.
func (v *VirtualCC2500) SetSignal(rssi, lqi byte) {
	v.mu.Lock()
	v.rssi, v.lqi = rssi, lqi
	v.mu.Unlock()
}

// InjectRX appends bytes to the RX FIFO.
func (v *VirtualCC2500) InjectRX(data []byte) {
	v.mu.Lock()
	v.rxFIFO = append(v.rxFIFO, data...)
	v.mu.Unlock()
}

// Register returns a configuration register.
func (v *VirtualCC2500) Register(addr byte) byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	if int(addr) > lastConfig {
		return 0
	}
	return v.regs[addr]
}

// PATable returns the PA table.
func (v *VirtualCC2500) PATable() [8]byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paTable
}

// State returns the simulated radio state.
func (v *VirtualCC2500) State() RadioState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Strobes returns the strobes received so far.
func (v *VirtualCC2500) Strobes() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]byte(nil), v.strobes...)
}

// Transmissions returns the frames sent so far.
func (v *VirtualCC2500) Transmissions() []Transmission {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Transmission(nil), v.transmissions...)
}

// ClearLog forgets recorded strobes and transmissions.
func (v *VirtualCC2500) ClearLog() {
	v.mu.Lock()
	v.strobes = nil
	v.transmissions = nil
	v.mu.Unlock()
}
