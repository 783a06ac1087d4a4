// Package pca9685 is a minimal TinyGo driver for the PCA9685 16-channel
// 12-bit I2C PWM controller.
//
// Design notes (datasheet references):
// • Each channel has a 4-register ON/OFF tick pair; writes use auto-increment.
// • Output frequency comes from PRESCALE: round(25MHz / (4096 * freq)) - 1,
//   programmable only while the oscillator sleeps.
// • RESTART (MODE1 bit 7) resumes the PWM cycle after a sleep, with a
//   mandatory 500µs oscillator settle first.
package pca9685

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"

	"twist-go/x/mathx"
)

var (
	ErrBadChannel   = errors.New("pca9685: channel out of range")
	ErrBadFrequency = errors.New("pca9685: frequency out of range")
)

// Config selects the bus address and initial output frequency.
type Config struct {
	Address uint16
	FreqHz  uint16 // default 50, the hobby-servo frame rate
}

type Device struct {
	i2c  drivers.I2C
	addr uint16

	// Fixed buffers to avoid per-call heap allocations.
	w [5]byte
	r [1]byte
}

func New(i2c drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	return &Device{i2c: i2c, addr: addr}
}

// Configure wakes the chip, enables auto-increment and totem-pole outputs,
// and programs the initial frequency.
func (d *Device) Configure(cfg Config) error {
	if err := d.writeReg(regMode1, mode1AI|mode1AllCall); err != nil {
		return err
	}
	if err := d.writeReg(regMode2, mode2OutDrv); err != nil {
		return err
	}
	freq := cfg.FreqHz
	if freq == 0 {
		freq = 50
	}
	return d.SetFrequency(freq)
}

// Connected probes the chip by reading MODE1.
func (d *Device) Connected() bool {
	_, err := d.readReg(regMode1)
	return err == nil
}

// -----------------------------------------------------------------------------
// PWM output
// -----------------------------------------------------------------------------

// SetPWM sets the off-tick for one channel, on-tick 0. Ticks saturate at the
// 12-bit ceiling.
func (d *Device) SetPWM(channel uint8, ticks uint16) error {
	if channel >= channelCount {
		return ErrBadChannel
	}
	if ticks > maxTicks {
		ticks = maxTicks
	}
	return d.writeChannel(regLED0OnL+4*channel, 0, ticks)
}

// MaxPWM returns the full-scale tick count.
func (d *Device) MaxPWM() uint16 { return maxTicks }

// SetOff forces one channel fully off without touching its tick pair.
func (d *Device) SetOff(channel uint8) error {
	if channel >= channelCount {
		return ErrBadChannel
	}
	return d.writeReg(regLED0OnL+4*channel+3, fullOff)
}

// AllOff forces every channel fully off.
func (d *Device) AllOff() error {
	return d.writeReg(regAllLEDOn+3, fullOff)
}

// -----------------------------------------------------------------------------
// Frequency
// -----------------------------------------------------------------------------

// SetFrequency reprograms PRESCALE for the requested output rate. The chip
// accepts prescales 3..255, roughly 24Hz..1526Hz. The oscillator is put to
// sleep for the write and restarted after its settle time.
func (d *Device) SetFrequency(hz uint16) error {
	prescale := mathx.RoundDiv(uint32(oscHz), 4096*uint32(hz))
	if prescale < 4 || prescale > 256 {
		return ErrBadFrequency
	}
	prescale--

	mode1, err := d.readReg(regMode1)
	if err != nil {
		return err
	}
	if err := d.writeReg(regMode1, (mode1&^mode1Restart)|mode1Sleep); err != nil {
		return err
	}
	if err := d.writeReg(regPrescale, byte(prescale)); err != nil {
		return err
	}
	if err := d.writeReg(regMode1, mode1&^mode1Sleep); err != nil {
		return err
	}
	time.Sleep(500 * time.Microsecond)
	return d.writeReg(regMode1, mode1|mode1Restart|mode1AI)
}

// Prescale reads back the programmed prescale value.
func (d *Device) Prescale() (byte, error) {
	return d.readReg(regPrescale)
}
