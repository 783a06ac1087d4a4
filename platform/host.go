//go:build !rp2040 && !rp2350

// Package platform is the board seam behind runtime.Hardware: real pins and
// buses on RP2 targets, scriptable in-memory fakes everywhere else. On the
// host build, tests and the demo binary poke fake pins and observe fake PWM
// writes without any hardware attached.
package platform

import (
	"os"

	"twist-go/config"
	"twist-go/runtime"
	"twist-go/types"
)

// Host implements runtime.Hardware with fakes. Drivers are created on first
// request and memoized, so a test can script the same pin a device reads.
type Host struct {
	pwm     map[uint16]*FakePWM
	adc     map[uint8]*FakeADC
	digital map[uint8]*FakeDigital
	rangers map[uint8]*FakeRanger // keyed by trigger pin
}

var _ runtime.Hardware = (*Host)(nil)

func NewHost() *Host {
	return &Host{
		pwm:     map[uint16]*FakePWM{},
		adc:     map[uint8]*FakeADC{},
		digital: map[uint8]*FakeDigital{},
		rangers: map[uint8]*FakeRanger{},
	}
}

func (h *Host) PWMController(spec config.PWMDriverSpec) (types.PWMDriver, error) {
	addr := spec.Address
	if addr == 0 {
		addr = 0x40
	}
	if d, ok := h.pwm[addr]; ok {
		return d, nil
	}
	d := &FakePWM{Freq: spec.FreqHz}
	h.pwm[addr] = d
	return d, nil
}

func (h *Host) ADCPin(pin uint8) (types.ADCDriver, error) {
	if a, ok := h.adc[pin]; ok {
		return a, nil
	}
	a := &FakeADC{Raw: 2048, Max: 4095}
	h.adc[pin] = a
	return a, nil
}

func (h *Host) DigitalPin(pin uint8) (types.DigitalDriver, error) {
	if d, ok := h.digital[pin]; ok {
		return d, nil
	}
	d := &FakeDigital{}
	h.digital[pin] = d
	return d, nil
}

func (h *Host) Ranger(spec config.DistanceSpec) (types.DistanceDriver, error) {
	if r, ok := h.rangers[spec.TrigPin]; ok {
		return r, nil
	}
	r := &FakeRanger{Ready: true, Max: 400}
	h.rangers[spec.TrigPin] = r
	return r, nil
}

// ConsolePort returns the process stdio pair for the maintenance console.
func (h *Host) ConsolePort() (in *os.File, out *os.File) {
	return os.Stdin, os.Stdout
}

// ---- scripting accessors ----

// PWM returns the fake controller at addr, creating it if needed.
func (h *Host) PWM(addr uint16) *FakePWM {
	d, _ := h.PWMController(config.PWMDriverSpec{Address: addr})
	return d.(*FakePWM)
}

// ADC returns the fake ADC on pin, creating it if needed.
func (h *Host) ADC(pin uint8) *FakeADC {
	a, _ := h.ADCPin(pin)
	return a.(*FakeADC)
}

// Digital returns the fake digital input on pin, creating it if needed.
func (h *Host) Digital(pin uint8) *FakeDigital {
	d, _ := h.DigitalPin(pin)
	return d.(*FakeDigital)
}

// RangerAt returns the fake ranger triggered by pin, creating it if needed.
func (h *Host) RangerAt(trigPin uint8) *FakeRanger {
	r, _ := h.Ranger(config.DistanceSpec{TrigPin: trigPin})
	return r.(*FakeRanger)
}

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

// FakePWM records every write per channel.
type FakePWM struct {
	Freq   uint16
	Writes []PWMWrite
	Fail   error
}

type PWMWrite struct {
	Channel uint8
	Ticks   uint16
}

func (d *FakePWM) SetPWM(channel uint8, ticks uint16) error {
	if d.Fail != nil {
		return d.Fail
	}
	d.Writes = append(d.Writes, PWMWrite{channel, ticks})
	return nil
}

func (d *FakePWM) MaxPWM() uint16 { return 4095 }

func (d *FakePWM) SetFrequency(hz uint16) error {
	d.Freq = hz
	return nil
}

// Last returns the most recent write on a channel, false if none.
func (d *FakePWM) Last(channel uint8) (uint16, bool) {
	for i := len(d.Writes) - 1; i >= 0; i-- {
		if d.Writes[i].Channel == channel {
			return d.Writes[i].Ticks, true
		}
	}
	return 0, false
}

// FakeADC serves a settable raw sample.
type FakeADC struct {
	Raw uint16
	Max uint16
}

func (a *FakeADC) ReadRaw() uint16 { return a.Raw }
func (a *FakeADC) MaxRaw() uint16  { return a.Max }

// FakeDigital is a settable input line.
type FakeDigital struct{ State bool }

func (d *FakeDigital) Read() bool { return d.State }

// FakeRanger is a scriptable distance source.
type FakeRanger struct {
	Cm       float32
	Ready    bool
	Max      float32
	Triggers int
}

func (r *FakeRanger) TriggerMeasurement()     { r.Triggers++ }
func (r *FakeRanger) MeasurementReady() bool  { return r.Ready }
func (r *FakeRanger) ReadDistanceCm() float32 { return r.Cm }
func (r *FakeRanger) MaxRangeCm() float32     { return r.Max }
