package config

import (
	"errors"
	"fmt"

	"twist-go/errcode"
)

// Validate checks the whole topology and returns every violation joined, not
// just the first. This runs before any hardware is initialized; a non-nil
// result means halt.
func (t *Topology) Validate() error {
	var errs []error
	fail := func(c errcode.Code, format string, args ...any) {
		errs = append(errs, &errcode.E{C: c, Op: "config.validate", Msg: fmt.Sprintf(format, args...)})
	}

	// PWM driver I2C addresses must be unique, and servos need 50Hz frames.
	addrs := map[uint16]int{}
	for i, d := range t.PWMDrivers {
		if prev, dup := addrs[d.Address]; dup {
			fail(errcode.DuplicateChannel, "pwm drivers %d and %d share i2c address 0x%02X", prev, i, d.Address)
		}
		addrs[d.Address] = i
		if d.FreqHz != 0 && d.FreqHz != 50 {
			fail(errcode.InvalidParams, "pwm driver %d runs at %dHz, servos require 50Hz", i, d.FreqHz)
		}
	}

	ids := map[uint16]string{}
	names := map[string]uint16{}
	pins := map[uint8]string{}
	channels := map[[2]int]string{} // driver index, channel

	claimPin := func(pin uint8, owner string) {
		if prev, used := pins[pin]; used {
			fail(errcode.DuplicateChannel, "gpio pin %d claimed by both %q and %q", pin, prev, owner)
		}
		pins[pin] = owner
	}

	for i, d := range t.Devices {
		where := fmt.Sprintf("device %d (%q)", i, d.Name)

		if d.ID == 0 {
			fail(errcode.InvalidParams, "%s: id 0 is reserved", where)
		} else if prev, dup := ids[d.ID]; dup {
			fail(errcode.DuplicateID, "%s: id %d already used by %q", where, d.ID, prev)
		} else {
			ids[d.ID] = d.Name
		}

		if d.Name == "" {
			fail(errcode.InvalidParams, "%s: empty name", where)
		} else if _, dup := names[d.Name]; dup {
			fail(errcode.DuplicateName, "%s: name already used", where)
		} else {
			names[d.Name] = d.ID
		}

		switch d.Kind {
		case KindServo:
			if d.Servo == nil {
				fail(errcode.InvalidParams, "%s: kind servo without servo section", where)
				continue
			}
			s := d.Servo
			if s.Driver < 0 || s.Driver >= len(t.PWMDrivers) {
				fail(errcode.InvalidParams, "%s: driver index %d, have %d pwm drivers", where, s.Driver, len(t.PWMDrivers))
			}
			if s.Channel > 15 {
				fail(errcode.InvalidParams, "%s: pwm channel %d out of 0..15", where, s.Channel)
			}
			key := [2]int{s.Driver, int(s.Channel)}
			if prev, dup := channels[key]; dup {
				fail(errcode.DuplicateChannel, "%s: driver %d channel %d already used by %q", where, s.Driver, s.Channel, prev)
			} else {
				channels[key] = d.Name
			}
			if s.StepMin != 0 || s.StepMax != 0 {
				if s.StepMax <= s.StepMin {
					fail(errcode.InvalidCalibration, "%s: step range [%d..%d]", where, s.StepMin, s.StepMax)
				}
			} else if s.MinPulseUs != 0 || s.MaxPulseUs != 0 {
				if s.MaxPulseUs <= s.MinPulseUs {
					fail(errcode.InvalidCalibration, "%s: pulse range [%d..%d]us", where, s.MinPulseUs, s.MaxPulseUs)
				}
			}
			if s.MinAngle != 0 || s.MaxAngle != 0 {
				if s.MaxAngle <= s.MinAngle {
					fail(errcode.InvalidCalibration, "%s: angle range [%v..%v]", where, s.MinAngle, s.MaxAngle)
				}
			}

		case KindJoystick:
			if d.Joystick == nil {
				fail(errcode.InvalidParams, "%s: kind joystick without joystick section", where)
				continue
			}
			j := d.Joystick
			claimPin(j.XPin, d.Name)
			claimPin(j.YPin, d.Name)
			if j.ButtonPin != nil {
				claimPin(*j.ButtonPin, d.Name)
			}

		case KindDistance:
			if d.Distance == nil {
				fail(errcode.InvalidParams, "%s: kind distance without distance section", where)
				continue
			}
			ds := d.Distance
			claimPin(ds.TrigPin, d.Name)
			claimPin(ds.EchoPin, d.Name)
			if ds.Alpha < 0 || ds.Alpha > 1 {
				fail(errcode.InvalidParams, "%s: filter alpha %v out of 0..1", where, ds.Alpha)
			}
			if ds.IntervalMs < 0 {
				fail(errcode.InvalidParams, "%s: negative interval", where)
			}

		default:
			fail(errcode.Unsupported, "%s: unknown kind %q", where, d.Kind)
		}
	}

	return errors.Join(errs...)
}
