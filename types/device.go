package types

import "time"

// ------------------------
// Capabilities & lifecycle
// ------------------------

// Capability is a bitset describing what a device supports. Typed access
// through the registry checks these bits before narrowing.
type Capability uint16

const (
	CapInput        Capability = 0x01 // provides input values
	CapOutput       Capability = 0x02 // accepts output commands
	CapAnalog       Capability = 0x04 // analog values (0.0-1.0)
	CapDigital      Capability = 0x08 // digital values (on/off)
	CapPosition     Capability = 0x10 // positional control (angles, steps)
	CapVelocity     Capability = 0x20 // velocity/speed control
	CapCalibratable Capability = 0x40 // supports calibration
	CapConfigurable Capability = 0x80 // has runtime configuration
)

// Has reports whether any of the wanted bits are set.
func (c Capability) Has(want Capability) bool { return c&want != 0 }

// State is the device lifecycle position. Enabled/disabled is tracked
// separately; a disabled device still holds its state history.
type State uint8

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateActive
	StateError
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	case StateDisabled:
		return "disabled"
	}
	return "?"
}

// Kind names a device type in topology files and builder registration.
type Kind string

const (
	KindServo    Kind = "servo"
	KindJoystick Kind = "joystick"
	KindDistance Kind = "distance"
)

// Info is the stable identity a device reports to the registry.
// ID and Name are both unique across a topology (the validator enforces it;
// the registry independently rejects duplicate IDs).
type Info struct {
	Kind         Kind
	Name         string
	ID           uint16
	Capabilities Capability
	Channels     uint8
}

// ------------------------
// Device contract
// ------------------------

// Device is a named, identified, capability-tagged unit with a lifecycle and
// an Update hook invoked once per cycle by the registry. Implementations
// must not block in any method; Update runs inside the tick budget.
//
// Devices are owned by the application layer. The registry holds non-owning
// references whose validity the owner guarantees.
type Device interface {
	// Lifecycle
	Init() error
	Shutdown()
	Update()

	// Identity
	Info() Info
	Capabilities() Capability

	// State
	State() State
	Enable()
	Disable()
	Enabled() bool
}

// InputDevice is a Device that produces values.
type InputDevice interface {
	Device

	// ReadAnalog returns the value of one axis/channel.
	ReadAnalog(axis uint8) float32
	// ReadDigital returns one digital input (button) state.
	ReadDigital(idx uint8) bool
	// InputReady reports whether a fresh value is available.
	InputReady() bool
}

// OutputDevice is a Device that accepts semantic output commands.
type OutputDevice interface {
	Device

	// SetValue applies a semantic value (e.g. an angle) immediately.
	SetValue(v float32)
	// SetNormalized maps v in [0,1] onto the device's calibrated range.
	SetNormalized(v float32)
	// MoveTo starts a linear animated transition. duration 0 applies
	// immediately.
	MoveTo(target float32, duration time.Duration)
	// Value returns the current semantic value.
	Value() float32
	// Moving reports whether an animated transition is in progress.
	Moving() bool
}
