// Package joystick reads a two-axis analog stick through injected ADC
// drivers. Axis values pass through a min/center/max calibration with a
// deadzone around center, so a worn stick still reports a clean zero.
package joystick

import (
	"twist-go/bus"
	"twist-go/logx"
	"twist-go/types"
	"twist-go/x/mathx"
)

// EventMoved is published (deferred) when an axis moves past the threshold.
const EventMoved = "joystick.moved"

// Moved is the payload of EventMoved. X and Y are signed, -1..1, 0 at center.
type Moved struct {
	X float32
	Y float32
}

// AxisCalibration is the raw-count calibration for one axis.
type AxisCalibration struct {
	Min    uint16
	Center uint16
	Max    uint16
}

// Config wires a Joystick. XAxis and YAxis are required; Button, Bus and Log
// are optional.
type Config struct {
	ID     uint16
	Name   string
	XAxis  types.ADCDriver
	YAxis  types.ADCDriver
	Button types.DigitalDriver
	Bus    *bus.Bus
	Log    logx.Logger

	// Deadzone is in raw ADC counts around center; default 100.
	Deadzone uint16
	// Threshold is the minimum normalized axis change that publishes
	// EventMoved; default 0.02.
	Threshold float32
}

type Joystick struct {
	id     uint16
	name   string
	x, y   types.ADCDriver
	button types.DigitalDriver
	bus    *bus.Bus
	log    logx.Logger

	state   types.State
	enabled bool

	calX, calY AxisCalibration
	deadzone   uint16
	threshold  float32

	lastX, lastY float32
}

func New(cfg Config) *Joystick {
	if cfg.Name == "" {
		cfg.Name = "joystick"
	}
	if cfg.Deadzone == 0 {
		cfg.Deadzone = 100
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = 0.02
	}
	return &Joystick{
		id:        cfg.ID,
		name:      cfg.Name,
		x:         cfg.XAxis,
		y:         cfg.YAxis,
		button:    cfg.Button,
		bus:       cfg.Bus,
		log:       cfg.Log,
		enabled:   true,
		deadzone:  cfg.Deadzone,
		threshold: cfg.Threshold,
	}
}

// -----------------------------------------------------------------------------
// Device lifecycle
// -----------------------------------------------------------------------------

// Init seeds a symmetric calibration from the ADC resolution. Real sticks
// are re-calibrated afterwards from measured endpoints.
func (j *Joystick) Init() error {
	j.state = types.StateInitializing
	maxRaw := uint16(4095)
	if j.x != nil {
		maxRaw = j.x.MaxRaw()
	}
	// Mid-scale rounds up: a 4095-count ADC rests at 2048. Widen first so a
	// full 16-bit ADC does not overflow.
	center := uint16((uint32(maxRaw) + 1) / 2)
	j.calX = AxisCalibration{Min: 0, Center: center, Max: maxRaw}
	j.calY = AxisCalibration{Min: 0, Center: center, Max: maxRaw}
	j.state = types.StateReady
	return nil
}

func (j *Joystick) Shutdown() {
	j.state = types.StateDisabled
	j.enabled = false
}

// Update samples both axes and announces significant movement. Sampling is
// cheap; the threshold keeps ADC jitter off the bus.
func (j *Joystick) Update() {
	if !j.enabled || j.state != types.StateReady {
		return
	}
	x, y := j.X(), j.Y()
	if mathx.Abs(x-j.lastX) > j.threshold || mathx.Abs(y-j.lastY) > j.threshold {
		j.lastX, j.lastY = x, y
		if j.bus != nil {
			j.bus.PublishAsync(bus.Event{
				Name:     EventMoved,
				Source:   j.id,
				Priority: bus.PriorityNormal,
				Payload:  Moved{X: x, Y: y},
			})
		}
	}
}

// -----------------------------------------------------------------------------
// Identity & state
// -----------------------------------------------------------------------------

func (j *Joystick) Info() types.Info {
	return types.Info{
		Kind:         types.KindJoystick,
		Name:         j.name,
		ID:           j.id,
		Capabilities: j.Capabilities(),
		Channels:     2,
	}
}

func (j *Joystick) Capabilities() types.Capability {
	return types.CapInput | types.CapAnalog | types.CapCalibratable | types.CapConfigurable
}

func (j *Joystick) State() types.State { return j.state }

func (j *Joystick) Enable() {
	j.enabled = true
	if j.state == types.StateDisabled {
		j.state = types.StateReady
	}
}

func (j *Joystick) Disable() {
	j.enabled = false
	j.state = types.StateDisabled
}

func (j *Joystick) Enabled() bool { return j.enabled }

// -----------------------------------------------------------------------------
// Input interface
// -----------------------------------------------------------------------------

// ReadAnalog returns axis 0 (X) or 1 (Y) as 0..1 with 0.5 at center.
// Unknown axes read as center.
func (j *Joystick) ReadAnalog(axis uint8) float32 {
	switch axis {
	case 0:
		return mathx.MapRange(j.X(), -1, 1, 0, 1)
	case 1:
		return mathx.MapRange(j.Y(), -1, 1, 0, 1)
	}
	return 0.5
}

// ReadDigital returns the button state; index 0 only.
func (j *Joystick) ReadDigital(idx uint8) bool {
	if idx == 0 && j.button != nil {
		return j.button.Read()
	}
	return false
}

func (j *Joystick) InputReady() bool { return j.state == types.StateReady }

// -----------------------------------------------------------------------------
// Joystick API
// -----------------------------------------------------------------------------

// X returns the horizontal axis, -1..1 with 0 inside the deadzone.
func (j *Joystick) X() float32 {
	if j.x == nil {
		return 0
	}
	return j.mapAxis(j.x.ReadRaw(), j.calX)
}

// Y returns the vertical axis, -1..1 with 0 inside the deadzone.
func (j *Joystick) Y() float32 {
	if j.y == nil {
		return 0
	}
	return j.mapAxis(j.y.ReadRaw(), j.calY)
}

// Pressed reports the button state, false when no button is wired.
func (j *Joystick) Pressed() bool { return j.ReadDigital(0) }

// Calibrate installs measured endpoints for both axes. Values are trusted;
// the topology validator catches degenerate spans before devices are built.
func (j *Joystick) Calibrate(x, y AxisCalibration) {
	j.calX = x
	j.calY = y
	logx.Debugf(j.log, "JOY", "%s: calibrated x=%+v y=%+v", j.name, x, y)
}

// SetDeadzone sets the raw-count deadzone around center.
func (j *Joystick) SetDeadzone(counts uint16) { j.deadzone = counts }

// mapAxis converts a raw sample to -1..1 through min/center/max. The two
// half-ranges map independently so an off-center rest position still spans
// the full output range.
func (j *Joystick) mapAxis(raw uint16, cal AxisCalibration) float32 {
	raw = mathx.Clamp(raw, cal.Min, cal.Max)

	offset := int32(raw) - int32(cal.Center)
	if mathx.Abs(offset) < int32(j.deadzone) {
		return 0
	}

	var v float32
	if raw < cal.Center {
		v = -1 + float32(raw-cal.Min)/float32(cal.Center-cal.Min)
	} else {
		v = float32(raw-cal.Center) / float32(cal.Max-cal.Center)
	}
	return mathx.Clamp(v, -1, 1)
}
