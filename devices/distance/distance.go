// Package distance wraps a time-of-flight ranging driver behind the device
// contract. Measurements are interval-throttled and smoothed with an
// exponential moving average so one noisy echo cannot whipsaw consumers.
package distance

import (
	"twist-go/bus"
	"twist-go/logx"
	"twist-go/types"
	"twist-go/x/mathx"
	"twist-go/x/timex"
)

// EventChanged is published (deferred) when the filtered distance moves by
// ChangeThresholdCm or more since the last report.
const EventChanged = "distance.changed"

// Changed is the payload of EventChanged.
type Changed struct {
	DistanceCm float32
	InRange    bool
}

// ChangeThresholdCm is the minimum filtered movement that gets reported.
const ChangeThresholdCm = 1.0

// Config wires a Sensor. Driver is required; Bus, Log and Clock are optional.
type Config struct {
	ID     uint16
	Name   string
	Driver types.DistanceDriver
	Bus    *bus.Bus
	Log    logx.Logger
	Clock  func() int64 // Unix ms

	// IntervalMs throttles measurements; default 100.
	IntervalMs int64
	// Alpha is the filter strength, 0..1; 1 passes raw samples through.
	// Default 0.3.
	Alpha float32
}

type Sensor struct {
	id   uint16
	name string
	drv  types.DistanceDriver
	bus  *bus.Bus
	log  logx.Logger
	now  func() int64

	state   types.State
	enabled bool

	intervalMs int64
	alpha      float32

	lastSampleAt int64
	current      float32
	lastReported float32
	haveSample   bool
}

func New(cfg Config) *Sensor {
	if cfg.Name == "" {
		cfg.Name = "distance"
	}
	if cfg.Clock == nil {
		cfg.Clock = timex.NowMs
	}
	if cfg.IntervalMs == 0 {
		cfg.IntervalMs = 100
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = 0.3
	}
	return &Sensor{
		id:         cfg.ID,
		name:       cfg.Name,
		drv:        cfg.Driver,
		bus:        cfg.Bus,
		log:        cfg.Log,
		now:        cfg.Clock,
		enabled:    true,
		intervalMs: cfg.IntervalMs,
		alpha:      mathx.Clamp(cfg.Alpha, 0, 1),
	}
}

// -----------------------------------------------------------------------------
// Device lifecycle
// -----------------------------------------------------------------------------

func (s *Sensor) Init() error {
	s.state = types.StateInitializing
	s.lastSampleAt = s.now()
	s.current = 0
	s.lastReported = 0
	s.haveSample = false
	s.state = types.StateReady
	return nil
}

func (s *Sensor) Shutdown() {
	s.state = types.StateDisabled
	s.enabled = false
}

// Update takes one throttled measurement, folds it into the filter, and
// reports the filtered value if it moved a whole centimeter.
func (s *Sensor) Update() {
	if !s.enabled || s.state != types.StateReady {
		return
	}
	now := s.now()
	if now-s.lastSampleAt < s.intervalMs {
		return
	}
	s.lastSampleAt = now

	s.drv.TriggerMeasurement()
	if !s.drv.MeasurementReady() {
		return
	}
	raw := s.drv.ReadDistanceCm()
	if raw < 0 {
		// Out of range. Keep the filter state, just flag it on next report.
		logx.Debugf(s.log, "DIST", "%s: out of range", s.name)
		return
	}

	if !s.haveSample {
		s.current = raw
		s.haveSample = true
	} else {
		s.current = s.alpha*raw + (1-s.alpha)*s.current
	}

	if mathx.Abs(s.current-s.lastReported) >= ChangeThresholdCm {
		s.lastReported = s.current
		if s.bus != nil {
			s.bus.PublishAsync(bus.Event{
				Name:     EventChanged,
				Source:   s.id,
				Priority: bus.PriorityNormal,
				Payload:  Changed{DistanceCm: s.current, InRange: s.InRange()},
			})
		}
	}
}

// -----------------------------------------------------------------------------
// Identity & state
// -----------------------------------------------------------------------------

func (s *Sensor) Info() types.Info {
	return types.Info{
		Kind:         types.KindDistance,
		Name:         s.name,
		ID:           s.id,
		Capabilities: s.Capabilities(),
		Channels:     1,
	}
}

func (s *Sensor) Capabilities() types.Capability {
	return types.CapInput | types.CapAnalog | types.CapConfigurable
}

func (s *Sensor) State() types.State { return s.state }

func (s *Sensor) Enable() {
	s.enabled = true
	if s.state == types.StateDisabled {
		s.state = types.StateReady
	}
}

func (s *Sensor) Disable() {
	s.enabled = false
	s.state = types.StateDisabled
}

func (s *Sensor) Enabled() bool { return s.enabled }

// -----------------------------------------------------------------------------
// Input interface
// -----------------------------------------------------------------------------

// ReadAnalog returns the filtered distance normalized to the driver's range.
func (s *Sensor) ReadAnalog(axis uint8) float32 {
	if axis != 0 || s.drv == nil {
		return 0
	}
	return mathx.Norm(s.current, 0, s.drv.MaxRangeCm())
}

func (s *Sensor) ReadDigital(idx uint8) bool { return false }

func (s *Sensor) InputReady() bool { return s.state == types.StateReady && s.haveSample }

// -----------------------------------------------------------------------------
// Sensor API
// -----------------------------------------------------------------------------

// Distance returns the filtered distance in centimeters.
func (s *Sensor) Distance() float32 { return s.current }

// InRange reports whether the sensor currently sees a target.
func (s *Sensor) InRange() bool { return s.haveSample && s.current > 0 }

// SetInterval changes the measurement throttle.
func (s *Sensor) SetInterval(ms int64) {
	if ms > 0 {
		s.intervalMs = ms
	}
}

// SetAlpha changes the filter strength; 1 disables smoothing.
func (s *Sensor) SetAlpha(alpha float32) { s.alpha = mathx.Clamp(alpha, 0, 1) }

// TriggerNow forces a measurement on the next Update regardless of the
// interval.
func (s *Sensor) TriggerNow() { s.lastSampleAt = s.now() - s.intervalMs }
