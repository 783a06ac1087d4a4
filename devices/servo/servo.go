// Package servo is the motion and calibration engine for PWM-driven
// actuators. A Servo converts semantic commands (angles, normalized values)
// into raw driver ticks through a calibration curve, and drives smooth
// non-blocking transitions from the per-cycle Update hook.
//
// One Servo = one physical actuator: the driver and channel are locked at
// construction, never passed per call.
package servo

import (
	"time"

	"twist-go/bus"
	"twist-go/errcode"
	"twist-go/logx"
	"twist-go/types"
	"twist-go/x/mathx"
	"twist-go/x/timex"
)

// Event names published on the injected bus.
const (
	EventMoved        = "servo.moved"         // sync, every successful raw write
	EventMoveComplete = "servo.move.complete" // deferred, animation reached target
)

// Moved is the payload of EventMoved.
type Moved struct {
	Angle float32
	Raw   uint16
}

// MoveComplete is the payload of EventMoveComplete.
type MoveComplete struct {
	Angle float32
}

// Calibration is the full curve description. Exactly one of the two modes is
// active; UseSteps selects which.
type Calibration struct {
	UseSteps bool

	// Pulse mode (microseconds).
	MinPulse uint16
	MaxPulse uint16

	// Step mode (raw driver ticks).
	StepMin uint16
	StepMax uint16

	// Shared angle range (degrees).
	MinAngle float32
	MaxAngle float32
}

// Snapshot captures restorable device state.
type Snapshot struct {
	Angle       float32
	Enabled     bool
	Calibration Calibration
}

// Config wires a Servo. Driver is required; Bus, Log and Clock are optional
// (nil bus publishes nothing, nil clock uses wall time).
type Config struct {
	ID       uint16
	Name     string
	Channel  uint8
	Driver   types.PWMDriver
	Bus      *bus.Bus
	Log      logx.Logger
	Clock    func() int64 // Unix ms
	PeriodUs uint32       // PWM frame period for pulse-mode mapping; default 20000 (50 Hz)
}

type Servo struct {
	id       uint16
	name     string
	channel  uint8
	drv      types.PWMDriver
	bus      *bus.Bus
	log      logx.Logger
	now      func() int64
	periodUs uint32

	state   types.State
	enabled bool

	cal     Calibration
	current float32

	// Animation state. duration==0 means idle, whatever the other fields say.
	startAngle  float32
	targetAngle float32
	animStart   int64 // ms
	duration    int64 // ms
	easing      Easing
	paused      bool
	pausedAt    int64
	pausedAccum int64

	degPerSec float32 // 0 = speed mode unset
}

func New(cfg Config) *Servo {
	if cfg.Clock == nil {
		cfg.Clock = timex.NowMs
	}
	if cfg.PeriodUs == 0 {
		cfg.PeriodUs = timex.PeriodFromHz(50)
	}
	if cfg.Name == "" {
		cfg.Name = "servo"
	}
	s := &Servo{
		id:       cfg.ID,
		name:     cfg.Name,
		channel:  cfg.Channel,
		drv:      cfg.Driver,
		bus:      cfg.Bus,
		log:      cfg.Log,
		now:      cfg.Clock,
		periodUs: cfg.PeriodUs,
		enabled:  true,
		current:  90,
		cal: Calibration{
			MinPulse: 500,
			MaxPulse: 2500,
			MinAngle: 0,
			MaxAngle: 180,
		},
	}
	if cfg.Driver != nil {
		s.cal.StepMax = cfg.Driver.MaxPWM()
	}
	return s
}

// -----------------------------------------------------------------------------
// Device lifecycle
// -----------------------------------------------------------------------------

// Init centers the actuator and marks the device ready. A driver write
// failure leaves the device in StateError.
func (s *Servo) Init() error {
	s.state = types.StateInitializing
	if err := s.apply(90); err != nil {
		s.state = types.StateError
		return &errcode.E{C: errcode.DriverError, Op: "init", Msg: s.name, Err: err}
	}
	s.state = types.StateReady
	return nil
}

func (s *Servo) Shutdown() {
	s.Stop()
	s.state = types.StateDisabled
	s.enabled = false
}

// Update advances the active animation by one cycle. It is a no-op when the
// device is disabled, not ready, paused, or idle. Completion snaps exactly
// to the target so repeated eased interpolation cannot accumulate drift.
func (s *Servo) Update() {
	if !s.enabled || s.state != types.StateReady {
		return
	}
	if s.paused || s.duration == 0 {
		return
	}

	elapsed := s.now() - s.animStart - s.pausedAccum
	if elapsed >= s.duration {
		s.SetValue(s.targetAngle)
		s.duration = 0
		if s.bus != nil {
			s.bus.PublishAsync(bus.Event{
				Name:     EventMoveComplete,
				Source:   s.id,
				Priority: bus.PriorityNormal,
				Payload:  MoveComplete{Angle: s.current},
			})
		}
		return
	}

	t := float32(elapsed) / float32(s.duration)
	s.SetValue(mathx.Lerp(s.startAngle, s.targetAngle, s.easing.Apply(t)))
}

// -----------------------------------------------------------------------------
// Identity & state
// -----------------------------------------------------------------------------

func (s *Servo) Info() types.Info {
	return types.Info{
		Kind:         types.KindServo,
		Name:         s.name,
		ID:           s.id,
		Capabilities: s.Capabilities(),
		Channels:     1,
	}
}

func (s *Servo) Capabilities() types.Capability {
	return types.CapOutput | types.CapPosition | types.CapCalibratable | types.CapConfigurable
}

func (s *Servo) State() types.State { return s.state }

func (s *Servo) Enable() {
	s.enabled = true
	if s.state == types.StateDisabled {
		s.state = types.StateReady
	}
}

func (s *Servo) Disable() {
	s.enabled = false
	s.state = types.StateDisabled
}

func (s *Servo) Enabled() bool { return s.enabled }

// -----------------------------------------------------------------------------
// Calibration
// -----------------------------------------------------------------------------

// Calibrate selects pulse mode: angles map to a pulse width in microseconds,
// then to driver ticks. A zero or negative span is rejected with
// errcode.InvalidCalibration and the previous curve stays active.
func (s *Servo) Calibrate(minPulse, maxPulse uint16, minAngle, maxAngle float32) error {
	if maxPulse <= minPulse || maxAngle <= minAngle {
		logx.Errorf(s.log, "SERVO", "%s: rejected pulse calibration [%d..%d]us [%v..%v]deg",
			s.name, minPulse, maxPulse, minAngle, maxAngle)
		return errcode.InvalidCalibration
	}
	s.cal.UseSteps = false
	s.cal.MinPulse = minPulse
	s.cal.MaxPulse = maxPulse
	s.cal.MinAngle = minAngle
	s.cal.MaxAngle = maxAngle
	return nil
}

// CalibrateBySteps selects step mode: angles map directly to raw driver
// ticks with no microsecond intermediate.
func (s *Servo) CalibrateBySteps(minStep, maxStep uint16, minAngle, maxAngle float32) error {
	if maxStep <= minStep || maxAngle <= minAngle {
		logx.Errorf(s.log, "SERVO", "%s: rejected step calibration [%d..%d] [%v..%v]deg",
			s.name, minStep, maxStep, minAngle, maxAngle)
		return errcode.InvalidCalibration
	}
	s.cal.UseSteps = true
	s.cal.StepMin = minStep
	s.cal.StepMax = maxStep
	s.cal.MinAngle = minAngle
	s.cal.MaxAngle = maxAngle
	return nil
}

// Calibration returns the active curve.
func (s *Servo) Calibration() Calibration { return s.cal }

// Snapshot captures position, enablement and calibration for persistence.
func (s *Servo) SnapshotState() Snapshot {
	return Snapshot{Angle: s.current, Enabled: s.enabled, Calibration: s.cal}
}

// Restore reapplies a snapshot. The calibration is validated the same way
// the calibrate calls are.
func (s *Servo) Restore(sn Snapshot) error {
	var err error
	if sn.Calibration.UseSteps {
		err = s.CalibrateBySteps(sn.Calibration.StepMin, sn.Calibration.StepMax,
			sn.Calibration.MinAngle, sn.Calibration.MaxAngle)
	} else {
		err = s.Calibrate(sn.Calibration.MinPulse, sn.Calibration.MaxPulse,
			sn.Calibration.MinAngle, sn.Calibration.MaxAngle)
	}
	if err != nil {
		return err
	}
	s.SetValue(sn.Angle)
	s.enabled = sn.Enabled
	return nil
}

// -----------------------------------------------------------------------------
// Output commands
// -----------------------------------------------------------------------------

// SetValue applies an angle immediately. The input is clamped to the
// calibrated angle range on every write path, including the animation
// stepper; this is the authoritative over-travel guard.
func (s *Servo) SetValue(angle float32) {
	if err := s.apply(angle); err != nil {
		logx.Warnf(s.log, "SERVO", "%s: raw write failed: %v", s.name, err)
	}
}

// SetAngle is SetValue under its domain name.
func (s *Servo) SetAngle(angle float32) { s.SetValue(angle) }

// SetNormalized maps v in [0,1] onto the calibrated angle range.
func (s *Servo) SetNormalized(v float32) {
	v = mathx.Clamp(v, 0, 1)
	s.SetValue(mathx.Lerp(s.cal.MinAngle, s.cal.MaxAngle, v))
}

// apply clamps, maps, writes raw, and announces the move.
func (s *Servo) apply(angle float32) error {
	angle = mathx.Clamp(angle, s.cal.MinAngle, s.cal.MaxAngle)
	s.current = angle
	raw := s.mapAngleToPWM(angle)
	if s.drv != nil {
		if err := s.drv.SetPWM(s.channel, raw); err != nil {
			return err
		}
	}
	if s.bus != nil {
		s.bus.Publish(bus.Event{
			Name:     EventMoved,
			Source:   s.id,
			Priority: bus.PriorityNormal,
			Payload:  Moved{Angle: angle, Raw: raw},
		})
	}
	return nil
}

// mapAngleToPWM converts a (pre-clamped) angle to raw driver ticks through
// the active calibration curve.
func (s *Servo) mapAngleToPWM(angle float32) uint16 {
	norm := mathx.Norm(angle, s.cal.MinAngle, s.cal.MaxAngle)
	if s.cal.UseSteps {
		span := float32(s.cal.StepMax - s.cal.StepMin)
		return s.cal.StepMin + uint16(norm*span+0.5)
	}

	pulseUs := mathx.Lerp(float32(s.cal.MinPulse), float32(s.cal.MaxPulse), norm)
	maxTicks := uint16(4095)
	if s.drv != nil {
		maxTicks = s.drv.MaxPWM()
	}
	// ticks = pulseUs / (periodUs / maxTicks)
	return uint16(pulseUs / (float32(s.periodUs) / float32(maxTicks)))
}

// -----------------------------------------------------------------------------
// Motion control
// -----------------------------------------------------------------------------

// MoveTo starts a linear animated transition. A zero duration applies the
// target immediately.
func (s *Servo) MoveTo(target float32, duration time.Duration) {
	s.MoveToWithEasing(target, duration, EaseLinear)
}

// MoveToWithEasing starts an animated transition with the given curve.
func (s *Servo) MoveToWithEasing(target float32, duration time.Duration, easing Easing) {
	ms := duration.Milliseconds()
	if ms <= 0 {
		s.duration = 0
		s.paused = false
		s.pausedAccum = 0
		s.SetValue(target)
		return
	}
	s.startAngle = s.current
	s.targetAngle = target
	s.animStart = s.now()
	s.duration = ms
	s.easing = easing
	s.paused = false
	s.pausedAccum = 0
}

// MoveBy starts a relative animated move from the current position.
func (s *Servo) MoveBy(delta float32, duration time.Duration) {
	s.MoveTo(s.current+delta, duration)
}

// SetSpeed sets the constant-speed rate for MoveWithSpeed. Zero or negative
// disables speed mode.
func (s *Servo) SetSpeed(degPerSec float32) { s.degPerSec = degPerSec }

// MoveWithSpeed moves to target at the configured speed; with no speed set
// the move is immediate.
func (s *Servo) MoveWithSpeed(target float32) {
	if s.degPerSec <= 0 {
		s.SetValue(target)
		return
	}
	dist := mathx.Abs(target - s.current)
	dur := time.Duration(dist/s.degPerSec*1000) * time.Millisecond
	s.MoveTo(target, dur)
}

// Stop freezes the actuator where it is: the animation ends without
// snapping to the target.
func (s *Servo) Stop() {
	s.duration = 0
	s.paused = false
	s.pausedAccum = 0
}

// Pause suspends an active animation. Pausing twice is the same as pausing
// once; pausing while idle is a no-op.
func (s *Servo) Pause() {
	if s.duration > 0 && !s.paused {
		s.paused = true
		s.pausedAt = s.now()
	}
}

// Resume folds the paused interval into the animation's accumulated pause
// time so progress continues where it left off. A no-op while not paused.
func (s *Servo) Resume() {
	if s.paused {
		s.pausedAccum += s.now() - s.pausedAt
		s.paused = false
	}
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

func (s *Servo) Value() float32  { return s.current }
func (s *Servo) Target() float32 { return s.targetAngle }
func (s *Servo) Moving() bool    { return s.duration > 0 }
func (s *Servo) Paused() bool    { return s.paused }

// Remaining returns the time left on the active animation.
func (s *Servo) Remaining() time.Duration {
	if s.duration == 0 {
		return 0
	}
	elapsed := s.now() - s.animStart - s.pausedAccum
	if s.paused {
		elapsed = s.pausedAt - s.animStart - s.pausedAccum
	}
	if elapsed >= s.duration {
		return 0
	}
	return time.Duration(s.duration-elapsed) * time.Millisecond
}

// Progress returns animation progress in [0,1]; 1 while idle.
func (s *Servo) Progress() float32 {
	if s.duration == 0 {
		return 1
	}
	elapsed := s.now() - s.animStart - s.pausedAccum
	if s.paused {
		elapsed = s.pausedAt - s.animStart - s.pausedAccum
	}
	if elapsed >= s.duration {
		return 1
	}
	return float32(elapsed) / float32(s.duration)
}
