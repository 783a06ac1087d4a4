package servo

import (
	"errors"
	"testing"
	"time"

	"twist-go/bus"
	"twist-go/errcode"
	"twist-go/types"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeClock struct{ ms int64 }

func (c *fakeClock) now() int64          { return c.ms }
func (c *fakeClock) advance(delta int64) { c.ms += delta }

type pwmWrite struct {
	channel uint8
	ticks   uint16
}

type fakePWM struct {
	writes []pwmWrite
	fail   error
}

func (d *fakePWM) SetPWM(channel uint8, ticks uint16) error {
	if d.fail != nil {
		return d.fail
	}
	d.writes = append(d.writes, pwmWrite{channel, ticks})
	return nil
}

func (d *fakePWM) MaxPWM() uint16 { return 4095 }

func (d *fakePWM) last(t *testing.T) pwmWrite {
	t.Helper()
	if len(d.writes) == 0 {
		t.Fatal("no PWM writes recorded")
	}
	return d.writes[len(d.writes)-1]
}

func newTestServo(t *testing.T) (*Servo, *fakePWM, *fakeClock) {
	t.Helper()
	clk := &fakeClock{}
	drv := &fakePWM{}
	s := New(Config{ID: 7, Name: "pan", Channel: 3, Driver: drv, Clock: clk.now})
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s, drv, clk
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func TestInitCentersServo(t *testing.T) {
	s, drv, _ := newTestServo(t)
	if s.State() != types.StateReady {
		t.Fatalf("state = %v, want Ready", s.State())
	}
	if s.Value() != 90 {
		t.Fatalf("Value() = %v, want 90", s.Value())
	}
	// 90 deg -> 1500us pulse -> 1500 / (20000/4095) ticks.
	got := drv.last(t)
	if got.channel != 3 {
		t.Errorf("wrote channel %d, want 3", got.channel)
	}
	if got.ticks != 307 {
		t.Errorf("center ticks = %d, want 307", got.ticks)
	}
}

func TestInitDriverFailure(t *testing.T) {
	drv := &fakePWM{fail: errors.New("bus stuck")}
	s := New(Config{Name: "pan", Driver: drv})
	err := s.Init()
	if err == nil {
		t.Fatal("Init succeeded with failing driver")
	}
	if errcode.Of(err) != errcode.DriverError {
		t.Errorf("code = %v, want DriverError", errcode.Of(err))
	}
	if s.State() != types.StateError {
		t.Errorf("state = %v, want Error", s.State())
	}
}

func TestShutdownDisables(t *testing.T) {
	s, _, _ := newTestServo(t)
	s.MoveTo(180, 2*time.Second)
	s.Shutdown()
	if s.Moving() || s.Enabled() || s.State() != types.StateDisabled {
		t.Errorf("after Shutdown: moving=%v enabled=%v state=%v",
			s.Moving(), s.Enabled(), s.State())
	}
}

// -----------------------------------------------------------------------------
// Calibration & mapping
// -----------------------------------------------------------------------------

func TestStepCalibrationEndpointsRoundTrip(t *testing.T) {
	s, drv, _ := newTestServo(t)
	if err := s.CalibrateBySteps(100, 500, 0, 180); err != nil {
		t.Fatalf("CalibrateBySteps: %v", err)
	}
	s.SetValue(0)
	if got := drv.last(t).ticks; got != 100 {
		t.Errorf("min angle ticks = %d, want 100", got)
	}
	s.SetValue(180)
	if got := drv.last(t).ticks; got != 500 {
		t.Errorf("max angle ticks = %d, want 500", got)
	}
	s.SetValue(90)
	if got := drv.last(t).ticks; got != 300 {
		t.Errorf("mid angle ticks = %d, want 300", got)
	}
}

func TestMappingMonotonic(t *testing.T) {
	s, drv, _ := newTestServo(t)
	for _, mode := range []string{"pulse", "steps"} {
		if mode == "steps" {
			if err := s.CalibrateBySteps(102, 512, 0, 180); err != nil {
				t.Fatal(err)
			}
		}
		prev := uint16(0)
		for a := float32(0); a <= 180; a++ {
			s.SetValue(a)
			got := drv.last(t).ticks
			if got < prev {
				t.Fatalf("%s mapping not monotonic at %v deg: %d < %d", mode, a, got, prev)
			}
			prev = got
		}
	}
}

func TestSetValueClampsToCalibratedRange(t *testing.T) {
	s, drv, _ := newTestServo(t)
	if err := s.CalibrateBySteps(100, 500, 10, 170); err != nil {
		t.Fatal(err)
	}
	s.SetValue(200)
	if s.Value() != 170 {
		t.Errorf("over-travel Value() = %v, want 170", s.Value())
	}
	if got := drv.last(t).ticks; got != 500 {
		t.Errorf("over-travel ticks = %d, want 500", got)
	}
	s.SetValue(-40)
	if s.Value() != 10 {
		t.Errorf("under-travel Value() = %v, want 10", s.Value())
	}
	if got := drv.last(t).ticks; got != 100 {
		t.Errorf("under-travel ticks = %d, want 100", got)
	}
}

func TestDegenerateCalibrationRejected(t *testing.T) {
	s, _, _ := newTestServo(t)
	before := s.Calibration()
	cases := []error{
		s.Calibrate(1500, 1500, 0, 180),
		s.Calibrate(2500, 500, 0, 180),
		s.Calibrate(500, 2500, 90, 90),
		s.CalibrateBySteps(300, 300, 0, 180),
		s.CalibrateBySteps(100, 500, 180, 0),
	}
	for i, err := range cases {
		if errcode.Of(err) != errcode.InvalidCalibration {
			t.Errorf("case %d: err = %v, want InvalidCalibration", i, err)
		}
	}
	if s.Calibration() != before {
		t.Error("rejected calibration mutated the active curve")
	}
}

func TestSetNormalized(t *testing.T) {
	s, _, _ := newTestServo(t)
	if err := s.CalibrateBySteps(100, 500, 20, 120); err != nil {
		t.Fatal(err)
	}
	s.SetNormalized(0)
	if s.Value() != 20 {
		t.Errorf("SetNormalized(0): Value() = %v, want 20", s.Value())
	}
	s.SetNormalized(1)
	if s.Value() != 120 {
		t.Errorf("SetNormalized(1): Value() = %v, want 120", s.Value())
	}
	s.SetNormalized(2) // clamped
	if s.Value() != 120 {
		t.Errorf("SetNormalized(2): Value() = %v, want 120", s.Value())
	}
}

func TestSnapshotRestore(t *testing.T) {
	s, _, _ := newTestServo(t)
	if err := s.CalibrateBySteps(100, 500, 0, 180); err != nil {
		t.Fatal(err)
	}
	s.SetValue(45)
	sn := s.SnapshotState()

	other, _, _ := newTestServo(t)
	if err := other.Restore(sn); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if other.Value() != 45 {
		t.Errorf("restored Value() = %v, want 45", other.Value())
	}
	if other.Calibration() != sn.Calibration {
		t.Error("restored calibration differs from snapshot")
	}

	sn.Calibration.StepMax = sn.Calibration.StepMin
	if err := other.Restore(sn); errcode.Of(err) != errcode.InvalidCalibration {
		t.Errorf("Restore with degenerate curve: err = %v, want InvalidCalibration", err)
	}
}

// -----------------------------------------------------------------------------
// Motion
// -----------------------------------------------------------------------------

func TestMoveToWithEasingOutCubic(t *testing.T) {
	s, _, clk := newTestServo(t)
	s.SetValue(0)
	s.MoveToWithEasing(180, 3*time.Second, EaseOutCubic)
	if !s.Moving() {
		t.Fatal("not moving after MoveToWithEasing")
	}

	clk.advance(1500)
	s.Update()
	if v := s.Value(); v <= 90 || v >= 180 {
		t.Errorf("halfway value = %v, want in (90,180)", v)
	}
	if !s.Moving() {
		t.Error("animation ended early")
	}

	clk.advance(1500)
	s.Update()
	if s.Value() != 180 {
		t.Errorf("final value = %v, want exactly 180", s.Value())
	}
	if s.Moving() {
		t.Error("still moving after completion")
	}
}

func TestMoveToZeroDurationIsImmediate(t *testing.T) {
	s, _, _ := newTestServo(t)
	s.MoveTo(120, 0)
	if s.Moving() {
		t.Error("zero-duration move left animation active")
	}
	if s.Value() != 120 {
		t.Errorf("Value() = %v, want 120", s.Value())
	}
}

func TestMoveBy(t *testing.T) {
	s, _, clk := newTestServo(t)
	s.SetValue(40)
	s.MoveBy(30, time.Second)
	clk.advance(1000)
	s.Update()
	if s.Value() != 70 {
		t.Errorf("Value() = %v, want 70", s.Value())
	}
}

func TestUpdateNoopWhileDisabledOrNotReady(t *testing.T) {
	s, _, clk := newTestServo(t)
	s.SetValue(0)
	s.MoveTo(180, time.Second)
	s.Disable()
	clk.advance(500)
	s.Update()
	if s.Value() != 0 {
		t.Errorf("Update moved a disabled servo to %v", s.Value())
	}
	s.Enable()
	clk.advance(500)
	s.Update()
	if s.Value() != 180 {
		t.Errorf("Value() = %v after re-enable, want 180", s.Value())
	}
}

func TestStopFreezesInPlace(t *testing.T) {
	s, _, clk := newTestServo(t)
	s.SetValue(0)
	s.MoveTo(100, time.Second)
	clk.advance(250)
	s.Update()
	if s.Value() != 25 {
		t.Fatalf("mid value = %v, want 25", s.Value())
	}
	s.Stop()
	if s.Moving() {
		t.Error("Moving() after Stop")
	}
	clk.advance(1000)
	s.Update()
	if s.Value() != 25 {
		t.Errorf("Value() = %v after Stop, want 25", s.Value())
	}
}

func TestPauseResumeContinuity(t *testing.T) {
	s, _, clk := newTestServo(t)
	s.SetValue(0)
	s.MoveTo(100, time.Second)
	clk.advance(500)
	s.Update()
	if s.Value() != 50 {
		t.Fatalf("mid value = %v, want 50", s.Value())
	}

	s.Pause()
	clk.advance(50)
	s.Pause() // double pause, same as single
	if !s.Paused() {
		t.Fatal("not paused")
	}
	clk.advance(250)
	s.Update()
	if s.Value() != 50 {
		t.Errorf("value drifted to %v while paused", s.Value())
	}
	if got := s.Remaining(); got != 500*time.Millisecond {
		t.Errorf("Remaining() = %v while paused, want 500ms", got)
	}

	s.Resume()
	s.Resume() // resume while running is a no-op
	clk.advance(250)
	s.Update()
	if s.Value() != 75 {
		t.Errorf("value = %v after resume, want 75", s.Value())
	}
	clk.advance(250)
	s.Update()
	if s.Value() != 100 || s.Moving() {
		t.Errorf("value = %v moving = %v, want 100 false", s.Value(), s.Moving())
	}
}

func TestPauseWhileIdleIsNoop(t *testing.T) {
	s, _, _ := newTestServo(t)
	s.Pause()
	if s.Paused() {
		t.Error("Pause armed with no animation active")
	}
}

func TestSpeedMode(t *testing.T) {
	s, _, clk := newTestServo(t)
	s.SetValue(0)
	s.SetSpeed(90)
	s.MoveWithSpeed(180) // 180 deg at 90 deg/s = 2s
	if got := s.Remaining(); got != 2*time.Second {
		t.Errorf("Remaining() = %v, want 2s", got)
	}
	clk.advance(1000)
	s.Update()
	if s.Value() != 90 {
		t.Errorf("value at 1s = %v, want 90", s.Value())
	}
	clk.advance(1000)
	s.Update()
	if s.Value() != 180 {
		t.Errorf("value at 2s = %v, want 180", s.Value())
	}
}

func TestSpeedModeUnsetIsImmediate(t *testing.T) {
	s, _, _ := newTestServo(t)
	s.MoveWithSpeed(30)
	if s.Moving() {
		t.Error("MoveWithSpeed animated without a configured speed")
	}
	if s.Value() != 30 {
		t.Errorf("Value() = %v, want 30", s.Value())
	}
}

func TestProgress(t *testing.T) {
	s, _, clk := newTestServo(t)
	if s.Progress() != 1 {
		t.Errorf("idle Progress() = %v, want 1", s.Progress())
	}
	s.SetValue(0)
	s.MoveTo(100, time.Second)
	clk.advance(250)
	if got := s.Progress(); got != 0.25 {
		t.Errorf("Progress() = %v, want 0.25", got)
	}
}

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

func TestMovedEventPublishedSynchronously(t *testing.T) {
	clk := &fakeClock{}
	b := bus.New(bus.Config{Clock: clk.now})
	drv := &fakePWM{}
	s := New(Config{ID: 7, Name: "pan", Driver: drv, Bus: b, Clock: clk.now})

	var got []Moved
	b.Subscribe(EventMoved, func(ev bus.Event) {
		if ev.Source != 7 {
			t.Errorf("Source = %d, want 7", ev.Source)
		}
		got = append(got, ev.Payload.(Moved))
	}, bus.PriorityNormal)

	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	s.SetValue(45)

	if len(got) != 2 { // centering write + explicit write
		t.Fatalf("got %d moved events, want 2", len(got))
	}
	if got[1].Angle != 45 {
		t.Errorf("moved angle = %v, want 45", got[1].Angle)
	}
	if got[1].Raw != drv.last(t).ticks {
		t.Errorf("moved raw = %d, want %d", got[1].Raw, drv.last(t).ticks)
	}
}

func TestMoveCompleteEventDeferred(t *testing.T) {
	clk := &fakeClock{}
	b := bus.New(bus.Config{Clock: clk.now})
	s := New(Config{ID: 7, Driver: &fakePWM{}, Bus: b, Clock: clk.now})
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	var done []MoveComplete
	b.Subscribe(EventMoveComplete, func(ev bus.Event) {
		done = append(done, ev.Payload.(MoveComplete))
	}, bus.PriorityHigh)

	s.SetValue(0)
	s.MoveTo(180, time.Second)
	clk.advance(1000)
	s.Update()
	if len(done) != 0 {
		t.Fatal("completion delivered before ProcessEvents")
	}
	b.ProcessEvents()
	if len(done) != 1 || done[0].Angle != 180 {
		t.Fatalf("completion events = %v, want one at 180", done)
	}
}
