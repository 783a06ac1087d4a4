package servo

import (
	"twist-go/config"
	"twist-go/errcode"
	"twist-go/runtime"
	"twist-go/types"
)

func init() { runtime.RegisterBuilder(config.KindServo, builder{}) }

type builder struct{}

func (builder) Build(in runtime.BuilderInput) (types.Device, error) {
	spec := in.Spec.Servo
	if spec == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "servo.build", Msg: in.Spec.Name}
	}
	if spec.Driver < 0 || spec.Driver >= len(in.PWM) {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "servo.build", Msg: "driver index"}
	}

	s := New(Config{
		ID:      in.Spec.ID,
		Name:    in.Spec.Name,
		Channel: spec.Channel,
		Driver:  in.PWM[spec.Driver],
		Bus:     in.Bus,
		Log:     in.Log,
		Clock:   in.Clock,
	})

	minAngle, maxAngle := spec.MinAngle, spec.MaxAngle
	if minAngle == 0 && maxAngle == 0 {
		minAngle, maxAngle = 0, 180
	}
	var err error
	switch {
	case spec.StepMin != 0 || spec.StepMax != 0:
		err = s.CalibrateBySteps(spec.StepMin, spec.StepMax, minAngle, maxAngle)
	case spec.MinPulseUs != 0 || spec.MaxPulseUs != 0:
		err = s.Calibrate(spec.MinPulseUs, spec.MaxPulseUs, minAngle, maxAngle)
	}
	if err != nil {
		return nil, err
	}

	if spec.SpeedDegPerSec > 0 {
		s.SetSpeed(spec.SpeedDegPerSec)
	}
	return s, nil
}
