package joystick

import (
	"twist-go/config"
	"twist-go/errcode"
	"twist-go/runtime"
	"twist-go/types"
)

func init() { runtime.RegisterBuilder(config.KindJoystick, builder{}) }

type builder struct{}

func (builder) Build(in runtime.BuilderInput) (types.Device, error) {
	spec := in.Spec.Joystick
	if spec == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "joystick.build", Msg: in.Spec.Name}
	}

	x, err := in.HW.ADCPin(spec.XPin)
	if err != nil {
		return nil, &errcode.E{C: errcode.DriverError, Op: "joystick.build", Msg: "x axis", Err: err}
	}
	y, err := in.HW.ADCPin(spec.YPin)
	if err != nil {
		return nil, &errcode.E{C: errcode.DriverError, Op: "joystick.build", Msg: "y axis", Err: err}
	}
	var button types.DigitalDriver
	if spec.ButtonPin != nil {
		button, err = in.HW.DigitalPin(*spec.ButtonPin)
		if err != nil {
			return nil, &errcode.E{C: errcode.DriverError, Op: "joystick.build", Msg: "button", Err: err}
		}
	}

	return New(Config{
		ID:       in.Spec.ID,
		Name:     in.Spec.Name,
		XAxis:    x,
		YAxis:    y,
		Button:   button,
		Bus:      in.Bus,
		Log:      in.Log,
		Deadzone: spec.Deadzone,
	}), nil
}
