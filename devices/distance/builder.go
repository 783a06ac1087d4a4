package distance

import (
	"twist-go/config"
	"twist-go/errcode"
	"twist-go/runtime"
	"twist-go/types"
)

func init() { runtime.RegisterBuilder(config.KindDistance, builder{}) }

type builder struct{}

func (builder) Build(in runtime.BuilderInput) (types.Device, error) {
	spec := in.Spec.Distance
	if spec == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "distance.build", Msg: in.Spec.Name}
	}

	drv, err := in.HW.Ranger(*spec)
	if err != nil {
		return nil, &errcode.E{C: errcode.DriverError, Op: "distance.build", Msg: in.Spec.Name, Err: err}
	}

	return New(Config{
		ID:         in.Spec.ID,
		Name:       in.Spec.Name,
		Driver:     drv,
		Bus:        in.Bus,
		Log:        in.Log,
		Clock:      in.Clock,
		IntervalMs: spec.IntervalMs,
		Alpha:      spec.Alpha,
	}), nil
}
