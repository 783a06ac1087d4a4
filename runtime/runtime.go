// Package runtime assembles and drives the whole system: one event bus, one
// device registry, devices built from the declarative topology. The cycle
// model is cooperative and single-goroutine; Tick runs every device update
// and then drains the deferred event queue.
package runtime

import (
	"context"
	"time"

	"twist-go/bus"
	"twist-go/config"
	"twist-go/errcode"
	"twist-go/logx"
	"twist-go/registry"
	"twist-go/types"
	"twist-go/x/timex"
)

// Config tunes the runtime. Zero values use the same fixed capacities the
// bus and registry default to.
type Config struct {
	Listeners int
	Queue     int
	Devices   int
	Log       logx.Logger
	Clock     func() int64 // Unix ms
}

type Runtime struct {
	Bus *bus.Bus
	Reg *registry.Registry

	log   logx.Logger
	clock func() int64
	pwm   []types.PWMDriver
}

func New(cfg Config) *Runtime {
	if cfg.Clock == nil {
		cfg.Clock = timex.NowMs
	}
	if cfg.Devices == 0 {
		cfg.Devices = registry.DefaultCapacity
	}
	return &Runtime{
		Bus:   bus.New(bus.Config{Listeners: cfg.Listeners, Queue: cfg.Queue, Log: cfg.Log, Clock: cfg.Clock}),
		Reg:   registry.New(cfg.Devices, cfg.Log),
		log:   cfg.Log,
		clock: cfg.Clock,
	}
}

// Build validates the topology, constructs the PWM controllers, then builds
// and registers every device in declaration order. Any failure aborts the
// boot; nothing is half-started.
func (rt *Runtime) Build(topo *config.Topology, hw Hardware) error {
	if err := topo.Validate(); err != nil {
		return err
	}

	rt.pwm = make([]types.PWMDriver, 0, len(topo.PWMDrivers))
	for i, spec := range topo.PWMDrivers {
		drv, err := hw.PWMController(spec)
		if err != nil {
			logx.Errorf(rt.log, "RUNTIME", "pwm controller %d (0x%02X): %v", i, spec.Address, err)
			return &errcode.E{C: errcode.DriverError, Op: "runtime.build", Err: err}
		}
		rt.pwm = append(rt.pwm, drv)
	}

	for _, spec := range topo.Devices {
		b, ok := lookupBuilder(spec.Kind)
		if !ok {
			return &errcode.E{C: errcode.Unsupported, Op: "runtime.build", Msg: spec.Kind}
		}
		dev, err := b.Build(BuilderInput{
			Spec:  spec,
			HW:    hw,
			PWM:   rt.pwm,
			Bus:   rt.Bus,
			Log:   rt.log,
			Clock: rt.clock,
		})
		if err != nil {
			logx.Errorf(rt.log, "RUNTIME", "build %q: %v", spec.Name, err)
			return err
		}
		if err := rt.Reg.Register(dev); err != nil {
			return err
		}
	}

	logx.Infof(rt.log, "RUNTIME", "built %d devices, %d pwm controllers",
		rt.Reg.Count(), len(rt.pwm))
	return nil
}

// Init initializes every registered device, continuing past failures.
func (rt *Runtime) Init() error { return rt.Reg.InitAll() }

// Tick runs one full cycle: every enabled device updates, then the deferred
// event queue drains. Returns the number of events processed.
func (rt *Runtime) Tick() int {
	rt.Reg.UpdateAll()
	return rt.Bus.ProcessEvents()
}

// Run drives Tick at the given period until the context is cancelled, then
// shuts every device down.
func (rt *Runtime) Run(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			rt.Shutdown()
			return ctx.Err()
		case <-ticker.C:
			rt.Tick()
		}
	}
}

// Shutdown stops every device unconditionally.
func (rt *Runtime) Shutdown() {
	rt.Reg.ShutdownAll()
	logx.Infof(rt.log, "RUNTIME", "shutdown complete")
}
