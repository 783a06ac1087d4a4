package runtime

import (
	"fmt"
	"sync"

	"twist-go/bus"
	"twist-go/config"
	"twist-go/logx"
	"twist-go/types"
)

// Hardware is the board seam. The platform package implements it twice:
// real pins and buses on RP2 targets, scriptable fakes on the host.
type Hardware interface {
	PWMController(spec config.PWMDriverSpec) (types.PWMDriver, error)
	ADCPin(pin uint8) (types.ADCDriver, error)
	DigitalPin(pin uint8) (types.DigitalDriver, error)
	Ranger(spec config.DistanceSpec) (types.DistanceDriver, error)
}

// BuilderInput carries everything a device builder may need.
type BuilderInput struct {
	Spec  config.DeviceSpec
	HW    Hardware
	PWM   []types.PWMDriver // one per topology pwm_drivers entry
	Bus   *bus.Bus
	Log   logx.Logger
	Clock func() int64
}

// Builder constructs one device from its topology entry.
type Builder interface {
	Build(in BuilderInput) (types.Device, error)
}

var (
	regMu    sync.RWMutex
	builders = map[string]Builder{}
)

// RegisterBuilder wires a device kind to its builder. Called from device
// package init; a duplicate kind is a programming error.
func RegisterBuilder(kind string, b Builder) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, exists := builders[kind]; exists {
		panic(fmt.Sprintf("duplicate device builder: %s", kind))
	}
	builders[kind] = b
}

func lookupBuilder(kind string) (Builder, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	b, ok := builders[kind]
	return b, ok
}
