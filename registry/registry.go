// Package registry is the single authoritative index of live devices.
// It drives bulk lifecycle (init/update/shutdown) and provides safe typed
// narrowing to input/output capabilities. The registry never owns devices:
// construction and destruction stay with the application layer, the registry
// holds references only.
//
// All methods are meant for the single control goroutine; there is no
// internal locking.
package registry

import (
	"errors"

	"twist-go/errcode"
	"twist-go/logx"
	"twist-go/types"
)

// DefaultCapacity bounds the registry table when no capacity is given.
const DefaultCapacity = 32

// Filter selects devices for FindAll/ForEachMatch. Zero values mean "any":
// empty Kind, zero capability mask, and StateUninitialized each match
// everything.
type Filter struct {
	Kind  types.Kind
	Caps  types.Capability
	State types.State
}

func (f Filter) matches(d types.Device) bool {
	if f.Kind != "" && d.Info().Kind != f.Kind {
		return false
	}
	if f.Caps != 0 && !d.Capabilities().Has(f.Caps) {
		return false
	}
	if f.State != types.StateUninitialized && d.State() != f.State {
		return false
	}
	return true
}

// Registry holds up to a fixed number of device references in registration
// order. The table is allocated once; registering past capacity fails
// without growing it.
type Registry struct {
	devices []types.Device
	log     logx.Logger
}

func New(capacity int, log logx.Logger) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		devices: make([]types.Device, 0, capacity),
		log:     log,
	}
}

// -----------------------------------------------------------------------------
// Registration
// -----------------------------------------------------------------------------

// Register adds a device. IDs are the primary key: a duplicate is rejected
// even though the topology validator should have caught it earlier.
func (r *Registry) Register(d types.Device) error {
	if d == nil {
		return errcode.InvalidParams
	}
	if len(r.devices) == cap(r.devices) {
		logx.Errorf(r.log, "REGISTRY", "table full (%d), cannot register", cap(r.devices))
		return errcode.RegistryFull
	}
	info := d.Info()
	if r.Find(info.ID) != nil {
		logx.Errorf(r.log, "REGISTRY", "device id %d already registered", info.ID)
		return errcode.DuplicateID
	}
	r.devices = append(r.devices, d)
	logx.Infof(r.log, "REGISTRY", "registered %s (id %d, kind %s)", info.Name, info.ID, info.Kind)
	return nil
}

// Unregister removes the device with the given id, preserving the relative
// order of the remaining devices. It reports whether anything was removed.
func (r *Registry) Unregister(id uint16) bool {
	for i, d := range r.devices {
		if d.Info().ID == id {
			copy(r.devices[i:], r.devices[i+1:])
			r.devices[len(r.devices)-1] = nil
			r.devices = r.devices[:len(r.devices)-1]
			logx.Infof(r.log, "REGISTRY", "unregistered id %d", id)
			return true
		}
	}
	return false
}

// UnregisterAll empties the table. The devices themselves are untouched.
func (r *Registry) UnregisterAll() {
	for i := range r.devices {
		r.devices[i] = nil
	}
	r.devices = r.devices[:0]
}

// -----------------------------------------------------------------------------
// Discovery
// -----------------------------------------------------------------------------

// Find returns the device with the given id, or nil.
func (r *Registry) Find(id uint16) types.Device {
	for _, d := range r.devices {
		if d.Info().ID == id {
			return d
		}
	}
	return nil
}

// FindByName returns the first device with that name in registration order,
// or nil. Names should be unique; with duplicates the first registration
// wins deterministically.
func (r *Registry) FindByName(name string) types.Device {
	if name == "" {
		return nil
	}
	for _, d := range r.devices {
		if d.Info().Name == name {
			return d
		}
	}
	return nil
}

// FindAll fills dst with devices matching f, in registration order, silently
// truncating at len(dst). It returns the number of matches written.
func (r *Registry) FindAll(f Filter, dst []types.Device) int {
	n := 0
	for _, d := range r.devices {
		if n >= len(dst) {
			break
		}
		if f.matches(d) {
			dst[n] = d
			n++
		}
	}
	return n
}

// ForEach visits every device in registration order.
func (r *Registry) ForEach(fn func(types.Device)) {
	if fn == nil {
		return
	}
	for _, d := range r.devices {
		fn(d)
	}
}

// ForEachMatch visits every device matching f, in registration order.
func (r *Registry) ForEachMatch(f Filter, fn func(types.Device)) {
	if fn == nil {
		return
	}
	for _, d := range r.devices {
		if f.matches(d) {
			fn(d)
		}
	}
}

// -----------------------------------------------------------------------------
// Counts & typed access
// -----------------------------------------------------------------------------

func (r *Registry) Count() int { return len(r.devices) }

func (r *Registry) InputCount() int {
	n := 0
	for _, d := range r.devices {
		if d.Capabilities().Has(types.CapInput) {
			n++
		}
	}
	return n
}

func (r *Registry) OutputCount() int {
	n := 0
	for _, d := range r.devices {
		if d.Capabilities().Has(types.CapOutput) {
			n++
		}
	}
	return n
}

// Input returns the device as an InputDevice, or nil when the id is unknown
// or the device lacks the input capability. The capability bit is checked
// before the interface assertion; there is no unchecked narrowing.
func (r *Registry) Input(id uint16) types.InputDevice {
	d := r.Find(id)
	if d == nil || !d.Capabilities().Has(types.CapInput) {
		return nil
	}
	in, ok := d.(types.InputDevice)
	if !ok {
		return nil
	}
	return in
}

// Output returns the device as an OutputDevice, or nil when the id is
// unknown or the device lacks the output capability.
func (r *Registry) Output(id uint16) types.OutputDevice {
	d := r.Find(id)
	if d == nil || !d.Capabilities().Has(types.CapOutput) {
		return nil
	}
	out, ok := d.(types.OutputDevice)
	if !ok {
		return nil
	}
	return out
}

// -----------------------------------------------------------------------------
// Bulk lifecycle
// -----------------------------------------------------------------------------

// InitAll initializes every device in registration order. A failure does not
// abort the pass; all failures are joined into the returned error.
func (r *Registry) InitAll() error {
	var errs []error
	for _, d := range r.devices {
		info := d.Info()
		if err := d.Init(); err != nil {
			logx.Errorf(r.log, "REGISTRY", "init %s failed: %v", info.Name, err)
			errs = append(errs, &errcode.E{C: errcode.Of(err), Op: "init", Msg: info.Name, Err: err})
			continue
		}
		logx.Infof(r.log, "REGISTRY", "init %s ok", info.Name)
	}
	return errors.Join(errs...)
}

// UpdateAll runs one cycle: Update on every enabled device, in registration
// order. Disabled devices are skipped.
func (r *Registry) UpdateAll() {
	for _, d := range r.devices {
		if d.Enabled() {
			d.Update()
		}
	}
}

// ShutdownAll shuts every device down, enabled or not.
func (r *Registry) ShutdownAll() {
	for _, d := range r.devices {
		d.Shutdown()
	}
}
