// Package config holds the declarative hardware topology: which PWM drivers
// exist on the I2C bus, which devices hang off them, and their calibration
// defaults. A topology is loaded once at boot, validated as a whole, and the
// system halts on any violation before a single device touches hardware.
package config

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"twist-go/errcode"
)

// Topology is the root document.
type Topology struct {
	PWMDrivers []PWMDriverSpec `yaml:"pwm_drivers"`
	Devices    []DeviceSpec    `yaml:"devices"`
}

// PWMDriverSpec describes one PCA9685 on the bus.
type PWMDriverSpec struct {
	Address uint16 `yaml:"address"`
	FreqHz  uint16 `yaml:"freq_hz"`
}

// DeviceSpec describes one device. Kind selects which of the per-kind
// sections applies; the others stay nil.
type DeviceSpec struct {
	Kind string `yaml:"kind"`
	ID   uint16 `yaml:"id"`
	Name string `yaml:"name"`

	Servo    *ServoSpec    `yaml:"servo,omitempty"`
	Joystick *JoystickSpec `yaml:"joystick,omitempty"`
	Distance *DistanceSpec `yaml:"distance,omitempty"`
}

// ServoSpec binds a servo to a PWM driver output and carries its calibration.
type ServoSpec struct {
	Driver  int   `yaml:"driver"` // index into PWMDrivers
	Channel uint8 `yaml:"channel"`

	// Calibration. Steps wins when both are present; zero values fall back
	// to the device defaults.
	MinPulseUs uint16  `yaml:"min_pulse_us"`
	MaxPulseUs uint16  `yaml:"max_pulse_us"`
	StepMin    uint16  `yaml:"step_min"`
	StepMax    uint16  `yaml:"step_max"`
	MinAngle   float32 `yaml:"min_angle"`
	MaxAngle   float32 `yaml:"max_angle"`

	SpeedDegPerSec float32 `yaml:"speed_deg_per_sec"`
}

// JoystickSpec binds a stick to two ADC pins and an optional button pin.
type JoystickSpec struct {
	XPin      uint8  `yaml:"x_pin"`
	YPin      uint8  `yaml:"y_pin"`
	ButtonPin *uint8 `yaml:"button_pin,omitempty"`
	Deadzone  uint16 `yaml:"deadzone"`
}

// DistanceSpec binds an ultrasonic ranger to its trigger/echo pins.
type DistanceSpec struct {
	TrigPin    uint8   `yaml:"trig_pin"`
	EchoPin    uint8   `yaml:"echo_pin"`
	IntervalMs int64   `yaml:"interval_ms"`
	Alpha      float32 `yaml:"alpha"`
}

// Kinds accepted by the validator and the runtime builders.
const (
	KindServo    = "servo"
	KindJoystick = "joystick"
	KindDistance = "distance"
)

// Load reads and decodes a topology document.
func Load(r io.Reader) (*Topology, error) {
	var t Topology
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "config.load", Err: err}
	}
	return &t, nil
}

// LoadFile is Load over a file path.
func LoadFile(path string) (*Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errcode.E{C: errcode.NotFound, Op: "config.load", Msg: path, Err: err}
	}
	defer f.Close()
	return Load(f)
}
