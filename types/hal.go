package types

// ------------------------
// Raw hardware contracts
// ------------------------
//
// These are the seams between device behavior and concrete hardware.
// One driver instance is injected per device at construction; devices never
// see the chip behind it.

// PWMDriver is the raw actuation sink for output devices. Values are in the
// driver's native tick resolution, 0..MaxPWM().
type PWMDriver interface {
	SetPWM(channel uint8, ticks uint16) error
	MaxPWM() uint16
}

// FrequencySetter is optionally implemented by PWM drivers whose update rate
// can be changed at runtime.
type FrequencySetter interface {
	SetFrequency(hz uint16) error
}

// ADCDriver is the raw sampling source for one analog channel.
type ADCDriver interface {
	ReadRaw() uint16
	MaxRaw() uint16
}

// DigitalDriver is a single digital input line, debounced or not.
type DigitalDriver interface {
	Read() bool
}

// DistanceDriver is a time-of-flight sampling source. Measurements are
// asynchronous: trigger, poll ready, then read. ReadDistanceCm returns a
// negative value when the last measurement was out of range.
type DistanceDriver interface {
	TriggerMeasurement()
	MeasurementReady() bool
	ReadDistanceCm() float32
	MaxRangeCm() float32
}
