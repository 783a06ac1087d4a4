//go:build rp2040 || rp2350

package platform

import (
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"

	"twist-go/config"
	"twist-go/drivers/pca9685"
	"twist-go/runtime"
	"twist-go/types"
)

// Board implements runtime.Hardware on Raspberry Pi Pico / Pico 2. One I2C
// bus at 400kHz on the board-default pins carries every PWM controller.
type Board struct {
	i2cReady bool
}

var _ runtime.Hardware = (*Board)(nil)

func NewBoard() *Board { return &Board{} }

func (b *Board) i2c() drivers.I2C {
	if !b.i2cReady {
		_ = machine.I2C0.Configure(machine.I2CConfig{
			Frequency: 400 * machine.KHz,
			SDA:       machine.I2C0_SDA_PIN,
			SCL:       machine.I2C0_SCL_PIN,
		})
		b.i2cReady = true
	}
	return machine.I2C0
}

func (b *Board) PWMController(spec config.PWMDriverSpec) (types.PWMDriver, error) {
	d := pca9685.New(b.i2c(), pca9685.Config{Address: spec.Address})
	if err := d.Configure(pca9685.Config{Address: spec.Address, FreqHz: spec.FreqHz}); err != nil {
		return nil, err
	}
	return d, nil
}

func (b *Board) ADCPin(pin uint8) (types.ADCDriver, error) {
	machine.InitADC()
	a := machine.ADC{Pin: machine.Pin(pin)}
	a.Configure(machine.ADCConfig{})
	return &rp2ADC{adc: a}, nil
}

func (b *Board) DigitalPin(pin uint8) (types.DigitalDriver, error) {
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &rp2Digital{p: p}, nil
}

func (b *Board) Ranger(spec config.DistanceSpec) (types.DistanceDriver, error) {
	trig := machine.Pin(spec.TrigPin)
	echo := machine.Pin(spec.EchoPin)
	trig.Configure(machine.PinConfig{Mode: machine.PinOutput})
	echo.Configure(machine.PinConfig{Mode: machine.PinInput})
	return &hcsr04{trig: trig, echo: echo}, nil
}

// ConsolePort configures UART0 on the default pins for the maintenance
// console.
func (b *Board) ConsolePort(baud uint32) *uartx.UART {
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	return u
}

// ---- ADC ----

type rp2ADC struct{ adc machine.ADC }

// machine.ADC.Get is left-aligned 16-bit; devices normalize against MaxRaw
// so no downshift is needed.
func (a *rp2ADC) ReadRaw() uint16 { return a.adc.Get() }
func (a *rp2ADC) MaxRaw() uint16  { return 0xFFFF }

// ---- digital in ----

type rp2Digital struct{ p machine.Pin }

// Active-low: the pull-up holds the line high until the button shorts it.
func (d *rp2Digital) Read() bool { return !d.p.Get() }

// ---- HC-SR04 ----

// hcsr04 bit-bangs the trigger/echo protocol. A measurement blocks for the
// echo duration, bounded by the sensor's 25ms out-of-range timeout.
type hcsr04 struct {
	trig   machine.Pin
	echo   machine.Pin
	lastCm float32
	valid  bool
}

const echoTimeout = 25 * time.Millisecond

func (h *hcsr04) TriggerMeasurement() {
	h.trig.Low()
	time.Sleep(2 * time.Microsecond)
	h.trig.High()
	time.Sleep(10 * time.Microsecond)
	h.trig.Low()

	start := time.Now()
	for !h.echo.Get() {
		if time.Since(start) > echoTimeout {
			h.valid = false
			return
		}
	}
	rise := time.Now()
	for h.echo.Get() {
		if time.Since(rise) > echoTimeout {
			h.valid = false
			return
		}
	}
	// Sound travels 343m/s; the pulse covers the round trip.
	h.lastCm = float32(time.Since(rise).Microseconds()) / 58.0
	h.valid = true
}

func (h *hcsr04) MeasurementReady() bool { return h.valid }

func (h *hcsr04) ReadDistanceCm() float32 {
	if !h.valid {
		return -1
	}
	return h.lastCm
}

func (h *hcsr04) MaxRangeCm() float32 { return 400 }
