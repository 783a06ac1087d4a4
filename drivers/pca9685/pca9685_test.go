package pca9685

import (
	"errors"
	"testing"
)

// fakeI2C records writes and serves canned register reads.
type fakeI2C struct {
	writes [][]byte
	regs   map[byte]byte
	fail   error
}

func newFakeI2C() *fakeI2C {
	return &fakeI2C{regs: map[byte]byte{}}
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if f.fail != nil {
		return f.fail
	}
	if addr != AddressDefault {
		return errors.New("wrong address")
	}
	cp := make([]byte, len(w))
	copy(cp, w)
	f.writes = append(f.writes, cp)
	if len(r) > 0 {
		r[0] = f.regs[w[0]]
	} else if len(w) == 2 {
		f.regs[w[0]] = w[1]
	}
	return nil
}

func (f *fakeI2C) lastWrite(t *testing.T) []byte {
	t.Helper()
	if len(f.writes) == 0 {
		t.Fatal("no I2C writes recorded")
	}
	return f.writes[len(f.writes)-1]
}

func TestSetPWMEncodesChannelRegisters(t *testing.T) {
	bus := newFakeI2C()
	d := New(bus, Config{})
	if err := d.SetPWM(3, 0x123); err != nil {
		t.Fatalf("SetPWM: %v", err)
	}
	got := bus.lastWrite(t)
	want := []byte{regLED0OnL + 12, 0x00, 0x00, 0x23, 0x01}
	if len(got) != len(want) {
		t.Fatalf("wrote %x, want %x", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("wrote %x, want %x", got, want)
		}
	}
}

func TestSetPWMSaturatesAtFullScale(t *testing.T) {
	bus := newFakeI2C()
	d := New(bus, Config{})
	if err := d.SetPWM(0, 5000); err != nil {
		t.Fatalf("SetPWM: %v", err)
	}
	got := bus.lastWrite(t)
	off := uint16(got[3]) | uint16(got[4])<<8
	if off != maxTicks {
		t.Errorf("off ticks = %d, want %d", off, maxTicks)
	}
}

func TestSetPWMRejectsBadChannel(t *testing.T) {
	d := New(newFakeI2C(), Config{})
	if err := d.SetPWM(16, 100); err != ErrBadChannel {
		t.Errorf("err = %v, want ErrBadChannel", err)
	}
}

func TestSetFrequencyPrescale(t *testing.T) {
	cases := []struct {
		hz       uint16
		prescale byte
	}{
		{50, 121}, // hobby servo frame rate
		{60, 101},
		{1000, 5},
	}
	for _, c := range cases {
		bus := newFakeI2C()
		d := New(bus, Config{})
		if err := d.SetFrequency(c.hz); err != nil {
			t.Fatalf("SetFrequency(%d): %v", c.hz, err)
		}
		if got := bus.regs[regPrescale]; got != c.prescale {
			t.Errorf("prescale for %dHz = %d, want %d", c.hz, got, c.prescale)
		}
	}
}

func TestSetFrequencySleepWritePrecedesPrescale(t *testing.T) {
	bus := newFakeI2C()
	d := New(bus, Config{})
	if err := d.SetFrequency(50); err != nil {
		t.Fatal(err)
	}
	sleepIdx, prescaleIdx := -1, -1
	for i, w := range bus.writes {
		if len(w) == 2 && w[0] == regMode1 && w[1]&mode1Sleep != 0 && sleepIdx == -1 {
			sleepIdx = i
		}
		if len(w) == 2 && w[0] == regPrescale {
			prescaleIdx = i
		}
	}
	if sleepIdx == -1 || prescaleIdx == -1 || sleepIdx > prescaleIdx {
		t.Errorf("prescale written outside sleep window (sleep=%d prescale=%d)",
			sleepIdx, prescaleIdx)
	}
	last := bus.lastWrite(t)
	if last[0] != regMode1 || last[1]&mode1Restart == 0 {
		t.Errorf("final write %x, want MODE1 restart", last)
	}
}

func TestSetFrequencyRejectsOutOfRange(t *testing.T) {
	d := New(newFakeI2C(), Config{})
	for _, hz := range []uint16{0, 10, 2000} {
		if err := d.SetFrequency(hz); err != ErrBadFrequency {
			t.Errorf("SetFrequency(%d) = %v, want ErrBadFrequency", hz, err)
		}
	}
}

func TestConfigureDefaults(t *testing.T) {
	bus := newFakeI2C()
	d := New(bus, Config{})
	if err := d.Configure(Config{}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if got := bus.regs[regPrescale]; got != 121 {
		t.Errorf("default prescale = %d, want 121 (50Hz)", got)
	}
	if bus.regs[regMode2]&mode2OutDrv == 0 {
		t.Error("MODE2 totem-pole bit not set")
	}
}

func TestAllOff(t *testing.T) {
	bus := newFakeI2C()
	d := New(bus, Config{})
	if err := d.AllOff(); err != nil {
		t.Fatal(err)
	}
	got := bus.lastWrite(t)
	if got[0] != regAllLEDOn+3 || got[1] != fullOff {
		t.Errorf("wrote %x, want ALL_LED_OFF_H full-off", got)
	}
}

func TestConnected(t *testing.T) {
	bus := newFakeI2C()
	d := New(bus, Config{})
	if !d.Connected() {
		t.Error("Connected() = false on healthy bus")
	}
	bus.fail = errors.New("nak")
	if d.Connected() {
		t.Error("Connected() = true on failing bus")
	}
}
