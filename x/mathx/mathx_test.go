package mathx

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("Clamp(5,0,10) = %d", got)
	}
	if got := Clamp(-1, 0, 10); got != 0 {
		t.Errorf("Clamp(-1,0,10) = %d", got)
	}
	if got := Clamp(11, 0, 10); got != 10 {
		t.Errorf("Clamp(11,0,10) = %d", got)
	}
	// Swapped bounds behave the same.
	if got := Clamp(11, 10, 0); got != 10 {
		t.Errorf("Clamp(11,10,0) = %d", got)
	}
	if got := Clamp(float32(1.5), 0, 1); got != 1 {
		t.Errorf("Clamp(1.5,0,1) = %v", got)
	}
}

func TestNorm(t *testing.T) {
	cases := []struct {
		v, lo, hi, want float32
	}{
		{0, 0, 180, 0},
		{180, 0, 180, 1},
		{90, 0, 180, 0.5},
		{-10, 0, 180, 0},   // clamped low
		{200, 0, 180, 1},   // clamped high
		{50, 50, 50, 0},    // degenerate span
	}
	for _, c := range cases {
		if got := Norm(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("Norm(%v,%v,%v) = %v, want %v", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestMapRange(t *testing.T) {
	if got := MapRange(90, 0, 180, 150, 600); got != 375 {
		t.Errorf("MapRange midpoint = %v, want 375", got)
	}
	if got := MapRange(0, 0, 180, 150, 600); got != 150 {
		t.Errorf("MapRange low endpoint = %v, want 150", got)
	}
	if got := MapRange(180, 0, 180, 150, 600); got != 600 {
		t.Errorf("MapRange high endpoint = %v, want 600", got)
	}
}

func TestRoundDiv(t *testing.T) {
	// 25 MHz / (4096 * 50 Hz) rounds to 122; prescale is that minus one.
	if got := RoundDiv(uint32(25_000_000), 4096*50); got != 122 {
		t.Errorf("RoundDiv(25e6, 204800) = %d, want 122", got)
	}
	if got := RoundDiv(uint32(10), 4); got != 3 {
		t.Errorf("RoundDiv(10,4) = %d, want 3", got)
	}
}
