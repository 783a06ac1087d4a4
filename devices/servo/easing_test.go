package servo

import "testing"

var allEasings = []Easing{
	EaseLinear, EaseInQuad, EaseOutQuad, EaseInOutQuad, EaseInCubic, EaseOutCubic,
}

func TestEasingEndpoints(t *testing.T) {
	for _, e := range allEasings {
		if got := e.Apply(0); got != 0 {
			t.Errorf("%s(0) = %v, want 0", e, got)
		}
		if got := e.Apply(1); got != 1 {
			t.Errorf("%s(1) = %v, want 1", e, got)
		}
	}
}

func TestEasingRangeAndMonotonicity(t *testing.T) {
	const steps = 1000
	for _, e := range allEasings {
		prev := float32(0)
		for i := 0; i <= steps; i++ {
			tt := float32(i) / steps
			got := e.Apply(tt)
			if got < 0 || got > 1 {
				t.Fatalf("%s(%v) = %v out of [0,1]", e, tt, got)
			}
			if got < prev {
				t.Fatalf("%s not monotonic at t=%v: %v < %v", e, tt, got, prev)
			}
			prev = got
		}
	}
}

func TestEasingClampsInput(t *testing.T) {
	for _, e := range allEasings {
		if got := e.Apply(-0.5); got != 0 {
			t.Errorf("%s(-0.5) = %v, want 0", e, got)
		}
		if got := e.Apply(1.5); got != 1 {
			t.Errorf("%s(1.5) = %v, want 1", e, got)
		}
	}
}

func TestInOutQuadPiecewiseJoin(t *testing.T) {
	// Both pieces must agree at the t=0.5 seam.
	if got := EaseInOutQuad.Apply(0.5); got != 0.5 {
		t.Errorf("InOutQuad(0.5) = %v, want 0.5", got)
	}
}

func TestOutCubicFrontLoadsTravel(t *testing.T) {
	if got := EaseOutCubic.Apply(0.5); got <= 0.5 {
		t.Errorf("OutCubic(0.5) = %v, want > 0.5", got)
	}
}

func TestParseEasing(t *testing.T) {
	for _, e := range allEasings {
		got, ok := ParseEasing(e.String())
		if !ok || got != e {
			t.Errorf("ParseEasing(%q) = %v, %v", e.String(), got, ok)
		}
	}
	if _, ok := ParseEasing("bounce"); ok {
		t.Error("ParseEasing accepted unknown curve")
	}
}
