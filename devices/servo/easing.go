package servo

// Easing selects the time-remap curve for animated moves. All curves are
// pure functions on normalized progress with both input and output clamped
// to [0,1].
type Easing uint8

const (
	EaseLinear Easing = iota
	EaseInQuad
	EaseOutQuad
	EaseInOutQuad
	EaseInCubic
	EaseOutCubic
)

func (e Easing) String() string {
	switch e {
	case EaseLinear:
		return "linear"
	case EaseInQuad:
		return "in-quad"
	case EaseOutQuad:
		return "out-quad"
	case EaseInOutQuad:
		return "in-out-quad"
	case EaseInCubic:
		return "in-cubic"
	case EaseOutCubic:
		return "out-cubic"
	}
	return "?"
}

// ParseEasing maps a config/console token to an Easing.
func ParseEasing(s string) (Easing, bool) {
	switch s {
	case "", "linear":
		return EaseLinear, s != ""
	case "in-quad":
		return EaseInQuad, true
	case "out-quad":
		return EaseOutQuad, true
	case "in-out-quad":
		return EaseInOutQuad, true
	case "in-cubic":
		return EaseInCubic, true
	case "out-cubic":
		return EaseOutCubic, true
	}
	return EaseLinear, false
}

// Apply remaps progress t through the curve. Unknown values fall back to
// linear.
func (e Easing) Apply(t float32) float32 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	switch e {
	case EaseInQuad:
		return t * t
	case EaseOutQuad:
		return t * (2 - t)
	case EaseInOutQuad:
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	case EaseInCubic:
		return t * t * t
	case EaseOutCubic:
		t1 := t - 1
		return t1*t1*t1 + 1
	default:
		return t
	}
}
