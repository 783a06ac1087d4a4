package mathx

// Lerp returns a + t*(b-a). t is not clamped; callers that need a bounded
// result clamp t first.
func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

// Norm maps v in [lo,hi] to [0,1], clamped. A degenerate range returns 0;
// calibration code rejects zero spans before they reach here.
func Norm(v, lo, hi float32) float32 {
	if hi == lo {
		return 0
	}
	return Clamp((v-lo)/(hi-lo), 0, 1)
}

// MapRange maps v in [inLo,inHi] to [outLo,outHi] linearly, clamping to the
// input range first.
func MapRange(v, inLo, inHi, outLo, outHi float32) float32 {
	return Lerp(outLo, outHi, Norm(v, inLo, inHi))
}
