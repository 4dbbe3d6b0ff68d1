package signals

import "sessionTrader/internal/strategy/indicators"

// Below reports value < threshold.
func Below(value, threshold float64) bool {
	return value < threshold
}

// Above reports value > threshold.
func Above(value, threshold float64) bool {
	return value > threshold
}

// BelowAt reports s[i] < threshold; false while s[i] is undefined.
func BelowAt(s indicators.Series, i int, threshold float64) bool {
	v, err := s.At(i).Take()
	return err == nil && Below(v, threshold)
}

// AboveAt reports s[i] > threshold; false while s[i] is undefined.
func AboveAt(s indicators.Series, i int, threshold float64) bool {
	v, err := s.At(i).Take()
	return err == nil && Above(v, threshold)
}

// BelowScaled reports a[i] < b[i]*factor with both defined.
// Used for comparisons such as volume against a fraction of its moving average.
func BelowScaled(a, b indicators.Series, i int, factor float64) bool {
	av, errA := a.At(i).Take()
	bv, errB := b.At(i).Take()
	return errA == nil && errB == nil && Below(av, bv*factor)
}

// EnteredAbove is true when s crosses from at-or-below threshold to above it at i.
func EnteredAbove(s indicators.Series, i int, threshold float64) bool {
	return AboveAt(s, i, threshold) && s.Defined(i-1) && !AboveAt(s, i-1, threshold)
}

// EnteredBelow is true when s crosses from at-or-above threshold to below it at i.
func EnteredBelow(s indicators.Series, i int, threshold float64) bool {
	return BelowAt(s, i, threshold) && s.Defined(i-1) && !BelowAt(s, i-1, threshold)
}
