package analysis

const minTapSamples = 3

// ExtractMotor scores rhythmic tapping. Lower interval variability is better.
// It returns the score and the interval standard deviation it used.
func ExtractMotor(m TapMetrics, age *int, norms NormSet) (float64, float64) {
	std := m.DefaultStd
	if len(m.Intervals) >= minTapSamples {
		std = stdDev(m.Intervals)
	}
	score := ZToScore(Normalize(std, norms.TapIntervalStd, age, true))
	return clip(score, 0, 100), std
}
