package analysis

type ReactionFeatures struct {
	MeanRT    float64
	StdRT     float64
	MinRT     float64
	Drift     float64
	MissCount float64
}

// AttentionVariabilityIndex is std/mean of reaction times, 0 without a mean.
func (f ReactionFeatures) AttentionVariabilityIndex() float64 {
	if f.MeanRT <= 0 {
		return 0
	}
	return round(f.StdRT/f.MeanRT, 4)
}

// ExtractReaction scores simple reaction trials. Drift between the first and
// second half of the session is treated as a fatigue signal.
func ExtractReaction(m ReactionMetrics, age *int, norms NormSet) (float64, ReactionFeatures) {
	f := ReactionFeatures{
		MeanRT:    mean(m.Times),
		StdRT:     stdDev(m.Times),
		MinRT:     minOf(m.Times),
		Drift:     drift(m.Times),
		MissCount: m.MissCount,
	}

	score := ZToScore(Normalize(f.MeanRT, norms.ReactionMeanRT, age, true))
	score -= clip((f.StdRT-50)*0.2, 0, 20)
	score -= clip((f.Drift-20)*0.2, 0, 15)
	score -= clip(f.MissCount*8, 0, 25)

	return clip(score, 0, 100), f
}
