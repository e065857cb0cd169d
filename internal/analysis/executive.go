package analysis

const (
	stroopErrorWeight = 0.55
	stroopRTWeight    = 0.45
)

type ExecutiveFeatures struct {
	ErrorRate float64
	RT        float64
}

// ExtractExecutive scores the Stroop task from its error rate and response
// time, both of which are better when lower.
func ExtractExecutive(m StroopMetrics, age *int, norms NormSet) (float64, ExecutiveFeatures) {
	errorRate := m.DefaultErrorRate
	if m.TotalTrials > 0 {
		errorRate = clip(m.ErrorCount/m.TotalTrials, 0, 1)
	}
	rt := m.MeanRT
	if m.IncongruentRT > 0 {
		rt = m.IncongruentRT
	}

	errScore := ZToScore(Normalize(errorRate, norms.StroopErrorRate, age, true))
	rtScore := ZToScore(Normalize(rt, norms.StroopRT, age, true))
	score := stroopErrorWeight*errScore + stroopRTWeight*rtScore

	return clip(score, 0, 100), ExecutiveFeatures{ErrorRate: errorRate, RT: rt}
}
