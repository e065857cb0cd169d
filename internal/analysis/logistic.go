package analysis

// Logistic model labels. They are non-diagnostic by contract.
const (
	LogisticNormal      = "Within normal range for age group"
	LogisticMild        = "Mild concern"
	LogisticElevated    = "Elevated indicators"
	LogisticSignificant = "Significant indicators — clinical evaluation advised"
)

const (
	logisticIntercept      = -1.5
	logisticSpeechWeight   = 0.40
	logisticMemoryWeight   = 0.40
	logisticReactionWeight = 0.20
	logisticInputScale     = 4.0
)

// AgeLeniency dampens risk signals for older users whose raw performance is
// expected to be lower.
func AgeLeniency(age *int) float64 {
	if age == nil {
		return 1.0
	}
	switch a := *age; {
	case a <= 40:
		return 1.0
	case a <= 55:
		return 1.05
	case a <= 65:
		return 1.10
	case a <= 75:
		return 1.15
	case a <= 85:
		return 1.20
	default:
		return 1.30
	}
}

// LogisticRiskProbability converts three domain scores into a probability.
func LogisticRiskProbability(speech, memory, reaction float64, age *int) (float64, string) {
	f := AgeLeniency(age)
	risk := func(score float64) float64 { return (100 - clip(score, 0, 100)) / 100 / f }

	z := logisticIntercept +
		logisticSpeechWeight*risk(speech)*logisticInputScale +
		logisticMemoryWeight*risk(memory)*logisticInputScale +
		logisticReactionWeight*risk(reaction)*logisticInputScale

	p := round(sigmoid(z), 4)
	return p, LogisticLevel(p)
}

// LogisticLevel maps a probability onto its label. Boundaries belong to the
// higher bucket.
func LogisticLevel(p float64) string {
	switch {
	case p < 0.25:
		return LogisticNormal
	case p < 0.50:
		return LogisticMild
	case p < 0.70:
		return LogisticElevated
	default:
		return LogisticSignificant
	}
}
