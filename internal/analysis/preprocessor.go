package analysis

import "math"

// Physiological reaction time window in milliseconds.
const (
	minReactionMs = 100
	maxReactionMs = 1500
)

// Longest tap interval kept, in milliseconds.
const maxTapIntervalMs = 10000

// SanitizeReactionTimes drops non-finite and non-positive trials and clips
// the rest to the physiological window.
func SanitizeReactionTimes(times []float64) []float64 {
	cleaned := make([]float64, 0, len(times))
	for _, t := range times {
		if !finite(t) || t <= 0 {
			continue
		}
		cleaned = append(cleaned, clip(t, minReactionMs, maxReactionMs))
	}
	return cleaned
}

// SanitizeIntervals drops non-finite and non-positive tap intervals.
func SanitizeIntervals(intervals []float64) []float64 {
	cleaned := make([]float64, 0, len(intervals))
	for _, v := range intervals {
		if !finite(v) || v <= 0 {
			continue
		}
		cleaned = append(cleaned, math.Min(v, maxTapIntervalMs))
	}
	return cleaned
}

// Preprocessor clamps out-of-range measurements instead of rejecting them.
// A non-finite value is replaced by its fallback.
type Preprocessor struct {
	fallback FeatureSource
}

func NewPreprocessor(fallback FeatureSource) *Preprocessor {
	if fallback == nil {
		fallback = StubSource{}
	}
	return &Preprocessor{fallback: fallback}
}

func repair(v *float64, def, lo, hi float64) {
	if !finite(*v) {
		*v = def
	}
	*v = clip(*v, lo, hi)
}

// Clean returns a copy of m with every field inside its valid domain.
func (p *Preprocessor) Clean(req AssessmentRequest, norms NormSet, m Measurements) Measurements {
	d := p.fallback.Resolve(req, norms)
	inf := math.Inf(1)

	repair(&m.Speech.WPM, d.Speech.WPM, 0, 400)
	repair(&m.Speech.SpeedDeviation, d.Speech.SpeedDeviation, 0, inf)
	repair(&m.Speech.SpeechVariability, d.Speech.SpeechVariability, 0, inf)
	repair(&m.Speech.PauseRatio, d.Speech.PauseRatio, 0, 1)
	repair(&m.Speech.CompletionRatio, d.Speech.CompletionRatio, 0, 1)
	repair(&m.Speech.RestartCount, d.Speech.RestartCount, 0, inf)
	repair(&m.Speech.StartDelay, d.Speech.StartDelay, 0, inf)

	repair(&m.Memory.ImmediateRecall, d.Memory.ImmediateRecall, 0, 100)
	repair(&m.Memory.DelayedRecall, d.Memory.DelayedRecall, 0, 100)
	repair(&m.Memory.RecallLatency, d.Memory.RecallLatency, 0, inf)
	repair(&m.Memory.OrderMatch, d.Memory.OrderMatch, 0, 1)
	repair(&m.Memory.IntrusionCount, d.Memory.IntrusionCount, 0, inf)

	repair(&m.Reaction.MissCount, d.Reaction.MissCount, 0, inf)
	repair(&m.Reaction.InitiationDelay, d.Reaction.InitiationDelay, 0, inf)
	if len(m.Reaction.Times) == 0 {
		m.Reaction.Times = d.Reaction.Times
	}

	repair(&m.Stroop.TotalTrials, 0, 0, inf)
	repair(&m.Stroop.ErrorCount, 0, 0, inf)
	repair(&m.Stroop.MeanRT, d.Stroop.MeanRT, 0, 10000)
	repair(&m.Stroop.IncongruentRT, 0, 0, 10000)
	repair(&m.Stroop.DefaultErrorRate, d.Stroop.DefaultErrorRate, 0, 1)

	repair(&m.Tap.DefaultStd, d.Tap.DefaultStd, 0, 10000)

	return m
}
