package analysis

import (
	"fmt"
	"math"
)

// Composite tier labels.
const (
	LevelLow          = "Low"
	LevelMildConcern  = "Mild Concern"
	LevelModerateRisk = "Moderate Risk"
	LevelHighRisk     = "High Risk"
)

// The confidence band is narrowest at the extremes and widest at 50.
const (
	baseHalfWidth     = 6.0
	boundaryHalfWidth = 4.0
)

// Scorer aggregates domain impairment into one composite risk score.
type Scorer struct {
	weights    Weights
	thresholds Thresholds
}

func NewScorer(w Weights, t Thresholds) *Scorer {
	return &Scorer{weights: w, thresholds: t}
}

// Impairment returns w_i * (100 - s_i) for each domain, in the order speech,
// memory, reaction, executive, motor.
func (s *Scorer) Impairment(d DomainScores) [5]float64 {
	w := s.weights
	return [5]float64{
		w.Speech * (100 - d.Speech),
		w.Memory * (100 - d.Memory),
		w.Reaction * (100 - d.Reaction),
		w.Executive * (100 - d.Executive),
		w.Motor * (100 - d.Motor),
	}
}

// BaseRisk is the weighted impairment sum clamped to [0, 100].
func (s *Scorer) BaseRisk(d DomainScores) float64 {
	total := 0.0
	for _, c := range s.Impairment(d) {
		total += c
	}
	return clip(total, 0, 100)
}

// HalfWidth is the confidence band half-width at the given risk.
func HalfWidth(risk float64) float64 {
	proximity := 1 - math.Abs(clip(risk, 0, 100)-50)/50
	return baseHalfWidth + boundaryHalfWidth*proximity
}

// Level maps a composite risk onto its tier.
func (s *Scorer) Level(risk float64) string {
	switch {
	case risk < s.thresholds.Mild:
		return LevelLow
	case risk < s.thresholds.Moderate:
		return LevelMildConcern
	case risk < s.thresholds.High:
		return LevelModerateRisk
	default:
		return LevelHighRisk
	}
}

// Score computes the composite risk. The weighted impairment is scaled by the
// medical condition factor before the band and tier are derived.
func (s *Scorer) Score(d DomainScores, conditions Conditions) CompositeResult {
	// The reported score is the one the tier and band are derived from.
	risk := round(clip(s.BaseRisk(d)*ConditionFactor(conditions), 0, 100), 2)
	hw := HalfWidth(risk)
	lower := round(math.Max(0, risk-hw), 2)
	upper := round(math.Min(100, risk+hw), 2)

	return CompositeResult{
		Score:            risk,
		Level:            s.Level(risk),
		Lower:            lower,
		Upper:            upper,
		IntervalLabel:    fmt.Sprintf("%.1f to %.1f", lower, upper),
		ModelUncertainty: round(hw/100, 3),
	}
}
