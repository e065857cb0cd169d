package analysis

import (
	"fmt"
	"math"
)

// weightTolerance bounds how far the composite weights may drift from 1.0.
const weightTolerance = 1e-6

// Weights are the composite weights for domain impairment.
type Weights struct {
	Memory    float64 `json:"memory" yaml:"memory"`
	Speech    float64 `json:"speech" yaml:"speech"`
	Executive float64 `json:"executive" yaml:"executive"`
	Reaction  float64 `json:"reaction" yaml:"reaction"`
	Motor     float64 `json:"motor" yaml:"motor"`
}

// Sum returns the total of the five weights.
func (w Weights) Sum() float64 {
	return w.Memory + w.Speech + w.Executive + w.Reaction + w.Motor
}

// Thresholds are the lower bounds of the composite tiers above Low.
type Thresholds struct {
	Mild     float64 `json:"mild" yaml:"mild"`
	Moderate float64 `json:"moderate" yaml:"moderate"`
	High     float64 `json:"high" yaml:"high"`
}

// Settings is the immutable scoring configuration shared by every request.
type Settings struct {
	Weights    Weights
	Thresholds Thresholds
	Norms      NormSet
	Diseases   DiseaseModels
}

func DefaultWeights() Weights {
	return Weights{
		Memory:    0.30,
		Speech:    0.25,
		Executive: 0.20,
		Reaction:  0.15,
		Motor:     0.10,
	}
}

func DefaultThresholds() Thresholds {
	return Thresholds{Mild: 50, Moderate: 70, High: 85}
}

// DefaultSettings returns the canonical weights, thresholds, norm tables and
// disease models.
func DefaultSettings() Settings {
	return Settings{
		Weights:    DefaultWeights(),
		Thresholds: DefaultThresholds(),
		Norms:      DefaultNormSet(),
		Diseases:   DefaultDiseaseModels(),
	}
}

// Validate reports the first configuration invariant that does not hold.
func (s Settings) Validate() error {
	w := s.Weights
	for name, v := range map[string]float64{
		"memory":    w.Memory,
		"speech":    w.Speech,
		"executive": w.Executive,
		"reaction":  w.Reaction,
		"motor":     w.Motor,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("weight %s must be non-negative, got %v", name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("composite weights must sum to 1.0, got %.6f", sum)
	}

	t := s.Thresholds
	if !(t.Mild > 0 && t.Mild < t.Moderate && t.Moderate < t.High && t.High <= 100) {
		return fmt.Errorf("tier thresholds must be ascending within (0, 100], got %v/%v/%v", t.Mild, t.Moderate, t.High)
	}

	if err := s.Norms.Validate(); err != nil {
		return err
	}
	return s.Diseases.Validate()
}
