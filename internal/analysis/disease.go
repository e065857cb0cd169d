package analysis

import (
	"fmt"
	"math"
)

// Disease tier labels.
const (
	DiseaseLow      = "Low"
	DiseaseMild     = "Mild Concern"
	DiseaseModerate = "Moderate"
	DiseaseHigh     = "High"
)

// Probability bounds after the clinical nudges.
const (
	minDiseaseProbability = 0.01
	maxDiseaseProbability = 0.99
)

// Asymmetric transform: sigmoid(transformGain*logit(p) + transformShift).
const (
	transformGain  = 1.8
	transformShift = -0.3
)

// Nudges are additive deltas applied after the transform.
type Nudges struct {
	AgeOver75     float64 `json:"age_over_75" yaml:"age_over_75"`
	Age65To75     float64 `json:"age_65_to_75" yaml:"age_65_to_75"`
	HighEducation float64 `json:"high_education" yaml:"high_education"`
	ShortSleep    float64 `json:"short_sleep" yaml:"short_sleep"`
	ReducedSleep  float64 `json:"reduced_sleep" yaml:"reduced_sleep"`
}

// DiseaseModel is one logistic regression over the normalized feature vector.
type DiseaseModel struct {
	Name    string                `json:"name" yaml:"name"`
	Weights [FeatureCount]float64 `json:"weights" yaml:"weights"`
	Bias    float64               `json:"bias" yaml:"bias"`
	Nudges  Nudges                `json:"nudges" yaml:"nudges"`
}

type DiseaseModels struct {
	Alzheimers DiseaseModel
	Dementia   DiseaseModel
	Parkinsons DiseaseModel
}

func DefaultDiseaseModels() DiseaseModels {
	return DiseaseModels{
		Alzheimers: DiseaseModel{
			Name: "alzheimers",
			Weights: [FeatureCount]float64{
				-0.010, 0.008, 0.006, 0.015, 0.005,
				-0.035, -0.040, 0.022, 0.016, -0.022,
				0.003, 0.002, 0.001, 0.003, 0.005,
				0.006, 0.002,
				0.002,
			},
			Bias:   0.35,
			Nudges: Nudges{AgeOver75: 0.06, Age65To75: 0.04, HighEducation: -0.04, ShortSleep: 0.03, ReducedSleep: 0.02},
		},
		Dementia: DiseaseModel{
			Name: "dementia",
			Weights: [FeatureCount]float64{
				-0.008, 0.005, 0.005, 0.008, 0.006,
				-0.020, -0.018, 0.012, 0.010, -0.012,
				0.028, 0.022, 0.010, 0.018, 0.028,
				0.032, 0.015,
				0.008,
			},
			Bias:   0.25,
			Nudges: Nudges{AgeOver75: 0.04, Age65To75: 0.03, HighEducation: -0.03, ShortSleep: 0.04, ReducedSleep: 0.02},
		},
		Parkinsons: DiseaseModel{
			Name: "parkinsons",
			Weights: [FeatureCount]float64{
				-0.015, 0.012, 0.020, 0.010, 0.022,
				-0.005, -0.005, 0.005, 0.008, -0.005,
				0.032, 0.028, 0.022, 0.015, 0.020,
				0.008, 0.010,
				0.045,
			},
			Bias:   0.20,
			Nudges: Nudges{AgeOver75: 0.04, Age65To75: 0.03},
		},
	}
}

func (d DiseaseModels) Validate() error {
	for _, m := range []DiseaseModel{d.Alzheimers, d.Dementia, d.Parkinsons} {
		if !finite(m.Bias) || !finite(m.Weights[:]...) {
			return fmt.Errorf("disease model %q has non-finite parameters", m.Name)
		}
	}
	return nil
}

// Raw is sigmoid(w·x + b) over the normalized features.
func (m DiseaseModel) Raw(fv FeatureVector) float64 {
	x := fv.Normalized()
	z := m.Bias
	for i, w := range m.Weights {
		z += w * x[i]
	}
	return sigmoid(z)
}

// AsymmetricTransform pushes mild probabilities toward 0 and severe ones
// toward 1. It is strictly increasing, so ranking is preserved.
func AsymmetricTransform(p float64) float64 {
	return sigmoid(transformGain*logit(p) + transformShift)
}

// Nudge applies the demographic and sleep deltas, clamped to [0.01, 0.99].
func (m DiseaseModel) Nudge(p float64, profile *Profile) float64 {
	if profile != nil {
		if age := profile.Age; age != nil {
			switch {
			case *age > 75:
				p += m.Nudges.AgeOver75
			case *age >= 65:
				p += m.Nudges.Age65To75
			}
		}
		if edu := profile.EducationLevel; edu != nil && *edu >= 4 {
			p += m.Nudges.HighEducation
		}
		if sleep := profile.SleepHours; sleep != nil {
			switch {
			case *sleep < 5.5:
				p += m.Nudges.ShortSleep
			case *sleep <= 6.5:
				p += m.Nudges.ReducedSleep
			}
		}
	}
	return clip(p, minDiseaseProbability, maxDiseaseProbability)
}

// Predict runs the full per-disease chain: regression, transform, nudges,
// legacy profile multiplier and condition multipliers.
func (m DiseaseModel) Predict(fv FeatureVector, profile *Profile) float64 {
	p := m.Nudge(AsymmetricTransform(m.Raw(fv)), profile)
	p = math.Min(1, p*LegacyProfileMultiplier(profile))

	var conditions Conditions
	if profile != nil {
		conditions = profile.MedicalConditions
	}
	return round(ApplyConditionMultipliers(p, conditions), 4)
}

// DiseaseLevel maps a disease probability onto its tier.
func DiseaseLevel(p float64) string {
	switch {
	case p < 0.30:
		return DiseaseLow
	case p < 0.55:
		return DiseaseMild
	case p < 0.75:
		return DiseaseModerate
	default:
		return DiseaseHigh
	}
}

// Predict runs all three models.
func (d DiseaseModels) Predict(fv FeatureVector, profile *Profile) (DiseaseRisks, DiseaseRiskLevels) {
	risks := DiseaseRisks{
		Alzheimers: d.Alzheimers.Predict(fv, profile),
		Dementia:   d.Dementia.Predict(fv, profile),
		Parkinsons: d.Parkinsons.Predict(fv, profile),
	}
	return risks, DiseaseRiskLevels{
		Alzheimers: DiseaseLevel(risks.Alzheimers),
		Dementia:   DiseaseLevel(risks.Dementia),
		Parkinsons: DiseaseLevel(risks.Parkinsons),
	}
}
