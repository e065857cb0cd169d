package analysis

import "strings"

// Maximum probability any condition adjustment may report.
const conditionCap = 0.95

// educationCorrection is the cognitive-reserve correction added to memory.
var educationCorrection = map[int]float64{
	1: 5,
	2: 3,
	3: 0,
	4: 0,
	5: -2,
}

// ApplyEducationAdjustment corrects the memory score for formal education.
// It is cumulative: call it exactly once per assessment.
func ApplyEducationAdjustment(memoryScore float64, educationLevel *int) float64 {
	if educationLevel == nil {
		return clip(memoryScore, 0, 100)
	}
	return clip(memoryScore+educationCorrection[*educationLevel], 0, 100)
}

// ConditionFactor is 1 plus the gamma coefficient of every true condition.
func ConditionFactor(c Conditions) float64 {
	gamma := 0.0
	if c.Diabetes {
		gamma += 0.04
	}
	if c.Hypertension {
		gamma += 0.05
	}
	if c.StrokeHistory {
		gamma += 0.08
	}
	if c.FamilyAlzheimers {
		gamma += 0.06
	}
	if c.ParkinsonsDiagnosis {
		gamma += 0.10
	}
	if c.Depression {
		gamma += 0.04
	}
	if c.ThyroidDisorder {
		gamma += 0.03
	}
	return 1 + gamma
}

// ApplyConditionMultipliers boosts a probability by the condition factor and
// caps it at 0.95.
func ApplyConditionMultipliers(base float64, c Conditions) float64 {
	p := base * ConditionFactor(c)
	if p > conditionCap {
		p = conditionCap
	}
	if p < 0 {
		p = 0
	}
	return p
}

// LegacyProfileMultiplier weights family history, an existing diagnosis and
// poor sleep quality.
func LegacyProfileMultiplier(p *Profile) float64 {
	m := 1.0
	if p == nil {
		return m
	}
	if p.FamilyHistory {
		m += 0.08
	}
	if p.ExistingDiagnosis {
		m += 0.05
	}
	switch strings.ToLower(strings.TrimSpace(p.SleepQuality)) {
	case "poor", "fair":
		m += 0.04
	}
	return m
}
