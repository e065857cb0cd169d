package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyEducationAdjustment(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		level    *int
		expected float64
	}{
		{name: "unknown level", score: 60, level: nil, expected: 60},
		{name: "no formal education", score: 60, level: Int(1), expected: 65},
		{name: "primary", score: 60, level: Int(2), expected: 63},
		{name: "secondary", score: 60, level: Int(3), expected: 60},
		{name: "undergraduate", score: 60, level: Int(4), expected: 60},
		{name: "postgraduate", score: 60, level: Int(5), expected: 58},
		{name: "out of range level is ignored", score: 60, level: Int(-2), expected: 60},
		{name: "clamped at 100", score: 98, level: Int(1), expected: 100},
		{name: "clamped at 0", score: 1, level: Int(5), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyEducationAdjustment(tt.score, tt.level))
		})
	}
}

func TestApplyEducationAdjustmentIsCumulative(t *testing.T) {
	once := ApplyEducationAdjustment(50, Int(1))
	twice := ApplyEducationAdjustment(once, Int(1))
	assert.Equal(t, 55.0, once)
	assert.Equal(t, 60.0, twice)
	assert.NotEqual(t, once, twice)
}

func TestConditionMultipliers(t *testing.T) {
	tests := []struct {
		name       string
		base       float64
		conditions Conditions
		expected   float64
	}{
		{name: "no conditions", base: 0.5, expected: 0.5},
		{name: "stroke history", base: 0.5, conditions: Conditions{StrokeHistory: true}, expected: 0.54},
		{name: "parkinsons diagnosis", base: 0.5, conditions: Conditions{ParkinsonsDiagnosis: true}, expected: 0.55},
		{name: "all conditions", base: 0.5, conditions: allConditions(), expected: 0.70},
		{name: "capped", base: 0.9, conditions: allConditions(), expected: 0.95},
		{name: "cap applies to unadjusted input", base: 0.99, expected: 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ApplyConditionMultipliers(tt.base, tt.conditions), 1e-9)
		})
	}

	assert.InDelta(t, 1.40, ConditionFactor(allConditions()), 1e-9)
	assert.Equal(t, 1.0, ConditionFactor(Conditions{}))
}

func TestLegacyProfileMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		profile  *Profile
		expected float64
	}{
		{name: "no profile", expected: 1},
		{name: "empty profile", profile: &Profile{}, expected: 1},
		{name: "family history", profile: &Profile{FamilyHistory: true}, expected: 1.08},
		{name: "poor sleep", profile: &Profile{SleepQuality: " Poor "}, expected: 1.04},
		{name: "good sleep", profile: &Profile{SleepQuality: "good"}, expected: 1},
		{
			name:     "everything",
			profile:  &Profile{FamilyHistory: true, ExistingDiagnosis: true, SleepQuality: "fair"},
			expected: 1.17,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, LegacyProfileMultiplier(tt.profile), 1e-9)
		})
	}
}
