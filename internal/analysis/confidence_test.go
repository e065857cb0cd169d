package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeConfidence(t *testing.T) {
	tests := []struct {
		name       string
		missing    float64
		flags      FatigueFlags
		confidence float64
		retest     bool
	}{
		{name: "complete and rested", confidence: 1},
		{name: "tired only", flags: FatigueFlags{Tired: true}, confidence: 0.9},
		{name: "just above the retest line", missing: 0.2, flags: FatigueFlags{Anxious: true}, confidence: 0.74, retest: true},
		{name: "exactly at the retest line", missing: 0.25, confidence: 0.75},
		{
			name:       "all fatigue flags",
			flags:      FatigueFlags{Tired: true, SleepDeprived: true, Sick: true, Anxious: true},
			confidence: 0.64, retest: true,
		},
		{
			name:       "clamped at zero",
			missing:    0.8,
			flags:      FatigueFlags{Tired: true, SleepDeprived: true, Sick: true, Anxious: true},
			confidence: 0, retest: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeConfidence(tt.missing, tt.flags)
			assert.InDelta(t, tt.confidence, result.Confidence, 1e-9)
			assert.Equal(t, tt.retest, result.RecommendRetest)
			if tt.retest {
				require.NotNil(t, result.RetestMessage)
				assert.Equal(t, RetestMessage, *result.RetestMessage)
			} else {
				assert.Nil(t, result.RetestMessage)
			}
		})
	}
}

func TestMissingDataRatio(t *testing.T) {
	tests := []struct {
		name     string
		req      AssessmentRequest
		expected float64
	}{
		{name: "empty request", req: AssessmentRequest{}, expected: 0},
		{
			name:     "legacy payload",
			req:      AssessmentRequest{MemoryResults: map[string]float64{"word_recall_accuracy": 10}, ReactionTimes: []float64{900}},
			expected: 0,
		},
		{
			name: "one of two sections empty",
			req: AssessmentRequest{
				Memory: &MemoryInput{},
				Tap:    &TapInput{Intervals: []float64{500, 510, 490}},
			},
			expected: 0.5,
		},
		{
			name: "every submitted section empty",
			req: AssessmentRequest{
				Speech:   &SpeechInput{},
				Memory:   &MemoryInput{},
				Reaction: &ReactionInput{},
				Stroop:   &StroopInput{},
				Tap:      &TapInput{},
			},
			expected: 1,
		},
		{
			name:     "audio counts as speech data",
			req:      AssessmentRequest{Speech: &SpeechInput{}, SpeechAudio: "UklGRg=="},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, MissingDataRatio(tt.req), 1e-9)
		})
	}
}
