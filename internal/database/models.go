package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/analysis"
)

// Assessment is one persisted analysis result. Raw request payloads are
// never stored.
type Assessment struct {
	ID        string              `json:"assessment_id"`
	CreatedAt time.Time           `json:"created_at"`
	Result    analysis.RiskOutput `json:"result"`
}

// AssessmentSummary is the listing view of an assessment.
type AssessmentSummary struct {
	ID              string    `json:"assessment_id"`
	CreatedAt       time.Time `json:"created_at"`
	RiskLevel       string    `json:"composite_risk_level"`
	CompositeScore  float64   `json:"composite_risk_score"`
	Confidence      float64   `json:"confidence_score"`
	RecommendRetest bool      `json:"recommend_retest"`
}

// NewAssessment assigns a fresh ID and timestamp to out.
func NewAssessment(out *analysis.RiskOutput) *Assessment {
	return &Assessment{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Result:    *out,
	}
}

// Summary projects the assessment onto its listing view.
func (a *Assessment) Summary() AssessmentSummary {
	return AssessmentSummary{
		ID:              a.ID,
		CreatedAt:       a.CreatedAt,
		RiskLevel:       a.Result.Level,
		CompositeScore:  a.Result.Score,
		Confidence:      a.Result.Confidence,
		RecommendRetest: a.Result.RecommendRetest,
	}
}

// ValidID reports whether id has the shape of an assessment ID.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}
