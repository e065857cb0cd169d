package types

import (
	"time"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/analysis"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/database"
)

// AnalyzeResponse is the body of a successful POST /api/analyze.
type AnalyzeResponse struct {
	AssessmentID string    `json:"assessment_id"`
	CreatedAt    time.Time `json:"created_at"`
	Persisted    bool      `json:"persisted"`
	analysis.RiskOutput
}

// NewAnalyzeResponse flattens a stored assessment into the response shape.
func NewAnalyzeResponse(a *database.Assessment, persisted bool) AnalyzeResponse {
	return AnalyzeResponse{
		AssessmentID: a.ID,
		CreatedAt:    a.CreatedAt,
		Persisted:    persisted,
		RiskOutput:   a.Result,
	}
}

type AssessmentList struct {
	Assessments []database.AssessmentSummary `json:"assessments"`
	Count       int                          `json:"count"`
	Limit       int                          `json:"limit"`
}

type DeleteResponse struct {
	AssessmentID string `json:"assessment_id"`
	Deleted      bool   `json:"deleted"`
}

// HealthResponse reports liveness plus the state of optional dependencies.
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
	Disclaimer string            `json:"disclaimer"`
}
