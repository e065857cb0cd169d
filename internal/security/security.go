package security

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/analysis"
	apperrors "github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/errors"
)

// Structural limits on an assessment payload. Values inside the limits are
// never rejected, only clamped by the pipeline.
const (
	MaxTrials     = 500
	MaxAudioBytes = 10 << 20
)

type Config struct {
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// Guard validates request shape before it reaches the analyzer.
type Guard struct {
	config Config
}

func NewGuard(cfg Config) *Guard {
	return &Guard{config: cfg}
}

// RequestTimeout bounds the request context.
func (g *Guard) RequestTimeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), g.config.RequestTimeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Timeout", strconv.Itoa(int(g.config.RequestTimeout.Seconds())))
		c.Next()
	}
}

// RequireJSON rejects bodies that declare a non-JSON content type.
func (g *Guard) RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ct := c.GetHeader("Content-Type"); ct != "" {
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || mediaType != "application/json" {
				_ = c.Error(apperrors.NewValidationError("Unsupported content type", map[string]string{
					"content_type": ct,
				}))
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// BindAssessment decodes the body into an assessment request and checks
// its structural limits. Unknown fields are ignored.
func (g *Guard) BindAssessment(c *gin.Context) (*analysis.AssessmentRequest, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, g.config.MaxBodyBytes)

	var req analysis.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, apperrors.NewValidationError("Request body too large", map[string]string{
				"limit_bytes": strconv.FormatInt(tooLarge.Limit, 10),
			})
		case errors.Is(err, io.EOF):
			// An empty body is an empty assessment.
			return &req, nil
		default:
			return nil, apperrors.NewValidationError("Malformed JSON body", map[string]string{
				"body": err.Error(),
			})
		}
	}

	if err := ValidateAssessment(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ValidateAssessment enforces the trial count and audio size limits.
func ValidateAssessment(req *analysis.AssessmentRequest) error {
	fields := make(map[string]string)

	checkTrials := func(name string, n int) {
		if n > MaxTrials {
			fields[name] = fmt.Sprintf("%d trials exceeds limit of %d", n, MaxTrials)
		}
	}
	checkTrials("reaction_times", len(req.ReactionTimes))
	if req.Reaction != nil {
		checkTrials("reaction.times", len(req.Reaction.Times))
	}
	if req.Tap != nil {
		checkTrials("tap.intervals", len(req.Tap.Intervals))
	}
	checkTrials("memory_results", len(req.MemoryResults))

	if size := decodedLen(req.SpeechAudio); size > MaxAudioBytes {
		fields["speech_audio"] = fmt.Sprintf("%d bytes exceeds limit of %d", size, MaxAudioBytes)
	}

	if len(fields) > 0 {
		return apperrors.NewValidationError("Assessment exceeds structural limits", fields)
	}
	return nil
}

// decodedLen estimates the decoded size of base64 audio.
func decodedLen(encoded string) int {
	return len(encoded) / 4 * 3
}
