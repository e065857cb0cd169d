package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/analysis"
	apperrors "github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func trials(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 300
	}
	return out
}

func TestValidateAssessment(t *testing.T) {
	tests := []struct {
		name      string
		req       analysis.AssessmentRequest
		wantField string
	}{
		{"empty request", analysis.AssessmentRequest{}, ""},
		{"trials at limit", analysis.AssessmentRequest{ReactionTimes: trials(MaxTrials)}, ""},
		{"legacy reaction list too long", analysis.AssessmentRequest{ReactionTimes: trials(MaxTrials + 1)}, "reaction_times"},
		{"structured reaction too long", analysis.AssessmentRequest{Reaction: &analysis.ReactionInput{Times: trials(MaxTrials + 1)}}, "reaction.times"},
		{"tap intervals too long", analysis.AssessmentRequest{Tap: &analysis.TapInput{Intervals: trials(MaxTrials + 1)}}, "tap.intervals"},
		{"audio too large", analysis.AssessmentRequest{SpeechAudio: strings.Repeat("A", MaxAudioBytes/3*4+8)}, "speech_audio"},
		{"negative values are not rejected", analysis.AssessmentRequest{ReactionTimes: []float64{-5, 0, 1e9}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAssessment(&tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			appErr := apperrors.ToAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
			assert.Contains(t, appErr.Fields, tt.wantField)
		})
	}
}

func serveBind(t *testing.T, g *Guard, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.Use(apperrors.ErrorHandler())
	r.POST("/api/analyze", g.RequireJSON(), func(c *gin.Context) {
		req, err := g.BindAssessment(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reaction_trials": len(req.ReactionTimes)})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBindAssessment(t *testing.T) {
	g := NewGuard(Config{MaxBodyBytes: 256, RequestTimeout: time.Second})

	tests := []struct {
		name     string
		body     string
		wantCode int
		contains string
	}{
		{"empty body", "", http.StatusOK, `"reaction_trials":0`},
		{"valid body", `{"reaction_times":[250,300]}`, http.StatusOK, `"reaction_trials":2`},
		{"unknown fields ignored", `{"reaction_times":[250],"extra":true}`, http.StatusOK, `"reaction_trials":1`},
		{"whitespace body", "  \n", http.StatusOK, `"reaction_trials":0`},
		{"malformed json", `{"reaction_times":`, http.StatusBadRequest, "Malformed JSON body"},
		{"wrong field type", `{"reaction_times":"fast"}`, http.StatusBadRequest, "Malformed JSON body"},
		{"oversized body", `{"speech_audio":"` + strings.Repeat("A", 400) + `"}`, http.StatusBadRequest, "Request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveBind(t, g, tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestRequireJSON(t *testing.T) {
	g := NewGuard(Config{MaxBodyBytes: 1024, RequestTimeout: time.Second})
	r := gin.New()
	r.Use(apperrors.ErrorHandler())
	r.POST("/", g.RequireJSON(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for ct, want := range map[string]int{
		"application/json; charset=utf-8": http.StatusOK,
		"text/plain":                      http.StatusBadRequest,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, ct)
	}
}

func TestRequestTimeout(t *testing.T) {
	g := NewGuard(Config{RequestTimeout: 5 * time.Second})
	var deadline time.Time
	var ok bool

	r := gin.New()
	r.GET("/", g.RequestTimeout(), func(c *gin.Context) {
		deadline, ok = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background()))

	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
	assert.Equal(t, "5", w.Header().Get("X-Timeout"))
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
