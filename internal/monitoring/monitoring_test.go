package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/config"
)

func observedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{Logger: zap.New(core)}, logs
}

func TestNewLogger(t *testing.T) {
	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := NewLogger(config.LogConfig{Level: "loud", Format: "json"})
		assert.Error(t, err)
	})

	t.Run("writes rotating file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "app.log")
		logger, err := NewLogger(config.LogConfig{Level: "info", Format: "console", File: path, MaxSizeMB: 1})
		require.NoError(t, err)
		logger.SystemLogger("boot", "test")
		_ = logger.Sync()
		assert.FileExists(t, path)
	})
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.IncrementRequest()
	m.IncrementRequest()
	m.IncrementError()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.IncrementCacheMiss()
	m.IncrementCacheMiss()
	m.RecordAssessment("Low", false)
	m.RecordAssessment("High Risk", true)
	m.RecordAssessment("High Risk", false)
	m.RecordAssessmentFailure()
	m.RecordPurged(4)

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["total_requests"])
	assert.InDelta(t, 50.0, stats["error_rate_percent"], 1e-9)
	assert.InDelta(t, 25.0, stats["cache_hit_rate_percent"], 1e-9)

	assessments := stats["assessments"].(map[string]any)
	assert.Equal(t, int64(3), assessments["completed"])
	assert.Equal(t, int64(1), assessments["failed"])
	assert.Equal(t, int64(1), assessments["retest_recommended"])
	assert.Equal(t, int64(4), assessments["purged"])
	assert.Equal(t, map[string]int64{"Low": 1, "High Risk": 2}, assessments["by_risk_level"])

	m.Reset()
	assert.Equal(t, int64(0), m.GetStats()["total_requests"])
	assert.Empty(t, m.GetRiskLevelDistribution())
}

func TestPercentileResponseTime(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, time.Duration(0), m.GetPercentileResponseTime(50))

	for i := 1; i <= 100; i++ {
		m.RecordResponseTime(time.Duration(i) * time.Millisecond)
	}
	assert.Equal(t, 50*time.Millisecond, m.GetPercentileResponseTime(50))
	assert.Equal(t, 100*time.Millisecond, m.GetPercentileResponseTime(100))
}

func TestPercentileWindowIsBounded(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < responseTimeSamples+10; i++ {
		m.RecordResponseTime(time.Millisecond)
	}
	m.timesMu.RLock()
	defer m.timesMu.RUnlock()
	assert.Len(t, m.responseTimes, responseTimeSamples)
}

func TestMonitoringMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := NewMetrics()
	logger, logs := observedLogger()

	r := gin.New()
	r.Use(RequestIDMiddleware(), MonitoringMiddleware(metrics, logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/fail"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	}

	assert.Equal(t, int64(2), metrics.RequestCount)
	assert.Equal(t, int64(1), metrics.ErrorCount)
	assert.Equal(t, map[int]int64{200: 1, 500: 1}, metrics.GetStatusCodeDistribution())
	assert.Equal(t, 2, logs.FilterMessage("HTTP Request").Len())
	assert.Equal(t, 1, logs.FilterMessage("System Event").Len())
}

func TestRequestIDIsPreserved(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { seen = RequestIDFrom(c.Request.Context()) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestSecurityMonitoringMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		target    string
		userAgent string
		flagged   bool
	}{
		{"clean request", "/api/assessments?limit=5", "Mozilla/5.0", false},
		{"sql injection", "/api/assessments?q=1+UNION+SELECT+x", "Mozilla/5.0", true},
		{"scanner agent", "/health", "sqlmap/1.7", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := observedLogger()
			r := gin.New()
			r.Use(SecurityMonitoringMiddleware(logger, "/api/analyze", 1024))
			r.GET("/*any", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req.Header.Set("User-Agent", tt.userAgent)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.flagged, logs.FilterMessage("Security Event").Len() == 1)
		})
	}
}

func TestSpan(t *testing.T) {
	logger, logs := observedLogger()
	ctx := WithRequestID(context.Background(), "req-1")

	logger.StartSpan(ctx, "analyze").End(nil)
	logger.StartSpan(ctx, "persist").End(errors.New("disk full"))

	require.Equal(t, 1, logs.FilterMessage("Span completed").Len())
	failed := logs.FilterMessage("Span failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "req-1", failed[0].ContextMap()["request_id"])
	assert.Equal(t, "persist", failed[0].ContextMap()["operation"])
}

func TestMemoryMonitorSample(t *testing.T) {
	metrics := NewMetrics()
	logger, _ := observedLogger()
	mm := NewMemoryMonitor(metrics, logger, time.Second, 100)

	stats := mm.Sample()
	assert.NotZero(t, stats.HeapSys)
	assert.Equal(t, stats, mm.Latest())
	assert.NotZero(t, metrics.HeapSys)
}
