package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/analysis"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/cache"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/config"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/database"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/docs"
	apperrors "github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/errors"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/middleware"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/monitoring"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/privacy"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/ratelimit"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/security"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/types"
)

const (
	version     = "1.0.0"
	analyzePath = "/api/analyze"
)

// Server owns the HTTP dependencies. history and privacy are nil when
// storage is disabled.
type Server struct {
	cfg      *config.Config
	analyzer *analysis.Analyzer
	db       *database.DB
	history  *database.HistoryService
	privacy  *privacy.Service
	redis    *ratelimit.RedisClient
	limiter  *ratelimit.RateLimiter
	guard    *security.Guard
	gzip     *middleware.Compression
	metrics  *monitoring.Metrics
	logger   *monitoring.Logger
}

// newServer builds every dependency from cfg. Close releases them.
func newServer(cfg *config.Config, logger *monitoring.Logger) (*Server, error) {
	settings, err := cfg.ScoringSettings()
	if err != nil {
		return nil, err
	}
	analyzer, err := analysis.NewAnalyzer(settings, cfg.FeatureSource())
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		gzip:     middleware.NewCompression(middleware.DefaultCompressionConfig()),
		metrics:  monitoring.NewMetrics(),
		logger:   logger,
		guard: security.NewGuard(security.Config{
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			RequestTimeout: cfg.Server.RequestTimeout,
		}),
	}

	if cfg.Storage.Enabled {
		db, err := database.NewDB(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		lookups := cache.New[string, *database.Assessment](cfg.Cache.Size, cfg.Cache.TTL, s.metrics)
		s.db = db
		s.history = database.NewHistoryService(database.NewRepository(db), lookups, s.metrics)
		s.privacy = privacy.NewService(s.history, s.metrics, cfg.Storage.RetentionDays)
	}

	// An unreachable Redis leaves a disabled client; limiting continues in
	// process.
	s.redis, err = ratelimit.NewRedisClient(cfg.RateLimit)
	if err != nil {
		logger.Warn("Redis unavailable, rate limiting in process",
			zap.String("addr", cfg.RateLimit.RedisAddr),
			zap.Error(err),
		)
		s.metrics.IncrementRateLimitFallback()
	}
	s.limiter = ratelimit.NewRateLimiter(s.redis, ratelimit.Config{
		IPLimitPerMin:   cfg.RateLimit.IPLimitPerMin,
		BurstMultiplier: cfg.RateLimit.BurstMultiplier,
	}, s.metrics)

	return s, nil
}

func (s *Server) Close() {
	if s.db != nil {
		apperrors.SafeClose(s.db, "database")
	}
	if s.redis != nil {
		apperrors.SafeClose(s.redis, "redis")
	}
}

// Router wires middleware and routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()

	r.Use(apperrors.RecoveryHandler())
	r.Use(monitoring.RequestIDMiddleware())
	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(s.logger, analyzePath, s.cfg.Server.MaxBodyBytes))
	r.Use(apperrors.ErrorHandler())
	r.Use(s.gzip.Handler())

	if len(s.cfg.Server.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = s.cfg.Server.AllowedOrigins
		corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, monitoring.RequestIDHeader)
		corsConfig.ExposeHeaders = []string{monitoring.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
		r.Use(cors.New(corsConfig))
	}
	r.Use(security.SecurityHeadersMiddleware())

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", s.handleMetrics)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.POST("/analyze",
		s.limiter.IPRateLimitMiddleware(),
		s.guard.RequestTimeout(),
		s.guard.RequireJSON(),
		s.handleAnalyze,
	)

	history := api.Group("/assessments", s.requireHistory)
	history.GET("", s.handleListAssessments)
	history.GET("/:id", s.handleGetAssessment)
	history.DELETE("/:id", s.handleDeleteAssessment)

	api.GET("/privacy", s.requireHistory, func(c *gin.Context) {
		c.JSON(http.StatusOK, s.privacy.RetentionInfo())
	})

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	components := map[string]string{
		"storage": "disabled",
		"redis":   s.redis.HealthCheck(c.Request.Context()),
	}
	if s.history != nil {
		components["storage"] = "ok"
		components["history_breaker"] = s.history.BreakerState()
		if err := s.db.PingContext(c.Request.Context()); err != nil {
			components["storage"] = "unavailable"
		}
	}

	c.JSON(http.StatusOK, types.HealthResponse{
		Status:     "ok",
		Version:    version,
		Timestamp:  time.Now().UTC(),
		Components: components,
		Disclaimer: analysis.Disclaimer,
	})
}

func (s *Server) handleMetrics(c *gin.Context) {
	stats := s.metrics.GetStats()
	stats["rate_limiter"] = s.limiter.GetStats()
	stats["redis_pool"] = s.redis.GetPoolStats()
	stats["compression"] = s.gzip.Stats()
	if s.db != nil {
		stats["database"] = s.db.GetPoolStats()
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	req, err := s.guard.BindAssessment(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx := c.Request.Context()
	span := s.logger.StartSpan(ctx, "analyze")
	out, err := s.analyzer.Analyze(ctx, *req)
	elapsed := span.End(err)
	if err != nil {
		s.metrics.RecordAssessmentFailure()
		_ = c.Error(err)
		return
	}

	assessment := database.NewAssessment(out)
	persisted := s.persist(ctx, assessment)

	s.metrics.RecordAssessment(out.Level, out.RecommendRetest)
	s.logger.AssessmentLogger(assessment.ID, out.Level, out.Score, out.Confidence, elapsed, persisted)

	c.JSON(http.StatusOK, types.NewAnalyzeResponse(assessment, persisted))
}

// persist stores the assessment when history is enabled. Failure is logged
// and counted but never fails the request.
func (s *Server) persist(ctx context.Context, a *database.Assessment) bool {
	if s.history == nil {
		return false
	}
	if err := s.history.Record(ctx, a); err != nil {
		s.metrics.IncrementPersistFail()
		s.logger.Warn("Failed to persist assessment",
			zap.String("assessment_id", a.ID),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (s *Server) requireHistory(c *gin.Context) {
	if s.history == nil {
		_ = c.Error(apperrors.NewStorageError("Assessment history is disabled", nil))
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) handleListAssessments(c *gin.Context) {
	limit := database.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > database.MaxListLimit {
			_ = c.Error(apperrors.NewValidationError("Invalid limit", map[string]string{
				"limit": fmt.Sprintf("must be an integer between 1 and %d", database.MaxListLimit),
			}))
			return
		}
		limit = n
	}

	summaries, err := s.history.List(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(apperrors.NewStorageError("Failed to list assessments", err))
		return
	}
	if summaries == nil {
		summaries = []database.AssessmentSummary{}
	}
	c.JSON(http.StatusOK, types.AssessmentList{
		Assessments: summaries,
		Count:       len(summaries),
		Limit:       limit,
	})
}

func (s *Server) handleGetAssessment(c *gin.Context) {
	id, ok := assessmentID(c)
	if !ok {
		return
	}

	a, err := s.history.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(historyError(err, id, "Failed to load assessment"))
		return
	}
	c.JSON(http.StatusOK, types.NewAnalyzeResponse(a, true))
}

func (s *Server) handleDeleteAssessment(c *gin.Context) {
	id, ok := assessmentID(c)
	if !ok {
		return
	}

	if err := s.privacy.Erase(c.Request.Context(), id); err != nil {
		_ = c.Error(historyError(err, id, "Failed to delete assessment"))
		return
	}
	c.JSON(http.StatusOK, types.DeleteResponse{AssessmentID: id, Deleted: true})
}

func assessmentID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !database.ValidID(id) {
		_ = c.Error(apperrors.NewValidationError("Invalid assessment id", map[string]string{"id": id}))
		return "", false
	}
	return id, true
}

func historyError(err error, id, message string) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.NewNotFoundError("assessment", id)
	}
	return apperrors.NewStorageError(message, err)
}

func init() {
	docs.SwaggerInfo.Version = version
}
