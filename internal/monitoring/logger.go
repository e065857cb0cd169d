package monitoring

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/config"
)

// Logger adds domain helpers on top of zap.
type Logger struct {
	*zap.Logger
}

var startTime = time.Now()

// NewLogger builds the process logger and installs it as the zap global.
// With cfg.File set, a JSON copy of every entry goes to a rotating file.
func NewLogger(cfg config.LogConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: parse log level")
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		consoleConfig := zap.NewDevelopmentEncoderConfig()
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(consoleConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, eris.Wrap(err, "monitoring: create log directory")
		}
		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	zap.ReplaceGlobals(logger)
	return &Logger{Logger: logger}, nil
}

// NewNopLogger discards everything. Used by tests and the offline CLI.
func NewNopLogger() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

func (l *Logger) RequestLogger(method, path, ip, userAgent string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("ip", ip),
		zap.String("user_agent", userAgent),
		zap.Int("status_code", statusCode),
		zap.Int64("duration_ms", duration.Milliseconds()),
	)
}

// AssessmentLogger records the outcome of one assessment. Scores are logged,
// request payloads never are.
func (l *Logger) AssessmentLogger(id, level string, score, confidence float64, duration time.Duration, persisted bool) {
	l.Info("Assessment Completed",
		zap.String("assessment_id", id),
		zap.String("risk_level", level),
		zap.Float64("composite_risk_score", score),
		zap.Float64("confidence", confidence),
		zap.Int64("duration_ms", duration.Milliseconds()),
		zap.Bool("persisted", persisted),
	)
}

func (l *Logger) APIErrorLogger(err error, method, path, ip string, statusCode int) {
	l.Error("API Error",
		zap.Error(err),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("ip", ip),
		zap.Int("status_code", statusCode),
	)
}

func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		zap.String("event", event),
		zap.String("details", details),
		zap.Duration("uptime", time.Since(startTime)),
	)
}

func (l *Logger) SecurityLogger(event, ip, userAgent string, details map[string]any) {
	fields := []zap.Field{
		zap.String("event", event),
		zap.String("ip", ip),
		zap.String("user_agent", userAgent),
	}
	for key, value := range details {
		fields = append(fields, zap.Any(key, value))
	}
	l.Warn("Security Event", fields...)
}

func (l *Logger) PerformanceLogger(metric string, value float64, unit string) {
	l.Info("Performance Metric",
		zap.String("metric", metric),
		zap.Float64("value", value),
		zap.String("unit", unit),
	)
}
