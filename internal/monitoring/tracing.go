package monitoring

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDMiddleware keeps a caller-supplied X-Request-ID or assigns a new
// one, echoes it on the response and stores it in the request context.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Request.Header.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Set("request_id", id)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request identifier, or "" outside a request.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Span times one named operation within a request.
type Span struct {
	logger    *Logger
	requestID string
	operation string
	start     time.Time
	fields    []zap.Field
}

// StartSpan begins timing operation. End must be called exactly once.
func (l *Logger) StartSpan(ctx context.Context, operation string, fields ...zap.Field) *Span {
	return &Span{
		logger:    l,
		requestID: RequestIDFrom(ctx),
		operation: operation,
		start:     time.Now(),
		fields:    fields,
	}
}

// End logs the span duration and outcome and returns the elapsed time.
func (s *Span) End(err error) time.Duration {
	elapsed := time.Since(s.start)
	fields := append([]zap.Field{
		zap.String("operation", s.operation),
		zap.String("request_id", s.requestID),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}, s.fields...)

	if err != nil {
		s.logger.Warn("Span failed", append(fields, zap.Error(err))...)
	} else {
		s.logger.Debug("Span completed", fields...)
	}
	return elapsed
}
