package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/analysis"
)

// ErrorCategory classifies an error for status mapping and log level.
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryProcessing    ErrorCategory = "processing"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryRateLimit     ErrorCategory = "rate_limit"
	CategoryNotFound      ErrorCategory = "not_found"
	CategoryStorage       ErrorCategory = "storage"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryInternal      ErrorCategory = "internal"
)

// AppError is the JSON error body of every failed API call.
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory     `json:"category"`
	HTTPStatus int               `json:"http_status"`
	Timestamp  time.Time         `json:"timestamp"`
	RequestID  string            `json:"request_id,omitempty"`
	StackTrace string            `json:"stack_trace,omitempty"`
	Fields     map[string]string `json:"details,omitempty"`
}

// MarshalJSON renders a flat body rather than the builder's own encoding.
func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code       string            `json:"code"`
		Message    string            `json:"message"`
		Category   ErrorCategory     `json:"category"`
		HTTPStatus int               `json:"http_status"`
		Timestamp  time.Time         `json:"timestamp"`
		RequestID  string            `json:"request_id,omitempty"`
		Details    map[string]string `json:"details,omitempty"`
		StackTrace string            `json:"stack_trace,omitempty"`
	}{
		Code:       fmt.Sprint(e.ErrBuilder.ErrCode()),
		Message:    e.ErrBuilder.Msg,
		Category:   e.Category,
		HTTPStatus: e.HTTPStatus,
		Timestamp:  e.Timestamp,
		RequestID:  e.RequestID,
		Details:    e.Fields,
		StackTrace: e.StackTrace,
	})
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Category, e.ErrBuilder.Msg)
}

func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

func NewAppError(builder *errbuilder.ErrBuilder, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now().UTC(),
	}
}

func withDetails(builder *errbuilder.ErrBuilder, details map[string]string) *errbuilder.ErrBuilder {
	if len(details) == 0 {
		return builder
	}
	errorMap := errbuilder.ErrorMap{}
	for key, value := range details {
		errorMap.Set(key, errors.New(value))
	}
	return builder.WithDetails(errbuilder.NewErrDetails(errorMap))
}

func newDetailedError(builder *errbuilder.ErrBuilder, details map[string]string, category ErrorCategory, status int) *AppError {
	appErr := NewAppError(withDetails(builder, details), category, status)
	appErr.Fields = details
	return appErr
}

// NewValidationError reports a structurally invalid request. Field names map
// to the reason each field was rejected.
func NewValidationError(message string, fields map[string]string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)
	return newDetailedError(builder, fields, CategoryValidation, http.StatusBadRequest)
}

// NewProcessingError reports a pipeline failure on a well-formed request.
func NewProcessingError(cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("processing error")
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryProcessing, http.StatusUnprocessableEntity)
}

func NewNotFoundError(resource, id string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("%s not found", resource))
	return newDetailedError(builder, map[string]string{"id": id}, CategoryNotFound, http.StatusNotFound)
}

func NewStorageError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryStorage, http.StatusServiceUnavailable)
}

func NewTimeoutError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeDeadlineExceeded).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryTimeout, http.StatusGatewayTimeout)
}

func NewRateLimitError(retryAfter time.Duration) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeResourceExhausted).
		WithMsg("Rate limit exceeded")
	details := map[string]string{"retry_after": retryAfter.String()}
	return newDetailedError(builder, details, CategoryRateLimit, http.StatusTooManyRequests)
}

func NewConfigurationError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryConfiguration, http.StatusInternalServerError)
}

// NewInternalError hides the cause from the client. The stack is attached
// only outside release mode.
func NewInternalError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("Internal server error")
	if cause != nil {
		builder = builder.WithCause(cause)
	}

	appErr := NewAppError(withDetails(builder, map[string]string{"internal_details": message}), CategoryInternal, http.StatusInternalServerError)
	if gin.Mode() != gin.ReleaseMode {
		appErr.StackTrace = captureStackTrace()
	}
	return appErr
}

func captureStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// ToAppError converts any error into an AppError.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, analysis.ErrProcessing):
		return NewProcessingError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError("Request deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return NewTimeoutError("Request cancelled", err)
	}

	var ebErr *errbuilder.ErrBuilder
	if errors.As(err, &ebErr) {
		return NewAppError(ebErr, CategoryInternal, http.StatusInternalServerError)
	}

	return NewInternalError("An unexpected error occurred", err)
}

// ErrorHandler renders the last error attached to the gin context.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := ToAppError(c.Errors.Last().Err)
		appErr.RequestID = c.GetHeader("X-Request-ID")
		LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
	}
}

// RecoveryHandler turns a handler panic into a structured 500.
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		appErr := NewInternalError(fmt.Sprintf("Panic recovered: %v", recovered), fmt.Errorf("%v", recovered))
		appErr.StackTrace = captureStackTrace()
		appErr.RequestID = c.GetHeader("X-Request-ID")

		LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
	})
}

// LogError logs at a level chosen by category: client mistakes at warn,
// timeouts at info and everything else at error.
func LogError(c *gin.Context, err *AppError) {
	fields := []zap.Field{
		zap.String("error_category", string(err.Category)),
		zap.Any("error_code", err.ErrBuilder.ErrCode()),
		zap.Int("http_status", err.HTTPStatus),
		zap.String("ip", c.ClientIP()),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", err.RequestID),
	}
	if cause := err.ErrBuilder.Unwrap(); cause != nil {
		fields = append(fields, zap.NamedError("cause", cause))
	}

	logger := zap.L()
	msg := err.ErrBuilder.Msg
	switch err.Category {
	case CategoryValidation, CategoryRateLimit, CategoryNotFound:
		logger.Warn(msg, fields...)
	case CategoryTimeout:
		logger.Info(msg, fields...)
	default:
		logger.Error(msg, fields...)
	}

	if err.StackTrace != "" && gin.Mode() == gin.DebugMode {
		logger.Debug("stack_trace", zap.String("trace", err.StackTrace))
	}
}

// SafeClose closes a resource and logs a failure instead of returning it.
func SafeClose(closer interface{ Close() error }, resourceName string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		zap.L().Warn("Failed to close resource", zap.String("resource", resourceName), zap.Error(err))
	}
}
