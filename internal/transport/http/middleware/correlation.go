package middleware

import (
	"context"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/logger"
)

const (
	// TraceIDHeader carries the trace id echoed on every response and in error bodies.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the gin context key holding the trace id.
	TraceIDKey = "trace_id"

	requestIDHeader = "X-Request-ID"
)

// correlationIDPattern bounds the caller supplied ids that are echoed and logged.
var correlationIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

func callerCorrelationID(c *gin.Context, header string) string {
	if v := c.GetHeader(header); correlationIDPattern.MatchString(v) {
		return v
	}
	return ""
}

// EnrichContext assigns the trace id: the active span's, else a well-formed X-Trace-ID, else a new one.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		var traceID string
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		} else if traceID = callerCorrelationID(c, TraceIDHeader); traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Next()
	}
}

// RequestID stores the request id on the request context for logger.RequestIDFromContext.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := callerCorrelationID(c, requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		c.Header(requestIDHeader, reqID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.RequestIDKey{}, reqID))
		c.Next()
	}
}

// GetTraceID returns the id set by EnrichContext, or "" outside that middleware.
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}
