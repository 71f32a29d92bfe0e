package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const TraceIDKey = "trace_id"
const TraceIDHeader = "X-Trace-ID"

const loggerKey = "request_logger"

// maxTraceIDLen bounds client-supplied IDs; longer ones are replaced.
const maxTraceIDLen = 64

// TraceID tags every request with a trace ID, reusing the caller's
// X-Trace-ID when it is present and short enough. The ID is echoed in the
// response header and bound to a request-scoped child of base, which
// handlers fetch with RequestLogger.
func TraceID(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" || len(traceID) > maxTraceIDLen {
			traceID = uuid.NewString()
		}
		c.Set(TraceIDKey, traceID)
		c.Set(loggerKey, base.With(zap.String(TraceIDKey, traceID)))
		c.Header(TraceIDHeader, traceID)
		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the Gin context.
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}

// RequestLogger returns the trace-scoped logger set by TraceID, or fallback
// when the request did not pass through it. A nil fallback yields a no-op
// logger.
func RequestLogger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}
