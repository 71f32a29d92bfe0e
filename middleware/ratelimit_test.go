package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

func newRateLimitRouter(t *testing.T, b int) (*gin.Engine, *observer.ObservedLogs) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	core, logs := observer.New(zapcore.DebugLevel)
	eng := gin.New()
	// near-zero refill so a bucket stays empty for the whole test
	eng.Use(TraceID(zap.New(core)), RateLimit(ctx, rate.Limit(0.001), b))
	eng.GET("/api/agents", func(c *gin.Context) { c.Status(http.StatusOK) })
	return eng, logs
}

func hit(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_PerIPBuckets(t *testing.T) {
	r, _ := newRateLimitRouter(t, 2)

	for _, ip := range []string{"10.1.1.1", "10.1.1.1", "10.1.1.2"} {
		assert.Equal(t, http.StatusOK, hit(r, ip).Code, "ip %s within burst", ip)
	}
	w := hit(r, "10.1.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, hit(r, "10.1.1.2").Code, "other ip keeps its own bucket")
}

func TestRateLimit_LogsRejectionWithTrace(t *testing.T) {
	r, logs := newRateLimitRouter(t, 1)
	hit(r, "10.2.2.2")
	w := hit(r, "10.2.2.2")
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	entries := logs.FilterMessage("rate limited").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, w.Header().Get(TraceIDHeader), ctx[TraceIDKey])
	assert.Equal(t, "10.2.2.2", ctx["client_ip"])
}
