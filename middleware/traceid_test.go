package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTraceRouter() (*gin.Engine, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(TraceID(zap.New(core)))
	r.GET("/api/agents/:id", func(c *gin.Context) {
		RequestLogger(c, nil).Info("handled", zap.String("agent", c.Param("id")))
		c.String(http.StatusOK, GetTraceID(c))
	})
	return r, logs
}

func TestTraceID_Header(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string // empty means a generated UUID
	}{
		{"generated", "", ""},
		{"provided", "my-custom-trace", "my-custom-trace"},
		{"oversized replaced", strings.Repeat("x", maxTraceIDLen+1), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTraceRouter()
			req := httptest.NewRequest(http.MethodGet, "/api/agents/a1", nil)
			if tc.header != "" {
				req.Header.Set(TraceIDHeader, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)

			id := w.Body.String()
			if tc.want == "" {
				assert.Len(t, id, 36)
			} else {
				assert.Equal(t, tc.want, id)
			}
			assert.Equal(t, id, w.Header().Get(TraceIDHeader))
		})
	}
}

func TestRequestLogger_CarriesTraceID(t *testing.T) {
	r, logs := newTraceRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/agents/a1", nil)
	req.Header.Set(TraceIDHeader, "trace-42")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("handled").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "trace-42", entries[0].ContextMap()[TraceIDKey])
	assert.Equal(t, "a1", entries[0].ContextMap()["agent"])
}

func TestRequestLogger_Fallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetTraceID(c))

	core, logs := observer.New(zapcore.InfoLevel)
	RequestLogger(c, zap.New(core)).Info("fallback")
	assert.Equal(t, 1, logs.Len())
	assert.NotPanics(t, func() { RequestLogger(c, nil).Info("dropped") })
}
