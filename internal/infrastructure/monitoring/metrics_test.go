package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordSessionOp("create", true)
		m.SetSessionsActive(3)
		m.RecordBridgeEmit("update")
		m.ObserveSearch("literal", time.Millisecond, 2)
		m.IncWSConnections()
		m.DecWSConnections()
		m.Close()
	})
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()
	defer m.Close()

	m.RecordSessionOp("rename", false)
	m.RecordSessionOp("rename", false)
	m.SetSessionsActive(4)
	m.RecordBridgeEmit("focus")
	m.IncWSConnections()
	m.ObserveSearch("regex", 2*time.Millisecond, 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionOps.WithLabelValues("rename", "rejected")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BridgeEmits.WithLabelValues("focus")))

	snap := m.Snapshot()
	assert.Equal(t, int64(4), snap.ActiveSessions)
	assert.Equal(t, int64(1), snap.ActiveConnections)
	assert.Equal(t, int64(1), snap.Searches)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()
	defer m.Close()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/sessions/:name", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/abc", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/sessions/:name", "404")))
	assert.Equal(t, int64(1), m.Snapshot().TotalErrors)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "editor_http_requests_total"))
}

func TestIndependentCollectors(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	defer a.Close()
	defer b.Close()

	a.SetSessionsActive(1)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SessionsActive))
}
