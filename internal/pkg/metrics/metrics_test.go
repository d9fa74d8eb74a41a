package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.SignIns.WithLabelValues(ResultProvisioned).Inc()
	m.SignIns.WithLabelValues(ResultProvisioned).Inc()
	m.UsernameCollisions.Add(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SignIns.WithLabelValues(ResultProvisioned)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.UsernameCollisions))
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	m.SignIns.WithLabelValues(ResultExisting).Inc()

	r := gin.New()
	r.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `promptshare_signins_total{result="existing"} 1`)
}
