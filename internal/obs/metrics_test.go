package obs

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveCall("login", "ok", 10*time.Millisecond)
	m.ObserveCall("login", "ok", 20*time.Millisecond)
	m.ObserveCall("login", "unauthorized", time.Millisecond)
	m.ObserveTransition("login", "authenticated")
	m.ObserveDiscard("refresh_user")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BackendCalls.WithLabelValues("login", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendCalls.WithLabelValues("login", "unauthorized")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("login", "authenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Discarded.WithLabelValues("refresh_user")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BackendDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveCall("login", "ok", time.Second)
		m.ObserveTransition("login", "authenticated")
		m.ObserveDiscard("bootstrap")
	})
}

func TestNewMetrics_NilRegistry(t *testing.T) {
	m := NewMetrics(nil)
	m.ObserveTransition("logout", "anonymous")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("logout", "anonymous")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveTransition("bootstrap", "anonymous")

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Contains(t, string(body), `session_state_transitions_total{op="bootstrap",state="anonymous"} 1`)
}
