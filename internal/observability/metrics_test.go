package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics("companion_test")

	m.ObserveReply("completion")
	m.ObserveReply("fallback")
	m.ObserveReply("fallback")
	m.ObserveCompletion(120*time.Millisecond, "")
	m.ObserveCompletion(30*time.Second, "timeout")
	m.ObserveDispatch("nats", "text")

	assert.InDelta(t, 2, testutil.ToFloat64(m.Replies.WithLabelValues("fallback")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CompletionErrors.WithLabelValues("timeout")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DispatchMessages.WithLabelValues("nats", "text")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(m.CompletionErrors))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveReply("completion")
		m.ObserveCompletion(time.Second, "transport")
		m.ObserveDispatch("http", "command")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("companion_test")
	m.ObserveReply("completion")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `companion_test_replies_total{outcome="completion"} 1`)
}
