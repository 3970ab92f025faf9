package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	registry          *prometheus.Registry
	Replies           *prometheus.CounterVec
	CompletionErrors  *prometheus.CounterVec
	CompletionLatency prometheus.Histogram
	DispatchMessages  *prometheus.CounterVec
}

// NewMetrics registers instruments on a fresh registry so that several
// instances can coexist in one process.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Replies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_total",
			Help:      "Replies by outcome (completion, fallback, empty_input).",
		}, []string{"outcome"}),
		CompletionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_errors_total",
			Help:      "Failed completion requests by reason.",
		}, []string{"reason"}),
		CompletionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_latency_ms",
			Help:      "Completion request latency in milliseconds.",
			Buckets:   []float64{250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
		}),
		DispatchMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_messages_total",
			Help:      "Inbound chat messages by transport and kind.",
		}, []string{"transport", "kind"}),
	}
}

func (m *Metrics) ObserveReply(outcome string) {
	if m == nil {
		return
	}
	m.Replies.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCompletion(d time.Duration, failureReason string) {
	if m == nil {
		return
	}
	m.CompletionLatency.Observe(float64(d.Milliseconds()))
	if failureReason != "" {
		m.CompletionErrors.WithLabelValues(failureReason).Inc()
	}
}

func (m *Metrics) ObserveDispatch(transport, kind string) {
	if m == nil {
		return
	}
	m.DispatchMessages.WithLabelValues(transport, kind).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
