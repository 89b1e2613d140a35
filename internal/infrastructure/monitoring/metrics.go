package monitoring

import (
	"net/http"
	"time"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels used when no error occurred.
const OutcomeOK = "ok"

// Metrics holds the Prometheus collectors for one client.
//
// Every Metrics value owns its registry, so independent clients never
// share counters. All methods are safe on a nil receiver.
type Metrics struct {
	Registry *prometheus.Registry

	// RPC metrics
	CallsTotal   *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec
	RetriesTotal *prometheus.CounterVec

	// Session metrics
	RecoveriesTotal *prometheus.CounterVec
	SessionState    prometheus.Gauge

	// Conversation metrics
	QueriesTotal  *prometheus.CounterVec
	Conversations prometheus.Gauge
}

// NewMetrics creates collectors registered on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		CallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notebookrpc_calls_total",
				Help: "Total number of logical RPC calls by outcome",
			},
			[]string{"rpc", "outcome"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notebookrpc_call_duration_seconds",
				Help:    "Logical RPC call duration including retries",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"rpc"},
		),
		RetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notebookrpc_retries_total",
				Help: "Total number of backoff retries by status",
			},
			[]string{"rpc", "status"},
		),
		RecoveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notebookrpc_auth_recoveries_total",
				Help: "Credential recovery attempts by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		SessionState: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "notebookrpc_session_state",
				Help: "Current session state (0 valid, 1 recovering, 2 fully expired)",
			},
		),
		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notebookrpc_queries_total",
				Help: "Total number of answered queries",
			},
			[]string{"follow_up"},
		),
		Conversations: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "notebookrpc_conversations",
				Help: "Number of tracked conversations",
			},
		),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RecordCall records one finished logical call
func (m *Metrics) RecordCall(rpc string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.CallsTotal.WithLabelValues(rpc, Outcome(err)).Inc()
	m.CallDuration.WithLabelValues(rpc).Observe(duration.Seconds())
}

// RecordRetry records one backoff retry
func (m *Metrics) RecordRetry(rpc, status string) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(rpc, status).Inc()
}

// RecordRecovery records one credential recovery attempt
func (m *Metrics) RecordRecovery(stage string, err error) {
	if m == nil {
		return
	}
	m.RecoveriesTotal.WithLabelValues(stage, Outcome(err)).Inc()
}

// SetSessionState sets the session state gauge
func (m *Metrics) SetSessionState(state int) {
	if m == nil {
		return
	}
	m.SessionState.Set(float64(state))
}

// RecordQuery records an answered query and the tracked conversation count
func (m *Metrics) RecordQuery(followUp bool, conversations int) {
	if m == nil {
		return
	}
	label := "false"
	if followUp {
		label = "true"
	}
	m.QueriesTotal.WithLabelValues(label).Inc()
	m.Conversations.Set(float64(conversations))
}

// Outcome maps an error to a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	return errs.KindOf(err).String()
}

// Timer measures a logical call
type Timer struct {
	start   time.Time
	metrics *Metrics
	rpc     string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, rpc string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		rpc:     rpc,
	}
}

// Stop stops the timer and records the call
func (t *Timer) Stop(err error) {
	t.metrics.RecordCall(t.rpc, err, time.Since(t.start))
}
