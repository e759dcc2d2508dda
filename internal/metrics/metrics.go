package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Calculation kinds
const (
	KindSingle      = "single"
	KindFlip        = "flip"
	KindConvert     = "convert"
	KindIndependent = "independent"
	KindExact       = "exact"
)

// Calculation results
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Transports a calculation arrived on
const (
	TransportHTTP = "http"
	TransportWS   = "ws"
)

// Session message directions
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Registry holds the Prometheus metrics for the service
type Registry struct {
	Calculations        *prometheus.CounterVec
	CalculationDuration *prometheus.HistogramVec
	OptimizerIterations prometheus.Histogram
	ActiveSessions      prometheus.Gauge
	SessionMessages     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the service metrics and registers them with reg. A nil reg
// gets a private registry, which keeps tests independent of each other.
func New(reg *prometheus.Registry) *Registry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Registry{
		Calculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgerunner_calculations_total",
				Help: "Total number of calculations by kind, transport and result",
			},
			[]string{"kind", "transport", "result"},
		),

		CalculationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edgerunner_calculation_duration_seconds",
				Help:    "Duration of each calculation in seconds",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"kind"},
		),

		OptimizerIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "edgerunner_optimizer_iterations",
				Help:    "Iterations used by the exact allocator per call",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 300},
			},
		),

		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "edgerunner_active_sessions",
				Help: "Number of connected calculator sessions",
			},
		),

		SessionMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgerunner_session_messages_total",
				Help: "Total number of session messages by direction",
			},
			[]string{"direction"},
		),

		gatherer: reg,
	}

	reg.MustRegister(
		m.Calculations,
		m.CalculationDuration,
		m.OptimizerIterations,
		m.ActiveSessions,
		m.SessionMessages,
	)

	return m
}

// Timer measures one calculation
type Timer struct {
	metrics   *Registry
	kind      string
	transport string
	start     time.Time
}

// StartTimer begins timing a calculation of the given kind
func (m *Registry) StartTimer(kind, transport string) *Timer {
	return &Timer{metrics: m, kind: kind, transport: transport, start: time.Now()}
}

// Stop records the duration and outcome of the calculation
func (t *Timer) Stop(err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	t.metrics.CalculationDuration.WithLabelValues(t.kind).Observe(time.Since(t.start).Seconds())
	t.metrics.Calculations.WithLabelValues(t.kind, t.transport, result).Inc()
}

// RecordIterations records the iteration count of one exact allocation
func (m *Registry) RecordIterations(n int) {
	m.OptimizerIterations.Observe(float64(n))
}

// SessionOpened increments the active session gauge
func (m *Registry) SessionOpened() {
	m.ActiveSessions.Inc()
}

// SessionClosed decrements the active session gauge
func (m *Registry) SessionClosed() {
	m.ActiveSessions.Dec()
}

// RecordMessage counts a session message in the given direction
func (m *Registry) RecordMessage(direction string) {
	m.SessionMessages.WithLabelValues(direction).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
