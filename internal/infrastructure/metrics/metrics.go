package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Pipeline metrics
	StatementsUploaded     *prometheus.CounterVec
	ClassificationDuration *prometheus.HistogramVec
	PipelineFailures       *prometheus.CounterVec
	CandidatesPersisted    prometheus.Counter
	CandidatesFailed       prometheus.Counter

	// API metrics
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	HTTPInFlight     prometheus.Gauge
	IdempotentReplay prometheus.Counter

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Pipeline metrics
		StatementsUploaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_statements_uploaded_total",
				Help: "Total number of statements accepted for import by format",
			},
			[]string{"format"},
		),
		ClassificationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_classification_duration_seconds",
				Help:    "Duration of classifier requests",
				Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"outcome"},
		),
		PipelineFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_pipeline_failures_total",
				Help: "Total number of imports aborted by stage",
			},
			[]string{"stage"},
		),
		CandidatesPersisted: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_candidates_persisted_total",
			Help: "Total number of classified transactions persisted",
		}),
		CandidatesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_candidates_failed_total",
			Help: "Total number of classified transactions that could not be persisted",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fintrack_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		IdempotentReplay: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_idempotent_replays_total",
			Help: "Total responses served from the idempotency store",
		}),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_rate_limit_hits_total",
			Help: "Total rate limited requests",
		}),
	}
}

// StatementUploaded implements usecase.PipelineRecorder.
func (m *Metrics) StatementUploaded(format domain.FileFormat) {
	m.StatementsUploaded.WithLabelValues(string(format)).Inc()
}

// ClassificationObserved implements usecase.PipelineRecorder.
func (m *Metrics) ClassificationObserved(duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ClassificationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// StageFailed implements usecase.PipelineRecorder.
func (m *Metrics) StageFailed(stage string) {
	m.PipelineFailures.WithLabelValues(stage).Inc()
}

// CandidatesReconciled implements usecase.PipelineRecorder.
func (m *Metrics) CandidatesReconciled(persisted, failed int) {
	m.CandidatesPersisted.Add(float64(persisted))
	m.CandidatesFailed.Add(float64(failed))
}

var _ usecase.PipelineRecorder = (*Metrics)(nil)
