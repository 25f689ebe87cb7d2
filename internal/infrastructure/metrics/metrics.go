package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ourllet"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Settlement metrics
	SettlementDuration prometheus.Histogram
	SettlementItems    prometheus.Histogram

	// Entry metrics
	EntriesImported *prometheus.CounterVec

	// Ledger metrics
	LedgerJoins *prometheus.CounterVec

	// Authentication metrics
	VerificationCodes *prometheus.CounterVec

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInFlight  prometheus.Gauge
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SettlementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_duration_seconds",
			Help:      "Duration of monthly settlement computations",
			Buckets:   prometheus.DefBuckets,
		}),
		SettlementItems: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_items",
			Help:      "Number of line items per settlement",
			Buckets:   []float64{0, 1, 2, 5, 10, 15, 20, 30},
		}),

		EntriesImported: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entries_imported_total",
				Help:      "Entries processed by batch import by result",
			},
			[]string{"result"},
		),

		LedgerJoins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_joins_total",
				Help:      "Ledger join attempts by result",
			},
			[]string{"result"},
		),

		VerificationCodes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verification_codes_total",
				Help:      "Email verification codes by outcome",
			},
			[]string{"result"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}

// RecordSettlement implements usecase.MetricsRecorder.
func (m *Metrics) RecordSettlement(duration time.Duration, items int) {
	m.SettlementDuration.Observe(duration.Seconds())
	m.SettlementItems.Observe(float64(items))
}

// RecordEntriesImported implements usecase.MetricsRecorder.
func (m *Metrics) RecordEntriesImported(created, failed int) {
	m.EntriesImported.WithLabelValues("created").Add(float64(created))
	m.EntriesImported.WithLabelValues("failed").Add(float64(failed))
}

// RecordLedgerJoin implements usecase.MetricsRecorder.
func (m *Metrics) RecordLedgerJoin(result string) {
	m.LedgerJoins.WithLabelValues(result).Inc()
}

// RecordVerificationCode implements usecase.MetricsRecorder.
func (m *Metrics) RecordVerificationCode(result string) {
	m.VerificationCodes.WithLabelValues(result).Inc()
}
