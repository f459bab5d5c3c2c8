package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Round metrics
	RoundsOpened       prometheus.Counter
	RoundsSettled      prometheus.Counter
	SettlementDuration prometheus.Histogram
	SettlementRetries  prometheus.Counter

	// Wager metrics
	WagersPlaced  prometheus.Counter
	WagersSettled *prometheus.CounterVec
	WagerStake    prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBErrors *prometheus.CounterVec

	// Event metrics
	EventsPublished *prometheus.CounterVec
	EventErrors     prometheus.Counter
}

// New creates all metrics and registers them with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics against the given registerer.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RoundsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "chromabet_rounds_opened_total",
			Help: "Total number of rounds opened",
		}),
		RoundsSettled: factory.NewCounter(prometheus.CounterOpts{
			Name: "chromabet_rounds_settled_total",
			Help: "Total number of rounds settled",
		}),
		SettlementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chromabet_settlement_duration_seconds",
			Help:    "Duration of round settlement passes",
			Buckets: prometheus.DefBuckets,
		}),
		SettlementRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "chromabet_settlement_retries_total",
			Help: "Total number of settlement retry attempts",
		}),

		WagersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "chromabet_wagers_placed_total",
			Help: "Total number of wagers placed",
		}),
		WagersSettled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chromabet_wagers_settled_total",
				Help: "Total number of wagers settled by terminal status",
			},
			[]string{"status"},
		),
		WagerStake: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chromabet_wager_stake",
			Help:    "Wager stake amounts",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 100000},
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chromabet_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chromabet_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chromabet_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chromabet_events_published_total",
				Help: "Total round-lifecycle events published",
			},
			[]string{"type"},
		),
		EventErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "chromabet_event_errors_total",
			Help: "Total event publish failures",
		}),
	}
}
