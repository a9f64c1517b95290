package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const MetricsSubsystem = "orderbook"

// Metrics contains metrics exposed by the exchange.
type Metrics struct {
	// Orders accepted into the book, by side.
	OrdersSubmitted *prometheus.CounterVec
	// Orders refused before entering the book, by side and reason.
	OrdersRejected *prometheus.CounterVec
	// Orders cancelled by their owner.
	OrdersCancelled prometheus.Counter
	// Number of trades produced by matching.
	Trades prometheus.Counter
	// Sum of traded volume.
	TradedVolume prometheus.Counter
	// Resting orders and price levels, by side.
	BookOrders *prometheus.GaugeVec
	BookLevels *prometheus.GaugeVec
	// Orders waiting for their validFrom instant.
	PendingOrders prometheus.Gauge
	// Time spent inserting and matching one order.
	MatchDuration prometheus.Histogram

	registry *prometheus.Registry
}

func newMetrics(namespace string) *Metrics {
	return &Metrics{
		OrdersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "orders_submitted_total",
			Help:      "Orders accepted into the book.",
		}, []string{"side"}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "orders_rejected_total",
			Help:      "Orders refused before entering the book.",
		}, []string{"side", "reason"}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "orders_cancelled_total",
			Help:      "Orders cancelled by their owner.",
		}),
		Trades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "trades_total",
			Help:      "Trades produced by matching.",
		}),
		TradedVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "traded_volume_total",
			Help:      "Sum of traded volume.",
		}),
		BookOrders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "resting_orders",
			Help:      "Resting orders in the book.",
		}, []string{"side"}),
		BookLevels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "price_levels",
			Help:      "Distinct price levels in the book.",
		}, []string{"side"}),
		PendingOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "pending_orders",
			Help:      "Orders waiting for their validFrom instant.",
		}),
		MatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "match_duration_seconds",
			Help:      "Time spent inserting and matching one order.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 10),
		}),
	}
}

// PrometheusMetrics returns Metrics registered on their own registry along
// with the Go and process collectors.
func PrometheusMetrics(namespace string) *Metrics {
	m := newMetrics(namespace)

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.OrdersSubmitted,
		m.OrdersRejected,
		m.OrdersCancelled,
		m.Trades,
		m.TradedVolume,
		m.BookOrders,
		m.BookLevels,
		m.PendingOrders,
		m.MatchDuration,
	)

	return m
}

// NopMetrics returns Metrics that are never exported.
func NopMetrics() *Metrics {
	return newMetrics("")
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
