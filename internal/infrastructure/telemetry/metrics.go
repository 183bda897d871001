package telemetry

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/dentalshop/backend/internal/application/stockalert"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Namespace prefixes every exported metric
const Namespace = "dentalshop"

// HTTPDurationBuckets are latency buckets in seconds
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics owns a private Prometheus registry and the application collectors.
// It is safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	httpInflight       prometheus.Gauge
	stockAlertStreams  prometheus.Gauge
	stockAlertsEmitted *prometheus.CounterVec
	ordersPlaced       prometheus.Counter
	orderItems         prometheus.Counter
	orderValue         prometheus.Histogram
}

// NewMetrics registers every collector on a fresh registry, plus Go runtime
// and process collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   HTTPDurationBuckets,
		}, []string{"method", "route"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served",
		}),
		stockAlertStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "stock_alert_streams",
			Help:      "Open low-stock alert streams",
		}),
		stockAlertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "stock_alerts_total",
			Help:      "Stock alert events written to streams",
		}, []string{"type"}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "orders_total",
			Help:      "Orders placed through checkout",
		}),
		orderItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "order_items_total",
			Help:      "Units sold across all placed orders",
		}),
		orderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "order_value_mad",
			Help:      "Order totals in MAD",
			Buckets:   prometheus.ExponentialBuckets(100, 2.5, 10),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.httpInflight,
		m.stockAlertStreams,
		m.stockAlertsEmitted,
		m.ordersPlaced,
		m.orderItems,
		m.orderValue,
	)
	return m
}

// WatchPool exports the connection pool counters of db as
// go_sql_* series labelled db_name
func (m *Metrics) WatchPool(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RequestStarted bumps the in-flight gauge
func (m *Metrics) RequestStarted() {
	m.httpInflight.Inc()
}

// RequestFinished records a served request. route is the matched pattern,
// never the raw path.
func (m *Metrics) RequestFinished(method, route string, status int, elapsed time.Duration) {
	m.httpInflight.Dec()
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// StreamOpened implements stockalert.Observer
func (m *Metrics) StreamOpened() {
	m.stockAlertStreams.Inc()
}

// StreamClosed implements stockalert.Observer
func (m *Metrics) StreamClosed() {
	m.stockAlertStreams.Dec()
}

// EventEmitted implements stockalert.Observer
func (m *Metrics) EventEmitted(t stockalert.EventType) {
	m.stockAlertsEmitted.WithLabelValues(string(t)).Inc()
}

// OrderPlaced records a committed order
func (m *Metrics) OrderPlaced(itemCount int, total decimal.Decimal) {
	m.ordersPlaced.Inc()
	m.orderItems.Add(float64(itemCount))
	m.orderValue.Observe(total.InexactFloat64())
}

var _ stockalert.Observer = (*Metrics)(nil)
