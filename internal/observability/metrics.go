package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "url_shortener"

// Metrics exposes Prometheus collectors on a private registry. All methods
// are nil-safe so call sites never have to guard.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	httpRequestsInFlight       prometheus.Gauge
	urlShorteningTotal         prometheus.Counter
	urlRedirectsTotal          prometheus.Counter
	telegramMessagesProcessed  prometheus.Counter
	errorsTotal                *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "status", "path"}),
		httpRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"method", "path"}),
		httpRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		urlShorteningTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "url_shortening_total",
			Help:      "Total number of URLs shortened",
		}),
		urlRedirectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "url_redirects_total",
			Help:      "Total number of URL redirects",
		}),
		telegramMessagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telegram_messages_processed_total",
			Help:      "Total number of Telegram messages processed",
		}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors",
		}, []string{"error_type", "component"}),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDurationSeconds,
		m.httpRequestsInFlight,
		m.urlShorteningTotal,
		m.urlRedirectsTotal,
		m.telegramMessagesProcessed,
		m.errorsTotal,
	)
	return m
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments the request counter and duration histogram.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status), path).Inc()
	m.httpRequestDurationSeconds.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(errorType, component string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(errorType, component).Inc()
}

// IncInFlight increments the in-flight gauge.
func (m *Metrics) IncInFlight() {
	if m == nil {
		return
	}
	m.httpRequestsInFlight.Inc()
}

// DecInFlight decrements the in-flight gauge.
func (m *Metrics) DecInFlight() {
	if m == nil {
		return
	}
	m.httpRequestsInFlight.Dec()
}

// IncURLShortened counts a shortened URL.
func (m *Metrics) IncURLShortened() {
	if m == nil {
		return
	}
	m.urlShorteningTotal.Inc()
}

// IncURLRedirects counts a redirect.
func (m *Metrics) IncURLRedirects() {
	if m == nil {
		return
	}
	m.urlRedirectsTotal.Inc()
}

// IncTelegramMessages counts a processed bot message.
func (m *Metrics) IncTelegramMessages() {
	if m == nil {
		return
	}
	m.telegramMessagesProcessed.Inc()
}
