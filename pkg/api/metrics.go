package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// File parsing metrics
	filesParsedTotal  *prometheus.CounterVec
	recordsTotal      *prometheus.CounterVec
	parseErrorsTotal  *prometheus.CounterVec
	catalogSizeGauge  prometheus.Gauge
	healthChecksTotal prometheus.Counter
}

// NewMetrics creates and registers all metrics on the default registry
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all metrics on the given registerer
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gcd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gcd_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		filesParsedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gcd_files_parsed_total",
				Help: "Total number of files parsed, by outcome",
			},
			[]string{"status"},
		),
		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gcd_records_total",
				Help: "Total number of records decoded, by record type",
			},
			[]string{"type"},
		),
		parseErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gcd_parse_errors_total",
				Help: "Total number of parse failures, by error kind",
			},
			[]string{"kind"},
		),
		catalogSizeGauge: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gcd_catalog_entries",
				Help: "Number of entries in the catalog",
			},
		),
		healthChecksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gcd_health_checks_total",
				Help: "Total number of health check requests",
			},
		),
	}
}

// RecordFileParsed tracks the outcome of one file parse
func (m *Metrics) RecordFileParsed(ok bool) {
	if m == nil {
		return
	}
	status := statusSuccess
	if !ok {
		status = statusError
	}
	m.filesParsedTotal.WithLabelValues(status).Inc()
}

// RecordRecord counts one decoded record by type name
func (m *Metrics) RecordRecord(recordType string) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(recordType).Inc()
}

// RecordParseError counts one parse failure by error kind
func (m *Metrics) RecordParseError(kind string) {
	if m == nil {
		return
	}
	m.parseErrorsTotal.WithLabelValues(kind).Inc()
}

// SetCatalogSize tracks how many entries the catalog holds
func (m *Metrics) SetCatalogSize(n int) {
	if m == nil {
		return
	}
	m.catalogSizeGauge.Set(float64(n))
}

// RecordHealthCheck counts one health check
func (m *Metrics) RecordHealthCheck() {
	if m == nil {
		return
	}
	m.healthChecksTotal.Inc()
}

// InstrumentHandler wraps a handler with request count and duration metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	if m == nil {
		return handler
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		handler(sw, r)
		m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(sw.status)).Inc()
		m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// statusWriter captures the response status code
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
