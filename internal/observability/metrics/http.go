package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerMetrics tracks HTTP traffic and question-answering outcomes on a
// private registry.
type ServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	qaQueriesTotal    *prometheus.CounterVec
	qaSourceDocuments prometheus.Histogram
	qaDuration        prometheus.Histogram
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "rqa",
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total HTTP requests processed.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "rqa",
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "rqa",
			Subsystem:   "http",
			Name:        "requests_in_flight",
			Help:        "HTTP requests currently being served.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	qaQueriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "rqa",
			Subsystem:   "qa",
			Name:        "queries_total",
			Help:        "Total question-answering invocations by outcome.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"outcome"},
	)
	qaSourceDocuments := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "rqa",
			Subsystem:   "qa",
			Name:        "source_documents",
			Help:        "Documents retrieved per answered question.",
			Buckets:     []float64{0, 1, 2, 4, 8, 16, 32},
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	qaDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "rqa",
			Subsystem:   "qa",
			Name:        "duration_seconds",
			Help:        "End-to-end question-answering duration in seconds.",
			Buckets:     []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	registry.MustRegister(
		requestTotal, requestDuration, requestInFlight,
		qaQueriesTotal, qaSourceDocuments, qaDuration,
	)

	return &ServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		qaQueriesTotal:    qaQueriesTotal,
		qaSourceDocuments: qaSourceDocuments,
		qaDuration:        qaDuration,
	}
}

// Handler exposes the private registry for scraping.
func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveQuery records one pipeline invocation.
func (m *ServerMetrics) ObserveQuery(outcome string, sourceDocuments int, duration time.Duration) {
	m.qaQueriesTotal.WithLabelValues(outcome).Inc()
	m.qaDuration.Observe(duration.Seconds())
	if outcome == "ok" {
		m.qaSourceDocuments.Observe(float64(sourceDocuments))
	}
}

// Middleware instruments request counts, durations, and in-flight gauge.
func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		recorder := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type metricsRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *metricsRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
