package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "songbook"

// Operation status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the collectors of one server.
type Metrics struct {
	registry *prometheus.Registry
	started  time.Time

	// RequestsTotal counts HTTP requests.
	// Labels: method, route, status
	RequestsTotal *prometheus.CounterVec

	// RequestDuration tracks HTTP request latency in seconds.
	// Labels: method, route
	RequestDuration *prometheus.HistogramVec

	// OperationsTotal counts executed GraphQL operations.
	// Labels: operation, status
	OperationsTotal *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{registry: reg, started: time.Now()}
	factory := promauto.With(reg)

	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	m.OperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "graphql_operations_total",
			Help:      "Total number of executed GraphQL operations",
		},
		[]string{"operation", "status"},
	)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "uptime_seconds",
			Help:      "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.started).Seconds() },
	)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RegisterCatalog exposes the record counts reported by counts as
// songbook_catalog_records{type="author"|"song"}.
func (m *Metrics) RegisterCatalog(counts func() (authors, songs int)) error {
	if m == nil {
		return nil
	}
	for _, kind := range []string{"author", "song"} {
		g := prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace:   Namespace,
				Name:        "catalog_records",
				Help:        "Number of records held by the catalog",
				ConstLabels: prometheus.Labels{"type": kind},
			},
			func() float64 {
				authors, songs := counts()
				if kind == "author" {
					return float64(authors)
				}
				return float64(songs)
			},
		)
		if err := m.registry.Register(g); err != nil {
			return err
		}
	}
	return nil
}

// ObserveOperation records one executed GraphQL operation.
func (m *Metrics) ObserveOperation(operation string, failed bool) {
	if m == nil {
		return
	}
	status := StatusOK
	if failed {
		status = StatusError
	}
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
}

// Instrument records request count and duration for next under route.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *responseRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
