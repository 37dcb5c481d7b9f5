package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cacheLatency    prometheus.Observer
	exportDuration  *prometheus.HistogramVec
	exportTotal     *prometheus.CounterVec
	importRows      *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "standing_cache_hits_total",
		Help: "Total class standing cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "standing_cache_misses_total",
		Help: "Total class standing cache misses",
	})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "standing_cache_latency_seconds",
		Help:    "Latency for standing cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	exportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "export_render_duration_seconds",
		Help:    "Time spent rendering export documents",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"kind"})

	exportTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exports_total",
		Help: "Total export jobs by kind and outcome",
	}, []string{"kind", "outcome"})

	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Total imported CSV rows by kind and outcome",
	}, []string{"kind", "outcome"})

	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		requestDuration,
		requestTotal,
		cacheHits,
		cacheMisses,
		cacheLatency,
		exportDuration,
		exportTotal,
		importRows,
	)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		cacheLatency:    cacheLatency,
		exportDuration:  exportDuration,
		exportTotal:     exportTotal,
		importRows:      importRows,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	if s == nil {
		return promhttp.Handler()
	}
	return s.handler
}

// RecordHTTPRequest captures request duration and totals.
func (s *MetricsService) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordCacheOperation captures a standing cache lookup.
func (s *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if s == nil {
		return
	}
	if hit {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}
	s.cacheLatency.Observe(duration.Seconds())
}

// RecordExport captures one export job.
func (s *MetricsService) RecordExport(kind string, err error, duration time.Duration) {
	if s == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.exportTotal.WithLabelValues(kind, outcome).Inc()
	s.exportDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordImportRows captures per-row import outcomes.
func (s *MetricsService) RecordImportRows(kind string, imported, failed int) {
	if s == nil {
		return
	}
	if imported > 0 {
		s.importRows.WithLabelValues(kind, "imported").Add(float64(imported))
	}
	if failed > 0 {
		s.importRows.WithLabelValues(kind, "failed").Add(float64(failed))
	}
}
