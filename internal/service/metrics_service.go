package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kittisak-dev/timetable-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the scheduling pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	runTotal        *prometheus.CounterVec
	placedTotal     prometheus.Counter
	unplacedTotal   *prometheus.CounterVec
	conflicts       *prometheus.GaugeVec
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

	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "generation_run_duration_seconds",
		Help:    "Duration of timetable generation runs",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"scope"})

	runTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_runs_total",
		Help: "Total number of timetable generation runs",
	}, []string{"scope"})

	placedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessions_placed_total",
		Help: "Total session units placed on a timetable",
	})

	unplacedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sessions_unplaced_total",
		Help: "Total session units skipped, by reason",
	}, []string{"reason"})

	conflicts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "timetable_conflicts",
		Help: "Conflicts found by the most recent validation run, by type",
	}, []string{"type"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, runDuration, runTotal, placedTotal, unplacedTotal, conflicts, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		runDuration:     runDuration,
		runTotal:        runTotal,
		placedTotal:     placedTotal,
		unplacedTotal:   unplacedTotal,
		conflicts:       conflicts,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveRun records one finished generation run.
func (m *MetricsService) ObserveRun(scope string, duration time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(scope).Observe(duration.Seconds())
	m.runTotal.WithLabelValues(scope).Inc()
}

// RecordPlacement counts one placed session unit.
func (m *MetricsService) RecordPlacement() {
	if m == nil {
		return
	}
	m.placedTotal.Inc()
}

// RecordUnplaced counts one skipped session unit.
func (m *MetricsService) RecordUnplaced(reason string) {
	if m == nil {
		return
	}
	m.unplacedTotal.WithLabelValues(reason).Inc()
}

// SetConflicts publishes the conflict counts of the latest validation run.
func (m *MetricsService) SetConflicts(byType map[models.ConflictType]int) {
	if m == nil {
		return
	}
	for _, t := range []models.ConflictType{models.ConflictRoom, models.ConflictTeacher, models.ConflictClass, models.ConflictCapacity} {
		m.conflicts.WithLabelValues(string(t)).Set(float64(byType[t]))
	}
}
