package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// Metrics holds the prometheus collectors of the service. Each instance has
// its own registry so tests can create as many as they like. All methods are
// safe on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	buildsTotal       *prometheus.CounterVec
	buildDuration     prometheus.Histogram
	buildPeriods      prometheus.Histogram
	excludedAssets    prometheus.Counter
	cellErrors        prometheus.Counter
	cleanupDeleted    prometheus.Counter
	eventsPublished   *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		buildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_builds_total",
			Help: "Total portfolio time-series builds by outcome.",
		}, []string{"outcome"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portfolio_build_duration_seconds",
			Help:    "Histogram of portfolio time-series build durations.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		buildPeriods: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portfolio_build_periods",
			Help:    "Number of calendar periods per successful build.",
			Buckets: []float64{12, 24, 60, 120, 240, 360, 600},
		}),
		excludedAssets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_excluded_assets_total",
			Help: "Assets excluded from builds because their timeline was invalid.",
		}),
		cellErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_cell_errors_total",
			Help: "Asset/period computations that failed and were zeroed.",
		}),
		cleanupDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calculation_cleanup_deleted_total",
			Help: "Stored calculations removed by the retention job.",
		}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calculation_events_published_total",
			Help: "Calculation events published, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.buildsTotal,
		m.buildDuration,
		m.buildPeriods,
		m.excludedAssets,
		m.cellErrors,
		m.cleanupDeleted,
		m.eventsPublished,
	)

	return m
}

// Registry exposes the registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Middleware records request counts and durations. route returns the label
// for a finished request; chi's route pattern keeps cardinality bounded.
func (m *Metrics) Middleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(recorder, r)

			if m == nil {
				return
			}
			label := route(r)
			m.httpRequestsTotal.WithLabelValues(label, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		})
	}
}

// ObserveBuild records one build. A nil ts means the build failed.
func (m *Metrics) ObserveBuild(d time.Duration, ts *model.TimeSeries, err error) {
	if m == nil {
		return
	}
	m.buildDuration.Observe(d.Seconds())
	if err != nil || ts == nil {
		m.buildsTotal.WithLabelValues("error").Inc()
		return
	}
	m.buildsTotal.WithLabelValues("success").Inc()
	m.buildPeriods.Observe(float64(len(ts.Periods)))
	m.excludedAssets.Add(float64(ts.Diagnostics.ExcludedAssets))
	m.cellErrors.Add(float64(len(ts.Diagnostics.CellErrors)))
}

// ObserveCleanup records calculations deleted by the retention job.
func (m *Metrics) ObserveCleanup(deleted int64) {
	if m == nil {
		return
	}
	m.cleanupDeleted.Add(float64(deleted))
}

// ObservePublish records the outcome of publishing a calculation event.
func (m *Metrics) ObservePublish(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(result).Inc()
}
