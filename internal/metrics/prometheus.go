// Package metrics exposes Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/makarovada/legal-time/internal/application"
)

const namespace = "legaltime"

// Recorder owns the collectors registered on one registry.
type Recorder struct {
	registry *prometheus.Registry

	timeEntryOps   *prometheus.CounterVec
	calendarSyncs  *prometheus.CounterVec
	recalcExamined prometheus.Counter
	recalcUpdated  prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

var _ application.Metrics = (*Recorder)(nil)

// NewRecorder registers every collector on a fresh registry together with
// the Go runtime and process collectors.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		timeEntryOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "time_entry_operations_total",
				Help:      "Time entry lifecycle operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		calendarSyncs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calendar_sync_total",
				Help:      "Calendar sync attempts by outcome",
			},
			[]string{"operation", "outcome"},
		),
		recalcExamined: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_recalculation_examined_total",
			Help:      "Time entries examined by rate recalculation",
		}),
		recalcUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_recalculation_updated_total",
			Help:      "Time entries whose rate changed during recalculation",
		}),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (r *Recorder) ObserveTimeEntryOperation(operation, outcome string) {
	r.timeEntryOps.WithLabelValues(operation, outcome).Inc()
}

func (r *Recorder) ObserveCalendarSync(operation, outcome string) {
	r.calendarSyncs.WithLabelValues(operation, outcome).Inc()
}

func (r *Recorder) ObserveRateRecalculation(examined, updated int) {
	r.recalcExamined.Add(float64(examined))
	r.recalcUpdated.Add(float64(updated))
}

// ObserveHTTPRequest records one served request. Route is the matched
// template, never the raw path.
func (r *Recorder) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the registry for tests and embedding.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}
