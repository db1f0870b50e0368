package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/tasklist-api/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tasklist"

// Metrics holds the application's collectors.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	sessionsActive    prometheus.Gauge
	messagesDelivered *prometheus.CounterVec
	messagesDropped   *prometheus.CounterVec

	taskEvents *prometheus.CounterVec
}

// New creates and registers all collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "sessions_active",
			Help:      "Connected websocket sessions",
		}),

		messagesDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "messages_delivered_total",
			Help:      "Frames queued for delivery to a session, by event",
		}, []string{"event"}),

		messagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "messages_dropped_total",
			Help:      "Frames dropped because a session queue was full, by event",
		}, []string{"event"}),

		taskEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tasks",
			Name:      "events_total",
			Help:      "Task events emitted, by event name",
		}, []string{"event"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.sessionsActive,
		m.messagesDelivered,
		m.messagesDropped,
		m.taskEvents,
	)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency. Routes are labelled by
// their chi pattern so path parameters do not explode cardinality. A panic
// is counted as a 500 and then re-raised for the recoverer.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			if rec := recover(); rec != nil {
				m.observeRequest(r, http.StatusInternalServerError, start)
				panic(rec)
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.observeRequest(r, status, start)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (m *Metrics) observeRequest(r *http.Request, status int, start time.Time) {
	route := "unmatched"
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			route = pattern
		}
	}

	m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
}

// SessionOpened implements realtime.Observer.
func (m *Metrics) SessionOpened() {
	m.sessionsActive.Inc()
}

// SessionClosed implements realtime.Observer.
func (m *Metrics) SessionClosed() {
	m.sessionsActive.Dec()
}

// MessageDelivered implements realtime.Observer.
func (m *Metrics) MessageDelivered(event string) {
	m.messagesDelivered.WithLabelValues(event).Inc()
}

// MessageDropped implements realtime.Observer.
func (m *Metrics) MessageDropped(event string) {
	m.messagesDropped.WithLabelValues(event).Inc()
}

// HandleEvent implements events.EventHandler by counting task events.
func (m *Metrics) HandleEvent(_ context.Context, event *events.TaskEvent) error {
	m.taskEvents.WithLabelValues(event.Name).Inc()
	return nil
}

var _ events.EventHandler = (*Metrics)(nil)
