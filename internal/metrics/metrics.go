// Package metrics собирает метрики Prometheus сервиса и циклов сборки карточек задач.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics держит собственный реестр, а не глобальный prometheus.DefaultRegisterer.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	cyclesStarted  prometheus.Counter
	cyclesFinished *prometheus.CounterVec
	joinFailures   prometheus.Counter
	cycleDuration  prometheus.Histogram
	httpRequests   *prometheus.CounterVec
}

// New регистрирует все метрики в новом реестре.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		cyclesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "issuetracker_join_cycles_started_total",
			Help: "Number of issue detail join cycles started.",
		}),
		cyclesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "issuetracker_join_cycles_finished_total",
			Help: "Number of join cycles finished, by outcome.",
		}, []string{"outcome"}),
		joinFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "issuetracker_join_failures_total",
			Help: "Number of individual fetches that failed inside a join cycle.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "issuetracker_join_cycle_duration_seconds",
			Help:    "Time from begin to join of a cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "issuetracker_http_requests_total",
			Help: "HTTP requests served, by method and status.",
		}, []string{"method", "status"}),
	}
	registry.MustRegister(
		m.cyclesStarted,
		m.cyclesFinished,
		m.joinFailures,
		m.cycleDuration,
		m.httpRequests,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler отдаёт метрики в текстовом формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Registry нужен тестам и для регистрации дополнительных коллекторов.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CycleStarted реализует join.Observer.
func (m *Metrics) CycleStarted(int) {
	m.cyclesStarted.Inc()
}

// CycleFinished реализует join.Observer.
func (m *Metrics) CycleFinished(elapsed time.Duration, expired bool) {
	outcome := "joined"
	if expired {
		outcome = "expired"
	}
	m.cyclesFinished.WithLabelValues(outcome).Inc()
	m.cycleDuration.Observe(elapsed.Seconds())
}

// OperationFailed реализует join.Observer.
func (m *Metrics) OperationFailed() {
	m.joinFailures.Inc()
}

// ObserveRequest учитывает обработанный HTTP-запрос.
func (m *Metrics) ObserveRequest(method string, status int) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
