// Package metrics предоставляет Prometheus метрики сервиса переходов.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "redirect"

// Recorder собирает метрики HTTP запросов, исходов переходов и уведомлений трекера.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	outcomes            *prometheus.CounterVec
	trackerResults      *prometheus.CounterVec
}

// NewRecorder создает Recorder с собственным реестром.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, .75, 1, 2.5},
		}, []string{"method"}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Redirect handler outcomes.",
		}, []string{"outcome"}),
		trackerResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracker_notifications_total",
			Help:      "Tracker notification results.",
		}, []string{"result"}),
	}
}

// ObserveRequest учитывает обработанный HTTP запрос.
func (r *Recorder) ObserveRequest(method string, code int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	r.httpRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveOutcome учитывает исход обработки перехода.
func (r *Recorder) ObserveOutcome(outcome string) {
	r.outcomes.WithLabelValues(outcome).Inc()
}

// ObserveTracker учитывает результат уведомления трекера.
func (r *Recorder) ObserveTracker(result string) {
	r.trackerResults.WithLabelValues(result).Inc()
}

// Registry возвращает реестр метрик.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler отдаёт метрики в формате Prometheus.
// Сжатие выполняет GzipMiddleware роутера, поэтому собственное сжатие promhttp отключено.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{DisableCompression: true})
}
