package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	listCache         *prometheus.CounterVec
	webhookDeliveries *prometheus.CounterVec
	breakerState      *prometheus.GaugeVec
	auditDropped      prometheus.Counter
	schedulerRuns     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		listCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "list_cache_lookups_total",
			Help: "List cache lookups by namespace and result",
		}, []string{"namespace", "result"}),
		webhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Webhook deliveries by topic and outcome",
		}, []string{"topic", "outcome"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "webhook_breaker_state",
			Help: "Circuit breaker state per webhook (0 closed, 1 open, 2 half-open)",
		}, []string{"webhook"}),
		auditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_entries_dropped_total",
			Help: "Audit entries dropped because the worker pool was saturated",
		}),
		schedulerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_job_runs_total",
			Help: "Scheduled job runs by job and outcome",
		}, []string{"job", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.listCache,
		m.webhookDeliveries,
		m.breakerState,
		m.auditDropped,
		m.schedulerRuns,
	)
	return m
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) ListCache(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.listCache.WithLabelValues(namespace, result).Inc()
}

func (m *Metrics) WebhookDelivery(topic, outcome string) {
	m.webhookDeliveries.WithLabelValues(topic, outcome).Inc()
}

func (m *Metrics) BreakerState(webhook string, state int) {
	m.breakerState.WithLabelValues(webhook).Set(float64(state))
}

func (m *Metrics) AuditDropped() {
	m.auditDropped.Inc()
}

func (m *Metrics) SchedulerRun(job string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.schedulerRuns.WithLabelValues(job, outcome).Inc()
}

// Handler serves the registry for /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
