package internal

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors. Every method is safe to call
// on a nil *Metrics, which records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	commands       *prometheus.CounterVec
	commandLatency *prometheus.HistogramVec
	clients        prometheus.Gauge
	protocolErrors prometheus.Counter
	rateLimited    prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memkv",
			Name:      "commands_total",
			Help:      "Commands processed, by command name and status.",
		}, []string{"command", "status"}),
		commandLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "memkv",
			Name:      "command_duration_seconds",
			Help:      "Time spent executing a command while holding the store lock.",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10),
		}, []string{"command"}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "memkv",
			Name:      "connected_clients",
			Help:      "Number of open client connections.",
		}),
		protocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memkv",
			Name:      "protocol_errors_total",
			Help:      "Connections closed because of malformed input.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memkv",
			Name:      "rate_limited_total",
			Help:      "Commands rejected by the per-connection rate limit.",
		}),
	}
	m.registry.MustRegister(
		m.commands,
		m.commandLatency,
		m.clients,
		m.protocolErrors,
		m.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) observeCommand(command string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.commands.WithLabelValues(command, status).Inc()
	if command != "unknown" {
		m.commandLatency.WithLabelValues(command).Observe(d.Seconds())
	}
}

func (m *Metrics) clientConnected() {
	if m == nil {
		return
	}
	m.clients.Inc()
}

func (m *Metrics) clientDisconnected() {
	if m == nil {
		return
	}
	m.clients.Dec()
}

func (m *Metrics) protocolError() {
	if m == nil {
		return
	}
	m.protocolErrors.Inc()
}

func (m *Metrics) rateLimit() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// Handler serves the metrics in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NewMetricsServer returns an HTTP server exposing m on /metrics
func NewMetricsServer(addr string, m *Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
