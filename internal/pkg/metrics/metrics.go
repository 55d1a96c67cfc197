package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// --- Outbound (client) metrics ---
	HTTPClientRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keepalive_http_client_requests_total",
			Help: "Total number of outbound HTTP requests to panels.",
		},
		[]string{"method", "code"},
	)
	HTTPClientRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keepalive_http_client_request_duration_seconds",
			Help:    "Latency of outbound HTTP requests to panels.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "code"},
	)

	// --- Run metrics ---
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keepalive_login_attempts_total",
			Help: "Total number of login attempts, by classified state.",
		},
		[]string{"state"},
	)
	AccountsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keepalive_accounts_total",
			Help: "Accounts processed per run, by terminal state.",
		},
		[]string{"state"},
	)
	RunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "keepalive_run_duration_seconds",
			Help: "Wall-clock duration of the last completed run.",
		},
	)
	CallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keepalive_callbacks_total",
			Help: "Ban callbacks executed, by result.",
		},
		[]string{"result"},
	)
)

func MetricsRegister() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		HTTPClientRequestsTotal,
		HTTPClientRequestDuration,
		LoginAttemptsTotal,
		AccountsTotal,
		RunDuration,
		CallbacksTotal,
	)

	return reg
}

// WriteTextfile dumps the registry in the node_exporter textfile-collector
// format. The tool runs from cron and exposes no listener, so metrics are
// handed to the collector through the filesystem instead.
func WriteTextfile(path string, reg *prometheus.Registry) error {
	return prometheus.WriteToTextfile(path, reg)
}
