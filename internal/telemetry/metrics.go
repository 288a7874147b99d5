package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the Prometheus collectors this proxy exports.
type Metrics struct {
	SessionsTotal    prometheus.Counter
	SessionsActive   prometheus.Gauge
	RequestsTotal    *prometheus.CounterVec
	FaultsTotal      *prometheus.CounterVec
	ForwardLatency   prometheus.Histogram
	ControlPlaneReqs *prometheus.CounterVec
}

// NewMetrics registers and returns the proxy's metric collectors against
// the default Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "redis_fault_proxy_sessions_total",
			Help: "Total client sessions accepted.",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "redis_fault_proxy_sessions_active",
			Help: "Currently open client sessions.",
		}),
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "redis_fault_proxy_requests_total",
			Help: "Client requests observed by command.",
		}, []string{"command"}),
		FaultsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "redis_fault_proxy_faults_total",
			Help: "Faults applied by type.",
		}, []string{"fault_type"}),
		ForwardLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "redis_fault_proxy_forward_latency_seconds",
			Help:    "Time from receiving a client frame to forwarding it upstream.",
			Buckets: prometheus.DefBuckets,
		}),
		ControlPlaneReqs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "redis_fault_proxy_control_plane_requests_total",
			Help: "Control-plane HTTP requests by path and status.",
		}, []string{"path", "status"}),
	}
}
