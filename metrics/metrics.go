// Package metrics exposes Prometheus metrics for the seeder.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ruteri/sequencer-seeder/common"
)

var (
	// RPCRequestsTotal counts handled JSON-RPC calls
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.PackageName,
			Name:      "rpc_requests_total",
			Help:      "Total number of JSON-RPC requests handled",
		},
		[]string{"surface", "method", "status"}, // status: ok or the error code
	)

	// RPCDuration measures handler latency
	RPCDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: common.PackageName,
			Name:      "rpc_duration_seconds",
			Help:      "JSON-RPC handler latency in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 3, 5},
		},
		[]string{"surface", "method"},
	)

	// RegistrationsTotal counts registration protocol outcomes per node kind
	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.PackageName,
			Name:      "registrations_total",
			Help:      "Register and deregister outcomes per node kind",
		},
		[]string{"kind", "operation", "result"},
	)

	// HealthChecksTotal counts endpoint probes
	HealthChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.PackageName,
			Name:      "health_checks_total",
			Help:      "Endpoint health probes by result",
		},
		[]string{"result"},
	)

	// SequencingInfos tracks configured backends
	SequencingInfos = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: common.PackageName,
			Name:      "sequencing_infos",
			Help:      "Number of configured sequencing backends",
		},
	)
)

var seederCollectors = []prometheus.Collector{
	RPCRequestsTotal,
	RPCDuration,
	RegistrationsTotal,
	HealthChecksTotal,
	SequencingInfos,
}

// ObserveRPC records one handled call.
func ObserveRPC(surface, method, status string, started time.Time) {
	RPCRequestsTotal.WithLabelValues(surface, method, status).Inc()
	RPCDuration.WithLabelValues(surface, method).Observe(time.Since(started).Seconds())
}

// ObserveRegistration records one register or deregister outcome.
func ObserveRegistration(kind, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	RegistrationsTotal.WithLabelValues(kind, operation, result).Inc()
}

// ObserveHealthCheck records one endpoint probe.
func ObserveHealthCheck(err error) {
	result := "healthy"
	if err != nil {
		result = "unhealthy"
	}
	HealthChecksTotal.WithLabelValues(result).Inc()
}
