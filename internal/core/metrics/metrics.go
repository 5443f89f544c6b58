package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for credential reuse and provider fan-out.
var (
	TokenCacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credential_cache_hits_total",
			Help: "Total number of provider token lookups served from the credential store",
		},
		[]string{"provider"},
	)

	TokenLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credential_logins_total",
			Help: "Total number of provider login exchanges, by result",
		},
		[]string{"provider", "result"},
	)

	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of provider order requests, by operation and result",
		},
		[]string{"provider", "operation", "result"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Duration of provider order requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	AggregationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_aggregations_total",
			Help: "Total number of merged order feed requests, by outcome (complete, partial, failed)",
		},
		[]string{"outcome"},
	)
)

// Register registers all collectors with the given registerer.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		TokenCacheHitsTotal,
		TokenLoginsTotal,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		AggregationsTotal,
	)
}

// Result converts an error into the label value used by the counters above.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
