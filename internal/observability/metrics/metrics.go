package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joslasync_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "joslasync_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	provisionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "joslasync_company_provision_duration_seconds",
		Help:    "Duration of company provisioning attempts",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	engineCacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joslasync_tenant_engine_cache_total",
		Help: "Tenant engine cache operations by outcome (hit, miss, evict)",
	}, []string{"outcome"})

	activeEngines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "joslasync_tenant_engines_active",
		Help: "Number of cached tenant connection pools",
	})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joslasync_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveProvision records the duration of a company provisioning attempt.
func ObserveProvision(result string, duration time.Duration) {
	provisionDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveEngineCache increments the engine cache counter for an outcome.
func ObserveEngineCache(outcome string) {
	engineCacheOps.WithLabelValues(outcome).Inc()
}

// SetActiveEngines sets the cached tenant pool gauge.
func SetActiveEngines(count int) {
	if count < 0 {
		count = 0
	}
	activeEngines.Set(float64(count))
}

// ObserveLogin records a login attempt outcome.
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}
