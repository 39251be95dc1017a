package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(githubRequestsTotal, githubRequestDuration) }

var (
	githubRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "github_requests_total",
			Help: "Outbound platform API requests by endpoint and HTTP status (0 = transport failure).",
		},
		[]string{"endpoint", "status"},
	)

	githubRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "github_request_duration_seconds",
			Help:    "Latency of outbound platform API requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// ObserveGitHubRequest records one request; endpoint is "user" or "repos".
func ObserveGitHubRequest(endpoint string, status int, d time.Duration) {
	githubRequestsTotal.WithLabelValues(norm(endpoint), strconv.Itoa(status)).Inc()
	githubRequestDuration.WithLabelValues(norm(endpoint)).Observe(d.Seconds())
}
