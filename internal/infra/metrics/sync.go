package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(syncRunsTotal, syncDuration, syncRepositoriesTotal, syncLockWaitsTotal) }

var (
	syncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Sync runs by outcome kind (ok, not_found, unavailable, conflict, error ...).",
		},
		[]string{"result"},
	)

	syncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Wall time of one sync run, fetch and write included.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"result"},
	)

	syncRepositoriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_repositories_total",
			Help: "Repositories written by successful sync runs.",
		},
	)

	syncLockWaitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_lock_acquire_total",
			Help: "Per-user sync lock acquisitions by result (acquired, busy, error).",
		},
		[]string{"result"},
	)
)

func ObserveSync(result string, d time.Duration, repos int) {
	syncRunsTotal.WithLabelValues(norm(result)).Inc()
	syncDuration.WithLabelValues(norm(result)).Observe(d.Seconds())
	if repos > 0 {
		syncRepositoriesTotal.Add(float64(repos))
	}
}

func IncSyncLock(result string) {
	syncLockWaitsTotal.WithLabelValues(norm(result)).Inc()
}
