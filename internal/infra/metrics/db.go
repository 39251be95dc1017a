package metrics

import (
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

var dbPoolDesc = prometheus.NewDesc(
	"db_pool_stats",
	"Current state of the database connection pool.",
	[]string{"state"}, // 'total', 'idle', 'in_use'
	nil,
)

// PoolStater is satisfied by *pgxpool.Pool.
type PoolStater interface {
	Stat() *pgxpool.Stat
}

// dbPoolCollector reads the pool state at scrape time.
type dbPoolCollector struct {
	pool PoolStater
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) { ch <- dbPoolDesc }

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(dbPoolDesc, prometheus.GaugeValue, float64(s.TotalConns()), "total")
	ch <- prometheus.MustNewConstMetric(dbPoolDesc, prometheus.GaugeValue, float64(s.IdleConns()), "idle")
	ch <- prometheus.MustNewConstMetric(dbPoolDesc, prometheus.GaugeValue, float64(s.AcquiredConns()), "in_use")
}

// NewDBPoolCollector returns a collector for pool; register it with
// prometheus.MustRegister or a test registry.
func NewDBPoolCollector(pool PoolStater) prometheus.Collector {
	return &dbPoolCollector{pool: pool}
}
