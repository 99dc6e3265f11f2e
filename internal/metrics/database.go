package metrics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DBPool gauges mirror pgxpool.Stat; the state label is one of
// total, acquired, idle, max.
var DBPool = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "db_pool_connections",
		Help:      "Database pool connections by state",
	},
	[]string{"state"},
)

var DBPoolAcquireWait = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "db_pool_acquire_wait_seconds",
		Help:      "Cumulative time spent waiting to acquire a pooled connection",
	},
)

type poolStats interface {
	Stat() *pgxpool.Stat
}

// DBCollector samples pool statistics on an interval.
type DBCollector struct {
	pool     poolStats
	interval time.Duration
}

func NewDBCollector(pool *pgxpool.Pool, interval time.Duration) *DBCollector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	c := &DBCollector{interval: interval}
	if pool != nil {
		c.pool = pool
	}
	return c
}

// Run samples until ctx is cancelled and always returns nil, so it can be
// started inside an errgroup next to the HTTP server.
func (c *DBCollector) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()
	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *DBCollector) collect() {
	if c.pool == nil {
		return
	}
	stat := c.pool.Stat()
	DBPool.WithLabelValues("total").Set(float64(stat.TotalConns()))
	DBPool.WithLabelValues("acquired").Set(float64(stat.AcquiredConns()))
	DBPool.WithLabelValues("idle").Set(float64(stat.IdleConns()))
	DBPool.WithLabelValues("max").Set(float64(stat.MaxConns()))
	DBPoolAcquireWait.Set(stat.AcquireDuration().Seconds())
}
