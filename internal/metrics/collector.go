package metrics

import (
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PoolCollector samples pgxpool statistics into the pool gauges on an interval.
type PoolCollector struct {
	pool     *pgxpool.Pool
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewPoolCollector(pool *pgxpool.Pool, interval time.Duration) *PoolCollector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &PoolCollector{
		pool:     pool,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start samples once immediately and then on every tick until Stop.
func (c *PoolCollector) Start() {
	zap.L().Info("starting pool collector", zap.String("component", "metrics"), zap.Duration("interval", c.interval))
	c.collect()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopChan:
				return
			}
		}
	}()
}

func (c *PoolCollector) Stop() {
	c.once.Do(func() { close(c.stopChan) })
	c.wg.Wait()
}

func (c *PoolCollector) collect() {
	if c.pool == nil {
		return
	}
	stat := c.pool.Stat()
	PoolAcquiredConnections.Set(float64(stat.AcquiredConns()))
	PoolIdleConnections.Set(float64(stat.IdleConns()))
	PoolTotalConnections.Set(float64(stat.TotalConns()))
	PoolMaxConnections.Set(float64(stat.MaxConns()))
}
