package health

import (
	"context"
	"time"
)

// Pinger is anything whose liveness can be probed, e.g. a pgx pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthChecker struct {
	db    Pinger
	redis Pinger
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Database ComponentHealth `json:"database"`
	Redis    ComponentHealth `json:"redis"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

// NewHealthChecker probes db and, when non-nil, redis. A nil db means the
// in-memory store is in use and is always healthy.
func NewHealthChecker(db, redis Pinger) *HealthChecker {
	return &HealthChecker{db: db, redis: redis}
}

// CheckBasic reports unhealthy only when the database is down. Redis is
// optional and reported as degraded.
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	dbHealth := check(ctx, h.db, "healthy")
	redisHealth := check(ctx, h.redis, "disabled")

	status := "healthy"
	switch {
	case dbHealth.Status != "healthy":
		status = "unhealthy"
	case redisHealth.Status == "unhealthy":
		status = "degraded"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
		Redis:    redisHealth,
	}
}

func check(ctx context.Context, p Pinger, absent string) ComponentHealth {
	if p == nil {
		return ComponentHealth{Status: absent}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{Status: "unhealthy", ResponseTime: responseTime}
	}
	return ComponentHealth{Status: "healthy", ResponseTime: responseTime}
}
