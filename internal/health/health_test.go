package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBasic(t *testing.T) {
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("refused") })

	tests := []struct {
		name      string
		db, redis Pinger
		want      string
		redisWant string
	}{
		{"memory store without redis", nil, nil, "healthy", "disabled"},
		{"all up", up, up, "healthy", "healthy"},
		{"redis down", up, down, "degraded", "unhealthy"},
		{"database down", down, up, "unhealthy", "healthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewHealthChecker(tt.db, tt.redis).CheckBasic(context.Background())
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.redisWant, got.Redis.Status)
		})
	}
}
