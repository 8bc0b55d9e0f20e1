package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNilClientDegradesGracefully(t *testing.T) {
	client = nil
	ctx := context.Background()

	SetCached(ctx, DashboardKey("u1"), []byte("{}"), time.Minute)
	_, ok := GetCached(ctx, DashboardKey("u1"))
	assert.False(t, ok)

	Invalidator{}.InvalidateUser(ctx, "u1")
	assert.False(t, IsHealthy())
	assert.NoError(t, Close())
}

func TestInit_UnreachableLeavesClientNil(t *testing.T) {
	err := Init(Options{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
	assert.Nil(t, GetClient())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "summary:u1:dashboard", DashboardKey("u1"))
	assert.Equal(t, "summary:u1:balances", BalancesKey("u1"))
}
