package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tailor-backend/internal/cache"
	"tailor-backend/internal/middleware"
	"tailor-backend/internal/services"
)

type DashboardHandler struct {
	Service *services.DashboardService
	TTL     time.Duration
}

func NewDashboardHandler(s *services.DashboardService, ttl time.Duration) *DashboardHandler {
	return &DashboardHandler{Service: s, TTL: ttl}
}

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	h.cached(w, r, cache.DashboardKey(uid), func(ctx context.Context) (any, error) {
		return h.Service.GetDashboard(ctx, uid)
	})
}

func (h *DashboardHandler) GetBalances(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	h.cached(w, r, cache.BalancesKey(uid), func(ctx context.Context) (any, error) {
		return h.Service.GetBalances(ctx, uid)
	})
}

// cached serves key from Redis when present, otherwise computes, stores and
// serves a fresh copy. Mutations clear the keys through the services.
func (h *DashboardHandler) cached(w http.ResponseWriter, r *http.Request, key string, build func(context.Context) (any, error)) {
	ctx := r.Context()

	// Try cache first
	if data, ok := cache.GetCached(ctx, key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(middleware.CacheHeader, "HIT")
		w.Write(data)
		return
	}

	// Cache miss - generate fresh data
	v, err := build(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cache.SetCached(ctx, key, data, h.TTL)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(middleware.CacheHeader, "MISS")
	w.Write(data)
}
