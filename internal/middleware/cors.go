package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"tailor-backend/internal/config"
)

// CacheHeader reports whether a summary response came from Redis.
const CacheHeader = "X-Cache"

// NewCORS allows the configured browser origins. Sessions travel as bearer
// tokens, never cookies, so credentials are not allowed.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CorsAllowedOrigins,
		AllowedMethods: cfg.Server.CorsAllowedMethods,
		AllowedHeaders: cfg.Server.CorsAllowedHeaders,
		ExposedHeaders: []string{RequestIDHeader, CacheHeader},
		MaxAge:         300,
	})
	return c.Handler
}
