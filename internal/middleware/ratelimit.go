// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter provides per-IP rate limiting backed by Valkey using a
// fixed window counter. Generation endpoints invoke paid AI providers,
// so limits apply per authenticated admin host rather than globally.
type RateLimiter struct {
	client *redis.Client
	limit  int           // max requests per window
	window time.Duration // fixed window duration
	prefix string        // key namespace, e.g. "ratelimit:generate"
}

// NewRateLimiter creates a rate limiter that allows limit requests per
// window, counting in Valkey so the limit survives restarts and is
// shared across replicas.
func NewRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

// allow increments the counter for the given key's current window and
// reports whether the request is within the limit. Fails open on
// Valkey errors so limiter outages never block the admin panel.
func (rl *RateLimiter) allow(r *http.Request, key string) bool {
	ctx := r.Context()
	window := time.Now().Unix() / int64(rl.window.Seconds())
	redisKey := fmt.Sprintf("%s:%s:%d", rl.prefix, key, window)

	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		slog.Warn("rate limiter unavailable", "error", err)
		return true
	}

	if count == 1 {
		rl.client.Expire(ctx, redisKey, rl.window)
	}

	return count <= int64(rl.limit)
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(r, ip) {
			jsonError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	// Check X-Forwarded-For first (may contain multiple IPs).
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first (leftmost) IP, the original client.
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP.
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port).
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
