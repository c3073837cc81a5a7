// Package ratelimit implements a fixed-window request limiter backed by redis.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type Limiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	prefix string
	log    zerolog.Logger
}

func New(rdb redis.Cmdable, limit int, window time.Duration, prefix string, log zerolog.Logger) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window, prefix: prefix, log: log}
}

// Allow counts one hit for key in the current window. The counter and its
// TTL are read in one transaction and a counter found without a TTL gets the
// window re-applied, so a lost EXPIRE cannot block a client for good.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	k := fmt.Sprintf("ratelimit:%s:%s", l.prefix, key)

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)

	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		ttl = pipe.TTL(ctx, k)

		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("incrementing %s: %w", k, err)
	}

	count, remaining := incr.Val(), ttl.Val()

	// TTL reports -1 for a key without expiry.
	if remaining < 0 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return Result{}, fmt.Errorf("expiring %s: %w", k, err)
		}

		remaining = l.window
	}

	if count <= int64(l.limit) {
		return Result{Allowed: true, Remaining: l.limit - int(count)}, nil
	}

	return Result{Allowed: false, RetryAfter: remaining}, nil
}

// Middleware rejects clients over the limit with 429. Redis failures let
// the request through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := l.Allow(r.Context(), clientIP(r))
		if err != nil {
			l.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)

			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))

		if !res.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many requests, please try again later"}`))

			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
