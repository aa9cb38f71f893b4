package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/movie-watchlist/internal/errs"
	"github.com/deppfellow/movie-watchlist/internal/metrics"
	"github.com/deppfellow/movie-watchlist/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// redisLimiterTimeout bounds a single counter round trip.
const redisLimiterTimeout = 250 * time.Millisecond

// RateLimitMiddleware limits requests per client IP.
//
// With a Redis client on the server the budget is shared by every replica
// (RedisRateLimiterStore); without one each process keeps its own budget
// in memory.
type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Store returns the limiter store matching the server configuration.
func (r *RateLimitMiddleware) Store() middleware.RateLimiterStore {
	cfg := r.server.Config.RateLimit

	if r.server.Redis != nil {
		return NewRedisRateLimiterStore(r.server.Redis, r.server.Logger, cfg.Burst, cfg.Window)
	}

	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RequestsPerSecond),
		Burst:     cfg.Burst,
		ExpiresIn: 3 * time.Minute,
	})
}

// Limit returns the Echo rate limiter, or a pass-through when disabled.
//
// Liveness and scrape endpoints are never limited.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	if !r.server.Config.RateLimit.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			switch c.Path() {
			case "/health", "/metrics":
				return true
			}
			return false
		},
		Store: r.Store(),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewBadRequestError("Could not identify client", nil)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			r.server.Logger.Warn().
				Str("identifier", identifier).
				Str("path", c.Path()).
				Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError()
		},
	})
}

// RecordRateLimitHit counts a rejected request in Prometheus and, when
// enabled, as a New Relic custom event.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	metrics.RateLimitHits.WithLabelValues(endpoint).Inc()

	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}

// RedisRateLimiterStore is a fixed-window counter kept in Redis.
//
// Each identifier gets `limit` requests per `window`. Keys carry the window
// start so they expire on their own.
type RedisRateLimiterStore struct {
	client *redis.Client
	logger *zerolog.Logger
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisRateLimiterStore builds a store allowing limit requests per window.
func NewRedisRateLimiterStore(client *redis.Client, logger *zerolog.Logger, limit int, window time.Duration) *RedisRateLimiterStore {
	return &RedisRateLimiterStore{
		client: client,
		logger: logger,
		limit:  limit,
		window: window,
		prefix: "watchlist:ratelimit",
		now:    time.Now,
	}
}

func (s *RedisRateLimiterStore) key(identifier string) string {
	windowStart := s.now().Truncate(s.window).Unix()
	return fmt.Sprintf("%s:%s:%d", s.prefix, identifier, windowStart)
}

// Allow implements middleware.RateLimiterStore.
//
// Redis failures let the request through: a limiter outage must not take
// the API down with it.
func (s *RedisRateLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisLimiterTimeout)
	defer cancel()

	key := s.key(identifier)

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("rate limit counter failed, allowing request")
		return true, err
	}

	return count.Val() <= int64(s.limit), nil
}
