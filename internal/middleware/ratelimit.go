package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Isaias789672/chef-ai-recipes/internal/cache"
	"github.com/Isaias789672/chef-ai-recipes/internal/config"
	apierrors "github.com/Isaias789672/chef-ai-recipes/internal/errors"
	"github.com/Isaias789672/chef-ai-recipes/internal/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateLimiter implements sliding window rate limiting using Redis.
// The AI endpoints sit behind it; the webhook endpoint does not, since the
// payment provider controls its own delivery rate.
type RateLimiter struct {
	redis  *cache.Redis
	config *config.RateLimitConfig
}

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	Limit      int
	RetryAfter time.Duration
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *cache.Redis, cfg *config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redis,
		config: cfg,
	}
}

// Check checks if a request from the given client is allowed
func (r *RateLimiter) Check(ctx context.Context, clientKey string) (*RateLimitResult, error) {
	limit := r.config.RequestsPerWindow
	windowSeconds := r.config.WindowSeconds
	if windowSeconds <= 0 {
		windowSeconds = 60
	}

	now := time.Now()
	windowDuration := time.Duration(windowSeconds) * time.Second
	windowStart := now.Add(-windowDuration)

	key := fmt.Sprintf("ratelimit:sliding:%s", clientKey)

	// Sorted set per client: score = timestamp, member = request ID
	pipe := r.redis.Client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, key)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Error().Err(err).Str("client", clientKey).Msg("Failed to check rate limit")
		// On Redis error, allow the request (fail open)
		return &RateLimitResult{
			Allowed:   true,
			Remaining: int64(limit),
			Limit:     limit,
		}, nil
	}

	count := countCmd.Val()
	if count >= int64(limit) {
		return &RateLimitResult{
			Allowed:    false,
			Remaining:  0,
			Limit:      limit,
			RetryAfter: windowDuration,
		}, nil
	}

	// Record this request
	recordPipe := r.redis.Client.Pipeline()
	recordPipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.New().String(),
	})
	recordPipe.Expire(ctx, key, windowDuration)
	if _, err := recordPipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("client", clientKey).Msg("Failed to record rate limit entry")
	}

	return &RateLimitResult{
		Allowed:   true,
		Remaining: int64(limit) - count - 1,
		Limit:     limit,
	}, nil
}

// Limit is a Gin middleware enforcing the sliding window per client IP
func (r *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := r.Check(c.Request.Context(), c.ClientIP())
		if err != nil || result.Allowed {
			c.Next()
			return
		}

		monitoring.Get().RateLimitHits.Inc()
		c.Header("Retry-After", fmt.Sprintf("%d", int(result.RetryAfter.Seconds())))
		requestID := c.GetString("request_id")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, apierrors.ErrorResponse{
			Error:     *apierrors.ErrRateLimitedError,
			RequestID: requestID,
		})
	}
}
