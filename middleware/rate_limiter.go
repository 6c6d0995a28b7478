package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is an injectable fixed-window limiter keyed by route and
// client IP. State lives in redis, so multiple server instances share
// one view of the window. Redis being down fails open: the request
// proceeds unthrottled.
type RateLimiter struct {
	Client *redis.Client
	Limit  int
	Window time.Duration
	Prefix string
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		Client: client,
		Limit:  limit,
		Window: window,
		Prefix: "ratelimit",
	}
}

func (rl *RateLimiter) key(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return rl.Prefix + ":" + route + ":" + c.ClientIP()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.Client == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := rl.key(c)

		count, err := rl.Client.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rl.Client.Expire(ctx, key, rl.Window)
		}

		if count > int64(rl.Limit) {
			c.Header("Retry-After", strconv.Itoa(int(rl.Window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "too many requests, slow down",
			})
			return
		}

		remaining := rl.Limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(rl.Window).Unix(), 10))

		c.Next()
	}
}
