package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiter limits requests per client IP. Counters live in Redis when a
// client is given, so every replica shares them; otherwise in process memory.
func RateLimiter(perMinute int64, rdb *redis.Client) (gin.HandlerFunc, error) {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  perMinute,
	}

	var store limiter.Store = memory.NewStore()
	if rdb != nil {
		s, err := redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{
			Prefix: "workshops_rate_limit",
		})
		if err != nil {
			return nil, fmt.Errorf("middleware.RateLimiter: %w", err)
		}
		store = s
	}

	return ginlimiter.NewMiddleware(limiter.New(store, rate)), nil
}
