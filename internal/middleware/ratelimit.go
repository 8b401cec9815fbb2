package middleware

import (
	"fmt"
	"net/http"

	"github.com/nexusquery/auth-gateway/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// DefaultRateLimit applies when no rate is configured.
const DefaultRateLimit = "20-M"

const rateLimitKeyPrefix = "auth_gateway_limiter"

// RateLimit returns middleware that uses ulule/limiter with Redis, keyed by request.ClientIP.
func RateLimit(redisClient *redis.Client, formatted string) (func(http.Handler) http.Handler, error) {
	if formatted == "" {
		formatted = DefaultRateLimit
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", formatted, err)
	}
	store, err := redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{
		Prefix: rateLimitKeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit store: %w", err)
	}
	return rateLimitWithStore(store, rate), nil
}

func rateLimitWithStore(store limiter.Store, rate limiter.Rate) func(http.Handler) http.Handler {
	instance := limiter.New(store, rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
	return mw.Handler
}

// Passthrough is the middleware used when a feature is disabled.
func Passthrough(next http.Handler) http.Handler { return next }
