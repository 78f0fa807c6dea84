package limiter

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/evyataryagoni/locationserver/internal/logger"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces limiter counters in a shared Redis
const keyPrefix = "locationserver:ratelimit"

// redisCallTimeout bounds each limiter round trip
const redisCallTimeout = 200 * time.Millisecond

// fixedWindow increments the counter for the current window and sets its
// expiry on first use. KEYS[1] = counter, ARGV[1] = TTL seconds.
var fixedWindow = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('EXPIRE', KEYS[1], tonumber(ARGV[1]))
end
return current
`)

// RedisOptions holds connection settings for the Redis limiter
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisLimiter is a fixed-window limiter shared by every instance that points
// at the same Redis. Counter keys: locationserver:ratelimit:{client}:{window}.
type RedisLimiter struct {
	client *redis.Client
	log    *logger.Logger

	window time.Duration
	limit  int64

	now func() time.Time
}

// NewRedisLimiter connects to Redis and returns a limiter allowing
// requestsPerSecond per client
func NewRedisLimiter(opts RedisOptions, requestsPerSecond float64, log *logger.Logger) (*RedisLimiter, error) {
	if requestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests per second must be positive, got %f", requestsPerSecond)
	}
	if log == nil {
		log = logger.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	// Fractional rates get a longer window, e.g. 0.2 req/s -> 5s window
	window := time.Second
	if requestsPerSecond < 1.0 {
		window = time.Duration(float64(time.Second) / requestsPerSecond)
	}

	return &RedisLimiter{
		client: client,
		log:    log.WithComponent("RedisLimiter"),
		window: window,
		limit:  int64(math.Ceil(requestsPerSecond * window.Seconds())),
		now:    time.Now,
	}, nil
}

// Allow implements Limiter. Redis errors fail open.
func (l *RedisLimiter) Allow(key string) bool {
	windowSeconds := int64(l.window.Seconds())
	bucket := l.now().Unix() / windowSeconds
	redisKey := fmt.Sprintf("%s:%s:%d", keyPrefix, key, bucket)

	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()

	count, err := fixedWindow.Run(ctx, l.client, []string{redisKey}, windowSeconds*2).Int64()
	if err != nil {
		l.log.Warn().Err(err).Str("client", key).Msg("Rate limiter unavailable, allowing request")
		return true
	}

	return count <= l.limit
}

// Close closes the Redis connection
func (l *RedisLimiter) Close() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}
