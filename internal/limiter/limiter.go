package limiter

import (
	"fmt"
	"strings"

	"github.com/evyataryagoni/locationserver/internal/logger"
)

// Limiter decides whether a request from a client may proceed.
// Implementations must be safe for concurrent use.
type Limiter interface {
	// Allow reports whether a request identified by key is allowed
	Allow(key string) bool

	// Close releases any resources (Redis connections, etc.)
	Close() error
}

// Config holds configuration for creating a rate limiter
type Config struct {
	Type              string  // "none", "memory" or "redis"
	RequestsPerSecond float64 // can be fractional, e.g. 0.2 = 1 req per 5 sec

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Logger *logger.Logger
}

// New creates a rate limiter based on the configuration
func New(cfg Config) (Limiter, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "none":
		return allowAll{}, nil

	case "memory", "":
		return NewMemoryLimiter(cfg.RequestsPerSecond), nil

	case "redis":
		lim, err := NewRedisLimiter(RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.RequestsPerSecond, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis limiter: %w", err)
		}
		return lim, nil

	default:
		return nil, fmt.Errorf("unknown rate limiter type: %s (supported: 'none', 'memory', 'redis')", cfg.Type)
	}
}

// allowAll is the "none" limiter
type allowAll struct{}

func (allowAll) Allow(string) bool { return true }
func (allowAll) Close() error      { return nil }
