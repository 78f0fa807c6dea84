package limiter

import (
	"sync"
	"time"
)

// idleBucketTTL is how long a client's bucket may sit unused before cleanup
const idleBucketTTL = 5 * time.Minute

// tokenBucket allows bursts up to capacity while refilling at rate tokens/s
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
}

func newTokenBucket(rate float64, now time.Time) *tokenBucket {
	// Fractional rates (e.g. 0.2) still need room for one request
	capacity := max(rate, 1.0)
	return &tokenBucket{
		tokens:     capacity,
		capacity:   capacity,
		rate:       rate,
		lastRefill: now,
	}
}

func (b *tokenBucket) take(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(b.tokens+elapsed*b.rate, b.capacity)
	b.lastRefill = now

	if b.tokens < 1.0 {
		return false
	}
	b.tokens--
	return true
}

func (b *tokenBucket) idleSince() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastRefill
}

// MemoryLimiter keeps one token bucket per client in process memory.
// Suitable for single-instance deployments.
type MemoryLimiter struct {
	buckets sync.Map // map[string]*tokenBucket
	rate    float64

	cleanupMu   sync.Mutex
	lastCleanup time.Time

	now func() time.Time
}

// NewMemoryLimiter creates a limiter allowing requestsPerSecond per client,
// with bursts of up to one second's worth of requests
func NewMemoryLimiter(requestsPerSecond float64) *MemoryLimiter {
	return &MemoryLimiter{
		rate:        requestsPerSecond,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow implements Limiter
func (l *MemoryLimiter) Allow(key string) bool {
	now := l.now()
	allowed := l.bucket(key, now).take(now)
	l.maybeCleanup(now)
	return allowed
}

func (l *MemoryLimiter) bucket(key string, now time.Time) *tokenBucket {
	if b, ok := l.buckets.Load(key); ok {
		return b.(*tokenBucket)
	}
	actual, _ := l.buckets.LoadOrStore(key, newTokenBucket(l.rate, now))
	return actual.(*tokenBucket)
}

// maybeCleanup drops buckets idle for longer than idleBucketTTL,
// at most once per idleBucketTTL
func (l *MemoryLimiter) maybeCleanup(now time.Time) {
	l.cleanupMu.Lock()
	defer l.cleanupMu.Unlock()

	if now.Sub(l.lastCleanup) < idleBucketTTL {
		return
	}

	threshold := now.Add(-idleBucketTTL)
	l.buckets.Range(func(key, value any) bool {
		if value.(*tokenBucket).idleSince().Before(threshold) {
			l.buckets.Delete(key)
		}
		return true
	})

	l.lastCleanup = now
}

// Len returns the number of tracked clients
func (l *MemoryLimiter) Len() int {
	n := 0
	l.buckets.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close implements Limiter; there is nothing to release
func (l *MemoryLimiter) Close() error {
	return nil
}
