package server

import (
	"sync"
	"time"
)

// rateLimiter is a token bucket protecting the broker from message floods.
type rateLimiter struct {
	mu        sync.Mutex
	tokens    float64
	capacity  float64
	rate      float64
	lastCheck time.Time
}

func newRateLimiter(capacity int, interval time.Duration) *rateLimiter {
	if capacity <= 0 {
		capacity = 1
	}
	if interval <= 0 {
		interval = time.Second
	}

	rate := float64(capacity) / interval.Seconds()
	if rate <= 0 {
		rate = float64(capacity)
	}

	return &rateLimiter{
		tokens:    float64(capacity),
		capacity:  float64(capacity),
		rate:      rate,
		lastCheck: time.Now(),
	}
}

func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastCheck).Seconds()
	rl.lastCheck = now

	if elapsed > 0 {
		rl.tokens += elapsed * rl.rate
		if rl.tokens > rl.capacity {
			rl.tokens = rl.capacity
		}
	}

	if rl.tokens < 1 {
		return false
	}

	rl.tokens--
	return true
}

// senderLimiters keys token buckets by sender username, created lazily on
// first message.
type senderLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rateLimiter
	burst    int
	interval time.Duration
}

func newSenderLimiters(burst int, interval time.Duration) *senderLimiters {
	return &senderLimiters{
		limiters: make(map[string]*rateLimiter),
		burst:    burst,
		interval: interval,
	}
}

func (sl *senderLimiters) allow(sender string) bool {
	sl.mu.Lock()
	limiter, ok := sl.limiters[sender]
	if !ok {
		limiter = newRateLimiter(sl.burst, sl.interval)
		sl.limiters[sender] = limiter
	}
	sl.mu.Unlock()

	return limiter.allow()
}
