// FILE: logseer/src/internal/api/ratelimit.go
package api

import (
	"sync"
	"time"

	"logseer/src/internal/config"

	"golang.org/x/time/rate"
)

// Prevent unbounded map growth
const maxTrackedClients = 10000

// RateLimiter enforces a per-client request rate on the query API
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientState
	rps      rate.Limit
	burst    int
	maxIdle  time.Duration
	stopOnce sync.Once
	stop     chan struct{}
}

type clientState struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a per-IP limiter. Returns nil when no limit is
// configured; callers treat nil as unlimited.
func NewRateLimiter(cfg *config.APIRateLimitConfig) *RateLimiter {
	if cfg == nil || cfg.RequestsPerSecond <= 0 {
		return nil
	}

	rl := &RateLimiter{
		clients: make(map[string]*clientState),
		rps:     rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.BurstSize,
		maxIdle: 10 * time.Minute,
		stop:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether a request from the given client IP may proceed
func (rl *RateLimiter) Allow(ip string) bool {
	if rl == nil {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	state, exists := rl.clients[ip]
	if !exists {
		if len(rl.clients) >= maxTrackedClients {
			rl.evictOldest()
		}
		state = &clientState{
			limiter: rate.NewLimiter(rl.rps, rl.burst),
		}
		rl.clients[ip] = state
	}
	state.lastSeen = time.Now()
	return state.limiter.Allow()
}

// Stop ends the background cleanup goroutine
func (rl *RateLimiter) Stop() {
	if rl == nil {
		return
	}
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// evictOldest removes the stalest entry. Caller holds rl.mu.
func (rl *RateLimiter) evictOldest() {
	var oldestIP string
	oldest := time.Now()
	sampled := 0
	for ip, state := range rl.clients {
		if state.lastSeen.Before(oldest) {
			oldestIP = ip
			oldest = state.lastSeen
		}
		sampled++
		if sampled >= 20 {
			break
		}
	}
	if oldestIP != "" {
		delete(rl.clients, oldestIP)
	}
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.maxIdle)
			rl.mu.Lock()
			for ip, state := range rl.clients {
				if state.lastSeen.Before(cutoff) {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}
