package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowRateLimiter allows limit requests per key in each window. A
// key's window starts at its first request.
type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]*window //key: client IP
	limit   int
	window  time.Duration
	now     func() time.Time
}

type window struct {
	start time.Time
	count int
}

func NewFixedWindowLimiter(limit int, w time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  w,
		now:     time.Now,
	}
}

// Allow reports whether key may proceed and, if not, how long until its
// window resets.
func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.sweep(now)
		rl.clients[key] = &window{start: now, count: 1}
		return true, 0
	}

	if w.count < rl.limit {
		w.count++
		return true, 0
	}
	return false, w.start.Add(rl.window).Sub(now)
}

// sweep drops expired windows so the map does not grow with every client
// ever seen. Callers hold the lock.
func (rl *FixedWindowRateLimiter) sweep(now time.Time) {
	for key, w := range rl.clients {
		if now.Sub(w.start) >= rl.window {
			delete(rl.clients, key)
		}
	}
}
