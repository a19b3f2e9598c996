package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindowRateLimiter(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	rl := NewFixedWindowLimiter(2, 5*time.Second)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)

	ok, retry := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 5*time.Second, retry)

	// other clients have their own window
	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	ok, retry = rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 3*time.Second, retry)

	now = now.Add(3 * time.Second)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)
}

func TestFixedWindowRateLimiter_SweepsExpired(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	rl := NewFixedWindowLimiter(1, time.Second)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	assert.Len(t, rl.clients, 2)

	now = now.Add(time.Second)
	rl.Allow("c")
	assert.Len(t, rl.clients, 1)
}
