package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenCache(t *testing.T) {
	now := time.Date(2026, time.January, 1, 10, 0, 0, 0, time.UTC)
	c := NewTokenCache(time.Minute)
	c.now = func() time.Time { return now }

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Put("k", "tok", now.Add(10*time.Minute))
	tok, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "tok", tok)

	// inside the skew window the token counts as expired
	now = now.Add(9*time.Minute + 30*time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
}
