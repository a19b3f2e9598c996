package payments

import (
	"sync"
	"time"
)

// TokenCache holds OAuth tokens across initiations, keyed by client identity.
// Tokens are dropped Skew before they expire.
type TokenCache struct {
	sync.Mutex
	tokens map[string]cachedToken
	Skew   time.Duration
	now    func() time.Time
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

func NewTokenCache(skew time.Duration) *TokenCache {
	return &TokenCache{
		tokens: make(map[string]cachedToken),
		Skew:   skew,
		now:    time.Now,
	}
}

func (c *TokenCache) Get(key string) (string, bool) {
	c.Lock()
	defer c.Unlock()

	tok, ok := c.tokens[key]
	if !ok {
		return "", false
	}
	if !c.now().Add(c.Skew).Before(tok.expiresAt) {
		delete(c.tokens, key)
		return "", false
	}
	return tok.value, true
}

func (c *TokenCache) Put(key, value string, expiresAt time.Time) {
	c.Lock()
	c.tokens[key] = cachedToken{value: value, expiresAt: expiresAt}
	c.Unlock()
}
