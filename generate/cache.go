package generate

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// CompletionCache is a TTL cache of raw completions keyed by model, persona and text.
type CompletionCache struct {
	cache *ttlcache.Cache[string, string]
}

// NewCompletionCache creates a cache whose entries live for ttl. A ttl of
// zero or less returns nil, which behaves as a disabled cache.
func NewCompletionCache(ttl time.Duration) *CompletionCache {
	if ttl <= 0 {
		return nil
	}
	c := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go c.Start()
	return &CompletionCache{cache: c}
}

// Close stops the cache expiration loop.
func (cc *CompletionCache) Close() {
	if cc == nil {
		return
	}
	cc.cache.Stop()
}

// Get returns the cached completion and whether it was found.
func (cc *CompletionCache) Get(model, persona, text string) (string, bool) {
	if cc == nil {
		return "", false
	}
	item := cc.cache.Get(cacheKey(model, persona, text))
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

// Set stores a completion.
func (cc *CompletionCache) Set(model, persona, text, completion string) {
	if cc == nil {
		return
	}
	cc.cache.Set(cacheKey(model, persona, text), completion, ttlcache.DefaultTTL)
}

func cacheKey(model, persona, text string) string {
	h := sha256.New()
	for _, part := range []string{model, persona, text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
