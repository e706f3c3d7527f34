package matching

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mediplus/clinic-platform/pkg/logging"
)

// DefaultCacheTTL is how long a symptom-description match stays cached.
const DefaultCacheTTL = 15 * time.Minute

// Cache stores match results in Redis keyed by the normalized symptom
// description. A nil *Cache is a no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCache creates a match cache. Returns nil when client is nil, which
// callers treat as caching disabled.
func NewCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// cacheKey normalizes the symptom text so trivial retypes hit the same
// entry.
func cacheKey(symptoms string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(symptoms)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return "match:" + hex.EncodeToString(sum[:])
}

// Get returns the cached match for the symptoms, or nil on miss.
func (c *Cache) Get(ctx context.Context, symptoms string) *Match {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, cacheKey(symptoms)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		c.logger.Error("match cache read failed", "error", err)
		return nil
	}
	var m Match
	if err := json.Unmarshal(raw, &m); err != nil {
		c.logger.Error("match cache entry corrupt", "error", err)
		return nil
	}
	return &m
}

// Put stores a match. Failures are logged, never surfaced.
func (c *Cache) Put(ctx context.Context, symptoms string, m *Match) {
	if c == nil || m == nil {
		return
	}
	raw, err := json.Marshal(m)
	if err != nil {
		c.logger.Error("match cache encode failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(symptoms), raw, c.ttl).Err(); err != nil {
		c.logger.Error("match cache write failed", "error", err)
	}
}
