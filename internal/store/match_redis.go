package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

// DefaultMatchTTL is used when a non-positive TTL is passed to NewMatchCache.
const DefaultMatchTTL = 30 * 24 * time.Hour

// MatchCache keeps marker matches of documents in Redis, keyed by content
// hash so renamed copies of the same bill hit the same entry.
type MatchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMatchCache connects to redisURL and pings it.
func NewMatchCache(redisURL string, ttl time.Duration) (*MatchCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opt)
	if err := c.Ping(context.Background()).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultMatchTTL
	}
	return &MatchCache{client: c, ttl: ttl}, nil
}

func (s *MatchCache) Close() error { return s.client.Close() }

// Key returns the cache key for a document, extraction scope and marker list.
func Key(data []byte, scope string, markers []string) string {
	doc := blake2b.Sum256(data)
	q := blake2b.Sum256([]byte(scope + "\x00" + strings.Join(markers, "\x00")))
	return fmt.Sprintf("pagesift:match:%s:%s", hex.EncodeToString(doc[:]), hex.EncodeToString(q[:16]))
}

func (s *MatchCache) Lookup(ctx context.Context, data []byte, scope string, markers []string) ([][]int, bool, error) {
	raw, err := s.client.Get(ctx, Key(data, scope, markers)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var matches [][]int
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, false, fmt.Errorf("decode cached matches: %w", err)
	}
	return matches, true, nil
}

func (s *MatchCache) Store(ctx context.Context, data []byte, scope string, markers []string, matches [][]int) error {
	raw, err := json.Marshal(matches)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, Key(data, scope, markers), raw, s.ttl).Err()
}
