package script

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"briefcast/config"
)

// SeenFilter remembers headlines used by earlier runs in a RedisBloom filter
// so consecutive briefs do not repeat themselves. False positives just skip a
// headline, which is an acceptable trade for O(1) memory.
type SeenFilter struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSeenFilter connects to Redis and ensures the bloom filter exists.
// Returns nil (and no error) when no Redis address is configured.
func NewSeenFilter(ctx context.Context, cfg config.Config) (*SeenFilter, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	f := &SeenFilter{client: client, key: cfg.SeenKey, ttl: cfg.SeenTTL}

	// BF.ADD auto-creates the filter when the module allows it; an explicit
	// reserve just pins capacity and error rate up front.
	exists, err := client.Exists(pingCtx, f.key).Result()
	if err == nil && exists == 0 {
		_ = client.Do(pingCtx, "BF.RESERVE", f.key, "0.001", 100000).Err()
	}
	return f, nil
}

// Close releases the Redis connection.
func (f *SeenFilter) Close() error {
	return f.client.Close()
}

// Seen reports whether a headline was used before.
func (f *SeenFilter) Seen(ctx context.Context, headline string) (bool, error) {
	res, err := f.client.Do(ctx, "BF.EXISTS", f.key, hashHeadline(headline)).Result()
	if err != nil {
		return false, err
	}
	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T", res)
	}
}

// Mark records a headline as used and refreshes the filter's TTL, so the
// filter expires a fixed window after the most recent run.
func (f *SeenFilter) Mark(ctx context.Context, headline string) error {
	if err := f.client.Do(ctx, "BF.ADD", f.key, hashHeadline(headline)).Err(); err != nil {
		return err
	}
	return f.client.Expire(ctx, f.key, f.ttl).Err()
}

// hashHeadline hashes a whitespace-collapsed, lowercased headline.
func hashHeadline(headline string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(headline), " "))
	h := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(h[:])
}
