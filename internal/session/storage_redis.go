package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "console:session:"

// RedisClient is the subset of go-redis used by RedisStorage
type RedisClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// RedisStorage keeps each session in one hash with a sliding TTL.
// Expiry is enforced by Redis itself.
type RedisStorage struct {
	client RedisClient
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStorage creates a storage whose sessions expire after ttl of inactivity
func NewRedisStorage(client RedisClient, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl, now: time.Now}
}

func redisKey(sid string) string {
	return redisKeyPrefix + sid
}

func (r *RedisStorage) Values(ctx context.Context, sid string) (map[string]string, error) {
	values, err := r.client.HGetAll(ctx, redisKey(sid)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read session hash: %w", err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

func (r *RedisStorage) SetValues(ctx context.Context, sid string, values map[string]string) error {
	if len(values) == 0 {
		return r.Touch(ctx, sid)
	}

	args := make([]interface{}, 0, len(values)*2)
	for k, v := range values {
		args = append(args, k, v)
	}
	if err := r.client.HSet(ctx, redisKey(sid), args...).Err(); err != nil {
		return fmt.Errorf("failed to write session hash: %w", err)
	}
	return r.Touch(ctx, sid)
}

func (r *RedisStorage) DeleteValues(ctx context.Context, sid string, keys ...string) error {
	var err error
	if len(keys) == 0 {
		err = r.client.Del(ctx, redisKey(sid)).Err()
	} else {
		err = r.client.HDel(ctx, redisKey(sid), keys...).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to delete session keys: %w", err)
	}
	return nil
}

func (r *RedisStorage) Touch(ctx context.Context, sid string) error {
	if r.ttl <= 0 {
		return nil
	}
	if err := r.client.Expire(ctx, redisKey(sid), r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to refresh session ttl: %w", err)
	}
	return nil
}

// Purge is a no-op; Redis drops idle hashes when their TTL runs out.
func (r *RedisStorage) Purge(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (r *RedisStorage) List(ctx context.Context) ([]Entry, error) {
	var (
		entries []Entry
		cursor  uint64
	)
	now := r.now()
	for {
		keys, next, err := r.client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan sessions: %w", err)
		}
		for _, key := range keys {
			sid := strings.TrimPrefix(key, redisKeyPrefix)
			entry := Entry{ID: sid, UpdatedAt: now}

			// Remaining TTL tells how long ago the session was last touched
			if remaining, err := r.client.TTL(ctx, key).Result(); err == nil && remaining > 0 && r.ttl > 0 {
				entry.UpdatedAt = now.Add(remaining - r.ttl)
			}
			if values, err := r.client.HGetAll(ctx, key).Result(); err == nil {
				entry.Authenticated = values[KeyToken] != ""
			}
			entries = append(entries, entry)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}
