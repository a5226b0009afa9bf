package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"parkingconsole/internal/models"
)

// mockRedis implements RedisClient over in-memory hashes
type mockRedis struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
	ttls   map[string]time.Duration

	HSetError error
}

func newMockRedis() *mockRedis {
	return &mockRedis{
		hashes: make(map[string]map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (m *mockRedis) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewMapStringStringCmd(ctx)
	out := make(map[string]string)
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	cmd.SetVal(out)
	return cmd
}

func (m *mockRedis) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewIntCmd(ctx)
	if m.HSetError != nil {
		cmd.SetErr(m.HSetError)
		return cmd
	}
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		h[values[i].(string)] = values[i+1].(string)
	}
	cmd.SetVal(int64(len(values) / 2))
	return cmd
}

func (m *mockRedis) HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, f := range fields {
		if _, ok := m.hashes[key][f]; ok {
			delete(m.hashes[key], f)
			n++
		}
	}
	if len(m.hashes[key]) == 0 {
		delete(m.hashes, key)
		delete(m.ttls, key)
	}
	cmd.SetVal(n)
	return cmd
}

func (m *mockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := m.hashes[k]; ok {
			delete(m.hashes, k)
			delete(m.ttls, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (m *mockRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewBoolCmd(ctx)
	_, ok := m.hashes[key]
	if ok {
		m.ttls[key] = expiration
	}
	cmd.SetVal(ok)
	return cmd
}

func (m *mockRedis) TTL(ctx context.Context, key string) *redis.DurationCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewDurationCmd(ctx, time.Second)
	cmd.SetVal(m.ttls[key])
	return cmd
}

func (m *mockRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewScanCmd(ctx, nil)
	prefix := strings.TrimSuffix(match, "*")
	var keys []string
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	cmd.SetVal(keys, 0)
	return cmd
}

func TestRedisStorageSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	client := newMockRedis()
	store := NewStore(NewRedisStorage(client, 24*time.Hour))

	want := models.Session{
		Token:     "tok",
		Email:     "user@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      models.RoleUser,
	}
	if err := store.Set(ctx, "sid", want); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	if ttl := client.ttls[redisKey("sid")]; ttl != 24*time.Hour {
		t.Fatalf("expected sliding ttl to be set, got %v", ttl)
	}

	got, err := store.Get(ctx, "sid")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil || *got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	entries, err := store.Storage().List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "sid" || !entries[0].Authenticated {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	if err := store.Clear(ctx, "sid"); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if got, _ := store.Get(ctx, "sid"); got != nil {
		t.Fatalf("expected nil after Clear, got %+v", got)
	}
}

func TestRedisStorageWriteError(t *testing.T) {
	client := newMockRedis()
	client.HSetError = errors.New("connection refused")
	store := NewStore(NewRedisStorage(client, time.Hour))

	err := store.Set(context.Background(), "sid", models.Session{Token: "tok"})
	if err == nil {
		t.Fatal("expected error from failing redis")
	}
	if !errors.Is(err, client.HSetError) {
		t.Fatalf("expected wrapped redis error, got %v", err)
	}
}
