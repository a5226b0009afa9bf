package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Entry summarises one persisted session for maintenance listings
type Entry struct {
	ID            string
	UpdatedAt     time.Time
	Authenticated bool
}

// Storage is the persisted key/value space backing the Store. Every browser
// session owns its own set of keys, addressed by the session id.
type Storage interface {
	// Values returns all keys stored for sid. An unknown sid yields an empty map.
	Values(ctx context.Context, sid string) (map[string]string, error)
	// SetValues upserts the given keys and refreshes the session activity time.
	SetValues(ctx context.Context, sid string, values map[string]string) error
	// DeleteValues removes the given keys, or every key of sid when none are given.
	DeleteValues(ctx context.Context, sid string, keys ...string) error
	// Touch refreshes the session activity time without changing values.
	Touch(ctx context.Context, sid string) error
	// Purge drops sessions with no activity since before and reports how many went.
	Purge(ctx context.Context, before time.Time) (int64, error)
	// List returns every stored session, most recently active first.
	List(ctx context.Context) ([]Entry, error)
}

type memoryEntry struct {
	values    map[string]string
	updatedAt time.Time
}

// MemoryStorage keeps sessions in process memory. Used in tests and single-replica setups.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string]*memoryEntry
	now      func() time.Time
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[string]*memoryEntry),
		now:      time.Now,
	}
}

func (m *MemoryStorage) Values(ctx context.Context, sid string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string)
	if e, ok := m.sessions[sid]; ok {
		for k, v := range e.values {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MemoryStorage) SetValues(ctx context.Context, sid string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sid]
	if !ok {
		e = &memoryEntry{values: make(map[string]string)}
		m.sessions[sid] = e
	}
	for k, v := range values {
		e.values[k] = v
	}
	e.updatedAt = m.now()
	return nil
}

func (m *MemoryStorage) DeleteValues(ctx context.Context, sid string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sid]
	if !ok {
		return nil
	}
	if len(keys) == 0 {
		delete(m.sessions, sid)
		return nil
	}
	for _, k := range keys {
		delete(e.values, k)
	}
	if len(e.values) == 0 {
		delete(m.sessions, sid)
	}
	return nil
}

func (m *MemoryStorage) Touch(ctx context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[sid]; ok {
		e.updatedAt = m.now()
	}
	return nil
}

func (m *MemoryStorage) Purge(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for sid, e := range m.sessions {
		if e.updatedAt.Before(before) {
			delete(m.sessions, sid)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStorage) List(ctx context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]Entry, 0, len(m.sessions))
	for sid, e := range m.sessions {
		entries = append(entries, Entry{
			ID:            sid,
			UpdatedAt:     e.updatedAt,
			Authenticated: e.values[KeyToken] != "",
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}
