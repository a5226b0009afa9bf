package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"parkingconsole/internal/models"
)

// Persisted keys
const (
	KeyToken     = "token"
	KeyEmail     = "userEmail"
	KeyFirstName = "userFirstName"
	KeyLastName  = "userLastName"
	KeyRole      = "userRole"
	KeyFlash     = "flash"
)

var identityKeys = []string{KeyToken, KeyEmail, KeyFirstName, KeyLastName, KeyRole}

// ErrNoSessionID is returned when a call is made without a browser session id
var ErrNoSessionID = errors.New("missing session id")

// Store is the single source of truth for the current identity of a browser.
// It never talks to the backend.
type Store struct {
	storage Storage
	now     func() time.Time
}

// NewStore creates a store over storage
func NewStore(storage Storage) *Store {
	return &Store{storage: storage, now: time.Now}
}

// Storage exposes the underlying key/value storage for maintenance tools
func (s *Store) Storage() Storage {
	return s.storage
}

// Get reconstructs the session of sid. It returns nil when no token is stored
// or the stored token has expired; an expired session is cleared.
func (s *Store) Get(ctx context.Context, sid string) (*models.Session, error) {
	if sid == "" {
		return nil, nil
	}

	values, err := s.storage.Values(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	token := values[KeyToken]
	if token == "" {
		return nil, nil
	}

	if s.tokenExpired(token) {
		log.Printf("Session %s token expired, clearing", shortSID(sid))
		if err := s.Clear(ctx, sid); err != nil {
			return nil, err
		}
		return nil, nil
	}

	sess := restore(values)
	if err := s.storage.Touch(ctx, sid); err != nil {
		log.Printf("Failed to touch session %s: %v", shortSID(sid), err)
	}
	return &sess, nil
}

// Set stores all identity fields of sess. An empty token is stored as such,
// which leaves the session unauthenticated.
func (s *Store) Set(ctx context.Context, sid string, sess models.Session) error {
	if sid == "" {
		return ErrNoSessionID
	}
	role := sess.Role
	if role == "" {
		role = models.RoleUser
	}
	err := s.storage.SetValues(ctx, sid, map[string]string{
		KeyToken:     sess.Token,
		KeyEmail:     sess.Email,
		KeyFirstName: sess.FirstName,
		KeyLastName:  sess.LastName,
		KeyRole:      string(role),
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SetProfile stores the email, names and role of sess and leaves any stored
// token untouched
func (s *Store) SetProfile(ctx context.Context, sid string, sess models.Session) error {
	if sid == "" {
		return ErrNoSessionID
	}
	role := sess.Role
	if role == "" {
		role = models.RoleUser
	}
	err := s.storage.SetValues(ctx, sid, map[string]string{
		KeyEmail:     sess.Email,
		KeyFirstName: sess.FirstName,
		KeyLastName:  sess.LastName,
		KeyRole:      string(role),
	})
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Clear removes the identity fields of sid. Other keys, like a pending flash, survive.
func (s *Store) Clear(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if err := s.storage.DeleteValues(ctx, sid, identityKeys...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Purge removes sessions idle for longer than maxIdle
func (s *Store) Purge(ctx context.Context, maxIdle time.Duration) (int64, error) {
	return s.storage.Purge(ctx, s.now().Add(-maxIdle))
}

// StoredEmail returns the email kept for sid even without a token,
// as left behind by registration.
func (s *Store) StoredEmail(ctx context.Context, sid string) (string, error) {
	if sid == "" {
		return "", nil
	}
	values, err := s.storage.Values(ctx, sid)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return values[KeyEmail], nil
}

// SetValue stores an auxiliary key for sid
func (s *Store) SetValue(ctx context.Context, sid, key, value string) error {
	if sid == "" {
		return ErrNoSessionID
	}
	return s.storage.SetValues(ctx, sid, map[string]string{key: value})
}

// TakeValue reads and removes an auxiliary key
func (s *Store) TakeValue(ctx context.Context, sid, key string) (string, error) {
	if sid == "" {
		return "", nil
	}
	values, err := s.storage.Values(ctx, sid)
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", nil
	}
	if err := s.storage.DeleteValues(ctx, sid, key); err != nil {
		return "", err
	}
	return v, nil
}

func (s *Store) tokenExpired(token string) bool {
	claims, ok := unverifiedClaims(token)
	if !ok {
		// Opaque token, the backend decides
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(s.now())
}

func restore(values map[string]string) models.Session {
	sess := models.Session{
		Token:     values[KeyToken],
		Email:     values[KeyEmail],
		FirstName: values[KeyFirstName],
		LastName:  values[KeyLastName],
		Role:      models.Role(values[KeyRole]),
	}
	if sess.Role != models.RoleAdmin {
		sess.Role = models.RoleUser
	}
	if sess.FirstName == "" {
		sess.FirstName = "User"
	}
	return sess
}

func shortSID(sid string) string {
	if len(sid) > 8 {
		return sid[:8]
	}
	return sid
}
