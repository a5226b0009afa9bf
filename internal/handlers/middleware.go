package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"parkingconsole/internal/guard"
	"parkingconsole/internal/metrics"
	"parkingconsole/internal/models"
	"parkingconsole/internal/security"
	"parkingconsole/internal/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const requestStateKey ContextKey = "request"

// requestState is what LoadSession learned about the browser
type requestState struct {
	sid     string
	session *models.Session
	loaded  bool
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	store      *session.Store
	guard      *guard.Guard
	csrf       *security.CSRF
	limiter    *security.RateLimiter
	metrics    *metrics.Metrics
	sessionTTL time.Duration
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(store *session.Store, g *guard.Guard, csrf *security.CSRF, limiter *security.RateLimiter, m *metrics.Metrics, sessionTTL time.Duration) *Middleware {
	return &Middleware{
		store:      store,
		guard:      g,
		csrf:       csrf,
		limiter:    limiter,
		metrics:    m,
		sessionTTL: sessionTTL,
	}
}

// LoadSession issues the browser session cookie when missing and resolves the
// stored session before any page handler runs. A storage failure leaves the
// request in the loading state.
func (m *Middleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := &requestState{sid: security.EnsureSessionID(w, r, m.sessionTTL)}

		sess, err := m.store.Get(r.Context(), st.sid)
		if err != nil {
			log.Printf("Error loading session: %v", err)
		} else {
			st.session = sess
			st.loaded = true
		}

		ctx := context.WithValue(r.Context(), requestStateKey, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth lets the request through only when the guard allows it
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := stateFromContext(r.Context())

		d := m.guard.Decide(r.URL.RequestURI(), st.session, st.loaded)
		switch {
		case d.Allow:
			next(w, r)
		case d.Redirect != "":
			// A form post cannot be replayed after login
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
		default:
			respondWithError(w, d.Status, statusMessage(d.Status), "", nil)
		}
	}
}

// CSRFProtect rejects unsafe requests without a valid form token
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next(w, r)
			return
		}

		if !m.csrf.Valid(sessionID(r.Context()), security.FromRequest(r)) {
			log.Printf("CSRF check failed for %s %s", r.Method, r.URL.Path)
			respondWithError(w, http.StatusForbidden, ErrInvalidCSRFToken, "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next(w, r)
			return
		}
		if key := m.limiter.Key(r); !m.limiter.Allow(key) {
			log.Printf("Rate limit exceeded for %s on %s", key, r.URL.Path)
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Logging logs HTTP requests and counts them by status
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.metrics.ObserveRequest(r.Method, rec.status)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func stateFromContext(ctx context.Context) *requestState {
	st, ok := ctx.Value(requestStateKey).(*requestState)
	if !ok {
		return &requestState{}
	}
	return st
}

// GetSessionFromContext retrieves the authenticated session, or nil
func GetSessionFromContext(ctx context.Context) *models.Session {
	return stateFromContext(ctx).session
}

func sessionID(ctx context.Context) string {
	return stateFromContext(ctx).sid
}
