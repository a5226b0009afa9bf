package security

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookie names the cookie carrying the browser session id
const SessionCookie = "console_session"

// NewSessionID creates a random browser session id
func NewSessionID() string {
	return uuid.NewString()
}

// IsSecureRequest reports whether the request arrived over HTTPS,
// directly or through a TLS-terminating proxy
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if r.Header.Get("X-Forwarded-Proto") == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// SessionID returns the id from the request cookie, or "" when absent or malformed
func SessionID(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}

// EnsureSessionID returns the request's session id, issuing a new cookie when missing
func EnsureSessionID(w http.ResponseWriter, r *http.Request, ttl time.Duration) string {
	if sid := SessionID(r); sid != "" {
		return sid
	}
	sid := NewSessionID()
	http.SetCookie(w, CreateSessionCookie(r, sid, time.Now().Add(ttl)))
	return sid
}

// CreateSessionCookie builds the session cookie; Secure follows the request scheme
func CreateSessionCookie(r *http.Request, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}
