package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

const (
	// CSRFFormField is the hidden input every console form carries
	CSRFFormField = "csrf_token"
	// CSRFHeader is accepted instead of the form field for scripted calls
	CSRFHeader = "X-CSRF-Token"
)

// CSRF derives form tokens from the browser session id with HMAC-SHA256.
// Nothing is stored, so any replica can check a token issued by another.
type CSRF struct {
	secret []byte
}

// NewCSRF creates a token source keyed by secret
func NewCSRF(secret string) *CSRF {
	return &CSRF{secret: []byte(secret)}
}

// Token returns the token for sessionID, or "" without a session
func (c *CSRF) Token(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte("console-form:"))
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Valid reports whether token belongs to sessionID
func (c *CSRF) Valid(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	return hmac.Equal([]byte(c.Token(sessionID)), []byte(token))
}

// FromRequest reads the submitted token from the form or the header
func FromRequest(r *http.Request) string {
	if token := r.PostFormValue(CSRFFormField); token != "" {
		return token
	}
	return r.Header.Get(CSRFHeader)
}
