package guard

import (
	"net/http"
	"net/url"
	"strings"

	"parkingconsole/internal/models"
)

// State is the authentication state of a request
type State int

const (
	Loading State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

const (
	LoginPath   = "/login"
	HomePath    = "/dashboard"
	NextParam   = "next"
	resetPrefix = "/reset-password/"
)

// Decision is the outcome of guarding one request
type Decision struct {
	State State
	Allow bool
	// Redirect is set when the caller should be sent elsewhere
	Redirect string
	// Status is set when the request is refused without a redirect
	Status int
	// ReturnTo is the local target to resume after login
	ReturnTo string
}

// Guard decides which views a session may see
type Guard struct {
	public         map[string]bool
	publicPrefixes []string
	adminOnly      []string
}

// New creates a guard. Paths under any of publicPrefixes (static assets,
// health checks) are always allowed.
func New(publicPrefixes ...string) *Guard {
	return &Guard{
		public: map[string]bool{
			"/":                true,
			LoginPath:          true,
			"/register":        true,
			"/forgot-password": true,
			"/verify-email":    true,
		},
		publicPrefixes: publicPrefixes,
		adminOnly:      []string{"/users"},
	}
}

// Resolve maps a loaded session to a state. Until loading finished the state is Loading.
func (g *Guard) Resolve(sess *models.Session, loaded bool) State {
	if !loaded {
		return Loading
	}
	if sess.IsAuthenticated() {
		return Authenticated
	}
	return Unauthenticated
}

// IsPublic reports whether path is reachable without a session
func (g *Guard) IsPublic(path string) bool {
	if g.public[path] {
		return true
	}
	if token, ok := strings.CutPrefix(path, resetPrefix); ok {
		return token != "" && !strings.Contains(token, "/")
	}
	for _, prefix := range g.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// IsAdminOnly reports whether path needs the admin role
func (g *Guard) IsAdminOnly(path string) bool {
	for _, p := range g.adminOnly {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Decide guards target, a request path with optional query string
func (g *Guard) Decide(target string, sess *models.Session, loaded bool) Decision {
	path := target
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	state := g.Resolve(sess, loaded)
	d := Decision{State: state}

	if g.IsPublic(path) {
		d.Allow = true
		return d
	}

	switch state {
	case Loading:
		// Never render a protected view before the session is known
		d.Status = http.StatusServiceUnavailable
	case Unauthenticated:
		d.ReturnTo = SafeReturnTo(target)
		d.Redirect = LoginPath + "?" + url.Values{NextParam: {d.ReturnTo}}.Encode()
	case Authenticated:
		if g.IsAdminOnly(path) && !sess.IsAdmin() {
			d.Status = http.StatusForbidden
			return d
		}
		d.Allow = true
	}
	return d
}

// SafeReturnTo accepts only local paths, falling back to HomePath
func SafeReturnTo(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return HomePath
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return HomePath
	}
	if u.Path == LoginPath {
		return HomePath
	}
	return next
}
