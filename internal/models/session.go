package models

// Role is the console role attached to a session
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Session is the client-held record of the current identity and backend token
type Session struct {
	Token     string
	Email     string
	FirstName string
	LastName  string
	Role      Role
}

// IsAuthenticated reports whether a backend token is present
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Token != ""
}

// IsAdmin reports whether the stored role is admin
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// DisplayName is used for the greeting in the layout
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.FirstName != "" {
		return s.FirstName
	}
	return s.Email
}
