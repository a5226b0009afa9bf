package session

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"parkingconsole/internal/models"
)

// RolePolicy decides the console role of a freshly logged in user
type RolePolicy interface {
	Role(email, token string) models.Role
}

// EmailHeuristic grants admin to any email containing "admin".
// The backend login response carries no role, so this is only a display hint;
// the backend still authorises every admin call.
type EmailHeuristic struct{}

func (EmailHeuristic) Role(email, _ string) models.Role {
	if strings.Contains(email, "admin") {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// ClaimPolicy reads the "role" claim from the access token without verifying
// its signature. Falls back to Fallback (or RoleUser) when there is no claim.
type ClaimPolicy struct {
	Fallback RolePolicy
}

func (p ClaimPolicy) Role(email, token string) models.Role {
	if claims, ok := unverifiedClaims(token); ok {
		if role, ok := claims["role"].(string); ok && role != "" {
			if strings.EqualFold(role, string(models.RoleAdmin)) {
				return models.RoleAdmin
			}
			return models.RoleUser
		}
	}
	if p.Fallback != nil {
		return p.Fallback.Role(email, token)
	}
	return models.RoleUser
}

// PolicyByName maps the ROLE_POLICY setting to a policy
func PolicyByName(name string) (RolePolicy, error) {
	switch strings.ToLower(name) {
	case "", "email":
		return EmailHeuristic{}, nil
	case "claim":
		return ClaimPolicy{Fallback: EmailHeuristic{}}, nil
	default:
		return nil, fmt.Errorf("unknown role policy: %s", name)
	}
}

// unverifiedClaims parses a JWT payload. The console holds no signing key;
// the backend remains the authority on token validity.
func unverifiedClaims(token string) (jwt.MapClaims, bool) {
	if token == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
