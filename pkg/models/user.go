package models

import "time"

// Credentials is the body of POST /user/authenticate.
type Credentials struct {
	Mail     string `json:"mail" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is the body returned by a successful authentication.
type AuthResponse struct {
	Token string `json:"token"`
}

// Claims are the JWT claims the backend puts in the session token.
type Claims struct {
	Subject   string `json:"sub"`
	Name      string `json:"name"`
	LastName  string `json:"lastName"`
	Role      int    `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Expired reports whether the token expired before now. Tokens without an
// exp claim never expire client-side.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == 0 {
		return false
	}
	return !now.Before(time.Unix(c.ExpiresAt, 0))
}

// Expiry returns the exp claim as a time, zero if absent.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ExpiresAt, 0)
}

// Profile is the user record persisted next to the token.
type Profile struct {
	FirstName string `json:"firstName"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// RoleLabel maps a numeric role claim to its display label.
func RoleLabel(role int) string {
	switch role {
	case 1:
		return "Administrador"
	case 2:
		return "Auditor"
	case 3:
		return "Administrador de Personal"
	case 4:
		return "Gerente"
	default:
		return "Usuario"
	}
}

// ProfileFromClaims builds the persisted profile for a login.
func ProfileFromClaims(c Claims, email string) Profile {
	full := c.Name
	if c.LastName != "" {
		full = c.Name + " " + c.LastName
	}
	return Profile{
		FirstName: c.Name,
		FullName:  full,
		Email:     email,
		Role:      RoleLabel(c.Role),
	}
}
