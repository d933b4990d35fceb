package models

import "github.com/golang-jwt/jwt/v5"

// AdminClaims represents the JWT claims accepted on CMS admin routes.
type AdminClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Role                 string `json:"role"` // "authenticated", "admin" or "anon"
	SessionID            string `json:"session_id"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *AdminClaims) GetUserID() string {
	return c.Subject
}
