package auth

import "sitetree/internal/domain/models"

// JWTVerifier defines the interface for JWT token verification.
// The auth middleware depends on this rather than on a JWKS client so tests
// can verify tokens without network access.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.AdminClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
