package auth

import (
	"errors"

	"github.com/TestimonyAdegoke/montessa-sub006/auth/jwt"
)

// TokenValidator validates a token string and returns the parsed claims.
// Middleware depends on this contract rather than on a concrete token
// format.
type TokenValidator interface {
	ValidateToken(token string) (*Claims, error)
}

// TokenValidatorFunc adapts a function to TokenValidator.
type TokenValidatorFunc func(token string) (*Claims, error)

// ValidateToken implements TokenValidator.
func (f TokenValidatorFunc) ValidateToken(token string) (*Claims, error) {
	return f(token)
}

// ErrMissingUser is returned for a well-signed token without a user id.
var ErrMissingUser = errors.New("auth: token has no user id")

// NewTokenService creates the JWT service for Claims.
func NewTokenService(cfg *Config) (*jwt.Service[*Claims], error) {
	return jwt.NewService(&cfg.JWT, func() *Claims { return &Claims{} })
}

// JWTValidator validates tokens issued by svc.
func JWTValidator(svc *jwt.Service[*Claims]) TokenValidator {
	return TokenValidatorFunc(func(token string) (*Claims, error) {
		claims, err := svc.Parse(token)
		if err != nil {
			return nil, err
		}
		if claims.UserID == "" {
			return nil, ErrMissingUser
		}
		return claims, nil
	})
}
