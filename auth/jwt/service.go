// Package jwt signs and parses JWTs for a caller-defined claims type.
//
//	svc, err := jwt.NewService(&cfg, func() *auth.Claims { return &auth.Claims{} })
//	token, err := svc.GenerateAccess(&auth.Claims{UserID: "u-1"})
//	claims, err := svc.Parse(token)
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Service generates and parses tokens carrying claims of type T.
type Service[T gojwt.Claims] struct {
	cfg      Config
	newEmpty func() T
}

// NewService validates cfg and creates a service. newEmpty returns a fresh
// T to parse into.
func NewService[T gojwt.Claims](cfg *Config, newEmpty func() T) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	return &Service[T]{cfg: *cfg, newEmpty: newEmpty}, nil
}

// Generate signs claims as they are.
func (s *Service[T]) Generate(claims T) (string, error) {
	token := gojwt.NewWithClaims(s.cfg.signingMethod(), claims)
	signed, err := token.SignedString(s.cfg.signKey())
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// GenerateAccess stamps time claims with AccessTokenTTL and signs.
func (s *Service[T]) GenerateAccess(claims T) (string, error) {
	s.prepareClaims(claims, s.cfg.AccessTokenTTL)
	return s.Generate(claims)
}

// GenerateRefresh stamps time claims with RefreshTokenTTL and signs.
func (s *Service[T]) GenerateRefresh(claims T) (string, error) {
	s.prepareClaims(claims, s.cfg.RefreshTokenTTL)
	return s.Generate(claims)
}

// Parse verifies the signature, expiry and, when configured, issuer and
// audience. Expired tokens yield an error for which IsExpired is true.
func (s *Service[T]) Parse(tokenString string) (T, error) {
	var zero T
	claims := s.newEmpty()
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		return zero, fmt.Errorf("jwt: parse token: %w", err)
	}
	if !token.Valid {
		return zero, errors.New("jwt: invalid token")
	}
	parsed, ok := token.Claims.(T)
	if !ok {
		return zero, errors.New("jwt: unexpected claims type")
	}
	return parsed, nil
}

// IsExpired reports whether err came from an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, gojwt.ErrTokenExpired)
}

func (s *Service[T]) keyFunc(token *gojwt.Token) (interface{}, error) {
	expected := s.cfg.signingMethod()
	if token.Method.Alg() != expected.Alg() {
		return nil, fmt.Errorf("jwt: unexpected signing method: %s", token.Method.Alg())
	}
	return s.cfg.verifyKey(), nil
}

func (s *Service[T]) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	if len(s.cfg.Audience) > 0 {
		opts = append(opts, gojwt.WithAudience(s.cfg.Audience[0]))
	}
	return opts
}

// prepareClaims lets claim types that know how stamp their own defaults.
func (s *Service[T]) prepareClaims(claims T, ttl time.Duration) {
	if setter, ok := any(claims).(interface {
		SetDefaults(time.Time, time.Duration, string, []string)
	}); ok {
		setter.SetDefaults(time.Now(), ttl, s.cfg.Issuer, s.cfg.Audience)
	}
}
