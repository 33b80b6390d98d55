package auth

import (
	"context"
	"slices"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/TestimonyAdegoke/montessa-sub006/auth/authctx"
)

// Roles carried in Claims.Role.
const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
	RoleStudent = "student"
)

// Claims identifies the caller.
type Claims struct {
	gojwt.RegisteredClaims
	UserID   string `json:"uid"`
	TenantID string `json:"tid,omitempty"`
	Role     string `json:"role,omitempty"`
}

// SetDefaults stamps the registered time claims. The jwt service calls it
// before signing access tokens.
func (c *Claims) SetDefaults(now time.Time, ttl time.Duration, issuer string, audience []string) {
	if c.IssuedAt == nil {
		c.IssuedAt = gojwt.NewNumericDate(now)
	}
	if c.ExpiresAt == nil && ttl > 0 {
		c.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	}
	if c.Issuer == "" {
		c.Issuer = issuer
	}
	if len(c.Audience) == 0 && len(audience) > 0 {
		c.Audience = audience
	}
	if c.Subject == "" {
		c.Subject = c.UserID
	}
}

// HasRole reports whether the caller has one of roles.
func (c *Claims) HasRole(roles ...string) bool {
	return c != nil && slices.Contains(roles, c.Role)
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return authctx.Set(ctx, c)
}

// FromContext returns the caller's claims, if the request was authenticated.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := authctx.Get[*Claims](ctx)
	if !ok || c == nil || c.UserID == "" {
		return nil, false
	}
	return c, true
}
