package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TestimonyAdegoke/montessa-sub006/auth"
	"github.com/TestimonyAdegoke/montessa-sub006/auth/jwt"
	apperrors "github.com/TestimonyAdegoke/montessa-sub006/errors"
	"github.com/TestimonyAdegoke/montessa-sub006/logger"
)

// AuthConfig configures the authentication middleware.
type AuthConfig struct {
	// Validator turns a raw token into claims.
	Validator auth.TokenValidator
	// QueryParam, when set, is read if the Authorization header is absent.
	// EventSource clients cannot set headers.
	QueryParam string
}

// Auth validates the caller's token and stores the claims in the request
// context, where auth.FromContext finds them.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, appErr := extractToken(c, cfg.QueryParam)
		if appErr != nil {
			abortWithError(c, appErr)
			return
		}

		claims, err := cfg.Validator.ValidateToken(token)
		if err != nil {
			if jwt.IsExpired(err) {
				abortWithError(c, apperrors.TokenExpired())
			} else {
				abortWithError(c, apperrors.InvalidToken().WithCause(err))
			}
			return
		}

		ctx := auth.WithClaims(c.Request.Context(), claims)
		ctx = logger.ContextWithUser(ctx, claims.UserID, claims.TenantID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not in roles. It must run
// after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.FromContext(c.Request.Context())
		if !ok {
			abortWithError(c, apperrors.Unauthorized(""))
			return
		}
		if !claims.HasRole(roles...) {
			abortWithError(c, apperrors.Forbidden("").WithDetail("role", claims.Role))
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context, queryParam string) (string, *apperrors.AppError) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if queryParam != "" {
			if token := c.Query(queryParam); token != "" {
				return token, nil
			}
		}
		return "", apperrors.Unauthorized("Authorization header required.")
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", apperrors.Unauthorized("Invalid authorization header format.")
	}
	return strings.TrimSpace(token), nil
}

func abortWithError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}
