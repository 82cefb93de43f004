package middleware

import (
	"context"
	"strings"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/service"
	ctxutil "github.com/InventorsDev/inventor-backend-sub000/pkg/context"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Authenticator validates access tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Claims, error)
}

type JWTMiddleware struct {
	auth Authenticator
	log  *logger.Logger
}

func NewJWTMiddleware(auth Authenticator, log *logger.Logger) *JWTMiddleware {
	return &JWTMiddleware{auth: auth, log: log}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(constants.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func (m *JWTMiddleware) authenticate(c *gin.Context, token string) error {
	claims, err := m.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		return err
	}

	c.Set(constants.GinKeyUserID, claims.Subject)
	c.Set(constants.GinKeyUserRole, claims.Role)
	c.Set(constants.GinKeyUserEmail, claims.Email)
	c.Set(constants.GinKeyTokenID, claims.ID)
	c.Set(constants.GinKeyClaims, claims)
	c.Request = c.Request.WithContext(ctxutil.WithUser(c.Request.Context(), claims.Subject, claims.Role))
	return nil
}

// RequireAuth rejects requests without a valid bearer token.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			m.log.WarnWithContext(c.Request.Context(), "Missing or malformed Authorization header").
				Method(c.Request.Method).
				Path(c.Request.URL.Path).
				Log()
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		if err := m.authenticate(c, token); err != nil {
			m.log.WarnWithContext(c.Request.Context(), "Authentication failed").
				Method(c.Request.Method).
				Path(c.Request.URL.Path).
				Err(err).
				Log()
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// lets the request through either way.
func (m *JWTMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if err := m.authenticate(c, token); err != nil {
				m.log.DebugWithContext(c.Request.Context(), "Ignoring invalid optional token").Err(err).Log()
			}
		}
		c.Next()
	}
}

// RequireRoles must run after RequireAuth.
func RequireRoles(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := model.UserRole(c.GetString(constants.GinKeyUserRole))
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		abortWithError(c, apperrors.ErrForbidden)
	}
}

// ClaimsFrom returns the claims stored by the auth middleware.
func ClaimsFrom(c *gin.Context) (*service.Claims, bool) {
	v, ok := c.Get(constants.GinKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*service.Claims)
	return claims, ok
}
