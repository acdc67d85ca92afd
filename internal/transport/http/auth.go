package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"prepquiz-service/internal/app"
	"prepquiz-service/internal/domain"
)

const (
	ctxIdentityKey = "identity"
	ctxUserKey     = "user"
)

// TokenClaims is what the identity provider signs into a bearer token.
// Subject carries the provider uid.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Auth verifies provider-issued bearer tokens and re-fetches the local
// user record on every guarded request; there is no session-embedded
// role claim.
type Auth struct {
	secret []byte
	issuer string
	users  *app.UserService
	log    *zap.Logger
}

func NewAuth(secret, issuer string, users *app.UserService, log *zap.Logger) *Auth {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auth{secret: []byte(secret), issuer: issuer, users: users, log: log}
}

// Middleware resolves the caller's identity when a bearer token is
// present. A malformed token fails the request; a missing one leaves it
// anonymous so public reads keep working. Banned accounts are refused
// everywhere.
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "malformed authorization header"})
			return
		}

		claims, err := a.parse(raw)
		if err != nil {
			a.log.Debug("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "invalid token"})
			return
		}

		identity := domain.Identity{
			UID:         claims.Subject,
			Email:       claims.Email,
			DisplayName: claims.Name,
			PhotoURL:    claims.Picture,
		}
		c.Set(ctxIdentityKey, identity)

		user, err := a.users.GetByProviderUID(c.Request.Context(), identity.UID)
		if err == nil {
			if user.IsBanned {
				c.AbortWithStatusJSON(http.StatusForbidden, errorBody{Error: domain.ErrBanned.Error()})
				return
			}
			c.Set(ctxUserKey, user)
		}
		c.Next()
	}
}

// RequireAuth refuses anonymous requests with the uniform error body.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identityFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: domain.ErrUnauthorized.Error()})
			return
		}
		c.Next()
	}
}

// RequireAdmin guards the admin surface. Unauthenticated callers are
// redirected to the login page and authenticated non-admins back home;
// neither receives any admin data.
func (a *Auth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := userFrom(c)
		if !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		if !user.IsAdmin {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAccess gates paid quiz content; admins pass implicitly.
func (a *Auth) RequireAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := userFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: domain.ErrUnauthorized.Error()})
			return
		}
		if !user.HasAccess && !user.IsAdmin {
			c.Redirect(http.StatusSeeOther, "/access-denied")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *Auth) parse(raw string) (*TokenClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}

func identityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}

func userFrom(c *gin.Context) (domain.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)
	return user, ok
}
