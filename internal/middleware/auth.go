package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/httpx"
	"github.com/gin-gonic/gin"
)

// LoginPath is where requests without a valid session are sent.
const LoginPath = "/profile/login"

const (
	userKey  = "flightdesk.user"
	tokenKey = "flightdesk.token"
)

// SessionResolver turns a session token into the current user record.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

type AuthGate struct {
	sessions   SessionResolver
	cookieName string
}

func NewAuthGate(sessions SessionResolver, cookieName string) *AuthGate {
	return &AuthGate{sessions: sessions, cookieName: cookieName}
}

// RequireRole admits requests whose session user has the role. domain.RoleAny
// admits every signed-in user. Requests without a session are redirected to
// the login page, signed-in users with the wrong role get 403.
func (a *AuthGate) RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := a.Token(c)
		if token == "" {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		user, err := a.sessions.Resolve(c.Request.Context(), token)
		if errors.Is(err, domain.ErrUnauthorized) {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, httpx.CodeInternal, "could not load session")
			return
		}
		if role != domain.RoleAny && user.Role() != role {
			httpx.Error(c, http.StatusForbidden, httpx.CodeForbidden, "you do not have access to this page")
			return
		}
		c.Set(userKey, user)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// Token reads the session token from the session cookie or a Bearer header.
func (a *AuthGate) Token(c *gin.Context) string {
	if v, err := c.Cookie(a.cookieName); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// CurrentUser returns the user RequireRole stored on the context.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}

// SetCurrentUser is used by tests and handlers that authenticate inline.
func SetCurrentUser(c *gin.Context, u *domain.User) {
	c.Set(userKey, u)
}

// SessionToken returns the token RequireRole accepted.
func SessionToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
