package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/httpx"
	"github.com/Domenick1991/flightdesk/internal/middleware"
	"github.com/Domenick1991/flightdesk/internal/service/users"
	"github.com/Domenick1991/flightdesk/internal/session"
	"github.com/gin-gonic/gin"
)

// Sessions issues and revokes login sessions.
type Sessions interface {
	Create(ctx context.Context, u *domain.User) (session.Token, error)
	Destroy(ctx context.Context, token string) error
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type ProfileHandler struct {
	users    users.UserUseCase
	sessions Sessions
	gate     *middleware.AuthGate
	cookie   CookieConfig
}

func NewProfileHandler(service users.UserUseCase, sessions Sessions, gate *middleware.AuthGate, cookie CookieConfig) *ProfileHandler {
	return &ProfileHandler{users: service, sessions: sessions, gate: gate, cookie: cookie}
}

func (h *ProfileHandler) Register(router *gin.RouterGroup) {
	router.GET("/register", h.registerForm)
	router.POST("/register", h.register)
	router.GET("/login", h.loginForm)
	router.POST("/login", h.login)
	router.GET("/logout", h.logout)

	anyone := h.gate.RequireRole(domain.RoleAny)
	router.GET("", anyone, h.home)
	router.GET("/User", h.gate.RequireRole(domain.RoleUser), h.userHome)
	router.GET("/Admin", h.gate.RequireRole(domain.RoleAdmin), h.adminList)
	router.GET("/edit/:id", anyone, h.edit)
	router.POST("/update/:id", anyone, h.update)
	router.POST("/delete/:id", anyone, h.delete)
}

func homePath(u *domain.User) string {
	if u.IsAdmin {
		return "/profile/Admin"
	}
	return "/profile/User"
}

func (h *ProfileHandler) registerForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":  "Register",
		"fields": []string{"firstname", "lastname", "email", "password"},
	})
}

func (h *ProfileHandler) register(c *gin.Context) {
	var in users.RegisterInput
	if err := c.ShouldBind(&in); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	httpx.Success(c, http.StatusCreated, httpx.StatusAdded, gin.H{
		"user":     u,
		"redirect": middleware.LoginPath + "?registered=true",
	})
}

func (h *ProfileHandler) loginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":  "Login",
		"fields": []string{"email", "password"},
	})
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *ProfileHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			httpx.Error(c, http.StatusUnauthorized, httpx.CodeUnauthorized, "Invalid login")
			return
		}
		respondError(c, err)
		return
	}
	token, err := h.sessions.Create(c.Request.Context(), u)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setCookie(c, token.Value, time.Until(token.ExpiresAt))
	httpx.Success(c, http.StatusOK, httpx.StatusOK, gin.H{
		"token":     token.Value,
		"expiresAt": token.ExpiresAt,
		"user":      u,
		"redirect":  homePath(u),
	})
}

func (h *ProfileHandler) logout(c *gin.Context) {
	if token := h.gate.Token(c); token != "" {
		if err := h.sessions.Destroy(c.Request.Context(), token); err != nil {
			_ = c.Error(err)
		}
	}
	h.clearCookie(c)
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

func (h *ProfileHandler) home(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	c.Redirect(http.StatusFound, homePath(user))
}

func (h *ProfileHandler) userHome(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	c.Redirect(http.StatusFound, "/profile/edit/"+user.ID)
}

func (h *ProfileHandler) adminList(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	list, err := h.users.List(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": "User Management", "users": list})
}

func (h *ProfileHandler) edit(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	u, err := h.users.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *ProfileHandler) update(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	var in users.UpdateInput
	if err := c.ShouldBind(&in); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.users.Update(c.Request.Context(), user, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	httpx.Success(c, http.StatusOK, httpx.StatusUpdated, u)
}

// delete removes an account. Deleting your own account also ends the session.
func (h *ProfileHandler) delete(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	u, err := h.users.Delete(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	redirect := "/profile/Admin"
	if u.ID == user.ID {
		if err := h.sessions.Destroy(c.Request.Context(), middleware.SessionToken(c)); err != nil {
			_ = c.Error(err)
		}
		h.clearCookie(c)
		redirect = middleware.LoginPath
	}
	httpx.Success(c, http.StatusOK, httpx.StatusDeleted, gin.H{"id": u.ID, "redirect": redirect})
}

func (h *ProfileHandler) setCookie(c *gin.Context, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, int(ttl.Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *ProfileHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}
