package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/httpx"
	"github.com/Domenick1991/flightdesk/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto the error envelope. Unexpected
// errors are attached to the context for the request logger and never
// leak to the client.
func respondError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.ErrorFields(c, http.StatusBadRequest, httpx.CodeValidation, "invalid input", ve.Fields)
	case errors.Is(err, domain.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, httpx.CodeNotFound, "not found")
	case errors.Is(err, domain.ErrSeatTaken):
		httpx.Error(c, http.StatusConflict, httpx.CodeSeatTaken, "one or more selected seats are already taken")
	case errors.Is(err, domain.ErrCancelled):
		httpx.Error(c, http.StatusConflict, httpx.CodeCancelled, "reservation is cancelled")
	case errors.Is(err, domain.ErrConflict):
		httpx.Error(c, http.StatusConflict, httpx.CodeConflict, "already exists")
	case errors.Is(err, domain.ErrForbidden):
		httpx.Error(c, http.StatusForbidden, httpx.CodeForbidden, "you do not have access to this resource")
	case errors.Is(err, domain.ErrUnauthorized):
		httpx.Error(c, http.StatusUnauthorized, httpx.CodeUnauthorized, "authentication required")
	default:
		_ = c.Error(err)
		httpx.Error(c, http.StatusInternalServerError, httpx.CodeInternal, "internal server error")
	}
}

// bindError reports a body that could not be decoded at all.
func bindError(c *gin.Context, err error) {
	_ = c.Error(err)
	httpx.Error(c, http.StatusBadRequest, httpx.CodeValidation, "malformed request body")
}

// actor returns the signed-in user. Routes using it sit behind the auth gate,
// so a missing user is a wiring bug and answered with a redirect to login.
func actor(c *gin.Context) (*domain.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, middleware.LoginPath)
		c.Abort()
	}
	return u, ok
}
