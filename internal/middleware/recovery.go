package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Domenick1991/flightdesk/internal/httpx"
	"github.com/Domenick1991/flightdesk/internal/logger"
	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into a 500 envelope and records it in the
// application and audit logs.
func Recovery(log *slog.Logger, audit *logger.Audit) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered",
					"panic", rec,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				audit.Error("Panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, rec)
				httpx.Error(c, http.StatusInternalServerError, httpx.CodeInternal, "internal server error")
			}
		}()
		c.Next()
	}
}
