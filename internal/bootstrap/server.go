package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Domenick1991/flightdesk/api"
	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/docs"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logger"
	"github.com/Domenick1991/flightdesk/internal/metrics"
	"github.com/Domenick1991/flightdesk/internal/middleware"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/Domenick1991/flightdesk/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// SessionManager resolves, issues and revokes sessions.
type SessionManager interface {
	middleware.SessionResolver
	api.Sessions
}

// Deps is everything the HTTP server is assembled from.
type Deps struct {
	Config   *config.Config
	Log      *slog.Logger
	Audit    *logger.Audit
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	Users    users.UserUseCase
	Sessions SessionManager
	Metrics  *metrics.Metrics
	// Checks are run by /health; any error marks the service unavailable.
	Checks map[string]func(context.Context) error
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, d Deps) error {
	engine, limiter := NewRouter(d)
	if limiter != nil {
		go limiter.Run(ctx, time.Minute, 10*time.Minute)
	}

	srv := &http.Server{
		Addr:              d.Config.HTTP.Address,
		Handler:           corsHandler(d.Config.HTTP.AllowedOrigins).Handler(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.Log.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		timeout := time.Duration(d.Config.HTTP.ShutdownTimeout) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		d.Log.Info("shutting down http server", "timeout", timeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter builds the gin engine with every route mounted. The returned rate
// limiter is nil when rate limiting is disabled.
func NewRouter(d Deps) (*gin.Engine, *middleware.RateLimiter) {
	if d.Config.HTTP.GinMode != "" {
		gin.SetMode(d.Config.HTTP.GinMode)
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(d.Log, d.Audit),
		middleware.RequestLogger(d.Log),
		middleware.Metrics(d.Metrics),
		middleware.SecurityHeaders(),
	)

	var (
		limiter *middleware.RateLimiter
		limit   gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	)
	if rl := d.Config.RateLimit; rl.Enabled {
		limiter = middleware.NewRateLimiter(rl.RequestsPerSecond, rl.Burst)
		limit = limiter.Middleware()
	}

	gate := middleware.NewAuthGate(d.Sessions, d.Config.Session.CookieName)

	engine.GET("/health", health(d.Checks))
	engine.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	if d.Config.HTTP.SwaggerEnabled {
		docs.Register(engine)
	}

	api.NewFlightHandler(d.Flights).Register(engine.Group("/flights"), gate.RequireRole(domain.RoleAdmin))
	api.NewReservationHandler(d.Bookings).Register(engine.Group("/reservations"), gate.RequireRole(domain.RoleAny), limit)
	api.NewProfileHandler(d.Users, d.Sessions, gate, api.CookieConfig{
		Name:   d.Config.Session.CookieName,
		Secure: d.Config.Session.Secure,
	}).Register(engine.Group("/profile", limit))

	return engine, limiter
}

func health(checks map[string]func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": results})
	}
}

func corsHandler(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
}
