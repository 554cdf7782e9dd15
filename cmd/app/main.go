package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/bootstrap"
	"github.com/Domenick1991/flightdesk/internal/cache"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/logger"
	"github.com/Domenick1991/flightdesk/internal/metrics"
	"github.com/Domenick1991/flightdesk/internal/pricing"
	"github.com/Domenick1991/flightdesk/internal/rabbitmq"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/Domenick1991/flightdesk/internal/service/users"
	"github.com/Domenick1991/flightdesk/internal/session"
)

type publisher interface {
	booking.Producer
	Close() error
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg := logger.Init(cfg.Log.Level, cfg.Log.Format)

	audit, err := logger.OpenAudit(cfg.Log.AuditFile)
	if err != nil {
		log.Fatalf("open audit log: %v", err)
	}
	defer audit.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("open %s store: %v", cfg.Database.Driver, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repos.Close(closeCtx); err != nil {
			lg.Error("close store", "error", err)
		}
	}()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		lg.Warn("redis unavailable at start-up", "addr", cfg.Redis.Addr, "error", err)
	}

	checks := map[string]func(context.Context) error{"redis": redisCache.Ping}

	var producer publisher
	switch cfg.Events.Broker {
	case config.BrokerKafka:
		kp := kafka.NewProducer(cfg.Events.Brokers)
		checks["kafka"] = kp.CheckConnection
		producer = kp
	case config.BrokerRabbitMQ:
		producer = rabbitmq.NewPublisher(cfg.Events.AMQPURL)
	}
	if producer != nil {
		defer producer.Close()
	}

	tariff := pricing.NewTariff(cfg.Pricing.ExcessBaggageRate, cfg.Pricing.TripType, cfg.Pricing.TravelClass)

	flightService := flights.NewFlightService(repos.Flights,
		flights.WithCache(redisCache),
		flights.WithAudit(audit),
		flights.WithLogger(lg),
	)

	bookingOpts := []booking.BookingServiceOption{
		booking.WithSeatLocker(redisCache, time.Duration(cfg.Booking.SeatHoldSeconds)*time.Second),
		booking.WithAudit(audit),
		booking.WithLogger(lg),
	}
	if producer != nil {
		bookingOpts = append(bookingOpts, booking.WithProducer(producer, cfg.Events.ReservationTopic))
	}
	bookingService := booking.NewBookingService(repos.Reservations, repos.Flights, tariff, bookingOpts...)

	userService := users.NewUserService(repos.Users,
		users.WithAudit(audit),
		users.WithBcryptCost(cfg.Session.BcryptCost),
	)
	if err := userService.SeedAdmin(ctx, users.AdminSeed{
		Email:     cfg.Admin.Email,
		Password:  cfg.Admin.Password,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
	}); err != nil {
		lg.Error("seed admin account", "error", err)
	}

	sessions := session.NewManager(redisCache, repos.Users, cfg.Session.Secret, cfg.Session.TTL())

	audit.Action("Server starting on %s with %s store", cfg.HTTP.Address, cfg.Database.Driver)
	err = bootstrap.Run(ctx, bootstrap.Deps{
		Config:   cfg,
		Log:      lg,
		Audit:    audit,
		Flights:  flightService,
		Bookings: bookingService,
		Users:    userService,
		Sessions: sessions,
		Metrics:  metrics.New(),
		Checks:   checks,
	})
	if err != nil {
		lg.Error("server error", "error", err)
		audit.Error("Server stopped: %v", err)
		os.Exit(1)
	}
	lg.Info("server stopped")
}
