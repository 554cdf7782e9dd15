package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgres opens a pool, applies the schema and returns the pgx-backed stores.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Repositories, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	if err := MigratePostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Repositories{
		Flights:      NewFlightRepository(pool),
		Reservations: NewReservationRepository(pool),
		Users:        NewUserRepository(pool),
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

// Open picks the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Repositories, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return NewMongo(ctx, cfg)
	case config.DriverPostgres, "":
		return NewPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
