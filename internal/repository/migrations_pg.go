package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MigratePostgres creates the schema if it does not exist yet.
func MigratePostgres(ctx context.Context, db *pgxpool.Pool) error {
	migrations := []string{
		createFlightsTable,
		createReservationsTable,
		createReservationSeatsTable,
		createUsersTable,
		createReservationsIndexes,
	}

	for i, m := range migrations {
		if _, err := db.Exec(ctx, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	slog.Info("postgres schema ready", "migrations", len(migrations))
	return nil
}

const createFlightsTable = `
CREATE TABLE IF NOT EXISTS flights (
    id TEXT PRIMARY KEY,
    flight_no TEXT NOT NULL UNIQUE,
    airline TEXT NOT NULL,
    origin TEXT NOT NULL,
    destination TEXT NOT NULL,
    departure_day TEXT NOT NULL,
    departure_time TEXT NOT NULL,
    arrival_day TEXT NOT NULL,
    arrival_time TEXT NOT NULL,
    aircraft_type TEXT NOT NULL,
    seat_cap INTEGER NOT NULL CHECK (seat_cap > 0),
    price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    id TEXT PRIMARY KEY,
    booking_id TEXT NOT NULL UNIQUE,
    passenger_name TEXT NOT NULL,
    passenger_email TEXT NOT NULL,
    phone_num TEXT NOT NULL,
    passport TEXT NOT NULL DEFAULT '',
    trip_type TEXT NOT NULL,
    travel_class TEXT NOT NULL,
    adults INTEGER NOT NULL DEFAULT 1,
    children INTEGER NOT NULL DEFAULT 0,
    infants INTEGER NOT NULL DEFAULT 0,
    fare_base DOUBLE PRECISION NOT NULL DEFAULT 0,
    fare_trip_type DOUBLE PRECISION NOT NULL DEFAULT 0,
    fare_travel_class DOUBLE PRECISION NOT NULL DEFAULT 0,
    fare_meal DOUBLE PRECISION NOT NULL DEFAULT 0,
    passenger_cost DOUBLE PRECISION NOT NULL,
    trip_type_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    travel_class_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    meal_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    baggage_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_price DOUBLE PRECISION NOT NULL,
    flight_no TEXT NOT NULL,
    user_id TEXT NOT NULL DEFAULT '',
    seat TEXT NOT NULL DEFAULT '',
    meal TEXT NOT NULL,
    package_meal_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    baggage_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
    free_baggage_allowance DOUBLE PRECISION NOT NULL DEFAULT 20,
    excess_baggage_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'Pending',
    checked_in BOOLEAN NOT NULL DEFAULT FALSE,
    boarding_pass_number TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK (status IN ('Pending', 'Confirmed', 'Cancelled'))
);`

// reservation_seats holds one row per seat of every live reservation; the
// primary key is what stops two bookings from taking the same seat.
const createReservationSeatsTable = `
CREATE TABLE IF NOT EXISTS reservation_seats (
    flight_no TEXT NOT NULL,
    seat TEXT NOT NULL,
    reservation_id TEXT NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
    PRIMARY KEY (flight_no, seat)
);`

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    firstname TEXT NOT NULL,
    lastname TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const createReservationsIndexes = `
CREATE INDEX IF NOT EXISTS reservations_flight_status_idx ON reservations (flight_no, status);
CREATE INDEX IF NOT EXISTS reservations_email_idx ON reservations (passenger_email);
CREATE INDEX IF NOT EXISTS reservation_seats_reservation_idx ON reservation_seats (reservation_id);
CREATE INDEX IF NOT EXISTS flights_route_day_idx ON flights (origin, destination, departure_day);`
