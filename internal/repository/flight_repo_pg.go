package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flightColumns = `id, flight_no, airline, origin, destination, departure_day, departure_time, arrival_day, arrival_time, aircraft_type, seat_cap, price, created_at, updated_at`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY flight_no`)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	return r.getOne(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
}

func (r *PGFlightRepository) GetByFlightNo(ctx context.Context, flightNo string) (*domain.Flight, error) {
	return r.getOne(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_no=$1`, domain.NormalizeFlightNo(flightNo))
}

func (r *PGFlightRepository) FindByRoute(ctx context.Context, origin, destination, weekday string) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE origin=$1 AND destination=$2 AND departure_day=$3
		ORDER BY departure_time`, origin, destination, weekday)
	if err != nil {
		return nil, fmt.Errorf("query flights by route: %w", err)
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flights (id, flight_no, airline, origin, destination, departure_day, departure_time, arrival_day, arrival_time, aircraft_type, seat_cap, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		f.ID, f.FlightNo, f.Airline, f.Origin, f.Destination, f.DepartureDay, f.DepartureTime,
		f.ArrivalDay, f.ArrivalTime, f.AircraftType, f.SeatCap, f.Price).
		Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("flight %s already exists: %w", f.FlightNo, domain.ErrConflict)
		}
		return fmt.Errorf("insert flight: %w", err)
	}
	return nil
}

func (r *PGFlightRepository) Update(ctx context.Context, f *domain.Flight) error {
	err := r.db.QueryRow(ctx, `UPDATE flights SET flight_no=$2, airline=$3, origin=$4, destination=$5,
		departure_day=$6, departure_time=$7, arrival_day=$8, arrival_time=$9, aircraft_type=$10,
		seat_cap=$11, price=$12, updated_at=now()
		WHERE id=$1
		RETURNING created_at, updated_at`,
		f.ID, f.FlightNo, f.Airline, f.Origin, f.Destination, f.DepartureDay, f.DepartureTime,
		f.ArrivalDay, f.ArrivalTime, f.AircraftType, f.SeatCap, f.Price).
		Scan(&f.CreatedAt, &f.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("flight %s already exists: %w", f.FlightNo, domain.ErrConflict)
	case err != nil:
		return fmt.Errorf("update flight: %w", err)
	}
	return nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGFlightRepository) getOne(ctx context.Context, query string, arg any) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get flight: %w", err)
	}
	return f, nil
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNo, &f.Airline, &f.Origin, &f.Destination, &f.DepartureDay, &f.DepartureTime,
		&f.ArrivalDay, &f.ArrivalTime, &f.AircraftType, &f.SeatCap, &f.Price, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ FlightRepository = (*PGFlightRepository)(nil)
