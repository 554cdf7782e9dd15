package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reservationColumns = `id, booking_id, passenger_name, passenger_email, phone_num, passport, trip_type, travel_class,
	adults, children, infants, fare_base, fare_trip_type, fare_travel_class, fare_meal,
	passenger_cost, trip_type_cost, travel_class_cost, meal_cost, baggage_cost, total_price,
	flight_no, user_id, seat, meal, package_meal_cost, baggage_weight, free_baggage_allowance, excess_baggage_weight,
	status, checked_in, boarding_pass_number, created_at, updated_at`

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

func (r *PGReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO reservations (`+reservationColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
				$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, now(), now())
			RETURNING created_at, updated_at`, reservationArgs(res)...).
			Scan(&res.CreatedAt, &res.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("booking %s already exists: %w", res.BookingID, domain.ErrConflict)
			}
			return fmt.Errorf("insert reservation: %w", err)
		}
		if res.Cancelled() {
			return nil
		}
		return claimSeats(ctx, tx, res)
	})
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id)
}

func (r *PGReservationRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Reservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE booking_id=$1`, bookingID)
}

func (r *PGReservationRepository) List(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if filter.PassengerEmail != "" {
		rows, err = r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations
			WHERE lower(passenger_email)=lower($1) ORDER BY created_at DESC`, filter.PassengerEmail)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	return collectReservations(rows)
}

func (r *PGReservationRepository) ListActiveByFlight(ctx context.Context, flightNo string) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE flight_no=$1 AND status<>$2 ORDER BY created_at`, flightNo, domain.ReservationStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("query reservations by flight: %w", err)
	}
	return collectReservations(rows)
}

// Update rewrites the mutable fields and re-claims the seat set. A cancelled
// reservation holds no claims.
func (r *PGReservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `UPDATE reservations SET
				passenger_name=$2, passenger_email=$3, phone_num=$4, passport=$5, trip_type=$6, travel_class=$7,
				adults=$8, children=$9, infants=$10, fare_base=$11, fare_trip_type=$12, fare_travel_class=$13, fare_meal=$14,
				passenger_cost=$15, trip_type_cost=$16, travel_class_cost=$17, meal_cost=$18, baggage_cost=$19, total_price=$20,
				flight_no=$21, seat=$22, meal=$23, package_meal_cost=$24, baggage_weight=$25, free_baggage_allowance=$26,
				excess_baggage_weight=$27, status=$28, updated_at=now()
			WHERE id=$1
			RETURNING updated_at`,
			res.ID, res.PassengerName, res.PassengerEmail, res.PhoneNum, res.Passport, res.TripType, res.TravelClass,
			res.Adults, res.Children, res.Infants, res.Fare.BaseFare, res.Fare.TripType, res.Fare.TravelClass, res.Fare.Meal,
			res.PassengerCost, res.TripTypeCost, res.TravelClassCost, res.MealCost, res.BaggageCost, res.TotalPrice,
			res.FlightNo, res.Package.Seat, res.Package.Meal, res.Package.MealCost, res.Package.BaggageWeight,
			res.Package.FreeBaggageAllowance, res.Package.ExcessBaggageWeight, res.Status).
			Scan(&res.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM reservation_seats WHERE reservation_id=$1`, res.ID); err != nil {
			return fmt.Errorf("release seats: %w", err)
		}
		if res.Cancelled() {
			return nil
		}
		return claimSeats(ctx, tx, res)
	})
}

func (r *PGReservationRepository) Cancel(ctx context.Context, id string) (*domain.Reservation, error) {
	var out *domain.Reservation
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		res, err := scanReservation(tx.QueryRow(ctx, `UPDATE reservations SET status=$2, updated_at=now()
			WHERE id=$1 RETURNING `+reservationColumns, id, domain.ReservationStatusCancelled))
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM reservation_seats WHERE reservation_id=$1`, id); err != nil {
			return fmt.Errorf("release seats: %w", err)
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGReservationRepository) CheckIn(ctx context.Context, bookingID, boardingPass string) (bool, error) {
	res, err := r.db.Exec(ctx, `UPDATE reservations SET checked_in=TRUE, boarding_pass_number=$2, updated_at=now()
		WHERE booking_id=$1 AND NOT checked_in AND status<>$3`,
		bookingID, boardingPass, domain.ReservationStatusCancelled)
	if err != nil {
		return false, fmt.Errorf("check in reservation: %w", err)
	}
	return res.RowsAffected() == 1, nil
}

func (r *PGReservationRepository) getOne(ctx context.Context, query string, arg any) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func claimSeats(ctx context.Context, tx pgx.Tx, res *domain.Reservation) error {
	seats := uniqueSeats(res.Package.Seats())
	if len(seats) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, seat := range seats {
		batch.Queue(`INSERT INTO reservation_seats (flight_no, seat, reservation_id) VALUES ($1, $2, $3)`,
			res.FlightNo, seat, res.ID)
	}
	br := tx.SendBatch(ctx, batch)
	for _, seat := range seats {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return claimSeatErr(res.FlightNo, seat, err)
		}
	}
	return br.Close()
}

// claimSeatErr maps a unique violation on reservation_seats to ErrSeatTaken.
func claimSeatErr(flightNo, seat string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("seat %s on %s: %w", seat, flightNo, domain.ErrSeatTaken)
	}
	return fmt.Errorf("claim seat %s: %w", seat, err)
}

// uniqueSeats uppercases seat codes and drops repeats, keeping first occurrence order.
func uniqueSeats(seats []string) []string {
	seen := make(map[string]struct{}, len(seats))
	out := make([]string, 0, len(seats))
	for _, s := range seats {
		key := strings.ToUpper(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func reservationArgs(r *domain.Reservation) []any {
	return []any{
		r.ID, r.BookingID, r.PassengerName, r.PassengerEmail, r.PhoneNum, r.Passport, r.TripType, r.TravelClass,
		r.Adults, r.Children, r.Infants, r.Fare.BaseFare, r.Fare.TripType, r.Fare.TravelClass, r.Fare.Meal,
		r.PassengerCost, r.TripTypeCost, r.TravelClassCost, r.MealCost, r.BaggageCost, r.TotalPrice,
		r.FlightNo, r.UserID, r.Package.Seat, r.Package.Meal, r.Package.MealCost, r.Package.BaggageWeight,
		r.Package.FreeBaggageAllowance, r.Package.ExcessBaggageWeight,
		r.Status, r.CheckedIn, r.BoardingPassNumber,
	}
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var r domain.Reservation
	err := row.Scan(
		&r.ID, &r.BookingID, &r.PassengerName, &r.PassengerEmail, &r.PhoneNum, &r.Passport, &r.TripType, &r.TravelClass,
		&r.Adults, &r.Children, &r.Infants, &r.Fare.BaseFare, &r.Fare.TripType, &r.Fare.TravelClass, &r.Fare.Meal,
		&r.PassengerCost, &r.TripTypeCost, &r.TravelClassCost, &r.MealCost, &r.BaggageCost, &r.TotalPrice,
		&r.FlightNo, &r.UserID, &r.Package.Seat, &r.Package.Meal, &r.Package.MealCost, &r.Package.BaggageWeight,
		&r.Package.FreeBaggageAllowance, &r.Package.ExcessBaggageWeight,
		&r.Status, &r.CheckedIn, &r.BoardingPassNumber, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	out := make([]domain.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
