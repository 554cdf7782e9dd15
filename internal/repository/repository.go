package repository

import (
	"context"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

// FlightRepository is the flight catalog. Lookups return domain.ErrNotFound
// when nothing matches and writes return domain.ErrConflict on a duplicate
// flight number.
type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	GetByFlightNo(ctx context.Context, flightNo string) (*domain.Flight, error)
	FindByRoute(ctx context.Context, origin, destination, weekday string) ([]domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id string) error
}

// ReservationFilter narrows List. Zero values match everything.
type ReservationFilter struct {
	PassengerEmail string
}

// ReservationRepository is the reservation ledger. Create and Update claim the
// reservation's seats on its flight and fail with domain.ErrSeatTaken when
// another live reservation holds one of them.
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error)
	ListActiveByFlight(ctx context.Context, flightNo string) ([]domain.Reservation, error)
	Update(ctx context.Context, r *domain.Reservation) error
	Cancel(ctx context.Context, id string) (*domain.Reservation, error)
	// CheckIn marks the reservation checked in with the given boarding pass
	// only if it is not checked in yet. It reports whether this call won.
	CheckIn(ctx context.Context, bookingID, boardingPass string) (bool, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}

// Repositories groups the stores the services need.
type Repositories struct {
	Flights      FlightRepository
	Reservations ReservationRepository
	Users        UserRepository
	close        func(context.Context) error
}

func (r *Repositories) Close(ctx context.Context) error {
	if r == nil || r.close == nil {
		return nil
	}
	return r.close(ctx)
}
