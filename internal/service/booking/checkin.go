package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

const (
	CheckInSuccessMessage   = "Check-in successful!"
	AlreadyCheckedInMessage = "Passenger already checked in."
	SeatNotAssigned         = "Not assigned"
)

var (
	ErrCheckInFieldsMissing = &domain.ValidationError{Fields: map[string]string{
		"bookingId": "is required",
		"lastName":  "is required",
	}}
	ErrLastNameMismatch = errors.New("last name does not match")
)

type CheckInResult struct {
	Message            string `json:"message"`
	BookingID          string `json:"bookingId"`
	Seat               string `json:"seat"`
	BoardingPassNumber string `json:"boardingPassNumber"`
}

// CheckIn issues a boarding pass once per reservation. Repeating it returns
// the pass issued the first time.
func (s *BookingService) CheckIn(ctx context.Context, bookingID, lastName string) (*CheckInResult, error) {
	r, err := s.verifyPassenger(ctx, bookingID, lastName)
	if err != nil {
		return nil, err
	}
	if r.CheckedIn {
		return checkInResult(r, AlreadyCheckedInMessage), nil
	}

	bp := NewBoardingPassNumber()
	won, err := s.reservations.CheckIn(ctx, r.BookingID, bp)
	if err != nil {
		s.audit.Error("Check-in for %s failed: %v", r.BookingID, err)
		return nil, err
	}
	if !won {
		// Someone else checked in (or cancelled) between the read and the write.
		if r, err = s.reservations.GetByBookingID(ctx, r.BookingID); err != nil {
			return nil, err
		}
		if r.Cancelled() {
			return nil, domain.ErrCancelled
		}
		return checkInResult(r, AlreadyCheckedInMessage), nil
	}

	r.CheckedIn = true
	r.BoardingPassNumber = bp
	s.audit.Action("Passenger checked in for %s with boarding pass %s", r.BookingID, bp)
	s.publish(ctx, domain.EventPassengerCheckedIn, r)
	return checkInResult(r, CheckInSuccessMessage), nil
}

// verifyPassenger applies the check-in preconditions in order: both fields
// present, reservation exists, not cancelled, last name matches.
func (s *BookingService) verifyPassenger(ctx context.Context, bookingID, lastName string) (*domain.Reservation, error) {
	bookingID = strings.TrimSpace(bookingID)
	lastName = strings.ToLower(strings.TrimSpace(lastName))
	if bookingID == "" || lastName == "" {
		return nil, ErrCheckInFieldsMissing
	}

	r, err := s.reservations.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if r.Cancelled() {
		return nil, domain.ErrCancelled
	}
	if r.LastName() != lastName {
		return nil, errors.Join(ErrLastNameMismatch, domain.ErrForbidden)
	}
	return r, nil
}

func checkInResult(r *domain.Reservation, message string) *CheckInResult {
	seat := r.Package.Seat
	if strings.TrimSpace(seat) == "" {
		seat = SeatNotAssigned
	}
	return &CheckInResult{
		Message:            message,
		BookingID:          r.BookingID,
		Seat:               seat,
		BoardingPassNumber: r.BoardingPassNumber,
	}
}

// BoardingPass is what the boarding pass document is rendered from. Flight is
// nil when the flight has since been deleted.
type BoardingPass struct {
	Reservation *domain.Reservation
	Flight      *domain.Flight
}

// BoardingPass returns the data for a checked-in passenger's boarding pass.
func (s *BookingService) BoardingPass(ctx context.Context, bookingID, lastName string) (*BoardingPass, error) {
	r, err := s.verifyPassenger(ctx, bookingID, lastName)
	if err != nil {
		return nil, err
	}
	if !r.CheckedIn {
		return nil, domain.NewValidationError("bookingId", "passenger has not checked in yet")
	}
	flight, err := s.lookupFlight(ctx, r.FlightNo)
	if err != nil {
		return nil, err
	}
	return &BoardingPass{Reservation: r, Flight: flight}, nil
}
