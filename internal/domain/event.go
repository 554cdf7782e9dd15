package domain

import "time"

const (
	EventReservationCreated   = "reservation_created"
	EventReservationUpdated   = "reservation_updated"
	EventReservationCancelled = "reservation_cancelled"
	EventPassengerCheckedIn   = "passenger_checked_in"
)

// ReservationEvent is published on every reservation lifecycle change.
type ReservationEvent struct {
	Type       string            `json:"type"`
	BookingID  string            `json:"bookingId"`
	FlightNo   string            `json:"flightNo"`
	Seats      []string          `json:"seats"`
	Email      string            `json:"email"`
	Passenger  string            `json:"passenger"`
	Status     ReservationStatus `json:"status"`
	TotalPrice float64           `json:"totalPrice"`
	OccurredAt time.Time         `json:"occurredAt"`
}

func NewReservationEvent(eventType string, r *Reservation) ReservationEvent {
	return ReservationEvent{
		Type:       eventType,
		BookingID:  r.BookingID,
		FlightNo:   r.FlightNo,
		Seats:      r.Package.Seats(),
		Email:      r.PassengerEmail,
		Passenger:  r.PassengerName,
		Status:     r.Status,
		TotalPrice: r.TotalPrice,
		OccurredAt: time.Now().UTC(),
	}
}
