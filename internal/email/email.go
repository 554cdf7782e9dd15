package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

// Sender renders passenger notifications for reservation events. Delivery is
// a structured log line; no mail transport is configured.
type Sender struct {
	log *slog.Logger
}

func NewSender(log *slog.Logger) *Sender {
	if log == nil {
		log = slog.Default()
	}
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event domain.ReservationEvent) error {
	if event.Email == "" {
		return fmt.Errorf("event %s for %s has no recipient", event.Type, event.BookingID)
	}
	s.log.InfoContext(ctx, "send email",
		"to", event.Email,
		"subject", Subject(event),
		"flight", event.FlightNo,
		"seats", strings.Join(event.Seats, ", "),
	)
	return nil
}

func Subject(event domain.ReservationEvent) string {
	switch event.Type {
	case domain.EventReservationCreated:
		return fmt.Sprintf("Booking %s confirmed for flight %s", event.BookingID, event.FlightNo)
	case domain.EventReservationUpdated:
		return fmt.Sprintf("Booking %s updated", event.BookingID)
	case domain.EventReservationCancelled:
		return fmt.Sprintf("Booking %s cancelled", event.BookingID)
	case domain.EventPassengerCheckedIn:
		return fmt.Sprintf("You are checked in for flight %s", event.FlightNo)
	default:
		return fmt.Sprintf("Booking %s: %s", event.BookingID, event.Type)
	}
}
