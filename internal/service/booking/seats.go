package booking

import (
	"context"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

// ReservedSeats flattens the seat designators of live reservations into a
// de-duplicated list in first-seen order. The reservation with ID excludeID
// is skipped, so an edit does not collide with its own seats.
func ReservedSeats(reservations []domain.Reservation, excludeID string) []string {
	seen := map[string]struct{}{}
	seats := make([]string, 0)
	for i := range reservations {
		r := &reservations[i]
		if r.Cancelled() || (excludeID != "" && r.ID == excludeID) {
			continue
		}
		for _, seat := range r.Package.Seats() {
			if _, ok := seen[seat]; ok {
				continue
			}
			seen[seat] = struct{}{}
			seats = append(seats, seat)
		}
	}
	return seats
}

// OccupiedSeats returns the seats already held on flightNo by reservations
// other than excludeID.
func (s *BookingService) OccupiedSeats(ctx context.Context, flightNo, excludeID string) ([]string, error) {
	if flightNo == "" {
		return []string{}, nil
	}
	reservations, err := s.reservations.ListActiveByFlight(ctx, flightNo)
	if err != nil {
		return nil, err
	}
	return ReservedSeats(reservations, excludeID), nil
}

// normalizeSeats uppercases and de-duplicates a seat designator.
func normalizeSeats(designator string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, seat := range domain.SplitSeats(designator) {
		seat = strings.ToUpper(seat)
		if _, ok := seen[seat]; ok {
			continue
		}
		seen[seat] = struct{}{}
		out = append(out, seat)
	}
	return out
}

// firstTaken returns the first of wanted already present in taken.
func firstTaken(wanted, taken []string) (string, bool) {
	set := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		set[strings.ToUpper(t)] = struct{}{}
	}
	for _, w := range wanted {
		if _, ok := set[w]; ok {
			return w, true
		}
	}
	return "", false
}
