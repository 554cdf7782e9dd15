package boardingpass

import (
	"bytes"
	"testing"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkedIn() *domain.Reservation {
	return &domain.Reservation{
		BookingID:          "BKG-1A2B3C4D5E",
		PassengerName:      "Jane Doe",
		FlightNo:           "FD101",
		TravelClass:        domain.TravelClassEconomy,
		Package:            domain.Package{Seat: "12A"},
		CheckedIn:          true,
		BoardingPassNumber: "BP-AB12CD",
	}
}

func TestRender(t *testing.T) {
	flight := &domain.Flight{
		FlightNo: "FD101", Airline: "FlightDesk Air", Origin: "JFK", Destination: "LAX",
		DepartureDay: "Monday", DepartureTime: "08:30", ArrivalDay: "Monday", ArrivalTime: "11:45",
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, checkedIn(), flight))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRender_WithoutFlight(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, checkedIn(), nil))
	assert.NotZero(t, buf.Len())
}

func TestRender_NotCheckedIn(t *testing.T) {
	r := checkedIn()
	r.CheckedIn = false

	var buf bytes.Buffer
	assert.ErrorIs(t, Render(&buf, r, nil), ErrNotCheckedIn)
	assert.Zero(t, buf.Len())
}

func TestPayloadAndFilename(t *testing.T) {
	assert.Equal(t, "bkg=BKG-1A2B3C4D5E&bp=BP-AB12CD&flt=FD101&seat=12A", Payload(checkedIn()))
	assert.Equal(t, "boarding-pass-BKG-1A2B3C4D5E.pdf", Filename("BKG-1A2B3C4D5E"))
}
