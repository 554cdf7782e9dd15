// Package boardingpass renders boarding passes as single-page PDFs with a QR
// code that encodes the booking and boarding pass numbers.
package boardingpass

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

const ContentType = "application/pdf"

var ErrNotCheckedIn = errors.New("reservation is not checked in")

// Filename is the download name for a booking's pass.
func Filename(bookingID string) string {
	return "boarding-pass-" + bookingID + ".pdf"
}

// Payload is the string encoded in the QR code.
func Payload(r *domain.Reservation) string {
	return fmt.Sprintf("bkg=%s&bp=%s&flt=%s&seat=%s", r.BookingID, r.BoardingPassNumber, r.FlightNo, r.Package.Seat)
}

// Render writes the PDF for r to w. flight may be nil when the flight record
// no longer exists; the schedule fields are then left blank.
func Render(w io.Writer, r *domain.Reservation, flight *domain.Flight) error {
	if r == nil || !r.CheckedIn || r.BoardingPassNumber == "" {
		return ErrNotCheckedIn
	}

	qr, err := qrcode.Encode(Payload(r), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.New("L", "mm", "A5", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle("Boarding pass "+r.BookingID, false)
	pdf.SetCreationDate(time.Now().UTC())
	pdf.AddPage()

	pdf.SetFillColor(20, 60, 120)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 14, "BOARDING PASS", "", 1, "C", true, 0, "")
	pdf.Ln(6)

	pdf.SetTextColor(0, 0, 0)
	row := func(label, value string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(45, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(80, 8, value, "", 1, "L", false, 0, "")
	}

	seat := r.Package.Seat
	if seat == "" {
		seat = "Not assigned"
	}
	row("Passenger", r.PassengerName)
	row("Booking ID", r.BookingID)
	row("Boarding pass", r.BoardingPassNumber)
	row("Flight", r.FlightNo)
	row("Seat", seat)
	row("Class", r.TravelClass)
	if flight != nil {
		row("Airline", flight.Airline)
		row("From", flight.Origin)
		row("To", flight.Destination)
		row("Departs", flight.DepartureDay+" "+flight.DepartureTime)
		row("Arrives", flight.ArrivalDay+" "+flight.ArrivalTime)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 145, 35, 45, 45, false, opts, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
