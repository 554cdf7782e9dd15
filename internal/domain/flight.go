package domain

import (
	"strings"
	"time"
)

type Flight struct {
	ID            string    `json:"id" bson:"_id"`
	FlightNo      string    `json:"flightNo" bson:"flightNo"`
	Airline       string    `json:"airline" bson:"airline"`
	Origin        string    `json:"origin" bson:"origin"`
	Destination   string    `json:"destination" bson:"destination"`
	DepartureDay  string    `json:"departureDay" bson:"departureDay"`
	DepartureTime string    `json:"departureTime" bson:"departureTime"`
	ArrivalDay    string    `json:"arrivalDay" bson:"arrivalDay"`
	ArrivalTime   string    `json:"arrivalTime" bson:"arrivalTime"`
	AircraftType  string    `json:"aircraftType" bson:"aircraftType"`
	SeatCap       int       `json:"seatCap" bson:"seatCap"`
	Price         float64   `json:"price" bson:"price"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NormalizeFlightNo trims and uppercases a flight number the way it is stored.
func NormalizeFlightNo(no string) string {
	return strings.ToUpper(strings.TrimSpace(no))
}

// Weekdays lists weekday names in time.Weekday order.
var Weekdays = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func IsWeekday(name string) bool {
	for _, d := range Weekdays {
		if d == name {
			return true
		}
	}
	return false
}

// DateLayout is the calendar date format accepted by flight search.
const DateLayout = "2006-01-02"

// WeekdayOf parses a YYYY-MM-DD date and returns its weekday name.
func WeekdayOf(date string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return "", err
	}
	return Weekdays[t.Weekday()], nil
}
