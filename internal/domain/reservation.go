package domain

import (
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "Pending"
	ReservationStatusConfirmed ReservationStatus = "Confirmed"
	ReservationStatusCancelled ReservationStatus = "Cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCancelled:
		return true
	}
	return false
}

const (
	TripTypeRoundTrip = "Round-trip"
	TripTypeOneWay    = "One-way"

	TravelClassEconomy        = "Economy"
	TravelClassPremiumEconomy = "Premium Economy"
	TravelClassBusiness       = "Business"
	TravelClassFirst          = "First Class"
)

// FreeBaggageAllowance is the per-booking baggage weight in kg carried without surcharge.
const FreeBaggageAllowance = 20

// Package is the seat, meal and baggage selection embedded in a reservation.
type Package struct {
	Seat                 string  `json:"seat" bson:"seat"`
	Meal                 string  `json:"meal" bson:"meal"`
	MealCost             float64 `json:"mealCost" bson:"mealCost"`
	BaggageWeight        float64 `json:"baggageWeight" bson:"baggageWeight"`
	FreeBaggageAllowance float64 `json:"freeBaggageAllowance" bson:"freeBaggageAllowance"`
	ExcessBaggageWeight  float64 `json:"excessBaggageWeight" bson:"excessBaggageWeight"`
}

// Seats splits the seat designator into individual seat codes.
func (p Package) Seats() []string {
	return SplitSeats(p.Seat)
}

// Fare holds the per-passenger unit costs a reservation was priced with.
type Fare struct {
	BaseFare    float64 `json:"baseFare" bson:"baseFare"`
	TripType    float64 `json:"tripType" bson:"tripType"`
	TravelClass float64 `json:"travelClass" bson:"travelClass"`
	Meal        float64 `json:"meal" bson:"meal"`
}

type Reservation struct {
	ID                 string            `json:"id" bson:"_id"`
	BookingID          string            `json:"bookingId" bson:"bookingId"`
	PassengerName      string            `json:"passengerName" bson:"passengerName"`
	PassengerEmail     string            `json:"passengerEmail" bson:"passengerEmail"`
	PhoneNum           string            `json:"phoneNum" bson:"phoneNum"`
	Passport           string            `json:"passport,omitempty" bson:"passport,omitempty"`
	TripType           string            `json:"tripType" bson:"tripType"`
	TravelClass        string            `json:"travelClass" bson:"travelClass"`
	Adults             int               `json:"adults" bson:"adults"`
	Children           int               `json:"children" bson:"children"`
	Infants            int               `json:"infants" bson:"infants"`
	Fare               Fare              `json:"fare" bson:"fare"`
	PassengerCost      float64           `json:"passengerCost" bson:"passengerCost"`
	TripTypeCost       float64           `json:"tripTypeCost" bson:"tripTypeCost"`
	TravelClassCost    float64           `json:"travelClassCost" bson:"travelClassCost"`
	MealCost           float64           `json:"mealCost" bson:"mealCost"`
	BaggageCost        float64           `json:"baggageCost" bson:"baggageCost"`
	TotalPrice         float64           `json:"totalPrice" bson:"totalPrice"`
	FlightNo           string            `json:"flight" bson:"flight"`
	UserID             string            `json:"userId,omitempty" bson:"userId,omitempty"`
	Package            Package           `json:"package" bson:"package"`
	Status             ReservationStatus `json:"status" bson:"status"`
	CheckedIn          bool              `json:"checkedIn" bson:"checkedIn"`
	BoardingPassNumber string            `json:"boardingPassNumber,omitempty" bson:"boardingPassNumber,omitempty"`
	CreatedAt          time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt" bson:"updatedAt"`
}

func (r *Reservation) Cancelled() bool {
	return r.Status == ReservationStatusCancelled
}

// LastName returns the last whitespace-separated word of the passenger name, lowercased.
func (r *Reservation) LastName() string {
	parts := strings.Fields(r.PassengerName)
	if len(parts) == 0 {
		return ""
	}
	return strings.ToLower(parts[len(parts)-1])
}

// SplitSeats turns a stored seat designator such as "EA11, EA12" into its seat codes.
// Blank entries are dropped.
func SplitSeats(designator string) []string {
	if strings.TrimSpace(designator) == "" {
		return nil
	}
	parts := strings.Split(designator, ",")
	seats := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			seats = append(seats, s)
		}
	}
	return seats
}

// JoinSeats is the inverse of SplitSeats.
func JoinSeats(seats []string) string {
	return strings.Join(seats, ", ")
}
