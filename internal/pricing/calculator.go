// Package pricing computes reservation costs. Everything here is pure so it
// can be exercised without a store.
package pricing

import (
	"math"
	"strconv"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

// DefaultExcessBaggageRate is the surcharge per kg above the free allowance.
const DefaultExcessBaggageRate = 500

// Passengers holds the head counts of a booking.
type Passengers struct {
	Adults   int
	Children int
	Infants  int
}

// Total returns the number of travellers, never less than one.
func (p Passengers) Total() int {
	n := nonNegative(p.Adults) + nonNegative(p.Children) + nonNegative(p.Infants)
	if n < 1 {
		return 1
	}
	return n
}

// Input is everything the calculator needs.
type Input struct {
	Passengers    Passengers
	Fare          domain.Fare
	BaggageWeight float64
	ExcessRate    float64
}

// Quote is an itemised price.
type Quote struct {
	Passengers          int     `json:"passengers"`
	PerPassenger        float64 `json:"perPassenger"`
	BaseFareTotal       float64 `json:"baseFareTotal"`
	TripTypeTotal       float64 `json:"tripTypeTotal"`
	TravelClassTotal    float64 `json:"travelClassTotal"`
	MealTotal           float64 `json:"mealTotal"`
	PassengerTotal      float64 `json:"passengerTotal"`
	ExcessBaggageWeight float64 `json:"excessBaggageWeight"`
	BaggageCost         float64 `json:"baggageCost"`
	Total               float64 `json:"total"`
}

func Calculate(in Input) Quote {
	n := in.Passengers.Total()
	count := float64(n)

	perPassenger := in.Fare.BaseFare + in.Fare.TripType + in.Fare.TravelClass + in.Fare.Meal
	excess := ExcessBaggage(in.BaggageWeight)
	baggage := BaggageSurcharge(in.BaggageWeight, in.ExcessRate)
	passengerTotal := perPassenger * count

	return Quote{
		Passengers:          n,
		PerPassenger:        perPassenger,
		BaseFareTotal:       in.Fare.BaseFare * count,
		TripTypeTotal:       in.Fare.TripType * count,
		TravelClassTotal:    in.Fare.TravelClass * count,
		MealTotal:           in.Fare.Meal * count,
		PassengerTotal:      passengerTotal,
		ExcessBaggageWeight: excess,
		BaggageCost:         baggage,
		Total:               passengerTotal + baggage,
	}
}

// ExcessBaggage returns the weight above the free allowance.
func ExcessBaggage(weight float64) float64 {
	return math.Max(0, weight-domain.FreeBaggageAllowance)
}

// BaggageSurcharge rounds excess weight times rate to the nearest unit.
func BaggageSurcharge(weight, rate float64) float64 {
	return math.Round(ExcessBaggage(weight) * rate)
}

// StandardMeal is the label used for the included meal and for unknown selections.
const StandardMeal = "Standard (included)"

var mealLabels = map[string]string{
	"0":   StandardMeal,
	"200": "Vegetarian",
	"250": "Vegan",
	"300": "Halal",
	"350": "Kosher",
}

// Meal maps a submitted meal value to its label and per-passenger cost.
// Unknown values fall back to the standard meal at no cost.
func Meal(value string) (string, float64) {
	v := strings.TrimSpace(value)
	label, ok := mealLabels[v]
	if !ok {
		return StandardMeal, 0
	}
	cost, _ := strconv.ParseFloat(v, 64)
	return label, cost
}

// MealValue is the inverse of Meal for a stored label.
func MealValue(label string) string {
	for v, l := range mealLabels {
		if l == label {
			return v
		}
	}
	return "0"
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
