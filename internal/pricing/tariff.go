package pricing

import (
	"fmt"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

// Tariff turns a flight and the passenger's choices into per-passenger unit costs.
type Tariff struct {
	ExcessRate  float64
	TripType    map[string]float64
	TravelClass map[string]float64
}

func NewTariff(excessRate float64, tripType, travelClass map[string]float64) *Tariff {
	if excessRate <= 0 {
		excessRate = DefaultExcessBaggageRate
	}
	return &Tariff{ExcessRate: excessRate, TripType: tripType, TravelClass: travelClass}
}

// Selection is what the passenger picked on the booking form.
type Selection struct {
	TripType    string
	TravelClass string
	Meal        string
}

// Fare resolves the unit costs for a selection. Unknown trip types or travel
// classes are rejected; unknown meals fall back to the standard meal.
func (t *Tariff) Fare(flight *domain.Flight, sel Selection) (domain.Fare, string, error) {
	trip, ok := t.TripType[sel.TripType]
	if !ok {
		return domain.Fare{}, "", domain.NewValidationError("tripType", fmt.Sprintf("unknown trip type %q", sel.TripType))
	}
	class, ok := t.TravelClass[sel.TravelClass]
	if !ok {
		return domain.Fare{}, "", domain.NewValidationError("travelClass", fmt.Sprintf("unknown travel class %q", sel.TravelClass))
	}
	mealLabel, mealCost := Meal(sel.Meal)

	return domain.Fare{
		BaseFare:    flight.Price,
		TripType:    trip,
		TravelClass: class,
		Meal:        mealCost,
	}, mealLabel, nil
}

// Quote prices a booking with this tariff's baggage rate.
func (t *Tariff) Quote(p Passengers, fare domain.Fare, baggage float64) Quote {
	return Calculate(Input{Passengers: p, Fare: fare, BaggageWeight: baggage, ExcessRate: t.ExcessRate})
}
