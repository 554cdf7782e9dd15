package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logger"
	"github.com/Domenick1991/flightdesk/internal/pricing"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/Domenick1991/flightdesk/internal/validation"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	BookingForm(ctx context.Context, departFlightNo, returnFlightNo string) (*BookingForm, error)
	Book(ctx context.Context, actor *domain.User, in BookInput) (*domain.Reservation, error)
	List(ctx context.Context, actor *domain.User) ([]ReservationView, error)
	EditView(ctx context.Context, actor *domain.User, id string) (*EditView, error)
	Update(ctx context.Context, actor *domain.User, id string, in UpdateInput) (*domain.Reservation, error)
	Cancel(ctx context.Context, actor *domain.User, id string) (*domain.Reservation, error)
	OccupiedSeats(ctx context.Context, flightNo, excludeID string) ([]string, error)
	CheckIn(ctx context.Context, bookingID, lastName string) (*CheckInResult, error)
	BoardingPass(ctx context.Context, bookingID, lastName string) (*BoardingPass, error)
}

// SeatLocker places short-lived holds on seats while a booking is written.
type SeatLocker interface {
	AcquireSeatLock(ctx context.Context, flightNo, seat, owner string, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, flightNo, seat, owner string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type BookingService struct {
	reservations repository.ReservationRepository
	flights      repository.FlightRepository
	tariff       *pricing.Tariff
	locker       SeatLocker
	producer     Producer
	audit        *logger.Audit
	log          *slog.Logger
	topic        string
	holdTTL      time.Duration
	publishTries int
}

type BookingServiceOption func(*BookingService)

func WithSeatLocker(locker SeatLocker, holdTTL time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.locker = locker
		s.holdTTL = holdTTL
	}
}

func WithProducer(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithAudit(audit *logger.Audit) BookingServiceOption {
	return func(s *BookingService) {
		s.audit = audit
	}
}

func WithLogger(log *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(
	reservations repository.ReservationRepository,
	flights repository.FlightRepository,
	tariff *pricing.Tariff,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		reservations: reservations,
		flights:      flights,
		tariff:       tariff,
		log:          slog.Default(),
		holdTTL:      30 * time.Second,
		publishTries: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.audit == nil {
		s.audit = logger.NopAudit()
	}
	return s
}

// BookingForm is the data behind the booking page.
type BookingForm struct {
	Flights        []domain.Flight    `json:"flights"`
	SelectedDepart *domain.Flight     `json:"selectedDepart"`
	SelectedReturn *domain.Flight     `json:"selectedReturn"`
	ReservedSeats  []string           `json:"reservedSeats"`
	TripTypes      map[string]float64 `json:"tripTypes"`
	TravelClasses  map[string]float64 `json:"travelClasses"`
}

func (s *BookingService) BookingForm(ctx context.Context, departFlightNo, returnFlightNo string) (*BookingForm, error) {
	flights, err := s.flights.List(ctx)
	if err != nil {
		return nil, err
	}
	form := &BookingForm{
		Flights:        flights,
		SelectedDepart: findFlight(flights, departFlightNo),
		SelectedReturn: findFlight(flights, returnFlightNo),
		ReservedSeats:  []string{},
		TripTypes:      s.tariff.TripType,
		TravelClasses:  s.tariff.TravelClass,
	}
	if form.SelectedDepart != nil {
		if form.ReservedSeats, err = s.OccupiedSeats(ctx, form.SelectedDepart.FlightNo, ""); err != nil {
			return nil, err
		}
	}
	return form, nil
}

// BookInput is the booking form. Prices are always computed server side.
type BookInput struct {
	PassengerName  string  `json:"passengerName" form:"passengerName" validate:"required"`
	PassengerEmail string  `json:"passengerEmail" form:"passengerEmail" validate:"required,email"`
	PhoneNum       string  `json:"phoneNum" form:"phoneNum" validate:"required"`
	Passport       string  `json:"passport" form:"passport"`
	FlightNo       string  `json:"flightNo" form:"flightNo" validate:"required"`
	Seat           string  `json:"seat" form:"seat"`
	Meal           string  `json:"meal" form:"meal"`
	BaggageWeight  float64 `json:"baggage" form:"baggage" validate:"gte=0"`
	TripType       string  `json:"tripType" form:"tripType"`
	TravelClass    string  `json:"travelClass" form:"travelClass"`
	Adults         int     `json:"adults" form:"adults" validate:"gte=0"`
	Children       int     `json:"children" form:"children" validate:"gte=0"`
	Infants        int     `json:"infants" form:"infants" validate:"gte=0"`
}

func (in BookInput) normalized(actor *domain.User) BookInput {
	in.PassengerName = strings.Join(strings.Fields(in.PassengerName), " ")
	in.PassengerEmail = strings.ToLower(strings.TrimSpace(in.PassengerEmail))
	if in.PassengerEmail == "" && actor != nil {
		in.PassengerEmail = actor.Email
	}
	in.PhoneNum = strings.TrimSpace(in.PhoneNum)
	in.Passport = strings.TrimSpace(in.Passport)
	in.FlightNo = domain.NormalizeFlightNo(in.FlightNo)
	if strings.TrimSpace(in.TripType) == "" {
		in.TripType = domain.TripTypeRoundTrip
	}
	if strings.TrimSpace(in.TravelClass) == "" {
		in.TravelClass = domain.TravelClassEconomy
	}
	return in
}

func (s *BookingService) Book(ctx context.Context, actor *domain.User, in BookInput) (*domain.Reservation, error) {
	in = in.normalized(actor)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	flight, err := s.lookupFlight(ctx, in.FlightNo)
	if err != nil {
		return nil, err
	}
	if flight == nil {
		return nil, domain.NewValidationError("flightNo", fmt.Sprintf("flight %s does not exist", in.FlightNo))
	}

	fare, mealLabel, err := s.tariff.Fare(flight, pricing.Selection{TripType: in.TripType, TravelClass: in.TravelClass, Meal: in.Meal})
	if err != nil {
		return nil, err
	}

	seats := normalizeSeats(in.Seat)
	if err := s.checkSeats(ctx, flight, seats, ""); err != nil {
		return nil, err
	}

	r := &domain.Reservation{
		ID:             uuid.NewString(),
		PassengerName:  in.PassengerName,
		PassengerEmail: in.PassengerEmail,
		PhoneNum:       in.PhoneNum,
		Passport:       in.Passport,
		TripType:       in.TripType,
		TravelClass:    in.TravelClass,
		Adults:         max(in.Adults, 0),
		Children:       max(in.Children, 0),
		Infants:        max(in.Infants, 0),
		Fare:           fare,
		FlightNo:       flight.FlightNo,
		Package:        domain.Package{Seat: domain.JoinSeats(seats)},
		Status:         domain.ReservationStatusConfirmed,
	}
	if actor != nil {
		r.UserID = actor.ID
	}
	s.price(r, mealLabel, in.BaggageWeight)

	release, err := s.holdSeats(ctx, r.FlightNo, seats, r.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.createWithFreshBookingID(ctx, r); err != nil {
		s.audit.Error("Booking on flight %s for %s failed: %v", r.FlightNo, r.PassengerEmail, err)
		return nil, err
	}

	s.audit.Action("Reservation %s created on flight %s seats [%s]", r.BookingID, r.FlightNo, r.Package.Seat)
	s.publish(ctx, domain.EventReservationCreated, r)
	return r, nil
}

// createWithFreshBookingID retries on a booking ID collision, never on a seat conflict.
func (s *BookingService) createWithFreshBookingID(ctx context.Context, r *domain.Reservation) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		r.BookingID = NewBookingID()
		err = s.reservations.Create(ctx, r)
		if err == nil || errors.Is(err, domain.ErrSeatTaken) || !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return err
}

// ReservationView pairs a reservation with its flight, which is nil once the
// flight has been deleted.
type ReservationView struct {
	domain.Reservation
	FlightDetails *domain.Flight `json:"flightDetails"`
}

// List returns every reservation for admins and the actor's own otherwise.
func (s *BookingService) List(ctx context.Context, actor *domain.User) ([]ReservationView, error) {
	filter := repository.ReservationFilter{}
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.IsAdmin {
		filter.PassengerEmail = strings.ToLower(actor.Email)
	}

	reservations, err := s.reservations.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	flights, err := s.flights.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ReservationView, 0, len(reservations))
	for _, r := range reservations {
		views = append(views, ReservationView{Reservation: r, FlightDetails: findFlight(flights, r.FlightNo)})
	}
	return views, nil
}

type EditView struct {
	Reservation   *domain.Reservation `json:"reservation"`
	Flight        *domain.Flight      `json:"flight"`
	ReservedSeats []string            `json:"reservedSeats"`
	MealValue     string              `json:"mealValue"`
}

func (s *BookingService) EditView(ctx context.Context, actor *domain.User, id string) (*EditView, error) {
	r, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	flight, err := s.lookupFlight(ctx, r.FlightNo)
	if err != nil {
		return nil, err
	}
	seats, err := s.OccupiedSeats(ctx, r.FlightNo, r.ID)
	if err != nil {
		return nil, err
	}
	return &EditView{
		Reservation:   r,
		Flight:        flight,
		ReservedSeats: seats,
		MealValue:     pricing.MealValue(r.Package.Meal),
	}, nil
}

// UpdateInput is the edit form. Blank or absent fields keep their stored value.
// Meal accepts either the meal value ("250") or its label ("Vegan").
type UpdateInput struct {
	Seat          string   `json:"seat" form:"seat"`
	Meal          string   `json:"meal" form:"meal"`
	BaggageWeight *float64 `json:"baggage" form:"baggage" validate:"omitempty,gte=0"`
	Status        string   `json:"status" form:"status"`
}

func (s *BookingService) Update(ctx context.Context, actor *domain.User, id string, in UpdateInput) (*domain.Reservation, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	r, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	status := r.Status
	if v := strings.TrimSpace(in.Status); v != "" {
		status = domain.ReservationStatus(v)
		if !status.Valid() {
			return nil, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", v))
		}
	}

	seats := r.Package.Seats()
	if strings.TrimSpace(in.Seat) != "" {
		seats = normalizeSeats(in.Seat)
	}
	if status != domain.ReservationStatusCancelled {
		flight, err := s.lookupFlight(ctx, r.FlightNo)
		if err != nil {
			return nil, err
		}
		if err := s.checkSeats(ctx, flight, seats, r.ID); err != nil {
			return nil, err
		}
	}

	added := newSeats(r.Package.Seats(), seats)
	release, err := s.holdSeats(ctx, r.FlightNo, added, r.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	baggage := r.Package.BaggageWeight
	if in.BaggageWeight != nil {
		baggage = *in.BaggageWeight
	}
	mealLabel, mealCost := pricing.Meal(mealValueOf(in.Meal, r.Package.Meal))
	r.Fare.Meal = mealCost
	r.Package.Seat = domain.JoinSeats(seats)
	r.Status = status
	s.price(r, mealLabel, baggage)

	if err := s.reservations.Update(ctx, r); err != nil {
		s.audit.Error("Updating reservation %s failed: %v", r.BookingID, err)
		return nil, err
	}

	s.audit.Action("Reservation %s updated by %s", r.BookingID, actor.Email)
	s.publish(ctx, domain.EventReservationUpdated, r)
	return r, nil
}

// Cancel soft-deletes the reservation and frees its seats.
func (s *BookingService) Cancel(ctx context.Context, actor *domain.User, id string) (*domain.Reservation, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	r, err := s.reservations.Cancel(ctx, id)
	if err != nil {
		s.audit.Error("Cancelling reservation %s failed: %v", id, err)
		return nil, err
	}

	s.audit.Action("Reservation %s cancelled by %s", r.BookingID, actor.Email)
	s.publish(ctx, domain.EventReservationCancelled, r)
	return r, nil
}

// owned loads a reservation the actor may act on: admins may act on any,
// users only on those they booked or that carry their email.
func (s *BookingService) owned(ctx context.Context, actor *domain.User, id string) (*domain.Reservation, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin || (r.UserID != "" && r.UserID == actor.ID) || strings.EqualFold(r.PassengerEmail, actor.Email) {
		return r, nil
	}
	return nil, domain.ErrForbidden
}

// lookupFlight resolves a weak flight reference; a missing flight is nil, nil.
func (s *BookingService) lookupFlight(ctx context.Context, flightNo string) (*domain.Flight, error) {
	if flightNo == "" {
		return nil, nil
	}
	f, err := s.flights.GetByFlightNo(ctx, flightNo)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return f, err
}

// checkSeats rejects seats already held by another reservation and seat sets
// that would overfill the aircraft.
func (s *BookingService) checkSeats(ctx context.Context, flight *domain.Flight, seats []string, excludeID string) error {
	if len(seats) == 0 || flight == nil {
		return nil
	}
	taken, err := s.OccupiedSeats(ctx, flight.FlightNo, excludeID)
	if err != nil {
		return err
	}
	if seat, ok := firstTaken(seats, taken); ok {
		return fmt.Errorf("seat %s on %s: %w", seat, flight.FlightNo, domain.ErrSeatTaken)
	}
	if flight.SeatCap > 0 && len(taken)+len(seats) > flight.SeatCap {
		return fmt.Errorf("flight %s has %d seats left: %w", flight.FlightNo, max(flight.SeatCap-len(taken), 0), domain.ErrConflict)
	}
	return nil
}

// holdSeats takes a Redis hold on each seat. The returned func releases them.
func (s *BookingService) holdSeats(ctx context.Context, flightNo string, seats []string, owner string) (func(), error) {
	if s.locker == nil || len(seats) == 0 {
		return func() {}, nil
	}

	held := make([]string, 0, len(seats))
	release := func() {
		for _, seat := range held {
			if err := s.locker.ReleaseSeatLock(context.WithoutCancel(ctx), flightNo, seat, owner); err != nil {
				s.log.WarnContext(ctx, "seat hold release failed", "flight", flightNo, "seat", seat, "error", err)
			}
		}
	}
	for _, seat := range seats {
		ok, err := s.locker.AcquireSeatLock(ctx, flightNo, seat, owner, s.holdTTL)
		if err != nil {
			release()
			return nil, fmt.Errorf("hold seat %s: %w", seat, err)
		}
		if !ok {
			release()
			return nil, fmt.Errorf("seat %s on %s is being booked: %w", seat, flightNo, domain.ErrSeatTaken)
		}
		held = append(held, seat)
	}
	return release, nil
}

func (s *BookingService) price(r *domain.Reservation, mealLabel string, baggage float64) {
	q := s.tariff.Quote(pricing.Passengers{Adults: r.Adults, Children: r.Children, Infants: r.Infants}, r.Fare, baggage)

	r.PassengerCost = q.PassengerTotal
	r.TripTypeCost = q.TripTypeTotal
	r.TravelClassCost = q.TravelClassTotal
	r.MealCost = q.MealTotal
	r.BaggageCost = q.BaggageCost
	r.TotalPrice = q.Total
	r.Package.Meal = mealLabel
	r.Package.MealCost = r.Fare.Meal
	r.Package.BaggageWeight = max(baggage, 0)
	r.Package.FreeBaggageAllowance = domain.FreeBaggageAllowance
	r.Package.ExcessBaggageWeight = q.ExcessBaggageWeight
}

// publish is best effort: failures are retried briefly, then logged.
func (s *BookingService) publish(ctx context.Context, eventType string, r *domain.Reservation) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := domain.NewReservationEvent(eventType, r)

	var err error
	for attempt := 1; attempt <= s.publishTries; attempt++ {
		if err = s.producer.Publish(ctx, s.topic, r.BookingID, event); err == nil {
			return
		}
		if attempt == s.publishTries {
			break
		}
		select {
		case <-ctx.Done():
			s.log.WarnContext(ctx, "reservation event dropped", "type", eventType, "booking", r.BookingID, "error", err)
			return
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	s.log.WarnContext(ctx, "failed to publish reservation event", "type", eventType, "booking", r.BookingID, "error", err)
}

func findFlight(flights []domain.Flight, flightNo string) *domain.Flight {
	no := domain.NormalizeFlightNo(flightNo)
	if no == "" {
		return nil
	}
	for i := range flights {
		if flights[i].FlightNo == no {
			f := flights[i]
			return &f
		}
	}
	return nil
}

// mealValueOf resolves the edit form's meal field, falling back to the
// currently stored label.
func mealValueOf(input, current string) string {
	v := strings.TrimSpace(input)
	if v == "" {
		return pricing.MealValue(current)
	}
	if _, cost := pricing.Meal(v); cost > 0 || v == "0" {
		return v
	}
	return pricing.MealValue(v)
}

// newSeats returns the seats in next that are not in prev.
func newSeats(prev, next []string) []string {
	had := make(map[string]struct{}, len(prev))
	for _, p := range prev {
		had[strings.ToUpper(p)] = struct{}{}
	}
	out := make([]string, 0, len(next))
	for _, n := range next {
		if _, ok := had[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

var _ BookingUseCase = (*BookingService)(nil)
