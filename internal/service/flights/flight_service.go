package flights

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logger"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/Domenick1991/flightdesk/internal/validation"
	"github.com/google/uuid"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	Create(ctx context.Context, in FlightInput) (*domain.Flight, error)
	Update(ctx context.Context, id string, in FlightInput) (*domain.Flight, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

// FlightInput is the add/edit flight form.
type FlightInput struct {
	FlightNo      string  `json:"flightNo" form:"flightNo" validate:"required,flightno"`
	Airline       string  `json:"airline" form:"airline" validate:"required"`
	Origin        string  `json:"origin" form:"origin" validate:"required"`
	Destination   string  `json:"destination" form:"destination" validate:"required"`
	DepartureDay  string  `json:"departureDay" form:"departureDay" validate:"required,weekday"`
	DepartureTime string  `json:"departureTime" form:"departureTime" validate:"required,hhmm"`
	ArrivalDay    string  `json:"arrivalDay" form:"arrivalDay" validate:"required,weekday"`
	ArrivalTime   string  `json:"arrivalTime" form:"arrivalTime" validate:"required,hhmm"`
	AircraftType  string  `json:"aircraftType" form:"aircraftType" validate:"required"`
	SeatCap       int     `json:"seatCap" form:"seatCap" validate:"gt=0"`
	Price         float64 `json:"price" form:"price" validate:"gte=0"`
}

func (in FlightInput) normalized() FlightInput {
	in.FlightNo = domain.NormalizeFlightNo(in.FlightNo)
	in.Airline = strings.TrimSpace(in.Airline)
	in.Origin = normalizeCode(in.Origin)
	in.Destination = normalizeCode(in.Destination)
	in.DepartureDay = strings.TrimSpace(in.DepartureDay)
	in.DepartureTime = strings.TrimSpace(in.DepartureTime)
	in.ArrivalDay = strings.TrimSpace(in.ArrivalDay)
	in.ArrivalTime = strings.TrimSpace(in.ArrivalTime)
	in.AircraftType = strings.TrimSpace(in.AircraftType)
	return in
}

func (in FlightInput) apply(f *domain.Flight) {
	f.FlightNo = in.FlightNo
	f.Airline = in.Airline
	f.Origin = in.Origin
	f.Destination = in.Destination
	f.DepartureDay = in.DepartureDay
	f.DepartureTime = in.DepartureTime
	f.ArrivalDay = in.ArrivalDay
	f.ArrivalTime = in.ArrivalTime
	f.AircraftType = in.AircraftType
	f.SeatCap = in.SeatCap
	f.Price = in.Price
}

type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
	audit *logger.Audit
	log   *slog.Logger
}

type FlightServiceOption func(*FlightService)

func WithCache(cache FlightCache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = cache
	}
}

func WithAudit(audit *logger.Audit) FlightServiceOption {
	return func(s *FlightService) {
		s.audit = audit
	}
}

func WithLogger(log *slog.Logger) FlightServiceOption {
	return func(s *FlightService) {
		s.log = log
	}
}

func NewFlightService(repo repository.FlightRepository, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{repo: repo, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.audit == nil {
		s.audit = logger.NopAudit()
	}
	return s
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.WarnContext(ctx, "flights cache read failed", "error", err)
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.WarnContext(ctx, "flights cache write failed", "error", err)
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Create(ctx context.Context, in FlightInput) (*domain.Flight, error) {
	in = in.normalized()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	f := &domain.Flight{ID: uuid.NewString()}
	in.apply(f)
	if err := s.repo.Create(ctx, f); err != nil {
		s.audit.Error("Adding flight %s failed: %v", f.FlightNo, err)
		return nil, err
	}
	s.invalidate(ctx)
	s.audit.Action("Flight %s added", f.FlightNo)
	return f, nil
}

func (s *FlightService) Update(ctx context.Context, id string, in FlightInput) (*domain.Flight, error) {
	in = in.normalized()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(f)
	if err := s.repo.Update(ctx, f); err != nil {
		s.audit.Error("Updating flight %s failed: %v", f.FlightNo, err)
		return nil, err
	}
	s.invalidate(ctx)
	s.audit.Action("Flight %s updated", f.FlightNo)
	return f, nil
}

// Delete removes the flight. Reservations that reference it are left alone.
func (s *FlightService) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.audit.Error("Deleting flight %s failed: %v", f.FlightNo, err)
		return err
	}
	s.invalidate(ctx)
	s.audit.Action("Flight %s deleted", f.FlightNo)
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.WarnContext(ctx, "flights cache invalidation failed", "error", err)
	}
}

// SearchQuery is the flight search form. Dates are YYYY-MM-DD.
type SearchQuery struct {
	Origin      string `form:"origin" json:"origin"`
	Destination string `form:"destination" json:"destination"`
	DepDate     string `form:"depdate" json:"depdate"`
	RetDate     string `form:"retdate" json:"retdate"`
}

// SearchResult echoes the query with the resolved weekdays next to the matches.
type SearchResult struct {
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	DepDate     string          `json:"depdate"`
	DepDay      string          `json:"depday,omitempty"`
	RetDate     string          `json:"retdate,omitempty"`
	RetDay      string          `json:"retday,omitempty"`
	Searched    bool            `json:"searched"`
	Departing   []domain.Flight `json:"departing"`
	Returning   []domain.Flight `json:"returning"`
}

// Search matches flights on route and departure weekday. Without a departure
// date nothing is queried. A return date that does not parse is ignored.
func (s *FlightService) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	res := &SearchResult{
		Origin:      normalizeCode(q.Origin),
		Destination: normalizeCode(q.Destination),
		DepDate:     strings.TrimSpace(q.DepDate),
		RetDate:     strings.TrimSpace(q.RetDate),
		Departing:   []domain.Flight{},
		Returning:   []domain.Flight{},
	}
	if res.DepDate == "" {
		return res, nil
	}

	depDay, err := domain.WeekdayOf(res.DepDate)
	if err != nil {
		return nil, domain.NewValidationError("depdate", "must be a date as YYYY-MM-DD")
	}
	res.DepDay = depDay
	res.Searched = true

	if res.Departing, err = s.repo.FindByRoute(ctx, res.Origin, res.Destination, depDay); err != nil {
		return nil, err
	}

	if res.RetDate == "" {
		return res, nil
	}
	retDay, err := domain.WeekdayOf(res.RetDate)
	if err != nil {
		s.log.DebugContext(ctx, "ignoring unparseable return date", "retdate", res.RetDate)
		return res, nil
	}
	res.RetDay = retDay
	if res.Returning, err = s.repo.FindByRoute(ctx, res.Destination, res.Origin, retDay); err != nil {
		return nil, err
	}
	return res, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var _ FlightUseCase = (*FlightService)(nil)
