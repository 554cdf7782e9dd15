package flights

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByFlightNo(ctx context.Context, flightNo string) (*domain.Flight, error) {
	args := m.Called(ctx, flightNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) FindByRoute(ctx context.Context, origin, destination, weekday string) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, destination, weekday)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	return m.Called(ctx, flight).Error(0)
}

func (m *MockFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	return m.Called(ctx, flight).Error(0)
}

func (m *MockFlightRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	return m.Called(ctx, flights).Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func validInput() FlightInput {
	return FlightInput{
		FlightNo:      " ai202 ",
		Airline:       "Air India",
		Origin:        "del",
		Destination:   "BOM",
		DepartureDay:  "Monday",
		DepartureTime: "09:30",
		ArrivalDay:    "Monday",
		ArrivalTime:   "11:45",
		AircraftType:  "A320",
		SeatCap:       180,
		Price:         4500,
	}
}

func TestFlightService_List_FromCache(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	cached := []domain.Flight{{FlightNo: "AI202"}}
	cache.On("GetFlights", mock.Anything).Return(cached, nil)

	service := NewFlightService(repo, WithCache(cache))
	flights, err := service.List(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, cached, flights)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestFlightService_List_MissFillsCache(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	stored := []domain.Flight{{FlightNo: "AI202"}, {FlightNo: "6E101"}}
	cache.On("GetFlights", mock.Anything).Return(nil, nil)
	repo.On("List", mock.Anything).Return(stored, nil)
	cache.On("SetFlights", mock.Anything, stored).Return(nil)

	service := NewFlightService(repo, WithCache(cache))
	flights, err := service.List(context.Background())

	assert.NoError(t, err)
	assert.Len(t, flights, 2)
	cache.AssertExpectations(t)
}

func TestFlightService_List_CacheErrorFallsBackToRepo(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	cache.On("GetFlights", mock.Anything).Return(nil, errors.New("redis down"))
	repo.On("List", mock.Anything).Return([]domain.Flight{}, nil)
	cache.On("SetFlights", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	service := NewFlightService(repo, WithCache(cache))
	flights, err := service.List(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, flights)
}

func TestFlightService_Create_NormalizesAndAudits(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	var audit bytes.Buffer

	repo.On("Create", mock.Anything, mock.MatchedBy(func(f *domain.Flight) bool {
		return f.FlightNo == "AI202" && f.Origin == "DEL" && f.ID != ""
	})).Return(nil)
	cache.On("InvalidateFlights", mock.Anything).Return(nil)

	service := NewFlightService(repo, WithCache(cache), WithAudit(logger.NewAudit(&audit)))
	f, err := service.Create(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, "AI202", f.FlightNo)
	assert.Contains(t, audit.String(), "Flight AI202 added")
	cache.AssertExpectations(t)
}

func TestFlightService_Create_Validation(t *testing.T) {
	repo := &MockFlightRepository{}
	in := validInput()
	in.DepartureDay = "Funday"
	in.ArrivalTime = "7pm"
	in.SeatCap = 0

	service := NewFlightService(repo)
	_, err := service.Create(context.Background(), in)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "departureDay")
	assert.Contains(t, ve.Fields, "arrivalTime")
	assert.Contains(t, ve.Fields, "seatCap")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFlightService_Create_Duplicate(t *testing.T) {
	repo := &MockFlightRepository{}
	repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	service := NewFlightService(repo)
	_, err := service.Create(context.Background(), validInput())

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestFlightService_Update(t *testing.T) {
	repo := &MockFlightRepository{}
	existing := &domain.Flight{ID: "f1", FlightNo: "AI202", Price: 100}
	repo.On("GetByID", mock.Anything, "f1").Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	in := validInput()
	in.Price = 5200
	service := NewFlightService(repo)
	f, err := service.Update(context.Background(), "f1", in)

	require.NoError(t, err)
	assert.Equal(t, 5200.0, f.Price)
	assert.Equal(t, "f1", f.ID)
}

func TestFlightService_Update_NotFound(t *testing.T) {
	repo := &MockFlightRepository{}
	repo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	service := NewFlightService(repo)
	_, err := service.Update(context.Background(), "missing", validInput())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFlightService_Delete(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	repo.On("GetByID", mock.Anything, "f1").Return(&domain.Flight{ID: "f1", FlightNo: "AI202"}, nil)
	repo.On("Delete", mock.Anything, "f1").Return(nil)
	cache.On("InvalidateFlights", mock.Anything).Return(nil)

	service := NewFlightService(repo, WithCache(cache))
	assert.NoError(t, service.Delete(context.Background(), "f1"))
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestFlightService_Search_MatchesDepartureWeekday(t *testing.T) {
	repo := &MockFlightRepository{}
	monday := []domain.Flight{{FlightNo: "AI202", DepartureDay: "Monday"}}
	repo.On("FindByRoute", mock.Anything, "DEL", "BOM", "Monday").Return(monday, nil)

	service := NewFlightService(repo)
	res, err := service.Search(context.Background(), SearchQuery{Origin: "DEL", Destination: "BOM", DepDate: "2025-01-20"})

	require.NoError(t, err)
	assert.True(t, res.Searched)
	assert.Equal(t, "Monday", res.DepDay)
	assert.Equal(t, monday, res.Departing)
	assert.Empty(t, res.Returning)
}

func TestFlightService_Search_RoundTrip(t *testing.T) {
	repo := &MockFlightRepository{}
	repo.On("FindByRoute", mock.Anything, "DEL", "BOM", "Monday").Return([]domain.Flight{{FlightNo: "AI202"}}, nil)
	repo.On("FindByRoute", mock.Anything, "BOM", "DEL", "Friday").Return([]domain.Flight{{FlightNo: "AI203"}}, nil)

	service := NewFlightService(repo)
	res, err := service.Search(context.Background(), SearchQuery{
		Origin: "DEL", Destination: "BOM", DepDate: "2025-01-20", RetDate: "2025-01-24",
	})

	require.NoError(t, err)
	assert.Equal(t, "Friday", res.RetDay)
	require.Len(t, res.Returning, 1)
	assert.Equal(t, "AI203", res.Returning[0].FlightNo)
}

func TestFlightService_Search_NoDepartureDateSkipsStore(t *testing.T) {
	repo := &MockFlightRepository{}

	service := NewFlightService(repo)
	res, err := service.Search(context.Background(), SearchQuery{Origin: "DEL", Destination: "BOM"})

	require.NoError(t, err)
	assert.False(t, res.Searched)
	assert.Empty(t, res.Departing)
	repo.AssertNotCalled(t, "FindByRoute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_Search_BadReturnDateIgnored(t *testing.T) {
	repo := &MockFlightRepository{}
	repo.On("FindByRoute", mock.Anything, "DEL", "BOM", "Monday").Return([]domain.Flight{}, nil)

	service := NewFlightService(repo)
	res, err := service.Search(context.Background(), SearchQuery{
		Origin: "DEL", Destination: "BOM", DepDate: "2025-01-20", RetDate: "someday",
	})

	require.NoError(t, err)
	assert.Empty(t, res.RetDay)
	repo.AssertNumberOfCalls(t, "FindByRoute", 1)
}

func TestFlightService_Search_BadDepartureDate(t *testing.T) {
	repo := &MockFlightRepository{}

	service := NewFlightService(repo)
	_, err := service.Search(context.Background(), SearchQuery{Origin: "DEL", Destination: "BOM", DepDate: "20/01/2025"})

	assert.True(t, domain.IsValidation(err))
	repo.AssertNotCalled(t, "FindByRoute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
