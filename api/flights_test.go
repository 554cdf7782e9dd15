package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, in flights.FlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Update(ctx context.Context, id string, in flights.FlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFlightUseCase) Search(ctx context.Context, q flights.SearchQuery) (*flights.SearchResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.SearchResult), args.Error(1)
}

func passThrough(c *gin.Context) { c.Next() }

func flightRouter(service flights.FlightUseCase, admin gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewFlightHandler(service).Register(r.Group("/flights"), admin)
	return r
}

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights", nil)

	list := []domain.Flight{{ID: "f1", FlightNo: "FD101", Origin: "JFK", Destination: "LAX", SeatCap: 180, Price: 1000}}
	mockService.On("List", c.Request.Context()).Return(list, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []domain.Flight
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "FD101", got[0].FlightNo)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}
	c.Request = httptest.NewRequest("GET", "/flights/edit/f1", nil)

	mockService.On("GetByID", c.Request.Context(), "f1").Return(&domain.Flight{ID: "f1"}, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_get_NotFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockService.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	flightRouter(mockService, passThrough).ServeHTTP(w, httptest.NewRequest("GET", "/flights/edit/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)
}

func TestFlightHandler_add_Form(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockService.On("Create", mock.Anything, mock.MatchedBy(func(in flights.FlightInput) bool {
		return in.FlightNo == "fd101" && in.SeatCap == 180 && in.Price == 1000
	})).Return(&domain.Flight{ID: "f1", FlightNo: "FD101"}, nil)

	body := "flightNo=fd101&airline=FlightDesk&origin=JFK&destination=LAX&departureDay=Monday" +
		"&departureTime=08:30&arrivalDay=Monday&arrivalTime=11:45&aircraftType=A320&seatCap=180&price=1000"
	req := httptest.NewRequest("POST", "/flights/add", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	flightRouter(mockService, passThrough).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"added"`)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_add_Validation(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockService.On("Create", mock.Anything, mock.Anything).
		Return(nil, domain.NewValidationError("seatCap", "must be greater than 0"))

	req := httptest.NewRequest("POST", "/flights/add", strings.NewReader(`{"flightNo":"FD101"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	flightRouter(mockService, passThrough).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"seatCap":"must be greater than 0"`)
}

func TestFlightHandler_add_Duplicate(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockService.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	req := httptest.NewRequest("POST", "/flights/add", strings.NewReader(`{"flightNo":"FD101"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	flightRouter(mockService, passThrough).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFlightHandler_update(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockService.On("Update", mock.Anything, "f1", mock.Anything).Return(&domain.Flight{ID: "f1"}, nil)

	req := httptest.NewRequest("POST", "/flights/edit/f1", strings.NewReader(`{"flightNo":"FD101","seatCap":100}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	flightRouter(mockService, passThrough).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"updated"`)
}

func TestFlightHandler_delete(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockService.On("Delete", mock.Anything, "f1").Return(nil)

	w := httptest.NewRecorder()
	flightRouter(mockService, passThrough).ServeHTTP(w, httptest.NewRequest("POST", "/flights/delete/f1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"deleted","data":{"id":"f1"}}`, w.Body.String())
}

func TestFlightHandler_delete_StoreFailure(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockService.On("Delete", mock.Anything, "f1").Return(errors.New("connection reset"))

	w := httptest.NewRecorder()
	flightRouter(mockService, passThrough).ServeHTTP(w, httptest.NewRequest("POST", "/flights/delete/f1", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestFlightHandler_search_IsPublic(t *testing.T) {
	mockService := &MockFlightUseCase{}
	q := flights.SearchQuery{Origin: "JFK", Destination: "LAX", DepDate: "2025-01-20"}
	mockService.On("Search", mock.Anything, q).Return(&flights.SearchResult{
		Origin: "JFK", Destination: "LAX", DepDate: "2025-01-20", DepDay: "Monday", Searched: true,
		Departing: []domain.Flight{{FlightNo: "FD101"}},
	}, nil)

	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }
	w := httptest.NewRecorder()
	flightRouter(mockService, deny).ServeHTTP(w,
		httptest.NewRequest("GET", "/flights/search?origin=JFK&destination=LAX&depdate=2025-01-20", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"depday":"Monday"`)
}

func TestFlightHandler_AdminRoutesGuarded(t *testing.T) {
	mockService := &MockFlightUseCase{}
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }

	for _, tc := range []struct{ method, path string }{
		{"GET", "/flights"},
		{"POST", "/flights/add"},
		{"GET", "/flights/edit/f1"},
		{"POST", "/flights/edit/f1"},
		{"POST", "/flights/delete/f1"},
	} {
		w := httptest.NewRecorder()
		flightRouter(mockService, deny).ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusForbidden, w.Code, tc.path)
	}
	mockService.AssertNotCalled(t, "List", mock.Anything)
}
