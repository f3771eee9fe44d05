package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/repository/mocks"
	"github.com/Domenick1991/railbooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	stations  *mocks.StationRepository
	trains    *mocks.TrainRepository
	schedules *mocks.ScheduleRepository
	tickets   *mocks.TicketRepository
	audit     *mocks.AuditRepository
	handler   *CatalogHandler
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		stations:  &mocks.StationRepository{},
		trains:    &mocks.TrainRepository{},
		schedules: &mocks.ScheduleRepository{},
		tickets:   &mocks.TicketRepository{},
		audit:     &mocks.AuditRepository{},
	}
	service := catalog.NewCatalogService(catalog.Repositories{
		Stations:    f.stations,
		Connections: &mocks.ConnectionRepository{},
		Trains:      f.trains,
		Schedules:   f.schedules,
		Tickets:     f.tickets,
		Audit:       f.audit,
	})
	f.handler = NewCatalogHandler(service)
	return f
}

func jsonContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestCatalogHandler_createStation(t *testing.T) {
	f := newCatalogFixture()
	c, w := jsonContext(http.MethodPost, "/api/destinations", `{"name":"Central","desc":"Main hall","isActive":true}`)

	f.stations.On("Create", mock.Anything, mock.AnythingOfType("*domain.Station")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Station).ID = "st-1" }).
		Return(nil).Once()
	f.audit.On("Record", mock.Anything, mock.Anything).Return(nil).Once()

	f.handler.createStation(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var station domain.Station
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &station))
	assert.Equal(t, "st-1", station.ID)
	assert.Equal(t, "Main hall", station.Description)
	assert.True(t, station.Active)
}

func TestCatalogHandler_createStation_Validation(t *testing.T) {
	f := newCatalogFixture()
	c, w := jsonContext(http.MethodPost, "/api/destinations", `{"desc":"no name"}`)

	f.handler.createStation(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.stations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogHandler_listStations_DegradesToEmpty(t *testing.T) {
	f := newCatalogFixture()
	c, w := jsonContext(http.MethodGet, "/api/destinations", "")

	f.stations.On("List", mock.Anything).Return(nil, domain.InternalError{Msg: "storage error"}).Once()

	f.handler.listStations(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCatalogHandler_getStation_NotFound(t *testing.T) {
	f := newCatalogFixture()
	c, w := jsonContext(http.MethodGet, "/api/destinations/missing", "")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	f.stations.On("GetByID", mock.Anything, "missing").Return(nil, domain.NotFoundError{Resource: "station"}).Once()

	f.handler.getStation(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "station not found")
}

func TestCatalogHandler_createStop(t *testing.T) {
	f := newCatalogFixture()
	c, w := jsonContext(http.MethodPost, "/api/schedule/station-stop",
		`{"trainScheduleId":"sch-1","stationId":"S1","stopOrder":1,"arrivalTimeHour":null,"departureTimeHour":8,"departureTimeMinute":5}`)

	f.schedules.On("GetDetail", mock.Anything, "sch-1").Return(&domain.ScheduleDetail{}, nil).Once()
	f.stations.On("GetByID", mock.Anything, "S1").Return(&domain.Station{ID: "S1", Name: "One"}, nil).Once()
	f.schedules.On("CreateStop", mock.Anything, mock.MatchedBy(func(s *domain.StationStop) bool {
		dep, ok := s.Times.Departure()
		return ok && dep == domain.ClockTime{Hour: 8, Minute: 5}
	})).Return(nil).Once()
	f.audit.On("Record", mock.Anything, mock.Anything).Return(nil).Once()

	f.handler.createStop(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var stop stopResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stop))
	assert.Nil(t, stop.ArrivalTimeHour)
	require.NotNil(t, stop.DepartureTimeHour)
	assert.Equal(t, 8, *stop.DepartureTimeHour)
	assert.Equal(t, "One", stop.StationName)
}

func TestCatalogHandler_createStop_Errors(t *testing.T) {
	t.Run("no times", func(t *testing.T) {
		f := newCatalogFixture()
		c, w := jsonContext(http.MethodPost, "/api/schedule/station-stop", `{"trainScheduleId":"sch-1","stationId":"S1","stopOrder":1}`)
		f.handler.createStop(c)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "at least one time")
	})

	t.Run("hour out of range", func(t *testing.T) {
		f := newCatalogFixture()
		c, w := jsonContext(http.MethodPost, "/api/schedule/station-stop", `{"trainScheduleId":"sch-1","stationId":"S1","stopOrder":1,"arrivalTimeHour":25}`)
		f.handler.createStop(c)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("schedule missing", func(t *testing.T) {
		f := newCatalogFixture()
		c, w := jsonContext(http.MethodPost, "/api/schedule/station-stop", `{"trainScheduleId":"sch-9","stationId":"S1","stopOrder":1,"arrivalTimeHour":9}`)
		f.schedules.On("GetDetail", mock.Anything, "sch-9").Return(nil, domain.NotFoundError{Resource: "train schedule"}).Once()
		f.handler.createStop(c)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCatalogHandler_deleteStop_Referenced(t *testing.T) {
	f := newCatalogFixture()
	c, w := jsonContext(http.MethodDelete, "/api/schedule/station-stop/stop-1", "")
	c.Params = gin.Params{{Key: "id", Value: "stop-1"}}

	f.schedules.On("GetStop", mock.Anything, "stop-1").Return(&domain.StationStop{ID: "stop-1"}, nil).Once()
	f.tickets.On("ReferencesStop", mock.Anything, "stop-1").Return(true, nil).Once()

	f.handler.deleteStop(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "associated tickets")
}

func TestCatalogHandler_getSchedule(t *testing.T) {
	f := newCatalogFixture()
	c, w := jsonContext(http.MethodGet, "/api/schedule/sch-1", "")
	c.Params = gin.Params{{Key: "id", Value: "sch-1"}}

	day, _ := domain.OnWeekday(5)
	detail := &domain.ScheduleDetail{
		Schedule: domain.TrainSchedule{ID: "sch-1", TrainLineID: "line-1", Days: day, Departure: domain.ClockTime{Hour: 8}},
		Line:     domain.TrainLine{ID: "line-1", Name: "Coastal"},
		Train:    domain.Train{ID: "train-1", Number: "IC-1"},
		Classes:  []domain.TrainClass{{ID: "eco", Name: "Economy", PricePerKm: 2}},
		Stops: []domain.StationStop{
			{ID: "stop-1", ScheduleID: "sch-1", StationID: "S1", StopOrder: 1, Times: domain.DepartureOnly(domain.ClockTime{Hour: 8})},
		},
	}
	f.schedules.On("GetDetail", mock.Anything, "sch-1").Return(detail, nil).Once()

	f.handler.getSchedule(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response scheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.DayOfWeek)
	assert.Equal(t, 5, *response.DayOfWeek)
	assert.Equal(t, 8, response.Hour)
	require.NotNil(t, response.TrainLine)
	require.NotNil(t, response.TrainLine.Train)
	assert.Equal(t, "IC-1", response.TrainLine.Train.Number)
	assert.Len(t, response.TrainLine.Classes, 1)
	assert.Len(t, response.Stops, 1)
}

func TestOptionalClock(t *testing.T) {
	clock, err := optionalClock(nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, clock)

	hour := 23
	clock, err = optionalClock(&hour, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ClockTime{Hour: 23}, *clock)

	minute := 60
	_, err = optionalClock(&hour, &minute)
	assert.True(t, domain.IsValidation(err))
}
