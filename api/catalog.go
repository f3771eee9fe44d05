package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the rail network. Reads are public, writes go through the admin guard.
type CatalogHandler struct {
	service catalog.CatalogUseCase
}

type stationRequest struct {
	Name        string `json:"name"`
	Description string `json:"desc"`
	Active      *bool  `json:"isActive"`
}

type connectionRequest struct {
	FromStationID string  `json:"fromStationId"`
	ToStationID   string  `json:"toStationId"`
	Distance      float64 `json:"distance"`
	Active        *bool   `json:"isActive"`
}

type trainRequest struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	Active *bool  `json:"isActive"`
}

type classRequest struct {
	Name       string  `json:"name"`
	PricePerKm float64 `json:"pricePerKm"`
}

type lineRequest struct {
	Name    string   `json:"name"`
	TrainID string   `json:"trainId"`
	Active  *bool    `json:"isActive"`
	Classes []string `json:"classes"`
}

type scheduleRequest struct {
	TrainLineID string `json:"trainLineId"`
	DayOfWeek   *int   `json:"dayOfWeek"`
	Hour        int    `json:"hour"`
	Minute      int    `json:"minute"`
}

type stopRequest struct {
	TrainScheduleID     string `json:"trainScheduleId"`
	StationID           string `json:"stationId"`
	StopOrder           int    `json:"stopOrder"`
	ArrivalTimeHour     *int   `json:"arrivalTimeHour"`
	ArrivalTimeMinute   *int   `json:"arrivalTimeMinute"`
	DepartureTimeHour   *int   `json:"departureTimeHour"`
	DepartureTimeMinute *int   `json:"departureTimeMinute"`
}

type stopResponse struct {
	ID                  string `json:"id"`
	TrainScheduleID     string `json:"trainScheduleId"`
	StationID           string `json:"stationId"`
	StationName         string `json:"stationName,omitempty"`
	StopOrder           int    `json:"stopOrder"`
	ArrivalTimeHour     *int   `json:"arrivalTimeHour"`
	ArrivalTimeMinute   *int   `json:"arrivalTimeMinute"`
	DepartureTimeHour   *int   `json:"departureTimeHour"`
	DepartureTimeMinute *int   `json:"departureTimeMinute"`
}

type scheduleResponse struct {
	ID          string            `json:"id"`
	TrainLineID string            `json:"trainLineId"`
	DayOfWeek   *int              `json:"dayOfWeek"`
	Hour        int               `json:"hour"`
	Minute      int               `json:"minute"`
	CreatedAt   time.Time         `json:"createdAt"`
	TrainLine   *domain.TrainLine `json:"trainLine,omitempty"`
	Stops       []stopResponse    `json:"stationStops,omitempty"`
}

func NewCatalogHandler(service catalog.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Register mounts the catalog under router; guard protects every write.
func (h *CatalogHandler) Register(router *gin.RouterGroup, guard ...gin.HandlerFunc) {
	admin := router.Group("", guard...)

	router.GET("/destinations", h.listStations)
	router.GET("/destinations/:id", h.getStation)
	admin.POST("/destinations", h.createStation)
	admin.PUT("/destinations/:id", h.updateStation)
	admin.DELETE("/destinations/:id", h.deleteStation)

	router.GET("/connections", h.listConnections)
	router.GET("/connections/:id", h.getConnection)
	admin.POST("/connections", h.createConnection)
	admin.PUT("/connections/:id", h.updateConnection)
	admin.DELETE("/connections/:id", h.deleteConnection)

	router.GET("/train", h.listTrains)
	router.GET("/train/:id", h.getTrain)
	admin.POST("/train", h.createTrain)
	admin.PUT("/train/:id", h.updateTrain)
	admin.DELETE("/train/:id", h.deleteTrain)

	router.GET("/train/train-class", h.listClasses)
	router.GET("/train/train-class/:id", h.getClass)
	admin.POST("/train/train-class", h.createClass)
	admin.PUT("/train/train-class/:id", h.updateClass)
	admin.DELETE("/train/train-class/:id", h.deleteClass)

	router.GET("/train/train-line", h.listLines)
	router.GET("/train/train-line/:id", h.getLine)
	admin.POST("/train/train-line", h.createLine)
	admin.PUT("/train/train-line/:id", h.updateLine)
	admin.DELETE("/train/train-line/:id", h.deleteLine)

	router.GET("/schedule", h.listSchedules)
	router.GET("/schedule/:id", h.getSchedule)
	admin.POST("/schedule", h.createSchedule)
	admin.DELETE("/schedule/:id", h.deleteSchedule)

	router.GET("/schedule/station-stop", h.listStops)
	router.GET("/schedule/station-stop/:id", h.getStop)
	admin.POST("/schedule/station-stop", h.createStop)
	admin.PUT("/schedule/station-stop/:id", h.updateStop)
	admin.DELETE("/schedule/station-stop/:id", h.deleteStop)
}

// respond writes v with status, or the mapped error.
func respond(c *gin.Context, status int, v interface{}, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, v)
}

func deleted(c *gin.Context, err error) {
	respond(c, http.StatusOK, gin.H{"message": "deleted successfully"}, err)
}

// Stations

func (h *CatalogHandler) listStations(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListStations(c.Request.Context()))
}

func (h *CatalogHandler) getStation(c *gin.Context) {
	station, err := h.service.GetStation(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, station, err)
}

func (h *CatalogHandler) createStation(c *gin.Context) {
	var req stationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	station, err := h.service.CreateStation(c.Request.Context(), req.input())
	respond(c, http.StatusCreated, station, err)
}

func (h *CatalogHandler) updateStation(c *gin.Context) {
	var req stationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	station, err := h.service.UpdateStation(c.Request.Context(), c.Param("id"), req.input())
	respond(c, http.StatusOK, station, err)
}

func (h *CatalogHandler) deleteStation(c *gin.Context) {
	deleted(c, h.service.DeleteStation(c.Request.Context(), c.Param("id")))
}

func (r stationRequest) input() catalog.StationInput {
	return catalog.StationInput{Name: r.Name, Description: r.Description, Active: r.Active}
}

// Connections

func (h *CatalogHandler) listConnections(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListConnections(c.Request.Context()))
}

func (h *CatalogHandler) getConnection(c *gin.Context) {
	conn, err := h.service.GetConnection(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, conn, err)
}

func (h *CatalogHandler) createConnection(c *gin.Context) {
	var req connectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	conn, err := h.service.CreateConnection(c.Request.Context(), req.input())
	respond(c, http.StatusCreated, conn, err)
}

func (h *CatalogHandler) updateConnection(c *gin.Context) {
	var req connectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	conn, err := h.service.UpdateConnection(c.Request.Context(), c.Param("id"), req.input())
	respond(c, http.StatusOK, conn, err)
}

func (h *CatalogHandler) deleteConnection(c *gin.Context) {
	deleted(c, h.service.DeleteConnection(c.Request.Context(), c.Param("id")))
}

func (r connectionRequest) input() catalog.ConnectionInput {
	return catalog.ConnectionInput{FromStationID: r.FromStationID, ToStationID: r.ToStationID, Distance: r.Distance, Active: r.Active}
}

// Trains

func (h *CatalogHandler) listTrains(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListTrains(c.Request.Context()))
}

func (h *CatalogHandler) getTrain(c *gin.Context) {
	train, err := h.service.GetTrain(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, train, err)
}

func (h *CatalogHandler) createTrain(c *gin.Context) {
	var req trainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	train, err := h.service.CreateTrain(c.Request.Context(), catalog.TrainInput{Name: req.Name, Number: req.Number, Active: req.Active})
	respond(c, http.StatusCreated, train, err)
}

func (h *CatalogHandler) updateTrain(c *gin.Context) {
	var req trainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	train, err := h.service.UpdateTrain(c.Request.Context(), c.Param("id"), catalog.TrainInput{Name: req.Name, Number: req.Number, Active: req.Active})
	respond(c, http.StatusOK, train, err)
}

func (h *CatalogHandler) deleteTrain(c *gin.Context) {
	deleted(c, h.service.DeleteTrain(c.Request.Context(), c.Param("id")))
}

// Train classes

func (h *CatalogHandler) listClasses(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListClasses(c.Request.Context()))
}

func (h *CatalogHandler) getClass(c *gin.Context) {
	class, err := h.service.GetClass(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, class, err)
}

func (h *CatalogHandler) createClass(c *gin.Context) {
	var req classRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	class, err := h.service.CreateClass(c.Request.Context(), catalog.ClassInput{Name: req.Name, PricePerKm: req.PricePerKm})
	respond(c, http.StatusCreated, class, err)
}

func (h *CatalogHandler) updateClass(c *gin.Context) {
	var req classRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	class, err := h.service.UpdateClass(c.Request.Context(), c.Param("id"), catalog.ClassInput{Name: req.Name, PricePerKm: req.PricePerKm})
	respond(c, http.StatusOK, class, err)
}

func (h *CatalogHandler) deleteClass(c *gin.Context) {
	deleted(c, h.service.DeleteClass(c.Request.Context(), c.Param("id")))
}

// Train lines

func (h *CatalogHandler) listLines(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListLines(c.Request.Context()))
}

func (h *CatalogHandler) getLine(c *gin.Context) {
	line, err := h.service.GetLine(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, line, err)
}

func (h *CatalogHandler) createLine(c *gin.Context) {
	var req lineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	line, err := h.service.CreateLine(c.Request.Context(), req.input())
	respond(c, http.StatusCreated, line, err)
}

func (h *CatalogHandler) updateLine(c *gin.Context) {
	var req lineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	line, err := h.service.UpdateLine(c.Request.Context(), c.Param("id"), req.input())
	respond(c, http.StatusOK, line, err)
}

func (h *CatalogHandler) deleteLine(c *gin.Context) {
	deleted(c, h.service.DeleteLine(c.Request.Context(), c.Param("id")))
}

func (r lineRequest) input() catalog.LineInput {
	return catalog.LineInput{Name: r.Name, TrainID: r.TrainID, Active: r.Active, ClassIDs: r.Classes}
}

// Schedules

func (h *CatalogHandler) listSchedules(c *gin.Context) {
	details := h.service.ListSchedules(c.Request.Context())
	response := make([]scheduleResponse, 0, len(details))
	for _, d := range details {
		response = append(response, toScheduleDetailResponse(d))
	}
	c.JSON(http.StatusOK, response)
}

func (h *CatalogHandler) getSchedule(c *gin.Context) {
	detail, err := h.service.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toScheduleDetailResponse(*detail))
}

func (h *CatalogHandler) createSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	schedule, err := h.service.CreateSchedule(c.Request.Context(), catalog.ScheduleInput{
		TrainLineID: req.TrainLineID,
		DayOfWeek:   req.DayOfWeek,
		Hour:        req.Hour,
		Minute:      req.Minute,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toScheduleResponse(*schedule))
}

func (h *CatalogHandler) deleteSchedule(c *gin.Context) {
	deleted(c, h.service.DeleteSchedule(c.Request.Context(), c.Param("id")))
}

// Station stops

func (h *CatalogHandler) listStops(c *gin.Context) {
	stops := h.service.ListStops(c.Request.Context(), c.Query("scheduleId"))
	response := make([]stopResponse, 0, len(stops))
	for _, s := range stops {
		response = append(response, toStopResponse(s))
	}
	c.JSON(http.StatusOK, response)
}

func (h *CatalogHandler) getStop(c *gin.Context) {
	stop, err := h.service.GetStop(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStopResponse(*stop))
}

func (h *CatalogHandler) createStop(c *gin.Context) {
	var req stopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	input, err := req.input()
	if err != nil {
		writeError(c, err)
		return
	}
	stop, err := h.service.CreateStop(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toStopResponse(*stop))
}

func (h *CatalogHandler) updateStop(c *gin.Context) {
	var req stopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	input, err := req.input()
	if err != nil {
		writeError(c, err)
		return
	}
	stop, err := h.service.UpdateStop(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStopResponse(*stop))
}

func (h *CatalogHandler) deleteStop(c *gin.Context) {
	deleted(c, h.service.DeleteStop(c.Request.Context(), c.Param("id")))
}

func (r stopRequest) input() (catalog.StopInput, error) {
	arrival, err := optionalClock(r.ArrivalTimeHour, r.ArrivalTimeMinute)
	if err != nil {
		return catalog.StopInput{}, err
	}
	departure, err := optionalClock(r.DepartureTimeHour, r.DepartureTimeMinute)
	if err != nil {
		return catalog.StopInput{}, err
	}
	return catalog.StopInput{
		ScheduleID: r.TrainScheduleID,
		StationID:  r.StationID,
		StopOrder:  r.StopOrder,
		Arrival:    arrival,
		Departure:  departure,
	}, nil
}

// optionalClock reads an hour/minute pair where a missing hour means no time; the minute defaults to 0.
func optionalClock(hour, minute *int) (*domain.ClockTime, error) {
	if hour == nil {
		return nil, nil
	}
	m := 0
	if minute != nil {
		m = *minute
	}
	clock, err := domain.NewClockTime(*hour, m)
	if err != nil {
		return nil, err
	}
	return &clock, nil
}

func clockParts(clock domain.ClockTime, ok bool) (*int, *int) {
	if !ok {
		return nil, nil
	}
	hour, minute := clock.Hour, clock.Minute
	return &hour, &minute
}

func toStopResponse(s domain.StationStop) stopResponse {
	resp := stopResponse{
		ID:              s.ID,
		TrainScheduleID: s.ScheduleID,
		StationID:       s.StationID,
		StationName:     s.StationName,
		StopOrder:       s.StopOrder,
	}
	resp.ArrivalTimeHour, resp.ArrivalTimeMinute = clockParts(s.Times.Arrival())
	resp.DepartureTimeHour, resp.DepartureTimeMinute = clockParts(s.Times.Departure())
	return resp
}

func toScheduleResponse(s domain.TrainSchedule) scheduleResponse {
	return scheduleResponse{
		ID:          s.ID,
		TrainLineID: s.TrainLineID,
		DayOfWeek:   s.Days.Nullable(),
		Hour:        s.Departure.Hour,
		Minute:      s.Departure.Minute,
		CreatedAt:   s.CreatedAt,
	}
}

func toScheduleDetailResponse(d domain.ScheduleDetail) scheduleResponse {
	resp := toScheduleResponse(d.Schedule)
	line := d.Line
	if line.Train == nil && d.Train.ID != "" {
		train := d.Train
		line.Train = &train
	}
	if line.Classes == nil {
		line.Classes = d.Classes
	}
	resp.TrainLine = &line
	resp.Stops = make([]stopResponse, 0, len(d.Stops))
	for _, s := range d.Stops {
		resp.Stops = append(resp.Stops, toStopResponse(s))
	}
	return resp
}
