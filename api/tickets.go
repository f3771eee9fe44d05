package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/service/search"
	"github.com/Domenick1991/railbooking/internal/service/tickets"
	"github.com/Domenick1991/railbooking/internal/ticketpdf"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	search  search.SearchUseCase
	tickets tickets.TicketUseCase
}

type classFareResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type itineraryResponse struct {
	ScheduleID        string              `json:"scheduleId"`
	TrainNumber       string              `json:"trainNumber"`
	TrainName         string              `json:"trainName"`
	TrainLineName     string              `json:"trainLineName"`
	DepartureStation  string              `json:"departureStation"`
	DepartureTime     string              `json:"departureTime"`
	ArrivalStation    string              `json:"arrivalStation"`
	ArrivalTime       string              `json:"arrivalTime"`
	Distance          float64             `json:"distance"`
	DistanceComplete  bool                `json:"distanceComplete"`
	AvailableClasses  []classFareResponse `json:"availableClasses"`
	OriginStopID      string              `json:"originStopId"`
	DestinationStopID string              `json:"destinationStopId"`
}

type bookTicketRequest struct {
	ScheduleID        string `json:"trainScheduleId"`
	ClassID           string `json:"trainClassId"`
	OriginStopID      string `json:"originStopId"`
	DestinationStopID string `json:"destinationStopId"`
	JourneyDate       string `json:"journeyDate"`
	PassengerName     string `json:"passengerName"`
	PassengerEmail    string `json:"passengerEmail"`
	SeatNumber        string `json:"seatNumber"`
}

type trainInfoResponse struct {
	TrainNumber   string `json:"trainNumber"`
	TrainName     string `json:"trainName"`
	TrainLineName string `json:"trainLineName"`
	ClassName     string `json:"className"`
}

type journeyInfoResponse struct {
	DepartureStation string `json:"departureStation"`
	DepartureTime    string `json:"departureTime"`
	ArrivalStation   string `json:"arrivalStation"`
	ArrivalTime      string `json:"arrivalTime"`
}

type ticketDetailsResponse struct {
	ReferenceNumber string              `json:"referenceNumber"`
	PassengerName   string              `json:"passengerName"`
	PassengerEmail  string              `json:"passengerEmail,omitempty"`
	SeatNumber      string              `json:"seatNumber,omitempty"`
	JourneyDate     string              `json:"journeyDate"`
	ValidUntil      string              `json:"validUntil"`
	Price           float64             `json:"price"`
	PurchaseDate    string              `json:"purchaseDate"`
	TrainInfo       trainInfoResponse   `json:"trainInfo"`
	JourneyInfo     journeyInfoResponse `json:"journeyInfo"`
}

type bookTicketResponse struct {
	ID                string `json:"id"`
	ScheduleID        string `json:"trainScheduleId"`
	ClassID           string `json:"trainClassId"`
	OriginStopID      string `json:"originStopId"`
	DestinationStopID string `json:"destinationStopId"`
	ticketDetailsResponse
	Status string `json:"status"`
}

type checkTicketResponse struct {
	Valid         bool                  `json:"valid"`
	Status        string                `json:"status"`
	Expired       bool                  `json:"expired"`
	TicketDetails ticketDetailsResponse `json:"ticketDetails"`
}

func NewTicketHandler(searchService search.SearchUseCase, ticketService tickets.TicketUseCase) *TicketHandler {
	return &TicketHandler{search: searchService, tickets: ticketService}
}

// Register mounts the public ticket routes; limited wraps the write and lookup routes.
func (h *TicketHandler) Register(router *gin.RouterGroup, limited ...gin.HandlerFunc) {
	with := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, limited...), handler)
	}
	router.GET("/search", h.searchItineraries)
	router.POST("/book", with(h.book)...)
	router.GET("/check", with(h.check)...)
	router.GET("/:reference/pdf", with(h.pdf)...)
}

func (h *TicketHandler) searchItineraries(c *gin.Context) {
	itineraries, err := h.search.Search(c.Request.Context(), search.SearchQuery{
		OriginID:      c.Query("originId"),
		DestinationID: c.Query("destinationId"),
		Date:          c.Query("date"),
		ClassID:       c.Query("classId"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response := make([]itineraryResponse, 0, len(itineraries))
	for _, it := range itineraries {
		response = append(response, toItineraryResponse(it))
	}
	c.JSON(http.StatusOK, response)
}

func (h *TicketHandler) book(c *gin.Context) {
	var req bookTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	detail, err := h.tickets.Book(c.Request.Context(), tickets.BookInput{
		ScheduleID:        req.ScheduleID,
		ClassID:           req.ClassID,
		OriginStopID:      req.OriginStopID,
		DestinationStopID: req.DestinationStopID,
		JourneyDate:       req.JourneyDate,
		PassengerName:     req.PassengerName,
		PassengerEmail:    req.PassengerEmail,
		SeatNumber:        req.SeatNumber,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookTicketResponse{
		ID:                    detail.Ticket.ID,
		ScheduleID:            detail.Ticket.ScheduleID,
		ClassID:               detail.Ticket.ClassID,
		OriginStopID:          detail.Ticket.OriginStopID,
		DestinationStopID:     detail.Ticket.DestinationStopID,
		ticketDetailsResponse: toTicketDetails(*detail),
		Status:                string(detail.Ticket.Status),
	})
}

func (h *TicketHandler) check(c *gin.Context) {
	result, err := h.tickets.Check(c.Request.Context(), tickets.CheckInput{
		ReferenceNumber: c.Query("referenceNumber"),
		LastName:        c.Query("lastName"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkTicketResponse{
		Valid:         result.Valid,
		Status:        string(result.Status),
		Expired:       result.Expired,
		TicketDetails: toTicketDetails(result.Detail),
	})
}

func (h *TicketHandler) pdf(c *gin.Context) {
	detail, err := h.tickets.Detail(c.Request.Context(), c.Param("reference"))
	if err != nil {
		writeError(c, err)
		return
	}

	body, name, err := ticketpdf.Render(ticketpdf.FromDetail(*detail))
	if err != nil {
		writeError(c, domain.InternalError{Msg: "failed to render ticket", Err: err})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", body)
}

func toItineraryResponse(it domain.Itinerary) itineraryResponse {
	classes := make([]classFareResponse, 0, len(it.Classes))
	for _, f := range it.Classes {
		classes = append(classes, classFareResponse{ID: f.ClassID, Name: f.ClassName, Price: f.Price})
	}
	return itineraryResponse{
		ScheduleID:        it.ScheduleID,
		TrainNumber:       it.TrainNumber,
		TrainName:         it.TrainName,
		TrainLineName:     it.LineName,
		DepartureStation:  it.DepartureStation,
		DepartureTime:     formatInstant(it.Departure),
		ArrivalStation:    it.ArrivalStation,
		ArrivalTime:       formatInstant(it.Arrival),
		Distance:          it.Distance,
		DistanceComplete:  it.DistanceComplete(),
		AvailableClasses:  classes,
		OriginStopID:      it.OriginStopID,
		DestinationStopID: it.DestinationStopID,
	}
}

func toTicketDetails(d domain.TicketDetail) ticketDetailsResponse {
	return ticketDetailsResponse{
		ReferenceNumber: d.Ticket.ReferenceNumber,
		PassengerName:   d.Ticket.PassengerName,
		PassengerEmail:  d.Ticket.PassengerEmail,
		SeatNumber:      d.Ticket.SeatNumber,
		JourneyDate:     formatInstant(d.Ticket.JourneyDate),
		ValidUntil:      formatInstant(d.Ticket.ValidUntil),
		Price:           d.Ticket.Price,
		PurchaseDate:    formatInstant(d.Ticket.PurchaseDate),
		TrainInfo: trainInfoResponse{
			TrainNumber:   d.TrainNumber,
			TrainName:     d.TrainName,
			TrainLineName: d.LineName,
			ClassName:     d.ClassName,
		},
		JourneyInfo: journeyInfoResponse{
			DepartureStation: d.DepartureStation,
			DepartureTime:    formatInstant(d.DepartureTime),
			ArrivalStation:   d.ArrivalStation,
			ArrivalTime:      formatInstant(d.ArrivalTime),
		},
	}
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
