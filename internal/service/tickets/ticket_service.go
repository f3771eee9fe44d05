package tickets

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/kafka"
	"github.com/Domenick1991/railbooking/internal/logging"
	"github.com/Domenick1991/railbooking/internal/pricing"
	"github.com/Domenick1991/railbooking/internal/repository"
)

type TicketUseCase interface {
	Book(ctx context.Context, input BookInput) (*domain.TicketDetail, error)
	Check(ctx context.Context, input CheckInput) (*domain.TicketCheck, error)
	Detail(ctx context.Context, reference string) (*domain.TicketDetail, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookInput struct {
	ScheduleID        string
	ClassID           string
	OriginStopID      string
	DestinationStopID string
	JourneyDate       string
	PassengerName     string
	PassengerEmail    string
	SeatNumber        string
}

type CheckInput struct {
	ReferenceNumber string
	LastName        string
}

type TicketService struct {
	tickets            repository.TicketRepository
	schedules          repository.ScheduleRepository
	connections        repository.ConnectionRepository
	producer           Producer
	ticketTopic        string
	notificationsTopic string
	attempts           int
	location           *time.Location
	now                func() time.Time
	newReference       func() (string, error)
	logger             *slog.Logger
}

type TicketServiceOption func(*TicketService)

// WithProducer publishes a ticket_booked event to topic after every booking.
func WithProducer(producer Producer, topic string) TicketServiceOption {
	return func(s *TicketService) {
		s.producer = producer
		s.ticketTopic = topic
	}
}

func WithNotificationsTopic(topic string) TicketServiceOption {
	return func(s *TicketService) {
		s.notificationsTopic = topic
	}
}

func WithReferenceAttempts(n int) TicketServiceOption {
	return func(s *TicketService) {
		if n > 0 {
			s.attempts = n
		}
	}
}

func WithLocation(loc *time.Location) TicketServiceOption {
	return func(s *TicketService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithLogger(logger *slog.Logger) TicketServiceOption {
	return func(s *TicketService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) TicketServiceOption {
	return func(s *TicketService) {
		s.now = now
	}
}

func WithReferenceGenerator(gen func() (string, error)) TicketServiceOption {
	return func(s *TicketService) {
		s.newReference = gen
	}
}

func NewTicketService(
	tickets repository.TicketRepository,
	schedules repository.ScheduleRepository,
	connections repository.ConnectionRepository,
	opts ...TicketServiceOption,
) *TicketService {
	service := &TicketService{
		tickets:      tickets,
		schedules:    schedules,
		connections:  connections,
		attempts:     5,
		location:     time.UTC,
		now:          time.Now,
		newReference: NewReference,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *TicketService) Book(ctx context.Context, input BookInput) (*domain.TicketDetail, error) {
	input = input.trimmed()
	required := []struct{ field, value string }{
		{"trainScheduleId", input.ScheduleID},
		{"trainClassId", input.ClassID},
		{"originStopId", input.OriginStopID},
		{"destinationStopId", input.DestinationStopID},
		{"journeyDate", input.JourneyDate},
		{"passengerName", input.PassengerName},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, domain.ValidationError{Field: r.field, Msg: "missing required field"}
		}
	}
	journeyDate, err := domain.ParseCalendarDate(input.JourneyDate, s.location)
	if err != nil {
		return nil, domain.ValidationError{Field: "journeyDate", Msg: "invalid journey date format", Err: err}
	}

	detail, err := s.schedules.GetDetail(ctx, input.ScheduleID)
	if err != nil {
		return nil, err
	}
	class, ok := detail.Class(input.ClassID)
	if !ok {
		return nil, domain.ValidationError{Field: "trainClassId", Msg: "invalid train class for this train line"}
	}
	origin, okOrigin := detail.StopByID(input.OriginStopID)
	destination, okDestination := detail.StopByID(input.DestinationStopID)
	if !okOrigin || !okDestination {
		return nil, domain.ValidationError{Msg: "invalid origin or destination stop"}
	}
	if origin.StopOrder >= destination.StopOrder {
		return nil, domain.ValidationError{Msg: "origin must come before destination"}
	}

	ride := pricing.Ride{Origin: origin, Destination: destination, Stops: detail.Between(origin, destination)}
	km, err := s.measure(ctx, detail.Schedule.ID, ride)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ScheduleID:        detail.Schedule.ID,
		ClassID:           class.ID,
		OriginStopID:      origin.ID,
		DestinationStopID: destination.ID,
		JourneyDate:       journeyDate,
		PassengerName:     input.PassengerName,
		PassengerEmail:    input.PassengerEmail,
		SeatNumber:        input.SeatNumber,
		Status:            domain.TicketStatusValid,
		Price:             pricing.Fare(class, km),
		ValidUntil:        journeyDate.AddDate(0, 0, 1),
		PurchaseDate:      s.now(),
	}
	if err := s.insert(ctx, ticket); err != nil {
		return nil, err
	}

	result := s.describe(detail, ride, *ticket, class.Name)
	logging.LogOperation(s.logger, "ticket_booked",
		slog.String("reference", ticket.ReferenceNumber),
		slog.String("schedule_id", ticket.ScheduleID),
		slog.Float64("price", ticket.Price))
	s.publish(ctx, result)
	return &result, nil
}

func (i BookInput) trimmed() BookInput {
	return BookInput{
		ScheduleID:        strings.TrimSpace(i.ScheduleID),
		ClassID:           strings.TrimSpace(i.ClassID),
		OriginStopID:      strings.TrimSpace(i.OriginStopID),
		DestinationStopID: strings.TrimSpace(i.DestinationStopID),
		JourneyDate:       strings.TrimSpace(i.JourneyDate),
		PassengerName:     strings.TrimSpace(i.PassengerName),
		PassengerEmail:    strings.TrimSpace(i.PassengerEmail),
		SeatNumber:        strings.TrimSpace(i.SeatNumber),
	}
}

func (s *TicketService) measure(ctx context.Context, scheduleID string, ride pricing.Ride) (float64, error) {
	legs := ride.Legs()
	table := pricing.DistanceTable{}
	if len(legs) > 0 {
		var err error
		if table, err = s.connections.Distances(ctx, legs); err != nil {
			return 0, err
		}
	}
	m := pricing.Measure(legs, table)
	if len(m.Missing) > 0 {
		s.logger.Warn("pricing ride with stop pairs without connection",
			slog.String("schedule_id", scheduleID),
			slog.Any("missing", m.Missing))
	}
	return m.Kilometres, nil
}

// insert stores the ticket under a fresh reference number, retrying on collisions.
func (s *TicketService) insert(ctx context.Context, ticket *domain.Ticket) error {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		ref, err := s.newReference()
		if err != nil {
			return domain.InternalError{Msg: "failed to generate reference number", Err: err}
		}
		ticket.ReferenceNumber = ref

		err = s.tickets.Create(ctx, ticket)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateReference) {
			return err
		}
		s.logger.Warn("ticket reference collision", slog.Int("attempt", attempt))
	}
	return domain.InternalError{Msg: "could not allocate a unique reference number"}
}

func (s *TicketService) publish(ctx context.Context, detail domain.TicketDetail) {
	if s.producer == nil || s.ticketTopic == "" {
		return
	}
	event := kafka.NewTicketEvent(kafka.EventTicketBooked, detail)
	key := detail.Ticket.ReferenceNumber
	if err := s.producer.Publish(ctx, s.ticketTopic, key, event); err != nil {
		logging.LogError(s.logger, "failed to publish ticket event", err, slog.String("reference", key))
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			logging.LogError(s.logger, "failed to publish ticket notification", err, slog.String("reference", key))
		}
	}
}

func (s *TicketService) Check(ctx context.Context, input CheckInput) (*domain.TicketCheck, error) {
	reference := strings.TrimSpace(input.ReferenceNumber)
	if reference == "" {
		return nil, domain.ValidationError{Field: "referenceNumber", Msg: "reference number is required"}
	}

	ticket, err := s.tickets.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	lastName := strings.TrimSpace(input.LastName)
	if lastName != "" && !strings.Contains(strings.ToLower(ticket.PassengerName), strings.ToLower(lastName)) {
		return nil, domain.MismatchError{Msg: "passenger name does not match ticket"}
	}

	valid, expired := domain.Evaluate(*ticket, s.now())

	detail, err := s.resolve(ctx, *ticket)
	if err != nil {
		return nil, err
	}
	return &domain.TicketCheck{Valid: valid, Status: ticket.Status, Expired: expired, Detail: *detail}, nil
}

func (s *TicketService) Detail(ctx context.Context, reference string) (*domain.TicketDetail, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, domain.ValidationError{Field: "referenceNumber", Msg: "reference number is required"}
	}
	ticket, err := s.tickets.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, *ticket)
}

// resolve joins a stored ticket with its schedule. Links that no longer resolve are integrity errors.
func (s *TicketService) resolve(ctx context.Context, ticket domain.Ticket) (*domain.TicketDetail, error) {
	detail, err := s.schedules.GetDetail(ctx, ticket.ScheduleID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.IntegrityError{Msg: "ticket schedule no longer exists", Err: err}
		}
		return nil, err
	}

	origin, okOrigin := detail.StopByID(ticket.OriginStopID)
	destination, okDestination := detail.StopByID(ticket.DestinationStopID)
	if !okOrigin || !okDestination {
		return nil, domain.IntegrityError{Msg: "invalid ticket data: stations not found"}
	}

	className := ""
	if class, ok := detail.Class(ticket.ClassID); ok {
		className = class.Name
	} else {
		s.logger.Warn("ticket class no longer offered on line",
			slog.String("reference", ticket.ReferenceNumber),
			slog.String("class_id", ticket.ClassID))
	}

	ticket.JourneyDate = domain.CalendarDate(ticket.JourneyDate, s.location)
	ride := pricing.Ride{Origin: origin, Destination: destination}
	result := s.describe(detail, ride, ticket, className)
	return &result, nil
}

func (s *TicketService) describe(detail *domain.ScheduleDetail, ride pricing.Ride, ticket domain.Ticket, className string) domain.TicketDetail {
	dep, arr := ride.Times(ticket.JourneyDate)
	return domain.TicketDetail{
		Ticket:           ticket,
		TrainNumber:      detail.Train.Number,
		TrainName:        detail.Train.Name,
		LineName:         detail.Line.Name,
		ClassName:        className,
		DepartureStation: ride.Origin.StationName,
		DepartureTime:    dep,
		ArrivalStation:   ride.Destination.StationName,
		ArrivalTime:      arr,
	}
}

var _ TicketUseCase = (*TicketService)(nil)
