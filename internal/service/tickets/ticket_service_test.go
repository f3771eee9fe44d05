package tickets

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/kafka"
	"github.com/Domenick1991/railbooking/internal/pricing"
	"github.com/Domenick1991/railbooking/internal/repository"
	"github.com/Domenick1991/railbooking/internal/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func clock(h, m int) domain.ClockTime {
	return domain.ClockTime{Hour: h, Minute: m}
}

func scheduleDetail() *domain.ScheduleDetail {
	return &domain.ScheduleDetail{
		Schedule: domain.TrainSchedule{ID: "sch-1", Days: domain.Daily(), Departure: clock(8, 0)},
		Line:     domain.TrainLine{ID: "line-1", Name: "Coastal"},
		Train:    domain.Train{ID: "train-1", Name: "Express", Number: "IC-1"},
		Classes:  []domain.TrainClass{{ID: "eco", Name: "Economy", PricePerKm: 2}},
		Stops: []domain.StationStop{
			{ID: "stop-1", StationID: "S1", StationName: "One", StopOrder: 1, Times: domain.DepartureOnly(clock(8, 0))},
			{ID: "stop-2", StationID: "S2", StationName: "Two", StopOrder: 2, Times: domain.ArrivalAndDeparture(clock(8, 20), clock(8, 25))},
			{ID: "stop-3", StationID: "S3", StationName: "Three", StopOrder: 3, Times: domain.ArrivalOnly(clock(9, 0))},
		},
	}
}

func bookInput() BookInput {
	return BookInput{
		ScheduleID:        "sch-1",
		ClassID:           "eco",
		OriginStopID:      "stop-1",
		DestinationStopID: "stop-3",
		JourneyDate:       "2025-03-14",
		PassengerName:     "Jane Doe",
		PassengerEmail:    "jane@example.com",
	}
}

var purchaseTime = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func newService(tickets *mocks.TicketRepository, schedules *mocks.ScheduleRepository, connections *mocks.ConnectionRepository, opts ...TicketServiceOption) *TicketService {
	opts = append([]TicketServiceOption{WithClock(func() time.Time { return purchaseTime })}, opts...)
	return NewTicketService(tickets, schedules, connections, opts...)
}

func TestTicketService_Book_Success(t *testing.T) {
	ctx := context.Background()
	tickets := &mocks.TicketRepository{}
	schedules := &mocks.ScheduleRepository{}
	connections := &mocks.ConnectionRepository{}
	producer := &MockProducer{}
	service := newService(tickets, schedules, connections,
		WithProducer(producer, "tickets"),
		WithReferenceGenerator(func() (string, error) { return "ABCDEFGH12", nil }))

	schedules.On("GetDetail", ctx, "sch-1").Return(scheduleDetail(), nil).Once()
	connections.On("Distances", ctx, []domain.StationPair{{From: "S1", To: "S2"}, {From: "S2", To: "S3"}}).
		Return(pricing.DistanceTable{{From: "S1", To: "S2"}: 10, {From: "S2", To: "S3"}: 15}, nil).Once()
	tickets.On("Create", ctx, mock.AnythingOfType("*domain.Ticket")).Return(nil).Once()
	producer.On("Publish", ctx, "tickets", "ABCDEFGH12", mock.MatchedBy(func(e kafka.TicketEvent) bool {
		return e.Type == kafka.EventTicketBooked && e.Price == 50
	})).Return(nil).Once()

	detail, err := service.Book(ctx, bookInput())

	require.NoError(t, err)
	ticket := detail.Ticket
	assert.Equal(t, "ABCDEFGH12", ticket.ReferenceNumber)
	assert.Equal(t, 50.0, ticket.Price)
	assert.Equal(t, domain.TicketStatusValid, ticket.Status)
	assert.Equal(t, time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), ticket.JourneyDate)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), ticket.ValidUntil)
	assert.Equal(t, purchaseTime, ticket.PurchaseDate)
	assert.Equal(t, "jane@example.com", ticket.PassengerEmail)
	assert.Equal(t, "Economy", detail.ClassName)
	assert.Equal(t, "One", detail.DepartureStation)
	assert.Equal(t, "Three", detail.ArrivalStation)
	assert.Equal(t, time.Date(2025, time.March, 14, 8, 0, 0, 0, time.UTC), detail.DepartureTime)
	assert.Equal(t, time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC), detail.ArrivalTime)

	tickets.AssertExpectations(t)
	schedules.AssertExpectations(t)
	connections.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestTicketService_Book_ValidationSequence(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name        string
		mutate      func(*BookInput)
		expectedErr string
		isNotFound  bool
	}{
		{name: "missing schedule", mutate: func(i *BookInput) { i.ScheduleID = "" }, expectedErr: "trainScheduleId: missing required field"},
		{name: "missing class", mutate: func(i *BookInput) { i.ClassID = " " }, expectedErr: "trainClassId: missing required field"},
		{name: "missing origin", mutate: func(i *BookInput) { i.OriginStopID = "" }, expectedErr: "originStopId: missing required field"},
		{name: "missing destination", mutate: func(i *BookInput) { i.DestinationStopID = "" }, expectedErr: "destinationStopId: missing required field"},
		{name: "missing date", mutate: func(i *BookInput) { i.JourneyDate = "" }, expectedErr: "journeyDate: missing required field"},
		{name: "missing passenger", mutate: func(i *BookInput) { i.PassengerName = "" }, expectedErr: "passengerName: missing required field"},
		{name: "bad date", mutate: func(i *BookInput) { i.JourneyDate = "tomorrow" }, expectedErr: "invalid journey date format"},
		{name: "class not on line", mutate: func(i *BookInput) { i.ClassID = "first" }, expectedErr: "invalid train class for this train line"},
		{name: "stop not on schedule", mutate: func(i *BookInput) { i.DestinationStopID = "stop-9" }, expectedErr: "invalid origin or destination stop"},
		{name: "origin after destination", mutate: func(i *BookInput) { i.OriginStopID, i.DestinationStopID = "stop-3", "stop-1" }, expectedErr: "origin must come before destination"},
		{name: "same stop", mutate: func(i *BookInput) { i.DestinationStopID = "stop-1" }, expectedErr: "origin must come before destination"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tickets := &mocks.TicketRepository{}
			schedules := &mocks.ScheduleRepository{}
			schedules.On("GetDetail", ctx, "sch-1").Return(scheduleDetail(), nil).Maybe()
			service := newService(tickets, schedules, &mocks.ConnectionRepository{})

			input := bookInput()
			tc.mutate(&input)
			detail, err := service.Book(ctx, input)

			assert.Nil(t, detail)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Contains(t, err.Error(), tc.expectedErr)
			tickets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestTicketService_Book_ScheduleNotFound(t *testing.T) {
	ctx := context.Background()
	tickets := &mocks.TicketRepository{}
	schedules := &mocks.ScheduleRepository{}
	service := newService(tickets, schedules, &mocks.ConnectionRepository{})

	schedules.On("GetDetail", ctx, "sch-1").Return(nil, domain.NotFoundError{Resource: "train schedule"}).Once()

	detail, err := service.Book(ctx, bookInput())

	assert.Nil(t, detail)
	assert.True(t, domain.IsNotFound(err))
	assert.EqualError(t, err, "train schedule not found")
}

func TestTicketService_Book_RetriesReferenceCollision(t *testing.T) {
	ctx := context.Background()
	tickets := &mocks.TicketRepository{}
	schedules := &mocks.ScheduleRepository{}
	connections := &mocks.ConnectionRepository{}

	refs := []string{"AAAAAAAAAA", "BBBBBBBBBB"}
	calls := 0
	service := newService(tickets, schedules, connections, WithReferenceGenerator(func() (string, error) {
		ref := refs[calls]
		calls++
		return ref, nil
	}))

	duplicate := domain.ConflictError{Resource: "ticket", Err: repository.ErrDuplicateReference}
	schedules.On("GetDetail", ctx, "sch-1").Return(scheduleDetail(), nil).Once()
	connections.On("Distances", ctx, mock.Anything).Return(pricing.DistanceTable{}, nil).Once()
	tickets.On("Create", ctx, mock.MatchedBy(func(t *domain.Ticket) bool { return t.ReferenceNumber == "AAAAAAAAAA" })).Return(duplicate).Once()
	tickets.On("Create", ctx, mock.MatchedBy(func(t *domain.Ticket) bool { return t.ReferenceNumber == "BBBBBBBBBB" })).Return(nil).Once()

	detail, err := service.Book(ctx, bookInput())

	require.NoError(t, err)
	assert.Equal(t, "BBBBBBBBBB", detail.Ticket.ReferenceNumber)
	tickets.AssertExpectations(t)
}

func TestTicketService_Book_ReferenceAttemptsExhausted(t *testing.T) {
	ctx := context.Background()
	tickets := &mocks.TicketRepository{}
	schedules := &mocks.ScheduleRepository{}
	connections := &mocks.ConnectionRepository{}
	service := newService(tickets, schedules, connections, WithReferenceAttempts(3))

	duplicate := domain.ConflictError{Resource: "ticket", Err: repository.ErrDuplicateReference}
	schedules.On("GetDetail", ctx, "sch-1").Return(scheduleDetail(), nil).Once()
	connections.On("Distances", ctx, mock.Anything).Return(pricing.DistanceTable{}, nil).Once()
	tickets.On("Create", ctx, mock.Anything).Return(duplicate).Times(3)

	detail, err := service.Book(ctx, bookInput())

	assert.Nil(t, detail)
	assert.True(t, domain.IsInternal(err))
	tickets.AssertExpectations(t)
}

func TestTicketService_Book_StorageFailure(t *testing.T) {
	ctx := context.Background()
	tickets := &mocks.TicketRepository{}
	schedules := &mocks.ScheduleRepository{}
	connections := &mocks.ConnectionRepository{}
	service := newService(tickets, schedules, connections)

	schedules.On("GetDetail", ctx, "sch-1").Return(scheduleDetail(), nil).Once()
	connections.On("Distances", ctx, mock.Anything).Return(pricing.DistanceTable{}, nil).Once()
	tickets.On("Create", ctx, mock.Anything).Return(domain.InternalError{Msg: "storage error", Err: errors.New("db down")}).Once()

	detail, err := service.Book(ctx, bookInput())

	assert.Nil(t, detail)
	assert.True(t, domain.IsInternal(err))
}

func TestTicketService_Book_PublishFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	tickets := &mocks.TicketRepository{}
	schedules := &mocks.ScheduleRepository{}
	connections := &mocks.ConnectionRepository{}
	producer := &MockProducer{}
	service := newService(tickets, schedules, connections, WithProducer(producer, "tickets"), WithNotificationsTopic("notifications"))

	schedules.On("GetDetail", ctx, "sch-1").Return(scheduleDetail(), nil).Once()
	connections.On("Distances", ctx, mock.Anything).Return(pricing.DistanceTable{}, nil).Once()
	tickets.On("Create", ctx, mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "tickets", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	detail, err := service.Book(ctx, bookInput())

	require.NoError(t, err)
	assert.Equal(t, 0.0, detail.Ticket.Price)
	producer.AssertNotCalled(t, "Publish", ctx, "notifications", mock.Anything, mock.Anything)
}

func storedTicket(status domain.TicketStatus) *domain.Ticket {
	return &domain.Ticket{
		ID:                "t-1",
		ReferenceNumber:   "ABCDEFGH12",
		ScheduleID:        "sch-1",
		ClassID:           "eco",
		OriginStopID:      "stop-1",
		DestinationStopID: "stop-3",
		JourneyDate:       time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
		PassengerName:     "Jane Doe",
		Status:            status,
		Price:             50,
		ValidUntil:        time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		PurchaseDate:      purchaseTime,
	}
}

func TestTicketService_Check_ValidTicket(t *testing.T) {
	ctx := context.Background()
	tickets := &mocks.TicketRepository{}
	schedules := &mocks.ScheduleRepository{}
	now := time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC)
	service := newService(tickets, schedules, &mocks.ConnectionRepository{}, WithClock(func() time.Time { return now }))

	tickets.On("GetByReference", ctx, "ABCDEFGH12").Return(storedTicket(domain.TicketStatusValid), nil).Once()
	schedules.On("GetDetail", ctx, "sch-1").Return(scheduleDetail(), nil).Once()

	check, err := service.Check(ctx, CheckInput{ReferenceNumber: "ABCDEFGH12", LastName: "doe"})

	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.True(t, check.Expired)
	assert.Equal(t, domain.TicketStatusValid, check.Status)
	assert.Equal(t, "Economy", check.Detail.ClassName)
	assert.Equal(t, time.Date(2025, time.March, 14, 8, 0, 0, 0, time.UTC), check.Detail.DepartureTime)
}

func TestTicketService_Check_ValidityByStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 14, 7, 0, 0, 0, time.UTC)

	testCases := []struct {
		status domain.TicketStatus
		valid  bool
	}{
		{status: domain.TicketStatusValid, valid: true},
		{status: domain.TicketStatusUsed, valid: false},
		{status: domain.TicketStatusCancelled, valid: false},
		{status: domain.TicketStatusRefunded, valid: false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.status), func(t *testing.T) {
			tickets := &mocks.TicketRepository{}
			schedules := &mocks.ScheduleRepository{}
			service := newService(tickets, schedules, &mocks.ConnectionRepository{}, WithClock(func() time.Time { return now }))

			tickets.On("GetByReference", ctx, "ABCDEFGH12").Return(storedTicket(tc.status), nil).Once()
			schedules.On("GetDetail", ctx, "sch-1").Return(scheduleDetail(), nil).Once()

			check, err := service.Check(ctx, CheckInput{ReferenceNumber: "ABCDEFGH12"})

			require.NoError(t, err)
			assert.Equal(t, tc.valid, check.Valid)
			assert.False(t, check.Expired)
			assert.Equal(t, tc.status, check.Status)
		})
	}
}

func TestTicketService_Check_Idempotent(t *testing.T) {
	ctx := context.Background()
	tickets := &mocks.TicketRepository{}
	schedules := &mocks.ScheduleRepository{}
	service := newService(tickets, schedules, &mocks.ConnectionRepository{})

	tickets.On("GetByReference", ctx, "ABCDEFGH12").Return(storedTicket(domain.TicketStatusValid), nil).Twice()
	schedules.On("GetDetail", ctx, "sch-1").Return(scheduleDetail(), nil).Twice()

	first, err := service.Check(ctx, CheckInput{ReferenceNumber: "ABCDEFGH12"})
	require.NoError(t, err)
	second, err := service.Check(ctx, CheckInput{ReferenceNumber: "ABCDEFGH12"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTicketService_Check_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing reference", func(t *testing.T) {
		service := newService(&mocks.TicketRepository{}, &mocks.ScheduleRepository{}, &mocks.ConnectionRepository{})
		_, err := service.Check(ctx, CheckInput{ReferenceNumber: "  "})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("unknown reference", func(t *testing.T) {
		tickets := &mocks.TicketRepository{}
		tickets.On("GetByReference", ctx, "NOPE").Return(nil, domain.NotFoundError{Resource: "ticket"}).Once()
		service := newService(tickets, &mocks.ScheduleRepository{}, &mocks.ConnectionRepository{})

		_, err := service.Check(ctx, CheckInput{ReferenceNumber: "NOPE"})
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("name mismatch", func(t *testing.T) {
		tickets := &mocks.TicketRepository{}
		schedules := &mocks.ScheduleRepository{}
		tickets.On("GetByReference", ctx, "ABCDEFGH12").Return(storedTicket(domain.TicketStatusValid), nil).Once()
		service := newService(tickets, schedules, &mocks.ConnectionRepository{})

		_, err := service.Check(ctx, CheckInput{ReferenceNumber: "ABCDEFGH12", LastName: "Smith"})
		assert.True(t, domain.IsMismatch(err))
		schedules.AssertNotCalled(t, "GetDetail", mock.Anything, mock.Anything)
	})

	t.Run("stops no longer on schedule", func(t *testing.T) {
		tickets := &mocks.TicketRepository{}
		schedules := &mocks.ScheduleRepository{}
		broken := storedTicket(domain.TicketStatusValid)
		broken.DestinationStopID = "stop-gone"
		tickets.On("GetByReference", ctx, "ABCDEFGH12").Return(broken, nil).Once()
		schedules.On("GetDetail", ctx, "sch-1").Return(scheduleDetail(), nil).Once()
		service := newService(tickets, schedules, &mocks.ConnectionRepository{})

		_, err := service.Check(ctx, CheckInput{ReferenceNumber: "ABCDEFGH12"})
		assert.True(t, domain.IsIntegrity(err))
	})

	t.Run("schedule deleted", func(t *testing.T) {
		tickets := &mocks.TicketRepository{}
		schedules := &mocks.ScheduleRepository{}
		tickets.On("GetByReference", ctx, "ABCDEFGH12").Return(storedTicket(domain.TicketStatusValid), nil).Once()
		schedules.On("GetDetail", ctx, "sch-1").Return(nil, domain.NotFoundError{Resource: "train schedule"}).Once()
		service := newService(tickets, schedules, &mocks.ConnectionRepository{})

		_, err := service.Check(ctx, CheckInput{ReferenceNumber: "ABCDEFGH12"})
		assert.True(t, domain.IsIntegrity(err))
	})
}

func TestTicketService_Detail(t *testing.T) {
	ctx := context.Background()
	tickets := &mocks.TicketRepository{}
	schedules := &mocks.ScheduleRepository{}
	loc := time.FixedZone("CET", 3600)
	service := newService(tickets, schedules, &mocks.ConnectionRepository{}, WithLocation(loc))

	tickets.On("GetByReference", ctx, "ABCDEFGH12").Return(storedTicket(domain.TicketStatusUsed), nil).Once()
	schedules.On("GetDetail", ctx, "sch-1").Return(scheduleDetail(), nil).Once()

	detail, err := service.Detail(ctx, "ABCDEFGH12")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 14, 8, 0, 0, 0, loc), detail.DepartureTime)
	assert.Equal(t, "IC-1", detail.TrainNumber)
}

func TestNewReference(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{10}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		ref, err := NewReference()
		require.NoError(t, err)
		assert.Regexp(t, pattern, ref, fmt.Sprintf("reference %d", i))
		seen[ref] = struct{}{}
	}
	assert.Len(t, seen, 100)
}
