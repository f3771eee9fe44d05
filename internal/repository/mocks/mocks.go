// Package mocks holds testify mocks of the repository interfaces shared by the service tests.
package mocks

import (
	"context"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/pricing"
	"github.com/Domenick1991/railbooking/internal/repository"
	"github.com/stretchr/testify/mock"
)

type StationRepository struct {
	mock.Mock
}

func (m *StationRepository) List(ctx context.Context) ([]domain.Station, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Station), args.Error(1)
}

func (m *StationRepository) GetByID(ctx context.Context, id string) (*domain.Station, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Station), args.Error(1)
}

func (m *StationRepository) Create(ctx context.Context, station *domain.Station) error {
	return m.Called(ctx, station).Error(0)
}

func (m *StationRepository) Update(ctx context.Context, station *domain.Station) error {
	return m.Called(ctx, station).Error(0)
}

func (m *StationRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type ConnectionRepository struct {
	mock.Mock
}

func (m *ConnectionRepository) List(ctx context.Context) ([]domain.Connection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Connection), args.Error(1)
}

func (m *ConnectionRepository) GetByID(ctx context.Context, id string) (*domain.Connection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *ConnectionRepository) Create(ctx context.Context, conn *domain.Connection) error {
	return m.Called(ctx, conn).Error(0)
}

func (m *ConnectionRepository) Update(ctx context.Context, conn *domain.Connection) error {
	return m.Called(ctx, conn).Error(0)
}

func (m *ConnectionRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ConnectionRepository) Distances(ctx context.Context, pairs []domain.StationPair) (pricing.DistanceTable, error) {
	args := m.Called(ctx, pairs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pricing.DistanceTable), args.Error(1)
}

type TrainRepository struct {
	mock.Mock
}

func (m *TrainRepository) ListTrains(ctx context.Context) ([]domain.Train, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Train), args.Error(1)
}

func (m *TrainRepository) GetTrain(ctx context.Context, id string) (*domain.Train, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Train), args.Error(1)
}

func (m *TrainRepository) CreateTrain(ctx context.Context, train *domain.Train) error {
	return m.Called(ctx, train).Error(0)
}

func (m *TrainRepository) UpdateTrain(ctx context.Context, train *domain.Train) error {
	return m.Called(ctx, train).Error(0)
}

func (m *TrainRepository) DeleteTrain(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *TrainRepository) ListClasses(ctx context.Context) ([]domain.TrainClass, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrainClass), args.Error(1)
}

func (m *TrainRepository) GetClass(ctx context.Context, id string) (*domain.TrainClass, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrainClass), args.Error(1)
}

func (m *TrainRepository) CreateClass(ctx context.Context, class *domain.TrainClass) error {
	return m.Called(ctx, class).Error(0)
}

func (m *TrainRepository) UpdateClass(ctx context.Context, class *domain.TrainClass) error {
	return m.Called(ctx, class).Error(0)
}

func (m *TrainRepository) DeleteClass(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *TrainRepository) ListLines(ctx context.Context) ([]domain.TrainLine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrainLine), args.Error(1)
}

func (m *TrainRepository) GetLine(ctx context.Context, id string) (*domain.TrainLine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrainLine), args.Error(1)
}

func (m *TrainRepository) CreateLine(ctx context.Context, line *domain.TrainLine, classIDs []string) error {
	return m.Called(ctx, line, classIDs).Error(0)
}

func (m *TrainRepository) UpdateLine(ctx context.Context, line *domain.TrainLine, classIDs []string) error {
	return m.Called(ctx, line, classIDs).Error(0)
}

func (m *TrainRepository) DeleteLine(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type ScheduleRepository struct {
	mock.Mock
}

func (m *ScheduleRepository) List(ctx context.Context) ([]domain.ScheduleDetail, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScheduleDetail), args.Error(1)
}

func (m *ScheduleRepository) GetDetail(ctx context.Context, id string) (*domain.ScheduleDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleDetail), args.Error(1)
}

func (m *ScheduleRepository) ListServing(ctx context.Context, originStationID, destinationStationID string, day time.Weekday) ([]domain.ScheduleDetail, error) {
	args := m.Called(ctx, originStationID, destinationStationID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScheduleDetail), args.Error(1)
}

func (m *ScheduleRepository) Create(ctx context.Context, schedule *domain.TrainSchedule) error {
	return m.Called(ctx, schedule).Error(0)
}

func (m *ScheduleRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ScheduleRepository) ListStops(ctx context.Context, scheduleID string) ([]domain.StationStop, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StationStop), args.Error(1)
}

func (m *ScheduleRepository) GetStop(ctx context.Context, id string) (*domain.StationStop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StationStop), args.Error(1)
}

func (m *ScheduleRepository) CreateStop(ctx context.Context, stop *domain.StationStop) error {
	return m.Called(ctx, stop).Error(0)
}

func (m *ScheduleRepository) UpdateStop(ctx context.Context, stop *domain.StationStop) error {
	return m.Called(ctx, stop).Error(0)
}

func (m *ScheduleRepository) DeleteStop(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type TicketRepository struct {
	mock.Mock
}

func (m *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *TicketRepository) GetByReference(ctx context.Context, reference string) (*domain.Ticket, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *TicketRepository) ReferencesStop(ctx context.Context, stopID string) (bool, error) {
	args := m.Called(ctx, stopID)
	return args.Bool(0), args.Error(1)
}

type AdminRepository struct {
	mock.Mock
}

func (m *AdminRepository) List(ctx context.Context) ([]domain.Admin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Admin), args.Error(1)
}

func (m *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *AdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	return m.Called(ctx, admin).Error(0)
}

func (m *AdminRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

var (
	_ repository.StationRepository    = (*StationRepository)(nil)
	_ repository.ConnectionRepository = (*ConnectionRepository)(nil)
	_ repository.TrainRepository      = (*TrainRepository)(nil)
	_ repository.ScheduleRepository   = (*ScheduleRepository)(nil)
	_ repository.TicketRepository     = (*TicketRepository)(nil)
	_ repository.AdminRepository      = (*AdminRepository)(nil)
	_ repository.AuditRepository      = (*AuditRepository)(nil)
)
