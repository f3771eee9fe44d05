package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/logging"
	"github.com/Domenick1991/railbooking/internal/repository"
	"github.com/Domenick1991/railbooking/internal/service/auth"
)

// CatalogUseCase is the administrative view of the rail network. List operations never fail: a
// store error is logged and yields an empty list.
type CatalogUseCase interface {
	ListStations(ctx context.Context) []domain.Station
	GetStation(ctx context.Context, id string) (*domain.Station, error)
	CreateStation(ctx context.Context, input StationInput) (*domain.Station, error)
	UpdateStation(ctx context.Context, id string, input StationInput) (*domain.Station, error)
	DeleteStation(ctx context.Context, id string) error

	ListConnections(ctx context.Context) []domain.Connection
	GetConnection(ctx context.Context, id string) (*domain.Connection, error)
	CreateConnection(ctx context.Context, input ConnectionInput) (*domain.Connection, error)
	UpdateConnection(ctx context.Context, id string, input ConnectionInput) (*domain.Connection, error)
	DeleteConnection(ctx context.Context, id string) error

	ListTrains(ctx context.Context) []domain.Train
	GetTrain(ctx context.Context, id string) (*domain.Train, error)
	CreateTrain(ctx context.Context, input TrainInput) (*domain.Train, error)
	UpdateTrain(ctx context.Context, id string, input TrainInput) (*domain.Train, error)
	DeleteTrain(ctx context.Context, id string) error

	ListClasses(ctx context.Context) []domain.TrainClass
	GetClass(ctx context.Context, id string) (*domain.TrainClass, error)
	CreateClass(ctx context.Context, input ClassInput) (*domain.TrainClass, error)
	UpdateClass(ctx context.Context, id string, input ClassInput) (*domain.TrainClass, error)
	DeleteClass(ctx context.Context, id string) error

	ListLines(ctx context.Context) []domain.TrainLine
	GetLine(ctx context.Context, id string) (*domain.TrainLine, error)
	CreateLine(ctx context.Context, input LineInput) (*domain.TrainLine, error)
	UpdateLine(ctx context.Context, id string, input LineInput) (*domain.TrainLine, error)
	DeleteLine(ctx context.Context, id string) error

	ListSchedules(ctx context.Context) []domain.ScheduleDetail
	GetSchedule(ctx context.Context, id string) (*domain.ScheduleDetail, error)
	CreateSchedule(ctx context.Context, input ScheduleInput) (*domain.TrainSchedule, error)
	DeleteSchedule(ctx context.Context, id string) error

	ListStops(ctx context.Context, scheduleID string) []domain.StationStop
	GetStop(ctx context.Context, id string) (*domain.StationStop, error)
	CreateStop(ctx context.Context, input StopInput) (*domain.StationStop, error)
	UpdateStop(ctx context.Context, id string, input StopInput) (*domain.StationStop, error)
	DeleteStop(ctx context.Context, id string) error
}

// SearchInvalidator drops cached search results after the network changes.
type SearchInvalidator interface {
	InvalidateItineraries(ctx context.Context) error
}

type CatalogService struct {
	stations    repository.StationRepository
	connections repository.ConnectionRepository
	trains      repository.TrainRepository
	schedules   repository.ScheduleRepository
	tickets     repository.TicketRepository
	audit       repository.AuditRepository
	cache       SearchInvalidator
	logger      *slog.Logger
}

type Repositories struct {
	Stations    repository.StationRepository
	Connections repository.ConnectionRepository
	Trains      repository.TrainRepository
	Schedules   repository.ScheduleRepository
	Tickets     repository.TicketRepository
	Audit       repository.AuditRepository
}

type CatalogServiceOption func(*CatalogService)

func WithSearchCache(cache SearchInvalidator) CatalogServiceOption {
	return func(s *CatalogService) {
		s.cache = cache
	}
}

func WithLogger(logger *slog.Logger) CatalogServiceOption {
	return func(s *CatalogService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewCatalogService(repos Repositories, opts ...CatalogServiceOption) *CatalogService {
	service := &CatalogService{
		stations:    repos.Stations,
		connections: repos.Connections,
		trains:      repos.Trains,
		schedules:   repos.Schedules,
		tickets:     repos.Tickets,
		audit:       repos.Audit,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// written records the audit entry for a successful write and invalidates cached searches.
func (s *CatalogService) written(ctx context.Context, action, details string) {
	if s.audit != nil {
		actor, _ := auth.PrincipalFrom(ctx)
		entry := &domain.AuditEntry{AdminID: actor.AdminID, Action: action, Details: details, IPAddress: actor.IPAddress}
		if err := s.audit.Record(ctx, entry); err != nil {
			logging.LogError(s.logger, "failed to write audit log", err, slog.String("action", action))
		}
	}
	if s.cache != nil {
		if err := s.cache.InvalidateItineraries(ctx); err != nil {
			logging.LogError(s.logger, "failed to invalidate search cache", err, slog.String("action", action))
		}
	}
}

// degrade turns a failed listing into an empty one.
func degrade[T any](logger *slog.Logger, what string, items []T, err error) []T {
	if err != nil {
		logging.LogError(logger, "listing "+what+" failed, returning empty result", err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func activeOrDefault(active *bool) bool {
	if active == nil {
		return true
	}
	return *active
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.ValidationError{Field: field, Msg: "is required"}
	}
	return nil
}

// Stations

type StationInput struct {
	Name        string
	Description string
	Active      *bool
}

func (s *CatalogService) ListStations(ctx context.Context) []domain.Station {
	stations, err := s.stations.List(ctx)
	return degrade(s.logger, "stations", stations, err)
}

func (s *CatalogService) GetStation(ctx context.Context, id string) (*domain.Station, error) {
	return s.stations.GetByID(ctx, id)
}

func (s *CatalogService) CreateStation(ctx context.Context, input StationInput) (*domain.Station, error) {
	if err := required("name", input.Name); err != nil {
		return nil, err
	}
	station := &domain.Station{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Active:      activeOrDefault(input.Active),
	}
	if err := s.stations.Create(ctx, station); err != nil {
		return nil, err
	}
	s.written(ctx, "CREATE_STATION", fmt.Sprintf("Created station: %s (%s)", station.Name, station.ID))
	return station, nil
}

func (s *CatalogService) UpdateStation(ctx context.Context, id string, input StationInput) (*domain.Station, error) {
	if err := required("name", input.Name); err != nil {
		return nil, err
	}
	station, err := s.stations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	station.Name = strings.TrimSpace(input.Name)
	station.Description = strings.TrimSpace(input.Description)
	if input.Active != nil {
		station.Active = *input.Active
	}
	if err := s.stations.Update(ctx, station); err != nil {
		return nil, err
	}
	s.written(ctx, "UPDATE_STATION", fmt.Sprintf("Updated station: %s (%s)", station.Name, station.ID))
	return station, nil
}

func (s *CatalogService) DeleteStation(ctx context.Context, id string) error {
	if err := s.stations.Delete(ctx, id); err != nil {
		return err
	}
	s.written(ctx, "DELETE_STATION", fmt.Sprintf("Deleted station: %s", id))
	return nil
}

// Connections

type ConnectionInput struct {
	FromStationID string
	ToStationID   string
	Distance      float64
	Active        *bool
}

func (i ConnectionInput) validate() error {
	if err := required("fromStationId", i.FromStationID); err != nil {
		return err
	}
	if err := required("toStationId", i.ToStationID); err != nil {
		return err
	}
	if strings.TrimSpace(i.FromStationID) == strings.TrimSpace(i.ToStationID) {
		return domain.ValidationError{Msg: "first and second stations must be different"}
	}
	if i.Distance <= 0 {
		return domain.ValidationError{Field: "distance", Msg: "must be greater than 0"}
	}
	return nil
}

func (s *CatalogService) ListConnections(ctx context.Context) []domain.Connection {
	conns, err := s.connections.List(ctx)
	return degrade(s.logger, "connections", conns, err)
}

func (s *CatalogService) GetConnection(ctx context.Context, id string) (*domain.Connection, error) {
	return s.connections.GetByID(ctx, id)
}

func (s *CatalogService) CreateConnection(ctx context.Context, input ConnectionInput) (*domain.Connection, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	conn := &domain.Connection{
		FromStationID: strings.TrimSpace(input.FromStationID),
		ToStationID:   strings.TrimSpace(input.ToStationID),
		Distance:      input.Distance,
		Active:        activeOrDefault(input.Active),
	}
	if err := s.stationsExist(ctx, conn.FromStationID, conn.ToStationID); err != nil {
		return nil, err
	}
	if err := s.connections.Create(ctx, conn); err != nil {
		return nil, err
	}
	s.written(ctx, "CREATE_CONNECTION", fmt.Sprintf("Created connection: %s (%s)", conn.FromStationID, conn.ToStationID))
	return conn, nil
}

func (s *CatalogService) UpdateConnection(ctx context.Context, id string, input ConnectionInput) (*domain.Connection, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	conn, err := s.connections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	conn.FromStationID = strings.TrimSpace(input.FromStationID)
	conn.ToStationID = strings.TrimSpace(input.ToStationID)
	conn.Distance = input.Distance
	if input.Active != nil {
		conn.Active = *input.Active
	}
	if err := s.stationsExist(ctx, conn.FromStationID, conn.ToStationID); err != nil {
		return nil, err
	}
	if err := s.connections.Update(ctx, conn); err != nil {
		return nil, err
	}
	s.written(ctx, "UPDATE_CONNECTION", fmt.Sprintf("Updated connection: %s (%s)", conn.FromStationID, conn.ToStationID))
	return conn, nil
}

func (s *CatalogService) DeleteConnection(ctx context.Context, id string) error {
	if err := s.connections.Delete(ctx, id); err != nil {
		return err
	}
	s.written(ctx, "DELETE_CONNECTION", fmt.Sprintf("Deleted connection: %s", id))
	return nil
}

func (s *CatalogService) stationsExist(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if _, err := s.stations.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Trains

type TrainInput struct {
	Name   string
	Number string
	Active *bool
}

func (i TrainInput) validate() error {
	if err := required("name", i.Name); err != nil {
		return err
	}
	return required("number", i.Number)
}

func (s *CatalogService) ListTrains(ctx context.Context) []domain.Train {
	trains, err := s.trains.ListTrains(ctx)
	return degrade(s.logger, "trains", trains, err)
}

func (s *CatalogService) GetTrain(ctx context.Context, id string) (*domain.Train, error) {
	return s.trains.GetTrain(ctx, id)
}

func (s *CatalogService) CreateTrain(ctx context.Context, input TrainInput) (*domain.Train, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	train := &domain.Train{
		Name:   strings.TrimSpace(input.Name),
		Number: strings.TrimSpace(input.Number),
		Active: activeOrDefault(input.Active),
	}
	if err := s.trains.CreateTrain(ctx, train); err != nil {
		return nil, err
	}
	s.written(ctx, "CREATE_TRAIN", fmt.Sprintf("Created train: %s (%s)", train.Name, train.Number))
	return train, nil
}

func (s *CatalogService) UpdateTrain(ctx context.Context, id string, input TrainInput) (*domain.Train, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	train, err := s.trains.GetTrain(ctx, id)
	if err != nil {
		return nil, err
	}
	train.Name = strings.TrimSpace(input.Name)
	train.Number = strings.TrimSpace(input.Number)
	if input.Active != nil {
		train.Active = *input.Active
	}
	if err := s.trains.UpdateTrain(ctx, train); err != nil {
		return nil, err
	}
	s.written(ctx, "UPDATE_TRAIN", fmt.Sprintf("Updated train: %s (%s)", train.Name, train.Number))
	return train, nil
}

func (s *CatalogService) DeleteTrain(ctx context.Context, id string) error {
	if err := s.trains.DeleteTrain(ctx, id); err != nil {
		return err
	}
	s.written(ctx, "DELETE_TRAIN", fmt.Sprintf("Deleted train: %s", id))
	return nil
}

// Train classes

type ClassInput struct {
	Name       string
	PricePerKm float64
}

func (i ClassInput) validate() error {
	if err := required("name", i.Name); err != nil {
		return err
	}
	if i.PricePerKm <= 0 {
		return domain.ValidationError{Field: "pricePerKm", Msg: "must be greater than 0"}
	}
	return nil
}

func (s *CatalogService) ListClasses(ctx context.Context) []domain.TrainClass {
	classes, err := s.trains.ListClasses(ctx)
	return degrade(s.logger, "train classes", classes, err)
}

func (s *CatalogService) GetClass(ctx context.Context, id string) (*domain.TrainClass, error) {
	return s.trains.GetClass(ctx, id)
}

func (s *CatalogService) CreateClass(ctx context.Context, input ClassInput) (*domain.TrainClass, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	class := &domain.TrainClass{Name: strings.TrimSpace(input.Name), PricePerKm: input.PricePerKm}
	if err := s.trains.CreateClass(ctx, class); err != nil {
		return nil, err
	}
	s.written(ctx, "CREATE_TRAIN_CLASS", fmt.Sprintf("Created train class: %s (%s)", class.Name, class.ID))
	return class, nil
}

func (s *CatalogService) UpdateClass(ctx context.Context, id string, input ClassInput) (*domain.TrainClass, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	class := &domain.TrainClass{ID: id, Name: strings.TrimSpace(input.Name), PricePerKm: input.PricePerKm}
	if err := s.trains.UpdateClass(ctx, class); err != nil {
		return nil, err
	}
	s.written(ctx, "UPDATE_TRAIN_CLASS", fmt.Sprintf("Updated train class: %s (%s)", class.Name, class.ID))
	return class, nil
}

func (s *CatalogService) DeleteClass(ctx context.Context, id string) error {
	if err := s.trains.DeleteClass(ctx, id); err != nil {
		return err
	}
	s.written(ctx, "DELETE_TRAIN_CLASS", fmt.Sprintf("Deleted train class: %s", id))
	return nil
}

// Train lines

type LineInput struct {
	Name     string
	TrainID  string
	Active   *bool
	ClassIDs []string
}

func (i LineInput) validate() error {
	if err := required("name", i.Name); err != nil {
		return err
	}
	return required("trainId", i.TrainID)
}

func (s *CatalogService) ListLines(ctx context.Context) []domain.TrainLine {
	lines, err := s.trains.ListLines(ctx)
	return degrade(s.logger, "train lines", lines, err)
}

func (s *CatalogService) GetLine(ctx context.Context, id string) (*domain.TrainLine, error) {
	return s.trains.GetLine(ctx, id)
}

func (s *CatalogService) CreateLine(ctx context.Context, input LineInput) (*domain.TrainLine, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	classIDs, err := s.lineRefs(ctx, input)
	if err != nil {
		return nil, err
	}
	line := &domain.TrainLine{
		Name:    strings.TrimSpace(input.Name),
		TrainID: strings.TrimSpace(input.TrainID),
		Active:  activeOrDefault(input.Active),
	}
	if err := s.trains.CreateLine(ctx, line, classIDs); err != nil {
		return nil, err
	}
	s.written(ctx, "CREATE_TRAIN_LINE", fmt.Sprintf("Created train line: %s (%s)", line.Name, line.ID))
	return s.reloadLine(ctx, line)
}

func (s *CatalogService) UpdateLine(ctx context.Context, id string, input LineInput) (*domain.TrainLine, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	line, err := s.trains.GetLine(ctx, id)
	if err != nil {
		return nil, err
	}
	classIDs, err := s.lineRefs(ctx, input)
	if err != nil {
		return nil, err
	}
	line.Name = strings.TrimSpace(input.Name)
	line.TrainID = strings.TrimSpace(input.TrainID)
	if input.Active != nil {
		line.Active = *input.Active
	}
	if err := s.trains.UpdateLine(ctx, line, classIDs); err != nil {
		return nil, err
	}
	s.written(ctx, "UPDATE_TRAIN_LINE", fmt.Sprintf("Updated train line: %s (%s)", line.Name, line.ID))
	return s.reloadLine(ctx, line)
}

func (s *CatalogService) DeleteLine(ctx context.Context, id string) error {
	if err := s.trains.DeleteLine(ctx, id); err != nil {
		return err
	}
	s.written(ctx, "DELETE_TRAIN_LINE", fmt.Sprintf("Deleted train line: %s", id))
	return nil
}

// lineRefs checks the train and classes a line points at and returns the de-duplicated class ids.
func (s *CatalogService) lineRefs(ctx context.Context, input LineInput) ([]string, error) {
	if _, err := s.trains.GetTrain(ctx, strings.TrimSpace(input.TrainID)); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(input.ClassIDs))
	ids := make([]string, 0, len(input.ClassIDs))
	for _, id := range input.ClassIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		if _, err := s.trains.GetClass(ctx, id); err != nil {
			return nil, err
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *CatalogService) reloadLine(ctx context.Context, line *domain.TrainLine) (*domain.TrainLine, error) {
	loaded, err := s.trains.GetLine(ctx, line.ID)
	if err != nil {
		logging.LogError(s.logger, "failed to reload train line", err, slog.String("line_id", line.ID))
		return line, nil
	}
	return loaded, nil
}

// Schedules

type ScheduleInput struct {
	TrainLineID string
	DayOfWeek   *int
	Hour        int
	Minute      int
}

func (s *CatalogService) ListSchedules(ctx context.Context) []domain.ScheduleDetail {
	schedules, err := s.schedules.List(ctx)
	return degrade(s.logger, "train schedules", schedules, err)
}

func (s *CatalogService) GetSchedule(ctx context.Context, id string) (*domain.ScheduleDetail, error) {
	return s.schedules.GetDetail(ctx, id)
}

func (s *CatalogService) CreateSchedule(ctx context.Context, input ScheduleInput) (*domain.TrainSchedule, error) {
	if err := required("trainLineId", input.TrainLineID); err != nil {
		return nil, err
	}
	days, err := domain.RunDaysFromNullable(input.DayOfWeek)
	if err != nil {
		return nil, err
	}
	departure, err := domain.NewClockTime(input.Hour, input.Minute)
	if err != nil {
		return nil, err
	}
	lineID := strings.TrimSpace(input.TrainLineID)
	if _, err := s.trains.GetLine(ctx, lineID); err != nil {
		return nil, err
	}

	schedule := &domain.TrainSchedule{TrainLineID: lineID, Days: days, Departure: departure}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, err
	}
	s.written(ctx, "CREATE_TRAIN_SCHEDULE", fmt.Sprintf("Created train schedule for train line: %s (%s)", schedule.TrainLineID, schedule.ID))
	return schedule, nil
}

func (s *CatalogService) DeleteSchedule(ctx context.Context, id string) error {
	if err := s.schedules.Delete(ctx, id); err != nil {
		return err
	}
	s.written(ctx, "DELETE_TRAIN_SCHEDULE", fmt.Sprintf("Deleted train schedule: %s", id))
	return nil
}

// Station stops

type StopInput struct {
	ScheduleID string
	StationID  string
	StopOrder  int
	Arrival    *domain.ClockTime
	Departure  *domain.ClockTime
}

func (i StopInput) build() (domain.StationStop, error) {
	if err := required("trainScheduleId", i.ScheduleID); err != nil {
		return domain.StationStop{}, err
	}
	if err := required("stationId", i.StationID); err != nil {
		return domain.StationStop{}, err
	}
	if i.StopOrder <= 0 {
		return domain.StationStop{}, domain.ValidationError{Field: "stopOrder", Msg: "must be greater than 0"}
	}
	times, err := domain.NewStopTimes(i.Arrival, i.Departure)
	if err != nil {
		return domain.StationStop{}, err
	}
	return domain.StationStop{
		ScheduleID: strings.TrimSpace(i.ScheduleID),
		StationID:  strings.TrimSpace(i.StationID),
		StopOrder:  i.StopOrder,
		Times:      times,
	}, nil
}

// ListStops returns the stops of scheduleID, or of every schedule when it is empty.
func (s *CatalogService) ListStops(ctx context.Context, scheduleID string) []domain.StationStop {
	stops, err := s.schedules.ListStops(ctx, strings.TrimSpace(scheduleID))
	return degrade(s.logger, "station stops", stops, err)
}

func (s *CatalogService) GetStop(ctx context.Context, id string) (*domain.StationStop, error) {
	return s.schedules.GetStop(ctx, id)
}

func (s *CatalogService) CreateStop(ctx context.Context, input StopInput) (*domain.StationStop, error) {
	stop, err := input.build()
	if err != nil {
		return nil, err
	}
	if stop.StationName, err = s.stopRefs(ctx, stop); err != nil {
		return nil, err
	}
	if err := s.schedules.CreateStop(ctx, &stop); err != nil {
		return nil, err
	}
	s.written(ctx, "CREATE_STATION_STOP", fmt.Sprintf("Created station stop %d for schedule %s at station %s", stop.StopOrder, stop.ScheduleID, stop.StationID))
	return &stop, nil
}

func (s *CatalogService) UpdateStop(ctx context.Context, id string, input StopInput) (*domain.StationStop, error) {
	stop, err := input.build()
	if err != nil {
		return nil, err
	}
	if _, err := s.schedules.GetStop(ctx, id); err != nil {
		return nil, err
	}
	if stop.StationName, err = s.stopRefs(ctx, stop); err != nil {
		return nil, err
	}
	stop.ID = id
	if err := s.schedules.UpdateStop(ctx, &stop); err != nil {
		return nil, err
	}
	s.written(ctx, "UPDATE_STATION_STOP", fmt.Sprintf("Updated station stop: %s", id))
	return &stop, nil
}

// DeleteStop refuses to remove a stop that any ticket starts or ends at.
func (s *CatalogService) DeleteStop(ctx context.Context, id string) error {
	if _, err := s.schedules.GetStop(ctx, id); err != nil {
		return err
	}
	referenced, err := s.tickets.ReferencesStop(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return domain.ConflictError{Resource: "station stop", Msg: "cannot delete a station stop that has associated tickets"}
	}
	if err := s.schedules.DeleteStop(ctx, id); err != nil {
		return err
	}
	s.written(ctx, "DELETE_STATION_STOP", fmt.Sprintf("Deleted station stop: %s", id))
	return nil
}

// stopRefs checks the schedule and station a stop points at and returns the station name.
func (s *CatalogService) stopRefs(ctx context.Context, stop domain.StationStop) (string, error) {
	if _, err := s.schedules.GetDetail(ctx, stop.ScheduleID); err != nil {
		return "", err
	}
	station, err := s.stations.GetByID(ctx, stop.StationID)
	if err != nil {
		return "", err
	}
	return station.Name, nil
}

var _ CatalogUseCase = (*CatalogService)(nil)
