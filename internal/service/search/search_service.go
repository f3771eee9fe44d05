package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Domenick1991/railbooking/internal/cache"
	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/logging"
	"github.com/Domenick1991/railbooking/internal/pricing"
	"github.com/Domenick1991/railbooking/internal/repository"
)

type SearchUseCase interface {
	Search(ctx context.Context, query SearchQuery) ([]domain.Itinerary, error)
}

type Cache interface {
	GetItineraries(ctx context.Context, key string) ([]domain.Itinerary, bool, error)
	SetItineraries(ctx context.Context, key string, itineraries []domain.Itinerary) error
}

type SearchQuery struct {
	OriginID      string
	DestinationID string
	Date          string
	ClassID       string
}

type SearchService struct {
	schedules   repository.ScheduleRepository
	connections repository.ConnectionRepository
	cache       Cache
	location    *time.Location
	logger      *slog.Logger
}

type SearchServiceOption func(*SearchService)

func WithCache(c Cache) SearchServiceOption {
	return func(s *SearchService) {
		s.cache = c
	}
}

// WithLocation sets the timezone schedule clock times are projected in.
func WithLocation(loc *time.Location) SearchServiceOption {
	return func(s *SearchService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithLogger(logger *slog.Logger) SearchServiceOption {
	return func(s *SearchService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSearchService(schedules repository.ScheduleRepository, connections repository.ConnectionRepository, opts ...SearchServiceOption) *SearchService {
	service := &SearchService{
		schedules:   schedules,
		connections: connections,
		location:    time.UTC,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *SearchService) Search(ctx context.Context, query SearchQuery) ([]domain.Itinerary, error) {
	query.OriginID = strings.TrimSpace(query.OriginID)
	query.DestinationID = strings.TrimSpace(query.DestinationID)
	query.ClassID = strings.TrimSpace(query.ClassID)
	if query.OriginID == "" || query.DestinationID == "" || strings.TrimSpace(query.Date) == "" {
		return nil, domain.ValidationError{Msg: "missing required parameters: originId, destinationId, and date are required"}
	}
	date, err := domain.ParseCalendarDate(query.Date, s.location)
	if err != nil {
		return nil, err
	}

	key := cache.SearchKey(query.OriginID, query.DestinationID, date, query.ClassID)
	if s.cache != nil {
		cached, ok, err := s.cache.GetItineraries(ctx, key)
		if err != nil {
			logging.LogError(s.logger, "search cache read failed", err, slog.String("key", key))
		} else if ok {
			return cached, nil
		}
	}

	details, err := s.schedules.ListServing(ctx, query.OriginID, query.DestinationID, date.Weekday())
	if err != nil {
		return nil, err
	}

	rides := make([]pricing.Ride, 0, len(details))
	kept := make([]domain.ScheduleDetail, 0, len(details))
	for i := range details {
		ride, ok := pricing.RideBetweenStations(&details[i], query.OriginID, query.DestinationID)
		if !ok {
			continue
		}
		rides = append(rides, ride)
		kept = append(kept, details[i])
	}

	table, err := s.distances(ctx, rides)
	if err != nil {
		return nil, err
	}

	itineraries := make([]domain.Itinerary, 0, len(rides))
	for i, ride := range rides {
		itineraries = append(itineraries, s.itinerary(&kept[i], ride, date, table, query.ClassID))
	}
	sort.SliceStable(itineraries, func(i, j int) bool {
		if !itineraries[i].Departure.Equal(itineraries[j].Departure) {
			return itineraries[i].Departure.Before(itineraries[j].Departure)
		}
		return itineraries[i].ScheduleID < itineraries[j].ScheduleID
	})

	if s.cache != nil {
		if err := s.cache.SetItineraries(ctx, key, itineraries); err != nil {
			logging.LogError(s.logger, "search cache write failed", err, slog.String("key", key))
		}
	}
	return itineraries, nil
}

// distances loads the connections of every leg of every ride in one query.
func (s *SearchService) distances(ctx context.Context, rides []pricing.Ride) (pricing.DistanceTable, error) {
	seen := make(map[domain.StationPair]struct{})
	var pairs []domain.StationPair
	for _, ride := range rides {
		for _, leg := range ride.Legs() {
			if _, ok := seen[leg]; ok {
				continue
			}
			seen[leg] = struct{}{}
			pairs = append(pairs, leg)
		}
	}
	if len(pairs) == 0 {
		return pricing.DistanceTable{}, nil
	}
	return s.connections.Distances(ctx, pairs)
}

func (s *SearchService) itinerary(detail *domain.ScheduleDetail, ride pricing.Ride, date time.Time, table pricing.DistanceTable, classID string) domain.Itinerary {
	m := pricing.Measure(ride.Legs(), table)
	if len(m.Missing) > 0 {
		s.logger.Warn("schedule has stop pairs without connection",
			slog.String("schedule_id", detail.Schedule.ID),
			slog.Any("missing", m.Missing))
	}
	dep, arr := ride.Times(date)

	return domain.Itinerary{
		ScheduleID:        detail.Schedule.ID,
		TrainNumber:       detail.Train.Number,
		TrainName:         detail.Train.Name,
		LineName:          detail.Line.Name,
		DepartureStation:  ride.Origin.StationName,
		ArrivalStation:    ride.Destination.StationName,
		Departure:         dep,
		Arrival:           arr,
		Distance:          m.Kilometres,
		Classes:           pricing.Fares(detail.Classes, m.Kilometres, classID),
		OriginStopID:      ride.Origin.ID,
		DestinationStopID: ride.Destination.ID,
		MissingLegs:       m.Missing,
	}
}

var _ SearchUseCase = (*SearchService)(nil)
