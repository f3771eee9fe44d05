package gtfsimport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/logging"
	"github.com/Domenick1991/railbooking/internal/service/catalog"
	"github.com/jamespfennell/gtfs"
)

// Catalog is the part of the catalog service an import writes through.
type Catalog interface {
	CreateStation(ctx context.Context, input catalog.StationInput) (*domain.Station, error)
	CreateConnection(ctx context.Context, input catalog.ConnectionInput) (*domain.Connection, error)
	CreateTrain(ctx context.Context, input catalog.TrainInput) (*domain.Train, error)
	CreateClass(ctx context.Context, input catalog.ClassInput) (*domain.TrainClass, error)
	CreateLine(ctx context.Context, input catalog.LineInput) (*domain.TrainLine, error)
	CreateSchedule(ctx context.Context, input catalog.ScheduleInput) (*domain.TrainSchedule, error)
	CreateStop(ctx context.Context, input catalog.StopInput) (*domain.StationStop, error)
}

var _ Catalog = (*catalog.CatalogService)(nil)

type Summary struct {
	Stations           int
	Connections        int
	ExistingConnection int
	Trains             int
	Schedules          int
	Stops              int
	SkippedTrips       int
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("stations", s.Stations),
		slog.Int("connections", s.Connections),
		slog.Int("existing_connections", s.ExistingConnection),
		slog.Int("trains", s.Trains),
		slog.Int("schedules", s.Schedules),
		slog.Int("stops", s.Stops),
		slog.Int("skipped", s.SkippedTrips),
	)
}

// Load reads a GTFS zip from a local path or an http(s) URL.
func Load(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read GTFS file %s: %w", source, err)
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build GTFS request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download GTFS feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download GTFS feed: unexpected status %s", resp.Status)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read GTFS feed body: %w", err)
	}
	return b, nil
}

// Parse parses a GTFS static zip and builds its plan.
func Parse(data []byte, opts Options) (*Plan, error) {
	static, err := gtfs.ParseStatic(data, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("parse GTFS feed: %w", err)
	}
	return Build(static, opts)
}

// Apply writes plan through c in dependency order. Connections that already exist are kept;
// any other error stops the import.
func Apply(ctx context.Context, c Catalog, plan *Plan) (Summary, error) {
	logger := logging.FromContext(ctx)
	summary := Summary{SkippedTrips: len(plan.Skipped)}
	for _, reason := range plan.Skipped {
		logger.Warn("gtfs import skipped", slog.String("reason", reason))
	}

	class, err := c.CreateClass(ctx, catalog.ClassInput{Name: plan.Class.Name, PricePerKm: plan.Class.PricePerKm})
	if err != nil {
		return summary, fmt.Errorf("create train class %q: %w", plan.Class.Name, err)
	}

	stationIDs := make(map[string]string, len(plan.Stations))
	for _, st := range plan.Stations {
		created, err := c.CreateStation(ctx, catalog.StationInput{Name: st.Name, Description: st.Description})
		if err != nil {
			return summary, fmt.Errorf("create station %s: %w", st.Key, err)
		}
		stationIDs[st.Key] = created.ID
		summary.Stations++
	}

	for _, conn := range plan.Connections {
		_, err := c.CreateConnection(ctx, catalog.ConnectionInput{
			FromStationID: stationIDs[conn.From],
			ToStationID:   stationIDs[conn.To],
			Distance:      conn.Distance,
		})
		switch {
		case domain.IsConflict(err):
			summary.ExistingConnection++
		case err != nil:
			return summary, fmt.Errorf("create connection %s -> %s: %w", conn.From, conn.To, err)
		default:
			summary.Connections++
		}
	}

	lineIDs := make(map[string]string, len(plan.Trains))
	for _, tr := range plan.Trains {
		train, err := c.CreateTrain(ctx, catalog.TrainInput{Name: tr.Name, Number: tr.Number})
		if err != nil {
			return summary, fmt.Errorf("create train %s: %w", tr.Key, err)
		}
		line, err := c.CreateLine(ctx, catalog.LineInput{Name: tr.Name, TrainID: train.ID, ClassIDs: []string{class.ID}})
		if err != nil {
			return summary, fmt.Errorf("create train line %s: %w", tr.Key, err)
		}
		lineIDs[tr.Key] = line.ID
		summary.Trains++
	}

	for _, sp := range plan.Schedules {
		schedule, err := c.CreateSchedule(ctx, catalog.ScheduleInput{
			TrainLineID: lineIDs[sp.RouteKey],
			DayOfWeek:   sp.DayOfWeek,
			Hour:        sp.Departure.Hour,
			Minute:      sp.Departure.Minute,
		})
		if err != nil {
			return summary, fmt.Errorf("create schedule %s: %w", sp.Key, err)
		}
		summary.Schedules++

		for _, stop := range sp.Stops {
			_, err := c.CreateStop(ctx, catalog.StopInput{
				ScheduleID: schedule.ID,
				StationID:  stationIDs[stop.StationKey],
				StopOrder:  stop.Order,
				Arrival:    stop.Arrival,
				Departure:  stop.Departure,
			})
			if err != nil {
				return summary, fmt.Errorf("create stop %d of schedule %s: %w", stop.Order, sp.Key, err)
			}
			summary.Stops++
		}
	}

	logger.Info("gtfs import applied", slog.Any("summary", summary))
	return summary, nil
}
