package gtfsimport

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/jamespfennell/gtfs"
)

// Plan is a GTFS feed translated into catalog records. Records refer to each other by GTFS id.
type Plan struct {
	Class       ClassPlan
	Stations    []StationPlan
	Connections []ConnectionPlan
	Trains      []TrainPlan
	Schedules   []SchedulePlan
	Skipped     []string
}

type ClassPlan struct {
	Name       string
	PricePerKm float64
}

type StationPlan struct {
	Key         string
	Name        string
	Description string
}

type ConnectionPlan struct {
	From     string
	To       string
	Distance float64
}

// TrainPlan is one GTFS route: it becomes a train and a train line of the same name.
type TrainPlan struct {
	Key    string
	Name   string
	Number string
}

type SchedulePlan struct {
	Key       string
	RouteKey  string
	DayOfWeek *int
	Departure domain.ClockTime
	Stops     []StopPlan
}

type StopPlan struct {
	StationKey string
	Order      int
	Arrival    *domain.ClockTime
	Departure  *domain.ClockTime
}

type Options struct {
	ClassName  string
	PricePerKm float64
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.ClassName) == "" {
		o.ClassName = "Standard"
	}
	if o.PricePerKm <= 0 {
		o.PricePerKm = 1
	}
	return o
}

// Build translates a parsed static feed. Trips with fewer than two stops or without running days are
// skipped and reported in Plan.Skipped.
func Build(static *gtfs.Static, opts Options) (*Plan, error) {
	if static == nil {
		return nil, fmt.Errorf("no GTFS data")
	}
	opts = opts.withDefaults()
	plan := &Plan{Class: ClassPlan{Name: opts.ClassName, PricePerKm: opts.PricePerKm}}

	stops := make(map[string]*gtfs.Stop, len(static.Stops))
	for i := range static.Stops {
		stops[static.Stops[i].Id] = &static.Stops[i]
	}

	usedStations := map[string]bool{}
	usedRoutes := map[string]*gtfs.Route{}
	connections := map[domain.StationPair]float64{}

	for _, trip := range static.Trips {
		if trip.Route == nil {
			plan.Skipped = append(plan.Skipped, fmt.Sprintf("trip %s: no route", trip.ID))
			continue
		}
		days := runDays(trip.Service)
		if len(days) == 0 {
			plan.Skipped = append(plan.Skipped, fmt.Sprintf("trip %s: service never runs", trip.ID))
			continue
		}

		tripStops, dropped := tripStopPlans(trip.StopTimes)
		if dropped > 0 {
			plan.Skipped = append(plan.Skipped, fmt.Sprintf("trip %s: %d repeated stop(s) dropped", trip.ID, dropped))
		}
		if len(tripStops) < 2 {
			plan.Skipped = append(plan.Skipped, fmt.Sprintf("trip %s: fewer than two stops", trip.ID))
			continue
		}

		usedRoutes[trip.Route.Id] = trip.Route
		for i, s := range tripStops {
			usedStations[s.StationKey] = true
			if i == 0 {
				continue
			}
			pair := domain.StationPair{From: tripStops[i-1].StationKey, To: s.StationKey}
			if _, ok := connections[pair]; ok {
				continue
			}
			km, ok := stopDistance(stops[pair.From], stops[pair.To])
			if !ok {
				plan.Skipped = append(plan.Skipped, fmt.Sprintf("connection %s -> %s: missing coordinates", pair.From, pair.To))
				continue
			}
			connections[pair] = km
		}

		departure := *tripStops[0].Departure
		for _, day := range days {
			key := trip.ID
			if day != nil {
				key = fmt.Sprintf("%s@%d", trip.ID, *day)
			}
			plan.Schedules = append(plan.Schedules, SchedulePlan{
				Key:       key,
				RouteKey:  trip.Route.Id,
				DayOfWeek: day,
				Departure: departure,
				Stops:     tripStops,
			})
		}
	}

	for id := range usedStations {
		stop := stops[id]
		name, desc := id, ""
		if stop != nil {
			name = firstNonEmpty(stop.Name, id)
			desc = stop.Description
		}
		plan.Stations = append(plan.Stations, StationPlan{Key: id, Name: name, Description: desc})
	}
	for pair, km := range connections {
		plan.Connections = append(plan.Connections, ConnectionPlan{From: pair.From, To: pair.To, Distance: km})
	}
	for id, route := range usedRoutes {
		plan.Trains = append(plan.Trains, TrainPlan{
			Key:    id,
			Name:   firstNonEmpty(route.LongName, route.ShortName, id),
			Number: firstNonEmpty(route.ShortName, id),
		})
	}

	sort.Slice(plan.Stations, func(i, j int) bool { return plan.Stations[i].Key < plan.Stations[j].Key })
	sort.Slice(plan.Connections, func(i, j int) bool {
		if plan.Connections[i].From != plan.Connections[j].From {
			return plan.Connections[i].From < plan.Connections[j].From
		}
		return plan.Connections[i].To < plan.Connections[j].To
	})
	sort.Slice(plan.Trains, func(i, j int) bool { return plan.Trains[i].Key < plan.Trains[j].Key })
	sort.SliceStable(plan.Schedules, func(i, j int) bool { return plan.Schedules[i].Key < plan.Schedules[j].Key })
	return plan, nil
}

// runDays returns nil-day (daily) when the service runs every day, otherwise one entry per weekday.
func runDays(service *gtfs.Service) []*int {
	if service == nil {
		return []*int{nil}
	}
	flags := [7]bool{
		service.Sunday, service.Monday, service.Tuesday, service.Wednesday,
		service.Thursday, service.Friday, service.Saturday,
	}
	var days []*int
	for day, runs := range flags {
		if runs {
			d := day
			days = append(days, &d)
		}
	}
	if len(days) == 7 {
		return []*int{nil}
	}
	return days
}

// tripStopPlans orders stop times by sequence and renumbers them from 1. A station visited twice keeps
// only its first visit.
func tripStopPlans(stopTimes []gtfs.ScheduledStopTime) ([]StopPlan, int) {
	ordered := make([]gtfs.ScheduledStopTime, 0, len(stopTimes))
	for _, st := range stopTimes {
		if st.Stop != nil {
			ordered = append(ordered, st)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StopSequence < ordered[j].StopSequence })

	seen := make(map[string]bool, len(ordered))
	plans := make([]StopPlan, 0, len(ordered))
	dropped := 0
	for _, st := range ordered {
		if seen[st.Stop.Id] {
			dropped++
			continue
		}
		seen[st.Stop.Id] = true
		arrival, departure := clockOf(st.ArrivalTime), clockOf(st.DepartureTime)
		plans = append(plans, StopPlan{StationKey: st.Stop.Id, Order: len(plans) + 1, Arrival: &arrival, Departure: &departure})
	}
	if len(plans) > 0 {
		plans[0].Arrival = nil
		plans[len(plans)-1].Departure = nil
	}
	return plans, dropped
}

// clockOf wraps GTFS times past 24:00 onto the clock.
func clockOf(d time.Duration) domain.ClockTime {
	return domain.ClockFromMinutes(int(d / time.Minute))
}

func stopDistance(from, to *gtfs.Stop) (float64, bool) {
	if from == nil || to == nil || from.Latitude == nil || from.Longitude == nil || to.Latitude == nil || to.Longitude == nil {
		return 0, false
	}
	km := CalculateDistance(*from.Latitude, *from.Longitude, *to.Latitude, *to.Longitude)
	km = math.Round(km*10) / 10
	if km < 0.1 {
		km = 0.1
	}
	return km, true
}

// CalculateDistance is the great-circle distance in kilometres between two coordinates.
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371.0

	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
