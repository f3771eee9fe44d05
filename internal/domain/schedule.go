package domain

import (
	"encoding/json"
	"sort"
	"time"
)

type runKind uint8

const (
	runUnset runKind = iota
	runDaily
	runWeekday
)

// RunDays says on which days a schedule operates: every day, or one weekday.
// The zero value is unset and never stored.
type RunDays struct {
	kind    runKind
	weekday time.Weekday
}

func Daily() RunDays {
	return RunDays{kind: runDaily}
}

func OnWeekday(day int) (RunDays, error) {
	if day < 0 || day > 6 {
		return RunDays{}, ValidationError{Field: "dayOfWeek", Msg: "must be between 0 and 6"}
	}
	return RunDays{kind: runWeekday, weekday: time.Weekday(day)}, nil
}

// RunDaysFromNullable decodes the persisted form, where nil means daily.
func RunDaysFromNullable(day *int) (RunDays, error) {
	if day == nil {
		return Daily(), nil
	}
	return OnWeekday(*day)
}

func (r RunDays) IsZero() bool { return r.kind == runUnset }

func (r RunDays) IsDaily() bool { return r.kind == runDaily }

func (r RunDays) Weekday() (time.Weekday, bool) {
	return r.weekday, r.kind == runWeekday
}

func (r RunDays) RunsOn(day time.Weekday) bool {
	switch r.kind {
	case runDaily:
		return true
	case runWeekday:
		return r.weekday == day
	default:
		return false
	}
}

// Nullable encodes the persisted form.
func (r RunDays) Nullable() *int {
	if r.kind != runWeekday {
		return nil
	}
	day := int(r.weekday)
	return &day
}

func (r RunDays) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Nullable())
}

func (r *RunDays) UnmarshalJSON(data []byte) error {
	var day *int
	if err := json.Unmarshal(data, &day); err != nil {
		return err
	}
	parsed, err := RunDaysFromNullable(day)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type stopTimesKind uint8

const (
	stopTimesUnset stopTimesKind = iota
	arrivalOnly
	departureOnly
	arrivalAndDeparture
)

// StopTimes holds the clock times of a stop. At least one of arrival and departure is always set:
// a route's first stop usually has only a departure, its terminus only an arrival.
type StopTimes struct {
	kind      stopTimesKind
	arrival   ClockTime
	departure ClockTime
}

func ArrivalOnly(arrival ClockTime) StopTimes {
	return StopTimes{kind: arrivalOnly, arrival: arrival}
}

func DepartureOnly(departure ClockTime) StopTimes {
	return StopTimes{kind: departureOnly, departure: departure}
}

func ArrivalAndDeparture(arrival, departure ClockTime) StopTimes {
	return StopTimes{kind: arrivalAndDeparture, arrival: arrival, departure: departure}
}

func NewStopTimes(arrival, departure *ClockTime) (StopTimes, error) {
	switch {
	case arrival != nil && departure != nil:
		return ArrivalAndDeparture(*arrival, *departure), nil
	case arrival != nil:
		return ArrivalOnly(*arrival), nil
	case departure != nil:
		return DepartureOnly(*departure), nil
	default:
		return StopTimes{}, ValidationError{Msg: "at least one time (arrival or departure) must be set"}
	}
}

func (s StopTimes) IsZero() bool { return s.kind == stopTimesUnset }

func (s StopTimes) Arrival() (ClockTime, bool) {
	return s.arrival, s.kind == arrivalOnly || s.kind == arrivalAndDeparture
}

func (s StopTimes) Departure() (ClockTime, bool) {
	return s.departure, s.kind == departureOnly || s.kind == arrivalAndDeparture
}

// Boarding is the time a passenger leaves from this stop: the departure, or the arrival when the
// stop has no departure.
func (s StopTimes) Boarding() ClockTime {
	if dep, ok := s.Departure(); ok {
		return dep
	}
	return s.arrival
}

// Alighting is the time a passenger gets off at this stop: the arrival, or the departure when the
// stop has no arrival.
func (s StopTimes) Alighting() ClockTime {
	if arr, ok := s.Arrival(); ok {
		return arr
	}
	return s.departure
}

type TrainSchedule struct {
	ID          string
	TrainLineID string
	Days        RunDays
	Departure   ClockTime
	CreatedAt   time.Time
}

type StationStop struct {
	ID          string
	ScheduleID  string
	StationID   string
	StationName string
	StopOrder   int
	Times       StopTimes
}

// ScheduleDetail is a schedule together with everything needed to price and time rides on it.
// Stops are ordered by StopOrder.
type ScheduleDetail struct {
	Schedule TrainSchedule
	Line     TrainLine
	Train    Train
	Classes  []TrainClass
	Stops    []StationStop
}

func (d *ScheduleDetail) SortStops() {
	sort.Slice(d.Stops, func(i, j int) bool { return d.Stops[i].StopOrder < d.Stops[j].StopOrder })
}

func (d *ScheduleDetail) StopAtStation(stationID string) (StationStop, bool) {
	for _, s := range d.Stops {
		if s.StationID == stationID {
			return s, true
		}
	}
	return StationStop{}, false
}

func (d *ScheduleDetail) StopByID(stopID string) (StationStop, bool) {
	for _, s := range d.Stops {
		if s.ID == stopID {
			return s, true
		}
	}
	return StationStop{}, false
}

func (d *ScheduleDetail) Class(classID string) (TrainClass, bool) {
	for _, c := range d.Classes {
		if c.ID == classID {
			return c, true
		}
	}
	return TrainClass{}, false
}

// Between returns the stops from origin to destination inclusive, in stop order.
func (d *ScheduleDetail) Between(origin, destination StationStop) []StationStop {
	var out []StationStop
	for _, s := range d.Stops {
		if s.StopOrder >= origin.StopOrder && s.StopOrder <= destination.StopOrder {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StopOrder < out[j].StopOrder })
	return out
}
