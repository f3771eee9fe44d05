package domain

import "time"

type ClassFare struct {
	ClassID   string
	ClassName string
	Price     float64
}

// Itinerary is a priced, timed ride between two stops of one schedule on a given date.
type Itinerary struct {
	ScheduleID        string
	TrainNumber       string
	TrainName         string
	LineName          string
	DepartureStation  string
	ArrivalStation    string
	Departure         time.Time
	Arrival           time.Time
	Distance          float64
	Classes           []ClassFare
	OriginStopID      string
	DestinationStopID string
	// MissingLegs lists consecutive stop pairs with no registered connection; they add no distance.
	MissingLegs []StationPair
}

func (i Itinerary) DistanceComplete() bool {
	return len(i.MissingLegs) == 0
}
