// Package pricing holds the distance, fare and timetable arithmetic shared by search and booking.
package pricing

import (
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
)

// DistanceTable maps a directed station pair to its connection distance in kilometres.
type DistanceTable map[domain.StationPair]float64

// Legs returns the consecutive station pairs of stops, which must already be in stop order.
// Gaps in StopOrder are bridged: stops 1 and 4 with nothing between them form one leg.
func Legs(stops []domain.StationStop) []domain.StationPair {
	if len(stops) < 2 {
		return nil
	}
	legs := make([]domain.StationPair, 0, len(stops)-1)
	for i := 0; i+1 < len(stops); i++ {
		legs = append(legs, domain.StationPair{From: stops[i].StationID, To: stops[i+1].StationID})
	}
	return legs
}

// Measurement is the distance covered by a ride and the legs that had no connection.
type Measurement struct {
	Kilometres float64
	Missing    []domain.StationPair
}

// Measure sums the distance of each leg in order. A leg without a connection adds nothing and is
// reported in Missing.
func Measure(legs []domain.StationPair, table DistanceTable) Measurement {
	var m Measurement
	for _, leg := range legs {
		d, ok := table[leg]
		if !ok {
			m.Missing = append(m.Missing, leg)
			continue
		}
		m.Kilometres += d
	}
	return m
}

// Fare is the price of kilometres in class.
func Fare(class domain.TrainClass, kilometres float64) float64 {
	return class.PricePerKm * kilometres
}

// Fares prices every class, or only classID when it is not empty.
func Fares(classes []domain.TrainClass, kilometres float64, classID string) []domain.ClassFare {
	fares := make([]domain.ClassFare, 0, len(classes))
	for _, c := range classes {
		if classID != "" && c.ID != classID {
			continue
		}
		fares = append(fares, domain.ClassFare{ClassID: c.ID, ClassName: c.Name, Price: Fare(c, kilometres)})
	}
	return fares
}

// Project places the boarding and alighting clock times on the journey date. An arrival earlier
// than the departure belongs to the following day.
func Project(journeyDate time.Time, departure, arrival domain.ClockTime) (time.Time, time.Time) {
	dep := departure.On(journeyDate)
	arr := arrival.On(journeyDate)
	if arr.Before(dep) {
		arr = arr.AddDate(0, 0, 1)
	}
	return dep, arr
}

// Ride is one origin -> destination trip on a schedule.
type Ride struct {
	Origin      domain.StationStop
	Destination domain.StationStop
	Stops       []domain.StationStop
}

func (r Ride) Legs() []domain.StationPair {
	return Legs(r.Stops)
}

// Times projects the ride onto the journey date.
func (r Ride) Times(journeyDate time.Time) (time.Time, time.Time) {
	return Project(journeyDate, r.Origin.Times.Boarding(), r.Destination.Times.Alighting())
}

// RideBetweenStations finds the ride between two stations, requiring the origin to come first.
func RideBetweenStations(detail *domain.ScheduleDetail, originStationID, destinationStationID string) (Ride, bool) {
	origin, ok := detail.StopAtStation(originStationID)
	if !ok {
		return Ride{}, false
	}
	destination, ok := detail.StopAtStation(destinationStationID)
	if !ok {
		return Ride{}, false
	}
	if origin.StopOrder >= destination.StopOrder {
		return Ride{}, false
	}
	return Ride{Origin: origin, Destination: destination, Stops: detail.Between(origin, destination)}, true
}
