package domain

import "time"

type TicketStatus string

const (
	TicketStatusValid     TicketStatus = "valid"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusRefunded  TicketStatus = "refunded"
)

func (s TicketStatus) Known() bool {
	switch s {
	case TicketStatusValid, TicketStatusUsed, TicketStatusCancelled, TicketStatusRefunded:
		return true
	}
	return false
}

type Ticket struct {
	ID                string
	ReferenceNumber   string
	ScheduleID        string
	ClassID           string
	OriginStopID      string
	DestinationStopID string
	JourneyDate       time.Time
	PassengerName     string
	PassengerEmail    string
	SeatNumber        string
	Status            TicketStatus
	Price             float64
	ValidUntil        time.Time
	PurchaseDate      time.Time
}

// TicketDetail is a ticket joined with the train, line, class and station names it refers to,
// with stop times projected onto the journey date.
type TicketDetail struct {
	Ticket           Ticket
	TrainNumber      string
	TrainName        string
	LineName         string
	ClassName        string
	DepartureStation string
	DepartureTime    time.Time
	ArrivalStation   string
	ArrivalTime      time.Time
}

// TicketCheck is the validity evaluation of a ticket at a point in time.
type TicketCheck struct {
	Valid   bool
	Status  TicketStatus
	Expired bool
	Detail  TicketDetail
}

// Evaluate derives validity from status and the validity window.
func Evaluate(t Ticket, now time.Time) (valid, expired bool) {
	expired = now.After(t.ValidUntil)
	used := t.Status == TicketStatusUsed
	cancelled := t.Status == TicketStatusCancelled || t.Status == TicketStatusRefunded
	valid = t.Status == TicketStatusValid && !expired && !used && !cancelled
	return valid, expired
}
