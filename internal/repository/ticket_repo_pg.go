package repository

import (
	"context"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	// Create inserts a ticket. A reference number collision returns a ConflictError wrapping
	// ErrDuplicateReference.
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByReference(ctx context.Context, reference string) (*domain.Ticket, error)
	ReferencesStop(ctx context.Context, stopID string) (bool, error)
}

type PGTicketRepository struct {
	db DBTX
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

func (r *PGTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	ticket.ID = uuid.NewString()
	err := r.db.QueryRow(ctx, `INSERT INTO tickets (id, reference_number, train_schedule_id, train_class_id,
			origin_stop_id, destination_stop_id, journey_date, passenger_name, passenger_email, seat_number,
			status, price, valid_until, purchase_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING purchase_date`,
		ticket.ID, ticket.ReferenceNumber, ticket.ScheduleID, ticket.ClassID,
		ticket.OriginStopID, ticket.DestinationStopID, ticket.JourneyDate, ticket.PassengerName,
		nullableText(ticket.PassengerEmail), nullableText(ticket.SeatNumber),
		ticket.Status, ticket.Price, ticket.ValidUntil, ticket.PurchaseDate).
		Scan(&ticket.PurchaseDate)
	return mapError(err, "ticket")
}

func (r *PGTicketRepository) GetByReference(ctx context.Context, reference string) (*domain.Ticket, error) {
	var (
		t           domain.Ticket
		email, seat *string
	)
	err := r.db.QueryRow(ctx, `SELECT id, reference_number, train_schedule_id, train_class_id, origin_stop_id,
			destination_stop_id, journey_date, passenger_name, passenger_email, seat_number, status, price,
			valid_until, purchase_date
		FROM tickets WHERE reference_number=$1`, reference).
		Scan(&t.ID, &t.ReferenceNumber, &t.ScheduleID, &t.ClassID, &t.OriginStopID, &t.DestinationStopID,
			&t.JourneyDate, &t.PassengerName, &email, &seat, &t.Status, &t.Price, &t.ValidUntil, &t.PurchaseDate)
	if err != nil {
		return nil, mapError(err, "ticket")
	}
	t.PassengerEmail = textOrEmpty(email)
	t.SeatNumber = textOrEmpty(seat)
	return &t, nil
}

func (r *PGTicketRepository) ReferencesStop(ctx context.Context, stopID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM tickets WHERE origin_stop_id=$1 OR destination_stop_id=$1
	)`, stopID).Scan(&exists)
	if err != nil {
		return false, mapError(err, "ticket")
	}
	return exists, nil
}

var _ TicketRepository = (*PGTicketRepository)(nil)
