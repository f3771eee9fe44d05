package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the subset of pgxpool.Pool and pgx.Tx used by the repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateCheckViolation      = "23514"
)

// ErrDuplicateReference marks an insert that lost the race for a ticket reference number.
var ErrDuplicateReference = errors.New("duplicate ticket reference number")

var constraintMessages = map[string]string{
	"connections_from_to_key":            "a connection between these stations already exists",
	"connections_distinct_stations":      "first and second stations must be different",
	"trains_number_key":                  "train number is already in use",
	"station_stops_schedule_station_key": "this station is already part of this train schedule",
	"station_stops_schedule_order_key":   "this stop order is already taken for this train schedule",
	"tickets_reference_number_key":       "reference number already issued",
	"admins_email_key":                   "email is already registered",
}

// mapError converts pgx errors into domain errors for resource.
func mapError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg := constraintMessages[pgErr.ConstraintName]
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			if pgErr.ConstraintName == "tickets_reference_number_key" {
				return domain.ConflictError{Resource: resource, Msg: msg, Err: ErrDuplicateReference}
			}
			return domain.ConflictError{Resource: resource, Msg: msg, Err: err}
		case sqlStateForeignKeyViolation:
			if msg == "" {
				msg = "referenced by or referencing another record"
			}
			return domain.ConflictError{Resource: resource, Msg: msg, Err: err}
		case sqlStateCheckViolation:
			return domain.ValidationError{Msg: msg, Err: err}
		}
	}
	return domain.InternalError{Msg: "storage error", Err: err}
}

func clockToPG(c domain.ClockTime) pgtype.Time {
	return pgtype.Time{Microseconds: int64(c.Minutes()) * int64(time.Minute/time.Microsecond), Valid: true}
}

func clockFromPG(t pgtype.Time) domain.ClockTime {
	return domain.ClockFromMinutes(int(t.Microseconds / int64(time.Minute/time.Microsecond)))
}

func optionalClockToPG(c domain.ClockTime, ok bool) pgtype.Time {
	if !ok {
		return pgtype.Time{}
	}
	return clockToPG(c)
}

func stopTimesFromPG(arrival, departure pgtype.Time) (domain.StopTimes, error) {
	var arr, dep *domain.ClockTime
	if arrival.Valid {
		c := clockFromPG(arrival)
		arr = &c
	}
	if departure.Valid {
		c := clockFromPG(departure)
		dep = &c
	}
	return domain.NewStopTimes(arr, dep)
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func textOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
