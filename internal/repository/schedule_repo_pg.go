package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduleRepository interface {
	List(ctx context.Context) ([]domain.ScheduleDetail, error)
	GetDetail(ctx context.Context, id string) (*domain.ScheduleDetail, error)
	// ListServing returns schedules running on day (or daily) that stop at both stations.
	ListServing(ctx context.Context, originStationID, destinationStationID string, day time.Weekday) ([]domain.ScheduleDetail, error)
	Create(ctx context.Context, schedule *domain.TrainSchedule) error
	Delete(ctx context.Context, id string) error

	ListStops(ctx context.Context, scheduleID string) ([]domain.StationStop, error)
	GetStop(ctx context.Context, id string) (*domain.StationStop, error)
	CreateStop(ctx context.Context, stop *domain.StationStop) error
	UpdateStop(ctx context.Context, stop *domain.StationStop) error
	DeleteStop(ctx context.Context, id string) error
}

type PGScheduleRepository struct {
	db DBTX
}

func NewScheduleRepository(db *pgxpool.Pool) ScheduleRepository {
	return &PGScheduleRepository{db: db}
}

const scheduleSelect = `SELECT s.id, s.train_line_id, s.day_of_week, s.departure_time, s.created_at,
		l.id, l.name, l.train_id, l.is_active, l.created_at,
		t.id, t.name, t.number, t.is_active, t.created_at
	FROM train_schedules s
	JOIN train_lines l ON l.id = s.train_line_id
	JOIN trains t ON t.id = l.train_id`

func (r *PGScheduleRepository) List(ctx context.Context) ([]domain.ScheduleDetail, error) {
	return r.loadDetails(ctx, false, scheduleSelect+` ORDER BY s.departure_time, s.id`)
}

func (r *PGScheduleRepository) GetDetail(ctx context.Context, id string) (*domain.ScheduleDetail, error) {
	details, err := r.loadDetails(ctx, true, scheduleSelect+` WHERE s.id=$1`, id)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, domain.NotFoundError{Resource: "train schedule"}
	}
	return &details[0], nil
}

func (r *PGScheduleRepository) ListServing(ctx context.Context, originStationID, destinationStationID string, day time.Weekday) ([]domain.ScheduleDetail, error) {
	return r.loadDetails(ctx, true, scheduleSelect+`
	WHERE (s.day_of_week = $1 OR s.day_of_week IS NULL)
	  AND EXISTS (SELECT 1 FROM station_stops o WHERE o.train_schedule_id = s.id AND o.station_id = $2)
	  AND EXISTS (SELECT 1 FROM station_stops d WHERE d.train_schedule_id = s.id AND d.station_id = $3)
	ORDER BY s.departure_time, s.id`, int(day), originStationID, destinationStationID)
}

func (r *PGScheduleRepository) loadDetails(ctx context.Context, withStops bool, query string, args ...any) ([]domain.ScheduleDetail, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "train schedule")
	}

	details := make([]domain.ScheduleDetail, 0)
	for rows.Next() {
		var (
			d         domain.ScheduleDetail
			day       *int
			departure pgtype.Time
		)
		if err := rows.Scan(&d.Schedule.ID, &d.Schedule.TrainLineID, &day, &departure, &d.Schedule.CreatedAt,
			&d.Line.ID, &d.Line.Name, &d.Line.TrainID, &d.Line.Active, &d.Line.CreatedAt,
			&d.Train.ID, &d.Train.Name, &d.Train.Number, &d.Train.Active, &d.Train.CreatedAt); err != nil {
			rows.Close()
			return nil, mapError(err, "train schedule")
		}
		days, err := domain.RunDaysFromNullable(day)
		if err != nil {
			rows.Close()
			return nil, domain.IntegrityError{Msg: "schedule " + d.Schedule.ID + " has an invalid day of week", Err: err}
		}
		d.Schedule.Days = days
		d.Schedule.Departure = clockFromPG(departure)
		details = append(details, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "train schedule")
	}
	if len(details) == 0 {
		return details, nil
	}

	lineIDs := make([]string, 0, len(details))
	scheduleIDs := make([]string, 0, len(details))
	for _, d := range details {
		lineIDs = append(lineIDs, d.Line.ID)
		scheduleIDs = append(scheduleIDs, d.Schedule.ID)
	}

	classes, err := classesForLines(ctx, r.db, lineIDs)
	if err != nil {
		return nil, err
	}
	for i := range details {
		details[i].Classes = classes[details[i].Line.ID]
		details[i].Line.Classes = details[i].Classes
	}

	if !withStops {
		return details, nil
	}

	stops, err := r.stopsFor(ctx, `WHERE ss.train_schedule_id = ANY($1)`, scheduleIDs)
	if err != nil {
		return nil, err
	}
	bySchedule := make(map[string][]domain.StationStop, len(details))
	for _, s := range stops {
		bySchedule[s.ScheduleID] = append(bySchedule[s.ScheduleID], s)
	}
	for i := range details {
		details[i].Stops = bySchedule[details[i].Schedule.ID]
		details[i].SortStops()
	}
	return details, nil
}

func (r *PGScheduleRepository) Create(ctx context.Context, schedule *domain.TrainSchedule) error {
	schedule.ID = uuid.NewString()
	err := r.db.QueryRow(ctx, `INSERT INTO train_schedules (id, train_line_id, day_of_week, departure_time)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`, schedule.ID, schedule.TrainLineID, schedule.Days.Nullable(), clockToPG(schedule.Departure)).
		Scan(&schedule.CreatedAt)
	return mapError(err, "train schedule")
}

func (r *PGScheduleRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, `DELETE FROM train_schedules WHERE id=$1`, id, "train schedule")
}

const stopSelect = `SELECT ss.id, ss.train_schedule_id, ss.station_id, st.name, ss.stop_order, ss.arrival_time, ss.departure_time
	FROM station_stops ss
	JOIN stations st ON st.id = ss.station_id `

func (r *PGScheduleRepository) stopsFor(ctx context.Context, where string, args ...any) ([]domain.StationStop, error) {
	rows, err := r.db.Query(ctx, stopSelect+where+` ORDER BY ss.train_schedule_id, ss.stop_order`, args...)
	if err != nil {
		return nil, mapError(err, "station stop")
	}
	defer rows.Close()

	stops := make([]domain.StationStop, 0)
	for rows.Next() {
		var (
			s                  domain.StationStop
			arrival, departure pgtype.Time
		)
		if err := rows.Scan(&s.ID, &s.ScheduleID, &s.StationID, &s.StationName, &s.StopOrder, &arrival, &departure); err != nil {
			return nil, mapError(err, "station stop")
		}
		times, err := stopTimesFromPG(arrival, departure)
		if err != nil {
			return nil, domain.IntegrityError{Msg: "station stop " + s.ID + " has neither arrival nor departure", Err: err}
		}
		s.Times = times
		stops = append(stops, s)
	}
	return stops, mapError(rows.Err(), "station stop")
}

func (r *PGScheduleRepository) ListStops(ctx context.Context, scheduleID string) ([]domain.StationStop, error) {
	if scheduleID == "" {
		return r.stopsFor(ctx, "")
	}
	return r.stopsFor(ctx, `WHERE ss.train_schedule_id = $1`, scheduleID)
}

func (r *PGScheduleRepository) GetStop(ctx context.Context, id string) (*domain.StationStop, error) {
	stops, err := r.stopsFor(ctx, `WHERE ss.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(stops) == 0 {
		return nil, domain.NotFoundError{Resource: "station stop"}
	}
	return &stops[0], nil
}

func (r *PGScheduleRepository) CreateStop(ctx context.Context, stop *domain.StationStop) error {
	stop.ID = uuid.NewString()
	arr, hasArr := stop.Times.Arrival()
	dep, hasDep := stop.Times.Departure()
	_, err := r.db.Exec(ctx, `INSERT INTO station_stops (id, train_schedule_id, station_id, stop_order, arrival_time, departure_time)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		stop.ID, stop.ScheduleID, stop.StationID, stop.StopOrder, optionalClockToPG(arr, hasArr), optionalClockToPG(dep, hasDep))
	return mapError(err, "station stop")
}

func (r *PGScheduleRepository) UpdateStop(ctx context.Context, stop *domain.StationStop) error {
	arr, hasArr := stop.Times.Arrival()
	dep, hasDep := stop.Times.Departure()
	cmd, err := r.db.Exec(ctx, `UPDATE station_stops
		SET train_schedule_id=$2, station_id=$3, stop_order=$4, arrival_time=$5, departure_time=$6
		WHERE id=$1`,
		stop.ID, stop.ScheduleID, stop.StationID, stop.StopOrder, optionalClockToPG(arr, hasArr), optionalClockToPG(dep, hasDep))
	if err != nil {
		return mapError(err, "station stop")
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundError{Resource: "station stop"}
	}
	return nil
}

func (r *PGScheduleRepository) DeleteStop(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, `DELETE FROM station_stops WHERE id=$1`, id, "station stop")
}

var _ ScheduleRepository = (*PGScheduleRepository)(nil)
