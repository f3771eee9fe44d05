package repository

import (
	"context"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StationRepository interface {
	List(ctx context.Context) ([]domain.Station, error)
	GetByID(ctx context.Context, id string) (*domain.Station, error)
	Create(ctx context.Context, station *domain.Station) error
	Update(ctx context.Context, station *domain.Station) error
	Delete(ctx context.Context, id string) error
}

type PGStationRepository struct {
	db DBTX
}

func NewStationRepository(db *pgxpool.Pool) StationRepository {
	return &PGStationRepository{db: db}
}

const stationColumns = `id, name, description, is_active, created_at, updated_at`

func (r *PGStationRepository) List(ctx context.Context) ([]domain.Station, error) {
	rows, err := r.db.Query(ctx, `SELECT `+stationColumns+` FROM stations ORDER BY name`)
	if err != nil {
		return nil, mapError(err, "station")
	}
	defer rows.Close()

	stations := make([]domain.Station, 0)
	for rows.Next() {
		var s domain.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, mapError(err, "station")
		}
		stations = append(stations, s)
	}
	return stations, mapError(rows.Err(), "station")
}

func (r *PGStationRepository) GetByID(ctx context.Context, id string) (*domain.Station, error) {
	var s domain.Station
	err := r.db.QueryRow(ctx, `SELECT `+stationColumns+` FROM stations WHERE id=$1`, id).
		Scan(&s.ID, &s.Name, &s.Description, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "station")
	}
	return &s, nil
}

func (r *PGStationRepository) Create(ctx context.Context, station *domain.Station) error {
	station.ID = uuid.NewString()
	err := r.db.QueryRow(ctx, `INSERT INTO stations (id, name, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`, station.ID, station.Name, station.Description, station.Active).
		Scan(&station.CreatedAt, &station.UpdatedAt)
	return mapError(err, "station")
}

func (r *PGStationRepository) Update(ctx context.Context, station *domain.Station) error {
	err := r.db.QueryRow(ctx, `UPDATE stations SET name=$2, description=$3, is_active=$4, updated_at=now()
		WHERE id=$1 RETURNING created_at, updated_at`, station.ID, station.Name, station.Description, station.Active).
		Scan(&station.CreatedAt, &station.UpdatedAt)
	return mapError(err, "station")
}

func (r *PGStationRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, `DELETE FROM stations WHERE id=$1`, id, "station")
}

var _ StationRepository = (*PGStationRepository)(nil)
