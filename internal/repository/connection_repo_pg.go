package repository

import (
	"context"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/pricing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConnectionRepository interface {
	List(ctx context.Context) ([]domain.Connection, error)
	GetByID(ctx context.Context, id string) (*domain.Connection, error)
	Create(ctx context.Context, conn *domain.Connection) error
	Update(ctx context.Context, conn *domain.Connection) error
	Delete(ctx context.Context, id string) error
	// Distances returns the registered distance of every pair that has a connection.
	Distances(ctx context.Context, pairs []domain.StationPair) (pricing.DistanceTable, error)
}

type PGConnectionRepository struct {
	db DBTX
}

func NewConnectionRepository(db *pgxpool.Pool) ConnectionRepository {
	return &PGConnectionRepository{db: db}
}

const connectionSelect = `SELECT c.id, c.from_station_id, c.to_station_id, fs.name, ts.name, c.distance, c.is_active, c.created_at
	FROM connections c
	JOIN stations fs ON fs.id = c.from_station_id
	JOIN stations ts ON ts.id = c.to_station_id`

func scanConnection(row interface{ Scan(...any) error }) (domain.Connection, error) {
	var c domain.Connection
	err := row.Scan(&c.ID, &c.FromStationID, &c.ToStationID, &c.FromStationName, &c.ToStationName, &c.Distance, &c.Active, &c.CreatedAt)
	return c, err
}

func (r *PGConnectionRepository) List(ctx context.Context) ([]domain.Connection, error) {
	rows, err := r.db.Query(ctx, connectionSelect+` ORDER BY fs.name, ts.name`)
	if err != nil {
		return nil, mapError(err, "connection")
	}
	defer rows.Close()

	conns := make([]domain.Connection, 0)
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, mapError(err, "connection")
		}
		conns = append(conns, c)
	}
	return conns, mapError(rows.Err(), "connection")
}

func (r *PGConnectionRepository) GetByID(ctx context.Context, id string) (*domain.Connection, error) {
	c, err := scanConnection(r.db.QueryRow(ctx, connectionSelect+` WHERE c.id=$1`, id))
	if err != nil {
		return nil, mapError(err, "connection")
	}
	return &c, nil
}

func (r *PGConnectionRepository) Create(ctx context.Context, conn *domain.Connection) error {
	conn.ID = uuid.NewString()
	err := r.db.QueryRow(ctx, `INSERT INTO connections (id, from_station_id, to_station_id, distance, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`, conn.ID, conn.FromStationID, conn.ToStationID, conn.Distance, conn.Active).
		Scan(&conn.CreatedAt)
	return mapError(err, "connection")
}

func (r *PGConnectionRepository) Update(ctx context.Context, conn *domain.Connection) error {
	err := r.db.QueryRow(ctx, `UPDATE connections SET from_station_id=$2, to_station_id=$3, distance=$4, is_active=$5
		WHERE id=$1 RETURNING created_at`, conn.ID, conn.FromStationID, conn.ToStationID, conn.Distance, conn.Active).
		Scan(&conn.CreatedAt)
	return mapError(err, "connection")
}

func (r *PGConnectionRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, `DELETE FROM connections WHERE id=$1`, id, "connection")
}

func (r *PGConnectionRepository) Distances(ctx context.Context, pairs []domain.StationPair) (pricing.DistanceTable, error) {
	table := make(pricing.DistanceTable, len(pairs))
	if len(pairs) == 0 {
		return table, nil
	}

	from := make([]string, 0, len(pairs))
	to := make([]string, 0, len(pairs))
	for _, p := range pairs {
		from = append(from, p.From)
		to = append(to, p.To)
	}

	rows, err := r.db.Query(ctx, `SELECT c.from_station_id, c.to_station_id, c.distance
		FROM connections c
		JOIN unnest($1::text[], $2::text[]) AS wanted(from_id, to_id)
		  ON wanted.from_id = c.from_station_id AND wanted.to_id = c.to_station_id`, from, to)
	if err != nil {
		return nil, mapError(err, "connection")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pair     domain.StationPair
			distance float64
		)
		if err := rows.Scan(&pair.From, &pair.To, &distance); err != nil {
			return nil, mapError(err, "connection")
		}
		table[pair] = distance
	}
	return table, mapError(rows.Err(), "connection")
}

var _ ConnectionRepository = (*PGConnectionRepository)(nil)
