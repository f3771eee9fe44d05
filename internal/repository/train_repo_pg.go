package repository

import (
	"context"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TrainRepository interface {
	ListTrains(ctx context.Context) ([]domain.Train, error)
	GetTrain(ctx context.Context, id string) (*domain.Train, error)
	CreateTrain(ctx context.Context, train *domain.Train) error
	UpdateTrain(ctx context.Context, train *domain.Train) error
	DeleteTrain(ctx context.Context, id string) error

	ListClasses(ctx context.Context) ([]domain.TrainClass, error)
	GetClass(ctx context.Context, id string) (*domain.TrainClass, error)
	CreateClass(ctx context.Context, class *domain.TrainClass) error
	UpdateClass(ctx context.Context, class *domain.TrainClass) error
	DeleteClass(ctx context.Context, id string) error

	ListLines(ctx context.Context) ([]domain.TrainLine, error)
	GetLine(ctx context.Context, id string) (*domain.TrainLine, error)
	// CreateLine and UpdateLine replace the line's class set with classIDs.
	CreateLine(ctx context.Context, line *domain.TrainLine, classIDs []string) error
	UpdateLine(ctx context.Context, line *domain.TrainLine, classIDs []string) error
	DeleteLine(ctx context.Context, id string) error
}

type PGTrainRepository struct {
	db *pgxpool.Pool
}

func NewTrainRepository(db *pgxpool.Pool) TrainRepository {
	return &PGTrainRepository{db: db}
}

func (r *PGTrainRepository) ListTrains(ctx context.Context) ([]domain.Train, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, number, is_active, created_at FROM trains ORDER BY number`)
	if err != nil {
		return nil, mapError(err, "train")
	}
	defer rows.Close()

	trains := make([]domain.Train, 0)
	for rows.Next() {
		var t domain.Train
		if err := rows.Scan(&t.ID, &t.Name, &t.Number, &t.Active, &t.CreatedAt); err != nil {
			return nil, mapError(err, "train")
		}
		trains = append(trains, t)
	}
	return trains, mapError(rows.Err(), "train")
}

func (r *PGTrainRepository) GetTrain(ctx context.Context, id string) (*domain.Train, error) {
	var t domain.Train
	err := r.db.QueryRow(ctx, `SELECT id, name, number, is_active, created_at FROM trains WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.Number, &t.Active, &t.CreatedAt)
	if err != nil {
		return nil, mapError(err, "train")
	}
	return &t, nil
}

func (r *PGTrainRepository) CreateTrain(ctx context.Context, train *domain.Train) error {
	train.ID = uuid.NewString()
	err := r.db.QueryRow(ctx, `INSERT INTO trains (id, name, number, is_active) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		train.ID, train.Name, train.Number, train.Active).Scan(&train.CreatedAt)
	return mapError(err, "train")
}

func (r *PGTrainRepository) UpdateTrain(ctx context.Context, train *domain.Train) error {
	err := r.db.QueryRow(ctx, `UPDATE trains SET name=$2, number=$3, is_active=$4 WHERE id=$1 RETURNING created_at`,
		train.ID, train.Name, train.Number, train.Active).Scan(&train.CreatedAt)
	return mapError(err, "train")
}

func (r *PGTrainRepository) DeleteTrain(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, `DELETE FROM trains WHERE id=$1`, id, "train")
}

func (r *PGTrainRepository) ListClasses(ctx context.Context) ([]domain.TrainClass, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, price_per_km FROM train_classes ORDER BY price_per_km`)
	if err != nil {
		return nil, mapError(err, "train class")
	}
	defer rows.Close()

	classes := make([]domain.TrainClass, 0)
	for rows.Next() {
		var c domain.TrainClass
		if err := rows.Scan(&c.ID, &c.Name, &c.PricePerKm); err != nil {
			return nil, mapError(err, "train class")
		}
		classes = append(classes, c)
	}
	return classes, mapError(rows.Err(), "train class")
}

func (r *PGTrainRepository) GetClass(ctx context.Context, id string) (*domain.TrainClass, error) {
	var c domain.TrainClass
	err := r.db.QueryRow(ctx, `SELECT id, name, price_per_km FROM train_classes WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.PricePerKm)
	if err != nil {
		return nil, mapError(err, "train class")
	}
	return &c, nil
}

func (r *PGTrainRepository) CreateClass(ctx context.Context, class *domain.TrainClass) error {
	class.ID = uuid.NewString()
	_, err := r.db.Exec(ctx, `INSERT INTO train_classes (id, name, price_per_km) VALUES ($1, $2, $3)`,
		class.ID, class.Name, class.PricePerKm)
	return mapError(err, "train class")
}

func (r *PGTrainRepository) UpdateClass(ctx context.Context, class *domain.TrainClass) error {
	cmd, err := r.db.Exec(ctx, `UPDATE train_classes SET name=$2, price_per_km=$3 WHERE id=$1`,
		class.ID, class.Name, class.PricePerKm)
	if err != nil {
		return mapError(err, "train class")
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundError{Resource: "train class"}
	}
	return nil
}

func (r *PGTrainRepository) DeleteClass(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, `DELETE FROM train_classes WHERE id=$1`, id, "train class")
}

const lineSelect = `SELECT l.id, l.name, l.train_id, l.is_active, l.created_at, t.id, t.name, t.number, t.is_active, t.created_at
	FROM train_lines l
	JOIN trains t ON t.id = l.train_id`

func (r *PGTrainRepository) ListLines(ctx context.Context) ([]domain.TrainLine, error) {
	rows, err := r.db.Query(ctx, lineSelect+` ORDER BY l.name`)
	if err != nil {
		return nil, mapError(err, "train line")
	}
	lines, err := scanLines(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachClasses(ctx, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *PGTrainRepository) GetLine(ctx context.Context, id string) (*domain.TrainLine, error) {
	rows, err := r.db.Query(ctx, lineSelect+` WHERE l.id=$1`, id)
	if err != nil {
		return nil, mapError(err, "train line")
	}
	lines, err := scanLines(rows)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.NotFoundError{Resource: "train line"}
	}
	if err := r.attachClasses(ctx, lines); err != nil {
		return nil, err
	}
	return &lines[0], nil
}

func scanLines(rows pgx.Rows) ([]domain.TrainLine, error) {
	defer rows.Close()

	lines := make([]domain.TrainLine, 0)
	for rows.Next() {
		var (
			l domain.TrainLine
			t domain.Train
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.TrainID, &l.Active, &l.CreatedAt, &t.ID, &t.Name, &t.Number, &t.Active, &t.CreatedAt); err != nil {
			return nil, mapError(err, "train line")
		}
		l.Train = &t
		l.Classes = []domain.TrainClass{}
		lines = append(lines, l)
	}
	return lines, mapError(rows.Err(), "train line")
}

func (r *PGTrainRepository) attachClasses(ctx context.Context, lines []domain.TrainLine) error {
	if len(lines) == 0 {
		return nil
	}
	ids := make([]string, 0, len(lines))
	index := make(map[string]int, len(lines))
	for i, l := range lines {
		ids = append(ids, l.ID)
		index[l.ID] = i
	}

	classes, err := classesForLines(ctx, r.db, ids)
	if err != nil {
		return err
	}
	for lineID, cs := range classes {
		lines[index[lineID]].Classes = cs
	}
	return nil
}

// classesForLines loads the classes offered on each of the given lines.
func classesForLines(ctx context.Context, db DBTX, lineIDs []string) (map[string][]domain.TrainClass, error) {
	rows, err := db.Query(ctx, `SELECT lc.train_line_id, c.id, c.name, c.price_per_km
		FROM train_line_classes lc
		JOIN train_classes c ON c.id = lc.train_class_id
		WHERE lc.train_line_id = ANY($1)
		ORDER BY c.price_per_km, c.name`, lineIDs)
	if err != nil {
		return nil, mapError(err, "train class")
	}
	defer rows.Close()

	out := make(map[string][]domain.TrainClass, len(lineIDs))
	for rows.Next() {
		var (
			lineID string
			c      domain.TrainClass
		)
		if err := rows.Scan(&lineID, &c.ID, &c.Name, &c.PricePerKm); err != nil {
			return nil, mapError(err, "train class")
		}
		out[lineID] = append(out[lineID], c)
	}
	return out, mapError(rows.Err(), "train class")
}

func (r *PGTrainRepository) CreateLine(ctx context.Context, line *domain.TrainLine, classIDs []string) error {
	line.ID = uuid.NewString()
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return mapError(err, "train line")
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO train_lines (id, name, train_id, is_active) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		line.ID, line.Name, line.TrainID, line.Active).Scan(&line.CreatedAt); err != nil {
		return mapError(err, "train line")
	}
	if err := replaceLineClasses(ctx, tx, line.ID, classIDs); err != nil {
		return err
	}
	return mapError(tx.Commit(ctx), "train line")
}

func (r *PGTrainRepository) UpdateLine(ctx context.Context, line *domain.TrainLine, classIDs []string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return mapError(err, "train line")
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `UPDATE train_lines SET name=$2, train_id=$3, is_active=$4 WHERE id=$1 RETURNING created_at`,
		line.ID, line.Name, line.TrainID, line.Active).Scan(&line.CreatedAt); err != nil {
		return mapError(err, "train line")
	}
	if err := replaceLineClasses(ctx, tx, line.ID, classIDs); err != nil {
		return err
	}
	return mapError(tx.Commit(ctx), "train line")
}

func replaceLineClasses(ctx context.Context, tx pgx.Tx, lineID string, classIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM train_line_classes WHERE train_line_id=$1`, lineID); err != nil {
		return mapError(err, "train line")
	}
	if len(classIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `INSERT INTO train_line_classes (train_line_id, train_class_id)
		SELECT $1, unnest($2::text[])
		ON CONFLICT DO NOTHING`, lineID, classIDs)
	return mapError(err, "train line")
}

func (r *PGTrainRepository) DeleteLine(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, `DELETE FROM train_lines WHERE id=$1`, id, "train line")
}

func deleteByID(ctx context.Context, db DBTX, query, id, resource string) error {
	cmd, err := db.Exec(ctx, query, id)
	if err != nil {
		return mapError(err, resource)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}

var _ TrainRepository = (*PGTrainRepository)(nil)
