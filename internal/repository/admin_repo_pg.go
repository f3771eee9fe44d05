package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminRepository interface {
	List(ctx context.Context) ([]domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	Create(ctx context.Context, admin *domain.Admin) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
}

type PGAdminRepository struct {
	db DBTX
}

func NewAdminRepository(db *pgxpool.Pool) *PGAdminRepository {
	return &PGAdminRepository{db: db}
}

const adminColumns = `id, email, name, role, password_hash, is_active, created_at, last_login_at`

func scanAdmin(row interface{ Scan(...any) error }) (domain.Admin, error) {
	var a domain.Admin
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.Active, &a.CreatedAt, &a.LastLoginAt)
	return a, err
}

func (r *PGAdminRepository) List(ctx context.Context) ([]domain.Admin, error) {
	rows, err := r.db.Query(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY created_at`)
	if err != nil {
		return nil, mapError(err, "admin")
	}
	defer rows.Close()

	admins := make([]domain.Admin, 0)
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, mapError(err, "admin")
		}
		admins = append(admins, a)
	}
	return admins, mapError(rows.Err(), "admin")
}

func (r *PGAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	a, err := scanAdmin(r.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE lower(email)=lower($1)`, email))
	if err != nil {
		return nil, mapError(err, "admin")
	}
	return &a, nil
}

func (r *PGAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	admin.ID = uuid.NewString()
	err := r.db.QueryRow(ctx, `INSERT INTO admins (id, email, name, role, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`, admin.ID, admin.Email, admin.Name, admin.Role, admin.PasswordHash, admin.Active).
		Scan(&admin.CreatedAt)
	return mapError(err, "admin")
}

func (r *PGAdminRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE admins SET last_login_at=$2 WHERE id=$1`, id, at)
	return mapError(err, "admin")
}

func (r *PGAdminRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	entry.ID = uuid.NewString()
	err := r.db.QueryRow(ctx, `INSERT INTO audit_logs (id, admin_id, action, details, ip_address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`, entry.ID, nullableText(entry.AdminID), entry.Action, entry.Details, nullableText(entry.IPAddress)).
		Scan(&entry.CreatedAt)
	return mapError(err, "audit log")
}

var (
	_ AdminRepository = (*PGAdminRepository)(nil)
	_ AuditRepository = (*PGAdminRepository)(nil)
)
