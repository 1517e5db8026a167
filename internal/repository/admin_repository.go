package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eteeap/admissions-api/internal/models"
)

const adminColumns = `id, email, password_hash, full_name, is_super_admin, created_at, last_login`

// AdminRepository provides database access for admin accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create inserts a new admin record.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO admins (id, email, password_hash, full_name, is_super_admin, created_at)
		VALUES (:id, :email, :password_hash, :full_name, :is_super_admin, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// FindByEmail returns an admin by email address.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := fmt.Sprintf(`SELECT %s FROM admins WHERE LOWER(email) = LOWER($1) LIMIT 1`, adminColumns)
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	return &admin, nil
}

// FindByID returns an admin by identifier.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	query := fmt.Sprintf(`SELECT %s FROM admins WHERE id = $1 LIMIT 1`, adminColumns)
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return &admin, nil
}

// List returns every admin account, newest first.
func (r *AdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	query := fmt.Sprintf(`SELECT %s FROM admins ORDER BY created_at DESC`, adminColumns)
	var admins []models.Admin
	if err := r.db.SelectContext(ctx, &admins, query); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// Count returns the number of admin accounts.
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admins`); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

// CountSuperAdmins returns how many super admins exist.
func (r *AdminRepository) CountSuperAdmins(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admins WHERE is_super_admin = TRUE`); err != nil {
		return 0, fmt.Errorf("count super admins: %w", err)
	}
	return count, nil
}

// Update edits the mutable admin fields.
func (r *AdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	const query = `UPDATE admins SET email = :email, full_name = :full_name, is_super_admin = :is_super_admin WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, admin)
	if err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE admins SET password_hash = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash); err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	return nil
}

// Delete removes an admin account.
func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM admins WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateLastLogin stamps a successful login.
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE admins SET last_login = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update admin last login: %w", err)
	}
	return nil
}
