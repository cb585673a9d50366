package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tkabange/uangalizi/core/staff"
)

type staffRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	LastLogin    time.Time `db:"last_login"`
}

func (r staffRow) staff() staff.Staff {
	return staff.Staff{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Role:         r.Role,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin,
	}
}

type staffRepository struct {
	db *sqlx.DB
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *sqlx.DB) *staffRepository {
	return &staffRepository{db: db}
}

func (repo *staffRepository) trapNoRowsErr(err error, msg string) error {
	if isNoRows(err) {
		return staff.ErrNotFound
	}
	return wrapErr(err, msg)
}

func (repo *staffRepository) CreateStaff(ctx context.Context, stf staff.Staff) (staff.Staff, error) {
	query := `
		INSERT INTO staff (id, name, email, role, is_active, password_hash, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, query,
		stf.ID, stf.Name, stf.Email, stf.Role, stf.IsActive, stf.PasswordHash,
		stf.CreatedAt, stf.UpdatedAt, stf.LastLogin)
	if err != nil {
		if isUniqueViolation(err) {
			return staff.Staff{}, staff.ErrEmailExists
		}
		return staff.Staff{}, wrapErr(err, "inserting staff")
	}
	return stf, nil
}

func (repo *staffRepository) GetStaffByID(ctx context.Context, id string) (staff.Staff, error) {
	var row staffRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM staff WHERE id = $1`, id); err != nil {
		return staff.Staff{}, repo.trapNoRowsErr(err, "finding staff by ID")
	}
	return row.staff(), nil
}

func (repo *staffRepository) GetStaffByEmail(ctx context.Context, email string) (staff.Staff, error) {
	var row staffRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM staff WHERE LOWER(email) = LOWER($1)`, email); err != nil {
		return staff.Staff{}, repo.trapNoRowsErr(err, "finding staff by email")
	}
	return row.staff(), nil
}

func (repo *staffRepository) UpdateStaff(ctx context.Context, stf staff.Staff) (staff.Staff, error) {
	query := `
		UPDATE staff
		SET name = $2, email = $3, role = $4, is_active = $5, password_hash = $6, updated_at = $7, last_login = $8
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		stf.ID, stf.Name, stf.Email, stf.Role, stf.IsActive, stf.PasswordHash, stf.UpdatedAt, stf.LastLogin)
	if err != nil {
		if isUniqueViolation(err) {
			return staff.Staff{}, staff.ErrEmailExists
		}
		return staff.Staff{}, wrapErr(err, "updating staff")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return staff.Staff{}, staff.ErrNotFound
	}
	return stf, nil
}

func (repo *staffRepository) UpdateOrCreateStaff(ctx context.Context, stf staff.Staff) (staff.Staff, error) {
	existing, err := repo.GetStaffByEmail(ctx, stf.Email)
	if err == nil {
		stf.ID = existing.ID
		stf.CreatedAt = existing.CreatedAt
		stf.UpdatedAt = time.Now().UTC()
		return repo.UpdateStaff(ctx, stf)
	}
	if err != staff.ErrNotFound {
		return staff.Staff{}, err
	}
	if stf.ID == "" {
		stf.ID = uuid.New().String()
	}
	return repo.CreateStaff(ctx, stf)
}
