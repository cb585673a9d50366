package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tkabange/uangalizi/core/guardian"
)

type guardianRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r guardianRow) guardian() guardian.Guardian {
	return guardian.Guardian{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

var guardianOrderFields = map[string]bool{"name": true, "email": true, "created_at": true}

type guardianRepository struct {
	db *sqlx.DB
}

var _ guardian.Repository = (*guardianRepository)(nil)

func NewGuardianRepository(db *sqlx.DB) *guardianRepository {
	return &guardianRepository{db: db}
}

func (repo *guardianRepository) trapNoRowsErr(err error, msg string) error {
	if isNoRows(err) {
		return guardian.ErrNotFound
	}
	return wrapErr(err, msg)
}

func (repo *guardianRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...guardian.Guardian) error {
	query := `SELECT EXISTS (SELECT 1 FROM guardian WHERE LOWER(email) = LOWER($1) AND NOT (id = ANY($2)))`
	ids := make([]string, 0, len(excluded))
	for _, grd := range excluded {
		ids = append(ids, grd.ID)
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, email, pq.Array(ids)); err != nil {
		return wrapErr(err, "checking guardian email uniqueness")
	}
	if exists {
		return guardian.ErrEmailExists
	}
	return nil
}

func (repo *guardianRepository) CreateGuardian(ctx context.Context, grd guardian.Guardian) (guardian.Guardian, error) {
	query := `
		INSERT INTO guardian (id, name, email, phone, is_active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, query,
		grd.ID, grd.Name, grd.Email, grd.Phone, grd.IsActive, grd.PasswordHash, grd.CreatedAt, grd.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return guardian.Guardian{}, guardian.ErrEmailExists
		}
		return guardian.Guardian{}, wrapErr(err, "inserting guardian")
	}
	return grd, nil
}

func (repo *guardianRepository) GetGuardianByID(ctx context.Context, id string) (guardian.Guardian, error) {
	var row guardianRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM guardian WHERE id = $1`, id)
	if err != nil {
		return guardian.Guardian{}, repo.trapNoRowsErr(err, "finding guardian by ID")
	}
	return row.guardian(), nil
}

func (repo *guardianRepository) GetGuardianByEmail(ctx context.Context, email string) (guardian.Guardian, error) {
	var row guardianRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM guardian WHERE LOWER(email) = LOWER($1)`, email)
	if err != nil {
		return guardian.Guardian{}, repo.trapNoRowsErr(err, "finding guardian by email")
	}
	return row.guardian(), nil
}

func (repo *guardianRepository) FilterGuardians(ctx context.Context, filter guardian.QueryFilter) ([]guardian.Guardian, error) {
	query := `SELECT * FROM guardian WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += ` AND (name ILIKE $1 OR email ILIKE $1)`
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += ` AND is_active = ` + dollar(len(args))
	}
	query += ` ORDER BY ` + orderClause(filter.Orderings, guardianOrderFields, "name")

	var rows []guardianRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr(err, "filtering guardians")
	}

	guardians := make([]guardian.Guardian, 0, len(rows))
	for _, row := range rows {
		guardians = append(guardians, row.guardian())
	}
	return guardians, nil
}

func (repo *guardianRepository) UpdateGuardian(ctx context.Context, grd guardian.Guardian, isActive *bool) (guardian.Guardian, error) {
	if isActive != nil {
		grd.IsActive = *isActive
	}
	query := `
		UPDATE guardian
		SET name = $2, email = $3, phone = $4, is_active = $5, password_hash = $6, updated_at = $7
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		grd.ID, grd.Name, grd.Email, grd.Phone, grd.IsActive, grd.PasswordHash, grd.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return guardian.Guardian{}, guardian.ErrEmailExists
		}
		return guardian.Guardian{}, wrapErr(err, "updating guardian")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return guardian.Guardian{}, guardian.ErrNotFound
	}
	return grd, nil
}
