package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/tkabange/uangalizi/core/principal"
)

type principalRow struct {
	ID               string          `db:"id"`
	Name             string          `db:"name"`
	Email            string          `db:"email"`
	SchoolID         string          `db:"school_id"`
	ConsultationRate decimal.Decimal `db:"consultation_rate"`
	PerStudentRate   decimal.Decimal `db:"per_student_rate"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r principalRow) principal() principal.Principal {
	return principal.Principal{
		ID:               r.ID,
		Name:             r.Name,
		Email:            r.Email,
		SchoolID:         r.SchoolID,
		ConsultationRate: r.ConsultationRate,
		PerStudentRate:   r.PerStudentRate,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

type schoolRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	PrincipalID null.String `db:"principal_id"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (r schoolRow) school() principal.School {
	return principal.School{
		ID:          r.ID,
		Name:        r.Name,
		PrincipalID: r.PrincipalID,
		CreatedAt:   r.CreatedAt,
	}
}

type principalRepository struct {
	db *sqlx.DB
}

var _ principal.Repository = (*principalRepository)(nil)

func NewPrincipalRepository(db *sqlx.DB) *principalRepository {
	return &principalRepository{db: db}
}

func (repo *principalRepository) CreatePrincipal(ctx context.Context, prl principal.Principal) (principal.Principal, error) {
	query := `
		INSERT INTO principal (id, name, email, school_id, consultation_rate, per_student_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, query,
		prl.ID, prl.Name, prl.Email, prl.SchoolID, prl.ConsultationRate, prl.PerStudentRate,
		prl.CreatedAt, prl.UpdatedAt)
	if err != nil {
		return principal.Principal{}, wrapErr(err, "inserting principal")
	}
	return prl, nil
}

func (repo *principalRepository) GetPrincipalByID(ctx context.Context, id string) (principal.Principal, error) {
	var row principalRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM principal WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return principal.Principal{}, principal.ErrNotFound
		}
		return principal.Principal{}, wrapErr(err, "finding principal by ID")
	}
	return row.principal(), nil
}

func (repo *principalRepository) QueryAllPrincipals(ctx context.Context) ([]principal.Principal, error) {
	var rows []principalRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM principal ORDER BY name`); err != nil {
		return nil, wrapErr(err, "querying principals")
	}
	principals := make([]principal.Principal, 0, len(rows))
	for _, row := range rows {
		principals = append(principals, row.principal())
	}
	return principals, nil
}

func (repo *principalRepository) CreateSchool(ctx context.Context, sch principal.School) (principal.School, error) {
	query := `INSERT INTO school (id, name, principal_id, created_at) VALUES ($1, $2, $3, $4)`
	_, err := repo.db.ExecContext(ctx, query, sch.ID, sch.Name, sch.PrincipalID, sch.CreatedAt)
	if err != nil {
		return principal.School{}, wrapErr(err, "inserting school")
	}
	return sch, nil
}

func (repo *principalRepository) UpdateSchool(ctx context.Context, sch principal.School) (principal.School, error) {
	query := `UPDATE school SET name = $2, principal_id = $3 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, sch.ID, sch.Name, sch.PrincipalID)
	if err != nil {
		return principal.School{}, wrapErr(err, "updating school")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return principal.School{}, principal.ErrSchoolNotFound
	}
	return sch, nil
}

func (repo *principalRepository) GetSchoolByID(ctx context.Context, id string) (principal.School, error) {
	var row schoolRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM school WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return principal.School{}, principal.ErrSchoolNotFound
		}
		return principal.School{}, wrapErr(err, "finding school by ID")
	}
	return row.school(), nil
}

func (repo *principalRepository) QueryAllSchools(ctx context.Context) ([]principal.School, error) {
	var rows []schoolRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM school ORDER BY name`); err != nil {
		return nil, wrapErr(err, "querying schools")
	}
	schools := make([]principal.School, 0, len(rows))
	for _, row := range rows {
		schools = append(schools, row.school())
	}
	return schools, nil
}
