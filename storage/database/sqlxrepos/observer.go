package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/tkabange/uangalizi/core/observer"
)

type observerRow struct {
	ID             string          `db:"id"`
	Name           string          `db:"name"`
	Email          string          `db:"email"`
	Specialization string          `db:"specialization"`
	SessionRate    decimal.Decimal `db:"session_rate"`
	Capacity       int             `db:"capacity"`
	IsActive       bool            `db:"is_active"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r observerRow) observer(assigned []string) observer.Observer {
	return observer.Observer{
		ID:                 r.ID,
		Name:               r.Name,
		Email:              r.Email,
		Specialization:     r.Specialization,
		SessionRate:        r.SessionRate,
		Capacity:           r.Capacity,
		IsActive:           r.IsActive,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		AssignedStudentIDs: assigned,
	}
}

type observerRepository struct {
	db *sqlx.DB
}

var _ observer.Repository = (*observerRepository)(nil)

func NewObserverRepository(db *sqlx.DB) *observerRepository {
	return &observerRepository{db: db}
}

func (repo *observerRepository) trapNoRowsErr(err error, msg string) error {
	if isNoRows(err) {
		return observer.ErrNotFound
	}
	return wrapErr(err, msg)
}

func (repo *observerRepository) assignedStudentIDs(ctx context.Context, observerID string) ([]string, error) {
	var ids []string
	query := `SELECT id FROM student WHERE observer_id = $1 ORDER BY id`
	if err := repo.db.SelectContext(ctx, &ids, query, observerID); err != nil {
		return nil, wrapErr(err, "loading assigned students")
	}
	return ids, nil
}

func (repo *observerRepository) CreateObserver(ctx context.Context, obs observer.Observer) (observer.Observer, error) {
	query := `
		INSERT INTO observer (id, name, email, specialization, session_rate, capacity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, query,
		obs.ID, obs.Name, obs.Email, obs.Specialization, obs.SessionRate, obs.Capacity,
		obs.IsActive, obs.CreatedAt, obs.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return observer.Observer{}, observer.ErrEmailExists
		}
		return observer.Observer{}, wrapErr(err, "inserting observer")
	}
	return obs, nil
}

func (repo *observerRepository) GetObserverByID(ctx context.Context, id string) (observer.Observer, error) {
	var row observerRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM observer WHERE id = $1`, id); err != nil {
		return observer.Observer{}, repo.trapNoRowsErr(err, "finding observer by ID")
	}
	ids, err := repo.assignedStudentIDs(ctx, id)
	if err != nil {
		return observer.Observer{}, err
	}
	return row.observer(ids), nil
}

func (repo *observerRepository) FilterObservers(ctx context.Context, filter observer.QueryFilter) ([]observer.Observer, error) {
	query := `SELECT * FROM observer WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += ` AND (name ILIKE $1 OR email ILIKE $1 OR specialization ILIKE $1)`
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += ` AND is_active = ` + dollar(len(args))
	}
	if filter.WithCapacity != nil {
		cmp := `>=`
		if *filter.WithCapacity {
			cmp = `<`
		}
		query += ` AND (SELECT COUNT(*) FROM student WHERE student.observer_id = observer.id) ` + cmp + ` capacity`
	}
	query += ` ORDER BY name`

	var rows []observerRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr(err, "filtering observers")
	}

	observers := make([]observer.Observer, 0, len(rows))
	for _, row := range rows {
		ids, err := repo.assignedStudentIDs(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		observers = append(observers, row.observer(ids))
	}
	return observers, nil
}

func (repo *observerRepository) UpdateObserver(ctx context.Context, obs observer.Observer) (observer.Observer, error) {
	query := `
		UPDATE observer
		SET name = $2, email = $3, specialization = $4, session_rate = $5, capacity = $6, is_active = $7, updated_at = $8
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		obs.ID, obs.Name, obs.Email, obs.Specialization, obs.SessionRate, obs.Capacity, obs.IsActive, obs.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return observer.Observer{}, observer.ErrEmailExists
		}
		return observer.Observer{}, wrapErr(err, "updating observer")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return observer.Observer{}, observer.ErrNotFound
	}
	ids, err := repo.assignedStudentIDs(ctx, obs.ID)
	if err != nil {
		return observer.Observer{}, err
	}
	obs.AssignedStudentIDs = ids
	return obs, nil
}
