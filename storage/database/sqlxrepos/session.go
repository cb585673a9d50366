package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tkabange/uangalizi/core/session"
)

type sessionRow struct {
	ID         string    `db:"id"`
	StudentID  string    `db:"student_id"`
	ObserverID string    `db:"observer_id"`
	Date       time.Time `db:"date"`
	Mood       string    `db:"mood"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r sessionRow) session() session.Session {
	return session.Session{
		ID:         r.ID,
		StudentID:  r.StudentID,
		ObserverID: r.ObserverID,
		Date:       r.Date,
		Mood:       r.Mood,
		Status:     session.Status(r.Status),
		CreatedAt:  r.CreatedAt,
	}
}

type consultationRow struct {
	ID          string    `db:"id"`
	PrincipalID string    `db:"principal_id"`
	Date        time.Time `db:"date"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r consultationRow) consultation() session.Consultation {
	return session.Consultation{
		ID:          r.ID,
		PrincipalID: r.PrincipalID,
		Date:        r.Date,
		Status:      session.Status(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}

type sessionRepository struct {
	db *sqlx.DB
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *sqlx.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, ses session.Session) (session.Session, error) {
	query := `
		INSERT INTO session (id, student_id, observer_id, date, mood, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, query,
		ses.ID, ses.StudentID, ses.ObserverID, ses.Date, ses.Mood, ses.Status, ses.CreatedAt)
	if err != nil {
		return session.Session{}, wrapErr(err, "inserting session")
	}
	return ses, nil
}

func (repo *sessionRepository) FilterSessions(ctx context.Context, filter session.QueryFilter) ([]session.Session, error) {
	query := `SELECT * FROM session WHERE 1=1`
	var args []interface{}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		query += ` AND student_id = ` + dollar(len(args))
	}
	if filter.ObserverID != "" {
		args = append(args, filter.ObserverID)
		query += ` AND observer_id = ` + dollar(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = ` + dollar(len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += ` AND date >= ` + dollar(len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += ` AND date < ` + dollar(len(args))
	}
	query += ` ORDER BY date`

	var rows []sessionRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr(err, "filtering sessions")
	}

	sessions := make([]session.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.session())
	}
	return sessions, nil
}

func (repo *sessionRepository) CreateConsultation(ctx context.Context, con session.Consultation) (session.Consultation, error) {
	query := `
		INSERT INTO consultation (id, principal_id, date, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := repo.db.ExecContext(ctx, query, con.ID, con.PrincipalID, con.Date, con.Status, con.CreatedAt)
	if err != nil {
		return session.Consultation{}, wrapErr(err, "inserting consultation")
	}
	return con, nil
}

func (repo *sessionRepository) FilterConsultations(ctx context.Context, principalID string, from, to time.Time) ([]session.Consultation, error) {
	query := `SELECT * FROM consultation WHERE 1=1`
	var args []interface{}

	if principalID != "" {
		args = append(args, principalID)
		query += ` AND principal_id = ` + dollar(len(args))
	}
	if !from.IsZero() {
		args = append(args, from)
		query += ` AND date >= ` + dollar(len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += ` AND date < ` + dollar(len(args))
	}
	query += ` ORDER BY date`

	var rows []consultationRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr(err, "filtering consultations")
	}

	consultations := make([]session.Consultation, 0, len(rows))
	for _, row := range rows {
		consultations = append(consultations, row.consultation())
	}
	return consultations, nil
}
