package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/tkabange/uangalizi/core/report"
)

type reportRow struct {
	ID           string      `db:"id"`
	StudentID    string      `db:"student_id"`
	ObserverID   string      `db:"observer_id"`
	Content      string      `db:"content"`
	Observations string      `db:"observations"`
	ReviewStatus string      `db:"review_status"`
	Feedback     null.String `db:"feedback"`
	CreatedAt    time.Time   `db:"created_at"`
	ReviewedAt   null.Time   `db:"reviewed_at"`
}

func (r reportRow) report() report.DailyReport {
	return report.DailyReport{
		ID:           r.ID,
		StudentID:    r.StudentID,
		ObserverID:   r.ObserverID,
		Content:      r.Content,
		Observations: r.Observations,
		ReviewStatus: report.ReviewStatus(r.ReviewStatus),
		Feedback:     r.Feedback,
		CreatedAt:    r.CreatedAt,
		ReviewedAt:   r.ReviewedAt,
	}
}

type reportRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*reportRepository)(nil)

func NewReportRepository(db *sqlx.DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) CreateReport(ctx context.Context, rep report.DailyReport) (report.DailyReport, error) {
	query := `
		INSERT INTO daily_report (id, student_id, observer_id, content, observations, review_status, feedback, created_at, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, query,
		rep.ID, rep.StudentID, rep.ObserverID, rep.Content, rep.Observations,
		rep.ReviewStatus, rep.Feedback, rep.CreatedAt, rep.ReviewedAt)
	if err != nil {
		return report.DailyReport{}, wrapErr(err, "inserting report")
	}
	return rep, nil
}

func (repo *reportRepository) GetReportByID(ctx context.Context, id string) (report.DailyReport, error) {
	var row reportRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM daily_report WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return report.DailyReport{}, report.ErrNotFound
		}
		return report.DailyReport{}, wrapErr(err, "finding report by ID")
	}
	return row.report(), nil
}

func (repo *reportRepository) FilterReports(ctx context.Context, filter report.QueryFilter) ([]report.DailyReport, error) {
	query := `SELECT * FROM daily_report WHERE 1=1`
	var args []interface{}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		query += ` AND student_id = ` + dollar(len(args))
	}
	if filter.ObserverID != "" {
		args = append(args, filter.ObserverID)
		query += ` AND observer_id = ` + dollar(len(args))
	}
	if filter.ReviewStatus != "" {
		args = append(args, filter.ReviewStatus)
		query += ` AND review_status = ` + dollar(len(args))
	}
	query += ` ORDER BY created_at DESC`

	var rows []reportRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr(err, "filtering reports")
	}

	reports := make([]report.DailyReport, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, row.report())
	}
	return reports, nil
}

func (repo *reportRepository) UpdateReport(ctx context.Context, rep report.DailyReport) (report.DailyReport, error) {
	query := `
		UPDATE daily_report
		SET content = $2, observations = $3, review_status = $4, feedback = $5, reviewed_at = $6
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		rep.ID, rep.Content, rep.Observations, rep.ReviewStatus, rep.Feedback, rep.ReviewedAt)
	if err != nil {
		return report.DailyReport{}, wrapErr(err, "updating report")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return report.DailyReport{}, report.ErrNotFound
	}
	return rep, nil
}
