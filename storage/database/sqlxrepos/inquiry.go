package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tkabange/uangalizi/core/inquiry"
)

type inquiryRow struct {
	ID         string    `db:"id"`
	ParentName string    `db:"parent_name"`
	Email      string    `db:"email"`
	Phone      string    `db:"phone"`
	ChildName  string    `db:"child_name"`
	ChildAge   int       `db:"child_age"`
	SchoolName string    `db:"school_name"`
	Message    string    `db:"message"`
	Status     string    `db:"status"`
	Notes      string    `db:"notes"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r inquiryRow) inquiry() inquiry.Inquiry {
	return inquiry.Inquiry{
		ID:         r.ID,
		ParentName: r.ParentName,
		Email:      r.Email,
		Phone:      r.Phone,
		ChildName:  r.ChildName,
		ChildAge:   r.ChildAge,
		SchoolName: r.SchoolName,
		Message:    r.Message,
		Status:     inquiry.Status(r.Status),
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type inquiryRepository struct {
	db *sqlx.DB
}

var _ inquiry.Repository = (*inquiryRepository)(nil)

func NewInquiryRepository(db *sqlx.DB) *inquiryRepository {
	return &inquiryRepository{db: db}
}

func (repo *inquiryRepository) CreateInquiry(ctx context.Context, inq inquiry.Inquiry) (inquiry.Inquiry, error) {
	query := `
		INSERT INTO inquiry (id, parent_name, email, phone, child_name, child_age, school_name, message, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := repo.db.ExecContext(ctx, query,
		inq.ID, inq.ParentName, inq.Email, inq.Phone, inq.ChildName, inq.ChildAge,
		inq.SchoolName, inq.Message, inq.Status, inq.Notes, inq.CreatedAt, inq.UpdatedAt)
	if err != nil {
		return inquiry.Inquiry{}, wrapErr(err, "inserting inquiry")
	}
	return inq, nil
}

func (repo *inquiryRepository) GetInquiryByID(ctx context.Context, id string) (inquiry.Inquiry, error) {
	var row inquiryRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM inquiry WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return inquiry.Inquiry{}, inquiry.ErrNotFound
		}
		return inquiry.Inquiry{}, wrapErr(err, "finding inquiry by ID")
	}
	return row.inquiry(), nil
}

func (repo *inquiryRepository) FilterInquiries(ctx context.Context, filter inquiry.QueryFilter) ([]inquiry.Inquiry, error) {
	query := `SELECT * FROM inquiry WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += ` AND (parent_name ILIKE $1 OR child_name ILIKE $1 OR email ILIKE $1)`
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = ` + dollar(len(args))
	}
	query += ` ORDER BY created_at DESC`

	var rows []inquiryRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr(err, "filtering inquiries")
	}

	inquiries := make([]inquiry.Inquiry, 0, len(rows))
	for _, row := range rows {
		inquiries = append(inquiries, row.inquiry())
	}
	return inquiries, nil
}

func (repo *inquiryRepository) UpdateInquiry(ctx context.Context, inq inquiry.Inquiry) (inquiry.Inquiry, error) {
	query := `
		UPDATE inquiry
		SET parent_name = $2, email = $3, phone = $4, child_name = $5, child_age = $6,
		    school_name = $7, message = $8, status = $9, notes = $10, updated_at = $11
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		inq.ID, inq.ParentName, inq.Email, inq.Phone, inq.ChildName, inq.ChildAge,
		inq.SchoolName, inq.Message, inq.Status, inq.Notes, inq.UpdatedAt)
	if err != nil {
		return inquiry.Inquiry{}, wrapErr(err, "updating inquiry")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return inquiry.Inquiry{}, inquiry.ErrNotFound
	}
	return inq, nil
}
