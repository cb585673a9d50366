package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/tkabange/uangalizi/core/billing"
)

type paymentRow struct {
	ID        string          `db:"id"`
	OwnerID   string          `db:"owner_id"`
	OwnerRole string          `db:"owner_role"`
	Month     string          `db:"month"`
	Amount    decimal.Decimal `db:"amount"`
	Status    string          `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
	PaidAt    null.Time       `db:"paid_at"`
}

func (r paymentRow) payment() billing.Payment {
	return billing.Payment{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		OwnerRole: billing.OwnerRole(r.OwnerRole),
		Month:     r.Month,
		Amount:    r.Amount,
		Status:    billing.Status(r.Status),
		CreatedAt: r.CreatedAt,
		PaidAt:    r.PaidAt,
	}
}

type paymentRepository struct {
	db *sqlx.DB
}

var _ billing.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *sqlx.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, pay billing.Payment) (billing.Payment, error) {
	query := `
		INSERT INTO payment (id, owner_id, owner_role, month, amount, status, created_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, query,
		pay.ID, pay.OwnerID, pay.OwnerRole, pay.Month, pay.Amount, pay.Status, pay.CreatedAt, pay.PaidAt)
	if err != nil {
		return billing.Payment{}, wrapErr(err, "inserting payment")
	}
	return pay, nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id string) (billing.Payment, error) {
	var row paymentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM payment WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return billing.Payment{}, billing.ErrNotFound
		}
		return billing.Payment{}, wrapErr(err, "finding payment by ID")
	}
	return row.payment(), nil
}

func (repo *paymentRepository) FilterPayments(ctx context.Context, filter billing.QueryFilter) ([]billing.Payment, error) {
	query := `SELECT * FROM payment WHERE 1=1`
	var args []interface{}

	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		query += ` AND owner_id = ` + dollar(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = ` + dollar(len(args))
	}
	if filter.FromMonth != "" {
		args = append(args, filter.FromMonth)
		query += ` AND month >= ` + dollar(len(args))
	}
	if filter.ToMonth != "" {
		args = append(args, filter.ToMonth)
		query += ` AND month <= ` + dollar(len(args))
	}
	query += ` ORDER BY month`

	var rows []paymentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr(err, "filtering payments")
	}

	payments := make([]billing.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, row.payment())
	}
	return payments, nil
}

func (repo *paymentRepository) MarkPaid(ctx context.Context, id string, at time.Time) (billing.Payment, error) {
	query := `UPDATE payment SET status = $2, paid_at = $3 WHERE id = $1 RETURNING *`
	var row paymentRow
	if err := repo.db.GetContext(ctx, &row, query, id, billing.StatusPaid, at); err != nil {
		if isNoRows(err) {
			return billing.Payment{}, billing.ErrNotFound
		}
		return billing.Payment{}, wrapErr(err, "marking payment paid")
	}
	return row.payment(), nil
}
