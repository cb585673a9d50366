package billing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

type OwnerRole string

const (
	OwnerGuardian  OwnerRole = "guardian"
	OwnerObserver  OwnerRole = "observer"
	OwnerPrincipal OwnerRole = "principal"
)

// Payment is one payout (observer/principal) or subscription charge
// (guardian) for a given month.
type Payment struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	OwnerRole OwnerRole       `json:"owner_role"`
	Month     string          `json:"month"` // "2006-01"
	Amount    decimal.Decimal `json:"amount"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"` // UTC
	PaidAt    null.Time       `json:"paid_at,omitempty"`
}

var (
	// errors
	ErrNotFound = errors.New("payment not found")
)

type QueryFilter struct {
	OwnerID string
	Status  Status
	// Months bounds Payment.Month lexicographically as [FromMonth, ToMonth].
	FromMonth string
	ToMonth   string
}

type Repository interface {
	CreatePayment(ctx context.Context, pay Payment) (Payment, error)
	GetPaymentByID(ctx context.Context, id string) (Payment, error)
	FilterPayments(ctx context.Context, filter QueryFilter) ([]Payment, error)
	// MarkPaid flips a pending payment to paid and stamps PaidAt.
	MarkPaid(ctx context.Context, id string, at time.Time) (Payment, error)
}
