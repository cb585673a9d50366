package echoapi

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/billing"
	"github.com/tkabange/uangalizi/core/earnings"
	"github.com/tkabange/uangalizi/core/inquiry"
	"github.com/tkabange/uangalizi/core/report"
	"github.com/tkabange/uangalizi/core/ticket"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return core.Validate.Struct(r)
}

type LoginResponse struct {
	Token string `json:"token"`
}

type SuccessResponse struct {
	Success string `json:"success"`
}

type AssignRequest struct {
	ObserverID string `json:"observer_id" validate:"required"`
}

func (r *AssignRequest) Validate() error {
	r.ObserverID = core.CleanString(r.ObserverID)
	return core.Validate.Struct(r)
}

type LinkGuardianRequest struct {
	GuardianID string `json:"guardian_id" validate:"required"`
}

func (r *LinkGuardianRequest) Validate() error {
	r.GuardianID = core.CleanString(r.GuardianID)
	return core.Validate.Struct(r)
}

type InquiryStatusRequest struct {
	Status inquiry.Status `json:"status" validate:"required"`
	Notes  string         `json:"notes"`
}

func (r *InquiryStatusRequest) Validate() error {
	return core.Validate.Struct(r)
}

type ReviewRequest struct {
	Status   report.ReviewStatus `json:"status" validate:"required"`
	Feedback string              `json:"feedback"`
}

func (r *ReviewRequest) Validate() error {
	return core.Validate.Struct(r)
}

type TicketStatusRequest struct {
	Status ticket.Status `json:"status" validate:"required"`
}

func (r *TicketStatusRequest) Validate() error {
	return core.Validate.Struct(r)
}

type NewPaymentRequest struct {
	OwnerID   string          `json:"owner_id" validate:"required"`
	OwnerRole string          `json:"owner_role" validate:"required,oneof=guardian observer principal"`
	Month     string          `json:"month" validate:"required,len=7"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
}

func (r *NewPaymentRequest) Validate() error {
	r.OwnerID = core.CleanString(r.OwnerID)
	r.Month = core.CleanString(r.Month)

	if err := core.Validate.Struct(r); err != nil {
		return err
	}
	if _, err := time.Parse("2006-01", r.Month); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "month", Error: "must be formatted as YYYY-MM"})
	}
	if r.Amount.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "must not be negative"})
	}
	return nil
}

func (r *NewPaymentRequest) Payment() billing.Payment {
	return billing.Payment{
		OwnerID:   r.OwnerID,
		OwnerRole: billing.OwnerRole(r.OwnerRole),
		Month:     r.Month,
		Amount:    r.Amount,
		Status:    billing.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// PeriodQuery binds the from/to query params bounding an earnings period.
type PeriodQuery struct {
	From time.Time `query:"from"`
	To   time.Time `query:"to"`
}

func (q *PeriodQuery) Period() (earnings.Period, error) {
	return earnings.NewPeriod(q.From, q.To)
}
