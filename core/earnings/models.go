package earnings

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tkabange/uangalizi/core"
)

// Config carries the compensation policy knobs. Defaults come from
// core.Config; tests inject their own.
type Config struct {
	WeeklyBonusMinSessions int             // completed sessions per ISO week to unlock the bonus
	WeeklyBonus            decimal.Decimal // fixed bonus per qualifying ISO week
	ManagementFee          decimal.Decimal // fixed monthly fee for principals
}

// Period is a closed reporting period [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

func NewPeriod(start, end time.Time) (Period, error) {
	if !start.Before(end) {
		return Period{}, core.NewValidationError(
			errors.New("invalid period"),
			core.FieldError{Field: "period", Error: "start must be before end"},
		)
	}
	return Period{Start: start, End: end}, nil
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Months lists the "2006-01" keys of every month overlapped by the period,
// in chronological order.
func (p Period) Months() []string {
	months := make([]string, 0, 12)
	m := time.Date(p.Start.Year(), p.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for m.Before(p.End) {
		months = append(months, m.Format(monthLayout))
		m = m.AddDate(0, 1, 0)
	}
	return months
}

const monthLayout = "2006-01"

// MonthFigure is one month's line in a summary breakdown. Count is the
// number of completed sessions (observers) or consultations (principals).
type MonthFigure struct {
	Month    string          `json:"month"`
	Count    int             `json:"count"`
	Earnings decimal.Decimal `json:"earnings"`
}

// Summary is the derived compensation view for one owner over a period.
// Recomputing it over the same session/payment snapshot yields identical
// figures; there are no hidden counters.
type Summary struct {
	OwnerID             string          `json:"owner_id"`
	OwnerRole           string          `json:"owner_role"`
	TotalEarned         decimal.Decimal `json:"total_earned"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	Pending             decimal.Decimal `json:"pending"` // never negative
	OverpaymentDetected bool            `json:"overpayment_detected"`
	Months              []MonthFigure   `json:"months"` // ordered by month
}
