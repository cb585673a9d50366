// Package earnings derives per-period compensation figures for observers
// (per-session rate plus weekly-volume bonus) and principals (per-student
// fee, fixed management fee and consultation fees). The computation is a
// pure function of the period and the session/payment snapshot.
package earnings

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/tkabange/uangalizi/core/billing"
	"github.com/tkabange/uangalizi/core/observer"
	"github.com/tkabange/uangalizi/core/principal"
	"github.com/tkabange/uangalizi/core/session"
	"github.com/tkabange/uangalizi/core/student"
)

type Calculator struct {
	sessions   session.Repository
	payments   billing.Repository
	observers  observer.Repository
	principals principal.Repository
	students   student.Repository
	conf       Config
}

func NewCalculator(
	sessions session.Repository,
	payments billing.Repository,
	observers observer.Repository,
	principals principal.Repository,
	students student.Repository,
	conf Config,
) *Calculator {
	return &Calculator{
		sessions:   sessions,
		payments:   payments,
		observers:  observers,
		principals: principals,
		students:   students,
		conf:       conf,
	}
}

// ObserverSummary computes an observer's earnings for the period:
// completed sessions x session rate, plus the weekly bonus for every ISO
// week with at least Config.WeeklyBonusMinSessions completed sessions.
func (c *Calculator) ObserverSummary(ctx context.Context, observerID string, p Period) (Summary, error) {
	obs, err := c.observers.GetObserverByID(ctx, observerID)
	if err != nil {
		return Summary{}, err
	}

	sessions, err := c.sessions.FilterSessions(ctx, session.QueryFilter{
		ObserverID: observerID,
		Status:     session.StatusCompleted,
		From:       p.Start,
		To:         p.End,
	})
	if err != nil {
		return Summary{}, errors.Wrap(err, "loading session snapshot")
	}

	figures := ObserverFigures(p, sessions, obs.SessionRate, c.conf)
	return c.summarize(ctx, observerID, string(billing.OwnerObserver), p, figures)
}

// PrincipalSummary computes a principal's earnings for the period: per
// month, active students in their school x per-student rate, plus the
// fixed management fee, plus completed consultations x consultation rate.
func (c *Calculator) PrincipalSummary(ctx context.Context, principalID string, p Period) (Summary, error) {
	prl, err := c.principals.GetPrincipalByID(ctx, principalID)
	if err != nil {
		return Summary{}, err
	}

	active, err := c.students.FilterStudents(ctx, student.QueryFilter{
		SchoolID: prl.SchoolID,
		Status:   student.StatusActive,
	})
	if err != nil {
		return Summary{}, errors.Wrap(err, "loading student snapshot")
	}

	consultations, err := c.sessions.FilterConsultations(ctx, principalID, p.Start, p.End)
	if err != nil {
		return Summary{}, errors.Wrap(err, "loading consultation snapshot")
	}

	figures := PrincipalFigures(p, len(active), consultations, prl.PerStudentRate, prl.ConsultationRate, c.conf)
	return c.summarize(ctx, principalID, string(billing.OwnerPrincipal), p, figures)
}

func (c *Calculator) summarize(ctx context.Context, ownerID, ownerRole string, p Period, figures []MonthFigure) (Summary, error) {
	months := p.Months()
	var fromMonth, toMonth string
	if len(months) > 0 {
		fromMonth, toMonth = months[0], months[len(months)-1]
	}
	paid, err := c.payments.FilterPayments(ctx, billing.QueryFilter{
		OwnerID:   ownerID,
		Status:    billing.StatusPaid,
		FromMonth: fromMonth,
		ToMonth:   toMonth,
	})
	if err != nil {
		return Summary{}, errors.Wrap(err, "loading payment snapshot")
	}
	return Summarize(ownerID, ownerRole, figures, paid), nil
}

// ObserverFigures is the pure monthly breakdown for an observer. Only
// completed sessions within the period count; a week's bonus lands in the
// month containing that ISO week's Monday.
func ObserverFigures(p Period, sessions []session.Session, rate decimal.Decimal, conf Config) []MonthFigure {
	byMonth := make(map[string]int)
	byWeek := make(map[string]int)
	weekMonday := make(map[string]time.Time)

	for _, ses := range sessions {
		if ses.Status != session.StatusCompleted || !p.Contains(ses.Date) {
			continue
		}
		month := ses.Date.Format(monthLayout)
		byMonth[month]++

		week := isoWeekKey(ses.Date)
		byWeek[week]++
		if _, ok := weekMonday[week]; !ok {
			weekMonday[week] = isoWeekMonday(ses.Date)
		}
	}

	bonusByMonth := make(map[string]decimal.Decimal)
	if conf.WeeklyBonusMinSessions > 0 {
		for week, n := range byWeek {
			if n >= conf.WeeklyBonusMinSessions {
				month := weekMonday[week].Format(monthLayout)
				bonusByMonth[month] = bonusByMonth[month].Add(conf.WeeklyBonus)
			}
		}
	}

	figures := make([]MonthFigure, 0, len(p.Months()))
	for _, month := range p.Months() {
		n := byMonth[month]
		earned := rate.Mul(decimal.NewFromInt(int64(n))).Add(bonusByMonth[month])
		figures = append(figures, MonthFigure{Month: month, Count: n, Earnings: earned})
	}
	return figures
}

// PrincipalFigures is the pure monthly breakdown for a principal. Each
// month in the period earns the per-student fee over the active student
// count, the fixed management fee, and that month's completed
// consultations at the consultation rate.
func PrincipalFigures(
	p Period,
	activeStudents int,
	consultations []session.Consultation,
	perStudentRate, consultationRate decimal.Decimal,
	conf Config,
) []MonthFigure {
	byMonth := make(map[string]int)
	for _, con := range consultations {
		if con.Status != session.StatusCompleted || !p.Contains(con.Date) {
			continue
		}
		byMonth[con.Date.Format(monthLayout)]++
	}

	base := perStudentRate.Mul(decimal.NewFromInt(int64(activeStudents))).Add(conf.ManagementFee)
	figures := make([]MonthFigure, 0, len(p.Months()))
	for _, month := range p.Months() {
		n := byMonth[month]
		earned := base.Add(consultationRate.Mul(decimal.NewFromInt(int64(n))))
		figures = append(figures, MonthFigure{Month: month, Count: n, Earnings: earned})
	}
	return figures
}

// Summarize folds monthly figures and the paid-payment snapshot into a
// Summary. Pending is clamped at zero; a negative raw difference flips
// OverpaymentDetected instead.
func Summarize(ownerID, ownerRole string, figures []MonthFigure, paid []billing.Payment) Summary {
	sort.SliceStable(figures, func(i, j int) bool { return figures[i].Month < figures[j].Month })

	var earned decimal.Decimal
	for _, fig := range figures {
		earned = earned.Add(fig.Earnings)
	}
	var totalPaid decimal.Decimal
	for _, pay := range paid {
		if pay.Status == billing.StatusPaid {
			totalPaid = totalPaid.Add(pay.Amount)
		}
	}

	pending := earned.Sub(totalPaid)
	overpaid := pending.IsNegative()
	if overpaid {
		pending = decimal.Zero
	}
	return Summary{
		OwnerID:             ownerID,
		OwnerRole:           ownerRole,
		TotalEarned:         earned,
		TotalPaid:           totalPaid,
		Pending:             pending,
		OverpaymentDetected: overpaid,
		Months:              figures,
	}
}

func isoWeekKey(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}

func isoWeekMonday(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return t.AddDate(0, 0, 1-wd)
}
