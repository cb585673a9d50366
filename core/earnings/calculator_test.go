package earnings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tkabange/uangalizi/core/billing"
	"github.com/tkabange/uangalizi/core/observer"
	"github.com/tkabange/uangalizi/core/principal"
	"github.com/tkabange/uangalizi/core/session"
	inmemdb "github.com/tkabange/uangalizi/storage/database/inmem"
)

var testConf = Config{
	WeeklyBonusMinSessions: 3,
	WeeklyBonus:            decimal.NewFromInt(50),
	ManagementFee:          decimal.NewFromInt(300),
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func period(t *testing.T, start, end time.Time) Period {
	p, err := NewPeriod(start, end)
	if err != nil {
		t.Fatalf("NewPeriod() failed: %v", err)
	}
	return p
}

func completedSessions(observerID string, dates ...time.Time) []session.Session {
	sessions := make([]session.Session, 0, len(dates))
	for i, d := range dates {
		sessions = append(sessions, session.Session{
			ID:         fmt.Sprintf("ses%d", i),
			StudentID:  "stu1",
			ObserverID: observerID,
			Date:       d,
			Status:     session.StatusCompleted,
			CreatedAt:  d,
		})
	}
	return sessions
}

func TestNewPeriod(t *testing.T) {
	start, end := date(2026, 3, 1), date(2026, 4, 1)
	if _, err := NewPeriod(start, end); err != nil {
		t.Errorf("NewPeriod() failed: %v", err)
	}
	if _, err := NewPeriod(end, start); err == nil {
		t.Error("NewPeriod() expected error for inverted bounds")
	}
	if _, err := NewPeriod(start, start); err == nil {
		t.Error("NewPeriod() expected error for empty period")
	}
}

func TestPeriod_Months(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       []string
	}{
		{name: "within one month", start: date(2026, 3, 5), end: date(2026, 3, 20), want: []string{"2026-03"}},
		{name: "spanning two months", start: date(2026, 3, 20), end: date(2026, 4, 10), want: []string{"2026-03", "2026-04"}},
		{name: "over a year boundary", start: date(2025, 11, 1), end: date(2026, 2, 1), want: []string{"2025-11", "2025-12", "2026-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := period(t, tt.start, tt.end)
			assert.Equal(t, tt.want, p.Months())
		})
	}
}

func TestObserverFigures(t *testing.T) {
	rate := decimal.NewFromInt(20)

	t.Run("no bonus below threshold", func(t *testing.T) {
		p := period(t, date(2026, 3, 1), date(2026, 4, 1))
		// two sessions in the same ISO week, threshold is 3
		sessions := completedSessions("obs1", date(2026, 3, 2), date(2026, 3, 4))

		figures := ObserverFigures(p, sessions, rate, testConf)
		assert.Len(t, figures, 1)
		assert.Equal(t, 2, figures[0].Count)
		assert.True(t, figures[0].Earnings.Equal(decimal.NewFromInt(40)), "got %s", figures[0].Earnings)
	})

	t.Run("weekly bonus at threshold", func(t *testing.T) {
		p := period(t, date(2026, 3, 1), date(2026, 4, 1))
		// three sessions in the ISO week of Mon 2026-03-02
		sessions := completedSessions("obs1", date(2026, 3, 2), date(2026, 3, 4), date(2026, 3, 6))

		figures := ObserverFigures(p, sessions, rate, testConf)
		// 3 x 20 + 50
		assert.True(t, figures[0].Earnings.Equal(decimal.NewFromInt(110)), "got %s", figures[0].Earnings)
	})

	t.Run("bonus lands in the month of the week's Monday", func(t *testing.T) {
		// ISO week Mon 2026-03-30 .. Sun 2026-04-05 straddles the month boundary
		p := period(t, date(2026, 3, 1), date(2026, 5, 1))
		sessions := completedSessions("obs1", date(2026, 3, 30), date(2026, 4, 1), date(2026, 4, 2))

		figures := ObserverFigures(p, sessions, rate, testConf)
		assert.Len(t, figures, 2)
		// March: 1 session + the whole week's bonus
		assert.Equal(t, 1, figures[0].Count)
		assert.True(t, figures[0].Earnings.Equal(decimal.NewFromInt(70)), "got %s", figures[0].Earnings)
		// April: 2 sessions, no bonus
		assert.Equal(t, 2, figures[1].Count)
		assert.True(t, figures[1].Earnings.Equal(decimal.NewFromInt(40)), "got %s", figures[1].Earnings)
	})

	t.Run("non-completed and out-of-period sessions are ignored", func(t *testing.T) {
		p := period(t, date(2026, 3, 1), date(2026, 4, 1))
		sessions := completedSessions("obs1", date(2026, 3, 2), date(2026, 2, 27) /* before period */)
		sessions = append(sessions, session.Session{
			ID: "sesX", ObserverID: "obs1", Date: date(2026, 3, 3), Status: session.StatusMissed,
		})

		figures := ObserverFigures(p, sessions, rate, testConf)
		assert.Equal(t, 1, figures[0].Count)
		assert.True(t, figures[0].Earnings.Equal(decimal.NewFromInt(20)), "got %s", figures[0].Earnings)
	})

	t.Run("months without sessions still appear with zeros", func(t *testing.T) {
		p := period(t, date(2026, 1, 1), date(2026, 4, 1))
		sessions := completedSessions("obs1", date(2026, 2, 10))

		figures := ObserverFigures(p, sessions, rate, testConf)
		assert.Len(t, figures, 3)
		assert.Equal(t, "2026-01", figures[0].Month)
		assert.Equal(t, 0, figures[0].Count)
		assert.True(t, figures[0].Earnings.IsZero())
		assert.Equal(t, 0, figures[2].Count)
	})
}

func TestPrincipalFigures(t *testing.T) {
	perStudent := decimal.NewFromInt(10)
	perConsultation := decimal.NewFromInt(25)
	p := period(t, date(2026, 3, 1), date(2026, 5, 1))

	consultations := []session.Consultation{
		{ID: "con1", PrincipalID: "prl1", Date: date(2026, 3, 10), Status: session.StatusCompleted},
		{ID: "con2", PrincipalID: "prl1", Date: date(2026, 3, 20), Status: session.StatusCompleted},
		{ID: "con3", PrincipalID: "prl1", Date: date(2026, 4, 2), Status: session.StatusMissed},
	}

	figures := PrincipalFigures(p, 12, consultations, perStudent, perConsultation, testConf)
	assert.Len(t, figures, 2)
	// March: 12 x 10 + 300 + 2 x 25
	assert.Equal(t, 2, figures[0].Count)
	assert.True(t, figures[0].Earnings.Equal(decimal.NewFromInt(470)), "got %s", figures[0].Earnings)
	// April: missed consultation does not count
	assert.Equal(t, 0, figures[1].Count)
	assert.True(t, figures[1].Earnings.Equal(decimal.NewFromInt(420)), "got %s", figures[1].Earnings)
}

func TestSummarize(t *testing.T) {
	figures := []MonthFigure{
		{Month: "2026-04", Count: 1, Earnings: decimal.NewFromInt(20)},
		{Month: "2026-03", Count: 5, Earnings: decimal.NewFromInt(150)},
	}

	t.Run("pending is earned minus paid", func(t *testing.T) {
		paid := []billing.Payment{
			{ID: "pay1", OwnerID: "obs1", Month: "2026-03", Amount: decimal.NewFromInt(100), Status: billing.StatusPaid},
			{ID: "pay2", OwnerID: "obs1", Month: "2026-03", Amount: decimal.NewFromInt(30), Status: billing.StatusPending}, // ignored
		}
		sum := Summarize("obs1", string(billing.OwnerObserver), figures, paid)
		assert.True(t, sum.TotalEarned.Equal(decimal.NewFromInt(170)), "got %s", sum.TotalEarned)
		assert.True(t, sum.TotalPaid.Equal(decimal.NewFromInt(100)), "got %s", sum.TotalPaid)
		assert.True(t, sum.Pending.Equal(decimal.NewFromInt(70)), "got %s", sum.Pending)
		assert.False(t, sum.OverpaymentDetected)
		// months come out ordered regardless of input order
		assert.Equal(t, "2026-03", sum.Months[0].Month)
		assert.Equal(t, "2026-04", sum.Months[1].Month)
	})

	t.Run("overpayment clamps pending to zero", func(t *testing.T) {
		paid := []billing.Payment{
			{ID: "pay1", OwnerID: "obs1", Month: "2026-03", Amount: decimal.NewFromInt(500), Status: billing.StatusPaid},
		}
		sum := Summarize("obs1", string(billing.OwnerObserver), figures, paid)
		assert.True(t, sum.Pending.IsZero(), "got %s", sum.Pending)
		assert.True(t, sum.OverpaymentDetected)
	})

	t.Run("no payments", func(t *testing.T) {
		sum := Summarize("obs1", string(billing.OwnerObserver), figures, nil)
		assert.True(t, sum.Pending.Equal(sum.TotalEarned))
		assert.False(t, sum.OverpaymentDetected)
	})
}

func TestCalculator_ObserverSummary(t *testing.T) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	sesRepo := inmemdb.NewSessionRepository(db)
	payRepo := inmemdb.NewPaymentRepository(db)
	obsRepo := inmemdb.NewObserverRepository(db)
	prlRepo := inmemdb.NewPrincipalRepository(db)
	stuRepo := inmemdb.NewStudentRepository(db)
	calc := NewCalculator(sesRepo, payRepo, obsRepo, prlRepo, stuRepo, testConf)
	ctx := context.Background()

	obs, err := obsRepo.CreateObserver(ctx, observer.Observer{
		ID: "obs1", Name: "imani", Email: "imani@test.cd",
		SessionRate: decimal.NewFromInt(20), Capacity: 5, IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateObserver() failed: %v", err)
	}
	for _, ses := range completedSessions(obs.ID, date(2026, 3, 2), date(2026, 3, 4), date(2026, 3, 6)) {
		if _, err = sesRepo.CreateSession(ctx, ses); err != nil {
			t.Fatalf("CreateSession() failed: %v", err)
		}
	}
	pay, err := payRepo.CreatePayment(ctx, billing.Payment{
		ID: "pay1", OwnerID: obs.ID, OwnerRole: billing.OwnerObserver,
		Month: "2026-03", Amount: decimal.NewFromInt(60), Status: billing.StatusPending,
	})
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	if _, err = payRepo.MarkPaid(ctx, pay.ID, date(2026, 4, 1)); err != nil {
		t.Fatalf("MarkPaid() failed: %v", err)
	}

	sum, err := calc.ObserverSummary(ctx, obs.ID, period(t, date(2026, 3, 1), date(2026, 4, 1)))
	if err != nil {
		t.Fatalf("ObserverSummary() failed: %v", err)
	}
	// 3 x 20 + 50 bonus = 110 earned, 60 paid
	assert.True(t, sum.TotalEarned.Equal(decimal.NewFromInt(110)), "got %s", sum.TotalEarned)
	assert.True(t, sum.TotalPaid.Equal(decimal.NewFromInt(60)), "got %s", sum.TotalPaid)
	assert.True(t, sum.Pending.Equal(decimal.NewFromInt(50)), "got %s", sum.Pending)

	// recomputation over the same snapshot yields identical figures
	again, err := calc.ObserverSummary(ctx, obs.ID, period(t, date(2026, 3, 1), date(2026, 4, 1)))
	if err != nil {
		t.Fatalf("ObserverSummary() failed: %v", err)
	}
	assert.Equal(t, sum, again)

	if _, err = calc.ObserverSummary(ctx, "lol", period(t, date(2026, 3, 1), date(2026, 4, 1))); err != observer.ErrNotFound {
		t.Errorf("ObserverSummary() error = %v; want %v", err, observer.ErrNotFound)
	}
}

func TestCalculator_PrincipalSummary(t *testing.T) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	sesRepo := inmemdb.NewSessionRepository(db)
	payRepo := inmemdb.NewPaymentRepository(db)
	obsRepo := inmemdb.NewObserverRepository(db)
	prlRepo := inmemdb.NewPrincipalRepository(db)
	stuRepo := inmemdb.NewStudentRepository(db)
	calc := NewCalculator(sesRepo, payRepo, obsRepo, prlRepo, stuRepo, testConf)
	ctx := context.Background()

	prl, err := prlRepo.CreatePrincipal(ctx, principal.Principal{
		ID: "prl1", Name: "Neema", Email: "neema@test.cd", SchoolID: "sch1",
		ConsultationRate: decimal.NewFromInt(25), PerStudentRate: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("CreatePrincipal() failed: %v", err)
	}
	if _, err = sesRepo.CreateConsultation(ctx, session.Consultation{
		ID: "con1", PrincipalID: prl.ID, Date: date(2026, 3, 10), Status: session.StatusCompleted,
	}); err != nil {
		t.Fatalf("CreateConsultation() failed: %v", err)
	}

	sum, err := calc.PrincipalSummary(ctx, prl.ID, period(t, date(2026, 3, 1), date(2026, 4, 1)))
	if err != nil {
		t.Fatalf("PrincipalSummary() failed: %v", err)
	}
	// no active students in sch1: 0 x 10 + 300 + 1 x 25
	assert.True(t, sum.TotalEarned.Equal(decimal.NewFromInt(325)), "got %s", sum.TotalEarned)
	assert.Equal(t, string(billing.OwnerPrincipal), sum.OwnerRole)

	if _, err = calc.PrincipalSummary(ctx, "lol", period(t, date(2026, 3, 1), date(2026, 4, 1))); err != principal.ErrNotFound {
		t.Errorf("PrincipalSummary() error = %v; want %v", err, principal.ErrNotFound)
	}
}
