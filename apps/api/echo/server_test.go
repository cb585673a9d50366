package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tkabange/uangalizi/core/analytics"
	"github.com/tkabange/uangalizi/core/assignment"
	"github.com/tkabange/uangalizi/core/earnings"
	"github.com/tkabange/uangalizi/core/guardian"
	"github.com/tkabange/uangalizi/core/inquiry"
	"github.com/tkabange/uangalizi/core/observer"
	"github.com/tkabange/uangalizi/core/principal"
	"github.com/tkabange/uangalizi/core/report"
	"github.com/tkabange/uangalizi/core/session"
	"github.com/tkabange/uangalizi/core/staff"
	"github.com/tkabange/uangalizi/core/student"
	"github.com/tkabange/uangalizi/core/ticket"
	emailsvc "github.com/tkabange/uangalizi/services/email"
	inmemdb "github.com/tkabange/uangalizi/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func serverSetup(t *testing.T) (Server, *staff.Service, *guardian.Service) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("serverSetup() failed: %v", err)
	}
	conf := testConfig()
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour

	grdRepo := inmemdb.NewGuardianRepository(db)
	stuRepo := inmemdb.NewStudentRepository(db)
	obsRepo := inmemdb.NewObserverRepository(db)
	prlRepo := inmemdb.NewPrincipalRepository(db)
	sesRepo := inmemdb.NewSessionRepository(db)
	payRepo := inmemdb.NewPaymentRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	staffSvc := staff.NewService(inmemdb.NewStaffRepository(db))
	grdSvc := guardian.NewService(grdRepo, mailSvc, conf)

	app := NewServer(ServerDeps{
		Conf:         conf,
		Logger:       nopLogger{},
		GuardianSvc:  grdSvc,
		StudentSvc:   student.NewService(stuRepo, grdRepo),
		ObserverSvc:  observer.NewService(obsRepo),
		PrincipalSvc: principal.NewService(prlRepo),
		SessionSvc:   session.NewService(sesRepo, stuRepo),
		InquirySvc:   inquiry.NewService(inmemdb.NewInquiryRepository(db)),
		ReportSvc:    report.NewService(inmemdb.NewReportRepository(db), stuRepo),
		TicketSvc:    ticket.NewService(inmemdb.NewTicketRepository(db), mailSvc, conf),
		StaffSvc:     staffSvc,
		AnalyticsSvc: analytics.NewService(sesRepo, stuRepo, prlRepo),
		Engine:       assignment.NewEngine(stuRepo, obsRepo),
		Calculator: earnings.NewCalculator(sesRepo, payRepo, obsRepo, prlRepo, stuRepo, earnings.Config{
			WeeklyBonusMinSessions: 5,
		}),
		PaymentRepo: payRepo,
	})
	return app, staffSvc, grdSvc
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func login(t *testing.T, app Server, email, pwd string) string {
	body := marshal(t, LoginRequest{Email: email, Password: pwd})
	req, rec := newAuthRequest(http.MethodPost, "/v1/auth/login", "", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login() code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("login() unmarshal failed: %v", err)
	}
	return resp.Token
}

func TestServer_auth(t *testing.T) {
	app, staffSvc, grdSvc := serverSetup(t)
	ctx := context.Background()

	admin, err := staffSvc.Create(ctx, staff.NewStaff{
		Name: "Admin", Email: "admin@test.cd", Role: staff.RoleAdmin, Password: "s3cr3t!pwd",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	grd := createGuardian(t, grdSvc, "Neema M", "neema@test.cd")

	t.Run("login as admin", func(t *testing.T) {
		token := login(t, app, admin.Email, "s3cr3t!pwd")
		if token == "" {
			t.Fatal("login() returned empty token")
		}

		req, rec := newAuthRequest(http.MethodGet, "/v1/guardians", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET /v1/guardians code = %v; body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		body := marshal(t, LoginRequest{Email: admin.Email, Password: "lol"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/auth/login", "", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("login code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/guardians", "")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET /v1/guardians code = %v; want %v", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("guardian role cannot reach admin routes", func(t *testing.T) {
		token := login(t, app, grd.Email, "s3cr3t!pwd")
		req, rec := newAuthRequest(http.MethodGet, "/v1/guardians", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("GET /v1/guardians code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("token refresh", func(t *testing.T) {
		token := login(t, app, admin.Email, "s3cr3t!pwd")
		req, rec := newAuthRequest(http.MethodPost, "/v1/auth/token-refresh", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("token-refresh code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if resp.Token == "" {
			t.Error("token-refresh returned empty token")
		}
	})

	t.Run("deactivated account", func(t *testing.T) {
		if _, err := grdSvc.Deactivate(ctx, grd.ID); err != nil {
			t.Fatalf("Deactivate() failed: %v", err)
		}
		body := marshal(t, LoginRequest{Email: grd.Email, Password: "s3cr3t!pwd"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/auth/login", "", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("login code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})
}

func TestServer_publicRoutes(t *testing.T) {
	app, _, _ := serverSetup(t)

	t.Run("home", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/", "")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET / code = %v", rec.Code)
		}
	})

	t.Run("inquiry submission requires no auth", func(t *testing.T) {
		body := marshal(t, inquiry.NewInquiry{
			ParentName: "Neema M",
			Email:      "neema@test.cd",
			Phone:      "+243812345678",
			ChildName:  "Amani",
			ChildAge:   7,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/inquiries", "", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Errorf("POST /v1/inquiries code = %v; body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("ticket creation requires no auth", func(t *testing.T) {
		body := marshal(t, ticket.NewTicket{
			UserEmail:   "neema@test.cd",
			UserRole:    "guardian",
			Category:    "billing",
			Subject:     "Invoice question",
			Description: "My March invoice looks off.",
			Priority:    ticket.PriorityMedium,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/tickets", "", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Errorf("POST /v1/tickets code = %v; body = %s", rec.Code, rec.Body.String())
		}
	})
}
