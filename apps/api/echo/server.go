package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/analytics"
	"github.com/tkabange/uangalizi/core/assignment"
	"github.com/tkabange/uangalizi/core/billing"
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
)

type (
	ServerDeps struct {
		Conf   *core.Config
		Logger core.Logger

		GuardianSvc  *guardian.Service
		StudentSvc   *student.Service
		ObserverSvc  *observer.Service
		PrincipalSvc *principal.Service
		SessionSvc   *session.Service
		InquirySvc   *inquiry.Service
		ReportSvc    *report.Service
		TicketSvc    *ticket.Service
		StaffSvc     *staff.Service
		AnalyticsSvc *analytics.Service
		Engine       *assignment.Engine
		Calculator   *earnings.Calculator
		PaymentRepo  billing.Repository
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	auth := newAuthAPI(conf, s.deps.StaffSvc, s.deps.GuardianSvc)
	jwt := middleware.JWTWithConfig(auth.jwtConfig())

	v1 := s.app.Group("/v1")
	registerAuthAPI(v1, jwt, auth)
	registerGuardianAPI(v1, jwt, s.deps.GuardianSvc, s.deps.StudentSvc)
	registerStudentAPI(v1, jwt, s.deps.StudentSvc, s.deps.Engine)
	registerObserverAPI(v1, jwt, s.deps.ObserverSvc, s.deps.Engine)
	registerPrincipalAPI(v1, jwt, s.deps.PrincipalSvc)
	registerSessionAPI(v1, jwt, s.deps.SessionSvc)
	registerInquiryAPI(v1, jwt, s.deps.InquirySvc)
	registerReportAPI(v1, jwt, s.deps.ReportSvc)
	registerTicketAPI(v1, jwt, s.deps.TicketSvc)
	registerEarningsAPI(v1, jwt, s.deps.Calculator, s.deps.PaymentRepo)
	registerAnalyticsAPI(v1, jwt, s.deps.AnalyticsSvc)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error { return s.errs }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Uangalizi API!")
}
