package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/tkabange/uangalizi/apps/api/echo"
	"github.com/tkabange/uangalizi/core"
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
	logsvc "github.com/tkabange/uangalizi/services/logger"
	"github.com/tkabange/uangalizi/storage/database"
	"github.com/tkabange/uangalizi/storage/database/sqlxrepos"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	guardianRepo := sqlxrepos.NewGuardianRepository(db)
	studentRepo := sqlxrepos.NewStudentRepository(db)
	observerRepo := sqlxrepos.NewObserverRepository(db)
	principalRepo := sqlxrepos.NewPrincipalRepository(db)
	sessionRepo := sqlxrepos.NewSessionRepository(db)
	paymentRepo := sqlxrepos.NewPaymentRepository(db)
	inquiryRepo := sqlxrepos.NewInquiryRepository(db)
	reportRepo := sqlxrepos.NewReportRepository(db)
	ticketRepo := sqlxrepos.NewTicketRepository(db)
	staffRepo := sqlxrepos.NewStaffRepository(db)

	guardianSvc := guardian.NewService(guardianRepo, mailSvc, conf)
	studentSvc := student.NewService(studentRepo, guardianRepo)
	observerSvc := observer.NewService(observerRepo)
	principalSvc := principal.NewService(principalRepo)
	sessionSvc := session.NewService(sessionRepo, studentRepo)
	inquirySvc := inquiry.NewService(inquiryRepo)
	reportSvc := report.NewService(reportRepo, studentRepo)
	ticketSvc := ticket.NewService(ticketRepo, mailSvc, conf)
	staffSvc := staff.NewService(staffRepo)
	analyticsSvc := analytics.NewService(sessionRepo, studentRepo, principalRepo)

	engine := assignment.NewEngine(studentRepo, observerRepo)
	calculator := earnings.NewCalculator(
		sessionRepo, paymentRepo, observerRepo, principalRepo, studentRepo,
		earnings.Config{
			WeeklyBonusMinSessions: conf.Earnings.WeeklyBonusMinSessions,
			WeeklyBonus:            conf.Earnings.WeeklyBonus,
			ManagementFee:          conf.Earnings.ManagementFee,
		},
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			GuardianSvc:  guardianSvc,
			StudentSvc:   studentSvc,
			ObserverSvc:  observerSvc,
			PrincipalSvc: principalSvc,
			SessionSvc:   sessionSvc,
			InquirySvc:   inquirySvc,
			ReportSvc:    reportSvc,
			TicketSvc:    ticketSvc,
			StaffSvc:     staffSvc,
			AnalyticsSvc: analyticsSvc,
			Engine:       engine,
			Calculator:   calculator,
			PaymentRepo:  paymentRepo,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
