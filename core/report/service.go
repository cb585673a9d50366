package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("daily report not found")
)

type (
	Repository interface {
		CreateReport(ctx context.Context, rep DailyReport) (DailyReport, error)
		GetReportByID(ctx context.Context, id string) (DailyReport, error)
		// FilterReports applies AND operation on available QueryFilter fields.
		FilterReports(ctx context.Context, filter QueryFilter) ([]DailyReport, error)
		UpdateReport(ctx context.Context, rep DailyReport) (DailyReport, error)
	}

	Service struct {
		repo     Repository
		students student.Repository
	}
)

func NewService(repo Repository, students student.Repository) *Service {
	return &Service{repo: repo, students: students}
}

// Submit records an observer's daily report; reports always enter the
// review pipeline as pending_review.
func (svc *Service) Submit(ctx context.Context, nr NewReport) (DailyReport, error) {
	stu, err := svc.students.GetStudentByID(ctx, nr.StudentID)
	if err != nil {
		return DailyReport{}, err
	}
	if !stu.ObserverID.Valid || stu.ObserverID.String != nr.ObserverID {
		return DailyReport{}, core.NewValidationError(
			errors.New("student is not assigned to this observer"),
			core.FieldError{Field: "observer_id", Error: "student is not assigned to this observer"},
		)
	}

	rep := DailyReport{
		ID:           uuid.New().String(),
		StudentID:    nr.StudentID,
		ObserverID:   nr.ObserverID,
		Content:      nr.Content,
		Observations: nr.Observations,
		ReviewStatus: StatusPendingReview,
		CreatedAt:    time.Now().UTC(),
	}
	return svc.repo.CreateReport(ctx, rep)
}

// Review moves a report through the review machine. Feedback is attached
// on every review; an empty string is stored as a present-but-blank value,
// never as null.
func (svc *Service) Review(ctx context.Context, id string, status ReviewStatus, feedback string) (DailyReport, error) {
	if !status.Valid() || status == StatusPendingReview {
		return DailyReport{}, core.NewValidationError(
			errors.New("invalid review status"),
			core.FieldError{Field: "status", Error: "must be one of: reviewed, approved, flagged"},
		)
	}

	rep, err := svc.repo.GetReportByID(ctx, id)
	if err != nil {
		return DailyReport{}, err
	}
	if !CanTransition(rep.ReviewStatus, status) {
		return DailyReport{}, core.NewTransitionError("daily report", string(rep.ReviewStatus), string(status))
	}

	rep.ReviewStatus = status
	rep.Feedback = null.StringFrom(feedback)
	rep.ReviewedAt = null.TimeFrom(time.Now().UTC())
	return svc.repo.UpdateReport(ctx, rep)
}

func (svc *Service) GetByID(ctx context.Context, id string) (DailyReport, error) {
	return svc.repo.GetReportByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]DailyReport, error) {
	return svc.repo.FilterReports(ctx, filter)
}

// PendingReview lists reports awaiting a first review.
func (svc *Service) PendingReview(ctx context.Context) ([]DailyReport, error) {
	return svc.repo.FilterReports(ctx, QueryFilter{ReviewStatus: StatusPendingReview})
}
