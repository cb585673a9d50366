package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("session not found")
)

type (
	Repository interface {
		CreateSession(ctx context.Context, ses Session) (Session, error)
		// FilterSessions applies AND operation on available QueryFilter fields;
		// From/To bound Session.Date as [From, To).
		FilterSessions(ctx context.Context, filter QueryFilter) ([]Session, error)

		CreateConsultation(ctx context.Context, con Consultation) (Consultation, error)
		// FilterConsultations bounds Consultation.Date as [From, To).
		FilterConsultations(ctx context.Context, principalID string, from, to time.Time) ([]Consultation, error)
	}

	Service struct {
		repo     Repository
		students student.Repository
	}
)

func NewService(repo Repository, students student.Repository) *Service {
	return &Service{repo: repo, students: students}
}

// Log records a session. The student must currently be assigned to the
// logging observer.
func (svc *Service) Log(ctx context.Context, ns NewSession) (Session, error) {
	stu, err := svc.students.GetStudentByID(ctx, ns.StudentID)
	if err != nil {
		return Session{}, err
	}
	if !stu.ObserverID.Valid || stu.ObserverID.String != ns.ObserverID {
		return Session{}, core.NewValidationError(
			errors.New("student is not assigned to this observer"),
			core.FieldError{Field: "observer_id", Error: "student is not assigned to this observer"},
		)
	}

	ses := Session{
		ID:         uuid.New().String(),
		StudentID:  ns.StudentID,
		ObserverID: ns.ObserverID,
		Date:       ns.Date,
		Mood:       ns.Mood,
		Status:     ns.Status,
		CreatedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateSession(ctx, ses)
}

// LogConsultation records a principal consultation.
func (svc *Service) LogConsultation(ctx context.Context, nc NewConsultation) (Consultation, error) {
	con := Consultation{
		ID:          uuid.New().String(),
		PrincipalID: nc.PrincipalID,
		Date:        nc.Date,
		Status:      nc.Status,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateConsultation(ctx, con)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Session, error) {
	return svc.repo.FilterSessions(ctx, filter)
}
