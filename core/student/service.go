package student

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/guardian"
)

var (
	// errors
	ErrNotFound          = errors.New("student not found")
	ErrGuardianLinked    = errors.New("guardian is already linked to this student")
	ErrGuardianNotLinked = errors.New("guardian is not linked to this student")
	ErrAlreadyAssigned   = errors.New("student is already assigned to an observer")
	ErrNotAssigned       = errors.New("student is not assigned to an observer")
	ErrObserverFull      = errors.New("observer is at full capacity")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, stu Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Student.Name.
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, stu Student) (Student, error)

		// Guardian links are mutated atomically with respect to the student.
		AddGuardian(ctx context.Context, studentID, guardianID string) (Student, error)
		RemoveGuardian(ctx context.Context, studentID, guardianID string) (Student, error)

		// AssignObserver fails with ErrAlreadyAssigned if the student is assigned,
		// and with ErrObserverFull if the observer's live assignment count has
		// reached its capacity. The check and the write happen under the same lock.
		AssignObserver(ctx context.Context, studentID, observerID string) (Student, error)
		// UnassignObserver fails with ErrNotAssigned if the student is unassigned.
		UnassignObserver(ctx context.Context, studentID string) (Student, error)
		// CountAssigned returns the live number of students assigned to an observer.
		CountAssigned(ctx context.Context, observerID string) (int, error)
	}

	Service struct {
		repo      Repository
		guardians guardian.Repository
	}
)

func NewService(repo Repository, guardians guardian.Repository) *Service {
	return &Service{repo: repo, guardians: guardians}
}

// Enroll creates a student record, optionally pre-linked to existing guardians.
func (svc *Service) Enroll(ctx context.Context, ns NewStudent) (Student, error) {
	for _, gid := range ns.GuardianIDs {
		if _, err := svc.guardians.GetGuardianByID(ctx, gid); err != nil {
			if err == guardian.ErrNotFound {
				return Student{}, core.NewValidationError(err, core.FieldError{Field: "guardian_ids", Error: err.Error()})
			}
			return Student{}, err
		}
	}

	now := time.Now().UTC()
	stu := Student{
		ID:          uuid.New().String(),
		Name:        ns.Name,
		DateOfBirth: ns.DateOfBirth,
		Grade:       ns.Grade,
		SchoolID:    null.NewString(ns.SchoolID, ns.SchoolID != ""),
		Status:      StatusActive,
		GuardianIDs: ns.GuardianIDs,
		EnrolledAt:  now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateStudent(ctx, stu)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter)
}

// Unassigned lists active students with no observer.
func (svc *Service) Unassigned(ctx context.Context) ([]Student, error) {
	unassigned := true
	return svc.repo.FilterStudents(ctx, QueryFilter{Status: StatusActive, Unassigned: &unassigned})
}

// ChildrenOf lists the students linked to a guardian.
func (svc *Service) ChildrenOf(ctx context.Context, guardianID string) ([]Student, error) {
	if _, err := svc.guardians.GetGuardianByID(ctx, guardianID); err != nil {
		return nil, err
	}
	return svc.repo.FilterStudents(ctx, QueryFilter{GuardianID: guardianID})
}

// AddGuardian links a guardian to a student. The student becomes visible
// under the guardian's children list.
func (svc *Service) AddGuardian(ctx context.Context, studentID, guardianID string) (Student, error) {
	if _, err := svc.guardians.GetGuardianByID(ctx, guardianID); err != nil {
		return Student{}, err
	}
	return svc.repo.AddGuardian(ctx, studentID, guardianID)
}

// RemoveGuardian unlinks a guardian from a student. Removing the last
// guardian is permitted; any confirmation prompt is the caller's concern.
func (svc *Service) RemoveGuardian(ctx context.Context, studentID, guardianID string) (Student, error) {
	return svc.repo.RemoveGuardian(ctx, studentID, guardianID)
}

// Deactivate soft-deactivates a student; records are never hard-deleted.
func (svc *Service) Deactivate(ctx context.Context, id string) (Student, error) {
	stu, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	stu.Status = StatusInactive
	stu.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, stu)
}
