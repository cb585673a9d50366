// Package assignment matches unassigned students to observers under
// capacity constraints and reverses assignments. Reassignment is always
// an explicit Unassign followed by a new Assign; there is no implicit
// transfer, so capacity counts can never be orphaned.
package assignment

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/observer"
	"github.com/tkabange/uangalizi/core/student"
)

type Engine struct {
	students  student.Repository
	observers observer.Repository

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-observer serialization
}

func NewEngine(students student.Repository, observers observer.Repository) *Engine {
	return &Engine{
		students:  students,
		observers: observers,
		locks:     make(map[string]*sync.Mutex),
	}
}

// observerLock serializes assigns racing for the same observer's last
// capacity slot.
func (e *Engine) observerLock(observerID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[observerID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[observerID] = l
	}
	return l
}

// Assign moves a student from Unassigned to Assigned(observerID).
// It fails with a core.TransitionError when the student is already
// assigned, and with a core.CapacityError when the observer's live
// assignment count has reached its capacity.
func (e *Engine) Assign(ctx context.Context, studentID, observerID string) (student.Student, error) {
	stu, err := e.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return student.Student{}, err
	}
	if stu.IsAssigned() {
		return student.Student{}, core.NewTransitionError("student", "assigned", "assigned")
	}

	obs, err := e.observers.GetObserverByID(ctx, observerID)
	if err != nil {
		return student.Student{}, err
	}

	lock := e.observerLock(observerID)
	lock.Lock()
	defer lock.Unlock()

	stu, err = e.students.AssignObserver(ctx, studentID, observerID)
	if err != nil {
		switch errors.Cause(err) {
		case student.ErrAlreadyAssigned:
			return student.Student{}, core.NewTransitionError("student", "assigned", "assigned")
		case student.ErrObserverFull:
			return student.Student{}, core.NewCapacityError(observerID, obs.Capacity)
		}
		return student.Student{}, errors.Wrap(err, "assigning observer")
	}
	return stu, nil
}

// Unassign moves a student from Assigned back to Unassigned, freeing one
// capacity slot on its observer.
func (e *Engine) Unassign(ctx context.Context, studentID string) (student.Student, error) {
	stu, err := e.students.UnassignObserver(ctx, studentID)
	if err != nil {
		if errors.Cause(err) == student.ErrNotAssigned {
			return student.Student{}, core.NewTransitionError("student", "unassigned", "unassigned")
		}
		return student.Student{}, errors.Wrap(err, "unassigning observer")
	}
	return stu, nil
}

// Utilization reports an observer's live load against its capacity.
// The count is always recomputed from the assignment set, never cached.
func (e *Engine) Utilization(ctx context.Context, observerID string) (load, capacity int, err error) {
	obs, err := e.observers.GetObserverByID(ctx, observerID)
	if err != nil {
		return 0, 0, err
	}
	load, err = e.students.CountAssigned(ctx, observerID)
	if err != nil {
		return 0, 0, err
	}
	return load, obs.Capacity, nil
}
