package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stu.GuardianIDs = copyIDs(stu.GuardianIDs)
	repo.db.students[stu.ID] = &stu
	return copyStudent(stu), nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if stu, ok := repo.db.students[id]; ok {
		return copyStudent(*stu), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, stu := range repo.db.students {
		if filter.Search != "" && !matchesFold(filter.Search, stu.Name) {
			continue
		}
		if filter.Status != "" && stu.Status != filter.Status {
			continue
		}
		if filter.SchoolID != "" && stu.SchoolID.String != filter.SchoolID {
			continue
		}
		if filter.GuardianID != "" && !stu.HasGuardian(filter.GuardianID) {
			continue
		}
		if filter.ObserverID != "" && stu.ObserverID.String != filter.ObserverID {
			continue
		}
		if filter.Unassigned != nil && stu.IsAssigned() == *filter.Unassigned {
			continue
		}
		students = append(students, copyStudent(*stu))
	}
	sortStudents(students, filter.Orderings)
	return students, nil
}

func sortStudents(students []student.Student, orderings []core.DBOrdering) {
	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range orderings {
			var c int
			switch ord.Field {
			case "name":
				c = strings.Compare(students[i].Name, students[j].Name)
			case "grade":
				c = strings.Compare(students[i].Grade, students[j].Grade)
			case "enrolled_at":
				switch {
				case students[i].EnrolledAt.Before(students[j].EnrolledAt):
					c = -1
				case students[i].EnrolledAt.After(students[j].EnrolledAt):
					c = 1
				}
			}
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[stu.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	stu.GuardianIDs = copyIDs(stu.GuardianIDs)
	repo.db.students[stu.ID] = &stu
	return copyStudent(stu), nil
}

func (repo *studentRepository) AddGuardian(ctx context.Context, studentID, guardianID string) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stu, ok := repo.db.students[studentID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if stu.HasGuardian(guardianID) {
		return student.Student{}, student.ErrGuardianLinked
	}
	stu.GuardianIDs = append(stu.GuardianIDs, guardianID)
	stu.UpdatedAt = time.Now().UTC()
	return copyStudent(*stu), nil
}

func (repo *studentRepository) RemoveGuardian(ctx context.Context, studentID, guardianID string) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stu, ok := repo.db.students[studentID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if !stu.HasGuardian(guardianID) {
		return student.Student{}, student.ErrGuardianNotLinked
	}
	ids := stu.GuardianIDs[:0]
	for _, id := range stu.GuardianIDs {
		if id != guardianID {
			ids = append(ids, id)
		}
	}
	stu.GuardianIDs = ids
	stu.UpdatedAt = time.Now().UTC()
	return copyStudent(*stu), nil
}

func (repo *studentRepository) AssignObserver(ctx context.Context, studentID, observerID string) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stu, ok := repo.db.students[studentID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if stu.IsAssigned() {
		return student.Student{}, student.ErrAlreadyAssigned
	}
	obs, ok := repo.db.observers[observerID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if repo.countAssignedLocked(observerID) >= obs.Capacity {
		return student.Student{}, student.ErrObserverFull
	}
	stu.ObserverID = null.StringFrom(observerID)
	stu.UpdatedAt = time.Now().UTC()
	return copyStudent(*stu), nil
}

func (repo *studentRepository) UnassignObserver(ctx context.Context, studentID string) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stu, ok := repo.db.students[studentID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if !stu.IsAssigned() {
		return student.Student{}, student.ErrNotAssigned
	}
	stu.ObserverID = null.String{}
	stu.UpdatedAt = time.Now().UTC()
	return copyStudent(*stu), nil
}

func (repo *studentRepository) CountAssigned(ctx context.Context, observerID string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.countAssignedLocked(observerID), nil
}

// countAssignedLocked assumes db.mutex is held.
func (repo *studentRepository) countAssignedLocked(observerID string) int {
	var count int
	for _, stu := range repo.db.students {
		if stu.ObserverID.String == observerID && stu.ObserverID.Valid {
			count++
		}
	}
	return count
}

func copyStudent(stu student.Student) student.Student {
	stu.GuardianIDs = copyIDs(stu.GuardianIDs)
	return stu
}

func copyIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
