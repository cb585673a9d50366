package assignment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/observer"
	"github.com/tkabange/uangalizi/core/student"
	inmemdb "github.com/tkabange/uangalizi/storage/database/inmem"
)

func setup(t *testing.T) (*Engine, student.Repository, observer.Repository) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	stuRepo := inmemdb.NewStudentRepository(db)
	obsRepo := inmemdb.NewObserverRepository(db)
	return NewEngine(stuRepo, obsRepo), stuRepo, obsRepo
}

func createStudent(t *testing.T, repo student.Repository, id, name string) student.Student {
	now := time.Now().UTC()
	stu, err := repo.CreateStudent(context.Background(), student.Student{
		ID:          id,
		Name:        name,
		DateOfBirth: now.AddDate(-8, 0, 0),
		Status:      student.StatusActive,
		EnrolledAt:  now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return stu
}

func createObserver(t *testing.T, repo observer.Repository, id, name string, capacity int) observer.Observer {
	now := time.Now().UTC()
	obs, err := repo.CreateObserver(context.Background(), observer.Observer{
		ID:          id,
		Name:        name,
		Email:       name + "@test.cd",
		SessionRate: decimal.NewFromInt(20),
		Capacity:    capacity,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("createObserver() failed: %v", err)
	}
	return obs
}

func TestEngine_Assign(t *testing.T) {
	engine, stuRepo, obsRepo := setup(t)
	ctx := context.Background()

	stu1 := createStudent(t, stuRepo, "stu1", "Amani")
	stu2 := createStudent(t, stuRepo, "stu2", "Busara")
	stu3 := createStudent(t, stuRepo, "stu3", "Chiku")
	obs := createObserver(t, obsRepo, "obs1", "imani", 2)

	got, err := engine.Assign(ctx, stu1.ID, obs.ID)
	if err != nil {
		t.Fatalf("Assign() failed: %v", err)
	}
	if !got.IsAssigned() || got.ObserverID.String != obs.ID {
		t.Errorf("Assign() ObserverID = %v; want %v", got.ObserverID, obs.ID)
	}

	// reassigning an assigned student fails, even to the same observer
	if _, err = engine.Assign(ctx, stu1.ID, obs.ID); !core.IsTransition(err) {
		t.Errorf("Assign() error = %v; want TransitionError", err)
	}

	if _, err = engine.Assign(ctx, stu2.ID, obs.ID); err != nil {
		t.Fatalf("Assign() failed: %v", err)
	}

	// capacity reached
	if _, err = engine.Assign(ctx, stu3.ID, obs.ID); !core.IsCapacity(err) {
		t.Errorf("Assign() error = %v; want CapacityError", err)
	}

	// freeing a slot lets the next assign through
	if _, err = engine.Unassign(ctx, stu2.ID); err != nil {
		t.Fatalf("Unassign() failed: %v", err)
	}
	if _, err = engine.Assign(ctx, stu3.ID, obs.ID); err != nil {
		t.Errorf("Assign() after Unassign() failed: %v", err)
	}

	// unknown IDs
	if _, err = engine.Assign(ctx, "lol", obs.ID); err != student.ErrNotFound {
		t.Errorf("Assign() error = %v; want %v", err, student.ErrNotFound)
	}
	if _, err = engine.Assign(ctx, createStudent(t, stuRepo, "stu4", "Dalila").ID, "lol"); err != observer.ErrNotFound {
		t.Errorf("Assign() error = %v; want %v", err, observer.ErrNotFound)
	}
}

func TestEngine_Unassign(t *testing.T) {
	engine, stuRepo, obsRepo := setup(t)
	ctx := context.Background()

	stu := createStudent(t, stuRepo, "stu1", "Amani")
	obs := createObserver(t, obsRepo, "obs1", "imani", 1)

	// unassigning an unassigned student fails
	if _, err := engine.Unassign(ctx, stu.ID); !core.IsTransition(err) {
		t.Errorf("Unassign() error = %v; want TransitionError", err)
	}

	if _, err := engine.Assign(ctx, stu.ID, obs.ID); err != nil {
		t.Fatalf("Assign() failed: %v", err)
	}
	got, err := engine.Unassign(ctx, stu.ID)
	if err != nil {
		t.Fatalf("Unassign() failed: %v", err)
	}
	if got.IsAssigned() {
		t.Errorf("Unassign() ObserverID = %v; want unset", got.ObserverID)
	}
}

func TestEngine_Utilization(t *testing.T) {
	engine, stuRepo, obsRepo := setup(t)
	ctx := context.Background()

	obs := createObserver(t, obsRepo, "obs1", "imani", 3)
	if _, err := engine.Assign(ctx, createStudent(t, stuRepo, "stu1", "Amani").ID, obs.ID); err != nil {
		t.Fatalf("Assign() failed: %v", err)
	}
	if _, err := engine.Assign(ctx, createStudent(t, stuRepo, "stu2", "Busara").ID, obs.ID); err != nil {
		t.Fatalf("Assign() failed: %v", err)
	}

	load, capacity, err := engine.Utilization(ctx, obs.ID)
	if err != nil {
		t.Fatalf("Utilization() failed: %v", err)
	}
	if load != 2 || capacity != 3 {
		t.Errorf("Utilization() = (%d, %d); want (2, 3)", load, capacity)
	}

	if _, _, err = engine.Utilization(ctx, "lol"); err != observer.ErrNotFound {
		t.Errorf("Utilization() error = %v; want %v", err, observer.ErrNotFound)
	}
}

// concurrent assigns racing for the last slots must never overshoot capacity
func TestEngine_Assign_concurrent(t *testing.T) {
	engine, stuRepo, obsRepo := setup(t)
	ctx := context.Background()

	const capacity = 3
	const contenders = 20
	obs := createObserver(t, obsRepo, "obs1", "imani", capacity)

	students := make([]student.Student, contenders)
	for i := range students {
		students[i] = createStudent(t, stuRepo, fmt.Sprintf("stu%d", i), fmt.Sprintf("Student %d", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := range students {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Assign(ctx, students[i].ID, obs.ID)
		}(i)
	}
	wg.Wait()

	var okCount int
	for _, err := range errs {
		switch {
		case err == nil:
			okCount++
		case core.IsCapacity(err): // pass
		default:
			t.Errorf("Assign() unexpected error: %v", err)
		}
	}
	if okCount != capacity {
		t.Errorf("successful assigns = %d; want %d", okCount, capacity)
	}

	load, _, err := engine.Utilization(ctx, obs.ID)
	if err != nil {
		t.Fatalf("Utilization() failed: %v", err)
	}
	if load != capacity {
		t.Errorf("load = %d; want %d", load, capacity)
	}
}

func TestEngine_randomSequence(t *testing.T) {
	engine, stuRepo, obsRepo := setup(t)
	ctx := context.Background()

	const (
		studentCount  = 12
		observerCount = 3
		ops           = 500
	)
	rnd := rand.New(rand.NewSource(42))

	students := make([]student.Student, studentCount)
	for i := range students {
		students[i] = createStudent(t, stuRepo, fmt.Sprintf("stu%d", i), fmt.Sprintf("Student %d", i))
	}
	observers := make([]observer.Observer, observerCount)
	for i := range observers {
		observers[i] = createObserver(t, obsRepo, fmt.Sprintf("obs%d", i), fmt.Sprintf("observer%d", i), 1+rnd.Intn(3))
	}

	// model: studentID -> observerID for students we believe are assigned
	assigned := make(map[string]string)
	load := func(obsID string) int {
		var n int
		for _, id := range assigned {
			if id == obsID {
				n++
			}
		}
		return n
	}

	for i := 0; i < ops; i++ {
		stu := students[rnd.Intn(studentCount)]

		if rnd.Intn(2) == 0 {
			obs := observers[rnd.Intn(observerCount)]
			_, err := engine.Assign(ctx, stu.ID, obs.ID)
			switch {
			case assigned[stu.ID] != "":
				if !core.IsTransition(err) {
					t.Fatalf("op %d: Assign() on assigned student error = %v; want TransitionError", i, err)
				}
			case load(obs.ID) >= obs.Capacity:
				if !core.IsCapacity(err) {
					t.Fatalf("op %d: Assign() on full observer error = %v; want CapacityError", i, err)
				}
			default:
				if err != nil {
					t.Fatalf("op %d: Assign() failed: %v", i, err)
				}
				assigned[stu.ID] = obs.ID
			}
			continue
		}

		_, err := engine.Unassign(ctx, stu.ID)
		if assigned[stu.ID] == "" {
			if !core.IsTransition(err) {
				t.Fatalf("op %d: Unassign() on unassigned student error = %v; want TransitionError", i, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("op %d: Unassign() failed: %v", i, err)
		}
		delete(assigned, stu.ID)
	}

	// live state must agree with the model and never exceed capacity
	for _, obs := range observers {
		gotLoad, capacity, err := engine.Utilization(ctx, obs.ID)
		if err != nil {
			t.Fatalf("Utilization() failed: %v", err)
		}
		if gotLoad > capacity {
			t.Errorf("observer %s load = %d over capacity %d", obs.ID, gotLoad, capacity)
		}
		if gotLoad != load(obs.ID) {
			t.Errorf("observer %s load = %d; model says %d", obs.ID, gotLoad, load(obs.ID))
		}
	}
}
