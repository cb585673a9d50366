package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/principal"
	"github.com/tkabange/uangalizi/core/session"
	"github.com/tkabange/uangalizi/core/student"
	inmemdb "github.com/tkabange/uangalizi/storage/database/inmem"
)

func setup(t *testing.T) (*Service, session.Repository, student.Repository, principal.Repository) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	sesRepo := inmemdb.NewSessionRepository(db)
	stuRepo := inmemdb.NewStudentRepository(db)
	prlRepo := inmemdb.NewPrincipalRepository(db)
	svc := NewService(sesRepo, stuRepo, prlRepo)
	svc.nowFunc = func() time.Time { return time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC) }
	return svc, sesRepo, stuRepo, prlRepo
}

func TestService_Overview_empty(t *testing.T) {
	svc, _, _, _ := setup(t)

	ov, err := svc.Overview(context.Background(), 30)
	if err != nil {
		t.Fatalf("Overview() failed: %v", err)
	}
	if ov.TotalSessions != 0 || ov.TotalEnrollments != 0 || ov.ActiveSchools != 0 {
		t.Errorf("Overview() = %+v; want zeroed aggregates", ov)
	}
	if ov.SchoolCounts == nil || len(ov.SchoolCounts) != 0 {
		t.Errorf("Overview() SchoolCounts = %v; want empty slice", ov.SchoolCounts)
	}

	if _, err = svc.Overview(context.Background(), 0); !core.IsValidation(err) {
		t.Errorf("Overview() error = %v; want ValidationError", err)
	}
	if _, err = svc.Overview(context.Background(), -3); !core.IsValidation(err) {
		t.Errorf("Overview() error = %v; want ValidationError", err)
	}
}

func TestService_Overview(t *testing.T) {
	svc, sesRepo, stuRepo, prlRepo := setup(t)
	ctx := context.Background()
	now := svc.nowFunc()

	// two sessions inside the 30-day window, one before it
	for i, d := range []time.Time{now.AddDate(0, 0, -5), now.AddDate(0, 0, -10), now.AddDate(0, 0, -45)} {
		if _, err := sesRepo.CreateSession(ctx, session.Session{
			ID: fmt.Sprintf("ses%d", i), StudentID: "stu1", ObserverID: "obs1",
			Date: d, Status: session.StatusCompleted, CreatedAt: d,
		}); err != nil {
			t.Fatalf("CreateSession() failed: %v", err)
		}
	}

	schools := []principal.School{
		{ID: "sch1", Name: "Mwanga Primary"},
		{ID: "sch2", Name: "Upendo Academy"},
	}
	for _, sch := range schools {
		if _, err := prlRepo.CreateSchool(ctx, sch); err != nil {
			t.Fatalf("CreateSchool() failed: %v", err)
		}
	}

	newStudent := func(id, schoolID string, status student.Status, enrolledAt time.Time) student.Student {
		return student.Student{
			ID: id, Name: "Student " + id,
			SchoolID:   null.NewString(schoolID, schoolID != ""),
			Status:     status,
			EnrolledAt: enrolledAt, UpdatedAt: enrolledAt,
		}
	}
	students := []student.Student{
		newStudent("stu1", "sch1", student.StatusActive, now.AddDate(0, 0, -3)),  // counts as enrollment
		newStudent("stu2", "sch1", student.StatusActive, now.AddDate(0, 0, -60)), // old, still active in sch1
		newStudent("stu3", "sch2", student.StatusActive, now.AddDate(0, 0, -7)),
		newStudent("stu4", "sch2", student.StatusInactive, now.AddDate(0, 0, -2)), // inactive, no school count
		newStudent("stu5", "", student.StatusActive, now.AddDate(0, 0, -1)),       // no school
	}
	for _, stu := range students {
		if _, err := stuRepo.CreateStudent(ctx, stu); err != nil {
			t.Fatalf("CreateStudent() failed: %v", err)
		}
	}

	ov, err := svc.Overview(ctx, 30)
	if err != nil {
		t.Fatalf("Overview() failed: %v", err)
	}
	if ov.TotalSessions != 2 {
		t.Errorf("TotalSessions = %d; want 2", ov.TotalSessions)
	}
	if ov.TotalEnrollments != 4 {
		t.Errorf("TotalEnrollments = %d; want 4", ov.TotalEnrollments)
	}
	if ov.ActiveSchools != 2 {
		t.Errorf("ActiveSchools = %d; want 2", ov.ActiveSchools)
	}
	// sorted by student count descending
	if len(ov.SchoolCounts) != 2 {
		t.Fatalf("SchoolCounts = %v; want 2 entries", ov.SchoolCounts)
	}
	if ov.SchoolCounts[0].SchoolID != "sch1" || ov.SchoolCounts[0].Students != 2 {
		t.Errorf("SchoolCounts[0] = %+v; want sch1 with 2 students", ov.SchoolCounts[0])
	}
	if ov.SchoolCounts[0].SchoolName != "Mwanga Primary" {
		t.Errorf("SchoolCounts[0].SchoolName = %q", ov.SchoolCounts[0].SchoolName)
	}
	if ov.SchoolCounts[1].SchoolID != "sch2" || ov.SchoolCounts[1].Students != 1 {
		t.Errorf("SchoolCounts[1] = %+v; want sch2 with 1 student", ov.SchoolCounts[1])
	}
}
