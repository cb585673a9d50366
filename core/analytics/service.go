// Package analytics rolls up read-only counts over a time window for the
// admin dashboard. It never mutates state and tolerates empty windows by
// returning zeroed aggregates.
package analytics

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/principal"
	"github.com/tkabange/uangalizi/core/session"
	"github.com/tkabange/uangalizi/core/student"
)

type SchoolCount struct {
	SchoolID   string `json:"school_id"`
	SchoolName string `json:"school_name"`
	Students   int    `json:"students"`
}

type Overview struct {
	WindowDays       int           `json:"window_days"`
	TotalSessions    int           `json:"total_sessions"`
	TotalEnrollments int           `json:"total_enrollments"`
	ActiveSchools    int           `json:"active_schools"`
	SchoolCounts     []SchoolCount `json:"school_counts"` // sorted by count descending
}

type Service struct {
	sessions session.Repository
	students student.Repository
	schools  principal.Repository
	nowFunc  func() time.Time
}

func NewService(sessions session.Repository, students student.Repository, schools principal.Repository) *Service {
	return &Service{
		sessions: sessions,
		students: students,
		schools:  schools,
		nowFunc:  time.Now,
	}
}

// Overview aggregates sessions, enrollments and school membership over
// [now-windowDays, now).
func (svc *Service) Overview(ctx context.Context, windowDays int) (Overview, error) {
	if windowDays <= 0 {
		return Overview{}, core.NewValidationError(
			errors.New("invalid window"),
			core.FieldError{Field: "days", Error: "must be a positive number of days"},
		)
	}

	now := svc.nowFunc().UTC()
	from := now.AddDate(0, 0, -windowDays)
	ov := Overview{WindowDays: windowDays, SchoolCounts: []SchoolCount{}}

	sessions, err := svc.sessions.FilterSessions(ctx, session.QueryFilter{From: from, To: now})
	if err != nil {
		return Overview{}, err
	}
	ov.TotalSessions = len(sessions)

	students, err := svc.students.FilterStudents(ctx, student.QueryFilter{})
	if err != nil {
		return Overview{}, err
	}
	bySchool := make(map[string]int)
	for _, stu := range students {
		if !stu.EnrolledAt.Before(from) && stu.EnrolledAt.Before(now) {
			ov.TotalEnrollments++
		}
		if stu.Status == student.StatusActive && stu.SchoolID.Valid {
			bySchool[stu.SchoolID.String]++
		}
	}

	schools, err := svc.schools.QueryAllSchools(ctx)
	if err != nil {
		return Overview{}, err
	}
	names := make(map[string]string, len(schools))
	for _, sch := range schools {
		names[sch.ID] = sch.Name
	}

	for id, n := range bySchool {
		ov.SchoolCounts = append(ov.SchoolCounts, SchoolCount{SchoolID: id, SchoolName: names[id], Students: n})
		ov.ActiveSchools++
	}
	sort.Slice(ov.SchoolCounts, func(i, j int) bool {
		if ov.SchoolCounts[i].Students != ov.SchoolCounts[j].Students {
			return ov.SchoolCounts[i].Students > ov.SchoolCounts[j].Students
		}
		return ov.SchoolCounts[i].SchoolName < ov.SchoolCounts[j].SchoolName
	})
	return ov, nil
}
