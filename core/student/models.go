package student

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tkabange/uangalizi/core"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

type Student struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	DateOfBirth time.Time   `json:"date_of_birth"`
	Grade       string      `json:"grade,omitempty"`
	SchoolID    null.String `json:"school_id,omitempty"`
	Status      Status      `json:"status"`
	GuardianIDs []string    `json:"guardian_ids"`
	PrincipalID null.String `json:"principal_id,omitempty"`
	ObserverID  null.String `json:"observer_id,omitempty"`
	EnrolledAt  time.Time   `json:"enrolled_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"`  // UTC
}

func (s *Student) IsAssigned() bool { return s.ObserverID.Valid }

func (s *Student) HasGuardian(guardianID string) bool {
	for _, id := range s.GuardianIDs {
		if id == guardianID {
			return true
		}
	}
	return false
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	Name        string    `json:"name" validate:"required"`
	DateOfBirth time.Time `json:"date_of_birth" validate:"required"`
	Grade       string    `json:"grade"`
	SchoolID    string    `json:"school_id"`
	GuardianIDs []string  `json:"guardian_ids" validate:"omitempty,unique"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Grade = core.CleanString(ns.Grade)
	return core.Validate.Struct(ns)
}

type QueryFilter struct {
	Search     string `query:"search"`
	Status     Status `query:"status"`
	SchoolID   string `query:"school_id"`
	GuardianID string `query:"guardian_id"`
	ObserverID string `query:"observer_id"`
	Unassigned *bool  `query:"unassigned"`

	// sort keys; repositories order by name when empty
	Orderings []core.DBOrdering `query:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == "" && qf.SchoolID == "" &&
		qf.GuardianID == "" && qf.ObserverID == "" && qf.Unassigned == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
