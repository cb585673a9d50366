package session

import (
	"time"

	"github.com/tkabange/uangalizi/core"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusMissed    Status = "missed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusMissed:
		return true
	}
	return false
}

// Session is one observation meeting between an Observer and a Student.
// It is the atomic unit counted by both assignment analytics and earnings.
type Session struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	ObserverID string    `json:"observer_id"`
	Date       time.Time `json:"date"`
	Mood       string    `json:"mood,omitempty"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// Consultation is one school consultation held by a Principal.
type Consultation struct {
	ID          string    `json:"id"`
	PrincipalID string    `json:"principal_id"`
	Date        time.Time `json:"date"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// NewSession contains information needed to log a Session.
type NewSession struct {
	StudentID  string    `json:"student_id" validate:"required"`
	ObserverID string    `json:"observer_id" validate:"required"`
	Date       time.Time `json:"date" validate:"required"`
	Mood       string    `json:"mood"`
	Status     Status    `json:"status" validate:"required,oneof=scheduled completed missed"`
}

func (ns *NewSession) Validate() error {
	ns.Mood = core.CleanString(ns.Mood)
	return core.Validate.Struct(ns)
}

// NewConsultation contains information needed to log a Consultation.
type NewConsultation struct {
	PrincipalID string    `json:"principal_id" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Status      Status    `json:"status" validate:"required,oneof=scheduled completed missed"`
}

func (nc *NewConsultation) Validate() error {
	return core.Validate.Struct(nc)
}

type QueryFilter struct {
	StudentID  string    `query:"student_id"`
	ObserverID string    `query:"observer_id"`
	Status     Status    `query:"status"`
	From       time.Time `query:"from"` // inclusive
	To         time.Time `query:"to"`   // exclusive
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.ObserverID == "" && qf.Status == "" &&
		qf.From.IsZero() && qf.To.IsZero()
}
