package observer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tkabange/uangalizi/core"
)

type Observer struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Specialization string          `json:"specialization,omitempty"`
	SessionRate    decimal.Decimal `json:"session_rate"` // currency per completed session
	Capacity       int             `json:"capacity"`     // max concurrent students
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"` // UTC
	UpdatedAt      time.Time       `json:"updated_at"` // UTC

	// AssignedStudentIDs is always loaded from the live assignment set,
	// never stored as a separate counter.
	AssignedStudentIDs []string `json:"assigned_student_ids"`
}

func (o *Observer) Load() int { return len(o.AssignedStudentIDs) }

func (o *Observer) HasCapacity() bool { return o.Load() < o.Capacity }

// NewObserver contains information needed to create a new Observer.
type NewObserver struct {
	Name           string          `json:"name" validate:"required"`
	Email          string          `json:"email" validate:"required,email"`
	Specialization string          `json:"specialization"`
	SessionRate    decimal.Decimal `json:"session_rate" validate:"required"`
	Capacity       int             `json:"capacity" validate:"required,min=1"`
}

func (no *NewObserver) Validate() error {
	no.Name = core.CleanString(no.Name)
	no.Email = core.CleanString(no.Email, true /* lower */)
	no.Specialization = core.CleanString(no.Specialization)

	if err := core.Validate.Struct(no); err != nil {
		return err
	}
	if no.SessionRate.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "session_rate", Error: "must not be negative"})
	}
	return nil
}

type QueryFilter struct {
	Search       string `query:"search"`
	IsActive     *bool  `query:"is_active"`
	WithCapacity *bool  `query:"with_capacity"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.IsActive == nil && qf.WithCapacity == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
