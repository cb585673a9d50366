package principal

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/tkabange/uangalizi/core"
)

type Principal struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	SchoolID         string          `json:"school_id"`
	ConsultationRate decimal.Decimal `json:"consultation_rate"` // currency per completed consultation
	PerStudentRate   decimal.Decimal `json:"per_student_rate"`  // currency per active student per period
	CreatedAt        time.Time       `json:"created_at"`        // UTC
	UpdatedAt        time.Time       `json:"updated_at"`        // UTC
}

type School struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	PrincipalID null.String `json:"principal_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
}

// NewPrincipal contains information needed to create a Principal and,
// when SchoolID is empty, the school it supervises.
type NewPrincipal struct {
	Name             string          `json:"name" validate:"required"`
	Email            string          `json:"email" validate:"required,email"`
	SchoolID         string          `json:"school_id"`
	SchoolName       string          `json:"school_name" validate:"required_without=SchoolID"`
	ConsultationRate decimal.Decimal `json:"consultation_rate"`
	PerStudentRate   decimal.Decimal `json:"per_student_rate"`
}

func (np *NewPrincipal) Validate() error {
	np.Name = core.CleanString(np.Name)
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.SchoolName = core.CleanString(np.SchoolName)

	if err := core.Validate.Struct(np); err != nil {
		return err
	}
	if np.ConsultationRate.IsNegative() || np.PerStudentRate.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "rates", Error: "must not be negative"})
	}
	return nil
}
