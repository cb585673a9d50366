package guardian

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tkabange/uangalizi/core"
)

type Guardian struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (g *Guardian) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	g.PasswordHash = hash
	return nil
}

func (g *Guardian) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(g.PasswordHash, []byte(pwd))
}

// NewGuardian contains information needed to create a new Guardian.
type NewGuardian struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,min=7"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (ng *NewGuardian) Validate(ctx Checker) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Email = core.CleanString(ng.Email, true /* lower */)
	ng.Phone = core.CleanString(ng.Phone)

	if err := core.Validate.Struct(ng); err != nil {
		return err
	}
	return ctx.CheckEmailUniqueness(ng.Email)
}

// UpdateGuardian defines what information may be provided to modify an existing Guardian.
type UpdateGuardian struct {
	Name     string `json:"name"`
	Phone    string `json:"phone" validate:"omitempty,min=7"`
	IsActive *bool  `json:"is_active"`
}

func (ug *UpdateGuardian) Validate() error {
	ug.Name = core.CleanString(ug.Name)
	ug.Phone = core.CleanString(ug.Phone)
	return core.Validate.Struct(ug)
}

type QueryFilter struct {
	Search   string `query:"search"`
	IsActive *bool  `query:"is_active"`

	// sort keys; repositories order by name when empty
	Orderings []core.DBOrdering `query:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
