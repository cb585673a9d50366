package staff

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tkabange/uangalizi/core"
)

// Roles
const (
	RoleAdmin     = "admin"
	RolePrincipal = "principal"
	RoleObserver  = "observer"
)

var AllRoles = []string{RoleAdmin, RolePrincipal, RoleObserver}

// Staff is a console account for administrators and school-side users.
// Guardian sign-in uses the guardian aggregate instead.
type Staff struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (s *Staff) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Staff) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

func (s *Staff) IsAdmin() bool { return s.Role == RoleAdmin }

// NewStaff contains information needed to create a new Staff account.
type NewStaff struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=admin principal observer"`
	Password string `json:"password" validate:"required,min=8"`
}

func (ns *NewStaff) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return core.Validate.Struct(ns)
}
