package staff

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tkabange/uangalizi/core"
)

var (
	// errors
	ErrNotFound    = errors.New("staff account not found")
	ErrEmailExists = errors.New("a staff account with this email already exists")
)

type (
	Repository interface {
		CreateStaff(ctx context.Context, stf Staff) (Staff, error)
		GetStaffByID(ctx context.Context, id string) (Staff, error)
		GetStaffByEmail(ctx context.Context, email string) (Staff, error)
		UpdateStaff(ctx context.Context, stf Staff) (Staff, error)
		// UpdateOrCreateStaff upserts on email; used by the admin CLI.
		UpdateOrCreateStaff(ctx context.Context, stf Staff) (Staff, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStaff) (Staff, error) {
	if _, err := svc.repo.GetStaffByEmail(ctx, ns.Email); err == nil {
		return Staff{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if err != ErrNotFound {
		return Staff{}, err
	}

	now := time.Now().UTC()
	stf := Staff{
		ID:        uuid.New().String(),
		Name:      ns.Name,
		Email:     ns.Email,
		Role:      ns.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := stf.SetPassword(ns.Password); err != nil {
		return Staff{}, err
	}
	return svc.repo.CreateStaff(ctx, stf)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Staff, error) {
	return svc.repo.GetStaffByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Staff, error) {
	return svc.repo.GetStaffByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) SetLastLogin(ctx context.Context, stf Staff) (Staff, error) {
	stf.LastLogin = time.Now().UTC()
	return svc.repo.UpdateStaff(ctx, stf)
}
