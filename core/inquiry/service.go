package inquiry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tkabange/uangalizi/core"
)

var (
	// errors
	ErrNotFound = errors.New("inquiry not found")
)

type (
	Repository interface {
		CreateInquiry(ctx context.Context, inq Inquiry) (Inquiry, error)
		GetInquiryByID(ctx context.Context, id string) (Inquiry, error)
		// FilterInquiries applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on ParentName,
		// ChildName or Email.
		FilterInquiries(ctx context.Context, filter QueryFilter) ([]Inquiry, error)
		UpdateInquiry(ctx context.Context, inq Inquiry) (Inquiry, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Submit records an external contact-form submission; inquiries always
// start in the "new" status.
func (svc *Service) Submit(ctx context.Context, ni NewInquiry) (Inquiry, error) {
	now := time.Now().UTC()
	inq := Inquiry{
		ID:         uuid.New().String(),
		ParentName: ni.ParentName,
		Email:      ni.Email,
		Phone:      ni.Phone,
		ChildName:  ni.ChildName,
		ChildAge:   ni.ChildAge,
		SchoolName: ni.SchoolName,
		Message:    ni.Message,
		Status:     StatusNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateInquiry(ctx, inq)
}

// UpdateStatus moves an inquiry through the status machine and stores the
// supplied notes verbatim. A repeat of the current status with no new
// notes is rejected so duplicate submissions stay detectable.
func (svc *Service) UpdateStatus(ctx context.Context, id string, status Status, notes string) (Inquiry, error) {
	if !status.Valid() {
		return Inquiry{}, core.NewValidationError(
			errors.New("invalid status"),
			core.FieldError{Field: "status", Error: "must be one of: new, contacted, enrolled, closed"},
		)
	}

	inq, err := svc.repo.GetInquiryByID(ctx, id)
	if err != nil {
		return Inquiry{}, err
	}

	if status != inq.Status && !CanTransition(inq.Status, status) {
		return Inquiry{}, core.NewTransitionError("inquiry", string(inq.Status), string(status))
	}
	if status == inq.Status && notes == "" {
		return Inquiry{}, core.NewTransitionError("inquiry", string(inq.Status), string(status))
	}

	inq.Status = status
	if notes != "" {
		inq.Notes = notes
	}
	inq.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateInquiry(ctx, inq)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Inquiry, error) {
	return svc.repo.GetInquiryByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Inquiry, error) {
	return svc.repo.FilterInquiries(ctx, filter)
}
