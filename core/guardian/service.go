package guardian

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/tkabange/uangalizi/core"
)

var (
	// errors
	ErrNotFound    = errors.New("guardian not found")
	ErrEmailExists = errors.New("a guardian with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excluded ...Guardian) error
		CreateGuardian(ctx context.Context, grd Guardian) (Guardian, error)
		GetGuardianByID(ctx context.Context, id string) (Guardian, error)
		GetGuardianByEmail(ctx context.Context, email string) (Guardian, error)
		// FilterGuardians applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Guardian.Name or Guardian.Email.
		FilterGuardians(ctx context.Context, filter QueryFilter) ([]Guardian, error)
		UpdateGuardian(ctx context.Context, grd Guardian, isActive *bool) (Guardian, error)
	}

	// Checker is the subset of Service needed by model validation.
	Checker interface {
		CheckEmailUniqueness(email string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) CheckEmailUniqueness(email string) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ng NewGuardian) (Guardian, error) {
	now := time.Now().UTC()
	grd := Guardian{
		ID:        uuid.New().String(),
		Name:      ng.Name,
		Email:     ng.Email,
		Phone:     ng.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := grd.SetPassword(ng.Password); err != nil {
		return Guardian{}, err
	}

	grd, err := svc.repo.CreateGuardian(ctx, grd)
	if err != nil {
		return Guardian{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: grd.Name, Address: grd.Email}},
		Subject: "Welcome to " + svc.conf.AppName,
		Body: fmt.Sprintf(
			"Hi %s,\r\n\r\nYour guardian account has been created. "+
				"Sign in at %s to follow your children's sessions and reports.\r\n",
			grd.Name, svc.conf.FrontendBaseURL,
		),
	})
	return grd, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Guardian, error) {
	return svc.repo.GetGuardianByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Guardian, error) {
	return svc.repo.GetGuardianByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Guardian, error) {
	return svc.repo.FilterGuardians(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, ug UpdateGuardian) (Guardian, error) {
	grd, err := svc.repo.GetGuardianByID(ctx, id)
	if err != nil {
		return Guardian{}, err
	}
	if ug.Name != "" {
		grd.Name = ug.Name
	}
	if ug.Phone != "" {
		grd.Phone = ug.Phone
	}
	grd.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGuardian(ctx, grd, ug.IsActive)
}

// Deactivate soft-deactivates a guardian account; records are never hard-deleted.
func (svc *Service) Deactivate(ctx context.Context, id string) (Guardian, error) {
	grd, err := svc.repo.GetGuardianByID(ctx, id)
	if err != nil {
		return Guardian{}, err
	}
	inactive := false
	grd.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGuardian(ctx, grd, &inactive)
}
