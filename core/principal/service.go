package principal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

var (
	// errors
	ErrNotFound       = errors.New("principal not found")
	ErrSchoolNotFound = errors.New("school not found")
)

type (
	Repository interface {
		CreatePrincipal(ctx context.Context, prl Principal) (Principal, error)
		GetPrincipalByID(ctx context.Context, id string) (Principal, error)
		QueryAllPrincipals(ctx context.Context) ([]Principal, error)

		CreateSchool(ctx context.Context, sch School) (School, error)
		UpdateSchool(ctx context.Context, sch School) (School, error)
		GetSchoolByID(ctx context.Context, id string) (School, error)
		QueryAllSchools(ctx context.Context) ([]School, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a principal, creating its school on the fly when only a
// school name was supplied.
func (svc *Service) Create(ctx context.Context, np NewPrincipal) (Principal, error) {
	now := time.Now().UTC()

	schoolID := np.SchoolID
	if schoolID == "" {
		sch, err := svc.repo.CreateSchool(ctx, School{
			ID:        uuid.New().String(),
			Name:      np.SchoolName,
			CreatedAt: now,
		})
		if err != nil {
			return Principal{}, err
		}
		schoolID = sch.ID
	} else if _, err := svc.repo.GetSchoolByID(ctx, schoolID); err != nil {
		return Principal{}, err
	}

	prl := Principal{
		ID:               uuid.New().String(),
		Name:             np.Name,
		Email:            np.Email,
		SchoolID:         schoolID,
		ConsultationRate: np.ConsultationRate,
		PerStudentRate:   np.PerStudentRate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	prl, err := svc.repo.CreatePrincipal(ctx, prl)
	if err != nil {
		return Principal{}, err
	}

	// back-link the school to its supervisor
	if sch, err := svc.repo.GetSchoolByID(ctx, schoolID); err == nil && !sch.PrincipalID.Valid {
		sch.PrincipalID = null.StringFrom(prl.ID)
		if _, err = svc.repo.UpdateSchool(ctx, sch); err != nil {
			return Principal{}, err
		}
	}
	return prl, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Principal, error) {
	return svc.repo.GetPrincipalByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Principal, error) {
	return svc.repo.QueryAllPrincipals(ctx)
}

func (svc *Service) Schools(ctx context.Context) ([]School, error) {
	return svc.repo.QueryAllSchools(ctx)
}
