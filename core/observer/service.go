package observer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrNotFound    = errors.New("observer not found")
	ErrEmailExists = errors.New("an observer with this email already exists")
)

type (
	Repository interface {
		CreateObserver(ctx context.Context, obs Observer) (Observer, error)
		// GetObserverByID loads the observer with its live assigned student set.
		GetObserverByID(ctx context.Context, id string) (Observer, error)
		// FilterObservers applies AND operation on available QueryFilter fields.
		// QueryFilter.WithCapacity keeps only observers whose live assignment
		// count is below their capacity.
		FilterObservers(ctx context.Context, filter QueryFilter) ([]Observer, error)
		UpdateObserver(ctx context.Context, obs Observer) (Observer, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, no NewObserver) (Observer, error) {
	now := time.Now().UTC()
	obs := Observer{
		ID:             uuid.New().String(),
		Name:           no.Name,
		Email:          no.Email,
		Specialization: no.Specialization,
		SessionRate:    no.SessionRate,
		Capacity:       no.Capacity,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateObserver(ctx, obs)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Observer, error) {
	return svc.repo.GetObserverByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Observer, error) {
	return svc.repo.FilterObservers(ctx, filter)
}

// WithCapacity lists active observers that can take on more students.
func (svc *Service) WithCapacity(ctx context.Context) ([]Observer, error) {
	active, withCapacity := true, true
	return svc.repo.FilterObservers(ctx, QueryFilter{IsActive: &active, WithCapacity: &withCapacity})
}

// Deactivate soft-deactivates an observer; records are never hard-deleted.
func (svc *Service) Deactivate(ctx context.Context, id string) (Observer, error) {
	obs, err := svc.repo.GetObserverByID(ctx, id)
	if err != nil {
		return Observer{}, err
	}
	obs.IsActive = false
	obs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateObserver(ctx, obs)
}
