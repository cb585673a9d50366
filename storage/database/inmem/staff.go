package inmemdb

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tkabange/uangalizi/core/staff"
)

type staffRepository struct {
	db *DB
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *DB) *staffRepository {
	return &staffRepository{db: db}
}

func (repo *staffRepository) CreateStaff(ctx context.Context, stf staff.Staff) (staff.Staff, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.staff {
		if strings.EqualFold(existing.Email, stf.Email) {
			return staff.Staff{}, staff.ErrEmailExists
		}
	}
	repo.db.staff[stf.ID] = &stf
	return stf, nil
}

func (repo *staffRepository) GetStaffByID(ctx context.Context, id string) (staff.Staff, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if stf, ok := repo.db.staff[id]; ok {
		return *stf, nil
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) GetStaffByEmail(ctx context.Context, email string) (staff.Staff, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, stf := range repo.db.staff {
		if strings.EqualFold(stf.Email, email) {
			return *stf, nil
		}
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) UpdateStaff(ctx context.Context, stf staff.Staff) (staff.Staff, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.staff[stf.ID]; !ok {
		return staff.Staff{}, staff.ErrNotFound
	}
	repo.db.staff[stf.ID] = &stf
	return stf, nil
}

func (repo *staffRepository) UpdateOrCreateStaff(ctx context.Context, stf staff.Staff) (staff.Staff, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.staff {
		if strings.EqualFold(existing.Email, stf.Email) {
			stf.ID = existing.ID
			stf.CreatedAt = existing.CreatedAt
			stf.UpdatedAt = time.Now().UTC()
			repo.db.staff[stf.ID] = &stf
			return stf, nil
		}
	}
	if stf.ID == "" {
		stf.ID = uuid.New().String()
	}
	repo.db.staff[stf.ID] = &stf
	return stf, nil
}
