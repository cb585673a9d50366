package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/guardian"
)

type guardianRepository struct {
	db *DB
}

var _ guardian.Repository = (*guardianRepository)(nil)

func NewGuardianRepository(db *DB) *guardianRepository {
	return &guardianRepository{db: db}
}

func (repo *guardianRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...guardian.Guardian) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, grd := range repo.db.guardians {
		if strings.EqualFold(grd.Email, email) && !isExcludedGuardian(*grd, excluded) {
			return guardian.ErrEmailExists
		}
	}
	return nil
}

func isExcludedGuardian(grd guardian.Guardian, excluded []guardian.Guardian) bool {
	for _, ex := range excluded {
		if ex.ID == grd.ID {
			return true
		}
	}
	return false
}

func (repo *guardianRepository) CreateGuardian(ctx context.Context, grd guardian.Guardian) (guardian.Guardian, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.guardians {
		if strings.EqualFold(existing.Email, grd.Email) {
			return guardian.Guardian{}, guardian.ErrEmailExists
		}
	}
	repo.db.guardians[grd.ID] = &grd
	return grd, nil
}

func (repo *guardianRepository) GetGuardianByID(ctx context.Context, id string) (guardian.Guardian, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if grd, ok := repo.db.guardians[id]; ok {
		return *grd, nil
	}
	return guardian.Guardian{}, guardian.ErrNotFound
}

func (repo *guardianRepository) GetGuardianByEmail(ctx context.Context, email string) (guardian.Guardian, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, grd := range repo.db.guardians {
		if strings.EqualFold(grd.Email, email) {
			return *grd, nil
		}
	}
	return guardian.Guardian{}, guardian.ErrNotFound
}

func (repo *guardianRepository) FilterGuardians(ctx context.Context, filter guardian.QueryFilter) ([]guardian.Guardian, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	guardians := make([]guardian.Guardian, 0, len(repo.db.guardians))
	for _, grd := range repo.db.guardians {
		if filter.Search != "" && !matchesFold(filter.Search, grd.Name, grd.Email) {
			continue
		}
		if filter.IsActive != nil && grd.IsActive != *filter.IsActive {
			continue
		}
		guardians = append(guardians, *grd)
	}
	sortGuardians(guardians, filter.Orderings)
	return guardians, nil
}

func sortGuardians(guardians []guardian.Guardian, orderings []core.DBOrdering) {
	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	sort.SliceStable(guardians, func(i, j int) bool {
		for _, ord := range orderings {
			var c int
			switch ord.Field {
			case "name":
				c = strings.Compare(guardians[i].Name, guardians[j].Name)
			case "email":
				c = strings.Compare(guardians[i].Email, guardians[j].Email)
			case "created_at":
				switch {
				case guardians[i].CreatedAt.Before(guardians[j].CreatedAt):
					c = -1
				case guardians[i].CreatedAt.After(guardians[j].CreatedAt):
					c = 1
				}
			}
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func (repo *guardianRepository) UpdateGuardian(ctx context.Context, grd guardian.Guardian, isActive *bool) (guardian.Guardian, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.guardians[grd.ID]; !ok {
		return guardian.Guardian{}, guardian.ErrNotFound
	}
	if isActive != nil {
		grd.IsActive = *isActive
	}
	repo.db.guardians[grd.ID] = &grd
	return grd, nil
}

func matchesFold(search string, fields ...string) bool {
	search = strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}
