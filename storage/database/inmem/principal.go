package inmemdb

import (
	"context"

	"github.com/tkabange/uangalizi/core/principal"
)

type principalRepository struct {
	db *DB
}

var _ principal.Repository = (*principalRepository)(nil)

func NewPrincipalRepository(db *DB) *principalRepository {
	return &principalRepository{db: db}
}

func (repo *principalRepository) CreatePrincipal(ctx context.Context, prl principal.Principal) (principal.Principal, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.principals[prl.ID] = &prl
	return prl, nil
}

func (repo *principalRepository) GetPrincipalByID(ctx context.Context, id string) (principal.Principal, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if prl, ok := repo.db.principals[id]; ok {
		return *prl, nil
	}
	return principal.Principal{}, principal.ErrNotFound
}

func (repo *principalRepository) QueryAllPrincipals(ctx context.Context) ([]principal.Principal, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	principals := make([]principal.Principal, 0, len(repo.db.principals))
	for _, prl := range repo.db.principals {
		principals = append(principals, *prl)
	}
	return principals, nil
}

func (repo *principalRepository) CreateSchool(ctx context.Context, sch principal.School) (principal.School, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *principalRepository) UpdateSchool(ctx context.Context, sch principal.School) (principal.School, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.schools[sch.ID]; !ok {
		return principal.School{}, principal.ErrSchoolNotFound
	}
	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *principalRepository) GetSchoolByID(ctx context.Context, id string) (principal.School, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sch, ok := repo.db.schools[id]; ok {
		return *sch, nil
	}
	return principal.School{}, principal.ErrSchoolNotFound
}

func (repo *principalRepository) QueryAllSchools(ctx context.Context) ([]principal.School, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	schools := make([]principal.School, 0, len(repo.db.schools))
	for _, sch := range repo.db.schools {
		schools = append(schools, *sch)
	}
	return schools, nil
}
