package inmemdb

import (
	"context"
	"sort"

	"github.com/tkabange/uangalizi/core/observer"
)

type observerRepository struct {
	db *DB
}

var _ observer.Repository = (*observerRepository)(nil)

func NewObserverRepository(db *DB) *observerRepository {
	return &observerRepository{db: db}
}

func (repo *observerRepository) CreateObserver(ctx context.Context, obs observer.Observer) (observer.Observer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.observers {
		if existing.Email == obs.Email {
			return observer.Observer{}, observer.ErrEmailExists
		}
	}
	repo.db.observers[obs.ID] = &obs
	return repo.loadLocked(obs), nil
}

func (repo *observerRepository) GetObserverByID(ctx context.Context, id string) (observer.Observer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if obs, ok := repo.db.observers[id]; ok {
		return repo.loadLocked(*obs), nil
	}
	return observer.Observer{}, observer.ErrNotFound
}

func (repo *observerRepository) FilterObservers(ctx context.Context, filter observer.QueryFilter) ([]observer.Observer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	observers := make([]observer.Observer, 0, len(repo.db.observers))
	for _, obs := range repo.db.observers {
		if filter.Search != "" && !matchesFold(filter.Search, obs.Name, obs.Email, obs.Specialization) {
			continue
		}
		if filter.IsActive != nil && obs.IsActive != *filter.IsActive {
			continue
		}
		loaded := repo.loadLocked(*obs)
		if filter.WithCapacity != nil && loaded.HasCapacity() != *filter.WithCapacity {
			continue
		}
		observers = append(observers, loaded)
	}
	return observers, nil
}

func (repo *observerRepository) UpdateObserver(ctx context.Context, obs observer.Observer) (observer.Observer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.observers[obs.ID]; !ok {
		return observer.Observer{}, observer.ErrNotFound
	}
	repo.db.observers[obs.ID] = &obs
	return repo.loadLocked(obs), nil
}

// loadLocked derives the live assigned student set; assumes db.mutex is held.
func (repo *observerRepository) loadLocked(obs observer.Observer) observer.Observer {
	var ids []string
	for _, stu := range repo.db.students {
		if stu.ObserverID.Valid && stu.ObserverID.String == obs.ID {
			ids = append(ids, stu.ID)
		}
	}
	sort.Strings(ids)
	obs.AssignedStudentIDs = ids
	return obs
}
