package inmemdb

import (
	"context"

	"github.com/tkabange/uangalizi/core/inquiry"
)

type inquiryRepository struct {
	db *DB
}

var _ inquiry.Repository = (*inquiryRepository)(nil)

func NewInquiryRepository(db *DB) *inquiryRepository {
	return &inquiryRepository{db: db}
}

func (repo *inquiryRepository) CreateInquiry(ctx context.Context, inq inquiry.Inquiry) (inquiry.Inquiry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.inquiries[inq.ID] = &inq
	return inq, nil
}

func (repo *inquiryRepository) GetInquiryByID(ctx context.Context, id string) (inquiry.Inquiry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if inq, ok := repo.db.inquiries[id]; ok {
		return *inq, nil
	}
	return inquiry.Inquiry{}, inquiry.ErrNotFound
}

func (repo *inquiryRepository) FilterInquiries(ctx context.Context, filter inquiry.QueryFilter) ([]inquiry.Inquiry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	inquiries := make([]inquiry.Inquiry, 0, len(repo.db.inquiries))
	for _, inq := range repo.db.inquiries {
		if filter.Search != "" && !matchesFold(filter.Search, inq.ParentName, inq.ChildName, inq.Email) {
			continue
		}
		if filter.Status != "" && inq.Status != filter.Status {
			continue
		}
		inquiries = append(inquiries, *inq)
	}
	return inquiries, nil
}

func (repo *inquiryRepository) UpdateInquiry(ctx context.Context, inq inquiry.Inquiry) (inquiry.Inquiry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.inquiries[inq.ID]; !ok {
		return inquiry.Inquiry{}, inquiry.ErrNotFound
	}
	repo.db.inquiries[inq.ID] = &inq
	return inq, nil
}
