package inmemdb

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tkabange/uangalizi/core/billing"
)

type paymentRepository struct {
	db *DB
}

var _ billing.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, pay billing.Payment) (billing.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.payments[pay.ID] = &pay
	return pay, nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id string) (billing.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if pay, ok := repo.db.payments[id]; ok {
		return *pay, nil
	}
	return billing.Payment{}, billing.ErrNotFound
}

func (repo *paymentRepository) FilterPayments(ctx context.Context, filter billing.QueryFilter) ([]billing.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	payments := make([]billing.Payment, 0, len(repo.db.payments))
	for _, pay := range repo.db.payments {
		if filter.OwnerID != "" && pay.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && pay.Status != filter.Status {
			continue
		}
		if filter.FromMonth != "" && pay.Month < filter.FromMonth {
			continue
		}
		if filter.ToMonth != "" && pay.Month > filter.ToMonth {
			continue
		}
		payments = append(payments, *pay)
	}
	return payments, nil
}

func (repo *paymentRepository) MarkPaid(ctx context.Context, id string, at time.Time) (billing.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	pay, ok := repo.db.payments[id]
	if !ok {
		return billing.Payment{}, billing.ErrNotFound
	}
	pay.Status = billing.StatusPaid
	pay.PaidAt = null.TimeFrom(at)
	return *pay, nil
}
