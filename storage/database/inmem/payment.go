package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/payment"
)

type paymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(_ context.Context, pmt payment.Payment) (payment.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if pmt.ID == "" {
		pmt.ID = uuid.New().String()
	}
	repo.db.payments[pmt.ID] = &pmt
	return pmt, nil
}

func (repo *paymentRepository) GetPaymentByID(_ context.Context, id string) (payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if pmt, ok := repo.db.payments[id]; ok {
		return *pmt, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) QueryPayments(_ context.Context, filter *payment.QueryFilter, ordering []core.DBOrdering) ([]payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	payments := make([]payment.Payment, 0, len(repo.db.payments))
	for _, pmt := range repo.db.payments {
		if filter != nil && !filter.IsEmpty() {
			if filter.StudentID != "" && pmt.StudentID != filter.StudentID {
				continue
			}
			if filter.Paid != nil && pmt.Paid != *filter.Paid {
				continue
			}
			if !filter.DueFrom.IsZero() && (pmt.DueDate == nil || pmt.DueDate.Before(filter.DueFrom)) {
				continue
			}
			if !filter.DueTo.IsZero() && (pmt.DueDate == nil || pmt.DueDate.After(filter.DueTo)) {
				continue
			}
		}
		payments = append(payments, *pmt)
	}

	desc := true // recorded_at DESC default
	for _, ord := range ordering {
		if ord.Field == "recorded_at" {
			desc = !ord.Ascending
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		if desc {
			return payments[i].RecordedAt.After(payments[j].RecordedAt)
		}
		return payments[i].RecordedAt.Before(payments[j].RecordedAt)
	})
	return payments, nil
}

func (repo *paymentRepository) UpdatePayment(_ context.Context, pmt payment.Payment) (payment.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.payments[pmt.ID]; !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	repo.db.payments[pmt.ID] = &pmt
	return pmt, nil
}

func (repo *paymentRepository) DeletePaymentsByID(_ context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.payments[id]; ok {
			delete(repo.db.payments, id)
			n++
		}
	}
	return n, nil
}
