package payment

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/audit"
)

var (
	// errors
	ErrNotFound = errors.New("payment not found")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, pmt Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id string) (Payment, error)
		// QueryPayments applies AND operation on available QueryFilter fields.
		QueryPayments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Payment, error)
		UpdatePayment(ctx context.Context, pmt Payment) (Payment, error)
		DeletePaymentsByID(ctx context.Context, ids []string) (int, error)
	}

	// ReceiptStore persists uploaded payment receipts.
	ReceiptStore interface {
		Save(studentID, filename string, r io.Reader) (path string, err error)
		Open(path string) (io.ReadCloser, error)
		Remove(path string) error
	}

	// Receipt is an uploaded proof-of-payment file.
	Receipt struct {
		Filename string
		Content  io.Reader
	}

	Service interface {
		Record(ctx context.Context, studentID string, np NewPayment, receipt *Receipt, actorID string) (Payment, error)
		GetByID(ctx context.Context, id string) (Payment, error)
		// Ledger returns a student's payments, newest first.
		Ledger(ctx context.Context, studentID string) ([]Payment, error)
		All(ctx context.Context) ([]Payment, error)
		Summary(ctx context.Context, studentID string, planAmount int64) (Summary, error)
		MarkPaid(ctx context.Context, id, actorID string) (Payment, error)
		Delete(ctx context.Context, id, actorID string) error
	}

	service struct {
		repo     Repository
		auditSvc audit.Service
		receipts ReceiptStore
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, auditSvc audit.Service, receipts ReceiptStore) Service {
	return &service{
		repo:     repo,
		auditSvc: auditSvc,
		receipts: receipts,
	}
}

func (svc *service) Record(ctx context.Context, studentID string, np NewPayment, receipt *Receipt, actorID string) (Payment, error) {
	now := time.Now().UTC()
	pmt := Payment{
		StudentID:  studentID,
		Amount:     np.Amount,
		Method:     np.Method,
		Note:       np.Note,
		DueDate:    np.DueDate,
		Paid:       np.DueDate == nil, // a due date makes it a scheduled installment
		RecordedBy: actorID,
		RecordedAt: now,
	}

	if receipt != nil {
		path, err := svc.receipts.Save(studentID, receipt.Filename, receipt.Content)
		if err != nil {
			return Payment{}, errors.Wrap(err, "saving receipt")
		}
		pmt.ReceiptPath = path
	}

	pmt, err := svc.repo.CreatePayment(ctx, pmt)
	if err != nil {
		return Payment{}, err
	}

	desc := fmt.Sprintf("Payment of %d recorded", pmt.Amount)
	if !pmt.Paid {
		desc = fmt.Sprintf("Installment of %d scheduled", pmt.Amount)
	}
	_, err = svc.auditSvc.Record(ctx, audit.Entry{
		StudentID:   studentID,
		ChangeType:  audit.ChangePaymentAdded,
		Description: desc,
		ChangedBy:   actorID,
	})
	return pmt, err
}

func (svc *service) GetByID(ctx context.Context, id string) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *service) Ledger(ctx context.Context, studentID string) ([]Payment, error) {
	return svc.repo.QueryPayments(
		ctx,
		&QueryFilter{StudentID: studentID},
		[]core.DBOrdering{{Field: "recorded_at"}},
	)
}

func (svc *service) All(ctx context.Context) ([]Payment, error) {
	return svc.repo.QueryPayments(ctx, nil, nil)
}

func (svc *service) Summary(ctx context.Context, studentID string, planAmount int64) (Summary, error) {
	payments, err := svc.Ledger(ctx, studentID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(planAmount, payments), nil
}

func (svc *service) MarkPaid(ctx context.Context, id, actorID string) (Payment, error) {
	pmt, err := svc.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if pmt.Paid {
		return pmt, nil
	}
	pmt.Paid = true
	pmt.RecordedAt = time.Now().UTC()
	pmt, err = svc.repo.UpdatePayment(ctx, pmt)
	if err != nil {
		return Payment{}, err
	}
	_, err = svc.auditSvc.Record(ctx, audit.Entry{
		StudentID:   pmt.StudentID,
		ChangeType:  audit.ChangePaymentAdded,
		Description: fmt.Sprintf("Installment of %d collected", pmt.Amount),
		ChangedBy:   actorID,
	})
	return pmt, err
}

func (svc *service) Delete(ctx context.Context, id, actorID string) error {
	pmt, err := svc.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err = svc.repo.DeletePaymentsByID(ctx, []string{id}); err != nil {
		return err
	}
	if pmt.ReceiptPath != "" {
		_ = svc.receipts.Remove(pmt.ReceiptPath) // best effort
	}
	_, err = svc.auditSvc.Record(ctx, audit.Entry{
		StudentID:   pmt.StudentID,
		ChangeType:  audit.ChangePaymentDeleted,
		Description: fmt.Sprintf("Payment of %d deleted", pmt.Amount),
		ChangedBy:   actorID,
	})
	return err
}
