package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/payment"
)

var paymentColumns = []string{
	"id", "student_id", "amount", "method", "note", "due_date", "paid",
	"receipt_path", "recorded_by", "recorded_at",
}

type paymentRow struct {
	ID          string       `db:"id"`
	StudentID   string       `db:"student_id"`
	Amount      int64        `db:"amount"`
	Method      string       `db:"method"`
	Note        string       `db:"note"`
	DueDate     sql.NullTime `db:"due_date"`
	Paid        bool         `db:"paid"`
	ReceiptPath string       `db:"receipt_path"`
	RecordedBy  string       `db:"recorded_by"`
	RecordedAt  time.Time    `db:"recorded_at"`
}

func (row paymentRow) toPayment() payment.Payment {
	pmt := payment.Payment{
		ID:          row.ID,
		StudentID:   row.StudentID,
		Amount:      row.Amount,
		Method:      row.Method,
		Note:        row.Note,
		Paid:        row.Paid,
		ReceiptPath: row.ReceiptPath,
		RecordedBy:  row.RecordedBy,
		RecordedAt:  row.RecordedAt,
	}
	if row.DueDate.Valid {
		due := row.DueDate.Time
		pmt.DueDate = &due
	}
	return pmt
}

func dueDate(pmt payment.Payment) sql.NullTime {
	if pmt.DueDate == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *pmt.DueDate, Valid: true}
}

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	if pmt.ID == "" {
		pmt.ID = uuid.New().String()
	}
	query, args, err := psql.Insert("payment").
		Columns(paymentColumns...).
		Values(pmt.ID, pmt.StudentID, pmt.Amount, pmt.Method, pmt.Note, dueDate(pmt),
			pmt.Paid, pmt.ReceiptPath, pmt.RecordedBy, pmt.RecordedAt).
		ToSql()
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return payment.Payment{}, errors.Wrap(err, "creating payment")
	}
	return pmt, nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id string) (payment.Payment, error) {
	query, args, err := psql.Select(paymentColumns...).From("payment").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "building query")
	}

	var row paymentRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return payment.Payment{}, payment.ErrNotFound
		}
		return payment.Payment{}, errors.Wrap(err, "getting payment")
	}
	return row.toPayment(), nil
}

func (repo *paymentRepository) QueryPayments(ctx context.Context, filter *payment.QueryFilter, ordering []core.DBOrdering) ([]payment.Payment, error) {
	qb := psql.Select(paymentColumns...).From("payment")
	if filter != nil && !filter.IsEmpty() {
		if filter.StudentID != "" {
			qb = qb.Where(sq.Eq{"student_id": filter.StudentID})
		}
		if filter.Paid != nil {
			qb = qb.Where(sq.Eq{"paid": *filter.Paid})
		}
		if !filter.DueFrom.IsZero() {
			qb = qb.Where(sq.GtOrEq{"due_date": filter.DueFrom})
		}
		if !filter.DueTo.IsZero() {
			qb = qb.Where(sq.LtOrEq{"due_date": filter.DueTo})
		}
	}
	qb = qb.OrderBy(orderByClauses(ordering)...)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []paymentRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}

	payments := make([]payment.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, row.toPayment())
	}
	return payments, nil
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	query, args, err := psql.Update("payment").
		Set("amount", pmt.Amount).
		Set("method", pmt.Method).
		Set("note", pmt.Note).
		Set("due_date", dueDate(pmt)).
		Set("paid", pmt.Paid).
		Set("receipt_path", pmt.ReceiptPath).
		Set("recorded_at", pmt.RecordedAt).
		Where(sq.Eq{"id": pmt.ID}).
		ToSql()
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "updating payment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	return pmt, nil
}

func (repo *paymentRepository) DeletePaymentsByID(ctx context.Context, ids []string) (int, error) {
	query, args, err := psql.Delete("payment").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting payments")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
