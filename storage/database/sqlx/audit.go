package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/audit"
)

var auditColumns = []string{
	"id", "student_id", "change_type", "field_name", "old_value", "new_value",
	"description", "changed_by", "created_at",
}

type auditRow struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	ChangeType  string    `db:"change_type"`
	FieldName   string    `db:"field_name"`
	OldValue    string    `db:"old_value"`
	NewValue    string    `db:"new_value"`
	Description string    `db:"description"`
	ChangedBy   string    `db:"changed_by"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row auditRow) toEntry() audit.Entry {
	return audit.Entry(row)
}

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) audit.Repository {
	return &auditRepository{db: db}
}

func (repo *auditRepository) CreateEntry(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query, args, err := psql.Insert("student_audit_log").
		Columns(auditColumns...).
		Values(entry.ID, entry.StudentID, entry.ChangeType, entry.FieldName, entry.OldValue,
			entry.NewValue, entry.Description, entry.ChangedBy, entry.CreatedAt).
		ToSql()
	if err != nil {
		return audit.Entry{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return audit.Entry{}, errors.Wrap(err, "creating audit entry")
	}
	return entry, nil
}

func (repo *auditRepository) QueryEntries(ctx context.Context, studentID string) ([]audit.Entry, error) {
	query, args, err := psql.Select(auditColumns...).
		From("student_audit_log").
		Where(sq.Eq{"student_id": studentID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []auditRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying audit entries")
	}
	entries := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toEntry())
	}
	return entries, nil
}
