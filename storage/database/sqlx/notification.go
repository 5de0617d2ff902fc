package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/notification"
)

var notifColumns = []string{
	"id", "kind", "student_id", "student_name", "message", "date", "read", "created_at",
}

type notifRow struct {
	ID          string    `db:"id"`
	Kind        string    `db:"kind"`
	StudentID   string    `db:"student_id"`
	StudentName string    `db:"student_name"`
	Message     string    `db:"message"`
	Date        time.Time `db:"date"`
	Read        bool      `db:"read"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row notifRow) toNotification() notification.Notification {
	return notification.Notification(row)
}

type notifRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notifRepository{db: db}
}

func (repo *notifRepository) QueryNotifications(ctx context.Context, unreadOnly bool) ([]notification.Notification, error) {
	qb := psql.Select(notifColumns...).From("notification").OrderBy("date ASC", "id ASC")
	if unreadOnly {
		qb = qb.Where(sq.Eq{"read": false})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []notifRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, row.toNotification())
	}
	return notifs, nil
}

func (repo *notifRepository) ReplaceNotifications(ctx context.Context, notifs []notification.Notification) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, "DELETE FROM notification"); err != nil {
		return errors.Wrap(err, "clearing notifications")
	}
	if len(notifs) > 0 {
		qb := psql.Insert("notification").Columns(notifColumns...)
		for _, n := range notifs {
			qb = qb.Values(n.ID, n.Kind, n.StudentID, n.StudentName, n.Message, n.Date, n.Read, n.CreatedAt)
		}
		query, args, err := qb.ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "inserting notifications")
		}
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo *notifRepository) SetNotificationRead(ctx context.Context, id string, read bool) (notification.Notification, error) {
	query, args, err := psql.Update("notification").
		Set("read", read).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + "id, kind, student_id, student_name, message, date, read, created_at").
		ToSql()
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "building query")
	}

	var row notifRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "marking notification read")
	}
	return row.toNotification(), nil
}
