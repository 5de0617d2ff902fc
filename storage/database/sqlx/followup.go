package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/followup"
)

var followUpColumns = []string{"id", "student_id", "note", "created_by", "created_at"}

type followUpRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	Note      string    `db:"note"`
	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
}

func (row followUpRow) toFollowUp() followup.FollowUp {
	return followup.FollowUp(row)
}

type followUpRepository struct {
	db *sqlx.DB
}

func NewFollowUpRepository(db *sqlx.DB) followup.Repository {
	return &followUpRepository{db: db}
}

func (repo *followUpRepository) CreateFollowUp(ctx context.Context, fu followup.FollowUp) (followup.FollowUp, error) {
	if fu.ID == "" {
		fu.ID = uuid.New().String()
	}
	query, args, err := psql.Insert("follow_up").
		Columns(followUpColumns...).
		Values(fu.ID, fu.StudentID, fu.Note, fu.CreatedBy, fu.CreatedAt).
		ToSql()
	if err != nil {
		return followup.FollowUp{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return followup.FollowUp{}, errors.Wrap(err, "creating follow-up")
	}
	return fu, nil
}

func (repo *followUpRepository) QueryFollowUps(ctx context.Context, studentID string) ([]followup.FollowUp, error) {
	qb := psql.Select(followUpColumns...).From("follow_up").OrderBy("created_at DESC")
	if studentID != "" {
		qb = qb.Where(sq.Eq{"student_id": studentID})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []followUpRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying follow-ups")
	}
	fus := make([]followup.FollowUp, 0, len(rows))
	for _, row := range rows {
		fus = append(fus, row.toFollowUp())
	}
	return fus, nil
}
