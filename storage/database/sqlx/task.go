package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/task"
)

var taskColumns = []string{"id", "student_id", "title", "due_date", "completed", "completed_at", "created_by", "created_at"}

type taskRow struct {
	ID          string       `db:"id"`
	StudentID   string       `db:"student_id"`
	Title       string       `db:"title"`
	DueDate     sql.NullTime `db:"due_date"`
	Completed   bool         `db:"completed"`
	CompletedAt sql.NullTime `db:"completed_at"`
	CreatedBy   string       `db:"created_by"`
	CreatedAt   time.Time    `db:"created_at"`
}

func (row taskRow) toTask() task.Task {
	tsk := task.Task{
		ID:        row.ID,
		StudentID: row.StudentID,
		Title:     row.Title,
		Completed: row.Completed,
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt,
	}
	if row.DueDate.Valid {
		due := row.DueDate.Time
		tsk.DueDate = &due
	}
	if row.CompletedAt.Valid {
		done := row.CompletedAt.Time
		tsk.CompletedAt = &done
	}
	return tsk
}

func taskDueDate(tsk task.Task) sql.NullTime {
	if tsk.DueDate == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *tsk.DueDate, Valid: true}
}

func completedAt(tsk task.Task) sql.NullTime {
	if tsk.CompletedAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *tsk.CompletedAt, Valid: true}
}

type taskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) task.Repository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(ctx context.Context, tsk task.Task) (task.Task, error) {
	if tsk.ID == "" {
		tsk.ID = uuid.New().String()
	}
	query, args, err := psql.Insert("task").
		Columns(taskColumns...).
		Values(tsk.ID, tsk.StudentID, tsk.Title, taskDueDate(tsk), tsk.Completed, completedAt(tsk), tsk.CreatedBy, tsk.CreatedAt).
		ToSql()
	if err != nil {
		return task.Task{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return task.Task{}, errors.Wrap(err, "creating task")
	}
	return tsk, nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	query, args, err := psql.Select(taskColumns...).From("task").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return task.Task{}, errors.Wrap(err, "building query")
	}

	var row taskRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "getting task")
	}
	return row.toTask(), nil
}

func (repo *taskRepository) QueryTasks(ctx context.Context, studentID string) ([]task.Task, error) {
	qb := psql.Select(taskColumns...).From("task").OrderBy("due_date ASC NULLS LAST", "created_at DESC")
	if studentID != "" {
		qb = qb.Where(sq.Eq{"student_id": studentID})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []taskRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(ctx context.Context, tsk task.Task) (task.Task, error) {
	query, args, err := psql.Update("task").
		Set("title", tsk.Title).
		Set("due_date", taskDueDate(tsk)).
		Set("completed", tsk.Completed).
		Set("completed_at", completedAt(tsk)).
		Where(sq.Eq{"id": tsk.ID}).
		ToSql()
	if err != nil {
		return task.Task{}, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return tsk, nil
}

func (repo *taskRepository) DeleteTasksByID(ctx context.Context, ids []string) (int, error) {
	query, args, err := psql.Delete("task").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting tasks")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
