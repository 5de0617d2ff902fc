package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/student"
)

var studentColumns = []string{
	"id", "full_name", "phone", "email", "address", "batch", "tags",
	"plan_name", "plan_amount", "current_status", "joining_date",
	"created_at", "updated_at",
}

type studentRow struct {
	ID            string         `db:"id"`
	FullName      string         `db:"full_name"`
	Phone         string         `db:"phone"`
	Email         string         `db:"email"`
	Address       string         `db:"address"`
	Batch         string         `db:"batch"`
	Tags          pq.StringArray `db:"tags"`
	PlanName      string         `db:"plan_name"`
	PlanAmount    int64          `db:"plan_amount"`
	CurrentStatus string         `db:"current_status"`
	JoiningDate   time.Time      `db:"joining_date"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (row studentRow) toStudent() student.Student {
	return student.Student{
		ID:            row.ID,
		FullName:      row.FullName,
		Phone:         row.Phone,
		Email:         row.Email,
		Address:       row.Address,
		Batch:         row.Batch,
		Tags:          row.Tags,
		PlanName:      row.PlanName,
		PlanAmount:    row.PlanAmount,
		CurrentStatus: row.CurrentStatus,
		JoiningDate:   row.JoiningDate,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	if std.ID == "" {
		std.ID = uuid.New().String()
	}
	query, args, err := psql.Insert("student").
		Columns(studentColumns...).
		Values(std.ID, std.FullName, std.Phone, std.Email, std.Address, std.Batch,
			pq.StringArray(std.Tags), std.PlanName, std.PlanAmount, std.CurrentStatus,
			std.JoiningDate, std.CreatedAt, std.UpdatedAt).
		ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	query, args, err := psql.Select(studentColumns...).From("student").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building query")
	}

	var row studentRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	qb := psql.Select(studentColumns...).From("student")
	if filter != nil && !filter.IsEmpty() {
		if filter.Search != "" {
			pattern := searchPattern(filter.Search)
			qb = qb.Where(sq.Or{
				sq.ILike{"full_name": pattern},
				sq.ILike{"phone": pattern},
				sq.ILike{"email": pattern},
			})
		}
		if filter.Status != "" {
			qb = qb.Where(sq.Eq{"current_status": filter.Status})
		}
		if filter.Batch != "" {
			qb = qb.Where(sq.Eq{"batch": filter.Batch})
		}
		if !filter.CreatedFrom.IsZero() {
			qb = qb.Where(sq.GtOrEq{"created_at": filter.CreatedFrom})
		}
		if !filter.CreatedTo.IsZero() {
			qb = qb.Where(sq.LtOrEq{"created_at": filter.CreatedTo})
		}
	}
	qb = qb.OrderBy(orderByClauses(ordering)...)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []studentRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	query, args, err := psql.Update("student").
		Set("full_name", std.FullName).
		Set("phone", std.Phone).
		Set("email", std.Email).
		Set("address", std.Address).
		Set("batch", std.Batch).
		Set("tags", pq.StringArray(std.Tags)).
		Set("plan_name", std.PlanName).
		Set("plan_amount", std.PlanAmount).
		Set("current_status", std.CurrentStatus).
		Set("joining_date", std.JoiningDate).
		Set("updated_at", std.UpdatedAt).
		Where(sq.Eq{"id": std.ID}).
		ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids []string) (int, error) {
	query, args, err := psql.Delete("student").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
