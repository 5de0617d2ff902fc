package student

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/audit"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of
		// Student.FullName, Student.Phone or Student.Email.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		Create(ctx context.Context, ns NewStudent, actorID string) (Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		Update(ctx context.Context, id string, us UpdateStudent, actorID string) (Student, error)
		ChangeStatus(ctx context.Context, id, newStatus, actorID string) (Student, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo     Repository
		auditSvc audit.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, auditSvc audit.Service) Service {
	return &service{
		repo:     repo,
		auditSvc: auditSvc,
	}
}

func (svc *service) Create(ctx context.Context, ns NewStudent, actorID string) (Student, error) {
	plan, ok := PlanByName(ns.PlanName)
	if !ok {
		return Student{}, core.NewValidationError(nil, core.FieldError{Field: "plan_name", Error: "invalid plan"})
	}

	now := time.Now().UTC()
	joining := ns.JoiningDate
	if joining.IsZero() {
		joining = now
	}
	std := Student{
		FullName:      ns.FullName,
		Phone:         ns.Phone,
		Email:         ns.Email,
		Address:       ns.Address,
		Batch:         ns.Batch,
		Tags:          ns.Tags,
		PlanName:      plan.Name,
		PlanAmount:    plan.Amount,
		CurrentStatus: StatusNotStarted,
		JoiningDate:   joining.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	std, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		return Student{}, err
	}

	_, err = svc.auditSvc.Record(ctx, audit.Entry{
		StudentID:   std.ID,
		ChangeType:  audit.ChangeStudentCreated,
		Description: fmt.Sprintf("Student enrolled on %s", std.PlanName),
		ChangedBy:   actorID,
	})
	return std, err
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	if ordering == nil {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

// fieldChange pairs a field name with its old and new values for auditing.
type fieldChange struct{ field, old, new string }

func (svc *service) Update(ctx context.Context, id string, us UpdateStudent, actorID string) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	changes := make([]fieldChange, 0, 6)
	record := func(field, old, new string) string {
		if old != new {
			changes = append(changes, fieldChange{field, old, new})
		}
		return new
	}

	std.FullName = record("full_name", std.FullName, us.FullName)
	std.Phone = record("phone", std.Phone, us.Phone)
	std.Email = record("email", std.Email, us.Email)
	std.Address = record("address", std.Address, us.Address)
	std.Batch = record("batch", std.Batch, us.Batch)
	if us.PlanName != std.PlanName {
		plan, ok := PlanByName(us.PlanName)
		if !ok {
			return Student{}, core.NewValidationError(nil, core.FieldError{Field: "plan_name", Error: "invalid plan"})
		}
		record("plan_name", std.PlanName, plan.Name)
		std.PlanName = plan.Name
		std.PlanAmount = plan.Amount
	}
	std.Tags = us.Tags
	std.UpdatedAt = time.Now().UTC()

	std, err = svc.repo.UpdateStudent(ctx, std)
	if err != nil {
		return Student{}, err
	}

	for _, ch := range changes {
		if _, err = svc.auditSvc.Record(ctx, audit.Entry{
			StudentID:   std.ID,
			ChangeType:  audit.ChangeFieldUpdated,
			FieldName:   ch.field,
			OldValue:    ch.old,
			NewValue:    ch.new,
			Description: fmt.Sprintf("%s updated", ch.field),
			ChangedBy:   actorID,
		}); err != nil {
			return Student{}, err
		}
	}
	return std, nil
}

func (svc *service) ChangeStatus(ctx context.Context, id, newStatus, actorID string) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if std.CurrentStatus == newStatus {
		return std, nil
	}

	oldStatus := std.CurrentStatus
	std.CurrentStatus = newStatus
	std.UpdatedAt = time.Now().UTC()

	std, err = svc.repo.UpdateStudent(ctx, std)
	if err != nil {
		return Student{}, err
	}

	_, err = svc.auditSvc.Record(ctx, audit.Entry{
		StudentID:   std.ID,
		ChangeType:  audit.ChangeStatusChanged,
		FieldName:   "current_status",
		OldValue:    oldStatus,
		NewValue:    newStatus,
		Description: fmt.Sprintf("Status changed from %s to %s", StyleFor(oldStatus).Label, StyleFor(newStatus).Label),
		ChangedBy:   actorID,
	})
	return std, err
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteStudentsByID(ctx, ids)
	return err
}
