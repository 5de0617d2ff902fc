package task

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/audit"
)

var (
	// errors
	ErrNotFound = errors.New("task not found")
)

type (
	Repository interface {
		CreateTask(ctx context.Context, tsk Task) (Task, error)
		GetTaskByID(ctx context.Context, id string) (Task, error)
		// QueryTasks returns a student's tasks, earliest due date first,
		// undated tasks last.
		QueryTasks(ctx context.Context, studentID string) ([]Task, error)
		UpdateTask(ctx context.Context, tsk Task) (Task, error)
		DeleteTasksByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		Add(ctx context.Context, studentID string, nt NewTask, actorID string) (Task, error)
		List(ctx context.Context, studentID string) ([]Task, error)
		// ToggleComplete flips the task's completed flag.
		ToggleComplete(ctx context.Context, id, actorID string) (Task, error)
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

func (svc *service) Add(ctx context.Context, studentID string, nt NewTask, actorID string) (Task, error) {
	tsk := Task{
		StudentID: studentID,
		Title:     nt.Title,
		DueDate:   nt.DueDate,
		CreatedBy: actorID,
		CreatedAt: time.Now().UTC(),
	}
	tsk, err := svc.repo.CreateTask(ctx, tsk)
	if err != nil {
		return Task{}, err
	}

	_, err = svc.auditSvc.Record(ctx, audit.Entry{
		StudentID:   studentID,
		ChangeType:  audit.ChangeTaskCreated,
		Description: fmt.Sprintf("Task added: %s", tsk.Title),
		ChangedBy:   actorID,
	})
	return tsk, err
}

func (svc *service) List(ctx context.Context, studentID string) ([]Task, error) {
	return svc.repo.QueryTasks(ctx, studentID)
}

func (svc *service) ToggleComplete(ctx context.Context, id, actorID string) (Task, error) {
	tsk, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}

	tsk.Completed = !tsk.Completed
	if tsk.Completed {
		now := time.Now().UTC()
		tsk.CompletedAt = &now
	} else {
		tsk.CompletedAt = nil
	}

	tsk, err = svc.repo.UpdateTask(ctx, tsk)
	if err != nil {
		return Task{}, err
	}

	if tsk.Completed {
		_, err = svc.auditSvc.Record(ctx, audit.Entry{
			StudentID:   tsk.StudentID,
			ChangeType:  audit.ChangeTaskCompleted,
			Description: fmt.Sprintf("Task completed: %s", tsk.Title),
			ChangedBy:   actorID,
		})
	}
	return tsk, err
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteTasksByID(ctx, ids)
	return err
}
