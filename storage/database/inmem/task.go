package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core/task"
)

type taskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(_ context.Context, tsk task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if tsk.ID == "" {
		tsk.ID = uuid.New().String()
	}
	repo.db.tasks[tsk.ID] = &tsk
	return tsk, nil
}

func (repo *taskRepository) GetTaskByID(_ context.Context, id string) (task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if tsk, ok := repo.db.tasks[id]; ok {
		return *tsk, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) QueryTasks(_ context.Context, studentID string) ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tasks := make([]task.Task, 0, len(repo.db.tasks))
	for _, tsk := range repo.db.tasks {
		if studentID != "" && tsk.StudentID != studentID {
			continue
		}
		tasks = append(tasks, *tsk)
	}
	sort.Slice(tasks, func(i, j int) bool {
		ti, tj := tasks[i], tasks[j]
		switch {
		case ti.DueDate != nil && tj.DueDate != nil && !ti.DueDate.Equal(*tj.DueDate):
			return ti.DueDate.Before(*tj.DueDate)
		case (ti.DueDate != nil) != (tj.DueDate != nil): // dated before undated
			return ti.DueDate != nil
		default:
			return ti.CreatedAt.After(tj.CreatedAt)
		}
	})
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(_ context.Context, tsk task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.tasks[tsk.ID]; !ok {
		return task.Task{}, task.ErrNotFound
	}
	repo.db.tasks[tsk.ID] = &tsk
	return tsk, nil
}

func (repo *taskRepository) DeleteTasksByID(_ context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.tasks[id]; ok {
			delete(repo.db.tasks, id)
			n++
		}
	}
	return n, nil
}
