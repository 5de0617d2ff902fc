package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core/followup"
)

type followUpRepository struct {
	db *DB
}

func NewFollowUpRepository(db *DB) followup.Repository {
	return &followUpRepository{db: db}
}

func (repo *followUpRepository) CreateFollowUp(_ context.Context, fu followup.FollowUp) (followup.FollowUp, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if fu.ID == "" {
		fu.ID = uuid.New().String()
	}
	repo.db.followUps[fu.ID] = &fu
	return fu, nil
}

func (repo *followUpRepository) QueryFollowUps(_ context.Context, studentID string) ([]followup.FollowUp, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	fus := make([]followup.FollowUp, 0, len(repo.db.followUps))
	for _, fu := range repo.db.followUps {
		if studentID != "" && fu.StudentID != studentID {
			continue
		}
		fus = append(fus, *fu)
	}
	sort.Slice(fus, func(i, j int) bool { return fus[i].CreatedAt.After(fus[j].CreatedAt) })
	return fus, nil
}
