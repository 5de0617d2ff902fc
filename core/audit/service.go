package audit

import (
	"context"
	"time"
)

type (
	Repository interface {
		CreateEntry(ctx context.Context, entry Entry) (Entry, error)
		// QueryEntries returns a student's entries, newest first.
		QueryEntries(ctx context.Context, studentID string) ([]Entry, error)
	}

	Service interface {
		Record(ctx context.Context, entry Entry) (Entry, error)
		History(ctx context.Context, studentID string) ([]Entry, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Record(ctx context.Context, entry Entry) (Entry, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return svc.repo.CreateEntry(ctx, entry)
}

func (svc *service) History(ctx context.Context, studentID string) ([]Entry, error) {
	return svc.repo.QueryEntries(ctx, studentID)
}
