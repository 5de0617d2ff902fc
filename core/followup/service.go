package followup

import (
	"context"
	"time"

	"github.com/trezcool/kelasi/core/audit"
)

type (
	Repository interface {
		CreateFollowUp(ctx context.Context, fu FollowUp) (FollowUp, error)
		// QueryFollowUps returns a student's follow-ups, newest first.
		// An empty studentID returns all follow-ups.
		QueryFollowUps(ctx context.Context, studentID string) ([]FollowUp, error)
	}

	Service interface {
		Create(ctx context.Context, studentID string, nf NewFollowUp, actorID string) (FollowUp, error)
		List(ctx context.Context, studentID string) ([]FollowUp, error)
		// LatestByStudent maps each student that has follow-ups to the time
		// of their most recent one.
		LatestByStudent(ctx context.Context) (map[string]time.Time, error)
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

func (svc *service) Create(ctx context.Context, studentID string, nf NewFollowUp, actorID string) (FollowUp, error) {
	fu := FollowUp{
		StudentID: studentID,
		Note:      nf.Note,
		CreatedBy: actorID,
		CreatedAt: time.Now().UTC(),
	}
	fu, err := svc.repo.CreateFollowUp(ctx, fu)
	if err != nil {
		return FollowUp{}, err
	}

	_, err = svc.auditSvc.Record(ctx, audit.Entry{
		StudentID:   studentID,
		ChangeType:  audit.ChangeFollowUpCreated,
		Description: "Follow-up logged",
		ChangedBy:   actorID,
	})
	return fu, err
}

func (svc *service) List(ctx context.Context, studentID string) ([]FollowUp, error) {
	return svc.repo.QueryFollowUps(ctx, studentID)
}

func (svc *service) LatestByStudent(ctx context.Context) (map[string]time.Time, error) {
	fus, err := svc.repo.QueryFollowUps(ctx, "")
	if err != nil {
		return nil, err
	}
	latest := make(map[string]time.Time)
	for _, fu := range fus {
		if last, ok := latest[fu.StudentID]; !ok || fu.CreatedAt.After(last) {
			latest[fu.StudentID] = fu.CreatedAt
		}
	}
	return latest, nil
}
