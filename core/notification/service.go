package notification

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/followup"
	"github.com/trezcool/kelasi/core/payment"
	"github.com/trezcool/kelasi/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("notification not found")
)

type (
	Repository interface {
		// QueryNotifications returns all notifications, most urgent first.
		QueryNotifications(ctx context.Context, unreadOnly bool) ([]Notification, error)
		// ReplaceNotifications swaps the whole notification set atomically.
		ReplaceNotifications(ctx context.Context, notifs []Notification) error
		SetNotificationRead(ctx context.Context, id string, read bool) (Notification, error)
	}

	Service interface {
		// Refresh re-derives the notification set from current data,
		// carrying over read flags of notifications that persist.
		Refresh(ctx context.Context) error
		Query(ctx context.Context, unreadOnly bool) ([]Notification, error)
		MarkRead(ctx context.Context, id string) (Notification, error)
		MarkAllRead(ctx context.Context) error
	}

	service struct {
		repo        Repository
		studentSvc  student.Service
		paymentSvc  payment.Service
		followUpSvc followup.Service
		mailSvc     core.EmailService
		conf        *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	studentSvc student.Service,
	paymentSvc payment.Service,
	followUpSvc followup.Service,
	mailSvc core.EmailService,
	conf *core.Config,
) Service {
	return &service{
		repo:        repo,
		studentSvc:  studentSvc,
		paymentSvc:  paymentSvc,
		followUpSvc: followUpSvc,
		mailSvc:     mailSvc,
		conf:        conf,
	}
}

func (svc *service) Refresh(ctx context.Context) error {
	students, err := svc.studentSvc.Query(ctx, nil, nil)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	payments, err := svc.paymentSvc.All(ctx)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	lastFUs, err := svc.followUpSvc.LatestByStudent(ctx)
	if err != nil {
		return errors.Wrap(err, "querying follow-ups")
	}

	derived := Derive(Snapshot{
		Now:            time.Now(),
		DueSoonWindow:  svc.conf.Notifications.DueSoonWindow,
		FollowUpMaxAge: svc.conf.Notifications.FollowUpMaxAge,
		Students:       students,
		Payments:       payments,
		LastFollowUps:  lastFUs,
	})

	prev, err := svc.repo.QueryNotifications(ctx, false)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	prevByID := make(map[string]Notification, len(prev))
	for _, n := range prev {
		prevByID[n.ID] = n
	}

	now := time.Now().UTC()
	var newOverdue []Notification
	for i, n := range derived {
		if old, ok := prevByID[n.ID]; ok {
			derived[i].Read = old.Read
			derived[i].CreatedAt = old.CreatedAt
			continue
		}
		derived[i].CreatedAt = now
		if n.Kind == KindOverdue {
			newOverdue = append(newOverdue, derived[i])
		}
	}

	if err = svc.repo.ReplaceNotifications(ctx, derived); err != nil {
		return errors.Wrap(err, "replacing notifications")
	}

	if len(newOverdue) > 0 && svc.conf.StaffEmail.Address != "" {
		go svc.sendOverdueMail(newOverdue)
	}
	return nil
}

func (svc *service) Query(ctx context.Context, unreadOnly bool) ([]Notification, error) {
	return svc.repo.QueryNotifications(ctx, unreadOnly)
}

func (svc *service) MarkRead(ctx context.Context, id string) (Notification, error) {
	return svc.repo.SetNotificationRead(ctx, id, true)
}

func (svc *service) MarkAllRead(ctx context.Context) error {
	notifs, err := svc.repo.QueryNotifications(ctx, true /* unreadOnly */)
	if err != nil {
		return err
	}
	for _, n := range notifs {
		if _, err = svc.repo.SetNotificationRead(ctx, n.ID, true); err != nil {
			return err
		}
	}
	return nil
}

func (svc *service) sendOverdueMail(notifs []Notification) {
	var body strings.Builder
	body.WriteString("The following payments are overdue:\n\n")
	for _, n := range notifs {
		fmt.Fprintf(&body, "- %s: %s\n", n.StudentName, n.Message)
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{svc.conf.StaffEmail},
		Subject: fmt.Sprintf("[%s] Overdue payments", svc.conf.AppName),
		BodyStr: body.String(),
	})
}
