package dashboard

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/notification"
	"github.com/trezcool/kelasi/core/payment"
	"github.com/trezcool/kelasi/core/student"
)

// Student list filters
const (
	ListAll    = ""
	ListActive = "active" // status != completed
	ListDue    = "due"    // remaining due > 0
)

type (
	// StatusCount is the number of students sitting at a funnel stage.
	StatusCount struct {
		student.StatusStyle
		Count int `json:"count"`
	}

	// Overview is the headline view of the whole roster.
	Overview struct {
		TotalStudents       int                    `json:"total_students"`
		ActiveStudents      int                    `json:"active_students"`
		NewThisWeek         int                    `json:"new_this_week"`
		NeedsAttention      int                    `json:"needs_attention"`
		StatusCounts        []StatusCount          `json:"status_counts"`
		TotalCollected      int64                  `json:"total_collected"`
		TotalDue            int64                  `json:"total_due"`
		UnreadNotifications int                    `json:"unread_notifications"`
		RecentStudents      []student.DirectoryRow `json:"recent_students"`
	}

	Service interface {
		Overview(ctx context.Context) (Overview, error)
		// Students returns the roster annotated with derived due amounts,
		// optionally narrowed to ListActive or ListDue.
		Students(ctx context.Context, filter string) ([]student.DirectoryRow, error)
	}

	service struct {
		studentSvc student.Service
		paymentSvc payment.Service
		notifSvc   notification.Service
	}
)

var _ Service = (*service)(nil)

const recentLimit = 5

func NewService(studentSvc student.Service, paymentSvc payment.Service, notifSvc notification.Service) Service {
	return &service{
		studentSvc: studentSvc,
		paymentSvc: paymentSvc,
		notifSvc:   notifSvc,
	}
}

func (svc *service) Overview(ctx context.Context) (Overview, error) {
	rows, err := svc.directory(ctx)
	if err != nil {
		return Overview{}, err
	}
	notifs, err := svc.notifSvc.Query(ctx, false)
	if err != nil {
		return Overview{}, errors.Wrap(err, "querying notifications")
	}

	var unread, needsAttention int
	for _, n := range notifs {
		if !n.Read {
			unread++
		}
		if n.Kind == notification.KindFollowUp {
			needsAttention++
		}
	}

	weekAgo := time.Now().UTC().Add(-7 * 24 * time.Hour)
	byStatus := make(map[string]int, len(student.AllStatuses))
	var active, newThisWeek int
	var collected, due int64
	for _, row := range rows {
		byStatus[student.StyleFor(row.CurrentStatus).Value]++
		if row.CurrentStatus != student.StatusCompleted {
			active++
		}
		if !row.JoiningDate.Before(weekAgo) {
			newThisWeek++
		}
		collected += row.Paid
		due += row.Due
	}

	counts := make([]StatusCount, 0, len(student.AllStatuses))
	for _, style := range student.StatusStyles() {
		counts = append(counts, StatusCount{StatusStyle: style, Count: byStatus[style.Value]})
	}

	recent := rows
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	return Overview{
		TotalStudents:       len(rows),
		ActiveStudents:      active,
		NewThisWeek:         newThisWeek,
		NeedsAttention:      needsAttention,
		StatusCounts:        counts,
		TotalCollected:      collected,
		TotalDue:            due,
		UnreadNotifications: unread,
		RecentStudents:      recent,
	}, nil
}

func (svc *service) Students(ctx context.Context, filter string) ([]student.DirectoryRow, error) {
	rows, err := svc.directory(ctx)
	if err != nil {
		return nil, err
	}

	switch filter {
	case ListAll:
		return rows, nil
	case ListActive:
		filtered := make([]student.DirectoryRow, 0, len(rows))
		for _, row := range rows {
			if row.CurrentStatus != student.StatusCompleted {
				filtered = append(filtered, row)
			}
		}
		return filtered, nil
	case ListDue:
		filtered := make([]student.DirectoryRow, 0, len(rows))
		for _, row := range rows {
			if row.Due > 0 {
				filtered = append(filtered, row)
			}
		}
		return filtered, nil
	default:
		return nil, errors.Errorf("unknown student list filter %q", filter)
	}
}

// directory returns all students annotated with billing summaries, newest first.
func (svc *service) directory(ctx context.Context) ([]student.DirectoryRow, error) {
	students, err := svc.studentSvc.Query(ctx, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	payments, err := svc.paymentSvc.All(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	return student.BuildDirectory(students, payments), nil
}
