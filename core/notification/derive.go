package notification

import (
	"fmt"
	"sort"
	"time"

	"github.com/trezcool/kelasi/core/payment"
	"github.com/trezcool/kelasi/core/student"
)

// Snapshot is the state a derivation runs over.
type Snapshot struct {
	Now            time.Time
	DueSoonWindow  time.Duration
	FollowUpMaxAge time.Duration

	Students      []student.Student
	Payments      []payment.Payment
	LastFollowUps map[string]time.Time // studentID -> latest follow-up time
}

// Derive computes the notification set for a snapshot. It is pure: the
// same snapshot always yields the same notifications, at most one per
// kind per student, ordered by date (most urgent first).
func Derive(snap Snapshot) []Notification {
	now := snap.Now.UTC()

	names := make(map[string]string, len(snap.Students))
	for _, std := range snap.Students {
		names[std.ID] = std.FullName
	}

	notifs := make(map[string]Notification)
	add := func(n Notification) {
		// keep the earliest date per kind+student
		if cur, ok := notifs[n.ID]; ok && !cur.Date.After(n.Date) {
			return
		}
		notifs[n.ID] = n
	}

	for _, pmt := range snap.Payments {
		if pmt.Paid || pmt.DueDate == nil {
			continue
		}
		name, ok := names[pmt.StudentID]
		if !ok {
			continue // payment of a deleted student
		}
		due := pmt.DueDate.UTC()
		switch {
		case due.Before(now):
			add(Notification{
				ID:          notifID(KindOverdue, pmt.StudentID),
				Kind:        KindOverdue,
				StudentID:   pmt.StudentID,
				StudentName: name,
				Message:     fmt.Sprintf("Payment of %d overdue since %s", pmt.Amount, due.Format("Jan 2, 2006")),
				Date:        due,
			})
		case !due.After(now.Add(snap.DueSoonWindow)):
			add(Notification{
				ID:          notifID(KindDueSoon, pmt.StudentID),
				Kind:        KindDueSoon,
				StudentID:   pmt.StudentID,
				StudentName: name,
				Message:     fmt.Sprintf("Payment of %d due on %s", pmt.Amount, due.Format("Jan 2, 2006")),
				Date:        due,
			})
		}
	}

	cutoff := now.Add(-snap.FollowUpMaxAge)
	for _, std := range snap.Students {
		last, ok := snap.LastFollowUps[std.ID]
		if !ok {
			last = std.CreatedAt
		}
		if last.UTC().After(cutoff) {
			continue
		}
		msg := fmt.Sprintf("No follow-up since %s", last.UTC().Format("Jan 2, 2006"))
		if !ok {
			msg = "No follow-up since enrollment"
		}
		add(Notification{
			ID:          notifID(KindFollowUp, std.ID),
			Kind:        KindFollowUp,
			StudentID:   std.ID,
			StudentName: std.FullName,
			Message:     msg,
			Date:        last.UTC(),
		})
	}

	out := make([]Notification, 0, len(notifs))
	for _, n := range notifs {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
