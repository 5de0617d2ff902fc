package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kelasi/core/payment"
	"github.com/trezcool/kelasi/core/student"
)

var now = time.Date(2021, 3, 15, 10, 0, 0, 0, time.UTC)

func snapshot() Snapshot {
	return Snapshot{
		Now:            now,
		DueSoonWindow:  3 * 24 * time.Hour,
		FollowUpMaxAge: 7 * 24 * time.Hour,
		LastFollowUps:  map[string]time.Time{},
	}
}

func ptime(t time.Time) *time.Time { return &t }

func TestDerive(t *testing.T) {
	overdueDate := now.AddDate(0, 0, -5)
	dueSoonDate := now.AddDate(0, 0, 2)
	farDate := now.AddDate(0, 0, 30)

	snap := snapshot()
	snap.Students = []student.Student{
		{ID: "s1", FullName: "Amina", CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "s2", FullName: "Bakari", CreatedAt: now.AddDate(0, 0, -2)},
		{ID: "s3", FullName: "Chipo", CreatedAt: now.AddDate(0, 0, -3)},
	}
	snap.Payments = []payment.Payment{
		{ID: "p1", StudentID: "s1", Amount: 2000, DueDate: ptime(overdueDate)},
		{ID: "p2", StudentID: "s2", Amount: 1500, DueDate: ptime(dueSoonDate)},
		{ID: "p3", StudentID: "s3", Amount: 500, DueDate: ptime(farDate)},
		{ID: "p4", StudentID: "s3", Amount: 999, DueDate: ptime(overdueDate), Paid: true},
		{ID: "p5", StudentID: "gone", Amount: 100, DueDate: ptime(overdueDate)},
	}
	snap.LastFollowUps = map[string]time.Time{
		"s1": now.AddDate(0, 0, -1),
		"s2": now.AddDate(0, 0, -1),
		"s3": now.AddDate(0, 0, -1),
	}

	notifs := Derive(snap)
	require.Len(t, notifs, 2)

	assert.Equal(t, "overdue-s1", notifs[0].ID)
	assert.Equal(t, KindOverdue, notifs[0].Kind)
	assert.Equal(t, "Amina", notifs[0].StudentName)
	assert.Equal(t, overdueDate, notifs[0].Date)

	assert.Equal(t, "due_soon-s2", notifs[1].ID)
	assert.Equal(t, KindDueSoon, notifs[1].Kind)
}

func TestDeriveStaleFollowUps(t *testing.T) {
	snap := snapshot()
	snap.Students = []student.Student{
		{ID: "s1", FullName: "Amina", CreatedAt: now.AddDate(0, 0, -30)}, // stale follow-up
		{ID: "s2", FullName: "Bakari", CreatedAt: now.AddDate(0, 0, -30)}, // recent follow-up
		{ID: "s3", FullName: "Chipo", CreatedAt: now.AddDate(0, 0, -2)},   // too new to flag
	}
	snap.LastFollowUps = map[string]time.Time{
		"s1": now.AddDate(0, 0, -10),
		"s2": now.AddDate(0, 0, -2),
	}

	notifs := Derive(snap)
	require.Len(t, notifs, 1)
	assert.Equal(t, "follow_up-s1", notifs[0].ID)
	assert.Equal(t, "Amina", notifs[0].StudentName)
}

// A student enrolled 10 days ago with no follow-ups yields exactly one
// follow-up notification.
func TestDeriveNeverFollowedUp(t *testing.T) {
	snap := snapshot()
	snap.Students = []student.Student{
		{ID: "s1", FullName: "Amina", CreatedAt: now.AddDate(0, 0, -10)},
	}

	notifs := Derive(snap)
	require.Len(t, notifs, 1)
	assert.Equal(t, "follow_up-s1", notifs[0].ID)
	assert.Equal(t, KindFollowUp, notifs[0].Kind)
	assert.Equal(t, "No follow-up since enrollment", notifs[0].Message)
}

// Deriving the same snapshot twice yields the same set.
func TestDeriveIdempotent(t *testing.T) {
	snap := snapshot()
	snap.Students = []student.Student{
		{ID: "s1", FullName: "Amina", CreatedAt: now.AddDate(0, 0, -20)},
		{ID: "s2", FullName: "Bakari", CreatedAt: now.AddDate(0, 0, -1)},
	}
	snap.Payments = []payment.Payment{
		{ID: "p1", StudentID: "s1", Amount: 2000, DueDate: ptime(now.AddDate(0, 0, -3))},
		{ID: "p2", StudentID: "s2", Amount: 1500, DueDate: ptime(now.AddDate(0, 0, 1))},
	}

	first := Derive(snap)
	second := Derive(snap)
	assert.Equal(t, first, second)

	// at most one notification per kind per student, even with several
	// overdue payments
	snap.Payments = append(snap.Payments, payment.Payment{
		ID: "p3", StudentID: "s1", Amount: 700, DueDate: ptime(now.AddDate(0, 0, -8)),
	})
	notifs := Derive(snap)
	seen := map[string]int{}
	for _, n := range notifs {
		seen[n.ID]++
	}
	for id, count := range seen {
		assert.Equalf(t, 1, count, "duplicate notification %s", id)
	}
	// the earliest due date wins for the overdue alert
	for _, n := range notifs {
		if n.ID == "overdue-s1" {
			assert.Equal(t, now.AddDate(0, 0, -8), n.Date)
		}
	}
}
