package notification

import "time"

// Notification kinds
const (
	KindOverdue  = "overdue"
	KindDueSoon  = "due_soon"
	KindFollowUp = "follow_up"
)

// Notification is a derived alert about a student needing attention.
// Its ID is deterministic ("<kind>-<studentID>") so repeated derivations
// converge on the same set.
type Notification struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Message     string    `json:"message"`
	Date        time.Time `json:"date"` // UTC; the event the alert refers to
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

func notifID(kind, studentID string) string {
	return kind + "-" + studentID
}
