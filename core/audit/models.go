package audit

import "time"

// Change types
const (
	ChangeStudentCreated  = "student_created"
	ChangeFieldUpdated    = "field_updated"
	ChangeStatusChanged   = "status_changed"
	ChangePaymentAdded    = "payment_added"
	ChangePaymentDeleted  = "payment_deleted"
	ChangeFollowUpCreated = "follow_up_created"
	ChangeTaskCreated     = "task_created"
	ChangeTaskCompleted   = "task_completed"
)

// Entry is an append-only record of a notable change on a student.
type Entry struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	ChangeType  string    `json:"change_type"`
	FieldName   string    `json:"field_name,omitempty"`
	OldValue    string    `json:"old_value,omitempty"`
	NewValue    string    `json:"new_value,omitempty"`
	Description string    `json:"description"`
	ChangedBy   string    `json:"changed_by"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}
