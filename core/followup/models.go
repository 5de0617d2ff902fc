package followup

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

// FollowUp is a logged interaction with a student.
type FollowUp struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Note      string    `json:"note"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewFollowUp contains information needed to log a new FollowUp.
type NewFollowUp struct {
	Note string `json:"note" validate:"required,max=1000"`
}

func (nf *NewFollowUp) Validate(validate *validator.Validate) error {
	nf.Note = core.CleanString(nf.Note)
	return validate.Struct(nf)
}
