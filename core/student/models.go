package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

// Plan is a priced enrollment package.
type Plan struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// Plans is the fixed plan catalog students enroll on.
var Plans = []Plan{
	{Name: "Learning Pack", Amount: 2999},
	{Name: "Starter Kit", Amount: 6999},
	{Name: "Branded DS", Amount: 7999},
}

func PlanByName(name string) (Plan, bool) {
	for _, p := range Plans {
		if p.Name == name {
			return p, true
		}
	}
	return Plan{}, false
}

type Student struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	Batch         string    `json:"batch,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	PlanName      string    `json:"plan_name"`
	PlanAmount    int64     `json:"plan_amount"`
	CurrentStatus string    `json:"current_status"`
	JoiningDate   time.Time `json:"joining_date"` // UTC
	CreatedAt     time.Time `json:"created_at"`   // UTC
	UpdatedAt     time.Time `json:"updated_at"`   // UTC
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	FullName    string    `json:"full_name" validate:"required,max=100"`
	Phone       string    `json:"phone" validate:"required,max=20"`
	Email       string    `json:"email" validate:"omitempty,email,max=255"`
	Address     string    `json:"address" validate:"omitempty,max=500"`
	Batch       string    `json:"batch"`
	Tags        []string  `json:"tags"`
	PlanName    string    `json:"plan_name" validate:"required,plan"`
	JoiningDate time.Time `json:"joining_date"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FullName = core.CleanString(ns.FullName)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Address = core.CleanString(ns.Address)
	ns.Batch = core.CleanString(ns.Batch)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Empty fields keep their current value.
type UpdateStudent struct {
	FullName string   `json:"full_name" validate:"omitempty,max=100"`
	Phone    string   `json:"phone" validate:"omitempty,max=20"`
	Email    string   `json:"email" validate:"omitempty,email,max=255"`
	Address  string   `json:"address" validate:"omitempty,max=500"`
	Batch    string   `json:"batch"`
	Tags     []string `json:"tags"`
	PlanName string   `json:"plan_name" validate:"omitempty,plan"`
}

func (us *UpdateStudent) Validate(origStd Student, validate *validator.Validate) error {
	if name := core.CleanString(us.FullName); name != "" {
		us.FullName = name
	} else {
		us.FullName = origStd.FullName
	}
	if phone := core.CleanString(us.Phone); phone != "" {
		us.Phone = phone
	} else {
		us.Phone = origStd.Phone
	}
	if email := core.CleanString(us.Email, true /* lower */); email != "" {
		us.Email = email
	} else {
		us.Email = origStd.Email
	}
	if addr := core.CleanString(us.Address); addr != "" {
		us.Address = addr
	} else {
		us.Address = origStd.Address
	}
	if batch := core.CleanString(us.Batch); batch != "" {
		us.Batch = batch
	} else {
		us.Batch = origStd.Batch
	}
	if us.Tags == nil {
		us.Tags = origStd.Tags
	}
	if us.PlanName == "" {
		us.PlanName = origStd.PlanName
	}
	return validate.Struct(us)
}

// ChangeStatus carries a direct status transition; any known status may be set.
type ChangeStatus struct {
	Status string `json:"status" validate:"required,status"`
}

func (cs *ChangeStatus) Validate(validate *validator.Validate) error {
	cs.Status = core.CleanString(cs.Status, true /* lower */)
	return validate.Struct(cs)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Status      string    `query:"status"`
	Batch       string    `query:"batch"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == "" && qf.Batch == "" && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Batch = core.CleanString(qf.Batch)
}
