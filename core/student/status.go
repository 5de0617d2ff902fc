package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

// Enrollment statuses. A flat lookup set, not a state machine:
// any status may be set directly, with an audit record appended.
const (
	StatusNotStarted         = "not_started"
	StatusWebsiteWorkStarted = "website_work_started"
	StatusStoreReady         = "store_ready"
	StatusStartedSelling     = "started_selling"
	StatusScaling            = "scaling"
	StatusCompleted          = "completed"
)

var AllStatuses = []string{
	StatusNotStarted,
	StatusWebsiteWorkStarted,
	StatusStoreReady,
	StatusStartedSelling,
	StatusScaling,
	StatusCompleted,
}

// StatusStyle is the presentation tuple for a status badge.
type StatusStyle struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var statusStyles = map[string]StatusStyle{
	StatusNotStarted:         {Value: StatusNotStarted, Label: "Not Started", Color: "muted"},
	StatusWebsiteWorkStarted: {Value: StatusWebsiteWorkStarted, Label: "Website Work Started", Color: "blue"},
	StatusStoreReady:         {Value: StatusStoreReady, Label: "Store Ready", Color: "purple"},
	StatusStartedSelling:     {Value: StatusStartedSelling, Label: "Started Selling", Color: "amber"},
	StatusScaling:            {Value: StatusScaling, Label: "Scaling", Color: "green"},
	StatusCompleted:          {Value: StatusCompleted, Label: "Completed", Color: "emerald"},
}

// StatusStyles lists the styles in funnel order.
func StatusStyles() []StatusStyle {
	styles := make([]StatusStyle, 0, len(AllStatuses))
	for _, s := range AllStatuses {
		styles = append(styles, statusStyles[s])
	}
	return styles
}

// StyleFor maps a status to its presentation tuple.
// Unknown statuses fall back to the "not_started" styling.
func StyleFor(status string) StatusStyle {
	if style, ok := statusStyles[status]; ok {
		return style
	}
	return statusStyles[StatusNotStarted]
}

var (
	statusTag  = "status"
	statusText = "invalid status"

	planTag  = "plan"
	planText = "invalid plan"
)

// InitValidators registers the student validators on the given instance.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)

	_ = validate.RegisterValidation(planTag, planValidation)
	core.RegisterCustomTranslation(validate, translator, planTag, planText)
}

func statusValidation(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	for _, s := range AllStatuses {
		if status == s {
			return true
		}
	}
	return false
}

func planValidation(fl validator.FieldLevel) bool {
	_, ok := PlanByName(fl.Field().String())
	return ok
}
