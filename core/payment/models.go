package payment

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

// Payment methods
const (
	MethodCash         = "cash"
	MethodUPI          = "upi"
	MethodBankTransfer = "bank_transfer"
	MethodCard         = "card"
)

var AllMethods = []string{MethodCash, MethodUPI, MethodBankTransfer, MethodCard}

var (
	methodTag  = "paymethod"
	methodText = "invalid payment method"
)

// Payment is money received from (or promised by) a student.
// A Payment with a due date and Paid=false is a scheduled installment;
// it does not count towards the student's paid total until marked paid.
type Payment struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"student_id"`
	Amount      int64      `json:"amount"`
	Method      string     `json:"method"`
	Note        string     `json:"note,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Paid        bool       `json:"paid"`
	ReceiptPath string     `json:"receipt_path,omitempty"`
	RecordedBy  string     `json:"recorded_by"`
	RecordedAt  time.Time  `json:"recorded_at"` // UTC
}

// NewPayment contains information needed to record a Payment.
type NewPayment struct {
	Amount  int64      `json:"amount" validate:"required,min=1"`
	Method  string     `json:"method" validate:"required,paymethod"`
	Note    string     `json:"note" validate:"omitempty,max=500"`
	DueDate *time.Time `json:"due_date"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.Note = core.CleanString(np.Note)
	np.Method = core.CleanString(np.Method, true /* lower */)
	return validate.Struct(np)
}

type QueryFilter struct {
	StudentID string
	Paid      *bool
	DueFrom   time.Time
	DueTo     time.Time
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.Paid == nil && qf.DueFrom.IsZero() && qf.DueTo.IsZero()
}

// InitValidators registers the payment validators on the given instance.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(methodTag, methodValidation)
	core.RegisterCustomTranslation(validate, translator, methodTag, methodText)
}

func methodValidation(fl validator.FieldLevel) bool {
	method := fl.Field().String()
	for _, m := range AllMethods {
		if method == m {
			return true
		}
	}
	return false
}
