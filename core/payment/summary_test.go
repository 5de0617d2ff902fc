package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func paid(amounts ...int64) []Payment {
	payments := make([]Payment, 0, len(amounts))
	for _, a := range amounts {
		payments = append(payments, Payment{Amount: a, Paid: true})
	}
	return payments
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name       string
		plan       int64
		payments   []Payment
		wantPaid   int64
		wantDue    int64
		wantCredit int64
	}{
		{name: "no payments", plan: 6999, wantDue: 6999},
		{name: "partial", plan: 6999, payments: paid(2000, 1500), wantPaid: 3500, wantDue: 3499},
		{name: "settled", plan: 2999, payments: paid(2999), wantPaid: 2999},
		{name: "overpaid clamps to zero", plan: 2999, payments: paid(5000), wantPaid: 5000, wantDue: 0, wantCredit: 2001},
		{name: "zero plan", plan: 0, payments: paid(100), wantPaid: 100, wantCredit: 100},
		{
			name: "unpaid installments do not count",
			plan: 6999,
			payments: append(paid(2000), Payment{Amount: 4999, Paid: false}),
			wantPaid: 2000, wantDue: 4999,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.plan, tt.payments)
			assert.Equal(t, tt.wantPaid, got.Paid)
			assert.Equal(t, tt.wantDue, got.Due)
			assert.Equal(t, tt.wantCredit, got.Credit)
			assert.Equal(t, tt.plan, got.PlanAmount)
		})
	}
}

// Due never increases as payments are added.
func TestSummarizeMonotonic(t *testing.T) {
	plan := int64(6999)
	amounts := []int64{500, 1, 2000, 3000, 1500, 700}

	payments := make([]Payment, 0, len(amounts))
	prevDue := Summarize(plan, payments).Due
	for _, a := range amounts {
		payments = append(payments, Payment{Amount: a, Paid: true})
		due := Summarize(plan, payments).Due
		assert.LessOrEqual(t, due, prevDue)
		assert.GreaterOrEqual(t, due, int64(0))
		prevDue = due
	}
}

func TestSumPaidByStudent(t *testing.T) {
	payments := []Payment{
		{StudentID: "s1", Amount: 2000, Paid: true},
		{StudentID: "s1", Amount: 1500, Paid: true},
		{StudentID: "s2", Amount: 100, Paid: true},
		{StudentID: "s2", Amount: 4999, Paid: false},
	}
	sums := SumPaidByStudent(payments)
	assert.Equal(t, int64(3500), sums["s1"])
	assert.Equal(t, int64(100), sums["s2"])
	_, ok := sums["s3"]
	assert.False(t, ok)
}
