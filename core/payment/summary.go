package payment

// Summary is the derived billing state of a student.
// Due is always clamped at 0; an excess over the plan amount shows up as Credit.
type Summary struct {
	PlanAmount int64 `json:"plan_amount"`
	Paid       int64 `json:"paid"`
	Due        int64 `json:"due"`
	Credit     int64 `json:"credit"`
}

// Summarize computes the paid total and remaining due for a plan amount
// over the given payments. Only payments marked paid count.
func Summarize(planAmount int64, payments []Payment) Summary {
	var paid int64
	for _, p := range payments {
		if p.Paid {
			paid += p.Amount
		}
	}
	due := planAmount - paid
	var credit int64
	if due < 0 {
		credit = -due
		due = 0
	}
	return Summary{
		PlanAmount: planAmount,
		Paid:       paid,
		Due:        due,
		Credit:     credit,
	}
}

// SumPaidByStudent totals paid amounts per student.
func SumPaidByStudent(payments []Payment) map[string]int64 {
	sums := make(map[string]int64)
	for _, p := range payments {
		if p.Paid {
			sums[p.StudentID] += p.Amount
		}
	}
	return sums
}
