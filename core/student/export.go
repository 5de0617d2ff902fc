package student

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/payment"
)

// DirectoryRow is a Student annotated with its derived billing state.
type DirectoryRow struct {
	Student
	Paid   int64 `json:"paid"`
	Due    int64 `json:"due"`
	Credit int64 `json:"credit"`
}

// BuildDirectory annotates students with per-student billing summaries
// derived from the given payments.
func BuildDirectory(students []Student, payments []payment.Payment) []DirectoryRow {
	byStudent := make(map[string][]payment.Payment, len(students))
	for _, p := range payments {
		byStudent[p.StudentID] = append(byStudent[p.StudentID], p)
	}

	rows := make([]DirectoryRow, 0, len(students))
	for _, std := range students {
		sum := payment.Summarize(std.PlanAmount, byStudent[std.ID])
		rows = append(rows, DirectoryRow{
			Student: std,
			Paid:    sum.Paid,
			Due:     sum.Due,
			Credit:  sum.Credit,
		})
	}
	return rows
}

var csvHeader = []string{
	"id", "full_name", "phone", "email", "address", "batch", "tags",
	"plan_name", "plan_amount", "current_status", "joining_date",
	"paid", "due", "credit",
}

// WriteCSV writes the directory rows as CSV, one student per line.
func WriteCSV(w io.Writer, rows []DirectoryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "writing CSV header")
	}
	for _, row := range rows {
		rec := []string{
			row.ID,
			row.FullName,
			row.Phone,
			row.Email,
			row.Address,
			row.Batch,
			strings.Join(row.Tags, "|"),
			row.PlanName,
			strconv.FormatInt(row.PlanAmount, 10),
			row.CurrentStatus,
			row.JoiningDate.Format(time.RFC3339),
			strconv.FormatInt(row.Paid, 10),
			strconv.FormatInt(row.Due, 10),
			strconv.FormatInt(row.Credit, 10),
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "writing CSV record")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing CSV")
}

// WriteJSON writes the directory rows as a JSON array.
func WriteJSON(w io.Writer, rows []DirectoryRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(rows), "encoding JSON")
}
