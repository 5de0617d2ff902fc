package student

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kelasi/core/payment"
)

func TestBuildDirectory(t *testing.T) {
	students := []Student{
		{ID: "s1", FullName: "Jo Mukendi", PlanName: "Starter Kit", PlanAmount: 6999},
		{ID: "s2", FullName: "Ma Kalala", PlanName: "Learning Pack", PlanAmount: 2999},
		{ID: "s3", FullName: "Awe Ilunga", PlanName: "Learning Pack", PlanAmount: 2999},
	}
	payments := []payment.Payment{
		{StudentID: "s1", Amount: 2000, Paid: true},
		{StudentID: "s1", Amount: 4999, Paid: false}, // scheduled, does not count
		{StudentID: "s2", Amount: 3000, Paid: true},
		{StudentID: "sX", Amount: 100, Paid: true}, // deleted student, ignored
	}

	rows := BuildDirectory(students, payments)
	require.Len(t, rows, 3)

	assert.Equal(t, int64(2000), rows[0].Paid)
	assert.Equal(t, int64(4999), rows[0].Due)
	assert.Equal(t, int64(3000), rows[1].Paid)
	assert.Equal(t, int64(0), rows[1].Due)
	assert.Equal(t, int64(1), rows[1].Credit)
	assert.Equal(t, int64(0), rows[2].Paid)
	assert.Equal(t, int64(2999), rows[2].Due)
}

func TestWriteCSV(t *testing.T) {
	joined := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []DirectoryRow{
		{
			Student: Student{
				ID: "s1", FullName: "Jo Mukendi", Phone: "+243811111111",
				Tags: []string{"referral", "batch-1"}, PlanName: "Starter Kit", PlanAmount: 6999,
				CurrentStatus: StatusStoreReady, JoiningDate: joined,
			},
			Paid: 2000, Due: 4999,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, csvHeader, recs[0])
	assert.Equal(t, []string{
		"s1", "Jo Mukendi", "+243811111111", "", "", "", "referral|batch-1",
		"Starter Kit", "6999", StatusStoreReady, "2021-03-01T00:00:00Z",
		"2000", "4999", "0",
	}, recs[1])
}
