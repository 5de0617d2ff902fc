package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kelasi/core/audit"
	"github.com/trezcool/kelasi/core/dashboard"
	"github.com/trezcool/kelasi/core/followup"
	"github.com/trezcool/kelasi/core/notification"
	"github.com/trezcool/kelasi/core/payment"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/task"
	"github.com/trezcool/kelasi/core/user"
)

func adminToken(t *testing.T, env *testEnv) string {
	t.Helper()
	usr := env.createUser(t, "Admin", "admin@test.cd", "LePassword7", user.RoleAdmin, true)
	return getToken(t, usr)
}

func Test_studentCreate(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)

	tests := []httpTest{
		{
			name: "unauthenticated", method: http.MethodPost, path: "/v1/students",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "empty body", method: http.MethodPost, path: "/v1/students", token: token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"full_name": "this field is required",
				"phone":     "this field is required",
				"plan_name": "this field is required",
			}),
		},
		{
			name: "unknown plan", method: http.MethodPost, path: "/v1/students", token: token,
			body: marchallObj(t, student.NewStudent{
				FullName: "Jo Mukendi", Phone: "+243811111111", PlanName: "Gold Pack",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"plan_name": "invalid plan"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("success", func(t *testing.T) {
		body := marchallObj(t, student.NewStudent{
			FullName: "Jo Mukendi",
			Phone:    "+243811111111",
			PlanName: "Starter Kit",
			Batch:    "B1",
			Tags:     []string{"referral"},
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", token, body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var got student.Student
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, int64(6999), got.PlanAmount) // resolved from the plan catalog
		assert.Equal(t, student.StatusNotStarted, got.CurrentStatus)
		assert.False(t, got.JoiningDate.IsZero())
	})
}

func Test_studentDirectory(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)
	ctx := context.Background()

	std1 := env.createStudent(t, "Jo Mukendi", "+243811111111", "Starter Kit")   // 6999
	std2 := env.createStudent(t, "Ma Kalala", "+243822222222", "Learning Pack") // 2999

	// std1: 2000 collected; std2: overpaid by 1
	_, err := env.pmtSvc.Record(ctx, std1.ID, payment.NewPayment{Amount: 2000, Method: payment.MethodCash}, nil, "")
	require.NoError(t, err)
	_, err = env.pmtSvc.Record(ctx, std2.ID, payment.NewPayment{Amount: 3000, Method: payment.MethodUPI}, nil, "")
	require.NoError(t, err)

	req, rec := newAuthRequest(http.MethodGet, "/v1/students", token)
	env.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []student.DirectoryRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)

	byID := make(map[string]student.DirectoryRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	assert.Equal(t, int64(2000), byID[std1.ID].Paid)
	assert.Equal(t, int64(4999), byID[std1.ID].Due)
	assert.Equal(t, int64(0), byID[std1.ID].Credit)
	assert.Equal(t, int64(3000), byID[std2.ID].Paid)
	assert.Equal(t, int64(0), byID[std2.ID].Due)
	assert.Equal(t, int64(1), byID[std2.ID].Credit)
}

func Test_studentStatusAndHistory(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)
	std := env.createStudent(t, "Jo Mukendi", "+243811111111", "Starter Kit")

	t.Run("unknown status is rejected", func(t *testing.T) {
		body := marchallObj(t, student.ChangeStatus{Status: "graduated"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/status", token, body)
		env.server.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"status": "invalid status"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("change status", func(t *testing.T) {
		body := marchallObj(t, student.ChangeStatus{Status: student.StatusStoreReady})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/status", token, body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got student.Student
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, student.StatusStoreReady, got.CurrentStatus)
	})

	t.Run("history records the changes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+std.ID+"/history", token)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var entries []audit.Entry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		require.Len(t, entries, 2) // newest first

		assert.Equal(t, audit.ChangeStatusChanged, entries[0].ChangeType)
		assert.Equal(t, student.StatusNotStarted, entries[0].OldValue)
		assert.Equal(t, student.StatusStoreReady, entries[0].NewValue)
		assert.Equal(t, audit.ChangeStudentCreated, entries[1].ChangeType)
	})

	t.Run("unknown student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/nope/history", token)
		env.server.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_studentPayments(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)
	std := env.createStudent(t, "Jo Mukendi", "+243811111111", "Starter Kit") // 6999

	var installment payment.Payment

	t.Run("record immediate payment", func(t *testing.T) {
		body := marchallObj(t, payment.NewPayment{Amount: 3000, Method: payment.MethodCash})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/payments", token, body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var got payment.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.Paid) // no due date, counts right away
	})

	t.Run("record scheduled installment", func(t *testing.T) {
		due := time.Now().UTC().Add(7 * 24 * time.Hour)
		body := marchallObj(t, payment.NewPayment{Amount: 2000, Method: payment.MethodBankTransfer, DueDate: &due})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/payments", token, body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &installment))
		assert.False(t, installment.Paid)
	})

	t.Run("invalid method is rejected", func(t *testing.T) {
		body := marchallObj(t, payment.NewPayment{Amount: 100, Method: "cheque"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/payments", token, body)
		env.server.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"method": "invalid payment method"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("summary ignores unpaid installments", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+std.ID+"/payments/summary", token)
		env.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, payment.Summary{PlanAmount: 6999, Paid: 3000, Due: 3999}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("mark installment paid", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments/"+installment.ID+"/pay", token)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got payment.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.Paid)

		req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+std.ID+"/payments/summary", token)
		env.server.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, payment.Summary{PlanAmount: 6999, Paid: 5000, Due: 1999}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("ledger lists both payments", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+std.ID+"/payments", token)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var pmts []payment.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pmts))
		assert.Len(t, pmts, 2)
	})

	t.Run("delete payment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/payments/"+installment.ID, token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+std.ID+"/payments", token)
		env.server.ServeHTTP(rec, req)
		var pmts []payment.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pmts))
		assert.Len(t, pmts, 1)
	})
}

func Test_studentExport(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)
	env.createStudent(t, "Jo Mukendi", "+243811111111", "Starter Kit")

	t.Run("csv by default", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/export", token)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=students-")

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 2) // header + 1 student
		assert.Equal(t, "id,full_name,phone,email,address,batch,tags,plan_name,plan_amount,current_status,joining_date,paid,due,credit", lines[0])
		assert.Contains(t, lines[1], "Jo Mukendi")
	})

	t.Run("json", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/export?format=json", token)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), ".json")
		var rows []student.DirectoryRow
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		assert.Len(t, rows, 1)
	})

	t.Run("unsupported format", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/export?format=xml", token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_studentCatalogs(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)

	tests := []httpTest{
		{
			name: "statuses in funnel order", method: http.MethodGet, path: "/v1/students/statuses",
			token: token, wantCode: http.StatusOK, wantData: marchallObj(t, student.StatusStyles()),
		},
		{
			name: "plan catalog", method: http.MethodGet, path: "/v1/students/plans",
			token: token, wantCode: http.StatusOK, wantData: marchallObj(t, student.Plans),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentFollowUpsAndTasks(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)
	std := env.createStudent(t, "Jo Mukendi", "+243811111111", "Starter Kit")

	t.Run("log follow-up", func(t *testing.T) {
		body := marchallObj(t, followup.NewFollowUp{Note: "Called; store launch planned next week"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/follow-ups", token, body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+std.ID+"/follow-ups", token)
		env.server.ServeHTTP(rec, req)
		var fus []followup.FollowUp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fus))
		require.Len(t, fus, 1)
		assert.Equal(t, "Called; store launch planned next week", fus[0].Note)
	})

	t.Run("empty follow-up note is rejected", func(t *testing.T) {
		body := marchallObj(t, followup.NewFollowUp{})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/follow-ups", token, body)
		env.server.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"note": "this field is required"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("task lifecycle", func(t *testing.T) {
		due := time.Now().UTC().Add(48 * time.Hour)
		body := marchallObj(t, task.NewTask{Title: "Send onboarding material", DueDate: &due})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/tasks", token, body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var tsk task.Task
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tsk))
		assert.False(t, tsk.Completed)
		require.NotNil(t, tsk.DueDate)

		req, rec = newAuthRequest(http.MethodPost, "/v1/tasks/"+tsk.ID+"/toggle", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tsk))
		assert.True(t, tsk.Completed)
		assert.NotNil(t, tsk.CompletedAt)

		req, rec = newAuthRequest(http.MethodPost, "/v1/tasks/"+tsk.ID+"/toggle", token)
		env.server.ServeHTTP(rec, req)
		tsk = task.Task{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tsk))
		assert.False(t, tsk.Completed)
		assert.Nil(t, tsk.CompletedAt)

		req, rec = newAuthRequest(http.MethodDelete, "/v1/tasks/"+tsk.ID, token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+std.ID+"/tasks", token)
		env.server.ServeHTTP(rec, req)
		var tasks []task.Task
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
		assert.Empty(t, tasks)
	})
}

func Test_notificationFlow(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)
	ctx := context.Background()

	std := env.createStudent(t, "Jo Mukendi", "+243811111111", "Starter Kit")
	due := time.Now().UTC().Add(-48 * time.Hour)
	_, err := env.pmtSvc.Record(ctx, std.ID, payment.NewPayment{Amount: 2000, Method: payment.MethodCash, DueDate: &due}, nil, "")
	require.NoError(t, err)

	var overdueID string

	t.Run("refresh derives overdue", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/notifications/refresh", token)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var notifs []notification.Notification
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notifs))
		require.Len(t, notifs, 1)
		assert.Equal(t, notification.KindOverdue, notifs[0].Kind)
		assert.Equal(t, std.ID, notifs[0].StudentID)
		assert.Equal(t, "Jo Mukendi", notifs[0].StudentName)
		assert.False(t, notifs[0].Read)
		overdueID = notifs[0].ID
	})

	t.Run("mark read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/notifications/"+overdueID+"/read", token)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var notif notification.Notification
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notif))
		assert.True(t, notif.Read)
	})

	t.Run("read flag survives refresh", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/notifications/refresh", token)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var notifs []notification.Notification
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notifs))
		require.Len(t, notifs, 1)
		assert.True(t, notifs[0].Read)

		req, rec = newAuthRequest(http.MethodGet, "/v1/notifications?unread=true", token)
		env.server.ServeHTTP(rec, req)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notifs))
		assert.Empty(t, notifs)
	})

	t.Run("mark unknown notification read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/notifications/nope/read", token)
		env.server.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_dashboardOverview(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)
	ctx := context.Background()

	std1 := env.createStudent(t, "Jo Mukendi", "+243811111111", "Starter Kit")  // 6999
	std2 := env.createStudent(t, "Ma Kalala", "+243822222222", "Learning Pack") // 2999
	_, err := env.stdSvc.ChangeStatus(ctx, std2.ID, student.StatusCompleted, "")
	require.NoError(t, err)
	_, err = env.pmtSvc.Record(ctx, std1.ID, payment.NewPayment{Amount: 2000, Method: payment.MethodCash}, nil, "")
	require.NoError(t, err)
	_, err = env.pmtSvc.Record(ctx, std2.ID, payment.NewPayment{Amount: 2999, Method: payment.MethodUPI}, nil, "")
	require.NoError(t, err)

	req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard", token)
	env.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got dashboard.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, 2, got.TotalStudents)
	assert.Equal(t, 1, got.ActiveStudents) // std2 completed
	assert.Equal(t, 2, got.NewThisWeek)
	assert.Equal(t, 0, got.NeedsAttention)
	assert.Equal(t, int64(4999), got.TotalCollected)
	assert.Equal(t, int64(4999), got.TotalDue)
	assert.Equal(t, 0, got.UnreadNotifications)
	assert.Len(t, got.RecentStudents, 2)

	require.Len(t, got.StatusCounts, len(student.AllStatuses))
	byStatus := make(map[string]int, len(got.StatusCounts))
	for _, sc := range got.StatusCounts {
		byStatus[sc.Value] = sc.Count
	}
	assert.Equal(t, 1, byStatus[student.StatusNotStarted])
	assert.Equal(t, 1, byStatus[student.StatusCompleted])

	t.Run("active students list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/students?filter=active", token)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var rows []student.DirectoryRow
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, std1.ID, rows[0].ID)
	})

	t.Run("due students list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/students?filter=due", token)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var rows []student.DirectoryRow
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, std1.ID, rows[0].ID)
		assert.Equal(t, int64(4999), rows[0].Due)
	})

	t.Run("unknown filter", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/students?filter=lol", token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
