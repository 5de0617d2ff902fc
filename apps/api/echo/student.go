package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/audit"
	"github.com/trezcool/kelasi/core/followup"
	"github.com/trezcool/kelasi/core/payment"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/task"
)

type studentApi struct {
	svc         student.Service
	paymentSvc  payment.Service
	followUpSvc followup.Service
	taskSvc     task.Service
	auditSvc    audit.Service
	validate    *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := studentApi{
		svc:         deps.StudentSvc,
		paymentSvc:  deps.PaymentSvc,
		followUpSvc: deps.FollowUpSvc,
		taskSvc:     deps.TaskSvc,
		auditSvc:    deps.AuditSvc,
		validate:    deps.Validate,
	}

	sg := g.Group("/students", jwt, adminMiddleware())
	sg.POST("", api.studentCreate)
	sg.GET("", api.studentQuery)
	sg.GET("/export", api.studentExport)
	sg.GET("/statuses", api.studentQueryStatuses)
	sg.GET("/plans", api.studentQueryPlans)
	sg.DELETE("", api.studentDestroyMultiple)

	dg := sg.Group("/:id")
	dg.GET("", api.studentRetrieve)
	dg.PUT("", api.studentUpdate)
	dg.DELETE("", api.studentDestroy)
	dg.POST("/status", api.studentChangeStatus)
	dg.GET("/history", api.studentHistory)

	dg.GET("/payments", api.studentPayments)
	dg.POST("/payments", api.studentRecordPayment)
	dg.GET("/payments/summary", api.studentPaymentSummary)

	dg.GET("/follow-ups", api.studentFollowUps)
	dg.POST("/follow-ups", api.studentCreateFollowUp)

	dg.GET("/tasks", api.studentTasks)
	dg.POST("/tasks", api.studentCreateTask)
}

func (api *studentApi) getStudent(ctx echo.Context) (student.Student, error) {
	std, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, errHttpNotFound
		}
		return student.Student{}, err
	}
	return std, nil
}

func actorID(ctx echo.Context) string {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return ""
	}
	return claims.Subject
}

func (api *studentApi) studentCreate(ctx echo.Context) error {
	data := new(student.NewStudent)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Create(ctx.Request().Context(), *data, actorID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) studentQuery(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	filter.Clean()

	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return err
	}

	payments, err := api.paymentSvc.All(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, student.BuildDirectory(students, payments))
}

func (api *studentApi) studentExport(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	filter.Clean()

	students, err := api.svc.Query(ctx.Request().Context(), filter, nil)
	if err != nil {
		return err
	}
	payments, err := api.paymentSvc.All(ctx.Request().Context())
	if err != nil {
		return err
	}
	rows := student.BuildDirectory(students, payments)

	filename := fmt.Sprintf("students-%s", time.Now().UTC().Format("2006-01-02"))
	switch ctx.QueryParam("format") {
	case "", "csv":
		res := ctx.Response()
		res.Header().Set(echo.HeaderContentType, "text/csv")
		res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.csv", filename))
		res.WriteHeader(http.StatusOK)
		return student.WriteCSV(res, rows)
	case "json":
		res := ctx.Response()
		res.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.json", filename))
		res.WriteHeader(http.StatusOK)
		return student.WriteJSON(res, rows)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported format")
	}
}

func (api *studentApi) studentQueryStatuses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, student.StatusStyles())
}

func (api *studentApi) studentQueryPlans(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, student.Plans)
}

func (api *studentApi) studentRetrieve(ctx echo.Context) error {
	std, err := api.getStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) studentUpdate(ctx echo.Context) error {
	std, err := api.getStudent(ctx)
	if err != nil {
		return err
	}

	data := new(student.UpdateStudent)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(std, api.validate); err != nil {
		return err
	}

	std, err = api.svc.Update(ctx.Request().Context(), std.ID, *data, actorID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) studentChangeStatus(ctx echo.Context) error {
	std, err := api.getStudent(ctx)
	if err != nil {
		return err
	}

	data := new(student.ChangeStatus)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	std, err = api.svc.ChangeStatus(ctx.Request().Context(), std.ID, data.Status, actorID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) studentDestroy(ctx echo.Context) error {
	std, err := api.getStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), std.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) studentDestroyMultiple(ctx echo.Context) error {
	data := new(DestroyMultipleRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if data.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), data.IDs...); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) studentHistory(ctx echo.Context) error {
	std, err := api.getStudent(ctx)
	if err != nil {
		return err
	}
	entries, err := api.auditSvc.History(ctx.Request().Context(), std.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *studentApi) studentPayments(ctx echo.Context) error {
	std, err := api.getStudent(ctx)
	if err != nil {
		return err
	}
	payments, err := api.paymentSvc.Ledger(ctx.Request().Context(), std.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, payments)
}

// studentRecordPayment accepts a multipart form with the payment fields
// and an optional "receipt" file part.
func (api *studentApi) studentRecordPayment(ctx echo.Context) error {
	std, err := api.getStudent(ctx)
	if err != nil {
		return err
	}

	data := new(payment.NewPayment)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	var receipt *payment.Receipt
	if fh, fErr := ctx.FormFile("receipt"); fErr == nil {
		f, oErr := fh.Open()
		if oErr != nil {
			return errors.Wrap(oErr, "opening receipt upload")
		}
		defer func() { _ = f.Close() }()
		receipt = &payment.Receipt{Filename: fh.Filename, Content: f}
	}

	pmt, err := api.paymentSvc.Record(ctx.Request().Context(), std.ID, *data, receipt, actorID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, pmt)
}

func (api *studentApi) studentPaymentSummary(ctx echo.Context) error {
	std, err := api.getStudent(ctx)
	if err != nil {
		return err
	}
	summary, err := api.paymentSvc.Summary(ctx.Request().Context(), std.ID, std.PlanAmount)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *studentApi) studentFollowUps(ctx echo.Context) error {
	std, err := api.getStudent(ctx)
	if err != nil {
		return err
	}
	fus, err := api.followUpSvc.List(ctx.Request().Context(), std.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, fus)
}

func (api *studentApi) studentCreateFollowUp(ctx echo.Context) error {
	std, err := api.getStudent(ctx)
	if err != nil {
		return err
	}

	data := new(followup.NewFollowUp)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	fu, err := api.followUpSvc.Create(ctx.Request().Context(), std.ID, *data, actorID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, fu)
}

func (api *studentApi) studentTasks(ctx echo.Context) error {
	std, err := api.getStudent(ctx)
	if err != nil {
		return err
	}
	tasks, err := api.taskSvc.List(ctx.Request().Context(), std.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *studentApi) studentCreateTask(ctx echo.Context) error {
	std, err := api.getStudent(ctx)
	if err != nil {
		return err
	}

	data := new(task.NewTask)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	tsk, err := api.taskSvc.Add(ctx.Request().Context(), std.ID, *data, actorID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tsk)
}
