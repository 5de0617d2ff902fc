package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/kelasi/core/dashboard"
)

type dashboardApi struct {
	svc dashboard.Service
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := dashboardApi{svc: deps.DashboardSvc}

	dg := g.Group("/dashboard", jwt, adminMiddleware())
	dg.GET("", api.dashboardOverview)
	dg.GET("/students", api.dashboardStudents)
}

func (api *dashboardApi) dashboardOverview(ctx echo.Context) error {
	overview, err := api.svc.Overview(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, overview)
}

func (api *dashboardApi) dashboardStudents(ctx echo.Context) error {
	filter := ctx.QueryParam("filter")
	switch filter {
	case dashboard.ListAll, dashboard.ListActive, dashboard.ListDue: // pass
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown filter")
	}

	rows, err := api.svc.Students(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}
