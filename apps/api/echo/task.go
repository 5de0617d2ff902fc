package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/task"
)

type taskApi struct {
	svc task.Service
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := taskApi{svc: deps.TaskSvc}

	tg := g.Group("/tasks", jwt, adminMiddleware())
	tg.POST("/:id/toggle", api.taskToggle)
	tg.DELETE("/:id", api.taskDestroy)
}

func (api *taskApi) taskToggle(ctx echo.Context) error {
	tsk, err := api.svc.ToggleComplete(ctx.Request().Context(), ctx.Param("id"), actorID(ctx))
	if err != nil {
		if errors.Cause(err) == task.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, tsk)
}

func (api *taskApi) taskDestroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
