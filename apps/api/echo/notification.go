package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/notification"
)

type notificationApi struct {
	svc notification.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := notificationApi{svc: deps.NotifSvc}

	ng := g.Group("/notifications", jwt, adminMiddleware())
	ng.GET("", api.notificationQuery)
	ng.POST("/refresh", api.notificationRefresh)
	ng.POST("/read-all", api.notificationMarkAllRead)
	ng.POST("/:id/read", api.notificationMarkRead)
}

func (api *notificationApi) notificationQuery(ctx echo.Context) error {
	unreadOnly := ctx.QueryParam("unread") == "true"
	notifs, err := api.svc.Query(ctx.Request().Context(), unreadOnly)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) notificationRefresh(ctx echo.Context) error {
	if err := api.svc.Refresh(ctx.Request().Context()); err != nil {
		return err
	}
	notifs, err := api.svc.Query(ctx.Request().Context(), false)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) notificationMarkRead(ctx echo.Context) error {
	notif, err := api.svc.MarkRead(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == notification.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, notif)
}

func (api *notificationApi) notificationMarkAllRead(ctx echo.Context) error {
	if err := api.svc.MarkAllRead(ctx.Request().Context()); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
