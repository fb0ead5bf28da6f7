package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/notification"
)

type notificationApi struct {
	svc      *notification.Service
	validate *validator.Validate
}

func registerNotificationAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *notification.Service,
	validate *validator.Validate,
	admins core.Admins,
) {
	api := notificationApi{svc: svc, validate: validate}

	ng := g.Group("/notifications")
	ng.GET("", api.query)
	ng.GET("/:id", api.retrieve)

	// admin endpoints
	admin := []echo.MiddlewareFunc{jwt, adminMiddleware(admins)}
	ng.POST("", api.create, admin...)
	ng.DELETE("/:id", api.destroy, admin...)
}

func (api *notificationApi) query(ctx echo.Context) error {
	var filter listing.Filter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to listing.Filter")
	}
	page, err := pageNumber(ctx)
	if err != nil {
		return err
	}

	notifs, err := api.svc.Query(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) retrieve(ctx echo.Context) error {
	notif, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting notification")
	}
	return ctx.JSON(http.StatusOK, notif)
}

func (api *notificationApi) create(ctx echo.Context) error {
	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	notif, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating notification")
	}
	return ctx.JSON(http.StatusCreated, notif)
}

func (api *notificationApi) destroy(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	notif, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting notification")
	}
	if err = api.svc.Delete(reqCtx, notif.ID); err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return ctx.NoContent(http.StatusNoContent)
}
