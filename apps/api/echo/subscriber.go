package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core/subscriber"
)

type subscriberApi struct {
	svc      *subscriber.Service
	validate *validator.Validate
}

func registerSubscriberAPI(g *echo.Group, svc *subscriber.Service, validate *validator.Validate) {
	api := subscriberApi{svc: svc, validate: validate}

	sg := g.Group("/subscribers")
	sg.POST("", api.subscribe)
	sg.DELETE("", api.unsubscribe)
}

func (api *subscriberApi) bind(ctx echo.Context) (subscriber.NewSubscriber, error) {
	var data subscriber.NewSubscriber
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to NewSubscriber")
	}
	return data, data.Validate(api.validate)
}

func (api *subscriberApi) subscribe(ctx echo.Context) error {
	data, err := api.bind(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.Subscribe(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "subscribing")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

// unsubscribe is idempotent: unknown tokens are not an error.
func (api *subscriberApi) unsubscribe(ctx echo.Context) error {
	data, err := api.bind(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Unsubscribe(ctx.Request().Context(), data.Token); err != nil {
		return errors.Wrap(err, "unsubscribing")
	}
	return ctx.NoContent(http.StatusNoContent)
}
