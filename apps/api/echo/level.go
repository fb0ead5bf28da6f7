package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/notification"
)

var errLevelNotFound = core.NewNotFoundError("level")

// LevelResponse is a level portal's header and its latest notifications.
type LevelResponse struct {
	core.Level
	Notifications []notification.Notification `json:"notifications"`
}

type levelApi struct {
	notifSvc *notification.Service
}

func registerLevelAPI(g *echo.Group, notifSvc *notification.Service) {
	api := levelApi{notifSvc: notifSvc}

	lg := g.Group("/levels")
	lg.GET("", api.query)
	lg.GET("/:level", api.retrieve)
}

func (api *levelApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, core.Levels)
}

func (api *levelApi) retrieve(ctx echo.Context) error {
	lvl, ok := core.GetLevel(ctx.Param("level"))
	if !ok {
		return errLevelNotFound
	}
	notifs, err := api.notifSvc.Latest(ctx.Request().Context(), lvl.ID)
	if err != nil {
		return errors.Wrap(err, "querying latest notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, LevelResponse{Level: lvl, Notifications: notifs})
}
