package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
)

// adminMiddleware lets through admins that are still configured. It must run after the JWT middleware.
func adminMiddleware(admins core.Admins) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if _, ok := admins.Get(claims.Email); claims.IsAdmin && ok {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
