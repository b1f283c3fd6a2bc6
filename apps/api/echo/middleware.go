package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/teayouth/portal/core/user"
)

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	if len(roles) == 0 {
		roles = user.AdminRoles
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			principal, err := getContextPrincipal(ctx)
			if err != nil {
				return err
			}
			if principal.HasRolePrefix(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
