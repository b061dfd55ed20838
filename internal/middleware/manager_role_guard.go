package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
)

//contextに入っているroleがMANAGERかどうかを確認します。

func ManagerRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxOperatorRoleKey).(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//CASHIERは拒否、MANAGERだけ許可
			if model.Role(role) != model.RoleManager {
				return c.JSON(http.StatusForbidden, errorJSON("manager only"))
			}

			return next(c)
		}
	}
}
