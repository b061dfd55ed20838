package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tjmpn2/merchbooth/internal/repository"
)

// 停止されたオペレーターやroleが変わったトークンを弾く。
func ActiveOperatorGuard(operators repository.OperatorRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたoperator_idを取得する
			operatorID, ok := c.Get(CtxOperatorIDKey).(int64)
			if !ok || operatorID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			role, _ := c.Get(CtxOperatorRoleKey).(string)

			op, err := operators.FindByID(c.Request().Context(), operatorID)
			if err != nil || op == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if !op.IsActive || string(op.Role) != role {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			return next(c)
		}
	}
}
