package handler

import (
	"net/http"

	"github.com/tjmpn2/merchbooth/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 返金（MANAGER限定）
type AdminTransactionHandler struct {
	uc *usecase.TransactionUsecase
}

func NewAdminTransactionHandler(uc *usecase.TransactionUsecase) *AdminTransactionHandler {
	return &AdminTransactionHandler{uc: uc}
}

func (h *AdminTransactionHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	e.POST("/transactions/:id/refund", h.refund, g.Manager...)
}

func (h *AdminTransactionHandler) refund(c echo.Context) error {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Refund(c.Request().Context(), operatorID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
