package handler

import (
	"net/http"

	"github.com/tjmpn2/merchbooth/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 在庫更新の入力
type InventoryUpdateRequest struct {
	Variant string `json:"variant"`
	Stock   int64  `json:"stock"`
	Reason  string `json:"reason"`
}

// /admin/inventory（MANAGER限定）
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	admin := e.Group("/admin", g.Manager...)
	admin.PUT("/inventory/:product_id", h.updateInventory)
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	p, err := h.uc.AdjustStock(c.Request().Context(), operatorID, productID, usecase.AdjustStockInput{
		Variant:  req.Variant,
		NewStock: req.Stock,
		Reason:   req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}
