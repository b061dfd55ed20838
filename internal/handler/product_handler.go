package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tjmpn2/merchbooth/internal/middleware"
	"github.com/tjmpn2/merchbooth/internal/obs"
	"github.com/tjmpn2/merchbooth/internal/repository"
	"github.com/tjmpn2/merchbooth/internal/usecase"
	auth "github.com/tjmpn2/merchbooth/internal/usecase/auth_usecase"
	"github.com/tjmpn2/merchbooth/internal/validator"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//レジ操作のエラー
	var pe *usecase.PaymentError
	switch {
	case errors.As(err, &pe):
		return c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: pe.Error()})
	case errors.Is(err, usecase.ErrEmptyCart),
		errors.Is(err, usecase.ErrUnknownVariant):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrCheckoutInProgress),
		errors.Is(err, usecase.ErrInsufficientStock),
		errors.Is(err, usecase.ErrOutOfStock):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrOperatorInactive):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, validator.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	//500
	obs.Logger.Error("unhandled error", "method", c.Request().Method, "path", c.Path(), "err", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// Guards are the middleware chains a route group needs.
type Guards struct {
	// JWT + 有効なオペレーター
	Operator []echo.MiddlewareFunc
	// 上に加えてMANAGER限定
	Manager []echo.MiddlewareFunc
}

func NewGuards(secret string, operators repository.OperatorRepository) Guards {
	operator := []echo.MiddlewareFunc{
		middleware.AuthJWT(secret),
		middleware.ActiveOperatorGuard(operators),
	}
	manager := append(append([]echo.MiddlewareFunc{}, operator...), middleware.ManagerRoleGuard())
	return Guards{Operator: operator, Manager: manager}
}

// middleware.AuthJWT が c.Set("operator_id", int64) した値を取り出す
func getOperatorIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxOperatorIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// /products と /inventory
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	e.GET("/products", h.list, g.Operator...)
	e.GET("/products/:id", h.detail, g.Operator...)
	e.GET("/inventory", h.inventory, g.Operator...)
}

func (h *ProductHandler) list(c echo.Context) error {
	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Category: c.QueryParam("category"),
		Q:        c.QueryParam("q"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	p, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) inventory(c echo.Context) error {
	out, err := h.uc.Inventory(c.Request().Context(), usecase.ListProductsInput{
		Category: c.QueryParam("category"),
		Q:        c.QueryParam("q"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
