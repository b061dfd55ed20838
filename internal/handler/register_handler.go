package handler

import (
	"net/http"

	"github.com/tjmpn2/merchbooth/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /registerのHTTP（カート・公演選択・会計）
type RegisterHandler struct {
	uc *usecase.RegisterUsecase
}

// DI
func NewRegisterHandler(uc *usecase.RegisterUsecase) *RegisterHandler {
	return &RegisterHandler{uc: uc}
}

type CartItemRequest struct {
	ProductID int64  `json:"product_id" query:"product_id"`
	Variant   string `json:"variant" query:"variant"`
}

type UpdateCartItemRequest struct {
	ProductID int64  `json:"product_id"`
	Variant   string `json:"variant"`
	Delta     int64  `json:"delta"`
}

type SelectEventRequest struct {
	//nullで選択解除
	EventID *int64 `json:"event_id"`
}

type CheckoutRequest struct {
	Token          string `json:"token"`
	IdempotencyKey string `json:"idempotency_key"`
}

func (h *RegisterHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	r := e.Group("/register", g.Operator...)

	r.GET("/cart", h.getCart)
	r.DELETE("/cart", h.clearCart)
	r.POST("/cart/items", h.addItem)
	r.PATCH("/cart/items", h.patchItem)
	r.DELETE("/cart/items", h.deleteItem)
	r.PUT("/event", h.selectEvent)
	r.POST("/checkout", h.checkout)
}

func (h *RegisterHandler) getCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.Cart(c.Request().Context()))
}

func (h *RegisterHandler) clearCart(c echo.Context) error {
	out, err := h.uc.ClearCart(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RegisterHandler) addItem(c echo.Context) error {
	var req CartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddToCart(c.Request().Context(), req.ProductID, req.Variant)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *RegisterHandler) patchItem(c echo.Context) error {
	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateQuantity(c.Request().Context(), req.ProductID, req.Variant, req.Delta)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// DELETEはbodyでもqueryでも明細を指定できる
func (h *RegisterHandler) deleteItem(c echo.Context) error {
	var req CartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.RemoveFromCart(c.Request().Context(), req.ProductID, req.Variant)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *RegisterHandler) selectEvent(c echo.Context) error {
	var req SelectEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.SelectEvent(c.Request().Context(), req.EventID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *RegisterHandler) checkout(c echo.Context) error {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//二重送信防止キーはbody優先、無ければヘッダー
	key := req.IdempotencyKey
	if key == "" {
		key = c.Request().Header.Get("X-Idempotency-Key")
	}

	tx, err := h.uc.Checkout(c.Request().Context(), usecase.CheckoutInput{
		OperatorID:     operatorID,
		Token:          req.Token,
		IdempotencyKey: key,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, tx)
}
