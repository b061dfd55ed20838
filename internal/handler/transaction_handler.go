package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	"github.com/tjmpn2/merchbooth/internal/repository"
	"github.com/tjmpn2/merchbooth/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /transactions（売上履歴）
type TransactionHandler struct {
	uc *usecase.TransactionUsecase
}

func NewTransactionHandler(uc *usecase.TransactionUsecase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

func (h *TransactionHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	tx := e.Group("/transactions", g.Operator...)

	tx.GET("", h.list)
	tx.GET("/:id", h.detail)
}

// event_id / status / from / to / limit をfilterにする
func parseTransactionFilter(c echo.Context) (repository.TransactionListFilter, string) {
	var f repository.TransactionListFilter

	if v := c.QueryParam("event_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, "invalid event_id"
		}
		f.EventID = &id
	}

	f.Status = model.TransactionStatus(strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))))

	//RFC3339
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, "invalid from"
		}
		f.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, "invalid to"
		}
		f.To = &t
	}

	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return f, "invalid limit"
		}
		f.Limit = l
	}
	return f, ""
}

func (h *TransactionHandler) list(c echo.Context) error {
	f, msg := parseTransactionFilter(c)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TransactionHandler) detail(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
