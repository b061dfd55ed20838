package handler

import (
	"net/http"

	"github.com/tjmpn2/merchbooth/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 公演・精算・ダッシュボード（参照のみ）
type ReferenceHandler struct {
	events      *usecase.EventUsecase
	settlements *usecase.SettlementUsecase
	dashboard   *usecase.DashboardUsecase
}

func NewReferenceHandler(events *usecase.EventUsecase, settlements *usecase.SettlementUsecase, dashboard *usecase.DashboardUsecase) *ReferenceHandler {
	return &ReferenceHandler{events: events, settlements: settlements, dashboard: dashboard}
}

func (h *ReferenceHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	e.GET("/events", h.listEvents, g.Operator...)
	e.GET("/events/:id", h.event, g.Operator...)
	e.GET("/settlements", h.listSettlements, g.Operator...)
	e.GET("/dashboard", h.getDashboard, g.Operator...)
}

func (h *ReferenceHandler) listEvents(c echo.Context) error {
	out, err := h.events.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReferenceHandler) event(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.events.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReferenceHandler) listSettlements(c echo.Context) error {
	out, err := h.settlements.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReferenceHandler) getDashboard(c echo.Context) error {
	out, err := h.dashboard.Get(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
