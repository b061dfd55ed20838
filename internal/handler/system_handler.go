package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// /health と /live/transactions
type SystemHandler struct {
	live http.Handler
}

// liveはwebsocketのhub（nilならライブ配信なし）
func NewSystemHandler(live http.Handler) *SystemHandler {
	return &SystemHandler{live: live}
}

func (h *SystemHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	e.GET("/health", h.health)
	if h.live != nil {
		e.GET("/live/transactions", echo.WrapHandler(h.live), g.Operator...)
	}
}

func (h *SystemHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
