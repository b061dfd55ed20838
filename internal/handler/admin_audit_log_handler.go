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

// /admin/audit-logs（MANAGER限定）
type AdminAuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAdminAuditLogHandler(uc *usecase.AuditLogUsecase) *AdminAuditLogHandler {
	return &AdminAuditLogHandler{uc: uc}
}

func (h *AdminAuditLogHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	e.GET("/admin/audit-logs", h.list, g.Manager...)
}

// actor_operator_id / action / resource_type / resource_id / from / to / limit / offset
func parseAuditLogFilter(c echo.Context) (repository.AuditLogFilter, string) {
	var f repository.AuditLogFilter

	if v := c.QueryParam("actor_operator_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			return f, "invalid actor_operator_id"
		}
		f.ActorOperatorID = &id
	}
	if v := strings.TrimSpace(c.QueryParam("action")); v != "" {
		a := model.AuditAction(strings.ToUpper(v))
		f.Action = &a
	}
	if v := strings.TrimSpace(c.QueryParam("resource_type")); v != "" {
		rt := model.AuditResourceType(strings.ToLower(v))
		f.ResourceType = &rt
	}
	if v := strings.TrimSpace(c.QueryParam("resource_id")); v != "" {
		f.ResourceID = &v
	}

	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, "invalid from"
		}
		f.CreatedFrom = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, "invalid to"
		}
		f.CreatedTo = &t
	}

	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return f, "invalid limit"
		}
		f.Limit = l
	}
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return f, "invalid offset"
		}
		f.Offset = o
	}
	return f, ""
}

func (h *AdminAuditLogHandler) list(c echo.Context) error {
	f, msg := parseAuditLogFilter(c)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
