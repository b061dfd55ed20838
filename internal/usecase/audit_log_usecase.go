package usecase

import (
	"context"
	"net/http"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

// 監査ログの閲覧（MANAGER）
type AuditLogUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditLogUsecase(logs repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs}
}

// List returns audit entries newest first. Limit falls back to the default
// page size when unset or too large.
func (u *AuditLogUsecase) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if f.Action != nil {
		switch *f.Action {
		case model.AuditActionUpdateStock, model.AuditActionSale, model.AuditActionRefund:
		default:
			return nil, NewHTTPError(http.StatusBadRequest, "invalid action")
		}
	}
	if f.ResourceType != nil {
		switch *f.ResourceType {
		case model.AuditResourceProduct, model.AuditResourceTransaction:
		default:
			return nil, NewHTTPError(http.StatusBadRequest, "invalid resource_type")
		}
	}
	if f.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return nil, NewHTTPError(http.StatusBadRequest, "from must be <= to")
	}
	f.Limit = repo.NormalizeAuditLimit(f.Limit)

	items, err := u.logs.List(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}
