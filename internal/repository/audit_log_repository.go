package repository

import (
	"context"
	"time"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
)

//監査ログの絞り込み条件。

type AuditLogFilter struct {
	ActorOperatorID *int64
	Action          *model.AuditAction
	ResourceType    *model.AuditResourceType
	ResourceID      *string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	Limit           int
	Offset          int
}

// 監査ログの保存・一覧取得の約束。
type AuditLogRepository interface {
	//監査ログを1件保存
	Create(ctx context.Context, log model.AuditLog) error

	//監査ログを条件で一覧取得（新しい順）。
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}

// Limitの既定値と上限
func NormalizeAuditLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
