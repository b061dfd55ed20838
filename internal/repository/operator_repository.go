package repository

import (
	"context"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
)

// 保存・取得を約束
type OperatorRepository interface {
	//新規作成（同名はErrConflict）
	Create(ctx context.Context, op *model.Operator) error
	FindByID(ctx context.Context, id int64) (*model.Operator, error)
	FindByName(ctx context.Context, name string) (*model.Operator, error)
	//最終ログイン時刻などの更新
	Update(ctx context.Context, op *model.Operator) error
}
