package usecase

import (
	"context"
	"time"

	"github.com/tjmpn2/merchbooth/internal/queue"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 売上イベントの発行先（RabbitMQ）。nilなら発行しない。
type SalePublisher interface {
	PublishSaleCommitted(ctx context.Context, ev queue.SaleCommittedEvent) error
	PublishSaleRefunded(ctx context.Context, ev queue.SaleRefundedEvent) error
}

// ダッシュボードへのライブ通知（websocket hub）。nilなら通知しない。
type LiveNotifier interface {
	Publish(msgType string, data any)
}

const publishTimeout = 3 * time.Second
