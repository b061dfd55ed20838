package usecase

import (
	"context"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	"github.com/tjmpn2/merchbooth/internal/obs"
	"github.com/tjmpn2/merchbooth/internal/queue"
)

// 確定後の通知。失敗しても売上は取り消さない。
type announcer struct {
	publisher SalePublisher
	notifier  LiveNotifier
}

func (a announcer) saleCommitted(ctx context.Context, t model.Transaction) {
	ev := queue.NewSaleCommitted(t)
	if a.publisher != nil {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := a.publisher.PublishSaleCommitted(pctx, ev); err != nil {
			obs.Logger.Warn("sale event not published", "transaction_id", t.ID, "err", err)
		}
	}
	if a.notifier != nil {
		a.notifier.Publish(queue.SaleCommitted, ev)
	}
}

func (a announcer) saleRefunded(ctx context.Context, t model.Transaction) {
	ev := queue.NewSaleRefunded(t)
	if a.publisher != nil {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := a.publisher.PublishSaleRefunded(pctx, ev); err != nil {
			obs.Logger.Warn("refund event not published", "transaction_id", t.ID, "err", err)
		}
	}
	if a.notifier != nil {
		a.notifier.Publish(queue.SaleRefunded, ev)
	}
}
