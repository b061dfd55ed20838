package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	"github.com/tjmpn2/merchbooth/internal/obs"
	"github.com/tjmpn2/merchbooth/internal/payment"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

const maxTransactionLimit = 500

type TransactionUsecase struct {
	transactions repo.TransactionRepository
	tx           repo.TransactionManager
	gateway      payment.Gateway
	announce     announcer

	//返金は1件ずつ
	refundMu sync.Mutex
}

func NewTransactionUsecase(
	transactions repo.TransactionRepository,
	tx repo.TransactionManager,
	gateway payment.Gateway,
	publisher SalePublisher,
	notifier LiveNotifier,
) *TransactionUsecase {
	return &TransactionUsecase{
		transactions: transactions,
		tx:           tx,
		gateway:      gateway,
		announce:     announcer{publisher: publisher, notifier: notifier},
	}
}

// 売上履歴（新しい順）
func (u *TransactionUsecase) List(ctx context.Context, f repo.TransactionListFilter) ([]model.Transaction, error) {
	if f.Limit < 0 || f.Limit > maxTransactionLimit {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	switch f.Status {
	case "", model.TransactionStatusCompleted, model.TransactionStatusRefunded:
	default:
		return nil, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, NewHTTPError(http.StatusBadRequest, "from must be <= to")
	}

	items, err := u.transactions.List(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *TransactionUsecase) Get(ctx context.Context, id string) (model.Transaction, error) {
	if id == "" {
		return model.Transaction{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := u.transactions.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Transaction{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Transaction{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return t, nil
}

// Refund returns the money through the gateway, then marks the sale refunded
// and puts every line back into stock.
func (u *TransactionUsecase) Refund(ctx context.Context, operatorID int64, id string) (model.Transaction, error) {
	if operatorID <= 0 {
		return model.Transaction{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	u.refundMu.Lock()
	defer u.refundMu.Unlock()

	t, err := u.Get(ctx, id)
	if err != nil {
		return model.Transaction{}, err
	}
	if t.IsRefunded() {
		return model.Transaction{}, NewHTTPError(http.StatusBadRequest, ErrAlreadyRefunded.Error())
	}

	before, err := json.Marshal(t)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("audit refund %s: %w", t.ID, err)
	}

	res, err := u.gateway.Refund(ctx, t.ID, t.Total)
	if err != nil {
		return model.Transaction{}, &PaymentError{Reason: err.Error(), Err: err}
	}

	refundedAt := res.Timestamp
	if refundedAt.IsZero() {
		refundedAt = time.Now()
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Transactions().MarkRefunded(ctx, t.ID, res.RefundID, refundedAt); err != nil {
			return err
		}
		//在庫戻し
		for _, l := range t.Lines {
			if err := r.Inventory().IncrementStock(ctx, l.ProductID, l.Variant, l.Quantity); err != nil {
				return err
			}
		}
		updated, err := r.Transactions().FindByID(ctx, t.ID)
		if err != nil {
			return err
		}
		after, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("audit refund %s: %w", t.ID, err)
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorOperatorID: operatorID,
			Action:          model.AuditActionRefund,
			ResourceType:    model.AuditResourceTransaction,
			ResourceID:      t.ID,
			BeforeJSON:      string(before),
			AfterJSON:       string(after),
			CreatedAt:       refundedAt,
		}); err != nil {
			return err
		}
		t = updated
		return nil
	})
	if err != nil {
		//お金は返っているので記録の失敗は目立たせる
		obs.Logger.Error("refund not recorded", "transaction_id", t.ID, "refund_id", res.RefundID, "err", err)
		return model.Transaction{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	obs.Logger.Info("sale refunded", "transaction_id", t.ID, "refund_id", res.RefundID)
	u.announce.saleRefunded(ctx, t)
	return t, nil
}
