// Package memory is the in-process implementation of the repository ports.
// It is the default store: everything lives in RAM and is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

type state struct {
	products      map[int64]model.Product
	productOrder  []int64
	nextProductID int64

	//新しい順
	transactions []model.Transaction

	events      []model.Event
	settlements []model.Settlement

	audits      []model.AuditLog
	nextAuditID int64

	adjustments []model.InventoryAdjustment
	nextAdjID   int64

	operators      map[int64]model.Operator
	nextOperatorID int64
}

func newState() *state {
	return &state{
		products:  map[int64]model.Product{},
		operators: map[int64]model.Operator{},
	}
}

// commitで差し替えるためのディープコピー
func (s *state) clone() *state {
	cp := &state{
		products:       make(map[int64]model.Product, len(s.products)),
		productOrder:   append([]int64(nil), s.productOrder...),
		nextProductID:  s.nextProductID,
		transactions:   make([]model.Transaction, 0, len(s.transactions)),
		events:         append([]model.Event(nil), s.events...),
		settlements:    append([]model.Settlement(nil), s.settlements...),
		audits:         append([]model.AuditLog(nil), s.audits...),
		nextAuditID:    s.nextAuditID,
		adjustments:    append([]model.InventoryAdjustment(nil), s.adjustments...),
		nextAdjID:      s.nextAdjID,
		operators:      make(map[int64]model.Operator, len(s.operators)),
		nextOperatorID: s.nextOperatorID,
	}
	for id, p := range s.products {
		cp.products[id] = p.Clone()
	}
	for _, t := range s.transactions {
		cp.transactions = append(cp.transactions, t.Clone())
	}
	for id, op := range s.operators {
		cp.operators[id] = op
	}
	return cp
}

// Store owns every collection behind one mutex.
type Store struct {
	mu    sync.Mutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

// tx != nil のときはWithinTxがロック済み
func (s *Store) with(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func (s *Store) Products() repo.ProductRepository         { return &productRepo{s: s} }
func (s *Store) Inventory() repo.InventoryRepository      { return &inventoryRepo{s: s} }
func (s *Store) Transactions() repo.TransactionRepository { return &transactionRepo{s: s} }
func (s *Store) AuditLogs() repo.AuditLogRepository       { return &auditLogRepo{s: s} }
func (s *Store) Events() repo.EventRepository             { return &eventRepo{s: s} }
func (s *Store) Settlements() repo.SettlementRepository   { return &settlementRepo{s: s} }
func (s *Store) Operators() repo.OperatorRepository       { return &operatorRepo{s: s} }

type txRepos struct {
	s  *Store
	st *state
}

func (r *txRepos) Products() repo.ProductRepository { return &productRepo{s: r.s, tx: r.st} }
func (r *txRepos) Inventory() repo.InventoryRepository {
	return &inventoryRepo{s: r.s, tx: r.st}
}
func (r *txRepos) Transactions() repo.TransactionRepository {
	return &transactionRepo{s: r.s, tx: r.st}
}
func (r *txRepos) AuditLogs() repo.AuditLogRepository { return &auditLogRepo{s: r.s, tx: r.st} }

// WithinTx runs fn against a private copy of the state and swaps it in only
// when fn returns nil. Transactions are serialized.
func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(&txRepos{s: s, st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// シード投入（公演・精算は参照データなのでポート経由では作らない）
func (s *Store) LoadReference(events []model.Event, settlements []model.Settlement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.events = append(s.state.events, events...)
	s.state.settlements = append(s.state.settlements, settlements...)
}
