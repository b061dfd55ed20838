package payment

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultRecordTTL is how long a charge outcome is remembered per key.
const DefaultRecordTTL = 24 * time.Hour

// Record is the stored outcome of a charge.
type Record struct {
	Approved      bool            `json:"approved"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
	Reason        string          `json:"reason,omitempty"`
}

func recordOf(res Result) Record {
	switch r := res.(type) {
	case Approved:
		return Record{Approved: true, TransactionID: r.TransactionID, Amount: r.Amount, Timestamp: r.Timestamp}
	case Declined:
		return Record{Reason: r.Reason}
	}
	return Record{}
}

// Result rebuilds the tagged result.
func (r Record) Result() Result {
	if r.Approved {
		return Approved{TransactionID: r.TransactionID, Amount: r.Amount, Timestamp: r.Timestamp}
	}
	return Declined{Reason: r.Reason}
}

// IdempotencyStore remembers charge outcomes by idempotency key.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (Record, bool, error)
	Put(ctx context.Context, key string, rec Record) error
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

// MemoryIdempotencyStore keeps records in process memory.
type MemoryIdempotencyStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultRecordTTL
	}
	return &MemoryIdempotencyStore{ttl: ttl, now: time.Now, entries: map[string]memoryEntry{}}
}

func (s *MemoryIdempotencyStore) Get(ctx context.Context, key string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Record{}, false, nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return Record{}, false, nil
	}
	return e.rec, true, nil
}

func (s *MemoryIdempotencyStore) Put(ctx context.Context, key string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	//期限切れはここで掃除
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = memoryEntry{rec: rec, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryIdempotencyStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
