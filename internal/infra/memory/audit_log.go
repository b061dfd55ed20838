package memory

import (
	"context"
	"time"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

type auditLogRepo struct {
	s  *Store
	tx *state
}

func (r *auditLogRepo) Create(ctx context.Context, log model.AuditLog) error {
	return r.s.with(r.tx, func(st *state) error {
		st.nextAuditID++
		log.ID = st.nextAuditID
		if log.CreatedAt.IsZero() {
			log.CreatedAt = time.Now()
		}
		st.audits = append(st.audits, log)
		return nil
	})
}

func (r *auditLogRepo) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	limit := repo.NormalizeAuditLimit(f.Limit)
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	out := []model.AuditLog{}
	err := r.s.with(r.tx, func(st *state) error {
		skipped := 0
		//新しい順
		for i := len(st.audits) - 1; i >= 0; i-- {
			l := st.audits[i]
			if f.ActorOperatorID != nil && l.ActorOperatorID != *f.ActorOperatorID {
				continue
			}
			if f.Action != nil && l.Action != *f.Action {
				continue
			}
			if f.ResourceType != nil && l.ResourceType != *f.ResourceType {
				continue
			}
			if f.ResourceID != nil && l.ResourceID != *f.ResourceID {
				continue
			}
			if f.CreatedFrom != nil && l.CreatedAt.Before(*f.CreatedFrom) {
				continue
			}
			if f.CreatedTo != nil && l.CreatedAt.After(*f.CreatedTo) {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			out = append(out, l)
			if len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}
