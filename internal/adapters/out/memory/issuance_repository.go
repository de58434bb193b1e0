// internal/adapters/out/memory/issuance_repository.go
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	issuancedom "minter/internal/domain/issuance"
)

// IssuanceRepository は ISSUANCE_STORE=memory 用の RecordRepository です。
// プロセス終了で消えるため、ローカル実行とテスト専用です。
type IssuanceRepository struct {
	mu      sync.RWMutex
	records map[string]issuancedom.Record
}

var _ issuancedom.RecordRepository = (*IssuanceRepository)(nil)

func NewIssuanceRepository() *IssuanceRepository {
	return &IssuanceRepository{records: make(map[string]issuancedom.Record)}
}

func (r *IssuanceRepository) Save(_ context.Context, rec issuancedom.Record) (issuancedom.Record, error) {
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := rec.Validate(); err != nil {
		return issuancedom.Record{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = copyRecord(rec)
	return copyRecord(rec), nil
}

func (r *IssuanceRepository) GetByID(_ context.Context, id string) (issuancedom.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[strings.TrimSpace(id)]
	if !ok {
		return issuancedom.Record{}, issuancedom.ErrNotFound
	}
	return copyRecord(rec), nil
}

func (r *IssuanceRepository) ListByMint(_ context.Context, mintAddress string) ([]issuancedom.Record, error) {
	mintAddress = strings.TrimSpace(mintAddress)

	r.mu.RLock()
	out := make([]issuancedom.Record, 0)
	for _, rec := range r.records {
		if rec.MintAddress == mintAddress {
			out = append(out, copyRecord(rec))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func copyRecord(rec issuancedom.Record) issuancedom.Record {
	rec.Steps = append([]string{}, rec.Steps...)
	if rec.SubmittedAt != nil {
		t := *rec.SubmittedAt
		rec.SubmittedAt = &t
	}
	return rec
}
