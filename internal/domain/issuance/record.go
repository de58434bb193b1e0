// internal/domain/issuance/record.go
package issuance

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ------------------------------------------------------
// Entity: Record (issuances コレクション / テーブル 1 レコード)
// ------------------------------------------------------
//
// 発行結果の監査用レコードです。台帳側の状態はチェーンが正であり、
// ここにはリクエスト内容と実行結果 (成功 / 失敗ステップ) だけを残します。
type Record struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Status      Status     `json:"status"`
	MintAddress string     `json:"mintAddress"`
	Authority   string     `json:"authority"`
	TokenAcct   string     `json:"tokenAccount"`
	Metadata    string     `json:"metadata"`
	Edition     string     `json:"edition,omitempty"`
	Name        string     `json:"name"`
	Symbol      string     `json:"symbol"`
	URI         string     `json:"uri"`
	Decimals    uint8      `json:"decimals"`
	Amount      uint64     `json:"amount"`
	Steps       []string   `json:"steps"`
	FailedStep  string     `json:"failedStep,omitempty"`
	Error       string     `json:"error,omitempty"`
	Signature   string     `json:"signature,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
}

type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusSimulated Status = "simulated"
	StatusFailed    Status = "failed"
)

var (
	ErrInvalidRecordID     = errors.New("issuance: invalid record id")
	ErrInvalidRecordStatus = errors.New("issuance: invalid record status")
	ErrInvalidRecordMint   = errors.New("issuance: invalid record mintAddress")
)

// Validate はレコードの整合性を確認します。
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrInvalidRecordID
	}
	switch r.Status {
	case StatusSubmitted, StatusSimulated, StatusFailed:
	default:
		return ErrInvalidRecordStatus
	}
	if strings.TrimSpace(r.MintAddress) == "" {
		return ErrInvalidRecordMint
	}
	if r.Status == StatusSubmitted && strings.TrimSpace(r.Signature) == "" {
		return ErrInvalidRecordStatus
	}
	return nil
}

// NewRecord は variant / bundle / trace から Record を組み立てます。
// runErr が nil でなければ失敗レコードになります。
func NewRecord(id string, v Variant, b Bundle, trace Trace, runErr error, now time.Time) Record {
	d := Project(v)
	r := Record{
		ID:          strings.TrimSpace(id),
		Kind:        v.Kind().String(),
		MintAddress: b.Mint.String(),
		Authority:   b.Authority.String(),
		TokenAcct:   b.TokenAccount.String(),
		Metadata:    b.Metadata.String(),
		Name:        d.Name,
		Symbol:      d.Symbol,
		URI:         d.URI,
		Steps:       make([]string, 0, len(trace)),
		CreatedAt:   now.UTC(),
	}
	if b.Edition != nil {
		r.Edition = b.Edition.String()
	}
	if p, err := policyFor(v); err == nil {
		r.Decimals = p.decimals(v)
		if amt, err := p.amount(v); err == nil {
			r.Amount = amt
		}
	}
	for _, s := range trace {
		r.Steps = append(r.Steps, s.String())
	}

	if runErr != nil {
		r.Status = StatusFailed
		r.Error = runErr.Error()
		if s, ok := FailedStep(runErr); ok {
			r.FailedStep = s.String()
		}
	}
	return r
}

// MarkSubmitted は送信済みとしてシグネチャを記録します。
func (r *Record) MarkSubmitted(signature string, at time.Time) {
	t := at.UTC()
	r.Status = StatusSubmitted
	r.Signature = strings.TrimSpace(signature)
	r.SubmittedAt = &t
}

// MarkSimulated は simulated ledger 上で確定したことを記録します。
func (r *Record) MarkSimulated(at time.Time) {
	t := at.UTC()
	r.Status = StatusSimulated
	r.SubmittedAt = &t
}

// MarkFailed は送信以降の失敗を記録します。
func (r *Record) MarkFailed(err error) {
	r.Status = StatusFailed
	if err != nil {
		r.Error = err.Error()
	}
}

// ------------------------------------------------------
// Repository Port
// ------------------------------------------------------

// RecordRepository は発行レコードの永続化ポートです。
// Firestore / PostgreSQL / メモリの実装が adapters/out にあります。
type RecordRepository interface {
	Save(ctx context.Context, r Record) (Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
	ListByMint(ctx context.Context, mintAddress string) ([]Record, error)
}
