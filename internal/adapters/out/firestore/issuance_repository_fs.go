// internal/adapters/out/firestore/issuance_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	issuancedom "minter/internal/domain/issuance"
)

// DefaultIssuanceCollection は ISSUANCE_COLLECTION 未設定時のコレクション名です。
const DefaultIssuanceCollection = "issuances"

// IssuanceRepositoryFS implements issuance.RecordRepository using Firestore.
type IssuanceRepositoryFS struct {
	Client     *firestore.Client
	Collection string
}

var _ issuancedom.RecordRepository = (*IssuanceRepositoryFS)(nil)

func NewIssuanceRepositoryFS(client *firestore.Client, collection string) *IssuanceRepositoryFS {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = DefaultIssuanceCollection
	}
	return &IssuanceRepositoryFS{Client: client, Collection: collection}
}

func (r *IssuanceRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(r.Collection)
}

// issuances/{id} のドキュメント
type issuanceDoc struct {
	Kind        string     `firestore:"kind"`
	Status      string     `firestore:"status"`
	MintAddress string     `firestore:"mintAddress"`
	Authority   string     `firestore:"authority"`
	TokenAcct   string     `firestore:"tokenAccount"`
	Metadata    string     `firestore:"metadata"`
	Edition     string     `firestore:"edition,omitempty"`
	Name        string     `firestore:"name"`
	Symbol      string     `firestore:"symbol"`
	URI         string     `firestore:"uri"`
	Decimals    int64      `firestore:"decimals"`
	Amount      int64      `firestore:"amount"`
	Steps       []string   `firestore:"steps"`
	FailedStep  string     `firestore:"failedStep,omitempty"`
	Error       string     `firestore:"error,omitempty"`
	Signature   string     `firestore:"signature,omitempty"`
	CreatedAt   time.Time  `firestore:"createdAt"`
	SubmittedAt *time.Time `firestore:"submittedAt,omitempty"`
}

// Firestore の整数は int64 のため、amount は上位ビットを落とさないよう
// そのまま int64 に載せ替えて保存し、読み出し時に uint64 へ戻す。
func toIssuanceDoc(rec issuancedom.Record) issuanceDoc {
	return issuanceDoc{
		Kind:        rec.Kind,
		Status:      string(rec.Status),
		MintAddress: rec.MintAddress,
		Authority:   rec.Authority,
		TokenAcct:   rec.TokenAcct,
		Metadata:    rec.Metadata,
		Edition:     rec.Edition,
		Name:        rec.Name,
		Symbol:      rec.Symbol,
		URI:         rec.URI,
		Decimals:    int64(rec.Decimals),
		Amount:      int64(rec.Amount),
		Steps:       rec.Steps,
		FailedStep:  rec.FailedStep,
		Error:       rec.Error,
		Signature:   rec.Signature,
		CreatedAt:   rec.CreatedAt.UTC(),
		SubmittedAt: rec.SubmittedAt,
	}
}

func (d issuanceDoc) toRecord(id string) issuancedom.Record {
	steps := d.Steps
	if steps == nil {
		steps = []string{}
	}
	return issuancedom.Record{
		ID:          id,
		Kind:        d.Kind,
		Status:      issuancedom.Status(d.Status),
		MintAddress: d.MintAddress,
		Authority:   d.Authority,
		TokenAcct:   d.TokenAcct,
		Metadata:    d.Metadata,
		Edition:     d.Edition,
		Name:        d.Name,
		Symbol:      d.Symbol,
		URI:         d.URI,
		Decimals:    uint8(d.Decimals),
		Amount:      uint64(d.Amount),
		Steps:       steps,
		FailedStep:  d.FailedStep,
		Error:       d.Error,
		Signature:   d.Signature,
		CreatedAt:   d.CreatedAt.UTC(),
		SubmittedAt: d.SubmittedAt,
	}
}

func (r *IssuanceRepositoryFS) Save(ctx context.Context, rec issuancedom.Record) (issuancedom.Record, error) {
	if r.Client == nil {
		return issuancedom.Record{}, errors.New("firestore client is nil")
	}

	// ID が空なら自動採番
	var docRef *firestore.DocumentRef
	if strings.TrimSpace(rec.ID) == "" {
		docRef = r.col().NewDoc()
		rec.ID = docRef.ID
	} else {
		docRef = r.col().Doc(rec.ID)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := rec.Validate(); err != nil {
		return issuancedom.Record{}, err
	}

	if _, err := docRef.Set(ctx, toIssuanceDoc(rec)); err != nil {
		return issuancedom.Record{}, fmt.Errorf("IssuanceRepositoryFS.Save: %w", err)
	}
	return rec, nil
}

func (r *IssuanceRepositoryFS) GetByID(ctx context.Context, id string) (issuancedom.Record, error) {
	if r.Client == nil {
		return issuancedom.Record{}, errors.New("firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return issuancedom.Record{}, issuancedom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return issuancedom.Record{}, issuancedom.ErrNotFound
		}
		return issuancedom.Record{}, fmt.Errorf("IssuanceRepositoryFS.GetByID: %w", err)
	}

	var d issuanceDoc
	if err := snap.DataTo(&d); err != nil {
		return issuancedom.Record{}, fmt.Errorf("decode issuance %s: %w", id, err)
	}
	return d.toRecord(snap.Ref.ID), nil
}

// ListByMint は mintAddress が一致するレコードを createdAt 降順で返します。
func (r *IssuanceRepositoryFS) ListByMint(ctx context.Context, mintAddress string) ([]issuancedom.Record, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}
	mintAddress = strings.TrimSpace(mintAddress)
	if mintAddress == "" {
		return []issuancedom.Record{}, nil
	}

	it := r.col().
		Where("mintAddress", "==", mintAddress).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer it.Stop()

	out := make([]issuancedom.Record, 0)
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("IssuanceRepositoryFS.ListByMint: %w", err)
		}
		var d issuanceDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decode issuance %s: %w", snap.Ref.ID, err)
		}
		out = append(out, d.toRecord(snap.Ref.ID))
	}
	return out, nil
}
