// internal/infra/ledgersim/session.go
package ledgersim

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync/atomic"

	"github.com/mr-tron/base58"

	app "minter/internal/application/issuance"
	"minter/internal/domain/issuance"
)

// Factory は LEDGER_MODE=simulated 用の app.LedgerFactory 実装です。
type Factory struct {
	ledger *Ledger
	seq    atomic.Uint64
}

var _ app.LedgerFactory = (*Factory)(nil)

func NewFactory(l *Ledger) *Factory {
	return &Factory{ledger: l}
}

func (f *Factory) Ledger() *Ledger { return f.ledger }

func (f *Factory) Begin(ctx context.Context, signers ...app.Keypair) (app.LedgerSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx := f.ledger.Begin()
	addrs := make([]issuance.Address, 0, len(signers))
	for _, k := range signers {
		addrs = append(addrs, k.Address)
	}
	tx.Sign(addrs...)
	return &session{Tx: tx, seq: f.seq.Add(1)}, nil
}

type session struct {
	*Tx
	seq uint64
}

func (s *session) Commit(ctx context.Context) (app.Receipt, error) {
	if err := ctx.Err(); err != nil {
		s.Rollback()
		return app.Receipt{}, err
	}
	if err := s.Tx.Commit(); err != nil {
		return app.Receipt{}, err
	}
	return app.Receipt{Signature: pseudoSignature(s.seq, s.applied), Simulated: true}, nil
}

func (s *session) Discard() { s.Rollback() }

// pseudoSignature は 64 bytes の決定的な署名風 ID を base58 で返します。
func pseudoSignature(seq uint64, applied int) string {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], seq)
	binary.LittleEndian.PutUint64(buf[8:], uint64(applied))
	h1 := sha256.Sum256(buf[:])
	h2 := sha256.Sum256(h1[:])
	return base58.Encode(append(h1[:], h2[:]...))
}
