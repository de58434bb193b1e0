// internal/infra/solana/session.go
package solana

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/blocto/solana-go-sdk/types"

	app "minter/internal/application/issuance"
	"minter/internal/domain/issuance"
)

var (
	ErrRPCNotConfigured = errors.New("solana: rpc is nil")
	ErrNoSigners        = errors.New("solana: at least one signer (fee payer) is required")
	ErrInvalidSigner    = errors.New("solana: invalid signer keypair")
	ErrEmptyTransaction = errors.New("solana: no instructions to submit")
	ErrSessionClosed    = errors.New("solana: session already committed or discarded")
	ErrMintAccountInUse = errors.New("solana: mint account already exists on chain")
)

// Factory は LEDGER_MODE=rpc 用の app.LedgerFactory 実装です。
// 1 セッション = 1 トランザクションで、Commit 時にまとめて送信します。
type Factory struct {
	RPC ChainRPC
}

var _ app.LedgerFactory = (*Factory)(nil)

func NewFactory(rpc ChainRPC) *Factory {
	return &Factory{RPC: rpc}
}

// Begin は signers[0] を fee payer とするセッションを開始します。
func (f *Factory) Begin(ctx context.Context, signers ...app.Keypair) (app.LedgerSession, error) {
	if f == nil || f.RPC == nil {
		return nil, ErrRPCNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(signers) == 0 {
		return nil, ErrNoSigners
	}

	accs := make([]types.Account, 0, len(signers))
	for i, k := range signers {
		acc, err := accountFromKeypair(k)
		if err != nil {
			return nil, fmt.Errorf("signer[%d]: %w", i, err)
		}
		accs = append(accs, acc)
	}

	return &session{
		InstructionLedger: NewInstructionLedger(f.RPC),
		rpc:               f.RPC,
		signers:           accs,
	}, nil
}

// accountFromKeypair は 64 bytes の秘密鍵を blocto の Account にし、
// 公開鍵が Keypair.Address と一致することを確認します。
func accountFromKeypair(k app.Keypair) (types.Account, error) {
	if len(k.PrivateKey) != 64 {
		return types.Account{}, fmt.Errorf("%w: want 64 bytes, got %d", ErrInvalidSigner, len(k.PrivateKey))
	}
	acc, err := types.AccountFromBytes(k.PrivateKey)
	if err != nil {
		return types.Account{}, fmt.Errorf("%w: %v", ErrInvalidSigner, err)
	}
	if got := fromPublicKey(acc.PublicKey); got != k.Address {
		return types.Account{}, fmt.Errorf("%w: address %s does not match key %s", ErrInvalidSigner, k.Address, got)
	}
	return acc, nil
}

type session struct {
	*InstructionLedger
	rpc     ChainRPC
	signers []types.Account

	mu     sync.Mutex
	closed bool
}

// Commit は blockhash を取得し、ためた命令を 1 トランザクションとして送信します。
func (s *session) Commit(ctx context.Context) (app.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return app.Receipt{}, ErrSessionClosed
	}
	s.closed = true
	defer s.Reset()

	ins := s.Instructions()
	if len(ins) == 0 {
		return app.Receipt{}, ErrEmptyTransaction
	}

	// 1) preflight: 新しい mint アカウントがすでに使われていないか
	if len(s.signers) > 1 {
		mint := s.signers[1].PublicKey.ToBase58()
		exists, err := s.rpc.AccountExists(ctx, mint)
		if err != nil {
			return app.Receipt{}, fmt.Errorf("solana: check mint account failed: %w", err)
		}
		if exists {
			return app.Receipt{}, fmt.Errorf("%w: %s", ErrMintAccountInUse, mint)
		}
	}

	// 2) blockhash
	blockhash, err := s.rpc.LatestBlockhash(ctx)
	if err != nil {
		return app.Receipt{}, fmt.Errorf("solana: GetLatestBlockhash: %w", err)
	}

	// 3) tx
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        s.signers[0].PublicKey,
			RecentBlockhash: blockhash,
			Instructions:    ins,
		}),
		Signers: s.signers,
	})
	if err != nil {
		return app.Receipt{}, fmt.Errorf("solana: NewTransaction: %w", err)
	}

	// 4) send
	sig, err := s.rpc.Send(ctx, tx)
	if err != nil {
		return app.Receipt{}, fmt.Errorf("solana: SendTransaction: %w", err)
	}

	log.Printf(
		"[solana] submitted tx=%s instructions=%d payer=%s",
		maskShort(sig),
		len(ins),
		maskShort(s.signers[0].PublicKey.ToBase58()),
	)
	return app.Receipt{Signature: sig}, nil
}

func (s *session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.Reset()
}

var _ issuance.LedgerClient = (*session)(nil)

func maskShort(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:4] + "..." + s[len(s)-4:]
}
