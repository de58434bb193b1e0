// internal/application/issuance/ports.go
package issuance

import (
	"context"

	issuancedom "minter/internal/domain/issuance"
)

// ============================================================
// Keypair
// ============================================================

// Keypair は ed25519 の署名鍵です。PrivateKey は 64 bytes (seed + public key)。
type Keypair struct {
	Address    issuancedom.Address
	PrivateKey []byte
}

// KeypairSource は新しい mint アカウント用の鍵を生成します。
type KeypairSource interface {
	NewKeypair() (Keypair, error)
}

// ============================================================
// Ledger session port
// ============================================================

// Receipt は Commit の結果です。
type Receipt struct {
	Signature string
	// Simulated はインメモリ台帳で確定した場合に true
	Simulated bool
}

// LedgerSession は 1 トランザクション分の LedgerClient です。
// Run の成功後に Commit、失敗時は Discard を必ず呼びます。
type LedgerSession interface {
	issuancedom.LedgerClient
	Commit(ctx context.Context) (Receipt, error)
	Discard()
}

// LedgerFactory は signers で署名される新しいセッションを開始します。
type LedgerFactory interface {
	Begin(ctx context.Context, signers ...Keypair) (LedgerSession, error)
}

// ============================================================
// Bundle resolver port
// ============================================================

// BundleResolver は mint / authority から位置固定のリソースハンドル列を導出します。
// kind が NonFungible のときだけ edition を含めます。
type BundleResolver interface {
	Resolve(ctx context.Context, kind issuancedom.Kind, mint, authority issuancedom.Address) ([]issuancedom.Address, error)
}

// ============================================================
// Metadata publisher port（mint 直前に metadataUri を確定）
// ============================================================

// MetadataPublisher は off-chain metadata JSON を公開し、その URI を返します。
type MetadataPublisher interface {
	Publish(ctx context.Context, mint issuancedom.Address, d issuancedom.MintDescriptor) (string, error)
}

// ============================================================
// Notifier port
// ============================================================

// Notifier は確定した発行を通知します。失敗しても発行結果には影響しません。
type Notifier interface {
	NotifyIssued(ctx context.Context, r issuancedom.Record) error
}
