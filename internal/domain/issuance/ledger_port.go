package issuance

import "context"

// ------------------------------------------------------
// LedgerClient Port
// ------------------------------------------------------
//
// オーケストレータが依存する唯一の出力ポートです。
// 1 メソッド = 1 命令。署名・送信・命令のワイヤ形式は実装側の責務です。
// 実装:
//   - infra/solana.InstructionLedger : blocto SDK の命令をバッチに積む
//   - infra/ledgersim.Ledger         : テスト / dry-run 用のインメモリ台帳

// MintAccountSize は SPL Token の Mint アカウントのデータ長です。
const MintAccountSize uint64 = 82

type CreateAccountParams struct {
	Payer      Address
	NewAccount Address
	Lamports   uint64
	Space      uint64
	Owner      Address // 作成後の所有プログラム
}

type InitializeMintParams struct {
	Mint            Address
	MintAuthority   Address
	FreezeAuthority *Address
	Decimals        uint8
	TokenProgram    Address
}

type CreateAssociatedAccountParams struct {
	Payer        Address
	Owner        Address
	Mint         Address
	Account      Address // 導出済みの ATA
	TokenProgram Address
}

type MintToParams struct {
	Mint        Address
	Destination Address
	Authority   Address
	Amount      uint64
}

type FreezeAccountParams struct {
	Mint      Address
	Account   Address
	Authority Address
}

type CreateMetadataParams struct {
	Metadata        Address
	Mint            Address
	MintAuthority   Address
	Payer           Address
	UpdateAuthority Address
	Descriptor      MintDescriptor
	IsMutable       bool
}

type CreateMasterEditionParams struct {
	Edition         Address
	Mint            Address
	UpdateAuthority Address
	MintAuthority   Address
	Metadata        Address
	Payer           Address
	MaxSupply       *uint64 // nil = 上限パラメータを渡さない
}

// LedgerClient は外部台帳に対する命令の抽象です。
type LedgerClient interface {
	// rent-accounting service
	MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)

	CreateAccount(ctx context.Context, p CreateAccountParams) error
	InitializeMint(ctx context.Context, p InitializeMintParams) error
	CreateAssociatedAccount(ctx context.Context, p CreateAssociatedAccountParams) error
	MintTo(ctx context.Context, p MintToParams) error
	FreezeAccount(ctx context.Context, p FreezeAccountParams) error
	CreateMetadata(ctx context.Context, p CreateMetadataParams) error
	CreateMasterEdition(ctx context.Context, p CreateMasterEditionParams) error
}
