// internal/infra/solana/instruction_ledger.go
package solana

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"

	"minter/internal/domain/issuance"
)

var (
	ErrRentOracleNotConfigured = errors.New("solana: rent oracle is nil")
	ErrUnsupportedProgram      = errors.New("solana: unsupported program id")
)

// RentOracle は rent exemption の最小残高を返します（*client.Client を包んだ blocktoRPC が実装）。
type RentOracle interface {
	MinimumBalance(ctx context.Context, size uint64) (uint64, error)
}

// InstructionLedger は issuance.LedgerClient の実装で、
// 各呼び出しを blocto SDK の命令に変換して 1 トランザクション分ためます。
// 送信は session.Commit が行います。
type InstructionLedger struct {
	rent RentOracle

	mu  sync.Mutex
	ins []types.Instruction
}

var _ issuance.LedgerClient = (*InstructionLedger)(nil)

func NewInstructionLedger(rent RentOracle) *InstructionLedger {
	return &InstructionLedger{rent: rent}
}

// Instructions はためた命令のコピーを返します。
func (l *InstructionLedger) Instructions() []types.Instruction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.Instruction(nil), l.ins...)
}

// Reset はためた命令を破棄します。
func (l *InstructionLedger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ins = nil
}

func (l *InstructionLedger) push(ix types.Instruction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ins = append(l.ins, ix)
}

func (l *InstructionLedger) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	if l.rent == nil {
		return 0, ErrRentOracleNotConfigured
	}
	return l.rent.MinimumBalance(ctx, size)
}

func (l *InstructionLedger) CreateAccount(_ context.Context, p issuance.CreateAccountParams) error {
	keys, err := publicKeys([]string{"payer", "new account", "owner"}, p.Payer, p.NewAccount, p.Owner)
	if err != nil {
		return err
	}
	l.push(system.CreateAccount(system.CreateAccountParam{
		From:     keys[0],
		New:      keys[1],
		Owner:    keys[2],
		Lamports: p.Lamports,
		Space:    p.Space,
	}))
	return nil
}

func (l *InstructionLedger) InitializeMint(_ context.Context, p issuance.InitializeMintParams) error {
	if p.TokenProgram != TokenProgramID {
		return fmt.Errorf("%w: token program %s", ErrUnsupportedProgram, p.TokenProgram)
	}
	keys, err := publicKeys([]string{"mint", "mint authority"}, p.Mint, p.MintAuthority)
	if err != nil {
		return err
	}
	param := token.InitializeMintParam{
		Decimals: p.Decimals,
		Mint:     keys[0],
		MintAuth: keys[1],
	}
	if p.FreezeAuthority != nil {
		fa, err := toPublicKey(*p.FreezeAuthority)
		if err != nil {
			return fmt.Errorf("freeze authority: %w", err)
		}
		param.FreezeAuth = &fa
	}
	l.push(token.InitializeMint(param))
	return nil
}

func (l *InstructionLedger) CreateAssociatedAccount(_ context.Context, p issuance.CreateAssociatedAccountParams) error {
	if p.TokenProgram != TokenProgramID {
		return fmt.Errorf("%w: token program %s", ErrUnsupportedProgram, p.TokenProgram)
	}
	keys, err := publicKeys([]string{"payer", "owner", "mint", "token account"}, p.Payer, p.Owner, p.Mint, p.Account)
	if err != nil {
		return err
	}

	// ATA は (owner, mint) から一意に決まるため、渡されたアドレスと一致しなければ弾く
	want, _, err := common.FindAssociatedTokenAddress(keys[1], keys[2])
	if err != nil {
		return fmt.Errorf("FindAssociatedTokenAddress: %w", err)
	}
	if want != keys[3] {
		return fmt.Errorf("solana: token account %s is not the associated account %s", p.Account, want.ToBase58())
	}

	l.push(associated_token_account.CreateAssociatedTokenAccount(associated_token_account.CreateAssociatedTokenAccountParam{
		Funder:                 keys[0],
		Owner:                  keys[1],
		Mint:                   keys[2],
		AssociatedTokenAccount: keys[3],
	}))
	return nil
}

func (l *InstructionLedger) MintTo(_ context.Context, p issuance.MintToParams) error {
	keys, err := publicKeys([]string{"mint", "destination", "authority"}, p.Mint, p.Destination, p.Authority)
	if err != nil {
		return err
	}
	l.push(token.MintTo(token.MintToParam{
		Mint:   keys[0],
		To:     keys[1],
		Auth:   keys[2],
		Amount: p.Amount,
	}))
	return nil
}

func (l *InstructionLedger) FreezeAccount(_ context.Context, p issuance.FreezeAccountParams) error {
	keys, err := publicKeys([]string{"mint", "account", "authority"}, p.Mint, p.Account, p.Authority)
	if err != nil {
		return err
	}
	l.push(token.FreezeAccount(token.FreezeAccountParam{
		Account: keys[1],
		Mint:    keys[0],
		Auth:    keys[2],
	}))
	return nil
}

func (l *InstructionLedger) CreateMetadata(_ context.Context, p issuance.CreateMetadataParams) error {
	keys, err := publicKeys(
		[]string{"metadata", "mint", "mint authority", "payer", "update authority"},
		p.Metadata, p.Mint, p.MintAuthority, p.Payer, p.UpdateAuthority,
	)
	if err != nil {
		return err
	}
	data, err := dataV2(p.Descriptor)
	if err != nil {
		return err
	}
	l.push(token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
		Metadata:                keys[0],
		Mint:                    keys[1],
		MintAuthority:           keys[2],
		Payer:                   keys[3],
		UpdateAuthority:         keys[4],
		UpdateAuthorityIsSigner: true,
		IsMutable:               p.IsMutable,
		Data:                    data,
	}))
	return nil
}

func (l *InstructionLedger) CreateMasterEdition(_ context.Context, p issuance.CreateMasterEditionParams) error {
	keys, err := publicKeys(
		[]string{"edition", "mint", "update authority", "mint authority", "metadata", "payer"},
		p.Edition, p.Mint, p.UpdateAuthority, p.MintAuthority, p.Metadata, p.Payer,
	)
	if err != nil {
		return err
	}
	l.push(token_metadata.CreateMasterEditionV3(token_metadata.CreateMasterEditionParam{
		Edition:         keys[0],
		Mint:            keys[1],
		UpdateAuthority: keys[2],
		MintAuthority:   keys[3],
		Metadata:        keys[4],
		Payer:           keys[5],
		MaxSupply:       p.MaxSupply,
	}))
	return nil
}

// dataV2 は MintDescriptor を token metadata の DataV2 に写します。
// nil の Creators / Collection / Uses はそのまま None になります。
func dataV2(d issuance.MintDescriptor) (token_metadata.DataV2, error) {
	out := token_metadata.DataV2{
		Name:                 d.Name,
		Symbol:               d.Symbol,
		Uri:                  d.URI,
		SellerFeeBasisPoints: d.RoyaltyBasisPoints,
	}

	if d.Creators != nil {
		creators := make([]token_metadata.Creator, 0, len(d.Creators))
		for i, c := range d.Creators {
			pk, err := toPublicKey(c.Address)
			if err != nil {
				return token_metadata.DataV2{}, fmt.Errorf("creator[%d]: %w", i, err)
			}
			creators = append(creators, token_metadata.Creator{
				Address:  pk,
				Verified: c.Verified,
				Share:    c.Share,
			})
		}
		out.Creators = &creators
	}

	if d.Collection != nil {
		pk, err := toPublicKey(d.Collection.Address)
		if err != nil {
			return token_metadata.DataV2{}, fmt.Errorf("collection: %w", err)
		}
		out.Collection = &token_metadata.Collection{
			Verified: d.Collection.Verified,
			Key:      pk,
		}
	}

	if d.Uses != nil {
		m, err := useMethod(d.Uses.Method)
		if err != nil {
			return token_metadata.DataV2{}, err
		}
		out.Uses = &token_metadata.Uses{
			UseMethod: m,
			Remaining: d.Uses.Remaining,
			Total:     d.Uses.Total,
		}
	}
	return out, nil
}

func useMethod(m issuance.UseMethod) (token_metadata.UseMethod, error) {
	switch m {
	case issuance.UseBurn:
		return token_metadata.Burn, nil
	case issuance.UseMultiple:
		return token_metadata.Multiple, nil
	case issuance.UseSingle:
		return token_metadata.Single, nil
	default:
		return 0, fmt.Errorf("solana: unknown use method %d", m)
	}
}
