// internal/domain/issuance/orchestrator.go
package issuance

import (
	"context"
	"fmt"
	"log"
)

// ------------------------------------------------------
// Step
// ------------------------------------------------------

type Step uint8

const (
	StepCreateMint Step = iota + 1
	StepInitializeMint
	StepCreateTokenAccount
	StepMintTo
	StepFreeze
	StepCreateMetadata
	StepCreateMasterEdition
)

func (s Step) String() string {
	switch s {
	case StepCreateMint:
		return "create_mint"
	case StepInitializeMint:
		return "initialize_mint"
	case StepCreateTokenAccount:
		return "create_token_account"
	case StepMintTo:
		return "mint_to"
	case StepFreeze:
		return "freeze"
	case StepCreateMetadata:
		return "create_metadata"
	case StepCreateMasterEdition:
		return "create_master_edition"
	default:
		return fmt.Sprintf("step(%d)", uint8(s))
	}
}

// Trace は成功したステップを実行順に並べたものです。
type Trace []Step

// Contains は s が実行済みかを返します。
func (t Trace) Contains(s Step) bool {
	for _, x := range t {
		if x == s {
			return true
		}
	}
	return false
}

// Plan は v に対して Run が実行するステップ列を返します (ledger 呼び出しなし)。
func Plan(v Variant) (Trace, error) {
	p, err := policyFor(v)
	if err != nil {
		return nil, err
	}
	out := Trace{StepCreateMint, StepInitializeMint, StepCreateTokenAccount, StepMintTo}
	if p.freeze(v) {
		out = append(out, StepFreeze)
	}
	out = append(out, StepCreateMetadata)
	if p.masterEdition {
		out = append(out, StepCreateMasterEdition)
	}
	return out, nil
}

// ------------------------------------------------------
// Orchestrator
// ------------------------------------------------------

// Orchestrator は 1 回の発行リクエストに対してパイプラインを実行します。
// 自身は永続状態を持たず、bundle と variant は Run の間だけ借用します。
type Orchestrator struct {
	bundle  Bundle
	variant Variant
	policy  policy
	ledger  LedgerClient
}

// TryNew はリソースハンドル列と variant を検証して Orchestrator を作ります。
// ledger には一切アクセスしません。
func TryNew(resources []Address, v Variant, ledger LedgerClient) (*Orchestrator, error) {
	bundle, err := ParseBundle(resources)
	if err != nil {
		return nil, err
	}
	return NewWithBundle(bundle, v, ledger)
}

// NewWithBundle は解決済みの Bundle から Orchestrator を作ります。
func NewWithBundle(bundle Bundle, v Variant, ledger LedgerClient) (*Orchestrator, error) {
	if ledger == nil {
		return nil, ErrLedgerNotConfigured
	}
	if err := Validate(v); err != nil {
		return nil, err
	}
	p, err := policyFor(v)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		bundle:  bundle,
		variant: v,
		policy:  p,
		ledger:  ledger,
	}, nil
}

func (o *Orchestrator) Bundle() Bundle   { return o.bundle }
func (o *Orchestrator) Variant() Variant { return o.variant }

// Run は固定パイプラインを順に実行し、最初に失敗したステップで中断します。
// リトライもロールバックもしません。途中までの効果の破棄は
// 外側のトランザクション境界の責務です。
func (o *Orchestrator) Run(ctx context.Context) (Trace, error) {
	trace := make(Trace, 0, 7)

	steps := []struct {
		step Step
		skip bool
		do   func(context.Context) error
	}{
		{StepCreateMint, false, o.createMint},
		{StepInitializeMint, false, o.initializeMint},
		{StepCreateTokenAccount, false, o.createTokenAccount},
		{StepMintTo, false, o.mintTo},
		{StepFreeze, !o.policy.freeze(o.variant), o.freeze},
		{StepCreateMetadata, false, o.createMetadata},
		{StepCreateMasterEdition, !o.policy.masterEdition, o.createMasterEdition},
	}

	for _, s := range steps {
		if s.skip {
			continue
		}
		if err := ctx.Err(); err != nil {
			return trace, &StepError{Step: s.step, Err: err}
		}
		if err := s.do(ctx); err != nil {
			log.Printf("[issuance] step failed kind=%s step=%s mint=%s err=%v",
				o.variant.Kind(), s.step, maskShort(o.bundle.Mint.String()), err)
			return trace, &StepError{Step: s.step, Err: err}
		}
		trace = append(trace, s.step)
	}

	log.Printf("[issuance] pipeline completed kind=%s mint=%s steps=%d",
		o.variant.Kind(), maskShort(o.bundle.Mint.String()), len(trace))
	return trace, nil
}

// ------------------------------------------------------
// Steps
// ------------------------------------------------------

func (o *Orchestrator) createMint(ctx context.Context) error {
	lamports, err := o.ledger.MinimumBalanceForRentExemption(ctx, MintAccountSize)
	if err != nil {
		return fmt.Errorf("rent exemption: %w", err)
	}
	return o.ledger.CreateAccount(ctx, CreateAccountParams{
		Payer:      o.bundle.Authority,
		NewAccount: o.bundle.Mint,
		Lamports:   lamports,
		Space:      MintAccountSize,
		Owner:      o.bundle.TokenProgram,
	})
}

func (o *Orchestrator) initializeMint(ctx context.Context) error {
	freezeAuth := o.bundle.Authority
	return o.ledger.InitializeMint(ctx, InitializeMintParams{
		Mint:            o.bundle.Mint,
		MintAuthority:   o.bundle.Authority,
		FreezeAuthority: &freezeAuth,
		Decimals:        o.policy.decimals(o.variant),
		TokenProgram:    o.bundle.TokenProgram,
	})
}

func (o *Orchestrator) createTokenAccount(ctx context.Context) error {
	return o.ledger.CreateAssociatedAccount(ctx, CreateAssociatedAccountParams{
		Payer:        o.bundle.Authority,
		Owner:        o.bundle.Authority,
		Mint:         o.bundle.Mint,
		Account:      o.bundle.TokenAccount,
		TokenProgram: o.bundle.TokenProgram,
	})
}

func (o *Orchestrator) mintTo(ctx context.Context) error {
	amount, err := o.policy.amount(o.variant)
	if err != nil {
		return err
	}
	return o.ledger.MintTo(ctx, MintToParams{
		Mint:        o.bundle.Mint,
		Destination: o.bundle.TokenAccount,
		Authority:   o.bundle.Authority,
		Amount:      amount,
	})
}

func (o *Orchestrator) freeze(ctx context.Context) error {
	return o.ledger.FreezeAccount(ctx, FreezeAccountParams{
		Mint:      o.bundle.Mint,
		Account:   o.bundle.TokenAccount,
		Authority: o.bundle.Authority,
	})
}

func (o *Orchestrator) createMetadata(ctx context.Context) error {
	return o.ledger.CreateMetadata(ctx, CreateMetadataParams{
		Metadata:        o.bundle.Metadata,
		Mint:            o.bundle.Mint,
		MintAuthority:   o.bundle.Authority,
		Payer:           o.bundle.Authority,
		UpdateAuthority: o.bundle.Authority,
		Descriptor:      o.policy.descriptor(o.variant),
		IsMutable:       false,
	})
}

func (o *Orchestrator) createMasterEdition(ctx context.Context) error {
	if o.bundle.Edition == nil {
		return ErrMasterEditionMissing
	}
	return o.ledger.CreateMasterEdition(ctx, CreateMasterEditionParams{
		Edition:         *o.bundle.Edition,
		Mint:            o.bundle.Mint,
		UpdateAuthority: o.bundle.Authority,
		MintAuthority:   o.bundle.Authority,
		Metadata:        o.bundle.Metadata,
		Payer:           o.bundle.Authority,
		MaxSupply:       nil,
	})
}

func maskShort(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:4] + "***" + s[len(s)-4:]
}
