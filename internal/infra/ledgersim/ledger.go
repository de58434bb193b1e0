// internal/infra/ledgersim/ledger.go
package ledgersim

import (
	"context"
	"fmt"
	"log"
	"sync"

	"minter/internal/domain/issuance"
)

// Programs は simulated ledger が「所有プログラム」として認識する ID です。
type Programs struct {
	Token         issuance.Address
	System        issuance.Address
	TokenMetadata issuance.Address
}

// Ledger はインメモリの台帳です。
// 変更は必ず Tx 経由で行い、Commit されるまで他から見えません
// (ホスト台帳の all-or-nothing コミットを再現します)。
type Ledger struct {
	mu       sync.Mutex
	accounts state
	version  uint64
	programs Programs
}

func New(programs Programs) (*Ledger, error) {
	for name, id := range map[string]issuance.Address{
		"token":          programs.Token,
		"system":         programs.System,
		"token_metadata": programs.TokenMetadata,
	} {
		if err := id.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrProgramNotConfigured, name, err)
		}
	}
	return &Ledger{
		accounts: make(state),
		programs: programs,
	}, nil
}

// Airdrop は payer 用にシステム口座へ lamports を直接入金します。
func (l *Ledger) Airdrop(addr issuance.Address, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[addr]
	if !ok {
		acc = &account{Owner: l.programs.System}
		l.accounts[addr] = acc
	}
	acc.Lamports += lamports
	l.version++
}

// Begin は現在の確定状態のスナップショット上でトランザクションを開始します。
func (l *Ledger) Begin() *Tx {
	l.mu.Lock()
	defer l.mu.Unlock()

	return &Tx{
		ledger:   l,
		base:     l.version,
		accounts: l.accounts.clone(),
		programs: l.programs,
	}
}

// ------------------------------------------------------
// 参照 (確定状態のみ)
// ------------------------------------------------------

type MintView struct {
	Decimals        uint8
	Supply          uint64
	MintAuthority   *issuance.Address
	FreezeAuthority *issuance.Address
}

type TokenAccountView struct {
	Mint   issuance.Address
	Owner  issuance.Address
	Amount uint64
	Frozen bool
}

func (l *Ledger) Exists(addr issuance.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.accounts[addr]
	return ok
}

func (l *Ledger) Balance(addr issuance.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok := l.accounts[addr]; ok {
		return a.Lamports
	}
	return 0
}

func (l *Ledger) Mint(addr issuance.Address) (MintView, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[addr]
	if !ok || a.Mint == nil {
		return MintView{}, false
	}
	m := a.Mint
	return MintView{
		Decimals:        m.Decimals,
		Supply:          m.Supply,
		MintAuthority:   m.MintAuthority,
		FreezeAuthority: m.FreezeAuthority,
	}, true
}

func (l *Ledger) TokenAccount(addr issuance.Address) (TokenAccountView, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[addr]
	if !ok || a.Token == nil {
		return TokenAccountView{}, false
	}
	return TokenAccountView(*a.Token), true
}

func (l *Ledger) Metadata(addr issuance.Address) (issuance.MintDescriptor, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[addr]
	if !ok || a.Metadata == nil {
		return issuance.MintDescriptor{}, false
	}
	return a.Metadata.Descriptor, true
}

// EditionMaxSupply は master edition の有無と max supply を返します。
func (l *Ledger) EditionMaxSupply(addr issuance.Address) (*uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[addr]
	if !ok || a.Edition == nil {
		return nil, false
	}
	return a.Edition.MaxSupply, true
}

// ------------------------------------------------------
// Tx: issuance.LedgerClient 実装
// ------------------------------------------------------

type Tx struct {
	ledger   *Ledger
	base     uint64
	accounts state
	programs Programs
	signers  map[issuance.Address]bool
	done     bool
	applied  int

	// 成功した命令。Commit 時に台帳が進んでいれば最新状態の上で再実行する
	ops []func(*Tx) error
}

var _ issuance.LedgerClient = (*Tx)(nil)

// Sign は署名者として addr を登録します。
// 署名者が 1 人も登録されていない場合、署名チェックは行いません。
func (tx *Tx) Sign(addrs ...issuance.Address) {
	if tx.signers == nil {
		tx.signers = make(map[issuance.Address]bool, len(addrs))
	}
	for _, a := range addrs {
		tx.signers[a] = true
	}
}

// Applied は成功した命令数です。
func (tx *Tx) Applied() int { return tx.applied }

// Commit は変更を確定します。
// Begin 後に別の Tx が確定していた場合は、最新の確定状態の上で命令を再実行し、
// どれかが失敗したときだけ ErrConcurrentCommit を返します。
func (tx *Tx) Commit() error {
	if tx.done {
		return ErrTransactionDone
	}
	tx.done = true

	l := tx.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.version != tx.base {
		rebased, err := tx.replay(l.accounts.clone(), l.version)
		if err != nil {
			log.Printf("[ledgersim] rebase failed base=%d version=%d err=%v", tx.base, l.version, err)
			return fmt.Errorf("%w: %w", ErrConcurrentCommit, err)
		}
		log.Printf("[ledgersim] rebased instructions=%d base=%d version=%d", tx.applied, tx.base, l.version)
		tx.accounts = rebased.accounts
	}
	l.accounts = tx.accounts
	l.version++
	log.Printf("[ledgersim] committed instructions=%d version=%d", tx.applied, l.version)
	return nil
}

// replay は記録済みの命令を accounts 上で順に再実行します。l.mu を保持したまま呼ばれます。
func (tx *Tx) replay(accounts state, version uint64) (*Tx, error) {
	r := &Tx{
		ledger:   tx.ledger,
		base:     version,
		accounts: accounts,
		programs: tx.programs,
		signers:  tx.signers,
	}
	for i, op := range tx.ops {
		if err := op(r); err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return r, nil
}

func (tx *Tx) record(op func(*Tx) error) {
	tx.ops = append(tx.ops, op)
	tx.applied++
}

// Rollback はすべての変更を破棄します。
func (tx *Tx) Rollback() {
	if tx.done {
		return
	}
	tx.done = true
	tx.accounts = nil
	tx.ops = nil
	log.Printf("[ledgersim] rolled back instructions=%d", tx.applied)
}

func (tx *Tx) check(signers ...issuance.Address) error {
	if tx.done {
		return ErrTransactionDone
	}
	if tx.signers == nil {
		return nil
	}
	for _, s := range signers {
		if !tx.signers[s] {
			return fmt.Errorf("%w: %s", ErrMissingSigner, s)
		}
	}
	return nil
}

func (tx *Tx) debit(payer issuance.Address, lamports uint64) error {
	p, ok := tx.accounts[payer]
	if !ok {
		return fmt.Errorf("%w: payer %s", ErrAccountNotFound, payer)
	}
	if p.Lamports < lamports {
		return fmt.Errorf("%w: payer %s has %d, needs %d", ErrInsufficientFunds, payer, p.Lamports, lamports)
	}
	p.Lamports -= lamports
	return nil
}

func (tx *Tx) mintAccount(addr issuance.Address) (*mintState, error) {
	a, ok := tx.accounts[addr]
	if !ok {
		return nil, fmt.Errorf("%w: mint %s", ErrAccountNotFound, addr)
	}
	if a.Owner != tx.programs.Token {
		return nil, fmt.Errorf("%w: mint %s", ErrInvalidOwner, addr)
	}
	if a.Mint == nil {
		return nil, fmt.Errorf("%w: %s", ErrUninitializedMint, addr)
	}
	return a.Mint, nil
}

func (tx *Tx) MinimumBalanceForRentExemption(_ context.Context, size uint64) (uint64, error) {
	if tx.done {
		return 0, ErrTransactionDone
	}
	return MinimumBalance(size), nil
}

func (tx *Tx) CreateAccount(_ context.Context, p issuance.CreateAccountParams) error {
	if err := tx.check(p.Payer, p.NewAccount); err != nil {
		return err
	}
	if _, ok := tx.accounts[p.NewAccount]; ok {
		return fmt.Errorf("%w: %s", ErrAccountInUse, p.NewAccount)
	}
	if p.Lamports < MinimumBalance(p.Space) {
		return fmt.Errorf("%w: %d < %d", ErrNotRentExempt, p.Lamports, MinimumBalance(p.Space))
	}
	if err := tx.debit(p.Payer, p.Lamports); err != nil {
		return err
	}
	tx.accounts[p.NewAccount] = &account{
		Lamports: p.Lamports,
		Owner:    p.Owner,
		Space:    p.Space,
	}
	tx.record(func(r *Tx) error { return r.CreateAccount(context.Background(), p) })
	return nil
}

func (tx *Tx) InitializeMint(_ context.Context, p issuance.InitializeMintParams) error {
	if err := tx.check(); err != nil {
		return err
	}
	a, ok := tx.accounts[p.Mint]
	if !ok {
		return fmt.Errorf("%w: mint %s", ErrAccountNotFound, p.Mint)
	}
	if a.Owner != tx.programs.Token || p.TokenProgram != tx.programs.Token {
		return fmt.Errorf("%w: mint %s", ErrInvalidOwner, p.Mint)
	}
	if a.Space != issuance.MintAccountSize {
		return fmt.Errorf("%w: mint space %d", ErrInvalidAccountData, a.Space)
	}
	if a.Mint != nil {
		return fmt.Errorf("%w: mint %s", ErrAlreadyInitialized, p.Mint)
	}
	mintAuth := p.MintAuthority
	m := &mintState{Decimals: p.Decimals, MintAuthority: &mintAuth}
	if p.FreezeAuthority != nil {
		fa := *p.FreezeAuthority
		m.FreezeAuthority = &fa
	}
	a.Mint = m
	tx.record(func(r *Tx) error { return r.InitializeMint(context.Background(), p) })
	return nil
}

func (tx *Tx) CreateAssociatedAccount(_ context.Context, p issuance.CreateAssociatedAccountParams) error {
	if err := tx.check(p.Payer); err != nil {
		return err
	}
	if _, err := tx.mintAccount(p.Mint); err != nil {
		return err
	}
	if _, ok := tx.accounts[p.Account]; ok {
		return fmt.Errorf("%w: %s", ErrAccountInUse, p.Account)
	}
	rent := MinimumBalance(TokenAccountSize)
	if err := tx.debit(p.Payer, rent); err != nil {
		return err
	}
	tx.accounts[p.Account] = &account{
		Lamports: rent,
		Owner:    tx.programs.Token,
		Space:    TokenAccountSize,
		Token:    &tokenState{Mint: p.Mint, Owner: p.Owner},
	}
	tx.record(func(r *Tx) error { return r.CreateAssociatedAccount(context.Background(), p) })
	return nil
}

func (tx *Tx) MintTo(_ context.Context, p issuance.MintToParams) error {
	if err := tx.check(p.Authority); err != nil {
		return err
	}
	m, err := tx.mintAccount(p.Mint)
	if err != nil {
		return err
	}
	if m.MintAuthority == nil || *m.MintAuthority != p.Authority {
		return fmt.Errorf("%w: mint authority", ErrAuthorityMismatch)
	}
	dst, ok := tx.accounts[p.Destination]
	if !ok || dst.Token == nil {
		return fmt.Errorf("%w: destination %s", ErrAccountNotFound, p.Destination)
	}
	if dst.Token.Mint != p.Mint {
		return ErrMintMismatch
	}
	if dst.Token.Frozen {
		return ErrAccountFrozen
	}
	if m.Supply+p.Amount < m.Supply {
		return ErrSupplyOverflow
	}
	m.Supply += p.Amount
	dst.Token.Amount += p.Amount
	tx.record(func(r *Tx) error { return r.MintTo(context.Background(), p) })
	return nil
}

func (tx *Tx) FreezeAccount(_ context.Context, p issuance.FreezeAccountParams) error {
	if err := tx.check(p.Authority); err != nil {
		return err
	}
	m, err := tx.mintAccount(p.Mint)
	if err != nil {
		return err
	}
	if m.FreezeAuthority == nil {
		return ErrMintCannotFreeze
	}
	if *m.FreezeAuthority != p.Authority {
		return fmt.Errorf("%w: freeze authority", ErrAuthorityMismatch)
	}
	acc, ok := tx.accounts[p.Account]
	if !ok || acc.Token == nil {
		return fmt.Errorf("%w: token account %s", ErrAccountNotFound, p.Account)
	}
	if acc.Token.Mint != p.Mint {
		return ErrMintMismatch
	}
	if acc.Token.Frozen {
		return ErrAccountFrozen
	}
	acc.Token.Frozen = true
	tx.record(func(r *Tx) error { return r.FreezeAccount(context.Background(), p) })
	return nil
}

func (tx *Tx) CreateMetadata(_ context.Context, p issuance.CreateMetadataParams) error {
	if err := tx.check(p.Payer, p.MintAuthority); err != nil {
		return err
	}
	m, err := tx.mintAccount(p.Mint)
	if err != nil {
		return err
	}
	if m.MintAuthority == nil || *m.MintAuthority != p.MintAuthority {
		return fmt.Errorf("%w: mint authority", ErrAuthorityMismatch)
	}
	if _, ok := tx.accounts[p.Metadata]; ok {
		return fmt.Errorf("%w: metadata %s", ErrAccountInUse, p.Metadata)
	}
	rent := MinimumBalance(MetadataAccountSize)
	if err := tx.debit(p.Payer, rent); err != nil {
		return err
	}
	tx.accounts[p.Metadata] = &account{
		Lamports: rent,
		Owner:    tx.programs.TokenMetadata,
		Space:    MetadataAccountSize,
		Metadata: &metadataState{
			Mint:            p.Mint,
			UpdateAuthority: p.UpdateAuthority,
			Descriptor:      p.Descriptor,
			IsMutable:       p.IsMutable,
		},
	}
	tx.record(func(r *Tx) error { return r.CreateMetadata(context.Background(), p) })
	return nil
}

func (tx *Tx) CreateMasterEdition(_ context.Context, p issuance.CreateMasterEditionParams) error {
	if err := tx.check(p.Payer, p.MintAuthority, p.UpdateAuthority); err != nil {
		return err
	}
	m, err := tx.mintAccount(p.Mint)
	if err != nil {
		return err
	}
	if m.MintAuthority == nil || *m.MintAuthority != p.MintAuthority {
		return fmt.Errorf("%w: mint authority", ErrAuthorityMismatch)
	}
	md, ok := tx.accounts[p.Metadata]
	if !ok || md.Metadata == nil || md.Metadata.Mint != p.Mint {
		return ErrMetadataNotFound
	}
	if md.Metadata.UpdateAuthority != p.UpdateAuthority {
		return fmt.Errorf("%w: update authority", ErrAuthorityMismatch)
	}
	if m.Supply != 1 || m.Decimals != 0 {
		return ErrEditionNotUnique
	}
	if _, ok := tx.accounts[p.Edition]; ok {
		return fmt.Errorf("%w: edition %s", ErrAccountInUse, p.Edition)
	}
	rent := MinimumBalance(EditionAccountSize)
	if err := tx.debit(p.Payer, rent); err != nil {
		return err
	}
	ed := &editionState{Mint: p.Mint}
	if p.MaxSupply != nil {
		ms := *p.MaxSupply
		ed.MaxSupply = &ms
	}
	tx.accounts[p.Edition] = &account{
		Lamports: rent,
		Owner:    tx.programs.TokenMetadata,
		Space:    EditionAccountSize,
		Edition:  ed,
	}

	// token metadata プログラムは mint / freeze authority を edition に移す
	edAddr := p.Edition
	m.MintAuthority = &edAddr
	freeze := p.Edition
	m.FreezeAuthority = &freeze
	tx.record(func(r *Tx) error { return r.CreateMasterEdition(context.Background(), p) })
	return nil
}
