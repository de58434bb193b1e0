// internal/infra/ledgersim/state.go
package ledgersim

import (
	"errors"

	"minter/internal/domain/issuance"
)

var (
	ErrAccountInUse         = errors.New("ledgersim: account already in use")
	ErrAccountNotFound      = errors.New("ledgersim: account not found")
	ErrInsufficientFunds    = errors.New("ledgersim: insufficient funds")
	ErrNotRentExempt        = errors.New("ledgersim: balance below rent exemption")
	ErrInvalidOwner         = errors.New("ledgersim: account owned by wrong program")
	ErrInvalidAccountData   = errors.New("ledgersim: invalid account data")
	ErrAlreadyInitialized   = errors.New("ledgersim: account already initialized")
	ErrUninitializedMint    = errors.New("ledgersim: mint is not initialized")
	ErrAuthorityMismatch    = errors.New("ledgersim: authority mismatch")
	ErrMintMismatch         = errors.New("ledgersim: account mint mismatch")
	ErrAccountFrozen        = errors.New("ledgersim: account is frozen")
	ErrMintCannotFreeze     = errors.New("ledgersim: mint has no freeze authority")
	ErrSupplyOverflow       = errors.New("ledgersim: supply overflow")
	ErrEditionNotUnique     = errors.New("ledgersim: master edition requires supply 1 and 0 decimals")
	ErrMissingSigner        = errors.New("ledgersim: missing required signature")
	ErrTransactionDone      = errors.New("ledgersim: transaction already finished")
	ErrConcurrentCommit     = errors.New("ledgersim: ledger changed since transaction began")
	ErrMetadataNotFound     = errors.New("ledgersim: metadata account not found")
	ErrProgramNotConfigured = errors.New("ledgersim: program id not configured")
)

// Account sizes used for rent.
const (
	TokenAccountSize    uint64 = 165
	MetadataAccountSize uint64 = 679
	EditionAccountSize  uint64 = 282
)

// MinimumBalance mirrors the runtime rent formula:
// (128 bytes of account overhead + data) * lamports-per-byte-year * 2 years.
func MinimumBalance(size uint64) uint64 {
	const lamportsPerByteYear = 3480
	const exemptionYears = 2
	return (128 + size) * lamportsPerByteYear * exemptionYears
}

type mintState struct {
	Decimals        uint8
	Supply          uint64
	MintAuthority   *issuance.Address
	FreezeAuthority *issuance.Address
}

type tokenState struct {
	Mint   issuance.Address
	Owner  issuance.Address
	Amount uint64
	Frozen bool
}

type metadataState struct {
	Mint            issuance.Address
	UpdateAuthority issuance.Address
	Descriptor      issuance.MintDescriptor
	IsMutable       bool
}

type editionState struct {
	Mint      issuance.Address
	Supply    uint64
	MaxSupply *uint64
}

type account struct {
	Lamports uint64
	Owner    issuance.Address
	Space    uint64

	Mint     *mintState
	Token    *tokenState
	Metadata *metadataState
	Edition  *editionState
}

func (a *account) clone() *account {
	c := *a
	if a.Mint != nil {
		m := *a.Mint
		c.Mint = &m
	}
	if a.Token != nil {
		t := *a.Token
		c.Token = &t
	}
	if a.Metadata != nil {
		md := *a.Metadata
		md.Descriptor.Creators = append([]issuance.Creator(nil), a.Metadata.Descriptor.Creators...)
		c.Metadata = &md
	}
	if a.Edition != nil {
		e := *a.Edition
		c.Edition = &e
	}
	return &c
}

type state map[issuance.Address]*account

func (s state) clone() state {
	out := make(state, len(s))
	for k, v := range s {
		out[k] = v.clone()
	}
	return out
}
