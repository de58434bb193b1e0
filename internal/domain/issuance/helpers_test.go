package issuance

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testRent          Address = "SysvarRent111111111111111111111111111111111"
	testSystemProgram Address = "11111111111111111111111111111111"
	testTokenProgram  Address = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	testATAProgram    Address = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	testMetaProgram   Address = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
)

func addr(t *testing.T, seed byte) Address {
	t.Helper()
	a, err := AddressFromBytes(bytes.Repeat([]byte{seed}, AddressLength))
	require.NoError(t, err)
	return a
}

// handles returns a positional bundle; edition is included when withEdition is set.
func handles(t *testing.T, withEdition bool) []Address {
	t.Helper()
	out := []Address{addr(t, 1), addr(t, 2), addr(t, 3), addr(t, 4)}
	if withEdition {
		out = append(out, addr(t, 5))
	}
	return append(out, testRent, testSystemProgram, testTokenProgram, testATAProgram, testMetaProgram)
}

type call struct {
	op     string
	params any
}

// recordingLedger records every call and can fail a chosen operation.
type recordingLedger struct {
	calls  []call
	rent   uint64
	failOn string
	err    error
}

func (l *recordingLedger) record(op string, p any) error {
	if l.failOn == op {
		if l.err == nil {
			return errors.New("ledger: " + op + " rejected")
		}
		return l.err
	}
	l.calls = append(l.calls, call{op: op, params: p})
	return nil
}

func (l *recordingLedger) ops() []string {
	out := make([]string, 0, len(l.calls))
	for _, c := range l.calls {
		out = append(out, c.op)
	}
	return out
}

func (l *recordingLedger) find(op string) (any, bool) {
	for _, c := range l.calls {
		if c.op == op {
			return c.params, true
		}
	}
	return nil, false
}

func (l *recordingLedger) MinimumBalanceForRentExemption(_ context.Context, size uint64) (uint64, error) {
	if err := l.record("rent", size); err != nil {
		return 0, err
	}
	return l.rent, nil
}

func (l *recordingLedger) CreateAccount(_ context.Context, p CreateAccountParams) error {
	return l.record("create_account", p)
}

func (l *recordingLedger) InitializeMint(_ context.Context, p InitializeMintParams) error {
	return l.record("initialize_mint", p)
}

func (l *recordingLedger) CreateAssociatedAccount(_ context.Context, p CreateAssociatedAccountParams) error {
	return l.record("create_associated_account", p)
}

func (l *recordingLedger) MintTo(_ context.Context, p MintToParams) error {
	return l.record("mint_to", p)
}

func (l *recordingLedger) FreezeAccount(_ context.Context, p FreezeAccountParams) error {
	return l.record("freeze_account", p)
}

func (l *recordingLedger) CreateMetadata(_ context.Context, p CreateMetadataParams) error {
	return l.record("create_metadata", p)
}

func (l *recordingLedger) CreateMasterEdition(_ context.Context, p CreateMasterEditionParams) error {
	return l.record("create_master_edition", p)
}
