package issuance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jbcCoin(freeze bool) Fungible {
	return Fungible{
		Decimals:        9,
		InitialSupply:   1_000_000,
		FreezeAfterMint: freeze,
		Metadata: FungibleMetadata{
			Name:   "Jogo do Bicho Coin",
			Symbol: "JBC",
			URI:    "ipfs://bafkreiavttmvulnb2cagvpb4iwyeoeetohvq5bbqeqw4kvedbfb25wha5e",
		},
	}
}

func ferris(t *testing.T) NonFungible {
	col := addr(t, 0xD)
	return NonFungible{Metadata: NFTMetadata{
		Name:               "Ferris, the Memory Guardian",
		Symbol:             "Dts#001",
		URI:                "ipfs://ferris",
		RoyaltyBasisPoints: 500,
		CreatorAddresses:   []Address{addr(t, 0xA), addr(t, 0xB), addr(t, 0xC)},
		CollectionAddress:  &col,
	}}
}

func TestRun_StepOrderPerVariant(t *testing.T) {
	tests := []struct {
		name    string
		v       Variant
		edition bool
		want    Trace
	}{
		{
			name: "fungible without freeze",
			v:    jbcCoin(false),
			want: Trace{StepCreateMint, StepInitializeMint, StepCreateTokenAccount, StepMintTo, StepCreateMetadata},
		},
		{
			name: "fungible with freeze",
			v:    jbcCoin(true),
			want: Trace{StepCreateMint, StepInitializeMint, StepCreateTokenAccount, StepMintTo, StepFreeze, StepCreateMetadata},
		},
		{
			name: "fungible asset always freezes",
			v:    FungibleAsset{Quantity: 1000, Metadata: AssetMetadata{Name: "Food", UseCount: 1000}},
			want: Trace{StepCreateMint, StepInitializeMint, StepCreateTokenAccount, StepMintTo, StepFreeze, StepCreateMetadata},
		},
		{
			name:    "non fungible ends with master edition",
			v:       ferris(t),
			edition: true,
			want: Trace{StepCreateMint, StepInitializeMint, StepCreateTokenAccount, StepMintTo, StepFreeze,
				StepCreateMetadata, StepCreateMasterEdition},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := TryNew(handles(t, tt.edition), tt.v, &recordingLedger{rent: 1461600})
			require.NoError(t, err)

			assert.Equal(t, tt.v, o.Variant())

			trace, err := o.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, trace)
			assert.Equal(t, tt.edition, trace.Contains(StepCreateMasterEdition))
			assert.True(t, trace.Contains(StepCreateMetadata))

			plan, err := Plan(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan)
		})
	}
}

func TestRun_FungibleEndToEnd(t *testing.T) {
	ledger := &recordingLedger{rent: 1461600}
	h := handles(t, false)
	o, err := TryNew(h, jbcCoin(true), ledger)
	require.NoError(t, err)

	_, err = o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"rent", "create_account", "initialize_mint", "create_associated_account",
		"mint_to", "freeze_account", "create_metadata",
	}, ledger.ops())

	size, _ := ledger.find("rent")
	assert.Equal(t, MintAccountSize, size)

	p, _ := ledger.find("create_account")
	ca := p.(CreateAccountParams)
	assert.Equal(t, h[2], ca.Payer)
	assert.Equal(t, h[0], ca.NewAccount)
	assert.Equal(t, uint64(1461600), ca.Lamports)
	assert.Equal(t, uint64(82), ca.Space)
	assert.Equal(t, testTokenProgram, ca.Owner)

	p, _ = ledger.find("initialize_mint")
	im := p.(InitializeMintParams)
	assert.Equal(t, uint8(9), im.Decimals)
	assert.Equal(t, h[2], im.MintAuthority)
	require.NotNil(t, im.FreezeAuthority)
	assert.Equal(t, h[2], *im.FreezeAuthority)

	p, _ = ledger.find("mint_to")
	mt := p.(MintToParams)
	assert.Equal(t, uint64(1_000_000*1_000_000_000), mt.Amount)
	assert.Equal(t, h[1], mt.Destination)

	p, _ = ledger.find("create_metadata")
	cm := p.(CreateMetadataParams)
	assert.False(t, cm.IsMutable)
	assert.Equal(t, h[2], cm.UpdateAuthority)
	assert.Equal(t, h[3], cm.Metadata)
	assert.Nil(t, cm.Descriptor.Uses)
	assert.Nil(t, cm.Descriptor.Creators)
	assert.Equal(t, "JBC", cm.Descriptor.Symbol)

	_, ok := ledger.find("create_master_edition")
	assert.False(t, ok)
}

func TestRun_NonFungibleEndToEnd(t *testing.T) {
	ledger := &recordingLedger{}
	h := handles(t, true)
	o, err := TryNew(h, ferris(t), ledger)
	require.NoError(t, err)

	trace, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepCreateMasterEdition, trace[len(trace)-1])

	p, _ := ledger.find("initialize_mint")
	assert.Equal(t, uint8(0), p.(InitializeMintParams).Decimals)

	p, _ = ledger.find("mint_to")
	assert.Equal(t, uint64(1), p.(MintToParams).Amount)

	p, _ = ledger.find("create_metadata")
	d := p.(CreateMetadataParams).Descriptor
	assert.Equal(t, []Creator{
		{Address: addr(t, 0xA), Share: 33},
		{Address: addr(t, 0xB), Share: 33},
		{Address: addr(t, 0xC), Share: 33},
	}, d.Creators)
	require.NotNil(t, d.Collection)
	assert.Equal(t, Collection{Address: addr(t, 0xD)}, *d.Collection)

	p, _ = ledger.find("create_master_edition")
	me := p.(CreateMasterEditionParams)
	assert.Nil(t, me.MaxSupply)
	assert.Equal(t, h[4], me.Edition)
	assert.Equal(t, h[3], me.Metadata)
}

func TestRun_NonFungibleMissingEdition(t *testing.T) {
	ledger := &recordingLedger{}
	o, err := TryNew(handles(t, false), ferris(t), ledger)
	require.NoError(t, err, "edition is optional at construction")

	trace, err := o.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMasterEditionMissing)

	step, ok := FailedStep(err)
	require.True(t, ok)
	assert.Equal(t, StepCreateMasterEdition, step)

	assert.Equal(t, Trace{StepCreateMint, StepInitializeMint, StepCreateTokenAccount, StepMintTo,
		StepFreeze, StepCreateMetadata}, trace)
}

func TestRun_AbortsOnFirstFailure(t *testing.T) {
	cause := errors.New("account already in use")
	ledger := &recordingLedger{failOn: "create_associated_account", err: cause}
	o, err := TryNew(handles(t, false), jbcCoin(true), ledger)
	require.NoError(t, err)

	trace, err := o.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StepCreateTokenAccount, se.Step)
	assert.Equal(t, Trace{StepCreateMint, StepInitializeMint}, trace)
	assert.Equal(t, []string{"rent", "create_account", "initialize_mint"}, ledger.ops(),
		"nothing runs after the failing step")
}

func TestRun_RentFailureFailsCreateMint(t *testing.T) {
	ledger := &recordingLedger{failOn: "rent"}
	o, err := TryNew(handles(t, false), jbcCoin(false), ledger)
	require.NoError(t, err)

	trace, err := o.Run(context.Background())
	step, ok := FailedStep(err)
	require.True(t, ok)
	assert.Equal(t, StepCreateMint, step)
	assert.Empty(t, trace)
	assert.Empty(t, ledger.calls)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ledger := &recordingLedger{}
	o, err := TryNew(handles(t, false), jbcCoin(false), ledger)
	require.NoError(t, err)

	_, err = o.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ledger.calls)
}

func TestTryNew_RejectsInvalidInput(t *testing.T) {
	_, err := TryNew(handles(t, false), jbcCoin(false), nil)
	assert.ErrorIs(t, err, ErrLedgerNotConfigured)

	_, err = TryNew(handles(t, false), Fungible{}, &recordingLedger{})
	assert.ErrorIs(t, err, ErrInvalidVariant)
}
