package issuance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_Fungible(t *testing.T) {
	d := Project(Fungible{
		Decimals:      9,
		InitialSupply: 1_000_000,
		Metadata:      FungibleMetadata{Name: "Jogo do Bicho Coin", Symbol: "JBC", URI: "ipfs://coin"},
	})

	assert.Equal(t, "Jogo do Bicho Coin", d.Name)
	assert.Equal(t, "JBC", d.Symbol)
	assert.Equal(t, "ipfs://coin", d.URI)
	assert.Zero(t, d.RoyaltyBasisPoints)
	assert.Nil(t, d.Uses)
	assert.Nil(t, d.Creators)
	assert.Nil(t, d.Collection)
}

func TestProject_FungibleAssetUses(t *testing.T) {
	tests := []struct {
		name     string
		useCount uint64
		want     *Uses
	}{
		{name: "no tracking", useCount: 0, want: nil},
		{name: "single use", useCount: 1, want: &Uses{Total: 1, Remaining: 1, Method: UseBurn}},
		{name: "bounded uses", useCount: 1000, want: &Uses{Total: 1000, Remaining: 1000, Method: UseBurn}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Project(FungibleAsset{
				Quantity: 1000,
				Metadata: AssetMetadata{Name: "Food", Symbol: "Food", URI: "ipfs://food", UseCount: tt.useCount},
			})
			assert.Equal(t, tt.want, d.Uses)
			assert.Nil(t, d.Creators)
			assert.Nil(t, d.Collection)
			assert.Zero(t, d.RoyaltyBasisPoints)
		})
	}
}

func TestProject_NonFungibleCreatorShares(t *testing.T) {
	tests := []struct {
		n         int
		wantShare uint8
		wantTotal int
	}{
		{n: 1, wantShare: 100, wantTotal: 100},
		{n: 2, wantShare: 50, wantTotal: 100},
		{n: 3, wantShare: 33, wantTotal: 99}, // remainder 1 is dropped
		{n: 4, wantShare: 25, wantTotal: 100},
		{n: 5, wantShare: 20, wantTotal: 100},
	}

	for _, tt := range tests {
		creators := make([]Address, 0, tt.n)
		for i := 0; i < tt.n; i++ {
			creators = append(creators, addr(t, byte(10+i)))
		}

		d := Project(NonFungible{Metadata: NFTMetadata{
			Name:               "Ferris",
			RoyaltyBasisPoints: 500,
			CreatorAddresses:   creators,
		}})

		require.Len(t, d.Creators, tt.n)
		for i, c := range d.Creators {
			assert.Equal(t, creators[i], c.Address, "creator order must be preserved")
			assert.Equal(t, tt.wantShare, c.Share)
			assert.False(t, c.Verified)
		}
		assert.Equal(t, tt.wantTotal, d.TotalShare())
		assert.LessOrEqual(t, d.TotalShare(), 100)
	}
}

func TestProject_NonFungibleCollectionAndRoyalty(t *testing.T) {
	col := addr(t, 0xD)
	d := Project(NonFungible{Metadata: NFTMetadata{
		Name:               "Ferris, the Memory Guardian",
		Symbol:             "Dts#001",
		URI:                "ipfs://ferris",
		RoyaltyBasisPoints: 500,
		CollectionAddress:  &col,
	}})

	assert.Equal(t, uint16(500), d.RoyaltyBasisPoints)
	assert.Nil(t, d.Creators)
	assert.Nil(t, d.Uses)
	require.NotNil(t, d.Collection)
	assert.Equal(t, Collection{Address: col, Verified: false}, *d.Collection)
}

func TestProject_IsPure(t *testing.T) {
	col := addr(t, 9)
	v := NonFungible{Metadata: NFTMetadata{
		Name:              "Ferris",
		CreatorAddresses:  []Address{addr(t, 1), addr(t, 2), addr(t, 3)},
		CollectionAddress: &col,
	}}

	first := Project(v)
	second := Project(v)
	assert.Equal(t, first, second)

	// mutating one output must not leak into the next projection
	first.Creators[0].Share = 99
	first.Collection.Verified = true
	third := Project(v)
	assert.Equal(t, second, third)
}
