// internal/adapters/in/borsh/codec.go
package borsh

import (
	"errors"
	"fmt"

	borshgo "github.com/near/borsh-go"

	"minter/internal/domain/issuance"
)

// ErrInvalidPayload は borsh として読めない / 未知のタグを持つ入力です。
var ErrInvalidPayload = errors.New("borsh: invalid token data payload")

// ------------------------------------------------------
// wire 型（クライアントの TokenData と同じ並び）
// ------------------------------------------------------
//
//	0 Fungible      : u8 decimals, u64 initial_supply, bool freeze, {name, symbol, uri}
//	1 FungibleAsset : u8 decimals, u64 quantity, {name, symbol, uri, u64 uses}
//	2 NonFungible   : {name, symbol, uri, u16 fee, Option<Vec<String>>, Option<String>}

type fungibleMetadata struct {
	Name   string
	Symbol string
	URI    string
}

type assetMetadata struct {
	Name   string
	Symbol string
	URI    string
	Uses   uint64
}

type nftMetadata struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	CreatorsAddresses    *[]string
	CollectionAddress    *string
}

type fungibleData struct {
	Decimals              uint8
	InitialSupply         uint64
	ShouldFreezeAfterMint bool
	Metadata              fungibleMetadata
}

type fungibleAssetData struct {
	Decimals uint8
	Quantity uint64
	Metadata assetMetadata
}

type nonFungibleData struct {
	Metadata nftMetadata
}

type tokenData struct {
	Enum          borshgo.Enum `borsh_enum:"true"`
	Fungible      fungibleData
	FungibleAsset fungibleAssetData
	NonFungible   nonFungibleData
}

// ------------------------------------------------------
// Decode / Encode
// ------------------------------------------------------

// Decode は TokenData の borsh バイト列を Variant に変換します。
// 値の検証は行いません（issuance.Validate に任せる）。
func Decode(data []byte) (issuance.Variant, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPayload)
	}
	if data[0] > byte(issuance.KindNonFungible) {
		return nil, fmt.Errorf("%w: unknown variant %d", ErrInvalidPayload, data[0])
	}

	var td tokenData
	if err := borshgo.Deserialize(&td, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	v := fromTokenData(td)

	// borsh は正準表現なので、再エンコード長が入力長と一致しなければ末尾に余りがある
	enc, err := Encode(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(enc) != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidPayload, len(data)-len(enc))
	}
	return v, nil
}

func fromTokenData(td tokenData) issuance.Variant {
	switch issuance.Kind(td.Enum) {
	case issuance.KindFungible:
		f := td.Fungible
		return issuance.Fungible{
			Decimals:        f.Decimals,
			InitialSupply:   f.InitialSupply,
			FreezeAfterMint: f.ShouldFreezeAfterMint,
			Metadata: issuance.FungibleMetadata{
				Name:   f.Metadata.Name,
				Symbol: f.Metadata.Symbol,
				URI:    f.Metadata.URI,
			},
		}

	case issuance.KindFungibleAsset:
		a := td.FungibleAsset
		return issuance.FungibleAsset{
			Decimals: a.Decimals,
			Quantity: a.Quantity,
			Metadata: issuance.AssetMetadata{
				Name:     a.Metadata.Name,
				Symbol:   a.Metadata.Symbol,
				URI:      a.Metadata.URI,
				UseCount: a.Metadata.Uses,
			},
		}

	default:
		m := td.NonFungible.Metadata
		out := issuance.NFTMetadata{
			Name:               m.Name,
			Symbol:             m.Symbol,
			URI:                m.URI,
			RoyaltyBasisPoints: m.SellerFeeBasisPoints,
		}
		if m.CreatorsAddresses != nil {
			out.CreatorAddresses = make([]issuance.Address, 0, len(*m.CreatorsAddresses))
			for _, a := range *m.CreatorsAddresses {
				out.CreatorAddresses = append(out.CreatorAddresses, issuance.Address(a))
			}
		}
		if m.CollectionAddress != nil {
			c := issuance.Address(*m.CollectionAddress)
			out.CollectionAddress = &c
		}
		return issuance.NonFungible{Metadata: out}
	}
}

// Encode は Variant を TokenData の borsh 表現にします。
func Encode(v issuance.Variant) ([]byte, error) {
	var td tokenData

	switch t := v.(type) {
	case issuance.Fungible:
		td.Enum = borshgo.Enum(issuance.KindFungible)
		td.Fungible = fungibleData{
			Decimals:              t.Decimals,
			InitialSupply:         t.InitialSupply,
			ShouldFreezeAfterMint: t.FreezeAfterMint,
			Metadata: fungibleMetadata{
				Name:   t.Metadata.Name,
				Symbol: t.Metadata.Symbol,
				URI:    t.Metadata.URI,
			},
		}

	case issuance.FungibleAsset:
		td.Enum = borshgo.Enum(issuance.KindFungibleAsset)
		td.FungibleAsset = fungibleAssetData{
			Decimals: t.Decimals,
			Quantity: t.Quantity,
			Metadata: assetMetadata{
				Name:   t.Metadata.Name,
				Symbol: t.Metadata.Symbol,
				URI:    t.Metadata.URI,
				Uses:   t.Metadata.UseCount,
			},
		}

	case issuance.NonFungible:
		td.Enum = borshgo.Enum(issuance.KindNonFungible)
		m := nftMetadata{
			Name:                 t.Metadata.Name,
			Symbol:               t.Metadata.Symbol,
			URI:                  t.Metadata.URI,
			SellerFeeBasisPoints: t.Metadata.RoyaltyBasisPoints,
		}
		if t.Metadata.CreatorAddresses != nil {
			addrs := make([]string, 0, len(t.Metadata.CreatorAddresses))
			for _, a := range t.Metadata.CreatorAddresses {
				addrs = append(addrs, a.String())
			}
			m.CreatorsAddresses = &addrs
		}
		if t.Metadata.CollectionAddress != nil {
			c := t.Metadata.CollectionAddress.String()
			m.CollectionAddress = &c
		}
		td.NonFungible = nonFungibleData{Metadata: m}

	default:
		return nil, fmt.Errorf("%w: %T", issuance.ErrInvalidVariant, v)
	}

	out, err := borshgo.Serialize(td)
	if err != nil {
		return nil, fmt.Errorf("borsh.Serialize: %w", err)
	}
	return out, nil
}
