// internal/domain/issuance/variant.go
package issuance

import (
	"fmt"
	"math/bits"
)

// ------------------------------------------------------
// Kind: 発行するトークンの種別
// ------------------------------------------------------

// Kind は Variant のタグです。値は borsh のバリアント番号と一致させています。
type Kind uint8

const (
	KindFungible Kind = iota
	KindFungibleAsset
	KindNonFungible
)

func (k Kind) String() string {
	switch k {
	case KindFungible:
		return "fungible"
	case KindFungibleAsset:
		return "fungible_asset"
	case KindNonFungible:
		return "non_fungible"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind は "fungible" / "asset" / "nft" などの表記を Kind に変換します。
func ParseKind(s string) (Kind, error) {
	switch s {
	case "fungible", "token":
		return KindFungible, nil
	case "fungible_asset", "asset":
		return KindFungibleAsset, nil
	case "non_fungible", "nft":
		return KindNonFungible, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidVariant, s)
	}
}

// ------------------------------------------------------
// Metadata 入力
// ------------------------------------------------------

type FungibleMetadata struct {
	Name   string
	Symbol string
	URI    string
}

// AssetMetadata の UseCount が 0 の場合は uses を記録しない。
type AssetMetadata struct {
	Name     string
	Symbol   string
	URI      string
	UseCount uint64
}

// NFTMetadata の CreatorAddresses は nil なら「creators なし」、
// CollectionAddress は nil なら「collection なし」を表します。
type NFTMetadata struct {
	Name               string
	Symbol             string
	URI                string
	RoyaltyBasisPoints uint16
	CreatorAddresses   []Address
	CollectionAddress  *Address
}

// ------------------------------------------------------
// Variant (closed sum type)
// ------------------------------------------------------

// Variant は Fungible / FungibleAsset / NonFungible のいずれか 1 つです。
// パッケージ外から新しいバリアントは追加できません。
type Variant interface {
	Kind() Kind
	isVariant()
}

type Fungible struct {
	Decimals        uint8
	InitialSupply   uint64
	FreezeAfterMint bool
	Metadata        FungibleMetadata
}

// FungibleAsset はミント後に常に freeze されます。
type FungibleAsset struct {
	Decimals uint8
	Quantity uint64
	Metadata AssetMetadata
}

// NonFungible は数量 1 固定で、ミント後に常に freeze されます。
type NonFungible struct {
	Metadata NFTMetadata
}

func (Fungible) Kind() Kind      { return KindFungible }
func (FungibleAsset) Kind() Kind { return KindFungibleAsset }
func (NonFungible) Kind() Kind   { return KindNonFungible }

func (Fungible) isVariant()      {}
func (FungibleAsset) isVariant() {}
func (NonFungible) isVariant()   {}

// WithURI は metadata URI を差し替えた variant のコピーを返します。
func WithURI(v Variant, uri string) (Variant, error) {
	switch t := v.(type) {
	case Fungible:
		t.Metadata.URI = uri
		return t, nil
	case FungibleAsset:
		t.Metadata.URI = uri
		return t, nil
	case NonFungible:
		t.Metadata.URI = uri
		return t, nil
	default:
		return nil, fmt.Errorf("%w: unsupported variant %T", ErrInvalidVariant, v)
	}
}

// ------------------------------------------------------
// Validation
// ------------------------------------------------------

// Token Metadata プログラム側の上限
const (
	MaxNameLength      = 32
	MaxSymbolLength    = 10
	MaxURILength       = 200
	MaxCreators        = 5
	MaxRoyaltyBasisPts = 10000
)

// Validate は ledger に触れる前に弾ける入力不備を検出します。
func Validate(v Variant) error {
	switch t := v.(type) {
	case Fungible:
		if err := validateText(t.Metadata.Name, t.Metadata.Symbol, t.Metadata.URI); err != nil {
			return err
		}
		if _, ok := scaleSupply(t.InitialSupply, t.Decimals); !ok {
			return fmt.Errorf("%w: initial supply %d with %d decimals overflows u64", ErrInvalidVariant, t.InitialSupply, t.Decimals)
		}
		return nil
	case FungibleAsset:
		return validateText(t.Metadata.Name, t.Metadata.Symbol, t.Metadata.URI)
	case NonFungible:
		m := t.Metadata
		if err := validateText(m.Name, m.Symbol, m.URI); err != nil {
			return err
		}
		if m.RoyaltyBasisPoints > MaxRoyaltyBasisPts {
			return fmt.Errorf("%w: royalty %d bps exceeds %d", ErrInvalidVariant, m.RoyaltyBasisPoints, MaxRoyaltyBasisPts)
		}
		if m.CreatorAddresses != nil {
			if len(m.CreatorAddresses) == 0 || len(m.CreatorAddresses) > MaxCreators {
				return fmt.Errorf("%w: creators must be 1..%d, got %d", ErrInvalidVariant, MaxCreators, len(m.CreatorAddresses))
			}
			for i, a := range m.CreatorAddresses {
				if err := a.Validate(); err != nil {
					return fmt.Errorf("%w: creator[%d]: %v", ErrInvalidVariant, i, err)
				}
			}
		}
		if m.CollectionAddress != nil {
			if err := m.CollectionAddress.Validate(); err != nil {
				return fmt.Errorf("%w: collection: %v", ErrInvalidVariant, err)
			}
		}
		return nil
	case nil:
		return fmt.Errorf("%w: variant is nil", ErrInvalidVariant)
	default:
		return fmt.Errorf("%w: unsupported variant %T", ErrInvalidVariant, v)
	}
}

func validateText(name, symbol, uri string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidVariant)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name longer than %d bytes", ErrInvalidVariant, MaxNameLength)
	}
	if len(symbol) > MaxSymbolLength {
		return fmt.Errorf("%w: symbol longer than %d bytes", ErrInvalidVariant, MaxSymbolLength)
	}
	if len(uri) > MaxURILength {
		return fmt.Errorf("%w: uri longer than %d bytes", ErrInvalidVariant, MaxURILength)
	}
	return nil
}

// scaleSupply は supply × 10^decimals を計算します。u64 に収まらなければ ok=false。
func scaleSupply(supply uint64, decimals uint8) (uint64, bool) {
	out := supply
	for i := uint8(0); i < decimals; i++ {
		hi, lo := bits.Mul64(out, 10)
		if hi != 0 {
			return 0, false
		}
		out = lo
	}
	return out, true
}
