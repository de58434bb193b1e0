// internal/adapters/in/request/issuance_request.go
package request

import (
	"fmt"
	"strings"

	issuancedom "minter/internal/domain/issuance"
)

// ------------------------------
// Request DTO
// ------------------------------

// IssuanceRequest は 3 種類のバリアントを 1 つの JSON / YAML で受けます。
// HTTP の body と CLI の --file で共通です。kind はエントリポイントが決まっていないときだけ必須です。
//
//	fungible : decimals, initialSupply, freezeAfterMint, metadata{name,symbol,uri}
//	asset    : decimals, quantity, metadata{name,symbol,uri,uses}
//	nft      : metadata{name,symbol,uri,royaltyBasisPoints,creators?,collection?}
type IssuanceRequest struct {
	Kind            string          `json:"kind,omitempty" yaml:"kind,omitempty"`
	Decimals        uint8           `json:"decimals" yaml:"decimals"`
	InitialSupply   uint64          `json:"initialSupply" yaml:"initialSupply"`
	FreezeAfterMint bool            `json:"freezeAfterMint" yaml:"freezeAfterMint"`
	Quantity        uint64          `json:"quantity" yaml:"quantity"`
	Metadata        MetadataRequest `json:"metadata" yaml:"metadata"`
}

type MetadataRequest struct {
	Name               string   `json:"name" yaml:"name"`
	Symbol             string   `json:"symbol" yaml:"symbol"`
	URI                string   `json:"uri" yaml:"uri"`
	Uses               uint64   `json:"uses,omitempty" yaml:"uses,omitempty"`
	RoyaltyBasisPoints uint16   `json:"royaltyBasisPoints,omitempty" yaml:"royaltyBasisPoints,omitempty"`
	Creators           []string `json:"creators,omitempty" yaml:"creators,omitempty"`
	Collection         *string  `json:"collection,omitempty" yaml:"collection,omitempty"`
}

// ToVariant は Variant を組み立てます。
// body の kind が優先で、空のときだけ defaultKind（パスの種別）を使います。
func (req IssuanceRequest) ToVariant(defaultKind string) (issuancedom.Variant, error) {
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if kind == "" {
		kind = strings.ToLower(strings.TrimSpace(defaultKind))
	}
	k, err := issuancedom.ParseKind(kind)
	if err != nil {
		return nil, err
	}

	m := req.Metadata
	switch k {
	case issuancedom.KindFungible:
		return issuancedom.Fungible{
			Decimals:        req.Decimals,
			InitialSupply:   req.InitialSupply,
			FreezeAfterMint: req.FreezeAfterMint,
			Metadata:        issuancedom.FungibleMetadata{Name: m.Name, Symbol: m.Symbol, URI: m.URI},
		}, nil

	case issuancedom.KindFungibleAsset:
		return issuancedom.FungibleAsset{
			Decimals: req.Decimals,
			Quantity: req.Quantity,
			Metadata: issuancedom.AssetMetadata{Name: m.Name, Symbol: m.Symbol, URI: m.URI, UseCount: m.Uses},
		}, nil

	case issuancedom.KindNonFungible:
		out := issuancedom.NFTMetadata{
			Name:               m.Name,
			Symbol:             m.Symbol,
			URI:                m.URI,
			RoyaltyBasisPoints: m.RoyaltyBasisPoints,
		}
		if m.Creators != nil {
			out.CreatorAddresses = make([]issuancedom.Address, 0, len(m.Creators))
			for _, c := range m.Creators {
				out.CreatorAddresses = append(out.CreatorAddresses, issuancedom.Address(strings.TrimSpace(c)))
			}
		}
		if m.Collection != nil {
			c := issuancedom.Address(strings.TrimSpace(*m.Collection))
			out.CollectionAddress = &c
		}
		return issuancedom.NonFungible{Metadata: out}, nil

	default:
		return nil, fmt.Errorf("%w: unknown kind %q", issuancedom.ErrInvalidVariant, kind)
	}
}
