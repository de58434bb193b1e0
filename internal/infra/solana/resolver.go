// internal/infra/solana/resolver.go
package solana

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"

	app "minter/internal/application/issuance"
	"minter/internal/domain/issuance"
)

// Resolver は PDA を導出して位置固定のハンドル列を組み立てる app.BundleResolver 実装です。
// RPC は使いません。
type Resolver struct{}

var _ app.BundleResolver = Resolver{}

func (Resolver) Resolve(ctx context.Context, kind issuance.Kind, mint, authority issuance.Address) ([]issuance.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mintPK, err := toPublicKey(mint)
	if err != nil {
		return nil, fmt.Errorf("resolve mint: %w", err)
	}
	authPK, err := toPublicKey(authority)
	if err != nil {
		return nil, fmt.Errorf("resolve authority: %w", err)
	}

	ata, _, err := common.FindAssociatedTokenAddress(authPK, mintPK)
	if err != nil {
		return nil, fmt.Errorf("FindAssociatedTokenAddress: %w", err)
	}
	metadata, err := token_metadata.GetTokenMetaPubkey(mintPK)
	if err != nil {
		return nil, fmt.Errorf("GetTokenMetaPubkey: %w", err)
	}

	b := issuance.Bundle{
		Mint:                   mint,
		TokenAccount:           fromPublicKey(ata),
		Authority:              authority,
		Metadata:               fromPublicKey(metadata),
		RentSysvar:             RentSysvarID,
		SystemProgram:          SystemProgramID,
		TokenProgram:           TokenProgramID,
		AssociatedTokenProgram: AssociatedTokenProgramID,
		MetadataProgram:        TokenMetadataProgramID,
	}

	// edition は NFT のときだけ
	if kind == issuance.KindNonFungible {
		edition, err := token_metadata.GetMasterEdition(mintPK)
		if err != nil {
			return nil, fmt.Errorf("GetMasterEdition: %w", err)
		}
		ed := fromPublicKey(edition)
		b.Edition = &ed
	}

	return b.Handles(), nil
}
