// internal/infra/solana/programs.go
package solana

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"minter/internal/domain/issuance"
)

// well-known program / sysvar ids
const (
	SystemProgramID          issuance.Address = "11111111111111111111111111111111"
	TokenProgramID           issuance.Address = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramID issuance.Address = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	TokenMetadataProgramID   issuance.Address = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	RentSysvarID             issuance.Address = "SysvarRent111111111111111111111111111111111"

	DevnetEndpoint = "https://api.devnet.solana.com"
)

// toPublicKey は base58 を検証してから blocto の PublicKey に変換します。
// PublicKeyFromString は不正な入力でもゼロ鍵を返すため、必ずここを通します。
func toPublicKey(a issuance.Address) (common.PublicKey, error) {
	if err := a.Validate(); err != nil {
		return common.PublicKey{}, err
	}
	return common.PublicKeyFromString(a.String()), nil
}

func fromPublicKey(pk common.PublicKey) issuance.Address {
	return issuance.Address(pk.ToBase58())
}

// publicKeys は複数アドレスをまとめて変換します。最初の失敗で name 付きのエラーを返します。
func publicKeys(names []string, addrs ...issuance.Address) ([]common.PublicKey, error) {
	out := make([]common.PublicKey, len(addrs))
	for i, a := range addrs {
		pk, err := toPublicKey(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
		out[i] = pk
	}
	return out, nil
}
