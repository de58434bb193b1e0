package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	issuancedom "minter/internal/domain/issuance"
	appcfg "minter/internal/infra/config"
	solanainfra "minter/internal/infra/solana"
)

func simulatedConfig() *appcfg.Config {
	return &appcfg.Config{
		Port:             "8080",
		LedgerMode:       appcfg.LedgerSimulated,
		SolanaRPCURL:     "https://api.devnet.solana.com",
		SimulatedAirdrop: 10_000_000_000,
		IssuanceStore:    appcfg.StoreMemory,
	}
}

func TestNewContainer_SimulatedMemory(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, simulatedConfig())
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.IssuanceUC)
	require.NotNil(t, c.Simulated)
	assert.Equal(t, uint64(10_000_000_000), c.Simulated.Balance(c.Authority.Address))
	assert.Equal(t, c.IssuanceUC, c.RouterDeps().IssuanceUC)

	rec, err := c.IssuanceUC.Issue(ctx, issuancedom.Fungible{
		Decimals:      0,
		InitialSupply: 10,
		Metadata:      issuancedom.FungibleMetadata{Name: "Coin", Symbol: "C", URI: "ipfs://coin"},
	})
	require.NoError(t, err)
	assert.Equal(t, issuancedom.StatusSimulated, rec.Status)

	got, err := c.IssuanceUC.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.MintAddress, got.MintAddress)
}

func TestNewContainer_Invalid(t *testing.T) {
	_, err := NewContainer(context.Background(), nil)
	assert.Error(t, err)

	cfg := simulatedConfig()
	cfg.IssuanceStore = "redis"
	_, err = NewContainer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestLoadAuthority(t *testing.T) {
	ctx := context.Background()

	// simulated + 鍵なし → 使い捨て
	kp, err := loadAuthority(ctx, simulatedConfig())
	require.NoError(t, err)
	assert.NoError(t, kp.Address.Validate())

	// solana + 鍵なし
	cfg := simulatedConfig()
	cfg.LedgerMode = appcfg.LedgerSolana
	_, err = loadAuthority(ctx, cfg)
	assert.ErrorIs(t, err, solanainfra.ErrMintKeyNotConfigured)

	// keypair file
	raw, err := solanainfra.EncodeKeypairJSON(kp)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	cfg.SolanaMintKeyFile = path
	loaded, err := loadAuthority(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, kp.Address, loaded.Address)
}
