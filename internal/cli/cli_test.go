package cli

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	borshcodec "minter/internal/adapters/in/borsh"
	dbadapter "minter/internal/adapters/out/db"
	issuancedom "minter/internal/domain/issuance"
	"minter/internal/infra/config"
	solanainfra "minter/internal/infra/solana"
)

const coinYAML = `
decimals: 2
initialSupply: 500
freezeAfterMint: false
metadata:
  name: Coin
  symbol: C
  uri: ipfs://coin
`

const foodYAML = `
kind: asset
decimals: 0
quantity: 1000
metadata:
  name: Food
  symbol: Food
  uri: ipfs://food
  uses: 1000
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newAddress(t *testing.T) string {
	t.Helper()
	kp, err := solanainfra.KeyGenerator{}.NewKeypair()
	require.NoError(t, err)
	return kp.Address.String()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// ------------------------------
// root
// ------------------------------

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "minter", cmd.Use)

	for _, name := range []string{"mint", "plan", "encode", "bundle", "keygen", "ddl"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	path := writeFile(t, "coin.yaml", coinYAML)
	_, err := execute(t, "--format", "xml", "plan", "fungible", "-f", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

// ------------------------------
// plan
// ------------------------------

func TestPlan_FungibleText(t *testing.T) {
	path := writeFile(t, "coin.yaml", coinYAML)
	out, err := execute(t, "plan", "fungible", "-f", path)
	require.NoError(t, err)

	assert.Contains(t, out, "kind:    fungible")
	assert.Contains(t, out, "amount:  50000")
	assert.Contains(t, out, "create_mint -> initialize_mint -> create_token_account -> mint_to -> create_metadata")
	assert.NotContains(t, out, "freeze")
	assert.NotContains(t, out, "frozen:")
	assert.NotContains(t, out, "edition:")
}

func TestPlan_AssetShowsFreeze(t *testing.T) {
	path := writeFile(t, "food.yaml", foodYAML)
	out, err := execute(t, "plan", "asset", "-f", path)
	require.NoError(t, err)

	assert.Contains(t, out, "kind:    fungible_asset")
	assert.Contains(t, out, "frozen:  token account is frozen after mint")
	assert.NotContains(t, out, "edition:")
}

func TestPlan_NFTJSON(t *testing.T) {
	creator := newAddress(t)
	path := writeFile(t, "ferris.yaml", fmt.Sprintf(`
metadata:
  name: Ferris
  symbol: FRS
  uri: ipfs://ferris
  royaltyBasisPoints: 500
  creators: [%q]
`, creator))

	out, err := execute(t, "--format", "json", "plan", "nft", "-f", path)
	require.NoError(t, err)

	var res planOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "non_fungible", res.Kind)
	assert.Equal(t, uint64(1), res.Amount)
	assert.Len(t, res.Steps, 7)
	assert.Equal(t, "create_master_edition", res.Steps[6])
	assert.True(t, res.Freeze)
	assert.True(t, res.Edition)
	require.Len(t, res.Descriptor.Creators, 1)
	assert.Equal(t, issuancedom.Address(creator), res.Descriptor.Creators[0].Address)
	assert.Equal(t, uint8(100), res.Descriptor.Creators[0].Share)
	assert.Equal(t, uint16(500), res.Descriptor.RoyaltyBasisPoints)
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		content string
		wantIs  error
		wantMsg string
	}{
		{"kind mismatch", "nft", foodYAML, issuancedom.ErrVariantMismatch, ""},
		{"empty name", "fungible", "decimals: 0\ninitialSupply: 1\nmetadata:\n  name: \"\"\n", issuancedom.ErrInvalidVariant, ""},
		{"unknown field", "fungible", "supply: 1\n", nil, "supply"},
		{"unknown kind", "coin", coinYAML, issuancedom.ErrInvalidVariant, ""},
		{"empty creators", "nft", "metadata:\n  name: x\n  creators: []\n", issuancedom.ErrInvalidVariant, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "req.yaml", tt.content)
			_, err := execute(t, "plan", tt.kind, "-f", path)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.True(t, errors.Is(err, tt.wantIs), "got %v", err)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestPlan_MissingFile(t *testing.T) {
	_, err := execute(t, "plan", "fungible")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file is required")

	_, err = execute(t, "plan", "fungible", "-f", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

// ------------------------------
// mint (simulated ledger)
// ------------------------------

func simulatedConfig() *config.Config {
	return &config.Config{
		LedgerMode:       config.LedgerSimulated,
		SimulatedAirdrop: 10_000_000_000,
		IssuanceStore:    config.StoreMemory,
	}
}

func TestMint_Simulated(t *testing.T) {
	path := writeFile(t, "food.yaml", foodYAML)

	buf := &bytes.Buffer{}
	cmd := newMintCommand(&RootOptions{Format: "json"}, simulatedConfig)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"asset", "-f", path})
	require.NoError(t, cmd.Execute())

	var rec issuancedom.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, issuancedom.StatusSimulated, rec.Status)
	assert.Equal(t, "fungible_asset", rec.Kind)
	assert.Equal(t, uint64(1000), rec.Amount)
	assert.NotEmpty(t, rec.MintAddress)
	assert.Empty(t, rec.Edition)
}

func TestMint_TextOutput(t *testing.T) {
	path := writeFile(t, "coin.yaml", coinYAML)

	buf := &bytes.Buffer{}
	cmd := newMintCommand(&RootOptions{Format: "text"}, simulatedConfig)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"fungible", "-f", path})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "status:       simulated")
	assert.Contains(t, buf.String(), "amount:       50000")
}

func TestMint_InvalidConfig(t *testing.T) {
	path := writeFile(t, "coin.yaml", coinYAML)

	cmd := newMintCommand(&RootOptions{Format: "text"}, func() *config.Config {
		cfg := simulatedConfig()
		cfg.IssuanceStore = "redis"
		return cfg
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"fungible", "-f", path})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init:")
}

// ------------------------------
// encode
// ------------------------------

func TestEncode_Hex(t *testing.T) {
	path := writeFile(t, "food.yaml", foodYAML)
	out, err := execute(t, "encode", "asset", "-f", path)
	require.NoError(t, err)

	raw, err := hex.DecodeString(string(bytes.TrimSpace([]byte(out))))
	require.NoError(t, err)
	v, err := borshcodec.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, issuancedom.FungibleAsset{
		Decimals: 0,
		Quantity: 1000,
		Metadata: issuancedom.AssetMetadata{Name: "Food", Symbol: "Food", URI: "ipfs://food", UseCount: 1000},
	}, v)
}

func TestEncode_OutFile(t *testing.T) {
	path := writeFile(t, "coin.yaml", coinYAML)
	outPath := filepath.Join(t.TempDir(), "coin.bin")

	out, err := execute(t, "encode", "fungible", "-f", path, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, outPath)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.Equal(t, byte(0), raw[0]) // Fungible のタグ

	v, err := borshcodec.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, issuancedom.KindFungible, v.Kind())
}

// ------------------------------
// bundle
// ------------------------------

func TestBundle(t *testing.T) {
	mint, authority := newAddress(t), newAddress(t)

	out, err := execute(t, "--format", "json", "bundle", "nft", "--mint", mint, "--authority", authority)
	require.NoError(t, err)
	var slots []bundleSlot
	require.NoError(t, json.Unmarshal([]byte(out), &slots))
	require.Len(t, slots, issuancedom.MaxBundleSize)
	assert.Equal(t, bundleSlot{"mint", mint}, slots[0])
	assert.Equal(t, bundleSlot{"authority", authority}, slots[2])
	assert.Equal(t, "edition", slots[4].Slot)
	assert.Equal(t, solanainfra.TokenMetadataProgramID.String(), slots[9].Address)

	out, err = execute(t, "--format", "json", "bundle", "fungible", "--mint", mint, "--authority", authority)
	require.NoError(t, err)
	slots = nil
	require.NoError(t, json.Unmarshal([]byte(out), &slots))
	require.Len(t, slots, issuancedom.MinBundleSize)
	assert.Equal(t, "rent_sysvar", slots[4].Slot)
}

func TestBundle_Errors(t *testing.T) {
	_, err := execute(t, "bundle", "nft", "--mint", newAddress(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--mint and --authority are required")

	_, err = execute(t, "bundle", "nft", "--mint", "not-base58", "--authority", newAddress(t))
	require.Error(t, err)
}

// ------------------------------
// keygen
// ------------------------------

func TestKeygen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authority.json")

	out, err := execute(t, "--format", "json", "keygen", "--out", path, "--show-secret")
	require.NoError(t, err)

	var res keygenOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, path, res.File)
	assert.NotEmpty(t, res.Secret)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	kp, err := solanainfra.LoadMintAuthorityFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.Address, kp.Address.String())

	// 既存ファイルは --force なしでは上書きしない
	_, err = execute(t, "keygen", "--out", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, err = execute(t, "keygen", "--out", path, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Mint authority keypair generated")
	assert.NotContains(t, out, res.Address)
}

// ------------------------------
// ddl
// ------------------------------

func TestDDL(t *testing.T) {
	out, err := execute(t, "ddl")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS issuances")

	dir := filepath.Join(t.TempDir(), "migrations")
	out, err = execute(t, "ddl", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "init_issuances.sql")

	data, err := os.ReadFile(filepath.Join(dir, "init_issuances.sql"))
	require.NoError(t, err)
	assert.Equal(t, dbadapter.IssuancesTableDDL, string(data))
}
