// internal/infra/solana/mint_authority.go
package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretspb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	app "minter/internal/application/issuance"
)

var (
	ErrMintKeyNotConfigured = errors.New("solana: neither SOLANA_MINT_KEY_SECRET nor SOLANA_MINT_KEY_FILE is set")
	ErrMintKeySecretMissing = errors.New("solana: mint key secret not found")
)

// SecretVersionName は projectID / secretID から latest の Secret Version 名を組み立てます。
// すでにフルパスならそのまま返します。
func SecretVersionName(projectID, secret string) string {
	secret = strings.TrimSpace(secret)
	if strings.HasPrefix(secret, "projects/") {
		return secret
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", strings.TrimSpace(projectID), secret)
}

// LoadMintAuthority は Secret Manager の secretName から
// solana-keygen の keypair(JSON配列 [u8;64]) を復元します。
//
// secretName には
//
//	"projects/<PROJECT_ID>/secrets/<SECRET_ID>/versions/latest"
//
// のような Secret Version のフルパスを渡してください。
func LoadMintAuthority(ctx context.Context, secretName string) (app.Keypair, error) {
	secretName = strings.TrimSpace(secretName)
	if secretName == "" {
		return app.Keypair{}, ErrMintKeyNotConfigured
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return app.Keypair{}, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	defer client.Close()

	resp, err := client.AccessSecretVersion(ctx, &secretspb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return app.Keypair{}, fmt.Errorf("%w: %s", ErrMintKeySecretMissing, secretName)
		}
		return app.Keypair{}, fmt.Errorf("AccessSecretVersion: %w", err)
	}

	kp, err := KeypairFromJSON(resp.GetPayload().GetData())
	if err != nil {
		return app.Keypair{}, err
	}

	log.Printf(
		"[solana] loaded mint authority from Secret Manager: secret=%s pubkey=%s",
		secretName,
		kp.Address,
	)
	return kp, nil
}

// LoadMintAuthorityFromFile は solana-keygen が書き出した keypair ファイルを読みます（ローカル開発用）。
func LoadMintAuthorityFromFile(path string) (app.Keypair, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return app.Keypair{}, ErrMintKeyNotConfigured
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return app.Keypair{}, fmt.Errorf("read keypair file: %w", err)
	}
	kp, err := KeypairFromJSON(data)
	if err != nil {
		return app.Keypair{}, err
	}
	log.Printf("[solana] loaded mint authority from file: path=%s pubkey=%s", path, kp.Address)
	return kp, nil
}

// KeypairFromJSON は keypair JSON を app.Keypair に変換します。
func KeypairFromJSON(data []byte) (app.Keypair, error) {
	keyBytes, err := decodeKeypairJSON(data)
	if err != nil {
		return app.Keypair{}, err
	}
	acc, err := types.AccountFromBytes(keyBytes)
	if err != nil {
		return app.Keypair{}, fmt.Errorf("AccountFromBytes: %w", err)
	}
	return keypairFromAccount(acc), nil
}

// EncodeKeypairJSON は solana-keygen 互換の [u8;64] 形式で書き出します。
func EncodeKeypairJSON(kp app.Keypair) ([]byte, error) {
	if len(kp.PrivateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("unexpected private key length: got %d, want %d", len(kp.PrivateKey), ed25519.PrivateKeySize)
	}
	ints := make([]int, len(kp.PrivateKey))
	for i, b := range kp.PrivateKey {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

// decodeKeypairJSON は keypair JSON から 64 バイトの鍵配列を復元します。
// - 正: [u8;64] を []byte で受け取る
// - 互換: [int,...] を []int で受けてから []byte に変換
func decodeKeypairJSON(data []byte) ([]byte, error) {
	var keyBytes []byte
	if err := json.Unmarshal(data, &keyBytes); err == nil {
		if len(keyBytes) == ed25519.PrivateKeySize {
			return keyBytes, nil
		}
	}

	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("unmarshal keypair json: %w", err)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("unexpected secret key length: got %d, want %d", len(ints), ed25519.PrivateKeySize)
	}

	keyBytes = make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("secret key byte[%d] out of range: %d", i, v)
		}
		keyBytes[i] = byte(v)
	}
	return keyBytes, nil
}

func keypairFromAccount(acc types.Account) app.Keypair {
	priv := make([]byte, len(acc.PrivateKey))
	copy(priv, acc.PrivateKey)
	return app.Keypair{
		Address:    fromPublicKey(acc.PublicKey),
		PrivateKey: priv,
	}
}

// KeyGenerator は types.NewAccount で新しい mint 鍵を作る app.KeypairSource です。
type KeyGenerator struct{}

var _ app.KeypairSource = KeyGenerator{}

func (KeyGenerator) NewKeypair() (app.Keypair, error) {
	return keypairFromAccount(types.NewAccount()), nil
}
