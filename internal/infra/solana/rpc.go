// internal/infra/solana/rpc.go
package solana

import (
	"context"
	"os"
	"strings"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/types"
)

// ChainRPC は session / InstructionLedger が使う RPC の最小集合です。
// 本番は blocto の *client.Client を包んだ BlocktoRPC、テストではフェイクを渡します。
type ChainRPC interface {
	RentOracle
	LatestBlockhash(ctx context.Context) (string, error)
	Send(ctx context.Context, tx types.Transaction) (string, error)
	AccountExists(ctx context.Context, address string) (bool, error)
}

// BlocktoRPC は blocto solana-go-sdk のクライアントを ChainRPC に合わせます。
type BlocktoRPC struct {
	Client *client.Client
}

var _ ChainRPC = (*BlocktoRPC)(nil)

// NewBlocktoRPC は endpoint（空なら SOLANA_RPC_URL、さらに空なら devnet）へのクライアントを作ります。
func NewBlocktoRPC(endpoint string) *BlocktoRPC {
	url := strings.TrimSpace(endpoint)
	if url == "" {
		url = strings.TrimSpace(os.Getenv("SOLANA_RPC_URL"))
	}
	if url == "" {
		url = DevnetEndpoint
	}
	return &BlocktoRPC{Client: client.NewClient(url)}
}

func (r *BlocktoRPC) MinimumBalance(ctx context.Context, size uint64) (uint64, error) {
	return r.Client.GetMinimumBalanceForRentExemption(ctx, size)
}

func (r *BlocktoRPC) LatestBlockhash(ctx context.Context) (string, error) {
	latest, err := r.Client.GetLatestBlockhash(ctx)
	if err != nil {
		return "", err
	}
	return latest.Blockhash, nil
}

func (r *BlocktoRPC) Send(ctx context.Context, tx types.Transaction) (string, error) {
	return r.Client.SendTransaction(ctx, tx)
}

// AccountExists は GetAccountInfo のエラー文言から「存在しない」を判定します。
func (r *BlocktoRPC) AccountExists(ctx context.Context, address string) (bool, error) {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return false, nil
	}

	info, err := r.Client.GetAccountInfo(ctx, addr)
	if err == nil {
		// 存在しないアカウントはゼロ値で返ってくる
		return info.Lamports > 0, nil
	}
	if isAccountNotFound(err) {
		return false, nil
	}
	return false, err
}

func isAccountNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "could not find account") ||
		strings.Contains(msg, "invalid param") ||
		strings.Contains(msg, "account does not exist")
}
