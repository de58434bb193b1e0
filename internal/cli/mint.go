// internal/cli/mint.go
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	issuancedom "minter/internal/domain/issuance"
	"minter/internal/infra/config"
	"minter/internal/platform/di"
)

// MintOptions は mint コマンドのフラグです。
type MintOptions struct {
	*RootOptions
	File string

	loadConfig func() *config.Config
}

// NewMintCommand は mint コマンドを返します。
func NewMintCommand(rootOpts *RootOptions) *cobra.Command {
	return newMintCommand(rootOpts, config.Load)
}

func newMintCommand(rootOpts *RootOptions, loadConfig func() *config.Config) *cobra.Command {
	opts := &MintOptions{RootOptions: rootOpts, loadConfig: loadConfig}

	cmd := &cobra.Command{
		Use:   "mint <fungible|asset|nft>",
		Short: "Issue a token through the mint pipeline",
		Long: `Issue a token through the mint pipeline.

The request file is YAML (or JSON) with the same fields as the HTTP API body.

Example:
  minter mint fungible --file coin.yaml
  LEDGER_MODE=solana SOLANA_MINT_KEY_FILE=./authority.json minter mint nft --file ferris.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMint(cmd.Context(), opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "request file (YAML or JSON)")

	return cmd
}

func runMint(ctx context.Context, opts *MintOptions, kindArg string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	v, err := loadRequest(opts.File, kindArg)
	if err != nil {
		return err
	}

	cont, err := di.NewContainer(ctx, opts.loadConfig())
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer cont.Close()

	uc := cont.IssuanceUC
	var entry func(context.Context, issuancedom.Variant) (issuancedom.Record, error)
	switch v.Kind() {
	case issuancedom.KindFungible:
		entry = uc.MintFungibleToken
	case issuancedom.KindFungibleAsset:
		entry = uc.MintFungibleAsset
	default:
		entry = uc.MintNonFungible
	}

	rec, err := entry(ctx, v)
	if err != nil {
		// 失敗レコードがあれば残した内容も見せる
		if rec.ID != "" {
			_ = render(out, opts.RootOptions, rec, func(w io.Writer) { printRecord(w, rec) })
		}
		return err
	}
	return render(out, opts.RootOptions, rec, func(w io.Writer) { printRecord(w, rec) })
}
