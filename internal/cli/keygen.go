// internal/cli/keygen.go
package cli

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	app "minter/internal/application/issuance"
	issuancedom "minter/internal/domain/issuance"
	solanainfra "minter/internal/infra/solana"
)

// KeygenOptions は keygen コマンドのフラグです。
type KeygenOptions struct {
	*RootOptions
	Out        string
	Force      bool
	ShowSecret bool
}

type keygenOutput struct {
	Address string `json:"address"`
	File    string `json:"file"`
	Secret  string `json:"secret,omitempty"`
}

// NewKeygenCommand は mint authority 用の keypair を生成するコマンドを返します。
// ファイルは solana-keygen 互換の [u8;64] JSON で、SOLANA_MINT_KEY_FILE や
// Secret Manager にそのまま登録できます。
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a mint authority keypair",
		Long: `Generate a mint authority keypair (ed25519).

The secret key is written as a Solana CLI compatible JSON array with mode 0600.
Never commit this file; register it in Secret Manager instead.

Example:
  minter keygen --out mint-authority.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "mint-authority.json", "keypair file to write")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&opts.ShowSecret, "show-secret", false, "also print the secret key as base58 (wallet import format)")

	return cmd
}

func runKeygen(opts *KeygenOptions, out io.Writer) error {
	if opts.Out == "" {
		return errors.New("--out is required")
	}
	if !opts.Force {
		if _, err := os.Stat(opts.Out); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", opts.Out)
		}
	}

	// 1. ed25519 keypair を生成
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate ed25519 keypair: %w", err)
	}

	// 2. 公開鍵の base58 がアドレス
	kp := app.Keypair{
		Address:    issuancedom.Address(base58.Encode(pub)),
		PrivateKey: priv,
	}

	// 3. solana-keygen 互換 JSON で保存
	data, err := solanainfra.EncodeKeypairJSON(kp)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.Out, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", opts.Out, err)
	}

	res := keygenOutput{Address: kp.Address.String(), File: opts.Out}
	if opts.ShowSecret {
		res.Secret = base58.Encode(priv)
	}

	return render(out, opts.RootOptions, res, func(w io.Writer) {
		fmt.Fprintln(w, "============================================")
		fmt.Fprintln(w, "Mint authority keypair generated")
		fmt.Fprintln(w, "============================================")
		fmt.Fprintf(w, "Public Key (mint authority):\n  %s\n\n", res.Address)
		fmt.Fprintf(w, "Secret key file (Solana-compatible JSON):\n  %s\n\n", res.File)
		if res.Secret != "" {
			fmt.Fprintf(w, "Secret key (base58):\n  %s\n\n", res.Secret)
		}
		fmt.Fprintln(w, "IMPORTANT:")
		fmt.Fprintln(w, "  - この JSON ファイルは Git に絶対にコミットしないでください。")
		fmt.Fprintln(w, "  - Secret Manager に登録し、SOLANA_MINT_KEY_SECRET で参照してください。")
	})
}
