// internal/cli/encode.go
package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	borshcodec "minter/internal/adapters/in/borsh"
)

// EncodeOptions は encode コマンドのフラグです。
type EncodeOptions struct {
	*RootOptions
	File string
	Out  string
}

// NewEncodeCommand は YAML リクエストを borsh の TokenData に変換するコマンドを返します。
// 出力は POST /issuances に application/octet-stream でそのまま送れます。
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encode <fungible|asset|nft>",
		Short: "Encode a request file as a borsh TokenData payload",
		Long: `Encode a request file as a borsh TokenData payload.

Without --out the payload is printed as hex.

Example:
  minter encode asset --file food.yaml --out food.bin
  curl -X POST --data-binary @food.bin -H 'Content-Type: application/octet-stream' localhost:8080/issuances`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "request file (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the raw payload to this file")

	return cmd
}

func runEncode(opts *EncodeOptions, kindArg string, out io.Writer) error {
	v, err := loadRequest(opts.File, kindArg)
	if err != nil {
		return err
	}
	raw, err := borshcodec.Encode(v)
	if err != nil {
		return err
	}

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, raw, 0o644); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
		fmt.Fprintf(out, "wrote %d bytes to %s\n", len(raw), opts.Out)
		return nil
	}

	payload := hex.EncodeToString(raw)
	return render(out, opts.RootOptions, map[string]any{"kind": v.Kind().String(), "payload": payload}, func(w io.Writer) {
		fmt.Fprintln(w, payload)
	})
}
