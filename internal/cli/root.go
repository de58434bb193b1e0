// internal/cli/root.go
package cli

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
)

// RootOptions は全コマンド共通のフラグです。
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats は --format に指定できる値です。
var ValidFormats = []string{"text", "json"}

// NewRootCommand は minter CLI のルートコマンドを返します。
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "minter",
		Short: "minter - token issuance orchestrator",
		Long: `Issue fungible tokens, fungible assets and NFTs through the 7-step mint pipeline.

The ledger and the record store are selected by the same environment variables
as the API server (LEDGER_MODE, ISSUANCE_STORE, SOLANA_MINT_KEY_FILE, ...).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			// [di] / [solana] のログは -v のときだけ stderr に出す
			if opts.Verbose {
				log.SetOutput(cmd.ErrOrStderr())
			} else {
				log.SetOutput(io.Discard)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMintCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewBundleCommand(opts))
	cmd.AddCommand(NewKeygenCommand(opts))
	cmd.AddCommand(NewDDLCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
