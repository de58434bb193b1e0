// internal/cli/bundle.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	issuancedom "minter/internal/domain/issuance"
	solanainfra "minter/internal/infra/solana"
)

// BundleOptions は bundle コマンドのフラグです。
type BundleOptions struct {
	*RootOptions
	Mint      string
	Authority string
}

type bundleSlot struct {
	Slot    string `json:"slot"`
	Address string `json:"address"`
}

// NewBundleCommand は mint / authority から導出されるハンドル列を表示するコマンドを返します。
func NewBundleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BundleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bundle <fungible|asset|nft>",
		Short: "Show the resource handles a mint would use",
		Long: `Show the resource handles a mint would use, in pipeline order.

The associated token account, metadata and (for nft) master edition
addresses are derived locally; no RPC call is made.

Example:
  minter bundle nft --mint <MINT> --authority <AUTHORITY>`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundle(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Mint, "mint", "", "mint address (base58)")
	cmd.Flags().StringVar(&opts.Authority, "authority", "", "mint authority address (base58)")

	return cmd
}

func runBundle(cmd *cobra.Command, opts *BundleOptions, kindArg string) error {
	kind, err := issuancedom.ParseKind(strings.ToLower(strings.TrimSpace(kindArg)))
	if err != nil {
		return err
	}
	mint := issuancedom.Address(strings.TrimSpace(opts.Mint))
	authority := issuancedom.Address(strings.TrimSpace(opts.Authority))
	if mint == "" || authority == "" {
		return fmt.Errorf("--mint and --authority are required")
	}

	handles, err := solanainfra.Resolver{}.Resolve(cmd.Context(), kind, mint, authority)
	if err != nil {
		return err
	}
	b, err := issuancedom.ParseBundle(handles)
	if err != nil {
		return err
	}

	slots := []bundleSlot{
		{"mint", b.Mint.String()},
		{"token_account", b.TokenAccount.String()},
		{"authority", b.Authority.String()},
		{"metadata", b.Metadata.String()},
	}
	if b.HasEdition() {
		slots = append(slots, bundleSlot{"edition", b.Edition.String()})
	}
	slots = append(slots,
		bundleSlot{"rent_sysvar", b.RentSysvar.String()},
		bundleSlot{"system_program", b.SystemProgram.String()},
		bundleSlot{"token_program", b.TokenProgram.String()},
		bundleSlot{"associated_token_program", b.AssociatedTokenProgram.String()},
		bundleSlot{"metadata_program", b.MetadataProgram.String()},
	)

	return render(cmd.OutOrStdout(), opts.RootOptions, slots, func(w io.Writer) {
		for i, s := range slots {
			fmt.Fprintf(w, "%2d  %-25s %s\n", i, s.Slot, s.Address)
		}
	})
}
