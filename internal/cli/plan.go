// internal/cli/plan.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	issuancedom "minter/internal/domain/issuance"
)

// PlanOptions は plan コマンドのフラグです。
type PlanOptions struct {
	*RootOptions
	File string
}

// planOutput は dry-run の結果です。
type planOutput struct {
	Kind       string                     `json:"kind"`
	Amount     uint64                     `json:"amount"`
	Steps      []string                   `json:"steps"`
	Freeze     bool                       `json:"freeze"`
	Edition    bool                       `json:"masterEdition"`
	Descriptor issuancedom.MintDescriptor `json:"descriptor"`
}

// NewPlanCommand は plan（dry-run）コマンドを返します。
// ledger には触れず、検証・ステップ列・メタデータ射影だけを表示します。
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <fungible|asset|nft>",
		Short: "Validate a request and show the steps it would run",
		Long: `Validate a request and show the steps it would run.

Nothing is sent to any ledger. The projected on-chain metadata is printed too.

Example:
  minter plan nft --file ferris.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "request file (YAML or JSON)")

	return cmd
}

func runPlan(opts *PlanOptions, kindArg string, out io.Writer) error {
	v, err := loadRequest(opts.File, kindArg)
	if err != nil {
		return err
	}
	if err := issuancedom.Validate(v); err != nil {
		return err
	}
	trace, err := issuancedom.Plan(v)
	if err != nil {
		return err
	}
	amount, err := issuancedom.MintAmount(v)
	if err != nil {
		return err
	}

	res := planOutput{
		Kind:       v.Kind().String(),
		Amount:     amount,
		Freeze:     trace.Contains(issuancedom.StepFreeze),
		Edition:    trace.Contains(issuancedom.StepCreateMasterEdition),
		Descriptor: issuancedom.Project(v),
	}
	for _, s := range trace {
		res.Steps = append(res.Steps, s.String())
	}

	return render(out, opts.RootOptions, res, func(w io.Writer) {
		d := res.Descriptor
		fmt.Fprintf(w, "kind:    %s\n", res.Kind)
		fmt.Fprintf(w, "amount:  %d\n", res.Amount)
		fmt.Fprintf(w, "steps:   %s\n", strings.Join(res.Steps, " -> "))
		if res.Freeze {
			fmt.Fprintln(w, "frozen:  token account is frozen after mint")
		}
		if res.Edition {
			fmt.Fprintln(w, "edition: master edition")
		}
		fmt.Fprintf(w, "name:    %s\n", d.Name)
		fmt.Fprintf(w, "symbol:  %s\n", d.Symbol)
		fmt.Fprintf(w, "uri:     %s\n", d.URI)
		fmt.Fprintf(w, "royalty: %d bps\n", d.RoyaltyBasisPoints)
		for _, c := range d.Creators {
			fmt.Fprintf(w, "creator: %s share=%d verified=%t\n", c.Address, c.Share, c.Verified)
		}
		if d.Uses != nil {
			fmt.Fprintf(w, "uses:    %d/%d (%s)\n", d.Uses.Remaining, d.Uses.Total, d.Uses.Method)
		}
		if d.Collection != nil {
			fmt.Fprintf(w, "collection: %s verified=%t\n", d.Collection.Address, d.Collection.Verified)
		}
	})
}
