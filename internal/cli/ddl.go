// internal/cli/ddl.go
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	dbadapter "minter/internal/adapters/out/db"
)

// DDLOptions は ddl コマンドのフラグです。
type DDLOptions struct {
	*RootOptions
	OutDir string
}

// NewDDLCommand は ISSUANCE_STORE=postgres 用のテーブル定義を書き出すコマンドを返します。
// 起動時の EnsureSchema と同じ DDL です。
func NewDDLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DDLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Print or write the issuances table DDL",
		Long: `Print or write the issuances table DDL used by ISSUANCE_STORE=postgres.

Example:
  minter ddl --out internal/infra/database/migrations`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDDL(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "directory to write init_issuances.sql into")

	return cmd
}

func runDDL(opts *DDLOptions, out io.Writer) error {
	if opts.OutDir == "" {
		_, err := io.WriteString(out, dbadapter.IssuancesTableDDL)
		return err
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", opts.OutDir, err)
	}
	path := filepath.Join(opts.OutDir, "init_issuances.sql")
	if err := os.WriteFile(path, []byte(dbadapter.IssuancesTableDDL), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}
