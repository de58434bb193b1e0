// internal/cli/output.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"minter/internal/adapters/in/request"
	issuancedom "minter/internal/domain/issuance"
)

// render は --format に応じて v を JSON か text で書き出します。
// text は呼び出し側の関数に任せます。
func render(w io.Writer, opts *RootOptions, v any, text func(io.Writer)) error {
	if opts != nil && opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

// loadRequest は YAML（JSON も可）のリクエストファイルを読み、Variant に変換します。
// kindArg はコマンド引数の種別で、ファイル側の kind と食い違えばエラーにします。
func loadRequest(path, kindArg string) (issuancedom.Variant, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open request file: %w", err)
	}
	defer f.Close()

	var req request.IssuanceRequest
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("decode request file %s: %w", path, err)
	}

	want, err := issuancedom.ParseKind(strings.ToLower(strings.TrimSpace(kindArg)))
	if err != nil {
		return nil, err
	}
	v, err := req.ToVariant(kindArg)
	if err != nil {
		return nil, err
	}
	if v.Kind() != want {
		return nil, fmt.Errorf("%w: file kind %s, command kind %s", issuancedom.ErrVariantMismatch, v.Kind(), want)
	}
	return v, nil
}

func printRecord(w io.Writer, rec issuancedom.Record) {
	fmt.Fprintf(w, "id:           %s\n", rec.ID)
	fmt.Fprintf(w, "kind:         %s\n", rec.Kind)
	fmt.Fprintf(w, "status:       %s\n", rec.Status)
	fmt.Fprintf(w, "mint:         %s\n", rec.MintAddress)
	fmt.Fprintf(w, "tokenAccount: %s\n", rec.TokenAcct)
	fmt.Fprintf(w, "metadata:     %s\n", rec.Metadata)
	if rec.Edition != "" {
		fmt.Fprintf(w, "edition:      %s\n", rec.Edition)
	}
	fmt.Fprintf(w, "amount:       %d\n", rec.Amount)
	fmt.Fprintf(w, "steps:        %s\n", strings.Join(rec.Steps, ", "))
	if rec.FailedStep != "" {
		fmt.Fprintf(w, "failedStep:   %s\n", rec.FailedStep)
		fmt.Fprintf(w, "error:        %s\n", rec.Error)
	}
	if rec.Signature != "" {
		fmt.Fprintf(w, "signature:    %s\n", rec.Signature)
	}
}
