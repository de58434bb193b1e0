// internal/adapters/out/mail/issuance_notifier.go
package mail

import (
	"context"
	"fmt"
	"strings"

	app "minter/internal/application/issuance"
	issuancedom "minter/internal/domain/issuance"
)

// EmailClient は実際のメール送信クライアント（SendGrid など）を抽象化したものです。
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// IssuanceNotifier は発行完了を運用者にメールで知らせます。
type IssuanceNotifier struct {
	client EmailClient
	from   string
	to     []string
}

var _ app.Notifier = (*IssuanceNotifier)(nil)

// NewIssuanceNotifier は to をカンマ区切りで受け取ります。
func NewIssuanceNotifier(client EmailClient, from, to string) *IssuanceNotifier {
	var rcpts []string
	for _, s := range strings.Split(to, ",") {
		if s = strings.TrimSpace(s); s != "" {
			rcpts = append(rcpts, s)
		}
	}
	return &IssuanceNotifier{client: client, from: strings.TrimSpace(from), to: rcpts}
}

func (n *IssuanceNotifier) NotifyIssued(ctx context.Context, r issuancedom.Record) error {
	if n == nil || n.client == nil || len(n.to) == 0 {
		return nil
	}

	subject := fmt.Sprintf("[minter] %s %s issued (%s)", r.Kind, r.Symbol, r.Status)
	body := buildIssuanceBody(r)

	var errs []error
	for _, to := range n.to {
		if err := n.client.Send(ctx, n.from, to, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("to=%s: %w", to, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify issuance %s: %v", r.ID, errs)
	}
	return nil
}

func buildIssuanceBody(r issuancedom.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Issuance %s\n\n", r.ID)
	fmt.Fprintf(&b, "kind:      %s\n", r.Kind)
	fmt.Fprintf(&b, "status:    %s\n", r.Status)
	fmt.Fprintf(&b, "name:      %s (%s)\n", r.Name, r.Symbol)
	fmt.Fprintf(&b, "uri:       %s\n", r.URI)
	fmt.Fprintf(&b, "mint:      %s\n", r.MintAddress)
	fmt.Fprintf(&b, "amount:    %d (decimals %d)\n", r.Amount, r.Decimals)
	if r.Edition != "" {
		fmt.Fprintf(&b, "edition:   %s\n", r.Edition)
	}
	if r.Signature != "" {
		fmt.Fprintf(&b, "signature: %s\n", r.Signature)
	}
	fmt.Fprintf(&b, "steps:     %s\n", strings.Join(r.Steps, " -> "))
	return b.String()
}
