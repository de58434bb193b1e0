package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	issuancedom "minter/internal/domain/issuance"
)

type sent struct {
	from, to, subject, body string
}

type fakeClient struct {
	sent   []sent
	failTo string
}

func (c *fakeClient) Send(_ context.Context, from, to, subject, body string) error {
	if to == c.failTo {
		return errors.New("rejected")
	}
	c.sent = append(c.sent, sent{from, to, subject, body})
	return nil
}

func record() issuancedom.Record {
	return issuancedom.Record{
		ID:          "rec-1",
		Kind:        "non_fungible",
		Status:      issuancedom.StatusSubmitted,
		Name:        "Ferris",
		Symbol:      "F",
		MintAddress: "Mint111",
		Edition:     "Ed111",
		Amount:      1,
		Signature:   "5sig",
		Steps:       []string{"create_mint", "create_master_edition"},
	}
}

func TestIssuanceNotifier_SendsToEveryRecipient(t *testing.T) {
	c := &fakeClient{}
	n := NewIssuanceNotifier(c, "no-reply@example.com", "ops@example.com, , dev@example.com")

	require.NoError(t, n.NotifyIssued(context.Background(), record()))
	require.Len(t, c.sent, 2)
	assert.Equal(t, "ops@example.com", c.sent[0].to)
	assert.Equal(t, "dev@example.com", c.sent[1].to)
	assert.Equal(t, "[minter] non_fungible F issued (submitted)", c.sent[0].subject)
	assert.Contains(t, c.sent[0].body, "edition:   Ed111")
	assert.Contains(t, c.sent[0].body, "create_mint -> create_master_edition")
}

func TestIssuanceNotifier_PartialFailure(t *testing.T) {
	c := &fakeClient{failTo: "ops@example.com"}
	n := NewIssuanceNotifier(c, "no-reply@example.com", "ops@example.com,dev@example.com")

	err := n.NotifyIssued(context.Background(), record())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ops@example.com")
	assert.Len(t, c.sent, 1)
}

func TestIssuanceNotifier_NoRecipientsIsNoop(t *testing.T) {
	c := &fakeClient{}
	n := NewIssuanceNotifier(c, "no-reply@example.com", "")
	assert.NoError(t, n.NotifyIssued(context.Background(), record()))
	assert.Empty(t, c.sent)
}

func TestSendGridClient_Validation(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, NewSendGridClient("", "").Send(ctx, "a@b", "c@d", "s", "b"))
	assert.Error(t, NewSendGridClient("key", "").Send(ctx, "", "c@d", "s", "b"))
	assert.Error(t, NewSendGridClient("key", "").Send(ctx, "a@b", "", "s", "b"))
}
