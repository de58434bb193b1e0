package firestore

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	issuancedom "minter/internal/domain/issuance"
)

func TestIssuanceDoc_PreservesFullAmount(t *testing.T) {
	now := time.Date(2026, 10, 17, 1, 2, 3, 0, time.UTC)
	rec := issuancedom.Record{
		ID:          "r1",
		Kind:        "fungible",
		Status:      issuancedom.StatusSimulated,
		MintAddress: "M",
		Decimals:    9,
		Amount:      math.MaxUint64,
		CreatedAt:   now,
	}

	doc := toIssuanceDoc(rec)
	back := doc.toRecord("r1")

	assert.Equal(t, uint64(math.MaxUint64), back.Amount)
	assert.Equal(t, uint8(9), back.Decimals)
	assert.Equal(t, []string{}, back.Steps, "nil steps come back as empty")
	assert.Equal(t, now, back.CreatedAt)
}

func TestIssuanceRepositoryFS_NilClient(t *testing.T) {
	r := NewIssuanceRepositoryFS(nil, "")
	assert.Equal(t, DefaultIssuanceCollection, r.Collection)

	_, err := r.Save(context.Background(), issuancedom.Record{})
	assert.Error(t, err)
	_, err = r.GetByID(context.Background(), "x")
	assert.Error(t, err)
	_, err = r.ListByMint(context.Background(), "m")
	assert.Error(t, err)
}
