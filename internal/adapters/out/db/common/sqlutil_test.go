package common

import (
	"context"
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 50000, math.MaxInt64 + 1, math.MaxUint64} {
		got, err := NumericToUint64(Uint64ToNumeric(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	_, err := NumericToUint64("-1")
	assert.Error(t, err)
	_, err = NumericToUint64("18446744073709551616")
	assert.Error(t, err)

	got, err := NumericToUint64(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)
}

func TestNullHelpers(t *testing.T) {
	assert.False(t, NullIfBlank("  ").Valid)
	assert.Equal(t, sql.NullString{String: "sig", Valid: true}, NullIfBlank(" sig "))

	assert.Nil(t, ToDBTime(nil))
	assert.Nil(t, ToDBTime(&time.Time{}))

	jst := time.FixedZone("JST", 9*60*60)
	at := time.Date(2026, 1, 2, 9, 0, 0, 0, jst)
	assert.Equal(t, at.UTC(), ToDBTime(&at))

	assert.Nil(t, FromNullTime(sql.NullTime{}))
	p := FromNullTime(sql.NullTime{Time: at, Valid: true})
	require.NotNil(t, p)
	assert.Equal(t, time.UTC, p.Location())
	assert.True(t, at.Equal(*p))
}

func TestGetRunner_WithoutTx(t *testing.T) {
	var db *sql.DB
	assert.Equal(t, Runner(db), GetRunner(context.Background(), db))
}
