package gcs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	issuancedom "minter/internal/domain/issuance"
)

const testMint issuancedom.Address = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/meta-bucket/"+testMint.String()+"/metadata.json",
		PublicURL("meta-bucket", MetadataObjectPath(testMint)))
	assert.Equal(t, "https://storage.googleapis.com/b/a/b.json", PublicURL(" b ", "/a/b.json"))
	assert.Empty(t, PublicURL("", "x"))
	assert.Empty(t, PublicURL("b", ""))
}

func TestBuildMetadataJSON_NonFungible(t *testing.T) {
	d := issuancedom.MintDescriptor{
		Name:               "Ferris",
		Symbol:             "F",
		RoyaltyBasisPoints: 500,
		Creators: []issuancedom.Creator{
			{Address: testMint, Share: 50},
			{Address: "11111111111111111111111111111111", Share: 50},
		},
		Collection: &issuancedom.Collection{Address: testMint},
	}
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	b, err := BuildMetadataJSON(d, now)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "Ferris", got["name"])
	assert.Equal(t, float64(500), got["seller_fee_basis_points"])
	assert.Equal(t, "2026-10-17T00:00:00Z", got["created_at"])

	props := got["properties"].(map[string]any)
	creators := props["creators"].([]any)
	require.Len(t, creators, 2)
	assert.Equal(t, float64(50), creators[0].(map[string]any)["share"])

	assert.Equal(t, testMint.String(), got["collection"].(map[string]any)["key"])
	assert.NotContains(t, got, "attributes")
}

func TestBuildMetadataJSON_AssetUses(t *testing.T) {
	d := issuancedom.Project(issuancedom.FungibleAsset{
		Quantity: 10,
		Metadata: issuancedom.AssetMetadata{Name: "Food", Symbol: "FOOD", UseCount: 3},
	})
	b, err := BuildMetadataJSON(d, time.Now())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	attrs := got["attributes"].([]any)
	require.Len(t, attrs, 2)
	assert.Equal(t, "burn", attrs[0].(map[string]any)["value"])
	assert.Equal(t, float64(3), attrs[1].(map[string]any)["value"])
	assert.NotContains(t, got, "properties")

	_, err = BuildMetadataJSON(issuancedom.MintDescriptor{}, time.Now())
	assert.Error(t, err)
}

func TestIsPreconditionFailed(t *testing.T) {
	assert.True(t, isPreconditionFailed(fmt.Errorf("close: %w", &googleapi.Error{Code: http.StatusPreconditionFailed})))
	assert.False(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, isPreconditionFailed(fmt.Errorf("precondition text only")))
}

func TestPublish_RequiresClient(t *testing.T) {
	p := NewMetadataPublisherGCS(nil, "bucket")
	_, err := p.Publish(context.Background(), testMint, issuancedom.MintDescriptor{Name: "x"})
	assert.Error(t, err)
}
