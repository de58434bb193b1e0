// internal/adapters/out/gcs/metadata_publisher_gcs.go
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	app "minter/internal/application/issuance"
	issuancedom "minter/internal/domain/issuance"
)

// MetadataPublisherGCS は off-chain metadata JSON を GCS に置き、公開 URL を返します。
// オブジェクトは "{mintAddress}/metadata.json" 固定で、既存なら上書きしません。
type MetadataPublisherGCS struct {
	Client *storage.Client
	Bucket string

	now func() time.Time
}

var _ app.MetadataPublisher = (*MetadataPublisherGCS)(nil)

func NewMetadataPublisherGCS(client *storage.Client, bucket string) *MetadataPublisherGCS {
	return &MetadataPublisherGCS{
		Client: client,
		Bucket: strings.TrimSpace(bucket),
		now:    time.Now,
	}
}

// MetadataObjectPath は mint ごとの metadata オブジェクト名です。
func MetadataObjectPath(mint issuancedom.Address) string {
	return mint.String() + "/metadata.json"
}

// PublicURL は https://storage.googleapis.com/{bucket}/{object} を返します。
func PublicURL(bucket, object string) string {
	bucket = strings.TrimSpace(bucket)
	object = strings.TrimLeft(strings.TrimSpace(object), "/")
	if bucket == "" || object == "" {
		return ""
	}
	u := url.URL{Scheme: "https", Host: "storage.googleapis.com", Path: "/" + bucket + "/" + object}
	return u.String()
}

func (p *MetadataPublisherGCS) Publish(ctx context.Context, mint issuancedom.Address, d issuancedom.MintDescriptor) (string, error) {
	if p == nil || p.Client == nil {
		return "", errors.New("MetadataPublisherGCS: nil storage client")
	}
	if p.Bucket == "" {
		return "", errors.New("MetadataPublisherGCS: bucket is empty")
	}
	if err := mint.Validate(); err != nil {
		return "", fmt.Errorf("MetadataPublisherGCS: mint: %w", err)
	}

	body, err := BuildMetadataJSON(d, p.now())
	if err != nil {
		return "", err
	}

	object := MetadataObjectPath(mint)
	uri := PublicURL(p.Bucket, object)

	w := p.Client.Bucket(p.Bucket).Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = "application/json"
	w.CacheControl = "public, max-age=300"

	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write metadata bucket=%s object=%s: %w", p.Bucket, object, err)
	}
	if err := w.Close(); err != nil {
		if isPreconditionFailed(err) {
			log.Printf("[metadata_gcs] metadata already exists bucket=%q object=%q", p.Bucket, object)
			return uri, nil
		}
		return "", fmt.Errorf("close metadata bucket=%s object=%s: %w", p.Bucket, object, err)
	}

	log.Printf("[metadata_gcs] metadata published bucket=%q object=%q bytes=%d", p.Bucket, object, len(body))
	return uri, nil
}

// BuildMetadataJSON は MintDescriptor から token metadata 標準形式の JSON を組み立てます。
func BuildMetadataJSON(d issuancedom.MintDescriptor, now time.Time) ([]byte, error) {
	if strings.TrimSpace(d.Name) == "" {
		return nil, fmt.Errorf("metadata name is empty")
	}

	payload := map[string]any{
		"name":                    d.Name,
		"symbol":                  d.Symbol,
		"seller_fee_basis_points": d.RoyaltyBasisPoints,
		"created_at":              now.UTC().Format(time.RFC3339),
	}

	props := map[string]any{}
	if len(d.Creators) > 0 {
		creators := make([]map[string]any, 0, len(d.Creators))
		for _, c := range d.Creators {
			creators = append(creators, map[string]any{
				"address": c.Address.String(),
				"share":   c.Share,
			})
		}
		props["creators"] = creators
	}
	if len(props) > 0 {
		payload["properties"] = props
	}

	if d.Collection != nil {
		payload["collection"] = map[string]any{"key": d.Collection.Address.String()}
	}
	if d.Uses != nil {
		payload["attributes"] = []map[string]any{
			{"trait_type": "use_method", "value": d.Uses.Method.String()},
			{"trait_type": "uses_total", "value": d.Uses.Total},
		}
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata json: %w", err)
	}
	return b, nil
}

// isPreconditionFailed は DoesNotExist 条件での 412 を検出します。
func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusPreconditionFailed
	}
	return false
}
