// Package keyshop implements the price search client for the external key
// shop, whose catalog is served by an Algolia search index.
package keyshop

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/famshare/famshare-backend/internal/domain"
	"github.com/famshare/famshare-backend/internal/usecase/valuation"
)

const (
	defaultBaseURL = "https://muvyib7tey-dsn.algolia.net/1/indexes/*/queries"

	indexName   = "magento2_default_products"
	hitsPerPage = 5

	retryAttempts = 3
	retryDelay    = 250 * time.Millisecond
)

// searchFilters pins the index query to visible Steam products sold in the
// GB region, mirroring the storefront's own search widget.
const searchFilters = "&maxValuesPerFacet=1" +
	"&facets=%5B%22restricted_countries.default%22%2C%22platforms.default%22%2C%22region.default%22%2C%22language.default%22%2C%22genres.default%22%2C%22price.GBP.default%22%5D" +
	"&tagFilters=" +
	"&facetFilters=%5B%22restricted_countries.default%3A-GB%22%2C%5B%22platforms.default%3ASteam%22%5D%5D" +
	"&numericFilters=%5B%22visibility_search.default%3D1%22%2C%5B%22region_id.default%3D39%22%2C%22region_id.default%3D36%22%2C%22region_id.default%3D38%22%2C%22region_id.default%3D479%22%2C%22region_id.default%3D3505%22%5D%5D"

// Client implements valuation.PriceSearcher against the key shop's search
// index. Requests retry on a short fixed backoff; exhausting the budget
// surfaces ErrUpstreamUnavailable, which the resolver maps to "no price".
type Client struct {
	BaseURL       string
	APIKey        string
	ApplicationID string
	HTTPClient    *http.Client
}

// NewClient creates a key shop search client
func NewClient(apiKey, applicationID string) *Client {
	return &Client{
		BaseURL:       defaultBaseURL,
		APIKey:        apiKey,
		ApplicationID: applicationID,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

type searchRequest struct {
	Requests []searchQuery `json:"requests"`
}

type searchQuery struct {
	IndexName string `json:"indexName"`
	Params    string `json:"params"`
}

type searchResponse struct {
	Results []struct {
		Hits []struct {
			Name struct {
				Default string `json:"default"`
			} `json:"name"`
			Price map[string]struct {
				Default decimal.Decimal `json:"default"`
			} `json:"price"`
		} `json:"hits"`
	} `json:"results"`
}

// Search queries the index for listings matching the game name.
func (c *Client) Search(ctx context.Context, name string) ([]valuation.SearchHit, error) {
	if c.APIKey == "" || c.ApplicationID == "" {
		return nil, fmt.Errorf("%w: key shop API credentials not configured", domain.ErrUpstreamUnavailable)
	}

	params := fmt.Sprintf("page=0&hitsPerPage=%d&query=%s%s", hitsPerPage, url.QueryEscape(name), searchFilters)
	payload, err := json.Marshal(searchRequest{
		Requests: []searchQuery{{IndexName: indexName, Params: params}},
	})
	if err != nil {
		return nil, err
	}

	body, err := c.post(ctx, payload)
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, nil
	}

	hits := make([]valuation.SearchHit, 0, len(parsed.Results[0].Hits))
	for _, h := range parsed.Results[0].Hits {
		hit := valuation.SearchHit{Name: h.Name.Default}
		if len(h.Price) > 0 {
			hit.Prices = make(map[string]decimal.Decimal, len(h.Price))
			for currency, p := range h.Price {
				hit.Prices[currency] = p.Default
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-algolia-api-key", c.APIKey)
		req.Header.Set("x-algolia-application-id", c.ApplicationID)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, lastErr)
}
