// Package steamstore implements the store-side API clients: the owned
// games listing used by library sync and the app details lookup used by
// the valuation resolver.
package steamstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/famshare/famshare-backend/internal/domain"
	"github.com/famshare/famshare-backend/internal/usecase/syncer"
	"github.com/famshare/famshare-backend/internal/usecase/valuation"
)

const (
	defaultAPIBaseURL   = "https://api.steampowered.com"
	defaultStoreBaseURL = "https://store.steampowered.com"

	userAgent   = "FamilyShareComparison/1.0"
	countryCode = "GB"

	retryAttempts = 3
	retryDelay    = time.Second
)

// Client calls the store's web APIs with a bounded retry policy. A request
// that exhausts its retries surfaces as ErrUpstreamUnavailable, which
// callers treat as "not found".
type Client struct {
	APIBaseURL   string
	StoreBaseURL string
	APIKey       string
	HTTPClient   *http.Client
}

// NewClient creates a store client. The API key is required for owned
// games listings but not for app details.
func NewClient(apiKey string) *Client {
	return &Client{
		APIBaseURL:   defaultAPIBaseURL,
		StoreBaseURL: defaultStoreBaseURL,
		APIKey:       apiKey,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

type ownedGamesResponse struct {
	Response struct {
		Games []struct {
			AppID      int64  `json:"appid"`
			Name       string `json:"name"`
			ImgIconURL string `json:"img_icon_url"`
		} `json:"games"`
	} `json:"response"`
}

// OwnedGames lists the games owned by the given store account.
func (c *Client) OwnedGames(ctx context.Context, steamID string) ([]syncer.OwnedGame, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("%w: store API key not configured", domain.ErrUpstreamUnavailable)
	}

	params := url.Values{
		"key":             {c.APIKey},
		"steamid":         {steamID},
		"include_appinfo": {"1"},
		"format":          {"json"},
	}
	endpoint := c.APIBaseURL + "/IPlayerService/GetOwnedGames/v0001/?" + params.Encode()

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var parsed ownedGamesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode owned games response: %w", err)
	}

	owned := make([]syncer.OwnedGame, 0, len(parsed.Response.Games))
	for _, g := range parsed.Response.Games {
		owned = append(owned, syncer.OwnedGame{
			AppID:    strconv.FormatInt(g.AppID, 10),
			Name:     g.Name,
			IconHash: g.ImgIconURL,
		})
	}
	return owned, nil
}

type appDetailsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		PriceOverview *struct {
			Initial int64 `json:"initial"`
		} `json:"price_overview"`
		Categories []struct {
			ID int `json:"id"`
		} `json:"categories"`
	} `json:"data"`
}

// AppDetails looks up store metadata for one app. A response the store
// marks unsuccessful (unknown or delisted app) yields nil without error.
func (c *Client) AppDetails(ctx context.Context, appID string) (*valuation.AppDetails, error) {
	params := url.Values{
		"appids": {appID},
		"cc":     {countryCode},
	}
	endpoint := c.StoreBaseURL + "/api/appdetails?" + params.Encode()

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	// The store keys the payload by the requested app ID.
	var parsed map[string]appDetailsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode app details response: %w", err)
	}

	entry, ok := parsed[appID]
	if !ok || !entry.Success {
		return nil, nil
	}

	details := &valuation.AppDetails{}
	if entry.Data.PriceOverview != nil {
		initial := entry.Data.PriceOverview.Initial
		details.InitialPence = &initial
	}
	for _, cat := range entry.Data.Categories {
		details.CategoryIDs = append(details.CategoryIDs, cat.ID)
	}
	return details, nil
}

// get performs a GET with the client's retry budget: up to retryAttempts
// tries with a fixed pause between them, then ErrUpstreamUnavailable.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

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
