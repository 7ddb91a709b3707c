package valuation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/famshare/famshare-backend/internal/domain"
	"github.com/famshare/famshare-backend/internal/logging"
	"github.com/famshare/famshare-backend/internal/usecase/matcher"
)

// SearchThreshold is the minimum similarity score for a key shop search
// hit to be accepted as the game being priced.
const SearchThreshold = 60.0

// PriceCurrency is the currency key read from accepted search hits.
const PriceCurrency = "GBP"

// familySharingCategoryID is the store category marking titles that can be
// shared within a family group.
const familySharingCategoryID = 62

// SearchHit is one result from the key shop search API. Prices is keyed by
// currency code; a missing key means the hit carries no price in that
// currency.
type SearchHit struct {
	Name   string
	Prices map[string]decimal.Decimal
}

// PriceSearcher queries the external key shop for listings matching a game
// name. Implementations retry internally; an error means the upstream
// stayed unavailable and callers treat it like an empty result.
type PriceSearcher interface {
	Search(ctx context.Context, name string) ([]SearchHit, error)
}

// AppDetails is the store's metadata for one catalog entry. InitialPence
// is the undiscounted price in minor units; nil means the store lists no
// price (free or delisted).
type AppDetails struct {
	InitialPence *int64
	CategoryIDs  []int
}

// AppDetailsFetcher looks up store metadata by external app ID. A nil
// result with nil error means the store does not know the app.
type AppDetailsFetcher interface {
	AppDetails(ctx context.Context, appID string) (*AppDetails, error)
}

// Service resolves market valuations and sharing eligibility for catalog
// entries. All writes go through the catalog repository's valuation
// setters; nothing else about a game is ever touched here.
type Service struct {
	Catalog  domain.CatalogWriter
	Searcher PriceSearcher
	Store    AppDetailsFetcher
	Log      logging.Logger
}

// NewService creates a new valuation service
func NewService(catalog domain.CatalogWriter, searcher PriceSearcher, store AppDetailsFetcher, log logging.Logger) *Service {
	return &Service{
		Catalog:  catalog,
		Searcher: searcher,
		Store:    store,
		Log:      log,
	}
}

// ResolveKeyShopValue fills in the key shop valuation for a game whose
// valuation is still unresolved.
//
// Every outcome is terminal: a search failure, an empty result, a best
// match below threshold or a match without a GBP price all resolve the
// valuation to zero, and an already-resolved valuation (including zero) is
// never retried. A second call is therefore a no-op with no external
// queries. Returns true when this call changed the valuation.
func (s *Service) ResolveKeyShopValue(ctx context.Context, game *domain.Game) (bool, error) {
	if game.KeyShopValue != nil {
		return false, nil
	}

	hits, err := s.Searcher.Search(ctx, game.Name)
	if err != nil {
		s.Log.Warn(ctx, "key shop search failed, resolving value to zero", "game_id", game.ID, "error", err)
		hits = nil
	}
	if len(hits) == 0 {
		return true, s.setKeyShopValue(ctx, game, decimal.Zero)
	}

	candidates := make(matcher.SliceSource, 0, len(hits))
	for _, hit := range hits {
		if hit.Name == "" {
			continue
		}
		candidates = append(candidates, domain.Candidate{Name: hit.Name})
	}

	match, err := matcher.FindBest(ctx, candidates, game.Name, SearchThreshold)
	if err != nil {
		return false, err
	}
	if match == nil {
		return true, s.setKeyShopValue(ctx, game, decimal.Zero)
	}

	// The matcher keeps the first candidate on score ties, so the first
	// hit carrying the winning name is the accepted one.
	for _, hit := range hits {
		if hit.Name != match.Candidate.Name {
			continue
		}
		if price, ok := hit.Prices[PriceCurrency]; ok {
			return true, s.setKeyShopValue(ctx, game, price)
		}
		break
	}
	return true, s.setKeyShopValue(ctx, game, decimal.Zero)
}

// ResolveStoreValue fills in the store valuation for a game whose store
// valuation is still unresolved, using the undiscounted price from the
// store's app details. A game the store no longer lists, or lists without
// a price, resolves to zero. Unlike the key shop path, a failed lookup
// leaves the valuation unresolved so the next batch run retries it.
func (s *Service) ResolveStoreValue(ctx context.Context, game *domain.Game) (bool, error) {
	if game.SteamValue != nil {
		return false, nil
	}

	details, err := s.Store.AppDetails(ctx, game.AppID)
	if err != nil {
		s.Log.Warn(ctx, "store app details failed", "game_id", game.ID, "error", err)
		return false, nil
	}
	if details == nil {
		return false, nil
	}

	value := decimal.Zero
	if details.InitialPence != nil {
		// Store prices arrive in minor units; keep two decimal places.
		value = decimal.New(*details.InitialPence, -2)
	}
	if err := s.Catalog.SetSteamValue(ctx, game.ID, value); err != nil {
		return false, err
	}
	v := value
	game.SteamValue = &v
	return true, nil
}

// ResolveSharing records whether the game supports family sharing based on
// its store categories. A game already confirmed as sharable is never
// re-checked; one not yet confirmed is re-evaluated on every run.
func (s *Service) ResolveSharing(ctx context.Context, game *domain.Game) (bool, error) {
	if game.FamilySharing {
		return false, nil
	}

	details, err := s.Store.AppDetails(ctx, game.AppID)
	if err != nil {
		s.Log.Warn(ctx, "store app details failed", "game_id", game.ID, "error", err)
		return false, nil
	}
	if details == nil {
		return false, nil
	}

	supported := false
	for _, id := range details.CategoryIDs {
		if id == familySharingCategoryID {
			supported = true
			break
		}
	}

	if err := s.Catalog.SetFamilySharing(ctx, game.ID, supported); err != nil {
		return false, err
	}
	game.FamilySharing = supported
	return true, nil
}

func (s *Service) setKeyShopValue(ctx context.Context, game *domain.Game, value decimal.Decimal) error {
	if err := s.Catalog.SetKeyShopValue(ctx, game.ID, value); err != nil {
		return err
	}
	v := value
	game.KeyShopValue = &v
	return nil
}
