package syncer

import (
	"context"
	"time"

	"github.com/famshare/famshare-backend/internal/domain"
	"github.com/famshare/famshare-backend/internal/logging"
)

// OwnedGame is one title reported by the store for a user's account.
type OwnedGame struct {
	AppID    string
	Name     string
	IconHash string
}

// LibraryFetcher lists the games owned by a store account. An error means
// the store stayed unavailable after retries.
type LibraryFetcher interface {
	OwnedGames(ctx context.Context, steamID string) ([]OwnedGame, error)
}

// Service mirrors users' store libraries into the catalog and their
// ownership records. Sync owns names and icons only; it never touches
// valuations or acquisition dates that are already set.
type Service struct {
	Fetcher LibraryFetcher
	Catalog domain.CatalogWriter
	Library domain.LibraryRepository
	Log     logging.Logger
}

// NewService creates a new library sync service
func NewService(fetcher LibraryFetcher, catalog domain.CatalogWriter, library domain.LibraryRepository, log logging.Logger) *Service {
	return &Service{
		Fetcher: fetcher,
		Catalog: catalog,
		Library: library,
		Log:     log,
	}
}

// SyncUserLibrary pulls the user's owned games from the store and upserts
// catalog entries plus ownership records.
//
// Catalog entries are keyed by AppID; re-syncing refreshes name and icon.
// Ownership records are create-only here: an existing entry keeps its
// acquisition date (the ledger reconciler owns those). New entries default
// to an unknown acquisition date, except when the user's ledger was
// already processed — then the title must be a fresh purchase and is
// stamped with the current time.
//
// Returns false without error when the user has no linked store account or
// the store call failed; one user's failure never affects another's sync.
func (s *Service) SyncUserLibrary(ctx context.Context, user *domain.User) (bool, error) {
	if user.SteamID == "" {
		return false, nil
	}

	owned, err := s.Fetcher.OwnedGames(ctx, user.SteamID)
	if err != nil {
		s.Log.Error(ctx, "failed to fetch owned games", "user_id", user.ID, "error", err)
		return false, nil
	}

	for _, og := range owned {
		name := og.Name
		if name == "" {
			name = "Unknown Game"
		}
		game, err := s.Catalog.Upsert(ctx, &domain.Game{
			AppID:    og.AppID,
			Name:     name,
			IconHash: og.IconHash,
		})
		if err != nil {
			return false, err
		}

		var defaultAcquiredAt *time.Time
		if user.LicensesUploaded {
			now := time.Now()
			defaultAcquiredAt = &now
		}
		if err := s.Library.FirstOrCreate(ctx, user.ID, game.ID, defaultAcquiredAt); err != nil {
			return false, err
		}
	}

	return true, nil
}
