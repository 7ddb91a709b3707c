// Package batch drives the reconciliation and valuation services over all
// users and catalog entries. Items are processed strictly sequentially
// with a cooperative pause between them to respect third-party rate
// limits; one item's failure is logged and never stops the rest.
package batch

import (
	"context"

	"github.com/famshare/famshare-backend/internal/domain"
	"github.com/famshare/famshare-backend/internal/logging"
	"github.com/famshare/famshare-backend/internal/throttle"
	"github.com/famshare/famshare-backend/internal/usecase/syncer"
	"github.com/famshare/famshare-backend/internal/usecase/valuation"
)

// Runner wires the per-item services to the stores they iterate over.
type Runner struct {
	Users     domain.UserRepository
	Catalog   domain.CatalogReader
	Syncer    *syncer.Service
	Valuation *valuation.Service
	Limiter   throttle.Limiter
	Log       logging.Logger
}

// NewRunner creates a new batch runner
func NewRunner(
	users domain.UserRepository,
	catalog domain.CatalogReader,
	syncSvc *syncer.Service,
	valuationSvc *valuation.Service,
	limiter throttle.Limiter,
	log logging.Logger,
) *Runner {
	return &Runner{
		Users:     users,
		Catalog:   catalog,
		Syncer:    syncSvc,
		Valuation: valuationSvc,
		Limiter:   limiter,
		Log:       log,
	}
}

// SyncLibraries syncs every user's store library, one user at a time.
func (r *Runner) SyncLibraries(ctx context.Context) error {
	users, err := r.Users.List(ctx)
	if err != nil {
		return err
	}

	synced := 0
	for _, user := range users {
		if err := r.Limiter.Wait(ctx); err != nil {
			return err
		}
		ok, err := r.Syncer.SyncUserLibrary(ctx, user)
		if err != nil {
			r.Log.Error(ctx, "library sync failed", "user_id", user.ID, "error", err)
			continue
		}
		if ok {
			synced++
		}
	}

	r.Log.Info(ctx, "library sync completed", "users", len(users), "synced", synced)
	return nil
}

// UpdateStoreValues resolves the store valuation for every game still
// missing one.
func (r *Runner) UpdateStoreValues(ctx context.Context) error {
	games, err := r.Catalog.ListMissingSteamValue(ctx)
	if err != nil {
		return err
	}
	return r.eachGame(ctx, games, "store value update", r.Valuation.ResolveStoreValue)
}

// UpdateKeyShopValues resolves the key shop valuation for every game still
// missing one.
func (r *Runner) UpdateKeyShopValues(ctx context.Context) error {
	games, err := r.Catalog.ListMissingKeyShopValue(ctx)
	if err != nil {
		return err
	}
	return r.eachGame(ctx, games, "key shop value update", r.Valuation.ResolveKeyShopValue)
}

// UpdateSharing refreshes family sharing eligibility for every game not
// yet confirmed as sharable.
func (r *Runner) UpdateSharing(ctx context.Context) error {
	games, err := r.Catalog.ListSharingUnknown(ctx)
	if err != nil {
		return err
	}
	return r.eachGame(ctx, games, "family sharing update", r.Valuation.ResolveSharing)
}

// SyncAll runs every batch in sequence: libraries first so the catalog is
// complete, then valuations and sharing flags.
func (r *Runner) SyncAll(ctx context.Context) error {
	if err := r.SyncLibraries(ctx); err != nil {
		return err
	}
	if err := r.UpdateStoreValues(ctx); err != nil {
		return err
	}
	if err := r.UpdateKeyShopValues(ctx); err != nil {
		return err
	}
	if err := r.UpdateSharing(ctx); err != nil {
		return err
	}
	return nil
}

// eachGame applies op to every game with the limiter between items. Only a
// dead context stops the loop early.
func (r *Runner) eachGame(ctx context.Context, games []*domain.Game, what string, op func(context.Context, *domain.Game) (bool, error)) error {
	updated := 0
	for _, game := range games {
		if err := r.Limiter.Wait(ctx); err != nil {
			return err
		}
		changed, err := op(ctx, game)
		if err != nil {
			r.Log.Error(ctx, what+" failed", "game_id", game.ID, "error", err)
			continue
		}
		if changed {
			updated++
		}
	}
	r.Log.Info(ctx, what+" completed", "games", len(games), "updated", updated)
	return nil
}
