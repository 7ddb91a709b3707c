package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famshare/famshare-backend/internal/domain"
)

// catalogRepository implements domain.CatalogRepository
type catalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *DB) domain.CatalogRepository {
	return &catalogRepository{db: db}
}

const gameColumns = "id, app_id, name, icon_hash, steam_value, keyshop_value, family_sharing"

// GetByID retrieves a game by its ID
func (r *catalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE id = $1
	`
	return r.scanGame(r.db.QueryRowContext(ctx, query, id))
}

// GetByAppID retrieves a game by its external store identifier
func (r *catalogRepository) GetByAppID(ctx context.Context, appID string) (*domain.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE app_id = $1
	`
	return r.scanGame(r.db.QueryRowContext(ctx, query, appID))
}

// Upsert creates the game keyed by AppID, or refreshes its name and icon.
// Valuations and the family sharing flag are never written here.
func (r *catalogRepository) Upsert(ctx context.Context, game *domain.Game) (*domain.Game, error) {
	if err := game.Validate(); err != nil {
		return nil, err
	}

	id := game.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	query := `
		INSERT INTO games (id, app_id, name, icon_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (app_id)
		DO UPDATE SET name = EXCLUDED.name, icon_hash = EXCLUDED.icon_hash
		RETURNING ` + gameColumns + `
	`
	return r.scanGame(r.db.QueryRowContext(ctx, query, id, game.AppID, game.Name, game.IconHash))
}

// SetSteamValue resolves the store valuation for a game
func (r *catalogRepository) SetSteamValue(ctx context.Context, id uuid.UUID, value decimal.Decimal) error {
	return r.setValue(ctx, "steam_value", id, value)
}

// SetKeyShopValue resolves the key shop valuation for a game
func (r *catalogRepository) SetKeyShopValue(ctx context.Context, id uuid.UUID, value decimal.Decimal) error {
	return r.setValue(ctx, "keyshop_value", id, value)
}

func (r *catalogRepository) setValue(ctx context.Context, column string, id uuid.UUID, value decimal.Decimal) error {
	query := fmt.Sprintf("UPDATE games SET %s = $1 WHERE id = $2", column)

	res, err := r.db.ExecContext(ctx, query, value.String(), id)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", column, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("game %s: %w", id, domain.ErrGameNotFound)
	}
	return nil
}

// SetFamilySharing records whether the game supports family sharing
func (r *catalogRepository) SetFamilySharing(ctx context.Context, id uuid.UUID, supported bool) error {
	query := `UPDATE games SET family_sharing = $1 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, supported, id)
	if err != nil {
		return fmt.Errorf("failed to set family_sharing: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("game %s: %w", id, domain.ErrGameNotFound)
	}
	return nil
}

// ListMissingSteamValue returns games whose store valuation is unresolved,
// newest first
func (r *catalogRepository) ListMissingSteamValue(ctx context.Context) ([]*domain.Game, error) {
	return r.list(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE steam_value IS NULL
		ORDER BY created_at DESC
	`)
}

// ListMissingKeyShopValue returns games whose key shop valuation is
// unresolved, newest first
func (r *catalogRepository) ListMissingKeyShopValue(ctx context.Context) ([]*domain.Game, error) {
	return r.list(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE keyshop_value IS NULL
		ORDER BY created_at DESC
	`)
}

// ListSharingUnknown returns games not yet confirmed as family-sharable
func (r *catalogRepository) ListSharingUnknown(ctx context.Context) ([]*domain.Game, error) {
	return r.list(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE family_sharing = FALSE
		ORDER BY created_at DESC
	`)
}

// ListAll returns every game in the catalog
func (r *catalogRepository) ListAll(ctx context.Context) ([]*domain.Game, error) {
	return r.list(ctx, `
		SELECT `+gameColumns+`
		FROM games
		ORDER BY name
	`)
}

// EachCandidate streams (id, name) pairs to the matcher in keyset-ordered
// batches so a large catalog never has to fit in memory at once.
func (r *catalogRepository) EachCandidate(ctx context.Context, batchSize int, fn func(domain.Candidate) error) error {
	query := `
		SELECT id, name
		FROM games
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`

	last := uuid.Nil
	for {
		rows, err := r.db.QueryContext(ctx, query, last, batchSize)
		if err != nil {
			return fmt.Errorf("failed to list candidates: %w", err)
		}

		batch := make([]domain.Candidate, 0, batchSize)
		for rows.Next() {
			var c domain.Candidate
			if err := rows.Scan(&c.ID, &c.Name); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan candidate: %w", err)
			}
			batch = append(batch, c)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("failed to iterate candidates: %w", err)
		}
		rows.Close()

		for _, c := range batch {
			if err := fn(c); err != nil {
				return err
			}
		}

		if len(batch) < batchSize {
			return nil
		}
		last = batch[len(batch)-1].ID
	}
}

func (r *catalogRepository) list(ctx context.Context, query string) ([]*domain.Game, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*domain.Game
	for rows.Next() {
		game, err := r.scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}
	return games, nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func (r *catalogRepository) scanGame(row scanner) (*domain.Game, error) {
	var game domain.Game
	var steamValue, keyshopValue sql.NullString

	err := row.Scan(
		&game.ID,
		&game.AppID,
		&game.Name,
		&game.IconHash,
		&steamValue,
		&keyshopValue,
		&game.FamilySharing,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}

	// Parse valuations (nullable DECIMAL)
	if steamValue.Valid {
		v, err := decimal.NewFromString(steamValue.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse steam_value: %w", err)
		}
		game.SteamValue = &v
	}
	if keyshopValue.Valid {
		v, err := decimal.NewFromString(keyshopValue.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse keyshop_value: %w", err)
		}
		game.KeyShopValue = &v
	}

	return &game, nil
}
