package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/famshare/famshare-backend/internal/domain"
)

// libraryRepository implements domain.LibraryRepository
type libraryRepository struct {
	db *DB
}

// NewLibraryRepository creates a new library repository
func NewLibraryRepository(db *DB) domain.LibraryRepository {
	return &libraryRepository{db: db}
}

// Upsert creates the (user, game) entry or overwrites its acquisition
// date. The unique pair makes replays idempotent; later writes win.
func (r *libraryRepository) Upsert(ctx context.Context, userID, gameID uuid.UUID, acquiredAt *time.Time) error {
	query := `
		INSERT INTO library_entries (id, user_id, game_id, acquired_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, game_id)
		DO UPDATE SET acquired_at = EXCLUDED.acquired_at
	`

	_, err := r.db.ExecContext(ctx, query, uuid.New(), userID, gameID, nullTime(acquiredAt))
	if err != nil {
		return fmt.Errorf("failed to upsert library entry: %w", err)
	}
	return nil
}

// FirstOrCreate creates the (user, game) entry only if absent; an existing
// entry keeps its acquisition date.
func (r *libraryRepository) FirstOrCreate(ctx context.Context, userID, gameID uuid.UUID, acquiredAt *time.Time) error {
	query := `
		INSERT INTO library_entries (id, user_id, game_id, acquired_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, game_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, uuid.New(), userID, gameID, nullTime(acquiredAt))
	if err != nil {
		return fmt.Errorf("failed to create library entry: %w", err)
	}
	return nil
}

// AllForUser retrieves a user's library entries
func (r *libraryRepository) AllForUser(ctx context.Context, userID uuid.UUID) ([]*domain.LibraryEntry, error) {
	query := `
		SELECT id, user_id, game_id, acquired_at
		FROM library_entries
		WHERE user_id = $1
		ORDER BY acquired_at DESC NULLS LAST
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list library entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.LibraryEntry
	for rows.Next() {
		var entry domain.LibraryEntry
		var acquiredAt *time.Time
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.GameID, &acquiredAt); err != nil {
			return nil, fmt.Errorf("failed to scan library entry: %w", err)
		}
		entry.AcquiredAt = acquiredAt
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate library entries: %w", err)
	}
	return entries, nil
}

// ClearAcquiredDates nulls every acquisition date for the user
func (r *libraryRepository) ClearAcquiredDates(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE library_entries SET acquired_at = NULL WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear acquired dates: %w", err)
	}
	return nil
}

// nullTime maps a nil *time.Time to SQL NULL
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
