package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// LibraryEntry records that a user owns a game, with an optional
// acquisition timestamp. The (UserID, GameID) pair is unique; AcquiredAt
// is the only field ever updated after creation, and only by the ledger
// reconciler (or the sync default when licenses were already uploaded).
// A nil AcquiredAt means "ownership known, acquisition date unknown".
type LibraryEntry struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	GameID     uuid.UUID
	AcquiredAt *time.Time
}

// Validate ensures the library entry adheres to domain rules
func (e *LibraryEntry) Validate() error {
	if e.UserID == uuid.Nil {
		return errors.New("library entry must have a user ID")
	}
	if e.GameID == uuid.Nil {
		return errors.New("library entry must have a game ID")
	}
	return nil
}

// User represents a member of the sharing group.
type User struct {
	ID               uuid.UUID
	Name             string
	SteamID          string // external store account ID, empty if not linked
	LicensesUploaded bool   // true once a licenses ledger has been processed
}

// LedgerRow is one raw row extracted from an uploaded purchase-history
// document. Rows are ephemeral: consumed once per upload, never persisted.
type LedgerRow struct {
	RawDate string
	RawItem string
}
