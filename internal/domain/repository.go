package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Candidate is the (id, name) projection of a catalog entry that the
// matcher scores against a query name.
type Candidate struct {
	ID   uuid.UUID
	Name string
}

// CandidateSource streams catalog candidates in batches so the matcher can
// scan an arbitrarily large catalog with bounded memory. Batches are
// delivered in a stable order, synchronously; iteration stops at the first
// error returned by fn.
type CandidateSource interface {
	EachCandidate(ctx context.Context, batchSize int, fn func(Candidate) error) error
}

// CatalogReader provides read access to the game catalog
type CatalogReader interface {
	// GetByID retrieves a game by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Game, error)

	// GetByAppID retrieves a game by its external store identifier
	GetByAppID(ctx context.Context, appID string) (*Game, error)

	// ListAll returns every game in the catalog
	ListAll(ctx context.Context) ([]*Game, error)

	// ListMissingSteamValue returns games whose store valuation is unresolved
	ListMissingSteamValue(ctx context.Context) ([]*Game, error)

	// ListMissingKeyShopValue returns games whose key shop valuation is unresolved
	ListMissingKeyShopValue(ctx context.Context) ([]*Game, error)

	// ListSharingUnknown returns games not yet confirmed as family-sharable
	ListSharingUnknown(ctx context.Context) ([]*Game, error)
}

// CatalogWriter mutates the game catalog. Upsert owns identity and naming;
// the Set methods are the only way valuations and the sharing flag change.
type CatalogWriter interface {
	// Upsert creates the game keyed by AppID, or refreshes its name and
	// icon if it already exists. Never touches valuations or the family
	// sharing flag.
	Upsert(ctx context.Context, game *Game) (*Game, error)

	// SetSteamValue resolves the store valuation for a game
	SetSteamValue(ctx context.Context, id uuid.UUID, value decimal.Decimal) error

	// SetKeyShopValue resolves the key shop valuation for a game
	SetKeyShopValue(ctx context.Context, id uuid.UUID, value decimal.Decimal) error

	// SetFamilySharing records whether the game supports family sharing
	SetFamilySharing(ctx context.Context, id uuid.UUID, supported bool) error
}

// CatalogRepository is the full catalog persistence interface
type CatalogRepository interface {
	CandidateSource
	CatalogReader
	CatalogWriter
}

// LibraryRepository defines the interface for ownership persistence
type LibraryRepository interface {
	// Upsert creates the (user, game) entry or overwrites its AcquiredAt.
	// Later writes always win; the unique pair keeps re-runs idempotent.
	Upsert(ctx context.Context, userID, gameID uuid.UUID, acquiredAt *time.Time) error

	// FirstOrCreate creates the (user, game) entry only if absent; an
	// existing entry is left untouched, including its AcquiredAt.
	FirstOrCreate(ctx context.Context, userID, gameID uuid.UUID, acquiredAt *time.Time) error

	// AllForUser retrieves a user's library entries
	AllForUser(ctx context.Context, userID uuid.UUID) ([]*LibraryEntry, error)

	// ClearAcquiredDates nulls every AcquiredAt for the user
	ClearAcquiredDates(ctx context.Context, userID uuid.UUID) error
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// GetByID retrieves a user by their ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*User, error)

	// SetLicensesUploaded flips the user's ledger-processed flag
	SetLicensesUploaded(ctx context.Context, id uuid.UUID, uploaded bool) error
}

// DocumentStore provides the raw bytes of an uploaded history document,
// keyed by an opaque handle. Documents are deleted after processing.
type DocumentStore interface {
	Get(ctx context.Context, handle string) ([]byte, error)
	Delete(ctx context.Context, handle string) error
}

// NotificationSink delivers the "ledger processed" completion notice.
// Delivery transport (email, push) lives outside the core.
type NotificationSink interface {
	LicensesProcessed(ctx context.Context, user *User, gameCount int) error
}
