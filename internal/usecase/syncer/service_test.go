package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/famshare/famshare-backend/internal/domain"
	"github.com/famshare/famshare-backend/internal/logging"
)

// MockLibraryFetcher is a mock implementation of LibraryFetcher for testing
type MockLibraryFetcher struct {
	mock.Mock
}

func (m *MockLibraryFetcher) OwnedGames(ctx context.Context, steamID string) ([]OwnedGame, error) {
	args := m.Called(ctx, steamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]OwnedGame), args.Error(1)
}

// MockCatalogWriter is a mock implementation of CatalogWriter for testing
type MockCatalogWriter struct {
	mock.Mock
}

func (m *MockCatalogWriter) Upsert(ctx context.Context, game *domain.Game) (*domain.Game, error) {
	args := m.Called(ctx, game)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Game), args.Error(1)
}

func (m *MockCatalogWriter) SetSteamValue(ctx context.Context, id uuid.UUID, value decimal.Decimal) error {
	args := m.Called(ctx, id, value)
	return args.Error(0)
}

func (m *MockCatalogWriter) SetKeyShopValue(ctx context.Context, id uuid.UUID, value decimal.Decimal) error {
	args := m.Called(ctx, id, value)
	return args.Error(0)
}

func (m *MockCatalogWriter) SetFamilySharing(ctx context.Context, id uuid.UUID, supported bool) error {
	args := m.Called(ctx, id, supported)
	return args.Error(0)
}

// MockLibraryRepository is a mock implementation of LibraryRepository for testing
type MockLibraryRepository struct {
	mock.Mock
}

func (m *MockLibraryRepository) Upsert(ctx context.Context, userID, gameID uuid.UUID, acquiredAt *time.Time) error {
	args := m.Called(ctx, userID, gameID, acquiredAt)
	return args.Error(0)
}

func (m *MockLibraryRepository) FirstOrCreate(ctx context.Context, userID, gameID uuid.UUID, acquiredAt *time.Time) error {
	args := m.Called(ctx, userID, gameID, acquiredAt)
	return args.Error(0)
}

func (m *MockLibraryRepository) AllForUser(ctx context.Context, userID uuid.UUID) ([]*domain.LibraryEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LibraryEntry), args.Error(1)
}

func (m *MockLibraryRepository) ClearAcquiredDates(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newTestService(fetcher *MockLibraryFetcher, catalog *MockCatalogWriter, library *MockLibraryRepository) *Service {
	return NewService(fetcher, catalog, library, logging.NewNopLogger())
}

func TestSyncUserLibrary(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Name: "Alice", SteamID: "7656119"}
	stored := &domain.Game{ID: uuid.New(), AppID: "220", Name: "Half-Life 2"}

	fetcher := new(MockLibraryFetcher)
	fetcher.On("OwnedGames", ctx, "7656119").Return([]OwnedGame{
		{AppID: "220", Name: "Half-Life 2", IconHash: "abc123"},
	}, nil)

	catalog := new(MockCatalogWriter)
	catalog.On("Upsert", ctx, mock.MatchedBy(func(g *domain.Game) bool {
		return g.AppID == "220" && g.Name == "Half-Life 2" && g.IconHash == "abc123"
	})).Return(stored, nil)

	library := new(MockLibraryRepository)
	library.On("FirstOrCreate", ctx, user.ID, stored.ID, (*time.Time)(nil)).Return(nil)

	service := newTestService(fetcher, catalog, library)
	synced, err := service.SyncUserLibrary(ctx, user)

	assert.NoError(t, err)
	assert.True(t, synced)
	catalog.AssertExpectations(t)
	library.AssertExpectations(t)
}

func TestSyncUserLibrary_NoLinkedAccount(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Name: "Bob"}

	fetcher := new(MockLibraryFetcher)

	service := newTestService(fetcher, new(MockCatalogWriter), new(MockLibraryRepository))
	synced, err := service.SyncUserLibrary(ctx, user)

	assert.NoError(t, err)
	assert.False(t, synced)
	fetcher.AssertNotCalled(t, "OwnedGames", mock.Anything, mock.Anything)
}

func TestSyncUserLibrary_FetchFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Name: "Alice", SteamID: "7656119"}

	fetcher := new(MockLibraryFetcher)
	fetcher.On("OwnedGames", ctx, "7656119").Return(nil, errors.New("store unavailable"))

	catalog := new(MockCatalogWriter)

	service := newTestService(fetcher, catalog, new(MockLibraryRepository))
	synced, err := service.SyncUserLibrary(ctx, user)

	assert.NoError(t, err)
	assert.False(t, synced)
	catalog.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSyncUserLibrary_BlankNameGetsPlaceholder(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Name: "Alice", SteamID: "7656119"}
	stored := &domain.Game{ID: uuid.New(), AppID: "999", Name: "Unknown Game"}

	fetcher := new(MockLibraryFetcher)
	fetcher.On("OwnedGames", ctx, "7656119").Return([]OwnedGame{{AppID: "999"}}, nil)

	catalog := new(MockCatalogWriter)
	catalog.On("Upsert", ctx, mock.MatchedBy(func(g *domain.Game) bool {
		return g.AppID == "999" && g.Name == "Unknown Game"
	})).Return(stored, nil)

	library := new(MockLibraryRepository)
	library.On("FirstOrCreate", ctx, user.ID, stored.ID, (*time.Time)(nil)).Return(nil)

	service := newTestService(fetcher, catalog, library)
	_, err := service.SyncUserLibrary(ctx, user)

	assert.NoError(t, err)
	catalog.AssertExpectations(t)
}

func TestSyncUserLibrary_StampsNewGamesAfterLedgerProcessed(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Name: "Alice", SteamID: "7656119", LicensesUploaded: true}
	stored := &domain.Game{ID: uuid.New(), AppID: "620", Name: "Portal 2"}

	fetcher := new(MockLibraryFetcher)
	fetcher.On("OwnedGames", ctx, "7656119").Return([]OwnedGame{
		{AppID: "620", Name: "Portal 2"},
	}, nil)

	catalog := new(MockCatalogWriter)
	catalog.On("Upsert", ctx, mock.Anything).Return(stored, nil)

	// A title appearing after the ledger was reconciled must be a fresh
	// purchase, so it gets a non-nil acquisition date.
	library := new(MockLibraryRepository)
	library.On("FirstOrCreate", ctx, user.ID, stored.ID, mock.MatchedBy(func(at *time.Time) bool {
		return at != nil && time.Since(*at) < time.Minute
	})).Return(nil)

	service := newTestService(fetcher, catalog, library)
	synced, err := service.SyncUserLibrary(ctx, user)

	assert.NoError(t, err)
	assert.True(t, synced)
	library.AssertExpectations(t)
}
