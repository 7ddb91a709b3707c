package batch

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
	"github.com/famshare/famshare-backend/internal/usecase/syncer"
	"github.com/famshare/famshare-backend/internal/usecase/valuation"
)

// countingLimiter records how many times the runner paused between items.
type countingLimiter struct {
	waits int
}

func (l *countingLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.waits++
	return nil
}

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) SetLicensesUploaded(ctx context.Context, id uuid.UUID, uploaded bool) error {
	args := m.Called(ctx, id, uploaded)
	return args.Error(0)
}

// MockCatalogReader is a mock implementation of CatalogReader for testing
type MockCatalogReader struct {
	mock.Mock
}

func (m *MockCatalogReader) GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Game), args.Error(1)
}

func (m *MockCatalogReader) GetByAppID(ctx context.Context, appID string) (*domain.Game, error) {
	args := m.Called(ctx, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Game), args.Error(1)
}

func (m *MockCatalogReader) ListAll(ctx context.Context) ([]*domain.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Game), args.Error(1)
}

func (m *MockCatalogReader) ListMissingSteamValue(ctx context.Context) ([]*domain.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Game), args.Error(1)
}

func (m *MockCatalogReader) ListMissingKeyShopValue(ctx context.Context) ([]*domain.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Game), args.Error(1)
}

func (m *MockCatalogReader) ListSharingUnknown(ctx context.Context) ([]*domain.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Game), args.Error(1)
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

// MockLibraryFetcher is a mock implementation of syncer.LibraryFetcher for testing
type MockLibraryFetcher struct {
	mock.Mock
}

func (m *MockLibraryFetcher) OwnedGames(ctx context.Context, steamID string) ([]syncer.OwnedGame, error) {
	args := m.Called(ctx, steamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]syncer.OwnedGame), args.Error(1)
}

// MockPriceSearcher is a mock implementation of valuation.PriceSearcher for testing
type MockPriceSearcher struct {
	mock.Mock
}

func (m *MockPriceSearcher) Search(ctx context.Context, name string) ([]valuation.SearchHit, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]valuation.SearchHit), args.Error(1)
}

// MockAppDetailsFetcher is a mock implementation of valuation.AppDetailsFetcher for testing
type MockAppDetailsFetcher struct {
	mock.Mock
}

func (m *MockAppDetailsFetcher) AppDetails(ctx context.Context, appID string) (*valuation.AppDetails, error) {
	args := m.Called(ctx, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*valuation.AppDetails), args.Error(1)
}

type runnerFixture struct {
	users    *MockUserRepository
	catalog  *MockCatalogReader
	writer   *MockCatalogWriter
	library  *MockLibraryRepository
	fetcher  *MockLibraryFetcher
	searcher *MockPriceSearcher
	store    *MockAppDetailsFetcher
	limiter  *countingLimiter
	runner   *Runner
}

func newRunnerFixture() *runnerFixture {
	f := &runnerFixture{
		users:    new(MockUserRepository),
		catalog:  new(MockCatalogReader),
		writer:   new(MockCatalogWriter),
		library:  new(MockLibraryRepository),
		fetcher:  new(MockLibraryFetcher),
		searcher: new(MockPriceSearcher),
		store:    new(MockAppDetailsFetcher),
		limiter:  &countingLimiter{},
	}
	log := logging.NewNopLogger()
	syncSvc := syncer.NewService(f.fetcher, f.writer, f.library, log)
	valuationSvc := valuation.NewService(f.writer, f.searcher, f.store, log)
	f.runner = NewRunner(f.users, f.catalog, syncSvc, valuationSvc, f.limiter, log)
	return f
}

func TestSyncLibraries_ThrottlesPerUser(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture()

	alice := &domain.User{ID: uuid.New(), Name: "Alice", SteamID: "111"}
	bob := &domain.User{ID: uuid.New(), Name: "Bob", SteamID: "222"}

	f.users.On("List", ctx).Return([]*domain.User{alice, bob}, nil)
	f.fetcher.On("OwnedGames", ctx, mock.Anything).Return([]syncer.OwnedGame{}, nil)

	err := f.runner.SyncLibraries(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 2, f.limiter.waits)
	f.fetcher.AssertNumberOfCalls(t, "OwnedGames", 2)
}

func TestUpdateStoreValues_OneFailureDoesNotStopTheRest(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture()

	broken := &domain.Game{ID: uuid.New(), AppID: "111", Name: "Broken"}
	fine := &domain.Game{ID: uuid.New(), AppID: "222", Name: "Fine"}
	initial := int64(999)

	f.catalog.On("ListMissingSteamValue", ctx).Return([]*domain.Game{broken, fine}, nil)
	f.store.On("AppDetails", ctx, "111").Return(&valuation.AppDetails{InitialPence: &initial}, nil)
	f.store.On("AppDetails", ctx, "222").Return(&valuation.AppDetails{InitialPence: &initial}, nil)
	f.writer.On("SetSteamValue", ctx, broken.ID, mock.Anything).Return(errors.New("db down"))
	f.writer.On("SetSteamValue", ctx, fine.ID, decimal.New(999, -2)).Return(nil)

	err := f.runner.UpdateStoreValues(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 2, f.limiter.waits)
	f.writer.AssertNumberOfCalls(t, "SetSteamValue", 2)
}

func TestUpdateSharing_OnlyUnconfirmedGames(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture()

	game := &domain.Game{ID: uuid.New(), AppID: "220", Name: "Half-Life 2"}

	f.catalog.On("ListSharingUnknown", ctx).Return([]*domain.Game{game}, nil)
	f.store.On("AppDetails", ctx, "220").Return(&valuation.AppDetails{CategoryIDs: []int{62}}, nil)
	f.writer.On("SetFamilySharing", ctx, game.ID, true).Return(nil)

	err := f.runner.UpdateSharing(ctx)

	assert.NoError(t, err)
	f.writer.AssertExpectations(t)
}

func TestSyncLibraries_CanceledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newRunnerFixture()
	f.users.On("List", ctx).Return([]*domain.User{
		{ID: uuid.New(), Name: "Alice", SteamID: "111"},
	}, nil)

	err := f.runner.SyncLibraries(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	f.fetcher.AssertNotCalled(t, "OwnedGames", mock.Anything, mock.Anything)
}

func TestUpdateKeyShopValues_ListFailurePropagates(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture()

	listErr := errors.New("catalog unavailable")
	f.catalog.On("ListMissingKeyShopValue", ctx).Return(nil, listErr)

	err := f.runner.UpdateKeyShopValues(ctx)

	assert.ErrorIs(t, err, listErr)
	assert.Equal(t, 0, f.limiter.waits)
}
