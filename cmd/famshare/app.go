package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/famshare/famshare-backend/internal/adapter/docstore"
	"github.com/famshare/famshare-backend/internal/adapter/keyshop"
	"github.com/famshare/famshare-backend/internal/adapter/notify"
	"github.com/famshare/famshare-backend/internal/adapter/repository/postgres"
	"github.com/famshare/famshare-backend/internal/adapter/steamstore"
	"github.com/famshare/famshare-backend/internal/domain"
	"github.com/famshare/famshare-backend/internal/logging"
	"github.com/famshare/famshare-backend/internal/throttle"
	"github.com/famshare/famshare-backend/internal/usecase/batch"
	"github.com/famshare/famshare-backend/internal/usecase/dashboard"
	"github.com/famshare/famshare-backend/internal/usecase/fairness"
	"github.com/famshare/famshare-backend/internal/usecase/ledger"
	"github.com/famshare/famshare-backend/internal/usecase/syncer"
	"github.com/famshare/famshare-backend/internal/usecase/valuation"
)

// app holds the wired services shared by every subcommand.
type app struct {
	db *postgres.DB

	Users   domain.UserRepository
	Catalog domain.CatalogRepository
	Library domain.LibraryRepository

	Ledger    *ledger.Service
	Fairness  *fairness.Service
	Dashboard *dashboard.DashboardService
	Runner    *batch.Runner
	Log       logging.Logger
}

// newApp assembles repositories, clients and services from environment
// configuration.
func newApp() (*app, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, err := postgres.NewDB(dbConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	users := postgres.NewUserRepository(db)
	catalog := postgres.NewCatalogRepository(db)
	library := postgres.NewLibraryRepository(db)

	documents := docstore.NewStore(envOr("DOCUMENTS_DIR", "storage/ledgers"))
	notifier := notify.NewLogSink(log)
	store := steamstore.NewClient(os.Getenv("STEAM_API_KEY"))
	shop := keyshop.NewClient(os.Getenv("KEYSHOP_API_KEY"), os.Getenv("KEYSHOP_APP_ID"))

	syncSvc := syncer.NewService(store, catalog, library, log)
	valuationSvc := valuation.NewService(catalog, shop, store, log)

	return &app{
		db:        db,
		Users:     users,
		Catalog:   catalog,
		Library:   library,
		Ledger:    ledger.NewService(catalog, library, users, documents, notifier, log),
		Fairness:  fairness.NewService(users, library, catalog),
		Dashboard: dashboard.NewDashboardService(users, library, catalog),
		// One item per second across all batch jobs keeps the third
		// parties happy.
		Runner: batch.NewRunner(users, catalog, syncSvc, valuationSvc, throttle.PerSecond(1), log),
		Log:    log,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// dbConnString builds the Postgres connection string from DB_CONN_STR or
// the individual DB_* variables (Docker friendly).
func dbConnString() string {
	if s := os.Getenv("DB_CONN_STR"); s != "" {
		return s
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "postgres"),
		envOr("DB_PASSWORD", "postgres"),
		envOr("DB_NAME", "famshare"),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
