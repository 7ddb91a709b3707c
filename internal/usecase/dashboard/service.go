package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famshare/famshare-backend/internal/domain"
)

// recentWindowMonths is the window for the "recent purchases" counter shown
// next to each user.
const recentWindowMonths = 6

// trendMonths is how far back the monthly acquisition trend reaches.
const trendMonths = 12

// UserStats summarizes one user's library for the dashboard.
type UserStats struct {
	UserID          uuid.UUID
	Name            string
	GameCount       int
	TotalValue      decimal.Decimal
	RecentPurchases int
}

// MonthBucket is one month of the acquisition trend, counting dated
// acquisitions of sharing-eligible games.
type MonthBucket struct {
	Month string // "Jan 2006"
	Games int
}

// DashboardService assembles the read models behind the comparison pages.
// Everything is derived on demand from current library and catalog state.
type DashboardService struct {
	Users   domain.UserRepository
	Library domain.LibraryRepository
	Catalog domain.CatalogReader
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(users domain.UserRepository, library domain.LibraryRepository, catalog domain.CatalogReader) *DashboardService {
	return &DashboardService{Users: users, Library: library, Catalog: catalog}
}

// GetUserStats computes per-user library statistics for one valuation
// dimension. Unresolved valuations count as zero; undated acquisitions are
// excluded from the recent-purchases counter.
func (s *DashboardService) GetUserStats(ctx context.Context, dim domain.ValueDimension, now time.Time) ([]*UserStats, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	games, err := s.gamesByID(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := now.AddDate(0, -recentWindowMonths, 0)
	stats := make([]*UserStats, 0, len(users))

	for _, user := range users {
		entries, err := s.Library.AllForUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load library for user %s: %w", user.ID, err)
		}

		st := &UserStats{
			UserID:     user.ID,
			Name:       user.Name,
			GameCount:  len(entries),
			TotalValue: decimal.Zero,
		}
		for _, entry := range entries {
			game, ok := games[entry.GameID]
			if !ok {
				continue
			}
			st.TotalValue = st.TotalValue.Add(game.ValueFor(dim))
			if entry.AcquiredAt != nil && !entry.AcquiredAt.Before(cutoff) {
				st.RecentPurchases++
			}
		}
		stats = append(stats, st)
	}

	return stats, nil
}

// GetValueComparison returns user stats ordered by descending total value,
// for the library-value comparison table.
func (s *DashboardService) GetValueComparison(ctx context.Context, dim domain.ValueDimension, now time.Time) ([]*UserStats, error) {
	stats, err := s.GetUserStats(ctx, dim, now)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalValue.GreaterThan(stats[j].TotalValue)
	})
	return stats, nil
}

// GetMonthlyTrends counts dated acquisitions of sharing-eligible games per
// calendar month over the trailing year, oldest month first.
func (s *DashboardService) GetMonthlyTrends(ctx context.Context, now time.Time) ([]MonthBucket, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	games, err := s.gamesByID(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, user := range users {
		entries, err := s.Library.AllForUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load library for user %s: %w", user.ID, err)
		}
		for _, entry := range entries {
			if entry.AcquiredAt == nil {
				continue
			}
			game, ok := games[entry.GameID]
			if !ok || !game.FamilySharing {
				continue
			}
			counts[entry.AcquiredAt.Format("Jan 2006")]++
		}
	}

	trend := make([]MonthBucket, 0, trendMonths)
	for i := trendMonths - 1; i >= 0; i-- {
		month := now.AddDate(0, -i, 0).Format("Jan 2006")
		trend = append(trend, MonthBucket{Month: month, Games: counts[month]})
	}
	return trend, nil
}

func (s *DashboardService) gamesByID(ctx context.Context) (map[uuid.UUID]*domain.Game, error) {
	games, err := s.Catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	byID := make(map[uuid.UUID]*domain.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}
	return byID, nil
}
