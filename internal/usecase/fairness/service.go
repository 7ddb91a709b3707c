package fairness

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famshare/famshare-backend/internal/domain"
)

// Weighting of the two normalized signals. Spending dominates: someone who
// bought most of the recent titles should not be picked again just because
// their last purchase was a while ago.
const (
	spendingWeight = 0.7
	recencyWeight  = 0.3
)

// PeriodMonths is the look-back window for recent spending.
const PeriodMonths = 6

// NoPurchaseDays is the days-since-last-purchase sentinel for owners with
// no dated acquisitions. It must dwarf any realistic gap so such owners
// are never mistaken for "just bought".
const NoPurchaseDays = 9999

// OwnerStanding is one owner's position in the fairness ranking.
type OwnerStanding struct {
	UserID        uuid.UUID
	Name          string
	GameCount     int
	RecentSpend   decimal.Decimal
	TotalValue    decimal.Decimal
	DaysSinceLast int
	LastPurchase  *time.Time
	LastGame      string
	Score         float64
}

// Ranking is the full fairness ranking, ascending by score. The owner with
// the lowest score buys next.
type Ranking struct {
	NextPurchaser *OwnerStanding
	Ranked        []*OwnerStanding
	PeriodMonths  int
}

// Service computes the "who buys next" ranking. It is a pure read:
// everything is re-derived from current library and catalog state on every
// call and nothing is cached or persisted.
type Service struct {
	Users   domain.UserRepository
	Library domain.LibraryRepository
	Catalog domain.CatalogReader
}

// NewService creates a new fairness service
func NewService(users domain.UserRepository, library domain.LibraryRepository, catalog domain.CatalogReader) *Service {
	return &Service{Users: users, Library: library, Catalog: catalog}
}

// Rank computes the fairness ranking over all users for one valuation
// dimension at the given time.
//
// Per owner: recentSpend sums valuations of entries acquired within the
// look-back window (undated entries excluded), daysSinceLast counts whole
// days since the newest dated acquisition (sentinel if none), totalValue
// sums valuations over the whole library. Both signals are normalized
// against the owner-set maximum (floored at 1) and combined 70/30. Ties
// keep the repository's user order.
func (s *Service) Rank(ctx context.Context, dim domain.ValueDimension, now time.Time) (*Ranking, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}

	games, err := s.gamesByID(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := now.AddDate(0, -PeriodMonths, 0)
	standings := make([]*OwnerStanding, 0, len(users))

	for _, user := range users {
		entries, err := s.Library.AllForUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}

		st := &OwnerStanding{
			UserID:        user.ID,
			Name:          user.Name,
			GameCount:     len(entries),
			RecentSpend:   decimal.Zero,
			TotalValue:    decimal.Zero,
			DaysSinceLast: NoPurchaseDays,
		}

		var last *domain.LibraryEntry
		for _, entry := range entries {
			game, ok := games[entry.GameID]
			if !ok {
				continue
			}
			value := game.ValueFor(dim)
			st.TotalValue = st.TotalValue.Add(value)

			if entry.AcquiredAt == nil {
				continue
			}
			if !entry.AcquiredAt.Before(cutoff) {
				st.RecentSpend = st.RecentSpend.Add(value)
			}
			if last == nil || entry.AcquiredAt.After(*last.AcquiredAt) {
				last = entry
			}
		}

		if last != nil {
			st.DaysSinceLast = int(now.Sub(*last.AcquiredAt).Hours() / 24)
			st.LastPurchase = last.AcquiredAt
			if game, ok := games[last.GameID]; ok {
				st.LastGame = game.Name
			}
		}

		standings = append(standings, st)
	}

	score(standings)

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score < standings[j].Score
	})

	ranking := &Ranking{Ranked: standings, PeriodMonths: PeriodMonths}
	if len(standings) > 0 {
		ranking.NextPurchaser = standings[0]
	}
	return ranking, nil
}

// score normalizes each owner's signals against the set maxima and fills
// in the combined fairness score.
func score(standings []*OwnerStanding) {
	maxSpend := 1.0
	maxDays := 1.0
	for _, st := range standings {
		if spend := st.RecentSpend.InexactFloat64(); spend > maxSpend {
			maxSpend = spend
		}
		if days := float64(st.DaysSinceLast); days > maxDays {
			maxDays = days
		}
	}

	for _, st := range standings {
		spendingScore := st.RecentSpend.InexactFloat64() / maxSpend
		recencyScore := (maxDays - float64(st.DaysSinceLast)) / maxDays
		st.Score = spendingWeight*spendingScore + recencyWeight*recencyScore
	}
}

// gamesByID loads the catalog once per ranking call.
func (s *Service) gamesByID(ctx context.Context) (map[uuid.UUID]*domain.Game, error) {
	games, err := s.Catalog.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}
	return byID, nil
}
