package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/famshare/famshare-backend/internal/domain"
	"github.com/famshare/famshare-backend/internal/logging"
	"github.com/famshare/famshare-backend/internal/usecase/matcher"
)

// dateLayout is the fixed purchase-date format used by the account page,
// e.g. "13 Jun, 2021". Rows that do not parse with it are skipped.
const dateLayout = "2 Jan, 2006"

// MatchThreshold is the minimum similarity score for a ledger item to be
// reconciled against a catalog entry.
const MatchThreshold = 50.0

// Service reconciles an uploaded purchase-history document into per-user
// library entries with acquisition dates. Only the candidate stream of the
// catalog is needed here; the reconciler never writes catalog state.
type Service struct {
	Catalog   domain.CandidateSource
	Library   domain.LibraryRepository
	Users     domain.UserRepository
	Documents domain.DocumentStore
	Notifier  domain.NotificationSink
	Log       logging.Logger
}

// NewService creates a new ledger reconciliation service
func NewService(
	catalog domain.CandidateSource,
	library domain.LibraryRepository,
	users domain.UserRepository,
	documents domain.DocumentStore,
	notifier domain.NotificationSink,
	log logging.Logger,
) *Service {
	return &Service{
		Catalog:   catalog,
		Library:   library,
		Users:     users,
		Documents: documents,
		Notifier:  notifier,
		Log:       log,
	}
}

// ProcessLicenses loads the uploaded document identified by handle, parses
// its purchase-history rows and reconciles each against the catalog.
//
// Processing is per-row, not transactional: an unusable row (bad shape,
// unparseable date, no catalog match) is skipped and the rest of the
// document still applies. Matched rows upsert the (user, game) library
// entry, overwriting any previous acquisition date, so re-uploading the
// same document is idempotent and a later upload always wins.
//
// After the rows are processed, even when none matched, the user's
// ledger-processed flag is set, the document is deleted and a completion
// notification is emitted. Only an unreadable source aborts the run; rows
// already upserted before a mid-document fault remain applied and
// re-upload is the recovery path.
func (s *Service) ProcessLicenses(ctx context.Context, userID uuid.UUID, handle string) (int, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	content, err := s.Documents.Get(ctx, handle)
	if err != nil || len(content) == 0 {
		s.Log.Error(ctx, "failed to read licenses document", "user_id", user.ID, "error", err)
		return 0, fmt.Errorf("%w: %s", domain.ErrSourceUnreadable, handle)
	}

	rows, found, err := parseRows(content)
	if err != nil {
		s.Log.Error(ctx, "failed to parse licenses document", "user_id", user.ID, "error", err)
		return 0, fmt.Errorf("%w: %v", domain.ErrSourceUnreadable, err)
	}
	if !found {
		s.Log.Warn(ctx, "no licenses table found in document", "user_id", user.ID)
	}

	updated := 0
	for _, row := range rows {
		acquiredAt, err := time.Parse(dateLayout, row.RawDate)
		if err != nil {
			continue
		}

		match, err := matcher.FindBest(ctx, s.Catalog, row.RawItem, MatchThreshold)
		if err != nil {
			return updated, err
		}
		if match == nil {
			continue
		}

		if err := s.Library.Upsert(ctx, user.ID, match.Candidate.ID, &acquiredAt); err != nil {
			s.Log.Error(ctx, "failed to upsert library entry", "user_id", user.ID, "game_id", match.Candidate.ID, "error", err)
			continue
		}
		updated++
	}

	if err := s.Users.SetLicensesUploaded(ctx, user.ID, true); err != nil {
		return updated, err
	}

	if err := s.Documents.Delete(ctx, handle); err != nil {
		s.Log.Warn(ctx, "failed to delete processed document", "handle", handle, "error", err)
	}

	s.Log.Info(ctx, "licenses processed", "user_id", user.ID, "updated", updated)

	if err := s.Notifier.LicensesProcessed(ctx, user, updated); err != nil {
		s.Log.Error(ctx, "failed to send licenses notification", "user_id", user.ID, "error", err)
	}

	return updated, nil
}

// RemoveLicenses clears all acquisition dates for the user and resets the
// ledger-processed flag so a fresh document can be uploaded.
func (s *Service) RemoveLicenses(ctx context.Context, userID uuid.UUID) error {
	if err := s.Library.ClearAcquiredDates(ctx, userID); err != nil {
		return err
	}
	return s.Users.SetLicensesUploaded(ctx, userID, false)
}
