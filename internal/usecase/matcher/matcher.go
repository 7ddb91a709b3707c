package matcher

import (
	"context"

	"github.com/famshare/famshare-backend/internal/domain"
	"github.com/famshare/famshare-backend/internal/usecase/similarity"
)

// DefaultBatchSize bounds how many candidates are held in memory at once
// while scanning a large catalog.
const DefaultBatchSize = 100

// Match is the winning candidate of a catalog scan together with its score.
type Match struct {
	Candidate domain.Candidate
	Score     float64
}

// FindBest scores every candidate from src against query and returns the
// single best match at or above threshold, or nil when nothing qualifies.
// A nil result is a valid outcome, not an error.
//
// Ties break in favor of the first candidate to reach the maximum score:
// the comparison is strictly greater-than, so later equal-scoring
// candidates are ignored. This keeps repeated scans over the same
// candidate order reproducible.
func FindBest(ctx context.Context, src domain.CandidateSource, query string, threshold float64) (*Match, error) {
	var best *Match

	err := src.EachCandidate(ctx, DefaultBatchSize, func(c domain.Candidate) error {
		score := similarity.Score(query, c.Name)
		if score < threshold {
			return nil
		}
		if best == nil || score > best.Score {
			best = &Match{Candidate: c, Score: score}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return best, nil
}

// SliceSource adapts an in-memory candidate list (e.g. external search
// hits) to the streaming interface the matcher consumes.
type SliceSource []domain.Candidate

// EachCandidate implements domain.CandidateSource. The batch size is
// irrelevant for an in-memory slice; candidates are visited in order.
func (s SliceSource) EachCandidate(ctx context.Context, _ int, fn func(domain.Candidate) error) error {
	for _, c := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}
