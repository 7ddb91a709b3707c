// Package notify bridges the core's completion notices to the delivery
// channel owned by the surrounding product. The core only guarantees that
// a notice is emitted; email rendering and transport live outside it.
package notify

import (
	"context"

	"github.com/famshare/famshare-backend/internal/domain"
	"github.com/famshare/famshare-backend/internal/logging"
)

// LogSink records completion notices in the structured log. It stands in
// for the product's mailer when running batch jobs from the CLI.
type LogSink struct {
	Log logging.Logger
}

// NewLogSink creates a log-backed notification sink
func NewLogSink(log logging.Logger) *LogSink {
	return &LogSink{Log: log}
}

// LicensesProcessed implements domain.NotificationSink.
func (s *LogSink) LicensesProcessed(ctx context.Context, user *domain.User, gameCount int) error {
	s.Log.Info(ctx, "licenses processed notification",
		"user_id", user.ID,
		"user_name", user.Name,
		"game_count", gameCount,
	)
	return nil
}
