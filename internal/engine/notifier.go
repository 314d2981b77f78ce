package engine

import (
	"context"
	"log/slog"

	"github.com/kozzzzzzy/twin-sync-addon/internal/service"
)

// LogNotifier is the default Notifier: it writes completed checks to the
// structured log and nothing else.
type LogNotifier struct{}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// CheckCompleted logs the event.
func (n *LogNotifier) CheckCompleted(_ context.Context, event service.CheckCompletedEvent) {
	slog.Info("check completed",
		"spot_id", event.SpotID,
		"status", event.Status,
		"eligible", event.Eligible)
}

var _ service.Notifier = (*LogNotifier)(nil)
