package notification

import (
	"context"
	"log/slog"

	"github.com/SscSPs/hostel_billing_app/internal/middleware"
)

// LogNotifier writes events to the request logger. It is used when no broker is configured.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the event at info level.
func (n *LogNotifier) Notify(ctx context.Context, event Event) {
	middleware.GetLoggerFromCtx(ctx).Info("Billing event",
		slog.String("event_id", event.ID),
		slog.String("event_type", string(event.Type)),
		slog.String("student_id", event.StudentID),
		slog.String("amount", event.Amount.String()),
		slog.String("reference_id", event.ReferenceID),
	)
}

var _ Notifier = (*LogNotifier)(nil)
