package services

import (
	"context"
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	"github.com/SscSPs/hostel_billing_app/internal/middleware"
	"github.com/SscSPs/hostel_billing_app/internal/notification"
	"github.com/google/uuid"
)

// BaseService provides common functionality for all services
type BaseService struct {
	TxManager portsrepo.TransactionManager
	Notifier  notification.Notifier
	Clock     func() time.Time
}

// Option configures a BaseService.
type Option func(*BaseService)

// WithNotifier sets the notifier used after a mutation commits.
func WithNotifier(n notification.Notifier) Option {
	return func(b *BaseService) {
		b.Notifier = n
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(b *BaseService) {
		b.Clock = clock
	}
}

func newBaseService(txManager portsrepo.TransactionManager, opts ...Option) BaseService {
	b := BaseService{TxManager: txManager}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (s *BaseService) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// notify publishes an event after commit. Delivery problems stay inside the notifier.
func (s *BaseService) notify(ctx context.Context, event notification.Event) {
	if s.Notifier == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	s.Notifier.Notify(ctx, event)
}
