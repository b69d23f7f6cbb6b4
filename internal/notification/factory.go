package notification

import "log/slog"

// New returns a RabbitMQ notifier when url is set, otherwise a log-only notifier.
func New(url, queue string) Notifier {
	if url == "" {
		slog.Info("RABBITMQ_URL not set, billing events will only be logged")
		return NewLogNotifier()
	}
	slog.Info("Publishing billing events to RabbitMQ", slog.String("queue", queue))
	return NewRabbitMQNotifier(url, queue)
}
