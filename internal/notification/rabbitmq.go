package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	publishTimeout    = 5 * time.Second
	defaultBufferSize = 256
)

// delivery is one queued event together with the logger of the request that produced it.
type delivery struct {
	event  Event
	body   []byte
	logger *slog.Logger
}

// RabbitMQNotifier publishes events as persistent JSON messages to a durable queue.
// Notify only enqueues; a single worker goroutine owns the broker connection,
// opens it lazily and re-dials after the broker drops it.
type RabbitMQNotifier struct {
	url         string
	queue       string
	dialTimeout time.Duration

	deliveries chan delivery
	done       chan struct{}
	stopped    chan struct{}
	closeOnce  sync.Once

	// conn and ch are only touched by the worker, and by Close after the worker exits.
	conn *amqp.Connection
	ch   *amqp.Channel
}

// RabbitMQOption configures a RabbitMQNotifier.
type RabbitMQOption func(*RabbitMQNotifier)

// WithDialTimeout bounds the TCP connect and AMQP handshake.
func WithDialTimeout(d time.Duration) RabbitMQOption {
	return func(n *RabbitMQNotifier) { n.dialTimeout = d }
}

// WithBufferSize sets how many events may wait for the worker before new ones are dropped.
func WithBufferSize(size int) RabbitMQOption {
	return func(n *RabbitMQNotifier) { n.deliveries = make(chan delivery, size) }
}

// NewRabbitMQNotifier creates a notifier for the given broker URL and queue name
// and starts its delivery worker. Call Close to stop it.
func NewRabbitMQNotifier(url, queue string, opts ...RabbitMQOption) *RabbitMQNotifier {
	n := &RabbitMQNotifier{
		url:         url,
		queue:       queue,
		dialTimeout: publishTimeout,
		deliveries:  make(chan delivery, defaultBufferSize),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	go n.run()
	return n
}

// Notify queues the event for publishing and returns immediately. When the
// buffer is full or the notifier is closed the event is logged and dropped.
func (n *RabbitMQNotifier) Notify(ctx context.Context, event Event) {
	logger := middleware.GetLoggerFromCtx(ctx)

	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("rabbitmq: marshal event failed", slog.String("event_type", string(event.Type)), slog.String("error", err.Error()))
		return
	}

	select {
	case <-n.done:
		logger.Warn("rabbitmq: notifier closed, event dropped", slog.String("event_type", string(event.Type)), slog.String("event_id", event.ID))
		return
	default:
	}

	select {
	case n.deliveries <- delivery{event: event, body: body, logger: logger}:
	default:
		logger.Warn("rabbitmq: delivery buffer full, event dropped", slog.String("event_type", string(event.Type)), slog.String("event_id", event.ID))
	}
}

func (n *RabbitMQNotifier) run() {
	defer close(n.stopped)
	for {
		select {
		case d := <-n.deliveries:
			n.deliver(d)
		case <-n.done:
			// Flush what was queued before Close.
			for {
				select {
				case d := <-n.deliveries:
					n.deliver(d)
				default:
					return
				}
			}
		}
	}
}

func (n *RabbitMQNotifier) deliver(d delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := n.publish(ctx, d.event, d.body); err != nil {
		d.logger.Warn("rabbitmq: publish failed",
			slog.String("event_type", string(d.event.Type)),
			slog.String("event_id", d.event.ID),
			slog.String("error", err.Error()))
		return
	}
	d.logger.Debug("rabbitmq: event published", slog.String("event_type", string(d.event.Type)), slog.String("event_id", d.event.ID))
}

func (n *RabbitMQNotifier) publish(ctx context.Context, event Event, body []byte) error {
	ch, err := n.channel()
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", n.queue, false, false, pub); err != nil {
		n.reset()
		return err
	}
	return nil
}

// channel returns an open channel, dialling and declaring the queue when needed.
func (n *RabbitMQNotifier) channel() (*amqp.Channel, error) {
	if n.ch != nil && !n.ch.IsClosed() && n.conn != nil && !n.conn.IsClosed() {
		return n.ch, nil
	}
	n.reset()

	conn, err := amqp.DialConfig(n.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(n.dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(n.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	n.conn, n.ch = conn, ch
	return ch, nil
}

func (n *RabbitMQNotifier) reset() {
	if n.ch != nil {
		_ = n.ch.Close()
		n.ch = nil
	}
	if n.conn != nil {
		_ = n.conn.Close()
		n.conn = nil
	}
}

// Close stops accepting events, waits for the worker to flush the queue and
// releases the broker connection. It is safe to call more than once.
func (n *RabbitMQNotifier) Close() error {
	n.closeOnce.Do(func() { close(n.done) })
	<-n.stopped
	n.reset()
	return nil
}

var (
	_ Notifier = (*RabbitMQNotifier)(nil)
	_ Closer   = (*RabbitMQNotifier)(nil)
)
