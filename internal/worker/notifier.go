// Package worker turns reservation events into passenger notifications.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/email"
	"github.com/Domenick1991/flightdesk/internal/logger"
)

type Sender interface {
	Send(ctx context.Context, event domain.ReservationEvent) error
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// Consumer delivers raw event payloads to handler until ctx ends or it fails.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, []byte) error) error
}

// Notification is published after a passenger has been notified.
type Notification struct {
	BookingID string    `json:"bookingId"`
	Event     string    `json:"event"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	SentAt    time.Time `json:"sentAt"`
}

type Notifier struct {
	sender    Sender
	audit     *logger.Audit
	log       *slog.Logger
	publisher Publisher
	topic     string
	now       func() time.Time
}

type Option func(*Notifier)

// WithNotifications publishes a Notification to topic for every event handled.
func WithNotifications(p Publisher, topic string) Option {
	return func(n *Notifier) {
		n.publisher = p
		n.topic = topic
	}
}

func WithAudit(audit *logger.Audit) Option {
	return func(n *Notifier) {
		n.audit = audit
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(n *Notifier) {
		n.log = log
	}
}

func NewNotifier(sender Sender, opts ...Option) *Notifier {
	n := &Notifier{sender: sender, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	if n.audit == nil {
		n.audit = logger.NopAudit()
	}
	if n.log == nil {
		n.log = slog.Default()
	}
	return n
}

// Handle processes one event payload. Malformed or undeliverable events are
// logged and skipped so they cannot block the stream.
func (n *Notifier) Handle(ctx context.Context, payload []byte) error {
	var event domain.ReservationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		n.log.WarnContext(ctx, "skip malformed event", "error", err)
		n.audit.Error("Malformed reservation event skipped: %v", err)
		return nil
	}

	if err := n.sender.Send(ctx, event); err != nil {
		n.log.WarnContext(ctx, "notification not sent", "booking_id", event.BookingID, "error", err)
		n.audit.Error("Notification for %s not sent: %v", event.BookingID, err)
		return nil
	}
	n.audit.Action("Notification %q sent to %s", email.Subject(event), event.Email)

	if n.publisher != nil && n.topic != "" {
		note := Notification{
			BookingID: event.BookingID,
			Event:     event.Type,
			Email:     event.Email,
			Subject:   email.Subject(event),
			SentAt:    n.now().UTC(),
		}
		if err := n.publisher.Publish(ctx, n.topic, event.BookingID, note); err != nil {
			n.log.WarnContext(ctx, "publish notification record", "booking_id", event.BookingID, "error", err)
		}
	}
	return nil
}

// Run consumes until ctx is cancelled, reconnecting after retry whenever the
// consumer fails.
func (n *Notifier) Run(ctx context.Context, consumer Consumer, retry time.Duration) error {
	for {
		err := consumer.Consume(ctx, n.Handle)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("consumer stopped")
		}
		n.log.Error("consumer failed, retrying", "error", err, "retry_in", retry)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retry):
		}
	}
}
