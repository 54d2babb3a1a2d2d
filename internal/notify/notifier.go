package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tonpay/events/internal/core/domain"
	"github.com/tonpay/events/internal/core/event"
	"github.com/tonpay/events/internal/metrics"
)

// EventStore is the slice of the event repository the notifier needs.
type EventStore interface {
	ListByEventStatus(ctx context.Context, serviceID uuid.UUID, status domain.EventStatus) ([]domain.Event, error)
	UpdateEventStatus(ctx context.Context, messageHash string, workchainID int32, hex string, status domain.EventStatus) (domain.Event, error)
}

// TokenEventStore is the token counterpart of EventStore.
type TokenEventStore interface {
	ListByEventStatus(ctx context.Context, serviceID uuid.UUID, status domain.EventStatus) ([]domain.TokenEvent, error)
	UpdateEventStatus(ctx context.Context, messageHash string, workchainID int32, hex string, status domain.EventStatus) (domain.TokenEvent, error)
}

// Locker serializes delivery attempts across replicas. Optional.
type Locker interface {
	AcquireDelivery(ctx context.Context, serviceID uuid.UUID, messageHash string, ttl time.Duration) (bool, error)
	ReleaseDelivery(ctx context.Context, serviceID uuid.UUID, messageHash string) error
}

// Sender delivers a published event to a callback URL.
type Sender interface {
	Send(ctx context.Context, url string, ev event.Published) error
}

// Service is one tenant with a callback endpoint.
type Service struct {
	ID          uuid.UUID
	CallbackURL string
}

// Config holds notifier settings.
type Config struct {
	Interval time.Duration
	LeaseTTL time.Duration
	Services []Service
}

// Notifier polls for events in the New state, pushes them to the owning
// service's callback and transitions them to Notified. A failed delivery
// leaves the event in New so the next poll retries it; a projection failure
// marks the event Error since its stored data cannot be published.
type Notifier struct {
	events EventStore
	tokens TokenEventStore
	locker Locker
	sender Sender
	cfg    Config
	log    *slog.Logger
}

// New creates a Notifier. locker may be nil for single-replica deployments.
func New(events EventStore, tokens TokenEventStore, locker Locker, sender Sender, cfg Config) *Notifier {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 30 * time.Second
	}
	return &Notifier{
		events: events,
		tokens: tokens,
		locker: locker,
		sender: sender,
		cfg:    cfg,
		log:    slog.With("component", "notifier"),
	}
}

// Start runs the polling loop until ctx is cancelled.
func (n *Notifier) Start(ctx context.Context) {
	ticker := time.NewTicker(n.cfg.Interval)
	defer ticker.Stop()

	n.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single polling pass over all configured services.
func (n *Notifier) RunOnce(ctx context.Context) {
	for _, svc := range n.cfg.Services {
		n.notifyNative(ctx, svc)
		n.notifyToken(ctx, svc)
	}
}

func (n *Notifier) notifyNative(ctx context.Context, svc Service) {
	events, err := n.events.ListByEventStatus(ctx, svc.ID, domain.EventStatusNew)
	if err != nil {
		n.log.Error("failed to list events", "service", svc.ID, "error", err)
		return
	}

	for _, ev := range events {
		n.deliver(ctx, svc, "native", ev, ev.MessageHash, func(status domain.EventStatus) error {
			_, err := n.events.UpdateEventStatus(ctx, ev.MessageHash, ev.AccountWorkchainID, ev.AccountHex, status)
			return err
		})
	}
}

func (n *Notifier) notifyToken(ctx context.Context, svc Service) {
	events, err := n.tokens.ListByEventStatus(ctx, svc.ID, domain.EventStatusNew)
	if err != nil {
		n.log.Error("failed to list token events", "service", svc.ID, "error", err)
		return
	}

	for _, ev := range events {
		n.deliver(ctx, svc, "token", ev, ev.MessageHash, func(status domain.EventStatus) error {
			_, err := n.tokens.UpdateEventStatus(ctx, ev.MessageHash, ev.AccountWorkchainID, ev.AccountHex, status)
			return err
		})
	}
}

func (n *Notifier) deliver(ctx context.Context, svc Service, kind string, row domain.Row, messageHash string, transition func(domain.EventStatus) error) {
	if n.locker != nil {
		ok, err := n.locker.AcquireDelivery(ctx, svc.ID, messageHash, n.cfg.LeaseTTL)
		if err != nil {
			n.log.Error("failed to acquire delivery lease", "service", svc.ID, "message_hash", messageHash, "error", err)
			return
		}
		if !ok {
			// Another replica holds the lease
			return
		}
		defer func() {
			if err := n.locker.ReleaseDelivery(ctx, svc.ID, messageHash); err != nil {
				n.log.Warn("failed to release delivery lease", "message_hash", messageHash, "error", err)
			}
		}()
	}

	published, err := event.ToPublic(row)
	if err != nil {
		// Malformed stored data: the event can never be published
		n.log.Error("failed to project event", "message_hash", messageHash, "error", err)
		if err := transition(domain.EventStatusError); err != nil {
			n.log.Error("failed to mark event as errored", "message_hash", messageHash, "error", err)
		}
		return
	}

	if err := n.sender.Send(ctx, svc.CallbackURL, published); err != nil {
		metrics.NotificationsFailed.WithLabelValues(kind).Inc()
		n.log.Warn("callback delivery failed, will retry", "service", svc.ID, "message_hash", messageHash, "error", err)
		return
	}

	if err := transition(domain.EventStatusNotified); err != nil {
		n.log.Error("failed to mark event as notified", "message_hash", messageHash, "error", err)
		return
	}
	metrics.NotificationsDelivered.WithLabelValues(kind).Inc()
	n.log.Debug("notification delivered", "service", svc.ID, "message_hash", messageHash, "kind", kind)
}
