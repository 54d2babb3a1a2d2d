package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tonpay/events/internal/core/domain"
	"github.com/tonpay/events/internal/core/event"
	"github.com/tonpay/events/internal/infra/storage"
	"github.com/tonpay/events/internal/metrics"
)

// Recorder turns observed transactions into stored event rows. First
// observation creates the event; re-observation applies the partial update
// and leaves identity fields alone.
type Recorder struct {
	events      storage.EventRepository
	tokenEvents storage.TokenEventRepository
	log         *slog.Logger
}

// NewRecorder creates a new Recorder.
func NewRecorder(events storage.EventRepository, tokenEvents storage.TokenEventRepository) *Recorder {
	return &Recorder{
		events:      events,
		tokenEvents: tokenEvents,
		log:         slog.With("component", "recorder"),
	}
}

// RecordTransaction records a native-coin transaction observation.
func (r *Recorder) RecordTransaction(ctx context.Context, tx domain.Transaction) (domain.Event, error) {
	_, err := r.events.GetByMessageHash(ctx, tx.ServiceID, tx.MessageHash, tx.AccountWorkchainID, tx.AccountHex)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		var ev domain.Event
		switch tx.Direction {
		case domain.DirectionSend:
			ev = event.CreateSend(tx)
		case domain.DirectionReceive:
			ev = event.CreateReceive(tx)
		default:
			return domain.Event{}, fmt.Errorf("unknown transaction direction %q", tx.Direction)
		}

		if err := r.events.Insert(ctx, ev); err != nil {
			return domain.Event{}, err
		}
		metrics.EventsRecorded.WithLabelValues("native", string(ev.Direction)).Inc()
		r.log.Debug("recorded event", "id", ev.ID, "direction", ev.Direction, "message_hash", ev.MessageHash)
		return ev, nil

	case err != nil:
		return domain.Event{}, err

	default:
		updated, err := r.events.UpdateFromTransaction(ctx, tx.MessageHash, tx.AccountWorkchainID, tx.AccountHex, event.UpdateFrom(tx))
		if err != nil {
			return domain.Event{}, err
		}
		metrics.EventsUpdated.WithLabelValues("native").Inc()
		r.log.Debug("updated event", "id", updated.ID, "transaction_status", updated.TransactionStatus)
		return updated, nil
	}
}

// RecordTokenTransaction records a token-transfer observation. Token events
// carry their final value at creation; a re-observed transfer maps to the
// same row and is returned unchanged.
func (r *Recorder) RecordTokenTransaction(ctx context.Context, tx domain.TokenTransaction) (domain.TokenEvent, error) {
	existing, err := r.tokenEvents.GetByMessageHash(ctx, tx.ServiceID, tx.MessageHash, tx.AccountWorkchainID, tx.AccountHex)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		ev := event.CreateToken(tx)
		if err := r.tokenEvents.Insert(ctx, ev); err != nil {
			return domain.TokenEvent{}, err
		}
		metrics.EventsRecorded.WithLabelValues("token", string(ev.Direction)).Inc()
		r.log.Debug("recorded token event", "id", ev.ID, "direction", ev.Direction, "message_hash", ev.MessageHash)
		return ev, nil

	case err != nil:
		return domain.TokenEvent{}, err

	default:
		return existing, nil
	}
}
