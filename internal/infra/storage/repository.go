package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/tonpay/events/internal/core/domain"
)

var (
	// ErrNotFound is returned when a lookup or update targets a key absent
	// from the store. A definitive miss, not retried.
	ErrNotFound = errors.New("event not found")

	// ErrConflict is returned on an identity collision during insert. Ids are
	// freshly generated, so seeing this is an invariant violation.
	ErrConflict = errors.New("event already exists")

	// ErrInvalidFilter is returned when a search filter fails validation.
	ErrInvalidFilter = errors.New("invalid search filter")
)

// MaxSearchLimit caps a single search page.
const MaxSearchLimit = 5000

// EventRepository stores native-coin transaction events.
type EventRepository interface {
	// Insert appends a new event row. ErrConflict on duplicate id.
	Insert(ctx context.Context, ev domain.Event) error

	// GetByMessageHash looks up an event by its natural key. The raw
	// workchain/hex pair is matched, never the packed form.
	GetByMessageHash(ctx context.Context, serviceID uuid.UUID, messageHash string, workchainID int32, hex string) (domain.Event, error)

	// UpdateEventStatus atomically transitions event_status for the matched
	// row and returns the updated row. ErrNotFound if no row matches.
	UpdateEventStatus(ctx context.Context, messageHash string, workchainID int32, hex string, status domain.EventStatus) (domain.Event, error)

	// UpdateFromTransaction applies a partial update from a re-observed
	// transaction and returns the updated row. ErrNotFound if no row matches.
	UpdateFromTransaction(ctx context.Context, messageHash string, workchainID int32, hex string, upd domain.EventUpdate) (domain.Event, error)

	// ListByEventStatus returns all events of a service in the given
	// delivery state. Ordering is unspecified.
	ListByEventStatus(ctx context.Context, serviceID uuid.UUID, status domain.EventStatus) ([]domain.Event, error)

	// Search returns a page of events matching the filter, newest first.
	Search(ctx context.Context, serviceID uuid.UUID, filter EventFilter) ([]domain.Event, error)
}

// TokenEventRepository stores token-transfer events.
type TokenEventRepository interface {
	Insert(ctx context.Context, ev domain.TokenEvent) error
	GetByMessageHash(ctx context.Context, serviceID uuid.UUID, messageHash string, workchainID int32, hex string) (domain.TokenEvent, error)
	UpdateEventStatus(ctx context.Context, messageHash string, workchainID int32, hex string, status domain.EventStatus) (domain.TokenEvent, error)
	ListByEventStatus(ctx context.Context, serviceID uuid.UUID, status domain.EventStatus) ([]domain.TokenEvent, error)
}
