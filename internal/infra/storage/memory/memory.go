package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tonpay/events/internal/core/domain"
	"github.com/tonpay/events/internal/infra/storage"
)

// MemoryStorage backs the repositories when no database is configured. It is
// also the substrate for tests.
type MemoryStorage struct {
	events      map[uuid.UUID]*domain.Event
	tokenEvents map[uuid.UUID]*domain.TokenEvent
	mu          sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		events:      make(map[uuid.UUID]*domain.Event),
		tokenEvents: make(map[uuid.UUID]*domain.TokenEvent),
	}
}

// -----------------------------------------------------------------------------
// Event Repository
// -----------------------------------------------------------------------------

type EventRepo struct {
	store *MemoryStorage
}

func NewEventRepo(store *MemoryStorage) *EventRepo {
	return &EventRepo{store: store}
}

func (r *EventRepo) Insert(ctx context.Context, ev domain.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.events[ev.ID]; ok {
		return fmt.Errorf("%w: event %s", storage.ErrConflict, ev.ID)
	}

	now := time.Now().UTC()
	ev.CreatedAt = now
	ev.UpdatedAt = now
	r.store.events[ev.ID] = &ev
	return nil
}

func (r *EventRepo) GetByMessageHash(ctx context.Context, serviceID uuid.UUID, messageHash string, workchainID int32, hex string) (domain.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, ev := range r.store.events {
		if ev.ServiceID == serviceID && ev.MessageHash == messageHash &&
			ev.AccountWorkchainID == workchainID && ev.AccountHex == hex {
			return *ev, nil
		}
	}
	return domain.Event{}, storage.ErrNotFound
}

func (r *EventRepo) UpdateEventStatus(ctx context.Context, messageHash string, workchainID int32, hex string, status domain.EventStatus) (domain.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, ev := range r.store.events {
		if ev.MessageHash == messageHash && ev.AccountWorkchainID == workchainID && ev.AccountHex == hex {
			ev.EventStatus = status
			ev.UpdatedAt = time.Now().UTC()
			return *ev, nil
		}
	}
	return domain.Event{}, storage.ErrNotFound
}

func (r *EventRepo) UpdateFromTransaction(ctx context.Context, messageHash string, workchainID int32, hex string, upd domain.EventUpdate) (domain.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, ev := range r.store.events {
		if ev.MessageHash == messageHash && ev.AccountWorkchainID == workchainID && ev.AccountHex == hex {
			ev.TransactionStatus = upd.TransactionStatus
			ev.BalanceChange = upd.BalanceChange
			ev.UpdatedAt = time.Now().UTC()
			return *ev, nil
		}
	}
	return domain.Event{}, storage.ErrNotFound
}

func (r *EventRepo) ListByEventStatus(ctx context.Context, serviceID uuid.UUID, status domain.EventStatus) ([]domain.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var events []domain.Event
	for _, ev := range r.store.events {
		if ev.ServiceID == serviceID && ev.EventStatus == status {
			events = append(events, *ev)
		}
	}
	return events, nil
}

func (r *EventRepo) Search(ctx context.Context, serviceID uuid.UUID, filter storage.EventFilter) ([]domain.Event, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if filter.Limit == 0 {
		return []domain.Event{}, nil
	}

	r.store.mu.RLock()
	var matched []domain.Event
	for _, ev := range r.store.events {
		if ev.ServiceID == serviceID && matchesFilter(ev, filter) {
			matched = append(matched, *ev)
		}
	}
	r.store.mu.RUnlock()

	// Newest first, same as the SQL implementation
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset >= int64(len(matched)) {
		return []domain.Event{}, nil
	}
	matched = matched[filter.Offset:]
	if int64(len(matched)) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func matchesFilter(ev *domain.Event, f storage.EventFilter) bool {
	if f.CreatedAtGe != nil && ev.CreatedAt.UnixMilli() < *f.CreatedAtGe {
		return false
	}
	if f.CreatedAtLe != nil && ev.CreatedAt.UnixMilli() > *f.CreatedAtLe {
		return false
	}
	if f.TransactionID != nil && ev.TransactionID != *f.TransactionID {
		return false
	}
	if f.MessageHash != nil && ev.MessageHash != *f.MessageHash {
		return false
	}
	if f.AccountWorkchainID != nil && ev.AccountWorkchainID != *f.AccountWorkchainID {
		return false
	}
	if f.AccountHex != nil && ev.AccountHex != *f.AccountHex {
		return false
	}
	if f.TransactionDirection != nil && ev.Direction != *f.TransactionDirection {
		return false
	}
	if f.TransactionStatus != nil && ev.TransactionStatus != *f.TransactionStatus {
		return false
	}
	if f.EventStatus != nil && ev.EventStatus != *f.EventStatus {
		return false
	}
	return true
}

// -----------------------------------------------------------------------------
// Token Event Repository
// -----------------------------------------------------------------------------

type TokenEventRepo struct {
	store *MemoryStorage
}

func NewTokenEventRepo(store *MemoryStorage) *TokenEventRepo {
	return &TokenEventRepo{store: store}
}

func (r *TokenEventRepo) Insert(ctx context.Context, ev domain.TokenEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.tokenEvents[ev.ID]; ok {
		return fmt.Errorf("%w: token event %s", storage.ErrConflict, ev.ID)
	}

	now := time.Now().UTC()
	ev.CreatedAt = now
	ev.UpdatedAt = now
	r.store.tokenEvents[ev.ID] = &ev
	return nil
}

func (r *TokenEventRepo) GetByMessageHash(ctx context.Context, serviceID uuid.UUID, messageHash string, workchainID int32, hex string) (domain.TokenEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, ev := range r.store.tokenEvents {
		if ev.ServiceID == serviceID && ev.MessageHash == messageHash &&
			ev.AccountWorkchainID == workchainID && ev.AccountHex == hex {
			return *ev, nil
		}
	}
	return domain.TokenEvent{}, storage.ErrNotFound
}

func (r *TokenEventRepo) UpdateEventStatus(ctx context.Context, messageHash string, workchainID int32, hex string, status domain.EventStatus) (domain.TokenEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, ev := range r.store.tokenEvents {
		if ev.MessageHash == messageHash && ev.AccountWorkchainID == workchainID && ev.AccountHex == hex {
			ev.EventStatus = status
			ev.UpdatedAt = time.Now().UTC()
			return *ev, nil
		}
	}
	return domain.TokenEvent{}, storage.ErrNotFound
}

func (r *TokenEventRepo) ListByEventStatus(ctx context.Context, serviceID uuid.UUID, status domain.EventStatus) ([]domain.TokenEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var events []domain.TokenEvent
	for _, ev := range r.store.tokenEvents {
		if ev.ServiceID == serviceID && ev.EventStatus == status {
			events = append(events, *ev)
		}
	}
	return events, nil
}
