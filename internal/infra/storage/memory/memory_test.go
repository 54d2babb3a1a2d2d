package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tonpay/events/internal/core/domain"
	"github.com/tonpay/events/internal/infra/storage"
)

const accountHex = "de12f7c7653efd9ac9b85a5d1cd5c5fbbd5a380c08a1a906cc3a27d9446b0e36"

func sampleEvent(serviceID uuid.UUID) domain.Event {
	return domain.Event{
		ID:                 uuid.New(),
		ServiceID:          serviceID,
		TransactionID:      uuid.New(),
		MessageHash:        "abc123",
		AccountWorkchainID: 0,
		AccountHex:         accountHex,
		Direction:          domain.DirectionSend,
		TransactionStatus:  domain.TransactionStatusNew,
		EventStatus:        domain.EventStatusNew,
	}
}

func TestEventRepo_GetByMessageHash_NotFound(t *testing.T) {
	repo := NewEventRepo(NewMemoryStorage())

	_, err := repo.GetByMessageHash(context.Background(), uuid.New(), "missing", 0, accountHex)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByMessageHash error = %v, want ErrNotFound", err)
	}
}

func TestEventRepo_InsertThenGet(t *testing.T) {
	repo := NewEventRepo(NewMemoryStorage())
	serviceID := uuid.New()
	ev := sampleEvent(serviceID)

	if err := repo.Insert(context.Background(), ev); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := repo.GetByMessageHash(context.Background(), serviceID, ev.MessageHash, 0, accountHex)
	if err != nil {
		t.Fatalf("GetByMessageHash failed: %v", err)
	}

	// Field-for-field, minus store-generated timestamps
	if got.ID != ev.ID || got.ServiceID != ev.ServiceID || got.TransactionID != ev.TransactionID {
		t.Errorf("identity fields differ: got %+v", got)
	}
	if got.MessageHash != ev.MessageHash || got.AccountWorkchainID != ev.AccountWorkchainID || got.AccountHex != ev.AccountHex {
		t.Errorf("natural key differs: got %+v", got)
	}
	if got.Direction != ev.Direction || got.TransactionStatus != ev.TransactionStatus || got.EventStatus != ev.EventStatus {
		t.Errorf("statuses differ: got %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("store-generated timestamps missing")
	}
}

func TestEventRepo_Insert_Conflict(t *testing.T) {
	repo := NewEventRepo(NewMemoryStorage())
	ev := sampleEvent(uuid.New())

	if err := repo.Insert(context.Background(), ev); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	err := repo.Insert(context.Background(), ev)
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate Insert error = %v, want ErrConflict", err)
	}
}

func TestEventRepo_UpdateEventStatus_NotFound(t *testing.T) {
	repo := NewEventRepo(NewMemoryStorage())

	_, err := repo.UpdateEventStatus(context.Background(), "missing", 0, accountHex, domain.EventStatusNotified)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateEventStatus error = %v, want ErrNotFound", err)
	}
}

func TestEventRepo_UpdateEventStatus(t *testing.T) {
	repo := NewEventRepo(NewMemoryStorage())
	serviceID := uuid.New()
	ev := sampleEvent(serviceID)

	if err := repo.Insert(context.Background(), ev); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	updated, err := repo.UpdateEventStatus(context.Background(), "abc123", 0, accountHex, domain.EventStatusNotified)
	if err != nil {
		t.Fatalf("UpdateEventStatus failed: %v", err)
	}

	if updated.EventStatus != domain.EventStatusNotified {
		t.Errorf("event status = %s, want notified", updated.EventStatus)
	}
	// Everything else unchanged from insert
	if updated.ID != ev.ID || updated.Direction != ev.Direction ||
		updated.TransactionStatus != ev.TransactionStatus ||
		updated.MessageHash != ev.MessageHash {
		t.Errorf("unexpected field changes: %+v", updated)
	}
}

func TestEventRepo_UpdateFromTransaction(t *testing.T) {
	repo := NewEventRepo(NewMemoryStorage())
	serviceID := uuid.New()
	ev := sampleEvent(serviceID)

	if err := repo.Insert(context.Background(), ev); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	inserted, err := repo.GetByMessageHash(context.Background(), serviceID, ev.MessageHash, 0, accountHex)
	if err != nil {
		t.Fatalf("GetByMessageHash failed: %v", err)
	}

	balance := decimal.NewFromInt(-2000000000)
	updated, err := repo.UpdateFromTransaction(context.Background(), ev.MessageHash, 0, accountHex, domain.EventUpdate{
		TransactionStatus: domain.TransactionStatusDone,
		BalanceChange:     &balance,
	})
	if err != nil {
		t.Fatalf("UpdateFromTransaction failed: %v", err)
	}

	if updated.TransactionStatus != domain.TransactionStatusDone {
		t.Errorf("transaction status = %s, want done", updated.TransactionStatus)
	}
	if updated.BalanceChange == nil || !updated.BalanceChange.Equal(balance) {
		t.Errorf("balance change = %v, want %s", updated.BalanceChange, balance)
	}
	// Identity and creation time survive updates
	if updated.ID != inserted.ID || updated.Direction != inserted.Direction {
		t.Errorf("identity fields changed: %+v", updated)
	}
	if !updated.CreatedAt.Equal(inserted.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", inserted.CreatedAt, updated.CreatedAt)
	}
}

func TestEventRepo_ListByEventStatus(t *testing.T) {
	store := NewMemoryStorage()
	repo := NewEventRepo(store)
	serviceID := uuid.New()

	for i := 0; i < 3; i++ {
		ev := sampleEvent(serviceID)
		ev.MessageHash = ev.ID.String()
		if err := repo.Insert(context.Background(), ev); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	other := sampleEvent(uuid.New())
	if err := repo.Insert(context.Background(), other); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	events, err := repo.ListByEventStatus(context.Background(), serviceID, domain.EventStatusNew)
	if err != nil {
		t.Fatalf("ListByEventStatus failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("got %d events, want 3 (scope isolation)", len(events))
	}
}

func TestEventRepo_Search(t *testing.T) {
	repo := NewEventRepo(NewMemoryStorage())
	serviceID := uuid.New()

	directions := []domain.TransactionDirection{
		domain.DirectionSend, domain.DirectionReceive, domain.DirectionSend,
	}
	for _, dir := range directions {
		ev := sampleEvent(serviceID)
		ev.MessageHash = ev.ID.String()
		ev.Direction = dir
		if err := repo.Insert(context.Background(), ev); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		// Distinct creation instants for a stable order
		time.Sleep(time.Millisecond)
	}

	t.Run("limit zero returns empty page", func(t *testing.T) {
		events, err := repo.Search(context.Background(), serviceID, storage.EventFilter{Limit: 0})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(events) != 0 {
			t.Errorf("got %d events, want 0", len(events))
		}
	})

	t.Run("limit above cap rejected", func(t *testing.T) {
		_, err := repo.Search(context.Background(), serviceID, storage.EventFilter{Limit: storage.MaxSearchLimit + 1})
		if !errors.Is(err, storage.ErrInvalidFilter) {
			t.Errorf("Search error = %v, want ErrInvalidFilter", err)
		}
	})

	t.Run("direction predicate", func(t *testing.T) {
		send := domain.DirectionSend
		events, err := repo.Search(context.Background(), serviceID, storage.EventFilter{
			Limit:                10,
			TransactionDirection: &send,
		})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("got %d events, want 2", len(events))
		}
	})

	t.Run("newest first with offset", func(t *testing.T) {
		all, err := repo.Search(context.Background(), serviceID, storage.EventFilter{Limit: 10})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("got %d events, want 3", len(all))
		}
		for i := 1; i < len(all); i++ {
			if all[i].CreatedAt.After(all[i-1].CreatedAt) {
				t.Errorf("events not ordered newest first")
			}
		}

		page, err := repo.Search(context.Background(), serviceID, storage.EventFilter{Limit: 10, Offset: 2})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(page) != 1 {
			t.Errorf("got %d events at offset 2, want 1", len(page))
		}
	})
}

func TestTokenEventRepo_Roundtrip(t *testing.T) {
	repo := NewTokenEventRepo(NewMemoryStorage())
	serviceID := uuid.New()
	ev := domain.TokenEvent{
		ID:                 uuid.New(),
		ServiceID:          serviceID,
		TokenTransactionID: uuid.New(),
		MessageHash:        "token-mh",
		AccountWorkchainID: 0,
		AccountHex:         accountHex,
		Value:              decimal.NewFromInt(500),
		RootAddress:        "0:" + accountHex,
		Direction:          domain.DirectionReceive,
		TransactionStatus:  domain.TransactionStatusDone,
		EventStatus:        domain.EventStatusNew,
	}

	if err := repo.Insert(context.Background(), ev); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := repo.GetByMessageHash(context.Background(), serviceID, "token-mh", 0, accountHex)
	if err != nil {
		t.Fatalf("GetByMessageHash failed: %v", err)
	}
	if got.RootAddress != ev.RootAddress || !got.Value.Equal(ev.Value) {
		t.Errorf("token fields differ: %+v", got)
	}

	updated, err := repo.UpdateEventStatus(context.Background(), "token-mh", 0, accountHex, domain.EventStatusNotified)
	if err != nil {
		t.Fatalf("UpdateEventStatus failed: %v", err)
	}
	if updated.EventStatus != domain.EventStatusNotified {
		t.Errorf("event status = %s, want notified", updated.EventStatus)
	}

	_, err = repo.UpdateEventStatus(context.Background(), "missing", 0, accountHex, domain.EventStatusNotified)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateEventStatus error = %v, want ErrNotFound", err)
	}
}
