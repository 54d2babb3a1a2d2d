package ingest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tonpay/events/internal/core/domain"
	"github.com/tonpay/events/internal/infra/storage/memory"
)

const accountHex = "33d4f7c7653efd9ac9b85a5d1cd5c5fbbd5a380c08a1a906cc3a27d9446b0e36"

func newTestRecorder() *Recorder {
	store := memory.NewMemoryStorage()
	return NewRecorder(memory.NewEventRepo(store), memory.NewTokenEventRepo(store))
}

func sendTransaction() domain.Transaction {
	return domain.Transaction{
		ID:                 uuid.New(),
		ServiceID:          uuid.New(),
		MessageHash:        "mh-send",
		AccountWorkchainID: 0,
		AccountHex:         accountHex,
		Direction:          domain.DirectionSend,
		Status:             domain.TransactionStatusNew,
	}
}

func TestRecordTransaction_CreatesSend(t *testing.T) {
	r := newTestRecorder()
	tx := sendTransaction()

	ev, err := r.RecordTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}

	if ev.Direction != domain.DirectionSend {
		t.Errorf("direction = %s, want send", ev.Direction)
	}
	if ev.TransactionStatus != domain.TransactionStatusNew {
		t.Errorf("transaction status = %s, want new", ev.TransactionStatus)
	}
	if ev.EventStatus != domain.EventStatusNew {
		t.Errorf("event status = %s, want new", ev.EventStatus)
	}
	if ev.BalanceChange != nil {
		t.Errorf("balance change = %v, want nil", ev.BalanceChange)
	}
}

func TestRecordTransaction_ReobservationUpdates(t *testing.T) {
	r := newTestRecorder()
	tx := sendTransaction()

	created, err := r.RecordTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}

	// Confirmation arrives: same message hash, final status, known delta
	balance := decimal.NewFromInt(-3000000000)
	tx.Status = domain.TransactionStatusDone
	tx.BalanceChange = &balance

	updated, err := r.RecordTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("RecordTransaction (reobservation) failed: %v", err)
	}

	if updated.ID != created.ID {
		t.Errorf("reobservation created a new event: %s != %s", updated.ID, created.ID)
	}
	if updated.TransactionStatus != domain.TransactionStatusDone {
		t.Errorf("transaction status = %s, want done", updated.TransactionStatus)
	}
	if updated.BalanceChange == nil || !updated.BalanceChange.Equal(balance) {
		t.Errorf("balance change = %v, want %s", updated.BalanceChange, balance)
	}
	if updated.Direction != created.Direction {
		t.Errorf("direction changed on update")
	}
}

func TestRecordTransaction_Receive(t *testing.T) {
	r := newTestRecorder()
	balance := decimal.NewFromInt(9000000000)
	tx := sendTransaction()
	tx.Direction = domain.DirectionReceive
	tx.BalanceChange = &balance

	ev, err := r.RecordTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}

	if ev.TransactionStatus != domain.TransactionStatusDone {
		t.Errorf("transaction status = %s, want done", ev.TransactionStatus)
	}
	if ev.BalanceChange == nil || !ev.BalanceChange.Equal(balance) {
		t.Errorf("balance change = %v, want %s", ev.BalanceChange, balance)
	}
}

func TestRecordTransaction_UnknownDirection(t *testing.T) {
	r := newTestRecorder()
	tx := sendTransaction()
	tx.Direction = "sideways"

	if _, err := r.RecordTransaction(context.Background(), tx); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestRecordTokenTransaction_Idempotent(t *testing.T) {
	r := newTestRecorder()
	tx := domain.TokenTransaction{
		ID:                 uuid.New(),
		ServiceID:          uuid.New(),
		MessageHash:        "mh-token",
		AccountWorkchainID: 0,
		AccountHex:         accountHex,
		Value:              decimal.NewFromInt(100),
		RootAddress:        "0:" + accountHex,
		Direction:          domain.DirectionReceive,
	}

	created, err := r.RecordTokenTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("RecordTokenTransaction failed: %v", err)
	}
	if created.TransactionStatus != domain.TransactionStatusDone {
		t.Errorf("transaction status = %s, want done", created.TransactionStatus)
	}

	again, err := r.RecordTokenTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("RecordTokenTransaction (repeat) failed: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("repeat observation created a new token event")
	}
}
