package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Row is a stored event row. Native-coin and token transactions persist in
// two physically distinct shapes; they are unified only at the projection
// boundary. The marker method keeps the union closed.
type Row interface {
	row()
}

// Event is a stored event for a native-coin transaction.
type Event struct {
	ID                    uuid.UUID
	ServiceID             uuid.UUID
	TransactionID         uuid.UUID
	TransactionHash       *string
	MessageHash           string
	AccountWorkchainID    int32
	AccountHex            string
	SenderWorkchainID     *int32
	SenderHex             *string
	BalanceChange         *decimal.Decimal
	Direction             TransactionDirection
	TransactionStatus     TransactionStatus
	EventStatus           EventStatus
	MultisigTransactionID *int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (Event) row() {}

// TokenEvent is a stored event for a token transfer. RootAddress is always
// present; value is known at observation time.
type TokenEvent struct {
	ID                   uuid.UUID
	ServiceID            uuid.UUID
	TokenTransactionID   uuid.UUID
	TokenTransactionHash *string
	MessageHash          string
	OwnerMessageHash     *string
	AccountWorkchainID   int32
	AccountHex           string
	SenderWorkchainID    *int32
	SenderHex            *string
	Value                decimal.Decimal
	RootAddress          string
	Direction            TransactionDirection
	TransactionStatus    TransactionStatus
	EventStatus          EventStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (TokenEvent) row() {}

// EventUpdate is the only mutation an already-created event accepts from a
// re-observed transaction. Identity, direction and creation time never change.
type EventUpdate struct {
	TransactionStatus TransactionStatus
	BalanceChange     *decimal.Decimal
}
