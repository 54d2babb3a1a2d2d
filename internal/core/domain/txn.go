package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a native-coin transaction record supplied by the transaction
// source. This service only reads it.
type Transaction struct {
	ID                    uuid.UUID
	ServiceID             uuid.UUID
	MessageHash           string
	TransactionHash       *string
	AccountWorkchainID    int32
	AccountHex            string
	SenderWorkchainID     *int32
	SenderHex             *string
	BalanceChange         *decimal.Decimal
	MultisigTransactionID *int64
	Direction             TransactionDirection
	Status                TransactionStatus
}

// TokenTransaction is a token-transfer transaction record. RootAddress
// identifies the token contract; OwnerMessageHash links back to the token
// wallet owner's message.
type TokenTransaction struct {
	ID                 uuid.UUID
	ServiceID          uuid.UUID
	MessageHash        string
	TransactionHash    *string
	OwnerMessageHash   *string
	AccountWorkchainID int32
	AccountHex         string
	SenderWorkchainID  *int32
	SenderHex          *string
	Value              decimal.Decimal
	RootAddress        string
	Direction          TransactionDirection
	Status             TransactionStatus
}
