package event

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tonpay/events/internal/core/domain"
)

// Published is the single external representation of an event, unifying the
// native and token row shapes. Timestamps are milliseconds since epoch.
type Published struct {
	ID                    uuid.UUID                   `json:"id"`
	TransactionID         uuid.UUID                   `json:"transactionId"`
	TransactionHash       *string                     `json:"transactionHash,omitempty"`
	MessageHash           string                      `json:"messageHash"`
	OwnerMessageHash      *string                     `json:"ownerMessageHash,omitempty"`
	Account               domain.Account              `json:"account"`
	Sender                *domain.Account             `json:"sender,omitempty"`
	BalanceChange         *decimal.Decimal            `json:"balanceChange,omitempty"`
	RootAddress           *string                     `json:"rootAddress,omitempty"`
	TransactionDirection  domain.TransactionDirection `json:"transactionDirection"`
	TransactionStatus     domain.TransactionStatus    `json:"transactionStatus"`
	EventStatus           domain.EventStatus          `json:"eventStatus"`
	MultisigTransactionID *int64                      `json:"multisigTransactionId,omitempty"`
	CreatedAt             int64                       `json:"createdAt"`
	UpdatedAt             int64                       `json:"updatedAt"`
}

// ToPublic projects a stored row into the published representation. A packing
// failure on a stored address aborts the projection: an event with a
// malformed address must not be published.
func ToPublic(row domain.Row) (Published, error) {
	switch r := row.(type) {
	case domain.Event:
		return projectNative(r)
	case domain.TokenEvent:
		return projectToken(r)
	default:
		return Published{}, fmt.Errorf("unknown event row type %T", row)
	}
}

func projectNative(r domain.Event) (Published, error) {
	account, err := domain.NewAccount(r.AccountWorkchainID, r.AccountHex)
	if err != nil {
		return Published{}, fmt.Errorf("project event %s: %w", r.ID, err)
	}

	sender, err := projectSender(r.SenderWorkchainID, r.SenderHex)
	if err != nil {
		return Published{}, fmt.Errorf("project event %s: %w", r.ID, err)
	}

	return Published{
		ID:                    r.ID,
		TransactionID:         r.TransactionID,
		TransactionHash:       r.TransactionHash,
		MessageHash:           r.MessageHash,
		Account:               account,
		Sender:                sender,
		BalanceChange:         r.BalanceChange,
		TransactionDirection:  r.Direction,
		TransactionStatus:     r.TransactionStatus,
		EventStatus:           r.EventStatus,
		MultisigTransactionID: r.MultisigTransactionID,
		CreatedAt:             r.CreatedAt.UnixMilli(),
		UpdatedAt:             r.UpdatedAt.UnixMilli(),
	}, nil
}

func projectToken(r domain.TokenEvent) (Published, error) {
	account, err := domain.NewAccount(r.AccountWorkchainID, r.AccountHex)
	if err != nil {
		return Published{}, fmt.Errorf("project token event %s: %w", r.ID, err)
	}

	sender, err := projectSender(r.SenderWorkchainID, r.SenderHex)
	if err != nil {
		return Published{}, fmt.Errorf("project token event %s: %w", r.ID, err)
	}

	value := r.Value
	rootAddress := r.RootAddress
	return Published{
		ID:                   r.ID,
		TransactionID:        r.TokenTransactionID,
		TransactionHash:      r.TokenTransactionHash,
		MessageHash:          r.MessageHash,
		OwnerMessageHash:     r.OwnerMessageHash,
		Account:              account,
		Sender:               sender,
		BalanceChange:        &value,
		RootAddress:          &rootAddress,
		TransactionDirection: r.Direction,
		TransactionStatus:    r.TransactionStatus,
		EventStatus:          r.EventStatus,
		CreatedAt:            r.CreatedAt.UnixMilli(),
		UpdatedAt:            r.UpdatedAt.UnixMilli(),
	}, nil
}

// projectSender builds the optional sender account. Both halves of the raw
// pair must be present; a lone half is treated as absent.
func projectSender(workchainID *int32, hex *string) (*domain.Account, error) {
	if workchainID == nil || hex == nil {
		return nil, nil
	}
	sender, err := domain.NewAccount(*workchainID, *hex)
	if err != nil {
		return nil, err
	}
	return &sender, nil
}
