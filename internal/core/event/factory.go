package event

import (
	"github.com/google/uuid"

	"github.com/tonpay/events/internal/core/domain"
)

// CreateSend builds the event for an outgoing native-coin transaction. Sends
// start unconfirmed: the balance change is unknown until the transaction is
// re-observed with a final status.
func CreateSend(tx domain.Transaction) domain.Event {
	return domain.Event{
		ID:                    uuid.New(),
		ServiceID:             tx.ServiceID,
		TransactionID:         tx.ID,
		TransactionHash:       tx.TransactionHash,
		MessageHash:           tx.MessageHash,
		AccountWorkchainID:    tx.AccountWorkchainID,
		AccountHex:            tx.AccountHex,
		MultisigTransactionID: tx.MultisigTransactionID,
		Direction:             domain.DirectionSend,
		TransactionStatus:     domain.TransactionStatusNew,
		EventStatus:           domain.EventStatusNew,
	}
}

// CreateReceive builds the event for an incoming native-coin transaction.
// Receives are already final when observed.
func CreateReceive(tx domain.Transaction) domain.Event {
	return domain.Event{
		ID:                 uuid.New(),
		ServiceID:          tx.ServiceID,
		TransactionID:      tx.ID,
		TransactionHash:    tx.TransactionHash,
		MessageHash:        tx.MessageHash,
		AccountWorkchainID: tx.AccountWorkchainID,
		AccountHex:         tx.AccountHex,
		SenderWorkchainID:  tx.SenderWorkchainID,
		SenderHex:          tx.SenderHex,
		BalanceChange:      tx.BalanceChange,
		Direction:          domain.DirectionReceive,
		TransactionStatus:  domain.TransactionStatusDone,
		EventStatus:        domain.EventStatusNew,
	}
}

// CreateToken builds the event for a token transfer. The same status
// asymmetry applies: sends await confirmation, receives are final.
func CreateToken(tx domain.TokenTransaction) domain.TokenEvent {
	status := domain.TransactionStatusDone
	if tx.Direction == domain.DirectionSend {
		status = domain.TransactionStatusNew
	}
	return domain.TokenEvent{
		ID:                   uuid.New(),
		ServiceID:            tx.ServiceID,
		TokenTransactionID:   tx.ID,
		TokenTransactionHash: tx.TransactionHash,
		MessageHash:          tx.MessageHash,
		OwnerMessageHash:     tx.OwnerMessageHash,
		AccountWorkchainID:   tx.AccountWorkchainID,
		AccountHex:           tx.AccountHex,
		SenderWorkchainID:    tx.SenderWorkchainID,
		SenderHex:            tx.SenderHex,
		Value:                tx.Value,
		RootAddress:          tx.RootAddress,
		Direction:            tx.Direction,
		TransactionStatus:    status,
		EventStatus:          domain.EventStatusNew,
	}
}

// UpdateFrom derives the partial update applied when an already-recorded
// transaction is observed again.
func UpdateFrom(tx domain.Transaction) domain.EventUpdate {
	return domain.EventUpdate{
		TransactionStatus: tx.Status,
		BalanceChange:     tx.BalanceChange,
	}
}
