package domain

import "fmt"

// TransactionDirection is fixed when an event is created and never mutated.
type TransactionDirection string

const (
	DirectionSend    TransactionDirection = "send"
	DirectionReceive TransactionDirection = "receive"
)

// TransactionStatus is the state of the underlying chain transaction.
type TransactionStatus string

const (
	TransactionStatusNew           TransactionStatus = "new"
	TransactionStatusDone          TransactionStatus = "done"
	TransactionStatusPartiallyDone TransactionStatus = "partially_done"
	TransactionStatusError         TransactionStatus = "error"
)

// EventStatus is the delivery state of the event itself, independent of the
// transaction's status.
type EventStatus string

const (
	EventStatusNew      EventStatus = "new"
	EventStatusNotified EventStatus = "notified"
	EventStatusError    EventStatus = "error"
)

// The enums are closed sets. Values coming back from the store are validated
// through these parsers; an unknown value is an error, never a default.

func ParseTransactionDirection(s string) (TransactionDirection, error) {
	switch d := TransactionDirection(s); d {
	case DirectionSend, DirectionReceive:
		return d, nil
	default:
		return "", fmt.Errorf("unknown transaction direction %q", s)
	}
}

func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch st := TransactionStatus(s); st {
	case TransactionStatusNew, TransactionStatusDone, TransactionStatusPartiallyDone, TransactionStatusError:
		return st, nil
	default:
		return "", fmt.Errorf("unknown transaction status %q", s)
	}
}

func ParseEventStatus(s string) (EventStatus, error) {
	switch st := EventStatus(s); st {
	case EventStatusNew, EventStatusNotified, EventStatusError:
		return st, nil
	default:
		return "", fmt.Errorf("unknown event status %q", s)
	}
}
