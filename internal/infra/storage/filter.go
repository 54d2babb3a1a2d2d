package storage

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tonpay/events/internal/core/domain"
)

// EventFilter is a read-only search descriptor. All predicates are optional
// and AND-combined; CreatedAtGe/Le are milliseconds since epoch.
type EventFilter struct {
	Limit                int64
	Offset               int64
	CreatedAtGe          *int64
	CreatedAtLe          *int64
	TransactionID        *uuid.UUID
	MessageHash          *string
	AccountWorkchainID   *int32
	AccountHex           *string
	TransactionDirection *domain.TransactionDirection
	TransactionStatus    *domain.TransactionStatus
	EventStatus          *domain.EventStatus
}

// Validate rejects malformed paging. A limit above the cap is an error, never
// silently truncated.
func (f EventFilter) Validate() error {
	if f.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidFilter, f.Limit)
	}
	if f.Offset < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrInvalidFilter, f.Offset)
	}
	if f.Limit > MaxSearchLimit {
		return fmt.Errorf("%w: limit %d exceeds maximum %d", ErrInvalidFilter, f.Limit, MaxSearchLimit)
	}
	return nil
}
