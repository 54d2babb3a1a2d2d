package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tonpay/events/internal/core/domain"
	"github.com/tonpay/events/internal/infra/storage"
)

// TokenEventRepo implements storage.TokenEventRepository using PostgreSQL.
type TokenEventRepo struct {
	db *DB
}

// NewTokenEventRepo creates a new PostgreSQL token event repository.
func NewTokenEventRepo(db *DB) *TokenEventRepo {
	return &TokenEventRepo{db: db}
}

const tokenEventColumns = `id, service_id, token_transaction_id, token_transaction_hash,
		message_hash, owner_message_hash, account_workchain_id, account_hex,
		sender_workchain_id, sender_hex, value, root_address,
		transaction_direction, transaction_status, event_status, created_at, updated_at`

type tokenEventRow struct {
	ID                   uuid.UUID       `db:"id"`
	ServiceID            uuid.UUID       `db:"service_id"`
	TokenTransactionID   uuid.UUID       `db:"token_transaction_id"`
	TokenTransactionHash *string         `db:"token_transaction_hash"`
	MessageHash          string          `db:"message_hash"`
	OwnerMessageHash     *string         `db:"owner_message_hash"`
	AccountWorkchainID   int32           `db:"account_workchain_id"`
	AccountHex           string          `db:"account_hex"`
	SenderWorkchainID    *int32          `db:"sender_workchain_id"`
	SenderHex            *string         `db:"sender_hex"`
	Value                decimal.Decimal `db:"value"`
	RootAddress          string          `db:"root_address"`
	TransactionDirection string          `db:"transaction_direction"`
	TransactionStatus    string          `db:"transaction_status"`
	EventStatus          string          `db:"event_status"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

func (r *tokenEventRow) toDomain() (domain.TokenEvent, error) {
	direction, err := domain.ParseTransactionDirection(r.TransactionDirection)
	if err != nil {
		return domain.TokenEvent{}, fmt.Errorf("token event %s: %w", r.ID, err)
	}
	txStatus, err := domain.ParseTransactionStatus(r.TransactionStatus)
	if err != nil {
		return domain.TokenEvent{}, fmt.Errorf("token event %s: %w", r.ID, err)
	}
	evStatus, err := domain.ParseEventStatus(r.EventStatus)
	if err != nil {
		return domain.TokenEvent{}, fmt.Errorf("token event %s: %w", r.ID, err)
	}

	return domain.TokenEvent{
		ID:                   r.ID,
		ServiceID:            r.ServiceID,
		TokenTransactionID:   r.TokenTransactionID,
		TokenTransactionHash: r.TokenTransactionHash,
		MessageHash:          r.MessageHash,
		OwnerMessageHash:     r.OwnerMessageHash,
		AccountWorkchainID:   r.AccountWorkchainID,
		AccountHex:           r.AccountHex,
		SenderWorkchainID:    r.SenderWorkchainID,
		SenderHex:            r.SenderHex,
		Value:                r.Value,
		RootAddress:          r.RootAddress,
		Direction:            direction,
		TransactionStatus:    txStatus,
		EventStatus:          evStatus,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}, nil
}

// Insert appends a new token event row.
func (r *TokenEventRepo) Insert(ctx context.Context, ev domain.TokenEvent) error {
	query := `
		INSERT INTO token_transaction_events (
			id, service_id, token_transaction_id, token_transaction_hash,
			message_hash, owner_message_hash, account_workchain_id, account_hex,
			sender_workchain_id, sender_hex, value, root_address,
			transaction_direction, transaction_status, event_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		ev.ID, ev.ServiceID, ev.TokenTransactionID, ev.TokenTransactionHash,
		ev.MessageHash, ev.OwnerMessageHash, ev.AccountWorkchainID, ev.AccountHex,
		ev.SenderWorkchainID, ev.SenderHex, ev.Value, ev.RootAddress,
		string(ev.Direction), string(ev.TransactionStatus), string(ev.EventStatus),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: token event %s", storage.ErrConflict, ev.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert token event: %w", err)
	}
	return nil
}

// GetByMessageHash retrieves a token event by its natural key.
func (r *TokenEventRepo) GetByMessageHash(ctx context.Context, serviceID uuid.UUID, messageHash string, workchainID int32, hex string) (domain.TokenEvent, error) {
	query := `
		SELECT ` + tokenEventColumns + `
		FROM token_transaction_events
		WHERE service_id = $1 AND message_hash = $2 AND account_workchain_id = $3 AND account_hex = $4
	`

	var row tokenEventRow
	err := r.db.GetContext(ctx, &row, query, serviceID, messageHash, workchainID, hex)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TokenEvent{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.TokenEvent{}, fmt.Errorf("failed to get token event: %w", err)
	}

	return row.toDomain()
}

// UpdateEventStatus transitions event_status atomically and returns the
// updated row.
func (r *TokenEventRepo) UpdateEventStatus(ctx context.Context, messageHash string, workchainID int32, hex string, status domain.EventStatus) (domain.TokenEvent, error) {
	query := `
		UPDATE token_transaction_events
		SET event_status = $1, updated_at = NOW()
		WHERE message_hash = $2 AND account_workchain_id = $3 AND account_hex = $4
		RETURNING ` + tokenEventColumns

	var row tokenEventRow
	err := r.db.GetContext(ctx, &row, query, string(status), messageHash, workchainID, hex)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TokenEvent{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.TokenEvent{}, fmt.Errorf("failed to update token event status: %w", err)
	}

	return row.toDomain()
}

// ListByEventStatus retrieves all token events of a service in the given
// delivery state.
func (r *TokenEventRepo) ListByEventStatus(ctx context.Context, serviceID uuid.UUID, status domain.EventStatus) ([]domain.TokenEvent, error) {
	query := `
		SELECT ` + tokenEventColumns + `
		FROM token_transaction_events
		WHERE service_id = $1 AND event_status = $2
	`

	var rows []tokenEventRow
	err := r.db.SelectContext(ctx, &rows, query, serviceID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list token events: %w", err)
	}

	events := make([]domain.TokenEvent, 0, len(rows))
	for i := range rows {
		ev, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
