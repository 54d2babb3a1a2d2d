package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/tonpay/events/internal/core/domain"
	"github.com/tonpay/events/internal/infra/storage"
)

// EventRepo implements storage.EventRepository using PostgreSQL.
type EventRepo struct {
	db *DB
}

// NewEventRepo creates a new PostgreSQL event repository.
func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

const eventColumns = `id, service_id, transaction_id, transaction_hash, message_hash,
		account_workchain_id, account_hex, sender_workchain_id, sender_hex,
		balance_change, transaction_direction, transaction_status, event_status,
		multisig_transaction_id, created_at, updated_at`

type eventRow struct {
	ID                    uuid.UUID           `db:"id"`
	ServiceID             uuid.UUID           `db:"service_id"`
	TransactionID         uuid.UUID           `db:"transaction_id"`
	TransactionHash       *string             `db:"transaction_hash"`
	MessageHash           string              `db:"message_hash"`
	AccountWorkchainID    int32               `db:"account_workchain_id"`
	AccountHex            string              `db:"account_hex"`
	SenderWorkchainID     *int32              `db:"sender_workchain_id"`
	SenderHex             *string             `db:"sender_hex"`
	BalanceChange         decimal.NullDecimal `db:"balance_change"`
	TransactionDirection  string              `db:"transaction_direction"`
	TransactionStatus     string              `db:"transaction_status"`
	EventStatus           string              `db:"event_status"`
	MultisigTransactionID *int64              `db:"multisig_transaction_id"`
	CreatedAt             time.Time           `db:"created_at"`
	UpdatedAt             time.Time           `db:"updated_at"`
}

// toDomain validates enum columns at the boundary. Unknown values coming back
// from the store are errors, not defaults.
func (r *eventRow) toDomain() (domain.Event, error) {
	direction, err := domain.ParseTransactionDirection(r.TransactionDirection)
	if err != nil {
		return domain.Event{}, fmt.Errorf("event %s: %w", r.ID, err)
	}
	txStatus, err := domain.ParseTransactionStatus(r.TransactionStatus)
	if err != nil {
		return domain.Event{}, fmt.Errorf("event %s: %w", r.ID, err)
	}
	evStatus, err := domain.ParseEventStatus(r.EventStatus)
	if err != nil {
		return domain.Event{}, fmt.Errorf("event %s: %w", r.ID, err)
	}

	ev := domain.Event{
		ID:                    r.ID,
		ServiceID:             r.ServiceID,
		TransactionID:         r.TransactionID,
		TransactionHash:       r.TransactionHash,
		MessageHash:           r.MessageHash,
		AccountWorkchainID:    r.AccountWorkchainID,
		AccountHex:            r.AccountHex,
		SenderWorkchainID:     r.SenderWorkchainID,
		SenderHex:             r.SenderHex,
		Direction:             direction,
		TransactionStatus:     txStatus,
		EventStatus:           evStatus,
		MultisigTransactionID: r.MultisigTransactionID,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
	if r.BalanceChange.Valid {
		bc := r.BalanceChange.Decimal
		ev.BalanceChange = &bc
	}
	return ev, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// failure (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Insert appends a new event row.
func (r *EventRepo) Insert(ctx context.Context, ev domain.Event) error {
	query := `
		INSERT INTO transaction_events (
			id, service_id, transaction_id, transaction_hash, message_hash,
			account_workchain_id, account_hex, sender_workchain_id, sender_hex,
			balance_change, transaction_direction, transaction_status, event_status,
			multisig_transaction_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		ev.ID, ev.ServiceID, ev.TransactionID, ev.TransactionHash, ev.MessageHash,
		ev.AccountWorkchainID, ev.AccountHex, ev.SenderWorkchainID, ev.SenderHex,
		nullDecimal(ev.BalanceChange), string(ev.Direction), string(ev.TransactionStatus),
		string(ev.EventStatus), ev.MultisigTransactionID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: event %s", storage.ErrConflict, ev.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetByMessageHash retrieves an event by its natural key. The raw pair is
// matched, never the packed address.
func (r *EventRepo) GetByMessageHash(ctx context.Context, serviceID uuid.UUID, messageHash string, workchainID int32, hex string) (domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM transaction_events
		WHERE service_id = $1 AND message_hash = $2 AND account_workchain_id = $3 AND account_hex = $4
	`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, serviceID, messageHash, workchainID, hex)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to get event: %w", err)
	}

	return row.toDomain()
}

// UpdateEventStatus transitions event_status in a single UPDATE .. RETURNING,
// avoiding a read-then-write race.
func (r *EventRepo) UpdateEventStatus(ctx context.Context, messageHash string, workchainID int32, hex string, status domain.EventStatus) (domain.Event, error) {
	query := `
		UPDATE transaction_events
		SET event_status = $1, updated_at = NOW()
		WHERE message_hash = $2 AND account_workchain_id = $3 AND account_hex = $4
		RETURNING ` + eventColumns

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, string(status), messageHash, workchainID, hex)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to update event status: %w", err)
	}

	return row.toDomain()
}

// UpdateFromTransaction applies the partial update from a re-observed
// transaction. Identity fields and created_at are untouched.
func (r *EventRepo) UpdateFromTransaction(ctx context.Context, messageHash string, workchainID int32, hex string, upd domain.EventUpdate) (domain.Event, error) {
	query := `
		UPDATE transaction_events
		SET transaction_status = $1, balance_change = $2, updated_at = NOW()
		WHERE message_hash = $3 AND account_workchain_id = $4 AND account_hex = $5
		RETURNING ` + eventColumns

	var row eventRow
	err := r.db.GetContext(ctx, &row, query,
		string(upd.TransactionStatus), nullDecimal(upd.BalanceChange),
		messageHash, workchainID, hex,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to update event: %w", err)
	}

	return row.toDomain()
}

// ListByEventStatus retrieves all events of a service in the given delivery
// state. No ORDER BY: callers must not assume insertion order.
func (r *EventRepo) ListByEventStatus(ctx context.Context, serviceID uuid.UUID, status domain.EventStatus) ([]domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM transaction_events
		WHERE service_id = $1 AND event_status = $2
	`

	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, query, serviceID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]domain.Event, 0, len(rows))
	for i := range rows {
		ev, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// Search returns a page of events matching the filter, newest first.
func (r *EventRepo) Search(ctx context.Context, serviceID uuid.UUID, filter storage.EventFilter) ([]domain.Event, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if filter.Limit == 0 {
		return []domain.Event{}, nil
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + eventColumns + ` FROM transaction_events WHERE service_id = $1`)
	args := []any{serviceID}

	where := func(cond string, v any) {
		args = append(args, v)
		fmt.Fprintf(&sb, " AND "+cond, len(args))
	}

	if filter.CreatedAtGe != nil {
		where("created_at >= $%d", time.UnixMilli(*filter.CreatedAtGe).UTC())
	}
	if filter.CreatedAtLe != nil {
		where("created_at <= $%d", time.UnixMilli(*filter.CreatedAtLe).UTC())
	}
	if filter.TransactionID != nil {
		where("transaction_id = $%d", *filter.TransactionID)
	}
	if filter.MessageHash != nil {
		where("message_hash = $%d", *filter.MessageHash)
	}
	if filter.AccountWorkchainID != nil {
		where("account_workchain_id = $%d", *filter.AccountWorkchainID)
	}
	if filter.AccountHex != nil {
		where("account_hex = $%d", *filter.AccountHex)
	}
	if filter.TransactionDirection != nil {
		where("transaction_direction = $%d", string(*filter.TransactionDirection))
	}
	if filter.TransactionStatus != nil {
		where("transaction_status = $%d", string(*filter.TransactionStatus))
	}
	if filter.EventStatus != nil {
		where("event_status = $%d", string(*filter.EventStatus))
	}

	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}

	events := make([]domain.Event, 0, len(rows))
	for i := range rows {
		ev, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
