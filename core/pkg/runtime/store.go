package runtime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrMandateNotFound is returned by store lookups when a mandate_id has
// never been upserted.
var ErrMandateNotFound = errors.New("runtime: mandate not found")

// ErrMandateRevoked is returned by ConsumeMandate when the mandate has a
// recorded revocation.
var ErrMandateRevoked = errors.New("runtime: mandate revoked")

// ErrAlreadyRevoked is returned by RevokeMandate on a mandate that already
// carries a revocation.
var ErrAlreadyRevoked = errors.New("runtime: mandate already revoked")

// Store is the persistence boundary for mandate upsert, consumption, and
// revocation. Implementations must make ConsumeMandate atomic: the
// idempotent-replay check, nonce insert, use-count update, and use-row
// insert happen inside one storage transaction.
type Store interface {
	UpsertMandate(ctx context.Context, m *Mandate) error
	ConsumeMandate(ctx context.Context, m *Mandate, call *ToolCall) (*Receipt, error)
	RevokeMandate(ctx context.Context, mandateID, reason, by string) (time.Time, error)
}

// mandateSchema is the SQL DDL for the three tables the consume protocol
// needs: mandates (use-count ceiling), mandate_uses (idempotent receipts),
// and nonces (replay protection scoped to audience/issuer).
const mandateSchema = `
CREATE TABLE IF NOT EXISTS mandates (
	mandate_id TEXT PRIMARY KEY,
	mandate_kind TEXT NOT NULL,
	audience TEXT NOT NULL,
	issuer TEXT NOT NULL,
	expires_at TIMESTAMP NOT NULL,
	single_use BOOLEAN NOT NULL,
	max_uses INTEGER,
	use_count INTEGER NOT NULL DEFAULT 0,
	canonical_digest TEXT NOT NULL,
	key_id TEXT NOT NULL,
	revoked_at TIMESTAMP,
	revoked_reason TEXT,
	revoked_by TEXT
);

CREATE TABLE IF NOT EXISTS mandate_uses (
	use_id TEXT PRIMARY KEY,
	mandate_id TEXT NOT NULL,
	tool_call_id TEXT NOT NULL UNIQUE,
	use_count INTEGER NOT NULL,
	consumed_at TIMESTAMP NOT NULL,
	tool_name TEXT NOT NULL,
	operation_class INTEGER NOT NULL,
	nonce TEXT,
	source_run_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS nonces (
	audience TEXT NOT NULL,
	issuer TEXT NOT NULL,
	nonce TEXT NOT NULL,
	UNIQUE (audience, issuer, nonce)
);
`

// SQLStore implements Store over database/sql, compatible with both
// lib/pq (PostgreSQL) and modernc.org/sqlite, using $N positional
// placeholders.
type SQLStore struct {
	db          *sql.DB
	clock       func() time.Time
	eventSource string
	eventSink   EventSink
	eventSigner *EventSigner
}

// NewSQLStore wraps an open *sql.DB. Call Init once to create the schema.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, clock: time.Now, eventSource: "assay-runtime"}
}

// WithClock overrides the clock used for consumed_at, for deterministic tests.
func (s *SQLStore) WithClock(clock func() time.Time) *SQLStore {
	s.clock = clock
	return s
}

// WithEventSink configures where assay.mandate.used.v1/assay.mandate.revoked.v1
// lifecycle events are emitted after a successful consume or revoke. source
// becomes the CloudEvents "source" field; it is typically the deployment's
// configured audit source per spec §6.
func (s *SQLStore) WithEventSink(source string, sink EventSink) *SQLStore {
	s.eventSource = source
	s.eventSink = sink
	return s
}

// WithEventSigner configures DSSE signing of emitted lifecycle events.
func (s *SQLStore) WithEventSigner(signer *EventSigner) *SQLStore {
	s.eventSigner = signer
	return s
}

// emit is a best-effort no-op when no sink is configured. A sink failure is
// swallowed: delivery is not allowed to undo an already-committed mandate
// state change, and a sink that needs stronger guarantees should queue
// internally and retry rather than surface the failure here.
func (s *SQLStore) emit(ctx context.Context, event LifecycleEvent) {
	if s.eventSink == nil {
		return
	}
	_ = s.eventSink.Emit(ctx, event)
}

// Init creates the mandate/mandate_uses/nonces tables if absent.
func (s *SQLStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, mandateSchema)
	return err
}

// UpsertMandate inserts mandate metadata on first sight and, on every
// subsequent call, verifies the stored row agrees on kind, audience,
// issuer, canonical digest, and key id — returning *MandateConflict naming
// the first field that disagrees.
func (s *SQLStore) UpsertMandate(ctx context.Context, m *Mandate) error {
	if m.SingleUse && m.MaxUses != nil && *m.MaxUses != 1 {
		return &InvalidConstraints{Reason: "single_use requires max_uses to be absent or exactly 1"}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mandates (mandate_id, mandate_kind, audience, issuer, expires_at, single_use, max_uses, use_count, canonical_digest, key_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9)
		ON CONFLICT (mandate_id) DO NOTHING
	`, m.MandateID, string(m.MandateKind), m.Audience, m.Issuer, m.ExpiresAt, m.SingleUse, nullableInt(m.MaxUses), m.CanonicalDigest, m.KeyID)
	if err != nil {
		return fmt.Errorf("runtime: upserting mandate: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT mandate_kind, audience, issuer, canonical_digest, key_id
		FROM mandates WHERE mandate_id = $1
	`, m.MandateID)

	var kind, audience, issuer, digest, keyID string
	if err := row.Scan(&kind, &audience, &issuer, &digest, &keyID); err != nil {
		return fmt.Errorf("runtime: reading back upserted mandate: %w", err)
	}

	switch {
	case kind != string(m.MandateKind):
		return &MandateConflict{MandateID: m.MandateID, Field: "mandate_kind"}
	case audience != m.Audience:
		return &MandateConflict{MandateID: m.MandateID, Field: "audience"}
	case issuer != m.Issuer:
		return &MandateConflict{MandateID: m.MandateID, Field: "issuer"}
	case digest != m.CanonicalDigest:
		return &MandateConflict{MandateID: m.MandateID, Field: "canonical_digest"}
	case keyID != m.KeyID:
		return &MandateConflict{MandateID: m.MandateID, Field: "key_id"}
	}
	return nil
}

// ConsumeMandate runs the full consume protocol inside one transaction:
// idempotent replay by tool_call_id, nonce insert, use-count ceiling
// enforcement, and the use-row insert.
func (s *SQLStore) ConsumeMandate(ctx context.Context, m *Mandate, call *ToolCall) (*Receipt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("runtime: beginning consume transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if existing, err := lookupExistingUse(ctx, tx, call.ToolCallID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil // idempotent replay, no tx.Commit needed
	}

	if m.Nonce != "" {
		_, err := tx.ExecContext(ctx, `INSERT INTO nonces (audience, issuer, nonce) VALUES ($1, $2, $3)`,
			m.Audience, m.Issuer, m.Nonce)
		if err != nil {
			return nil, consumeErr(CodeNonceReplay, "nonce %q already used for audience %q issuer %q", m.Nonce, m.Audience, m.Issuer)
		}
	}

	var useCount int
	var revokedAt sql.NullTime
	row := tx.QueryRowContext(ctx, `SELECT use_count, revoked_at FROM mandates WHERE mandate_id = $1 FOR UPDATE`, m.MandateID)
	if err := row.Scan(&useCount, &revokedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMandateNotFound
		}
		return nil, fmt.Errorf("runtime: reading mandate use_count: %w", err)
	}
	if revokedAt.Valid {
		return nil, ErrMandateRevoked
	}

	if m.SingleUse && useCount > 0 {
		return nil, consumeErr(CodeAlreadyUsed, "mandate %s is single-use and already consumed", m.MandateID)
	}
	newCount := useCount + 1
	if m.MaxUses != nil && newCount > *m.MaxUses {
		return nil, consumeErr(CodeMaxUsesExceeded, "mandate %s would exceed max_uses (%d)", m.MandateID, *m.MaxUses)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE mandates SET use_count = $1 WHERE mandate_id = $2`, newCount, m.MandateID); err != nil {
		return nil, fmt.Errorf("runtime: updating use_count: %w", err)
	}

	consumedAt := s.clock()
	useID := computeUseID(m.MandateID, call.ToolCallID, newCount)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO mandate_uses (use_id, mandate_id, tool_call_id, use_count, consumed_at, tool_name, operation_class, nonce, source_run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, useID, m.MandateID, call.ToolCallID, newCount, consumedAt, call.ToolName, int(call.OperationClass), nullableString(m.Nonce), call.SourceRunID)
	if err != nil {
		return nil, fmt.Errorf("runtime: inserting mandate use: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("runtime: committing consume transaction: %w", err)
	}

	receipt := &Receipt{
		MandateID:  m.MandateID,
		UseID:      useID,
		UseCount:   newCount,
		ConsumedAt: consumedAt,
		ToolCallID: call.ToolCallID,
		WasNew:     true,
	}

	if event, err := newMandateUsedEvent(s.eventSource, receipt, s.eventSigner); err == nil {
		s.emit(ctx, event)
	}

	return receipt, nil
}

// RevokeMandate records a revocation on an already-upserted mandate and
// emits assay.mandate.revoked.v1. A mandate with a later consume attempt is
// rejected with ErrMandateRevoked; this call itself does not touch
// use_count or mandate_uses.
func (s *SQLStore) RevokeMandate(ctx context.Context, mandateID, reason, by string) (time.Time, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("runtime: beginning revoke transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing sql.NullTime
	row := tx.QueryRowContext(ctx, `SELECT revoked_at FROM mandates WHERE mandate_id = $1 FOR UPDATE`, mandateID)
	if err := row.Scan(&existing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrMandateNotFound
		}
		return time.Time{}, fmt.Errorf("runtime: reading mandate for revoke: %w", err)
	}
	if existing.Valid {
		return time.Time{}, ErrAlreadyRevoked
	}

	revokedAt := s.clock()
	if _, err := tx.ExecContext(ctx, `
		UPDATE mandates SET revoked_at = $1, revoked_reason = $2, revoked_by = $3 WHERE mandate_id = $4
	`, revokedAt, nullableString(reason), nullableString(by), mandateID); err != nil {
		return time.Time{}, fmt.Errorf("runtime: recording revocation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return time.Time{}, fmt.Errorf("runtime: committing revoke transaction: %w", err)
	}

	if event, err := newMandateRevokedEvent(s.eventSource, mandateID, revokedAt, reason, by, s.eventSigner); err == nil {
		s.emit(ctx, event)
	}

	return revokedAt, nil
}

func lookupExistingUse(ctx context.Context, tx *sql.Tx, toolCallID string) (*Receipt, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT mandate_id, use_id, use_count, consumed_at FROM mandate_uses WHERE tool_call_id = $1
	`, toolCallID)

	var r Receipt
	r.ToolCallID = toolCallID
	if err := row.Scan(&r.MandateID, &r.UseID, &r.UseCount, &r.ConsumedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("runtime: looking up existing use: %w", err)
	}
	r.WasNew = false
	return &r, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
