package runtime

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSQLStore_UpsertMandate_FirstInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer func() { _ = db.Close() }()

	store := NewSQLStore(db)
	m := baseMandate()

	mock.ExpectExec("INSERT INTO mandates").
		WithArgs(m.MandateID, string(m.MandateKind), m.Audience, m.Issuer, m.ExpiresAt, m.SingleUse, nil, m.CanonicalDigest, m.KeyID).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rows := sqlmock.NewRows([]string{"mandate_kind", "audience", "issuer", "canonical_digest", "key_id"}).
		AddRow(string(m.MandateKind), m.Audience, m.Issuer, m.CanonicalDigest, m.KeyID)
	mock.ExpectQuery("SELECT mandate_kind, audience, issuer, canonical_digest, key_id").
		WithArgs(m.MandateID).
		WillReturnRows(rows)

	if err := store.UpsertMandate(context.Background(), m); err != nil {
		t.Fatalf("UpsertMandate failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQLStore_UpsertMandate_ConflictOnKeyID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer func() { _ = db.Close() }()

	store := NewSQLStore(db)
	m := baseMandate()

	mock.ExpectExec("INSERT INTO mandates").WillReturnResult(sqlmock.NewResult(1, 0))

	rows := sqlmock.NewRows([]string{"mandate_kind", "audience", "issuer", "canonical_digest", "key_id"}).
		AddRow(string(m.MandateKind), m.Audience, m.Issuer, m.CanonicalDigest, "a-different-key")
	mock.ExpectQuery("SELECT mandate_kind, audience, issuer, canonical_digest, key_id").
		WillReturnRows(rows)

	err = store.UpsertMandate(context.Background(), m)
	conflict, ok := err.(*MandateConflict)
	if !ok {
		t.Fatalf("expected *MandateConflict, got %v", err)
	}
	if conflict.Field != "key_id" {
		t.Errorf("expected conflict on key_id, got %s", conflict.Field)
	}
}

func TestSQLStore_UpsertMandate_InvalidConstraints(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewSQLStore(db)
	m := baseMandate()
	m.SingleUse = true
	two := 2
	m.MaxUses = &two

	err = store.UpsertMandate(context.Background(), m)
	if _, ok := err.(*InvalidConstraints); !ok {
		t.Fatalf("expected *InvalidConstraints, got %v", err)
	}
}

func TestSQLStore_ConsumeMandate_IdempotentReplay(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewSQLStore(db)
	m := baseMandate()
	call := &ToolCall{ToolCallID: "call-1", ToolName: "fs.read", SourceRunID: "run-1"}

	consumedAt := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT mandate_id, use_id, use_count, consumed_at FROM mandate_uses").
		WithArgs(call.ToolCallID).
		WillReturnRows(sqlmock.NewRows([]string{"mandate_id", "use_id", "use_count", "consumed_at"}).
			AddRow(m.MandateID, "sha256:existinguse", 1, consumedAt))

	receipt, err := store.ConsumeMandate(context.Background(), m, call)
	if err != nil {
		t.Fatalf("ConsumeMandate failed: %v", err)
	}
	if receipt.WasNew {
		t.Error("expected WasNew=false for idempotent replay")
	}
	if receipt.UseID != "sha256:existinguse" {
		t.Errorf("expected existing use_id to be returned, got %s", receipt.UseID)
	}
}

func TestSQLStore_ConsumeMandate_MandateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewSQLStore(db)
	m := baseMandate()
	call := &ToolCall{ToolCallID: "call-1", ToolName: "fs.read", SourceRunID: "run-1"}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT mandate_id, use_id, use_count, consumed_at FROM mandate_uses").
		WithArgs(call.ToolCallID).
		WillReturnRows(sqlmock.NewRows([]string{"mandate_id", "use_id", "use_count", "consumed_at"}))
	mock.ExpectQuery("SELECT use_count, revoked_at FROM mandates").
		WithArgs(m.MandateID).
		WillReturnError(sql.ErrNoRows)

	_, err = store.ConsumeMandate(context.Background(), m, call)
	if err != ErrMandateNotFound {
		t.Fatalf("expected ErrMandateNotFound, got %v", err)
	}
}

func TestSQLStore_ConsumeMandate_Revoked(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewSQLStore(db)
	m := baseMandate()
	call := &ToolCall{ToolCallID: "call-1", ToolName: "fs.read", SourceRunID: "run-1"}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT mandate_id, use_id, use_count, consumed_at FROM mandate_uses").
		WithArgs(call.ToolCallID).
		WillReturnRows(sqlmock.NewRows([]string{"mandate_id", "use_id", "use_count", "consumed_at"}))
	mock.ExpectQuery("SELECT use_count, revoked_at FROM mandates").
		WithArgs(m.MandateID).
		WillReturnRows(sqlmock.NewRows([]string{"use_count", "revoked_at"}).
			AddRow(0, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))

	_, err = store.ConsumeMandate(context.Background(), m, call)
	if err != ErrMandateRevoked {
		t.Fatalf("expected ErrMandateRevoked, got %v", err)
	}
}

func TestSQLStore_ConsumeMandate_EmitsLifecycleEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = db.Close() }()

	recorder := &recordingSink{}
	store := NewSQLStore(db).WithEventSink("assay-runtime-test", recorder)
	m := baseMandate()
	call := &ToolCall{ToolCallID: "call-1", ToolName: "fs.read", SourceRunID: "run-1"}

	consumedAt := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return consumedAt })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT mandate_id, use_id, use_count, consumed_at FROM mandate_uses").
		WithArgs(call.ToolCallID).
		WillReturnRows(sqlmock.NewRows([]string{"mandate_id", "use_id", "use_count", "consumed_at"}))
	mock.ExpectQuery("SELECT use_count, revoked_at FROM mandates").
		WithArgs(m.MandateID).
		WillReturnRows(sqlmock.NewRows([]string{"use_count", "revoked_at"}).AddRow(0, nil))
	mock.ExpectExec("UPDATE mandates SET use_count").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO mandate_uses").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	receipt, err := store.ConsumeMandate(context.Background(), m, call)
	if err != nil {
		t.Fatalf("ConsumeMandate failed: %v", err)
	}

	if len(recorder.events) != 1 {
		t.Fatalf("expected 1 emitted event, got %d", len(recorder.events))
	}
	got := recorder.events[0]
	if got.Type != EventTypeMandateUsed {
		t.Errorf("expected type %s, got %s", EventTypeMandateUsed, got.Type)
	}
	if got.ID != receipt.UseID {
		t.Errorf("expected CloudEvents id to equal use_id %s, got %s", receipt.UseID, got.ID)
	}
	if got.Source != "assay-runtime-test" {
		t.Errorf("unexpected source: %s", got.Source)
	}
}

func TestSQLStore_RevokeMandate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = db.Close() }()

	recorder := &recordingSink{}
	store := NewSQLStore(db).WithEventSink("assay-runtime-test", recorder)
	revokedAt := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return revokedAt })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT revoked_at FROM mandates").
		WithArgs("sha256:aaaa").
		WillReturnRows(sqlmock.NewRows([]string{"revoked_at"}).AddRow(nil))
	mock.ExpectExec("UPDATE mandates SET revoked_at").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := store.RevokeMandate(context.Background(), "sha256:aaaa", "compromised", "security-team")
	if err != nil {
		t.Fatalf("RevokeMandate failed: %v", err)
	}
	if !got.Equal(revokedAt) {
		t.Errorf("expected revokedAt %v, got %v", revokedAt, got)
	}
	if len(recorder.events) != 1 || recorder.events[0].Type != EventTypeMandateRevoked {
		t.Fatalf("expected 1 mandate.revoked event, got %+v", recorder.events)
	}
}

func TestSQLStore_RevokeMandate_AlreadyRevoked(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewSQLStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT revoked_at FROM mandates").
		WithArgs("sha256:aaaa").
		WillReturnRows(sqlmock.NewRows([]string{"revoked_at"}).AddRow(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	_, err = store.RevokeMandate(context.Background(), "sha256:aaaa", "", "")
	if err != ErrAlreadyRevoked {
		t.Fatalf("expected ErrAlreadyRevoked, got %v", err)
	}
}

type recordingSink struct {
	events []LifecycleEvent
}

func (r *recordingSink) Emit(ctx context.Context, event LifecycleEvent) error {
	r.events = append(r.events, event)
	return nil
}
