package runtime

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeStore is an in-memory Store for authorizer-level tests, independent
// of the SQL backend's transaction mechanics (covered separately in
// store_test.go with sqlmock).
type fakeStore struct {
	mandates map[string]*Mandate
	uses     map[string]*Receipt // keyed by tool_call_id
	nonces   map[string]bool
	revoked  map[string]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		mandates: map[string]*Mandate{},
		uses:     map[string]*Receipt{},
		nonces:   map[string]bool{},
		revoked:  map[string]time.Time{},
	}
}

func (f *fakeStore) RevokeMandate(ctx context.Context, mandateID, reason, by string) (time.Time, error) {
	if _, ok := f.mandates[mandateID]; !ok {
		return time.Time{}, ErrMandateNotFound
	}
	if _, ok := f.revoked[mandateID]; ok {
		return time.Time{}, ErrAlreadyRevoked
	}
	now := time.Now()
	f.revoked[mandateID] = now
	return now, nil
}

func (f *fakeStore) UpsertMandate(ctx context.Context, m *Mandate) error {
	if m.SingleUse && m.MaxUses != nil && *m.MaxUses != 1 {
		return &InvalidConstraints{Reason: "single_use requires max_uses absent or 1"}
	}
	existing, ok := f.mandates[m.MandateID]
	if !ok {
		cp := *m
		f.mandates[m.MandateID] = &cp
		return nil
	}
	switch {
	case existing.MandateKind != m.MandateKind:
		return &MandateConflict{MandateID: m.MandateID, Field: "mandate_kind"}
	case existing.Audience != m.Audience:
		return &MandateConflict{MandateID: m.MandateID, Field: "audience"}
	case existing.Issuer != m.Issuer:
		return &MandateConflict{MandateID: m.MandateID, Field: "issuer"}
	case existing.CanonicalDigest != m.CanonicalDigest:
		return &MandateConflict{MandateID: m.MandateID, Field: "canonical_digest"}
	case existing.KeyID != m.KeyID:
		return &MandateConflict{MandateID: m.MandateID, Field: "key_id"}
	}
	return nil
}

func (f *fakeStore) ConsumeMandate(ctx context.Context, m *Mandate, call *ToolCall) (*Receipt, error) {
	if r, ok := f.uses[call.ToolCallID]; ok {
		replay := *r
		replay.WasNew = false
		return &replay, nil
	}

	stored := f.mandates[m.MandateID]
	if stored == nil {
		return nil, ErrMandateNotFound
	}
	if _, ok := f.revoked[m.MandateID]; ok {
		return nil, ErrMandateRevoked
	}

	if m.Nonce != "" {
		key := m.Audience + "|" + m.Issuer + "|" + m.Nonce
		if f.nonces[key] {
			return nil, consumeErr(CodeNonceReplay, "nonce replay")
		}
		f.nonces[key] = true
	}

	useCount := 0
	for _, r := range f.uses {
		if r.MandateID == m.MandateID {
			useCount++
		}
	}
	if stored.SingleUse && useCount > 0 {
		return nil, consumeErr(CodeAlreadyUsed, "already used")
	}
	newCount := useCount + 1
	if stored.MaxUses != nil && newCount > *stored.MaxUses {
		return nil, consumeErr(CodeMaxUsesExceeded, "max uses exceeded")
	}

	receipt := &Receipt{
		MandateID:  m.MandateID,
		UseID:      computeUseID(m.MandateID, call.ToolCallID, newCount),
		UseCount:   newCount,
		ConsumedAt: time.Now(),
		ToolCallID: call.ToolCallID,
		WasNew:     true,
	}
	f.uses[call.ToolCallID] = receipt
	return receipt, nil
}

func baseMandate() *Mandate {
	return &Mandate{
		MandateID:       "sha256:aaaa",
		MandateKind:     MandateIntent,
		ToolPatterns:    []string{"fs.*"},
		NotBefore:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiresAt:       time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		Audience:        "agent-1",
		Issuer:          "trusted-issuer",
		CanonicalDigest: "sha256:deadbeef",
		KeyID:           "key-1",
	}
}

func TestAuthorizeAndConsume_Success(t *testing.T) {
	store := newFakeStore()
	auth := NewAuthorizer(store, AuthzConfig{ClockSkew: 30 * time.Second, ExpectedAudience: "agent-1", TrustedIssuers: []string{"trusted-issuer"}})
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	auth.WithClock(func() time.Time { return now })

	m := baseMandate()
	call := &ToolCall{ToolCallID: "call-1", ToolName: "fs.read", OperationClass: OperationRead, SourceRunID: "run-1"}

	receipt, err := auth.AuthorizeAndConsume(context.Background(), m, call)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !receipt.WasNew || receipt.UseCount != 1 {
		t.Errorf("unexpected receipt: %+v", receipt)
	}
}

func TestAuthorizeAndConsume_Expired(t *testing.T) {
	store := newFakeStore()
	auth := NewAuthorizer(store, DefaultAuthzConfig())
	now := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	auth.WithClock(func() time.Time { return now })

	m := baseMandate()
	call := &ToolCall{ToolCallID: "call-1", ToolName: "fs.read", OperationClass: OperationRead}

	_, err := auth.AuthorizeAndConsume(context.Background(), m, call)
	var perr *PolicyError
	if !errors.As(err, &perr) || perr.Code != CodeExpired {
		t.Fatalf("expected Expired, got %v", err)
	}
}

func TestAuthorizeAndConsume_ToolNotInScope(t *testing.T) {
	store := newFakeStore()
	auth := NewAuthorizer(store, AuthzConfig{})
	m := baseMandate()
	call := &ToolCall{ToolCallID: "call-1", ToolName: "net.connect", OperationClass: OperationRead}

	_, err := auth.authorizeAt(context.Background(), m, call, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	var perr *PolicyError
	if !errors.As(err, &perr) || perr.Code != CodeToolNotInScope {
		t.Fatalf("expected ToolNotInScope, got %v", err)
	}
}

func TestAuthorizeAndConsume_KindMismatch(t *testing.T) {
	store := newFakeStore()
	auth := NewAuthorizer(store, AuthzConfig{})
	m := baseMandate() // intent kind, caps at write
	call := &ToolCall{ToolCallID: "call-1", ToolName: "fs.write", OperationClass: OperationCommit}

	_, err := auth.authorizeAt(context.Background(), m, call, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	var perr *PolicyError
	if !errors.As(err, &perr) || perr.Code != CodeKindMismatch {
		t.Fatalf("expected KindMismatch, got %v", err)
	}
}

func TestAuthorizeAndConsume_TransactionRefBind(t *testing.T) {
	store := newFakeStore()
	auth := NewAuthorizer(store, AuthzConfig{})
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	m := baseMandate()
	m.MandateKind = MandateTransaction
	m.ToolPatterns = []string{"payments.*"}
	ref, err := computeTransactionRef(map[string]interface{}{"amount": 100, "to": "X"})
	if err != nil {
		t.Fatalf("computeTransactionRef failed: %v", err)
	}
	m.TransactionRef = ref

	mismatchCall := &ToolCall{
		ToolCallID: "call-1", ToolName: "payments.transfer", OperationClass: OperationCommit,
		TransactionObject: map[string]interface{}{"amount": 100, "to": "Y"},
	}
	_, err = auth.authorizeAt(context.Background(), m, mismatchCall, now)
	var perr *PolicyError
	if !errors.As(err, &perr) || perr.Code != CodeTransactionRefMismatch {
		t.Fatalf("expected TransactionRefMismatch, got %v", err)
	}

	matchCall := &ToolCall{
		ToolCallID: "call-2", ToolName: "payments.transfer", OperationClass: OperationCommit,
		TransactionObject: map[string]interface{}{"amount": 100, "to": "X"},
	}
	receipt, err := auth.authorizeAt(context.Background(), m, matchCall, now)
	if err != nil {
		t.Fatalf("expected success with matching transaction_ref, got %v", err)
	}
	if !receipt.WasNew {
		t.Error("expected a new receipt")
	}
}

func TestAuthorizeAndConsume_ReplayIsIdempotent(t *testing.T) {
	store := newFakeStore()
	auth := NewAuthorizer(store, AuthzConfig{})
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	m := baseMandate()
	call := &ToolCall{ToolCallID: "call-1", ToolName: "fs.read", OperationClass: OperationRead}

	first, err := auth.authorizeAt(context.Background(), m, call, now)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	second, err := auth.authorizeAt(context.Background(), m, call, now)
	if err != nil {
		t.Fatalf("replayed call failed: %v", err)
	}
	if second.WasNew {
		t.Error("expected replay to report was_new=false")
	}
	if first.UseID != second.UseID {
		t.Error("expected replay to return the same use_id")
	}
}

func TestAuthorizeAndConsume_SingleUseEnforced(t *testing.T) {
	store := newFakeStore()
	auth := NewAuthorizer(store, AuthzConfig{})
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	m := baseMandate()
	m.SingleUse = true
	one := 1
	m.MaxUses = &one

	_, err := auth.authorizeAt(context.Background(), m, &ToolCall{ToolCallID: "call-1", ToolName: "fs.read"}, now)
	if err != nil {
		t.Fatalf("first use failed: %v", err)
	}
	_, err = auth.authorizeAt(context.Background(), m, &ToolCall{ToolCallID: "call-2", ToolName: "fs.read"}, now)
	var cerr *ConsumeError
	if !errors.As(err, &cerr) || cerr.Code != CodeAlreadyUsed {
		t.Fatalf("expected AlreadyUsed on second distinct call, got %v", err)
	}
}

func TestAuthorizeAndConsume_MandateConflict(t *testing.T) {
	store := newFakeStore()
	auth := NewAuthorizer(store, AuthzConfig{})
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	m := baseMandate()
	_, err := auth.authorizeAt(context.Background(), m, &ToolCall{ToolCallID: "call-1", ToolName: "fs.read"}, now)
	if err != nil {
		t.Fatalf("first consume failed: %v", err)
	}

	changed := baseMandate()
	changed.KeyID = "key-2"
	_, err = auth.authorizeAt(context.Background(), changed, &ToolCall{ToolCallID: "call-2", ToolName: "fs.read"}, now)
	var conflict *MandateConflict
	if !errors.As(err, &conflict) || conflict.Field != "key_id" {
		t.Fatalf("expected MandateConflict on key_id, got %v", err)
	}
}
