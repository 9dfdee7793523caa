package runtime

import (
	"context"
	"fmt"
	"time"
)

// Authorizer performs the ordered validity/context/scope/class/commit-bind
// checks and, if all pass, upserts mandate metadata and consumes the call
// against the configured Store.
type Authorizer struct {
	store  Store
	config AuthzConfig
	clock  func() time.Time
}

// NewAuthorizer builds an Authorizer backed by store.
func NewAuthorizer(store Store, config AuthzConfig) *Authorizer {
	return &Authorizer{store: store, config: config, clock: time.Now}
}

// WithClock overrides the clock used for validity-window checks, for
// deterministic tests.
func (a *Authorizer) WithClock(clock func() time.Time) *Authorizer {
	a.clock = clock
	return a
}

// AuthorizeAndConsume runs the full ordered check list from spec §4.7 and,
// on success, performs the transactional consume.
func (a *Authorizer) AuthorizeAndConsume(ctx context.Context, m *Mandate, call *ToolCall) (*Receipt, error) {
	return a.authorizeAt(ctx, m, call, a.clock())
}

func (a *Authorizer) authorizeAt(ctx context.Context, m *Mandate, call *ToolCall, now time.Time) (*Receipt, error) {
	if err := checkValidityWindow(now, m, a.config.ClockSkew); err != nil {
		return nil, err
	}
	if err := checkContext(m, a.config); err != nil {
		return nil, err
	}
	if !toolMatchesScope(call.ToolName, m.ToolPatterns) {
		return nil, policyErr(CodeToolNotInScope, "tool %q does not match any scope pattern", call.ToolName)
	}
	if err := checkOperationClass(m, call); err != nil {
		return nil, err
	}
	if err := checkTransactionRef(m, call); err != nil {
		return nil, err
	}

	if err := a.store.UpsertMandate(ctx, m); err != nil {
		return nil, err
	}

	return a.store.ConsumeMandate(ctx, m, call)
}

// Revoke marks mandateID as revoked and emits assay.mandate.revoked.v1.
// Any pending or future ConsumeMandate against this mandate fails with
// ErrMandateRevoked. reason and by are optional annotations carried onto
// the CloudEvents data payload.
func (a *Authorizer) Revoke(ctx context.Context, mandateID, reason, by string) error {
	_, err := a.store.RevokeMandate(ctx, mandateID, reason, by)
	return err
}

func checkValidityWindow(now time.Time, m *Mandate, skew time.Duration) error {
	notBefore := m.NotBefore.Add(-skew)
	expiresAt := m.ExpiresAt.Add(skew)
	if now.Before(notBefore) {
		return policyErr(CodeNotYetValid, "mandate %s not valid until %s", m.MandateID, m.NotBefore)
	}
	if now.After(expiresAt) {
		return policyErr(CodeExpired, "mandate %s expired at %s", m.MandateID, m.ExpiresAt)
	}
	return nil
}

func checkContext(m *Mandate, cfg AuthzConfig) error {
	if cfg.ExpectedAudience != "" && m.Audience != cfg.ExpectedAudience {
		return policyErr(CodeAudienceMismatch, "mandate audience %q does not match expected %q", m.Audience, cfg.ExpectedAudience)
	}
	if len(cfg.TrustedIssuers) > 0 {
		trusted := false
		for _, iss := range cfg.TrustedIssuers {
			if iss == m.Issuer {
				trusted = true
				break
			}
		}
		if !trusted {
			return policyErr(CodeIssuerNotTrusted, "issuer %q is not trusted", m.Issuer)
		}
	}
	return nil
}

func checkOperationClass(m *Mandate, call *ToolCall) error {
	if call.OperationClass > m.MandateKind.MaxOperationClass() {
		return policyErr(CodeKindMismatch, "mandate kind %q cannot authorize operation class %d", m.MandateKind, call.OperationClass)
	}
	return nil
}

func checkTransactionRef(m *Mandate, call *ToolCall) error {
	if call.OperationClass != OperationCommit || m.TransactionRef == "" {
		return nil
	}
	if call.TransactionObject == nil {
		return policyErr(CodeMissingTransactionObject, "commit-class call missing transaction_object")
	}
	computed, err := computeTransactionRef(call.TransactionObject)
	if err != nil {
		return fmt.Errorf("runtime: computing transaction ref: %w", err)
	}
	if computed != m.TransactionRef {
		return policyErr(CodeTransactionRefMismatch, "transaction_ref mismatch: declared %q, recomputed %q", m.TransactionRef, computed)
	}
	return nil
}
