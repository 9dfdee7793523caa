package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/assayhq/assay/core/pkg/artifacts"
	"github.com/assayhq/assay/core/pkg/canonicalize"
	"github.com/assayhq/assay/core/pkg/contracts"
	"github.com/assayhq/assay/core/pkg/crypto"
	"github.com/assayhq/assay/core/pkg/interfaces"
	"github.com/assayhq/assay/core/pkg/manifest"
	"github.com/assayhq/assay/core/pkg/metering"
	"github.com/assayhq/assay/core/pkg/receipts/policies"
)

// Executor runs an effect if and only if it has a valid, notarized decision AND an execution intent.
type Executor interface {
	Execute(ctx context.Context, effect *contracts.Effect, decision *contracts.DecisionRecord, intent *contracts.AuthorizedExecutionIntent) (*contracts.Receipt, *interfaces.Artifact, error)
}

// OutputSchemaRegistry provides tool output schemas for drift detection.
type OutputSchemaRegistry interface {
	LookupOutput(toolName string) *manifest.ToolOutputSchema
}

// SafeExecutor enforces strict gating and authorized execution.
// Per Section 1.4: Receipt policy enforcement is fail-closed.
type SafeExecutor struct {
	verifier             crypto.Verifier
	signer               crypto.Signer
	driver               ToolDriver
	receiptStore         ReceiptStore
	artifactStore        artifacts.Store
	outboxStore          OutboxStore
	currentPhenotypeHash string
	AuditLog             crypto.AuditLog
	policyEnforcer       *policies.PolicyEnforcer
	meter                metering.Meter
	outputSchemaRegistry OutputSchemaRegistry
}

// NewSafeExecutor creates a new SafeExecutor.
func NewSafeExecutor(verifier crypto.Verifier, signer crypto.Signer, driver ToolDriver, store ReceiptStore, artStore artifacts.Store, outbox OutboxStore, phenotypeHash string, auditLog crypto.AuditLog, meter metering.Meter, outputRegistry OutputSchemaRegistry) *SafeExecutor {
	return &SafeExecutor{
		verifier:             verifier,
		signer:               signer,
		driver:               driver,
		receiptStore:         store,
		artifactStore:        artStore,
		outboxStore:          outbox,
		currentPhenotypeHash: phenotypeHash,
		AuditLog:             auditLog,
		policyEnforcer:       policies.NewPolicyEnforcer(true), // Strict mode enabled
		meter:                meter,
		outputSchemaRegistry: outputRegistry,
	}
}

// Execute returns the Receipt (proof) and the Tool Result (Artifact), or error.
func (e *SafeExecutor) Execute(ctx context.Context, effect *contracts.Effect, decision *contracts.DecisionRecord, intent *contracts.AuthorizedExecutionIntent) (*contracts.Receipt, *interfaces.Artifact, error) {
	// 0. Pre-flight Checks
	if decision == nil {
		return nil, nil, errors.New("execution blocked: missing decision")
	}

	// 1. Idempotency Check
	if receipt, ok := e.checkIdempotency(ctx, decision.ID); ok {
		// Recover artifact if possible, or return a pointer to the receipt
		// For now, return a synthetic artifact indicating execution already happened
		artifact := &interfaces.Artifact{
			SchemaID:    "system/execution-status",
			ContentType: "application/json",
			Digest:      receipt.OutputHash,
			Preview:     fmt.Sprintf("Already executed. Receipt: %s", receipt.ReceiptID),
		}
		return receipt, artifact, nil
	}

	// 1. Gating & Verification
	if err := e.validateGating(decision, intent); err != nil {
		return nil, nil, err
	}

	// 2. Snapshot Verification
	blobHash, err := e.verifySnapshot(ctx, decision)
	if err != nil {
		return nil, nil, err
	}

	// 3. Execution Prep
	toolName, ok := effect.Params["tool_name"].(string)
	if !ok {
		// Fallback: Use intent AllowedTool
		if intent.AllowedTool != "" {
			toolName = intent.AllowedTool
		} else {
			return nil, nil, errors.New("tool_name missing in params")
		}
	}
	if intent.AllowedTool != "" && intent.AllowedTool != toolName {
		return nil, nil, fmt.Errorf("intent violation: allowed_tool '%s' does not match requested '%s'", intent.AllowedTool, toolName)
	}

	// 4. Tool Verification (Phase 3 Enforced)
	// Check against dynamic policy enforcer
	if !e.policyEnforcer.IsToolAllowed(toolName) {
		return nil, nil, fmt.Errorf("policy violation: tool '%s' is prohibited by active regulation", toolName)
	}

	// 5. Outbox Scheduling
	if e.outboxStore != nil {
		if err := e.outboxStore.Schedule(ctx, effect, decision); err != nil {
			return nil, nil, fmt.Errorf("failed to schedule effect in outbox: %w", err)
		}
	}

	// 5. Dispatch
	// Used to be e.mcpClient.Call(toolName, effect.Params)
	result, err := e.driver.Execute(ctx, toolName, effect.Params)
	if err != nil {
		return nil, nil, err
	}

	// 5.5 Phase 3: Validate connector output against pinned schema (fail-closed on drift)
	if e.outputSchemaRegistry != nil {
		if outSchema := e.outputSchemaRegistry.LookupOutput(toolName); outSchema != nil {
			outResult, outErr := manifest.ValidateAndCanonicalizeToolOutput(outSchema, result)
			if outErr != nil {
				return nil, nil, fmt.Errorf("ERR_CONNECTOR_CONTRACT_DRIFT: %w", outErr)
			}
			effect.OutputHash = outResult.OutputHash
		}
	}

	// 6. Canonicalize Output (ArtifactProtocol)
	// Detect probable schema ID (simple heuristic for now)
	schemaID := "application/json"
	if _, ok := result.(string); ok {
		schemaID = "text/plain"
	}

	artifact, err := canonicalize.Canonicalize(schemaID, result)
	if err != nil {
		// If canonicalization fails, we treat it as an execution error (fail-safe)
		// Or we could wrap it in an error artifact. For high-assurance, fail.
		return nil, nil, fmt.Errorf("output canonicalization failed: %w", err)
	}

	// 7. Store Output in CAS
	if e.artifactStore != nil {
		// We store the canonical bytes. The Store will return the hash.
		// We trust Store's hash matches artifact.Digest (both are SHA-256).
		storedHash, err := e.artifactStore.Store(ctx, artifact.CanonicalBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to persist output artifact: %w", err)
		}
		// Verify consistency (paranoid check)
		if storedHash != artifact.Digest {
			return nil, nil, fmt.Errorf("store integrity violation: calculated %s != stored %s", artifact.Digest, storedHash)
		}
	}
	// If no artifactStore, artifact.Digest is still valid (in-memory only e.g. tests)

	// 8. Persistence, Metering & Audit
	// Fail-closed: if receipt signing fails, execution is considered failed.
	receipt, err := e.createReceipt(ctx, decision, effect, blobHash, artifact.Digest)
	if err != nil {
		return nil, nil, fmt.Errorf("receipt creation failed: %w", err)
	}
	e.finalizeExecution(ctx, decision, toolName)

	// Metering
	if e.meter != nil {
		tenantID := "system"
		if decision.InputContext != nil {
			if t, ok := decision.InputContext["tenant_id"].(string); ok {
				tenantID = t
			}
		}
		if err := e.meter.Record(ctx, metering.Event{
			TenantID:  tenantID,
			EventType: metering.EventExecution,
			Quantity:  1,
			Timestamp: time.Now(),
			Metadata: map[string]any{
				"tool":        toolName,
				"decision_id": decision.ID,
			},
		}); err != nil {
			// Metering errors are non-fatal but logged to audit trail
			if e.AuditLog != nil {
				_ = e.AuditLog.Append("executor", "metering_error", map[string]interface{}{
					"decision_id": decision.ID,
					"error":       err.Error(),
				})
			}
		}
	}

	return receipt, artifact, nil
}

func (e *SafeExecutor) checkIdempotency(ctx context.Context, decisionID string) (*contracts.Receipt, bool) {
	if e.receiptStore != nil {
		if receipt, err := e.receiptStore.Get(ctx, decisionID); err == nil && receipt != nil {
			return receipt, true
		}
	}
	return nil, false
}

func (e *SafeExecutor) validateGating(decision *contracts.DecisionRecord, intent *contracts.AuthorizedExecutionIntent) error {
	if decision == nil {
		return errors.New("execution blocked: missing decision")
	}
	if intent == nil {
		return errors.New("execution blocked: missing execution intent")
	}
	if intent.DecisionID != decision.ID {
		return fmt.Errorf("intent mismatch: intent.decision_id %s != decision.id %s", intent.DecisionID, decision.ID)
	}

	// 1. Verify Decision Signature (Provenance)
	if valid, err := e.verifier.VerifyDecision(decision); err != nil || !valid {
		return fmt.Errorf("execution blocked: invalid decision signature: %w", err)
	}

	// 2. Verify Intent Signature (Authorization)
	if valid, err := e.verifier.VerifyIntent(intent); err != nil || !valid {
		return fmt.Errorf("execution blocked: invalid intent signature: %w", err)
	}

	// 3. Verify Verdict
	if decision.Verdict != "PASS" {
		return fmt.Errorf("execution blocked: decision verdict is %s (reason: %s)", decision.Verdict, decision.Reason)
	}

	// 4. Expiration Check
	if time.Now().After(intent.ExpiresAt) {
		return fmt.Errorf("execution blocked: intent expired at %s", intent.ExpiresAt)
	}

	return nil
}

func (e *SafeExecutor) verifySnapshot(ctx context.Context, decision *contracts.DecisionRecord) (string, error) {
	var blobHash string
	if decision.Snapshot != "" && e.artifactStore != nil {
		h, err := e.artifactStore.Store(ctx, []byte(decision.Snapshot))
		if err != nil {
			return "", fmt.Errorf("failed to store snapshot artifact: %w", err)
		}
		blobHash = h

		if blobHash != decision.PhenotypeHash {
			return "", fmt.Errorf("phenotype mismatch: snapshot hash %s != decision hash %s", blobHash, decision.PhenotypeHash)
		}
	}
	if e.currentPhenotypeHash != "" && decision.PhenotypeHash != "" {
		if decision.PhenotypeHash != e.currentPhenotypeHash {
			return "", fmt.Errorf("execution blocked: phenotype mismatch (decision=%s, current=%s)", decision.PhenotypeHash, e.currentPhenotypeHash)
		}
	}
	return blobHash, nil
}

func (e *SafeExecutor) createReceipt(ctx context.Context, decision *contracts.DecisionRecord, effect *contracts.Effect, blobHash string, outputHash string) (*contracts.Receipt, error) {
	// ProofGraph DAG: query previous receipt to build causal chain
	prevHash := "GENESIS"
	lamportClock := uint64(1)

	if e.receiptStore != nil {
		sessionID := ""
		if decision.InputContext != nil {
			if s, ok := decision.InputContext["session_id"].(string); ok {
				sessionID = s
			}
		}
		if sessionID != "" {
			if prev, err := e.receiptStore.GetLastForSession(ctx, sessionID); err == nil && prev != nil {
				prevHash = prev.Signature // Causal link: hash of previous receipt's cryptographic signature
				lamportClock = prev.LamportClock + 1
			}
		}
	}

	receipt := &contracts.Receipt{
		ReceiptID:    "rcpt-" + decision.ID,
		DecisionID:   decision.ID,
		EffectID:     effect.EffectID,
		Status:       "SUCCESS",
		BlobHash:     blobHash,
		OutputHash:   outputHash,
		ArgsHash:     effect.ArgsHash, // Phase 2: PEP boundary hash bound into signed receipt
		Timestamp:    time.Now(),
		PrevHash:     prevHash,
		LamportClock: lamportClock,
	}
	// Sign Receipt â€” Fail-Closed: unsigned receipts are never emitted.
	// Per Sovereign Runtime specification, every receipt MUST be signed.
	// The signature now covers PrevHash + LamportClock via CanonicalizeReceipt.
	if e.signer != nil {
		if err := e.signer.SignReceipt(receipt); err != nil {
			return nil, fmt.Errorf("fail-closed: receipt signing failed: %w", err)
		}
	}
	if e.receiptStore != nil {
		_ = e.receiptStore.Store(ctx, receipt)
	}
	return receipt, nil
}

func (e *SafeExecutor) finalizeExecution(ctx context.Context, decision *contracts.DecisionRecord, toolName string) {
	if e.outboxStore != nil {
		_ = e.outboxStore.MarkDone(ctx, decision.ID)
	}
	if e.AuditLog != nil {
		_ = e.AuditLog.Append("executor", "execute_effect", map[string]interface{}{
			"decision_id": decision.ID,
			"tool":        toolName,
			"status":      "SUCCESS",
		})
	}
}

// Match interfaces for compiler output
type CompilerPolicy interface {
	GetProhibitedTools() []string
}

// ApplyCompilerPolicy updates the internal policy enforcer with constraints mainly from the Compiler.
// This allows dynamic regulation to be injected into the SafeExecutor.
func (e *SafeExecutor) ApplyCompilerPolicy(policy CompilerPolicy) {
	if policy != nil {
		e.policyEnforcer.SetProhibitedTools(policy.GetProhibitedTools())
	}
}
