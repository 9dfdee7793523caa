package runtime

import "fmt"

// PolicyError is the typed result of a validity/context/scope/class check
// failing before a mandate is ever consumed.
type PolicyError struct {
	Code    string
	Message string
}

func (e *PolicyError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func policyErr(code, format string, args ...interface{}) *PolicyError {
	return &PolicyError{Code: code, Message: fmt.Sprintf(format, args...)}
}

const (
	CodeExpired                 = "Expired"
	CodeNotYetValid             = "NotYetValid"
	CodeToolNotInScope          = "ToolNotInScope"
	CodeKindMismatch            = "KindMismatch"
	CodeAudienceMismatch        = "AudienceMismatch"
	CodeIssuerNotTrusted        = "IssuerNotTrusted"
	CodeMissingTransactionObject = "MissingTransactionObject"
	CodeTransactionRefMismatch  = "TransactionRefMismatch"
)

// ConsumeError is the typed result of a failure during the transactional
// consume step (after policy checks pass).
type ConsumeError struct {
	Code    string
	Message string
}

func (e *ConsumeError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func consumeErr(code, format string, args ...interface{}) *ConsumeError {
	return &ConsumeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

const (
	CodeNonceReplay     = "NonceReplay"
	CodeAlreadyUsed     = "AlreadyUsed"
	CodeMaxUsesExceeded = "MaxUsesExceeded"
)

// MandateConflict names the specific field that disagreed between an
// upsert attempt and the already-stored mandate row.
type MandateConflict struct {
	MandateID string
	Field     string
}

func (e *MandateConflict) Error() string {
	return fmt.Sprintf("MandateConflict: mandate %s field %q conflicts with stored value", e.MandateID, e.Field)
}

// InvalidConstraints is returned when single_use and max_uses disagree
// (single_use requires max_uses to be absent or exactly 1).
type InvalidConstraints struct {
	Reason string
}

func (e *InvalidConstraints) Error() string {
	return fmt.Sprintf("InvalidConstraints: %s", e.Reason)
}
