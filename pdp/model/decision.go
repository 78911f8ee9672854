package model

// EvaluationStatus is the terminal outcome of evaluating a request.
type EvaluationStatus string

const (
	StatusApproved EvaluationStatus = "APPROVED"
	StatusDenied   EvaluationStatus = "DENIED"
	StatusPending  EvaluationStatus = "PENDING"
)

// PolicyEvaluationResult is the sole externally observable output of one
// evaluation pass. Exactly one result is produced per request.
type PolicyEvaluationResult struct {
	Status           EvaluationStatus `json:"status"`
	PolicyID         string           `json:"policy_id,omitempty"`
	Reason           string           `json:"reason,omitempty"`
	RequiresApproval bool             `json:"requires_approval,omitempty"`
}

// Approved returns an APPROVED result with the given reason.
func Approved(reason string) PolicyEvaluationResult {
	return PolicyEvaluationResult{Status: StatusApproved, Reason: reason}
}

// Denied returns a DENIED result with the given reason.
func Denied(reason string) PolicyEvaluationResult {
	return PolicyEvaluationResult{Status: StatusDenied, Reason: reason}
}

// Pending returns a PENDING result that requires human approval.
func Pending(reason string) PolicyEvaluationResult {
	return PolicyEvaluationResult{Status: StatusPending, Reason: reason, RequiresApproval: true}
}
