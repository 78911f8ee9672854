package engine

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	logger "github.com/open-warden/warden/api/logging"
	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

// RequestEvaluator orchestrates evaluation of one request across a policy
// set: ordering, the escalation override, short-circuiting, and the aggregate
// result. Evaluation is a single synchronous pass with no shared mutable
// state, so any number of evaluations may run concurrently.
type RequestEvaluator struct {
	evaluator *PolicyEvaluator
}

func NewRequestEvaluator(evaluator *PolicyEvaluator) *RequestEvaluator {
	return &RequestEvaluator{evaluator: evaluator}
}

// EvaluateRequest returns exactly one terminal result for the request.
//
// Escalation gates win unconditionally: the first active MANUAL_APPROVAL
// policy (or, failing that, the first active APPROVAL_CHAIN policy) is
// evaluated alone and its result returned, regardless of how its priority
// compares to any other policy in the set. Otherwise active policies are
// evaluated in priority order (descending, stable) and the first DENIED or
// PENDING result ends the pass.
func (re *RequestEvaluator) EvaluateRequest(ctx context.Context, request *pdp_model.ProxyRequest, policies []*model.Policy) pdp_model.PolicyEvaluationResult {
	if len(policies) == 0 {
		return pdp_model.Approved("No policies defined")
	}

	sorted := make([]*model.Policy, len(policies))
	copy(sorted, policies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	if gate := firstActiveOfType(sorted, model.PolicyTypeManualApproval); gate != nil {
		return re.evaluateGate(ctx, request, gate)
	}
	if gate := firstActiveOfType(sorted, model.PolicyTypeApprovalChain); gate != nil {
		return re.evaluateGate(ctx, request, gate)
	}

	for _, policy := range sorted {
		if !policy.Active {
			continue
		}

		result := re.evaluator.EvaluatePolicy(ctx, request, policy)
		switch result.Status {
		case pdp_model.StatusDenied:
			result.Reason = fmt.Sprintf("%s: %s", policy.Name, result.Reason)
			logger.Info("Request denied by policy",
				zap.String("requestID", request.ID),
				zap.String("policyID", policy.ID),
				zap.String("reason", result.Reason))
			return result
		case pdp_model.StatusPending:
			return result
		}
	}

	return pdp_model.Approved("All policies passed")
}

func (re *RequestEvaluator) evaluateGate(ctx context.Context, request *pdp_model.ProxyRequest, gate *model.Policy) pdp_model.PolicyEvaluationResult {
	logger.Debug("Escalation gate pre-empts policy evaluation",
		zap.String("requestID", request.ID),
		zap.String("policyID", gate.ID),
		zap.String("policyType", string(gate.Type)))
	return re.evaluator.EvaluatePolicy(ctx, request, gate)
}

func firstActiveOfType(policies []*model.Policy, t model.PolicyType) *model.Policy {
	for _, policy := range policies {
		if policy.Active && policy.Type == t {
			return policy
		}
	}
	return nil
}
