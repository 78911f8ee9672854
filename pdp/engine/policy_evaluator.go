package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/open-warden/warden/api/logging"
	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

// UsageMetricsProvider supplies aggregated usage numbers for a credential
// over a trailing time window, e.g. request counts or data volume.
type UsageMetricsProvider interface {
	GetUsageMetrics(ctx context.Context, credentialID, metricType string, timeWindowSeconds int) (float64, error)
}

// PolicyCounter is an external atomic counter keyed by policy ID, rolled over
// per reset period. COUNT_BASED policies consult it; the engine itself holds
// no counter state.
type PolicyCounter interface {
	Increment(ctx context.Context, policyID string, resetPeriod string) (int64, error)
}

// PolicyEvaluator evaluates exactly one policy against one request,
// dispatching by policy type. It is stateless apart from its collaborators
// and safe for concurrent use.
type PolicyEvaluator struct {
	metrics UsageMetricsProvider
	counter PolicyCounter
}

func NewPolicyEvaluator(metrics UsageMetricsProvider, counter PolicyCounter) *PolicyEvaluator {
	return &PolicyEvaluator{metrics: metrics, counter: counter}
}

// EvaluatePolicy dispatches on the policy type. A panic inside a type
// evaluator is converted to DENIED (fail closed) with the panic message as
// the reason; an unrecognized type is also DENIED.
func (pe *PolicyEvaluator) EvaluatePolicy(ctx context.Context, request *pdp_model.ProxyRequest, policy *model.Policy) (result pdp_model.PolicyEvaluationResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Policy evaluation panicked",
				zap.String("policyID", policy.ID),
				zap.String("policyType", string(policy.Type)),
				zap.Any("panic", r))
			result = pdp_model.Denied(fmt.Sprintf("%v", r))
			result.PolicyID = policy.ID
		}
	}()

	switch policy.Type {
	case model.PolicyTypeAllowList:
		result = pe.evaluateAllowList(request, policy)
	case model.PolicyTypeDenyList:
		result = pe.evaluateDenyList(request, policy)
	case model.PolicyTypeTimeBased:
		result = pe.evaluateTimeBased(request, policy)
	case model.PolicyTypeCountBased:
		result = pe.evaluateCountBased(ctx, request, policy)
	case model.PolicyTypeManualApproval:
		result = pe.evaluateManualApproval(request, policy)
	case model.PolicyTypePatternMatch:
		result = pe.evaluatePatternMatch(request, policy)
	case model.PolicyTypeUsageThreshold:
		result = pe.evaluateUsageThreshold(ctx, request, policy)
	case model.PolicyTypeIPRestriction:
		result = pe.evaluateIPRestriction(request, policy)
	case model.PolicyTypeRateLimiting:
		result = pe.evaluateRateLimiting(ctx, request, policy)
	case model.PolicyTypeApprovalChain:
		result = pe.evaluateApprovalChain(request, policy)
	case model.PolicyTypeContextAware:
		result = pe.evaluateContextAware(request, policy)
	default:
		logger.Warn("Unknown policy type",
			zap.String("policyID", policy.ID),
			zap.String("policyType", string(policy.Type)))
		result = pdp_model.Denied(fmt.Sprintf("unknown policy type: %s", policy.Type))
	}

	result.PolicyID = policy.ID
	return result
}
