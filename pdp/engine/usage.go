package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/open-warden/warden/api/logging"
	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

// MetricRequestCount is the usage metric consulted by RATE_LIMITING policies.
const MetricRequestCount = "request_count"

// evaluateUsageThreshold compares externally tracked usage against a maximum.
// A failed metrics lookup fails closed: exceeding a volume threshold silently
// would defeat the policy's purpose.
func (pe *PolicyEvaluator) evaluateUsageThreshold(ctx context.Context, request *pdp_model.ProxyRequest, policy *model.Policy) pdp_model.PolicyEvaluationResult {
	thresholdType := configString(policy.Config, "thresholdType")
	maxValue, _ := configFloat(policy.Config, "maxValue")
	timeWindow, _ := configInt(policy.Config, "timeWindow")

	if pe.metrics == nil {
		return pdp_model.Denied("usage metrics provider is not available")
	}

	usage, err := pe.metrics.GetUsageMetrics(ctx, request.CredentialID, thresholdType, timeWindow)
	if err != nil {
		logger.Error("Usage metrics lookup failed",
			zap.Error(err),
			zap.String("credentialID", request.CredentialID),
			zap.String("thresholdType", thresholdType))
		return pdp_model.Denied(fmt.Sprintf("usage lookup failed: %v", err))
	}

	if usage >= maxValue {
		return pdp_model.Denied(fmt.Sprintf("usage %.0f has reached the threshold %.0f for %s", usage, maxValue, thresholdType))
	}
	return pdp_model.Approved("usage below threshold")
}

// evaluateRateLimiting compares the request count over a trailing window
// against a maximum. Unlike USAGE_THRESHOLD this fails open on a lookup
// failure: a broken metrics backend should not lock applications out.
func (pe *PolicyEvaluator) evaluateRateLimiting(ctx context.Context, request *pdp_model.ProxyRequest, policy *model.Policy) pdp_model.PolicyEvaluationResult {
	if op := configString(policy.Config, "operation"); op != "" && op != request.Operation {
		return pdp_model.Approved("rate limit does not apply to this operation")
	}

	maxRequests, _ := configFloat(policy.Config, "maxRequests")
	timeWindow, _ := configInt(policy.Config, "timeWindow")

	metricType := MetricRequestCount
	if configBool(policy.Config, "perIp") && request.IP != "" {
		metricType = fmt.Sprintf("%s:%s", MetricRequestCount, request.IP)
	}

	if pe.metrics == nil {
		return pdp_model.Approved("usage metrics provider is not available")
	}

	count, err := pe.metrics.GetUsageMetrics(ctx, request.CredentialID, metricType, timeWindow)
	if err != nil {
		logger.Warn("Rate limit lookup failed, allowing request",
			zap.Error(err),
			zap.String("credentialID", request.CredentialID))
		return pdp_model.Approved(fmt.Sprintf("rate limit lookup failed: %v", err))
	}

	if count >= maxRequests {
		return pdp_model.Denied(fmt.Sprintf("request count %.0f has reached the limit %.0f", count, maxRequests))
	}
	return pdp_model.Approved("within rate limit")
}

// evaluateCountBased compares an external per-policy counter against a
// maximum. Without a counter collaborator the count is zero, so the policy
// approves unless maxCount itself is non-positive.
func (pe *PolicyEvaluator) evaluateCountBased(ctx context.Context, request *pdp_model.ProxyRequest, policy *model.Policy) pdp_model.PolicyEvaluationResult {
	maxCount, _ := configInt(policy.Config, "maxCount")
	resetPeriod := configString(policy.Config, "resetPeriod")

	var count int64
	if pe.counter != nil {
		var err error
		count, err = pe.counter.Increment(ctx, policy.ID, resetPeriod)
		if err != nil {
			return pdp_model.Denied(fmt.Sprintf("usage counter failed: %v", err))
		}
	}

	if count >= int64(maxCount) {
		return pdp_model.Denied(fmt.Sprintf("usage count %d has reached the limit %d", count, maxCount))
	}
	return pdp_model.Approved("usage count below limit")
}
