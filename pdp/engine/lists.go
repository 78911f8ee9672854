package engine

import (
	"fmt"

	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

// evaluateAllowList denies any operation absent from the configured operation
// list, and any request whose parameters differ from the pinned values.
func (pe *PolicyEvaluator) evaluateAllowList(request *pdp_model.ProxyRequest, policy *model.Policy) pdp_model.PolicyEvaluationResult {
	operations := configStringSlice(policy.Config, "operations")
	if len(operations) > 0 && !containsString(operations, request.Operation) {
		return pdp_model.Denied(fmt.Sprintf("operation '%s' is not in the allow list", request.Operation))
	}

	for key, expected := range configMap(policy.Config, "parameters") {
		if !looseEqual(expected, request.Parameters[key]) {
			return pdp_model.Denied(fmt.Sprintf("parameter '%s' does not match the allowed value", key))
		}
	}

	return pdp_model.Approved("allow list passed")
}

// evaluateDenyList denies any operation present in the configured operation
// list, and any request whose parameters match the blocked values.
func (pe *PolicyEvaluator) evaluateDenyList(request *pdp_model.ProxyRequest, policy *model.Policy) pdp_model.PolicyEvaluationResult {
	operations := configStringSlice(policy.Config, "operations")
	if containsString(operations, request.Operation) {
		return pdp_model.Denied(fmt.Sprintf("operation '%s' is in the deny list", request.Operation))
	}

	for key, blocked := range configMap(policy.Config, "parameters") {
		if actual, ok := request.Parameters[key]; ok && looseEqual(blocked, actual) {
			return pdp_model.Denied(fmt.Sprintf("parameter '%s' matches a denied value", key))
		}
	}

	return pdp_model.Approved("deny list passed")
}
