package engine

import (
	"fmt"

	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

// evaluateManualApproval escalates to a human unless the policy is scoped to
// a list of operations that excludes the requested one.
func (pe *PolicyEvaluator) evaluateManualApproval(request *pdp_model.ProxyRequest, policy *model.Policy) pdp_model.PolicyEvaluationResult {
	operations := configStringSlice(policy.Config, "operations")
	if len(operations) > 0 && !containsString(operations, request.Operation) {
		return pdp_model.Approved(fmt.Sprintf("operation '%s' does not require manual approval", request.Operation))
	}
	return pdp_model.Pending(fmt.Sprintf("operation '%s' requires manual approval", request.Operation))
}

// evaluateApprovalChain always escalates. Progressing the multi-step chain
// (approvalSteps, expirationHours) belongs to the external approval workflow,
// not to the evaluation engine.
func (pe *PolicyEvaluator) evaluateApprovalChain(request *pdp_model.ProxyRequest, policy *model.Policy) pdp_model.PolicyEvaluationResult {
	return pdp_model.Pending(fmt.Sprintf("operation '%s' requires approval chain sign-off", request.Operation))
}
