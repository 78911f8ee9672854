package engine

import (
	"fmt"

	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

// evaluateIPRestriction checks the request source IP against denied and
// allowed CIDR ranges. A request without a source IP is always denied; the
// deny ranges are checked before the allow ranges.
func (pe *PolicyEvaluator) evaluateIPRestriction(request *pdp_model.ProxyRequest, policy *model.Policy) pdp_model.PolicyEvaluationResult {
	if request.IP == "" {
		return pdp_model.Denied("request has no source IP")
	}

	for _, cidr := range configStringSlice(policy.Config, "deniedIps") {
		if IsInIPRange(request.IP, cidr) {
			return pdp_model.Denied(fmt.Sprintf("IP %s is in denied range %s", request.IP, cidr))
		}
	}

	allowed := configStringSlice(policy.Config, "allowedIps")
	if len(allowed) == 0 {
		return pdp_model.Approved("no allowed IP ranges configured")
	}
	for _, cidr := range allowed {
		if IsInIPRange(request.IP, cidr) {
			return pdp_model.Approved(fmt.Sprintf("IP %s is in allowed range %s", request.IP, cidr))
		}
	}

	if configString(policy.Config, "defaultAction") == "allow" {
		return pdp_model.Approved("default action allows this IP")
	}
	return pdp_model.Denied(fmt.Sprintf("IP %s is not in any allowed range", request.IP))
}
