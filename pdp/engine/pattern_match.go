package engine

import (
	"fmt"
	"regexp"

	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

// evaluatePatternMatch runs each configured regex against the stringified
// request parameter it names. A match on a deny pattern fails immediately; a
// match on an allow pattern only skips further checks for that pattern and
// never short-circuits approval.
func (pe *PolicyEvaluator) evaluatePatternMatch(request *pdp_model.ProxyRequest, policy *model.Policy) pdp_model.PolicyEvaluationResult {
	for _, pattern := range configMapSlice(policy.Config, "patterns") {
		paramName := configString(pattern, "parameterName")
		value, present := request.Parameters[paramName]
		if !present {
			continue
		}

		expr := configString(pattern, "pattern")
		re, err := regexp.Compile(expr)
		if err != nil {
			return pdp_model.Denied(fmt.Sprintf("invalid pattern '%s': %v", expr, err))
		}

		if re.MatchString(fmt.Sprintf("%v", value)) {
			if allow, _ := pattern["allow"].(bool); !allow {
				return pdp_model.Denied(fmt.Sprintf("parameter '%s' matches blocked pattern '%s'", paramName, expr))
			}
		}
	}

	return pdp_model.Approved("no blocked pattern matched")
}
