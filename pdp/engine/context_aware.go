package engine

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	logger "github.com/open-warden/warden/api/logging"
	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

// Context factors understood by CONTEXT_AWARE policies. Only time_of_day and
// day_of_week are resolved; the remaining factors never match until their
// data sources are wired in.
const (
	factorTimeOfDay        = "time_of_day"
	factorDayOfWeek        = "day_of_week"
	factorRequestFrequency = "request_frequency"
	factorPreviousUsage    = "previous_usage"
	factorLocation         = "location"
)

// clock is swapped out in tests. CONTEXT_AWARE conditions read the wall
// clock, not the request timestamp.
var clock = time.Now

// evaluateContextAware walks the configured conditions in order and applies
// the action of the first one that matches; with no match the default action
// applies.
func (pe *PolicyEvaluator) evaluateContextAware(request *pdp_model.ProxyRequest, policy *model.Policy) pdp_model.PolicyEvaluationResult {
	for _, condition := range configMapSlice(policy.Config, "conditions") {
		factor := configString(condition, "factor")
		operator := configString(condition, "operator")
		value := condition["value"]

		if pe.matchContextCondition(factor, operator, value) {
			action := configString(condition, "action")
			return applyContextAction(action, fmt.Sprintf("context condition on %s matched", factor))
		}
	}

	return applyContextAction(configString(policy.Config, "defaultAction"), "no context condition matched")
}

func (pe *PolicyEvaluator) matchContextCondition(factor, operator string, expected interface{}) bool {
	now := clock()

	switch factor {
	case factorTimeOfDay:
		return compareValues(now.Hour(), operator, expected)
	case factorDayOfWeek:
		actual := strings.ToLower(now.Weekday().String())
		if s, ok := expected.(string); ok {
			expected = strings.ToLower(s)
		}
		return compareValues(actual, operator, expected)
	case factorRequestFrequency, factorPreviousUsage, factorLocation:
		// Data sources for these factors are not wired in.
		return false
	default:
		logger.Warn("Unknown context factor", zap.String("factor", factor))
		return false
	}
}

func applyContextAction(action, reason string) pdp_model.PolicyEvaluationResult {
	switch action {
	case "deny":
		return pdp_model.Denied(reason)
	case "require_approval":
		return pdp_model.Pending(reason)
	default:
		return pdp_model.Approved(reason)
	}
}
