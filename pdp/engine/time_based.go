package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

// evaluateTimeBased checks the request timestamp against an absolute window
// and an optional recurring schedule. The timeZone config field is declared
// but not applied; the schedule is evaluated in UTC.
func (pe *PolicyEvaluator) evaluateTimeBased(request *pdp_model.ProxyRequest, policy *model.Policy) pdp_model.PolicyEvaluationResult {
	ts := request.Timestamp.UTC()

	if startStr := configString(policy.Config, "startTime"); startStr != "" {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return pdp_model.Denied(fmt.Sprintf("invalid startTime: %v", err))
		}
		if ts.Before(start) {
			return pdp_model.Denied("request is before the allowed time window")
		}
	}
	if endStr := configString(policy.Config, "endTime"); endStr != "" {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return pdp_model.Denied(fmt.Sprintf("invalid endTime: %v", err))
		}
		if ts.After(end) {
			return pdp_model.Denied("request is after the allowed time window")
		}
	}

	if schedule := configMap(policy.Config, "recurringSchedule"); schedule != nil {
		days := configStringSlice(schedule, "daysOfWeek")
		hours := configIntSlice(schedule, "hoursOfDay")

		dayAllowed := len(days) == 0
		for _, day := range days {
			if strings.EqualFold(day, ts.Weekday().String()) {
				dayAllowed = true
				break
			}
		}
		if !dayAllowed {
			return pdp_model.Denied(fmt.Sprintf("requests are not allowed on %s", ts.Weekday()))
		}

		hourAllowed := len(hours) == 0
		for _, hour := range hours {
			if hour == ts.Hour() {
				hourAllowed = true
				break
			}
		}
		if !hourAllowed {
			return pdp_model.Denied(fmt.Sprintf("requests are not allowed at hour %d", ts.Hour()))
		}
	}

	return pdp_model.Approved("within allowed time window")
}
