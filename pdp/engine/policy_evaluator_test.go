package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

type stubMetrics struct {
	value float64
	err   error
}

func (s stubMetrics) GetUsageMetrics(ctx context.Context, credentialID, metricType string, timeWindowSeconds int) (float64, error) {
	return s.value, s.err
}

type stubCounter struct {
	count int64
	err   error
}

func (s stubCounter) Increment(ctx context.Context, policyID, resetPeriod string) (int64, error) {
	return s.count, s.err
}

func newRequest(operation string, params map[string]interface{}) *pdp_model.ProxyRequest {
	return &pdp_model.ProxyRequest{
		ID:            "req-1",
		ApplicationID: "app-1",
		CredentialID:  "cred-1",
		Operation:     operation,
		Parameters:    params,
		Timestamp:     time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC), // a Monday
		IP:            "192.168.1.100",
	}
}

func newPolicy(t model.PolicyType, config map[string]interface{}) *model.Policy {
	return &model.Policy{
		ID:     "pol-1",
		Type:   t,
		Name:   "test policy",
		Scope:  model.ScopeCredential,
		Config: config,
		Active: true,
	}
}

func TestEvaluateAllowList(t *testing.T) {
	pe := NewPolicyEvaluator(nil, nil)

	policy := newPolicy(model.PolicyTypeAllowList, map[string]interface{}{
		"operations": []interface{}{"read", "write"},
	})

	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)

	result = pe.EvaluatePolicy(context.Background(), newRequest("delete", nil), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)
	assert.Equal(t, "pol-1", result.PolicyID)
}

func TestEvaluateAllowListParameters(t *testing.T) {
	pe := NewPolicyEvaluator(nil, nil)

	policy := newPolicy(model.PolicyTypeAllowList, map[string]interface{}{
		"parameters": map[string]interface{}{"database": "reporting"},
	})

	result := pe.EvaluatePolicy(context.Background(), newRequest("read", map[string]interface{}{"database": "reporting"}), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)

	result = pe.EvaluatePolicy(context.Background(), newRequest("read", map[string]interface{}{"database": "production"}), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)

	// missing parameter counts as a mismatch
	result = pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)
}

func TestEvaluateDenyList(t *testing.T) {
	pe := NewPolicyEvaluator(nil, nil)

	policy := newPolicy(model.PolicyTypeDenyList, map[string]interface{}{
		"operations": []interface{}{"drop", "truncate"},
		"parameters": map[string]interface{}{"target": "prod"},
	})

	result := pe.EvaluatePolicy(context.Background(), newRequest("drop", nil), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)

	result = pe.EvaluatePolicy(context.Background(), newRequest("read", map[string]interface{}{"target": "prod"}), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)

	result = pe.EvaluatePolicy(context.Background(), newRequest("read", map[string]interface{}{"target": "staging"}), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)
}

func TestEvaluateTimeBasedWindow(t *testing.T) {
	pe := NewPolicyEvaluator(nil, nil)

	policy := newPolicy(model.PolicyTypeTimeBased, map[string]interface{}{
		"startTime": "2025-03-01T00:00:00Z",
		"endTime":   "2025-03-31T23:59:59Z",
	})

	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)

	early := newRequest("read", nil)
	early.Timestamp = time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	result = pe.EvaluatePolicy(context.Background(), early, policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)

	late := newRequest("read", nil)
	late.Timestamp = time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)
	result = pe.EvaluatePolicy(context.Background(), late, policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)
}

func TestEvaluateTimeBasedRecurringSchedule(t *testing.T) {
	pe := NewPolicyEvaluator(nil, nil)

	policy := newPolicy(model.PolicyTypeTimeBased, map[string]interface{}{
		"recurringSchedule": map[string]interface{}{
			"daysOfWeek": []interface{}{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
			"hoursOfDay": []interface{}{9.0, 10.0, 11.0, 12.0, 13.0, 14.0, 15.0, 16.0, 17.0},
		},
	})

	monday := newRequest("read", nil) // Monday 12:00 UTC
	result := pe.EvaluatePolicy(context.Background(), monday, policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)

	sunday := newRequest("read", nil)
	sunday.Timestamp = time.Date(2025, time.March, 2, 12, 0, 0, 0, time.UTC)
	result = pe.EvaluatePolicy(context.Background(), sunday, policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)

	nightShift := newRequest("read", nil)
	nightShift.Timestamp = time.Date(2025, time.March, 3, 3, 0, 0, 0, time.UTC)
	result = pe.EvaluatePolicy(context.Background(), nightShift, policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)
}

func TestEvaluateManualApproval(t *testing.T) {
	pe := NewPolicyEvaluator(nil, nil)

	unscoped := newPolicy(model.PolicyTypeManualApproval, map[string]interface{}{})
	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), unscoped)
	assert.Equal(t, pdp_model.StatusPending, result.Status)
	assert.True(t, result.RequiresApproval)

	scoped := newPolicy(model.PolicyTypeManualApproval, map[string]interface{}{
		"operations": []interface{}{"delete"},
	})
	result = pe.EvaluatePolicy(context.Background(), newRequest("read", nil), scoped)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)

	result = pe.EvaluatePolicy(context.Background(), newRequest("delete", nil), scoped)
	assert.Equal(t, pdp_model.StatusPending, result.Status)
}

func TestEvaluatePatternMatch(t *testing.T) {
	pe := NewPolicyEvaluator(nil, nil)

	policy := newPolicy(model.PolicyTypePatternMatch, map[string]interface{}{
		"patterns": []interface{}{
			map[string]interface{}{"parameterName": "query", "pattern": `^\s*SELECT`, "allow": true},
			map[string]interface{}{"parameterName": "query", "pattern": `^\s*(INSERT|UPDATE)`, "allow": false},
		},
	})

	result := pe.EvaluatePolicy(context.Background(), newRequest("execute", map[string]interface{}{"query": "UPDATE x SET y = 1"}), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)

	result = pe.EvaluatePolicy(context.Background(), newRequest("execute", map[string]interface{}{"query": "SELECT * FROM x"}), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)

	// parameter absent: nothing to check
	result = pe.EvaluatePolicy(context.Background(), newRequest("execute", nil), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)
}

func TestEvaluatePatternMatchInvalidRegex(t *testing.T) {
	pe := NewPolicyEvaluator(nil, nil)

	policy := newPolicy(model.PolicyTypePatternMatch, map[string]interface{}{
		"patterns": []interface{}{
			map[string]interface{}{"parameterName": "query", "pattern": "([", "allow": false},
		},
	})

	result := pe.EvaluatePolicy(context.Background(), newRequest("execute", map[string]interface{}{"query": "x"}), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)
}

func TestEvaluateIPRestriction(t *testing.T) {
	pe := NewPolicyEvaluator(nil, nil)

	policy := newPolicy(model.PolicyTypeIPRestriction, map[string]interface{}{
		"allowedIps":    []interface{}{"192.168.1.0/24"},
		"defaultAction": "deny",
	})

	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)

	outside := newRequest("read", nil)
	outside.IP = "10.0.0.1"
	result = pe.EvaluatePolicy(context.Background(), outside, policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)

	noIP := newRequest("read", nil)
	noIP.IP = ""
	result = pe.EvaluatePolicy(context.Background(), noIP, policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)
}

func TestEvaluateIPRestrictionDeniedRangesWin(t *testing.T) {
	pe := NewPolicyEvaluator(nil, nil)

	policy := newPolicy(model.PolicyTypeIPRestriction, map[string]interface{}{
		"allowedIps": []interface{}{"192.168.0.0/16"},
		"deniedIps":  []interface{}{"192.168.1.0/24"},
	})

	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)

	neighbour := newRequest("read", nil)
	neighbour.IP = "192.168.2.1"
	result = pe.EvaluatePolicy(context.Background(), neighbour, policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)
}

func TestEvaluateUsageThresholdFailsClosed(t *testing.T) {
	policy := newPolicy(model.PolicyTypeUsageThreshold, map[string]interface{}{
		"thresholdType": "data_volume",
		"maxValue":      1000.0,
		"timeWindow":    3600.0,
	})

	pe := NewPolicyEvaluator(stubMetrics{value: 10}, nil)
	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)

	pe = NewPolicyEvaluator(stubMetrics{value: 1000}, nil)
	result = pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)

	pe = NewPolicyEvaluator(stubMetrics{err: errors.New("metrics store down")}, nil)
	result = pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)
}

func TestEvaluateRateLimitingFailsOpen(t *testing.T) {
	policy := newPolicy(model.PolicyTypeRateLimiting, map[string]interface{}{
		"maxRequests": 100.0,
		"timeWindow":  60.0,
	})

	pe := NewPolicyEvaluator(stubMetrics{value: 5}, nil)
	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)

	pe = NewPolicyEvaluator(stubMetrics{value: 100}, nil)
	result = pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)

	// intentionally asymmetric with USAGE_THRESHOLD
	pe = NewPolicyEvaluator(stubMetrics{err: errors.New("metrics store down")}, nil)
	result = pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)
}

func TestEvaluateRateLimitingOperationFilter(t *testing.T) {
	policy := newPolicy(model.PolicyTypeRateLimiting, map[string]interface{}{
		"maxRequests": 1.0,
		"timeWindow":  60.0,
		"operation":   "write",
	})

	pe := NewPolicyEvaluator(stubMetrics{value: 999}, nil)
	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)

	result = pe.EvaluatePolicy(context.Background(), newRequest("write", nil), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)
}

func TestEvaluateCountBased(t *testing.T) {
	policy := newPolicy(model.PolicyTypeCountBased, map[string]interface{}{
		"maxCount":    5.0,
		"resetPeriod": "daily",
	})

	// without a counter collaborator the count is zero
	pe := NewPolicyEvaluator(nil, nil)
	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)

	exhausted := newPolicy(model.PolicyTypeCountBased, map[string]interface{}{
		"maxCount": 0.0,
	})
	result = pe.EvaluatePolicy(context.Background(), newRequest("read", nil), exhausted)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)

	pe = NewPolicyEvaluator(nil, stubCounter{count: 5})
	result = pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)

	pe = NewPolicyEvaluator(nil, stubCounter{err: errors.New("counter down")})
	result = pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)
}

func TestEvaluateApprovalChainAlwaysPending(t *testing.T) {
	pe := NewPolicyEvaluator(nil, nil)

	policy := newPolicy(model.PolicyTypeApprovalChain, map[string]interface{}{
		"approvalSteps":   []interface{}{"team-lead", "security"},
		"expirationHours": 24.0,
	})

	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusPending, result.Status)
	assert.True(t, result.RequiresApproval)
}

func TestEvaluateContextAware(t *testing.T) {
	restore := clock
	defer func() { clock = restore }()
	clock = func() time.Time {
		return time.Date(2025, time.March, 3, 22, 0, 0, 0, time.UTC) // Monday 22:00
	}

	pe := NewPolicyEvaluator(nil, nil)

	policy := newPolicy(model.PolicyTypeContextAware, map[string]interface{}{
		"conditions": []interface{}{
			map[string]interface{}{"factor": "time_of_day", "operator": "greater_than", "value": 18.0, "action": "require_approval"},
			map[string]interface{}{"factor": "day_of_week", "operator": "equals", "value": "Sunday", "action": "deny"},
		},
		"defaultAction": "allow",
	})

	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusPending, result.Status)

	clock = func() time.Time {
		return time.Date(2025, time.March, 2, 10, 0, 0, 0, time.UTC) // Sunday 10:00
	}
	result = pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)

	clock = func() time.Time {
		return time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC) // Monday 10:00
	}
	result = pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)
}

func TestEvaluateContextAwareStubFactorsNeverMatch(t *testing.T) {
	pe := NewPolicyEvaluator(nil, nil)

	policy := newPolicy(model.PolicyTypeContextAware, map[string]interface{}{
		"conditions": []interface{}{
			map[string]interface{}{"factor": "request_frequency", "operator": "greater_than", "value": 0.0, "action": "deny"},
			map[string]interface{}{"factor": "location", "operator": "equals", "value": "anywhere", "action": "deny"},
		},
		"defaultAction": "allow",
	})

	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)
}

func TestEvaluateUnknownPolicyTypeDenied(t *testing.T) {
	pe := NewPolicyEvaluator(nil, nil)

	policy := newPolicy(model.PolicyType("GEO_FENCE"), map[string]interface{}{})
	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)
	assert.Contains(t, result.Reason, "unknown policy type")
}

type panickyMetrics struct{}

func (panickyMetrics) GetUsageMetrics(ctx context.Context, credentialID, metricType string, timeWindowSeconds int) (float64, error) {
	panic("metrics provider exploded")
}

func TestEvaluatePolicyRecoversFromPanic(t *testing.T) {
	pe := NewPolicyEvaluator(panickyMetrics{}, nil)

	policy := newPolicy(model.PolicyTypeUsageThreshold, map[string]interface{}{
		"thresholdType": "data_volume",
		"maxValue":      10.0,
	})

	result := pe.EvaluatePolicy(context.Background(), newRequest("read", nil), policy)
	assert.Equal(t, pdp_model.StatusDenied, result.Status)
	assert.Contains(t, result.Reason, "metrics provider exploded")
	assert.Equal(t, "pol-1", result.PolicyID)
}
