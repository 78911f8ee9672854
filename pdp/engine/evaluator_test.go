package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

func newRequestEvaluator() *RequestEvaluator {
	return NewRequestEvaluator(NewPolicyEvaluator(nil, nil))
}

func TestEvaluateRequestNoPolicies(t *testing.T) {
	re := newRequestEvaluator()

	result := re.EvaluateRequest(context.Background(), newRequest("read", nil), nil)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)
	assert.Equal(t, "No policies defined", result.Reason)
}

func TestEvaluateRequestPriorityOrdering(t *testing.T) {
	re := newRequestEvaluator()

	allow := &model.Policy{
		ID: "allow-1", Type: model.PolicyTypeAllowList, Name: "allow reads",
		Priority: 5, Active: true,
		Config: map[string]interface{}{"operations": []interface{}{"read"}},
	}
	deny := &model.Policy{
		ID: "deny-1", Type: model.PolicyTypeDenyList, Name: "deny reads",
		Priority: 10, Active: true,
		Config: map[string]interface{}{"operations": []interface{}{"read"}},
	}

	result := re.EvaluateRequest(context.Background(), newRequest("read", nil), []*model.Policy{allow, deny})
	assert.Equal(t, pdp_model.StatusDenied, result.Status)
	assert.Equal(t, "deny-1", result.PolicyID)
	assert.Contains(t, result.Reason, "deny reads:")
}

func TestEvaluateRequestEscalationGateOverridesPriority(t *testing.T) {
	re := newRequestEvaluator()

	deny := &model.Policy{
		ID: "deny-1", Type: model.PolicyTypeDenyList, Name: "deny reads",
		Priority: 50, Active: true,
		Config: map[string]interface{}{"operations": []interface{}{"read"}},
	}
	approval := &model.Policy{
		ID: "approval-1", Type: model.PolicyTypeManualApproval, Name: "manual approval",
		Priority: 1, Active: true,
		Config: map[string]interface{}{},
	}

	// the escalation gate wins irrespective of priority values
	result := re.EvaluateRequest(context.Background(), newRequest("read", nil), []*model.Policy{deny, approval})
	assert.Equal(t, pdp_model.StatusPending, result.Status)
	assert.Equal(t, "approval-1", result.PolicyID)
	assert.True(t, result.RequiresApproval)
}

func TestEvaluateRequestEscalationGateCanApprove(t *testing.T) {
	re := newRequestEvaluator()

	deny := &model.Policy{
		ID: "deny-1", Type: model.PolicyTypeDenyList, Name: "deny reads",
		Priority: 50, Active: true,
		Config: map[string]interface{}{"operations": []interface{}{"read"}},
	}
	approval := &model.Policy{
		ID: "approval-1", Type: model.PolicyTypeManualApproval, Name: "manual approval for deletes",
		Priority: 1, Active: true,
		Config: map[string]interface{}{"operations": []interface{}{"delete"}},
	}

	// the gate's own result is returned immediately, even when it approves:
	// no other policy is consulted
	result := re.EvaluateRequest(context.Background(), newRequest("read", nil), []*model.Policy{deny, approval})
	assert.Equal(t, pdp_model.StatusApproved, result.Status)
	assert.Equal(t, "approval-1", result.PolicyID)
}

func TestEvaluateRequestInactiveGateIgnored(t *testing.T) {
	re := newRequestEvaluator()

	approval := &model.Policy{
		ID: "approval-1", Type: model.PolicyTypeManualApproval, Name: "manual approval",
		Priority: 100, Active: false,
		Config: map[string]interface{}{},
	}
	allow := &model.Policy{
		ID: "allow-1", Type: model.PolicyTypeAllowList, Name: "allow reads",
		Priority: 5, Active: true,
		Config: map[string]interface{}{"operations": []interface{}{"read"}},
	}

	result := re.EvaluateRequest(context.Background(), newRequest("read", nil), []*model.Policy{approval, allow})
	assert.Equal(t, pdp_model.StatusApproved, result.Status)
	assert.Equal(t, "All policies passed", result.Reason)
}

func TestEvaluateRequestApprovalChainGate(t *testing.T) {
	re := newRequestEvaluator()

	chain := &model.Policy{
		ID: "chain-1", Type: model.PolicyTypeApprovalChain, Name: "chain",
		Priority: 1, Active: true,
		Config: map[string]interface{}{"approvalSteps": []interface{}{"lead"}},
	}
	allow := &model.Policy{
		ID: "allow-1", Type: model.PolicyTypeAllowList, Name: "allow reads",
		Priority: 90, Active: true,
		Config: map[string]interface{}{"operations": []interface{}{"read"}},
	}

	result := re.EvaluateRequest(context.Background(), newRequest("read", nil), []*model.Policy{chain, allow})
	assert.Equal(t, pdp_model.StatusPending, result.Status)
	assert.Equal(t, "chain-1", result.PolicyID)
}

func TestEvaluateRequestManualApprovalBeatsApprovalChain(t *testing.T) {
	re := newRequestEvaluator()

	chain := &model.Policy{
		ID: "chain-1", Type: model.PolicyTypeApprovalChain, Name: "chain",
		Priority: 90, Active: true,
		Config: map[string]interface{}{},
	}
	manual := &model.Policy{
		ID: "manual-1", Type: model.PolicyTypeManualApproval, Name: "manual",
		Priority: 1, Active: true,
		Config: map[string]interface{}{},
	}

	result := re.EvaluateRequest(context.Background(), newRequest("read", nil), []*model.Policy{chain, manual})
	assert.Equal(t, pdp_model.StatusPending, result.Status)
	assert.Equal(t, "manual-1", result.PolicyID)
}

func TestEvaluateRequestShortCircuitsOnFirstDeny(t *testing.T) {
	evaluated := 0
	metrics := countingMetrics{calls: &evaluated}
	re := NewRequestEvaluator(NewPolicyEvaluator(metrics, nil))

	deny := &model.Policy{
		ID: "deny-1", Type: model.PolicyTypeDenyList, Name: "deny reads",
		Priority: 10, Active: true,
		Config: map[string]interface{}{"operations": []interface{}{"read"}},
	}
	threshold := &model.Policy{
		ID: "usage-1", Type: model.PolicyTypeUsageThreshold, Name: "volume cap",
		Priority: 5, Active: true,
		Config: map[string]interface{}{"thresholdType": "data_volume", "maxValue": 10.0, "timeWindow": 60.0},
	}

	result := re.EvaluateRequest(context.Background(), newRequest("read", nil), []*model.Policy{threshold, deny})
	assert.Equal(t, pdp_model.StatusDenied, result.Status)
	assert.Equal(t, "deny-1", result.PolicyID)
	assert.Zero(t, evaluated, "lower-priority policy must not be evaluated after a deny")
}

type countingMetrics struct {
	calls *int
}

func (c countingMetrics) GetUsageMetrics(ctx context.Context, credentialID, metricType string, timeWindowSeconds int) (float64, error) {
	*c.calls++
	return 0, nil
}

func TestEvaluateRequestStableOrderOnEqualPriority(t *testing.T) {
	re := newRequestEvaluator()

	first := &model.Policy{
		ID: "deny-first", Type: model.PolicyTypeDenyList, Name: "first",
		Priority: 10, Active: true,
		Config: map[string]interface{}{"operations": []interface{}{"read"}},
	}
	second := &model.Policy{
		ID: "deny-second", Type: model.PolicyTypeDenyList, Name: "second",
		Priority: 10, Active: true,
		Config: map[string]interface{}{"operations": []interface{}{"read"}},
	}

	result := re.EvaluateRequest(context.Background(), newRequest("read", nil), []*model.Policy{first, second})
	assert.Equal(t, "deny-first", result.PolicyID)
}

func TestEvaluateRequestAllPoliciesPass(t *testing.T) {
	re := newRequestEvaluator()

	policies := []*model.Policy{
		{
			ID: "allow-1", Type: model.PolicyTypeAllowList, Name: "allow reads",
			Priority: 5, Active: true,
			Config: map[string]interface{}{"operations": []interface{}{"read", "write"}},
		},
		{
			ID: "ip-1", Type: model.PolicyTypeIPRestriction, Name: "office only",
			Priority: 3, Active: true,
			Config: map[string]interface{}{"allowedIps": []interface{}{"192.168.1.0/24"}},
		},
	}

	result := re.EvaluateRequest(context.Background(), newRequest("read", nil), policies)
	assert.Equal(t, pdp_model.StatusApproved, result.Status)
	assert.Equal(t, "All policies passed", result.Reason)
}
