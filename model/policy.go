// api/model/policy.go
package model

import (
	"time"
)

// PolicyType identifies which rule evaluator applies to a policy.
type PolicyType string

const (
	PolicyTypeAllowList      PolicyType = "ALLOW_LIST"
	PolicyTypeDenyList       PolicyType = "DENY_LIST"
	PolicyTypeTimeBased      PolicyType = "TIME_BASED"
	PolicyTypeCountBased     PolicyType = "COUNT_BASED"
	PolicyTypeManualApproval PolicyType = "MANUAL_APPROVAL"
	PolicyTypePatternMatch   PolicyType = "PATTERN_MATCH"
	PolicyTypeUsageThreshold PolicyType = "USAGE_THRESHOLD"
	PolicyTypeIPRestriction  PolicyType = "IP_RESTRICTION"
	PolicyTypeRateLimiting   PolicyType = "RATE_LIMITING"
	PolicyTypeApprovalChain  PolicyType = "APPROVAL_CHAIN"
	PolicyTypeContextAware   PolicyType = "CONTEXT_AWARE"
)

// PolicyTypes lists every recognized policy type.
var PolicyTypes = []PolicyType{
	PolicyTypeAllowList,
	PolicyTypeDenyList,
	PolicyTypeTimeBased,
	PolicyTypeCountBased,
	PolicyTypeManualApproval,
	PolicyTypePatternMatch,
	PolicyTypeUsageThreshold,
	PolicyTypeIPRestriction,
	PolicyTypeRateLimiting,
	PolicyTypeApprovalChain,
	PolicyTypeContextAware,
}

// IsValid reports whether the type is one of the recognized policy types.
func (t PolicyType) IsValid() bool {
	for _, known := range PolicyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsEscalation reports whether the type is an escalation gate. Escalation
// gates force human or workflow approval and pre-empt priority-ordered
// evaluation of every other policy in the set.
func (t PolicyType) IsEscalation() bool {
	return t == PolicyTypeManualApproval || t == PolicyTypeApprovalChain
}

// PolicyScope controls which requests a policy applies to.
type PolicyScope string

const (
	ScopeGlobal      PolicyScope = "GLOBAL"
	ScopeCredential  PolicyScope = "CREDENTIAL"
	ScopeApplication PolicyScope = "APPLICATION"
)

// Policy is a persisted access-control rule. Config is variant-shaped per
// Type; the evaluation engine treats policies as read-only inputs for the
// duration of one evaluation.
type Policy struct {
	ID               string                 `json:"id"`
	Type             PolicyType             `json:"type"`
	Name             string                 `json:"name"`
	Description      string                 `json:"description,omitempty"`
	Scope            PolicyScope            `json:"scope"`
	ApplicationID    string                 `json:"application_id,omitempty"`
	CredentialID     string                 `json:"credential_id,omitempty"`
	CredentialTypeID string                 `json:"credential_type_id,omitempty"`
	Config           map[string]interface{} `json:"config"`
	Priority         int                    `json:"priority"`
	Active           bool                   `json:"active"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type PolicySearchCriteria struct {
	Name          string      `json:"name"`
	Type          PolicyType  `json:"type"`
	Scope         PolicyScope `json:"scope"`
	CredentialID  string      `json:"credential_id"`
	ApplicationID string      `json:"application_id"`
	MinPriority   int         `json:"min_priority"`
	MaxPriority   int         `json:"max_priority"`
	Active        *bool       `json:"active"`
	FromDate      time.Time   `json:"from_date"`
	ToDate        time.Time   `json:"to_date"`
	Limit         int         `json:"limit"`
}
