package audit

import (
	"encoding/json"
	"time"
)

// Actions recorded in the audit index.
const (
	ActionProxyRequest   = "PROXY_REQUEST"
	ActionCreatePolicy   = "CREATE_POLICY"
	ActionUpdatePolicy   = "UPDATE_POLICY"
	ActionDeletePolicy   = "DELETE_POLICY"
	ActionApplyTemplate  = "APPLY_TEMPLATE"
	ActionApplyDefaults  = "APPLY_DEFAULT_POLICIES"
)

// AuditLog is a single audit trail entry. Proxy decisions fill Decision,
// PolicyID and Reason; policy lifecycle entries fill ChangeDetails.
type AuditLog struct {
	Timestamp     time.Time       `json:"timestamp"`
	ApplicationID string          `json:"application_id,omitempty"`
	CredentialID  string          `json:"credential_id,omitempty"`
	Action        string          `json:"action"`
	Operation     string          `json:"operation,omitempty"`
	Decision      string          `json:"decision,omitempty"`
	PolicyID      string          `json:"policy_id,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}

// AuditQuery narrows QueryLogs. Zero-value fields are not filtered on.
type AuditQuery struct {
	ApplicationID string
	CredentialID  string
	Action        string
	Decision      string
	From          time.Time
	To            time.Time
	Size          int
}
