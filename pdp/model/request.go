package model

import "time"

// ProxyRequest is a third-party application's request to perform an operation
// against a stored credential. Immutable once constructed by the caller.
type ProxyRequest struct {
	ID            string                 `json:"id"`
	ApplicationID string                 `json:"application_id"`
	CredentialID  string                 `json:"credential_id"`
	Operation     string                 `json:"operation"`
	Parameters    map[string]interface{} `json:"parameters"`
	Timestamp     time.Time              `json:"timestamp"`
	IP            string                 `json:"ip,omitempty"`
}
