// api/model/credential.go
package model

import "time"

// Credential is the engine's view of a stored secret. Storage and encryption
// of the secret material live outside this service; only the metadata needed
// for policy decisions is modeled here.
type Credential struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	TypeID     string          `json:"type_id"` // e.g. "aws-iam", "postgres", "ssh-key"
	Operations []OperationRisk `json:"operations,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// OperationRisk is the plugin-reported risk rating for one operation a
// credential's provider supports. Risk levels range 0 (read-only metadata)
// to 10 (destructive).
type OperationRisk struct {
	Operation   string `json:"operation"`
	Description string `json:"description,omitempty"`
	RiskLevel   int    `json:"risk_level"`
}

// OperationsAtOrAbove returns the operations whose risk level is >= min.
func (c *Credential) OperationsAtOrAbove(min int) []string {
	var ops []string
	for _, op := range c.Operations {
		if op.RiskLevel >= min {
			ops = append(ops, op.Operation)
		}
	}
	return ops
}

// OperationsAtOrBelow returns the operations whose risk level is <= max.
func (c *Credential) OperationsAtOrBelow(max int) []string {
	var ops []string
	for _, op := range c.Operations {
		if op.RiskLevel <= max {
			ops = append(ops, op.Operation)
		}
	}
	return ops
}
