package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	logger "github.com/open-warden/warden/api/logging"
	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

type PolicyRetrievalDAO struct {
	Driver neo4j.Driver
}

func NewPolicyRetrievalDAO(driver neo4j.Driver) *PolicyRetrievalDAO {
	return &PolicyRetrievalDAO{Driver: driver}
}

// RetrieveRelevantPolicies loads every policy applicable to a proxy request:
// global policies, policies pinned to the request's credential (directly or
// through its credential type), and policies scoped to the calling
// application. Ordering by priority is advisory here; the evaluator re-sorts
// before deciding.
func (dao *PolicyRetrievalDAO) RetrieveRelevantPolicies(ctx context.Context, request *pdp_model.ProxyRequest, credentialTypeID string) ([]*model.Policy, error) {
	start := time.Now()
	logger.Info("Retrieving relevant policies for proxy request",
		zap.String("application_id", request.ApplicationID),
		zap.String("credential_id", request.CredentialID),
		zap.String("operation", request.Operation))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:POLICY)
        WHERE
            p.scope = 'GLOBAL' OR
            (p.scope = 'CREDENTIAL' AND
                (p.credentialId = $credentialID OR
                 (p.credentialTypeId <> '' AND p.credentialTypeId = $credentialTypeID))) OR
            (p.scope = 'APPLICATION' AND p.applicationId = $applicationID)
        RETURN p
        ORDER BY p.priority DESC
        `

		params := map[string]interface{}{
			"credentialID":     request.CredentialID,
			"credentialTypeID": credentialTypeID,
			"applicationID":    request.ApplicationID,
		}

		result, err := tx.Run(query, params)
		if err != nil {
			return nil, err
		}

		var policies []*model.Policy
		for result.Next() {
			record := result.Record()
			policyNode := record.Values[0].(neo4j.Node)
			policy, err := mapNodeToPolicy(policyNode)
			if err != nil {
				return nil, err
			}
			policies = append(policies, policy)
		}

		return policies, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to retrieve relevant policies",
			zap.Error(err),
			zap.Duration("duration", duration))
		return nil, err
	}

	policies := result.([]*model.Policy)
	logger.Info("Retrieved relevant policies successfully",
		zap.Int("policy_count", len(policies)),
		zap.Duration("duration", duration))

	return policies, nil
}

// Helper function to map Neo4j Node to Policy struct
func mapNodeToPolicy(node neo4j.Node) (*model.Policy, error) {
	props := node.Props
	policy := &model.Policy{}

	if id, ok := props["id"].(string); ok {
		policy.ID = id
	} else {
		return nil, fmt.Errorf("failed to assert type for policy ID: %v", props["id"])
	}

	if policyType, ok := props["type"].(string); ok {
		policy.Type = model.PolicyType(policyType)
	} else {
		return nil, fmt.Errorf("failed to assert type for policy type: %v", props["type"])
	}

	if name, ok := props["name"].(string); ok {
		policy.Name = name
	} else {
		return nil, fmt.Errorf("failed to assert type for policy name: %v", props["name"])
	}

	if description, ok := props["description"].(string); ok {
		policy.Description = description
	}

	if scope, ok := props["scope"].(string); ok {
		policy.Scope = model.PolicyScope(scope)
	} else {
		return nil, fmt.Errorf("failed to assert type for policy scope: %v", props["scope"])
	}

	if applicationID, ok := props["applicationId"].(string); ok {
		policy.ApplicationID = applicationID
	}

	if credentialID, ok := props["credentialId"].(string); ok {
		policy.CredentialID = credentialID
	}

	if credentialTypeID, ok := props["credentialTypeId"].(string); ok {
		policy.CredentialTypeID = credentialTypeID
	}

	if priority, ok := props["priority"].(int64); ok {
		policy.Priority = int(priority)
	} else {
		return nil, fmt.Errorf("failed to assert type for policy priority: %v", props["priority"])
	}

	if active, ok := props["active"].(bool); ok {
		policy.Active = active
	} else {
		return nil, fmt.Errorf("failed to assert type for policy active: %v", props["active"])
	}

	if createdAt, ok := props["createdAt"].(string); ok {
		policy.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	}

	if updatedAt, ok := props["updatedAt"].(string); ok {
		policy.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	}

	if configJSON, ok := props["config"].(string); ok {
		if err := json.Unmarshal([]byte(configJSON), &policy.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal policy config: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to assert type for policy config: %v", props["config"])
	}

	return policy, nil
}
