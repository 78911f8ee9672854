// api/dao/policy_dao.go
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/open-warden/warden/api/audit"
	warden_errors "github.com/open-warden/warden/api/errors"
	logger "github.com/open-warden/warden/api/logging"
	"github.com/open-warden/warden/api/model"
)

type PolicyDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewPolicyDAO(driver neo4j.Driver, auditService audit.Service) *PolicyDAO {
	dao := &PolicyDAO{Driver: driver, AuditService: auditService}
	// Ensure unique constraint on Policy ID
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint", zap.Error(err))
	}
	return dao
}

// EnsureUniqueConstraint ensures the unique constraint on the Policy ID
func (dao *PolicyDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on Policy ID")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error("Failed to close Neo4j session", zap.Error(err))
		}
	}()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_policy_id IF NOT EXISTS
        FOR (p:POLICY) REQUIRE p.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		if err != nil {
			logger.Error("Failed to create unique constraint", zap.Error(err))
			return nil, fmt.Errorf("failed to create unique constraint: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		logger.Error("Failed to ensure unique constraint on Policy ID", zap.Error(err))
		return err
	}

	logger.Info("Successfully ensured unique constraint on Policy ID")
	return nil
}

// CreatePolicy creates a new policy node in Neo4j
func (dao *PolicyDAO) CreatePolicy(ctx context.Context, policy model.Policy) (string, error) {
	start := time.Now()
	logger.Info("Creating new policy", zap.String("policyName", policy.Name), zap.String("policyType", string(policy.Type)))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if policy.ID == "" {
		policy.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		// First, check if the policy already exists
		checkQuery := `
        MATCH (p:POLICY {id: $id})
        RETURN p.id
        `
		checkResult, err := transaction.Run(checkQuery, map[string]interface{}{"id": policy.ID})
		if err != nil {
			return nil, warden_errors.ErrDatabaseOperation
		}
		if checkResult.Next() {
			return nil, warden_errors.ErrPolicyConflict
		}

		createQuery := `
            MERGE (p:POLICY {id: $id})
            ON CREATE SET p += $props
            ON MATCH SET p += $props
            RETURN p.id as id
        `

		configJSON, _ := json.Marshal(policy.Config)

		parameters := map[string]interface{}{
			"id": policy.ID,
			"props": map[string]interface{}{
				"type":             string(policy.Type),
				"name":             policy.Name,
				"description":      policy.Description,
				"scope":            string(policy.Scope),
				"applicationId":    policy.ApplicationID,
				"credentialId":     policy.CredentialID,
				"credentialTypeId": policy.CredentialTypeID,
				"priority":         policy.Priority,
				"active":           policy.Active,
				"createdAt":        time.Now().Format(time.RFC3339),
				"updatedAt":        time.Now().Format(time.RFC3339),
				"config":           string(configJSON),
			},
		}
		createResult, err := transaction.Run(createQuery, parameters)
		if err != nil {
			return nil, warden_errors.ErrDatabaseOperation
		}
		if createResult.Next() {
			id, found := createResult.Record().Get("id")
			if !found {
				return nil, warden_errors.ErrInternalServer
			}
			return id, nil
		}
		return nil, warden_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create policy",
			zap.Error(err),
			zap.String("policyName", policy.Name),
			zap.Duration("duration", duration))
		return "", err
	}

	policyID := fmt.Sprintf("%v", result)
	logger.Info("Policy created successfully",
		zap.String("policyID", policyID),
		zap.Duration("duration", duration))

	if err := dao.AuditService.LogPolicyChange(ctx, audit.ActionCreatePolicy, policyID, createChangeDetails(nil, &policy)); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return policyID, nil
}

// UpdatePolicy updates an existing policy in Neo4j
func (dao *PolicyDAO) UpdatePolicy(ctx context.Context, policy model.Policy) (*model.Policy, error) {
	start := time.Now()
	logger.Info("Updating policy", zap.String("policyID", policy.ID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	var updatedPolicy *model.Policy
	oldPolicy, err := dao.GetPolicy(ctx, policy.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
				MATCH (p:POLICY {id: $id})
				SET p.type = $type, p.name = $name, p.description = $description,
					p.scope = $scope, p.applicationId = $applicationId, p.credentialId = $credentialId,
					p.credentialTypeId = $credentialTypeId, p.priority = $priority, p.active = $active,
					p.createdAt = $createdAt, p.updatedAt = $updatedAt, p.config = $config
				RETURN p
				`

		configJSON, _ := json.Marshal(policy.Config)

		parameters := map[string]interface{}{
			"id": policy.ID, "type": string(policy.Type), "name": policy.Name,
			"description": policy.Description, "scope": string(policy.Scope),
			"applicationId":    policy.ApplicationID,
			"credentialId":     policy.CredentialID,
			"credentialTypeId": policy.CredentialTypeID,
			"priority":         policy.Priority, "active": policy.Active,
			"createdAt": oldPolicy.CreatedAt.Format(time.RFC3339),
			"updatedAt": time.Now().Format(time.RFC3339),
			"config":    string(configJSON),
		}
		result, err := transaction.Run(query, parameters)
		if err != nil {
			return nil, fmt.Errorf("failed to execute update query: %w", err)
		}
		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			updatedPolicy, _ = mapNodeToPolicy(node)
			return nil, nil
		}
		return nil, warden_errors.ErrPolicyNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update policy",
			zap.Error(err),
			zap.String("policyID", policy.ID),
			zap.Duration("duration", duration))
		return nil, fmt.Errorf("failed to update policy: %w", err)
	}

	logger.Info("Policy updated successfully",
		zap.String("policyID", policy.ID),
		zap.Duration("duration", duration))

	if err := dao.AuditService.LogPolicyChange(ctx, audit.ActionUpdatePolicy, policy.ID, createChangeDetails(oldPolicy, updatedPolicy)); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updatedPolicy, nil
}

// DeletePolicy deletes a policy from Neo4j
func (dao *PolicyDAO) DeletePolicy(ctx context.Context, policyID string) error {
	start := time.Now()
	logger.Info("Deleting policy", zap.String("policyID", policyID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:POLICY {id: $id})
        DETACH DELETE p
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": policyID})
		if err != nil {
			return nil, fmt.Errorf("failed to execute delete query: %w", err)
		}
		summary, err := result.Consume()
		if err != nil {
			return nil, fmt.Errorf("failed to consume delete result: %w", err)
		}
		if summary.Counters().NodesDeleted() == 0 {
			return nil, warden_errors.ErrPolicyNotFound
		}
		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete policy",
			zap.Error(err),
			zap.String("policyID", policyID),
			zap.Duration("duration", duration))
		return fmt.Errorf("failed to delete policy: %w", err)
	}

	logger.Info("Policy deleted successfully",
		zap.String("policyID", policyID),
		zap.Duration("duration", duration))

	if err := dao.AuditService.LogPolicyChange(ctx, audit.ActionDeletePolicy, policyID, createChangeDetails(&model.Policy{ID: policyID}, nil)); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

// GetPolicy retrieves a policy from Neo4j by its ID
func (dao *PolicyDAO) GetPolicy(ctx context.Context, policyID string) (*model.Policy, error) {
	start := time.Now()
	logger.Info("Retrieving policy", zap.String("policyID", policyID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:POLICY {id: $id})
    RETURN p
    `
	result, err := session.Run(query, map[string]interface{}{"id": policyID})
	if err != nil {
		logger.Error("Failed to execute get policy query",
			zap.Error(err),
			zap.String("policyID", policyID),
			zap.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to execute get policy query: %w", err)
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		policy, err := mapNodeToPolicy(node)
		if err != nil {
			logger.Error("Failed to map policy node to struct",
				zap.Error(err),
				zap.String("policyID", policyID),
				zap.Duration("duration", time.Since(start)))
			return nil, fmt.Errorf("failed to map policy node to struct: %w", err)
		}
		logger.Info("Policy retrieved successfully",
			zap.String("policyID", policyID),
			zap.Duration("duration", time.Since(start)))
		return policy, nil
	}

	logger.Warn("Policy not found",
		zap.String("policyID", policyID),
		zap.Duration("duration", time.Since(start)))
	return nil, warden_errors.ErrPolicyNotFound
}

// ListPolicies retrieves all policies from Neo4j with pagination
func (dao *PolicyDAO) ListPolicies(ctx context.Context, limit int, offset int) ([]*model.Policy, error) {
	start := time.Now()
	logger.Info("Listing policies", zap.Int("limit", limit), zap.Int("offset", offset))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:POLICY)
    RETURN p
    ORDER BY p.priority DESC, p.createdAt DESC
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		logger.Error("Failed to execute list policies query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to execute list policies query: %w", err)
	}

	var policies []*model.Policy
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		policy, err := mapNodeToPolicy(node)
		if err != nil {
			logger.Error("Failed to map policy node to struct",
				zap.Error(err),
				zap.Duration("duration", time.Since(start)))
			return nil, fmt.Errorf("failed to map policy node to struct: %w", err)
		}
		policies = append(policies, policy)
	}

	logger.Info("Policies listed successfully",
		zap.Int("count", len(policies)),
		zap.Duration("duration", time.Since(start)))

	return policies, nil
}

// CountPoliciesForCredential counts policies attached to a credential,
// including credential-type scoped ones.
func (dao *PolicyDAO) CountPoliciesForCredential(ctx context.Context, credentialID, credentialTypeID string) (int, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:POLICY)
    WHERE p.credentialId = $credentialId
       OR (p.credentialTypeId <> '' AND p.credentialTypeId = $credentialTypeId)
    RETURN COUNT(p) AS count
    `
	result, err := session.Run(query, map[string]interface{}{
		"credentialId":     credentialID,
		"credentialTypeId": credentialTypeID,
	})
	if err != nil {
		logger.Error("Failed to count policies for credential",
			zap.Error(err),
			zap.String("credentialID", credentialID),
			zap.Duration("duration", time.Since(start)))
		return 0, fmt.Errorf("failed to count policies for credential: %w", err)
	}

	if result.Next() {
		count, _ := result.Record().Get("count")
		if n, ok := count.(int64); ok {
			return int(n), nil
		}
	}
	return 0, nil
}

// SearchPolicies searches for policies based on given criteria
func (dao *PolicyDAO) SearchPolicies(ctx context.Context, criteria model.PolicySearchCriteria) ([]*model.Policy, error) {
	start := time.Now()
	logger.Info("Searching policies", zap.Any("criteria", criteria))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	var queryBuilder strings.Builder
	queryBuilder.WriteString("MATCH (p:POLICY) WHERE 1=1")

	params := make(map[string]interface{})

	if criteria.Name != "" {
		queryBuilder.WriteString(" AND p.name = $name")
		params["name"] = criteria.Name
	}

	if criteria.Type != "" {
		queryBuilder.WriteString(" AND p.type = $type")
		params["type"] = string(criteria.Type)
	}

	if criteria.Scope != "" {
		queryBuilder.WriteString(" AND p.scope = $scope")
		params["scope"] = string(criteria.Scope)
	}

	if criteria.CredentialID != "" {
		queryBuilder.WriteString(" AND p.credentialId = $credentialId")
		params["credentialId"] = criteria.CredentialID
	}

	if criteria.ApplicationID != "" {
		queryBuilder.WriteString(" AND p.applicationId = $applicationId")
		params["applicationId"] = criteria.ApplicationID
	}

	if criteria.MinPriority > 0 {
		queryBuilder.WriteString(" AND p.priority >= $minPriority")
		params["minPriority"] = criteria.MinPriority
	}

	if criteria.MaxPriority > 0 {
		queryBuilder.WriteString(" AND p.priority <= $maxPriority")
		params["maxPriority"] = criteria.MaxPriority
	}

	if criteria.Active != nil {
		queryBuilder.WriteString(" AND p.active = $active")
		params["active"] = *criteria.Active
	}

	if !criteria.FromDate.IsZero() {
		queryBuilder.WriteString(" AND p.createdAt >= $fromDate")
		params["fromDate"] = criteria.FromDate.Format(time.RFC3339)
	}

	if !criteria.ToDate.IsZero() {
		queryBuilder.WriteString(" AND p.createdAt <= $toDate")
		params["toDate"] = criteria.ToDate.Format(time.RFC3339)
	}

	queryBuilder.WriteString(" RETURN p ORDER BY p.priority DESC, p.createdAt DESC")

	if criteria.Limit > 0 {
		queryBuilder.WriteString(" LIMIT $limit")
		params["limit"] = criteria.Limit
	}

	result, err := session.Run(queryBuilder.String(), params)
	if err != nil {
		logger.Error("Failed to execute search policies query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to execute search policies query: %w", err)
	}

	var policies []*model.Policy
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		policy, err := mapNodeToPolicy(node)
		if err != nil {
			logger.Error("Failed to map policy node to struct",
				zap.Error(err),
				zap.Duration("duration", time.Since(start)))
			return nil, fmt.Errorf("failed to map policy node to struct: %w", err)
		}
		policies = append(policies, policy)
	}

	logger.Info("Policies searched successfully",
		zap.Int("count", len(policies)),
		zap.Duration("duration", time.Since(start)))

	return policies, nil
}

// Helper function to create change details for audit log
func createChangeDetails(oldPolicy, newPolicy *model.Policy) map[string]interface{} {
	changes := make(map[string]interface{})
	if oldPolicy == nil {
		changes["action"] = "created"
		if newPolicy != nil {
			changes["type"] = string(newPolicy.Type)
			changes["scope"] = string(newPolicy.Scope)
		}
	} else if newPolicy == nil {
		changes["action"] = "deleted"
	} else {
		changes["action"] = "updated"
		if oldPolicy.Name != newPolicy.Name {
			changes["name"] = map[string]string{"old": oldPolicy.Name, "new": newPolicy.Name}
		}
		if oldPolicy.Priority != newPolicy.Priority {
			changes["priority"] = map[string]int{"old": oldPolicy.Priority, "new": newPolicy.Priority}
		}
		if oldPolicy.Active != newPolicy.Active {
			changes["active"] = map[string]bool{"old": oldPolicy.Active, "new": newPolicy.Active}
		}
	}
	return changes
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
		policy.CreatedAt = parseTime(createdAt)
	} else {
		return nil, fmt.Errorf("failed to assert type for policy createdAt: %v", props["createdAt"])
	}

	if updatedAt, ok := props["updatedAt"].(string); ok {
		policy.UpdatedAt = parseTime(updatedAt)
	} else {
		return nil, fmt.Errorf("failed to assert type for policy updatedAt: %v", props["updatedAt"])
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

// Helper function to parse time
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
