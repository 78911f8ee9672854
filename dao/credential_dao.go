// api/dao/credential_dao.go
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	warden_errors "github.com/open-warden/warden/api/errors"
	logger "github.com/open-warden/warden/api/logging"
	"github.com/open-warden/warden/api/model"
)

type CredentialDAO struct {
	Driver neo4j.Driver
}

func NewCredentialDAO(driver neo4j.Driver) *CredentialDAO {
	dao := &CredentialDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint", zap.Error(err))
	}
	return dao
}

// EnsureUniqueConstraint ensures the unique constraint on the Credential ID
func (dao *CredentialDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error("Failed to close Neo4j session", zap.Error(err))
		}
	}()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_credential_id IF NOT EXISTS
        FOR (c:CREDENTIAL) REQUIRE c.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		if err != nil {
			logger.Error("Failed to create unique constraint", zap.Error(err))
			return nil, fmt.Errorf("failed to create unique constraint: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		logger.Error("Failed to ensure unique constraint on Credential ID", zap.Error(err))
		return err
	}
	return nil
}

// UpsertCredential creates or refreshes credential metadata in Neo4j.
func (dao *CredentialDAO) UpsertCredential(ctx context.Context, credential model.Credential) (string, error) {
	start := time.Now()
	logger.Info("Upserting credential", zap.String("credentialName", credential.Name))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if credential.ID == "" {
		credential.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
            MERGE (c:CREDENTIAL {id: $id})
            ON CREATE SET c += $props, c.createdAt = $now
            ON MATCH SET c += $props
            RETURN c.id as id
        `

		operationsJSON, _ := json.Marshal(credential.Operations)

		parameters := map[string]interface{}{
			"id":  credential.ID,
			"now": time.Now().Format(time.RFC3339),
			"props": map[string]interface{}{
				"name":       credential.Name,
				"typeId":     credential.TypeID,
				"operations": string(operationsJSON),
				"updatedAt":  time.Now().Format(time.RFC3339),
			},
		}
		runResult, err := transaction.Run(query, parameters)
		if err != nil {
			return nil, warden_errors.ErrDatabaseOperation
		}
		if runResult.Next() {
			id, found := runResult.Record().Get("id")
			if !found {
				return nil, warden_errors.ErrInternalServer
			}
			return id, nil
		}
		return nil, warden_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to upsert credential",
			zap.Error(err),
			zap.String("credentialName", credential.Name),
			zap.Duration("duration", duration))
		return "", err
	}

	credentialID := fmt.Sprintf("%v", result)
	logger.Info("Credential upserted successfully",
		zap.String("credentialID", credentialID),
		zap.Duration("duration", duration))
	return credentialID, nil
}

// GetCredential retrieves credential metadata from Neo4j by its ID
func (dao *CredentialDAO) GetCredential(ctx context.Context, credentialID string) (*model.Credential, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (c:CREDENTIAL {id: $id})
    RETURN c
    `
	result, err := session.Run(query, map[string]interface{}{"id": credentialID})
	if err != nil {
		logger.Error("Failed to execute get credential query",
			zap.Error(err),
			zap.String("credentialID", credentialID),
			zap.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to execute get credential query: %w", err)
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		credential, err := mapNodeToCredential(node)
		if err != nil {
			logger.Error("Failed to map credential node to struct",
				zap.Error(err),
				zap.String("credentialID", credentialID),
				zap.Duration("duration", time.Since(start)))
			return nil, fmt.Errorf("failed to map credential node to struct: %w", err)
		}
		return credential, nil
	}

	logger.Warn("Credential not found",
		zap.String("credentialID", credentialID),
		zap.Duration("duration", time.Since(start)))
	return nil, warden_errors.ErrCredentialNotFound
}

// ListCredentials retrieves all credentials from Neo4j with pagination
func (dao *CredentialDAO) ListCredentials(ctx context.Context, limit int, offset int) ([]*model.Credential, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (c:CREDENTIAL)
    RETURN c
    ORDER BY c.createdAt DESC
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		logger.Error("Failed to execute list credentials query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to execute list credentials query: %w", err)
	}

	var credentials []*model.Credential
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		credential, err := mapNodeToCredential(node)
		if err != nil {
			logger.Error("Failed to map credential node to struct",
				zap.Error(err),
				zap.Duration("duration", time.Since(start)))
			return nil, fmt.Errorf("failed to map credential node to struct: %w", err)
		}
		credentials = append(credentials, credential)
	}

	return credentials, nil
}

// DeleteCredential deletes credential metadata from Neo4j
func (dao *CredentialDAO) DeleteCredential(ctx context.Context, credentialID string) error {
	start := time.Now()
	logger.Info("Deleting credential", zap.String("credentialID", credentialID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (c:CREDENTIAL {id: $id})
        DETACH DELETE c
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": credentialID})
		if err != nil {
			return nil, fmt.Errorf("failed to execute delete query: %w", err)
		}
		summary, err := result.Consume()
		if err != nil {
			return nil, fmt.Errorf("failed to consume delete result: %w", err)
		}
		if summary.Counters().NodesDeleted() == 0 {
			return nil, warden_errors.ErrCredentialNotFound
		}
		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete credential",
			zap.Error(err),
			zap.String("credentialID", credentialID),
			zap.Duration("duration", duration))
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	logger.Info("Credential deleted successfully",
		zap.String("credentialID", credentialID),
		zap.Duration("duration", duration))
	return nil
}

// Helper function to map Neo4j Node to Credential struct
func mapNodeToCredential(node neo4j.Node) (*model.Credential, error) {
	props := node.Props
	credential := &model.Credential{}

	if id, ok := props["id"].(string); ok {
		credential.ID = id
	} else {
		return nil, fmt.Errorf("failed to assert type for credential ID: %v", props["id"])
	}

	if name, ok := props["name"].(string); ok {
		credential.Name = name
	} else {
		return nil, fmt.Errorf("failed to assert type for credential name: %v", props["name"])
	}

	if typeID, ok := props["typeId"].(string); ok {
		credential.TypeID = typeID
	} else {
		return nil, fmt.Errorf("failed to assert type for credential typeId: %v", props["typeId"])
	}

	if operationsJSON, ok := props["operations"].(string); ok {
		if err := json.Unmarshal([]byte(operationsJSON), &credential.Operations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal credential operations: %w", err)
		}
	}

	if createdAt, ok := props["createdAt"].(string); ok {
		credential.CreatedAt = parseTime(createdAt)
	}

	if updatedAt, ok := props["updatedAt"].(string); ok {
		credential.UpdatedAt = parseTime(updatedAt)
	}

	return credential, nil
}
