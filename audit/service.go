package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	logger "github.com/open-warden/warden/api/logging"
	"github.com/open-warden/warden/api/pdp/model"
)

type Service interface {
	LogEntry(ctx context.Context, entry AuditLog) error
	LogDecision(ctx context.Context, request model.ProxyRequest, result model.PolicyEvaluationResult) error
	LogPolicyChange(ctx context.Context, action, policyID string, details interface{}) error
	QueryLogs(ctx context.Context, query AuditQuery) ([]AuditLog, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) LogEntry(ctx context.Context, entry AuditLog) error {
	return s.repo.LogEntry(ctx, entry)
}

// LogDecision records the outcome of a proxy request evaluation.
func (s *service) LogDecision(ctx context.Context, request model.ProxyRequest, result model.PolicyEvaluationResult) error {
	entry := AuditLog{
		Timestamp:     time.Now().UTC(),
		ApplicationID: request.ApplicationID,
		CredentialID:  request.CredentialID,
		Action:        ActionProxyRequest,
		Operation:     request.Operation,
		Decision:      string(result.Status),
		PolicyID:      result.PolicyID,
		Reason:        result.Reason,
	}
	if err := s.repo.LogEntry(ctx, entry); err != nil {
		logger.Error("Failed to write decision audit log", zap.Error(err), zap.String("requestID", request.ID))
		return err
	}
	return nil
}

// LogPolicyChange records a policy lifecycle action with its change details.
func (s *service) LogPolicyChange(ctx context.Context, action, policyID string, details interface{}) error {
	var raw json.RawMessage
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return err
		}
		raw = data
	}
	entry := AuditLog{
		Timestamp:     time.Now().UTC(),
		Action:        action,
		PolicyID:      policyID,
		ChangeDetails: raw,
	}
	return s.repo.LogEntry(ctx, entry)
}

func (s *service) QueryLogs(ctx context.Context, query AuditQuery) ([]AuditLog, error) {
	return s.repo.QueryLogs(ctx, query)
}
