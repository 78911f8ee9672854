// test/mock/audit.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/open-warden/warden/api/audit"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) LogEntry(ctx context.Context, entry audit.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditService) LogDecision(ctx context.Context, request pdp_model.ProxyRequest, result pdp_model.PolicyEvaluationResult) error {
	args := m.Called(ctx, request, result)
	return args.Error(0)
}

func (m *MockAuditService) LogPolicyChange(ctx context.Context, action, policyID string, details interface{}) error {
	args := m.Called(ctx, action, policyID, details)
	return args.Error(0)
}

func (m *MockAuditService) QueryLogs(ctx context.Context, query audit.AuditQuery) ([]audit.AuditLog, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]audit.AuditLog), args.Error(1)
}
