// test/mock/service.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

// MockPolicyService is a mock implementation of service.IPolicyService
type MockPolicyService struct {
	mock.Mock
}

func (m *MockPolicyService) CreatePolicy(ctx context.Context, policy model.Policy) (*model.Policy, error) {
	args := m.Called(ctx, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Policy), args.Error(1)
}

func (m *MockPolicyService) UpdatePolicy(ctx context.Context, policy model.Policy) (*model.Policy, error) {
	args := m.Called(ctx, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Policy), args.Error(1)
}

func (m *MockPolicyService) DeletePolicy(ctx context.Context, policyID string) error {
	args := m.Called(ctx, policyID)
	return args.Error(0)
}

func (m *MockPolicyService) GetPolicy(ctx context.Context, policyID string) (*model.Policy, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Policy), args.Error(1)
}

func (m *MockPolicyService) ListPolicies(ctx context.Context, limit int, offset int) ([]*model.Policy, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Policy), args.Error(1)
}

func (m *MockPolicyService) SearchPolicies(ctx context.Context, criteria model.PolicySearchCriteria) ([]*model.Policy, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Policy), args.Error(1)
}

func (m *MockPolicyService) BulkCreatePolicies(ctx context.Context, policies []model.Policy) ([]string, error) {
	args := m.Called(ctx, policies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockCredentialService is a mock implementation of service.ICredentialService
type MockCredentialService struct {
	mock.Mock
}

func (m *MockCredentialService) RegisterCredential(ctx context.Context, credential model.Credential) (*model.Credential, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Credential), args.Error(1)
}

func (m *MockCredentialService) GetCredential(ctx context.Context, credentialID string) (*model.Credential, error) {
	args := m.Called(ctx, credentialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Credential), args.Error(1)
}

func (m *MockCredentialService) ListCredentials(ctx context.Context, limit int, offset int) ([]*model.Credential, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Credential), args.Error(1)
}

func (m *MockCredentialService) DeleteCredential(ctx context.Context, credentialID string) error {
	args := m.Called(ctx, credentialID)
	return args.Error(0)
}

// MockProxyService is a mock implementation of service.IProxyService
type MockProxyService struct {
	mock.Mock
}

func (m *MockProxyService) EvaluateRequest(ctx context.Context, request pdp_model.ProxyRequest) (pdp_model.PolicyEvaluationResult, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(pdp_model.PolicyEvaluationResult), args.Error(1)
}

// MockTemplateService is a mock implementation of service.ITemplateService
type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) ListTemplates(ctx context.Context) []model.PolicyTemplate {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.PolicyTemplate)
}

func (m *MockTemplateService) GetTemplate(ctx context.Context, templateID string) (*model.PolicyTemplate, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PolicyTemplate), args.Error(1)
}

func (m *MockTemplateService) TemplatesForCredential(ctx context.Context, credentialID string, recommendedOnly bool) ([]model.PolicyTemplate, error) {
	args := m.Called(ctx, credentialID, recommendedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PolicyTemplate), args.Error(1)
}

func (m *MockTemplateService) ApplyTemplate(ctx context.Context, templateID, credentialID, applicationID string, customization model.TemplateCustomization) (*model.Policy, error) {
	args := m.Called(ctx, templateID, credentialID, applicationID, customization)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Policy), args.Error(1)
}

func (m *MockTemplateService) ApplyRecommendedTemplates(ctx context.Context, credentialID string, overrides []model.PluginTemplateOverride) ([]*model.Policy, error) {
	args := m.Called(ctx, credentialID, overrides)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Policy), args.Error(1)
}

func (m *MockTemplateService) HasAnyPolicies(ctx context.Context, credentialID string) (bool, error) {
	args := m.Called(ctx, credentialID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTemplateService) ApplyDefaultPolicies(ctx context.Context, credentialID string, overrides []model.PluginTemplateOverride) ([]*model.Policy, error) {
	args := m.Called(ctx, credentialID, overrides)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Policy), args.Error(1)
}

// MockCredentialReader is a mock implementation of service.CredentialReader
type MockCredentialReader struct {
	mock.Mock
}

func (m *MockCredentialReader) GetCredential(ctx context.Context, credentialID string) (*model.Credential, error) {
	args := m.Called(ctx, credentialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Credential), args.Error(1)
}

// MockPolicyCountReader is a mock implementation of service.PolicyCountReader
type MockPolicyCountReader struct {
	mock.Mock
}

func (m *MockPolicyCountReader) CountPoliciesForCredential(ctx context.Context, credentialID, credentialTypeID string) (int, error) {
	args := m.Called(ctx, credentialID, credentialTypeID)
	return args.Int(0), args.Error(1)
}

// MockPolicyFinder is a mock implementation of service.PolicyFinder
type MockPolicyFinder struct {
	mock.Mock
}

func (m *MockPolicyFinder) RetrieveRelevantPolicies(ctx context.Context, request *pdp_model.ProxyRequest, credentialTypeID string) ([]*model.Policy, error) {
	args := m.Called(ctx, request, credentialTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Policy), args.Error(1)
}

// MockUsageRecorder is a mock implementation of service.UsageRecorder
type MockUsageRecorder struct {
	mock.Mock
}

func (m *MockUsageRecorder) RecordUsage(ctx context.Context, credentialID, metricType string) error {
	args := m.Called(ctx, credentialID, metricType)
	return args.Error(0)
}
