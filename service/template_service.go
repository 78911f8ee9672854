package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/open-warden/warden/api/catalog"
	logger "github.com/open-warden/warden/api/logging"
	"github.com/open-warden/warden/api/model"
	"github.com/open-warden/warden/api/util"
)

// Risk-level cutoffs used to seed operation lists from plugin metadata when a
// template ships with an empty operations list.
const (
	highRiskFloor   = 7
	readOnlyCeiling = 3
)

// CredentialReader is the slice of the credential DAO the template service
// needs.
type CredentialReader interface {
	GetCredential(ctx context.Context, credentialID string) (*model.Credential, error)
}

// PolicyCountReader reports how many policies already target a credential.
type PolicyCountReader interface {
	CountPoliciesForCredential(ctx context.Context, credentialID, credentialTypeID string) (int, error)
}

// ITemplateService defines the interface for policy template operations
type ITemplateService interface {
	ListTemplates(ctx context.Context) []model.PolicyTemplate
	GetTemplate(ctx context.Context, templateID string) (*model.PolicyTemplate, error)
	TemplatesForCredential(ctx context.Context, credentialID string, recommendedOnly bool) ([]model.PolicyTemplate, error)
	ApplyTemplate(ctx context.Context, templateID, credentialID, applicationID string, customization model.TemplateCustomization) (*model.Policy, error)
	ApplyRecommendedTemplates(ctx context.Context, credentialID string, overrides []model.PluginTemplateOverride) ([]*model.Policy, error)
	HasAnyPolicies(ctx context.Context, credentialID string) (bool, error)
	ApplyDefaultPolicies(ctx context.Context, credentialID string, overrides []model.PluginTemplateOverride) ([]*model.Policy, error)
}

// TemplateService instantiates catalog templates into concrete policies for a
// credential.
type TemplateService struct {
	credentials     CredentialReader
	policyCounts    PolicyCountReader
	policyService   IPolicyService
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
}

var _ ITemplateService = &TemplateService{}

func NewTemplateService(credentials CredentialReader, policyCounts PolicyCountReader, policyService IPolicyService, validationUtil *util.ValidationUtil, notificationSvc *util.NotificationService) *TemplateService {
	return &TemplateService{
		credentials:     credentials,
		policyCounts:    policyCounts,
		policyService:   policyService,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
	}
}

// ListTemplates returns the whole catalog.
func (s *TemplateService) ListTemplates(ctx context.Context) []model.PolicyTemplate {
	return catalog.All()
}

// GetTemplate returns one template, or (nil, nil) when the ID is unknown.
func (s *TemplateService) GetTemplate(ctx context.Context, templateID string) (*model.PolicyTemplate, error) {
	t, ok := catalog.ByID(templateID)
	if !ok {
		return nil, nil
	}
	return t, nil
}

// TemplatesForCredential returns the templates compatible with a credential's
// type.
func (s *TemplateService) TemplatesForCredential(ctx context.Context, credentialID string, recommendedOnly bool) ([]model.PolicyTemplate, error) {
	credential, err := s.credentials.GetCredential(ctx, credentialID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	if recommendedOnly {
		return catalog.Recommended(credential.TypeID), nil
	}
	return catalog.ForCredentialType(credential.TypeID), nil
}

// ApplyTemplate instantiates a template into a policy for a credential and
// persists it. Returns (nil, nil) when the template does not exist or does not
// apply to the credential's type; a missing credential is an error instead
// (ErrCredentialNotFound, which the HTTP layer maps to 404). Applying the same
// template twice creates two policies; callers wanting idempotency check
// HasAnyPolicies first.
func (s *TemplateService) ApplyTemplate(ctx context.Context, templateID, credentialID, applicationID string, customization model.TemplateCustomization) (*model.Policy, error) {
	template, ok := catalog.ByID(templateID)
	if !ok {
		logger.Warn("Unknown policy template", zap.String("templateID", templateID))
		return nil, nil
	}

	credential, err := s.credentials.GetCredential(ctx, credentialID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	if !template.AppliesToCredentialType(credential.TypeID) {
		logger.Warn("Template does not apply to credential type",
			zap.String("templateID", templateID),
			zap.String("credentialType", credential.TypeID))
		return nil, nil
	}

	if err := s.validationUtil.ValidateTemplateCustomization(customization); err != nil {
		return nil, fmt.Errorf("invalid customization: %w", err)
	}

	policy := s.instantiate(template, credential, applicationID, nil, customization)

	created, err := s.policyService.CreatePolicy(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to persist templated policy: %w", err)
	}

	if err := s.notificationSvc.NotifyTemplateApplied(ctx, templateID, credentialID, created.ID); err != nil {
		logger.Warn("Failed to send template notification", zap.Error(err), zap.String("templateID", templateID))
	}

	logger.Info("Policy template applied",
		zap.String("templateID", templateID),
		zap.String("credentialID", credentialID),
		zap.String("policyID", created.ID))
	return created, nil
}

// ApplyRecommendedTemplates applies every recommended template for the
// credential's type. A failure on one template is logged and skipped so the
// rest still apply.
func (s *TemplateService) ApplyRecommendedTemplates(ctx context.Context, credentialID string, overrides []model.PluginTemplateOverride) ([]*model.Policy, error) {
	credential, err := s.credentials.GetCredential(ctx, credentialID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	var created []*model.Policy
	for _, template := range catalog.Recommended(credential.TypeID) {
		template := template
		override := findOverride(overrides, &template)
		policy := s.instantiate(&template, credential, "", override, model.TemplateCustomization{})

		persisted, err := s.policyService.CreatePolicy(ctx, policy)
		if err != nil {
			logger.Warn("Skipping recommended template",
				zap.Error(err),
				zap.String("templateID", template.ID),
				zap.String("credentialID", credentialID))
			continue
		}
		created = append(created, persisted)
	}

	logger.Info("Recommended templates applied",
		zap.String("credentialID", credentialID),
		zap.Int("count", len(created)))
	return created, nil
}

// HasAnyPolicies reports whether any policy already targets the credential,
// directly or through its credential type.
func (s *TemplateService) HasAnyPolicies(ctx context.Context, credentialID string) (bool, error) {
	credential, err := s.credentials.GetCredential(ctx, credentialID)
	if err != nil {
		return false, fmt.Errorf("failed to load credential: %w", err)
	}
	count, err := s.policyCounts.CountPoliciesForCredential(ctx, credentialID, credential.TypeID)
	if err != nil {
		return false, fmt.Errorf("failed to count policies: %w", err)
	}
	return count > 0, nil
}

// ApplyDefaultPolicies bootstraps a credential that has no policies yet with
// the recommended set. A credential that already has any policy is left
// untouched.
func (s *TemplateService) ApplyDefaultPolicies(ctx context.Context, credentialID string, overrides []model.PluginTemplateOverride) ([]*model.Policy, error) {
	hasPolicies, err := s.HasAnyPolicies(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if hasPolicies {
		logger.Info("Credential already has policies, skipping defaults",
			zap.String("credentialID", credentialID))
		return nil, nil
	}
	return s.ApplyRecommendedTemplates(ctx, credentialID, overrides)
}

// instantiate builds the concrete policy: template config first, then the
// plugin override, then the caller customization, each layer winning over the
// previous one. Operation lists left empty by the template are seeded from the
// credential's plugin-reported risk levels.
func (s *TemplateService) instantiate(template *model.PolicyTemplate, credential *model.Credential, applicationID string, override *model.PluginTemplateOverride, customization model.TemplateCustomization) model.Policy {
	config := make(map[string]interface{}, len(template.ConfigTemplate))
	for k, v := range template.ConfigTemplate {
		config[k] = v
	}
	if override != nil {
		for k, v := range override.Config {
			config[k] = v
		}
	}
	for k, v := range customization.Config {
		config[k] = v
	}

	seedOperations(config, template.Type, credential)

	name := template.Name
	if customization.Name != "" {
		name = customization.Name
	}
	priority := template.Priority
	if customization.Priority != nil {
		priority = *customization.Priority
	}

	policy := model.Policy{
		Type:             template.Type,
		Name:             name,
		Description:      template.Description,
		Scope:            template.Scope,
		CredentialID:     credential.ID,
		CredentialTypeID: "",
		Config:           config,
		Priority:         priority,
		Active:           true,
	}
	if template.Scope == model.ScopeApplication {
		policy.ApplicationID = applicationID
	}
	return policy
}

// seedOperations fills an empty operations list from the credential's risk
// metadata: approval gates cover the high-risk operations, allow lists cover
// the low-risk ones.
func seedOperations(config map[string]interface{}, policyType model.PolicyType, credential *model.Credential) {
	ops, present := config["operations"].([]interface{})
	if !present || len(ops) > 0 || len(credential.Operations) == 0 {
		return
	}

	var seeded []string
	switch policyType {
	case model.PolicyTypeManualApproval, model.PolicyTypeApprovalChain:
		seeded = credential.OperationsAtOrAbove(highRiskFloor)
	case model.PolicyTypeAllowList:
		seeded = credential.OperationsAtOrBelow(readOnlyCeiling)
	default:
		return
	}

	out := make([]interface{}, len(seeded))
	for i, op := range seeded {
		out[i] = op
	}
	config["operations"] = out
}

func findOverride(overrides []model.PluginTemplateOverride, template *model.PolicyTemplate) *model.PluginTemplateOverride {
	for i := range overrides {
		if overrides[i].TemplateID == template.ID {
			return &overrides[i]
		}
		if overrides[i].TemplateID == "" && overrides[i].PolicyType == template.Type {
			return &overrides[i]
		}
	}
	return nil
}
