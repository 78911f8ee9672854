// api/util/validation_util.go

package util

import (
	"fmt"

	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidatePolicy(policy model.Policy) error {
	if policy.Name == "" {
		return fmt.Errorf("policy name cannot be empty")
	}
	if !policy.Type.IsValid() {
		return fmt.Errorf("unknown policy type: %s", policy.Type)
	}
	if policy.Priority < 0 {
		return fmt.Errorf("policy priority cannot be negative")
	}
	switch policy.Scope {
	case model.ScopeGlobal:
	case model.ScopeCredential:
		if policy.CredentialID == "" && policy.CredentialTypeID == "" {
			return fmt.Errorf("credential-scoped policy must reference a credential or credential type")
		}
	case model.ScopeApplication:
		if policy.ApplicationID == "" {
			return fmt.Errorf("application-scoped policy must reference an application")
		}
	default:
		return fmt.Errorf("unknown policy scope: %s", policy.Scope)
	}
	if policy.Config == nil {
		return fmt.Errorf("policy config cannot be nil")
	}
	return nil
}

func (v *ValidationUtil) ValidateCredential(credential model.Credential) error {
	if credential.Name == "" {
		return fmt.Errorf("credential name cannot be empty")
	}
	if credential.TypeID == "" {
		return fmt.Errorf("credential type cannot be empty")
	}
	for _, op := range credential.Operations {
		if op.Operation == "" {
			return fmt.Errorf("credential operation name cannot be empty")
		}
		if op.RiskLevel < 0 || op.RiskLevel > 10 {
			return fmt.Errorf("operation %q risk level must be between 0 and 10", op.Operation)
		}
	}
	return nil
}

func (v *ValidationUtil) ValidateProxyRequest(request pdp_model.ProxyRequest) error {
	if request.ApplicationID == "" {
		return fmt.Errorf("request application ID cannot be empty")
	}
	if request.CredentialID == "" {
		return fmt.Errorf("request credential ID cannot be empty")
	}
	if request.Operation == "" {
		return fmt.Errorf("request operation cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateTemplateCustomization(customization model.TemplateCustomization) error {
	if customization.Priority != nil && *customization.Priority < 0 {
		return fmt.Errorf("template priority override cannot be negative")
	}
	return nil
}
