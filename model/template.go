// api/model/template.go
package model

// PolicyTemplate is a named, credential-type-scoped policy preset. Templates
// are defined at build time and never persisted; applying one produces a
// concrete Policy.
type PolicyTemplate struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	Type            PolicyType             `json:"type"`
	Category        string                 `json:"category"`
	CredentialTypes []string               `json:"credential_types"`
	ConfigTemplate  map[string]interface{} `json:"config_template"`
	Scope           PolicyScope            `json:"scope"`
	Priority        int                    `json:"priority"`
	Recommended     bool                   `json:"recommended"`
}

// AppliesToCredentialType reports whether the template covers the given
// credential type. An empty CredentialTypes list means the template is not
// restricted to any particular type.
func (t *PolicyTemplate) AppliesToCredentialType(typeID string) bool {
	if len(t.CredentialTypes) == 0 {
		return true
	}
	for _, ct := range t.CredentialTypes {
		if ct == typeID {
			return true
		}
	}
	return false
}

// TemplateCustomization is the caller-supplied override applied last when a
// template is instantiated into a policy.
type TemplateCustomization struct {
	Name     string                 `json:"name,omitempty"`
	Priority *int                   `json:"priority,omitempty"`
	Config   map[string]interface{} `json:"config,omitempty"`
}

// PluginTemplateOverride is a plugin-reported adjustment to a template's
// config for credentials served by that plugin, keyed by policy type and
// template ID.
type PluginTemplateOverride struct {
	PolicyType PolicyType             `json:"policy_type"`
	TemplateID string                 `json:"template_id"`
	Config     map[string]interface{} `json:"config"`
}
