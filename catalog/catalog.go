// api/catalog/catalog.go
package catalog

import (
	"github.com/open-warden/warden/api/model"
)

// The template catalog is a fixed, in-memory table of policy presets, built
// once at package load and never mutated. Templates with an empty
// CredentialTypes list apply to every credential type.

const (
	CategorySecurity = "security"
	CategoryTime     = "time"
	CategoryNetwork  = "network"
	CategoryVolume   = "volume"
	CategoryApproval = "approval"
)

var templates = []model.PolicyTemplate{
	{
		ID:              "read-only",
		Name:            "Read-only access",
		Description:     "Restricts the application to low-risk read operations reported by the credential's plugin.",
		Type:            model.PolicyTypeAllowList,
		Category:        CategorySecurity,
		CredentialTypes: []string{"postgres", "mysql", "mongodb", "redis"},
		ConfigTemplate: map[string]interface{}{
			"operations": []interface{}{},
			"parameters": map[string]interface{}{},
		},
		Scope:       model.ScopeCredential,
		Priority:    50,
		Recommended: true,
	},
	{
		ID:              "block-destructive",
		Name:            "Block destructive operations",
		Description:     "Denies schema- and data-destroying operations outright.",
		Type:            model.PolicyTypeDenyList,
		Category:        CategorySecurity,
		CredentialTypes: []string{"postgres", "mysql", "mongodb"},
		ConfigTemplate: map[string]interface{}{
			"operations": []interface{}{"drop_table", "drop_database", "truncate"},
		},
		Scope:       model.ScopeCredential,
		Priority:    90,
		Recommended: true,
	},
	{
		ID:          "sql-write-guard",
		Name:        "SQL write guard",
		Description: "Blocks queries that write unless explicitly whitelisted.",
		Type:        model.PolicyTypePatternMatch,
		Category:    CategorySecurity,
		CredentialTypes: []string{
			"postgres", "mysql",
		},
		ConfigTemplate: map[string]interface{}{
			"patterns": []interface{}{
				map[string]interface{}{"parameterName": "query", "pattern": `^\s*(?i:SELECT)`, "allow": true},
				map[string]interface{}{"parameterName": "query", "pattern": `^\s*(?i:INSERT|UPDATE|DELETE|DROP|ALTER|TRUNCATE)`, "allow": false},
			},
		},
		Scope:    model.ScopeCredential,
		Priority: 70,
	},
	{
		ID:          "business-hours",
		Name:        "Business hours only",
		Description: "Allows access Monday through Friday, 09:00-17:59 UTC.",
		Type:        model.PolicyTypeTimeBased,
		Category:    CategoryTime,
		ConfigTemplate: map[string]interface{}{
			"recurringSchedule": map[string]interface{}{
				"daysOfWeek": []interface{}{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
				"hoursOfDay": []interface{}{9, 10, 11, 12, 13, 14, 15, 16, 17},
			},
			"timeZone": "UTC",
		},
		Scope:    model.ScopeCredential,
		Priority: 40,
	},
	{
		ID:          "out-of-hours-approval",
		Name:        "Out-of-hours approval",
		Description: "Requires approval for access outside working hours.",
		Type:        model.PolicyTypeContextAware,
		Category:    CategoryTime,
		ConfigTemplate: map[string]interface{}{
			"conditions": []interface{}{
				map[string]interface{}{"factor": "time_of_day", "operator": "less_than", "value": 8, "action": "require_approval"},
				map[string]interface{}{"factor": "time_of_day", "operator": "greater_than", "value": 18, "action": "require_approval"},
			},
			"defaultAction": "allow",
		},
		Scope:    model.ScopeCredential,
		Priority: 35,
	},
	{
		ID:          "office-network",
		Name:        "Office network only",
		Description: "Restricts access to private office address ranges.",
		Type:        model.PolicyTypeIPRestriction,
		Category:    CategoryNetwork,
		ConfigTemplate: map[string]interface{}{
			"allowedIps":    []interface{}{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
			"deniedIps":     []interface{}{},
			"defaultAction": "deny",
		},
		Scope:    model.ScopeCredential,
		Priority: 60,
	},
	{
		ID:          "request-rate-cap",
		Name:        "Request rate cap",
		Description: "Caps request volume per minute across all operations.",
		Type:        model.PolicyTypeRateLimiting,
		Category:    CategoryVolume,
		ConfigTemplate: map[string]interface{}{
			"maxRequests": 120,
			"timeWindow":  60,
		},
		Scope:       model.ScopeCredential,
		Priority:    30,
		Recommended: true,
	},
	{
		ID:          "data-volume-cap",
		Name:        "Daily data volume cap",
		Description: "Denies access once the credential's daily data volume is exhausted.",
		Type:        model.PolicyTypeUsageThreshold,
		Category:    CategoryVolume,
		ConfigTemplate: map[string]interface{}{
			"thresholdType": "data_volume",
			"maxValue":      1073741824,
			"timeWindow":    86400,
		},
		Scope:    model.ScopeCredential,
		Priority: 25,
	},
	{
		ID:          "daily-use-cap",
		Name:        "Daily use cap",
		Description: "Limits how often a credential can be used per day.",
		Type:        model.PolicyTypeCountBased,
		Category:    CategoryVolume,
		ConfigTemplate: map[string]interface{}{
			"maxCount":    100,
			"resetPeriod": "daily",
		},
		Scope:    model.ScopeCredential,
		Priority: 20,
	},
	{
		ID:          "high-risk-approval",
		Name:        "High-risk operation approval",
		Description: "Escalates high-risk operations reported by the credential's plugin to a human.",
		Type:        model.PolicyTypeManualApproval,
		Category:    CategoryApproval,
		ConfigTemplate: map[string]interface{}{
			"operations": []interface{}{},
		},
		Scope:       model.ScopeCredential,
		Priority:    100,
		Recommended: true,
	},
	{
		ID:          "change-approval-chain",
		Name:        "Change approval chain",
		Description: "Routes every operation through a multi-step approval chain.",
		Type:        model.PolicyTypeApprovalChain,
		Category:    CategoryApproval,
		ConfigTemplate: map[string]interface{}{
			"approvalSteps":   []interface{}{"team-lead", "security"},
			"expirationHours": 24,
		},
		Scope:    model.ScopeCredential,
		Priority: 95,
	},
}

var byID = func() map[string]*model.PolicyTemplate {
	m := make(map[string]*model.PolicyTemplate, len(templates))
	for i := range templates {
		m[templates[i].ID] = &templates[i]
	}
	return m
}()

// All returns every template in the catalog.
func All() []model.PolicyTemplate {
	out := make([]model.PolicyTemplate, len(templates))
	copy(out, templates)
	return out
}

// ByID looks up a template by its ID.
func ByID(id string) (*model.PolicyTemplate, bool) {
	t, ok := byID[id]
	return t, ok
}

// ForCredentialType returns the templates applicable to the given credential
// type.
func ForCredentialType(typeID string) []model.PolicyTemplate {
	var out []model.PolicyTemplate
	for _, t := range templates {
		if t.AppliesToCredentialType(typeID) {
			out = append(out, t)
		}
	}
	return out
}

// Recommended returns the templates applicable to the given credential type
// that are recommended by default.
func Recommended(typeID string) []model.PolicyTemplate {
	var out []model.PolicyTemplate
	for _, t := range ForCredentialType(typeID) {
		if t.Recommended {
			out = append(out, t)
		}
	}
	return out
}

// ByCategory groups the whole catalog by category.
func ByCategory() map[string][]model.PolicyTemplate {
	out := make(map[string][]model.PolicyTemplate)
	for _, t := range templates {
		out[t.Category] = append(out[t.Category], t)
	}
	return out
}
