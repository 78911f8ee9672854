// api/controller/template_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	warden_errors "github.com/open-warden/warden/api/errors"
	"github.com/open-warden/warden/api/model"
	"github.com/open-warden/warden/api/service"
	"github.com/open-warden/warden/api/util"
)

type TemplateController struct {
	templateService service.ITemplateService
}

func NewTemplateController(templateService service.ITemplateService) *TemplateController {
	return &TemplateController{
		templateService: templateService,
	}
}

// RegisterRoutes registers the API routes
func (tc *TemplateController) RegisterRoutes(r *gin.RouterGroup) {
	templates := r.Group("/templates")
	{
		templates.GET("", tc.ListTemplates)
		templates.GET("/:id", tc.GetTemplate)
	}
	credentials := r.Group("/credentials")
	{
		credentials.GET("/:id/templates", tc.TemplatesForCredential)
		credentials.POST("/:id/templates/:templateId", tc.ApplyTemplate)
		credentials.POST("/:id/policies/defaults", tc.ApplyDefaultPolicies)
	}
}

// ListTemplates endpoint
func (tc *TemplateController) ListTemplates(c *gin.Context) {
	templates := tc.templateService.ListTemplates(c)
	c.JSON(http.StatusOK, templates)
}

// GetTemplate endpoint
func (tc *TemplateController) GetTemplate(c *gin.Context) {
	templateID := c.Param("id")

	template, err := tc.templateService.GetTemplate(c, templateID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve template", err)
		return
	}
	if template == nil {
		util.RespondWithError(c, http.StatusNotFound, "Template not found", warden_errors.ErrTemplateNotFound)
		return
	}

	c.JSON(http.StatusOK, template)
}

// TemplatesForCredential endpoint
func (tc *TemplateController) TemplatesForCredential(c *gin.Context) {
	credentialID := c.Param("id")
	recommendedOnly := c.Query("recommended") == "true"

	templates, err := tc.templateService.TemplatesForCredential(c, credentialID, recommendedOnly)
	if err != nil {
		if errors.Is(err, warden_errors.ErrCredentialNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Credential not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to list templates", err)
		}
		return
	}

	c.JSON(http.StatusOK, templates)
}

// ApplyTemplate endpoint. The request body carries an optional customization;
// an empty body applies the template as published.
func (tc *TemplateController) ApplyTemplate(c *gin.Context) {
	credentialID := c.Param("id")
	templateID := c.Param("templateId")

	var customization model.TemplateCustomization
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&customization); err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid template customization", err)
			return
		}
	}

	applicationID, err := util.GetApplicationIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	policy, err := tc.templateService.ApplyTemplate(c, templateID, credentialID, applicationID, customization)
	if err != nil {
		if errors.Is(err, warden_errors.ErrCredentialNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Credential not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to apply template", err)
		}
		return
	}
	if policy == nil {
		util.RespondWithError(c, http.StatusNotFound, "Template not found or not compatible with credential", warden_errors.ErrTemplateNotFound)
		return
	}

	c.JSON(http.StatusCreated, policy)
}

// ApplyDefaultPolicies endpoint. Seeds a credential that has no policies yet
// with the recommended template set for its type.
func (tc *TemplateController) ApplyDefaultPolicies(c *gin.Context) {
	credentialID := c.Param("id")

	var body struct {
		Overrides []model.PluginTemplateOverride `json:"overrides"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid override data", err)
			return
		}
	}

	policies, err := tc.templateService.ApplyDefaultPolicies(c, credentialID, body.Overrides)
	if err != nil {
		if errors.Is(err, warden_errors.ErrCredentialNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Credential not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to apply default policies", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"policies": policies, "count": len(policies)})
}
