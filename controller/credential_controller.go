// api/controller/credential_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	warden_errors "github.com/open-warden/warden/api/errors"
	"github.com/open-warden/warden/api/model"
	"github.com/open-warden/warden/api/service"
	"github.com/open-warden/warden/api/util"
	helper_util "github.com/open-warden/warden/api/util/helper"
)

type CredentialController struct {
	credentialService service.ICredentialService
}

func NewCredentialController(credentialService service.ICredentialService) *CredentialController {
	return &CredentialController{
		credentialService: credentialService,
	}
}

// RegisterRoutes registers the API routes
func (cc *CredentialController) RegisterRoutes(r *gin.RouterGroup) {
	credentials := r.Group("/credentials")
	{
		credentials.POST("", cc.RegisterCredential)
		credentials.GET("/:id", cc.GetCredential)
		credentials.GET("", cc.ListCredentials)
		credentials.DELETE("/:id", cc.DeleteCredential)
	}
}

// RegisterCredential endpoint
func (cc *CredentialController) RegisterCredential(c *gin.Context) {
	var credential model.Credential
	if err := c.ShouldBindJSON(&credential); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid credential data", warden_errors.ErrInvalidCredentialData)
		return
	}

	registered, err := cc.credentialService.RegisterCredential(c, credential)
	if err != nil {
		if errors.Is(err, warden_errors.ErrInvalidCredentialData) {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid credential data", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to register credential", err)
		}
		return
	}

	c.JSON(http.StatusCreated, registered)
}

// GetCredential endpoint
func (cc *CredentialController) GetCredential(c *gin.Context) {
	credentialID := c.Param("id")

	credential, err := cc.credentialService.GetCredential(c, credentialID)
	if err != nil {
		if errors.Is(err, warden_errors.ErrCredentialNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Credential not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve credential", err)
		}
		return
	}

	c.JSON(http.StatusOK, credential)
}

// ListCredentials endpoint
func (cc *CredentialController) ListCredentials(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	credentials, err := cc.credentialService.ListCredentials(c, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list credentials", err)
		return
	}

	c.JSON(http.StatusOK, credentials)
}

// DeleteCredential endpoint
func (cc *CredentialController) DeleteCredential(c *gin.Context) {
	credentialID := c.Param("id")

	if err := cc.credentialService.DeleteCredential(c, credentialID); err != nil {
		if errors.Is(err, warden_errors.ErrCredentialNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Credential not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete credential", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
