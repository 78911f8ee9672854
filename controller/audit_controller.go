// api/controller/audit_controller.go
package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/open-warden/warden/api/audit"
	"github.com/open-warden/warden/api/util"
	helper_util "github.com/open-warden/warden/api/util/helper"
)

type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	auditGroup := r.Group("/audit")
	{
		auditGroup.GET("/decisions", ac.QueryDecisions)
	}
}

// QueryDecisions returns proxy decision audit entries matching the query
// parameters. Timestamps are RFC3339.
func (ac *AuditController) QueryDecisions(c *gin.Context) {
	query := audit.AuditQuery{
		ApplicationID: c.Query("application_id"),
		CredentialID:  c.Query("credential_id"),
		Decision:      c.Query("decision"),
		Action:        audit.ActionProxyRequest,
	}

	var err error
	if from := c.Query("from"); from != "" {
		query.From, err = helper_util.ParseTime(from)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid from timestamp", err)
			return
		}
	}
	if to := c.Query("to"); to != "" {
		query.To, err = helper_util.ParseTime(to)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid to timestamp", err)
			return
		}
	}
	if size := c.Query("size"); size != "" {
		query.Size, err = strconv.Atoi(size)
		if err != nil || query.Size < 0 {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid size parameter", err)
			return
		}
	}

	logs, err := ac.auditService.QueryLogs(c, query)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query audit logs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"decisions": logs, "count": len(logs), "queried_at": time.Now().UTC()})
}
