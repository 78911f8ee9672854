// api/controller/proxy_controller.go
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	pdp_model "github.com/open-warden/warden/api/pdp/model"
	"github.com/open-warden/warden/api/service"
	"github.com/open-warden/warden/api/util"
)

type ProxyController struct {
	proxyService service.IProxyService
}

func NewProxyController(proxyService service.IProxyService) *ProxyController {
	return &ProxyController{
		proxyService: proxyService,
	}
}

// RegisterRoutes registers the API routes
func (pc *ProxyController) RegisterRoutes(r *gin.RouterGroup) {
	proxy := r.Group("/proxy")
	{
		proxy.POST("/requests", pc.EvaluateRequest)
	}
}

// EvaluateRequest evaluates a proxied credential access request against the
// policies that govern it. Denied requests return 403, everything else 202.
func (pc *ProxyController) EvaluateRequest(c *gin.Context) {
	var request pdp_model.ProxyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid proxy request", err)
		return
	}

	// Identity, origin and timestamp come from the server, not the caller.
	applicationID, err := util.GetApplicationIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}
	request.ApplicationID = applicationID
	request.IP = c.ClientIP()
	request.Timestamp = time.Now().UTC()

	result, err := pc.proxyService.EvaluateRequest(c, request)
	if err != nil {
		if result.Status == pdp_model.StatusDenied {
			c.JSON(http.StatusForbidden, result)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to evaluate request", err)
		return
	}

	if result.Status == pdp_model.StatusDenied {
		c.JSON(http.StatusForbidden, result)
		return
	}

	c.JSON(http.StatusAccepted, result)
}
