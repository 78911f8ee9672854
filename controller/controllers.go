// api/controller/controllers.go
package controller

import "github.com/open-warden/warden/api/service"

type Controllers struct {
	Policy     *PolicyController
	Credential *CredentialController
	Proxy      *ProxyController
	Template   *TemplateController
	Audit      *AuditController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Policy:     NewPolicyController(services.Policy),
		Credential: NewCredentialController(services.Credential),
		Proxy:      NewProxyController(services.Proxy),
		Template:   NewTemplateController(services.Template),
		Audit:      NewAuditController(services.Audit),
	}
}
