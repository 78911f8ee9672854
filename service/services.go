// api/service/services.go
package service

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"

	"github.com/open-warden/warden/api/audit"
	"github.com/open-warden/warden/api/dao"
	pdp_dao "github.com/open-warden/warden/api/pdp/dao"
	"github.com/open-warden/warden/api/pdp/engine"
	"github.com/open-warden/warden/api/util"
)

type Services struct {
	Policy     IPolicyService
	Credential ICredentialService
	Template   ITemplateService
	Proxy      IProxyService
	Audit      audit.Service
}

func InitializeServices(
	driver neo4j.Driver,
	redisClient *redis.Client,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	cacheService *util.CacheService,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) (*Services, error) {
	policyDAO := dao.NewPolicyDAO(driver, auditService)
	credentialDAO := dao.NewCredentialDAO(driver)
	retrievalDAO := pdp_dao.NewPolicyRetrievalDAO(driver)
	usageDAO := pdp_dao.NewUsageMetricsDAO(redisClient)
	counterDAO := pdp_dao.NewPolicyCounterDAO(redisClient)

	policyEvaluator := engine.NewPolicyEvaluator(usageDAO, counterDAO)
	requestEvaluator := engine.NewRequestEvaluator(policyEvaluator)

	policyService := NewPolicyService(policyDAO, validationUtil, cacheService, notificationSvc, eventBus)

	services := &Services{
		Policy:     policyService,
		Credential: NewCredentialService(credentialDAO, validationUtil, cacheService, eventBus),
		Template:   NewTemplateService(credentialDAO, policyDAO, policyService, validationUtil, notificationSvc),
		Proxy:      NewProxyService(credentialDAO, retrievalDAO, requestEvaluator, usageDAO, auditService, notificationSvc, validationUtil),
		Audit:      auditService,
	}

	return services, nil
}
