package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/open-warden/warden/api/audit"
	logger "github.com/open-warden/warden/api/logging"
	"github.com/open-warden/warden/api/model"
	"github.com/open-warden/warden/api/pdp/engine"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
	"github.com/open-warden/warden/api/util"
)

// PolicyFinder loads the policies applicable to one proxy request.
type PolicyFinder interface {
	RetrieveRelevantPolicies(ctx context.Context, request *pdp_model.ProxyRequest, credentialTypeID string) ([]*model.Policy, error)
}

// UsageRecorder appends usage events consumed by threshold and rate policies.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, credentialID, metricType string) error
}

// IProxyService defines the interface for proxy request evaluation
type IProxyService interface {
	EvaluateRequest(ctx context.Context, request pdp_model.ProxyRequest) (pdp_model.PolicyEvaluationResult, error)
}

// ProxyService is the decision point for credential access: it assembles the
// applicable policy set, runs the evaluation engine, records usage, and audits
// every outcome.
type ProxyService struct {
	credentials     CredentialReader
	policyFinder    PolicyFinder
	evaluator       *engine.RequestEvaluator
	usage           UsageRecorder
	auditService    audit.Service
	notificationSvc *util.NotificationService
	validationUtil  *util.ValidationUtil
}

var _ IProxyService = &ProxyService{}

func NewProxyService(
	credentials CredentialReader,
	policyFinder PolicyFinder,
	evaluator *engine.RequestEvaluator,
	usage UsageRecorder,
	auditService audit.Service,
	notificationSvc *util.NotificationService,
	validationUtil *util.ValidationUtil,
) *ProxyService {
	return &ProxyService{
		credentials:     credentials,
		policyFinder:    policyFinder,
		evaluator:       evaluator,
		usage:           usage,
		auditService:    auditService,
		notificationSvc: notificationSvc,
		validationUtil:  validationUtil,
	}
}

// EvaluateRequest produces exactly one decision for the request. Failure to
// load the policy set denies the request rather than letting it through
// unevaluated.
func (s *ProxyService) EvaluateRequest(ctx context.Context, request pdp_model.ProxyRequest) (pdp_model.PolicyEvaluationResult, error) {
	if err := s.validationUtil.ValidateProxyRequest(request); err != nil {
		return pdp_model.Denied(err.Error()), fmt.Errorf("invalid proxy request: %w", err)
	}

	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	if request.Timestamp.IsZero() {
		request.Timestamp = time.Now().UTC()
	}

	credentialTypeID := ""
	credential, err := s.credentials.GetCredential(ctx, request.CredentialID)
	if err != nil {
		logger.Warn("Failed to load credential for evaluation",
			zap.Error(err),
			zap.String("credentialID", request.CredentialID))
		result := pdp_model.Denied("credential not found")
		s.recordDecision(ctx, request, result)
		return result, nil
	}
	credentialTypeID = credential.TypeID

	policies, err := s.policyFinder.RetrieveRelevantPolicies(ctx, &request, credentialTypeID)
	if err != nil {
		logger.Error("Failed to retrieve policies, denying request",
			zap.Error(err),
			zap.String("requestID", request.ID))
		result := pdp_model.Denied("policy retrieval failed")
		s.recordDecision(ctx, request, result)
		return result, nil
	}

	start := time.Now()
	result := s.evaluator.EvaluateRequest(ctx, &request, policies)
	logger.Info("Proxy request evaluated",
		zap.String("requestID", request.ID),
		zap.String("status", string(result.Status)),
		zap.Int("policyCount", len(policies)),
		zap.Duration("duration", time.Since(start)))

	if result.Status == pdp_model.StatusApproved {
		s.recordUsage(ctx, request)
	}
	if result.Status == pdp_model.StatusPending {
		if err := s.notificationSvc.NotifyPendingApproval(ctx, request, result); err != nil {
			logger.Warn("Failed to notify approvers", zap.Error(err), zap.String("requestID", request.ID))
		}
	}

	s.recordDecision(ctx, request, result)
	return result, nil
}

func (s *ProxyService) recordUsage(ctx context.Context, request pdp_model.ProxyRequest) {
	if err := s.usage.RecordUsage(ctx, request.CredentialID, engine.MetricRequestCount); err != nil {
		logger.Warn("Failed to record usage", zap.Error(err), zap.String("requestID", request.ID))
	}
	if request.IP != "" {
		metric := fmt.Sprintf("%s:%s", engine.MetricRequestCount, request.IP)
		if err := s.usage.RecordUsage(ctx, request.CredentialID, metric); err != nil {
			logger.Warn("Failed to record per-IP usage", zap.Error(err), zap.String("requestID", request.ID))
		}
	}
}

func (s *ProxyService) recordDecision(ctx context.Context, request pdp_model.ProxyRequest, result pdp_model.PolicyEvaluationResult) {
	if err := s.auditService.LogDecision(ctx, request, result); err != nil {
		logger.Warn("Failed to audit decision", zap.Error(err), zap.String("requestID", request.ID))
	}
}
