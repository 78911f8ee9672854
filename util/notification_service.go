// api/util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/open-warden/warden/api/logging"
	"github.com/open-warden/warden/api/model"
	pdp_model "github.com/open-warden/warden/api/pdp/model"
)

type NotificationService struct {
	// A message queue client would live here once approvals move out of logs
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) NotifyPolicyChange(ctx context.Context, changeType string, policy model.Policy) error {
	switch changeType {
	case "created":
		logger.Info("NOTIFICATION: New policy created",
			zap.String("policyID", policy.ID),
			zap.String("policyName", policy.Name),
			zap.String("policyType", string(policy.Type)))
	case "updated":
		logger.Info("NOTIFICATION: Policy updated",
			zap.String("policyID", policy.ID),
			zap.String("policyName", policy.Name))
	case "deleted":
		logger.Info("NOTIFICATION: Policy deleted",
			zap.String("policyID", policy.ID))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}
	return nil
}

// NotifyPendingApproval alerts approvers that a proxy request is waiting on
// human review.
func (n *NotificationService) NotifyPendingApproval(ctx context.Context, request pdp_model.ProxyRequest, result pdp_model.PolicyEvaluationResult) error {
	logger.Info("NOTIFICATION: Proxy request pending approval",
		zap.String("requestID", request.ID),
		zap.String("applicationID", request.ApplicationID),
		zap.String("credentialID", request.CredentialID),
		zap.String("operation", request.Operation),
		zap.String("policyID", result.PolicyID),
		zap.String("reason", result.Reason))
	return nil
}

func (n *NotificationService) NotifyAdmins(ctx context.Context, message string) error {
	logger.Info("Notifying admins", zap.String("message", message))
	return nil
}

func (n *NotificationService) SendEmail(ctx context.Context, recipient, subject, body string) error {
	logger.Info("Sending email",
		zap.String("recipient", recipient),
		zap.String("subject", subject))
	return nil
}

func (n *NotificationService) NotifyTemplateApplied(ctx context.Context, templateID, credentialID, policyID string) error {
	logger.Info("NOTIFICATION: Policy template applied",
		zap.String("templateID", templateID),
		zap.String("credentialID", credentialID),
		zap.String("policyID", policyID))
	return nil
}
