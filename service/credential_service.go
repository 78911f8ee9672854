package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/open-warden/warden/api/dao"
	logger "github.com/open-warden/warden/api/logging"
	"github.com/open-warden/warden/api/model"
	"github.com/open-warden/warden/api/util"
)

// ICredentialService defines the interface for credential metadata operations
type ICredentialService interface {
	RegisterCredential(ctx context.Context, credential model.Credential) (*model.Credential, error)
	GetCredential(ctx context.Context, credentialID string) (*model.Credential, error)
	ListCredentials(ctx context.Context, limit int, offset int) ([]*model.Credential, error)
	DeleteCredential(ctx context.Context, credentialID string) error
}

// CredentialService maintains the credential metadata registry. Plugins
// register each credential's supported operations and risk ratings here so
// that templates and policies can be resolved against them.
type CredentialService struct {
	credentialDAO  *dao.CredentialDAO
	validationUtil *util.ValidationUtil
	cacheService   *util.CacheService
	eventBus       *util.EventBus
}

var _ ICredentialService = &CredentialService{}

func NewCredentialService(credentialDAO *dao.CredentialDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService, eventBus *util.EventBus) *CredentialService {
	return &CredentialService{
		credentialDAO:  credentialDAO,
		validationUtil: validationUtil,
		cacheService:   cacheService,
		eventBus:       eventBus,
	}
}

// RegisterCredential creates or refreshes a credential's metadata. Re-registering
// an existing ID replaces its operations and risk ratings.
func (s *CredentialService) RegisterCredential(ctx context.Context, credential model.Credential) (*model.Credential, error) {
	if err := s.validationUtil.ValidateCredential(credential); err != nil {
		return nil, fmt.Errorf("invalid credential: %w", err)
	}

	credentialID, err := s.credentialDAO.UpsertCredential(ctx, credential)
	if err != nil {
		logger.Error("Failed to register credential", zap.Error(err), zap.String("credentialName", credential.Name))
		return nil, err
	}
	credential.ID = credentialID

	if err := s.cacheService.SetCredential(ctx, credential); err != nil {
		logger.Warn("Failed to cache credential", zap.Error(err), zap.String("credentialID", credentialID))
	}

	s.eventBus.Publish(ctx, "credential.registered", credential)
	return &credential, nil
}

func (s *CredentialService) GetCredential(ctx context.Context, credentialID string) (*model.Credential, error) {
	cached, err := s.cacheService.GetCredential(ctx, credentialID)
	if err == nil && cached != nil {
		return cached, nil
	}

	credential, err := s.credentialDAO.GetCredential(ctx, credentialID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetCredential(ctx, *credential); err != nil {
		logger.Warn("Failed to cache credential", zap.Error(err), zap.String("credentialID", credentialID))
	}
	return credential, nil
}

func (s *CredentialService) ListCredentials(ctx context.Context, limit int, offset int) ([]*model.Credential, error) {
	return s.credentialDAO.ListCredentials(ctx, limit, offset)
}

// DeleteCredential removes a credential's metadata. Policies scoped to the
// credential are left in place; they simply stop matching requests.
func (s *CredentialService) DeleteCredential(ctx context.Context, credentialID string) error {
	if err := s.credentialDAO.DeleteCredential(ctx, credentialID); err != nil {
		return err
	}

	if err := s.cacheService.DeleteCredential(ctx, credentialID); err != nil {
		logger.Warn("Failed to invalidate credential cache", zap.Error(err), zap.String("credentialID", credentialID))
	}

	s.eventBus.Publish(ctx, "credential.deleted", credentialID)
	return nil
}
