// api/util/cache_service.go

package util

import (
	"context"

	"github.com/open-warden/warden/api/db"
	"github.com/open-warden/warden/api/model"
)

type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetPolicy(ctx context.Context, policyID string) (*model.Policy, error) {
	return db.GetCachedPolicy(ctx, policyID)
}

func (c *CacheService) SetPolicy(ctx context.Context, policy model.Policy) error {
	return db.CachePolicy(ctx, &policy)
}

func (c *CacheService) DeletePolicy(ctx context.Context, policyID string) error {
	return db.DeleteCachedPolicy(ctx, policyID)
}

func (c *CacheService) GetCredential(ctx context.Context, credentialID string) (*model.Credential, error) {
	return db.GetCachedCredential(ctx, credentialID)
}

func (c *CacheService) SetCredential(ctx context.Context, credential model.Credential) error {
	return db.CacheCredential(ctx, &credential)
}

func (c *CacheService) DeleteCredential(ctx context.Context, credentialID string) error {
	return db.DeleteCachedCredential(ctx, credentialID)
}
