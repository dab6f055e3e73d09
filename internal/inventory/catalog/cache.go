package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fieldstock/pkg/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedRepository keeps item types in redis in front of another
// Repository. Cache failures fall through to the wrapped repository.
type CachedRepository struct {
	Repository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedRepository(repo Repository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRepository {
	return &CachedRepository{Repository: repo, client: client, ttl: ttl, logger: logger}
}

func cacheKey(id string) string {
	return "item_type:" + id
}

func (r *CachedRepository) GetItemType(ctx context.Context, id string) (*models.ItemType, error) {
	raw, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if err == nil {
		var itemType models.ItemType
		if err := json.Unmarshal(raw, &itemType); err == nil {
			return &itemType, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("Item type cache read failed", zap.String("item_type", id), zap.Error(err))
	}

	itemType, err := r.Repository.GetItemType(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(itemType); err == nil {
		if err := r.client.Set(ctx, cacheKey(id), payload, r.ttl).Err(); err != nil {
			r.logger.Warn("Item type cache write failed", zap.String("item_type", id), zap.Error(err))
		}
	}

	return itemType, nil
}

func (r *CachedRepository) CreateItemType(ctx context.Context, itemType models.ItemType) (*models.ItemType, error) {
	created, err := r.Repository.CreateItemType(ctx, itemType)
	if err != nil {
		return nil, err
	}

	if err := r.client.Del(ctx, cacheKey(created.ID)).Err(); err != nil {
		r.logger.Warn("Item type cache invalidation failed", zap.String("item_type", created.ID), zap.Error(err))
	}

	return created, nil
}
