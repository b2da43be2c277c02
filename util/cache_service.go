// util/cache_service.go

package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aniketsuryawanshi1/recipe-hub-api/db"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
)

// Cache key layout. Derived entries not explicitly invalidated expire via
// the store's default TTL, which bounds staleness if an invalidation path is
// ever missed.
const (
	FeaturedRecipesKey = "featured_recipes"
	PopularRecipesKey  = "popular_recipes"
	RecipeStatsKey     = "recipe_stats"
)

func RecipeKey(recipeID string) string {
	return fmt.Sprintf("recipe_%s", recipeID)
}

func CategoryRecipesKey(categoryID string) string {
	return fmt.Sprintf("category_%s_recipes", categoryID)
}

// CacheService wraps the cache backend with the recipe domain's key scheme
// and invalidation rules. Cache failures are logged and swallowed: they must
// never fail the read or write that triggered them.
type CacheService struct {
	cache *db.Cache
}

func NewCacheService(cache *db.Cache) *CacheService {
	return &CacheService{cache: cache}
}

// GetJSON reads a cached entry into dest, reporting whether it was present.
// A backend failure is a miss.
func (c *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	raw, found, err := c.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		logger.Warn("Cache entry corrupt, evicting", zap.String("key", key), zap.Error(err))
		c.evict(ctx, key)
		return false
	}
	return true
}

// SetJSON writes an entry through to the cache with the default TTL.
func (c *CacheService) SetJSON(ctx context.Context, key string, value interface{}) {
	c.SetJSONTTL(ctx, key, value, 0)
}

func (c *CacheService) SetJSONTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Cache write skipped, marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.cache.Set(ctx, key, string(raw), ttl); err != nil {
		logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CacheService) evict(ctx context.Context, keys ...string) {
	if err := c.cache.Delete(ctx, keys...); err != nil {
		logger.Warn("Cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	} else {
		logger.Debug("Cache entries invalidated", zap.Strings("keys", keys))
	}
}

// RegisterInvalidation subscribes the write-event invalidation rules. The
// services publish these events synchronously after the write commits, so
// eviction completes before the response is returned.
func (c *CacheService) RegisterInvalidation(bus *EventBus) {
	bus.Subscribe(RecipeCreated, c.handleRecipeEvent)
	bus.Subscribe(RecipeUpdated, c.handleRecipeEvent)
	bus.Subscribe(RecipeDeleted, c.handleRecipeEvent)
	bus.Subscribe(RatingCreated, c.handleRatingEvent)
	bus.Subscribe(RatingUpdated, c.handleRatingEvent)
	bus.Subscribe(RatingDeleted, c.handleRatingEvent)
}

func (c *CacheService) handleRecipeEvent(ctx context.Context, event Event) error {
	payload, ok := event.Payload.(RecipeEvent)
	if !ok {
		return fmt.Errorf("invalid payload type for %s: %T", event.Type, event.Payload)
	}

	switch event.Type {
	case RecipeCreated:
		keys := []string{FeaturedRecipesKey, PopularRecipesKey, RecipeStatsKey}
		if payload.CategoryID != "" {
			keys = append(keys, CategoryRecipesKey(payload.CategoryID))
		}
		c.evict(ctx, keys...)
	case RecipeUpdated:
		c.evict(ctx, RecipeKey(payload.RecipeID), RecipeStatsKey)
	case RecipeDeleted:
		keys := []string{RecipeKey(payload.RecipeID), FeaturedRecipesKey, PopularRecipesKey, RecipeStatsKey}
		if payload.CategoryID != "" {
			keys = append(keys, CategoryRecipesKey(payload.CategoryID))
		}
		c.evict(ctx, keys...)
	}
	return nil
}

func (c *CacheService) handleRatingEvent(ctx context.Context, event Event) error {
	payload, ok := event.Payload.(RatingEvent)
	if !ok {
		return fmt.Errorf("invalid payload type for %s: %T", event.Type, event.Payload)
	}
	c.evict(ctx, RecipeKey(payload.RecipeID), PopularRecipesKey, RecipeStatsKey)
	return nil
}
