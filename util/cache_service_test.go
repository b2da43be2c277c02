package util

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniketsuryawanshi1/recipe-hub-api/db"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
)

func TestMain(m *testing.M) {
	logger.InitTestLogger()
	m.Run()
}

const testTTL = 15 * time.Minute

func newTestCacheService(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheService(db.NewCache(client, testTTL)), mr
}

func seedKeys(t *testing.T, svc *CacheService, keys ...string) {
	t.Helper()
	ctx := context.Background()
	for _, key := range keys {
		svc.SetJSON(ctx, key, map[string]string{"seeded": key})
	}
	var out map[string]string
	for _, key := range keys {
		require.True(t, svc.GetJSON(ctx, key, &out), "seed %s", key)
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	svc, mr := newTestCacheService(t)
	ctx := context.Background()

	recipe := model.Recipe{ID: "r1", Title: "Carbonara"}
	svc.SetJSON(ctx, RecipeKey("r1"), recipe)

	var got model.Recipe
	require.True(t, svc.GetJSON(ctx, RecipeKey("r1"), &got))
	assert.Equal(t, recipe.Title, got.Title)

	// Write-through reads carry the default TTL.
	ttl := mr.TTL(RecipeKey("r1"))
	assert.Equal(t, testTTL, ttl)
}

func TestGetJSONMissAndCorruption(t *testing.T) {
	svc, mr := newTestCacheService(t)
	ctx := context.Background()

	var out model.Recipe
	assert.False(t, svc.GetJSON(ctx, RecipeKey("missing"), &out))

	// A corrupt entry reads as a miss and is evicted.
	require.NoError(t, mr.Set(RecipeKey("r1"), "{not json"))
	assert.False(t, svc.GetJSON(ctx, RecipeKey("r1"), &out))
	assert.False(t, mr.Exists(RecipeKey("r1")))
}

func TestBackendFailureIsAMiss(t *testing.T) {
	svc, mr := newTestCacheService(t)
	ctx := context.Background()

	mr.Close()
	var out model.Recipe
	assert.False(t, svc.GetJSON(ctx, RecipeKey("r1"), &out))
}

func TestRatingEventEvictsSpecKeys(t *testing.T) {
	svc, mr := newTestCacheService(t)
	bus := NewEventBus()
	svc.RegisterInvalidation(bus)
	ctx := context.Background()

	seedKeys(t, svc, RecipeKey("r1"), PopularRecipesKey, RecipeStatsKey,
		FeaturedRecipesKey, RecipeKey("other"))

	bus.PublishSync(ctx, RatingCreated, RatingEvent{RecipeID: "r1", UserID: "u1", Value: 5})

	assert.False(t, mr.Exists(RecipeKey("r1")))
	assert.False(t, mr.Exists(PopularRecipesKey))
	assert.False(t, mr.Exists(RecipeStatsKey))

	// Untouched keys survive.
	assert.True(t, mr.Exists(FeaturedRecipesKey))
	assert.True(t, mr.Exists(RecipeKey("other")))
}

func TestRecipeCreatedEvictsListings(t *testing.T) {
	svc, mr := newTestCacheService(t)
	bus := NewEventBus()
	svc.RegisterInvalidation(bus)
	ctx := context.Background()

	seedKeys(t, svc, FeaturedRecipesKey, PopularRecipesKey, RecipeStatsKey,
		CategoryRecipesKey("cat1"), CategoryRecipesKey("cat2"))

	bus.PublishSync(ctx, RecipeCreated, RecipeEvent{
		RecipeID: "r1", AuthorID: "a1", CategoryID: "cat1", Title: "Pho",
	})

	assert.False(t, mr.Exists(FeaturedRecipesKey))
	assert.False(t, mr.Exists(PopularRecipesKey))
	assert.False(t, mr.Exists(RecipeStatsKey))
	assert.False(t, mr.Exists(CategoryRecipesKey("cat1")))
	assert.True(t, mr.Exists(CategoryRecipesKey("cat2")))
}

func TestRecipeUpdatedEvictsDetailAndStats(t *testing.T) {
	svc, mr := newTestCacheService(t)
	bus := NewEventBus()
	svc.RegisterInvalidation(bus)
	ctx := context.Background()

	seedKeys(t, svc, RecipeKey("r1"), RecipeStatsKey, FeaturedRecipesKey)

	bus.PublishSync(ctx, RecipeUpdated, RecipeEvent{RecipeID: "r1", AuthorID: "a1"})

	assert.False(t, mr.Exists(RecipeKey("r1")))
	assert.False(t, mr.Exists(RecipeStatsKey))
	assert.True(t, mr.Exists(FeaturedRecipesKey))
}

func TestRecipeDeletedEvictsEverywhere(t *testing.T) {
	svc, mr := newTestCacheService(t)
	bus := NewEventBus()
	svc.RegisterInvalidation(bus)
	ctx := context.Background()

	seedKeys(t, svc, RecipeKey("r1"), FeaturedRecipesKey, PopularRecipesKey,
		RecipeStatsKey, CategoryRecipesKey("cat1"))

	bus.PublishSync(ctx, RecipeDeleted, RecipeEvent{
		RecipeID: "r1", AuthorID: "a1", CategoryID: "cat1",
	})

	for _, key := range []string{RecipeKey("r1"), FeaturedRecipesKey,
		PopularRecipesKey, RecipeStatsKey, CategoryRecipesKey("cat1")} {
		assert.False(t, mr.Exists(key), key)
	}
}

func TestMissRepopulatesAfterInvalidation(t *testing.T) {
	svc, _ := newTestCacheService(t)
	bus := NewEventBus()
	svc.RegisterInvalidation(bus)
	ctx := context.Background()

	stale := model.RecipeStats{TotalRatings: 1}
	svc.SetJSON(ctx, RecipeStatsKey, stale)

	bus.PublishSync(ctx, RatingCreated, RatingEvent{RecipeID: "r1", UserID: "u1", Value: 4})

	var got model.RecipeStats
	require.False(t, svc.GetJSON(ctx, RecipeStatsKey, &got), "stale entry must be gone")

	fresh := model.RecipeStats{TotalRatings: 2}
	svc.SetJSON(ctx, RecipeStatsKey, fresh)
	require.True(t, svc.GetJSON(ctx, RecipeStatsKey, &got))
	assert.Equal(t, 2, got.TotalRatings)
}

func TestMismatchedPayloadIsHandlerError(t *testing.T) {
	svc, mr := newTestCacheService(t)
	bus := NewEventBus()
	svc.RegisterInvalidation(bus)
	ctx := context.Background()

	seedKeys(t, svc, RecipeStatsKey)

	// Wrong payload type: logged, nothing evicted, nothing panics.
	assert.NotPanics(t, func() {
		bus.PublishSync(ctx, RatingCreated, RecipeEvent{RecipeID: "r1"})
	})
	assert.True(t, mr.Exists(RecipeStatsKey))
}

func TestKeyLayout(t *testing.T) {
	assert.Equal(t, "recipe_r1", RecipeKey("r1"))
	assert.Equal(t, "category_c1_recipes", CategoryRecipesKey("c1"))
	assert.Equal(t, "featured_recipes", FeaturedRecipesKey)
	assert.Equal(t, "popular_recipes", PopularRecipesKey)
	assert.Equal(t, "recipe_stats", RecipeStatsKey)
}
