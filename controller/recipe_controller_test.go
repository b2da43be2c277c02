package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniketsuryawanshi1/recipe-hub-api/audit"
	recipe_errors "github.com/aniketsuryawanshi1/recipe-hub-api/errors"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

func TestMain(m *testing.M) {
	logger.InitTestLogger()
	gin.SetMode(gin.TestMode)
	m.Run()
}

// fakeRecipeService serves a fixed set of recipes and records writes.
type fakeRecipeService struct {
	recipes map[string]*model.Recipe
	deleted []string
	updated []string
}

func newFakeRecipeService(recipes ...*model.Recipe) *fakeRecipeService {
	f := &fakeRecipeService{recipes: map[string]*model.Recipe{}}
	for _, r := range recipes {
		f.recipes[r.ID] = r
	}
	return f
}

func (f *fakeRecipeService) ListRecipes(ctx context.Context, criteria model.RecipeSearchCriteria) ([]*model.Recipe, error) {
	var out []*model.Recipe
	for _, r := range f.recipes {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRecipeService) GetRecipe(ctx context.Context, recipeID string, view *model.RecipeView) (*model.Recipe, error) {
	r, ok := f.recipes[recipeID]
	if !ok {
		return nil, recipe_errors.ErrRecipeNotFound
	}
	return r, nil
}

func (f *fakeRecipeService) CreateRecipe(ctx context.Context, recipe *model.Recipe) error {
	recipe.ID = "new-recipe"
	f.recipes[recipe.ID] = recipe
	return nil
}

func (f *fakeRecipeService) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	f.updated = append(f.updated, recipe.ID)
	return nil
}

func (f *fakeRecipeService) DeleteRecipe(ctx context.Context, recipe *model.Recipe, actorID string) error {
	f.deleted = append(f.deleted, recipe.ID)
	delete(f.recipes, recipe.ID)
	return nil
}

func (f *fakeRecipeService) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*model.Recipe, error) {
	var out []*model.Recipe
	for _, r := range f.recipes {
		if r.AuthorID == authorID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecipeService) FeaturedRecipes(ctx context.Context) ([]*model.Recipe, error) {
	return nil, nil
}

func (f *fakeRecipeService) PopularRecipes(ctx context.Context) ([]*model.Recipe, error) {
	return nil, nil
}

func (f *fakeRecipeService) Stats(ctx context.Context) (*model.RecipeStats, error) {
	return &model.RecipeStats{TotalRecipes: len(f.recipes)}, nil
}

func (f *fakeRecipeService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return nil, nil
}

func (f *fakeRecipeService) CategoryRecipes(ctx context.Context, categoryID string) ([]*model.Recipe, error) {
	return nil, nil
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *recordingAudit) Record(ctx context.Context, entry audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingAudit) QueryEntries(ctx context.Context, from, to time.Time, userID, resourceID string) ([]audit.Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]audit.Entry(nil), a.entries...), nil
}

func (a *recordingAudit) waitForEntries(t *testing.T, n int) []audit.Entry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		a.mu.Lock()
		count := len(a.entries)
		a.mu.Unlock()
		if count >= n {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	require.GreaterOrEqual(t, len(a.entries), n)
	return append([]audit.Entry(nil), a.entries...)
}

func setupRouter(svc *fakeRecipeService, auditSvc audit.Service, principal *model.User) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if principal != nil {
			c.Set(util.PrincipalKey, principal)
		}
	})
	api := router.Group("/api")
	NewRecipeController(svc, auditSvc).RegisterRoutes(api)
	return router
}

func testSeller(id string) *model.User {
	return &model.User{ID: id, Username: id, Role: model.RoleSeller, IsActive: true}
}

func recipeBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"title":        "Pho",
		"description":  "Vietnamese noodle soup",
		"ingredients":  "noodles, broth, beef",
		"instructions": "simmer and serve",
		"prep_time":    20,
		"cook_time":    180,
		"servings":     4,
		"difficulty":   "medium",
		"is_published": true,
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestGetRecipe(t *testing.T) {
	author := testSeller("author")
	svc := newFakeRecipeService(&model.Recipe{ID: "r1", Title: "Pho", Author: author, AuthorID: author.ID})
	router := setupRouter(svc, &recordingAudit{}, nil)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recipes/r1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Pho")
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recipes/nope", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCreateRecipe(t *testing.T) {
	t.Run("seller creates recipe", func(t *testing.T) {
		svc := newFakeRecipeService()
		router := setupRouter(svc, &recordingAudit{}, testSeller("s1"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/recipes", recipeBody(t))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		require.Contains(t, svc.recipes, "new-recipe")
		assert.Equal(t, "s1", svc.recipes["new-recipe"].AuthorID)
	})

	t.Run("customer denied", func(t *testing.T) {
		svc := newFakeRecipeService()
		customer := &model.User{ID: "c1", Role: model.RoleCustomer, IsActive: true}
		router := setupRouter(svc, &recordingAudit{}, customer)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/recipes", recipeBody(t))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, svc.recipes)
	})

	t.Run("anonymous denied with 401", func(t *testing.T) {
		svc := newFakeRecipeService()
		router := setupRouter(svc, &recordingAudit{}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/recipes", recipeBody(t))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUpdateRecipeOwnership(t *testing.T) {
	author := testSeller("author")
	recipe := &model.Recipe{ID: "r1", Title: "Pho", Author: author, AuthorID: author.ID}

	t.Run("author updates own recipe", func(t *testing.T) {
		svc := newFakeRecipeService(recipe)
		router := setupRouter(svc, &recordingAudit{}, author)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/recipes/r1", recipeBody(t))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"r1"}, svc.updated)
	})

	t.Run("other seller denied and audited", func(t *testing.T) {
		svc := newFakeRecipeService(recipe)
		ra := &recordingAudit{}
		router := setupRouter(svc, ra, testSeller("intruder"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/recipes/r1", recipeBody(t))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "You can only modify your own recipes.")
		assert.Empty(t, svc.updated)

		entries := ra.waitForEntries(t, 1)
		assert.Equal(t, "intruder", entries[0].UserID)
		assert.Equal(t, "RecipeOwnerOrReadOnly", entries[0].Policy)
		assert.False(t, entries[0].AccessGranted)
	})
}

func TestDeleteRecipeOwnership(t *testing.T) {
	author := testSeller("author")
	recipe := &model.Recipe{ID: "r1", Title: "Pho", Author: author, AuthorID: author.ID}

	t.Run("intruder denied", func(t *testing.T) {
		svc := newFakeRecipeService(recipe)
		router := setupRouter(svc, &recordingAudit{}, testSeller("intruder"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/recipes/r1", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, svc.deleted)
	})

	t.Run("author deletes", func(t *testing.T) {
		svc := newFakeRecipeService(recipe)
		router := setupRouter(svc, &recordingAudit{}, author)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/recipes/r1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"r1"}, svc.deleted)
	})
}

func TestStats(t *testing.T) {
	svc := newFakeRecipeService(&model.Recipe{ID: "r1"}, &model.Recipe{ID: "r2"})
	router := setupRouter(svc, &recordingAudit{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recipes/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_recipes":2`)
}
