package policy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
)

func customer(id string) *model.User {
	return &model.User{ID: id, Role: model.RoleCustomer, IsActive: true}
}

func seller(id string) *model.User {
	return &model.User{ID: id, Role: model.RoleSeller, IsActive: true}
}

func TestSafeMethodsAllowUnconditionally(t *testing.T) {
	recipe := &model.Recipe{ID: "r1", Author: seller("owner")}
	policies := []Policy{OwnerOrReadOnly{}, SellerOrReadOnly{}, RecipeOwnerOrReadOnly{}}

	for _, p := range policies {
		for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
			// Even anonymous principals read freely.
			d := p.Check(method, nil)
			assert.True(t, d.Allowed, "%s %s request-level", p.Name(), method)

			d = p.CheckObject(method, nil, recipe)
			assert.True(t, d.Allowed, "%s %s object-level", p.Name(), method)
		}
	}
}

func TestAuthenticated(t *testing.T) {
	assert.True(t, Authenticated{}.Check(http.MethodGet, customer("u1")).Allowed)

	d := Authenticated{}.Check(http.MethodGet, nil)
	assert.False(t, d.Allowed)
	assert.Equal(t, "Authentication required.", d.Reason)

	inactive := &model.User{ID: "u2", Role: model.RoleCustomer, IsActive: false}
	assert.False(t, Authenticated{}.Check(http.MethodGet, inactive).Allowed)
}

func TestRolePolicies(t *testing.T) {
	tests := []struct {
		name      string
		policy    Policy
		principal *model.User
		allowed   bool
	}{
		{"seller only allows seller", SellerOnly{}, seller("s1"), true},
		{"seller only denies customer", SellerOnly{}, customer("c1"), false},
		{"seller only denies anonymous", SellerOnly{}, nil, false},
		{"customer only allows customer", CustomerOnly{}, customer("c1"), true},
		{"customer only denies seller", CustomerOnly{}, seller("s1"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.policy.Check(http.MethodPost, tt.principal)
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestOwnerOrReadOnly(t *testing.T) {
	owner := customer("owner")
	rating := &model.Rating{User: owner, Recipe: &model.Recipe{Author: seller("author")}}

	assert.True(t, OwnerOrReadOnly{}.CheckObject(http.MethodDelete, owner, rating).Allowed)

	d := OwnerOrReadOnly{}.CheckObject(http.MethodDelete, customer("intruder"), rating)
	assert.False(t, d.Allowed)
	assert.Equal(t, "You can only modify your own resources.", d.Reason)

	assert.False(t, OwnerOrReadOnly{}.CheckObject(http.MethodDelete, nil, rating).Allowed)
}

func TestSellerOrReadOnly(t *testing.T) {
	assert.True(t, SellerOrReadOnly{}.Check(http.MethodPost, seller("s1")).Allowed)
	assert.False(t, SellerOrReadOnly{}.Check(http.MethodPost, customer("c1")).Allowed)
	assert.False(t, SellerOrReadOnly{}.Check(http.MethodPost, nil).Allowed)
}

func TestOwnerOrSellerReadOnly(t *testing.T) {
	owner := customer("owner")
	resource := &model.RecipeView{User: owner}

	t.Run("owner gets full access", func(t *testing.T) {
		assert.True(t, OwnerOrSellerReadOnly{}.CheckObject(http.MethodDelete, owner, resource).Allowed)
	})
	t.Run("seller may read", func(t *testing.T) {
		assert.True(t, OwnerOrSellerReadOnly{}.CheckObject(http.MethodGet, seller("s1"), resource).Allowed)
	})
	t.Run("seller may not write", func(t *testing.T) {
		assert.False(t, OwnerOrSellerReadOnly{}.CheckObject(http.MethodDelete, seller("s1"), resource).Allowed)
	})
	t.Run("other customers get nothing", func(t *testing.T) {
		assert.False(t, OwnerOrSellerReadOnly{}.CheckObject(http.MethodGet, customer("c2"), resource).Allowed)
	})
}

func TestRecipeOwnerOrReadOnly(t *testing.T) {
	author := seller("author")
	recipe := &model.Recipe{ID: "r1", Author: author}

	t.Run("author modifies own recipe", func(t *testing.T) {
		assert.True(t, RecipeOwnerOrReadOnly{}.CheckObject(http.MethodPut, author, recipe).Allowed)
	})
	t.Run("other seller denied", func(t *testing.T) {
		d := RecipeOwnerOrReadOnly{}.CheckObject(http.MethodPut, seller("other"), recipe)
		assert.False(t, d.Allowed)
		assert.Equal(t, "You can only modify your own recipes.", d.Reason)
	})
	t.Run("child ownership resolves through parent recipe", func(t *testing.T) {
		image := &model.RecipeImage{Recipe: recipe}
		assert.True(t, RecipeOwnerOrReadOnly{}.CheckObject(http.MethodDelete, author, image).Allowed)
		assert.False(t, RecipeOwnerOrReadOnly{}.CheckObject(http.MethodDelete, seller("other"), image).Allowed)
	})
}

func TestCanRate(t *testing.T) {
	author := seller("author")
	recipe := &model.Recipe{ID: "r1", Author: author}

	t.Run("requires authentication", func(t *testing.T) {
		d := CanRate{}.Check(http.MethodPost, nil)
		assert.False(t, d.Allowed)
		assert.Equal(t, "You cannot rate your own recipe or you must be logged in to rate.", d.Reason)
	})

	t.Run("denies self-rating regardless of role", func(t *testing.T) {
		for _, principal := range []*model.User{
			{ID: "author", Role: model.RoleSeller, IsActive: true},
			{ID: "author", Role: model.RoleCustomer, IsActive: true},
		} {
			rating := &model.Rating{User: principal, Recipe: recipe}
			assert.False(t, CanRate{}.CheckObject(http.MethodPost, principal, rating).Allowed)
		}
	})

	t.Run("allows rating another author's recipe", func(t *testing.T) {
		rater := customer("rater")
		rating := &model.Rating{User: rater, Recipe: recipe}
		assert.True(t, CanRate{}.CheckObject(http.MethodPost, rater, rating).Allowed)
	})
}

func TestGuardFailsClosed(t *testing.T) {
	// A resource whose parent accessor panics must deny, not crash.
	assert.NotPanics(t, func() {
		d := RecipeOwnerOrReadOnly{}.CheckObject(http.MethodPut, customer("c1"), &panickyChild{})
		assert.False(t, d.Allowed)
		assert.Equal(t, "You can only modify your own recipes.", d.Reason)
	})
}

type panickyChild struct{}

func (p *panickyChild) ParentRecipe() *model.Recipe { panic("broken parent relation") }

func TestCheckAllFirstDenyWins(t *testing.T) {
	d := CheckAll(http.MethodPost, nil, Authenticated{}, SellerOnly{})
	assert.False(t, d.Allowed)
	assert.Equal(t, "Authentication required.", d.Reason)

	d = CheckAll(http.MethodPost, seller("s1"), Authenticated{}, SellerOnly{})
	assert.True(t, d.Allowed)
}

func TestCheckAllObjectFirstDenyWins(t *testing.T) {
	author := seller("author")
	recipe := &model.Recipe{ID: "r1", Author: author}

	d := CheckAllObject(http.MethodPut, seller("other"), recipe,
		RecipeOwnerOrReadOnly{}, OwnerOrReadOnly{})
	assert.False(t, d.Allowed)
	assert.Equal(t, "You can only modify your own recipes.", d.Reason)

	d = CheckAllObject(http.MethodPut, author, recipe,
		RecipeOwnerOrReadOnly{}, OwnerOrReadOnly{})
	assert.True(t, d.Allowed)
}
