package policy

import (
	"fmt"

	"go.uber.org/zap"

	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
)

// Ownership is declared per resource type at compile time instead of probed
// by attribute name at runtime. The three capabilities correspond to the
// "user", "created_by" and "owner" relations, in that priority order:
// objects that model direct ownership (ratings, favorites, views) implement
// UserOwned; administrative objects implement CreatorOwned; generic objects
// (recipes) implement ResourceOwned.

// UserOwned is the direct "user" relation.
type UserOwned interface {
	RelatedUser() *model.User
}

// CreatorOwned is the "created_by" relation.
type CreatorOwned interface {
	Creator() *model.User
}

// ResourceOwned is the generic "owner" relation.
type ResourceOwned interface {
	ResourceOwner() *model.User
}

// RecipeChild is implemented by objects whose ownership resolves transitively
// through their parent recipe (ratings, favorites, images).
type RecipeChild interface {
	ParentRecipe() *model.Recipe
}

// ResolveOwner returns the owning user of a resource, or nil when the
// resource has no owner relation. The first implemented capability wins,
// even if its value is nil: a resource that declares a "user" relation but
// has none set is ownerless, not owned by whoever the next relation names.
// Errors during traversal mean "no owner", which denies writes.
func ResolveOwner(resource any) (owner *model.User) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Error resolving resource owner",
				zap.String("resourceType", fmt.Sprintf("%T", resource)),
				zap.Any("panic", r))
			owner = nil
		}
	}()

	if resource == nil {
		return nil
	}

	if v, ok := resource.(UserOwned); ok {
		return v.RelatedUser()
	}
	if v, ok := resource.(CreatorOwned); ok {
		return v.Creator()
	}
	if v, ok := resource.(ResourceOwned); ok {
		return v.ResourceOwner()
	}

	logger.Warn("Resource has no owner relation",
		zap.String("resourceType", fmt.Sprintf("%T", resource)))
	return nil
}

// sameUser compares principals by identity.
func sameUser(a, b *model.User) bool {
	return a != nil && b != nil && a.ID == b.ID
}
