package policy

import (
	"go.uber.org/zap"

	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
)

// Policy is one composable access rule. Check runs before the handler with
// only the request; CheckObject runs against a loaded resource. Policies
// that have no opinion at one of the two levels allow at that level, so an
// endpoint's decision is the AND of everything it composes.
type Policy interface {
	Name() string
	Check(method string, principal *model.User) Decision
	CheckObject(method string, principal *model.User, resource any) Decision
}

// guard evaluates a predicate fail-closed: a panic inside the predicate is
// logged with the principal and becomes a deny with the policy's message.
func guard(name, message string, principal *model.User, fn func() bool) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			id := ""
			if principal != nil {
				id = principal.ID
			}
			logger.Error("Error evaluating policy",
				zap.String("policy", name),
				zap.String("principalID", id),
				zap.Any("panic", r))
			d = Deny(message)
		}
	}()
	if fn() {
		return Allow()
	}
	return Deny(message)
}

// Authenticated requires a real, active principal.
type Authenticated struct{}

const msgAuthenticated = "Authentication required."

func (Authenticated) Name() string { return "Authenticated" }

func (p Authenticated) Check(method string, principal *model.User) Decision {
	return guard(p.Name(), msgAuthenticated, principal, func() bool {
		return principal.IsAuthenticated()
	})
}

func (p Authenticated) CheckObject(method string, principal *model.User, resource any) Decision {
	return Allow()
}

// SellerOnly grants access only to authenticated sellers.
type SellerOnly struct{}

const msgSellerOnly = "You must be a seller to access this resource."

func (SellerOnly) Name() string { return "SellerOnly" }

func (p SellerOnly) Check(method string, principal *model.User) Decision {
	return guard(p.Name(), msgSellerOnly, principal, func() bool {
		return principal.IsAuthenticated() && principal.IsSeller()
	})
}

func (p SellerOnly) CheckObject(method string, principal *model.User, resource any) Decision {
	return Allow()
}

// CustomerOnly grants access only to authenticated customers.
type CustomerOnly struct{}

const msgCustomerOnly = "You must be a customer to access this resource."

func (CustomerOnly) Name() string { return "CustomerOnly" }

func (p CustomerOnly) Check(method string, principal *model.User) Decision {
	return guard(p.Name(), msgCustomerOnly, principal, func() bool {
		return principal.IsAuthenticated() && principal.IsCustomer()
	})
}

func (p CustomerOnly) CheckObject(method string, principal *model.User, resource any) Decision {
	return Allow()
}

// OwnerOrReadOnly allows safe methods for everyone and writes only for the
// resolved owner of the resource.
type OwnerOrReadOnly struct{}

const msgOwnerOrReadOnly = "You can only modify your own resources."

func (OwnerOrReadOnly) Name() string { return "OwnerOrReadOnly" }

func (p OwnerOrReadOnly) Check(method string, principal *model.User) Decision {
	return Allow()
}

func (p OwnerOrReadOnly) CheckObject(method string, principal *model.User, resource any) Decision {
	return guard(p.Name(), msgOwnerOrReadOnly, principal, func() bool {
		if IsSafeMethod(method) {
			return true
		}
		return sameUser(ResolveOwner(resource), principal)
	})
}

// SellerOrReadOnly allows reads for anyone; writes require a seller.
type SellerOrReadOnly struct{}

const msgSellerOrReadOnly = "You must be a seller to perform this action."

func (SellerOrReadOnly) Name() string { return "SellerOrReadOnly" }

func (p SellerOrReadOnly) Check(method string, principal *model.User) Decision {
	return guard(p.Name(), msgSellerOrReadOnly, principal, func() bool {
		if IsSafeMethod(method) {
			return true
		}
		return principal.IsAuthenticated() && principal.IsSeller()
	})
}

func (p SellerOrReadOnly) CheckObject(method string, principal *model.User, resource any) Decision {
	return Allow()
}

// OwnerOrSellerReadOnly gives the owner full access, sellers read access,
// and everyone else nothing.
type OwnerOrSellerReadOnly struct{}

const msgOwnerOrSellerReadOnly = "You don't have permission to access this resource."

func (OwnerOrSellerReadOnly) Name() string { return "OwnerOrSellerReadOnly" }

func (p OwnerOrSellerReadOnly) Check(method string, principal *model.User) Decision {
	return Allow()
}

func (p OwnerOrSellerReadOnly) CheckObject(method string, principal *model.User, resource any) Decision {
	return guard(p.Name(), msgOwnerOrSellerReadOnly, principal, func() bool {
		if sameUser(ResolveOwner(resource), principal) {
			return true
		}
		if IsSafeMethod(method) {
			return principal.IsAuthenticated() && principal.IsSeller()
		}
		return false
	})
}

// RecipeOwnerOrReadOnly is OwnerOrReadOnly specialized to the recipe domain:
// ownership of ratings, favorites and images resolves transitively through
// the parent recipe's author.
type RecipeOwnerOrReadOnly struct{}

const msgRecipeOwnerOrReadOnly = "You can only modify your own recipes."

func (RecipeOwnerOrReadOnly) Name() string { return "RecipeOwnerOrReadOnly" }

func (p RecipeOwnerOrReadOnly) Check(method string, principal *model.User) Decision {
	return Allow()
}

func (p RecipeOwnerOrReadOnly) CheckObject(method string, principal *model.User, resource any) Decision {
	return guard(p.Name(), msgRecipeOwnerOrReadOnly, principal, func() bool {
		if IsSafeMethod(method) {
			return true
		}
		if recipe, ok := resource.(*model.Recipe); ok {
			return sameUser(recipe.Author, principal)
		}
		if child, ok := resource.(RecipeChild); ok {
			parent := child.ParentRecipe()
			return parent != nil && sameUser(parent.Author, principal)
		}
		return false
	})
}

// CanRate denies rating your own recipe. Request-level it only requires
// authentication; the self-rating check needs the target recipe.
type CanRate struct{}

const msgCanRate = "You cannot rate your own recipe or you must be logged in to rate."

func (CanRate) Name() string { return "CanRate" }

func (p CanRate) Check(method string, principal *model.User) Decision {
	return guard(p.Name(), msgCanRate, principal, func() bool {
		return principal.IsAuthenticated()
	})
}

func (p CanRate) CheckObject(method string, principal *model.User, resource any) Decision {
	return guard(p.Name(), msgCanRate, principal, func() bool {
		if child, ok := resource.(RecipeChild); ok {
			parent := child.ParentRecipe()
			return parent == nil || !sameUser(parent.Author, principal)
		}
		if recipe, ok := resource.(*model.Recipe); ok {
			return !sameUser(recipe.Author, principal)
		}
		return true
	})
}

// CheckAll composes request-level decisions: the first deny wins.
func CheckAll(method string, principal *model.User, policies ...Policy) Decision {
	for _, p := range policies {
		if d := p.Check(method, principal); !d.Allowed {
			return d
		}
	}
	return Allow()
}

// CheckAllObject composes object-level decisions: the first deny wins.
func CheckAllObject(method string, principal *model.User, resource any, policies ...Policy) Decision {
	for _, p := range policies {
		if d := p.CheckObject(method, principal, resource); !d.Allowed {
			return d
		}
	}
	return Allow()
}
