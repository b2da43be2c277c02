// errors/recipe_errors.go
package errors

import "errors"

var (
	ErrRecipeNotFound    = errors.New("recipe not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrRatingNotFound    = errors.New("rating not found")
	ErrImageNotFound     = errors.New("recipe image not found")
	ErrInvalidRecipeData = errors.New("invalid recipe data")
	ErrInvalidRatingData = errors.New("invalid rating data")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrDatabaseOperation = errors.New("database operation failed")
	ErrInternalServer    = errors.New("internal server error")
	ErrInvalidPagination = errors.New("invalid pagination parameters")
)
