// util/validation_util.go

package util

import (
	"fmt"
	"strings"

	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateRegistration(username, email, password, role string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("a valid email address is required")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if _, err := model.ParseRole(role); err != nil {
		return err
	}
	return nil
}

func (v *ValidationUtil) ValidateRecipe(recipe model.Recipe) error {
	if strings.TrimSpace(recipe.Title) == "" {
		return fmt.Errorf("recipe title cannot be empty")
	}
	if len(recipe.Title) > 200 {
		return fmt.Errorf("recipe title cannot exceed 200 characters")
	}
	if strings.TrimSpace(recipe.Description) == "" {
		return fmt.Errorf("recipe description cannot be empty")
	}
	if len(recipe.Description) > 2000 {
		return fmt.Errorf("recipe description cannot exceed 2000 characters")
	}
	if strings.TrimSpace(recipe.Ingredients) == "" {
		return fmt.Errorf("recipe must list at least one ingredient")
	}
	if strings.TrimSpace(recipe.Instructions) == "" {
		return fmt.Errorf("recipe must have instructions")
	}
	if recipe.PrepTime < 0 || recipe.CookTime < 0 {
		return fmt.Errorf("prep and cook time cannot be negative")
	}
	if recipe.Servings < 1 {
		return fmt.Errorf("servings must be at least 1")
	}
	switch recipe.Difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return fmt.Errorf("difficulty must be one of easy, medium, hard")
	}
	return nil
}

func (v *ValidationUtil) ValidateRating(rating model.Rating) error {
	if rating.RecipeID == "" {
		return fmt.Errorf("rating recipe ID cannot be empty")
	}
	if rating.Value < 1 || rating.Value > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}

func (v *ValidationUtil) ValidateCategory(category model.Category) error {
	name := strings.TrimSpace(category.Name)
	if len(name) < 2 {
		return fmt.Errorf("category name must be at least 2 characters long")
	}
	if len(category.Description) > 500 {
		return fmt.Errorf("category description cannot exceed 500 characters")
	}
	return nil
}

func (v *ValidationUtil) ValidateImage(image model.RecipeImage) error {
	if image.RecipeID == "" {
		return fmt.Errorf("image recipe ID cannot be empty")
	}
	if image.Path == "" {
		return fmt.Errorf("image path cannot be empty")
	}
	ext := strings.ToLower(image.Path)
	switch {
	case strings.HasSuffix(ext, ".jpg"), strings.HasSuffix(ext, ".jpeg"),
		strings.HasSuffix(ext, ".png"), strings.HasSuffix(ext, ".webp"):
	default:
		return fmt.Errorf("allowed image formats: jpg, jpeg, png, webp")
	}
	if len(image.Caption) > 200 {
		return fmt.Errorf("image caption cannot exceed 200 characters")
	}
	return nil
}
