package model

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Category groups recipes (Italian, Desserts, ...).
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Recipe struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Ingredients  string     `json:"ingredients"`
	Instructions string     `json:"instructions"`
	PrepTime     int        `json:"prep_time"` // minutes
	CookTime     int        `json:"cook_time"` // minutes
	Servings     int        `json:"servings"`
	Difficulty   Difficulty `json:"difficulty"`

	Author     *User     `json:"author,omitempty"`
	AuthorID   string    `json:"author_id"`
	Category   *Category `json:"category,omitempty"`
	CategoryID string    `json:"category_id,omitempty"`

	IsPublished bool `json:"is_published"`
	IsFeatured  bool `json:"is_featured"`
	ViewCount   int  `json:"view_count"`

	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`

	Images []RecipeImage `json:"images,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// ResourceOwner declares the recipe's "owner" relation: its author.
func (r *Recipe) ResourceOwner() *User {
	return r.Author
}

type RecipeImage struct {
	ID        string    `json:"id"`
	Recipe    *Recipe   `json:"-"`
	RecipeID  string    `json:"recipe_id"`
	Path      string    `json:"path"`
	Caption   string    `json:"caption,omitempty"`
	IsPrimary bool      `json:"is_primary"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// ParentRecipe lets image ownership resolve through the recipe's author.
func (i *RecipeImage) ParentRecipe() *Recipe {
	return i.Recipe
}

type Rating struct {
	ID        string    `json:"id"`
	Recipe    *Recipe   `json:"-"`
	RecipeID  string    `json:"recipe_id"`
	User      *User     `json:"-"`
	UserID    string    `json:"user_id"`
	Value     int       `json:"rating"` // 1..5
	Review    string    `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RelatedUser declares the rating's direct "user" relation.
func (r *Rating) RelatedUser() *User {
	return r.User
}

func (r *Rating) ParentRecipe() *Recipe {
	return r.Recipe
}

type Favorite struct {
	ID        string    `json:"id"`
	Recipe    *Recipe   `json:"-"`
	RecipeID  string    `json:"recipe_id"`
	User      *User     `json:"-"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *Favorite) RelatedUser() *User {
	return f.User
}

func (f *Favorite) ParentRecipe() *Recipe {
	return f.Recipe
}

// RecipeView tracks a single detail-page view; user is nil for anonymous.
type RecipeView struct {
	ID        string    `json:"id"`
	RecipeID  string    `json:"recipe_id"`
	User      *User     `json:"-"`
	UserID    string    `json:"user_id,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	ViewedAt  time.Time `json:"viewed_at"`
}

func (v *RecipeView) RelatedUser() *User {
	return v.User
}

// RecipeSearchCriteria drives the multi-field list filter.
type RecipeSearchCriteria struct {
	Search        string     `json:"search,omitempty" form:"search"`
	CategoryID    string     `json:"category_id,omitempty" form:"category"`
	Difficulty    Difficulty `json:"difficulty,omitempty" form:"difficulty"`
	MaxPrepTime   int        `json:"max_prep_time,omitempty" form:"max_prep_time"`
	MaxCookTime   int        `json:"max_cook_time,omitempty" form:"max_cook_time"`
	MaxTotalTime  int        `json:"max_total_time,omitempty" form:"max_total_time"`
	MinServings   int        `json:"min_servings,omitempty" form:"min_servings"`
	MaxServings   int        `json:"max_servings,omitempty" form:"max_servings"`
	MinRating     float64    `json:"min_rating,omitempty" form:"min_rating"`
	Author        string     `json:"author,omitempty" form:"author"`
	Featured      *bool      `json:"featured,omitempty" form:"featured"`
	CreatedAfter  *time.Time `json:"created_after,omitempty" form:"created_after" time_format:"2006-01-02"`
	CreatedBefore *time.Time `json:"created_before,omitempty" form:"created_before" time_format:"2006-01-02"`
	Limit         int        `json:"limit,omitempty" form:"limit"`
	Offset        int        `json:"offset,omitempty" form:"offset"`
}

// RecipeStats is the aggregate snapshot behind the cached stats endpoint.
type RecipeStats struct {
	TotalRecipes    int     `json:"total_recipes"`
	TotalPublished  int     `json:"total_published"`
	TotalRatings    int     `json:"total_ratings"`
	AverageRating   float64 `json:"average_rating"`
	TotalCategories int     `json:"total_categories"`
}
