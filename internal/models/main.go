// Package models defines the core data structures for users, tags,
// ingredients and recipes.
package models

// User represents an application account identified by email.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id"`
	// Email is the unique login address; its domain part is stored lowercase.
	Email string `json:"email"`
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte `json:"-"`
	// Name is the display name, may be empty.
	Name string `json:"name"`
	// IsActive marks whether the account may authenticate.
	IsActive bool `json:"-"`
	// IsStaff grants access to administrative tooling.
	IsStaff bool `json:"-"`
	// IsSuperuser grants all permissions.
	IsSuperuser bool `json:"-"`
}

// Attribute is a named label owned by a user. Tags and ingredients share
// this shape; the repository descriptor decides which table it lives in.
type Attribute struct {
	// ID is the unique identifier for the attribute.
	ID int64 `json:"id"`
	// UserID is the owning user.
	UserID int64 `json:"-"`
	// Name is the attribute label.
	Name string `json:"name"`
}

// Recipe represents a recipe owned by a single user, with unordered sets
// of tag and ingredient references.
type Recipe struct {
	// ID is the unique identifier for the recipe.
	ID int64 `json:"id"`
	// UserID is the owning user.
	UserID int64 `json:"-"`
	// Title is the recipe title.
	Title string `json:"title"`
	// TimeMinutes is the preparation duration in minutes.
	TimeMinutes int `json:"time_minutes"`
	// Price is the cost with two decimal places.
	Price Price `json:"price"`
	// Link is an optional external URL.
	Link string `json:"link"`
	// Image is the stored upload path, empty when no image is attached.
	Image string `json:"image"`
	// TagIDs are ids of linked tags.
	TagIDs []int64 `json:"tags"`
	// IngredientIDs are ids of linked ingredients.
	IngredientIDs []int64 `json:"ingredients"`
}

// RecipeDetail is the detail-view shape of a Recipe: relationship members
// are expanded into full objects instead of bare ids.
type RecipeDetail struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	TimeMinutes int         `json:"time_minutes"`
	Price       Price       `json:"price"`
	Link        string      `json:"link"`
	Image       string      `json:"image"`
	Tags        []Attribute `json:"tags"`
	Ingredients []Attribute `json:"ingredients"`
}
