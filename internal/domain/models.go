// Package domain defines the persistence models for users, ingredients,
// recipes, and the relation tables that connect them (favorites, shopping
// carts, subscriptions, short links). These types are mapped with GORM and
// form the core data layer of the application.
package domain

import "time"

// User represents a registered account. Users author recipes, mark favorites,
// keep a shopping cart, and subscribe to other authors.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: login identity, unique across all users.
//   - Username: public handle, unique.
//   - FirstName / LastName: required profile names.
//   - PasswordHash: bcrypt hash, never serialized.
//   - Avatar: optional URL of the profile image (opaque to this service).
type User struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email"      gorm:"type:varchar(254);not null;uniqueIndex:ux_users_email"`
	Username     string    `json:"username"   gorm:"type:varchar(150);not null;uniqueIndex:ux_users_username"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(150);not null"`
	LastName     string    `json:"last_name"  gorm:"type:varchar(150);not null"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(128);not null"`
	Avatar       string    `json:"avatar"     gorm:"type:varchar(512)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Ingredient is a catalog entry: a name together with its measurement unit.
// The same name may appear with different units ("sugar" in grams and in
// tablespoons), so uniqueness is enforced on the pair.
type Ingredient struct {
	ID              string `json:"id"               gorm:"type:char(36);primaryKey"`
	Name            string `json:"name"             gorm:"type:varchar(128);not null;uniqueIndex:ux_ingredients_name_unit,priority:1;index:idx_ingredients_name"`
	MeasurementUnit string `json:"measurement_unit" gorm:"type:varchar(64);not null;uniqueIndex:ux_ingredients_name_unit,priority:2"`
}

// TableName returns the database table name for Ingredient.
func (Ingredient) TableName() string { return "ingredients" }

// Recipe is a published recipe owned by its author. Ingredient amounts live
// in RecipeIngredient rows; favorites and cart membership live in their own
// join tables.
type Recipe struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	AuthorID    string    `json:"author_id"    gorm:"type:char(36);not null;index:idx_recipes_author"`
	Name        string    `json:"name"         gorm:"type:varchar(256);not null"`
	Text        string    `json:"text"         gorm:"type:text;not null"`
	Image       string    `json:"image"        gorm:"type:varchar(512);not null"`
	CookingTime int       `json:"cooking_time" gorm:"not null;check:cooking_time > 0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Author is the owning user. Recipes are cascade-deleted with the account.
	Author User `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Recipe.
func (Recipe) TableName() string { return "recipes" }

// RecipeIngredient links a recipe to one ingredient with an amount.
// A recipe may reference each ingredient at most once; the whole set is
// replaced wholesale when a recipe is updated.
type RecipeIngredient struct {
	ID           string `json:"id"            gorm:"type:char(36);primaryKey"`
	RecipeID     string `json:"recipe_id"     gorm:"type:char(36);not null;uniqueIndex:ux_recipe_ingredient,priority:1;index"`
	IngredientID string `json:"ingredient_id" gorm:"type:char(36);not null;uniqueIndex:ux_recipe_ingredient,priority:2"`
	Amount       int    `json:"amount"        gorm:"not null;check:amount > 0"`

	Recipe     Recipe     `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Ingredient Ingredient `json:"-" gorm:"foreignKey:IngredientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for RecipeIngredient.
func (RecipeIngredient) TableName() string { return "recipe_ingredients" }

// Favorite marks a recipe as favorited by a user. One row per (user, recipe)
// pair, enforced by a unique index; a second insert is a conflict, not a
// silent success.
type Favorite struct {
	ID       string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID   string    `json:"user_id"   gorm:"type:char(36);not null;uniqueIndex:ux_favorites_user_recipe,priority:1;index"`
	RecipeID string    `json:"recipe_id" gorm:"type:char(36);not null;uniqueIndex:ux_favorites_user_recipe,priority:2;index"`
	AddedAt  time.Time `json:"added_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Favorite.
func (Favorite) TableName() string { return "favorites" }

// ShoppingCart marks a recipe as queued for purchase by a user. Same pair
// semantics as Favorite; the aggregation query sums ingredient amounts over
// these rows.
type ShoppingCart struct {
	ID       string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID   string    `json:"user_id"   gorm:"type:char(36);not null;uniqueIndex:ux_cart_user_recipe,priority:1;index"`
	RecipeID string    `json:"recipe_id" gorm:"type:char(36);not null;uniqueIndex:ux_cart_user_recipe,priority:2;index"`
	AddedAt  time.Time `json:"added_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ShoppingCart.
func (ShoppingCart) TableName() string { return "shopping_carts" }

// Subscription is a directed follow relation from a subscriber to an author.
// Self-subscription is rejected at the service layer and guarded by a CHECK.
type Subscription struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	SubscriberID string    `json:"subscriber_id" gorm:"type:char(36);not null;uniqueIndex:ux_subs_subscriber_author,priority:1;index;check:chk_subs_not_self,subscriber_id <> author_id"`
	AuthorID     string    `json:"author_id"     gorm:"type:char(36);not null;uniqueIndex:ux_subs_subscriber_author,priority:2;index"`
	SubscribedAt time.Time `json:"subscribed_at"`

	Subscriber User `json:"-" gorm:"foreignKey:SubscriberID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Author     User `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Subscription.
func (Subscription) TableName() string { return "subscriptions" }

// ShortLink maps a recipe to its compact share code. Created lazily the first
// time a link is requested and memoized afterwards; the unique index on the
// code is the final authority against collisions.
type ShortLink struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	RecipeID  string    `json:"recipe_id" gorm:"type:char(36);not null;uniqueIndex:ux_short_links_recipe"`
	Code      string    `json:"code"      gorm:"type:varchar(10);not null;uniqueIndex:ux_short_links_code"`
	CreatedAt time.Time `json:"created_at"`

	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ShortLink.
func (ShortLink) TableName() string { return "short_links" }

// ShoppingListItem is one consolidated line of a user's shopping list:
// the summed amount of a single ingredient across every recipe in the cart.
// It is a query projection, not a table.
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Total           int    `json:"total"`
}
