// Package repo – Recipe repository.
//
// Provides CRUD persistence for recipes, filtered and paginated listing, and
// the wholesale replacement of a recipe's ingredient links. Replacement is a
// plain delete-all-then-bulk-insert; the service layer wraps it together with
// the scalar update in a single transaction so callers never observe a recipe
// without its ingredients.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
)

// RecipeFilter narrows recipe listings. Zero values mean "no restriction".
//
// FavoritedBy and InCartOf restrict to recipes the given user has favorited
// or added to the cart; handlers resolve anonymous callers before building
// the filter, so an anonymous request with either flag never reaches here.
type RecipeFilter struct {
	AuthorID    string
	NamePrefix  string
	FavoritedBy string
	InCartOf    string
}

// IngredientLine is a recipe's ingredient joined with its catalog entry.
type IngredientLine struct {
	IngredientID    string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// CreateRecipe inserts a new Recipe row owned by authorID. The id is a
// randomly generated UUID and CreatedAt is set to UTC.
func CreateRecipe(ctx context.Context, db *gorm.DB, authorID, name, text, image string, cookingTime int) (*domain.Recipe, error) {
	r := &domain.Recipe{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		Name:        name,
		Text:        text,
		Image:       image,
		CookingTime: cookingTime,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRecipe fetches a recipe by id with its author, or ErrNotFound if
// missing.
func GetRecipe(ctx context.Context, db *gorm.DB, id string) (*domain.Recipe, error) {
	var r domain.Recipe
	if err := db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRecipeScalars applies the scalar fields of a recipe. Existence and
// ownership checks belong to the service layer; this only writes columns.
func UpdateRecipeScalars(ctx context.Context, db *gorm.DB, id, name, text, image string, cookingTime int) error {
	return db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":         name,
			"text":         text,
			"image":        image,
			"cooking_time": cookingTime,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// DeleteRecipe removes a recipe. Ingredient links, favorites, cart entries,
// and the short link go with it via FK cascades. Returns ErrNotFound when no
// row matched.
func DeleteRecipe(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(&domain.Recipe{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceRecipeIngredients swaps the full ingredient set of a recipe:
// every existing link row is deleted, then the new set is bulk-inserted.
// Callers must run this inside a transaction together with any scalar update.
func ReplaceRecipeIngredients(ctx context.Context, db *gorm.DB, recipeID string, links []domain.RecipeIngredient) error {
	if err := db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Delete(&domain.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	for i := range links {
		if links[i].ID == "" {
			links[i].ID = uuid.NewString()
		}
		links[i].RecipeID = recipeID
	}
	return db.WithContext(ctx).Create(&links).Error
}

// ListRecipeIngredients returns a recipe's ingredient lines joined with the
// catalog, ordered by ingredient name for deterministic output.
func ListRecipeIngredients(ctx context.Context, db *gorm.DB, recipeID string) ([]IngredientLine, error) {
	var out []IngredientLine
	err := db.WithContext(ctx).
		Table("recipe_ingredients ri").
		Select("ri.ingredient_id AS ingredient_id, i.name AS name, i.measurement_unit AS measurement_unit, ri.amount AS amount").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("ri.recipe_id = ?", recipeID).
		Order("i.name asc").
		Scan(&out).Error
	return out, err
}

// applyRecipeFilter composes the WHERE clauses for f on top of q.
func applyRecipeFilter(q *gorm.DB, f RecipeFilter) *gorm.DB {
	if f.AuthorID != "" {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if p := strings.TrimSpace(f.NamePrefix); p != "" {
		p = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(p))
		q = q.Where(`lower(recipes.name) LIKE ? ESCAPE '\'`, p+"%")
	}
	if f.FavoritedBy != "" {
		q = q.Where("recipes.id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).
				Model(&domain.Favorite{}).
				Select("recipe_id").
				Where("user_id = ?", f.FavoritedBy))
	}
	if f.InCartOf != "" {
		q = q.Where("recipes.id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).
				Model(&domain.ShoppingCart{}).
				Select("recipe_id").
				Where("user_id = ?", f.InCartOf))
	}
	return q
}

// CountRecipes returns the number of recipes matching the filter.
func CountRecipes(ctx context.Context, db *gorm.DB, f RecipeFilter) (int64, error) {
	var total int64
	err := applyRecipeFilter(db.WithContext(ctx).Model(&domain.Recipe{}), f).Count(&total).Error
	return total, err
}

// ListRecipesPage returns a page of recipes matching the filter, newest
// first, with authors preloaded. Use CountRecipes for pagination metadata.
func ListRecipesPage(ctx context.Context, db *gorm.DB, f RecipeFilter, offset, limit int) ([]domain.Recipe, error) {
	var out []domain.Recipe
	err := applyRecipeFilter(db.WithContext(ctx).Model(&domain.Recipe{}), f).
		Preload("Author").
		Order("recipes.created_at desc, recipes.id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListRecipesByAuthor returns an author's recipes, newest first, optionally
// truncated to limit (limit <= 0 means all). Used for subscription payloads.
func ListRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID string, limit int) ([]domain.Recipe, error) {
	q := db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Recipe
	err := q.Find(&out).Error
	return out, err
}

// CountRecipesByAuthor returns the total number of recipes by an author.
func CountRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&total).Error
	return total, err
}
