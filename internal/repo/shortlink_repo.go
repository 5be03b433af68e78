// Package repo – ShortLink repository.
//
// Short links are one row per recipe, created lazily. Both the recipe id and
// the code carry unique indexes; the code index is the final authority
// against generator collisions (the generator's existence probe is only a
// best-effort pre-check).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
)

// GetShortLinkByRecipe fetches the short link of a recipe, or ErrNotFound.
func GetShortLinkByRecipe(ctx context.Context, db *gorm.DB, recipeID string) (*domain.ShortLink, error) {
	var l domain.ShortLink
	if err := db.WithContext(ctx).Where("recipe_id = ?", recipeID).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// GetShortLinkByCode fetches a short link by its code, or ErrNotFound.
func GetShortLinkByCode(ctx context.Context, db *gorm.DB, code string) (*domain.ShortLink, error) {
	var l domain.ShortLink
	if err := db.WithContext(ctx).Where("code = ?", code).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// CodeExists reports whether any short link already uses the code.
func CodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ShortLink{}).
		Where("code = ?", code).
		Count(&n).Error
	return n > 0, err
}

// CreateShortLink inserts a short link row. Colliding codes or a second link
// for the same recipe propagate the unique-constraint error.
func CreateShortLink(ctx context.Context, db *gorm.DB, recipeID, code string) (*domain.ShortLink, error) {
	l := &domain.ShortLink{
		ID:        uuid.NewString(),
		RecipeID:  recipeID,
		Code:      code,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}
