// Package repo – relation repositories (favorites, shopping carts,
// subscriptions).
//
// These tables share one contract: a (user, target) pair is either absent or
// present. Inserts rely on the database unique index as the final authority,
// so a losing concurrent insert surfaces as a constraint violation that the
// service layer translates into its "already exists" error. Deletes report
// whether a row was actually removed so the service can reject removals of
// absent pairs.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
)

// AddFavorite inserts a (user, recipe) favorite row. A duplicate pair
// propagates the unique-constraint error.
func AddFavorite(ctx context.Context, db *gorm.DB, userID, recipeID string) error {
	f := &domain.Favorite{
		ID:       uuid.NewString(),
		UserID:   userID,
		RecipeID: recipeID,
		AddedAt:  time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(f).Error
}

// RemoveFavorite deletes the (user, recipe) favorite row if present and
// reports whether a row was removed.
func RemoveFavorite(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&domain.Favorite{})
	return res.RowsAffected > 0, res.Error
}

// IsFavorited reports whether the user has favorited the recipe.
func IsFavorited(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	return n > 0, err
}

// AddCartItem inserts a (user, recipe) shopping-cart row. A duplicate pair
// propagates the unique-constraint error.
func AddCartItem(ctx context.Context, db *gorm.DB, userID, recipeID string) error {
	sc := &domain.ShoppingCart{
		ID:       uuid.NewString(),
		UserID:   userID,
		RecipeID: recipeID,
		AddedAt:  time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(sc).Error
}

// RemoveCartItem deletes the (user, recipe) cart row if present and reports
// whether a row was removed.
func RemoveCartItem(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&domain.ShoppingCart{})
	return res.RowsAffected > 0, res.Error
}

// IsInCart reports whether the recipe is in the user's shopping cart.
func IsInCart(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ShoppingCart{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	return n > 0, err
}

// AddSubscription inserts a (subscriber, author) row. The self-subscription
// guard lives in the service layer; duplicates propagate the constraint
// error.
func AddSubscription(ctx context.Context, db *gorm.DB, subscriberID, authorID string) error {
	s := &domain.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: subscriberID,
		AuthorID:     authorID,
		SubscribedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(s).Error
}

// RemoveSubscription deletes the (subscriber, author) row if present and
// reports whether a row was removed.
func RemoveSubscription(ctx context.Context, db *gorm.DB, subscriberID, authorID string) (bool, error) {
	res := db.WithContext(ctx).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Delete(&domain.Subscription{})
	return res.RowsAffected > 0, res.Error
}

// IsSubscribed reports whether subscriberID follows authorID.
func IsSubscribed(ctx context.Context, db *gorm.DB, subscriberID, authorID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Count(&n).Error
	return n > 0, err
}

// CountSubscribedAuthors returns how many authors the subscriber follows.
func CountSubscribedAuthors(ctx context.Context, db *gorm.DB, subscriberID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("subscriber_id = ?", subscriberID).
		Count(&total).Error
	return total, err
}

// ListSubscribedAuthorsPage returns a page of the authors the subscriber
// follows, ordered by subscription time ascending so pages are stable.
func ListSubscribedAuthorsPage(ctx context.Context, db *gorm.DB, subscriberID string, offset, limit int) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Table("users").
		Select("users.*").
		Joins("JOIN subscriptions s ON s.author_id = users.id").
		Where("s.subscriber_id = ?", subscriberID).
		Order("s.subscribed_at asc, users.id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
