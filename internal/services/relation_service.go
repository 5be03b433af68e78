// Package services – RelationService
//
// This file implements RelationService, which governs the three user→target
// relations: favorites, shopping-cart membership, and author subscriptions.
// All three share toggle semantics with strict conflicts: adding an existing
// pair and removing an absent pair are both errors, so a stale client learns
// its view is out of date instead of silently "succeeding".
//
// Concurrency: inserts run inside a transaction and rely on the unique index
// as the final authority, so exactly one of two concurrent adds wins and the
// loser gets the stable "already exists" sentinel.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
)

// RelationRepo defines the repository contract required by RelationService.
type RelationRepo interface {
	AddFavorite(ctx context.Context, db *gorm.DB, userID, recipeID string) error
	RemoveFavorite(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error)
	IsFavorited(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error)

	AddCartItem(ctx context.Context, db *gorm.DB, userID, recipeID string) error
	RemoveCartItem(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error)
	IsInCart(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error)

	AddSubscription(ctx context.Context, db *gorm.DB, subscriberID, authorID string) error
	RemoveSubscription(ctx context.Context, db *gorm.DB, subscriberID, authorID string) (bool, error)
	IsSubscribed(ctx context.Context, db *gorm.DB, subscriberID, authorID string) (bool, error)
	CountSubscribedAuthors(ctx context.Context, db *gorm.DB, subscriberID string) (int64, error)
	ListSubscribedAuthorsPage(ctx context.Context, db *gorm.DB, subscriberID string, offset, limit int) ([]domain.User, error)
}

// RelationTargets resolves the targets of relation operations so missing
// recipes/users map to 404 instead of a dangling row.
type RelationTargets interface {
	GetRecipe(ctx context.Context, db *gorm.DB, id string) (*domain.Recipe, error)
	GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error)
}

// RelationService implements favorites, cart membership and subscriptions.
type RelationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the relation repository used by this service.
	Repo RelationRepo
	// Targets verifies the recipe/user a relation points at.
	Targets RelationTargets
}

// NewRelationService constructs a RelationService.
func NewRelationService(db *gorm.DB, r RelationRepo, t RelationTargets) *RelationService {
	return &RelationService{DB: db, Repo: r, Targets: t}
}

// AddFavorite marks the recipe as favorited by the user.
//
// Errors: ErrRecipeNotFound when the recipe is missing, ErrAlreadyFavorited
// when the pair exists (including a lost race with a concurrent add).
func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID string) (*domain.Recipe, error) {
	return s.addRecipeRelation(ctx, userID, recipeID, s.Repo.AddFavorite, ErrAlreadyFavorited)
}

// RemoveFavorite removes the favorite mark, or ErrNotFavorited if absent.
func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	return s.removeRecipeRelation(ctx, userID, recipeID, s.Repo.RemoveFavorite, ErrNotFavorited)
}

// IsFavorited reports whether the user has favorited the recipe. Used when
// assembling recipe payloads for an authenticated caller.
func (s *RelationService) IsFavorited(ctx context.Context, userID, recipeID string) (bool, error) {
	return s.Repo.IsFavorited(ctx, s.DB, userID, recipeID)
}

// AddToCart puts the recipe into the user's shopping cart.
//
// Errors: ErrRecipeNotFound when the recipe is missing, ErrAlreadyInCart when
// the pair exists.
func (s *RelationService) AddToCart(ctx context.Context, userID, recipeID string) (*domain.Recipe, error) {
	return s.addRecipeRelation(ctx, userID, recipeID, s.Repo.AddCartItem, ErrAlreadyInCart)
}

// RemoveFromCart takes the recipe out of the cart, or ErrNotInCart if absent.
func (s *RelationService) RemoveFromCart(ctx context.Context, userID, recipeID string) error {
	return s.removeRecipeRelation(ctx, userID, recipeID, s.Repo.RemoveCartItem, ErrNotInCart)
}

// IsInCart reports whether the recipe is in the user's cart.
func (s *RelationService) IsInCart(ctx context.Context, userID, recipeID string) (bool, error) {
	return s.Repo.IsInCart(ctx, s.DB, userID, recipeID)
}

// Subscribe makes userID follow authorID.
//
// Errors: ErrUserNotFound when the author is missing, ErrSelfSubscribe when
// the two ids match, ErrAlreadySubscribed when the pair exists.
func (s *RelationService) Subscribe(ctx context.Context, userID, authorID string) (*domain.User, error) {
	if userID == authorID {
		return nil, ErrSelfSubscribe
	}
	author, err := s.Targets.GetUser(ctx, s.DB, authorID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Repo.AddSubscription(ctx, tx, userID, authorID); err != nil {
			if isDuplicate(err) {
				return ErrAlreadySubscribed
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return author, nil
}

// Unsubscribe removes the follow relation, or ErrNotSubscribed if absent.
// A missing author still yields ErrUserNotFound so the client can tell the
// difference between a stale follow and a deleted account.
func (s *RelationService) Unsubscribe(ctx context.Context, userID, authorID string) error {
	if _, err := s.Targets.GetUser(ctx, s.DB, authorID); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	removed, err := s.Repo.RemoveSubscription(ctx, s.DB, userID, authorID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotSubscribed
	}
	return nil
}

// IsSubscribed reports whether userID follows authorID.
func (s *RelationService) IsSubscribed(ctx context.Context, userID, authorID string) (bool, error) {
	return s.Repo.IsSubscribed(ctx, s.DB, userID, authorID)
}

// ListSubscriptions returns a page of the authors the user follows, in
// subscription order, plus the total.
func (s *RelationService) ListSubscriptions(ctx context.Context, userID string, page, pageSize int) ([]domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 6
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountSubscribedAuthors(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.User{}, 0, nil
	}

	items, err := s.Repo.ListSubscribedAuthorsPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// addRecipeRelation resolves the recipe, then inserts the pair inside a
// transaction, translating a unique violation into the given conflict error.
func (s *RelationService) addRecipeRelation(
	ctx context.Context,
	userID, recipeID string,
	add func(ctx context.Context, db *gorm.DB, userID, recipeID string) error,
	conflict error,
) (*domain.Recipe, error) {
	recipe, err := s.Targets.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := add(ctx, tx, userID, recipeID); err != nil {
			if isDuplicate(err) {
				return conflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// removeRecipeRelation resolves the recipe, then deletes the pair, mapping
// "nothing removed" to the given absence error.
func (s *RelationService) removeRecipeRelation(
	ctx context.Context,
	userID, recipeID string,
	remove func(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error),
	absent error,
) error {
	if _, err := s.Targets.GetRecipe(ctx, s.DB, recipeID); err != nil {
		if isNotFound(err) {
			return ErrRecipeNotFound
		}
		return err
	}
	removed, err := remove(ctx, s.DB, userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return absent
	}
	return nil
}
