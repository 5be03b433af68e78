// Package services – IngredientService
//
// Thin read layer over the ingredient catalog: name-prefix search for the
// recipe editor's autocomplete and single-entry lookup.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
)

// IngredientRepo defines the repository contract required by IngredientService.
type IngredientRepo interface {
	// ListIngredients returns catalog entries, optionally prefix-filtered.
	ListIngredients(ctx context.Context, db *gorm.DB, prefix string) ([]domain.Ingredient, error)

	// GetIngredient fetches one catalog entry by id.
	GetIngredient(ctx context.Context, db *gorm.DB, id string) (*domain.Ingredient, error)
}

// IngredientService exposes catalog reads.
type IngredientService struct {
	DB   *gorm.DB
	Repo IngredientRepo
}

// NewIngredientService constructs an IngredientService.
func NewIngredientService(db *gorm.DB, r IngredientRepo) *IngredientService {
	return &IngredientService{DB: db, Repo: r}
}

// List returns catalog entries whose name starts with prefix (all entries
// when prefix is empty), ordered by name.
func (s *IngredientService) List(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	items, err := s.Repo.ListIngredients(ctx, s.DB, prefix)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Ingredient{}
	}
	return items, nil
}

// Get returns one catalog entry, or ErrIngredientNotFound.
func (s *IngredientService) Get(ctx context.Context, id string) (*domain.Ingredient, error) {
	ing, err := s.Repo.GetIngredient(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return ing, nil
}
