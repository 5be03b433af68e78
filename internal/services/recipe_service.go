// Package services – RecipeService
//
// This file implements RecipeService, the application-level component that
// owns the recipe lifecycle. It validates inputs, enforces ownership on
// mutation, resolves ingredient references against the catalog, and persists
// the recipe together with its ingredient links atomically so a recipe is
// never observable without its ingredients.
//
// Observability: the multi-step mutations are OpenTelemetry-instrumented;
// spans include recipe/user identifiers.
package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
	"github.com/foodgram/go-foodgram-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxRecipeNameLen = 256
	maxCookingTime   = 32000
	maxAmount        = 32000
)

// IngredientInput is one ingredient reference in a create/update request.
type IngredientInput struct {
	ID     string
	Amount int
}

// RecipeRepo defines the repository contract required by RecipeService.
type RecipeRepo interface {
	// CreateRecipe inserts a recipe row owned by authorID.
	CreateRecipe(ctx context.Context, db *gorm.DB, authorID, name, text, image string, cookingTime int) (*domain.Recipe, error)

	// GetRecipe fetches a recipe by id.
	GetRecipe(ctx context.Context, db *gorm.DB, id string) (*domain.Recipe, error)

	// UpdateRecipeScalars writes the scalar columns of a recipe.
	UpdateRecipeScalars(ctx context.Context, db *gorm.DB, id, name, text, image string, cookingTime int) error

	// DeleteRecipe removes a recipe; related rows go via FK cascades.
	DeleteRecipe(ctx context.Context, db *gorm.DB, id string) error

	// ReplaceRecipeIngredients swaps the full ingredient link set.
	ReplaceRecipeIngredients(ctx context.Context, db *gorm.DB, recipeID string, links []domain.RecipeIngredient) error

	// ListRecipeIngredients returns the ingredient lines joined with the catalog.
	ListRecipeIngredients(ctx context.Context, db *gorm.DB, recipeID string) ([]repo.IngredientLine, error)

	// CountRecipes returns the number of recipes matching the filter.
	CountRecipes(ctx context.Context, db *gorm.DB, f repo.RecipeFilter) (int64, error)

	// ListRecipesPage returns a page of recipes matching the filter.
	ListRecipesPage(ctx context.Context, db *gorm.DB, f repo.RecipeFilter, offset, limit int) ([]domain.Recipe, error)

	// ListRecipesByAuthor returns an author's recipes, newest first,
	// optionally truncated to limit.
	ListRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID string, limit int) ([]domain.Recipe, error)

	// CountRecipesByAuthor returns the author's total recipe count.
	CountRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID string) (int64, error)
}

// IngredientCatalog is the read side of the ingredient catalog needed to
// resolve references during recipe mutation.
type IngredientCatalog interface {
	// GetIngredientsByIDs loads catalog entries keyed by id; missing ids are
	// absent from the map.
	GetIngredientsByIDs(ctx context.Context, db *gorm.DB, ids []string) (map[string]domain.Ingredient, error)
}

// RecipeService coordinates recipe persistence and validation.
type RecipeService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the recipe repository used by this service.
	Repo RecipeRepo
	// Catalog resolves ingredient references.
	Catalog IngredientCatalog

	// MinCookingTime is the smallest accepted cooking time in minutes.
	MinCookingTime int
	// MinAmount is the smallest accepted per-ingredient amount.
	MinAmount int
}

// NewRecipeService constructs a RecipeService with the minimums both set to 1.
func NewRecipeService(db *gorm.DB, r RecipeRepo, c IngredientCatalog) *RecipeService {
	return &RecipeService{DB: db, Repo: r, Catalog: c, MinCookingTime: 1, MinAmount: 1}
}

// Create validates the input, resolves every ingredient reference, and
// persists the recipe with its ingredient links in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID, name, text, image string, cookingTime int, ingredients []IngredientInput) (*domain.Recipe, []repo.IngredientLine, error) {
	tr := otel.Tracer("services/RecipeService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("user.id", authorID)),
	)
	defer span.End()

	name = strings.TrimSpace(name)
	text = strings.TrimSpace(text)
	image = strings.TrimSpace(image)
	if err := s.validateScalars(name, text, image, cookingTime); err != nil {
		return nil, nil, err
	}
	links, err := s.resolveIngredients(ctx, ingredients)
	if err != nil {
		return nil, nil, err
	}

	var created *domain.Recipe
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.Repo.CreateRecipe(ctx, tx, authorID, name, text, image, cookingTime)
		if err != nil {
			return err
		}
		created = r
		return s.Repo.ReplaceRecipeIngredients(ctx, tx, r.ID, links)
	})
	if err != nil {
		return nil, nil, err
	}

	lines, err := s.Repo.ListRecipeIngredients(ctx, s.DB, created.ID)
	if err != nil {
		return nil, nil, err
	}
	return created, lines, nil
}

// Update replaces the scalar fields and the full ingredient set of a recipe.
// Only the author may update; anyone else gets ErrRecipeForbidden.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID, name, text, image string, cookingTime int, ingredients []IngredientInput) (*domain.Recipe, []repo.IngredientLine, error) {
	tr := otel.Tracer("services/RecipeService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(
			attribute.String("recipe.id", recipeID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	name = strings.TrimSpace(name)
	text = strings.TrimSpace(text)
	image = strings.TrimSpace(image)
	if err := s.validateScalars(name, text, image, cookingTime); err != nil {
		return nil, nil, err
	}
	links, err := s.resolveIngredients(ctx, ingredients)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.Repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrRecipeNotFound
		}
		return nil, nil, err
	}
	if existing.AuthorID != userID {
		return nil, nil, ErrRecipeForbidden
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Repo.UpdateRecipeScalars(ctx, tx, recipeID, name, text, image, cookingTime); err != nil {
			return err
		}
		return s.Repo.ReplaceRecipeIngredients(ctx, tx, recipeID, links)
	})
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.Repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.Repo.ListRecipeIngredients(ctx, s.DB, recipeID)
	if err != nil {
		return nil, nil, err
	}
	return updated, lines, nil
}

// Delete removes a recipe. Only the author may delete; related favorite,
// cart, link and short-link rows disappear via FK cascades.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID string) error {
	existing, err := s.Repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if isNotFound(err) {
			return ErrRecipeNotFound
		}
		return err
	}
	if existing.AuthorID != userID {
		return ErrRecipeForbidden
	}
	if err := s.Repo.DeleteRecipe(ctx, s.DB, recipeID); err != nil {
		if isNotFound(err) {
			return ErrRecipeNotFound
		}
		return err
	}
	return nil
}

// Get returns a recipe with its ingredient lines, or ErrRecipeNotFound.
func (s *RecipeService) Get(ctx context.Context, recipeID string) (*domain.Recipe, []repo.IngredientLine, error) {
	r, err := s.Repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrRecipeNotFound
		}
		return nil, nil, err
	}
	lines, err := s.Repo.ListRecipeIngredients(ctx, s.DB, recipeID)
	if err != nil {
		return nil, nil, err
	}
	return r, lines, nil
}

// Lines returns just the ingredient lines of a recipe. Listings use it so
// that each page item costs one extra query instead of re-fetching the
// recipe row ListPage already loaded.
func (s *RecipeService) Lines(ctx context.Context, recipeID string) ([]repo.IngredientLine, error) {
	return s.Repo.ListRecipeIngredients(ctx, s.DB, recipeID)
}

// ListPage returns a filtered page of recipes, newest first, plus the total.
func (s *RecipeService) ListPage(ctx context.Context, f repo.RecipeFilter, page, pageSize int) ([]domain.Recipe, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 6
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountRecipes(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Recipe{}, 0, nil
	}

	items, err := s.Repo.ListRecipesPage(ctx, s.DB, f, offset, pageSize)
	return items, total, err
}

// ListByAuthor returns the author's recipes, newest first. A limit <= 0
// returns them all; subscription payloads pass the recipes_limit here.
func (s *RecipeService) ListByAuthor(ctx context.Context, authorID string, limit int) ([]domain.Recipe, error) {
	items, err := s.Repo.ListRecipesByAuthor(ctx, s.DB, authorID, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Recipe{}
	}
	return items, nil
}

// CountByAuthor returns the author's total recipe count.
func (s *RecipeService) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	return s.Repo.CountRecipesByAuthor(ctx, s.DB, authorID)
}

func (s *RecipeService) validateScalars(name, text, image string, cookingTime int) error {
	if name == "" {
		return invalid("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxRecipeNameLen {
		return invalid("name", "too long")
	}
	if text == "" {
		return invalid("text", "must not be empty")
	}
	if image == "" {
		return invalid("image", "must not be empty")
	}
	min := s.MinCookingTime
	if min <= 0 {
		min = 1
	}
	if cookingTime < min || cookingTime > maxCookingTime {
		return invalid("cooking_time", "out of range")
	}
	return nil
}

// resolveIngredients validates the reference list and turns it into link
// rows. Every id must exist in the catalog and appear at most once.
func (s *RecipeService) resolveIngredients(ctx context.Context, ingredients []IngredientInput) ([]domain.RecipeIngredient, error) {
	if len(ingredients) == 0 {
		return nil, invalid("ingredients", "at least one ingredient is required")
	}

	minAmount := s.MinAmount
	if minAmount <= 0 {
		minAmount = 1
	}
	ids := make([]string, 0, len(ingredients))
	seen := make(map[string]struct{}, len(ingredients))
	for _, in := range ingredients {
		if in.ID == "" {
			return nil, invalid("ingredients", "ingredient id must not be empty")
		}
		if _, dup := seen[in.ID]; dup {
			return nil, invalid("ingredients", "duplicate ingredient")
		}
		seen[in.ID] = struct{}{}
		if in.Amount < minAmount || in.Amount > maxAmount {
			return nil, invalid("ingredients", "amount out of range")
		}
		ids = append(ids, in.ID)
	}

	catalog, err := s.Catalog.GetIngredientsByIDs(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	links := make([]domain.RecipeIngredient, 0, len(ingredients))
	for _, in := range ingredients {
		if _, ok := catalog[in.ID]; !ok {
			return nil, ErrIngredientNotFound
		}
		links = append(links, domain.RecipeIngredient{
			IngredientID: in.ID,
			Amount:       in.Amount,
		})
	}
	return links, nil
}
