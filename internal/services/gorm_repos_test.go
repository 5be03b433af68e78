package services

// Shared test fixtures: a live in-memory SQLite database plus thin shims that
// satisfy the service repo interfaces by delegating to the repo package, the
// same wiring the router uses in production.

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
	"github.com/foodgram/go-foodgram-backend/internal/repo"
)

func newSvcDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func mustUser(t *testing.T, db *gorm.DB, id string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID: id, Email: id + "@example.com", Username: id,
		FirstName: "F", LastName: "L", PasswordHash: "h",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}

func mustRecipe(t *testing.T, db *gorm.DB, id, authorID string) *domain.Recipe {
	t.Helper()
	r := &domain.Recipe{
		ID: id, AuthorID: authorID, Name: "recipe " + id,
		Text: "steps", Image: "img.png", CookingTime: 10,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("seed recipe %s: %v", id, err)
	}
	return r
}

func mustIngredient(t *testing.T, db *gorm.DB, id, name, unit string) *domain.Ingredient {
	t.Helper()
	ing := &domain.Ingredient{ID: id, Name: name, MeasurementUnit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("seed ingredient %s: %v", id, err)
	}
	return ing
}

// svcUserRepo delegates UserRepo to the repo package.
type svcUserRepo struct{}

func (svcUserRepo) CreateUser(ctx context.Context, db *gorm.DB, email, username, firstName, lastName, passwordHash string) (*domain.User, error) {
	return repo.CreateUser(ctx, db, email, username, firstName, lastName, passwordHash)
}
func (svcUserRepo) GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}
func (svcUserRepo) GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	return repo.GetUserByEmail(ctx, db, email)
}
func (svcUserRepo) CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountUsers(ctx, db)
}
func (svcUserRepo) ListUsersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.User, error) {
	return repo.ListUsersPage(ctx, db, offset, limit)
}
func (svcUserRepo) UpdateAvatar(ctx context.Context, db *gorm.DB, id, avatar string) error {
	return repo.UpdateAvatar(ctx, db, id, avatar)
}
func (svcUserRepo) UpdatePasswordHash(ctx context.Context, db *gorm.DB, id, hash string) error {
	return repo.UpdatePasswordHash(ctx, db, id, hash)
}

// svcRecipeRepo delegates RecipeRepo to the repo package.
type svcRecipeRepo struct{}

func (svcRecipeRepo) CreateRecipe(ctx context.Context, db *gorm.DB, authorID, name, text, image string, cookingTime int) (*domain.Recipe, error) {
	return repo.CreateRecipe(ctx, db, authorID, name, text, image, cookingTime)
}
func (svcRecipeRepo) GetRecipe(ctx context.Context, db *gorm.DB, id string) (*domain.Recipe, error) {
	return repo.GetRecipe(ctx, db, id)
}
func (svcRecipeRepo) UpdateRecipeScalars(ctx context.Context, db *gorm.DB, id, name, text, image string, cookingTime int) error {
	return repo.UpdateRecipeScalars(ctx, db, id, name, text, image, cookingTime)
}
func (svcRecipeRepo) DeleteRecipe(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteRecipe(ctx, db, id)
}
func (svcRecipeRepo) ReplaceRecipeIngredients(ctx context.Context, db *gorm.DB, recipeID string, links []domain.RecipeIngredient) error {
	return repo.ReplaceRecipeIngredients(ctx, db, recipeID, links)
}
func (svcRecipeRepo) ListRecipeIngredients(ctx context.Context, db *gorm.DB, recipeID string) ([]repo.IngredientLine, error) {
	return repo.ListRecipeIngredients(ctx, db, recipeID)
}
func (svcRecipeRepo) CountRecipes(ctx context.Context, db *gorm.DB, f repo.RecipeFilter) (int64, error) {
	return repo.CountRecipes(ctx, db, f)
}
func (svcRecipeRepo) ListRecipesPage(ctx context.Context, db *gorm.DB, f repo.RecipeFilter, offset, limit int) ([]domain.Recipe, error) {
	return repo.ListRecipesPage(ctx, db, f, offset, limit)
}
func (svcRecipeRepo) ListRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID string, limit int) ([]domain.Recipe, error) {
	return repo.ListRecipesByAuthor(ctx, db, authorID, limit)
}
func (svcRecipeRepo) CountRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID string) (int64, error) {
	return repo.CountRecipesByAuthor(ctx, db, authorID)
}

// svcCatalog delegates IngredientCatalog and IngredientRepo to the repo package.
type svcCatalog struct{}

func (svcCatalog) GetIngredientsByIDs(ctx context.Context, db *gorm.DB, ids []string) (map[string]domain.Ingredient, error) {
	return repo.GetIngredientsByIDs(ctx, db, ids)
}
func (svcCatalog) ListIngredients(ctx context.Context, db *gorm.DB, prefix string) ([]domain.Ingredient, error) {
	return repo.ListIngredients(ctx, db, prefix)
}
func (svcCatalog) GetIngredient(ctx context.Context, db *gorm.DB, id string) (*domain.Ingredient, error) {
	return repo.GetIngredient(ctx, db, id)
}

// svcRelationRepo delegates RelationRepo to the repo package.
type svcRelationRepo struct{}

func (svcRelationRepo) AddFavorite(ctx context.Context, db *gorm.DB, userID, recipeID string) error {
	return repo.AddFavorite(ctx, db, userID, recipeID)
}
func (svcRelationRepo) RemoveFavorite(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	return repo.RemoveFavorite(ctx, db, userID, recipeID)
}
func (svcRelationRepo) IsFavorited(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	return repo.IsFavorited(ctx, db, userID, recipeID)
}
func (svcRelationRepo) AddCartItem(ctx context.Context, db *gorm.DB, userID, recipeID string) error {
	return repo.AddCartItem(ctx, db, userID, recipeID)
}
func (svcRelationRepo) RemoveCartItem(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	return repo.RemoveCartItem(ctx, db, userID, recipeID)
}
func (svcRelationRepo) IsInCart(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	return repo.IsInCart(ctx, db, userID, recipeID)
}
func (svcRelationRepo) AddSubscription(ctx context.Context, db *gorm.DB, subscriberID, authorID string) error {
	return repo.AddSubscription(ctx, db, subscriberID, authorID)
}
func (svcRelationRepo) RemoveSubscription(ctx context.Context, db *gorm.DB, subscriberID, authorID string) (bool, error) {
	return repo.RemoveSubscription(ctx, db, subscriberID, authorID)
}
func (svcRelationRepo) IsSubscribed(ctx context.Context, db *gorm.DB, subscriberID, authorID string) (bool, error) {
	return repo.IsSubscribed(ctx, db, subscriberID, authorID)
}
func (svcRelationRepo) CountSubscribedAuthors(ctx context.Context, db *gorm.DB, subscriberID string) (int64, error) {
	return repo.CountSubscribedAuthors(ctx, db, subscriberID)
}
func (svcRelationRepo) ListSubscribedAuthorsPage(ctx context.Context, db *gorm.DB, subscriberID string, offset, limit int) ([]domain.User, error) {
	return repo.ListSubscribedAuthorsPage(ctx, db, subscriberID, offset, limit)
}

// svcTargets delegates RelationTargets and ShortLinkRecipes to the repo package.
type svcTargets struct{}

func (svcTargets) GetRecipe(ctx context.Context, db *gorm.DB, id string) (*domain.Recipe, error) {
	return repo.GetRecipe(ctx, db, id)
}
func (svcTargets) GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

// svcShoppingRepo delegates ShoppingRepo to the repo package.
type svcShoppingRepo struct{}

func (svcShoppingRepo) AggregateShoppingList(ctx context.Context, db *gorm.DB, userID string) ([]domain.ShoppingListItem, error) {
	return repo.AggregateShoppingList(ctx, db, userID)
}

// svcShortLinkRepo delegates ShortLinkRepo to the repo package.
type svcShortLinkRepo struct{}

func (svcShortLinkRepo) GetShortLinkByRecipe(ctx context.Context, db *gorm.DB, recipeID string) (*domain.ShortLink, error) {
	return repo.GetShortLinkByRecipe(ctx, db, recipeID)
}
func (svcShortLinkRepo) GetShortLinkByCode(ctx context.Context, db *gorm.DB, code string) (*domain.ShortLink, error) {
	return repo.GetShortLinkByCode(ctx, db, code)
}
func (svcShortLinkRepo) CodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	return repo.CodeExists(ctx, db, code)
}
func (svcShortLinkRepo) CreateShortLink(ctx context.Context, db *gorm.DB, recipeID, code string) (*domain.ShortLink, error) {
	return repo.CreateShortLink(ctx, db, recipeID, code)
}
