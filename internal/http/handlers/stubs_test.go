package handlers

// Function-field stubs for every service contract, so each test overrides
// only the calls it cares about. Nil fields fall back to benign defaults.

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
	"github.com/foodgram/go-foodgram-backend/internal/repo"
	"github.com/foodgram/go-foodgram-backend/internal/services"
)

type stubUserSvc struct {
	register       func(ctx context.Context, email, username, firstName, lastName, password string) (*domain.User, error)
	authenticate   func(ctx context.Context, email, password string) (*domain.User, error)
	get            func(ctx context.Context, id string) (*domain.User, error)
	listPage       func(ctx context.Context, page, pageSize int) ([]domain.User, int64, error)
	setAvatar      func(ctx context.Context, userID, avatar string) error
	removeAvatar   func(ctx context.Context, userID string) error
	changePassword func(ctx context.Context, userID, current, next string) error
}

func (s stubUserSvc) Register(ctx context.Context, email, username, firstName, lastName, password string) (*domain.User, error) {
	if s.register != nil {
		return s.register(ctx, email, username, firstName, lastName, password)
	}
	return &domain.User{ID: "u-new", Email: email, Username: username, FirstName: firstName, LastName: lastName}, nil
}
func (s stubUserSvc) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if s.authenticate != nil {
		return s.authenticate(ctx, email, password)
	}
	return &domain.User{ID: "u-auth", Email: email}, nil
}
func (s stubUserSvc) Get(ctx context.Context, id string) (*domain.User, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.User{ID: id, Email: id + "@example.com", Username: id}, nil
}
func (s stubUserSvc) ListPage(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, page, pageSize)
	}
	return []domain.User{}, 0, nil
}
func (s stubUserSvc) SetAvatar(ctx context.Context, userID, avatar string) error {
	if s.setAvatar != nil {
		return s.setAvatar(ctx, userID, avatar)
	}
	return nil
}
func (s stubUserSvc) RemoveAvatar(ctx context.Context, userID string) error {
	if s.removeAvatar != nil {
		return s.removeAvatar(ctx, userID)
	}
	return nil
}
func (s stubUserSvc) ChangePassword(ctx context.Context, userID, current, next string) error {
	if s.changePassword != nil {
		return s.changePassword(ctx, userID, current, next)
	}
	return nil
}

type stubIngSvc struct {
	list func(ctx context.Context, prefix string) ([]domain.Ingredient, error)
	get  func(ctx context.Context, id string) (*domain.Ingredient, error)
}

func (s stubIngSvc) List(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	if s.list != nil {
		return s.list(ctx, prefix)
	}
	return []domain.Ingredient{}, nil
}
func (s stubIngSvc) Get(ctx context.Context, id string) (*domain.Ingredient, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.Ingredient{ID: id, Name: "salt", MeasurementUnit: "g"}, nil
}

type stubRecipeSvc struct {
	create        func(ctx context.Context, authorID, name, text, image string, cookingTime int, ings []services.IngredientInput) (*domain.Recipe, []repo.IngredientLine, error)
	update        func(ctx context.Context, userID, recipeID, name, text, image string, cookingTime int, ings []services.IngredientInput) (*domain.Recipe, []repo.IngredientLine, error)
	del           func(ctx context.Context, userID, recipeID string) error
	get           func(ctx context.Context, recipeID string) (*domain.Recipe, []repo.IngredientLine, error)
	lines         func(ctx context.Context, recipeID string) ([]repo.IngredientLine, error)
	listPage      func(ctx context.Context, f repo.RecipeFilter, page, pageSize int) ([]domain.Recipe, int64, error)
	listByAuthor  func(ctx context.Context, authorID string, limit int) ([]domain.Recipe, error)
	countByAuthor func(ctx context.Context, authorID string) (int64, error)
}

func stubRecipe(id, authorID string) *domain.Recipe {
	return &domain.Recipe{
		ID:          id,
		AuthorID:    authorID,
		Author:      domain.User{ID: authorID, Username: authorID},
		Name:        "borscht",
		Text:        "simmer",
		Image:       "https://cdn.example.com/b.png",
		CookingTime: 90,
	}
}

func (s stubRecipeSvc) Create(ctx context.Context, authorID, name, text, image string, cookingTime int, ings []services.IngredientInput) (*domain.Recipe, []repo.IngredientLine, error) {
	if s.create != nil {
		return s.create(ctx, authorID, name, text, image, cookingTime, ings)
	}
	return stubRecipe("r-new", authorID), nil, nil
}
func (s stubRecipeSvc) Update(ctx context.Context, userID, recipeID, name, text, image string, cookingTime int, ings []services.IngredientInput) (*domain.Recipe, []repo.IngredientLine, error) {
	if s.update != nil {
		return s.update(ctx, userID, recipeID, name, text, image, cookingTime, ings)
	}
	return stubRecipe(recipeID, userID), nil, nil
}
func (s stubRecipeSvc) Delete(ctx context.Context, userID, recipeID string) error {
	if s.del != nil {
		return s.del(ctx, userID, recipeID)
	}
	return nil
}
func (s stubRecipeSvc) Get(ctx context.Context, recipeID string) (*domain.Recipe, []repo.IngredientLine, error) {
	if s.get != nil {
		return s.get(ctx, recipeID)
	}
	return stubRecipe(recipeID, "author-1"), nil, nil
}
func (s stubRecipeSvc) Lines(ctx context.Context, recipeID string) ([]repo.IngredientLine, error) {
	if s.lines != nil {
		return s.lines(ctx, recipeID)
	}
	return nil, nil
}
func (s stubRecipeSvc) ListPage(ctx context.Context, f repo.RecipeFilter, page, pageSize int) ([]domain.Recipe, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, f, page, pageSize)
	}
	return []domain.Recipe{}, 0, nil
}
func (s stubRecipeSvc) ListByAuthor(ctx context.Context, authorID string, limit int) ([]domain.Recipe, error) {
	if s.listByAuthor != nil {
		return s.listByAuthor(ctx, authorID, limit)
	}
	return []domain.Recipe{}, nil
}
func (s stubRecipeSvc) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	if s.countByAuthor != nil {
		return s.countByAuthor(ctx, authorID)
	}
	return 0, nil
}

type stubRelSvc struct {
	addFavorite    func(ctx context.Context, userID, recipeID string) (*domain.Recipe, error)
	removeFavorite func(ctx context.Context, userID, recipeID string) error
	isFavorited    func(ctx context.Context, userID, recipeID string) (bool, error)

	addToCart      func(ctx context.Context, userID, recipeID string) (*domain.Recipe, error)
	removeFromCart func(ctx context.Context, userID, recipeID string) error
	isInCart       func(ctx context.Context, userID, recipeID string) (bool, error)

	subscribe    func(ctx context.Context, userID, authorID string) (*domain.User, error)
	unsubscribe  func(ctx context.Context, userID, authorID string) error
	isSubscribed func(ctx context.Context, userID, authorID string) (bool, error)
	listSubs     func(ctx context.Context, userID string, page, pageSize int) ([]domain.User, int64, error)
}

func (s stubRelSvc) AddFavorite(ctx context.Context, userID, recipeID string) (*domain.Recipe, error) {
	if s.addFavorite != nil {
		return s.addFavorite(ctx, userID, recipeID)
	}
	return stubRecipe(recipeID, "author-1"), nil
}
func (s stubRelSvc) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	if s.removeFavorite != nil {
		return s.removeFavorite(ctx, userID, recipeID)
	}
	return nil
}
func (s stubRelSvc) IsFavorited(ctx context.Context, userID, recipeID string) (bool, error) {
	if s.isFavorited != nil {
		return s.isFavorited(ctx, userID, recipeID)
	}
	return false, nil
}
func (s stubRelSvc) AddToCart(ctx context.Context, userID, recipeID string) (*domain.Recipe, error) {
	if s.addToCart != nil {
		return s.addToCart(ctx, userID, recipeID)
	}
	return stubRecipe(recipeID, "author-1"), nil
}
func (s stubRelSvc) RemoveFromCart(ctx context.Context, userID, recipeID string) error {
	if s.removeFromCart != nil {
		return s.removeFromCart(ctx, userID, recipeID)
	}
	return nil
}
func (s stubRelSvc) IsInCart(ctx context.Context, userID, recipeID string) (bool, error) {
	if s.isInCart != nil {
		return s.isInCart(ctx, userID, recipeID)
	}
	return false, nil
}
func (s stubRelSvc) Subscribe(ctx context.Context, userID, authorID string) (*domain.User, error) {
	if s.subscribe != nil {
		return s.subscribe(ctx, userID, authorID)
	}
	return &domain.User{ID: authorID, Username: authorID}, nil
}
func (s stubRelSvc) Unsubscribe(ctx context.Context, userID, authorID string) error {
	if s.unsubscribe != nil {
		return s.unsubscribe(ctx, userID, authorID)
	}
	return nil
}
func (s stubRelSvc) IsSubscribed(ctx context.Context, userID, authorID string) (bool, error) {
	if s.isSubscribed != nil {
		return s.isSubscribed(ctx, userID, authorID)
	}
	return false, nil
}
func (s stubRelSvc) ListSubscriptions(ctx context.Context, userID string, page, pageSize int) ([]domain.User, int64, error) {
	if s.listSubs != nil {
		return s.listSubs(ctx, userID, page, pageSize)
	}
	return []domain.User{}, 0, nil
}

type stubShopSvc struct {
	list func(ctx context.Context, userID string) ([]domain.ShoppingListItem, error)
}

func (s stubShopSvc) List(ctx context.Context, userID string) ([]domain.ShoppingListItem, error) {
	if s.list != nil {
		return s.list(ctx, userID)
	}
	return []domain.ShoppingListItem{}, nil
}

type stubLinkSvc struct {
	getOrCreate func(ctx context.Context, recipeID string) (*domain.ShortLink, error)
	resolve     func(ctx context.Context, code string) (string, error)
}

func (s stubLinkSvc) GetOrCreate(ctx context.Context, recipeID string) (*domain.ShortLink, error) {
	if s.getOrCreate != nil {
		return s.getOrCreate(ctx, recipeID)
	}
	return &domain.ShortLink{RecipeID: recipeID, Code: "abc12345"}, nil
}
func (s stubLinkSvc) Resolve(ctx context.Context, code string) (string, error) {
	if s.resolve != nil {
		return s.resolve(ctx, code)
	}
	return "r-1", nil
}

type stubTokens struct {
	issue func(userID string) (string, error)
}

func (s stubTokens) Issue(userID string) (string, error) {
	if s.issue != nil {
		return s.issue(userID)
	}
	return "token-for-" + userID, nil
}

// deps bundles one stub per contract; tests override fields and then build.
type deps struct {
	users   stubUserSvc
	ings    stubIngSvc
	recipes stubRecipeSvc
	rels    stubRelSvc
	shop    stubShopSvc
	links   stubLinkSvc
	tokens  stubTokens
	opt     Options
}

func (d deps) build() *Handlers {
	if d.opt.PublicURL == "" {
		d.opt.PublicURL = "https://food.example.com"
	}
	return New(d.users, d.ings, d.recipes, d.rels, d.shop, d.links, d.tokens, d.opt)
}

// asUser installs a request-scoped user id, standing in for the auth
// middleware.
func asUser(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid != "" {
			c.Set("userID", uid)
		}
		c.Next()
	}
}
