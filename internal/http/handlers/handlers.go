// Handler wiring and service contracts.
//
// This file declares the service interfaces the HTTP layer depends on, the
// Handlers aggregate that binds them, and the shared helpers for pagination
// and payload shaping. Handlers are transport-thin: they validate input, call
// application services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
	"github.com/foodgram/go-foodgram-backend/internal/repo"
	"github.com/foodgram/go-foodgram-backend/internal/services"
	"github.com/foodgram/go-foodgram-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// UserService defines account lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type UserService interface {
	// Register creates an account after validating the profile fields.
	Register(ctx context.Context, email, username, firstName, lastName, password string) (*domain.User, error)
	// Authenticate verifies email+password and returns the account.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	// Get fetches an account by id.
	Get(ctx context.Context, id string) (*domain.User, error)
	// ListPage returns a page of accounts and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.User, int64, error)
	// SetAvatar stores a non-empty avatar URL.
	SetAvatar(ctx context.Context, userID, avatar string) error
	// RemoveAvatar clears the avatar URL.
	RemoveAvatar(ctx context.Context, userID string) error
	// ChangePassword verifies the current password and stores a new hash.
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// IngredientService defines read access to the ingredient catalog.
type IngredientService interface {
	// List returns catalog entries, optionally filtered by name prefix.
	List(ctx context.Context, prefix string) ([]domain.Ingredient, error)
	// Get fetches one catalog entry by id.
	Get(ctx context.Context, id string) (*domain.Ingredient, error)
}

// RecipeService defines the recipe lifecycle operations used by handlers.
type RecipeService interface {
	// Create persists a recipe plus its ingredient links atomically.
	Create(ctx context.Context, authorID, name, text, image string, cookingTime int, ingredients []services.IngredientInput) (*domain.Recipe, []repo.IngredientLine, error)
	// Update rewrites the scalars and the full ingredient set (author only).
	Update(ctx context.Context, userID, recipeID, name, text, image string, cookingTime int, ingredients []services.IngredientInput) (*domain.Recipe, []repo.IngredientLine, error)
	// Delete removes a recipe (author only).
	Delete(ctx context.Context, userID, recipeID string) error
	// Get fetches a recipe with its ingredient lines.
	Get(ctx context.Context, recipeID string) (*domain.Recipe, []repo.IngredientLine, error)
	// Lines fetches only the ingredient lines of a recipe.
	Lines(ctx context.Context, recipeID string) ([]repo.IngredientLine, error)
	// ListPage returns a filtered page of recipes plus the total.
	ListPage(ctx context.Context, f repo.RecipeFilter, page, pageSize int) ([]domain.Recipe, int64, error)
	// ListByAuthor returns an author's recipes, optionally truncated.
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]domain.Recipe, error)
	// CountByAuthor returns the author's total recipe count.
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
}

// RelationService defines the favorite, cart, and subscription toggles.
type RelationService interface {
	AddFavorite(ctx context.Context, userID, recipeID string) (*domain.Recipe, error)
	RemoveFavorite(ctx context.Context, userID, recipeID string) error
	IsFavorited(ctx context.Context, userID, recipeID string) (bool, error)

	AddToCart(ctx context.Context, userID, recipeID string) (*domain.Recipe, error)
	RemoveFromCart(ctx context.Context, userID, recipeID string) error
	IsInCart(ctx context.Context, userID, recipeID string) (bool, error)

	Subscribe(ctx context.Context, userID, authorID string) (*domain.User, error)
	Unsubscribe(ctx context.Context, userID, authorID string) error
	IsSubscribed(ctx context.Context, userID, authorID string) (bool, error)
	ListSubscriptions(ctx context.Context, userID string, page, pageSize int) ([]domain.User, int64, error)
}

// ShoppingService aggregates the caller's cart into a shopping list.
type ShoppingService interface {
	List(ctx context.Context, userID string) ([]domain.ShoppingListItem, error)
}

// ShortLinkService creates and resolves compact recipe share codes.
type ShortLinkService interface {
	GetOrCreate(ctx context.Context, recipeID string) (*domain.ShortLink, error)
	Resolve(ctx context.Context, code string) (string, error)
}

// TokenIssuer signs bearer tokens for authenticated sessions.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for users, ingredients, recipes,
// relations, the shopping cart, and short links. It depends on abstract
// service interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	userSvc   UserService
	ingSvc    IngredientService
	recipeSvc RecipeService
	relSvc    RelationService
	shopSvc   ShoppingService
	linkSvc   ShortLinkService
	tokens    TokenIssuer

	// publicURL is the externally visible base URL used to build short links.
	publicURL string
	// recipePath is the frontend path prefix a short link redirects to.
	recipePath string
	// defaultPageSize bounds list responses when no limit is given.
	defaultPageSize int
}

// Options carries the transport-level settings Handlers needs beyond its
// service dependencies.
type Options struct {
	PublicURL       string
	RecipePath      string
	DefaultPageSize int
}

// New constructs a Handlers instance bound to the given services.
func New(
	userSvc UserService,
	ingSvc IngredientService,
	recipeSvc RecipeService,
	relSvc RelationService,
	shopSvc ShoppingService,
	linkSvc ShortLinkService,
	tokens TokenIssuer,
	opt Options,
) *Handlers {
	if opt.DefaultPageSize <= 0 {
		opt.DefaultPageSize = 6
	}
	if opt.RecipePath == "" {
		opt.RecipePath = "/recipes"
	}
	return &Handlers{
		userSvc:         userSvc,
		ingSvc:          ingSvc,
		recipeSvc:       recipeSvc,
		relSvc:          relSvc,
		shopSvc:         shopSvc,
		linkSvc:         linkSvc,
		tokens:          tokens,
		publicURL:       opt.PublicURL,
		recipePath:      opt.RecipePath,
		defaultPageSize: opt.DefaultPageSize,
	}
}

// userID extracts the authenticated user id from the Gin context (set by the
// auth middleware). Returns "" for anonymous requests.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

//
// Shared DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// newPagination computes the metadata for one page of total items.
func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// UserResponse is the public shape of an account. IsSubscribed is relative to
// the caller and always false for anonymous requests.
type UserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
	Avatar       string `json:"avatar"`
}

// IngredientAmount is one ingredient line inside a recipe payload.
type IngredientAmount struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the full recipe payload.
type RecipeResponse struct {
	ID                string             `json:"id"`
	Author            UserResponse       `json:"author"`
	Ingredients       []IngredientAmount `json:"ingredients"`
	IsFavorited       bool               `json:"is_favorited"`
	IsInShoppingCart  bool               `json:"is_in_shopping_cart"`
	Name              string             `json:"name"`
	Image             string             `json:"image"`
	Text              string             `json:"text"`
	CookingTime       int                `json:"cooking_time"`
	CreatedAt         string             `json:"created_at"`
}

// RecipeMinified is the compact recipe shape used in toggle responses and
// subscription payloads.
type RecipeMinified struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

//
// Helpers
//

// clampPagination parses and bounds the page and limit query params,
// returning (page, pageSize).
func (h *Handlers) clampPagination(c *gin.Context) (page, pageSize int) {
	const maxPageSize = 100
	page = utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("limit"), h.defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// userPayload shapes a user for JSON, resolving is_subscribed relative to the
// viewer. Anonymous viewers and self-views are always false.
func (h *Handlers) userPayload(ctx context.Context, viewerID string, u *domain.User) (UserResponse, error) {
	out := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
	}
	if viewerID != "" && viewerID != u.ID {
		sub, err := h.relSvc.IsSubscribed(ctx, viewerID, u.ID)
		if err != nil {
			return out, err
		}
		out.IsSubscribed = sub
	}
	return out, nil
}

// recipePayload shapes a recipe for JSON, resolving the per-viewer flags and
// the author block. The author is loaded lazily when the repo did not preload
// it (fresh creates).
func (h *Handlers) recipePayload(ctx context.Context, viewerID string, r *domain.Recipe, lines []repo.IngredientLine) (RecipeResponse, error) {
	author := &r.Author
	if author.ID == "" {
		u, err := h.userSvc.Get(ctx, r.AuthorID)
		if err != nil {
			return RecipeResponse{}, err
		}
		author = u
	}
	authorOut, err := h.userPayload(ctx, viewerID, author)
	if err != nil {
		return RecipeResponse{}, err
	}

	ings := make([]IngredientAmount, 0, len(lines))
	for _, ln := range lines {
		ings = append(ings, IngredientAmount{
			ID:              ln.IngredientID,
			Name:            ln.Name,
			MeasurementUnit: ln.MeasurementUnit,
			Amount:          ln.Amount,
		})
	}

	out := RecipeResponse{
		ID:          r.ID,
		Author:      authorOut,
		Ingredients: ings,
		Name:        r.Name,
		Image:       r.Image,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if viewerID != "" {
		if out.IsFavorited, err = h.relSvc.IsFavorited(ctx, viewerID, r.ID); err != nil {
			return RecipeResponse{}, err
		}
		if out.IsInShoppingCart, err = h.relSvc.IsInCart(ctx, viewerID, r.ID); err != nil {
			return RecipeResponse{}, err
		}
	}
	return out, nil
}

// minified shapes a recipe into its compact form.
func minified(r *domain.Recipe) RecipeMinified {
	return RecipeMinified{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}
