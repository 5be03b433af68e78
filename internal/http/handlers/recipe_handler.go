// Recipe HTTP handlers.
//
// This file exposes the recipe endpoints:
//   - POST   /recipes                        (create)
//   - GET    /recipes                        (list, filtered + paginated, ETag for anonymous)
//   - GET    /recipes/{id}                   (single recipe)
//   - PATCH  /recipes/{id}                   (update, author only)
//   - DELETE /recipes/{id}                   (delete, author only)
//   - POST   /recipes/{id}/favorite          (add to favorites)
//   - DELETE /recipes/{id}/favorite          (remove from favorites)
//   - POST   /recipes/{id}/shopping_cart     (add to cart)
//   - DELETE /recipes/{id}/shopping_cart     (remove from cart)
//   - GET    /recipes/download_shopping_cart (plain-text shopping list)
//   - GET    /recipes/{id}/get-link          (short share link)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/repo"
	"github.com/foodgram/go-foodgram-backend/internal/services"
	"github.com/foodgram/go-foodgram-backend/internal/utils"
)

//
// DTOs
//

// RecipeIngredientRequest is one ingredient reference in a recipe payload.
type RecipeIngredientRequest struct {
	ID     string `json:"id" binding:"required"`
	Amount int    `json:"amount" binding:"required"`
}

// RecipeRequest is the JSON payload for creating or updating a recipe.
// Validation beyond presence (minimums, duplicate refs, catalog existence)
// lives in the service layer.
type RecipeRequest struct {
	Ingredients []RecipeIngredientRequest `json:"ingredients"`
	Name        string                    `json:"name" binding:"required" example:"Borscht"`
	Image       string                    `json:"image" binding:"required"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time" binding:"required" example:"90"`
}

// ListRecipesResponse wraps a page of recipes and pagination information.
type ListRecipesResponse struct {
	Recipes    []RecipeResponse `json:"recipes"`
	Pagination Pagination       `json:"pagination"`
}

// ShortLinkResponse carries the public short URL of a recipe.
type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// ingredientInputs converts the transport shape into the service shape.
func ingredientInputs(in []RecipeIngredientRequest) []services.IngredientInput {
	out := make([]services.IngredientInput, 0, len(in))
	for _, r := range in {
		out = append(out, services.IngredientInput{ID: r.ID, Amount: r.Amount})
	}
	return out
}

//
// Handlers
//

// CreateRecipe godoc
// @ID          createRecipe
// @Summary     Create a recipe
// @Description Persists the recipe and its ingredient list atomically.
// @Tags        Recipes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.RecipeRequest  true  "Recipe payload"
// @Success     201  {object} handlers.RecipeResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation error"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /recipes [post]
func (h *Handlers) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	uid := userID(c)
	rec, lines, err := h.recipeSvc.Create(c.Request.Context(), uid,
		req.Name, req.Text, req.Image, req.CookingTime, ingredientInputs(req.Ingredients))
	if err != nil {
		failErr(c, err)
		return
	}

	out, err := h.recipePayload(c.Request.Context(), uid, rec, lines)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

// GetRecipe godoc
// @ID          getRecipe
// @Summary     Recipe by id
// @Description Returns the full payload including author, ingredient lines, and the caller's favorite/cart flags.
// @Tags        Recipes
// @Produce     json
// @Param       id  path  string  true  "Recipe ID (UUID)"
// @Success     200  {object} handlers.RecipeResponse
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Router      /recipes/{id} [get]
func (h *Handlers) GetRecipe(c *gin.Context) {
	rec, lines, err := h.recipeSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	out, err := h.recipePayload(c.Request.Context(), userID(c), rec, lines)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// UpdateRecipe godoc
// @ID          updateRecipe
// @Summary     Update a recipe (author only)
// @Description Rewrites the scalar fields and the complete ingredient set in one transaction.
// @Tags        Recipes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                  true  "Recipe ID (UUID)"
// @Param       body  body  handlers.RecipeRequest  true  "Recipe payload"
// @Success     200  {object} handlers.RecipeResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation error"
// @Failure     403  {object} handlers.ErrorResponse "Not the author"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Router      /recipes/{id} [patch]
func (h *Handlers) UpdateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	uid := userID(c)
	rec, lines, err := h.recipeSvc.Update(c.Request.Context(), uid, c.Param("id"),
		req.Name, req.Text, req.Image, req.CookingTime, ingredientInputs(req.Ingredients))
	if err != nil {
		failErr(c, err)
		return
	}

	out, err := h.recipePayload(c.Request.Context(), uid, rec, lines)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// DeleteRecipe godoc
// @ID          deleteRecipe
// @Summary     Delete a recipe (author only)
// @Tags        Recipes
// @Security    BearerAuth
// @Param       id  path  string  true  "Recipe ID (UUID)"
// @Success     204  {string} string "No Content"
// @Failure     403  {object} handlers.ErrorResponse "Not the author"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Router      /recipes/{id} [delete]
func (h *Handlers) DeleteRecipe(c *gin.Context) {
	if err := h.recipeSvc.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// ListRecipes godoc
// @ID          listRecipes
// @Summary     List recipes (filtered, paginated)
// @Description Newest first. Filters: author, name prefix, is_favorited, is_in_shopping_cart. The caller-scoped flags yield an empty set for anonymous requests. Anonymous responses carry a weak ETag and honor If-None-Match.
// @Tags        Recipes
// @Produce     json
// @Param       page                 query  int     false  "Page number"     minimum(1) default(1)
// @Param       limit                query  int     false  "Items per page"  minimum(1) maximum(100)
// @Param       author               query  string  false  "Filter by author id"
// @Param       name                 query  string  false  "Name prefix filter"
// @Param       is_favorited         query  string  false  "Only the caller's favorites (1/true)"
// @Param       is_in_shopping_cart  query  string  false  "Only the caller's cart (1/true)"
// @Success     200  {object} handlers.ListRecipesResponse
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recipes [get]
func (h *Handlers) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := userID(c)
	page, pageSize := h.clampPagination(c)

	f := repo.RecipeFilter{
		AuthorID:   c.Query("author"),
		NamePrefix: c.Query("name"),
	}
	if utils.IsTruthy(c.Query("is_favorited")) {
		if viewer == "" {
			ok(c, http.StatusOK, ListRecipesResponse{
				Recipes:    []RecipeResponse{},
				Pagination: newPagination(page, pageSize, 0),
			})
			return
		}
		f.FavoritedBy = viewer
	}
	if utils.IsTruthy(c.Query("is_in_shopping_cart")) {
		if viewer == "" {
			ok(c, http.StatusOK, ListRecipesResponse{
				Recipes:    []RecipeResponse{},
				Pagination: newPagination(page, pageSize, 0),
			})
			return
		}
		f.InCartOf = viewer
	}

	// ETag pre-check (best effort, anonymous only: authenticated payloads
	// carry per-viewer flags the stats cannot see).
	if viewer == "" {
		var db *gorm.DB
		if svc, isGorm := h.recipeSvc.(*services.RecipeService); isGorm {
			db = svc.DB
		}
		if db != nil {
			count, last, err := repo.RecipesStats(ctx, db)
			if err == nil {
				etag := fmt.Sprintf(`W/"recipes:%s:%d:%d"`, c.Request.URL.RawQuery, count, last.Unix())
				c.Header("ETag", etag)
				if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
					c.Status(http.StatusNotModified)
					return
				}
			}
		}
	}

	items, total, err := h.recipeSvc.ListPage(ctx, f, page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}

	recipes := make([]RecipeResponse, 0, len(items))
	for i := range items {
		lines, err := h.recipeSvc.Lines(ctx, items[i].ID)
		if err != nil {
			failErr(c, err)
			return
		}
		out, err := h.recipePayload(ctx, viewer, &items[i], lines)
		if err != nil {
			failErr(c, err)
			return
		}
		recipes = append(recipes, out)
	}

	ok(c, http.StatusOK, ListRecipesResponse{
		Recipes:    recipes,
		Pagination: newPagination(page, pageSize, total),
	})
}

// Favorite godoc
// @ID          favoriteRecipe
// @Summary     Add a recipe to favorites
// @Tags        Favorites
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Recipe ID (UUID)"
// @Success     201  {object} handlers.RecipeMinified
// @Failure     400  {object} handlers.ErrorResponse "Already in favorites"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Router      /recipes/{id}/favorite [post]
func (h *Handlers) Favorite(c *gin.Context) {
	rec, err := h.relSvc.AddFavorite(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, minified(rec))
}

// Unfavorite godoc
// @ID          unfavoriteRecipe
// @Summary     Remove a recipe from favorites
// @Tags        Favorites
// @Security    BearerAuth
// @Param       id  path  string  true  "Recipe ID (UUID)"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Not in favorites"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Router      /recipes/{id}/favorite [delete]
func (h *Handlers) Unfavorite(c *gin.Context) {
	if err := h.relSvc.RemoveFavorite(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// AddToCart godoc
// @ID          addToCart
// @Summary     Add a recipe to the shopping cart
// @Tags        ShoppingCart
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Recipe ID (UUID)"
// @Success     201  {object} handlers.RecipeMinified
// @Failure     400  {object} handlers.ErrorResponse "Already in the cart"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Router      /recipes/{id}/shopping_cart [post]
func (h *Handlers) AddToCart(c *gin.Context) {
	rec, err := h.relSvc.AddToCart(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, minified(rec))
}

// RemoveFromCart godoc
// @ID          removeFromCart
// @Summary     Remove a recipe from the shopping cart
// @Tags        ShoppingCart
// @Security    BearerAuth
// @Param       id  path  string  true  "Recipe ID (UUID)"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Not in the cart"
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Router      /recipes/{id}/shopping_cart [delete]
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	if err := h.relSvc.RemoveFromCart(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// DownloadShoppingCart godoc
// @ID          downloadShoppingCart
// @Summary     Download the aggregated shopping list
// @Description Sums ingredient amounts across every recipe in the caller's cart, grouped by (name, unit) and sorted by name. Served as a text attachment.
// @Tags        ShoppingCart
// @Produce     plain
// @Security    BearerAuth
// @Success     200  {string} string "shopping_cart.txt"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /recipes/download_shopping_cart [get]
func (h *Handlers) DownloadShoppingCart(c *gin.Context) {
	items, err := h.shopSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}

	body := services.FormatShoppingList(items)
	c.Header("Content-Disposition", `attachment; filename="shopping_cart.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// GetLink godoc
// @ID          getRecipeLink
// @Summary     Short share link for a recipe
// @Description Lazily creates the short code on first request and returns the same link afterwards.
// @Tags        Recipes
// @Produce     json
// @Param       id  path  string  true  "Recipe ID (UUID)"
// @Success     200  {object} handlers.ShortLinkResponse
// @Failure     404  {object} handlers.ErrorResponse "Recipe not found"
// @Failure     500  {object} handlers.ErrorResponse "Code space exhausted"
// @Router      /recipes/{id}/get-link [get]
func (h *Handlers) GetLink(c *gin.Context) {
	link, err := h.linkSvc.GetOrCreate(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ShortLinkResponse{ShortLink: h.publicURL + "/s/" + link.Code})
}

// RedirectShortLink godoc
// @ID          redirectShortLink
// @Summary     Resolve a short link
// @Description Redirects (302) to the recipe page of the code's target.
// @Tags        Recipes
// @Param       code  path  string  true  "Short code"
// @Success     302  {string} string "Found"
// @Failure     404  {object} handlers.ErrorResponse "Unknown code"
// @Router      /s/{code} [get]
func (h *Handlers) RedirectShortLink(c *gin.Context) {
	recipeID, err := h.linkSvc.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		failErr(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.recipePath+"/"+recipeID)
}
