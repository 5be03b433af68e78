// Ingredient catalog HTTP handlers.
//
// This file exposes the read-only catalog endpoints:
//   - GET /ingredients       (list, optional name prefix filter, unpaginated)
//   - GET /ingredients/{id}  (single entry)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/go-foodgram-backend/internal/services"
)

// ListIngredients godoc
// @ID          listIngredients
// @Summary     List catalog ingredients
// @Description Returns catalog entries ordered by name, optionally filtered by a case-insensitive name prefix. The list is not paginated.
// @Tags        Ingredients
// @Produce     json
// @Param       name  query  string  false  "Name prefix filter"  example(sal)
// @Success     200  {array}  domain.Ingredient
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /ingredients [get]
func (h *Handlers) ListIngredients(c *gin.Context) {
	items, err := h.ingSvc.List(c.Request.Context(), c.Query("name"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// GetIngredient godoc
// @ID          getIngredient
// @Summary     Catalog entry by id
// @Tags        Ingredients
// @Produce     json
// @Param       id  path  string  true  "Ingredient ID (UUID)"
// @Success     200  {object} domain.Ingredient
// @Failure     404  {object} handlers.ErrorResponse "Ingredient not found"
// @Router      /ingredients/{id} [get]
func (h *Handlers) GetIngredient(c *gin.Context) {
	item, err := h.ingSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		// A missing catalog entry is a 404 here; failErr reports the same
		// sentinel as 400 because its other callers hit it through recipe
		// ingredient references.
		if errors.Is(err, services.ErrIngredientNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "ingredient not found")
			return
		}
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, item)
}
