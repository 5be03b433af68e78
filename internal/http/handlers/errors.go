// HTTP-layer error codes and the service-error translation table.
//
// This file centralizes the symbolic error code constants mapped to HTTP
// responses via the `fail()` helper, plus failErr(), which translates service
// sentinel errors into (status, code, message) triples so every handler
// reports the same error the same way.
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Generic codes (bad_request, unauthorized, conflict) mirror common HTTP
//     status semantics.
//   - Toggle conflicts ("already favorited", "not in cart") report 400 with
//     the conflict code: the client sent a request that cannot succeed given
//     current state, and the stable code lets it branch programmatically.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/go-foodgram-backend/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// failErr maps a service error onto the HTTP error envelope. Unrecognized
// errors become 500s, which fail() logs with request context.
func failErr(c *gin.Context, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, ve.Error())
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, services.ErrRecipeNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "recipe not found")
	case errors.Is(err, services.ErrShortLinkNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "short link not found")
	case errors.Is(err, services.ErrIngredientNotFound):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown ingredient reference")
	case errors.Is(err, services.ErrRecipeForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "only the author may modify this recipe")
	case errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusBadRequest, ErrCodeConflict, "email already registered")
	case errors.Is(err, services.ErrUsernameTaken):
		fail(c, http.StatusBadRequest, ErrCodeConflict, "username already taken")
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unable to log in with provided credentials")
	case errors.Is(err, services.ErrWrongPassword):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "current password is incorrect")
	case errors.Is(err, services.ErrAlreadyFavorited):
		fail(c, http.StatusBadRequest, ErrCodeConflict, "recipe is already in favorites")
	case errors.Is(err, services.ErrNotFavorited):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe is not in favorites")
	case errors.Is(err, services.ErrAlreadyInCart):
		fail(c, http.StatusBadRequest, ErrCodeConflict, "recipe is already in the shopping cart")
	case errors.Is(err, services.ErrNotInCart):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe is not in the shopping cart")
	case errors.Is(err, services.ErrSelfSubscribe):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot subscribe to yourself")
	case errors.Is(err, services.ErrAlreadySubscribed):
		fail(c, http.StatusBadRequest, ErrCodeConflict, "already subscribed to this author")
	case errors.Is(err, services.ErrNotSubscribed):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "not subscribed to this author")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
