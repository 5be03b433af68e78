// Package services defines the business logic for accounts, recipes, the
// favorites/cart/subscription relations, shopping lists, and short links.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/repo"
)

// Account-related errors.
var (
	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering with an email that is
	// already in use.
	ErrEmailTaken = errors.New("email already in use")

	// ErrUsernameTaken is returned when registering with a username that is
	// already in use.
	ErrUsernameTaken = errors.New("username already in use")

	// ErrInvalidCredentials is returned when a login attempt does not match
	// a stored account. It deliberately does not disclose which part failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWrongPassword is returned when a password change supplies a current
	// password that does not match the stored one.
	ErrWrongPassword = errors.New("current password is incorrect")
)

// Recipe-related errors.
var (
	// ErrRecipeNotFound indicates that the requested recipe does not exist.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrRecipeForbidden is returned when a user attempts to modify or delete
	// a recipe they do not own.
	ErrRecipeForbidden = errors.New("recipe belongs to another user")

	// ErrIngredientNotFound indicates that a referenced catalog ingredient
	// does not exist.
	ErrIngredientNotFound = errors.New("ingredient not found")
)

// Relation errors. Adding a pair that exists and removing a pair that does
// not are both rejected, so clients learn their view of the state is stale.
var (
	// ErrAlreadyFavorited is returned when favoriting a recipe twice.
	ErrAlreadyFavorited = errors.New("recipe already in favorites")

	// ErrNotFavorited is returned when removing a favorite that is absent.
	ErrNotFavorited = errors.New("recipe not in favorites")

	// ErrAlreadyInCart is returned when adding a recipe to the cart twice.
	ErrAlreadyInCart = errors.New("recipe already in shopping cart")

	// ErrNotInCart is returned when removing a recipe absent from the cart.
	ErrNotInCart = errors.New("recipe not in shopping cart")

	// ErrSelfSubscribe is returned when a user attempts to subscribe to
	// themselves.
	ErrSelfSubscribe = errors.New("cannot subscribe to yourself")

	// ErrAlreadySubscribed is returned when subscribing to an author twice.
	ErrAlreadySubscribed = errors.New("already subscribed to this author")

	// ErrNotSubscribed is returned when unsubscribing from an author the
	// user does not follow.
	ErrNotSubscribed = errors.New("not subscribed to this author")
)

// Short-link errors.
var (
	// ErrShortLinkNotFound indicates that no short link uses the given code.
	ErrShortLinkNotFound = errors.New("short link not found")

	// ErrShortLinkExhausted is returned when code generation keeps colliding
	// past the retry budget. This should never happen with a healthy code
	// space and is logged as an anomaly.
	ErrShortLinkExhausted = errors.New("could not allocate a unique short code")
)

// ValidationError reports a field-level problem with user input. Handlers
// render it as a 400 with the field name so clients can surface it inline.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// invalid is a small constructor used throughout the service layer.
func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way. It also checks gorm.ErrRecordNotFound for safety.
func isNotFound(err error) bool {
	if errors.Is(err, repo.ErrNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
