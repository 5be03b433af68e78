// Package services – ShoppingService
//
// Builds the consolidated shopping list: every recipe in the user's cart
// contributes its ingredient amounts, summed per (name, unit) pair. The
// plain-text rendering is what the download endpoint serves as a file.
package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/domain"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ShoppingRepo defines the repository contract required by ShoppingService.
type ShoppingRepo interface {
	// AggregateShoppingList returns summed ingredient lines for the cart.
	AggregateShoppingList(ctx context.Context, db *gorm.DB, userID string) ([]domain.ShoppingListItem, error)
}

// ShoppingService exposes the aggregated shopping list.
type ShoppingService struct {
	DB   *gorm.DB
	Repo ShoppingRepo
}

// NewShoppingService constructs a ShoppingService.
func NewShoppingService(db *gorm.DB, r ShoppingRepo) *ShoppingService {
	return &ShoppingService{DB: db, Repo: r}
}

// List returns the user's consolidated shopping list, ordered by ingredient
// name. An empty cart yields an empty list.
func (s *ShoppingService) List(ctx context.Context, userID string) ([]domain.ShoppingListItem, error) {
	tr := otel.Tracer("services/ShoppingService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	return s.Repo.AggregateShoppingList(ctx, s.DB, userID)
}

// FormatShoppingList renders the list as plain text, one line per
// ingredient: "name - total unit". Lines are newline-separated with no
// trailing newline.
func FormatShoppingList(items []domain.ShoppingListItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s - %d %s", it.Name, it.Total, it.MeasurementUnit))
	}
	return strings.Join(lines, "\n")
}
